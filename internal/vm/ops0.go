package vm

import "github.com/cairnwright/zvm/internal/zerror"

// execute0OP handles the zero-operand opcode table: control flow and
// screen primitives that need no arguments (spec §4.F).
func (m *VM) execute0OP(frame *Frame, inst *instruction) error {
	switch inst.number {
	case 0: // rtrue
		return m.doReturn(1)

	case 1: // rfalse
		return m.doReturn(0)

	case 2: // print (literal string follows the opcode)
		s, end, err := m.decoder.Decode(frame.pc)
		if err != nil {
			return err
		}
		frame.pc = end
		return m.print(s)

	case 3: // print_ret
		s, end, err := m.decoder.Decode(frame.pc)
		if err != nil {
			return err
		}
		frame.pc = end
		if err := m.print(s); err != nil {
			return err
		}
		if err := m.print("\n"); err != nil {
			return err
		}
		return m.doReturn(1)

	case 4: // nop
		return nil

	case 5: // save (v1-3 branches; v4 stores)
		return m.opSave(frame, inst, true)

	case 6: // restore (v1-3 branches; v4 stores)
		return m.opRestore(frame, inst, true)

	case 7: // restart
		return m.restart()

	case 8: // ret_popped
		v, err := m.readVariable(0, false)
		if err != nil {
			return err
		}
		return m.doReturn(v)

	case 9: // pop (v1-4) / catch (v5+, stores)
		if m.header.Version() >= 5 {
			return m.store(frame, uint16(m.callStack.depth()))
		}
		_, err := m.readVariable(0, false)
		return err

	case 10: // quit
		m.quit = true
		return nil

	case 11: // new_line
		return m.print("\n")

	case 12: // show_status (v3 only, no-op elsewhere)
		return m.showStatus()

	case 13: // verify
		ok, err := m.verifyChecksum()
		if err != nil {
			return err
		}
		return m.branch(frame, ok)

	case 15: // piracy
		return m.branch(frame, true)

	default:
		return zerror.New(zerror.KindMalformedInstruction, "unimplemented 0OP opcode %d at %#x", inst.number, inst.pc)
	}
}

func (m *VM) verifyChecksum() (bool, error) {
	declared := m.header.Checksum()
	actual := m.mem.Checksum()
	return declared == actual, nil
}

func (m *VM) showStatus() error {
	if m.header.Version() > 3 {
		return nil
	}
	locationObj, err := m.readVariable(16, false)
	if err != nil {
		return err
	}
	name, err := m.objects.Name(locationObj)
	if err != nil {
		return err
	}
	score, err := m.readVariable(17, false)
	if err != nil {
		return err
	}
	moves, err := m.readVariable(18, false)
	if err != nil {
		return err
	}
	m.host.Send(StatusLineUpdate{
		PlaceName:   name,
		Score:       int(int16(score)),
		Moves:       int(moves),
		IsTimeBased: m.header.Flags1()&0b0000_0010 != 0,
	})
	return nil
}

func (m *VM) restart() error {
	flags2 := m.header.Flags2()
	m.mem.Reset()
	m.header.SetFlags2(flags2)
	m.callStack = CallStack{}
	m.callStack.push(Frame{pc: uint32(m.header.InitialPC()), routineType: Function})
	m.streams = streamState{screen: true}
	return nil
}
