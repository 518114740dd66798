package vm

import (
	"fmt"

	"github.com/cairnwright/zvm/internal/zerror"
)

// executeVarOP handles the VAR opcode table (spec §4.F). decode.go
// routes variable-form opcode bytes with bit 5 clear to execute2OP
// (2OP instructions written in VAR form), so this table only sees the
// VAR opcodes proper (call_vs, storew, ...).
func (m *VM) executeVarOP(frame *Frame, inst *instruction) error {
	values, err := m.operands(inst)
	if err != nil {
		return err
	}
	arg := func(i int) uint16 {
		if i < len(values) {
			return values[i]
		}
		return 0
	}

	switch inst.number {
	case 0: // call / call_vs
		return m.call(frame, inst, Function)

	case 1: // storew
		return m.mem.WriteWord(uint32(arg(0))+2*uint32(arg(1)), arg(2))

	case 2: // storeb
		return m.mem.WriteByte(uint32(arg(0))+uint32(arg(1)), uint8(arg(2)))

	case 3: // put_prop
		return m.objects.PutProperty(arg(0), uint8(arg(1)), arg(2))

	case 4: // sread / aread
		return m.sread(frame, inst, values)

	case 5: // print_char
		return m.print(string(rune(arg(0))))

	case 6: // print_num
		return m.print(fmt.Sprintf("%d", int16(arg(0))))

	case 7: // random
		return m.store(frame, m.random(int16(arg(0))))

	case 8: // push
		return m.writeVariable(0, arg(0), false)

	case 9: // pull
		if m.header.Version() == 6 && len(values) == 0 {
			v, err := m.readVariable(0, false)
			if err != nil {
				return err
			}
			return m.store(frame, v)
		}
		v, err := m.readVariable(0, false)
		if err != nil {
			return err
		}
		return m.writeVariable(uint8(arg(0)), v, true)

	case 10: // split_window
		return m.splitWindow(arg(0))

	case 11: // set_window
		return m.setWindow(arg(0))

	case 12: // call_vs2
		return m.call(frame, inst, Function)

	case 13: // erase_window
		return m.eraseWindow(int16(arg(0)))

	case 14: // erase_line
		m.host.Send(PrintRequest{Window: m.currentWindow(), Text: ""})
		return nil

	case 15: // set_cursor
		return m.setCursor(arg(0), arg(1))

	case 16: // get_cursor
		m.host.Send(SetCursorRequest{}) // host responds out of band via its own state; core has no cursor readback
		return m.mem.WriteWord(uint32(arg(0)), 1)

	case 17: // set_text_style
		return m.setTextStyle(arg(0))

	case 18: // buffer_mode
		return nil // line-buffering hint; the host's terminal always wraps

	case 19: // output_stream
		return m.outputStream(int16(arg(0)), arg(1))

	case 20: // input_stream
		return nil // only stream 0 (keyboard) is supported; see spec Non-goals

	case 21: // sound_effect
		m.host.Send(SoundEffectRequest{Number: arg(0), Effect: arg(1), Volume: uint8(arg(2) & 0xff), Repeats: uint8(arg(2) >> 8)})
		return nil

	case 22: // read_char
		return m.readChar(frame, inst, values)

	case 23: // scan_table
		return m.scanTable(frame, values)

	case 24: // not (v5+ VAR form)
		return m.store(frame, ^arg(0))

	case 25: // call_vn
		return m.call(frame, inst, Procedure)

	case 26: // call_vn2
		return m.call(frame, inst, Procedure)

	case 27: // tokenise
		return m.tokenise(arg(0), arg(1), len(values) > 3 && values[3] != 0)

	case 28: // encode_text
		return m.encodeText(arg(0), arg(1), arg(2), arg(3))

	case 29: // copy_table
		return m.copyTable(arg(0), arg(1), int16(arg(2)))

	case 30: // print_table
		return m.printTable(arg(0), arg(1), arg(2), arg(3))

	case 31: // check_arg_count
		return m.branch(frame, int(arg(0)) <= frame.numArgs)

	default:
		return zerror.New(zerror.KindMalformedInstruction, "unimplemented VAR opcode %d at %#x", inst.number, inst.pc)
	}
}
