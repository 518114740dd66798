package vm

import "github.com/cairnwright/zvm/internal/zerror"

// execute1OP handles the one-operand opcode table.
func (m *VM) execute1OP(frame *Frame, inst *instruction) error {
	a, err := m.operandValue(inst, 0)
	if err != nil {
		return err
	}

	switch inst.number {
	case 0: // jz
		return m.branch(frame, a == 0)

	case 1: // get_sibling (stores, branches)
		v, err := m.objects.Sibling(a)
		if err != nil {
			return err
		}
		if err := m.store(frame, v); err != nil {
			return err
		}
		return m.branch(frame, v != 0)

	case 2: // get_child (stores, branches)
		v, err := m.objects.Child(a)
		if err != nil {
			return err
		}
		if err := m.store(frame, v); err != nil {
			return err
		}
		return m.branch(frame, v != 0)

	case 3: // get_parent (stores)
		v, err := m.objects.Parent(a)
		if err != nil {
			return err
		}
		return m.store(frame, v)

	case 4: // get_prop_len (stores)
		v, err := m.objects.GetPropertyLen(a)
		if err != nil {
			return err
		}
		return m.store(frame, uint16(v))

	case 5: // inc
		v, err := m.readVariable(uint8(a), true)
		if err != nil {
			return err
		}
		return m.writeVariable(uint8(a), v+1, true)

	case 6: // dec
		v, err := m.readVariable(uint8(a), true)
		if err != nil {
			return err
		}
		return m.writeVariable(uint8(a), v-1, true)

	case 7: // print_addr
		s, _, err := m.decoder.Decode(uint32(a))
		if err != nil {
			return err
		}
		return m.print(s)

	case 8: // call_1s
		return m.call(frame, inst, Function)

	case 9: // remove_obj
		return m.objects.RemoveFromParent(a)

	case 10: // print_obj
		name, err := m.objects.Name(a)
		if err != nil {
			return err
		}
		return m.print(name)

	case 11: // ret
		return m.doReturn(a)

	case 12: // jump (unconditional, signed offset)
		offset := int16(a)
		frame.pc = uint32(int64(frame.pc) + int64(offset) - 2)
		return nil

	case 13: // print_paddr
		addr := m.packedAddress(uint32(a), true)
		s, _, err := m.decoder.Decode(addr)
		if err != nil {
			return err
		}
		return m.print(s)

	case 14: // load (stores)
		v, err := m.readVariable(uint8(a), true)
		if err != nil {
			return err
		}
		return m.store(frame, v)

	case 15: // not (v1-4, stores) / call_1n (v5+)
		if m.header.Version() < 5 {
			return m.store(frame, ^a)
		}
		return m.call(frame, inst, Procedure)

	default:
		return zerror.New(zerror.KindMalformedInstruction, "unimplemented 1OP opcode %d at %#x", inst.number, inst.pc)
	}
}
