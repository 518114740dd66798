package vm

import "github.com/cairnwright/zvm/internal/zerror"

// execute2OP handles the two-(or-more)-operand opcode table. 2OP
// instructions decoded in VAR form can legally carry more than two
// operands for je (equality against any of several values).
func (m *VM) execute2OP(frame *Frame, inst *instruction) error {
	values, err := m.operands(inst)
	if err != nil {
		return err
	}
	var a, b uint16
	if len(values) > 0 {
		a = values[0]
	}
	if len(values) > 1 {
		b = values[1]
	}

	switch inst.number {
	case 1: // je (variadic)
		for _, v := range values[1:] {
			if v == a {
				return m.branch(frame, true)
			}
		}
		return m.branch(frame, false)

	case 2: // jl
		return m.branch(frame, int16(a) < int16(b))

	case 3: // jg
		return m.branch(frame, int16(a) > int16(b))

	case 4: // dec_chk
		v, err := m.readVariable(uint8(a), true)
		if err != nil {
			return err
		}
		newV := v - 1
		if err := m.writeVariable(uint8(a), newV, true); err != nil {
			return err
		}
		return m.branch(frame, int16(newV) < int16(b))

	case 5: // inc_chk
		v, err := m.readVariable(uint8(a), true)
		if err != nil {
			return err
		}
		newV := v + 1
		if err := m.writeVariable(uint8(a), newV, true); err != nil {
			return err
		}
		return m.branch(frame, int16(newV) > int16(b))

	case 6: // jin
		parent, err := m.objects.Parent(a)
		if err != nil {
			return err
		}
		return m.branch(frame, parent == b)

	case 7: // test
		return m.branch(frame, a&b == b)

	case 8: // or
		return m.store(frame, a|b)

	case 9: // and
		return m.store(frame, a&b)

	case 10: // test_attr
		set, err := m.objects.Attribute(a, b)
		if err != nil {
			return err
		}
		return m.branch(frame, set)

	case 11: // set_attr
		return m.objects.SetAttribute(a, b, true)

	case 12: // clear_attr
		return m.objects.SetAttribute(a, b, false)

	case 13: // store
		return m.writeVariable(uint8(a), b, true)

	case 14: // insert_obj
		return m.objects.InsertObj(a, b)

	case 15: // loadw
		v, err := m.mem.ReadWord(uint32(a) + 2*uint32(b))
		if err != nil {
			return err
		}
		return m.store(frame, v)

	case 16: // loadb
		v, err := m.mem.ReadByte(uint32(a) + uint32(b))
		if err != nil {
			return err
		}
		return m.store(frame, uint16(v))

	case 17: // get_prop
		v, err := m.objects.GetProperty(a, uint8(b))
		if err != nil {
			return err
		}
		return m.store(frame, v)

	case 18: // get_prop_addr
		v, err := m.objects.GetPropertyAddr(a, uint8(b))
		if err != nil {
			return err
		}
		return m.store(frame, v)

	case 19: // get_next_prop
		v, err := m.objects.GetNextProperty(a, uint8(b))
		if err != nil {
			return err
		}
		return m.store(frame, uint16(v))

	case 20: // add
		return m.store(frame, uint16(int16(a)+int16(b)))

	case 21: // sub
		return m.store(frame, uint16(int16(a)-int16(b)))

	case 22: // mul
		return m.store(frame, uint16(int16(a)*int16(b)))

	case 23: // div
		if b == 0 {
			return zerror.New(zerror.KindDivideByZero, "div by zero at %#x", inst.pc)
		}
		return m.store(frame, uint16(int16(a)/int16(b)))

	case 24: // mod
		if b == 0 {
			return zerror.New(zerror.KindDivideByZero, "mod by zero at %#x", inst.pc)
		}
		return m.store(frame, uint16(int16(a)%int16(b)))

	case 25: // call_2s
		return m.call(frame, inst, Function)

	case 26: // call_2n
		return m.call(frame, inst, Procedure)

	case 27: // set_colour
		return m.setColour(a, b)

	case 28: // throw
		return m.throw(a, b)

	default:
		return zerror.New(zerror.KindMalformedInstruction, "unimplemented 2OP opcode %d at %#x", inst.number, inst.pc)
	}
}

// throw unwinds the call stack back to the frame identified by the
// given stack-frame reference (as returned by catch), then returns
// val from it.
func (m *VM) throw(val uint16, frameRef uint16) error {
	for m.callStack.depth() > int(frameRef) {
		if _, ok := m.callStack.pop(); !ok {
			return zerror.New(zerror.KindReturnWithNoCaller, "throw past the bottom of the call stack")
		}
	}
	return m.doReturn(val)
}
