package vm

import "github.com/cairnwright/zvm/internal/zerror"

// readVariable resolves a variable number: 0 is the current frame's
// evaluation stack (popped, unless indirect, in which case it is read
// in place per the standard's note on inc/dec/inc_chk/dec_chk/load/
// store/pull), 1-15 are routine locals, 16-255 are globals.
func (m *VM) readVariable(number uint8, indirect bool) (uint16, error) {
	frame := m.callStack.current()
	if frame == nil {
		return 0, zerror.New(zerror.KindReturnWithNoCaller, "no active frame reading variable %d", number)
	}

	switch {
	case number == 0:
		if indirect {
			return frame.peek(func() { m.warnOnce(zerror.KindStackUnderflow, "peek on empty evaluation stack at %#x", frame.pc) }), nil
		}
		return frame.pop(func() { m.warnOnce(zerror.KindStackUnderflow, "pop on empty evaluation stack at %#x", frame.pc) }), nil

	case number < 16:
		idx := int(number) - 1
		if idx >= len(frame.locals) {
			return 0, zerror.New(zerror.KindOutOfBounds, "local variable %d does not exist in this routine", number)
		}
		return frame.locals[idx], nil

	default:
		addr := uint32(m.header.GlobalVariableBase()) + 2*uint32(number-16)
		return m.mem.ReadWord(addr)
	}
}

// writeVariable is the inverse of readVariable.
func (m *VM) writeVariable(number uint8, value uint16, indirect bool) error {
	frame := m.callStack.current()
	if frame == nil {
		return zerror.New(zerror.KindReturnWithNoCaller, "no active frame writing variable %d", number)
	}

	switch {
	case number == 0:
		if indirect {
			frame.pop(nil)
		}
		frame.push(value)
		return nil

	case number < 16:
		idx := int(number) - 1
		if idx >= len(frame.locals) {
			return zerror.New(zerror.KindOutOfBounds, "local variable %d does not exist in this routine", number)
		}
		frame.locals[idx] = value
		return nil

	default:
		addr := uint32(m.header.GlobalVariableBase()) + 2*uint32(number-16)
		return m.mem.WriteWord(addr, value)
	}
}

// store writes the result of an opcode to the destination variable
// named by the byte immediately following the opcode (every "store"
// instruction's trailing operand).
func (m *VM) store(frame *Frame, value uint16) error {
	dest, err := m.readByteIncPC(frame)
	if err != nil {
		return err
	}
	return m.writeVariable(dest, value, false)
}
