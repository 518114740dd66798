package vm

// branch reads a branch descriptor (1 or 2 bytes) following a
// "branch" instruction and, if result matches the descriptor's sense,
// jumps the frame's pc or returns 0/1 from the current routine (the
// standard's special-cased branch-to-return-value encodings).
func (m *VM) branch(frame *Frame, result bool) error {
	b1, err := m.readByteIncPC(frame)
	if err != nil {
		return err
	}

	branchOnTrue := b1&0x80 != 0
	singleByte := b1&0x40 != 0
	offset := int32(b1 & 0b0011_1111)

	if !singleByte {
		b2, err := m.readByteIncPC(frame)
		if err != nil {
			return err
		}
		raw := uint16(b1&0b0011_1111)<<8 | uint16(b2)
		offset = int32(int16(raw<<2)) >> 2 // sign-extend the 14-bit field
	}

	if result != branchOnTrue {
		return nil
	}

	switch offset {
	case 0:
		return m.doReturn(0)
	case 1:
		return m.doReturn(1)
	default:
		frame.pc = uint32(int64(frame.pc) + int64(offset) - 2)
		return nil
	}
}
