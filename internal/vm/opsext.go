package vm

import (
	"github.com/cairnwright/zvm/internal/zstring"
)

// executeExtOP handles the v5+ extended opcode table (spec §4.F).
// Picture/mouse/menu opcodes are stubbed to their documented
// no-capability response, since graphics and pointer input are out of
// scope (spec's Non-goals) but games probe for support before using
// them and must see a consistent "unavailable" answer rather than an
// error.
func (m *VM) executeExtOP(frame *Frame, inst *instruction) error {
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
	case 0: // save
		return m.opSave(frame, inst, false)

	case 1: // restore
		return m.opRestore(frame, inst, false)

	case 2: // log_shift (unsigned; negative count shifts right)
		n := int16(arg(1))
		v := arg(0)
		var result uint16
		if n >= 0 {
			result = v << uint(n)
		} else {
			result = v >> uint(-n)
		}
		return m.store(frame, result)

	case 3: // art_shift (signed; negative count shifts right, sign-extending)
		n := int16(arg(1))
		v := int16(arg(0))
		var result int16
		if n >= 0 {
			result = v << uint(n)
		} else {
			result = v >> uint(-n)
		}
		return m.store(frame, uint16(result))

	case 4: // set_font; no alternate fonts modeled, so it always "fails"
		return m.store(frame, 0)

	case 5: // draw_picture (Non-goal: no picture resources)
		return nil

	case 6: // picture_data (Non-goal): report picture 0 as unavailable
		return m.branch(frame, false)

	case 7: // erase_picture (Non-goal)
		return nil

	case 8: // set_margins
		return nil

	case 9: // save_undo
		return m.store(frame, m.saveUndo())

	case 10: // restore_undo
		v, err := m.restoreUndo()
		if err != nil {
			return err
		}
		if v == 2 {
			// The restored frame's pc sits on save_undo's store byte.
			return m.store(m.callStack.current(), v)
		}
		return m.store(frame, v)

	case 11: // print_unicode
		r, _ := zstring.ZsciiToUnicode(uint8(arg(0)), m.mem, m.extensionTableBase)
		if arg(0) > 0xff {
			r = rune(arg(0))
		}
		return m.print(string(r))

	case 12: // check_unicode: bit0 = can print, bit1 = can read
		_, printable := zstring.ZsciiToUnicode(uint8(arg(0)), m.mem, m.extensionTableBase)
		result := uint16(0)
		if printable || arg(0) > 0xff {
			result |= 0b01
			result |= 0b10
		}
		return m.store(frame, result)

	case 13: // set_true_colour (v6 window colors); store result unused by non-v6 hosts
		fg := Color{R: uint8(arg(0) & 0x1f << 3), G: uint8((arg(0) >> 5) & 0x1f << 3), B: uint8((arg(0) >> 10) & 0x1f << 3)}
		bg := Color{R: uint8(arg(1) & 0x1f << 3), G: uint8((arg(1) >> 5) & 0x1f << 3), B: uint8((arg(1) >> 10) & 0x1f << 3)}
		m.screen.foreground = fg
		m.screen.background = bg
		m.host.Send(SetColorRequest{Foreground: fg, Background: bg})
		return nil

	case 16: // move_window (v6 only; no-op without a v6 window model)
		return nil

	case 17: // window_size (v6 only)
		return nil

	case 18: // window_style (v6 only)
		return nil

	case 19: // get_wind_prop (v6 only); report 0 for any queried property
		return m.store(frame, 0)

	case 20: // scroll_window (v6 only)
		return nil

	case 21: // pop_stack: discard `number` items from the evaluation
		// stack, or from the user stack at arg(1) when given
		count := arg(0)
		if len(values) > 1 {
			stackAddr := uint32(arg(1))
			cur, err := m.mem.ReadWord(stackAddr)
			if err != nil {
				return err
			}
			if uint16(count) > cur {
				count = cur
			}
			return m.mem.WriteWord(stackAddr, cur-count)
		}
		for i := uint16(0); i < count; i++ {
			if _, err := m.readVariable(0, false); err != nil {
				return err
			}
		}
		return nil

	case 22: // read_mouse (Non-goal: no pointer device)
		return nil

	case 23: // mouse_window (Non-goal)
		return nil

	case 24: // push_stack: push value onto the user stack at arg(1)
		// (word 0 = current element count, elements follow); always
		// succeeds since the format has no declared capacity.
		stackAddr := uint32(arg(1))
		count, err := m.mem.ReadWord(stackAddr)
		if err != nil {
			return err
		}
		if err := m.mem.WriteWord(stackAddr+2+2*uint32(count), arg(0)); err != nil {
			return err
		}
		if err := m.mem.WriteWord(stackAddr, count+1); err != nil {
			return err
		}
		return m.branch(frame, true)

	case 25: // put_wind_prop (v6 only)
		return nil

	case 26: // print_form
		return nil

	case 27: // make_menu (Non-goal)
		return m.branch(frame, false)

	case 28: // picture_table (Non-goal)
		return nil

	case 29: // buffer_screen (v6 only); report the previous buffering mode
		return m.store(frame, 0)

	default:
		return nil // unknown extended opcode: treated as a documented no-op rather than a fatal error
	}
}
