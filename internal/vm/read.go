package vm

import "strings"

// sread implements the sread/aread opcode (VAR:4), including the
// optional v4+ time/routine interrupt arguments. Per the supplemented
// read-interrupt control flow: the host is asked to collect input with
// the given timeout; if it reports a timeout, the interrupt routine
// runs and, if it returns nonzero, the read is aborted entirely
// (partial input discarded) rather than resumed, matching the
// standard's "abort the whole read" semantics for a true return.
func (m *VM) sread(frame *Frame, inst *instruction, values []uint16) error {
	if m.header.Version() <= 3 {
		if err := m.showStatus(); err != nil {
			return err
		}
	}

	textBuffer := values[0]
	parseBuffer := uint16(0)
	if len(values) > 1 {
		parseBuffer = values[1]
	}
	var timeoutTenths int
	var routine uint32
	if len(values) > 2 {
		timeoutTenths = int(values[2])
	}
	if len(values) > 3 {
		routine = m.packedAddress(uint32(values[3]), false)
	}

	maxLen, err := m.mem.ReadByte(uint32(textBuffer))
	if err != nil {
		return err
	}

	preload := ""
	if m.header.Version() >= 5 {
		existing, err := m.mem.ReadByte(uint32(textBuffer) + 1)
		if err != nil {
			return err
		}
		buf, err := m.mem.Slice(uint32(textBuffer)+2, uint32(existing))
		if err != nil {
			return err
		}
		preload = string(buf)
	}

	var text string
	aborted := false
	for {
		resp := m.host.Send(InputRequest{MaxLength: int(maxLen), TimeoutTenths: timeoutTenths, Preloaded: preload})
		ir, _ := resp.(InputResponse)

		if ir.Timeout && routine != 0 {
			abort, err := m.callRoutineCapturing(routine)
			if err != nil {
				return err
			}
			if abort != 0 {
				aborted = true
				break
			}
			preload = ir.Text
			continue
		}

		text = ir.Text
		break
	}

	if err := m.writeTextBuffer(textBuffer, text); err != nil {
		return err
	}

	if parseBuffer != 0 {
		if err := m.dict.WriteParseBuffer(m.mem, text, textBuffer, parseBuffer, m.header.Version(), false); err != nil {
			return err
		}
	}

	if m.header.Version() >= 5 {
		if aborted {
			return m.store(frame, 0)
		}
		return m.store(frame, 13) // newline terminator; custom terminators unused without a richer host channel
	}
	return nil
}

// writeTextBuffer lowercases and stores raw input text into a text
// buffer, honoring the v5+ length-prefix layout.
func (m *VM) writeTextBuffer(textBuffer uint16, text string) error {
	lower := strings.ToLower(text)
	maxLen, err := m.mem.ReadByte(uint32(textBuffer))
	if err != nil {
		return err
	}

	addr := uint32(textBuffer) + 1
	if m.header.Version() >= 5 {
		addr++
	}

	n := len(lower)
	if n > int(maxLen) {
		n = int(maxLen)
	}
	for i := 0; i < n; i++ {
		if err := m.mem.WriteByte(addr+uint32(i), lower[i]); err != nil {
			return err
		}
	}

	if m.header.Version() >= 5 {
		return m.mem.WriteByte(uint32(textBuffer)+1, uint8(n))
	}
	return m.mem.WriteByte(addr+uint32(n), 0)
}

// readChar implements read_char (VAR:22): a single-character read,
// with the same timeout/interrupt contract as sread.
func (m *VM) readChar(frame *Frame, inst *instruction, values []uint16) error {
	var timeoutTenths int
	var routine uint32
	if len(values) > 1 {
		timeoutTenths = int(values[1])
	}
	if len(values) > 2 {
		routine = m.packedAddress(uint32(values[2]), false)
	}

	for {
		resp := m.host.Send(InputRequest{MaxLength: 0, TimeoutTenths: timeoutTenths})
		ir, _ := resp.(InputResponse)

		if ir.Timeout && routine != 0 {
			abort, err := m.callRoutineCapturing(routine)
			if err != nil {
				return err
			}
			if abort != 0 {
				return m.store(frame, 0)
			}
			continue
		}

		return m.store(frame, uint16(ir.Char))
	}
}
