package vm

import "github.com/cairnwright/zvm/internal/zerror"

// outputStream selects or deselects one of the four output streams.
// Selecting stream 3 (memory redirection) pushes a new redirection
// frame at the address given by the second operand; deselecting it
// pops the frame and writes the captured byte count back to its base.
func (m *VM) outputStream(n int16, tableAddr uint16) error {
	switch {
	case n == 1:
		m.streams.screen = true
	case n == -1:
		m.streams.screen = false
	case n == 2:
		m.streams.transcript = true
	case n == -2:
		m.streams.transcript = false
	case n == 3:
		m.streams.memory = append(m.streams.memory, memoryStream{base: uint32(tableAddr) + 2, ptr: uint32(tableAddr) + 2})
	case n == -3:
		if len(m.streams.memory) == 0 {
			return zerror.New(zerror.KindIllegalWrite, "output_stream -3 with no active memory stream")
		}
		top := m.streams.memory[len(m.streams.memory)-1]
		m.streams.memory = m.streams.memory[:len(m.streams.memory)-1]
		count := uint16(top.ptr - top.base)
		return m.mem.WriteWord(top.base-2, count)
	case n == 4:
		m.streams.commands = true
	case n == -4:
		m.streams.commands = false
	}
	return nil
}

// scanTable searches a table of words or bytes for a value, per
// scan_table's optional form byte (bit 7 = word-sized entries, low
// bits = entry length in bytes when not the default of 2).
func (m *VM) scanTable(frame *Frame, values []uint16) error {
	needle := values[0]
	tableAddr := uint32(values[1])
	length := values[2]
	form := uint16(0x82)
	if len(values) > 3 {
		form = values[3]
	}
	wordSized := form&0x80 != 0
	entrySize := uint32(form & 0x7f)
	if entrySize == 0 {
		entrySize = 2
	}

	addr := tableAddr
	for i := uint16(0); i < length; i++ {
		var v uint16
		var err error
		if wordSized {
			v, err = m.mem.ReadWord(addr)
		} else {
			var b uint8
			b, err = m.mem.ReadByte(addr)
			v = uint16(b)
		}
		if err != nil {
			return err
		}
		if v == needle {
			if err := m.store(frame, uint16(addr)); err != nil {
				return err
			}
			return m.branch(frame, true)
		}
		addr += entrySize
	}
	if err := m.store(frame, 0); err != nil {
		return err
	}
	return m.branch(frame, false)
}

// copyTable copies size bytes from src to dest. A negative size forces
// a forward copy even when the regions overlap (the standard's
// documented override of the default backward-safe copy); size == 0
// copies nothing. dest == 0 zeroes |size| bytes at src.
func (m *VM) copyTable(src, dest uint16, size int16) error {
	n := int(size)
	forceForward := n < 0
	if forceForward {
		n = -n
	}

	if dest == 0 {
		for i := 0; i < n; i++ {
			if err := m.mem.WriteByte(uint32(src)+uint32(i), 0); err != nil {
				return err
			}
		}
		return nil
	}

	buf, err := m.mem.Slice(uint32(src), uint32(n))
	if err != nil {
		return err
	}

	if !forceForward && dest > src && uint32(dest) < uint32(src)+uint32(n) {
		for i := n - 1; i >= 0; i-- {
			if err := m.mem.WriteByte(uint32(dest)+uint32(i), buf[i]); err != nil {
				return err
			}
		}
		return nil
	}

	for i := 0; i < n; i++ {
		if err := m.mem.WriteByte(uint32(dest)+uint32(i), buf[i]); err != nil {
			return err
		}
	}
	return nil
}

// printTable prints a rectangular block of ZSCII text: width bytes per
// row, height rows (default 1), skipping `skip` bytes between rows
// (default 0), starting at tableAddr. Used for in-window formatted
// text blocks.
func (m *VM) printTable(tableAddr, width, height, skip uint16) error {
	if height == 0 {
		height = 1
	}
	addr := uint32(tableAddr)
	for row := uint16(0); row < height; row++ {
		rowBytes, err := m.mem.Slice(addr, uint32(width))
		if err != nil {
			return err
		}
		if err := m.print(string(rowBytes)); err != nil {
			return err
		}
		if row+1 < height {
			if err := m.print("\n"); err != nil {
				return err
			}
		}
		addr += uint32(width) + uint32(skip)
	}
	return nil
}

// encodeText encodes length characters of the text buffer at
// (textAddr+from) into the dictionary's packed word format at
// codedAddr, for the game's own use (typically to search its own
// tables rather than the standard dictionary).
func (m *VM) encodeText(textAddr, length, from, codedAddr uint16) error {
	raw, err := m.mem.Slice(uint32(textAddr)+uint32(from), uint32(length))
	if err != nil {
		return err
	}
	maxZchars := 6
	if m.header.Version() > 3 {
		maxZchars = 9
	}
	words := m.decoder.Encode(string(raw), maxZchars)
	addr := uint32(codedAddr)
	for _, w := range words {
		if err := m.mem.WriteWord(addr, w); err != nil {
			return err
		}
		addr += 2
	}
	return nil
}

// tokenise runs the dictionary lexer over the text buffer at
// textBuffer and fills the parse buffer at parseBuffer. appendOnly
// corresponds to tokenise's optional fourth operand.
func (m *VM) tokenise(textBuffer, parseBuffer uint16, appendOnly bool) error {
	raw, err := m.readTextBuffer(textBuffer)
	if err != nil {
		return err
	}
	return m.dict.WriteParseBuffer(m.mem, raw, textBuffer, parseBuffer, m.header.Version(), appendOnly)
}

// readTextBuffer extracts the null/length-terminated text already
// stored in a text buffer (used by tokenise, which runs against text
// already placed there rather than freshly typed input).
func (m *VM) readTextBuffer(textBuffer uint16) (string, error) {
	addr := uint32(textBuffer) + 1
	version := m.header.Version()
	if version >= 5 {
		n, err := m.mem.ReadByte(uint32(textBuffer) + 1)
		if err != nil {
			return "", err
		}
		bytes, err := m.mem.Slice(addr+1, uint32(n))
		return string(bytes), err
	}

	var out []byte
	for {
		b, err := m.mem.ReadByte(addr)
		if err != nil {
			return "", err
		}
		if b == 0 {
			break
		}
		out = append(out, b)
		addr++
	}
	return string(out), nil
}
