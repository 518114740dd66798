// Package memory implements the Z-machine's raw byte store: the
// dynamic/static/high partitioning, big-endian word access, the checksum
// used by VERIFY, and the compressed delta snapshot format used by
// Quetzal save files (the in-memory undo stack keeps uncompressed
// copies of dynamic memory).
package memory

import (
	"github.com/cairnwright/zvm/internal/zerror"
)

// Memory is the flat byte image of a loaded story file, partitioned by two
// header-declared boundaries into dynamic (writable), static (read-only
// after load) and high (read-only, packed-addressable) spans. Bytes past
// staticMark are never mutated by WriteByte/WriteWord; the header
// component still writes into dynamic memory directly through this type.
type Memory struct {
	bytes      []byte
	staticMark uint32 // first address not in dynamic memory
	fileLength uint32 // length as declared by the header, may be < len(bytes)
	baseline   []byte // pristine copy of dynamic memory at load time
}

// New wraps storyBytes as a Memory. staticMark is the story's declared
// static-memory base address (header offset 0x0e) and fileLength is the
// declared file length (header offset 0x1a, scaled by version).
func New(storyBytes []byte, staticMark uint32, fileLength uint32) *Memory {
	if staticMark > uint32(len(storyBytes)) {
		staticMark = uint32(len(storyBytes))
	}
	baseline := make([]byte, staticMark)
	copy(baseline, storyBytes[:staticMark])

	return &Memory{
		bytes:      storyBytes,
		staticMark: staticMark,
		fileLength: fileLength,
		baseline:   baseline,
	}
}

// Len returns the number of addressable bytes backing this story, which
// may exceed the header-declared FileLength (padding is common).
func (m *Memory) Len() uint32 {
	return uint32(len(m.bytes))
}

// FileLength returns the header-declared file length.
func (m *Memory) FileLength() uint32 {
	return m.fileLength
}

// StaticMark returns the first address outside dynamic memory.
func (m *Memory) StaticMark() uint32 {
	return m.staticMark
}

func (m *Memory) checkRead(addr uint32) error {
	if addr >= uint32(len(m.bytes)) {
		return zerror.New(zerror.KindOutOfBounds, "read at %#x past end of memory (%#x bytes)", addr, len(m.bytes))
	}
	return nil
}

// ReadByte reads a single byte. Fails with KindOutOfBounds past the end
// of the loaded image.
func (m *Memory) ReadByte(addr uint32) (uint8, error) {
	if err := m.checkRead(addr); err != nil {
		return 0, err
	}
	return m.bytes[addr], nil
}

// ReadWord reads a big-endian 16-bit word.
func (m *Memory) ReadWord(addr uint32) (uint16, error) {
	if err := m.checkRead(addr + 1); err != nil {
		return 0, err
	}
	return uint16(m.bytes[addr])<<8 | uint16(m.bytes[addr+1]), nil
}

// WriteByte writes a single byte. Fails with KindIllegalWrite at or past
// the static boundary, or KindOutOfBounds past the end of the image.
func (m *Memory) WriteByte(addr uint32, v uint8) error {
	if addr >= m.staticMark {
		return zerror.New(zerror.KindIllegalWrite, "write at %#x is at or past static memory boundary %#x", addr, m.staticMark)
	}
	if err := m.checkRead(addr); err != nil {
		return err
	}
	m.bytes[addr] = v
	return nil
}

// WriteWord writes a big-endian 16-bit word, subject to the same bounds
// as WriteByte.
func (m *Memory) WriteWord(addr uint32, v uint16) error {
	if addr+1 >= m.staticMark {
		return zerror.New(zerror.KindIllegalWrite, "write at %#x is at or past static memory boundary %#x", addr, m.staticMark)
	}
	if err := m.checkRead(addr + 1); err != nil {
		return err
	}
	m.bytes[addr] = byte(v >> 8)
	m.bytes[addr+1] = byte(v)
	return nil
}

// WriteHeaderByte bypasses the static-memory restriction; only the header
// component may call this, to update capability flags that live in the
// (always dynamic) first 64 bytes even if static memory happens to start
// before them in a malformed file.
func (m *Memory) WriteHeaderByte(addr uint32, v uint8) {
	m.bytes[addr] = v
}

// WriteHeaderWord is WriteHeaderByte's word-sized counterpart.
func (m *Memory) WriteHeaderWord(addr uint32, v uint16) {
	m.bytes[addr] = byte(v >> 8)
	m.bytes[addr+1] = byte(v)
}

// Slice returns the raw bytes in [addr, addr+n), without a copy. Callers
// that retain the slice across a write must copy it first.
func (m *Memory) Slice(addr, n uint32) ([]byte, error) {
	if addr+n > uint32(len(m.bytes)) {
		return nil, zerror.New(zerror.KindOutOfBounds, "slice [%#x,%#x) past end of memory", addr, addr+n)
	}
	return m.bytes[addr : addr+n], nil
}

// Checksum is the 16-bit unsigned sum of all story bytes past the header,
// modulo 0x10000, used by the VERIFY opcode.
func (m *Memory) Checksum() uint16 {
	var sum uint16
	end := m.fileLength
	if end > uint32(len(m.bytes)) {
		end = uint32(len(m.bytes))
	}
	for i := uint32(0x40); i < end; i++ {
		sum += uint16(m.bytes[i])
	}
	return sum
}

// DynamicImage returns a copy of the current dynamic memory region.
func (m *Memory) DynamicImage() []byte {
	out := make([]byte, m.staticMark)
	copy(out, m.bytes[:m.staticMark])
	return out
}

// Compress encodes the XOR delta between the current dynamic memory and
// the load-time baseline, run-length-encoding zero runs: each zero byte
// is followed by a count byte (0..255) meaning "that many additional
// zeros" (so a run of 1..256 zero bytes collapses to 2 output bytes).
// This is the Quetzal CMem payload format (spec §4.I).
func (m *Memory) Compress() []byte {
	var out []byte
	i := uint32(0)
	for i < m.staticMark {
		delta := m.bytes[i] ^ m.baseline[i]
		if delta != 0 {
			out = append(out, delta)
			i++
			continue
		}

		// Count additional zero bytes beyond this one, up to 255 more.
		run := uint32(0)
		for i+1+run < m.staticMark && run < 255 && (m.bytes[i+1+run]^m.baseline[i+1+run]) == 0 {
			run++
		}
		out = append(out, 0, uint8(run))
		i += 1 + run
	}
	return out
}

// RestoreCompressed is the inverse of Compress: it XORs the decoded delta
// back onto the baseline to reconstruct dynamic memory.
func (m *Memory) RestoreCompressed(data []byte) error {
	result := make([]byte, m.staticMark)
	copy(result, m.baseline)

	pos := uint32(0)
	for i := 0; i < len(data); i++ {
		if pos >= m.staticMark {
			break
		}
		b := data[i]
		if b != 0 {
			result[pos] ^= b
			pos++
			continue
		}
		if i+1 >= len(data) {
			return zerror.New(zerror.KindCorruptSave, "truncated zero run in compressed memory chunk")
		}
		i++
		count := int(data[i]) + 1
		pos += uint32(count)
	}

	copy(m.bytes[:m.staticMark], result)
	return nil
}

// Restore replaces dynamic memory with an uncompressed image, which must
// be exactly StaticMark() bytes long (the Quetzal UMem case).
func (m *Memory) Restore(raw []byte) error {
	if uint32(len(raw)) != m.staticMark {
		return zerror.New(zerror.KindCorruptSave, "uncompressed restore image is %d bytes, expected %d", len(raw), m.staticMark)
	}
	copy(m.bytes[:m.staticMark], raw)
	return nil
}

// Reset copies the load-time baseline back over dynamic memory, as used
// by RESTART.
func (m *Memory) Reset() {
	copy(m.bytes[:m.staticMark], m.baseline)
}
