// Package header provides typed accessors over the Z-machine's 64-byte
// story header: the fixed fields by offset, and the Flag1/Flag2
// capability bits, including the boot/restart initialization rules of
// spec §4.B.
package header

import "github.com/cairnwright/zvm/internal/memory"

// Offset names the fixed byte/word fields of the 64-byte header. Values
// match the Z-machine standard's header layout.
type Offset uint32

const (
	OffsetVersion             Offset = 0x00
	OffsetFlags1              Offset = 0x01
	OffsetRelease             Offset = 0x02
	OffsetHighMemoryBase      Offset = 0x04
	OffsetInitialPC           Offset = 0x06
	OffsetDictionaryBase      Offset = 0x08
	OffsetObjectTableBase     Offset = 0x0a
	OffsetGlobalVariableBase  Offset = 0x0c
	OffsetStaticMemoryBase    Offset = 0x0e
	OffsetFlags2              Offset = 0x10
	OffsetSerialNumber        Offset = 0x12 // 6 ASCII bytes
	OffsetAbbreviationsBase   Offset = 0x18
	OffsetFileLength          Offset = 0x1a
	OffsetChecksum            Offset = 0x1c
	OffsetInterpreterNumber   Offset = 0x1e
	OffsetInterpreterVersion  Offset = 0x1f
	OffsetScreenHeightLines   Offset = 0x20
	OffsetScreenWidthChars    Offset = 0x21
	OffsetScreenWidthUnits    Offset = 0x22
	OffsetScreenHeightUnits   Offset = 0x24
	OffsetFontHeight          Offset = 0x26 // font width on v6, height otherwise
	OffsetFontWidth           Offset = 0x27
	OffsetRoutinesOffset      Offset = 0x28 // v7 only
	OffsetStringOffset        Offset = 0x2a // v7 only
	OffsetDefaultBackground   Offset = 0x2c
	OffsetDefaultForeground   Offset = 0x2d
	OffsetTerminatingCharBase Offset = 0x2e
	OffsetOutputStream3Width  Offset = 0x30
	OffsetStandardRevision    Offset = 0x32
	OffsetAlphabetTableBase   Offset = 0x34
	OffsetExtensionTableBase  Offset = 0x36
)

// Flag1 bits, version dependent (v3: status line/split/pitch; v4+: styles).
const (
	Flags1StatusLineType    uint8 = 0b0000_0010 // v3: 0=score/turns 1=hours:mins
	Flags1StatusUnavailable uint8 = 0b0001_0000 // v3
	Flags1SplitAvailable    uint8 = 0b0010_0000
	Flags1VariablePitch     uint8 = 0b0100_0000 // v3: default font is variable pitch

	Flags1ColorsAvailable  uint8 = 0b0000_0001 // v4+
	Flags1PictureAvailable uint8 = 0b0000_0010 // v4+
	Flags1BoldAvailable    uint8 = 0b0000_0100 // v4+
	Flags1ItalicAvailable  uint8 = 0b0000_1000 // v4+
	Flags1FixedAvailable   uint8 = 0b0001_0000 // v4+
	Flags1TimedInput       uint8 = 0b1000_0000 // v4+
	Flags1SoundAvailable   uint8 = 0b0010_0000 // v4+ (also split-available bit reused in v3)
)

// Flag2 request bits (game asks the host for a capability / stream).
const (
	Flags2Transcript uint16 = 0b0000_0001
	Flags2FixedPitch uint16 = 0b0000_0010
	Flags2Pictures   uint16 = 0b0000_1000
	Flags2Sounds     uint16 = 0b0001_0000
	Flags2Mouse      uint16 = 0b0010_0000
)

// Capabilities describes what the Interpreter Host actually supports;
// the header uses this to clear bits the game must not rely on and set
// the bits the host claims, per spec §4.B rule (a)/(b).
type Capabilities struct {
	Colors       bool
	Bold         bool
	Italic       bool
	FixedPitch   bool
	TimedInput   bool
	Sound        bool
	Pictures     bool
	SplitScreen  bool
	VariablePitch bool
	ScreenRows   uint8
	ScreenCols   uint8
	ScreenWidthUnits  uint16
	ScreenHeightUnits uint16
	FontWidth  uint8
	FontHeight uint8
}

// Header is a thin typed view over a story's Memory.
type Header struct {
	mem *memory.Memory
}

// New wraps mem as a Header view. mem must already contain a loaded story.
func New(mem *memory.Memory) *Header {
	return &Header{mem: mem}
}

func (h *Header) byte(off Offset) uint8 {
	v, _ := h.mem.ReadByte(uint32(off))
	return v
}

func (h *Header) word(off Offset) uint16 {
	v, _ := h.mem.ReadWord(uint32(off))
	return v
}

// Version returns the story file's Z-machine version byte.
func (h *Header) Version() uint8 { return h.byte(OffsetVersion) }

// Release returns the release number.
func (h *Header) Release() uint16 { return h.word(OffsetRelease) }

// SerialNumber returns the six-byte ASCII serial code.
func (h *Header) SerialNumber() [6]byte {
	var out [6]byte
	for i := 0; i < 6; i++ {
		out[i] = h.byte(Offset(uint32(OffsetSerialNumber) + uint32(i)))
	}
	return out
}

// Checksum returns the header-declared checksum (for VERIFY).
func (h *Header) Checksum() uint16 { return h.word(OffsetChecksum) }

// HighMemoryBase returns the start of high (packed-addressable) memory.
func (h *Header) HighMemoryBase() uint16 { return h.word(OffsetHighMemoryBase) }

// InitialPC returns the byte address of the first instruction (v3) or
// the packed address of the entry routine (v4+).
func (h *Header) InitialPC() uint16 { return h.word(OffsetInitialPC) }

// DictionaryBase returns the address of the dictionary table.
func (h *Header) DictionaryBase() uint16 { return h.word(OffsetDictionaryBase) }

// ObjectTableBase returns the address of the object table.
func (h *Header) ObjectTableBase() uint16 { return h.word(OffsetObjectTableBase) }

// GlobalVariableBase returns the base address of the global variable table.
func (h *Header) GlobalVariableBase() uint16 { return h.word(OffsetGlobalVariableBase) }

// StaticMemoryBase returns the dynamic/static boundary address.
func (h *Header) StaticMemoryBase() uint16 { return h.word(OffsetStaticMemoryBase) }

// AbbreviationsBase returns the address of the abbreviations table.
func (h *Header) AbbreviationsBase() uint16 { return h.word(OffsetAbbreviationsBase) }

// RoutinesOffset returns the v7 routine packed-address offset (0 elsewhere).
func (h *Header) RoutinesOffset() uint16 { return h.word(OffsetRoutinesOffset) }

// StringOffset returns the v7 string packed-address offset (0 elsewhere).
func (h *Header) StringOffset() uint16 { return h.word(OffsetStringOffset) }

// TerminatingCharTableBase returns the v5+ custom terminators table address.
func (h *Header) TerminatingCharTableBase() uint16 { return h.word(OffsetTerminatingCharBase) }

// FileLength returns the story's declared file length, scaled by version
// (the raw header word is a fraction of the real byte length).
func (h *Header) FileLength() uint32 {
	raw := uint32(h.word(OffsetFileLength))
	switch {
	case h.Version() <= 3:
		return raw * 2
	case h.Version() <= 5:
		return raw * 4
	default:
		return raw * 8
	}
}

// Flags1 returns the raw Flag1 byte.
func (h *Header) Flags1() uint8 { return h.byte(OffsetFlags1) }

// Flags2 returns the raw Flag2 word.
func (h *Header) Flags2() uint16 { return h.word(OffsetFlags2) }

// SetFlags2 writes the Flag2 word verbatim; used to preserve game-requested
// transcript/fixed-pitch state across restore (spec §4.B rule d).
func (h *Header) SetFlags2(v uint16) { h.mem.WriteHeaderWord(uint32(OffsetFlags2), v) }

// Init applies the boot/restart initialization rules of spec §4.B:
// clear unsupported feature bits, set the bits the host actually
// provides, write screen geometry/colors/font metrics, and stamp the
// interpreter identity and standard-revision fields. Flag2 is left
// untouched so the game's own transcript/fixed-pitch requests survive a
// restart (they are orthogonal to capability advertisement).
func (h *Header) Init(caps Capabilities) {
	v := h.Version()

	var flags1 uint8
	if v <= 3 {
		if caps.SplitScreen {
			flags1 |= Flags1SplitAvailable
		}
		if caps.VariablePitch {
			flags1 |= Flags1VariablePitch
		}
	} else {
		if caps.Colors {
			flags1 |= Flags1ColorsAvailable
		}
		if caps.Pictures {
			flags1 |= Flags1PictureAvailable
		}
		if caps.Bold {
			flags1 |= Flags1BoldAvailable
		}
		if caps.Italic {
			flags1 |= Flags1ItalicAvailable
		}
		if caps.FixedPitch {
			flags1 |= Flags1FixedAvailable
		}
		if caps.TimedInput {
			flags1 |= Flags1TimedInput
		}
		if caps.Sound && v >= 4 {
			flags1 |= Flags1SoundAvailable
		}
	}
	h.mem.WriteHeaderByte(uint32(OffsetFlags1), flags1)

	h.mem.WriteHeaderByte(uint32(OffsetInterpreterNumber), 6) // IBM PC, closest text-only match
	h.mem.WriteHeaderByte(uint32(OffsetInterpreterVersion), 'Z')

	h.mem.WriteHeaderByte(uint32(OffsetScreenHeightLines), caps.ScreenRows)
	h.mem.WriteHeaderByte(uint32(OffsetScreenWidthChars), caps.ScreenCols)
	h.mem.WriteHeaderWord(uint32(OffsetScreenWidthUnits), caps.ScreenWidthUnits)
	h.mem.WriteHeaderWord(uint32(OffsetScreenHeightUnits), caps.ScreenHeightUnits)
	h.mem.WriteHeaderByte(uint32(OffsetFontHeight), caps.FontHeight)
	h.mem.WriteHeaderByte(uint32(OffsetFontWidth), caps.FontWidth)

	h.mem.WriteHeaderByte(uint32(OffsetDefaultBackground), 2) // black
	h.mem.WriteHeaderByte(uint32(OffsetDefaultForeground), 9) // white

	h.mem.WriteHeaderWord(uint32(OffsetStandardRevision), 0x0100)
}
