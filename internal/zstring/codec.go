// Package zstring implements the Z-machine's ZSCII text codec: unpacking
// 5-bit z-chars from 16-bit words, alphabet shifts, abbreviation
// expansion, the 10-bit ZSCII escape, and the inverse encoding used for
// dictionary word lookup (spec §4.C).
package zstring

import (
	"strings"

	"github.com/cairnwright/zvm/internal/memory"
	"github.com/cairnwright/zvm/internal/zerror"
)

// shiftA1 and shiftA2 are the single-shot alphabet-shift z-chars (v3+).
// v1/v2's locking shifts are out of scope.
const (
	zcharAbbrev0 = 1
	zcharAbbrev1 = 2
	zcharAbbrev2 = 3
	shiftA1      = 4
	shiftA2      = 5
	zsciiEscape  = 6 // only meaningful in alphabet A2
)

// Decoder decodes packed Z-machine strings against a story's alphabet
// and abbreviation tables.
type Decoder struct {
	mem            *memory.Memory
	alphabets      *Alphabets
	abbrevBase     uint16
	extensionTable uint16
}

// NewDecoder builds a Decoder bound to mem, using alphabets for z-char
// lookup and abbrevBase (0 if the story has none) for abbreviation
// expansion.
func NewDecoder(mem *memory.Memory, alphabets *Alphabets, abbrevBase uint16, extensionTableBase uint16) *Decoder {
	return &Decoder{mem: mem, alphabets: alphabets, abbrevBase: abbrevBase, extensionTable: extensionTableBase}
}

// Decode reads a packed string starting at addr and returns its decoded
// text plus the byte address immediately following the terminating word.
func (d *Decoder) Decode(addr uint32) (string, uint32, error) {
	var sb strings.Builder
	if err := d.decodeInto(&sb, addr, 0, &endTracker{}); err != nil {
		return "", 0, err
	}
	end, err := d.stringEnd(addr)
	if err != nil {
		return "", 0, err
	}
	return sb.String(), end, nil
}

// endTracker guards against abbreviations that (illegally) reference
// other abbreviations, which would otherwise recurse forever.
type endTracker struct {
	inAbbreviation bool
}

// stringEnd scans forward to find the address just past the word whose
// high bit (the terminator bit) is set.
func (d *Decoder) stringEnd(addr uint32) (uint32, error) {
	a := addr
	for {
		w, err := d.mem.ReadWord(a)
		if err != nil {
			return 0, err
		}
		a += 2
		if w&0x8000 != 0 {
			return a, nil
		}
	}
}

func (d *Decoder) decodeInto(sb *strings.Builder, addr uint32, alphabet int, tracker *endTracker) error {
	a := addr
	// zsciiStage: 0 = not in an escape, 1 = just saw z-char 6 (awaiting
	// high 5 bits), 2 = have high 5 bits (awaiting low 5 bits).
	zsciiStage := 0
	var zsciiHigh uint8
	pendingAbbrevTable := 0

	for {
		w, err := d.mem.ReadWord(a)
		if err != nil {
			return err
		}
		a += 2
		terminal := w&0x8000 != 0

		zchars := [3]uint8{
			uint8((w >> 10) & 0x1f),
			uint8((w >> 5) & 0x1f),
			uint8(w & 0x1f),
		}

		for _, zc := range zchars {
			switch {
			case zsciiStage == 1:
				zsciiHigh = zc
				zsciiStage = 2

			case zsciiStage == 2:
				code := zsciiHigh<<5 | zc
				if r, ok := ZsciiToUnicode(code, d.mem, d.extensionTable); ok {
					sb.WriteRune(r)
				}
				zsciiStage = 0
				alphabet = 0

			case pendingAbbrevTable > 0:
				if tracker.inAbbreviation {
					return zerror.New(zerror.KindMalformedInstruction, "abbreviation references another abbreviation")
				}
				if err := d.expandAbbreviation(sb, pendingAbbrevTable, int(zc), tracker); err != nil {
					return err
				}
				pendingAbbrevTable = 0
				alphabet = 0

			case zc == zcharAbbrev0 && d.abbrevBase != 0:
				pendingAbbrevTable = 1
			case zc == zcharAbbrev1 && d.abbrevBase != 0:
				pendingAbbrevTable = 2
			case zc == zcharAbbrev2 && d.abbrevBase != 0:
				pendingAbbrevTable = 3

			case zc == shiftA1:
				alphabet = 1
			case zc == shiftA2:
				alphabet = 2

			case zc == 0:
				sb.WriteByte(' ')
				alphabet = 0

			case alphabet == 2 && zc == zsciiEscape:
				zsciiStage = 1 // next two z-chars build the 10-bit code

			default:
				table := d.alphabets.table(alphabet)
				idx := int(zc) - 6
				if idx >= 0 && idx < len(table) {
					sb.WriteByte(table[idx])
				}
				alphabet = 0
			}
		}

		if terminal {
			return nil
		}
	}
}

// expandAbbreviation decodes abbreviation (table, idx) into sb. Per spec
// §4.C the abbreviation table stores word addresses (byte addr = word*2)
// at abbrevBase + 2*(32*(table-1)+idx).
func (d *Decoder) expandAbbreviation(sb *strings.Builder, table int, idx int, tracker *endTracker) error {
	entryAddr := uint32(d.abbrevBase) + 2*uint32(32*(table-1)+idx)
	wordAddr, err := d.mem.ReadWord(entryAddr)
	if err != nil {
		return err
	}
	tracker.inAbbreviation = true
	defer func() { tracker.inAbbreviation = false }()
	return d.decodeInto(sb, uint32(wordAddr)*2, 0, tracker)
}

// Encode converts s into a packed dictionary-entry encoding: z-chars
// padded/truncated to maxZchars (6 for v1-3, 9 for v4+), packed 3 per
// word with the terminator bit on the final word.
func (d *Decoder) Encode(s string, maxZchars int) []uint16 {
	zchars := make([]uint8, 0, maxZchars)
	for _, r := range s {
		if len(zchars) >= maxZchars {
			break
		}
		zchars = append(zchars, d.encodeRune(r)...)
	}
	for len(zchars) < maxZchars {
		zchars = append(zchars, 5) // pad with shift-A2/5 (spec-standard pad char)
	}
	if len(zchars) > maxZchars {
		zchars = zchars[:maxZchars]
	}

	words := make([]uint16, 0, (maxZchars+2)/3)
	for i := 0; i < len(zchars); i += 3 {
		var triplet [3]uint8
		for j := 0; j < 3 && i+j < len(zchars); j++ {
			triplet[j] = zchars[i+j]
		}
		w := uint16(triplet[0])<<10 | uint16(triplet[1])<<5 | uint16(triplet[2])
		words = append(words, w)
	}
	if len(words) > 0 {
		words[len(words)-1] |= 0x8000
	}
	return words
}

// encodeRune returns the z-char sequence needed to emit r: a single
// alphabet index, an alphabet-2 shift followed by the index, or (for
// characters outside all three alphabets) the 10-bit ZSCII escape
// sequence (shift-A2, z-char 6, then two 5-bit halves of the code).
func (d *Decoder) encodeRune(r rune) []uint8 {
	if idx, ok := indexOf(d.alphabets.A0, byte(r)); ok {
		return []uint8{uint8(idx + 6)}
	}
	if idx, ok := indexOf(d.alphabets.A1, byte(r)); ok {
		return []uint8{shiftA1, uint8(idx + 6)}
	}
	if r == ' ' {
		return []uint8{0}
	}
	if idx, ok := indexOf(d.alphabets.A2, byte(r)); ok {
		return []uint8{shiftA2, uint8(idx + 6)}
	}
	code, ok := UnicodeToZscii(r, d.mem, d.extensionTable)
	if !ok {
		code = '?'
	}
	return []uint8{shiftA2, zsciiEscape, code >> 5, code & 0x1f}
}

func indexOf(table [26]byte, b byte) (int, bool) {
	for i, t := range table {
		if t == b {
			return i, true
		}
	}
	return -1, false
}
