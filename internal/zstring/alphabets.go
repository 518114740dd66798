package zstring

import "github.com/cairnwright/zvm/internal/memory"

// Alphabets holds the three 26-entry z-char tables (A0 lowercase, A1
// uppercase, A2 punctuation/digits/escape) used to decode and encode
// strings. Index i of a table is reached by z-char i+6.
type Alphabets struct {
	A0 [26]byte
	A1 [26]byte
	A2 [26]byte
}

var defaultA0 = [26]byte{'a', 'b', 'c', 'd', 'e', 'f', 'g', 'h', 'i', 'j', 'k', 'l', 'm', 'n', 'o', 'p', 'q', 'r', 's', 't', 'u', 'v', 'w', 'x', 'y', 'z'}
var defaultA1 = [26]byte{'A', 'B', 'C', 'D', 'E', 'F', 'G', 'H', 'I', 'J', 'K', 'L', 'M', 'N', 'O', 'P', 'Q', 'R', 'S', 'T', 'U', 'V', 'W', 'X', 'Y', 'Z'}

// defaultA2[0] ('A2[zchar 6]') is never reached in practice: z-char 6 in
// alphabet A2 is always intercepted as the 10-bit ZSCII escape before
// generic alphabet indexing applies.
var defaultA2 = [26]byte{' ', '\n', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9', '.', ',', '!', '?', '_', '#', '\'', '"', '/', '\\', '-', ':', '(', ')'}

// DefaultAlphabets returns the standard A0/A1/A2 tables.
func DefaultAlphabets() *Alphabets {
	return &Alphabets{A0: defaultA0, A1: defaultA1, A2: defaultA2}
}

// LoadAlphabets returns the default alphabet tables, or the story's
// custom tables if altTableBase (header offset 0x34, v5+ only) is
// nonzero: three consecutive 26-byte tables (A0, A1, A2).
func LoadAlphabets(mem *memory.Memory, altTableBase uint16) *Alphabets {
	if altTableBase == 0 {
		return DefaultAlphabets()
	}

	a := &Alphabets{}
	base := uint32(altTableBase)
	for i := 0; i < 26; i++ {
		a.A0[i], _ = mem.ReadByte(base + uint32(i))
		a.A1[i], _ = mem.ReadByte(base + 26 + uint32(i))
		a.A2[i], _ = mem.ReadByte(base + 52 + uint32(i))
	}
	return a
}

func (a *Alphabets) table(alphabet int) [26]byte {
	switch alphabet {
	case 0:
		return a.A0
	case 1:
		return a.A1
	default:
		return a.A2
	}
}
