// Package dictionary parses the story's word dictionary and implements
// the lexer that splits raw player input into tokens for the parsing
// opcodes (spec §4.D).
package dictionary

import (
	"bytes"

	"github.com/cairnwright/zvm/internal/memory"
	"github.com/cairnwright/zvm/internal/zstring"
)

// Entry is one dictionary word: its encoded z-chars (used for equality
// lookups against tokenized input), its decoded text, and any trailing
// data bytes the game attaches to the entry (verb numbers etc).
type Entry struct {
	Address     uint16
	EncodedWord []uint16
	DecodedWord string
	Data        []byte
}

// Dictionary is a story's parsed word list plus its declared word
// separators (punctuation that splits tokens even without whitespace).
type Dictionary struct {
	Separators []byte
	entrySize  uint8
	sorted     bool
	entries    []Entry
}

// Parse reads the dictionary table at base. version selects the 2-word
// (4-byte, v1-3) or 3-word (6-byte, v4+) encoded-word size.
func Parse(mem *memory.Memory, base uint16, version uint8, alphabets *zstring.Alphabets, abbrevBase uint16) (*Dictionary, error) {
	addr := uint32(base)
	numSeparators, err := mem.ReadByte(addr)
	if err != nil {
		return nil, err
	}
	addr++

	separators := make([]byte, numSeparators)
	for i := range separators {
		b, err := mem.ReadByte(addr)
		if err != nil {
			return nil, err
		}
		separators[i] = b
		addr++
	}

	entrySize, err := mem.ReadByte(addr)
	addr++
	if err != nil {
		return nil, err
	}

	rawCount, err := mem.ReadWord(addr)
	addr += 2
	if err != nil {
		return nil, err
	}
	count := int16(rawCount)
	sorted := count >= 0
	if !sorted {
		count = -count
	}

	wordWords := 2
	if version > 3 {
		wordWords = 3
	}

	dec := zstring.NewDecoder(mem, alphabets, abbrevBase, 0)

	entries := make([]Entry, count)
	entryAddr := addr
	for i := 0; i < int(count); i++ {
		encoded := make([]uint16, wordWords)
		for w := 0; w < wordWords; w++ {
			v, err := mem.ReadWord(entryAddr + uint32(w*2))
			if err != nil {
				return nil, err
			}
			encoded[w] = v
		}
		decoded, _, err := dec.Decode(entryAddr)
		if err != nil {
			return nil, err
		}
		data, err := mem.Slice(entryAddr+uint32(wordWords*2), uint32(int(entrySize)-wordWords*2))
		if err != nil {
			return nil, err
		}
		entries[i] = Entry{
			Address:     uint16(entryAddr),
			EncodedWord: encoded,
			DecodedWord: decoded,
			Data:        data,
		}
		entryAddr += uint32(entrySize)
	}

	return &Dictionary{Separators: separators, entrySize: entrySize, sorted: sorted, entries: entries}, nil
}

// EntrySize returns the byte size of one dictionary record.
func (d *Dictionary) EntrySize() uint8 { return d.entrySize }

// Find returns the dictionary entry whose encoded word matches encoded,
// or nil if the word is not in the dictionary. Uses binary search when
// the table is declared sorted (count >= 0 in the header), linear
// search otherwise, per spec §4.D.
func (d *Dictionary) Find(encoded []uint16) *Entry {
	if d.sorted {
		lo, hi := 0, len(d.entries)-1
		for lo <= hi {
			mid := (lo + hi) / 2
			cmp := compareWords(d.entries[mid].EncodedWord, encoded)
			switch {
			case cmp == 0:
				return &d.entries[mid]
			case cmp < 0:
				lo = mid + 1
			default:
				hi = mid - 1
			}
		}
		return nil
	}

	for i := range d.entries {
		if wordsEqual(d.entries[i].EncodedWord, encoded) {
			return &d.entries[i]
		}
	}
	return nil
}

func wordsEqual(a, b []uint16) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func compareWords(a, b []uint16) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	return 0
}

// isSeparator reports whether b is whitespace or one of the
// dictionary's declared separator characters, either of which ends a
// token.
func (d *Dictionary) isSeparator(b byte) bool {
	if b == ' ' {
		return true
	}
	return bytes.IndexByte(d.Separators, b) >= 0
}

// Token is one lexed word of player input: its text, its byte offset
// within the input string (0-based; WriteParseBuffer adds the text
// buffer's header offset when it writes the parse-buffer entry), and
// its length.
type Token struct {
	Text   string
	Start  int
	Length int
}

// Tokenize splits input into words, treating whitespace and the
// dictionary's separator characters as delimiters; separator
// characters that are not whitespace are themselves emitted as
// one-character tokens.
func Tokenize(input string, d *Dictionary) []Token {
	var tokens []Token
	start := -1
	for i := 0; i <= len(input); i++ {
		var b byte
		if i < len(input) {
			b = input[i]
		}
		atSeparator := i == len(input) || d.isSeparator(b)
		if !atSeparator {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			tokens = append(tokens, Token{Text: input[start:i], Start: start, Length: i - start})
			start = -1
		}
		if i < len(input) && b != ' ' {
			tokens = append(tokens, Token{Text: input[i : i+1], Start: i, Length: 1})
		}
	}
	return tokens
}

// WriteParseBuffer tokenizes input and fills the parse buffer at
// parseBufferAddr per spec §4.D: a max-word-count byte, a token count
// byte, then one 4-byte record per token (dictionary address word,
// token length byte, token start-offset byte). version selects whether
// the text buffer's own word data starts at offset 1 (v1-4) or offset 2
// (v5+, which reserves an extra length byte). If appendOnly is true
// (TOKENISE's optional flag), entries are appended after the existing
// count instead of overwriting from zero, and words not found in the
// dictionary leave their slot untouched rather than zeroed.
func (d *Dictionary) WriteParseBuffer(mem *memory.Memory, input string, textBufferAddr uint16, parseBufferAddr uint16, version uint8, appendOnly bool) error {
	maxWords, err := mem.ReadByte(uint32(parseBufferAddr))
	if err != nil {
		return err
	}

	startCount := uint8(0)
	if appendOnly {
		startCount, err = mem.ReadByte(uint32(parseBufferAddr) + 1)
		if err != nil {
			return err
		}
	}

	tokens := Tokenize(input, d)
	if len(tokens) > int(maxWords)-int(startCount) {
		tokens = tokens[:int(maxWords)-int(startCount)]
	}

	dec := zstring.NewDecoder(mem, zstring.DefaultAlphabets(), 0, 0)
	maxZchars := 6
	if version > 3 {
		maxZchars = 9
	}
	textOffset := 1
	if version >= 5 {
		textOffset = 2
	}

	for i, tok := range tokens {
		encodedWords := dec.Encode(tok.Text, maxZchars)
		var dictAddr uint16
		if entry := d.Find(encodedWords); entry != nil {
			dictAddr = entry.Address
		} else if appendOnly {
			continue // leave the slot alone when the token is unrecognised on an append
		}

		recordAddr := uint32(parseBufferAddr) + 2 + uint32(startCount+uint8(i))*4
		if err := mem.WriteWord(recordAddr, dictAddr); err != nil {
			return err
		}
		if err := mem.WriteByte(recordAddr+2, uint8(tok.Length)); err != nil {
			return err
		}
		if err := mem.WriteByte(recordAddr+3, uint8(tok.Start+textOffset)); err != nil {
			return err
		}
	}

	return mem.WriteByte(uint32(parseBufferAddr)+1, startCount+uint8(len(tokens)))
}
