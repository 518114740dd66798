package dictionary_test

import (
	"testing"

	"github.com/cairnwright/zvm/internal/dictionary"
	"github.com/cairnwright/zvm/internal/memory"
	"github.com/cairnwright/zvm/internal/zstring"
)

// buildDictionary writes a minimal v3 dictionary with two sorted
// entries ("go", "look") at base, returning the parsed Dictionary.
func buildDictionary(t *testing.T, mem *memory.Memory, base uint32) *dictionary.Dictionary {
	t.Helper()
	alphabets := zstring.DefaultAlphabets()
	dec := zstring.NewDecoder(mem, alphabets, 0, 0)

	words := []string{"go", "look"}
	entrySize := 7 // 4 bytes encoded word + 3 data bytes

	addr := base
	if err := mem.WriteByte(addr, 0); err != nil { // zero separators
		t.Fatal(err)
	}
	addr++
	if err := mem.WriteByte(addr, uint8(entrySize)); err != nil {
		t.Fatal(err)
	}
	addr++
	if err := mem.WriteWord(addr, uint16(len(words))); err != nil {
		t.Fatal(err)
	}
	addr += 2

	entryAddr := addr
	for _, w := range words {
		encoded := dec.Encode(w, 6)
		for i, word := range encoded {
			if err := mem.WriteWord(entryAddr+uint32(i*2), word); err != nil {
				t.Fatal(err)
			}
		}
		entryAddr += uint32(entrySize)
	}

	dict, err := dictionary.Parse(mem, uint16(base), 3, alphabets, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return dict
}

func TestParseAndFindSortedEntry(t *testing.T) {
	story := make([]byte, 0x400)
	mem := memory.New(story, 0x400, 0x400)
	dict := buildDictionary(t, mem, 0x40)

	alphabets := zstring.DefaultAlphabets()
	dec := zstring.NewDecoder(mem, alphabets, 0, 0)

	entry := dict.Find(dec.Encode("look", 6))
	if entry == nil {
		t.Fatal("expected to find \"look\" in dictionary")
	}
	if entry.DecodedWord[:4] != "look" {
		t.Fatalf("expected decoded word to start with \"look\", got %q", entry.DecodedWord)
	}

	if dict.Find(dec.Encode("xyzzy", 6)) != nil {
		t.Fatal("did not expect to find \"xyzzy\" in dictionary")
	}
}

func TestTokenizeSplitsOnSeparatorsAndSpaces(t *testing.T) {
	story := make([]byte, 0x400)
	mem := memory.New(story, 0x400, 0x400)
	dict := buildDictionary(t, mem, 0x40)

	tokens := dictionary.Tokenize("go north", dict)
	if len(tokens) != 2 {
		t.Fatalf("expected 2 tokens, got %d: %+v", len(tokens), tokens)
	}
	if tokens[0].Text != "go" || tokens[0].Start != 0 {
		t.Fatalf("unexpected first token: %+v", tokens[0])
	}
	if tokens[1].Text != "north" || tokens[1].Start != 3 {
		t.Fatalf("unexpected second token: %+v", tokens[1])
	}
}

func TestWriteParseBufferFillsRecords(t *testing.T) {
	story := make([]byte, 0x400)
	mem := memory.New(story, 0x400, 0x400)
	dict := buildDictionary(t, mem, 0x40)

	parseBufferAddr := uint32(0x200)
	if err := mem.WriteByte(parseBufferAddr, 4); err != nil { // max words
		t.Fatal(err)
	}

	if err := dict.WriteParseBuffer(mem, "go", 0x100, 0x200, 3, false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	count, err := mem.ReadByte(parseBufferAddr + 1)
	if err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Fatalf("expected parse buffer word count 1, got %d", count)
	}

	wordAddr, err := mem.ReadWord(parseBufferAddr + 2)
	if err != nil {
		t.Fatal(err)
	}
	if wordAddr == 0 {
		t.Fatal("expected dictionary address for known word \"go\"")
	}

	length, err := mem.ReadByte(parseBufferAddr + 4)
	if err != nil {
		t.Fatal(err)
	}
	if length != 2 {
		t.Fatalf("expected token length 2, got %d", length)
	}

	start, err := mem.ReadByte(parseBufferAddr + 5)
	if err != nil {
		t.Fatal(err)
	}
	if start != 1 { // v3 text buffer offset is 1
		t.Fatalf("expected token start offset 1, got %d", start)
	}
}
