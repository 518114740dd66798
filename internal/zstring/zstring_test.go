package zstring_test

import (
	"testing"

	"github.com/cairnwright/zvm/internal/memory"
	"github.com/cairnwright/zvm/internal/zstring"
)

func newTestMemory(size int) *memory.Memory {
	story := make([]byte, size)
	return memory.New(story, uint32(size), uint32(size))
}

func writeEncoded(t *testing.T, mem *memory.Memory, addr uint32, words []uint16) {
	t.Helper()
	for i, w := range words {
		if err := mem.WriteWord(addr+uint32(i*2), w); err != nil {
			t.Fatalf("writing encoded word: %v", err)
		}
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	mem := newTestMemory(0x200)
	alphabets := zstring.DefaultAlphabets()
	dec := zstring.NewDecoder(mem, alphabets, 0, 0)

	words := dec.Encode("hello", 6)
	writeEncoded(t, mem, 0x10, words)

	got, end, err := dec.Decode(0x10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if end != 0x10+uint32(len(words)*2) {
		t.Fatalf("unexpected end address: %#x", end)
	}
	// The trailing padding z-chars (shift-A2) are benign no-ops; the
	// round-tripped prefix must match the original word.
	if len(got) < 5 || got[:5] != "hello" {
		t.Fatalf("expected decoded string to start with %q, got %q", "hello", got)
	}
}

func TestDecodeExpandsAbbreviation(t *testing.T) {
	mem := newTestMemory(0x200)
	alphabets := zstring.DefaultAlphabets()
	abbrevBase := uint32(0x40)
	abbrevTextAddr := uint32(0x80)

	// abbreviation table entry 0 (table 1, index 0) points at a packed
	// string at abbrevTextAddr (word address = byte address / 2).
	if err := mem.WriteWord(abbrevBase, uint16(abbrevTextAddr/2)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	plain := zstring.NewDecoder(mem, alphabets, 0, 0)
	writeEncoded(t, mem, abbrevTextAddr, plain.Encode("hi", 3))

	dec := zstring.NewDecoder(mem, alphabets, uint16(abbrevBase), 0)

	// z-char sequence: abbrev-table-1 marker (1), then index 0, terminator bit set.
	word := uint16(0x8000) | uint16(zcharAbbrev0)<<10
	if err := mem.WriteWord(0x100, word); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, _, err := dec.Decode(0x100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) < 2 || got[:2] != "hi" {
		t.Fatalf("expected abbreviation expansion to start with %q, got %q", "hi", got)
	}
}

const zcharAbbrev0 = 1

func TestDecodeSpaceAndShift(t *testing.T) {
	mem := newTestMemory(0x200)
	alphabets := zstring.DefaultAlphabets()
	dec := zstring.NewDecoder(mem, alphabets, 0, 0)

	words := dec.Encode("Hi there", 9)
	writeEncoded(t, mem, 0x20, words)

	got, _, err := dec.Decode(0x20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) < 8 || got[:8] != "Hi there" {
		t.Fatalf("expected %q prefix, got %q", "Hi there", got)
	}
}
