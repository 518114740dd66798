package memory_test

import (
	"bytes"
	"testing"

	"github.com/cairnwright/zvm/internal/memory"
)

func newTestMemory() *memory.Memory {
	story := make([]byte, 0x100)
	for i := range story {
		story[i] = byte(i)
	}
	return memory.New(story, 0x80, 0x100)
}

func TestReadWriteWord(t *testing.T) {
	m := newTestMemory()

	if err := m.WriteWord(0x10, 0xBEEF); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	v, err := m.ReadWord(0x10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != 0xBEEF {
		t.Fatalf("expected 0xBEEF, got %#x", v)
	}
}

func TestIllegalWritePastStaticMark(t *testing.T) {
	m := newTestMemory()

	if err := m.WriteByte(0x80, 1); err == nil {
		t.Fatal("expected IllegalWrite error writing at static mark")
	}
	if err := m.WriteByte(0x7f, 1); err != nil {
		t.Fatalf("write just below static mark should succeed: %v", err)
	}
}

func TestOutOfBoundsRead(t *testing.T) {
	m := newTestMemory()

	if _, err := m.ReadByte(0x100); err == nil {
		t.Fatal("expected OutOfBounds error reading past end of memory")
	}
}

func TestResetRestoresBaseline(t *testing.T) {
	m := newTestMemory()
	before := m.DynamicImage()

	if err := m.WriteByte(0x05, 0xFF); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	m.Reset()

	after := m.DynamicImage()
	if !bytes.Equal(before, after) {
		t.Fatal("dynamic memory did not match baseline after reset")
	}
}

func TestCompressionRoundTrip(t *testing.T) {
	m := newTestMemory()

	if err := m.WriteByte(0x02, 0xAB); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := m.WriteByte(0x10, 0xCD); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := m.DynamicImage()

	compressed := m.Compress()

	// Perturb memory, then restore from the compressed snapshot.
	if err := m.WriteByte(0x02, 0x00); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := m.RestoreCompressed(compressed); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := m.DynamicImage()
	if !bytes.Equal(want, got) {
		t.Fatalf("restore_compressed(compress()) != original dynamic memory\nwant=%x\ngot=%x", want, got)
	}
}

func TestCompressionHandlesLongZeroRuns(t *testing.T) {
	story := make([]byte, 0x300)
	m := memory.New(story, 0x200, 0x300)

	// Touch a byte near the end so the compressor has to encode a run of
	// over 255 unchanged zero bytes before it.
	if err := m.WriteByte(0x1ff, 0x01); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := m.DynamicImage()

	compressed := m.Compress()
	if err := m.WriteByte(0x1ff, 0x00); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := m.RestoreCompressed(compressed); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := m.DynamicImage()
	if !bytes.Equal(want, got) {
		t.Fatal("long zero run did not round-trip correctly")
	}
}

func TestChecksum(t *testing.T) {
	story := make([]byte, 0x50)
	for i := 0x40; i < len(story); i++ {
		story[i] = 1
	}
	m := memory.New(story, 0x50, uint32(len(story)))

	if got := m.Checksum(); got != uint16(len(story)-0x40) {
		t.Fatalf("expected checksum %d, got %d", len(story)-0x40, got)
	}
}
