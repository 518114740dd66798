package vm

import (
	"testing"

	"github.com/cairnwright/zvm/internal/header"
	"github.com/cairnwright/zvm/internal/memory"
)

// buildBareVM constructs a VM from the smallest possible valid v3
// story, for tests that only need to drive unexported internals
// (random, call) directly rather than the opcode-level surface.
func buildBareVM(t *testing.T) *VM {
	t.Helper()
	story := make([]byte, 0x400)
	story[header.OffsetVersion] = 3
	story[0x40] = 0 // empty dictionary: 0 separators
	story[0x41] = 4 //   entry size 4
	story[0x42] = 0 //   0 entries (word)
	story[0x43] = 0
	putWordAt(story, uint32(header.OffsetDictionaryBase), 0x40)
	putWordAt(story, uint32(header.OffsetObjectTableBase), 0x60)
	putWordAt(story, uint32(header.OffsetGlobalVariableBase), 0x100)
	putWordAt(story, uint32(header.OffsetInitialPC), 0x300)
	putWordAt(story, uint32(header.OffsetStaticMemoryBase), 0x400)
	putWordAt(story, uint32(header.OffsetFileLength), uint16(len(story)/2))

	mem := memory.New(story, 0x400, uint32(len(story)))
	m, err := New(mem, &recordingHostInternal{}, PolicyContinueWarnOncePerKind)
	if err != nil {
		t.Fatalf("unexpected error building vm: %v", err)
	}
	return m
}

func putWordAt(story []byte, addr uint32, v uint16) {
	story[addr] = byte(v >> 8)
	story[addr+1] = byte(v)
}

type recordingHostInternal struct{}

func (recordingHostInternal) Send(request any) any { return nil }

func TestRandomPredictableModeCyclesOneToS(t *testing.T) {
	m := buildBareVM(t)

	if got := m.random(-5); got != 0 {
		t.Fatalf("expected seed call to return 0, got %d", got)
	}

	const s = 5
	for round := 0; round < 3; round++ {
		for want := uint16(1); want <= s; want++ {
			got := m.random(s)
			if got != want {
				t.Fatalf("round %d: expected %d, got %d", round, want, got)
			}
		}
	}
}

func TestRandomZeroReseedsToNonPredictable(t *testing.T) {
	m := buildBareVM(t)
	m.random(-5)
	m.random(5)
	if !m.predictable {
		t.Fatal("expected predictable mode after a negative seed")
	}
	if got := m.random(0); got != 0 {
		t.Fatalf("expected random(0) to return 0, got %d", got)
	}
	if m.predictable {
		t.Fatal("expected random(0) to leave predictable mode")
	}
}
