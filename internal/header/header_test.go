package header_test

import (
	"testing"

	"github.com/cairnwright/zvm/internal/header"
	"github.com/cairnwright/zvm/internal/memory"
)

func newV3Header() *header.Header {
	story := make([]byte, 0x200)
	story[0x00] = 3
	story[0x0e] = 0x01
	story[0x0f] = 0x00 // static mark 0x100
	mem := memory.New(story, 0x100, 0x200)
	return header.New(mem)
}

func TestInitLeavesColorBitClearOnV3(t *testing.T) {
	h := newV3Header()
	h.Init(header.Capabilities{ScreenRows: 25, ScreenCols: 80, FontWidth: 1, FontHeight: 1})

	if h.Flags1()&header.Flags1ColorsAvailable != 0 {
		t.Fatal("v3 header must not set v4+ color bit")
	}
}

func TestInitSetsSplitScreenOnV3WhenSupported(t *testing.T) {
	h := newV3Header()
	h.Init(header.Capabilities{SplitScreen: true, ScreenRows: 25, ScreenCols: 80})

	if h.Flags1()&header.Flags1SplitAvailable == 0 {
		t.Fatal("expected split-screen bit to be set")
	}
}

func TestFlags2SurvivesExplicitRestore(t *testing.T) {
	h := newV3Header()
	h.SetFlags2(header.Flags2Transcript)

	h.Init(header.Capabilities{})
	if h.Flags2()&header.Flags2Transcript == 0 {
		t.Fatal("Flags2 transcript bit should survive Init (only restore semantics preserve it explicitly)")
	}
}
