package zobject_test

import (
	"testing"

	"github.com/cairnwright/zvm/internal/memory"
	"github.com/cairnwright/zvm/internal/zobject"
	"github.com/cairnwright/zvm/internal/zstring"
)

// buildV3StoryWithProperties extends buildV3Story's layout with two
// properties on object 1: id 6 (length 1, value 0x85) and id 11
// (length 2, value 0x88e5), plus a default value for property 2.
func buildV3StoryWithProperties(t *testing.T) (*memory.Memory, *zobject.Tree) {
	t.Helper()
	story := make([]byte, 0x400)
	mem := memory.New(story, 0x400, 0x400)
	base := uint32(0x40)

	if err := mem.WriteWord(base+2*(2-1), 0x1234); err != nil { // default for property 2
		t.Fatal(err)
	}

	objAddr := base + 31*2
	propAddr := uint32(0x200)
	if err := mem.WriteWord(objAddr+7, uint16(propAddr)); err != nil {
		t.Fatal(err)
	}

	p := propAddr
	if err := mem.WriteByte(p, 0); err != nil { // zero-length short name
		t.Fatal(err)
	}
	p++

	// Property 11, length 2: size byte = (2-1)<<5 | 11
	if err := mem.WriteByte(p, (1<<5)|11); err != nil {
		t.Fatal(err)
	}
	p++
	if err := mem.WriteWord(p, 0x88e5); err != nil {
		t.Fatal(err)
	}
	p += 2

	// Property 6, length 1: size byte = (1-1)<<5 | 6
	if err := mem.WriteByte(p, 6); err != nil {
		t.Fatal(err)
	}
	p++
	if err := mem.WriteByte(p, 0x85); err != nil {
		t.Fatal(err)
	}
	p++

	if err := mem.WriteByte(p, 0); err != nil { // terminator
		t.Fatal(err)
	}

	tree := zobject.New(mem, uint16(base), 3, zstring.DefaultAlphabets(), 0)
	return mem, tree
}

func TestGetPropertyReadsStoredValues(t *testing.T) {
	_, tree := buildV3StoryWithProperties(t)

	v, err := tree.GetProperty(1, 6)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != 0x85 {
		t.Fatalf("expected property 6 == 0x85, got %#x", v)
	}

	v, err = tree.GetProperty(1, 11)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != 0x88e5 {
		t.Fatalf("expected property 11 == 0x88e5, got %#x", v)
	}
}

func TestGetPropertyFallsBackToDefault(t *testing.T) {
	_, tree := buildV3StoryWithProperties(t)

	v, err := tree.GetProperty(1, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != 0x1234 {
		t.Fatalf("expected default property value 0x1234, got %#x", v)
	}
}

func TestPutPropertyWritesBack(t *testing.T) {
	_, tree := buildV3StoryWithProperties(t)

	if err := tree.PutProperty(1, 6, 0x42); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	v, err := tree.GetProperty(1, 6)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != 0x42 {
		t.Fatalf("expected updated property value 0x42, got %#x", v)
	}
}

func TestPropertyOpsOnObjectZeroAreNoOps(t *testing.T) {
	_, tree := buildV3StoryWithProperties(t)

	if addr, err := tree.GetPropertyAddr(0, 6); err != nil || addr != 0 {
		t.Fatalf("expected get_prop_addr on object 0 to be 0, got %d err=%v", addr, err)
	}
	if v, err := tree.GetProperty(0, 6); err != nil || v != 0 {
		t.Fatalf("expected get_prop on object 0 to be 0, got %#x err=%v", v, err)
	}
	if next, err := tree.GetNextProperty(0, 0); err != nil || next != 0 {
		t.Fatalf("expected get_next_prop on object 0 to be 0, got %d err=%v", next, err)
	}
	if err := tree.PutProperty(0, 6, 0x42); err != nil {
		t.Fatalf("expected put_prop on object 0 to be a no-op, got err=%v", err)
	}
}

func TestGetNextPropertyWalksDescendingIds(t *testing.T) {
	_, tree := buildV3StoryWithProperties(t)

	first, err := tree.GetNextProperty(1, 0)
	if err != nil || first != 11 {
		t.Fatalf("expected first property id 11, got %d err=%v", first, err)
	}

	next, err := tree.GetNextProperty(1, 11)
	if err != nil || next != 6 {
		t.Fatalf("expected next property id 6, got %d err=%v", next, err)
	}

	last, err := tree.GetNextProperty(1, 6)
	if err != nil || last != 0 {
		t.Fatalf("expected no property after 6, got %d err=%v", last, err)
	}
}
