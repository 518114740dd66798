package zobject_test

import (
	"testing"

	"github.com/cairnwright/zvm/internal/memory"
	"github.com/cairnwright/zvm/internal/zobject"
	"github.com/cairnwright/zvm/internal/zstring"
)

// buildV3Story writes a minimal v3 object table at base: 31 default
// property words, then 3 objects (9 bytes each), each with a tiny
// property table.
func buildV3Story(t *testing.T) (*memory.Memory, *zobject.Tree, uint32) {
	t.Helper()
	story := make([]byte, 0x400)
	mem := memory.New(story, 0x400, 0x400)
	base := uint32(0x40)

	propTableBase := uint32(0x200)
	for id := uint16(1); id <= 3; id++ {
		objAddr := base + 31*2 + uint32(id-1)*9
		propAddr := propTableBase + uint32(id-1)*0x20
		if err := mem.WriteWord(objAddr+7, uint16(propAddr)); err != nil {
			t.Fatal(err)
		}
		if err := mem.WriteByte(propAddr, 0); err != nil { // zero-length short name
			t.Fatal(err)
		}
		if err := mem.WriteByte(propAddr+1, 0); err != nil { // empty property table
			t.Fatal(err)
		}
	}

	tree := zobject.New(mem, uint16(base), 3, zstring.DefaultAlphabets(), 0)
	return mem, tree, propTableBase
}

func TestAttributeSetClearTest(t *testing.T) {
	_, tree, _ := buildV3Story(t)

	if set, err := tree.Attribute(1, 5); err != nil || set {
		t.Fatalf("expected attribute 5 initially clear, got set=%v err=%v", set, err)
	}
	if err := tree.SetAttribute(1, 5, true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if set, err := tree.Attribute(1, 5); err != nil || !set {
		t.Fatalf("expected attribute 5 set, got set=%v err=%v", set, err)
	}
	if err := tree.SetAttribute(1, 5, false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if set, _ := tree.Attribute(1, 5); set {
		t.Fatal("expected attribute 5 cleared")
	}
}

func TestInsertObjAndRemoveFromParent(t *testing.T) {
	_, tree, _ := buildV3Story(t)

	if err := tree.InsertObj(2, 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := tree.InsertObj(3, 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	child, err := tree.Child(1)
	if err != nil || child != 3 {
		t.Fatalf("expected object 1's child to be 3 (most recently inserted), got %d err=%v", child, err)
	}
	sibling, err := tree.Sibling(3)
	if err != nil || sibling != 2 {
		t.Fatalf("expected object 3's sibling to be 2, got %d err=%v", sibling, err)
	}

	if err := tree.RemoveFromParent(3); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	child, err = tree.Child(1)
	if err != nil || child != 2 {
		t.Fatalf("expected object 1's child to be 2 after removing 3, got %d err=%v", child, err)
	}
	parent, err := tree.Parent(3)
	if err != nil || parent != 0 {
		t.Fatalf("expected object 3 to have no parent after removal, got %d err=%v", parent, err)
	}
}

func TestObjectZeroIsNoOp(t *testing.T) {
	_, tree, _ := buildV3Story(t)

	if parent, err := tree.Parent(0); err != nil || parent != 0 {
		t.Fatalf("expected object 0's parent to be 0, got %d err=%v", parent, err)
	}
	if sibling, err := tree.Sibling(0); err != nil || sibling != 0 {
		t.Fatalf("expected object 0's sibling to be 0, got %d err=%v", sibling, err)
	}
	if child, err := tree.Child(0); err != nil || child != 0 {
		t.Fatalf("expected object 0's child to be 0, got %d err=%v", child, err)
	}
	if set, err := tree.Attribute(0, 5); err != nil || set {
		t.Fatalf("expected object 0 to report attribute 5 clear, got set=%v err=%v", set, err)
	}
	if err := tree.SetAttribute(0, 5, true); err != nil {
		t.Fatalf("expected set_attr on object 0 to be a no-op, got err=%v", err)
	}
	if name, err := tree.Name(0); err != nil || name != "" {
		t.Fatalf("expected object 0 to have no name, got %q err=%v", name, err)
	}
	if err := tree.InsertObj(0, 1); err != nil {
		t.Fatalf("expected insert_obj on object 0 to be a no-op, got err=%v", err)
	}
}
