// Package zobject implements the object table: the parent/sibling/child
// tree, its attribute flags, and the per-object property tables (spec
// §4.E).
package zobject

import (
	"github.com/cairnwright/zvm/internal/memory"
	"github.com/cairnwright/zvm/internal/zerror"
	"github.com/cairnwright/zvm/internal/zstring"
)

// Tree is a typed view over a story's object table.
type Tree struct {
	mem        *memory.Memory
	base       uint32
	version    uint8
	alphabets  *zstring.Alphabets
	abbrevBase uint16
}

// New binds a Tree to mem's object table at objectTableBase.
func New(mem *memory.Memory, objectTableBase uint16, version uint8, alphabets *zstring.Alphabets, abbrevBase uint16) *Tree {
	return &Tree{mem: mem, base: uint32(objectTableBase), version: version, alphabets: alphabets, abbrevBase: abbrevBase}
}

// recordSize and attrBytes are version dependent: v3 uses 9-byte
// records with 32 attribute bits and 1-byte tree links; v4+ uses
// 14-byte records with 48 attribute bits and 2-byte tree links.
func (t *Tree) recordSize() uint32 {
	if t.version >= 4 {
		return 14
	}
	return 9
}

func (t *Tree) attrBytes() uint32 {
	if t.version >= 4 {
		return 6
	}
	return 4
}

// defaultsTableSize is the number of property-default words preceding
// the object records (31 on v3, 63 on v4+).
func (t *Tree) defaultsTableSize() uint32 {
	if t.version >= 4 {
		return 63
	}
	return 31
}

// objectBase is only ever called with a nonzero id; every public
// method special-cases object 0 as a no-op before reaching here (spec
// §4.D: "object 0 in any operation is a no-op returning 0").
func (t *Tree) objectBase(id uint16) uint32 {
	return t.base + t.defaultsTableSize()*2 + uint32(id-1)*t.recordSize()
}

// PropertyDefault returns the default value for property id (1-based)
// from the header-preceding defaults table, used when an object has no
// explicit entry for that property.
func (t *Tree) PropertyDefault(id uint8) (uint16, error) {
	return t.mem.ReadWord(t.base + 2*uint32(id-1))
}

// Attribute reports whether objId has attribute set. Attribute numbers
// run 0 (most significant bit of byte 0) upward. Object 0 has no
// attributes and always reports false.
func (t *Tree) Attribute(objId uint16, attr uint16) (bool, error) {
	if objId == 0 {
		return false, nil
	}
	base := t.objectBase(objId)
	byteIdx := uint32(attr / 8)
	if byteIdx >= t.attrBytes() {
		return false, zerror.New(zerror.KindOutOfBounds, "attribute %d out of range", attr)
	}
	b, err := t.mem.ReadByte(base + byteIdx)
	if err != nil {
		return false, err
	}
	mask := uint8(0x80) >> (attr % 8)
	return b&mask != 0, nil
}

// SetAttribute sets or clears attr on objId. A no-op on object 0.
func (t *Tree) SetAttribute(objId uint16, attr uint16, value bool) error {
	if objId == 0 {
		return nil
	}
	base := t.objectBase(objId)
	byteIdx := uint32(attr / 8)
	if byteIdx >= t.attrBytes() {
		return zerror.New(zerror.KindOutOfBounds, "attribute %d out of range", attr)
	}
	b, err := t.mem.ReadByte(base + byteIdx)
	if err != nil {
		return err
	}
	mask := uint8(0x80) >> (attr % 8)
	if value {
		b |= mask
	} else {
		b &^= mask
	}
	return t.mem.WriteByte(base+byteIdx, b)
}

func (t *Tree) linkFieldOffset(which int) uint32 {
	// which: 0=parent, 1=sibling, 2=child
	if t.version >= 4 {
		return t.attrBytes() + uint32(which)*2
	}
	return t.attrBytes() + uint32(which)
}

func (t *Tree) readLink(objId uint16, which int) (uint16, error) {
	if objId == 0 {
		return 0, nil
	}
	base := t.objectBase(objId)
	off := base + t.linkFieldOffset(which)
	if t.version >= 4 {
		return t.mem.ReadWord(off)
	}
	b, err := t.mem.ReadByte(off)
	return uint16(b), err
}

func (t *Tree) writeLink(objId uint16, which int, value uint16) error {
	if objId == 0 {
		return nil
	}
	base := t.objectBase(objId)
	off := base + t.linkFieldOffset(which)
	if t.version >= 4 {
		return t.mem.WriteWord(off, value)
	}
	return t.mem.WriteByte(off, uint8(value))
}

// Parent, Sibling and Child return the object's tree-relative links (0
// = none). Object 0 has no links and always reports 0.
func (t *Tree) Parent(objId uint16) (uint16, error)  { return t.readLink(objId, 0) }
func (t *Tree) Sibling(objId uint16) (uint16, error) { return t.readLink(objId, 1) }
func (t *Tree) Child(objId uint16) (uint16, error)   { return t.readLink(objId, 2) }

func (t *Tree) setParent(objId, v uint16) error  { return t.writeLink(objId, 0, v) }
func (t *Tree) setSibling(objId, v uint16) error { return t.writeLink(objId, 1, v) }
func (t *Tree) setChild(objId, v uint16) error   { return t.writeLink(objId, 2, v) }

// propertyTableAddr returns the property table address stored in the
// object's last link-sized field. Object 0 has no property table.
func (t *Tree) propertyTableAddr(objId uint16) (uint32, error) {
	if objId == 0 {
		return 0, nil
	}
	base := t.objectBase(objId)
	off := base + t.attrBytes() + 6
	if t.version < 4 {
		off = base + t.attrBytes() + 3
	}
	w, err := t.mem.ReadWord(off)
	return uint32(w), err
}

// Name returns the object's short name, decoded from its property
// table header. Object 0 has no name.
func (t *Tree) Name(objId uint16) (string, error) {
	if objId == 0 {
		return "", nil
	}
	propTable, err := t.propertyTableAddr(objId)
	if err != nil {
		return "", err
	}
	nameLen, err := t.mem.ReadByte(propTable)
	if err != nil {
		return "", err
	}
	if nameLen == 0 {
		return "", nil
	}
	dec := zstring.NewDecoder(t.mem, t.alphabets, t.abbrevBase, 0)
	name, _, err := dec.Decode(propTable + 1)
	return name, err
}

// RemoveFromParent detaches objId from its parent's child chain,
// relinking the parent's child pointer or the preceding sibling as
// needed. It is a no-op if objId has no parent.
func (t *Tree) RemoveFromParent(objId uint16) error {
	parent, err := t.Parent(objId)
	if err != nil || parent == 0 {
		return err
	}

	firstChild, err := t.Child(parent)
	if err != nil {
		return err
	}
	sibling, err := t.Sibling(objId)
	if err != nil {
		return err
	}

	if firstChild == objId {
		if err := t.setChild(parent, sibling); err != nil {
			return err
		}
	} else {
		cur := firstChild
		for cur != 0 {
			next, err := t.Sibling(cur)
			if err != nil {
				return err
			}
			if next == objId {
				if err := t.setSibling(cur, sibling); err != nil {
					return err
				}
				break
			}
			cur = next
		}
	}

	if err := t.setParent(objId, 0); err != nil {
		return err
	}
	return t.setSibling(objId, 0)
}

// InsertObj moves objId to become the first child of destId, per the
// insert_obj opcode: it is first removed from any current parent, then
// its sibling is set to destId's former first child and it becomes
// destId's new first child. A no-op if objId is object 0.
func (t *Tree) InsertObj(objId, destId uint16) error {
	if objId == 0 {
		return nil
	}
	if err := t.RemoveFromParent(objId); err != nil {
		return err
	}

	prevChild, err := t.Child(destId)
	if err != nil {
		return err
	}
	if err := t.setSibling(objId, prevChild); err != nil {
		return err
	}
	if err := t.setChild(destId, objId); err != nil {
		return err
	}
	return t.setParent(objId, destId)
}
