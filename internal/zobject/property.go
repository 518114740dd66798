package zobject

import "github.com/cairnwright/zvm/internal/zerror"

// property describes one decoded property-table entry: its id, the
// byte address of its data, the data length, and the size (1 or 2
// bytes) of its own size-prefix, needed to step to the next entry.
type property struct {
	id         uint8
	dataAddr   uint32
	length     uint8
	headerSize uint8
}

// sizeByte decodes the property-table size byte(s) at addr for the
// current version, returning the parsed property and the address of
// its data.
func (t *Tree) sizeByte(addr uint32) (property, error) {
	b, err := t.mem.ReadByte(addr)
	if err != nil {
		return property{}, err
	}

	if t.version <= 3 {
		return property{
			id:         b & 0b1_1111,
			length:     (b >> 5) + 1,
			headerSize: 1,
			dataAddr:   addr + 1,
		}, nil
	}

	if b&0x80 == 0 {
		length := uint8(1)
		if (b>>6)&1 != 0 {
			length = 2
		}
		return property{id: b & 0b11_1111, length: length, headerSize: 1, dataAddr: addr + 1}, nil
	}

	lenByte, err := t.mem.ReadByte(addr + 1)
	if err != nil {
		return property{}, err
	}
	length := lenByte & 0b11_1111
	if length == 0 {
		length = 64
	}
	return property{id: b & 0b11_1111, length: length, headerSize: 2, dataAddr: addr + 2}, nil
}

// firstProperty returns the address of the first size byte in objId's
// property table, past the short-name header. Object 0 has no
// property table.
func (t *Tree) firstProperty(objId uint16) (uint32, error) {
	if objId == 0 {
		return 0, nil
	}
	propTable, err := t.propertyTableAddr(objId)
	if err != nil {
		return 0, err
	}
	nameLen, err := t.mem.ReadByte(propTable)
	if err != nil {
		return 0, err
	}
	return propTable + 1 + uint32(nameLen)*2, nil
}

// findProperty walks objId's property table looking for id, returning
// the decoded property and true, or false if absent. Properties are
// stored in descending id order and terminated by a zero size byte.
// Object 0 never has any property.
func (t *Tree) findProperty(objId uint16, id uint8) (property, bool, error) {
	if objId == 0 {
		return property{}, false, nil
	}
	addr, err := t.firstProperty(objId)
	if err != nil {
		return property{}, false, err
	}

	for {
		sizeByteVal, err := t.mem.ReadByte(addr)
		if err != nil {
			return property{}, false, err
		}
		if sizeByteVal == 0 {
			return property{}, false, nil
		}
		p, err := t.sizeByte(addr)
		if err != nil {
			return property{}, false, err
		}
		if p.id == id {
			return p, true, nil
		}
		if p.id < id {
			return property{}, false, nil
		}
		addr = p.dataAddr + uint32(p.length)
	}
}

// GetProperty returns objId's value for property id, widened to a
// word: 1-byte properties are zero-extended, 2-byte properties read as
// a big-endian word. If the object has no entry for id, the table's
// default value is returned instead. Object 0 is a no-op returning 0.
func (t *Tree) GetProperty(objId uint16, id uint8) (uint16, error) {
	if objId == 0 {
		return 0, nil
	}
	p, ok, err := t.findProperty(objId, id)
	if err != nil {
		return 0, err
	}
	if !ok {
		return t.PropertyDefault(id)
	}
	switch p.length {
	case 1:
		b, err := t.mem.ReadByte(p.dataAddr)
		return uint16(b), err
	case 2:
		return t.mem.ReadWord(p.dataAddr)
	default:
		return 0, zerror.New(zerror.KindMalformedInstruction, "get_prop on object %d property %d has length %d", objId, id, p.length)
	}
}

// PutProperty writes value into objId's existing entry for property id.
// The property must already exist on the object and be 1 or 2 bytes.
// A no-op on object 0.
func (t *Tree) PutProperty(objId uint16, id uint8, value uint16) error {
	if objId == 0 {
		return nil
	}
	p, ok, err := t.findProperty(objId, id)
	if err != nil {
		return err
	}
	if !ok {
		return zerror.New(zerror.KindMalformedInstruction, "put_prop on object %d: no such property %d", objId, id)
	}
	switch p.length {
	case 1:
		return t.mem.WriteByte(p.dataAddr, uint8(value))
	case 2:
		return t.mem.WriteWord(p.dataAddr, value)
	default:
		return zerror.New(zerror.KindMalformedInstruction, "put_prop on object %d property %d has length %d", objId, id, p.length)
	}
}

// GetPropertyAddr returns the byte address of objId's data for
// property id, or 0 if the object has no such property.
func (t *Tree) GetPropertyAddr(objId uint16, id uint8) (uint16, error) {
	p, ok, err := t.findProperty(objId, id)
	if err != nil || !ok {
		return 0, err
	}
	return uint16(p.dataAddr), nil
}

// GetPropertyLen returns the byte length of the property whose data
// starts at propDataAddr, or 0 if propDataAddr is 0 (get_prop_len's
// documented special case).
func (t *Tree) GetPropertyLen(propDataAddr uint16) (uint8, error) {
	if propDataAddr == 0 {
		return 0, nil
	}
	sizeAddr := uint32(propDataAddr) - 1
	b, err := t.mem.ReadByte(sizeAddr)
	if err != nil {
		return 0, err
	}
	if t.version <= 3 {
		return (b >> 5) + 1, nil
	}
	if b&0x80 == 0 {
		if (b>>6)&1 != 0 {
			return 2, nil
		}
		return 1, nil
	}
	length := b & 0b11_1111
	if length == 0 {
		length = 64
	}
	return length, nil
}

// GetNextProperty returns the id of the property following id on
// objId, or the first property's id if id is 0, or 0 if there is no
// next property. Object 0 is a no-op returning 0.
func (t *Tree) GetNextProperty(objId uint16, id uint8) (uint8, error) {
	if objId == 0 {
		return 0, nil
	}
	if id == 0 {
		addr, err := t.firstProperty(objId)
		if err != nil {
			return 0, err
		}
		b, err := t.mem.ReadByte(addr)
		if err != nil || b == 0 {
			return 0, err
		}
		p, err := t.sizeByte(addr)
		return p.id, err
	}

	p, ok, err := t.findProperty(objId, id)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, zerror.New(zerror.KindMalformedInstruction, "get_next_prop on object %d: no such property %d", objId, id)
	}
	nextAddr := p.dataAddr + uint32(p.length)
	b, err := t.mem.ReadByte(nextAddr)
	if err != nil || b == 0 {
		return 0, err
	}
	next, err := t.sizeByte(nextAddr)
	return next.id, err
}
