package blorb_test

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cairnwright/zvm/internal/blorb"
)

// writeChunk appends an IFF chunk (id + length + body, even-padded)
// and returns the absolute file offset its ID starts at.
func writeChunk(buf *bytes.Buffer, id string, body []byte) uint32 {
	offset := uint32(buf.Len())
	buf.WriteString(id)
	var length [4]byte
	binary.BigEndian.PutUint32(length[:], uint32(len(body)))
	buf.Write(length[:])
	buf.Write(body)
	if len(body)%2 == 1 {
		buf.WriteByte(0)
	}
	return offset
}

// buildArchive constructs a minimal Blorb file: RIdx pointing at a
// ZCOD story chunk and a Snd effect, in that layout order. When
// extraExecZero is set, a second bogus Exec/0 entry is added so the
// duplicate-resolves-to-none rule can be exercised.
func buildArchive(t *testing.T, extraExecZero bool) []byte {
	t.Helper()
	zcode := []byte{0x03, 0x00, 0x00, 0x00}
	sound := []byte{0x01, 0x02, 0x03}

	numEntries := uint32(2)
	if extraExecZero {
		numEntries = 3
	}
	ridxBodyLen := 4 + 12*int(numEntries)

	// Absolute file offsets, computed from the fixed layout below:
	// FORM(4) + len(4) + IFRS(4) + RIdx header(8) + RIdx body + ZCOD
	// header(8) + zcode + Snd header(8) + sound.
	ridxStart := uint32(12)
	ridxPad := ridxBodyLen % 2
	zcodStart := ridxStart + 8 + uint32(ridxBodyLen) + uint32(ridxPad)
	zcodPad := len(zcode) % 2
	sndStart := zcodStart + 8 + uint32(len(zcode)) + uint32(zcodPad)

	var entries bytes.Buffer
	var countBytes [4]byte
	binary.BigEndian.PutUint32(countBytes[:], numEntries)
	entries.Write(countBytes[:])
	writeEntry := func(kind string, number, start uint32) {
		entries.WriteString(kind)
		var b [8]byte
		binary.BigEndian.PutUint32(b[0:4], number)
		binary.BigEndian.PutUint32(b[4:8], start)
		entries.Write(b[:])
	}
	writeEntry("Exec", 0, zcodStart)
	writeEntry("Snd ", 1, sndStart)
	if extraExecZero {
		writeEntry("Exec", 0, zcodStart)
	}
	require.Equal(t, ridxBodyLen, entries.Len())

	var content bytes.Buffer
	content.WriteString("IFRS")
	writeChunk(&content, "RIdx", entries.Bytes())
	writeChunk(&content, "ZCOD", zcode)
	writeChunk(&content, "Snd ", sound)

	var out bytes.Buffer
	out.WriteString("FORM")
	var formLen [4]byte
	binary.BigEndian.PutUint32(formLen[:], uint32(content.Len()))
	out.Write(formLen[:])
	out.Write(content.Bytes())

	return out.Bytes()
}

func TestDecodeResolvesExecAndSound(t *testing.T) {
	data := buildArchive(t, false)
	archive, err := blorb.Decode(data)
	require.NoError(t, err)

	story, ok := archive.StoryFile()
	require.True(t, ok)
	assert.Equal(t, []byte{0x03, 0x00, 0x00, 0x00}, story)

	sounds := archive.Sounds()
	require.Contains(t, sounds, uint32(1))
	assert.Equal(t, []byte{0x01, 0x02, 0x03}, sounds[1])
}

func TestDecodeDuplicateExecZeroYieldsNoStory(t *testing.T) {
	data := buildArchive(t, true)
	archive, err := blorb.Decode(data)
	require.NoError(t, err)

	_, ok := archive.StoryFile()
	assert.False(t, ok, "duplicate Exec/0 entries must resolve to no story file")
}

func TestDecodeRejectsNonIFRS(t *testing.T) {
	_, err := blorb.Decode([]byte("NOTBLORBATALL"))
	assert.Error(t, err)
}
