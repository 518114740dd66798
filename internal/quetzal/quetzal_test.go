package quetzal_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cairnwright/zvm/internal/quetzal"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	img := quetzal.Image{
		Release:  42,
		Serial:   [6]byte{'2', '6', '0', '7', '3', '1'},
		Checksum: 0xBEEF,
		PC:       0x012345,
		Memory:   []byte{0x01, 0x02, 0x00, 0x05, 0x03},
		Frames: []quetzal.Frame{
			{
				ReturnPC:       0x001000,
				DiscardsResult: false,
				ResultVar:      2,
				ArgsSupplied:   0b0000_0011,
				Locals:         []uint16{1, 2, 3},
				EvalStack:      []uint16{100, 200},
			},
			{
				ReturnPC:       0x002000,
				DiscardsResult: true,
				ResultVar:      0,
				ArgsSupplied:   0,
				Locals:         nil,
				EvalStack:      nil,
			},
		},
	}

	encoded := quetzal.Encode(img)
	decoded, err := quetzal.Decode(encoded)
	require.NoError(t, err)

	assert.Equal(t, img.Release, decoded.Release)
	assert.Equal(t, img.Serial, decoded.Serial)
	assert.Equal(t, img.Checksum, decoded.Checksum)
	assert.Equal(t, img.PC, decoded.PC)
	assert.Equal(t, img.Memory, decoded.Memory)
	require.Len(t, decoded.Frames, 2)
	assert.Equal(t, img.Frames[0].ReturnPC, decoded.Frames[0].ReturnPC)
	assert.Equal(t, img.Frames[0].Locals, decoded.Frames[0].Locals)
	assert.Equal(t, img.Frames[0].EvalStack, decoded.Frames[0].EvalStack)
	assert.True(t, decoded.Frames[1].DiscardsResult)
}

func TestDecodeRejectsNonIFZS(t *testing.T) {
	_, err := quetzal.Decode([]byte("NOTAFORMATALL"))
	assert.Error(t, err)
}

func TestUncompressedMemoryRoundTrip(t *testing.T) {
	img := quetzal.Image{
		Release:            1,
		Serial:             [6]byte{'0', '0', '0', '0', '0', '1'},
		UncompressedMemory: []byte{0xAA, 0xBB, 0xCC},
	}

	encoded := quetzal.Encode(img)
	decoded, err := quetzal.Decode(encoded)
	require.NoError(t, err)
	assert.Equal(t, img.UncompressedMemory, decoded.UncompressedMemory)
}
