package rtf

import (
	"encoding/binary"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "github.com/deploymenttheory/go-msgreader/internal/utils/errors"
)

func mustHex(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	require.NoError(t, err)
	return b
}

func TestDecompressKnownStreams(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "literals and dictionary references",
			input: "2d0000002b0000004c5a4675f1c5c7a703000a007263706731323542320af32068656c090020627705b06c647d0a800fa0",
			want:  "{\\rtf1\\ansi\\ansicpg1252\\pard hello world}\r\n",
		},
		{
			name:  "reference overlapping the write position",
			input: "1a0000001c0000004c5a4675e2d44b51410004205758595a0d6e7d010eb0",
			want:  "{\\rtf1 WXYZWXYZWXYZWXYZWXYZ}",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := mustHex(t, tt.input)

			lenient, err := Decompress(data)
			require.NoError(t, err)
			strict, err := DecompressStrict(data)
			require.NoError(t, err)

			assert.Equal(t, tt.want, string(lenient))
			assert.Equal(t, lenient, strict)
		})
	}
}

func TestDecompressChecksum(t *testing.T) {
	data := mustHex(t, "1a0000001c0000004c5a4675e2d44b51410004205758595a0d6e7d010eb0")
	h, err := ParseHeader(data)
	require.NoError(t, err)
	assert.Equal(t, h.CRC, Checksum(data[HeaderSize:]))

	data[12] ^= 0xFF

	_, err = DecompressStrict(data)
	assert.ErrorIs(t, err, errs.ErrRTFChecksum)

	out, err := Decompress(data)
	require.NoError(t, err)
	assert.Equal(t, "{\\rtf1 WXYZWXYZWXYZWXYZWXYZ}", string(out))
}

func TestDecompressUncompressed(t *testing.T) {
	body := []byte("{\\rtf1 plain}")
	data := make([]byte, HeaderSize)
	binary.LittleEndian.PutUint32(data[0:], uint32(len(body)+12))
	binary.LittleEndian.PutUint32(data[4:], uint32(len(body)))
	binary.LittleEndian.PutUint32(data[8:], MagicUncompressed)
	data = append(data, body...)
	data = append(data, "trailing"...)

	out, err := DecompressStrict(data)

	require.NoError(t, err)
	assert.Equal(t, body, out)
}

func TestDecompressHugeRawSize(t *testing.T) {
	body := []byte("{\\rtf1 plain}")
	data := make([]byte, HeaderSize)
	binary.LittleEndian.PutUint32(data[0:], uint32(len(body)+12))
	binary.LittleEndian.PutUint32(data[4:], 0xFFFFFFFF)
	binary.LittleEndian.PutUint32(data[8:], MagicUncompressed)
	data = append(data, body...)

	out, err := Decompress(data)
	require.NoError(t, err)
	assert.Equal(t, body, out)

	out, err = Decompress(mustHex(t, "1a000000ffffffff4c5a4675e2d44b51410004205758595a0d6e7d010eb0"))
	require.NoError(t, err)
	assert.Equal(t, `{\rtf1 WXYZWXYZWXYZWXYZWXYZ}`, string(out))
}

func TestParseHeaderErrors(t *testing.T) {
	_, err := ParseHeader(make([]byte, 10))
	assert.ErrorIs(t, err, errs.ErrRTFHeader)

	bad := make([]byte, HeaderSize)
	binary.LittleEndian.PutUint32(bad[8:], 0x12345678)
	_, err = ParseHeader(bad)
	assert.ErrorIs(t, err, errs.ErrRTFUnknownMagic)
}

func TestInflateStopsAtRawSize(t *testing.T) {
	// Eight literals under a zero control byte, but only five are wanted.
	in := append([]byte{0x00}, "abcdefgh"...)

	assert.Equal(t, []byte("abcde"), inflate(in, 5))
}

func TestIsHTMLEncapsulated(t *testing.T) {
	assert.True(t, IsHTMLEncapsulated([]byte(`{\rtf1\ansi\fbidis\ansicpg1252\deff0\fromhtml1 {\fonttbl}`)))
	assert.False(t, IsHTMLEncapsulated([]byte(`{\rtf1\ansi\deff0 plain}`)))
}
