// Package rtf decompresses the PidTagRtfCompressed body of a message
// (MS-OXRTFCP).
package rtf

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"hash/crc32"

	errs "github.com/deploymenttheory/go-msgreader/internal/utils/errors"
)

// Compression signatures.
const (
	MagicCompressed   uint32 = 0x75465A4C // "LZFu"
	MagicUncompressed uint32 = 0x414C454D // "MELA"
)

// HeaderSize is the size of the header that precedes the payload.
const HeaderSize = 16

const (
	windowSize = 4096
	maxRawSize = 64 << 20
)

// dictionary is the 207 byte seed of the sliding window.
var dictionary = []byte(
	"{\\rtf1\\ansi\\mac\\deff0\\deftab720{\\fonttbl;}" +
		"{\\f0\\fnil \\froman \\fswiss \\fmodern \\fscript " +
		"\\fdecor MS Sans SerifSymbolArialTimes New Roman" +
		"Courier{\\colortbl\\red0\\green0\\blue0\r\n\\par " +
		"\\pard\\plain\\f0\\fs20\\b\\i\\u\\tab\\tx",
)

// Header is the fixed prefix of a compressed RTF stream.
type Header struct {
	CompSize uint32 // bytes after the CompSize field
	RawSize  uint32
	Magic    uint32
	CRC      uint32
}

// Compressed reports whether the payload is LZFu compressed.
func (h Header) Compressed() bool {
	return h.Magic == MagicCompressed
}

// ParseHeader decodes the stream header.
func ParseHeader(data []byte) (Header, error) {
	if len(data) < HeaderSize {
		return Header{}, fmt.Errorf("%w: %d bytes", errs.ErrRTFHeader, len(data))
	}
	h := Header{
		CompSize: binary.LittleEndian.Uint32(data[0:4]),
		RawSize:  binary.LittleEndian.Uint32(data[4:8]),
		Magic:    binary.LittleEndian.Uint32(data[8:12]),
		CRC:      binary.LittleEndian.Uint32(data[12:16]),
	}
	if h.Magic != MagicCompressed && h.Magic != MagicUncompressed {
		return Header{}, fmt.Errorf("%w: 0x%08X", errs.ErrRTFUnknownMagic, h.Magic)
	}
	return h, nil
}

// Checksum computes the MS-OXRTFCP CRC: the IEEE table seeded with zero
// and without the final inversion.
func Checksum(p []byte) uint32 {
	return ^crc32.Update(0xFFFFFFFF, crc32.IEEETable, p)
}

// Decompress returns the RTF held in data. A checksum mismatch is
// ignored, as many writers get it wrong.
func Decompress(data []byte) ([]byte, error) {
	return decompress(data, false)
}

// DecompressStrict is like Decompress but fails on a checksum mismatch.
func DecompressStrict(data []byte) ([]byte, error) {
	return decompress(data, true)
}

func decompress(data []byte, strict bool) ([]byte, error) {
	h, err := ParseHeader(data)
	if err != nil {
		return nil, err
	}

	payload := data[HeaderSize:]
	if end := int64(h.CompSize) + 4; end >= HeaderSize && end < int64(len(data)) {
		payload = data[HeaderSize:end]
	}

	if !h.Compressed() {
		if uint64(h.RawSize) < uint64(len(payload)) {
			payload = payload[:h.RawSize]
		}
		return append([]byte(nil), payload...), nil
	}

	if strict {
		if sum := Checksum(payload); sum != h.CRC {
			return nil, fmt.Errorf("%w: stored 0x%08X, computed 0x%08X", errs.ErrRTFChecksum, h.CRC, sum)
		}
	}
	rawSize := h.RawSize
	if rawSize > maxRawSize {
		rawSize = maxRawSize
	}
	return inflate(payload, int(rawSize)), nil
}

// inflate runs the LZ77 decoder. Each control byte announces eight runs,
// least significant bit first: 0 is a literal, 1 a two byte reference
// with a 12 bit window offset and a 4 bit length biased by 2. A reference
// to the current write position ends the stream.
func inflate(in []byte, rawSize int) []byte {
	if rawSize > maxRawSize {
		rawSize = maxRawSize
	}
	window := make([]byte, windowSize)
	copy(window, dictionary)
	pos := len(dictionary)

	var out bytes.Buffer
	out.Grow(rawSize)

	emit := func(b byte) {
		out.WriteByte(b)
		window[pos] = b
		pos = (pos + 1) % windowSize
	}

	i := 0
	for i < len(in) && out.Len() < rawSize {
		control := in[i]
		i++
		for bit := uint(0); bit < 8 && i < len(in) && out.Len() < rawSize; bit++ {
			if control&(1<<bit) == 0 {
				emit(in[i])
				i++
				continue
			}
			if i+1 >= len(in) {
				return out.Bytes()
			}
			word := int(in[i])<<8 | int(in[i+1])
			i += 2
			offset := word >> 4
			length := word&0x0F + 2
			if offset == pos {
				return out.Bytes()
			}
			for k := 0; k < length && out.Len() < rawSize; k++ {
				emit(window[(offset+k)%windowSize])
			}
		}
	}
	return out.Bytes()
}

// IsHTMLEncapsulated reports whether the RTF wraps an HTML body
// (\fromhtml1), as Outlook does for HTML mail.
func IsHTMLEncapsulated(rtf []byte) bool {
	head := rtf
	if len(head) > 256 {
		head = head[:256]
	}
	return bytes.Contains(head, []byte(`\fromhtml1`))
}
