package msg

import (
	"encoding/binary"
	"strings"
)

// EntrySize is the size of one property directory entry.
const EntrySize = 16

// EntryFlags are the advisory access flags of a directory entry.
type EntryFlags uint32

const (
	FlagMandatory EntryFlags = 0x1
	FlagReadable  EntryFlags = 0x2
	FlagWritable  EntryFlags = 0x4
)

// Mandatory reports whether the property must not be deleted.
func (f EntryFlags) Mandatory() bool { return f&FlagMandatory != 0 }

// Readable reports whether the property is readable.
func (f EntryFlags) Readable() bool { return f&FlagReadable != 0 }

// Writable reports whether the property is writable.
func (f EntryFlags) Writable() bool { return f&FlagWritable != 0 }

// String lists the set flags joined by '|'.
func (f EntryFlags) String() string {
	var parts []string
	if f.Mandatory() {
		parts = append(parts, "mandatory")
	}
	if f.Readable() {
		parts = append(parts, "readable")
	}
	if f.Writable() {
		parts = append(parts, "writable")
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "|")
}

// PropertyEntry is one 16-byte record of a property directory. Inline holds
// the value of fixed-length types; for variable-length types its low four
// bytes carry the stored size and the value lives in a sibling stream.
type PropertyEntry struct {
	Tag    PropertyTag
	Flags  EntryFlags
	Inline uint64
}

// DecodeEntry decodes exactly EntrySize little-endian bytes.
func DecodeEntry(b []byte) (PropertyEntry, error) {
	if len(b) != EntrySize {
		return PropertyEntry{}, corrupted("decode entry", PropertiesStreamName, "entry length %d, want %d", len(b), EntrySize)
	}
	return PropertyEntry{
		Tag:    TagFromUint32(binary.LittleEndian.Uint32(b[0:4])),
		Flags:  EntryFlags(binary.LittleEndian.Uint32(b[4:8])),
		Inline: binary.LittleEndian.Uint64(b[8:16]),
	}, nil
}

// Encode writes the entry in its 16-byte directory form.
func (e PropertyEntry) Encode() []byte {
	b := make([]byte, EntrySize)
	binary.LittleEndian.PutUint32(b[0:4], e.Tag.Uint32())
	binary.LittleEndian.PutUint32(b[4:8], uint32(e.Flags))
	binary.LittleEndian.PutUint64(b[8:16], e.Inline)
	return b
}

// InlineBytes returns the 8-byte inline payload in stored order.
func (e PropertyEntry) InlineBytes() []byte {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint64(b, e.Inline)
	return b
}
