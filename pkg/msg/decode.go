package msg

import (
	"encoding/binary"
	"math"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// Text encodings for PtypString and PtypString8. The type code alone
// decides which one applies.
var (
	utf16LE         encoding.Encoding = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)
	string8Encoding encoding.Encoding = charmap.Windows1252
)

// fixedElementSize maps fixed-length multi-valued types to their element size.
var fixedElementSize = map[PropertyType]int{
	PtypMultipleInteger16:  2,
	PtypMultipleInteger32:  4,
	PtypMultipleFloating32: 4,
	PtypMultipleFloating64: 8,
	PtypMultipleInteger64:  8,
	PtypMultipleGUID:       GUIDSize,
}

// decodeValue materialises the value described by e. Sibling streams are
// resolved against node, the storage that owns the property directory.
// A missing sibling stream yields Absent; size and bounds violations are
// reported as ErrCorrupted.
func decodeValue(node StorageNode, e PropertyEntry) (Value, error) {
	id, t := e.Tag.ID, e.Tag.Type
	switch t {
	case PtypInteger16:
		return Int16(int16(uint16(e.Inline))), nil
	case PtypInteger32:
		return Int32(int32(uint32(e.Inline))), nil
	case PtypInteger64:
		return Int64(int64(e.Inline)), nil
	case PtypFloating32:
		return Float32(math.Float32frombits(uint32(e.Inline))), nil
	case PtypFloating64:
		return Float64(math.Float64frombits(e.Inline)), nil
	case PtypBoolean:
		return Bool(e.Inline&0xFF != 0), nil
	case PtypTime:
		return Time{FiletimeToTime(e.Inline)}, nil

	case PtypString, PtypString8, PtypBinary, PtypGUID, PtypObject:
		return decodeVariable(node, id, t)

	case PtypMultipleInteger16, PtypMultipleInteger32, PtypMultipleInteger64,
		PtypMultipleFloating32, PtypMultipleFloating64, PtypMultipleGUID:
		return decodeFixedMulti(node, id, t)

	case PtypMultipleString, PtypMultipleString8, PtypMultipleBinary:
		return decodeVariableMulti(node, id, t)
	}
	return Unsupported{Type: t}, nil
}

func decodeVariable(node StorageNode, id uint16, t PropertyType) (Value, error) {
	name := SubstgName(id, t)
	child, ok := node.Child(name)
	if !ok {
		return Absent{}, nil
	}
	if !child.IsStream() {
		if t == PtypObject {
			return Object{Storage: child}, nil
		}
		return nil, newError(ErrNotStream, "decode value", name, "")
	}
	data, err := child.Bytes()
	if err != nil {
		return nil, err
	}

	switch t {
	case PtypString:
		return String(strings.TrimRight(decodeText(utf16LE, data), "\x00")), nil
	case PtypString8:
		return String8(strings.TrimRight(decodeText(string8Encoding, data), "\x00")), nil
	case PtypGUID:
		if len(data) < GUIDSize {
			return nil, corrupted("decode value", name, "GUID stream has %d bytes", len(data))
		}
		g, _ := DecodeGUID(data)
		return GUID(g), nil
	case PtypObject:
		return Object{Data: data}, nil
	default:
		return Binary(data), nil
	}
}

func decodeFixedMulti(node StorageNode, id uint16, t PropertyType) (Value, error) {
	name := SubstgName(id, t)
	data, ok, err := streamBytes(node, name)
	if err != nil {
		return nil, err
	}
	if !ok {
		return Absent{}, nil
	}
	size := fixedElementSize[t]
	if len(data)%size != 0 {
		return nil, corrupted("decode multi-valued", name, "length %d is not a multiple of %d", len(data), size)
	}
	count := len(data) / size

	switch t {
	case PtypMultipleInteger16:
		out := make(MultiInt16, count)
		for i := range out {
			out[i] = int16(binary.LittleEndian.Uint16(data[i*size:]))
		}
		return out, nil
	case PtypMultipleInteger32:
		out := make(MultiInt32, count)
		for i := range out {
			out[i] = int32(binary.LittleEndian.Uint32(data[i*size:]))
		}
		return out, nil
	case PtypMultipleInteger64:
		out := make(MultiInt64, count)
		for i := range out {
			out[i] = int64(binary.LittleEndian.Uint64(data[i*size:]))
		}
		return out, nil
	case PtypMultipleFloating32:
		out := make(MultiFloat32, count)
		for i := range out {
			out[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*size:]))
		}
		return out, nil
	case PtypMultipleFloating64:
		out := make(MultiFloat64, count)
		for i := range out {
			out[i] = math.Float64frombits(binary.LittleEndian.Uint64(data[i*size:]))
		}
		return out, nil
	default:
		out := make(MultiGUID, count)
		for i := range out {
			out[i], _ = DecodeGUID(data[i*size:])
		}
		return out, nil
	}
}

// decodeVariableMulti rebuilds a multi-valued string or binary property
// from its length stream and one value stream per element.
func decodeVariableMulti(node StorageNode, id uint16, t PropertyType) (Value, error) {
	name := SubstgName(id, t)
	lengths, ok, err := streamBytes(node, name)
	if err != nil {
		return nil, err
	}
	if !ok {
		return Absent{}, nil
	}

	record := 4
	if t == PtypMultipleBinary {
		record = 8 // length + reserved
	}
	if len(lengths)%record != 0 {
		return nil, corrupted("decode multi-valued", name, "length stream size %d is not a multiple of %d", len(lengths), record)
	}
	count := len(lengths) / record

	elements := make([][]byte, count)
	for i := 0; i < count; i++ {
		n := binary.LittleEndian.Uint32(lengths[i*record:])
		valueName := SubstgValueName(id, t, i)
		data, ok, err := streamBytes(node, valueName)
		if err != nil {
			return nil, err
		}
		if !ok {
			return Absent{}, nil
		}
		if uint64(n) > uint64(len(data)) {
			return nil, corrupted("decode multi-valued", valueName, "declared length %d exceeds stream length %d", n, len(data))
		}
		elements[i] = data[:n]
	}

	switch t {
	case PtypMultipleString:
		out := make(MultiString, count)
		for i, b := range elements {
			out[i] = decodeText(utf16LE, trimTerminator(b, 2))
		}
		return out, nil
	case PtypMultipleString8:
		out := make(MultiString8, count)
		for i, b := range elements {
			out[i] = decodeText(string8Encoding, trimTerminator(b, 1))
		}
		return out, nil
	default:
		return MultiBinary(elements), nil
	}
}

// trimTerminator drops a trailing NUL of width bytes when present.
func trimTerminator(b []byte, width int) []byte {
	if len(b) < width {
		return b
	}
	for _, c := range b[len(b)-width:] {
		if c != 0 {
			return b
		}
	}
	return b[:len(b)-width]
}

func decodeText(enc encoding.Encoding, b []byte) string {
	out, err := enc.NewDecoder().Bytes(b)
	if err != nil {
		return string(b)
	}
	return string(out)
}

// DecodeUTF16 decodes little-endian UTF-16 text.
func DecodeUTF16(b []byte) string {
	return decodeText(utf16LE, b)
}

// EncodeUTF16 encodes s as little-endian UTF-16 without a terminator.
func EncodeUTF16(s string) []byte {
	out, err := utf16LE.NewEncoder().Bytes([]byte(s))
	if err != nil {
		return nil
	}
	return out
}
