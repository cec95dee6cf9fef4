package msg

import (
	"time"

	"github.com/google/uuid"
)

// Kind names the variant held by a Value.
type Kind uint8

const (
	KindAbsent Kind = iota
	KindUnsupported
	KindInt16
	KindInt32
	KindInt64
	KindFloat32
	KindFloat64
	KindBool
	KindTime
	KindString
	KindString8
	KindBinary
	KindGUID
	KindObject
	KindMultiInt16
	KindMultiInt32
	KindMultiInt64
	KindMultiFloat32
	KindMultiFloat64
	KindMultiGUID
	KindMultiString
	KindMultiString8
	KindMultiBinary
)

var kindNames = [...]string{
	KindAbsent:       "absent",
	KindUnsupported:  "unsupported",
	KindInt16:        "int16",
	KindInt32:        "int32",
	KindInt64:        "int64",
	KindFloat32:      "float32",
	KindFloat64:      "float64",
	KindBool:         "bool",
	KindTime:         "time",
	KindString:       "string",
	KindString8:      "string8",
	KindBinary:       "binary",
	KindGUID:         "guid",
	KindObject:       "object",
	KindMultiInt16:   "multi-int16",
	KindMultiInt32:   "multi-int32",
	KindMultiInt64:   "multi-int64",
	KindMultiFloat32: "multi-float32",
	KindMultiFloat64: "multi-float64",
	KindMultiGUID:    "multi-guid",
	KindMultiString:  "multi-string",
	KindMultiString8: "multi-string8",
	KindMultiBinary:  "multi-binary",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Value is a decoded property value. The set of implementations is closed;
// callers switch on the concrete type or on Kind.
type Value interface {
	Kind() Kind
	isValue()
}

// Absent marks a property that is not present or could not be decoded.
type Absent struct{}

// Unsupported marks a recognised property whose type is not decoded.
type Unsupported struct {
	Type PropertyType
}

type (
	Int16   int16
	Int32   int32
	Int64   int64
	Float32 float32
	Float64 float64
	Bool    bool
	String  string
	String8 string
	Binary  []byte
	GUID    uuid.UUID

	MultiInt16   []int16
	MultiInt32   []int32
	MultiInt64   []int64
	MultiFloat32 []float32
	MultiFloat64 []float64
	MultiGUID    []uuid.UUID
	MultiString  []string
	MultiString8 []string
	MultiBinary  [][]byte
)

// Time is a PtypTime value converted to UTC.
type Time struct {
	time.Time
}

// Object is a PtypObject value. Data holds the stream bytes; when the
// property is backed by a sub-storage, Storage is set instead.
type Object struct {
	Data    []byte
	Storage StorageNode
}

func (Absent) Kind() Kind       { return KindAbsent }
func (Unsupported) Kind() Kind  { return KindUnsupported }
func (Int16) Kind() Kind        { return KindInt16 }
func (Int32) Kind() Kind        { return KindInt32 }
func (Int64) Kind() Kind        { return KindInt64 }
func (Float32) Kind() Kind      { return KindFloat32 }
func (Float64) Kind() Kind      { return KindFloat64 }
func (Bool) Kind() Kind         { return KindBool }
func (Time) Kind() Kind         { return KindTime }
func (String) Kind() Kind       { return KindString }
func (String8) Kind() Kind      { return KindString8 }
func (Binary) Kind() Kind       { return KindBinary }
func (GUID) Kind() Kind         { return KindGUID }
func (Object) Kind() Kind       { return KindObject }
func (MultiInt16) Kind() Kind   { return KindMultiInt16 }
func (MultiInt32) Kind() Kind   { return KindMultiInt32 }
func (MultiInt64) Kind() Kind   { return KindMultiInt64 }
func (MultiFloat32) Kind() Kind { return KindMultiFloat32 }
func (MultiFloat64) Kind() Kind { return KindMultiFloat64 }
func (MultiGUID) Kind() Kind    { return KindMultiGUID }
func (MultiString) Kind() Kind  { return KindMultiString }
func (MultiString8) Kind() Kind { return KindMultiString8 }
func (MultiBinary) Kind() Kind  { return KindMultiBinary }

func (Absent) isValue()       {}
func (Unsupported) isValue()  {}
func (Int16) isValue()        {}
func (Int32) isValue()        {}
func (Int64) isValue()        {}
func (Float32) isValue()      {}
func (Float64) isValue()      {}
func (Bool) isValue()         {}
func (Time) isValue()         {}
func (String) isValue()       {}
func (String8) isValue()      {}
func (Binary) isValue()       {}
func (GUID) isValue()         {}
func (Object) isValue()       {}
func (MultiInt16) isValue()   {}
func (MultiInt32) isValue()   {}
func (MultiInt64) isValue()   {}
func (MultiFloat32) isValue() {}
func (MultiFloat64) isValue() {}
func (MultiGUID) isValue()    {}
func (MultiString) isValue()  {}
func (MultiString8) isValue() {}
func (MultiBinary) isValue()  {}

// IsAbsent reports whether v is nil or Absent.
func IsAbsent(v Value) bool {
	return v == nil || v.Kind() == KindAbsent
}

// AsString returns the text of a String or String8 value.
func AsString(v Value) (string, bool) {
	switch x := v.(type) {
	case String:
		return string(x), true
	case String8:
		return string(x), true
	}
	return "", false
}

// AsInt returns the integer held by an Int16, Int32 or Int64 value.
func AsInt(v Value) (int64, bool) {
	switch x := v.(type) {
	case Int16:
		return int64(x), true
	case Int32:
		return int64(x), true
	case Int64:
		return int64(x), true
	}
	return 0, false
}

// AsBool returns the boolean held by a Bool value.
func AsBool(v Value) (bool, bool) {
	b, ok := v.(Bool)
	return bool(b), ok
}

// AsTime returns the timestamp held by a Time value.
func AsTime(v Value) (time.Time, bool) {
	t, ok := v.(Time)
	return t.Time, ok
}

// AsBytes returns the payload of a Binary value, or of an Object backed by
// a stream.
func AsBytes(v Value) ([]byte, bool) {
	switch x := v.(type) {
	case Binary:
		return []byte(x), true
	case Object:
		if x.Storage == nil {
			return x.Data, true
		}
	}
	return nil, false
}

// AsGUID returns the identifier held by a GUID value.
func AsGUID(v Value) (uuid.UUID, bool) {
	g, ok := v.(GUID)
	return uuid.UUID(g), ok
}
