package msg

import (
	"path"
	"sort"
)

// PropertyValue is one decoded property of an object. Err records why a
// present entry decoded to Absent.
type PropertyValue struct {
	Tag   PropertyTag
	Flags EntryFlags
	Value Value
	Err   error
}

// PropertyStream is the property directory of one object storage plus
// on-demand value decoding against that storage. It is immutable once
// built.
type PropertyStream struct {
	node    StorageNode
	header  Header
	entries map[uint16]PropertyEntry
	ids     []uint16
	mapping *NamedPropertyMapping
}

// NewPropertyStream reads the "__properties_version1.0" stream of node
// using the header layout selected by kind. mapping may be nil, in which
// case named lookups report Absent.
func NewPropertyStream(node StorageNode, kind HeaderKind, mapping *NamedPropertyMapping) (*PropertyStream, error) {
	const op = "read property stream"
	object := path.Join(node.Name(), PropertiesStreamName)

	data, ok, err := streamBytes(node, PropertiesStreamName)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, missingStream(op, object)
	}

	header, err := decodeHeader(kind, data, object)
	if err != nil {
		return nil, err
	}

	body := data[kind.Size():]
	if len(body)%EntrySize != 0 {
		return nil, corrupted(op, object, "%d bytes after %d-byte %s header is not a multiple of %d",
			len(body), kind.Size(), kind, EntrySize)
	}

	s := &PropertyStream{
		node:    node,
		header:  header,
		entries: make(map[uint16]PropertyEntry, len(body)/EntrySize),
		mapping: mapping,
	}
	for off := 0; off < len(body); off += EntrySize {
		e, err := DecodeEntry(body[off : off+EntrySize])
		if err != nil {
			return nil, err
		}
		s.entries[e.Tag.ID] = e
	}

	s.ids = make([]uint16, 0, len(s.entries))
	for id := range s.entries {
		s.ids = append(s.ids, id)
	}
	sort.Slice(s.ids, func(i, j int) bool { return s.ids[i] < s.ids[j] })

	return s, nil
}

// Header returns the decoded header.
func (s *PropertyStream) Header() Header {
	return s.header
}

// Node returns the storage the directory was read from.
func (s *PropertyStream) Node() StorageNode {
	return s.node
}

// Mapping returns the named property mapping shared with this stream.
func (s *PropertyStream) Mapping() *NamedPropertyMapping {
	return s.mapping
}

// Len returns the number of directory entries.
func (s *PropertyStream) Len() int {
	return len(s.ids)
}

// IDs returns the property ids of the directory in ascending order.
func (s *PropertyStream) IDs() []uint16 {
	out := make([]uint16, len(s.ids))
	copy(out, s.ids)
	return out
}

// Entry returns the directory entry for id.
func (s *PropertyStream) Entry(id uint16) (PropertyEntry, bool) {
	e, ok := s.entries[id]
	return e, ok
}

// Value decodes the property with the given id. An id with no directory
// entry yields Absent and no error.
func (s *PropertyStream) Value(id uint16) (Value, error) {
	e, ok := s.entries[id]
	if !ok {
		return Absent{}, nil
	}
	return decodeValue(s.node, e)
}

// NamedValue resolves np through the shared mapping and decodes it.
func (s *PropertyStream) NamedValue(np NamedProperty) (Value, error) {
	id, ok := s.mapping.ID(np)
	if !ok {
		return Absent{}, nil
	}
	return s.Value(id)
}

// AllValues decodes every property in ascending id order. A property that
// fails to decode is reported as Absent with Err set; the others are
// unaffected.
func (s *PropertyStream) AllValues() []PropertyValue {
	out := make([]PropertyValue, 0, len(s.ids))
	for _, id := range s.ids {
		e := s.entries[id]
		v, err := decodeValue(s.node, e)
		if err != nil {
			v = Absent{}
		}
		out = append(out, PropertyValue{Tag: e.Tag, Flags: e.Flags, Value: v, Err: err})
	}
	return out
}
