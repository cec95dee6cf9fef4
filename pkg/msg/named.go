package msg

import (
	"encoding/binary"
	"fmt"
	"sort"

	"github.com/google/uuid"
)

// NamedPropertyBase is the first property id assigned to named properties.
const NamedPropertyBase = 0x8000

// maxNamedIndex bounds the property index stored in an entry record.
const maxNamedIndex = 0xFFFF - NamedPropertyBase

// Well-known property sets, MS-OXPROPS 1.3.2
var (
	PSMAPI            = uuid.MustParse("00020328-0000-0000-c000-000000000046")
	PSPublicStrings   = uuid.MustParse("00020329-0000-0000-c000-000000000046")
	PSInternetHeaders = uuid.MustParse("00020386-0000-0000-c000-000000000046")
	PSETIDCommon      = uuid.MustParse("00062008-0000-0000-c000-000000000046")
	PSETIDAddress     = uuid.MustParse("00062004-0000-0000-c000-000000000046")
	PSETIDAppointment = uuid.MustParse("00062002-0000-0000-c000-000000000046")
	PSETIDTask        = uuid.MustParse("00062003-0000-0000-c000-000000000046")
	PSETIDLog         = uuid.MustParse("0006200a-0000-0000-c000-000000000046")
	PSETIDNote        = uuid.MustParse("0006200e-0000-0000-c000-000000000046")
	PSETIDMeeting     = uuid.MustParse("6ed8da90-450b-101b-98da-00aa003f1305")
)

// Entry stream GUID indexes with fixed meaning
const (
	guidIndexMAPI          = 1
	guidIndexPublicStrings = 2
	guidIndexFirstStream   = 3
)

// NamedKind tells numeric named properties from string named ones.
type NamedKind uint8

const (
	NamedNumeric NamedKind = iota
	NamedString
)

// NamedProperty identifies a property by property set and either a
// numeric local id or a name. Two values are equal when kind, set and
// lid or name match, so NamedProperty works as a map key.
type NamedProperty struct {
	Kind NamedKind
	GUID uuid.UUID
	LID  uint32
	Name string
}

// NumericProperty returns a numeric named property.
func NumericProperty(set uuid.UUID, lid uint32) NamedProperty {
	return NamedProperty{Kind: NamedNumeric, GUID: set, LID: lid}
}

// StringProperty returns a string named property.
func StringProperty(set uuid.UUID, name string) NamedProperty {
	return NamedProperty{Kind: NamedString, GUID: set, Name: name}
}

func (np NamedProperty) String() string {
	if np.Kind == NamedString {
		return fmt.Sprintf("{%s}/%q", np.GUID, np.Name)
	}
	return fmt.Sprintf("{%s}/0x%04X", np.GUID, np.LID)
}

// NamedPropertyMapping resolves named properties to file-local ids and
// back. It is built once from the top-level mapping storage and shared,
// read-only, by every object of the tree.
type NamedPropertyMapping struct {
	byName  map[NamedProperty]uint16
	byIndex map[uint16]NamedProperty
}

// NewNamedPropertyMapping decodes the GUID, entry and string streams of
// the "__nameid_version1.0" storage.
func NewNamedPropertyMapping(storage StorageNode) (*NamedPropertyMapping, error) {
	const op = "read named property mapping"

	guids, err := requiredStream(storage, GUIDStreamName, op)
	if err != nil {
		return nil, err
	}
	entries, err := requiredStream(storage, EntryStreamName, op)
	if err != nil {
		return nil, err
	}
	strs, err := requiredStream(storage, StringStreamName, op)
	if err != nil {
		return nil, err
	}

	if len(guids)%GUIDSize != 0 {
		return nil, corrupted(op, GUIDStreamName, "length %d is not a multiple of %d", len(guids), GUIDSize)
	}
	if len(entries)%8 != 0 {
		return nil, corrupted(op, EntryStreamName, "length %d is not a multiple of 8", len(entries))
	}

	m := &NamedPropertyMapping{
		byName:  make(map[NamedProperty]uint16, len(entries)/8),
		byIndex: make(map[uint16]NamedProperty, len(entries)/8),
	}

	for off := 0; off < len(entries); off += 8 {
		nameOrOffset := binary.LittleEndian.Uint32(entries[off:])
		packed := binary.LittleEndian.Uint16(entries[off+4:])
		index := binary.LittleEndian.Uint16(entries[off+6:])

		if int(index) > maxNamedIndex {
			return nil, corrupted(op, EntryStreamName, "property index %d at offset %d out of range", index, off)
		}

		set, err := resolveGUID(guids, int(packed>>1), off)
		if err != nil {
			return nil, err
		}

		var np NamedProperty
		if packed&1 == 0 {
			np = NumericProperty(set, nameOrOffset)
		} else {
			name, err := readName(strs, nameOrOffset)
			if err != nil {
				return nil, err
			}
			np = StringProperty(set, name)
		}

		m.byName[np] = index
		m.byIndex[index] = np
	}

	return m, nil
}

func requiredStream(storage StorageNode, name, op string) ([]byte, error) {
	data, ok, err := streamBytes(storage, name)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, missingStream(op, name)
	}
	return data, nil
}

func resolveGUID(guids []byte, guidIndex, entryOffset int) (uuid.UUID, error) {
	switch guidIndex {
	case guidIndexMAPI:
		return PSMAPI, nil
	case guidIndexPublicStrings:
		return PSPublicStrings, nil
	}
	// Index 0 is reserved; writers that use it mean the first GUID of the
	// stream.
	slot := guidIndex
	if guidIndex >= guidIndexFirstStream {
		slot = guidIndex - guidIndexFirstStream
	}
	pos := slot * GUIDSize
	if pos+GUIDSize > len(guids) {
		return uuid.Nil, corrupted("read named property mapping", GUIDStreamName,
			"GUID index %d of entry at offset %d out of range", guidIndex, entryOffset)
	}
	return DecodeGUID(guids[pos : pos+GUIDSize])
}

// readName reads a {u32 length, UTF-16LE name} record of the string stream.
func readName(strs []byte, offset uint32) (string, error) {
	if uint64(offset)+4 > uint64(len(strs)) {
		return "", corrupted("read named property mapping", StringStreamName, "name offset %d out of range", offset)
	}
	n := binary.LittleEndian.Uint32(strs[offset:])
	start := int(offset) + 4
	if uint64(start)+uint64(n) > uint64(len(strs)) {
		return "", corrupted("read named property mapping", StringStreamName,
			"name at offset %d with length %d exceeds stream length %d", offset, n, len(strs))
	}
	return DecodeUTF16(strs[start : start+int(n)]), nil
}

// ID returns the property id assigned to np.
func (m *NamedPropertyMapping) ID(np NamedProperty) (uint16, bool) {
	if m == nil {
		return 0, false
	}
	index, ok := m.byName[np]
	if !ok {
		return 0, false
	}
	return NamedPropertyBase + index, true
}

// Lookup returns the named property assigned to id.
func (m *NamedPropertyMapping) Lookup(id uint16) (NamedProperty, bool) {
	if m == nil || id < NamedPropertyBase {
		return NamedProperty{}, false
	}
	np, ok := m.byIndex[id-NamedPropertyBase]
	return np, ok
}

// Len returns the number of mapped properties.
func (m *NamedPropertyMapping) Len() int {
	if m == nil {
		return 0
	}
	return len(m.byIndex)
}

// IDs returns the mapped property ids in ascending order.
func (m *NamedPropertyMapping) IDs() []uint16 {
	if m == nil {
		return nil
	}
	ids := make([]uint16, 0, len(m.byIndex))
	for index := range m.byIndex {
		ids = append(ids, NamedPropertyBase+index)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
