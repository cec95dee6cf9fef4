package msg

import (
	"encoding/binary"
	"fmt"

	"github.com/google/uuid"
)

// Helpers that lay out synthetic storage trees the way a .msg writer does.

func entry(id uint16, t PropertyType, inline uint64) PropertyEntry {
	return PropertyEntry{Tag: PropertyTag{ID: id, Type: t}, Flags: FlagReadable | FlagWritable, Inline: inline}
}

func propertiesStream(kind HeaderKind, entries ...PropertyEntry) *Node {
	b := Header{Kind: kind}.Encode()
	for _, e := range entries {
		b = append(b, e.Encode()...)
	}
	return NewStream(PropertiesStreamName, b)
}

func utf16z(s string) []byte {
	return append(EncodeUTF16(s), 0, 0)
}

func u32s(values ...uint32) []byte {
	b := make([]byte, 4*len(values))
	for i, v := range values {
		binary.LittleEndian.PutUint32(b[4*i:], v)
	}
	return b
}

func stringEntry(id uint16, s string) (PropertyEntry, *Node) {
	data := EncodeUTF16(s)
	return entry(id, PtypString, uint64(len(data)+2)), NewStream(SubstgName(id, PtypString), data)
}

func recipientStorage(index int, rowid int32, children ...*Node) *Node {
	entries := []PropertyEntry{entry(PidTagRowid, PtypInteger32, uint64(uint32(rowid)))}
	return childStorage(fmt.Sprintf("%s%08X", RecipientStoragePrefix, index), entries, children...)
}

func attachmentStorage(index int, number int32, children ...*Node) *Node {
	entries := []PropertyEntry{entry(PidTagAttachNumber, PtypInteger32, uint64(uint32(number)))}
	return childStorage(fmt.Sprintf("%s%08X", AttachmentStoragePrefix, index), entries, children...)
}

// childStorage builds an attachment or recipient storage. Extra entries
// can be supplied as a properties stream among children, which replaces
// the generated one.
func childStorage(name string, entries []PropertyEntry, children ...*Node) *Node {
	n := NewStorage(name, propertiesStream(HeaderChild, entries...))
	for _, c := range children {
		n.Add(c)
	}
	return n
}

type nameEntry struct {
	np        NamedProperty
	guidIndex int
	index     uint16
}

// nameidStorage encodes a "__nameid_version1.0" storage. GUIDs of entries
// with guidIndex >= 3 are taken from guids.
func nameidStorage(guids []uuid.UUID, entries []nameEntry) *Node {
	var guidBytes, entryBytes, strBytes []byte
	for _, g := range guids {
		guidBytes = append(guidBytes, EncodeGUID(g)...)
	}
	for _, e := range entries {
		var first uint32
		packed := uint16(e.guidIndex << 1)
		if e.np.Kind == NamedString {
			packed |= 1
			first = uint32(len(strBytes))
			name := EncodeUTF16(e.np.Name)
			strBytes = append(strBytes, u32s(uint32(len(name)))...)
			strBytes = append(strBytes, name...)
			for len(strBytes)%4 != 0 {
				strBytes = append(strBytes, 0)
			}
		} else {
			first = e.np.LID
		}
		rec := make([]byte, 8)
		binary.LittleEndian.PutUint32(rec[0:4], first)
		binary.LittleEndian.PutUint16(rec[4:6], packed)
		binary.LittleEndian.PutUint16(rec[6:8], e.index)
		entryBytes = append(entryBytes, rec...)
	}
	return NewStorage(NameIDStorageName,
		NewStream(GUIDStreamName, guidBytes),
		NewStream(EntryStreamName, entryBytes),
		NewStream(StringStreamName, strBytes),
	)
}
