// Package msgtest lays out in-memory .msg storage trees for tests of code
// that consumes pkg/msg.
package msgtest

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/deploymenttheory/go-msgreader/pkg/msg"
)

// RootName is the name of the root storage of a compound file.
const RootName = "Root Entry"

// Object accumulates the properties and child storages of one storage.
type Object struct {
	name     string
	kind     msg.HeaderKind
	entries  []msg.PropertyEntry
	children []*msg.Node
}

// Message starts a top-level message.
func Message() *Object {
	return &Object{name: RootName, kind: msg.HeaderTopLevel}
}

// Embedded starts a message to be stored inside an attachment.
func Embedded() *Object {
	return &Object{name: msg.AttachDataObjectName, kind: msg.HeaderEmbedded}
}

// Recipient starts recipient storage index.
func Recipient(index int, rowid int32, typ msg.RecipientType) *Object {
	o := &Object{name: fmt.Sprintf("%s%08X", msg.RecipientStoragePrefix, index), kind: msg.HeaderChild}
	return o.Int32(msg.PidTagRowid, rowid).Int32(msg.PidTagRecipientType, int32(typ))
}

// Attachment starts attachment storage index.
func Attachment(index int, number int32) *Object {
	o := &Object{name: fmt.Sprintf("%s%08X", msg.AttachmentStoragePrefix, index), kind: msg.HeaderChild}
	return o.Int32(msg.PidTagAttachNumber, number)
}

func (o *Object) fixed(id uint16, t msg.PropertyType, inline uint64) *Object {
	o.entries = append(o.entries, msg.PropertyEntry{
		Tag:    msg.PropertyTag{ID: id, Type: t},
		Flags:  msg.FlagReadable | msg.FlagWritable,
		Inline: inline,
	})
	return o
}

func (o *Object) variable(id uint16, t msg.PropertyType, data []byte, size int) *Object {
	o.fixed(id, t, uint64(size))
	o.children = append(o.children, msg.NewStream(msg.SubstgName(id, t), data))
	return o
}

// String adds a PtypString property.
func (o *Object) String(id uint16, s string) *Object {
	data := msg.EncodeUTF16(s)
	return o.variable(id, msg.PtypString, data, len(data)+2)
}

// Int32 adds a PtypInteger32 property.
func (o *Object) Int32(id uint16, v int32) *Object {
	return o.fixed(id, msg.PtypInteger32, uint64(uint32(v)))
}

// Bool adds a PtypBoolean property.
func (o *Object) Bool(id uint16, v bool) *Object {
	var inline uint64
	if v {
		inline = 1
	}
	return o.fixed(id, msg.PtypBoolean, inline)
}

// Time adds a PtypTime property.
func (o *Object) Time(id uint16, t time.Time) *Object {
	return o.fixed(id, msg.PtypTime, msg.TimeToFiletime(t))
}

// Binary adds a PtypBinary property.
func (o *Object) Binary(id uint16, b []byte) *Object {
	return o.variable(id, msg.PtypBinary, b, len(b))
}

// Add appends raw child storages or streams.
func (o *Object) Add(children ...*msg.Node) *Object {
	o.children = append(o.children, children...)
	return o
}

// With appends the storages built by children.
func (o *Object) With(children ...*Object) *Object {
	for _, c := range children {
		o.children = append(o.children, c.Node())
	}
	return o
}

// Embed marks an attachment as an embedded message and stores m in it.
func (o *Object) Embed(m *Object) *Object {
	m.name = msg.AttachDataObjectName
	m.kind = msg.HeaderEmbedded
	return o.Int32(msg.PidTagAttachMethod, int32(msg.AttachEmbeddedMessage)).With(m)
}

// Node encodes the property directory and returns the storage.
func (o *Object) Node() *msg.Node {
	props := msg.Header{Kind: o.kind}.Encode()
	for _, e := range o.entries {
		props = append(props, e.Encode()...)
	}
	n := msg.NewStorage(o.name, msg.NewStream(msg.PropertiesStreamName, props))
	for _, c := range o.children {
		n.Add(c)
	}
	return n
}

// Names encodes a named property mapping. The property at position i is
// assigned id 0x8000+i.
func Names(props ...msg.NamedProperty) *msg.Node {
	var guids []uuid.UUID
	guidIndex := func(g uuid.UUID) int {
		switch g {
		case msg.PSMAPI:
			return 1
		case msg.PSPublicStrings:
			return 2
		}
		for i, known := range guids {
			if known == g {
				return i + 3
			}
		}
		guids = append(guids, g)
		return len(guids) + 2
	}

	var guidBytes, entryBytes, strBytes []byte
	for i, np := range props {
		var first uint32
		packed := uint16(guidIndex(np.GUID) << 1)
		if np.Kind == msg.NamedString {
			packed |= 1
			first = uint32(len(strBytes))
			name := msg.EncodeUTF16(np.Name)
			strBytes = binary.LittleEndian.AppendUint32(strBytes, uint32(len(name)))
			strBytes = append(strBytes, name...)
			for len(strBytes)%4 != 0 {
				strBytes = append(strBytes, 0)
			}
		} else {
			first = np.LID
		}
		entryBytes = binary.LittleEndian.AppendUint32(entryBytes, first)
		entryBytes = binary.LittleEndian.AppendUint16(entryBytes, packed)
		entryBytes = binary.LittleEndian.AppendUint16(entryBytes, uint16(i))
	}
	for _, g := range guids {
		guidBytes = append(guidBytes, msg.EncodeGUID(g)...)
	}

	return msg.NewStorage(msg.NameIDStorageName,
		msg.NewStream(msg.GUIDStreamName, guidBytes),
		msg.NewStream(msg.EntryStreamName, entryBytes),
		msg.NewStream(msg.StringStreamName, strBytes),
	)
}

// Open builds o and opens it with pkg/msg.
func Open(o *Object, opts ...msg.Option) (*msg.Message, error) {
	return msg.Open(o.Node(), opts...)
}
