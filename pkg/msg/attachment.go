package msg

import (
	"fmt"
	"path"
	"strings"
)

// AttachMethod is the value of PidTagAttachMethod.
type AttachMethod int32

// Attachment methods, MS-OXCMSG 2.2.2.9
const (
	AttachNone            AttachMethod = 0
	AttachByValue         AttachMethod = 1
	AttachByReference     AttachMethod = 2
	AttachByRefResolve    AttachMethod = 3
	AttachByRefOnly       AttachMethod = 4
	AttachEmbeddedMessage AttachMethod = 5
	AttachOLE             AttachMethod = 6
	AttachByWebReference  AttachMethod = 7
)

func (m AttachMethod) String() string {
	switch m {
	case AttachNone:
		return "none"
	case AttachByValue:
		return "by-value"
	case AttachByReference:
		return "by-reference"
	case AttachByRefResolve:
		return "by-reference-resolve"
	case AttachByRefOnly:
		return "by-reference-only"
	case AttachEmbeddedMessage:
		return "embedded-message"
	case AttachOLE:
		return "storage"
	case AttachByWebReference:
		return "by-web-reference"
	default:
		return fmt.Sprintf("AttachMethod(%d)", int32(m))
	}
}

// Attachment is one "__attach_version1.0_" storage. Depending on its
// method it carries an embedded message or an opaque custom storage,
// never both.
type Attachment struct {
	object
	embedded *EmbeddedMessage
	custom   StorageNode
}

func newAttachment(node StorageNode, parent string, mapping *NamedPropertyMapping, opts *options) (*Attachment, error) {
	obj, err := newObject(node, parent, HeaderChild, mapping, opts)
	if err != nil {
		return nil, err
	}
	a := &Attachment{object: obj}

	switch a.Method() {
	case AttachEmbeddedMessage:
		child, ok := node.Child(AttachDataObjectName)
		if !ok || child.IsStream() {
			return nil, missingStream("read embedded message", joinPath(a.path, AttachDataObjectName))
		}
		em, err := newEmbeddedMessage(child, a.path, mapping, opts)
		if err != nil {
			return nil, err
		}
		a.embedded = em
	case AttachOLE:
		if child, ok := node.Child(AttachDataObjectName); ok && !child.IsStream() {
			a.custom = child
		}
	}
	return a, nil
}

// EmbeddedMessage returns the embedded message, or nil.
func (a *Attachment) EmbeddedMessage() *EmbeddedMessage {
	return a.embedded
}

// CustomStorage returns the opaque storage of an AttachOLE attachment, or nil.
func (a *Attachment) CustomStorage() StorageNode {
	return a.custom
}

// AttachNumber returns PidTagAttachNumber, 0 when absent.
func (a *Attachment) AttachNumber() int64 {
	n, _ := a.intProp(PidTagAttachNumber)
	return n
}

// Method returns PidTagAttachMethod, AttachNone when absent.
func (a *Attachment) Method() AttachMethod {
	n, _ := a.intProp(PidTagAttachMethod)
	return AttachMethod(n)
}

// DisplayName returns PidTagDisplayName.
func (a *Attachment) DisplayName() string { return a.stringProp(PidTagDisplayName) }

// LongFilename returns PidTagAttachLongFilename.
func (a *Attachment) LongFilename() string { return a.stringProp(PidTagAttachLongFilename) }

// ShortFilename returns PidTagAttachFilename.
func (a *Attachment) ShortFilename() string { return a.stringProp(PidTagAttachFilename) }

// Extension returns PidTagAttachExtension.
func (a *Attachment) Extension() string { return a.stringProp(PidTagAttachExtension) }

// MIMETag returns PidTagAttachMimeTag.
func (a *Attachment) MIMETag() string { return a.stringProp(PidTagAttachMimeTag) }

// ContentID returns PidTagAttachContentId.
func (a *Attachment) ContentID() string { return a.stringProp(PidTagAttachContentID) }

// Name picks the first non-empty of the display name, the long filename
// and the short filename.
func (a *Attachment) Name() string {
	for _, s := range []string{a.DisplayName(), a.LongFilename(), a.ShortFilename()} {
		if s != "" {
			return s
		}
	}
	return ""
}

// Filename is like Name but prefers the filenames and falls back to a
// name derived from the attach number.
func (a *Attachment) Filename() string {
	for _, s := range []string{a.LongFilename(), a.ShortFilename(), a.DisplayName()} {
		if s != "" {
			return path.Base(strings.ReplaceAll(s, "\\", "/"))
		}
	}
	name := fmt.Sprintf("attachment-%d", a.AttachNumber())
	if ext := a.Extension(); ext != "" {
		name += ext
	}
	return name
}

// Data returns the PidTagAttachDataBinary payload of a by-value attachment.
func (a *Attachment) Data() ([]byte, bool) {
	return AsBytes(a.Property(PidTagAttachDataBinary))
}

// Size returns PidTagAttachSize, 0 when absent.
func (a *Attachment) Size() int64 {
	n, _ := a.intProp(PidTagAttachSize)
	return n
}
