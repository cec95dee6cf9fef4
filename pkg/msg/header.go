package msg

import (
	"encoding/binary"
	"fmt"
)

// HeaderKind selects the header layout that precedes a property directory.
// It is chosen by the object being built, never by inspecting content.
type HeaderKind int

const (
	HeaderTopLevel HeaderKind = iota
	HeaderEmbedded
	HeaderChild // attachments and recipients
)

// Header sizes in bytes
const (
	TopLevelHeaderSize = 32
	EmbeddedHeaderSize = 24
	ChildHeaderSize    = 8
)

// Size returns the number of header bytes for the kind.
func (k HeaderKind) Size() int {
	switch k {
	case HeaderTopLevel:
		return TopLevelHeaderSize
	case HeaderEmbedded:
		return EmbeddedHeaderSize
	default:
		return ChildHeaderSize
	}
}

func (k HeaderKind) String() string {
	switch k {
	case HeaderTopLevel:
		return "top-level"
	case HeaderEmbedded:
		return "embedded"
	case HeaderChild:
		return "attachment/recipient"
	default:
		return fmt.Sprintf("HeaderKind(%d)", int(k))
	}
}

// Header is the decoded property stream header. The counts are
// informational; the object tree derives real counts from child storages.
type Header struct {
	Kind             HeaderKind
	NextRecipientID  uint32
	NextAttachmentID uint32
	RecipientCount   uint32
	AttachmentCount  uint32
}

func decodeHeader(kind HeaderKind, b []byte, object string) (Header, error) {
	if len(b) < kind.Size() {
		return Header{}, corrupted("decode header", object,
			"%s header needs %d bytes, stream has %d", kind, kind.Size(), len(b))
	}
	h := Header{Kind: kind}
	if kind == HeaderChild {
		return h, nil
	}
	h.NextRecipientID = binary.LittleEndian.Uint32(b[8:12])
	h.NextAttachmentID = binary.LittleEndian.Uint32(b[12:16])
	h.RecipientCount = binary.LittleEndian.Uint32(b[16:20])
	h.AttachmentCount = binary.LittleEndian.Uint32(b[20:24])
	return h, nil
}

// Encode writes the header in its on-disk layout.
func (h Header) Encode() []byte {
	b := make([]byte, h.Kind.Size())
	if h.Kind == HeaderChild {
		return b
	}
	binary.LittleEndian.PutUint32(b[8:12], h.NextRecipientID)
	binary.LittleEndian.PutUint32(b[12:16], h.NextAttachmentID)
	binary.LittleEndian.PutUint32(b[16:20], h.RecipientCount)
	binary.LittleEndian.PutUint32(b[20:24], h.AttachmentCount)
	return b
}
