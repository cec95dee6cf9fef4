package msg

import (
	"strings"
	"time"
)

// StoreSupportMask flags, MS-OXPROPS 2.1030. Informational only: string
// decoding follows the property type code, not this mask.
type StoreSupportMask uint32

const (
	StoreEntryIDUnique   StoreSupportMask = 0x00000001
	StoreReadOnly        StoreSupportMask = 0x00000002
	StoreSearchOK        StoreSupportMask = 0x00000004
	StoreModifyOK        StoreSupportMask = 0x00000008
	StoreCreateOK        StoreSupportMask = 0x00000010
	StoreAttachOK        StoreSupportMask = 0x00000020
	StoreOLEOK           StoreSupportMask = 0x00000040
	StoreSubmitOK        StoreSupportMask = 0x00000080
	StoreNotifyOK        StoreSupportMask = 0x00000100
	StoreMVPropsOK       StoreSupportMask = 0x00000200
	StoreCategorizeOK    StoreSupportMask = 0x00000400
	StoreRTFOK           StoreSupportMask = 0x00000800
	StoreRestrictionOK   StoreSupportMask = 0x00001000
	StoreSortOK          StoreSupportMask = 0x00002000
	StorePublicFolders   StoreSupportMask = 0x00004000
	StoreUncompressedRTF StoreSupportMask = 0x00008000
	StoreHTMLOK          StoreSupportMask = 0x00010000
	StoreANSIOK          StoreSupportMask = 0x00020000
	StoreUnicodeOK       StoreSupportMask = 0x00040000
	StoreLocalStore      StoreSupportMask = 0x00080000
	StoreItemProc        StoreSupportMask = 0x00200000
	StorePushOK          StoreSupportMask = 0x00800000
)

// Has reports whether every bit of flag is set.
func (m StoreSupportMask) Has(flag StoreSupportMask) bool {
	return m&flag == flag
}

// MessageClass returns PidTagMessageClass, e.g. "IPM.Note".
func (m *message) MessageClass() string { return m.stringProp(PidTagMessageClass) }

// Subject returns PidTagSubject.
func (m *message) Subject() string { return m.stringProp(PidTagSubject) }

// Body returns the plain text body, PidTagBody.
func (m *message) Body() string { return m.stringProp(PidTagBody) }

// BodyHTML returns PidTagBodyHtml, which is stored as text or as bytes
// depending on the writer.
func (m *message) BodyHTML() string {
	v := m.Property(PidTagBodyHTML)
	if s, ok := AsString(v); ok {
		return s
	}
	if b, ok := AsBytes(v); ok {
		return string(b)
	}
	return ""
}

// RTFCompressed returns the raw PidTagRtfCompressed stream.
func (m *message) RTFCompressed() ([]byte, bool) {
	return AsBytes(m.Property(PidTagRtfCompressed))
}

// SenderName returns PidTagSenderName, falling back to
// PidTagSentRepresentingName.
func (m *message) SenderName() string {
	if s := m.stringProp(PidTagSenderName); s != "" {
		return s
	}
	return m.stringProp(PidTagSentRepresentingName)
}

// SenderEmailAddress returns PidTagSenderEmailAddress.
func (m *message) SenderEmailAddress() string { return m.stringProp(PidTagSenderEmailAddress) }

// SenderAddressType returns PidTagSenderAddressType, e.g. "SMTP" or "EX".
func (m *message) SenderAddressType() string { return m.stringProp(PidTagSenderAddressType) }

// DisplayTo returns PidTagDisplayTo.
func (m *message) DisplayTo() string { return m.stringProp(PidTagDisplayTo) }

// DisplayCc returns PidTagDisplayCc.
func (m *message) DisplayCc() string { return m.stringProp(PidTagDisplayCc) }

// DisplayBcc returns PidTagDisplayBcc.
func (m *message) DisplayBcc() string { return m.stringProp(PidTagDisplayBcc) }

// InternetMessageID returns PidTagInternetMessageId.
func (m *message) InternetMessageID() string { return m.stringProp(PidTagInternetMessageID) }

// TransportHeaders returns PidTagTransportMessageHeaders.
func (m *message) TransportHeaders() string { return m.stringProp(PidTagTransportHeaders) }

// ClientSubmitTime returns PidTagClientSubmitTime.
func (m *message) ClientSubmitTime() (time.Time, bool) {
	return AsTime(m.Property(PidTagClientSubmitTime))
}

// DeliveryTime returns PidTagMessageDeliveryTime.
func (m *message) DeliveryTime() (time.Time, bool) {
	return AsTime(m.Property(PidTagMessageDeliveryTime))
}

// Date returns the submit time, then the delivery time, then the creation
// time, whichever is present first.
func (m *message) Date() (time.Time, bool) {
	for _, id := range []uint16{PidTagClientSubmitTime, PidTagMessageDeliveryTime, PidTagCreationTime} {
		if t, ok := AsTime(m.Property(id)); ok {
			return t, true
		}
	}
	return time.Time{}, false
}

// InternetCodepage returns PidTagInternetCodepage, 0 when absent.
func (m *message) InternetCodepage() int64 {
	n, _ := m.intProp(PidTagInternetCodepage)
	return n
}

// StoreSupportMask returns PidTagStoreSupportMask.
func (m *message) StoreSupportMask() (StoreSupportMask, bool) {
	n, ok := m.intProp(PidTagStoreSupportMask)
	return StoreSupportMask(uint32(n)), ok
}

// IsNote reports whether the message class is IPM.Note or a subclass.
func (m *message) IsNote() bool {
	class := strings.ToUpper(m.MessageClass())
	return class == "IPM.NOTE" || strings.HasPrefix(class, "IPM.NOTE.")
}
