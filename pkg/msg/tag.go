package msg

import "fmt"

// PropertyType is the 16-bit type code in the high half of a property tag.
type PropertyType uint16

// Property type codes, MS-OXCDATA 2.11.1
const (
	PtypUnspecified  PropertyType = 0x0000
	PtypNull         PropertyType = 0x0001
	PtypInteger16    PropertyType = 0x0002
	PtypInteger32    PropertyType = 0x0003
	PtypFloating32   PropertyType = 0x0004
	PtypFloating64   PropertyType = 0x0005
	PtypCurrency     PropertyType = 0x0006
	PtypFloatingTime PropertyType = 0x0007
	PtypErrorCode    PropertyType = 0x000A
	PtypBoolean      PropertyType = 0x000B
	PtypObject       PropertyType = 0x000D
	PtypInteger64    PropertyType = 0x0014
	PtypString8      PropertyType = 0x001E
	PtypString       PropertyType = 0x001F
	PtypTime         PropertyType = 0x0040
	PtypGUID         PropertyType = 0x0048
	PtypServerID     PropertyType = 0x00FB
	PtypRestriction  PropertyType = 0x00FD
	PtypRuleAction   PropertyType = 0x00FE
	PtypBinary       PropertyType = 0x0102

	PtypMultipleInteger16    PropertyType = 0x1002
	PtypMultipleInteger32    PropertyType = 0x1003
	PtypMultipleFloating32   PropertyType = 0x1004
	PtypMultipleFloating64   PropertyType = 0x1005
	PtypMultipleCurrency     PropertyType = 0x1006
	PtypMultipleFloatingTime PropertyType = 0x1007
	PtypMultipleInteger64    PropertyType = 0x1014
	PtypMultipleString8      PropertyType = 0x101E
	PtypMultipleString       PropertyType = 0x101F
	PtypMultipleTime         PropertyType = 0x1040
	PtypMultipleGUID         PropertyType = 0x1048
	PtypMultipleBinary       PropertyType = 0x1102
)

// multiValuedFlag marks the multi-valued variant of a base type.
const multiValuedFlag PropertyType = 0x1000

var typeNames = map[PropertyType]string{
	PtypUnspecified:          "PtypUnspecified",
	PtypNull:                 "PtypNull",
	PtypInteger16:            "PtypInteger16",
	PtypInteger32:            "PtypInteger32",
	PtypFloating32:           "PtypFloating32",
	PtypFloating64:           "PtypFloating64",
	PtypCurrency:             "PtypCurrency",
	PtypFloatingTime:         "PtypFloatingTime",
	PtypErrorCode:            "PtypErrorCode",
	PtypBoolean:              "PtypBoolean",
	PtypObject:               "PtypObject",
	PtypInteger64:            "PtypInteger64",
	PtypString8:              "PtypString8",
	PtypString:               "PtypString",
	PtypTime:                 "PtypTime",
	PtypGUID:                 "PtypGuid",
	PtypServerID:             "PtypServerId",
	PtypRestriction:          "PtypRestriction",
	PtypRuleAction:           "PtypRuleAction",
	PtypBinary:               "PtypBinary",
	PtypMultipleInteger16:    "PtypMultipleInteger16",
	PtypMultipleInteger32:    "PtypMultipleInteger32",
	PtypMultipleFloating32:   "PtypMultipleFloating32",
	PtypMultipleFloating64:   "PtypMultipleFloating64",
	PtypMultipleCurrency:     "PtypMultipleCurrency",
	PtypMultipleFloatingTime: "PtypMultipleFloatingTime",
	PtypMultipleInteger64:    "PtypMultipleInteger64",
	PtypMultipleString8:      "PtypMultipleString8",
	PtypMultipleString:       "PtypMultipleString",
	PtypMultipleTime:         "PtypMultipleTime",
	PtypMultipleGUID:         "PtypMultipleGuid",
	PtypMultipleBinary:       "PtypMultipleBinary",
}

// String returns the MS-OXCDATA name of the type, or its hex code.
func (t PropertyType) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("0x%04X", uint16(t))
}

// IsMultiValued reports whether t is a multi-valued type.
func (t PropertyType) IsMultiValued() bool {
	return t&multiValuedFlag != 0
}

// PropertyTag identifies one property: the id in the low 16 bits and the
// type in the high 16 bits of its packed form.
type PropertyTag struct {
	ID   uint16
	Type PropertyType
}

// TagFromUint32 unpacks a 32-bit property tag.
func TagFromUint32(v uint32) PropertyTag {
	return PropertyTag{ID: uint16(v >> 16), Type: PropertyType(v & 0xFFFF)}
}

// Uint32 packs the tag into its 32-bit form.
func (t PropertyTag) Uint32() uint32 {
	return uint32(t.ID)<<16 | uint32(t.Type)
}

// String formats the tag as eight uppercase hex digits, id first.
func (t PropertyTag) String() string {
	return fmt.Sprintf("%04X%04X", t.ID, uint16(t.Type))
}

// IsNamed reports whether the id lies in the named-property range.
func (t PropertyTag) IsNamed() bool {
	return t.ID >= NamedPropertyBase
}

// Fixed stream and storage names, MS-OXMSG 2.2
const (
	PropertiesStreamName    = "__properties_version1.0"
	NameIDStorageName       = "__nameid_version1.0"
	RecipientStoragePrefix  = "__recip_version1.0_"
	AttachmentStoragePrefix = "__attach_version1.0_"
	SubstgPrefix            = "__substg1.0_"

	GUIDStreamName   = "__substg1.0_00020102"
	EntryStreamName  = "__substg1.0_00030102"
	StringStreamName = "__substg1.0_00040102"

	AttachDataObjectName = "__substg1.0_3701000D"
)

// SubstgName returns the name of the stream holding the value of a
// variable-length or multi-valued property.
func SubstgName(id uint16, t PropertyType) string {
	return fmt.Sprintf("%s%04X%04X", SubstgPrefix, id, uint16(t))
}

// SubstgValueName returns the name of the stream holding element index of
// a variable-length multi-valued property.
func SubstgValueName(id uint16, t PropertyType, index int) string {
	return fmt.Sprintf("%s-%08X", SubstgName(id, t), uint32(index))
}

// Property ids used by the object tree and the typed accessors.
const (
	PidTagMessageClass         uint16 = 0x001A
	PidTagSubject              uint16 = 0x0037
	PidTagClientSubmitTime     uint16 = 0x0039
	PidTagSentRepresentingName uint16 = 0x0042
	PidTagConversationTopic    uint16 = 0x0070
	PidTagTransportHeaders     uint16 = 0x007D
	PidTagRecipientType        uint16 = 0x0C15
	PidTagSenderName           uint16 = 0x0C1A
	PidTagSenderAddressType    uint16 = 0x0C1E
	PidTagSenderEmailAddress   uint16 = 0x0C1F
	PidTagDisplayBcc           uint16 = 0x0E02
	PidTagDisplayCc            uint16 = 0x0E03
	PidTagDisplayTo            uint16 = 0x0E04
	PidTagMessageDeliveryTime  uint16 = 0x0E06
	PidTagMessageFlags         uint16 = 0x0E07
	PidTagMessageSize          uint16 = 0x0E08
	PidTagAttachSize           uint16 = 0x0E20
	PidTagAttachNumber         uint16 = 0x0E21
	PidTagBody                 uint16 = 0x1000
	PidTagRtfCompressed        uint16 = 0x1009
	PidTagBodyHTML             uint16 = 0x1013
	PidTagInternetMessageID    uint16 = 0x1035
	PidTagInternetCodepage     uint16 = 0x3FDE
	PidTagRowid                uint16 = 0x3000
	PidTagDisplayName          uint16 = 0x3001
	PidTagAddressType          uint16 = 0x3002
	PidTagEmailAddress         uint16 = 0x3003
	PidTagCreationTime         uint16 = 0x3007
	PidTagLastModificationTime uint16 = 0x3008
	PidTagStoreSupportMask     uint16 = 0x340D
	PidTagAttachDataBinary     uint16 = 0x3701
	PidTagAttachExtension      uint16 = 0x3703
	PidTagAttachFilename       uint16 = 0x3704
	PidTagAttachMethod         uint16 = 0x3705
	PidTagAttachLongFilename   uint16 = 0x3707
	PidTagAttachMimeTag        uint16 = 0x370E
	PidTagAttachContentID      uint16 = 0x3712
	PidTagAttachFlags          uint16 = 0x3714
	PidTagSMTPAddress          uint16 = 0x39FE
)

// propertyNames labels the ids above for dumps.
var propertyNames = map[uint16]string{
	PidTagMessageClass:         "PidTagMessageClass",
	PidTagSubject:              "PidTagSubject",
	PidTagClientSubmitTime:     "PidTagClientSubmitTime",
	PidTagSentRepresentingName: "PidTagSentRepresentingName",
	PidTagConversationTopic:    "PidTagConversationTopic",
	PidTagTransportHeaders:     "PidTagTransportMessageHeaders",
	PidTagRecipientType:        "PidTagRecipientType",
	PidTagSenderName:           "PidTagSenderName",
	PidTagSenderAddressType:    "PidTagSenderAddressType",
	PidTagSenderEmailAddress:   "PidTagSenderEmailAddress",
	PidTagDisplayBcc:           "PidTagDisplayBcc",
	PidTagDisplayCc:            "PidTagDisplayCc",
	PidTagDisplayTo:            "PidTagDisplayTo",
	PidTagMessageDeliveryTime:  "PidTagMessageDeliveryTime",
	PidTagMessageFlags:         "PidTagMessageFlags",
	PidTagMessageSize:          "PidTagMessageSize",
	PidTagAttachSize:           "PidTagAttachSize",
	PidTagAttachNumber:         "PidTagAttachNumber",
	PidTagBody:                 "PidTagBody",
	PidTagRtfCompressed:        "PidTagRtfCompressed",
	PidTagBodyHTML:             "PidTagBodyHtml",
	PidTagInternetMessageID:    "PidTagInternetMessageId",
	PidTagInternetCodepage:     "PidTagInternetCodepage",
	PidTagRowid:                "PidTagRowid",
	PidTagDisplayName:          "PidTagDisplayName",
	PidTagAddressType:          "PidTagAddressType",
	PidTagEmailAddress:         "PidTagEmailAddress",
	PidTagCreationTime:         "PidTagCreationTime",
	PidTagLastModificationTime: "PidTagLastModificationTime",
	PidTagStoreSupportMask:     "PidTagStoreSupportMask",
	PidTagAttachDataBinary:     "PidTagAttachDataBinary",
	PidTagAttachExtension:      "PidTagAttachExtension",
	PidTagAttachFilename:       "PidTagAttachFilename",
	PidTagAttachMethod:         "PidTagAttachMethod",
	PidTagAttachLongFilename:   "PidTagAttachLongFilename",
	PidTagAttachMimeTag:        "PidTagAttachMimeTag",
	PidTagAttachContentID:      "PidTagAttachContentId",
	PidTagAttachFlags:          "PidTagAttachFlags",
	PidTagSMTPAddress:          "PidTagSmtpAddress",
}

// PropertyName returns the canonical name of a well-known property id.
func PropertyName(id uint16) (string, bool) {
	name, ok := propertyNames[id]
	return name, ok
}
