package msg

import "fmt"

// RecipientType is the value of PidTagRecipientType.
type RecipientType int32

const (
	RecipientOriginator RecipientType = 0
	RecipientTo         RecipientType = 1
	RecipientCc         RecipientType = 2
	RecipientBcc        RecipientType = 3
)

func (t RecipientType) String() string {
	switch t {
	case RecipientOriginator:
		return "originator"
	case RecipientTo:
		return "to"
	case RecipientCc:
		return "cc"
	case RecipientBcc:
		return "bcc"
	default:
		return fmt.Sprintf("RecipientType(%d)", int32(t))
	}
}

// Recipient is one "__recip_version1.0_" storage.
type Recipient struct {
	object
}

func newRecipient(node StorageNode, parent string, mapping *NamedPropertyMapping, opts *options) (*Recipient, error) {
	obj, err := newObject(node, parent, HeaderChild, mapping, opts)
	if err != nil {
		return nil, err
	}
	return &Recipient{object: obj}, nil
}

// RowID returns PidTagRowid, 0 when absent.
func (r *Recipient) RowID() int64 {
	n, _ := r.intProp(PidTagRowid)
	return n
}

// Type returns PidTagRecipientType. The high bits carry flags and are
// masked off.
func (r *Recipient) Type() RecipientType {
	n, _ := r.intProp(PidTagRecipientType)
	return RecipientType(n & 0x0F)
}

// DisplayName returns PidTagDisplayName.
func (r *Recipient) DisplayName() string { return r.stringProp(PidTagDisplayName) }

// AddressType returns PidTagAddressType.
func (r *Recipient) AddressType() string { return r.stringProp(PidTagAddressType) }

// EmailAddress returns PidTagEmailAddress.
func (r *Recipient) EmailAddress() string { return r.stringProp(PidTagEmailAddress) }

// SMTPAddress returns PidTagSmtpAddress.
func (r *Recipient) SMTPAddress() string { return r.stringProp(PidTagSMTPAddress) }

// Address returns the SMTP address when known, otherwise the native
// address of the recipient's address type.
func (r *Recipient) Address() string {
	if s := r.SMTPAddress(); s != "" {
		return s
	}
	return r.EmailAddress()
}
