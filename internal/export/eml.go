package export

import (
	"bytes"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"strings"
	"time"

	"github.com/jhillyerd/enmime"

	"github.com/deploymenttheory/go-msgreader/internal/logger"
	"github.com/deploymenttheory/go-msgreader/internal/rtf"
	errs "github.com/deploymenttheory/go-msgreader/internal/utils/errors"
	"github.com/deploymenttheory/go-msgreader/pkg/msg"
)

// Fallbacks for headers the MIME builder requires.
const (
	DefaultSender  = "unknown@invalid"
	DefaultSubject = "(no subject)"
)

// mailView is what an RFC 5322 rendition needs from a message.
type mailView interface {
	messageView
	Subject() string
	Body() string
	BodyHTML() string
	RTFCompressed() ([]byte, bool)
	SenderName() string
	SenderEmailAddress() string
	InternetMessageID() string
	Date() (time.Time, bool)
}

// WriteEML renders m as a MIME message. Embedded messages become
// message/rfc822 parts; custom storage attachments are skipped.
func WriteEML(w io.Writer, m *msg.Message) error {
	part, err := buildMail(m)
	if err != nil {
		return err
	}
	if err := part.Encode(w); err != nil {
		return fmt.Errorf("%w: %v", errs.ErrMIMEBuildFailed, err)
	}
	return nil
}

func buildMail(m mailView) (*enmime.Part, error) {
	sender := m.SenderEmailAddress()
	if !strings.Contains(sender, "@") {
		sender = DefaultSender
	}
	subject := m.Subject()
	if subject == "" {
		subject = DefaultSubject
	}

	b := enmime.Builder().
		From(m.SenderName(), sender).
		Subject(subject)

	if date, ok := m.Date(); ok {
		b = b.Date(date)
	}
	if id := m.InternetMessageID(); id != "" {
		b = b.Header("Message-ID", id)
	}

	var addressed int
	for _, r := range m.Recipients() {
		addr := r.Address()
		switch r.Type() {
		case msg.RecipientTo:
			b = b.To(r.DisplayName(), addr)
		case msg.RecipientCc:
			b = b.CC(r.DisplayName(), addr)
		case msg.RecipientBcc:
			b = b.BCC(r.DisplayName(), addr)
		default:
			continue
		}
		addressed++
	}
	if addressed == 0 {
		// Bcc is never written as a header, so this only satisfies the
		// builder's recipient check.
		b = b.BCC("undisclosed-recipients", sender)
	}

	text, html := m.Body(), m.BodyHTML()
	if text != "" {
		b = b.Text([]byte(text))
	}
	if html != "" {
		b = b.HTML([]byte(html))
	}
	if text == "" && html == "" {
		if compressed, ok := m.RTFCompressed(); ok {
			if body, err := rtf.Decompress(compressed); err == nil {
				b = b.AddAttachment(body, "application/rtf", "body.rtf")
			} else {
				logger.LogWarn("RTF body not decompressed", map[string]interface{}{"error": err.Error()})
			}
		}
	}

	for _, a := range m.Attachments() {
		p, ok, err := mailPart(a)
		if err != nil {
			return nil, err
		}
		switch {
		case !ok:
		case p.contentID != "" && html != "":
			b = b.AddInline(p.data, p.contentType, p.name, p.contentID)
		default:
			b = b.AddAttachment(p.data, p.contentType, p.name)
		}
	}

	part, err := b.Build()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrMIMEBuildFailed, err)
	}
	return part, nil
}

type attachmentPart struct {
	data        []byte
	contentType string
	name        string
	contentID   string
}

// mailPart returns the MIME part for a. It reports false for attachments
// without a payload.
func mailPart(a *msg.Attachment) (attachmentPart, bool, error) {
	if em := a.EmbeddedMessage(); em != nil {
		part, err := buildMail(em)
		if err != nil {
			return attachmentPart{}, false, fmt.Errorf("%s: %w", a.Path(), err)
		}
		var buf bytes.Buffer
		if err := part.Encode(&buf); err != nil {
			return attachmentPart{}, false, fmt.Errorf("%w: %s: %v", errs.ErrMIMEBuildFailed, a.Path(), err)
		}
		name := strings.TrimSuffix(a.Filename(), filepath.Ext(a.Filename()))
		return attachmentPart{data: buf.Bytes(), contentType: "message/rfc822", name: name + ".eml"}, true, nil
	}

	data, ok := a.Data()
	if !ok {
		logger.LogDebug("attachment has no payload", map[string]interface{}{
			"attachment": a.Path(),
			"method":     a.Method().String(),
		})
		return attachmentPart{}, false, nil
	}
	return attachmentPart{
		data:        data,
		contentType: contentType(a),
		name:        a.Filename(),
		contentID:   a.ContentID(),
	}, true, nil
}

func contentType(a *msg.Attachment) string {
	if t := a.MIMETag(); t != "" {
		return t
	}
	if t := mime.TypeByExtension(filepath.Ext(a.Filename())); t != "" {
		return t
	}
	return "application/octet-stream"
}
