package export

import (
	"encoding/hex"
	"strconv"
	"strings"
	"time"

	"github.com/deploymenttheory/go-msgreader/pkg/msg"
	"github.com/deploymenttheory/go-msgreader/pkg/msg/msgtest"
)

var submitted = time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)

var reminderSet = msg.NumericProperty(msg.PSETIDCommon, 0x8580)

// compressedRTF decompresses to "{\rtf1 WXYZWXYZWXYZWXYZWXYZ}".
var compressedRTF, _ = hex.DecodeString("1a0000001c0000004c5a4675e2d44b51410004205758595a0d6e7d010eb0")

func sampleMessage() *msgtest.Object {
	embedded := msgtest.Embedded().
		String(msg.PidTagSubject, "Forwarded").
		String(msg.PidTagBody, "inner body").
		With(msgtest.Recipient(0, 0, msg.RecipientTo).String(msg.PidTagSMTPAddress, "dave@example.com"))

	return msgtest.Message().
		String(msg.PidTagSubject, "Quarterly report").
		Time(msg.PidTagClientSubmitTime, submitted).
		String(msg.PidTagSenderName, "Alice").
		String(msg.PidTagSenderEmailAddress, "alice@example.com").
		String(msg.PidTagBody, "See attached.").
		String(msg.NamedPropertyBase, "reminder").
		Add(msgtest.Names(reminderSet)).
		With(
			msgtest.Recipient(0, 0, msg.RecipientTo).
				String(msg.PidTagDisplayName, "Bob").
				String(msg.PidTagSMTPAddress, "bob@example.com"),
			msgtest.Recipient(1, 1, msg.RecipientCc).
				String(msg.PidTagDisplayName, "Carol").
				String(msg.PidTagEmailAddress, "carol@example.com"),
			msgtest.Attachment(0, 0).
				Int32(msg.PidTagAttachMethod, int32(msg.AttachByValue)).
				String(msg.PidTagAttachLongFilename, "report.csv").
				Binary(msg.PidTagAttachDataBinary, []byte("a,b\n1,2\n")),
			msgtest.Attachment(1, 1).
				String(msg.PidTagDisplayName, "Forwarded").
				Embed(embedded),
		)
}

// valueAt walks decoded JSON along a dot-separated path. Numeric segments
// index into arrays.
func valueAt(doc interface{}, path string) (interface{}, bool) {
	current := doc
	for _, key := range strings.Split(path, ".") {
		switch node := current.(type) {
		case map[string]interface{}:
			next, ok := node[key]
			if !ok {
				return nil, false
			}
			current = next
		case []interface{}:
			i, err := strconv.Atoi(key)
			if err != nil || i < 0 || i >= len(node) {
				return nil, false
			}
			current = node[i]
		default:
			return nil, false
		}
	}
	return current, true
}
