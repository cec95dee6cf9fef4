package export

import "github.com/deploymenttheory/go-msgreader/pkg/msg"

// Payload is the content of one by-value attachment.
type Payload struct {
	Source string
	Name   string
	Data   []byte
}

// Payloads collects the attachment contents of m in attachment order,
// descending into embedded messages when includeEmbedded is set.
func Payloads(m *msg.Message, includeEmbedded bool) []Payload {
	var out []Payload
	collectPayloads(m, includeEmbedded, &out)
	return out
}

func collectPayloads(m messageView, includeEmbedded bool, out *[]Payload) {
	for _, a := range m.Attachments() {
		if em := a.EmbeddedMessage(); em != nil {
			if includeEmbedded {
				collectPayloads(em, includeEmbedded, out)
			}
			continue
		}
		if data, ok := a.Data(); ok {
			*out = append(*out, Payload{Source: a.Path(), Name: a.Filename(), Data: data})
		}
	}
}
