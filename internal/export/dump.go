// Package export renders decoded messages: property dumps, RFC 5322
// conversions and on-disk extraction.
package export

import (
	"encoding/hex"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	errs "github.com/deploymenttheory/go-msgreader/internal/utils/errors"
	"github.com/deploymenttheory/go-msgreader/internal/utils/jsonutil"
	"github.com/deploymenttheory/go-msgreader/internal/utils/plistutil"
	"github.com/deploymenttheory/go-msgreader/pkg/msg"
)

// Dump formats.
const (
	FormatText  = "text"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
	FormatPlist = "plist"
)

// binaryPreview caps the bytes of a binary value shown in a dump.
const binaryPreview = 64

// messageView is the part of the API shared by Message and
// EmbeddedMessage.
type messageView interface {
	Path() string
	Properties() []msg.PropertyValue
	Recipients() []*msg.Recipient
	Attachments() []*msg.Attachment
}

// Dump writes every property of m and of its recipients, attachments and
// embedded messages to w in the given format. Output is deterministic.
func Dump(w io.Writer, m *msg.Message, format string) error {
	switch format {
	case FormatText, "":
		return dumpText(w, m)
	case FormatJSON:
		return jsonutil.Encode(w, Document(m))
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(Document(m)); err != nil {
			return fmt.Errorf("%w: %v", errs.ErrUnsupportedFormat, err)
		}
		return enc.Close()
	case FormatPlist:
		return plistutil.Encode(w, Document(m), plistutil.FormatXML)
	default:
		return fmt.Errorf("%w: %q", errs.ErrUnsupportedFormat, format)
	}
}

// Document is the structured form of a dump. It only holds maps, slices,
// strings, integers, floats and booleans, so every encoder accepts it.
func Document(m *msg.Message) map[string]interface{} {
	doc := messageDocument(m, m.Mapping())
	named := map[string]interface{}{"count": m.Mapping().Len()}
	if err := m.MappingError(); err != nil {
		named["error"] = err.Error()
	}
	doc["named_properties"] = named
	return doc
}

func messageDocument(m messageView, mapping *msg.NamedPropertyMapping) map[string]interface{} {
	recipients := make([]interface{}, 0, len(m.Recipients()))
	for _, r := range m.Recipients() {
		recipients = append(recipients, map[string]interface{}{
			"path":       r.Path(),
			"properties": propertyList(r.Properties(), mapping),
		})
	}

	attachments := make([]interface{}, 0, len(m.Attachments()))
	for _, a := range m.Attachments() {
		doc := map[string]interface{}{
			"path":       a.Path(),
			"method":     a.Method().String(),
			"properties": propertyList(a.Properties(), mapping),
		}
		if em := a.EmbeddedMessage(); em != nil {
			doc["embedded_message"] = messageDocument(em, mapping)
		}
		if cs := a.CustomStorage(); cs != nil {
			doc["custom_storage"] = storageListing(cs)
		}
		attachments = append(attachments, doc)
	}

	return map[string]interface{}{
		"path":        m.Path(),
		"properties":  propertyList(m.Properties(), mapping),
		"recipients":  recipients,
		"attachments": attachments,
	}
}

func propertyList(values []msg.PropertyValue, mapping *msg.NamedPropertyMapping) []interface{} {
	out := make([]interface{}, 0, len(values))
	for _, pv := range values {
		p := map[string]interface{}{
			"tag":   fmt.Sprintf("0x%08X", pv.Tag.Uint32()),
			"type":  pv.Tag.Type.String(),
			"flags": pv.Flags.String(),
			"kind":  pv.Value.Kind().String(),
		}
		if name := propertyLabel(pv.Tag.ID, mapping); name != "" {
			p["name"] = name
		}
		if pv.Err != nil {
			p["error"] = pv.Err.Error()
		} else if v, ok := plainValue(pv.Value); ok {
			p["value"] = v
		}
		out = append(out, p)
	}
	return out
}

// propertyLabel names standard ids and, through the mapping, named ids.
func propertyLabel(id uint16, mapping *msg.NamedPropertyMapping) string {
	if id >= msg.NamedPropertyBase {
		if np, ok := mapping.Lookup(id); ok {
			return np.String()
		}
		return ""
	}
	name, _ := msg.PropertyName(id)
	return name
}

func storageListing(n msg.StorageNode) []interface{} {
	children := n.Children()
	out := make([]interface{}, 0, len(children))
	for _, c := range children {
		entry := map[string]interface{}{"name": c.Name(), "stream": c.IsStream()}
		if c.IsStream() {
			if b, err := c.Bytes(); err == nil {
				entry["size"] = len(b)
			}
		}
		out = append(out, entry)
	}
	return out
}

func binaryString(b []byte) string {
	if len(b) <= binaryPreview {
		return hex.EncodeToString(b)
	}
	return hex.EncodeToString(b[:binaryPreview]) + "..."
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// plainValue converts v to an encoder-friendly value. It reports false for
// Absent.
func plainValue(v msg.Value) (interface{}, bool) {
	switch x := v.(type) {
	case msg.Absent, nil:
		return nil, false
	case msg.Unsupported:
		return x.Type.String(), true
	case msg.Int16:
		return int64(x), true
	case msg.Int32:
		return int64(x), true
	case msg.Int64:
		return int64(x), true
	case msg.Float32:
		return float64(x), true
	case msg.Float64:
		return float64(x), true
	case msg.Bool:
		return bool(x), true
	case msg.Time:
		return formatTime(x.Time), true
	case msg.String:
		return string(x), true
	case msg.String8:
		return string(x), true
	case msg.Binary:
		return binaryString(x), true
	case msg.GUID:
		return uuid.UUID(x).String(), true
	case msg.Object:
		if x.Storage != nil {
			return storageListing(x.Storage), true
		}
		return binaryString(x.Data), true
	case msg.MultiInt16:
		return list(len(x), func(i int) interface{} { return int64(x[i]) }), true
	case msg.MultiInt32:
		return list(len(x), func(i int) interface{} { return int64(x[i]) }), true
	case msg.MultiInt64:
		return list(len(x), func(i int) interface{} { return x[i] }), true
	case msg.MultiFloat32:
		return list(len(x), func(i int) interface{} { return float64(x[i]) }), true
	case msg.MultiFloat64:
		return list(len(x), func(i int) interface{} { return x[i] }), true
	case msg.MultiGUID:
		return list(len(x), func(i int) interface{} { return x[i].String() }), true
	case msg.MultiString:
		return list(len(x), func(i int) interface{} { return x[i] }), true
	case msg.MultiString8:
		return list(len(x), func(i int) interface{} { return x[i] }), true
	case msg.MultiBinary:
		return list(len(x), func(i int) interface{} { return binaryString(x[i]) }), true
	}
	return fmt.Sprintf("%v", v), true
}

func list(n int, at func(int) interface{}) []interface{} {
	out := make([]interface{}, n)
	for i := range out {
		out[i] = at(i)
	}
	return out
}

func dumpText(w io.Writer, m *msg.Message) error {
	tw := &textWriter{w: w}
	tw.line(0, "Message %s", m.Path())
	tw.line(1, "named properties: %d", m.Mapping().Len())
	if err := m.MappingError(); err != nil {
		tw.line(1, "named property mapping unavailable: %v", err)
	}
	tw.message(1, m, m.Mapping())
	return tw.err
}

type textWriter struct {
	w   io.Writer
	err error
}

func (t *textWriter) line(depth int, format string, args ...interface{}) {
	if t.err != nil {
		return
	}
	_, t.err = fmt.Fprintf(t.w, "%s%s\n", strings.Repeat("  ", depth), fmt.Sprintf(format, args...))
}

func (t *textWriter) message(depth int, m messageView, mapping *msg.NamedPropertyMapping) {
	t.properties(depth, m.Properties(), mapping)
	for _, r := range m.Recipients() {
		t.line(depth, "Recipient %s", r.Path())
		t.properties(depth+1, r.Properties(), mapping)
	}
	for _, a := range m.Attachments() {
		t.line(depth, "Attachment %s (%s)", a.Path(), a.Method())
		t.properties(depth+1, a.Properties(), mapping)
		if em := a.EmbeddedMessage(); em != nil {
			t.line(depth+1, "Embedded message %s", em.Path())
			t.message(depth+2, em, mapping)
		}
		if cs := a.CustomStorage(); cs != nil {
			t.line(depth+1, "Custom storage %s", cs.Name())
			for _, c := range cs.Children() {
				t.line(depth+2, "%s", strconv.Quote(c.Name()))
			}
		}
	}
}

func (t *textWriter) properties(depth int, values []msg.PropertyValue, mapping *msg.NamedPropertyMapping) {
	for _, pv := range values {
		label := propertyLabel(pv.Tag.ID, mapping)
		if label != "" {
			label = " " + label
		}
		head := fmt.Sprintf("0x%08X%s (%s)", pv.Tag.Uint32(), label, pv.Tag.Type)
		if pv.Err != nil {
			t.line(depth, "%s: error: %v", head, pv.Err)
			continue
		}
		t.line(depth, "%s = %s", head, textValue(pv.Value))
	}
}

func textValue(v msg.Value) string {
	switch x := v.(type) {
	case msg.String:
		return strconv.Quote(string(x))
	case msg.String8:
		return strconv.Quote(string(x))
	case msg.Unsupported:
		return "<unsupported " + x.Type.String() + ">"
	case msg.Object:
		if x.Storage != nil {
			return "<storage " + x.Storage.Name() + ">"
		}
		return fmt.Sprintf("<object %d bytes>", len(x.Data))
	case msg.Binary:
		return fmt.Sprintf("<%d bytes> %s", len(x), binaryString(x))
	}
	plain, ok := plainValue(v)
	if !ok {
		return "<absent>"
	}
	if items, ok := plain.([]interface{}); ok {
		parts := make([]string, len(items))
		for i, item := range items {
			if s, ok := item.(string); ok {
				parts[i] = strconv.Quote(s)
			} else {
				parts[i] = fmt.Sprint(item)
			}
		}
		return "[" + strings.Join(parts, ", ") + "]"
	}
	return fmt.Sprint(plain)
}
