package export

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	errs "github.com/deploymenttheory/go-msgreader/internal/utils/errors"
	"github.com/deploymenttheory/go-msgreader/internal/utils/plistutil"
	"github.com/deploymenttheory/go-msgreader/pkg/msg"
	"github.com/deploymenttheory/go-msgreader/pkg/msg/msgtest"
)

func openSample(t *testing.T) *msg.Message {
	t.Helper()
	m, err := msgtest.Open(sampleMessage())
	require.NoError(t, err)
	return m
}

func TestDumpJSON(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, Dump(&buf, openSample(t), FormatJSON))

	var doc interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))

	tests := []struct {
		path string
		want interface{}
	}{
		{"path", "Root Entry"},
		{"properties.0.name", "PidTagSubject"},
		{"properties.0.value", "Quarterly report"},
		{"properties.1.value", "2024-03-01T09:30:00Z"},
		{"properties.5.tag", "0x8000001F"},
		{"properties.5.name", reminderSet.String()},
		{"properties.5.value", "reminder"},
		{"named_properties.count", float64(1)},
		{"recipients.1.path", "Root Entry/__recip_version1.0_00000001"},
		{"attachments.0.method", "by-value"},
		{"attachments.1.method", "embedded-message"},
		{"attachments.1.embedded_message.path", "Root Entry/__attach_version1.0_00000001/__substg1.0_3701000D"},
		{"attachments.1.embedded_message.properties.0.value", "Forwarded"},
	}
	for _, tt := range tests {
		got, ok := valueAt(doc, tt.path)
		if assert.True(t, ok, tt.path) {
			assert.Equal(t, tt.want, got, tt.path)
		}
	}
}

func TestDumpYAMLAndPlistCarryTheSameTree(t *testing.T) {
	m := openSample(t)

	var yamlOut bytes.Buffer
	require.NoError(t, Dump(&yamlOut, m, FormatYAML))
	var fromYAML map[string]interface{}
	require.NoError(t, yaml.Unmarshal(yamlOut.Bytes(), &fromYAML))

	var plistOut bytes.Buffer
	require.NoError(t, Dump(&plistOut, m, FormatPlist))
	fromPlist, format, err := plistutil.Decode(plistOut.Bytes())
	require.NoError(t, err)
	assert.Equal(t, plistutil.FormatXML, format)

	for _, doc := range []interface{}{fromYAML, fromPlist} {
		path, ok := valueAt(doc, "attachments.1.embedded_message.path")
		require.True(t, ok)
		assert.Equal(t, "Root Entry/__attach_version1.0_00000001/__substg1.0_3701000D", path)
	}
}

func TestDumpText(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, Dump(&buf, openSample(t), FormatText))

	out := buf.String()
	assert.Contains(t, out, "Message Root Entry\n")
	assert.Contains(t, out, `  0x0037001F PidTagSubject (PtypString) = "Quarterly report"`)
	assert.Contains(t, out, "0x8000001F "+reminderSet.String()+` (PtypString) = "reminder"`)
	assert.Contains(t, out, "  Attachment Root Entry/__attach_version1.0_00000000 (by-value)\n")
	assert.Contains(t, out, "    Embedded message Root Entry/__attach_version1.0_00000001/__substg1.0_3701000D\n")
	assert.Contains(t, out, `0x37010102 PidTagAttachDataBinary (PtypBinary) = <8 bytes> 612c620a312c320a`)
}

func TestDumpIsDeterministic(t *testing.T) {
	for _, format := range []string{FormatText, FormatJSON, FormatYAML, FormatPlist} {
		var first, second bytes.Buffer
		require.NoError(t, Dump(&first, openSample(t), format))
		require.NoError(t, Dump(&second, openSample(t), format))
		assert.Equal(t, first.String(), second.String(), format)
	}
}

func TestDumpReportsBrokenProperties(t *testing.T) {
	// entry without its value stream
	o := msgtest.Message().String(msg.PidTagSubject, "x")
	root := o.Node()
	root = msg.NewStorage(root.Name(), mustChild(t, root, msg.PropertiesStreamName))
	m, err := msg.Open(root)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Dump(&buf, m, FormatJSON))

	var doc interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	kind, _ := valueAt(doc, "properties.0.kind")
	assert.Equal(t, "absent", kind)
	msgErr, ok := valueAt(doc, "properties.0.error")
	require.True(t, ok)
	assert.Contains(t, msgErr, msg.SubstgName(msg.PidTagSubject, msg.PtypString))
}

func TestDumpRejectsUnknownFormat(t *testing.T) {
	err := Dump(&bytes.Buffer{}, openSample(t), "csv")

	assert.ErrorIs(t, err, errs.ErrUnsupportedFormat)
}

func mustChild(t *testing.T, n *msg.Node, name string) *msg.Node {
	t.Helper()
	c, ok := n.Child(name)
	require.True(t, ok)
	node, ok := c.(*msg.Node)
	require.True(t, ok)
	return node
}
