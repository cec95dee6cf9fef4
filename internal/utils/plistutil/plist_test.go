package plistutil

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deploymenttheory/go-msgreader/internal/utils/errors"
)

func TestEncodeDecode(t *testing.T) {
	doc := map[string]interface{}{
		"subject": "Status update",
		"size":    uint64(42),
		"tags":    []interface{}{"a", "b"},
	}

	for _, f := range []Format{FormatXML, FormatBinary} {
		var buf bytes.Buffer
		require.NoError(t, Encode(&buf, doc, f))
		assert.Equal(t, f, DetectFormat(buf.Bytes()))

		got, format, err := Decode(buf.Bytes())
		require.NoError(t, err)
		assert.Equal(t, f, format)
		m, ok := got.(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, "Status update", m["subject"])
		assert.Equal(t, []interface{}{"a", "b"}, m["tags"])
	}
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("Binary")
	require.NoError(t, err)
	assert.Equal(t, FormatBinary, f)

	f, err = ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatXML, f)

	_, err = ParseFormat("toml")
	assert.ErrorIs(t, err, errors.ErrUnsupportedFormat)
}
