package jsonutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/deploymenttheory/go-msgreader/internal/utils/errors"
	"github.com/deploymenttheory/go-msgreader/internal/utils/fsutil"
)

// JSONFormat represents the formatting style for JSON output
type JSONFormat int

const (
	// FormatStandard uses standard JSON formatting
	FormatStandard JSONFormat = iota
	// FormatIndented uses indented JSON
	FormatIndented
	// FormatMinified removes all whitespace
	FormatMinified
)

// JSONOptions provides configuration for JSON operations
type JSONOptions struct {
	Format       JSONFormat
	IndentPrefix string
	IndentSize   int
	// EscapeHTML keeps encoding/json's escaping of <, > and &. Message
	// bodies read better without it.
	EscapeHTML bool
}

// DefaultJSONOptions provides default settings for JSON formatting
var DefaultJSONOptions = JSONOptions{
	Format:       FormatIndented,
	IndentPrefix: "",
	IndentSize:   2,
}

// Marshal encodes data according to options.
func Marshal(data interface{}, options ...JSONOptions) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, data, options...); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Encode writes data to w followed by a newline.
func Encode(w io.Writer, data interface{}, options ...JSONOptions) error {
	opts := DefaultJSONOptions
	if len(options) > 0 {
		opts = options[0]
	}

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(opts.EscapeHTML)
	switch opts.Format {
	case FormatIndented:
		enc.SetIndent(opts.IndentPrefix, strings.Repeat(" ", opts.IndentSize))
	case FormatMinified:
	default:
		enc.SetIndent("", "  ")
	}

	if err := enc.Encode(data); err != nil {
		return fmt.Errorf("%w: %s", errors.ErrUnsupportedFormat, err.Error())
	}
	return nil
}

// WriteJSON writes data to a JSON file, creating its directory.
func WriteJSON(path string, data interface{}, options ...JSONOptions) error {
	jsonData, err := Marshal(data, options...)
	if err != nil {
		return err
	}
	if err := fsutil.WriteFile(path, jsonData, 0644); err != nil {
		return fmt.Errorf("%w: %s", errors.ErrFileWriteError, err.Error())
	}
	return nil
}
