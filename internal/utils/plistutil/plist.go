// Package plistutil provides utilities for working with property list files
package plistutil

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/deploymenttheory/go-msgreader/internal/utils/errors"
	"howett.net/plist"
)

// Format represents the plist format
type Format int

const (
	// FormatXML is the XML plist format
	FormatXML Format = iota
	// FormatBinary is the binary plist format
	FormatBinary
	// FormatOpenStep is the OpenStep plist format
	FormatOpenStep
	// FormatGNUStep is the GNUStep plist format
	FormatGNUStep
)

var formatNames = map[string]Format{
	"xml":      FormatXML,
	"binary":   FormatBinary,
	"openstep": FormatOpenStep,
	"gnustep":  FormatGNUStep,
}

// ParseFormat maps a format name to a Format. The empty string is XML.
func ParseFormat(name string) (Format, error) {
	if name == "" {
		return FormatXML, nil
	}
	f, ok := formatNames[strings.ToLower(name)]
	if !ok {
		return FormatXML, fmt.Errorf("%w: plist format %q", errors.ErrUnsupportedFormat, name)
	}
	return f, nil
}

func (f Format) plistFormat() int {
	switch f {
	case FormatBinary:
		return plist.BinaryFormat
	case FormatOpenStep:
		return plist.OpenStepFormat
	case FormatGNUStep:
		return plist.GNUStepFormat
	default:
		return plist.XMLFormat
	}
}

// Encode writes data to w. Property lists have no null, so data must not
// contain nil values.
func Encode(w io.Writer, data interface{}, format Format) error {
	encoder := plist.NewEncoderForFormat(w, format.plistFormat())
	if format == FormatXML {
		encoder.Indent("\t")
	}
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("%w: %s", errors.ErrUnsupportedFormat, err.Error())
	}
	return nil
}

// Decode reads a property list of any format into a generic value.
func Decode(data []byte) (interface{}, Format, error) {
	var result interface{}
	n, err := plist.Unmarshal(data, &result)
	if err != nil {
		return nil, FormatXML, fmt.Errorf("%w: %s", errors.ErrUnsupportedFile, err.Error())
	}
	return result, fromPlistFormat(n), nil
}

func fromPlistFormat(n int) Format {
	switch n {
	case plist.BinaryFormat:
		return FormatBinary
	case plist.OpenStepFormat:
		return FormatOpenStep
	case plist.GNUStepFormat:
		return FormatGNUStep
	default:
		return FormatXML
	}
}

// DetectFormat guesses the format from the first bytes of a plist.
func DetectFormat(header []byte) Format {
	switch {
	case bytes.HasPrefix(header, []byte("bplist00")):
		return FormatBinary
	case bytes.HasPrefix(header, []byte("<?xml")), bytes.HasPrefix(header, []byte("<!DOCTYPE")):
		return FormatXML
	case bytes.HasPrefix(header, []byte("{")), bytes.HasPrefix(header, []byte("(")), bytes.HasPrefix(header, []byte("/")):
		return FormatOpenStep
	default:
		return FormatXML
	}
}
