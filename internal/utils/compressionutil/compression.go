// Package compression packs the files written by extract into a single
// archive.
package compression

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	errs "github.com/deploymenttheory/go-msgreader/internal/utils/errors"
)

// Kind is an archive layout, named as on the command line.
type Kind string

const (
	KindNone     Kind = "none"
	KindTar      Kind = "tar"
	KindTarGzip  Kind = "tar.gz"
	KindTarXZ    Kind = "tar.xz"
	KindTarBzip2 Kind = "tar.bz2"
	KindZip      Kind = "zip"
)

// Kinds lists every accepted kind.
var Kinds = []Kind{KindNone, KindTar, KindTarGzip, KindTarXZ, KindTarBzip2, KindZip}

var magicNumbers = []struct {
	format string
	magic  []byte
}{
	{"zip", []byte{0x50, 0x4B, 0x03, 0x04}},
	{"gzip", []byte{0x1F, 0x8B}},
	{"bzip2", []byte{0x42, 0x5A, 0x68}},
	{"xz", []byte{0xFD, 0x37, 0x7A, 0x58, 0x5A, 0x00}},
}

// ParseKind validates s.
func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", errs.ErrUnsupportedArchive, s)
}

// Extension returns the file suffix for k, including the dot.
func (k Kind) Extension() string {
	if k == KindNone {
		return ""
	}
	return "." + string(k)
}

// DetectArchiveFormat determines the archive format using magic numbers,
// falling back to the file extension.
func DetectArchiveFormat(filename string) (string, error) {
	file, err := os.Open(filename)
	if err != nil {
		return "", err
	}
	defer file.Close()

	header := make([]byte, 512)
	n, err := io.ReadFull(file, header)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return "", err
	}
	header = header[:n]

	for _, m := range magicNumbers {
		if bytes.HasPrefix(header, m.magic) {
			return m.format, nil
		}
	}
	// ustar magic sits at offset 257 of the first header block
	if len(header) >= 262 && string(header[257:262]) == "ustar" {
		return "tar", nil
	}

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".zip":
		return "zip", nil
	case ".tar":
		return "tar", nil
	case ".gz", ".tgz":
		return "gzip", nil
	case ".bz2", ".tbz2":
		return "bzip2", nil
	case ".xz", ".txz":
		return "xz", nil
	default:
		return "", fmt.Errorf("%w: %s", errs.ErrUnsupportedArchive, filename)
	}
}

// Archive packs every regular file under src into dst. Entry names are
// relative to src and use forward slashes.
func Archive(src, dst string, kind Kind) error {
	if kind == KindNone {
		return fmt.Errorf("%w: no archive kind", errs.ErrInvalidArgument)
	}
	if _, err := ParseKind(string(kind)); err != nil {
		return err
	}

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("%w: %v", errs.ErrFileWriteError, err)
	}

	if kind == KindZip {
		err = writeZip(out, src)
	} else {
		err = writeTar(out, src, kind)
	}
	if cerr := out.Close(); err == nil && cerr != nil {
		err = cerr
	}
	if err != nil {
		os.Remove(dst)
		return fmt.Errorf("%w: %v", errs.ErrCompressionFailed, err)
	}
	return nil
}

// walkFiles calls fn for every regular file under src in lexical order.
func walkFiles(src string, fn func(path, name string, info os.FileInfo) error) error {
	return filepath.Walk(src, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.Mode().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		return fn(path, filepath.ToSlash(rel), info)
	})
}
