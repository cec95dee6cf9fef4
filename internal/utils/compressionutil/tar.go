package compression

import (
	"archive/tar"
	"compress/gzip"
	"io"
	"os"

	"github.com/dsnet/compress/bzip2"
	"github.com/ulikunitz/xz"
)

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }

// compressor wraps w in the stream compression of kind.
func compressor(w io.Writer, kind Kind) (io.WriteCloser, error) {
	switch kind {
	case KindTarGzip:
		return gzip.NewWriter(w), nil
	case KindTarXZ:
		return xz.NewWriter(w)
	case KindTarBzip2:
		return bzip2.NewWriter(w, nil)
	default:
		return nopWriteCloser{w}, nil
	}
}

func writeTar(w io.Writer, src string, kind Kind) error {
	cw, err := compressor(w, kind)
	if err != nil {
		return err
	}
	tw := tar.NewWriter(cw)

	err = walkFiles(src, func(path, name string, info os.FileInfo) error {
		hdr, err := tar.FileInfoHeader(info, "")
		if err != nil {
			return err
		}
		hdr.Name = name
		if err := tw.WriteHeader(hdr); err != nil {
			return err
		}
		file, err := os.Open(path)
		if err != nil {
			return err
		}
		defer file.Close()
		_, err = io.Copy(tw, file)
		return err
	})
	if err != nil {
		return err
	}
	if err := tw.Close(); err != nil {
		return err
	}
	return cw.Close()
}
