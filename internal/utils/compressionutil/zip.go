package compression

import (
	"archive/zip"
	"io"
	"os"
)

func writeZip(w io.Writer, src string) error {
	zw := zip.NewWriter(w)

	err := walkFiles(src, func(path, name string, info os.FileInfo) error {
		hdr, err := zip.FileInfoHeader(info)
		if err != nil {
			return err
		}
		hdr.Name = name
		hdr.Method = zip.Deflate
		entry, err := zw.CreateHeader(hdr)
		if err != nil {
			return err
		}
		file, err := os.Open(path)
		if err != nil {
			return err
		}
		defer file.Close()
		_, err = io.Copy(entry, file)
		return err
	})
	if err != nil {
		return err
	}
	return zw.Close()
}
