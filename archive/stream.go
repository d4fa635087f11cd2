package archive

import (
	"archive/tar"
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
)

// zstdMagic opens every zstd frame.
var zstdMagic = []byte{0x28, 0xB5, 0x2F, 0xFD}

// IsZstd reports whether head starts with the zstd frame magic.
func IsZstd(head []byte) bool {
	return bytes.HasPrefix(head, zstdMagic)
}

// ReadFirst reads the first regular file of a tar.zst stream into memory
// and returns its name and content.
func ReadFirst(r io.Reader) (string, []byte, error) {
	zr, err := zstd.NewReader(r)
	if err != nil {
		return "", nil, fmt.Errorf("zstd reader: %w", err)
	}
	defer zr.Close()

	tr := tar.NewReader(zr)
	for {
		header, err := tr.Next()
		if err == io.EOF {
			return "", nil, ErrEmptyArchive
		}
		if err != nil {
			return "", nil, fmt.Errorf("fetch next: %w", err)
		}
		if header.Typeflag != tar.TypeReg {
			continue
		}
		data, err := io.ReadAll(tr)
		if err != nil {
			return "", nil, fmt.Errorf("read %s: %w", header.Name, err)
		}
		return header.Name, data, nil
	}
}
