// Package archive finds conversion inputs and unpacks single-document
// tar.zst archives into scoped temporary directories.
package archive

import (
	"archive/tar"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/klauspost/compress/zstd"
)

var (
	// ErrEmptyArchive is returned when an archive holds no regular file.
	ErrEmptyArchive = errors.New("no file found in archive")

	// ErrUnsafePath is returned for entries that would land outside the
	// extraction directory.
	ErrUnsafePath = errors.New("archive entry escapes extraction directory")
)

// InputPattern matches raw documents and archives below the input root.
const InputPattern = "**/*.{dcm,zst}"

// Discover returns the absolute paths of all regular .dcm and .zst files
// below root, sorted.
func Discover(root string) ([]string, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("path is not a directory: %s", abs)
	}

	matches, err := doublestar.Glob(os.DirFS(abs), InputPattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("glob error: %w", err)
	}
	sort.Strings(matches)

	paths := make([]string, 0, len(matches))
	for _, m := range matches {
		paths = append(paths, filepath.Join(abs, filepath.FromSlash(m)))
	}
	return paths, nil
}

// IsArchive reports whether path names a zstd compressed archive.
func IsArchive(path string) bool {
	return filepath.Ext(path) == ".zst"
}

// Extracted is an unpacked archive. Close removes the directory.
type Extracted struct {
	// Path is the document inside Dir.
	Path string
	// Dir is the temporary directory holding the archive contents.
	Dir string
}

// Close removes the extraction directory.
func (e *Extracted) Close() error {
	if e == nil || e.Dir == "" {
		return nil
	}
	return os.RemoveAll(e.Dir)
}

// Extract unpacks the tar.zst archive at path into a fresh temporary
// directory and returns the first regular file it contains. The directory is
// removed again when extraction fails.
func Extract(path string) (*Extracted, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	defer f.Close()

	dir, err := os.MkdirTemp("", "dicom2rdf-")
	if err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}
	ex := &Extracted{Dir: dir}

	first, err := unpack(f, dir)
	if err == nil && first == "" {
		err = ErrEmptyArchive
	}
	if err != nil {
		ex.Close()
		return nil, fmt.Errorf("extract %s: %w", path, err)
	}
	ex.Path = first
	return ex, nil
}

// unpack writes the tar stream inside the zstd stream r below dest and
// returns the path of the first regular file.
func unpack(r io.Reader, dest string) (string, error) {
	zr, err := zstd.NewReader(r)
	if err != nil {
		return "", fmt.Errorf("zstd reader: %w", err)
	}
	defer zr.Close()

	tr := tar.NewReader(zr)
	first, parentPath := "", ""
	for {
		header, err := tr.Next()
		if err == io.EOF {
			return first, nil
		}
		if err != nil {
			return first, fmt.Errorf("fetch next: %w", err)
		}

		target, err := safeJoin(dest, header.Name)
		if err != nil {
			return first, err
		}
		switch header.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0o755); err != nil {
				return first, fmt.Errorf("create dir %s: %w", target, err)
			}
		case tar.TypeReg:
			if pp := filepath.Dir(target); pp != parentPath {
				parentPath = pp
				if err := os.MkdirAll(parentPath, 0o755); err != nil {
					return first, fmt.Errorf("create dir %s: %w", parentPath, err)
				}
			}
			if err := copyFile(target, tr); err != nil {
				return first, fmt.Errorf("copy file %s: %w", target, err)
			}
			if first == "" {
				first = target
			}
		}
	}
}

func safeJoin(dest, name string) (string, error) {
	target := filepath.Join(dest, filepath.FromSlash(name))
	rel, err := filepath.Rel(dest, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrUnsafePath, name)
	}
	return target, nil
}

func copyFile(target string, r io.Reader) error {
	f, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("create: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return fmt.Errorf("copy: %w", err)
	}
	return f.Close()
}
