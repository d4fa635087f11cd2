// Package output owns the files a conversion worker writes: the gzip
// compressed Turtle stream and the plain-text error log.
package output

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/gzip"

	"github.com/c360studio/dicom2rdf/turtle"
)

// File is a buffered file. Close flushes before closing.
type File struct {
	f  *os.File
	bw *bufio.Writer
}

// Create creates name inside dir, truncating an existing file. dir must
// exist.
func Create(dir, name string) (*File, error) {
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create output file %s: %w", path, err)
	}
	return &File{f: f, bw: bufio.NewWriter(f)}, nil
}

// Name returns the path of the file.
func (f *File) Name() string {
	return f.f.Name()
}

func (f *File) Write(p []byte) (int, error) {
	return f.bw.Write(p)
}

// Close flushes buffered data and closes the file.
func (f *File) Close() error {
	return errors.Join(f.bw.Flush(), f.f.Close())
}

// gzipFile compresses into a File.
type gzipFile struct {
	*gzip.Writer
	file *File
}

// Close finishes the gzip stream, then the file below it.
func (g *gzipFile) Close() error {
	return errors.Join(g.Writer.Close(), g.file.Close())
}

// NewTurtleGzip creates a gzip compressed Turtle file whose first lines are
// the prefix declarations of prefixes.
func NewTurtleGzip(dir, name string, prefixes *turtle.PrefixTable) (io.WriteCloser, error) {
	file, err := Create(dir, name)
	if err != nil {
		return nil, err
	}
	gz, err := gzip.NewWriterLevel(file, gzip.BestSpeed)
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("gzip writer: %w", err)
	}
	w := &gzipFile{Writer: gz, file: file}

	if prefixes == nil {
		prefixes = turtle.NewPrefixTable()
	}
	if err := prefixes.WriteHeader(w); err != nil {
		w.Close()
		return nil, fmt.Errorf("write prefix header to %s: %w", file.Name(), err)
	}
	return w, nil
}
