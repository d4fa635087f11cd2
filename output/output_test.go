package output

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/dicom2rdf/turtle"
)

func readGzip(t *testing.T, path string) string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	zr, err := gzip.NewReader(f)
	require.NoError(t, err)
	data, err := io.ReadAll(zr)
	require.NoError(t, err)
	return string(data)
}

func TestCreate(t *testing.T) {
	dir := t.TempDir()
	f, err := Create(dir, "raw-dicom-000-errors.log")
	require.NoError(t, err)

	_, err = io.WriteString(f, "a.dcm: (0010,1010) AS: invalid age string\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	data, err := os.ReadFile(filepath.Join(dir, "raw-dicom-000-errors.log"))
	require.NoError(t, err)
	assert.Equal(t, "a.dcm: (0010,1010) AS: invalid age string\n", string(data))

	_, err = Create(filepath.Join(dir, "missing"), "x.log")
	assert.Error(t, err)
}

func TestTurtleGzip_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	prefixes := turtle.NewPrefixTable(turtle.Prefix{Name: "sct", Namespace: "http://snomed.info/id/"})

	w, err := NewTurtleGzip(dir, "raw-dicom-000.ttl.gz", prefixes)
	require.NoError(t, err)

	tw := NewTripleWriter(w)
	_, err = io.WriteString(tw, "dicom2rdf:a.dcm rdf:type dicom2rdf:DocumentRoot .\n")
	require.NoError(t, err)
	tw.ObserveDepth(2)
	tw.ObserveDepth(1)
	assert.Equal(t, 2, tw.MaxDepth())
	require.NoError(t, tw.Close())

	got := readGzip(t, filepath.Join(dir, "raw-dicom-000.ttl.gz"))
	want := prefixes.Declarations() +
		"dicom2rdf:a.dcm rdf:type dicom2rdf:DocumentRoot .\n" +
		"<> <meta:maxDepth> 2 .\n"
	assert.Equal(t, want, got)
}

func TestTripleWriter_EmptyStillWritesMeta(t *testing.T) {
	dir := t.TempDir()
	w, err := NewTurtleGzip(dir, "out.ttl.gz", nil)
	require.NoError(t, err)
	require.NoError(t, NewTripleWriter(w).Close())

	got := readGzip(t, filepath.Join(dir, "out.ttl.gz"))
	assert.Equal(t, turtle.NewPrefixTable().Declarations()+"<> <meta:maxDepth> 0 .\n", got)
}

type recordingStream struct {
	bytes.Buffer
	failWrites bool
	closes     int
}

func (r *recordingStream) Write(p []byte) (int, error) {
	if r.failWrites {
		return 0, errors.New("disk full")
	}
	return r.Buffer.Write(p)
}

func (r *recordingStream) Close() error {
	r.closes++
	return nil
}

func TestTripleWriter_CloseOnce(t *testing.T) {
	stream := &recordingStream{}
	tw := NewTripleWriter(stream)
	tw.ObserveDepth(3)

	require.NoError(t, tw.Close())
	require.NoError(t, tw.Close())

	assert.Equal(t, "<> <meta:maxDepth> 3 .\n", stream.String())
	assert.Equal(t, 1, stream.closes)

	_, err := tw.Write([]byte("late"))
	assert.ErrorIs(t, err, ErrClosed)
}

func TestTripleWriter_CloseAfterFailedWrites(t *testing.T) {
	stream := &recordingStream{failWrites: true}
	tw := NewTripleWriter(stream)

	_, err := tw.Write([]byte("x .\n"))
	require.Error(t, err)

	err = tw.Close()
	assert.ErrorContains(t, err, "disk full")
	assert.Equal(t, 1, stream.closes, "the stream is closed even when the meta triple fails")
	assert.Equal(t, err, tw.Close())
}
