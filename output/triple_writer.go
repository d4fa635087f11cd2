package output

import (
	"errors"
	"io"
	"sync"

	"github.com/c360studio/dicom2rdf/turtle"
	"github.com/c360studio/dicom2rdf/vocabulary/dicom2rdf"
)

// ErrClosed is returned by writes after Close.
var ErrClosed = errors.New("triple writer closed")

// TripleWriter passes Turtle text through to a stream and tracks the deepest
// content sequence level of everything written. Close appends a single
// "<> <meta:maxDepth> N ." statement before closing the stream.
//
// A TripleWriter belongs to one worker and is not safe for concurrent writes.
type TripleWriter struct {
	w        io.WriteCloser
	maxDepth int
	closed   bool

	once     sync.Once
	closeErr error
}

// NewTripleWriter wraps w.
func NewTripleWriter(w io.WriteCloser) *TripleWriter {
	return &TripleWriter{w: w}
}

func (t *TripleWriter) Write(p []byte) (int, error) {
	if t.closed {
		return 0, ErrClosed
	}
	return t.w.Write(p)
}

// ObserveDepth folds d into the running maximum.
func (t *TripleWriter) ObserveDepth(d int) {
	t.maxDepth = max(t.maxDepth, d)
}

// MaxDepth returns the deepest level observed so far.
func (t *TripleWriter) MaxDepth() int {
	return t.maxDepth
}

// MetaTriple is the statement Close appends for maxDepth.
func MetaTriple(maxDepth int) turtle.Triple {
	return turtle.Triple{
		Subject:   turtle.Full(""),
		Predicate: turtle.Full(dicom2rdf.MaxDepthPredicate),
		Object:    turtle.PlainInteger(maxDepth),
	}
}

// Close writes the metadata triple and closes the stream. Only the first
// call does anything; later calls return the same error.
func (t *TripleWriter) Close() error {
	t.once.Do(func() {
		t.closed = true
		writeErr := turtle.NewEncoder(t.w, 0).Write(MetaTriple(t.maxDepth))
		t.closeErr = errors.Join(writeErr, t.w.Close())
	})
	return t.closeErr
}
