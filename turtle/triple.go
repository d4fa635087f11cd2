package turtle

import (
	"errors"
	"io"
	"strings"
)

// MaxObjectLength is the default bound on the content of string literals.
const MaxObjectLength = 1000

// ErrEmptyTerm is returned when a triple lacks a subject or predicate.
var ErrEmptyTerm = errors.New("triple has an empty subject or predicate")

// Triple is one subject-predicate-object statement.
type Triple struct {
	Subject   IRI
	Predicate IRI
	Object    Object
}

// Render returns the triple as one Turtle statement without a trailing
// newline.
func (t Triple) Render(maxLen int) string {
	var sb strings.Builder
	t.render(&sb, maxLen)
	return sb.String()
}

func (t Triple) render(sb *strings.Builder, maxLen int) {
	t.Subject.writeTo(sb)
	sb.WriteByte(' ')
	t.Predicate.writeTo(sb)
	sb.WriteByte(' ')
	t.Object.writeObject(sb, maxLen)
	sb.WriteString(" .")
}

// Encoder writes triples one per line.
type Encoder struct {
	w      io.Writer
	maxLen int
	sb     strings.Builder
	count  int
}

// NewEncoder returns an Encoder bounding string literals to maxLen bytes.
// A non-positive maxLen selects MaxObjectLength.
func NewEncoder(w io.Writer, maxLen int) *Encoder {
	if maxLen <= 0 {
		maxLen = MaxObjectLength
	}
	return &Encoder{w: w, maxLen: maxLen}
}

// Write renders t followed by a newline.
func (e *Encoder) Write(t Triple) error {
	if t.Subject.IsZero() || t.Predicate.IsZero() || t.Object == nil {
		return ErrEmptyTerm
	}
	e.sb.Reset()
	t.render(&e.sb, e.maxLen)
	e.sb.WriteByte('\n')
	if _, err := io.WriteString(e.w, e.sb.String()); err != nil {
		return err
	}
	e.count++
	return nil
}

// Count is the number of triples written so far.
func (e *Encoder) Count() int {
	return e.count
}
