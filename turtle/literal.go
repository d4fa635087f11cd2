package turtle

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

// Ellipsis marks a string literal cut short by the length bound.
const Ellipsis = "[…]"

// Object is anything that can appear in object position: PlainString,
// PlainInteger, PlainUnsigned, PlainFloat, TypedLiteral or IRI.
type Object interface {
	// writeObject renders the object. maxLen bounds the content of plain
	// string literals and is ignored by every other kind.
	writeObject(sb *strings.Builder, maxLen int)
}

// PlainString is an untyped string literal.
type PlainString string

// PlainInteger is an integer literal rendered in bare decimal form.
type PlainInteger int64

// PlainUnsigned is an integer literal for values past the int64 range.
type PlainUnsigned uint64

// PlainFloat is a decimal literal rendered with exactly one fractional
// digit. Values with more significant digits lose precision.
type PlainFloat float64

// TypedLiteral is a "lexical"^^datatype literal.
type TypedLiteral struct {
	Lexical  string
	Datatype IRI
}

func (s PlainString) writeObject(sb *strings.Builder, maxLen int) {
	writeEscaped(sb, string(s), maxLen)
}

func (n PlainInteger) writeObject(sb *strings.Builder, _ int) {
	sb.WriteString(strconv.FormatInt(int64(n), 10))
}

func (n PlainUnsigned) writeObject(sb *strings.Builder, _ int) {
	sb.WriteString(strconv.FormatUint(uint64(n), 10))
}

func (f PlainFloat) writeObject(sb *strings.Builder, _ int) {
	sb.WriteString(strconv.FormatFloat(float64(f), 'f', 1, 64))
}

func (t TypedLiteral) writeObject(sb *strings.Builder, _ int) {
	sb.WriteByte('"')
	sb.WriteString(t.Lexical)
	sb.WriteString(`"^^`)
	t.Datatype.writeTo(sb)
}

func (i IRI) writeObject(sb *strings.Builder, _ int) {
	i.writeTo(sb)
}

// writeEscaped writes s as a quoted literal, escaping backslash, quote, LF
// and CR. The bytes written between the quotes never exceed maxLen: once the
// pending raw run plus the next character would pass maxLen minus the
// ellipsis length, the run is flushed, the ellipsis appended and the literal
// closed. A cut never falls inside a UTF-8 sequence or an escape.
func writeEscaped(sb *strings.Builder, s string, maxLen int) {
	limit := maxLen - len(Ellipsis)
	if limit < 0 {
		limit = 0
	}

	sb.WriteByte('"')
	written, start := 0, 0
	for i, c := range s {
		var esc string
		switch c {
		case '\\':
			esc = `\\`
		case '"':
			esc = `\"`
		case '\n':
			esc = `\n`
		case '\r':
			esc = `\r`
		}

		width := len(esc)
		if esc == "" {
			_, width = utf8.DecodeRuneInString(s[i:])
		}

		if written+(i-start)+width > limit {
			sb.WriteString(s[start:i])
			sb.WriteString(Ellipsis)
			sb.WriteByte('"')
			return
		}

		if esc != "" {
			sb.WriteString(s[start:i])
			sb.WriteString(esc)
			written += i - start + len(esc)
			start = i + 1
		}
	}
	sb.WriteString(s[start:])
	sb.WriteByte('"')
}
