// Package turtle is the graph model of the converter: identifiers, literals
// and triples, rendered straight to Turtle text.
//
// Prefixed identifiers stay prefixed until they are written; a PrefixTable
// declares the namespaces in the output header and can resolve a prefixed
// IRI to absolute form when needed.
package turtle

import (
	"strconv"
	"strings"
)

// IRIKind distinguishes the three identifier forms.
type IRIKind uint8

const (
	// KindFull is an absolute IRI rendered as <...>. The zero IRIKind is
	// reserved for the zero IRI.
	KindFull IRIKind = iota + 1
	// KindPrefixed is a prefix:local name.
	KindPrefixed
	// KindBlank is a blank node rendered as _:bN.
	KindBlank
)

// IRI is an identifier usable as subject, predicate, object or datatype.
type IRI struct {
	Kind   IRIKind
	Value  string // absolute IRI for KindFull, local name for KindPrefixed
	Prefix string // only for KindPrefixed
	Token  uint64 // only for KindBlank
}

// Full returns an absolute IRI.
func Full(abs string) IRI {
	return IRI{Kind: KindFull, Value: abs}
}

// Prefixed returns a prefix:local IRI. The local name is percent-encoded
// when rendered.
func Prefixed(prefix, local string) IRI {
	return IRI{Kind: KindPrefixed, Prefix: prefix, Value: local}
}

// IsBlank reports whether the identifier is a blank node.
func (i IRI) IsBlank() bool {
	return i.Kind == KindBlank
}

// IsZero reports whether i is the zero value, which is never a valid
// subject or predicate. Full("") is not zero: it renders as <>.
func (i IRI) IsZero() bool {
	return i == IRI{}
}

// String renders the identifier in Turtle syntax.
func (i IRI) String() string {
	var sb strings.Builder
	i.writeTo(&sb)
	return sb.String()
}

func (i IRI) writeTo(sb *strings.Builder) {
	switch i.Kind {
	case KindPrefixed:
		sb.WriteString(i.Prefix)
		sb.WriteByte(':')
		sb.WriteString(EncodeLocal(i.Value))
	case KindBlank:
		sb.WriteString("_:bn")
		sb.WriteString(strconv.FormatUint(i.Token, 10))
	default:
		sb.WriteByte('<')
		sb.WriteString(i.Value)
		sb.WriteByte('>')
	}
}

const upperhex = "0123456789ABCDEF"

// EncodeLocal percent-encodes every byte of s except ASCII letters, digits
// and -._~.
func EncodeLocal(s string) string {
	n := 0
	for i := 0; i < len(s); i++ {
		if !unreserved(s[i]) {
			n++
		}
	}
	if n == 0 {
		return s
	}

	buf := make([]byte, 0, len(s)+2*n)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if unreserved(c) {
			buf = append(buf, c)
			continue
		}
		buf = append(buf, '%', upperhex[c>>4], upperhex[c&15])
	}
	return string(buf)
}

func unreserved(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	case c == '-', c == '.', c == '_', c == '~':
		return true
	}
	return false
}
