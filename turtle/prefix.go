package turtle

import (
	"fmt"
	"io"
	"strings"

	"github.com/c360studio/dicom2rdf/vocabulary/dicom2rdf"
)

// Prefix binds a Turtle prefix to a namespace IRI.
type Prefix struct {
	Name      string
	Namespace string
}

// PrefixTable is an ordered set of prefix declarations. The first binding of
// a name wins.
type PrefixTable struct {
	prefixes []Prefix
	index    map[string]int
}

// WellKnownPrefixes are declared at the top of every output file.
var WellKnownPrefixes = []Prefix{
	{Name: dicom2rdf.Prefix, Namespace: dicom2rdf.Namespace},
	{Name: dicom2rdf.PrefixRDF, Namespace: dicom2rdf.NamespaceRDF},
	{Name: dicom2rdf.PrefixRDFS, Namespace: dicom2rdf.NamespaceRDFS},
	{Name: dicom2rdf.PrefixXSD, Namespace: dicom2rdf.NamespaceXSD},
}

// NewPrefixTable returns a table holding the well-known prefixes followed by
// extra.
func NewPrefixTable(extra ...Prefix) *PrefixTable {
	t := &PrefixTable{index: make(map[string]int)}
	for _, p := range WellKnownPrefixes {
		t.Add(p)
	}
	for _, p := range extra {
		t.Add(p)
	}
	return t
}

// Add appends p unless its name is already bound.
func (t *PrefixTable) Add(p Prefix) {
	if p.Name == "" || p.Namespace == "" {
		return
	}
	if _, ok := t.index[p.Name]; ok {
		return
	}
	t.index[p.Name] = len(t.prefixes)
	t.prefixes = append(t.prefixes, p)
}

// Prefixes returns the declarations in order.
func (t *PrefixTable) Prefixes() []Prefix {
	out := make([]Prefix, len(t.prefixes))
	copy(out, t.prefixes)
	return out
}

// Resolve returns the absolute form of a full or prefixed IRI.
func (t *PrefixTable) Resolve(i IRI) (string, error) {
	switch i.Kind {
	case KindFull:
		return i.Value, nil
	case KindPrefixed:
		idx, ok := t.index[i.Prefix]
		if !ok {
			return "", fmt.Errorf("unknown prefix %q", i.Prefix)
		}
		return t.prefixes[idx].Namespace + EncodeLocal(i.Value), nil
	case KindBlank:
		return "", fmt.Errorf("blank node %s has no absolute form", i)
	default:
		return "", ErrEmptyTerm
	}
}

// Declarations renders one @prefix line per binding.
func (t *PrefixTable) Declarations() string {
	var sb strings.Builder
	for _, p := range t.prefixes {
		fmt.Fprintf(&sb, "@prefix %s: <%s> .\n", p.Name, p.Namespace)
	}
	return sb.String()
}

// WriteHeader writes the declarations to w.
func (t *PrefixTable) WriteHeader(w io.Writer) error {
	_, err := io.WriteString(w, t.Declarations())
	return err
}
