// Package emitter walks a document tree and writes one Turtle triple per
// attribute value.
//
// Emit never fails: an element that cannot be decoded is reported on the
// error sink as "file: (GGGG,EEEE) VR: message" and skipped. Emit returns the
// redaction carry found in the subtree and the deepest content sequence
// level reached, both threaded up the recursion rather than kept in shared
// state.
package emitter

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/c360studio/dicom2rdf/document"
	"github.com/c360studio/dicom2rdf/scalar"
	"github.com/c360studio/dicom2rdf/turtle"
	"github.com/c360studio/dicom2rdf/vocabulary/dicom2rdf"
)

// Placeholders written instead of values that are never rendered.
const (
	PixelDataPlaceholder   = "<pixel data>"
	WordStreamPlaceholder  = "<OW>"
	OctetStreamPlaceholder = "<octet stream>"
)

var (
	indexIRI      = turtle.Prefixed(dicom2rdf.Prefix, dicom2rdf.Index)
	itemIRI       = turtle.Prefixed(dicom2rdf.Prefix, dicom2rdf.Item)
	personNameIRI = turtle.Prefixed(dicom2rdf.Prefix, dicom2rdf.PersonName)
	pnFamilyIRI   = turtle.Prefixed(dicom2rdf.Prefix, dicom2rdf.PNFamily)
	pnMiddleIRI   = turtle.Prefixed(dicom2rdf.Prefix, dicom2rdf.PNMiddle)
	pnGivenIRI    = turtle.Prefixed(dicom2rdf.Prefix, dicom2rdf.PNGiven)
	pnPrefixIRI   = turtle.Prefixed(dicom2rdf.Prefix, dicom2rdf.PNPrefix)
	pnSuffixIRI   = turtle.Prefixed(dicom2rdf.Prefix, dicom2rdf.PNSuffix)
	timeDatatype  = turtle.XSD(dicom2rdf.XSDTime)
)

// Predicate returns the dicom2rdf predicate of an attribute.
func Predicate(t document.Tag) turtle.IRI {
	return turtle.Prefixed(dicom2rdf.Prefix, t.Hex())
}

// Stats counts what an Emitter produced.
type Stats struct {
	Triples       int
	ElementErrors int
}

// Emitter converts the document tree of one file. It is not safe for
// concurrent use; the BlankNodes allocator may be shared.
type Emitter struct {
	enc      *turtle.Encoder
	errs     io.Writer
	policy   *Policy
	blanks   *turtle.BlankNodes
	fileName string
	failures int
}

// New returns an Emitter writing triples to out and element errors to errs.
// fileName prefixes every error line.
func New(out, errs io.Writer, policy *Policy, blanks *turtle.BlankNodes, fileName string) *Emitter {
	if policy == nil {
		policy = &Policy{}
	}
	if blanks == nil {
		blanks = turtle.NewBlankNodes()
	}
	return &Emitter{
		enc:      turtle.NewEncoder(out, policy.MaxObjectLength),
		errs:     errs,
		policy:   policy,
		blanks:   blanks,
		fileName: fileName,
	}
}

// Stats reports the triples written and the elements skipped so far.
func (e *Emitter) Stats() Stats {
	return Stats{Triples: e.enc.Count(), ElementErrors: e.failures}
}

// Write emits a single triple, for callers adding statements around Emit.
func (e *Emitter) Write(t turtle.Triple) error {
	return e.enc.Write(t)
}

// Emit writes the triples of node with subject as their subject. depth is
// the content sequence level of node. It returns the first forbidden code
// meaning found in the subtree ("" if none) and the deepest level seen.
func (e *Emitter) Emit(subject turtle.IRI, node *document.Node, depth int) (string, int) {
	carry, maxDepth := "", depth
	if node == nil {
		return carry, maxDepth
	}

	for _, el := range node.Elements {
		if el == nil || el.IsEmpty() {
			continue
		}
		found, childDepth, err := e.element(subject, el, carry, depth)
		if err != nil {
			e.fail(el, err)
		}
		if carry == "" {
			carry = found
		}
		maxDepth = max(maxDepth, childDepth)
	}
	return carry, maxDepth
}

func (e *Emitter) fail(el *document.Element, err error) {
	e.failures++
	if e.errs == nil {
		return
	}
	fmt.Fprintf(e.errs, "%s: %s %s: %v\n", e.fileName, el.Tag, el.VR, err)
}

// element writes the triples of one attribute. carry is the redaction value
// already known in the enclosing node; the returned carry is one discovered
// here.
func (e *Emitter) element(subject turtle.IRI, el *document.Element, carry string, depth int) (string, int, error) {
	pred := Predicate(el.Tag)

	if el.Tag == document.TagPixelData {
		return "", depth, e.write(subject, pred, turtle.PlainString(PixelDataPlaceholder))
	}
	if e.policy.forbiddenTag(el.Tag) {
		return "", depth, e.write(subject, pred, turtle.PlainString("<"+el.Tag.String()+">"))
	}
	if bad, ok := el.Value.(document.Invalid); ok {
		return "", depth, bad.Err
	}

	switch el.VR {
	case document.VRAS:
		return "", depth, e.age(subject, pred, el)
	case document.VRDA:
		return "", depth, e.temporal(subject, pred, el, dateISO)
	case document.VRDT:
		return "", depth, e.temporal(subject, pred, el, dateTimeISO)
	case document.VRTM:
		return "", depth, e.times(subject, pred, el)
	case document.VRAE, document.VRCS, document.VRLT, document.VRST, document.VRUI:
		return "", depth, e.texts(subject, pred, el)
	case document.VRLO:
		found, err := e.longString(subject, pred, el)
		return found, depth, err
	case document.VRSH:
		return "", depth, e.shortString(subject, pred, el)
	case document.VRDS:
		return "", depth, e.decimals(subject, pred, el)
	case document.VRFL:
		return "", depth, e.floats(subject, pred, el, false)
	case document.VRFD:
		return "", depth, e.floats(subject, pred, el, true)
	case document.VRIS:
		return "", depth, e.integerStrings(subject, pred, el)
	case document.VROW:
		return "", depth, e.write(subject, pred, turtle.PlainString(WordStreamPlaceholder))
	case document.VROB, document.VRUN:
		return "", depth, e.write(subject, pred, turtle.PlainString(OctetStreamPlaceholder))
	case document.VRPN:
		return "", depth, e.personName(subject, el)
	case document.VRSL, document.VRSS, document.VRUL, document.VRUS, document.VRSV, document.VRUV:
		return "", depth, e.integers(subject, pred, el)
	case document.VRSQ:
		return e.sequence(subject, pred, el, depth)
	case document.VRUT:
		return "", depth, e.unlimitedText(subject, pred, el, carry)
	case document.VRAT, document.VROD, document.VROF, document.VROL, document.VROV, document.VRUC, document.VRUR:
		// no-op
		return "", depth, nil
	default:
		return "", depth, nil
	}
}

func (e *Emitter) write(s, p turtle.IRI, o turtle.Object) error {
	return e.enc.Write(turtle.Triple{Subject: s, Predicate: p, Object: o})
}

// writeAll writes one triple per object.
func (e *Emitter) writeAll(s, p turtle.IRI, objects []turtle.Object) error {
	for _, o := range objects {
		if err := e.write(s, p, o); err != nil {
			return err
		}
	}
	return nil
}

func (e *Emitter) age(s, p turtle.IRI, el *document.Element) error {
	values, err := stringValues(el)
	if err != nil {
		return err
	}
	years, err := scalar.AgeToYears(clean(values[0]))
	if err != nil {
		return err
	}
	return e.write(s, p, turtle.PlainFloat(years))
}

func dateISO(v string) (string, error) {
	d, err := scalar.ParseDate(v)
	if err != nil {
		return "", err
	}
	return d.ISO(), nil
}

func dateTimeISO(v string) (string, error) {
	dt, err := scalar.ParseDateTime(v)
	if err != nil {
		return "", err
	}
	return dt.ISO(), nil
}

// temporal writes DA and DT values as length-typed literals.
func (e *Emitter) temporal(s, p turtle.IRI, el *document.Element, iso func(string) (string, error)) error {
	values, err := stringValues(el)
	if err != nil {
		return err
	}
	objects := make([]turtle.Object, 0, len(values))
	for _, v := range values {
		text, err := iso(clean(v))
		if err != nil {
			return err
		}
		lit, err := turtle.TemporalLiteral(text)
		if err != nil {
			return err
		}
		objects = append(objects, lit)
	}
	return e.writeAll(s, p, objects)
}

func (e *Emitter) times(s, p turtle.IRI, el *document.Element) error {
	values, err := stringValues(el)
	if err != nil {
		return err
	}
	objects := make([]turtle.Object, 0, len(values))
	for _, v := range values {
		t, err := scalar.ParseTime(clean(v))
		if err != nil {
			return err
		}
		objects = append(objects, turtle.TypedLiteral{Lexical: t.ISO(), Datatype: timeDatatype})
	}
	return e.writeAll(s, p, objects)
}

func (e *Emitter) texts(s, p turtle.IRI, el *document.Element) error {
	values, err := stringValues(el)
	if err != nil {
		return err
	}
	for _, v := range values {
		if err := e.write(s, p, turtle.PlainString(clean(v))); err != nil {
			return err
		}
	}
	return nil
}

// longString writes LO values. A forbidden code meaning becomes the carry.
func (e *Emitter) longString(s, p turtle.IRI, el *document.Element) (string, error) {
	values, err := stringValues(el)
	if err != nil {
		return "", err
	}
	carry := ""
	for _, v := range values {
		text := clean(v)
		if err := e.write(s, p, turtle.PlainString(text)); err != nil {
			return carry, err
		}
		if carry == "" && el.Tag == document.TagCodeMeaning && e.policy.forbiddenMeaning(text) {
			carry = text
		}
	}
	return carry, nil
}

// shortString writes SH values; coding scheme designators become IRIs.
func (e *Emitter) shortString(s, p turtle.IRI, el *document.Element) error {
	values, err := stringValues(el)
	if err != nil {
		return err
	}
	for _, v := range values {
		text := clean(v)
		var o turtle.Object = turtle.PlainString(text)
		if el.Tag == document.TagCodingSchemeDesignator {
			o = e.policy.scheme(text)
		}
		if err := e.write(s, p, o); err != nil {
			return err
		}
	}
	return nil
}

// decimals writes DS values. Non-finite values are dropped silently since
// the triple store cannot load NaN or infinity literals.
func (e *Emitter) decimals(s, p turtle.IRI, el *document.Element) error {
	values, err := stringValues(el)
	if err != nil {
		return err
	}
	objects := make([]turtle.Object, 0, len(values))
	for _, v := range values {
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return err
		}
		if math.IsNaN(f) || math.IsInf(f, 0) {
			continue
		}
		objects = append(objects, turtle.PlainFloat(f))
	}
	return e.writeAll(s, p, objects)
}

func (e *Emitter) floats(s, p turtle.IRI, el *document.Element, skipNonFinite bool) error {
	values, ok := el.Value.(document.Floats)
	if !ok {
		return unexpected(el)
	}
	for _, f := range values {
		if skipNonFinite && (math.IsNaN(f) || math.IsInf(f, 0)) {
			continue
		}
		if err := e.write(s, p, turtle.PlainFloat(f)); err != nil {
			return err
		}
	}
	return nil
}

func (e *Emitter) integerStrings(s, p turtle.IRI, el *document.Element) error {
	values, err := stringValues(el)
	if err != nil {
		return err
	}
	objects := make([]turtle.Object, 0, len(values))
	for _, v := range values {
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return err
		}
		objects = append(objects, turtle.PlainInteger(n))
	}
	return e.writeAll(s, p, objects)
}

func (e *Emitter) integers(s, p turtle.IRI, el *document.Element) error {
	switch values := el.Value.(type) {
	case document.Ints:
		for _, n := range values {
			if err := e.write(s, p, turtle.PlainInteger(n)); err != nil {
				return err
			}
		}
	case document.Uints:
		for _, n := range values {
			if err := e.write(s, p, turtle.PlainUnsigned(n)); err != nil {
				return err
			}
		}
	default:
		return unexpected(el)
	}
	return nil
}

func (e *Emitter) personName(s turtle.IRI, el *document.Element) error {
	values, err := stringValues(el)
	if err != nil {
		return err
	}
	pn := scalar.ParsePersonName(values[0])

	bn := e.blanks.New()
	if err := e.write(s, personNameIRI, bn); err != nil {
		return err
	}
	components := []struct {
		pred  turtle.IRI
		value string
	}{
		{pnFamilyIRI, pn.Family},
		{pnMiddleIRI, pn.Middle},
		{pnGivenIRI, pn.Given},
		{pnPrefixIRI, pn.Prefix},
		{pnSuffixIRI, pn.Suffix},
	}
	for _, c := range components {
		if c.value == "" {
			continue
		}
		if err := e.write(bn, c.pred, turtle.PlainString(c.value)); err != nil {
			return err
		}
	}
	return nil
}

// sequence links one blank node per item and recurses into it. Content
// sequence items get an index and an item node one level deeper.
func (e *Emitter) sequence(s, p turtle.IRI, el *document.Element, depth int) (string, int, error) {
	items, ok := el.Value.(document.Items)
	if !ok {
		return "", depth, unexpected(el)
	}

	carry, maxDepth := "", depth
	for i, item := range items {
		bn := e.blanks.New()
		if err := e.write(s, p, bn); err != nil {
			return carry, maxDepth, err
		}

		var found string
		childDepth := depth
		if el.Tag == document.TagContentSequence {
			if err := e.write(bn, indexIRI, turtle.PlainInteger(i)); err != nil {
				return carry, maxDepth, err
			}
			content := e.blanks.New()
			if err := e.write(bn, itemIRI, content); err != nil {
				return carry, maxDepth, err
			}
			found, childDepth = e.Emit(content, item, depth+1)
		} else {
			found, childDepth = e.Emit(bn, item, depth)
		}

		if carry == "" {
			carry = found
		}
		maxDepth = max(maxDepth, childDepth)
	}
	return carry, maxDepth, nil
}

// unlimitedText writes UT values. A known carry replaces the text value.
func (e *Emitter) unlimitedText(s, p turtle.IRI, el *document.Element, carry string) error {
	values, err := stringValues(el)
	if err != nil {
		return err
	}
	for _, v := range values {
		text := clean(v)
		if el.Tag == document.TagTextValue && carry != "" {
			text = "<" + carry + ">"
		}
		if err := e.write(s, p, turtle.PlainString(text)); err != nil {
			return err
		}
	}
	return nil
}

func stringValues(el *document.Element) (document.Strings, error) {
	values, ok := el.Value.(document.Strings)
	if !ok || len(values) == 0 {
		return nil, unexpected(el)
	}
	return values, nil
}

func unexpected(el *document.Element) error {
	return fmt.Errorf("unexpected value type %T", el.Value)
}

// clean trims surrounding whitespace and trailing NUL padding.
func clean(s string) string {
	return strings.TrimRight(strings.TrimSpace(s), "\x00")
}
