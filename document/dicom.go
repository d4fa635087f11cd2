package document

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/suyashkumar/dicom"
)

// undefinedLength is the DICOM marker for an undefined value length.
const undefinedLength = 0xFFFFFFFF

// ErrTrimmedWords reports an SV or UV payload that lost NUL or space bytes
// at its ends while the parser read it as text. Where the bytes were lost
// cannot be told, so the values are not decoded.
var ErrTrimmedWords = errors.New("64-bit integer payload trimmed by parser")

// DICOMOpener reads DICOM files from disk. Pixel data is never loaded.
type DICOMOpener struct{}

// Open parses the DICOM file at path.
func (DICOMOpener) Open(ctx context.Context, path string) (*Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ds, err := dicom.ParseFile(path, nil, dicom.SkipPixelData())
	if err != nil {
		return nil, fmt.Errorf("parse dicom %s: %w", path, err)
	}
	return FromDataset(ds)
}

// Parse reads a DICOM stream of size bytes.
func Parse(r io.Reader, size int64) (*Node, error) {
	ds, err := dicom.Parse(r, size, nil, dicom.SkipPixelData())
	if err != nil {
		return nil, fmt.Errorf("parse dicom stream: %w", err)
	}
	return FromDataset(ds)
}

// FromDataset converts a parsed dataset into a Node, dropping the file meta
// group and delimitation items.
func FromDataset(ds dicom.Dataset) (*Node, error) {
	return fromElements(ds.Elements)
}

func fromElements(elems []*dicom.Element) (*Node, error) {
	node := &Node{Elements: make([]*Element, 0, len(elems))}
	for _, el := range elems {
		if el == nil {
			continue
		}
		t := Tag{Group: el.Tag.Group, Element: el.Tag.Element}
		if t.IsMetaGroup() || t.IsDelimiter() {
			continue
		}
		v, err := convertValue(el)
		if err != nil {
			return nil, fmt.Errorf("element %s: %w", t, err)
		}
		node.Elements = append(node.Elements, &Element{
			Tag:   t,
			VR:    ParseVR(el.RawValueRepresentation),
			Value: v,
		})
	}
	return node, nil
}

func convertValue(el *dicom.Element) (Value, error) {
	if el.Value == nil || el.ValueLength == 0 {
		return nil, nil
	}
	raw := el.Value.GetValue()
	switch el.Value.ValueType() {
	case dicom.Strings:
		s, ok := raw.([]string)
		if !ok {
			return nil, fmt.Errorf("unexpected string payload %T", raw)
		}
		return textValue(el, s), nil
	case dicom.Ints:
		ints, ok := raw.([]int)
		if !ok {
			return nil, fmt.Errorf("unexpected int payload %T", raw)
		}
		out := make(Ints, len(ints))
		for i, n := range ints {
			out[i] = int64(n)
		}
		return out, nil
	case dicom.Floats:
		f, ok := raw.([]float64)
		if !ok {
			return nil, fmt.Errorf("unexpected float payload %T", raw)
		}
		return Floats(f), nil
	case dicom.Bytes:
		b, ok := raw.([]byte)
		if !ok {
			return nil, fmt.Errorf("unexpected byte payload %T", raw)
		}
		return Bytes(b), nil
	case dicom.Sequences:
		seq, ok := raw.([]*dicom.SequenceItemValue)
		if !ok {
			return nil, fmt.Errorf("unexpected sequence payload %T", raw)
		}
		items := make(Items, 0, len(seq))
		for _, item := range seq {
			elems, ok := item.GetValue().([]*dicom.Element)
			if !ok {
				return nil, fmt.Errorf("unexpected sequence item payload %T", item.GetValue())
			}
			child, err := fromElements(elems)
			if err != nil {
				return nil, err
			}
			items = append(items, child)
		}
		return items, nil
	case dicom.SequenceItem:
		elems, ok := raw.([]*dicom.Element)
		if !ok {
			return nil, fmt.Errorf("unexpected item payload %T", raw)
		}
		child, err := fromElements(elems)
		if err != nil {
			return nil, err
		}
		return Items{child}, nil
	case dicom.PixelData:
		size := int64(el.ValueLength)
		if el.ValueLength == undefinedLength {
			size = -1
		}
		return Opaque{Size: size}, nil
	default:
		return Opaque{Size: int64(el.ValueLength)}, nil
	}
}

// textValue undoes the parser's value splitting. DA arrives as one unsplit
// string, ST, LT and UT are single-valued but arrive split on every
// backslash, and SV and UV arrive as text holding their binary words.
func textValue(el *dicom.Element, s []string) Value {
	switch el.RawValueRepresentation {
	case "DA":
		out := make(Strings, 0, len(s))
		for _, v := range s {
			out = append(out, strings.Split(v, `\`)...)
		}
		return out
	case "ST", "LT", "UT":
		return Strings{strings.Join(s, `\`)}
	case "SV", "UV":
		return words(el, s)
	default:
		return Strings(s)
	}
}

// words decodes little-endian 8-byte SV or UV values. Rejoining on the
// backslash restores the split; a trim is only undone when nothing was
// removed.
func words(el *dicom.Element, s []string) Value {
	b := []byte(strings.Join(s, `\`))
	if uint32(len(b)) != el.ValueLength {
		return Invalid{Err: fmt.Errorf("%w: %d of %d bytes left", ErrTrimmedWords, len(b), el.ValueLength)}
	}
	if len(b)%8 != 0 {
		return Invalid{Err: fmt.Errorf("%s length %d is not a multiple of 8", el.RawValueRepresentation, len(b))}
	}

	if el.RawValueRepresentation == "UV" {
		out := make(Uints, 0, len(b)/8)
		for i := 0; i < len(b); i += 8 {
			out = append(out, binary.LittleEndian.Uint64(b[i:]))
		}
		return out
	}
	out := make(Ints, 0, len(b)/8)
	for i := 0; i < len(b); i += 8 {
		out = append(out, int64(binary.LittleEndian.Uint64(b[i:])))
	}
	return out
}
