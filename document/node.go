package document

import "context"

// Value is the decoded payload of an Element. The set of implementations is
// closed: Strings, Ints, Uints, Floats, Bytes, Items, Opaque and Invalid.
type Value interface {
	// Len is the number of values; 0 means the element is empty.
	Len() int
	isValue()
}

// Strings holds textual values, one entry per backslash-separated value.
type Strings []string

// Ints holds binary integer values widened to 64 bits.
type Ints []int64

// Uints holds UV values, which may exceed the int64 range.
type Uints []uint64

// Floats holds binary floating point values.
type Floats []float64

// Bytes holds an opaque byte stream.
type Bytes []byte

// Items holds the nested nodes of a sequence.
type Items []*Node

// Opaque stands for a payload the parser did not load, such as skipped pixel
// data. Size is the encoded length; a negative size means undefined length.
type Opaque struct {
	Size int64
}

// Invalid is a payload the parser delivered but that could not be decoded.
type Invalid struct {
	Err error
}

func (v Strings) Len() int { return len(v) }
func (v Ints) Len() int    { return len(v) }
func (v Uints) Len() int   { return len(v) }
func (v Floats) Len() int  { return len(v) }
func (v Bytes) Len() int   { return len(v) }
func (v Items) Len() int   { return len(v) }

func (v Opaque) Len() int {
	if v.Size == 0 {
		return 0
	}
	return 1
}

func (Invalid) Len() int { return 1 }

func (Strings) isValue() {}
func (Ints) isValue()    {}
func (Uints) isValue()   {}
func (Floats) isValue()  {}
func (Bytes) isValue()   {}
func (Items) isValue()   {}
func (Opaque) isValue()  {}
func (Invalid) isValue() {}

// Element is one attribute of a Node.
type Element struct {
	Tag   Tag
	VR    VR
	Value Value
}

// IsEmpty reports whether the element carries no value.
func (e *Element) IsEmpty() bool {
	return e.Value == nil || e.Value.Len() == 0
}

// Node is an ordered list of elements: a whole dataset or one sequence item.
type Node struct {
	Elements []*Element
}

// Opener parses the document at path into a tree.
type Opener interface {
	Open(ctx context.Context, path string) (*Node, error)
}

// OpenerFunc adapts a function to the Opener interface.
type OpenerFunc func(ctx context.Context, path string) (*Node, error)

// Open calls f.
func (f OpenerFunc) Open(ctx context.Context, path string) (*Node, error) {
	return f(ctx, path)
}
