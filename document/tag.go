// Package document is the read-only tree the emitter walks.
//
// A Node is an ordered list of Elements; an Element carries a Tag, the VR that
// controls how its value decodes, and a Value. Sequence values hold nested
// Nodes. The tree is produced by an Opener (see DICOMOpener) and is never
// mutated after that.
package document

import "fmt"

// Tag identifies one attribute by its (group, element) pair.
type Tag struct {
	Group   uint16
	Element uint16
}

// Well-known tags the converter treats specially.
var (
	TagPixelData              = Tag{0x7FE0, 0x0010}
	TagCodingSchemeDesignator = Tag{0x0008, 0x0102}
	TagCodeMeaning            = Tag{0x0008, 0x0104}
	TagTextValue              = Tag{0x0040, 0xA160}
	TagContentSequence        = Tag{0x0040, 0xA730}
)

// String renders the tag as (GGGG,EEEE).
func (t Tag) String() string {
	return fmt.Sprintf("(%04X,%04X)", t.Group, t.Element)
}

// Hex renders the tag as GGGGEEEE.
func (t Tag) Hex() string {
	return fmt.Sprintf("%04X%04X", t.Group, t.Element)
}

// IsMetaGroup reports whether the tag belongs to the file meta information
// group (0002).
func (t Tag) IsMetaGroup() bool {
	return t.Group == 0x0002
}

// IsDelimiter reports whether the tag is an item or sequence delimiter.
func (t Tag) IsDelimiter() bool {
	return t.Group == 0xFFFE
}
