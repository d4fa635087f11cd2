package turtle

import (
	"errors"
	"fmt"

	"github.com/c360studio/dicom2rdf/vocabulary/dicom2rdf"
)

// ErrDatatypeLength is returned when no temporal datatype matches the length
// of an ISO-8601 string.
var ErrDatatypeLength = errors.New("no temporal datatype for length")

// XSD returns the xsd:local datatype IRI.
func XSD(local string) IRI {
	return Prefixed(dicom2rdf.PrefixXSD, local)
}

// TemporalLiteral types an ISO-8601 date or datetime by its length:
// 4 -> xsd:gYear, 7 -> xsd:gYearMonth, 10 -> xsd:date, longer -> xsd:dateTime.
func TemporalLiteral(iso string) (TypedLiteral, error) {
	var local string
	switch n := len(iso); {
	case n == 4:
		local = dicom2rdf.XSDGYear
	case n == 7:
		local = dicom2rdf.XSDGYearMonth
	case n == 10:
		local = dicom2rdf.XSDDate
	case n > 10:
		local = dicom2rdf.XSDDateTime
	default:
		return TypedLiteral{}, fmt.Errorf("%w: %q", ErrDatatypeLength, iso)
	}
	return TypedLiteral{Lexical: iso, Datatype: XSD(local)}, nil
}
