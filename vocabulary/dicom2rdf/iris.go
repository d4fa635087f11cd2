// Package dicom2rdf defines the raw conversion vocabulary.
//
// Every DICOM attribute becomes a predicate in the dicom2rdf namespace whose
// local name is the eight-digit upper-case hex tag, e.g. dicom2rdf:0040A730.
// The handful of structural predicates below connect the blank nodes that
// model sequences, content items and person names.
package dicom2rdf

// Prefix is the Turtle prefix bound to Namespace in every output file.
const Prefix = "dicom2rdf"

// Namespace is the base IRI for all raw conversion terms.
const Namespace = "http://dicom2rdf.uniklinik-freiburg.de/"

// Well-known W3C vocabularies declared in every output header.
const (
	PrefixRDF    = "rdf"
	NamespaceRDF = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"

	PrefixRDFS    = "rdfs"
	NamespaceRDFS = "http://www.w3.org/2000/01/rdf-schema#"

	PrefixXSD    = "xsd"
	NamespaceXSD = "http://www.w3.org/2001/XMLSchema#"
)

// Structural local names in the dicom2rdf namespace.
const (
	// DocumentRoot is the rdf:type of every file subject.
	DocumentRoot = "DocumentRoot"

	// Index links a content sequence item to its 0-based position.
	Index = "index"

	// Item links a content sequence item to the node holding its content.
	Item = "item"

	// PersonName links a subject to the blank node of a PN value.
	PersonName = "person_name"

	PNFamily = "pn_family"
	PNMiddle = "pn_middle"
	PNGiven  = "pn_given"
	PNPrefix = "pn_prefix"
	PNSuffix = "pn_suffix"
)

// XSD datatype local names used for typed literals.
const (
	XSDGYear      = "gYear"
	XSDGYearMonth = "gYearMonth"
	XSDDate       = "date"
	XSDDateTime   = "dateTime"
	XSDTime       = "time"
)

// MaxDepthPredicate is the absolute predicate of the per-file metadata
// triple appended when a worker output is finalized. Downstream queries
// match it literally, so it stays outside any prefix.
const MaxDepthPredicate = "meta:maxDepth"

// RDFType is the local name of rdf:type.
const RDFType = "type"
