package emitter

import (
	"fmt"
	"strings"

	"github.com/c360studio/dicom2rdf/config"
	"github.com/c360studio/dicom2rdf/document"
	"github.com/c360studio/dicom2rdf/turtle"
)

// Policy is the read-only redaction and vocabulary policy shared by every
// emitter of a run.
type Policy struct {
	// ForbiddenTags are written as "<(GGGG,EEEE)>" placeholders.
	ForbiddenTags map[document.Tag]struct{}
	// ForbiddenMeanings are code meanings that redact a sibling text value.
	ForbiddenMeanings map[string]struct{}
	// Schemes maps coding scheme designators to vocabulary IRIs.
	Schemes map[string]turtle.IRI
	// FallbackPrefix receives designators Schemes does not know.
	FallbackPrefix string
	// MaxObjectLength bounds string literals; 0 selects turtle.MaxObjectLength.
	MaxObjectLength int
}

// NewPolicy builds a Policy from a validated configuration.
func NewPolicy(cfg *config.Config) (*Policy, error) {
	tags, err := cfg.Tags()
	if err != nil {
		return nil, fmt.Errorf("build policy: %w", err)
	}

	p := &Policy{
		ForbiddenTags:     make(map[document.Tag]struct{}, len(tags)),
		ForbiddenMeanings: make(map[string]struct{}, len(cfg.ForbiddenCodeMeanings)),
		Schemes:           make(map[string]turtle.IRI, len(cfg.Dicom)),
		FallbackPrefix:    cfg.Fallback.Prefix,
		MaxObjectLength:   cfg.Pipeline.MaxObjectLength,
	}
	for _, t := range tags {
		p.ForbiddenTags[t] = struct{}{}
	}
	for _, m := range cfg.ForbiddenCodeMeanings {
		p.ForbiddenMeanings[strings.TrimSpace(m)] = struct{}{}
	}
	for _, d := range cfg.Dicom {
		// First entry for a designator wins.
		if _, ok := p.Schemes[d.CodingScheme]; !ok {
			p.Schemes[d.CodingScheme] = turtle.Full(d.IRI)
		}
	}
	return p, nil
}

func (p *Policy) forbiddenTag(t document.Tag) bool {
	_, ok := p.ForbiddenTags[t]
	return ok
}

func (p *Policy) forbiddenMeaning(s string) bool {
	_, ok := p.ForbiddenMeanings[s]
	return ok
}

// scheme resolves a coding scheme designator to its vocabulary IRI.
func (p *Policy) scheme(designator string) turtle.IRI {
	if iri, ok := p.Schemes[designator]; ok {
		return iri
	}
	return turtle.Prefixed(p.FallbackPrefix, designator+"_")
}
