// Package config provides configuration loading and validation for dicom2rdf.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/c360studio/dicom2rdf/document"
)

// Config represents the complete dicom2rdf configuration
type Config struct {
	// Dicom maps DICOM coding scheme designators to vocabularies.
	Dicom []CodingScheme `yaml:"dicom" toml:"dicom"`
	// NonDicom declares extra vocabularies used by downstream queries.
	NonDicom []Namespace `yaml:"non_dicom" toml:"non_dicom"`
	// Fallback is the namespace for coding schemes missing from Dicom.
	Fallback Namespace `yaml:"fallback" toml:"fallback"`
	// ForbiddenCodeMeanings are code meanings whose sibling text values get redacted.
	ForbiddenCodeMeanings []string `yaml:"forbidden_code_meanings" toml:"forbidden_code_meanings"`
	// ForbiddenDicomTags are [group, element] pairs whose values are never written.
	ForbiddenDicomTags [][]uint16 `yaml:"forbidden_dicom_tags" toml:"forbidden_dicom_tags"`
	// Pipeline tunes the batch conversion.
	Pipeline PipelineConfig `yaml:"pipeline" toml:"pipeline"`
}

// CodingScheme binds a coding scheme designator such as "SCT" to a namespace.
type CodingScheme struct {
	IRI          string `yaml:"iri" toml:"iri"`
	Prefix       string `yaml:"prefix" toml:"prefix"`
	CodingScheme string `yaml:"coding_scheme" toml:"coding_scheme"`
}

// Namespace is a prefix declaration.
type Namespace struct {
	IRI    string `yaml:"iri" toml:"iri"`
	Prefix string `yaml:"prefix" toml:"prefix"`
}

// PipelineConfig configures the worker pool
type PipelineConfig struct {
	// Workers is the pool size (0 = one per CPU)
	Workers int `yaml:"workers" toml:"workers"`
	// ProgressMilestone is how many converted files trigger a progress log line
	ProgressMilestone int `yaml:"progress_milestone" toml:"progress_milestone"`
	// MaxObjectLength bounds the rendered length of string literals
	MaxObjectLength int `yaml:"max_object_length" toml:"max_object_length"`
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Pipeline: PipelineConfig{
			Workers:           0, // One per CPU
			ProgressMilestone: 10000,
			MaxObjectLength:   1000,
		},
	}
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	for i, d := range c.Dicom {
		if d.IRI == "" || d.Prefix == "" || d.CodingScheme == "" {
			return fmt.Errorf("dicom[%d]: iri, prefix and coding_scheme are required", i)
		}
	}
	for i, n := range c.NonDicom {
		if n.IRI == "" || n.Prefix == "" {
			return fmt.Errorf("non_dicom[%d]: iri and prefix are required", i)
		}
	}
	if c.Fallback.IRI == "" || c.Fallback.Prefix == "" {
		return fmt.Errorf("fallback.iri and fallback.prefix are required")
	}
	if _, err := c.Tags(); err != nil {
		return err
	}
	if c.Pipeline.Workers < 0 {
		return fmt.Errorf("pipeline.workers must not be negative")
	}
	if c.Pipeline.ProgressMilestone <= 0 {
		return fmt.Errorf("pipeline.progress_milestone must be positive")
	}
	if c.Pipeline.MaxObjectLength <= 0 {
		return fmt.Errorf("pipeline.max_object_length must be positive")
	}
	return nil
}

// Tags returns the forbidden tags.
func (c *Config) Tags() ([]document.Tag, error) {
	tags := make([]document.Tag, 0, len(c.ForbiddenDicomTags))
	for i, pair := range c.ForbiddenDicomTags {
		if len(pair) != 2 {
			return nil, fmt.Errorf("forbidden_dicom_tags[%d]: expected [group, element], got %d values", i, len(pair))
		}
		tags = append(tags, document.Tag{Group: pair[0], Element: pair[1]})
	}
	return tags, nil
}

// PrefixPairs returns every configured prefix declaration: coding schemes
// first, then non-DICOM vocabularies, then the fallback.
func (c *Config) PrefixPairs() []Namespace {
	pairs := make([]Namespace, 0, len(c.Dicom)+len(c.NonDicom)+1)
	for _, d := range c.Dicom {
		pairs = append(pairs, Namespace{IRI: d.IRI, Prefix: d.Prefix})
	}
	pairs = append(pairs, c.NonDicom...)
	return append(pairs, c.Fallback)
}

// LoadFromFile loads configuration from a YAML or TOML file. The format is
// chosen by extension; anything but .toml is read as YAML.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		err = toml.Unmarshal(data, config)
	} else {
		err = yaml.Unmarshal(data, config)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// Merge merges another config into this one (other takes precedence for non-zero values)
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}

	if len(other.Dicom) > 0 {
		c.Dicom = other.Dicom
	}
	if len(other.NonDicom) > 0 {
		c.NonDicom = other.NonDicom
	}
	if other.Fallback.IRI != "" {
		c.Fallback = other.Fallback
	}
	if len(other.ForbiddenCodeMeanings) > 0 {
		c.ForbiddenCodeMeanings = other.ForbiddenCodeMeanings
	}
	if len(other.ForbiddenDicomTags) > 0 {
		c.ForbiddenDicomTags = other.ForbiddenDicomTags
	}

	// Pipeline
	if other.Pipeline.Workers != 0 {
		c.Pipeline.Workers = other.Pipeline.Workers
	}
	if other.Pipeline.ProgressMilestone != 0 {
		c.Pipeline.ProgressMilestone = other.Pipeline.ProgressMilestone
	}
	if other.Pipeline.MaxObjectLength != 0 {
		c.Pipeline.MaxObjectLength = other.Pipeline.MaxObjectLength
	}
}
