package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// SuggestedPrefixes renders the configured prefixes as Turtle declarations,
// one per line.
func (c *Config) SuggestedPrefixes() string {
	pairs := c.PrefixPairs()
	lines := make([]string, 0, len(pairs))
	for _, p := range pairs {
		lines = append(lines, fmt.Sprintf("@prefix %s: <%s> .", p.Prefix, p.IRI))
	}
	return strings.Join(lines, "\n")
}

// WriteSuggestedPrefixes sets config.backend.suggestedPrefixes in a
// Qleverfile-ui YAML file, keeping the rest of the document intact.
func WriteSuggestedPrefixes(c *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read qleverfile: %w", err)
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("failed to parse qleverfile: %w", err)
	}
	if doc.Kind == 0 {
		doc = yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{{Kind: yaml.MappingNode}}}
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) != 1 || doc.Content[0].Kind != yaml.MappingNode {
		return fmt.Errorf("qleverfile %s: top level is not a mapping", path)
	}

	backend, err := mappingAt(doc.Content[0], "config", "backend")
	if err != nil {
		return fmt.Errorf("qleverfile %s: %w", path, err)
	}
	setScalar(backend, "suggestedPrefixes", c.SuggestedPrefixes())

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return fmt.Errorf("failed to marshal qleverfile: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to marshal qleverfile: %w", err)
	}

	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write qleverfile: %w", err)
	}
	return nil
}

// mappingAt walks (and creates) nested mappings below m.
func mappingAt(m *yaml.Node, keys ...string) (*yaml.Node, error) {
	for _, key := range keys {
		next := lookup(m, key)
		switch {
		case next == nil:
			next = &yaml.Node{Kind: yaml.MappingNode}
			m.Content = append(m.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: key}, next)
		case next.Kind != yaml.MappingNode:
			return nil, fmt.Errorf("%s is not a mapping", key)
		}
		m = next
	}
	return m, nil
}

func lookup(m *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return m.Content[i+1]
		}
	}
	return nil
}

func setScalar(m *yaml.Node, key, value string) {
	node := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: value, Style: yaml.LiteralStyle}
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			m.Content[i+1] = node
			return
		}
	}
	m.Content = append(m.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: key}, node)
}
