package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/c360studio/dicom2rdf/document"
)

const yamlConfig = `
dicom:
  - iri: "http://snomed.info/id/"
    prefix: sct
    coding_scheme: SCT
  - iri: "http://loinc.org/rdf/"
    prefix: ln
    coding_scheme: LN
non_dicom:
  - iri: "http://schema.org/"
    prefix: schema
fallback:
  iri: "http://dicom2rdf.uniklinik-freiburg.de/unknown/"
  prefix: unknown
forbidden_code_meanings:
  - "Patient Name"
forbidden_dicom_tags:
  - [0x0010, 0x0010]
  - [16, 32]
pipeline:
  workers: 4
`

const tomlConfig = `
forbidden_code_meanings = ["Patient Name"]
forbidden_dicom_tags = [[0x0010, 0x0010]]

[[dicom]]
iri = "http://snomed.info/id/"
prefix = "sct"
coding_scheme = "SCT"

[[non_dicom]]
iri = "http://schema.org/"
prefix = "schema"

[fallback]
iri = "http://dicom2rdf.uniklinik-freiburg.de/unknown/"
prefix = "unknown"
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Pipeline.Workers != 0 {
		t.Errorf("expected workers 0 (one per CPU), got %d", cfg.Pipeline.Workers)
	}
	if cfg.Pipeline.ProgressMilestone != 10000 {
		t.Errorf("expected milestone 10000, got %d", cfg.Pipeline.ProgressMilestone)
	}
	if cfg.Pipeline.MaxObjectLength != 1000 {
		t.Errorf("expected max object length 1000, got %d", cfg.Pipeline.MaxObjectLength)
	}
}

func TestLoadFromFile_YAML(t *testing.T) {
	cfg, err := LoadFromFile(writeFile(t, "config.yaml", yamlConfig))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	require.Len(t, cfg.Dicom, 2)
	assert.Equal(t, "SCT", cfg.Dicom[0].CodingScheme)
	assert.Equal(t, "unknown", cfg.Fallback.Prefix)
	assert.Equal(t, []string{"Patient Name"}, cfg.ForbiddenCodeMeanings)
	assert.Equal(t, 4, cfg.Pipeline.Workers)
	assert.Equal(t, 10000, cfg.Pipeline.ProgressMilestone, "unset fields keep defaults")

	tags, err := cfg.Tags()
	require.NoError(t, err)
	assert.Equal(t, []document.Tag{{Group: 0x0010, Element: 0x0010}, {Group: 0x0010, Element: 0x0020}}, tags)
}

func TestLoadFromFile_TOML(t *testing.T) {
	cfg, err := LoadFromFile(writeFile(t, "config.toml", tomlConfig))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "sct", cfg.Dicom[0].Prefix)
	assert.Equal(t, "schema", cfg.NonDicom[0].Prefix)
	tags, err := cfg.Tags()
	require.NoError(t, err)
	assert.Equal(t, []document.Tag{{Group: 0x0010, Element: 0x0010}}, tags)
}

func TestLoadFromFile_Errors(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = LoadFromFile(writeFile(t, "bad.yaml", "dicom: [unclosed"))
	assert.Error(t, err)

	_, err = LoadFromFile(writeFile(t, "bad.toml", "dicom = ["))
	assert.Error(t, err)
}

func TestConfigValidate(t *testing.T) {
	valid := func() *Config {
		cfg, err := LoadFromFile(writeFile(t, "config.yaml", yamlConfig))
		require.NoError(t, err)
		return cfg
	}

	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{
			name:    "valid config",
			modify:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:    "missing fallback",
			modify:  func(c *Config) { c.Fallback = Namespace{} },
			wantErr: true,
		},
		{
			name:    "coding scheme without designator",
			modify:  func(c *Config) { c.Dicom[0].CodingScheme = "" },
			wantErr: true,
		},
		{
			name:    "non dicom without prefix",
			modify:  func(c *Config) { c.NonDicom[0].Prefix = "" },
			wantErr: true,
		},
		{
			name:    "malformed tag pair",
			modify:  func(c *Config) { c.ForbiddenDicomTags = [][]uint16{{0x0010}} },
			wantErr: true,
		},
		{
			name:    "negative workers",
			modify:  func(c *Config) { c.Pipeline.Workers = -1 },
			wantErr: true,
		},
		{
			name:    "zero milestone",
			modify:  func(c *Config) { c.Pipeline.ProgressMilestone = 0 },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.modify(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfigMerge(t *testing.T) {
	base := DefaultConfig()
	base.Fallback = Namespace{IRI: "http://a/", Prefix: "a"}
	base.Merge(&Config{Pipeline: PipelineConfig{Workers: 8}})

	assert.Equal(t, 8, base.Pipeline.Workers)
	assert.Equal(t, 10000, base.Pipeline.ProgressMilestone)
	assert.Equal(t, "a", base.Fallback.Prefix)

	base.Merge(nil)
	assert.Equal(t, 8, base.Pipeline.Workers)
}

func TestLoader_Load(t *testing.T) {
	path := writeFile(t, "config.yaml", yamlConfig)
	env := map[string]string{EnvWorkers: "2", EnvProgressMilestone: "50"}
	l := NewLoader(slog.Default())
	l.getenv = func(k string) string { return env[k] }

	cfg, err := l.Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Pipeline.Workers, "environment beats file")
	assert.Equal(t, 50, cfg.Pipeline.ProgressMilestone)

	cfg, err = l.Load(path, &Config{Pipeline: PipelineConfig{Workers: 6}})
	require.NoError(t, err)
	assert.Equal(t, 6, cfg.Pipeline.Workers, "overrides beat environment")

	env[EnvWorkers] = "many"
	_, err = l.Load(path, nil)
	assert.Error(t, err)
}

func TestLoader_LoadInvalid(t *testing.T) {
	path := writeFile(t, "config.yaml", "forbidden_code_meanings: [x]\n")
	_, err := NewLoader(nil).Load(path, nil)
	assert.ErrorContains(t, err, "fallback")
}

func TestPrefixPairs(t *testing.T) {
	cfg, err := LoadFromFile(writeFile(t, "config.yaml", yamlConfig))
	require.NoError(t, err)

	var prefixes []string
	for _, p := range cfg.PrefixPairs() {
		prefixes = append(prefixes, p.Prefix)
	}
	assert.Equal(t, []string{"sct", "ln", "schema", "unknown"}, prefixes)
}

func TestWriteSuggestedPrefixes(t *testing.T) {
	cfg, err := LoadFromFile(writeFile(t, "config.yaml", yamlConfig))
	require.NoError(t, err)

	ui := writeFile(t, "Qleverfile-ui.yml", `config:
  backend:
    name: dicom
    suggestedPrefixes: old
  frontend:
    title: Reports
`)
	require.NoError(t, WriteSuggestedPrefixes(cfg, ui))

	data, err := os.ReadFile(ui)
	require.NoError(t, err)

	var got struct {
		Config struct {
			Backend struct {
				Name              string `yaml:"name"`
				SuggestedPrefixes string `yaml:"suggestedPrefixes"`
			} `yaml:"backend"`
			Frontend struct {
				Title string `yaml:"title"`
			} `yaml:"frontend"`
		} `yaml:"config"`
	}
	require.NoError(t, yaml.Unmarshal(data, &got))

	assert.Equal(t, "dicom", got.Config.Backend.Name)
	assert.Equal(t, "Reports", got.Config.Frontend.Title)
	lines := strings.Split(strings.TrimSpace(got.Config.Backend.SuggestedPrefixes), "\n")
	assert.Equal(t, []string{
		"@prefix sct: <http://snomed.info/id/> .",
		"@prefix ln: <http://loinc.org/rdf/> .",
		"@prefix schema: <http://schema.org/> .",
		"@prefix unknown: <http://dicom2rdf.uniklinik-freiburg.de/unknown/> .",
	}, lines)
}

func TestWriteSuggestedPrefixes_CreatesMissingKeys(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Fallback = Namespace{IRI: "http://f/", Prefix: "f"}

	ui := writeFile(t, "Qleverfile-ui.yml", "other: 1\n")
	require.NoError(t, WriteSuggestedPrefixes(cfg, ui))

	data, err := os.ReadFile(ui)
	require.NoError(t, err)
	assert.Contains(t, string(data), "other: 1")
	assert.Contains(t, string(data), "@prefix f: <http://f/> .")

	bad := writeFile(t, "bad.yml", "config: 3\n")
	assert.Error(t, WriteSuggestedPrefixes(cfg, bad))
}
