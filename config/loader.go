package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
)

const (
	// EnvWorkers overrides pipeline.workers
	EnvWorkers = "DICOM2RDF_WORKERS"
	// EnvProgressMilestone overrides pipeline.progress_milestone
	EnvProgressMilestone = "DICOM2RDF_PROGRESS_MILESTONE"
)

// Loader handles configuration loading with layered precedence
type Loader struct {
	logger *slog.Logger
	getenv func(string) string
}

// NewLoader creates a new configuration loader
func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{logger: logger, getenv: os.Getenv}
}

// Load loads configuration with layered precedence:
// 1. Default config
// 2. Config file (YAML or TOML)
// 3. Environment variables
// 4. overrides (typically command line flags)
func (l *Loader) Load(path string, overrides *Config) (*Config, error) {
	config, err := LoadFromFile(path)
	if err != nil {
		return nil, err
	}
	l.logger.Debug("Loaded config", slog.String("path", path))

	env, err := l.fromEnv()
	if err != nil {
		return nil, err
	}
	config.Merge(env)
	config.Merge(overrides)

	// Validate final config
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return config, nil
}

// fromEnv reads the pipeline overrides from the environment
func (l *Loader) fromEnv() (*Config, error) {
	env := &Config{}
	if v := l.getenv(EnvWorkers); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", EnvWorkers, err)
		}
		env.Pipeline.Workers = n
		l.logger.Debug("Workers from environment", slog.Int("workers", n))
	}
	if v := l.getenv(EnvProgressMilestone); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", EnvProgressMilestone, err)
		}
		env.Pipeline.ProgressMilestone = n
	}
	return env, nil
}
