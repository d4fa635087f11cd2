// Package main provides the dicom2rdf binary entry point.
// dicom2rdf converts DICOM Structured Reports into gzip compressed Turtle
// files for bulk loading into QLever.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/c360studio/dicom2rdf/archive"
	"github.com/c360studio/dicom2rdf/config"
	"github.com/c360studio/dicom2rdf/emitter"
	"github.com/c360studio/dicom2rdf/pipeline"
	"github.com/c360studio/dicom2rdf/turtle"
)

const (
	Version   = "0.1.0"
	BuildTime = "dev"
	appName   = "dicom2rdf"

	// EnvLogLevel sets the default of --log-level.
	EnvLogLevel = "DICOM2RDF_LOG_LEVEL"
)

func main() {
	// Add panic recovery
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type convertOptions struct {
	configPath  string
	inputDir    string
	outputDir   string
	logLevel    string
	workers     int
	metricsFile string
}

func rootCmd() *cobra.Command {
	var opts convertOptions

	defaultLevel := os.Getenv(EnvLogLevel)
	if defaultLevel == "" {
		defaultLevel = "info"
	}

	cmd := &cobra.Command{
		Use:   appName,
		Short: "Convert DICOM SR documents to RDF Turtle",
		Long: `dicom2rdf converts DICOM Structured Report documents into raw RDF triples.

Every *.dcm file and single-document *.tar.zst archive below --input-dir is
converted. Each worker writes one raw-dicom-NNN.ttl.gz file and one
raw-dicom-NNN-errors.log file to --output-dir.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.configPath, "config", "c", "", "Config file path (YAML or TOML)")
	cmd.Flags().StringVar(&opts.inputDir, "input-dir", "", "Directory containing *.dcm or *.tar.zst input files")
	cmd.Flags().StringVar(&opts.outputDir, "output-dir", "", "Directory where the output is written to")
	cmd.Flags().StringVar(&opts.logLevel, "log-level", defaultLevel, "Log level (debug, info, warn, error)")
	cmd.Flags().IntVar(&opts.workers, "workers", 0, "Number of workers (0 = one per CPU)")
	cmd.Flags().StringVar(&opts.metricsFile, "metrics-file", "", "Write run metrics in Prometheus text format to this file")
	_ = cmd.MarkFlagRequired("config")
	_ = cmd.MarkFlagRequired("input-dir")
	_ = cmd.MarkFlagRequired("output-dir")

	cmd.AddCommand(prefixesCmd(), peekCmd())

	// Version command
	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s version %s (build: %s)\n", appName, Version, BuildTime)
		},
	})

	return cmd
}

// newLogger installs a text logger on stderr as the default logger.
func newLogger(level string) *slog.Logger {
	lvl := slog.LevelInfo
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
	slog.SetDefault(logger)
	return logger
}

// prefixTable declares the well-known vocabularies and every configured one.
func prefixTable(cfg *config.Config) *turtle.PrefixTable {
	table := turtle.NewPrefixTable()
	for _, p := range cfg.PrefixPairs() {
		table.Add(turtle.Prefix{Name: p.Prefix, Namespace: p.IRI})
	}
	return table
}

func runConvert(ctx context.Context, opts convertOptions) error {
	logger := newLogger(opts.logLevel)

	overrides := &config.Config{}
	overrides.Pipeline.Workers = opts.workers
	cfg, err := config.NewLoader(logger).Load(opts.configPath, overrides)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if err := os.MkdirAll(opts.outputDir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	paths, err := archive.Discover(opts.inputDir)
	if err != nil {
		return fmt.Errorf("discover input files: %w", err)
	}

	policy, err := emitter.NewPolicy(cfg)
	if err != nil {
		return err
	}

	if ctx == nil {
		ctx = context.Background()
	}
	signalCtx, signalCancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer signalCancel()

	metrics := pipeline.NewMetrics()
	summary, runErr := pipeline.Run(signalCtx, paths, pipeline.Options{
		OutputDir: opts.outputDir,
		Workers:   cfg.Pipeline.Workers,
		Milestone: cfg.Pipeline.ProgressMilestone,
		Policy:    policy,
		Prefixes:  prefixTable(cfg),
		Logger:    logger,
		Metrics:   metrics,
	})

	if opts.metricsFile != "" {
		if err := metrics.WriteTextfile(opts.metricsFile); err != nil {
			logger.Warn("Failed to write metrics", slog.String("error", err.Error()))
		}
	}
	if runErr != nil {
		return runErr
	}

	logger.Debug("Conversion summary",
		slog.String("run_id", summary.RunID),
		slog.Int("files", summary.Files),
		slog.Int("failed", summary.Failed),
		slog.Int("triples", summary.Triples),
		slog.Int("element_errors", summary.ElementErrors),
		slog.Int("max_depth", summary.MaxDepth))
	return nil
}
