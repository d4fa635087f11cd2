// Package pipeline converts a list of input files on a fixed pool of
// workers. Each worker owns one Turtle output and one error log for its whole
// lifetime; the only state shared between workers is the blank node counter
// and the progress channel.
package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/c360studio/dicom2rdf/archive"
	"github.com/c360studio/dicom2rdf/document"
	"github.com/c360studio/dicom2rdf/emitter"
	"github.com/c360studio/dicom2rdf/output"
	"github.com/c360studio/dicom2rdf/turtle"
	"github.com/c360studio/dicom2rdf/vocabulary/dicom2rdf"
)

// WorkerNameFormat names worker outputs: raw-dicom-000.ttl.gz and
// raw-dicom-000-errors.log.
const WorkerNameFormat = "raw-dicom-%03d"

var (
	rdfTypeIRI      = turtle.Prefixed(dicom2rdf.PrefixRDF, dicom2rdf.RDFType)
	documentRootIRI = turtle.Prefixed(dicom2rdf.Prefix, dicom2rdf.DocumentRoot)
)

// Options configures a Run.
type Options struct {
	// OutputDir must exist.
	OutputDir string
	// Workers is the pool size; 0 means one per CPU.
	Workers int
	// Milestone is the progress log interval; 0 means DefaultMilestone.
	Milestone int
	Policy    *emitter.Policy
	Prefixes  *turtle.PrefixTable
	// Opener parses documents; nil means document.DICOMOpener.
	Opener  document.Opener
	Blanks  *turtle.BlankNodes
	Logger  *slog.Logger
	Metrics *Metrics
}

// Summary describes a finished run.
type Summary struct {
	RunID          string
	Workers        int
	Files          int
	Failed         int
	Triples        int
	ElementErrors  int
	MaxDepth       int
	Elapsed        time.Duration
	FilesPerSecond float64
}

func (o *Options) applyDefaults() {
	if o.Workers <= 0 {
		o.Workers = runtime.NumCPU()
	}
	if o.Milestone <= 0 {
		o.Milestone = DefaultMilestone
	}
	if o.Policy == nil {
		o.Policy = &emitter.Policy{}
	}
	if o.Prefixes == nil {
		o.Prefixes = turtle.NewPrefixTable()
	}
	if o.Opener == nil {
		o.Opener = document.DICOMOpener{}
	}
	if o.Blanks == nil {
		o.Blanks = turtle.NewBlankNodes()
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	if o.Metrics == nil {
		o.Metrics = NewMetrics()
	}
}

// Run converts paths. Failures of single files are logged and counted; the
// returned error reports setup failures, cancellation and errors finalizing
// the outputs. Every worker output is finalized before Run returns.
func Run(ctx context.Context, paths []string, opts Options) (Summary, error) {
	opts.applyDefaults()
	runID := uuid.NewString()
	logger := opts.Logger.With(slog.String("run_id", runID))

	workers, err := openWorkers(opts, logger)
	if err != nil {
		return Summary{RunID: runID}, err
	}
	logger.Info("Starting conversion of DICOM SR to raw RDF Turtle",
		slog.Int("files", len(paths)),
		slog.Int("workers", len(workers)),
		slog.String("output_dir", opts.OutputDir))

	progress := NewProgress(opts.Milestone, logger)
	threshold := BatchThreshold(opts.Milestone, len(workers))
	queue := make(chan string)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(queue)
		for _, p := range paths {
			if err := gctx.Err(); err != nil {
				return err
			}
			select {
			case queue <- p:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})
	for _, w := range workers {
		batcher := progress.Batcher(threshold)
		g.Go(func() error {
			defer batcher.Flush()
			for p := range queue {
				w.convert(gctx, p)
				batcher.Tick()
			}
			return nil
		})
	}
	runErr := g.Wait()

	summary := Summary{RunID: runID, Workers: len(workers)}
	var closeErrs []error
	for _, w := range workers {
		summary.Failed += w.failed
		summary.Triples += w.triples
		summary.ElementErrors += w.elementErrors
		summary.MaxDepth = max(summary.MaxDepth, w.out.MaxDepth())
		closeErrs = append(closeErrs, w.close())
	}
	ps := progress.Close()
	summary.Files = ps.Total
	summary.Elapsed = ps.Elapsed
	summary.FilesPerSecond = ps.FilesPerSecond
	opts.Metrics.MaxDepth.Set(float64(summary.MaxDepth))

	if runErr != nil {
		runErr = fmt.Errorf("conversion interrupted: %w", runErr)
	}
	return summary, errors.Join(runErr, errors.Join(closeErrs...))
}

// openWorkers creates every worker's outputs up front. On failure the
// outputs created so far are closed again.
func openWorkers(opts Options, logger *slog.Logger) ([]*worker, error) {
	workers := make([]*worker, 0, opts.Workers)
	for i := range opts.Workers {
		w, err := newWorker(fmt.Sprintf(WorkerNameFormat, i), opts, logger)
		if err != nil {
			for _, opened := range workers {
				opened.close()
			}
			return nil, fmt.Errorf("create worker outputs: %w", err)
		}
		workers = append(workers, w)
	}
	return workers, nil
}

type worker struct {
	name    string
	out     *output.TripleWriter
	errs    *output.File
	policy  *emitter.Policy
	opener  document.Opener
	blanks  *turtle.BlankNodes
	logger  *slog.Logger
	metrics *Metrics
	buf     bytes.Buffer

	failed        int
	triples       int
	elementErrors int
}

func newWorker(name string, opts Options, logger *slog.Logger) (*worker, error) {
	ttl, err := output.NewTurtleGzip(opts.OutputDir, name+".ttl.gz", opts.Prefixes)
	if err != nil {
		return nil, err
	}
	errs, err := output.Create(opts.OutputDir, name+"-errors.log")
	if err != nil {
		ttl.Close()
		return nil, err
	}
	return &worker{
		name:    name,
		out:     output.NewTripleWriter(ttl),
		errs:    errs,
		policy:  opts.Policy,
		opener:  opts.Opener,
		blanks:  opts.Blanks,
		logger:  logger.With(slog.String("worker", name)),
		metrics: opts.Metrics,
	}, nil
}

func (w *worker) close() error {
	return errors.Join(w.out.Close(), w.errs.Close())
}

// convert handles one input file; failures are reported, never returned.
func (w *worker) convert(ctx context.Context, path string) {
	if err := w.convertFile(ctx, path); err != nil {
		w.failed++
		w.metrics.FilesFailed.Inc()
		w.logger.Warn("Failed to convert file",
			slog.String("path", path),
			slog.String("error", err.Error()))
		fmt.Fprintf(w.errs, "%s: %v\n", path, err)
		return
	}
	w.metrics.FilesConverted.Inc()
}

func (w *worker) convertFile(ctx context.Context, path string) error {
	docPath := path
	if archive.IsArchive(path) {
		ex, err := archive.Extract(path)
		if err != nil {
			return err
		}
		defer ex.Close()
		docPath = ex.Path
	}

	node, err := w.opener.Open(ctx, docPath)
	if err != nil {
		return err
	}

	fileName := filepath.Base(docPath)
	subject := turtle.Prefixed(dicom2rdf.Prefix, fileName)

	w.buf.Reset()
	em := emitter.New(&w.buf, w.errs, w.policy, w.blanks, fileName)
	if err := em.Write(turtle.Triple{Subject: subject, Predicate: rdfTypeIRI, Object: documentRootIRI}); err != nil {
		return err
	}
	_, depth := em.Emit(subject, node, 0)
	w.out.ObserveDepth(depth)

	stats := em.Stats()
	w.triples += stats.Triples
	w.elementErrors += stats.ElementErrors
	w.metrics.Triples.Add(float64(stats.Triples))
	w.metrics.ElementErrors.Add(float64(stats.ElementErrors))

	if w.buf.Len() == 0 {
		return nil
	}
	if _, err := w.out.Write(w.buf.Bytes()); err != nil {
		return fmt.Errorf("write triples: %w", err)
	}
	return nil
}
