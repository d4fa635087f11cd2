package pipeline

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "dicom2rdf"

// Metrics are the run counters, kept on a private registry so a run can be
// dumped to a node exporter textfile without touching global state.
type Metrics struct {
	registry *prometheus.Registry

	FilesConverted prometheus.Counter
	FilesFailed    prometheus.Counter
	Triples        prometheus.Counter
	ElementErrors  prometheus.Counter
	MaxDepth       prometheus.Gauge
}

// NewMetrics registers the run counters on a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		FilesConverted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "files_converted_total",
			Help:      "Input files converted to triples.",
		}),
		FilesFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "files_failed_total",
			Help:      "Input files skipped because they could not be extracted or parsed.",
		}),
		Triples: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "triples_total",
			Help:      "Triples written across all workers.",
		}),
		ElementErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "element_errors_total",
			Help:      "Attributes skipped because their value could not be decoded.",
		}),
		MaxDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "content_sequence_max_depth",
			Help:      "Deepest content sequence nesting seen in the run.",
		}),
	}
	m.registry.MustRegister(m.FilesConverted, m.FilesFailed, m.Triples, m.ElementErrors, m.MaxDepth)
	return m
}

// Registry exposes the registry for callers that serve or gather it.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// WriteTextfile writes the metrics in text exposition format.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("write metrics %s: %w", path, err)
	}
	return nil
}
