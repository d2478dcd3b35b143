package driver

import (
	"github.com/prometheus/client_golang/prometheus"
	"gitlab.com/tozd/go/errors"

	"github.com/jsvensson/tokentest/internal/generate"
	"github.com/jsvensson/tokentest/internal/tokens"
)

// Metrics counts generation outcomes in a private registry, exported as a
// node_exporter textfile.
type Metrics struct {
	Registry *prometheus.Registry

	Documents     prometheus.Counter
	DegradedRoots prometheus.Counter
	Artifacts     *prometheus.CounterVec
	Failures      *prometheus.CounterVec
}

// NewMetrics registers a fresh set of counters.
func NewMetrics() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		Documents: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "tokentest",
			Name:      "documents_total",
			Help:      "Token documents processed.",
		}),
		DegradedRoots: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "tokentest",
			Name:      "degraded_roots_total",
			Help:      "Documents whose root key was inferred by fallback.",
		}),
		Artifacts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tokentest",
			Name:      "artifacts_total",
			Help:      "Generated test files by kind and outcome.",
		}, []string{"kind", "outcome"}),
		Failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tokentest",
			Name:      "failures_total",
			Help:      "Generation failures by reason.",
		}, []string{"reason"}),
	}
	m.Registry.MustRegister(m.Documents, m.DegradedRoots, m.Artifacts, m.Failures)
	return m
}

// WriteTextfile writes all counters to path in the Prometheus text format.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.Registry); err != nil {
		return errors.Errorf("writing metrics: %w", err)
	}
	return nil
}

func (m *Metrics) artifact(root bool, outcome Outcome) {
	kind := "frame"
	if root {
		kind = "root"
	}
	m.Artifacts.WithLabelValues(kind, string(outcome)).Inc()
}

func (m *Metrics) failure(err error) {
	m.Failures.WithLabelValues(Reason(err)).Inc()
}

// Reason classifies a failure for metrics and reports.
func Reason(err error) string {
	switch {
	case errors.Is(err, tokens.ErrMissingNodeData):
		return "missing_node_data"
	case errors.Is(err, tokens.ErrUnknownNodeKey):
		return "unknown_key"
	case errors.Is(err, tokens.ErrInvalidInputKind):
		return "invalid_input"
	case errors.Is(err, generate.ErrPlaceholderCollision):
		return "placeholder_collision"
	case errors.Is(err, ErrArtifactCollision):
		return "artifact_collision"
	}
	return "other"
}
