// Package metrics exposes Prometheus instrumentation for simulation runs.
package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds all metrics for hyperscore.
type Registry struct {
	RunsTotal                *prometheus.CounterVec
	RunDuration              prometheus.Histogram
	PropagationRoundsTotal   prometheus.Counter
	UnresolvedFunctionsTotal *prometheus.CounterVec
	MetaScore                prometheus.Histogram
	NetworkNodes             prometheus.Histogram

	registry *prometheus.Registry
}

var (
	defaultRegistry *Registry
	once            sync.Once
)

// DefaultRegistry returns the process-wide metrics registry.
func DefaultRegistry() *Registry {
	once.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// NewRegistry creates a registry with every metric initialized.
func NewRegistry() *Registry {
	r := &Registry{registry: prometheus.NewRegistry()}
	f := promauto.With(r.registry)

	r.RunsTotal = f.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hyperscore_runs_total",
			Help: "Total number of simulation runs",
		},
		[]string{"status"},
	)
	r.RunDuration = f.NewHistogram(prometheus.HistogramOpts{
		Name:    "hyperscore_run_duration_seconds",
		Help:    "Wall time of a full simulation run",
		Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
	})
	r.PropagationRoundsTotal = f.NewCounter(prometheus.CounterOpts{
		Name: "hyperscore_propagation_rounds_total",
		Help: "Total number of propagation rounds executed",
	})
	r.UnresolvedFunctionsTotal = f.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hyperscore_unresolved_functions_total",
			Help: "Nodes whose function identifier was not found in the registry",
		},
		[]string{"function_path"},
	)
	r.MetaScore = f.NewHistogram(prometheus.HistogramOpts{
		Name:    "hyperscore_meta_score",
		Help:    "Distribution of meta-scores produced by simulation runs",
		Buckets: prometheus.LinearBuckets(0, 0.25, 12),
	})
	r.NetworkNodes = f.NewHistogram(prometheus.HistogramOpts{
		Name:    "hyperscore_network_nodes",
		Help:    "Number of nodes in simulated networks",
		Buckets: prometheus.ExponentialBuckets(1, 2, 10),
	})

	return r
}

// RecordRun records a finished run.
func (r *Registry) RecordRun(status string, duration time.Duration, rounds, nodes int, metaScore float64) {
	if r == nil {
		return
	}
	r.RunsTotal.WithLabelValues(status).Inc()
	r.RunDuration.Observe(duration.Seconds())
	r.PropagationRoundsTotal.Add(float64(rounds))
	r.NetworkNodes.Observe(float64(nodes))
	if status == StatusOK {
		r.MetaScore.Observe(metaScore)
	}
}

// RecordUnresolved counts a function identifier that did not resolve.
func (r *Registry) RecordUnresolved(functionPath string) {
	if r == nil {
		return
	}
	r.UnresolvedFunctionsTotal.WithLabelValues(functionPath).Inc()
}

// Run statuses.
const (
	StatusOK        = "ok"
	StatusCancelled = "cancelled"
	StatusError     = "error"
)

// Gatherer returns the underlying Prometheus gatherer.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.registry
}

// Handler returns an HTTP handler serving the registry in text exposition format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
