package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels for RunsTotal.
const (
	OutcomeOK            = "ok"
	OutcomeNotFound      = "not_found"
	OutcomeLayoutInvalid = "layout_invalid"
	OutcomeBadSample     = "bad_sample"
	OutcomeError         = "error"
)

// Recorder holds the run collectors.
type Recorder struct {
	runs     *prometheus.CounterVec
	edges    prometheus.Histogram
	nodes    prometheus.Histogram
	duration *prometheus.HistogramVec
	imports  *prometheus.CounterVec
}

// New registers the collectors on reg. A nil reg leaves them unregistered.
func New(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		runs: f.NewCounterVec(prometheus.CounterOpts{
			Name: "coexnet_runs_total",
			Help: "Detect-and-build runs by outcome",
		}, []string{"outcome"}),
		edges: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "coexnet_run_edges",
			Help:    "Edges produced per successful run",
			Buckets: prometheus.ExponentialBuckets(1, 4, 10),
		}),
		nodes: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "coexnet_run_nodes",
			Help:    "Requested entities per successful run",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		}),
		duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "coexnet_run_duration_seconds",
			Help:    "Run duration in seconds by stage",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 10),
		}, []string{"stage"}),
		imports: f.NewCounterVec(prometheus.CounterOpts{
			Name: "coexnet_table_imports_total",
			Help: "Imported tables by format",
		}, []string{"format"}),
	}
}

// Run records the outcome of one run.
func (r *Recorder) Run(outcome string) {
	if r == nil {
		return
	}
	r.runs.WithLabelValues(outcome).Inc()
}

// Graph records the size of a produced graph.
func (r *Recorder) Graph(nodes, edges int) {
	if r == nil {
		return
	}
	r.nodes.Observe(float64(nodes))
	r.edges.Observe(float64(edges))
}

// Stage records how long a run stage ("load", "detect", "build", "write") took.
func (r *Recorder) Stage(stage string, d time.Duration) {
	if r == nil {
		return
	}
	r.duration.WithLabelValues(stage).Observe(d.Seconds())
}

// Import counts an imported table.
func (r *Recorder) Import(format string) {
	if r == nil {
		return
	}
	r.imports.WithLabelValues(format).Inc()
}
