package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Recorder collects environment creation metrics in a private registry so a
// single CLI invocation can export them as a node_exporter textfile.
type Recorder struct {
	registry  *prometheus.Registry
	creations *prometheus.CounterVec
	duration  *prometheus.HistogramVec
	batches   *prometheus.CounterVec
}

// New creates a Recorder with its own registry.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		creations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "snk_env_creations_total",
				Help: "Environment creation attempts by outcome",
			},
			[]string{"workflow", "env", "status"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "snk_env_creation_duration_seconds",
				Help:    "Time spent materializing an environment",
				Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600, 1200},
			},
			[]string{"workflow", "env"},
		),
		batches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "snk_env_create_batches_total",
				Help: "Create invocations by overall outcome",
			},
			[]string{"workflow", "status"},
		),
	}
	r.registry.MustRegister(r.creations, r.duration, r.batches)
	return r
}

func status(ok bool) string {
	if ok {
		return "success"
	}
	return "failure"
}

// ObserveCreation records the outcome of one environment.
func (r *Recorder) ObserveCreation(workflow, env string, ok bool, d time.Duration) {
	if r == nil {
		return
	}
	r.creations.WithLabelValues(workflow, env, status(ok)).Inc()
	r.duration.WithLabelValues(workflow, env).Observe(d.Seconds())
}

// ObserveBatch records the overall outcome of a create call.
func (r *Recorder) ObserveBatch(workflow string, ok bool) {
	if r == nil {
		return
	}
	r.batches.WithLabelValues(workflow, status(ok)).Inc()
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// WriteTextfile writes all metrics in the text exposition format to path.
func (r *Recorder) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.registry)
}
