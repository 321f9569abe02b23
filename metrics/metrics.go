// metrics.go

// Package metrics records lineage query counts and latencies.
package metrics

import (
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
)

type Recorder struct {
	Registry *prometheus.Registry

	queries  *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func NewRecorder() *Recorder {
	r := &Recorder{
		Registry: prometheus.NewRegistry(),
		queries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bloodline_queries_total",
			Help: "Number of lineage queries executed, by operation.",
		}, []string{"op"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "bloodline_query_duration_seconds",
			Help:    "Duration of lineage queries, by operation.",
			Buckets: prometheus.ExponentialBuckets(0.00001, 10, 6),
		}, []string{"op"}),
	}
	r.Registry.MustRegister(r.queries, r.duration)
	return r
}

// Observe counts one op and starts its timer. Call the returned func when
// the op is done.
func (r *Recorder) Observe(op string) func() {
	r.queries.WithLabelValues(op).Inc()
	start := time.Now()
	return func() {
		r.duration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	}
}

// WriteFile writes the recorded metrics in the text exposition format, for
// the node exporter textfile collector.
func (r *Recorder) WriteFile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.Registry); err != nil {
		return errors.Wrapf(err, "writing metrics to %s", path)
	}
	return nil
}
