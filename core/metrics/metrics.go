// Package metrics records export outcomes as Prometheus metrics on a private
// registry. A batch run can write them to a node_exporter textfile.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "pggeojson"

// Recorder holds the export metric families. A nil *Recorder is valid and
// records nothing.
type Recorder struct {
	registry *prometheus.Registry

	featuresWritten *prometheus.CounterVec
	rowsSkipped     *prometheus.CounterVec
	failures        *prometheus.CounterVec
	duration        *prometheus.HistogramVec
	lastSuccess     *prometheus.GaugeVec
}

// NewRecorder registers the export metrics on registry, or on a fresh
// registry when nil.
func NewRecorder(registry *prometheus.Registry) *Recorder {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	r := &Recorder{
		registry: registry,
		featuresWritten: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "features_written_total",
			Help:      "Features written to committed exports.",
		}, []string{"table"}),
		rowsSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_skipped_total",
			Help:      "Cursor rows skipped because their feature text was null.",
		}, []string{"table"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "export_failures_total",
			Help:      "Exports that ended with an error.",
		}, []string{"table"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "export_duration_seconds",
			Help:      "Wall time of one table export.",
			Buckets:   []float64{0.1, 0.5, 1, 5, 15, 60, 300, 900, 3600},
		}, []string{"table", "status"}),
		lastSuccess: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "export_last_success_timestamp_seconds",
			Help:      "Unix time of the last successful export.",
		}, []string{"table"}),
	}

	registry.MustRegister(r.featuresWritten, r.rowsSkipped, r.failures, r.duration, r.lastSuccess)
	return r
}

// Registry returns the registry the metrics live on.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// ObserveSuccess records a committed export.
func (r *Recorder) ObserveSuccess(table string, written, skipped int64, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.featuresWritten.WithLabelValues(table).Add(float64(written))
	r.rowsSkipped.WithLabelValues(table).Add(float64(skipped))
	r.duration.WithLabelValues(table, "success").Observe(elapsed.Seconds())
	r.lastSuccess.WithLabelValues(table).SetToCurrentTime()
}

// ObserveFailure records an export that returned an error.
func (r *Recorder) ObserveFailure(table string, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.failures.WithLabelValues(table).Inc()
	r.duration.WithLabelValues(table, "failure").Observe(elapsed.Seconds())
}

// WriteTextfile writes every metric in the text exposition format. The
// file is written to a temporary name and renamed, so a collector never
// reads a partial file.
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("error writing metrics to %s: %w", path, err)
	}
	return nil
}
