// Package metrics exposes Prometheus instruments for the transcription pipeline.
// A nil *Metrics is valid and records nothing.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "whisper_web"

// Job outcomes used as the "outcome" label.
const (
	OutcomeSucceeded        = "succeeded"
	OutcomeStagingFailed    = "staging_failed"
	OutcomeModelUnavailable = "model_unavailable"
	OutcomeTranscription    = "transcription_failed"
	OutcomeDiscarded        = "discarded"
)

// Metrics holds the pipeline collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	jobs          *prometheus.CounterVec
	jobDuration   prometheus.Histogram
	modelLoads    *prometheus.CounterVec
	modelLoadTime prometheus.Histogram
	stagedBytes   prometheus.Counter
	pending       prometheus.Gauge
}

// New creates and registers all collectors, plus the Go runtime and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		jobs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "jobs_total",
			Help:      "Transcription jobs by terminal outcome.",
		}, []string{"outcome"}),
		jobDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "job_duration_seconds",
			Help:      "Time from confirmation to cleanup of a transcription job.",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300, 600},
		}),
		modelLoads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "model_loads_total",
			Help:      "Model load attempts by backend and result.",
		}, []string{"backend", "result"}),
		modelLoadTime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "model_load_seconds",
			Help:      "Time spent loading the model.",
			Buckets:   prometheus.ExponentialBuckets(0.1, 2, 12),
		}),
		stagedBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "staged_bytes_total",
			Help:      "Bytes written to staged upload files.",
		}),
		pending: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pending_uploads",
			Help:      "Staged uploads waiting for confirmation.",
		}),
	}

	m.registry.MustRegister(
		m.jobs,
		m.jobDuration,
		m.modelLoads,
		m.modelLoadTime,
		m.stagedBytes,
		m.pending,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveJob records a finished job. Duration is skipped for jobs that never ran.
func (m *Metrics) ObserveJob(outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	m.jobs.WithLabelValues(outcome).Inc()
	if duration > 0 {
		m.jobDuration.Observe(duration.Seconds())
	}
}

// ObserveModelLoad implements model.LoadRecorder.
func (m *Metrics) ObserveModelLoad(backend string, duration time.Duration, err error) {
	if m == nil {
		return
	}
	result := "success"
	if err != nil {
		result = "failure"
	}
	m.modelLoads.WithLabelValues(backend, result).Inc()
	m.modelLoadTime.Observe(duration.Seconds())
}

// AddStagedBytes counts bytes written by the stager.
func (m *Metrics) AddStagedBytes(n int64) {
	if m == nil {
		return
	}
	m.stagedBytes.Add(float64(n))
}

// SetPendingUploads reports how many uploads wait for confirmation.
func (m *Metrics) SetPendingUploads(n int) {
	if m == nil {
		return
	}
	m.pending.Set(float64(n))
}
