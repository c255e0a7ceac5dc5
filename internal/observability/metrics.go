package observability

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type moduleMetrics struct {
	activeSessions       prometheus.Gauge
	sessionsCreatedTotal prometheus.Counter
	sessionsRemovedTotal *prometheus.CounterVec

	sweepDuration    prometheus.Histogram
	sweepErrorsTotal prometheus.Counter

	chatRequestsTotal   *prometheus.CounterVec
	chatRequestDuration prometheus.Histogram
	retrievalDuration   prometheus.Histogram
	completionDuration  prometheus.Histogram
}

var (
	metricsOnce sync.Once
	metricsInst *moduleMetrics
)

func getMetrics() *moduleMetrics {
	metricsOnce.Do(func() {
		m := &moduleMetrics{
			activeSessions: prometheus.NewGauge(
				prometheus.GaugeOpts{
					Name: "active_sessions",
					Help: "Current live session count.",
				},
			),
			sessionsCreatedTotal: prometheus.NewCounter(
				prometheus.CounterOpts{
					Name: "sessions_created_total",
					Help: "Total sessions created.",
				},
			),
			sessionsRemovedTotal: prometheus.NewCounterVec(
				prometheus.CounterOpts{
					Name: "sessions_removed_total",
					Help: "Total sessions removed by reason.",
				},
				[]string{"reason"},
			),
			sweepDuration: prometheus.NewHistogram(
				prometheus.HistogramOpts{
					Name:    "sweep_duration_seconds",
					Help:    "Janitor sweep duration in seconds.",
					Buckets: prometheus.DefBuckets,
				},
			),
			sweepErrorsTotal: prometheus.NewCounter(
				prometheus.CounterOpts{
					Name: "sweep_errors_total",
					Help: "Total per-entry failures during janitor sweeps.",
				},
			),
			chatRequestsTotal: prometheus.NewCounterVec(
				prometheus.CounterOpts{
					Name: "chat_requests_total",
					Help: "Total chat requests by status.",
				},
				[]string{"status"},
			),
			chatRequestDuration: prometheus.NewHistogram(
				prometheus.HistogramOpts{
					Name:    "chat_request_duration_seconds",
					Help:    "End-to-end chat request duration in seconds.",
					Buckets: prometheus.DefBuckets,
				},
			),
			retrievalDuration: prometheus.NewHistogram(
				prometheus.HistogramOpts{
					Name:    "retrieval_duration_seconds",
					Help:    "Document retrieval duration in seconds.",
					Buckets: prometheus.DefBuckets,
				},
			),
			completionDuration: prometheus.NewHistogram(
				prometheus.HistogramOpts{
					Name:    "completion_duration_seconds",
					Help:    "Model completion duration in seconds.",
					Buckets: prometheus.DefBuckets,
				},
			),
		}

		prometheus.MustRegister(
			m.activeSessions,
			m.sessionsCreatedTotal,
			m.sessionsRemovedTotal,
			m.sweepDuration,
			m.sweepErrorsTotal,
			m.chatRequestsTotal,
			m.chatRequestDuration,
			m.retrievalDuration,
			m.completionDuration,
		)

		metricsInst = m
	})
	return metricsInst
}

// EnsureRegistered registers all metrics with the default registry. Safe to
// call from multiple packages.
func EnsureRegistered() {
	getMetrics()
}

// MetricsHandler returns the HTTP handler for the metrics endpoint.
func MetricsHandler() http.Handler {
	getMetrics()
	return promhttp.Handler()
}

// SetActiveSessions sets the live session gauge.
func SetActiveSessions(count int) {
	getMetrics().activeSessions.Set(float64(count))
}

// RecordSessionCreated increments the created counter.
func RecordSessionCreated() {
	getMetrics().sessionsCreatedTotal.Inc()
}

// RecordSessionRemoved increments the removal counter for a reason.
func RecordSessionRemoved(reason string) {
	getMetrics().sessionsRemovedTotal.WithLabelValues(reason).Inc()
}

// RecordSweep records one janitor pass.
func RecordSweep(duration time.Duration) {
	getMetrics().sweepDuration.Observe(duration.Seconds())
}

// RecordSweepError counts an isolated per-entry sweep failure.
func RecordSweepError() {
	getMetrics().sweepErrorsTotal.Inc()
}

// RecordChatRequest records one chat request with its outcome.
func RecordChatRequest(duration time.Duration, status string) {
	m := getMetrics()
	m.chatRequestsTotal.WithLabelValues(status).Inc()
	m.chatRequestDuration.Observe(duration.Seconds())
}

// RecordRetrieval records a retrieval round-trip.
func RecordRetrieval(duration time.Duration) {
	getMetrics().retrievalDuration.Observe(duration.Seconds())
}

// RecordCompletion records a completion round-trip.
func RecordCompletion(duration time.Duration) {
	getMetrics().completionDuration.Observe(duration.Seconds())
}
