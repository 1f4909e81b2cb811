// Package metrics exposes the engine's Prometheus instrumentation:
// object-store operation counters, columnar write/read latency, and
// parse-worker invocation counts, all served from cmd/boreledger-api via
// promhttp.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Object store metrics
	ObjectStoreOpsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "boreledger_objectstore_operations_total",
			Help: "Total object store operations by backend, op, and outcome",
		},
		[]string{"backend", "op", "outcome"},
	)

	ObjectStoreOpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "boreledger_objectstore_operation_duration_seconds",
			Help:    "Object store operation duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"backend", "op"},
	)

	// Columnar engine metrics
	ColumnarWriteDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "boreledger_columnar_write_duration_seconds",
			Help:    "Time taken to write a columnar file in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	ColumnarReadDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "boreledger_columnar_read_duration_seconds",
			Help:    "Time taken to read a columnar file in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// Repository state-machine metrics
	RepositoryOpsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "boreledger_repository_operations_total",
			Help: "Total repository operations by op and outcome",
		},
		[]string{"op", "outcome"},
	)

	// CSV ingestion metrics
	IngestRowsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "boreledger_ingest_rows_total",
			Help: "Total CSV rows processed by validity",
		},
		[]string{"table", "valid"},
	)

	// Parse worker metrics
	ParseWorkerInvocationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "boreledger_parse_worker_invocations_total",
			Help: "Total parse worker invocations by outcome",
		},
		[]string{"outcome"},
	)

	ParseWorkerDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "boreledger_parse_worker_duration_seconds",
			Help:    "Parse worker processing duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// Dispatcher / API metrics
	APIRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "boreledger_api_requests_total",
			Help: "Total API requests by action and status",
		},
		[]string{"action", "status"},
	)

	APIRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "boreledger_api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"action"},
	)
)

func init() {
	prometheus.MustRegister(
		ObjectStoreOpsTotal,
		ObjectStoreOpDuration,
		ColumnarWriteDuration,
		ColumnarReadDuration,
		RepositoryOpsTotal,
		IngestRowsTotal,
		ParseWorkerInvocationsTotal,
		ParseWorkerDuration,
		APIRequestsTotal,
		APIRequestDuration,
	)
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Timer is a helper for timing operations.
type Timer struct {
	start time.Time
}

// NewTimer creates a new timer.
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// ObserveDuration records the duration to a histogram.
func (t *Timer) ObserveDuration(histogram prometheus.Histogram) {
	histogram.Observe(time.Since(t.start).Seconds())
}

// ObserveDurationVec records the duration to a histogram vec with labels.
func (t *Timer) ObserveDurationVec(histogram prometheus.ObserverVec, labels ...string) {
	histogram.WithLabelValues(labels...).Observe(time.Since(t.start).Seconds())
}

// Duration returns the elapsed time since the timer started.
func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}
