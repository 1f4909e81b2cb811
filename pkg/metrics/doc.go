/*
Package metrics provides Prometheus metrics collection and exposition for the
borelog records engine.

The package defines and registers every counter, histogram, and gauge the
engine exports using the Prometheus client library: object-store operation
outcomes, columnar write/read latency, repository state-machine transitions,
CSV ingestion row counts, parse-worker invocation outcomes, and dispatcher
request latency. Metrics are exposed over HTTP for scraping by a Prometheus
server via Handler(), mounted by cmd/boreledger-api at /metrics.

# Usage

	import "github.com/boreledger/boreledger/pkg/metrics"

	timer := metrics.NewTimer()
	err := store.Put(ctx, key, body, contentType, false)
	timer.ObserveDurationVec(metrics.ObjectStoreOpDuration, backend, "put")
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	metrics.ObjectStoreOpsTotal.WithLabelValues(backend, "put", outcome).Inc()

Each package that wants to be observed imports metrics and records against
the package-level collectors declared in metrics.go; nothing needs a second
registry or a separate exporter.

# Timer

Timer is a small stopwatch helper built around time.Now/time.Since so
callers don't need to thread a start timestamp through every call site:

	timer := metrics.NewTimer()
	defer timer.ObserveDuration(metrics.ColumnarWriteDuration)

# Serving metrics

cmd/boreledger-api mounts metrics.Handler() (promhttp.Handler) at /metrics
alongside the /healthz and /dispatch routes. The CLI and worker binaries do
not serve metrics over HTTP; they record into the same collectors for
visibility in logs and tests, but a short-lived command-line invocation has
no server to scrape.
*/
package metrics
