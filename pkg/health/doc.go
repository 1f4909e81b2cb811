/*
Package health provides a small, pluggable health-check abstraction used by
cmd/boreledger-api's /healthz endpoint.

# Checker

Every check implements Checker:

	type Checker interface {
		Check(ctx context.Context) Result
		Type() CheckType
	}

Check returns a Result describing whether the dependency is reachable, a
human-readable message, and how long the probe took. Callers don't need to
know which concrete checker they're holding; they call Check and interpret
the Result the same way regardless of what's underneath.

# ObjectStoreChecker

The one checker this repo wires is ObjectStoreChecker, which wraps anything
satisfying Pinger (the object store's Ping(ctx) error method) and reports
it unhealthy whenever Ping returns an error:

	checker := health.NewObjectStoreChecker(store)
	result := checker.Check(ctx)
	if !result.Healthy {
		// surface 503 from /healthz
	}

# Monitor

Status and Config exist for checks that need hysteresis across repeated
probes: several consecutive failures before flipping unhealthy, and a
start-up grace period before the first probe counts. Monitor drives this:
it polls a Checker on config.Interval in a background goroutine and keeps
the debounced Status behind a mutex.

	monitor := health.NewMonitor(checker, health.DefaultConfig())
	go monitor.Start(ctx)
	...
	snapshot := monitor.Snapshot()

cmd/boreledger-api wires one Monitor per process and has /healthz read
Snapshot() instead of calling Check synchronously on every request, so a
slow or flapping dependency check never adds request latency.
*/
package health
