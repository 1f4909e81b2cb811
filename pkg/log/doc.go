/*
Package log provides structured logging for the borelog records engine
using zerolog.

The package wraps a single global zerolog.Logger with JSON or
console-formatted output, configurable severity filtering, and a family
of With* helpers that attach the identifiers every log line in this
engine tends to need: component, record ID, project ID, table name.

# Usage

Initializing the logger, once per process, before any logging happens:

	log.Init(log.Config{
		Level:      log.InfoLevel,
		JSONOutput: true,
		Output:     os.Stdout,
	})

cmd/boreledger, cmd/boreledger-worker, and cmd/boreledger-api all call
Init from a cobra.OnInitialize hook wired to pkg/config's --log-level and
--log-json flags, so every binary is configured the same way.

Component loggers:

	workerLog := log.WithComponent("worker")
	workerLog.Info().Str("record_id", req.BorelogID).Msg("parse started")

Multiple context fields chain through zerolog's own builder, not through
another With* call — the With* helpers here each return a standalone
zerolog.Logger built from the global Logger, not a chainable method on
one another:

	taskLog := log.WithComponent("entityrepo").
		With().Str("project_id", projectID).Str("record_id", recordID).Logger()
	taskLog.Info().Msg("record approved")

# Log levels

Debug is for development and troubleshooting; Info is the default
production level; Warn flags situations that may need attention without
being failures; Error marks failed operations. Fatal logs and calls
os.Exit(1) — reserved for startup failures the process cannot recover
from (a misconfigured object store, for example), never for request-time
errors, which flow back through apperr and the dispatcher's response
envelope instead.

# Design

A single global Logger keeps every package from having to thread a
logger through its constructors; With* helpers build child loggers with
context fields baked in so call sites don't repeat
.Str("record_id", ...) at every log line. Always use .Err(err) for error
values rather than formatting them into the message string, so log
aggregation can query on the error field directly.
*/
package log
