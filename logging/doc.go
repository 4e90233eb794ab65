// Package logging provides a minimal logging interface and adapters for
// ChronoSynth.
//
// The Logger interface defines the standard logging methods (Debug, Info,
// Warn, Error) that the pipeline, agents and stores use for observability.
// This package includes:
//
//   - Logger interface for dependency injection
//   - SlogAdapter wrapping Go's structured logging
//   - NoOpLogger for silent operation (testing, minimal setups)
//   - ChronoLogger with contextual helpers for sessions and model calls
//
// Usage:
//
//	logger := logging.NewChronoLogger(logging.LogLevelInfo, "json", false)
//	pipe := orchestrator.New(invoker, store, orchestrator.WithLogger(logger))
//
// The design intentionally keeps the interface minimal to avoid vendor
// lock-in while supporting structured logging where available.
package logging
