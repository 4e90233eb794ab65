// Package orchestrator drives a full ChronoSynth run: concurrent fan-out
// across the past, present, and future agents, followed by a single
// integration pass that synthesizes their results into a plan.
//
// The package provides two layers:
//
//   - Scheduler owns the fan-out stage. It launches one task per
//     perspective role at the same logical instant and joins them with a
//     wait-for-all barrier, so a slow or failing role never cancels its
//     siblings and the join always yields a complete bundle.
//   - Pipeline owns the whole run. It persists session state through the
//     pending, partial, and complete/failed transitions, records the
//     inter-agent trace, recalls prior context from long-term memory, and
//     enforces the per-run model call budget.
//
// Runs can be executed synchronously with Run or detached with Start,
// which registers the run for cancellation and returns as soon as the
// pending session is visible in the store.
package orchestrator
