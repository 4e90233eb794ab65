// Package trace records the messages agents exchange during a run.
//
// Every fan-out result handed to the integration stage, and the plan the
// integration stage hands back to the session, is logged as a Message.
// The log is append-only and keyed by session, so a run can be replayed
// message by message when debugging why a plan came out the way it did.
//
// Two Recorder implementations are provided: an in-memory recorder for
// tests and embedded use, and a SQLite-backed recorder for deployments
// that need the trace to survive restarts.
package trace
