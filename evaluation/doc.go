// Package evaluation stores user feedback on finished runs and consent
// decisions on long-term memory.
//
// Feedback rows are keyed by the session (trace) they rate. DailySummary
// aggregates ratings over a trailing window and backs the satisfaction
// report endpoint. Consent is a per-user flag; ConsentGatedMemory wraps a
// memory recaller so recall and persistence are skipped entirely for users
// who have not granted it.
package evaluation
