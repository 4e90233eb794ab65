// Package memory persists journal entries long-term and recalls the ones
// most similar to a new entry, so prompts can carry a user's prior
// context across runs.
//
// The Store interface covers persistence and similarity search; the
// in-memory and SQLite implementations both rank candidates by cosine
// similarity over embedding vectors held in process. Recaller composes a
// Store with a model.Embedder into the two operations the pipeline
// needs: Recall before fan-out and Remember after a completed run. When
// no embedder is configured, Recall degrades to the most recent entries
// instead of similarity search.
package memory
