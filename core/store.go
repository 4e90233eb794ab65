package core

import "context"

// SessionStore persists sessions across the orchestration lifecycle.
// Implementations must be safe for concurrent use and must hand out
// defensive copies (or fresh decodes) so callers cannot mutate stored
// state. Sessions are keyed by their opaque identifier; the core never
// deletes a session except through DeleteUserData.
type SessionStore interface {
	// Put stores a snapshot of the session, replacing any prior state.
	Put(ctx context.Context, s *Session) error
	// Get returns the session for the given identifier or
	// ErrSessionNotFound.
	Get(ctx context.Context, id string) (*Session, error)
	// SetPaused atomically updates the journey pause flag.
	SetPaused(ctx context.Context, id string, paused bool) error
	// AddCheckpoint atomically appends a journey checkpoint.
	AddCheckpoint(ctx context.Context, id string, cp Checkpoint) error
	// DeleteUserData removes every session belonging to the user and
	// reports how many were deleted.
	DeleteUserData(ctx context.Context, userID string) (int, error)
}
