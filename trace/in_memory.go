package trace

import (
	"context"
	"sync"
)

// InMemoryRecorder keeps the message log in process memory.
//
// It is safe for concurrent use. Messages are gone when the process
// exits; use the SQLite recorder when the trace must persist.
type InMemoryRecorder struct {
	mu       sync.RWMutex
	messages map[string][]Message // keyed by session ID
}

// NewInMemoryRecorder creates an empty in-memory recorder.
func NewInMemoryRecorder() *InMemoryRecorder {
	return &InMemoryRecorder{
		messages: make(map[string][]Message),
	}
}

// Record implements Recorder.
func (r *InMemoryRecorder) Record(ctx context.Context, msg Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.messages[msg.SessionID] = append(r.messages[msg.SessionID], msg)

	return nil
}

// List implements Recorder. The returned slice is a copy; callers may
// hold on to it without racing later records.
func (r *InMemoryRecorder) List(ctx context.Context, sessionID string) ([]Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stored := r.messages[sessionID]
	if len(stored) == 0 {
		return nil, nil
	}

	out := make([]Message, len(stored))
	copy(out, stored)

	return out, nil
}

// Len reports the number of messages recorded for a session.
func (r *InMemoryRecorder) Len(sessionID string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.messages[sessionID])
}
