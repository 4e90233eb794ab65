package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/chronosynth/chronosynth/core"
)

// InMemoryStore is a volatile SessionStore implementation keeping
// sessions in a process local map. It is safe for concurrent access and
// best suited for tests or ephemeral demo servers. Sessions are cloned on
// the way in and out, so callers can never mutate stored state.
type InMemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*core.Session
}

// NewInMemoryStore constructs an empty in-memory session store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{sessions: make(map[string]*core.Session)}
}

// Put implements core.SessionStore.
func (s *InMemoryStore) Put(ctx context.Context, sess *core.Session) error {
	if sess.ID == "" {
		return fmt.Errorf("session id must not be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.ID] = sess.Clone()

	return nil
}

// Get implements core.SessionStore.
func (s *InMemoryStore) Get(ctx context.Context, id string) (*core.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", core.ErrSessionNotFound, id)
	}

	return sess.Clone(), nil
}

// SetPaused implements core.SessionStore.
func (s *InMemoryStore) SetPaused(ctx context.Context, id string, paused bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return fmt.Errorf("%w: %s", core.ErrSessionNotFound, id)
	}
	sess.SetPaused(paused)

	return nil
}

// AddCheckpoint implements core.SessionStore.
func (s *InMemoryStore) AddCheckpoint(ctx context.Context, id string, cp core.Checkpoint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return fmt.Errorf("%w: %s", core.ErrSessionNotFound, id)
	}
	sess.AddCheckpoint(cp)

	return nil
}

// DeleteUserData implements core.SessionStore.
func (s *InMemoryStore) DeleteUserData(ctx context.Context, userID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	deleted := 0
	for id, sess := range s.sessions {
		if sess.UserID == userID {
			delete(s.sessions, id)
			deleted++
		}
	}

	return deleted, nil
}

// Len reports how many sessions the store currently holds.
func (s *InMemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.sessions)
}
