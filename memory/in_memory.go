package memory

import (
	"context"
	"sort"
	"sync"
)

// InMemoryStore keeps entries in a process local map keyed by user. It is
// safe for concurrent use and suited for tests and embedded setups.
type InMemoryStore struct {
	mu      sync.RWMutex
	entries map[string][]Entry
	nextID  int64
}

// NewInMemoryStore constructs an empty in-memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{entries: make(map[string][]Entry)}
}

// Save implements Store.
func (s *InMemoryStore) Save(ctx context.Context, e Entry) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	stored := e.Clone()
	stored.ID = s.nextID
	s.entries[e.UserID] = append(s.entries[e.UserID], stored)

	return stored.ID, nil
}

// Search implements Store.
func (s *InMemoryStore) Search(ctx context.Context, userID string, query []float32, limit int) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	type scored struct {
		entry Entry
		score float64
	}

	var candidates []scored
	for _, e := range s.entries[userID] {
		if len(e.Embedding) == 0 {
			continue
		}
		candidates = append(candidates, scored{entry: e, score: cosine(query, e.Embedding)})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	out := make([]Entry, 0, limit)
	for _, c := range candidates {
		if len(out) >= limit {
			break
		}
		out = append(out, c.entry.Clone())
	}

	return out, nil
}

// Recent implements Store.
func (s *InMemoryStore) Recent(ctx context.Context, userID string, limit int) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored := s.entries[userID]
	out := make([]Entry, 0, limit)
	for i := len(stored) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, stored[i].Clone())
	}

	return out, nil
}

// PurgeUser implements Store.
func (s *InMemoryStore) PurgeUser(ctx context.Context, userID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := len(s.entries[userID])
	delete(s.entries, userID)

	return count, nil
}
