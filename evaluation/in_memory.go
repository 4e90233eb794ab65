package evaluation

import (
	"context"
	"sync"
	"time"
)

// InMemoryStore keeps feedback and consent in process memory. Intended for
// tests and single-process experiments.
type InMemoryStore struct {
	mu       sync.RWMutex
	feedback map[string][]Feedback
	consents map[string]bool
	nextID   int64
}

// NewInMemoryStore creates an empty in-memory evaluation store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		feedback: make(map[string][]Feedback),
		consents: make(map[string]bool),
	}
}

// Submit validates and stores one feedback row, returning its id.
func (s *InMemoryStore) Submit(_ context.Context, fb Feedback) (int64, error) {
	if err := validate(fb); err != nil {
		return 0, err
	}
	if fb.At.IsZero() {
		fb.At = time.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	fb.ID = s.nextID
	s.feedback[fb.UserID] = append(s.feedback[fb.UserID], fb)
	return fb.ID, nil
}

// DailySummary reports the count and average rating of the user's feedback
// submitted within the trailing 24 hours.
func (s *InMemoryStore) DailySummary(_ context.Context, userID string) (Summary, error) {
	cutoff := time.Now().Add(-summaryWindow)

	s.mu.RLock()
	defer s.mu.RUnlock()

	sum := Summary{UserID: userID}
	total := 0
	for _, fb := range s.feedback[userID] {
		if fb.At.Before(cutoff) {
			continue
		}
		sum.Count++
		total += fb.Rating
	}
	if sum.Count > 0 {
		sum.Average = float64(total) / float64(sum.Count)
	}
	return sum, nil
}

// SetConsent records whether the user allows long-term memory.
func (s *InMemoryStore) SetConsent(_ context.Context, userID string, granted bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.consents[userID] = granted
	return nil
}

// Consent reports the user's recorded decision, defaulting to false.
func (s *InMemoryStore) Consent(_ context.Context, userID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.consents[userID], nil
}

// PurgeUser removes the user's feedback and consent rows.
func (s *InMemoryStore) PurgeUser(_ context.Context, userID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := len(s.feedback[userID])
	delete(s.feedback, userID)
	delete(s.consents, userID)
	return removed, nil
}
