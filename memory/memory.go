package memory

import (
	"context"
	"math"
	"time"
)

// Entry is one persisted journal entry with its embedding.
type Entry struct {
	ID        int64     `json:"id"`
	UserID    string    `json:"user_id"`
	Text      string    `json:"text"`
	Summary   string    `json:"summary"`
	Embedding []float32 `json:"embedding,omitempty"`
	At        time.Time `json:"at"`
}

// Clone returns a copy safe for independent mutation.
func (e Entry) Clone() Entry {
	cp := e
	if e.Embedding != nil {
		cp.Embedding = make([]float32, len(e.Embedding))
		copy(cp.Embedding, e.Embedding)
	}

	return cp
}

// Store persists entries per user and retrieves them by similarity or
// recency. Implementations must be safe for concurrent use.
type Store interface {
	// Save persists the entry and returns its assigned ID.
	Save(ctx context.Context, e Entry) (int64, error)

	// Search returns up to limit entries for the user ranked by cosine
	// similarity to the query vector, best first. Entries without an
	// embedding are skipped.
	Search(ctx context.Context, userID string, query []float32, limit int) ([]Entry, error)

	// Recent returns up to limit entries for the user, newest first.
	Recent(ctx context.Context, userID string, limit int) ([]Entry, error)

	// PurgeUser removes every entry belonging to the user and reports
	// how many were deleted.
	PurgeUser(ctx context.Context, userID string) (int, error)
}

// cosine returns the cosine similarity of two vectors, or 0 when either
// vector is empty, zero, or of mismatched dimension.
func cosine(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
