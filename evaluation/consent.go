package evaluation

import (
	"context"
	"fmt"
)

// Memory mirrors the recall surface the run pipeline consumes.
type Memory interface {
	Recall(ctx context.Context, userID, text string, limit int) ([]string, error)
	Remember(ctx context.Context, userID, text, summary string) error
}

// ConsentReader reports a user's recorded memory consent.
type ConsentReader interface {
	Consent(ctx context.Context, userID string) (bool, error)
}

// ConsentGatedMemory wraps a Memory so recall and persistence run only for
// users who granted consent. Users without a decision are treated as
// having declined.
type ConsentGatedMemory struct {
	inner    Memory
	consents ConsentReader
}

// NewConsentGatedMemory wraps inner with the consent check.
func NewConsentGatedMemory(inner Memory, consents ConsentReader) *ConsentGatedMemory {
	return &ConsentGatedMemory{inner: inner, consents: consents}
}

// Recall returns prior entries for consenting users and nothing otherwise.
func (m *ConsentGatedMemory) Recall(ctx context.Context, userID, text string, limit int) ([]string, error) {
	granted, err := m.consents.Consent(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("check consent: %w", err)
	}
	if !granted {
		return nil, nil
	}
	return m.inner.Recall(ctx, userID, text, limit)
}

// Remember persists the entry for consenting users and drops it otherwise.
func (m *ConsentGatedMemory) Remember(ctx context.Context, userID, text, summary string) error {
	granted, err := m.consents.Consent(ctx, userID)
	if err != nil {
		return fmt.Errorf("check consent: %w", err)
	}
	if !granted {
		return nil
	}
	return m.inner.Remember(ctx, userID, text, summary)
}
