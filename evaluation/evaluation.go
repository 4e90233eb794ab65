package evaluation

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// summaryWindow is the trailing window DailySummary aggregates over.
const summaryWindow = 24 * time.Hour

// ErrInvalidFeedback is returned by Submit when a feedback row fails
// validation.
var ErrInvalidFeedback = errors.New("invalid feedback")

// Feedback is one user rating of a finished run.
type Feedback struct {
	ID        int64     `json:"id"`
	SessionID string    `json:"session_id"`
	UserID    string    `json:"user_id"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment,omitempty"`
	At        time.Time `json:"at"`
}

// Summary aggregates a user's ratings over the trailing 24 hours.
type Summary struct {
	UserID  string  `json:"user_id"`
	Count   int     `json:"count"`
	Average float64 `json:"satisfaction_avg"`
}

// Store persists feedback and consent decisions.
type Store interface {
	// Submit validates and stores one feedback row, returning its id.
	Submit(ctx context.Context, fb Feedback) (int64, error)

	// DailySummary reports the count and average rating of the user's
	// feedback submitted within the trailing 24 hours.
	DailySummary(ctx context.Context, userID string) (Summary, error)

	// SetConsent records whether the user allows long-term memory.
	SetConsent(ctx context.Context, userID string, granted bool) error

	// Consent reports the user's recorded decision. Users who never
	// recorded one have not consented.
	Consent(ctx context.Context, userID string) (bool, error)

	// PurgeUser removes the user's feedback and consent rows and
	// returns the number of feedback rows removed.
	PurgeUser(ctx context.Context, userID string) (int, error)
}

func validate(fb Feedback) error {
	if fb.SessionID == "" {
		return fmt.Errorf("%w: session id must not be empty", ErrInvalidFeedback)
	}
	if fb.UserID == "" {
		return fmt.Errorf("%w: user id must not be empty", ErrInvalidFeedback)
	}
	if fb.Rating < 1 || fb.Rating > 5 {
		return fmt.Errorf("%w: rating must be between 1 and 5, got %d", ErrInvalidFeedback, fb.Rating)
	}
	return nil
}
