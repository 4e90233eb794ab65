package trace

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Intent classifies why a message was sent.
const (
	// IntentInform carries a result from one agent to another.
	IntentInform = "inform"
	// IntentReport carries the final synthesis back to the session.
	IntentReport = "report"
)

// Message is one entry in the inter-agent log.
type Message struct {
	ID        string    `json:"id"`
	SessionID string    `json:"session_id"`
	Sender    string    `json:"sender"`
	Receiver  string    `json:"receiver"`
	Intent    string    `json:"intent"`
	Payload   string    `json:"payload"`
	At        time.Time `json:"at"`
}

// NewMessage stamps a message with a fresh ID and the current time.
func NewMessage(sessionID, sender, receiver, intent, payload string) Message {
	return Message{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		Sender:    sender,
		Receiver:  receiver,
		Intent:    intent,
		Payload:   payload,
		At:        time.Now().UTC(),
	}
}

// Recorder persists inter-agent messages.
type Recorder interface {
	// Record appends a message to the log.
	Record(ctx context.Context, msg Message) error

	// List returns a session's messages in the order they were recorded.
	List(ctx context.Context, sessionID string) ([]Message, error)
}

// NoOpRecorder discards every message. It is the default when no
// recorder is configured.
type NoOpRecorder struct{}

// Record implements Recorder.
func (NoOpRecorder) Record(ctx context.Context, msg Message) error { return nil }

// List implements Recorder.
func (NoOpRecorder) List(ctx context.Context, sessionID string) ([]Message, error) {
	return nil, nil
}

// Truncate shortens s to at most max bytes, marking the cut. Payloads in
// the trace are meant for inspection, not round-tripping, so large model
// outputs are clipped before they are recorded.
func Truncate(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}

	return s[:max] + "..."
}
