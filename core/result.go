package core

import (
	"encoding/json"
	"time"
)

// Outcome classifies how an agent invocation resolved. The zero value marks
// an invocation that has not resolved yet.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeTimeout Outcome = "timeout"
	OutcomeError   Outcome = "error"
)

// Terminal reports whether the outcome represents a resolved invocation.
func (o Outcome) Terminal() bool {
	return o == OutcomeSuccess || o == OutcomeTimeout || o == OutcomeError
}

// AgentResult is the immutable record of a single agent invocation: the
// role that produced it, how it resolved, the structured payload on
// success or a human-readable reason otherwise, and the observed latency.
type AgentResult struct {
	Role    Role            `json:"role"`
	Outcome Outcome         `json:"outcome"`
	Payload json.RawMessage `json:"payload,omitempty"`
	Summary string          `json:"summary,omitempty"`
	Reason  string          `json:"reason,omitempty"`
	Latency time.Duration   `json:"latency"`
}

// NewSuccess builds a success result carrying the validated payload and the
// role's extracted summary line.
func NewSuccess(role Role, payload json.RawMessage, summary string, latency time.Duration) AgentResult {
	return AgentResult{Role: role, Outcome: OutcomeSuccess, Payload: payload, Summary: summary, Latency: latency}
}

// NewTimeout builds a timeout result for a role whose model call exceeded
// its deadline.
func NewTimeout(role Role, latency time.Duration) AgentResult {
	return AgentResult{Role: role, Outcome: OutcomeTimeout, Reason: "model call exceeded its deadline", Latency: latency}
}

// NewFailure builds an error result with a human-readable reason.
func NewFailure(role Role, reason string, latency time.Duration) AgentResult {
	return AgentResult{Role: role, Outcome: OutcomeError, Reason: reason, Latency: latency}
}

// Terminal reports whether the result has resolved.
func (r AgentResult) Terminal() bool { return r.Outcome.Terminal() }

// OK reports whether the invocation succeeded.
func (r AgentResult) OK() bool { return r.Outcome == OutcomeSuccess }

// Clone returns a copy whose payload bytes are independent of the original.
func (r AgentResult) Clone() AgentResult {
	cp := r
	if r.Payload != nil {
		cp.Payload = append(json.RawMessage(nil), r.Payload...)
	}
	return cp
}
