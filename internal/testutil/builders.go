package testutil

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/chronosynth/chronosynth/core"
)

// SuccessResult returns a successful terminal result for the role with a
// payload that satisfies the role's schema validation.
func SuccessResult(role core.Role) core.AgentResult {
	summary := fmt.Sprintf("Canned %s summary.", role)
	payload := map[string]any{
		summaryField(role): summary,
		"confidence":       0.8,
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		panic(err)
	}

	return core.NewSuccess(role, raw, summary, 5*time.Millisecond)
}

// TimeoutResult returns a timed-out terminal result for the role.
func TimeoutResult(role core.Role) core.AgentResult {
	return core.NewTimeout(role, 30*time.Millisecond)
}

// FailureResult returns a failed terminal result for the role.
func FailureResult(role core.Role, reason string) core.AgentResult {
	return core.NewFailure(role, reason, 5*time.Millisecond)
}

// SuccessBundle returns a bundle whose three fan-out slots all succeeded.
func SuccessBundle() core.Bundle {
	var b core.Bundle
	for _, role := range core.FanOutRoles() {
		if err := b.Set(SuccessResult(role)); err != nil {
			panic(err)
		}
	}

	return b
}

// Plan returns a small fully populated plan.
func Plan() *core.Plan {
	return &core.Plan{
		PastSummary:    "Canned past summary.",
		PresentSummary: "Canned present summary.",
		FutureSummary:  "Canned future summary.",
		Integrated:     "Canned integrated summary.",
		Steps: []core.PlanStep{
			{Step: "Take one slow walk", Owner: "self", Timeframe: "this week"},
		},
		Themes:      []string{"recovery"},
		Metrics:     []string{"walks taken"},
		NextCheckIn: "2025-07-01T09:00:00Z",
		Confidence:  0.8,
	}
}

// SessionBuilder constructs sessions in a given lifecycle state through
// their real transitions. Example:
//
//	sess := testutil.NewSessionBuilder("s-1").User("u-1").Completed(nil).Build()
type SessionBuilder struct {
	id      string
	userID  string
	input   string
	paused  bool
	journey []core.Checkpoint
	build   func(s *core.Session)
}

// NewSessionBuilder creates a builder for a pending session with the
// given id. Use chainable methods then call Build.
func NewSessionBuilder(id string) *SessionBuilder {
	return &SessionBuilder{id: id, input: "A canned journal entry."}
}

// User sets the owning user (chainable).
func (b *SessionBuilder) User(userID string) *SessionBuilder {
	b.userID = userID
	return b
}

// Input sets the entry text (chainable).
func (b *SessionBuilder) Input(text string) *SessionBuilder {
	b.input = text
	return b
}

// Paused marks the journey pause flag (chainable).
func (b *SessionBuilder) Paused() *SessionBuilder {
	b.paused = true
	return b
}

// Checkpoint appends a journey checkpoint (chainable).
func (b *SessionBuilder) Checkpoint(stage, note string) *SessionBuilder {
	b.journey = append(b.journey, core.Checkpoint{Stage: stage, Note: note, At: time.Now().UTC()})
	return b
}

// Partial drives the session to partial with a fully successful bundle
// (chainable).
func (b *SessionBuilder) Partial() *SessionBuilder {
	b.build = func(s *core.Session) {
		mustPartial(s)
	}
	return b
}

// Completed drives the session to complete with the given plan; a nil
// plan uses the canned one (chainable).
func (b *SessionBuilder) Completed(plan *core.Plan) *SessionBuilder {
	if plan == nil {
		plan = Plan()
	}
	b.build = func(s *core.Session) {
		mustPartial(s)
		if err := s.SetResult(SuccessResult(core.RoleIntegration)); err != nil {
			panic(err)
		}
		if err := s.MarkComplete(plan); err != nil {
			panic(err)
		}
	}
	return b
}

// Failed drives the session to failed with the given explanation
// (chainable).
func (b *SessionBuilder) Failed(explanation string) *SessionBuilder {
	b.build = func(s *core.Session) {
		for _, role := range core.FanOutRoles() {
			if err := s.SetResult(FailureResult(role, "scripted failure")); err != nil {
				panic(err)
			}
		}
		if err := s.MarkPartial(); err != nil {
			panic(err)
		}
		if err := s.MarkFailed(explanation); err != nil {
			panic(err)
		}
	}
	return b
}

// Build returns the constructed session.
func (b *SessionBuilder) Build() *core.Session {
	sess := core.NewSession(b.id, b.userID)
	sess.SetInput(b.input)

	if b.build != nil {
		b.build(sess)
	}
	for _, cp := range b.journey {
		sess.AddCheckpoint(cp)
	}
	if b.paused {
		sess.SetPaused(true)
	}

	return sess
}

func mustPartial(s *core.Session) {
	for _, role := range core.FanOutRoles() {
		if err := s.SetResult(SuccessResult(role)); err != nil {
			panic(err)
		}
	}
	if err := s.MarkPartial(); err != nil {
		panic(err)
	}
}

func summaryField(role core.Role) string {
	switch role {
	case core.RolePast:
		return "analysis_summary"
	case core.RolePresent:
		return "state_summary"
	case core.RoleFuture:
		return "projection_summary"
	default:
		return "integrated_summary"
	}
}
