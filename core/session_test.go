package core

import (
	"testing"
	"time"
)

func TestSession_LifecycleTransitions(t *testing.T) {
	s := NewSession("s1", "u1")
	if s.Status != StatusPending {
		t.Fatalf("new session should be pending, got %s", s.Status)
	}

	if err := s.MarkPartial(); err == nil {
		t.Fatal("MarkPartial must fail while fan-out slots are unresolved")
	}

	for _, role := range FanOutRoles() {
		if err := s.SetResult(NewFailure(role, "boom", time.Millisecond)); err != nil {
			t.Fatalf("SetResult(%s): %v", role, err)
		}
	}
	if err := s.MarkPartial(); err != nil {
		t.Fatalf("MarkPartial with complete bundle: %v", err)
	}
	if s.Status != StatusPartial {
		t.Fatalf("expected partial, got %s", s.Status)
	}

	if err := s.MarkFailed("integration unavailable"); err != nil {
		t.Fatalf("MarkFailed: %v", err)
	}
	if !s.Status.Terminal() {
		t.Errorf("failed should be terminal")
	}
	if s.Failure != "integration unavailable" {
		t.Errorf("failure explanation not recorded: %q", s.Failure)
	}

	if err := s.MarkComplete(&Plan{}); err == nil {
		t.Error("no transition may leave a terminal state")
	}
}

func TestSession_MarkCompleteAttachesPlan(t *testing.T) {
	s := NewSession("s2", "u1")
	for _, role := range FanOutRoles() {
		_ = s.SetResult(NewSuccess(role, []byte(`{}`), "ok", time.Millisecond))
	}
	if err := s.MarkPartial(); err != nil {
		t.Fatalf("MarkPartial: %v", err)
	}

	plan := &Plan{Integrated: "go slow", Steps: []PlanStep{{Step: "walk", Owner: "self", Timeframe: "daily"}}}
	if err := s.MarkComplete(plan); err != nil {
		t.Fatalf("MarkComplete: %v", err)
	}
	if s.Status != StatusComplete {
		t.Fatalf("expected complete, got %s", s.Status)
	}

	plan.Steps[0].Step = "mutated"
	if s.Plan.Steps[0].Step != "walk" {
		t.Error("MarkComplete should store a deep copy of the plan")
	}
}

func TestSession_CloneIsIndependent(t *testing.T) {
	s := NewSession("s3", "u1")
	s.SetInput("entry")
	_ = s.SetResult(NewSuccess(RolePast, []byte(`{"analysis_summary":"x"}`), "x", time.Millisecond))
	s.AddCheckpoint(Checkpoint{Stage: "grounding", At: time.Now()})

	clone := s.Clone()
	if clone == s {
		t.Fatal("Clone should be a different pointer")
	}

	clone.Bundle.Past.Payload[2] = 'X'
	if s.Bundle.Past.Payload[2] == 'X' {
		t.Error("clone payload must not alias the original")
	}

	clone.AddCheckpoint(Checkpoint{Stage: "awareness", At: time.Now()})
	if len(s.Journey.Checkpoints) != 1 {
		t.Errorf("original should keep 1 checkpoint, got %d", len(s.Journey.Checkpoints))
	}
}

func TestStatus_CanTransition(t *testing.T) {
	cases := []struct {
		from, to Status
		want     bool
	}{
		{StatusPending, StatusPartial, true},
		{StatusPending, StatusComplete, false},
		{StatusPending, StatusFailed, false},
		{StatusPartial, StatusComplete, true},
		{StatusPartial, StatusFailed, true},
		{StatusPartial, StatusPending, false},
		{StatusComplete, StatusFailed, false},
		{StatusFailed, StatusPartial, false},
	}
	for _, c := range cases {
		if got := c.from.CanTransition(c.to); got != c.want {
			t.Errorf("%s -> %s: got %v, want %v", c.from, c.to, got, c.want)
		}
	}
}

func TestSession_PauseFlag(t *testing.T) {
	s := NewSession("s4", "u1")
	if s.IsPaused() {
		t.Fatal("new session should not be paused")
	}
	s.SetPaused(true)
	if !s.IsPaused() {
		t.Error("pause flag not set")
	}
	s.SetPaused(false)
	if s.IsPaused() {
		t.Error("pause flag not cleared")
	}
}
