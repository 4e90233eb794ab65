package core

import (
	"fmt"
	"sync"
	"time"
)

// Status is the lifecycle state of a session.
type Status string

const (
	// StatusPending marks a session whose fan-out stage is in flight.
	StatusPending Status = "pending"
	// StatusPartial marks a session whose fan-out finished and whose
	// integration step is in flight.
	StatusPartial Status = "partial"
	// StatusComplete marks a session whose integration step succeeded.
	StatusComplete Status = "complete"
	// StatusFailed marks a session whose integration step failed or was
	// short-circuited because every fan-out role failed.
	StatusFailed Status = "failed"
)

// Terminal reports whether no further lifecycle transitions can occur.
func (s Status) Terminal() bool { return s == StatusComplete || s == StatusFailed }

// Valid reports whether s is one of the known lifecycle states.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusPartial, StatusComplete, StatusFailed:
		return true
	}
	return false
}

// CanTransition reports whether moving from s to next follows the lifecycle
// pending -> partial -> complete|failed.
func (s Status) CanTransition(next Status) bool {
	switch s {
	case StatusPending:
		return next == StatusPartial
	case StatusPartial:
		return next == StatusComplete || next == StatusFailed
	}
	return false
}

// Checkpoint records one completed stage of a guided journey.
type Checkpoint struct {
	Stage string    `json:"stage"`
	Note  string    `json:"note,omitempty"`
	At    time.Time `json:"at"`
}

// JourneyState tracks progress through the staged healing journey attached
// to a session.
type JourneyState struct {
	Stage       string       `json:"stage,omitempty"`
	Checkpoints []Checkpoint `json:"checkpoints,omitempty"`
	Done        bool         `json:"done"`
}

// Clone returns a deep copy of the journey state.
func (j *JourneyState) Clone() *JourneyState {
	if j == nil {
		return nil
	}
	cp := *j
	cp.Checkpoints = append([]Checkpoint(nil), j.Checkpoints...)
	return &cp
}

// Session is the stateful container for one orchestration run. It is safe
// for concurrent access.
//
// Contract:
//   - Mutations update the Updated timestamp
//   - Status changes follow pending -> partial -> complete|failed and a
//     session never leaves pending before its fan-out bundle is complete
//   - Failure always carries a human-readable explanation naming the stage
//     and roles that failed, never a raw transport error
//   - Clone performs deep copies of the bundle, plan and journey state.
type Session struct {
	ID      string        `json:"id"`
	UserID  string        `json:"user_id"`
	Input   string        `json:"input,omitempty"`
	Status  Status        `json:"status"`
	Bundle  Bundle        `json:"bundle"`
	Plan    *Plan         `json:"plan,omitempty"`
	Failure string        `json:"failure,omitempty"`
	Journey *JourneyState `json:"journey,omitempty"`
	Paused  bool          `json:"paused"`
	Created time.Time     `json:"created"`
	Updated time.Time     `json:"updated"`
	mu      sync.RWMutex
}

// NewSession creates a pending session for the given user.
func NewSession(id, userID string) *Session {
	now := time.Now().UTC()
	return &Session{ID: id, UserID: userID, Status: StatusPending, Created: now, Updated: now}
}

// SetInput records the raw user entry driving this run.
func (s *Session) SetInput(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Input = text
	s.Updated = time.Now().UTC()
}

// SetResult stores a terminal agent result in the bundle slot owned by its
// role.
func (s *Session) SetResult(r AgentResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.Bundle.Set(r); err != nil {
		return err
	}
	s.Updated = time.Now().UTC()
	return nil
}

// MarkPartial records the fan-out join. The session may not leave pending
// until all three fan-out results are terminal.
func (s *Session) MarkPartial() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.Bundle.Complete() {
		return fmt.Errorf("session %s: fan-out bundle incomplete", s.ID)
	}
	return s.transitionLocked(StatusPartial)
}

// MarkComplete attaches the synthesized plan and finishes the session.
func (s *Session) MarkComplete(p *Plan) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.transitionLocked(StatusComplete); err != nil {
		return err
	}
	s.Plan = p.Clone()
	return nil
}

// MarkFailed finishes the session with a human-readable explanation of
// which stage and roles failed.
func (s *Session) MarkFailed(explanation string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.transitionLocked(StatusFailed); err != nil {
		return err
	}
	s.Failure = explanation
	return nil
}

func (s *Session) transitionLocked(next Status) error {
	if !s.Status.CanTransition(next) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, s.Status, next)
	}
	s.Status = next
	s.Updated = time.Now().UTC()
	return nil
}

// CurrentStatus returns the lifecycle state under a read lock.
func (s *Session) CurrentStatus() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Status
}

// SetPaused toggles the journey pause flag.
func (s *Session) SetPaused(paused bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Paused = paused
	s.Updated = time.Now().UTC()
}

// IsPaused reports whether the journey pause flag is set.
func (s *Session) IsPaused() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Paused
}

// AddCheckpoint appends a journey checkpoint, allocating the journey state
// on first use.
func (s *Session) AddCheckpoint(cp Checkpoint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Journey == nil {
		s.Journey = &JourneyState{}
	}
	s.Journey.Stage = cp.Stage
	s.Journey.Checkpoints = append(s.Journey.Checkpoints, cp)
	s.Updated = time.Now().UTC()
}

// FinishJourney marks the attached journey as completed.
func (s *Session) FinishJourney() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Journey == nil {
		s.Journey = &JourneyState{}
	}
	s.Journey.Done = true
	s.Updated = time.Now().UTC()
}

// Clone returns a deep copy of the session safe for independent mutation.
func (s *Session) Clone() *Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return &Session{
		ID:      s.ID,
		UserID:  s.UserID,
		Input:   s.Input,
		Status:  s.Status,
		Bundle:  s.Bundle.Clone(),
		Plan:    s.Plan.Clone(),
		Failure: s.Failure,
		Journey: s.Journey.Clone(),
		Paused:  s.Paused,
		Created: s.Created,
		Updated: s.Updated,
	}
}
