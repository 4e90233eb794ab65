package core

import "errors"

var (
	// ErrSessionNotFound is returned by stores when no session exists for
	// the requested identifier.
	ErrSessionNotFound = errors.New("session not found")

	// ErrNoUsableResults signals that every fan-out role failed, so the
	// integration step refused to invoke the model.
	ErrNoUsableResults = errors.New("no usable fan-out results")

	// ErrUnknownRole signals a result carrying a role outside the pipeline.
	ErrUnknownRole = errors.New("unknown role")

	// ErrInvalidTransition signals a session status change that violates
	// the pending -> partial -> complete|failed lifecycle.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrJourneyPaused signals that a journey run suspended at a checkpoint
	// instead of finishing.
	ErrJourneyPaused = errors.New("journey paused")
)
