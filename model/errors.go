package model

import (
	"context"
	"errors"
	"fmt"
)

// ErrKind classifies invocation failures into the small set of categories
// the pipeline acts on.
type ErrKind string

const (
	// ErrKindTimeout indicates the call exceeded its deadline.
	ErrKindTimeout ErrKind = "timeout"

	// ErrKindTransport indicates the call failed before producing output
	// (network failure, provider 5xx, auth rejection).
	ErrKindTransport ErrKind = "transport_error"

	// ErrKindMalformed indicates the provider produced output that failed
	// structural validation.
	ErrKindMalformed ErrKind = "malformed_response"
)

// InvocationError describes a failed model invocation. It crosses package
// boundaries so the pipeline can surface stable, structured information
// without inspecting vendor SDK errors.
type InvocationError struct {
	Kind     ErrKind
	Provider string
	Model    string
	Cause    error
}

// NewInvocationError constructs a typed invocation error. cause may be nil
// but is recommended to preserve the original error chain.
func NewInvocationError(kind ErrKind, provider, model string, cause error) *InvocationError {
	return &InvocationError{Kind: kind, Provider: provider, Model: model, Cause: cause}
}

// Error implements the error interface.
func (e *InvocationError) Error() string {
	msg := "invocation failed"
	if e.Cause != nil {
		msg = e.Cause.Error()
	}
	return fmt.Sprintf("%s %s (%s): %s", e.Provider, e.Model, e.Kind, msg)
}

// Unwrap returns the underlying cause to preserve the error chain.
func (e *InvocationError) Unwrap() error { return e.Cause }

// AsInvocationError returns the first InvocationError in err's chain, if
// any.
func AsInvocationError(err error) (*InvocationError, bool) {
	var ie *InvocationError
	if errors.As(err, &ie) {
		return ie, true
	}
	return nil, false
}

// KindOf classifies an arbitrary invocation failure. Typed errors report
// their own kind; context deadline errors map to timeout; everything else
// is a transport failure.
func KindOf(err error) ErrKind {
	if ie, ok := AsInvocationError(err); ok {
		return ie.Kind
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrKindTimeout
	}
	return ErrKindTransport
}
