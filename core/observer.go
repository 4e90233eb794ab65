package core

import (
	"context"
	"time"
)

// Observation records one model invocation outcome for external collectors.
// Every agent emits exactly one observation per invocation attempt.
type Observation struct {
	SessionID string
	Role      Role
	Model     string
	Outcome   Outcome
	Latency   time.Duration
	Reason    string
}

// Observer receives per-invocation latency/status observations. Implementations
// must be safe for concurrent use; observations arrive from multiple
// goroutines during fan-out.
type Observer interface {
	Observe(ctx context.Context, obs Observation)
}

// NoOpObserver discards all observations.
type NoOpObserver struct{}

// Observe implements Observer as a no-op.
func (NoOpObserver) Observe(context.Context, Observation) {}

// ObserverFunc adapts a plain function to the Observer interface.
type ObserverFunc func(ctx context.Context, obs Observation)

// Observe invokes the wrapped function.
func (f ObserverFunc) Observe(ctx context.Context, obs Observation) { f(ctx, obs) }
