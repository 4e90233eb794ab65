// Package chronosynth provides a high-level façade over the orchestration
// pipeline and its services (sessions, memory, trace & logging) enabling
// rapid construction of the emotional time-travel flow. Most applications
// interact with this package by:
//  1. Creating a ChronoSynth via New() around a model invoker (optionally
//     overriding the default in-memory services)
//  2. Processing entries synchronously (Run) or in the background (Start)
//  3. Polling Result for the session's current status, partial results or
//     final plan
//
// The façade delegates orchestration to orchestrator.Pipeline while keeping
// setup and usage ergonomics concise. All defaults are safe for local
// development and testing; production deployments typically supply durable
// store implementations and a structured logger.
package chronosynth

import (
	"context"
	"time"

	"github.com/chronosynth/chronosynth/core"
	"github.com/chronosynth/chronosynth/journey"
	"github.com/chronosynth/chronosynth/logging"
	"github.com/chronosynth/chronosynth/model"
	"github.com/chronosynth/chronosynth/orchestrator"
	"github.com/chronosynth/chronosynth/session"
	"github.com/chronosynth/chronosynth/trace"
)

// Re-exported pipeline roles.
const (
	RolePast        = core.RolePast
	RolePresent     = core.RolePresent
	RoleFuture      = core.RoleFuture
	RoleIntegration = core.RoleIntegration
)

// Re-exported session lifecycle states.
const (
	StatusPending  = core.StatusPending
	StatusPartial  = core.StatusPartial
	StatusComplete = core.StatusComplete
	StatusFailed   = core.StatusFailed
)

// Options configures the ChronoSynth instance.
type Options struct {
	// FanOutTimeout is the soft deadline applied to each fan-out role.
	FanOutTimeout time.Duration
	// IntegrationTimeout is the deadline for the synthesis call.
	IntegrationTimeout time.Duration

	// Stores (default to in-memory implementations if not provided)
	SessionStore core.SessionStore
	Memory       orchestrator.Memory
	Recorder     trace.Recorder

	// Observer receives one observation per model call.
	Observer core.Observer

	// Logger (defaults to NoOp logger if nil)
	Logger logging.Logger
}

// ChronoSynth is the high-level façade aggregating the pipeline, the
// journey runner and their shared session store.
type ChronoSynth struct {
	pipeline *orchestrator.Pipeline
	journeys *journey.Runner
	sessions core.SessionStore
	recorder trace.Recorder
}

// New creates a ChronoSynth instance around a model invoker with optional
// overrides. Any unset service is initialized with an in-memory or no-op
// implementation.
func New(invoker model.Invoker, optFns ...func(o *Options)) *ChronoSynth {
	opts := Options{
		FanOutTimeout:      30 * time.Second,
		IntegrationTimeout: 45 * time.Second,
		SessionStore:       session.NewInMemoryStore(),
		Recorder:           trace.NoOpRecorder{},
		Observer:           core.NoOpObserver{},
		Logger:             logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	pipeline := orchestrator.New(invoker, func(o *orchestrator.Options) {
		o.FanOutTimeout = opts.FanOutTimeout
		o.IntegrationTimeout = opts.IntegrationTimeout
		o.SessionStore = opts.SessionStore
		o.Memory = opts.Memory
		o.Recorder = opts.Recorder
		o.Observer = opts.Observer
		o.Logger = opts.Logger
	})

	journeys := journey.NewRunner(invoker, opts.SessionStore, func(o *journey.Options) {
		o.Logger = opts.Logger
	})

	return &ChronoSynth{
		pipeline: pipeline,
		journeys: journeys,
		sessions: opts.SessionStore,
		recorder: opts.Recorder,
	}
}

// Run processes one entry synchronously and returns the session in its
// terminal state (complete with a plan, or failed with an explanation).
func (c *ChronoSynth) Run(ctx context.Context, userID, entry string) (*core.Session, error) {
	return c.pipeline.Run(ctx, orchestrator.RunRequest{UserID: userID, Entry: entry})
}

// Start processes one entry in the background and returns the session ID
// to poll with Result.
func (c *ChronoSynth) Start(ctx context.Context, userID, entry string) (string, error) {
	return c.pipeline.Start(ctx, orchestrator.RunRequest{UserID: userID, Entry: entry})
}

// Cancel stops an active background run; its session still resolves to a
// terminal status.
func (c *ChronoSynth) Cancel(sessionID string) error {
	return c.pipeline.Cancel(sessionID)
}

// Result returns the session's current snapshot: status plus whatever
// results are available so far. Partial data is never hidden.
func (c *ChronoSynth) Result(ctx context.Context, sessionID string) (*core.Session, error) {
	return c.sessions.Get(ctx, sessionID)
}

// StartJourney walks the session through the staged healing journey,
// honoring pause and resume between stages.
func (c *ChronoSynth) StartJourney(ctx context.Context, sessionID string) error {
	return c.journeys.Run(ctx, sessionID)
}

// PauseJourney suspends the session's journey at the next stage boundary.
func (c *ChronoSynth) PauseJourney(ctx context.Context, sessionID string) error {
	return c.sessions.SetPaused(ctx, sessionID, true)
}

// ResumeJourney clears the pause flag so a suspended journey continues.
func (c *ChronoSynth) ResumeJourney(ctx context.Context, sessionID string) error {
	return c.sessions.SetPaused(ctx, sessionID, false)
}

// Trace returns the inter-agent message log recorded for a session.
func (c *ChronoSynth) Trace(ctx context.Context, sessionID string) ([]trace.Message, error) {
	return c.recorder.List(ctx, sessionID)
}
