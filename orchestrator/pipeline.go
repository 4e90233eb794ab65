package orchestrator

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/chronosynth/chronosynth/agent"
	"github.com/chronosynth/chronosynth/core"
	"github.com/chronosynth/chronosynth/logging"
	"github.com/chronosynth/chronosynth/model"
	"github.com/chronosynth/chronosynth/prompt"
	"github.com/chronosynth/chronosynth/session"
	"github.com/chronosynth/chronosynth/trace"
)

// maxTracePayload caps how much of a result payload is copied into the
// inter-agent trace.
const maxTracePayload = 4096

// Memory recalls prior context for prompts and persists completed runs.
// The memory package provides the standard implementation; a nil Memory
// disables both recall and persistence.
type Memory interface {
	Recall(ctx context.Context, userID, text string, limit int) ([]string, error)
	Remember(ctx context.Context, userID, text, summary string) error
}

// Options holds dependency and configuration overrides passed to New.
type Options struct {
	// FanOutTimeout is the soft deadline applied to each fan-out role.
	FanOutTimeout time.Duration
	// RoleTimeouts overrides the fan-out deadline per role.
	RoleTimeouts map[core.Role]time.Duration
	// IntegrationTimeout is the deadline for the synthesis call.
	IntegrationTimeout time.Duration
	// MaxModelCalls caps model invocations per run; 0 means unlimited.
	MaxModelCalls int
	// RecallLimit is how many prior entries are pulled into prompts.
	RecallLimit int
	// SessionStore persists session state across status transitions.
	SessionStore core.SessionStore
	// Recorder receives the inter-agent message trace.
	Recorder trace.Recorder
	// Memory provides long-term recall; nil disables it.
	Memory Memory
	// Observer receives one observation per model call.
	Observer core.Observer
	// Logger receives pipeline progress logs.
	Logger logging.Logger
}

// RunRequest describes one orchestration run.
type RunRequest struct {
	// SessionID identifies the run; a fresh ID is generated when empty.
	SessionID string
	// UserID attributes the run to a user for memory and evaluation.
	UserID string
	// Entry is the raw journal text to process.
	Entry string
}

// Pipeline coordinates a full run: recall, fan-out, integration, and the
// session status transitions in between. Public methods are safe for
// concurrent use.
//
// A run always drives its session from pending through partial to a
// terminal status. Agent failures never abort the run; they surface as
// result outcomes and, at worst, a failed session with an explanation.
// Errors returned by Run and Start are reserved for infrastructure
// problems such as the session store rejecting a write.
type Pipeline struct {
	invoker model.Invoker

	fanOutTimeout      time.Duration
	roleTimeouts       map[core.Role]time.Duration
	integrationTimeout time.Duration
	maxModelCalls      int
	recallLimit        int

	sessions core.SessionStore
	recorder trace.Recorder
	memory   Memory
	observer core.Observer
	logger   logging.Logger

	activeRuns map[string]context.CancelFunc
	mu         sync.Mutex
}

// New constructs a Pipeline around a model invoker with optional overrides.
func New(invoker model.Invoker, optFns ...func(o *Options)) *Pipeline {
	opts := Options{
		FanOutTimeout:      agent.DefaultTaskTimeout,
		IntegrationTimeout: agent.DefaultIntegrationTimeout,
		MaxModelCalls:      core.FanOutWidth + 1,
		RecallLimit:        3,
		SessionStore:       session.NewInMemoryStore(),
		Recorder:           trace.NoOpRecorder{},
		Observer:           core.NoOpObserver{},
		Logger:             logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &Pipeline{
		invoker:            invoker,
		fanOutTimeout:      opts.FanOutTimeout,
		roleTimeouts:       opts.RoleTimeouts,
		integrationTimeout: opts.IntegrationTimeout,
		maxModelCalls:      opts.MaxModelCalls,
		recallLimit:        opts.RecallLimit,
		sessions:           opts.SessionStore,
		recorder:           opts.Recorder,
		memory:             opts.Memory,
		observer:           opts.Observer,
		logger:             logging.OrDefault(opts.Logger),
	}
}

// Run executes one orchestration synchronously and returns the session in
// its terminal state. The session is persisted at every status boundary,
// so readers polling the store observe pending, then partial, then the
// final status.
func (p *Pipeline) Run(ctx context.Context, req RunRequest) (*core.Session, error) {
	sess, err := p.prepare(ctx, req)
	if err != nil {
		return nil, err
	}

	if err := p.execute(ctx, sess); err != nil {
		return nil, err
	}

	return sess, nil
}

// Start begins a run in the background and returns its session ID as soon
// as the pending session is visible in the store. The run keeps going
// after the caller's context is released; use Cancel to stop it early.
func (p *Pipeline) Start(ctx context.Context, req RunRequest) (string, error) {
	sess, err := p.prepare(ctx, req)
	if err != nil {
		return "", err
	}

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))

	p.mu.Lock()
	if p.activeRuns == nil {
		p.activeRuns = make(map[string]context.CancelFunc)
	}
	p.activeRuns[sess.ID] = cancel
	p.mu.Unlock()

	go func() {
		defer func() {
			cancel()
			p.mu.Lock()
			delete(p.activeRuns, sess.ID)
			p.mu.Unlock()
		}()

		if err := p.execute(runCtx, sess); err != nil {
			p.logger.Error("Background run failed", "session_id", sess.ID, "error", err.Error())
		}
	}()

	return sess.ID, nil
}

// Cancel stops an active background run. Cancelled calls resolve as
// failures and the session still reaches a terminal status.
func (p *Pipeline) Cancel(sessionID string) error {
	p.mu.Lock()
	cancel, exists := p.activeRuns[sessionID]
	p.mu.Unlock()

	if !exists {
		return fmt.Errorf("no active run for session %s", sessionID)
	}

	cancel()

	return nil
}

// prepare creates the pending session and makes it visible in the store.
func (p *Pipeline) prepare(ctx context.Context, req RunRequest) (*core.Session, error) {
	entry := strings.TrimSpace(req.Entry)
	if entry == "" {
		return nil, fmt.Errorf("entry text must not be empty")
	}

	id := req.SessionID
	if id == "" {
		id = uuid.NewString()
	}

	sess := core.NewSession(id, req.UserID)
	sess.SetInput(entry)

	if err := p.sessions.Put(ctx, sess); err != nil {
		return nil, fmt.Errorf("persist pending session: %w", err)
	}

	return sess, nil
}

// execute drives one prepared session through fan-out, integration, and
// its terminal status.
func (p *Pipeline) execute(ctx context.Context, sess *core.Session) error {
	start := time.Now()

	// Store writes and trace records must land even when the run context
	// is cancelled mid-flight; only model calls stay cancellable.
	persistCtx := context.WithoutCancel(ctx)

	budget := core.NewCallBudget(p.maxModelCalls)
	invoker := model.WithBudget(p.invoker, budget)

	recalled := p.recall(ctx, sess)

	scheduler := NewScheduler(invoker, func(o *SchedulerOptions) {
		o.Timeout = p.fanOutTimeout
		o.Timeouts = p.roleTimeouts
		o.Observer = p.observer
		o.Logger = p.logger
	})

	bundle := scheduler.FanOut(ctx, sess.ID, sess.Input, recalled)

	for _, result := range bundle.FanOut() {
		if err := sess.SetResult(result); err != nil {
			return fmt.Errorf("record %s result: %w", result.Role, err)
		}
		p.record(persistCtx, sess.ID, result.Role.String(), core.RoleIntegration.String(), trace.IntentInform, resultTracePayload(result))
	}

	if err := sess.MarkPartial(); err != nil {
		return fmt.Errorf("mark session partial: %w", err)
	}
	if err := p.sessions.Put(persistCtx, sess); err != nil {
		return fmt.Errorf("persist partial session: %w", err)
	}

	integrator := agent.NewIntegrator(invoker, func(o *agent.IntegratorOptions) {
		o.Timeout = p.integrationTimeout
		o.Observer = p.observer
		o.Logger = p.logger
	})

	synthesis := integrator.Synthesize(ctx, sess.ID, sess.Input, bundle)
	if err := sess.SetResult(synthesis); err != nil {
		return fmt.Errorf("record integration result: %w", err)
	}

	if err := p.conclude(persistCtx, sess, bundle, synthesis); err != nil {
		return err
	}
	if err := p.sessions.Put(persistCtx, sess); err != nil {
		return fmt.Errorf("persist finished session: %w", err)
	}

	p.logger.Info("Run finished",
		"session_id", sess.ID,
		"status", string(sess.CurrentStatus()),
		"model_calls", budget.Used(),
		"elapsed", time.Since(start).String(),
	)

	return nil
}

// conclude resolves the synthesis result into the session's terminal
// status: a decoded plan on success, an explanation on failure.
func (p *Pipeline) conclude(ctx context.Context, sess *core.Session, bundle core.Bundle, synthesis core.AgentResult) error {
	if !synthesis.OK() {
		explanation := "integration stage: " + synthesis.Reason
		if bundle.AllFailed() {
			explanation = "fan-out stage: " + synthesis.Reason
		}

		if err := sess.MarkFailed(explanation); err != nil {
			return fmt.Errorf("mark session failed: %w", err)
		}
		p.record(ctx, sess.ID, core.RoleIntegration.String(), "session", trace.IntentReport, fmt.Sprintf("{%q:%q}", "failure", explanation))

		return nil
	}

	payload, err := prompt.DecodeIntegration(synthesis.Payload)
	if err != nil {
		explanation := fmt.Sprintf("integration stage: payload did not decode: %s", err)
		if markErr := sess.MarkFailed(explanation); markErr != nil {
			return fmt.Errorf("mark session failed: %w", markErr)
		}
		p.record(ctx, sess.ID, core.RoleIntegration.String(), "session", trace.IntentReport, fmt.Sprintf("{%q:%q}", "failure", explanation))

		return nil
	}

	plan := assemblePlan(bundle, payload)
	if err := sess.MarkComplete(plan); err != nil {
		return fmt.Errorf("mark session complete: %w", err)
	}
	p.record(ctx, sess.ID, core.RoleIntegration.String(), "session", trace.IntentReport, string(synthesis.Payload))

	p.remember(ctx, sess, plan)

	return nil
}

// recall pulls prior context for the user; failures degrade to no recall.
func (p *Pipeline) recall(ctx context.Context, sess *core.Session) []string {
	if p.memory == nil || sess.UserID == "" {
		return nil
	}

	recalled, err := p.memory.Recall(ctx, sess.UserID, sess.Input, p.recallLimit)
	if err != nil {
		p.logger.Warn("Memory recall failed", "session_id", sess.ID, "error", err.Error())
		return nil
	}

	return recalled
}

// remember persists the finished run for future recall; failures are
// logged and dropped.
func (p *Pipeline) remember(ctx context.Context, sess *core.Session, plan *core.Plan) {
	if p.memory == nil || sess.UserID == "" {
		return
	}

	if err := p.memory.Remember(ctx, sess.UserID, sess.Input, plan.Integrated); err != nil {
		p.logger.Warn("Memory persistence failed", "session_id", sess.ID, "error", err.Error())
	}
}

// record appends one message to the inter-agent trace; failures are
// logged and dropped.
func (p *Pipeline) record(ctx context.Context, sessionID, sender, receiver, intent, payload string) {
	msg := trace.NewMessage(sessionID, sender, receiver, intent, trace.Truncate(payload, maxTracePayload))
	if err := p.recorder.Record(ctx, msg); err != nil {
		p.logger.Warn("Trace record failed", "session_id", sessionID, "error", err.Error())
	}
}

// assemblePlan merges the fan-out summaries with the decoded integration
// payload. Summaries of roles that produced no usable output stay empty.
func assemblePlan(bundle core.Bundle, payload prompt.IntegrationPayload) *core.Plan {
	return &core.Plan{
		PastSummary:    bundle.Past.Summary,
		PresentSummary: bundle.Present.Summary,
		FutureSummary:  bundle.Future.Summary,
		Integrated:     payload.IntegratedSummary,
		Steps:          payload.Plan,
		Themes:         payload.Themes,
		Contradictions: payload.Contradictions,
		Metrics:        payload.Metrics,
		NextCheckIn:    payload.NextCheckIn,
		Confidence:     payload.Confidence,
	}
}

// resultTracePayload renders a fan-out result for the trace log.
func resultTracePayload(r core.AgentResult) string {
	if r.OK() {
		return string(r.Payload)
	}

	return fmt.Sprintf("{%q:%q,%q:%q}", "outcome", r.Outcome, "reason", r.Reason)
}
