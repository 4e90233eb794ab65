package agent

import (
	"context"
	"fmt"
	"time"

	"github.com/chronosynth/chronosynth/core"
	"github.com/chronosynth/chronosynth/logging"
	"github.com/chronosynth/chronosynth/model"
	"github.com/chronosynth/chronosynth/prompt"
)

// DefaultTaskTimeout is the per-role soft deadline applied when no timeout
// option is provided.
const DefaultTaskTimeout = 30 * time.Second

// TaskOptions configures a Task instance.
//
// Use functional options with NewTask to override defaults.
type TaskOptions struct {
	Timeout  time.Duration
	Observer core.Observer
	Logger   logging.Logger
}

// Task wraps one fan-out role around a model invoker.
//
// Given the raw user entry, Execute produces exactly one terminal
// AgentResult:
//   - success when the model answers in time with a valid structured payload
//   - timeout when the role's soft deadline expires first
//   - error when the call fails or the completion fails validation
//
// The deadline is soft: on expiry the outstanding call is abandoned via
// context cancellation and recorded as a timeout; sibling roles are never
// affected. Each Execute emits one observation through the configured
// Observer.
type Task struct {
	role     core.Role
	invoker  model.Invoker
	timeout  time.Duration
	observer core.Observer
	logger   logging.Logger
}

// NewTask creates a fan-out task for the given role.
func NewTask(role core.Role, invoker model.Invoker, optFns ...func(o *TaskOptions)) *Task {
	opts := TaskOptions{
		Timeout:  DefaultTaskTimeout,
		Observer: core.NoOpObserver{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	return &Task{
		role:     role,
		invoker:  invoker,
		timeout:  opts.Timeout,
		observer: opts.Observer,
		logger:   logging.OrDefault(opts.Logger),
	}
}

// Role returns the fan-out role this task owns.
func (t *Task) Role() core.Role { return t.role }

// Execute runs the role's model call and resolves it to a terminal result.
// It never returns an error; failures become timeout/error outcomes.
func (t *Task) Execute(ctx context.Context, sessionID, entry string, recalled []string) core.AgentResult {
	req, err := prompt.BuildFanOut(t.role, entry, recalled)
	if err != nil {
		return t.finish(ctx, sessionID, core.NewFailure(t.role, err.Error(), 0))
	}

	callCtx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	start := time.Now()
	resp, err := t.invoker.Invoke(callCtx, req)
	latency := time.Since(start)

	if err != nil {
		t.logger.Warn("model call failed", "role", t.role.String(), "error", err.Error())
		return t.finish(ctx, sessionID, t.classify(err, latency))
	}

	payload, err := prompt.ParsePayload(t.role, resp.Text)
	if err != nil {
		t.logger.Warn("completion failed validation", "role", t.role.String(), "error", err.Error())
		reason := fmt.Sprintf("the %s agent returned a malformed response", t.role)
		return t.finish(ctx, sessionID, core.NewFailure(t.role, reason, latency))
	}

	return t.finish(ctx, sessionID, core.NewSuccess(t.role, payload.Raw, payload.Summary, latency))
}

// classify converts an invocation failure into the matching terminal
// outcome, keeping raw transport detail out of user-visible reasons.
func (t *Task) classify(err error, latency time.Duration) core.AgentResult {
	switch model.KindOf(err) {
	case model.ErrKindTimeout:
		return core.NewTimeout(t.role, latency)
	case model.ErrKindMalformed:
		return core.NewFailure(t.role, fmt.Sprintf("the %s agent returned a malformed response", t.role), latency)
	default:
		return core.NewFailure(t.role, fmt.Sprintf("the %s agent call failed before producing output", t.role), latency)
	}
}

func (t *Task) finish(ctx context.Context, sessionID string, r core.AgentResult) core.AgentResult {
	t.observer.Observe(ctx, core.Observation{
		SessionID: sessionID,
		Role:      r.Role,
		Model:     t.invoker.Info().Name,
		Outcome:   r.Outcome,
		Latency:   r.Latency,
		Reason:    r.Reason,
	})
	return r
}
