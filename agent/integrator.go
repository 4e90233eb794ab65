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

// DefaultIntegrationTimeout is the synthesis deadline applied when no
// timeout option is provided.
const DefaultIntegrationTimeout = 45 * time.Second

// IntegratorOptions configures an Integrator instance.
type IntegratorOptions struct {
	Timeout  time.Duration
	Observer core.Observer
	Logger   logging.Logger
}

// Integrator synthesizes a completed fan-out bundle into the final
// integration result.
//
// Contract:
//   - The bundle must have all three fan-out slots terminal
//   - When every fan-out role failed, Synthesize short-circuits with an
//     error result and performs zero model calls
//   - Otherwise it invokes the model exactly once, framing the prompt with
//     the summaries that resolved and naming the unavailable roles.
type Integrator struct {
	invoker  model.Invoker
	timeout  time.Duration
	observer core.Observer
	logger   logging.Logger
}

// NewIntegrator creates the synthesis agent.
func NewIntegrator(invoker model.Invoker, optFns ...func(o *IntegratorOptions)) *Integrator {
	opts := IntegratorOptions{
		Timeout:  DefaultIntegrationTimeout,
		Observer: core.NoOpObserver{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	return &Integrator{
		invoker:  invoker,
		timeout:  opts.Timeout,
		observer: opts.Observer,
		logger:   logging.OrDefault(opts.Logger),
	}
}

// Synthesize produces the integration result for a completed bundle. It
// never returns an error; failures become timeout/error outcomes.
func (g *Integrator) Synthesize(ctx context.Context, sessionID, entry string, bundle core.Bundle) core.AgentResult {
	if !bundle.Complete() {
		return g.finish(ctx, sessionID, core.NewFailure(core.RoleIntegration, "fan-out bundle incomplete", 0))
	}

	if bundle.AllFailed() {
		reason := fmt.Sprintf("%v: past %s, present %s, future %s",
			core.ErrNoUsableResults, bundle.Past.Outcome, bundle.Present.Outcome, bundle.Future.Outcome)
		g.logger.Warn("integration short-circuited", "session_id", sessionID, "reason", reason)
		return g.finish(ctx, sessionID, core.NewFailure(core.RoleIntegration, reason, 0))
	}

	req := prompt.BuildIntegration(entry, prompt.IntegrationInputs{
		SessionID:      sessionID,
		PastSummary:    bundle.Past.Summary,
		PresentSummary: bundle.Present.Summary,
		FutureSummary:  bundle.Future.Summary,
		Unavailable:    bundle.Unavailable(),
	})

	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	start := time.Now()
	resp, err := g.invoker.Invoke(callCtx, req)
	latency := time.Since(start)

	if err != nil {
		g.logger.Warn("integration call failed", "session_id", sessionID, "error", err.Error())
		return g.finish(ctx, sessionID, g.classify(err, latency))
	}

	payload, err := prompt.ParsePayload(core.RoleIntegration, resp.Text)
	if err != nil {
		g.logger.Warn("integration completion failed validation", "session_id", sessionID, "error", err.Error())
		return g.finish(ctx, sessionID, core.NewFailure(core.RoleIntegration, "the integration agent returned a malformed response", latency))
	}

	return g.finish(ctx, sessionID, core.NewSuccess(core.RoleIntegration, payload.Raw, payload.Summary, latency))
}

func (g *Integrator) classify(err error, latency time.Duration) core.AgentResult {
	switch model.KindOf(err) {
	case model.ErrKindTimeout:
		return core.NewTimeout(core.RoleIntegration, latency)
	case model.ErrKindMalformed:
		return core.NewFailure(core.RoleIntegration, "the integration agent returned a malformed response", latency)
	default:
		return core.NewFailure(core.RoleIntegration, "the integration agent call failed before producing output", latency)
	}
}

func (g *Integrator) finish(ctx context.Context, sessionID string, r core.AgentResult) core.AgentResult {
	g.observer.Observe(ctx, core.Observation{
		SessionID: sessionID,
		Role:      r.Role,
		Model:     g.invoker.Info().Name,
		Outcome:   r.Outcome,
		Latency:   r.Latency,
		Reason:    r.Reason,
	})
	return r
}
