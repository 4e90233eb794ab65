package agent

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chronosynth/chronosynth/core"
	"github.com/chronosynth/chronosynth/model"
)

const validIntegrationJSON = `{
	"integrated_summary": "fear is a signal, not a stop sign",
	"contradictions": [],
	"themes": ["agency"],
	"plan": [{"step":"draft a one-page business plan","owner":"self","timeframe":"this week"}],
	"metrics": ["plan drafted"],
	"next_check_in": "2026-09-02T09:00:00Z",
	"confidence": 0.8
}`

func successBundle(t *testing.T) core.Bundle {
	t.Helper()
	var b core.Bundle
	require.NoError(t, b.Set(core.NewSuccess(core.RolePast, []byte(`{"analysis_summary":"p"}`), "p", time.Millisecond)))
	require.NoError(t, b.Set(core.NewSuccess(core.RolePresent, []byte(`{"state_summary":"n"}`), "n", time.Millisecond)))
	require.NoError(t, b.Set(core.NewSuccess(core.RoleFuture, []byte(`{"projection_summary":"f"}`), "f", time.Millisecond)))
	return b
}

func TestIntegrator_ShortCircuitsWhenAllFailed(t *testing.T) {
	inv := model.NewMockInvoker()
	obs := &recordingObserver{}

	var b core.Bundle
	require.NoError(t, b.Set(core.NewFailure(core.RolePast, "transport failure", 0)))
	require.NoError(t, b.Set(core.NewTimeout(core.RolePresent, time.Second)))
	require.NoError(t, b.Set(core.NewFailure(core.RoleFuture, "transport failure", 0)))

	g := NewIntegrator(inv, func(o *IntegratorOptions) { o.Observer = obs })
	res := g.Synthesize(context.Background(), "s1", "entry", b)

	assert.Equal(t, core.OutcomeError, res.Outcome)
	assert.Contains(t, res.Reason, "no usable fan-out results")
	assert.Contains(t, res.Reason, "present timeout")
	assert.Zero(t, len(inv.Calls()), "short-circuit must not invoke the model")
	require.Len(t, obs.all(), 1)
}

func TestIntegrator_InvokesExactlyOnceOnPartialBundle(t *testing.T) {
	inv := model.NewMockInvoker()
	inv.RespondWith(core.RoleIntegration, validIntegrationJSON)

	var b core.Bundle
	require.NoError(t, b.Set(core.NewSuccess(core.RolePast, []byte(`{"analysis_summary":"old fear of failing publicly"}`), "old fear of failing publicly", time.Millisecond)))
	require.NoError(t, b.Set(core.NewSuccess(core.RolePresent, []byte(`{"state_summary":"scared but determined"}`), "scared but determined", time.Millisecond)))
	require.NoError(t, b.Set(core.NewTimeout(core.RoleFuture, time.Second)))

	g := NewIntegrator(inv)
	res := g.Synthesize(context.Background(), "s1", "I want to start a business but I'm scared", b)

	assert.Equal(t, core.OutcomeSuccess, res.Outcome)
	assert.Equal(t, "fear is a signal, not a stop sign", res.Summary)
	assert.Equal(t, 1, inv.CallCount(core.RoleIntegration))

	sent := inv.LastPrompt(core.RoleIntegration)
	assert.Contains(t, sent, "past_summary: old fear of failing publicly")
	assert.Contains(t, sent, "present_summary: scared but determined")
	assert.Contains(t, sent, "the future perspective produced no usable output")
}

func TestIntegrator_RejectsIncompleteBundle(t *testing.T) {
	inv := model.NewMockInvoker()
	var b core.Bundle
	require.NoError(t, b.Set(core.NewSuccess(core.RolePast, []byte(`{"analysis_summary":"p"}`), "p", 0)))

	g := NewIntegrator(inv)
	res := g.Synthesize(context.Background(), "s1", "entry", b)

	assert.Equal(t, core.OutcomeError, res.Outcome)
	assert.Zero(t, len(inv.Calls()))
}

func TestIntegrator_TimeoutOutcome(t *testing.T) {
	inv := model.NewMockInvoker()
	inv.DelayFor(core.RoleIntegration, 300*time.Millisecond)

	g := NewIntegrator(inv, func(o *IntegratorOptions) { o.Timeout = 25 * time.Millisecond })
	res := g.Synthesize(context.Background(), "s1", "entry", successBundle(t))

	assert.Equal(t, core.OutcomeTimeout, res.Outcome)
}

func TestIntegrator_MalformedSynthesis(t *testing.T) {
	inv := model.NewMockInvoker()
	inv.RespondWith(core.RoleIntegration, "not json at all")

	g := NewIntegrator(inv)
	res := g.Synthesize(context.Background(), "s1", "entry", successBundle(t))

	assert.Equal(t, core.OutcomeError, res.Outcome)
	assert.Contains(t, res.Reason, "malformed response")
}
