package orchestrator

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chronosynth/chronosynth/core"
	"github.com/chronosynth/chronosynth/model"
	"github.com/chronosynth/chronosynth/session"
	"github.com/chronosynth/chronosynth/trace"
)

type recordingObserver struct {
	mu  sync.Mutex
	obs []core.Observation
}

func (r *recordingObserver) Observe(_ context.Context, o core.Observation) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.obs = append(r.obs, o)
}

func (r *recordingObserver) all() []core.Observation {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]core.Observation, len(r.obs))
	copy(out, r.obs)
	return out
}

type statusRecordingStore struct {
	core.SessionStore
	mu       sync.Mutex
	statuses []core.Status
}

func (s *statusRecordingStore) Put(ctx context.Context, sess *core.Session) error {
	s.mu.Lock()
	s.statuses = append(s.statuses, sess.CurrentStatus())
	s.mu.Unlock()
	return s.SessionStore.Put(ctx, sess)
}

type fakeMemory struct {
	mu          sync.Mutex
	recalled    []string
	recallCount int
	remembered  int
	lastText    string
	lastSummary string
}

func (f *fakeMemory) Recall(_ context.Context, userID, text string, limit int) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.recallCount++
	return f.recalled, nil
}

func (f *fakeMemory) Remember(_ context.Context, userID, text, summary string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.remembered++
	f.lastText = text
	f.lastSummary = summary
	return nil
}

func scriptAll(mock *model.MockInvoker) {
	scriptFanOut(mock)
	mock.RespondWith(core.RoleIntegration, integrationJSON)
}

const entryText = "I keep bracing for the next deadline."

func TestPipelineCompletesWithPlan(t *testing.T) {
	mock := model.NewMockInvoker()
	scriptAll(mock)

	store := session.NewInMemoryStore()
	recorder := trace.NewInMemoryRecorder()

	p := New(mock, func(o *Options) {
		o.SessionStore = store
		o.Recorder = recorder
	})

	sess, err := p.Run(context.Background(), RunRequest{UserID: "u-1", Entry: entryText})
	require.NoError(t, err)

	assert.Equal(t, core.StatusComplete, sess.CurrentStatus())
	require.NotNil(t, sess.Plan)
	assert.Equal(t, "Deadline stress is cyclical and manageable.", sess.Plan.Integrated)
	assert.Equal(t, "Recurring stress around deadlines.", sess.Plan.PastSummary)
	assert.Equal(t, "Tense but focused.", sess.Plan.PresentSummary)
	assert.Equal(t, "Pressure eases after the release.", sess.Plan.FutureSummary)
	require.Len(t, sess.Plan.Steps, 1)
	assert.Equal(t, "Block one recovery evening", sess.Plan.Steps[0].Step)
	assert.Equal(t, "2025-07-01T09:00:00Z", sess.Plan.NextCheckIn)
	assert.InDelta(t, 0.75, sess.Plan.Confidence, 1e-9)

	require.NotNil(t, sess.Bundle.Integration)
	assert.Equal(t, core.OutcomeSuccess, sess.Bundle.Integration.Outcome)

	assert.Len(t, mock.Calls(), 4)
	assert.Equal(t, 1, mock.CallCount(core.RoleIntegration))

	stored, err := store.Get(context.Background(), sess.ID)
	require.NoError(t, err)
	assert.Equal(t, core.StatusComplete, stored.CurrentStatus())
	require.NotNil(t, stored.Plan)
	assert.Equal(t, sess.Plan.Integrated, stored.Plan.Integrated)

	msgs, err := recorder.List(context.Background(), sess.ID)
	require.NoError(t, err)
	require.Len(t, msgs, 4)
	assert.Equal(t, "past", msgs[0].Sender)
	assert.Equal(t, "present", msgs[1].Sender)
	assert.Equal(t, "future", msgs[2].Sender)
	assert.Equal(t, trace.IntentReport, msgs[3].Intent)
	assert.Equal(t, "session", msgs[3].Receiver)
}

func TestPipelineStatusProgression(t *testing.T) {
	mock := model.NewMockInvoker()
	scriptAll(mock)

	store := &statusRecordingStore{SessionStore: session.NewInMemoryStore()}
	p := New(mock, func(o *Options) {
		o.SessionStore = store
	})

	_, err := p.Run(context.Background(), RunRequest{Entry: entryText})
	require.NoError(t, err)

	assert.Equal(t, []core.Status{core.StatusPending, core.StatusPartial, core.StatusComplete}, store.statuses)
}

func TestPipelineShortCircuitsWhenEveryRoleErrors(t *testing.T) {
	mock := model.NewMockInvoker()
	mock.RespondWith(core.RoleIntegration, integrationJSON)
	for _, role := range core.FanOutRoles() {
		mock.FailWith(role, errors.New("dial tcp 10.0.0.1:443: connection refused"))
	}

	store := session.NewInMemoryStore()
	p := New(mock, func(o *Options) {
		o.SessionStore = store
	})

	sess, err := p.Run(context.Background(), RunRequest{Entry: entryText})
	require.NoError(t, err)

	assert.Equal(t, core.StatusFailed, sess.CurrentStatus())
	assert.Contains(t, sess.Failure, "fan-out stage")
	assert.Contains(t, sess.Failure, "past error, present error, future error")
	assert.NotContains(t, sess.Failure, "dial tcp")

	assert.Equal(t, 0, mock.CallCount(core.RoleIntegration), "a failed fan-out must not spend an integration call")
	assert.Len(t, mock.Calls(), 3)

	assert.True(t, sess.Bundle.Complete(), "every fan-out slot must still be terminal")
	assert.Nil(t, sess.Plan)
}

func TestPipelineSynthesizesOnceWhenOneRoleTimesOut(t *testing.T) {
	mock := model.NewMockInvoker()
	scriptAll(mock)
	mock.DelayFor(core.RolePresent, 400*time.Millisecond)

	obs := &recordingObserver{}
	p := New(mock, func(o *Options) {
		o.RoleTimeouts = map[core.Role]time.Duration{core.RolePresent: 30 * time.Millisecond}
		o.Observer = obs
	})

	sess, err := p.Run(context.Background(), RunRequest{Entry: entryText})
	require.NoError(t, err)

	assert.Equal(t, core.StatusComplete, sess.CurrentStatus())
	assert.Equal(t, core.OutcomeTimeout, sess.Bundle.Present.Outcome)
	assert.Equal(t, 1, mock.CallCount(core.RoleIntegration))

	require.NotNil(t, sess.Plan)
	assert.Empty(t, sess.Plan.PresentSummary)
	assert.Equal(t, "Recurring stress around deadlines.", sess.Plan.PastSummary)

	synthPrompt := mock.LastPrompt(core.RoleIntegration)
	assert.Contains(t, synthPrompt, "past_summary: Recurring stress around deadlines.")
	assert.Contains(t, synthPrompt, "the present perspective produced no usable output")
	assert.NotContains(t, synthPrompt, "present_summary:")

	var timeouts int
	for _, o := range obs.all() {
		if o.Outcome == core.OutcomeTimeout {
			timeouts++
			assert.Equal(t, core.RolePresent, o.Role)
		}
	}
	assert.Equal(t, 1, timeouts)
}

func TestPipelineBudgetCapsModelCalls(t *testing.T) {
	mock := model.NewMockInvoker()
	scriptAll(mock)

	p := New(mock, func(o *Options) {
		o.MaxModelCalls = 2
	})

	sess, err := p.Run(context.Background(), RunRequest{Entry: entryText})
	require.NoError(t, err)

	assert.Len(t, mock.Calls(), 2, "rejected calls must never reach the provider")
	assert.Equal(t, core.StatusFailed, sess.CurrentStatus())
	assert.Contains(t, sess.Failure, "integration stage")
	assert.True(t, sess.Bundle.Complete())
}

func TestPipelineRecallsAndRemembers(t *testing.T) {
	mock := model.NewMockInvoker()
	scriptAll(mock)

	mem := &fakeMemory{recalled: []string{"Felt similar before exams."}}
	p := New(mock, func(o *Options) {
		o.Memory = mem
	})

	_, err := p.Run(context.Background(), RunRequest{UserID: "u-1", Entry: entryText})
	require.NoError(t, err)

	assert.Contains(t, mock.LastPrompt(core.RolePast), "Felt similar before exams.")
	assert.Contains(t, mock.LastPrompt(core.RoleFuture), "Felt similar before exams.")

	assert.Equal(t, 1, mem.recallCount)
	assert.Equal(t, 1, mem.remembered)
	assert.Equal(t, entryText, mem.lastText)
	assert.Equal(t, "Deadline stress is cyclical and manageable.", mem.lastSummary)
}

func TestPipelineSkipsMemoryWithoutUser(t *testing.T) {
	mock := model.NewMockInvoker()
	scriptAll(mock)

	mem := &fakeMemory{recalled: []string{"should never surface"}}
	p := New(mock, func(o *Options) {
		o.Memory = mem
	})

	_, err := p.Run(context.Background(), RunRequest{Entry: entryText})
	require.NoError(t, err)

	assert.Zero(t, mem.recallCount)
	assert.Zero(t, mem.remembered)
	assert.NotContains(t, mock.LastPrompt(core.RolePast), "should never surface")
}

func TestPipelineStartDetachesFromCaller(t *testing.T) {
	mock := model.NewMockInvoker()
	scriptAll(mock)
	for _, role := range core.FanOutRoles() {
		mock.DelayFor(role, 50*time.Millisecond)
	}

	store := session.NewInMemoryStore()
	p := New(mock, func(o *Options) {
		o.SessionStore = store
	})

	ctx, cancel := context.WithCancel(context.Background())
	id, err := p.Start(ctx, RunRequest{Entry: entryText})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	// Releasing the caller's context must not abort the background run.
	cancel()

	pending, err := store.Get(context.Background(), id)
	require.NoError(t, err)
	assert.False(t, pending.CurrentStatus() == core.StatusFailed)

	require.Eventually(t, func() bool {
		sess, err := store.Get(context.Background(), id)
		return err == nil && sess.CurrentStatus() == core.StatusComplete
	}, 2*time.Second, 10*time.Millisecond)
}

func TestPipelineCancelStopsBackgroundRun(t *testing.T) {
	mock := model.NewMockInvoker()
	scriptAll(mock)
	for _, role := range core.FanOutRoles() {
		mock.DelayFor(role, 5*time.Second)
	}

	store := session.NewInMemoryStore()
	p := New(mock, func(o *Options) {
		o.SessionStore = store
	})

	id, err := p.Start(context.Background(), RunRequest{Entry: entryText})
	require.NoError(t, err)
	require.NoError(t, p.Cancel(id))

	require.Eventually(t, func() bool {
		sess, err := store.Get(context.Background(), id)
		return err == nil && sess.CurrentStatus() == core.StatusFailed
	}, 2*time.Second, 10*time.Millisecond)

	sess, err := store.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Contains(t, sess.Failure, "fan-out stage")

	assert.Error(t, p.Cancel("unknown-session"))
}

func TestPipelineRejectsBlankEntry(t *testing.T) {
	p := New(model.NewMockInvoker())

	_, err := p.Run(context.Background(), RunRequest{Entry: "   "})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "entry text")

	_, err = p.Start(context.Background(), RunRequest{Entry: ""})
	require.Error(t, err)
}

func TestPipelineHonorsProvidedSessionID(t *testing.T) {
	mock := model.NewMockInvoker()
	scriptAll(mock)

	store := session.NewInMemoryStore()
	p := New(mock, func(o *Options) {
		o.SessionStore = store
	})

	sess, err := p.Run(context.Background(), RunRequest{SessionID: "run-42", Entry: entryText})
	require.NoError(t, err)
	assert.Equal(t, "run-42", sess.ID)

	stored, err := store.Get(context.Background(), "run-42")
	require.NoError(t, err)
	assert.Equal(t, core.StatusComplete, stored.CurrentStatus())
}
