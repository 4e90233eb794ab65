package journey

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chronosynth/chronosynth/core"
	"github.com/chronosynth/chronosynth/model"
	"github.com/chronosynth/chronosynth/session"
)

const journeyEntry = "I want to stop bracing for bad news."

func seedSession(t *testing.T, store core.SessionStore, id string) {
	t.Helper()
	sess := core.NewSession(id, "u1")
	sess.SetInput(journeyEntry)
	require.NoError(t, store.Put(context.Background(), sess))
}

func checkpointStages(sess *core.Session) []string {
	if sess.Journey == nil {
		return nil
	}
	stages := make([]string, 0, len(sess.Journey.Checkpoints))
	for _, cp := range sess.Journey.Checkpoints {
		stages = append(stages, cp.Stage)
	}
	return stages
}

func TestRunnerWalksEveryStageInOrder(t *testing.T) {
	ctx := context.Background()
	store := session.NewInMemoryStore()
	seedSession(t, store, "walk-1")

	mock := model.NewMockInvoker()
	mock.RespondWith(core.RoleIntegration, "Take three slow breaths.")

	runner := NewRunner(mock, store)
	require.NoError(t, runner.Run(ctx, "walk-1"))

	sess, err := store.Get(ctx, "walk-1")
	require.NoError(t, err)
	require.NotNil(t, sess.Journey)

	assert.True(t, sess.Journey.Done)
	assert.Equal(t, Stages(), checkpointStages(sess))
	assert.Equal(t, StageIntegration, sess.Journey.Stage)
	for _, cp := range sess.Journey.Checkpoints {
		assert.Equal(t, "Take three slow breaths.", cp.Note)
		assert.False(t, cp.At.IsZero())
	}

	assert.Equal(t, len(Stages()), mock.CallCount(core.RoleIntegration))
	assert.Contains(t, mock.LastPrompt(core.RoleIntegration), "Stage: integration")
	assert.Contains(t, mock.LastPrompt(core.RoleIntegration), journeyEntry)
}

func TestRunnerFallsBackWithoutInvoker(t *testing.T) {
	ctx := context.Background()
	store := session.NewInMemoryStore()
	seedSession(t, store, "walk-2")

	runner := NewRunner(nil, store)
	require.NoError(t, runner.Run(ctx, "walk-2"))

	sess, err := store.Get(ctx, "walk-2")
	require.NoError(t, err)
	require.NotNil(t, sess.Journey)
	assert.True(t, sess.Journey.Done)
	assert.Equal(t, "Completed the grounding stage.", sess.Journey.Checkpoints[0].Note)
}

func TestRunnerDegradesWhenGuidanceFails(t *testing.T) {
	ctx := context.Background()
	store := session.NewInMemoryStore()
	seedSession(t, store, "walk-3")

	mock := model.NewMockInvoker()
	mock.FailWith(core.RoleIntegration, errors.New("dial tcp: connection refused"))

	runner := NewRunner(mock, store)
	require.NoError(t, runner.Run(ctx, "walk-3"))

	sess, err := store.Get(ctx, "walk-3")
	require.NoError(t, err)
	require.NotNil(t, sess.Journey)
	assert.True(t, sess.Journey.Done)
	assert.Equal(t, Stages(), checkpointStages(sess))
	assert.Equal(t, "Completed the reframing stage.", sess.Journey.Checkpoints[3].Note)
}

func TestRunnerBlocksWhilePausedThenResumes(t *testing.T) {
	ctx := context.Background()
	store := session.NewInMemoryStore()
	seedSession(t, store, "walk-4")
	require.NoError(t, store.SetPaused(ctx, "walk-4", true))

	runner := NewRunner(nil, store, func(o *Options) {
		o.PauseInterval = 10 * time.Millisecond
	})

	callerCtx, cancelCaller := context.WithCancel(ctx)
	jobID, err := runner.Start(callerCtx, "walk-4")
	require.NoError(t, err)
	assert.NotEmpty(t, jobID)
	cancelCaller()

	// Suspended before the first stage: nothing may be checkpointed.
	time.Sleep(60 * time.Millisecond)
	sess, err := store.Get(ctx, "walk-4")
	require.NoError(t, err)
	assert.Empty(t, checkpointStages(sess))

	require.NoError(t, store.SetPaused(ctx, "walk-4", false))

	require.Eventually(t, func() bool {
		sess, err := store.Get(ctx, "walk-4")
		return err == nil && sess.Journey != nil && sess.Journey.Done
	}, 2*time.Second, 10*time.Millisecond)

	sess, err = store.Get(ctx, "walk-4")
	require.NoError(t, err)
	assert.Equal(t, Stages(), checkpointStages(sess))
}

func TestRunnerResumesAtNextUnvisitedStage(t *testing.T) {
	ctx := context.Background()
	store := session.NewInMemoryStore()
	seedSession(t, store, "walk-5")

	for _, stage := range Stages()[:3] {
		cp := core.Checkpoint{Stage: stage, Note: "done earlier", At: time.Now().UTC()}
		require.NoError(t, store.AddCheckpoint(ctx, "walk-5", cp))
	}

	mock := model.NewMockInvoker()
	runner := NewRunner(mock, store)
	require.NoError(t, runner.Run(ctx, "walk-5"))

	sess, err := store.Get(ctx, "walk-5")
	require.NoError(t, err)
	require.NotNil(t, sess.Journey)
	assert.True(t, sess.Journey.Done)
	assert.Equal(t, Stages(), checkpointStages(sess))
	assert.Equal(t, len(Stages())-3, mock.CallCount(core.RoleIntegration))
	assert.Equal(t, "done earlier", sess.Journey.Checkpoints[0].Note)
}

func TestRunnerCancelWhilePaused(t *testing.T) {
	ctx := context.Background()
	store := session.NewInMemoryStore()
	seedSession(t, store, "walk-6")
	require.NoError(t, store.SetPaused(ctx, "walk-6", true))

	runner := NewRunner(nil, store, func(o *Options) {
		o.PauseInterval = 10 * time.Millisecond
	})

	runCtx, cancel := context.WithCancel(ctx)
	errCh := make(chan error, 1)
	go func() { errCh <- runner.Run(runCtx, "walk-6") }()

	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, core.ErrJourneyPaused)
		assert.ErrorContains(t, err, "grounding")
	case <-time.After(2 * time.Second):
		t.Fatal("run did not stop after cancellation")
	}

	sess, err := store.Get(ctx, "walk-6")
	require.NoError(t, err)
	assert.Empty(t, checkpointStages(sess))
}

func TestRunnerCancelMidStageStopsTheWalk(t *testing.T) {
	ctx := context.Background()
	store := session.NewInMemoryStore()
	seedSession(t, store, "walk-7")

	mock := model.NewMockInvoker()
	mock.DelayFor(core.RoleIntegration, 5*time.Second)

	runner := NewRunner(mock, store)

	runCtx, cancel := context.WithCancel(ctx)
	errCh := make(chan error, 1)
	go func() { errCh <- runner.Run(runCtx, "walk-7") }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, context.Canceled)
		assert.ErrorContains(t, err, "journey stopped at grounding stage")
	case <-time.After(2 * time.Second):
		t.Fatal("run did not stop after cancellation")
	}

	sess, err := store.Get(ctx, "walk-7")
	require.NoError(t, err)
	if sess.Journey != nil {
		assert.False(t, sess.Journey.Done)
	}
}

func TestRunnerRejectsUnknownSession(t *testing.T) {
	ctx := context.Background()
	runner := NewRunner(nil, session.NewInMemoryStore())

	err := runner.Run(ctx, "missing")
	assert.ErrorIs(t, err, core.ErrSessionNotFound)

	_, err = runner.Start(ctx, "missing")
	assert.ErrorIs(t, err, core.ErrSessionNotFound)

	err = runner.Cancel("not-a-job")
	assert.ErrorContains(t, err, "no active journey job")
}
