package session

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chronosynth/chronosynth/core"
	"github.com/chronosynth/chronosynth/internal/testutil"
)

// Interface compliance (compile-time assertions).
var (
	_ core.SessionStore = (*InMemoryStore)(nil)
	_ core.SessionStore = (*SQLiteStore)(nil)
)

func TestInMemoryStorePutGet(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()

	sess := testutil.NewSessionBuilder("s-1").User("u-1").Completed(nil).Build()
	require.NoError(t, store.Put(ctx, sess))

	got, err := store.Get(ctx, "s-1")
	require.NoError(t, err)
	assert.Equal(t, "u-1", got.UserID)
	assert.Equal(t, core.StatusComplete, got.CurrentStatus())
	require.NotNil(t, got.Plan)
	assert.Equal(t, sess.Plan.Integrated, got.Plan.Integrated)
}

func TestInMemoryStoreIsolatesCallers(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()

	sess := testutil.NewSessionBuilder("s-1").Completed(nil).Build()
	require.NoError(t, store.Put(ctx, sess))

	// Mutating either the original or a fetched copy must not leak into
	// the stored snapshot.
	sess.Plan.Integrated = "mutated after put"
	first, err := store.Get(ctx, "s-1")
	require.NoError(t, err)
	assert.Equal(t, "Canned integrated summary.", first.Plan.Integrated)

	first.Plan.Integrated = "mutated after get"
	second, err := store.Get(ctx, "s-1")
	require.NoError(t, err)
	assert.Equal(t, "Canned integrated summary.", second.Plan.Integrated)
}

func TestInMemoryStoreGetUnknown(t *testing.T) {
	store := NewInMemoryStore()

	_, err := store.Get(context.Background(), "missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrSessionNotFound)
}

func TestInMemoryStoreRejectsEmptyID(t *testing.T) {
	store := NewInMemoryStore()

	err := store.Put(context.Background(), core.NewSession("", "u-1"))
	require.Error(t, err)
}

func TestInMemoryStorePauseFlag(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, testutil.NewSessionBuilder("s-1").Build()))
	require.NoError(t, store.SetPaused(ctx, "s-1", true))

	got, err := store.Get(ctx, "s-1")
	require.NoError(t, err)
	assert.True(t, got.IsPaused())

	require.NoError(t, store.SetPaused(ctx, "s-1", false))
	got, err = store.Get(ctx, "s-1")
	require.NoError(t, err)
	assert.False(t, got.IsPaused())

	assert.ErrorIs(t, store.SetPaused(ctx, "missing", true), core.ErrSessionNotFound)
}

func TestInMemoryStoreCheckpoints(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, testutil.NewSessionBuilder("s-1").Build()))
	require.NoError(t, store.AddCheckpoint(ctx, "s-1", core.Checkpoint{Stage: "grounding", Note: "completed"}))
	require.NoError(t, store.AddCheckpoint(ctx, "s-1", core.Checkpoint{Stage: "awareness", Note: "completed"}))

	got, err := store.Get(ctx, "s-1")
	require.NoError(t, err)
	require.NotNil(t, got.Journey)
	assert.Equal(t, "awareness", got.Journey.Stage)
	require.Len(t, got.Journey.Checkpoints, 2)
	assert.Equal(t, "grounding", got.Journey.Checkpoints[0].Stage)

	assert.ErrorIs(t, store.AddCheckpoint(ctx, "missing", core.Checkpoint{Stage: "grounding"}), core.ErrSessionNotFound)
}

func TestInMemoryStoreDeleteUserData(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, testutil.NewSessionBuilder("s-1").User("u-1").Build()))
	require.NoError(t, store.Put(ctx, testutil.NewSessionBuilder("s-2").User("u-1").Build()))
	require.NoError(t, store.Put(ctx, testutil.NewSessionBuilder("s-3").User("u-2").Build()))

	deleted, err := store.DeleteUserData(ctx, "u-1")
	require.NoError(t, err)
	assert.Equal(t, 2, deleted)
	assert.Equal(t, 1, store.Len())

	_, err = store.Get(ctx, "s-1")
	assert.ErrorIs(t, err, core.ErrSessionNotFound)

	_, err = store.Get(ctx, "s-3")
	assert.NoError(t, err)
}
