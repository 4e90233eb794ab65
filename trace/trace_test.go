package trace

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func TestInMemoryRecorderOrdersMessages(t *testing.T) {
	rec := NewInMemoryRecorder()
	ctx := context.Background()

	first := NewMessage("s1", "past", "integration", IntentInform, `{"a":1}`)
	second := NewMessage("s1", "present", "integration", IntentInform, `{"b":2}`)
	other := NewMessage("s2", "future", "integration", IntentInform, `{"c":3}`)

	require.NoError(t, rec.Record(ctx, first))
	require.NoError(t, rec.Record(ctx, second))
	require.NoError(t, rec.Record(ctx, other))

	msgs, err := rec.List(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, first.ID, msgs[0].ID)
	assert.Equal(t, second.ID, msgs[1].ID)
	assert.Equal(t, 1, rec.Len("s2"))
}

func TestInMemoryRecorderListCopies(t *testing.T) {
	rec := NewInMemoryRecorder()
	ctx := context.Background()

	require.NoError(t, rec.Record(ctx, NewMessage("s1", "past", "integration", IntentInform, "p")))

	msgs, err := rec.List(ctx, "s1")
	require.NoError(t, err)
	msgs[0].Payload = "mutated"

	again, err := rec.List(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "p", again[0].Payload)
}

func TestInMemoryRecorderUnknownSession(t *testing.T) {
	rec := NewInMemoryRecorder()

	msgs, err := rec.List(context.Background(), "missing")
	require.NoError(t, err)
	assert.Empty(t, msgs)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "abcde...", Truncate("abcdefgh", 5))
	assert.Equal(t, "unlimited", Truncate("unlimited", 0))
}

func TestSQLiteRecorderRoundTrip(t *testing.T) {
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "trace.db"))
	require.NoError(t, err)
	defer db.Close()

	rec, err := NewSQLiteRecorder(db)
	require.NoError(t, err)

	ctx := context.Background()
	first := NewMessage("s1", "past", "integration", IntentInform, `{"analysis":"ok"}`)
	second := NewMessage("s1", "integration", "session", IntentReport, `{"plan":[]}`)
	require.NoError(t, rec.Record(ctx, first))
	require.NoError(t, rec.Record(ctx, second))
	require.NoError(t, rec.Record(ctx, NewMessage("s2", "future", "integration", IntentInform, "{}")))

	msgs, err := rec.List(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, msgs, 2)

	assert.Equal(t, first.ID, msgs[0].ID)
	assert.Equal(t, "past", msgs[0].Sender)
	assert.Equal(t, IntentInform, msgs[0].Intent)
	assert.Equal(t, `{"analysis":"ok"}`, msgs[0].Payload)
	assert.True(t, first.At.Equal(msgs[0].At))

	assert.Equal(t, IntentReport, msgs[1].Intent)
	assert.Equal(t, "session", msgs[1].Receiver)

	empty, err := rec.List(ctx, "s3")
	require.NoError(t, err)
	assert.Empty(t, empty)
}
