package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/chronosynth/chronosynth/core"
)

// SQLiteStore persists sessions in a SQLite table so results survive
// process restarts. Bundle, plan, and journey state are stored as JSON
// columns; the plan column round-trips byte for byte.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates the sessions table if needed and returns a store
// backed by db. The caller owns the database handle.
func NewSQLiteStore(db *sql.DB) (*SQLiteStore, error) {
	const schema = `
	CREATE TABLE IF NOT EXISTS sessions (
		session_id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		input TEXT NOT NULL,
		status TEXT NOT NULL,
		failure TEXT NOT NULL DEFAULT '',
		bundle_json TEXT NOT NULL,
		plan_json TEXT,
		journey_json TEXT,
		paused INTEGER NOT NULL DEFAULT 0,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_sessions_user ON sessions(user_id);
	`

	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("create sessions schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Put implements core.SessionStore.
func (s *SQLiteStore) Put(ctx context.Context, sess *core.Session) error {
	if sess.ID == "" {
		return fmt.Errorf("session id must not be empty")
	}

	snap := sess.Clone()

	bundleJSON, err := json.Marshal(snap.Bundle)
	if err != nil {
		return fmt.Errorf("marshal bundle: %w", err)
	}

	var planJSON any
	if snap.Plan != nil {
		raw, err := json.Marshal(snap.Plan)
		if err != nil {
			return fmt.Errorf("marshal plan: %w", err)
		}
		planJSON = string(raw)
	}

	var journeyJSON any
	if snap.Journey != nil {
		raw, err := json.Marshal(snap.Journey)
		if err != nil {
			return fmt.Errorf("marshal journey state: %w", err)
		}
		journeyJSON = string(raw)
	}

	const query = `
	INSERT INTO sessions (session_id, user_id, input, status, failure, bundle_json, plan_json, journey_json, paused, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(session_id) DO UPDATE SET
		user_id = excluded.user_id,
		input = excluded.input,
		status = excluded.status,
		failure = excluded.failure,
		bundle_json = excluded.bundle_json,
		plan_json = excluded.plan_json,
		journey_json = excluded.journey_json,
		paused = excluded.paused,
		updated_at = excluded.updated_at`

	_, err = s.db.ExecContext(ctx, query,
		snap.ID, snap.UserID, snap.Input, string(snap.Status), snap.Failure,
		string(bundleJSON), planJSON, journeyJSON, boolToInt(snap.Paused),
		snap.Created.UnixNano(), snap.Updated.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("upsert session: %w", err)
	}

	return nil
}

// Get implements core.SessionStore.
func (s *SQLiteStore) Get(ctx context.Context, id string) (*core.Session, error) {
	const query = `
	SELECT session_id, user_id, input, status, failure, bundle_json, plan_json, journey_json, paused, created_at, updated_at
	FROM sessions WHERE session_id = ?`

	row := s.db.QueryRowContext(ctx, query, id)

	var (
		sess        core.Session
		status      string
		bundleJSON  string
		planJSON    sql.NullString
		journeyJSON sql.NullString
		paused      int
		created     int64
		updated     int64
	)

	err := row.Scan(&sess.ID, &sess.UserID, &sess.Input, &status, &sess.Failure,
		&bundleJSON, &planJSON, &journeyJSON, &paused, &created, &updated)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", core.ErrSessionNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("scan session row: %w", err)
	}

	sess.Status = core.Status(status)
	sess.Paused = paused != 0
	sess.Created = time.Unix(0, created).UTC()
	sess.Updated = time.Unix(0, updated).UTC()

	if err := json.Unmarshal([]byte(bundleJSON), &sess.Bundle); err != nil {
		return nil, fmt.Errorf("decode bundle: %w", err)
	}
	if planJSON.Valid {
		var plan core.Plan
		if err := json.Unmarshal([]byte(planJSON.String), &plan); err != nil {
			return nil, fmt.Errorf("decode plan: %w", err)
		}
		sess.Plan = &plan
	}
	if journeyJSON.Valid {
		var journey core.JourneyState
		if err := json.Unmarshal([]byte(journeyJSON.String), &journey); err != nil {
			return nil, fmt.Errorf("decode journey state: %w", err)
		}
		sess.Journey = &journey
	}

	return &sess, nil
}

// SetPaused implements core.SessionStore.
func (s *SQLiteStore) SetPaused(ctx context.Context, id string, paused bool) error {
	const query = `UPDATE sessions SET paused = ?, updated_at = ? WHERE session_id = ?`

	res, err := s.db.ExecContext(ctx, query, boolToInt(paused), time.Now().UTC().UnixNano(), id)
	if err != nil {
		return fmt.Errorf("update pause flag: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("pause rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", core.ErrSessionNotFound, id)
	}

	return nil
}

// AddCheckpoint implements core.SessionStore. The read-modify-write runs
// in a transaction so concurrent checkpoints never lose entries.
func (s *SQLiteStore) AddCheckpoint(ctx context.Context, id string, cp core.Checkpoint) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin checkpoint tx: %w", err)
	}
	defer tx.Rollback()

	var journeyJSON sql.NullString
	err = tx.QueryRowContext(ctx, `SELECT journey_json FROM sessions WHERE session_id = ?`, id).Scan(&journeyJSON)
	if err == sql.ErrNoRows {
		return fmt.Errorf("%w: %s", core.ErrSessionNotFound, id)
	}
	if err != nil {
		return fmt.Errorf("read journey state: %w", err)
	}

	journey := &core.JourneyState{}
	if journeyJSON.Valid {
		if err := json.Unmarshal([]byte(journeyJSON.String), journey); err != nil {
			return fmt.Errorf("decode journey state: %w", err)
		}
	}
	journey.Stage = cp.Stage
	journey.Checkpoints = append(journey.Checkpoints, cp)

	raw, err := json.Marshal(journey)
	if err != nil {
		return fmt.Errorf("marshal journey state: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE sessions SET journey_json = ?, updated_at = ? WHERE session_id = ?`,
		string(raw), time.Now().UTC().UnixNano(), id,
	)
	if err != nil {
		return fmt.Errorf("write journey state: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit checkpoint: %w", err)
	}

	return nil
}

// DeleteUserData implements core.SessionStore.
func (s *SQLiteStore) DeleteUserData(ctx context.Context, userID string) (int, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE user_id = ?`, userID)
	if err != nil {
		return 0, fmt.Errorf("delete user sessions: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete rows affected: %w", err)
	}

	return int(rows), nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
