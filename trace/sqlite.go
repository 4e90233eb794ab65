package trace

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// SQLiteRecorder stores the message log in a SQLite table, so a run's
// trace survives process restarts.
type SQLiteRecorder struct {
	db *sql.DB
}

// NewSQLiteRecorder creates the trace table if needed and returns a
// recorder backed by db. The caller owns the database handle.
func NewSQLiteRecorder(db *sql.DB) (*SQLiteRecorder, error) {
	const schema = `
	CREATE TABLE IF NOT EXISTS agent_messages (
		message_id TEXT PRIMARY KEY,
		session_id TEXT NOT NULL,
		sender TEXT NOT NULL,
		receiver TEXT NOT NULL,
		intent TEXT NOT NULL,
		payload TEXT NOT NULL,
		ts INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_agent_messages_session ON agent_messages(session_id, ts);
	`

	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("create trace schema: %w", err)
	}

	return &SQLiteRecorder{db: db}, nil
}

// Record implements Recorder.
func (r *SQLiteRecorder) Record(ctx context.Context, msg Message) error {
	const query = `
	INSERT INTO agent_messages (message_id, session_id, sender, receiver, intent, payload, ts)
	VALUES (?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		msg.ID, msg.SessionID, msg.Sender, msg.Receiver,
		msg.Intent, msg.Payload, msg.At.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("insert trace message: %w", err)
	}

	return nil
}

// List implements Recorder.
func (r *SQLiteRecorder) List(ctx context.Context, sessionID string) ([]Message, error) {
	const query = `
	SELECT message_id, session_id, sender, receiver, intent, payload, ts
	FROM agent_messages WHERE session_id = ? ORDER BY ts, message_id`

	rows, err := r.db.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query trace messages: %w", err)
	}
	defer rows.Close()

	var out []Message
	for rows.Next() {
		var (
			msg Message
			ts  int64
		)
		if err := rows.Scan(&msg.ID, &msg.SessionID, &msg.Sender, &msg.Receiver, &msg.Intent, &msg.Payload, &ts); err != nil {
			return nil, fmt.Errorf("scan trace message: %w", err)
		}
		msg.At = time.Unix(0, ts).UTC()
		out = append(out, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate trace messages: %w", err)
	}

	return out, nil
}
