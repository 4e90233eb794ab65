package evaluation

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// SQLiteStore persists feedback and consent in SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore prepares the evaluation tables on the given database.
func NewSQLiteStore(db *sql.DB) (*SQLiteStore, error) {
	s := &SQLiteStore{db: db}
	if err := s.initSchema(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) initSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS evaluations (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL,
			user_id    TEXT NOT NULL,
			rating     INTEGER NOT NULL,
			comment    TEXT NOT NULL DEFAULT '',
			ts         INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_evaluations_user ON evaluations(user_id, ts);

		CREATE TABLE IF NOT EXISTS consents (
			user_id TEXT PRIMARY KEY,
			granted INTEGER NOT NULL,
			ts      INTEGER NOT NULL
		);
	`)
	if err != nil {
		return fmt.Errorf("create evaluation tables: %w", err)
	}
	return nil
}

// Submit validates and stores one feedback row, returning its id.
func (s *SQLiteStore) Submit(ctx context.Context, fb Feedback) (int64, error) {
	if err := validate(fb); err != nil {
		return 0, err
	}
	if fb.At.IsZero() {
		fb.At = time.Now().UTC()
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO evaluations (session_id, user_id, rating, comment, ts)
		VALUES (?, ?, ?, ?, ?)
	`, fb.SessionID, fb.UserID, fb.Rating, fb.Comment, fb.At.UnixNano())
	if err != nil {
		return 0, fmt.Errorf("insert feedback: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("read feedback id: %w", err)
	}
	return id, nil
}

// DailySummary reports the count and average rating of the user's feedback
// submitted within the trailing 24 hours.
func (s *SQLiteStore) DailySummary(ctx context.Context, userID string) (Summary, error) {
	cutoff := time.Now().Add(-summaryWindow).UnixNano()

	sum := Summary{UserID: userID}
	var avg sql.NullFloat64
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*), AVG(rating)
		FROM evaluations
		WHERE user_id = ? AND ts >= ?
	`, userID, cutoff).Scan(&sum.Count, &avg)
	if err != nil {
		return Summary{}, fmt.Errorf("aggregate feedback: %w", err)
	}
	if avg.Valid {
		sum.Average = avg.Float64
	}
	return sum, nil
}

// SetConsent records whether the user allows long-term memory.
func (s *SQLiteStore) SetConsent(ctx context.Context, userID string, granted bool) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO consents (user_id, granted, ts)
		VALUES (?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			granted = excluded.granted,
			ts      = excluded.ts
	`, userID, boolToInt(granted), time.Now().UTC().UnixNano())
	if err != nil {
		return fmt.Errorf("upsert consent: %w", err)
	}
	return nil
}

// Consent reports the user's recorded decision, defaulting to false.
func (s *SQLiteStore) Consent(ctx context.Context, userID string) (bool, error) {
	var granted int
	err := s.db.QueryRowContext(ctx, `
		SELECT granted FROM consents WHERE user_id = ?
	`, userID).Scan(&granted)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("query consent: %w", err)
	}
	return granted != 0, nil
}

// PurgeUser removes the user's feedback and consent rows.
func (s *SQLiteStore) PurgeUser(ctx context.Context, userID string) (int, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM evaluations WHERE user_id = ?`, userID)
	if err != nil {
		return 0, fmt.Errorf("delete feedback: %w", err)
	}
	removed, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("count deleted feedback: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM consents WHERE user_id = ?`, userID); err != nil {
		return 0, fmt.Errorf("delete consent: %w", err)
	}
	return int(removed), nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
