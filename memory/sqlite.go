package memory

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"time"
)

// SQLiteStore persists entries in a SQLite table. Embeddings are stored
// as JSON and similarity is ranked in process, which keeps the store free
// of vector-index extensions and is plenty for per-user entry counts.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates the memories table if needed and returns a store
// backed by db. The caller owns the database handle.
func NewSQLiteStore(db *sql.DB) (*SQLiteStore, error) {
	const schema = `
	CREATE TABLE IF NOT EXISTS memories (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id TEXT NOT NULL,
		text TEXT NOT NULL,
		summary TEXT NOT NULL,
		embedding TEXT NOT NULL,
		ts INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_memories_user ON memories(user_id, ts);
	`

	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("create memories schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Save implements Store.
func (s *SQLiteStore) Save(ctx context.Context, e Entry) (int64, error) {
	embedding, err := json.Marshal(e.Embedding)
	if err != nil {
		return 0, fmt.Errorf("marshal embedding: %w", err)
	}

	at := e.At
	if at.IsZero() {
		at = time.Now().UTC()
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO memories (user_id, text, summary, embedding, ts) VALUES (?, ?, ?, ?, ?)`,
		e.UserID, e.Text, e.Summary, string(embedding), at.UnixNano(),
	)
	if err != nil {
		return 0, fmt.Errorf("insert memory: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("memory insert id: %w", err)
	}

	return id, nil
}

// Search implements Store.
func (s *SQLiteStore) Search(ctx context.Context, userID string, query []float32, limit int) ([]Entry, error) {
	entries, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	type scored struct {
		entry Entry
		score float64
	}

	var candidates []scored
	for _, e := range entries {
		if len(e.Embedding) == 0 {
			continue
		}
		candidates = append(candidates, scored{entry: e, score: cosine(query, e.Embedding)})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	out := make([]Entry, 0, limit)
	for _, c := range candidates {
		if len(out) >= limit {
			break
		}
		out = append(out, c.entry)
	}

	return out, nil
}

// Recent implements Store.
func (s *SQLiteStore) Recent(ctx context.Context, userID string, limit int) ([]Entry, error) {
	const query = `
	SELECT id, user_id, text, summary, embedding, ts
	FROM memories WHERE user_id = ? ORDER BY ts DESC, id DESC LIMIT ?`

	rows, err := s.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent memories: %w", err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

// PurgeUser implements Store.
func (s *SQLiteStore) PurgeUser(ctx context.Context, userID string) (int, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM memories WHERE user_id = ?`, userID)
	if err != nil {
		return 0, fmt.Errorf("delete user memories: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("purge rows affected: %w", err)
	}

	return int(rows), nil
}

func (s *SQLiteStore) load(ctx context.Context, userID string) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, text, summary, embedding, ts FROM memories WHERE user_id = ?`, userID)
	if err != nil {
		return nil, fmt.Errorf("query memories: %w", err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

func scanEntries(rows *sql.Rows) ([]Entry, error) {
	var out []Entry
	for rows.Next() {
		var (
			e         Entry
			embedding string
			ts        int64
		)
		if err := rows.Scan(&e.ID, &e.UserID, &e.Text, &e.Summary, &embedding, &ts); err != nil {
			return nil, fmt.Errorf("scan memory row: %w", err)
		}
		if err := json.Unmarshal([]byte(embedding), &e.Embedding); err != nil {
			return nil, fmt.Errorf("decode embedding: %w", err)
		}
		e.At = time.Unix(0, ts).UTC()
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate memories: %w", err)
	}

	return out, nil
}
