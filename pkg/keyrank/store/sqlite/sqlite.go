package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/cognicore/keyrank/pkg/keyrank/internalerr"
	"github.com/cognicore/keyrank/pkg/keyrank/store"
)

// timeLayout keeps every created_at the same width so that text order is
// time order.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// sqliteStore implements the Store interface using SQLite
type sqliteStore struct {
	db *sql.DB
}

// OpenSQLite opens a SQLite database with WAL mode enabled.
func OpenSQLite(ctx context.Context, path string) (store.Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", internalerr.ErrStoreUnavailable, err)
	}

	// Enable WAL mode for better concurrency
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %v", internalerr.ErrStoreUnavailable, err)
	}

	// Enable foreign keys
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, err
	}

	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &sqliteStore{db: db}, nil
}

// Close closes the database connection
func (s *sqliteStore) Close() error {
	return s.db.Close()
}

// initSchema creates tables if they don't exist
func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	source TEXT,
	created_at TEXT NOT NULL,
	window_size INTEGER NOT NULL,
	num_keywords INTEGER NOT NULL,
	num_iterations INTEGER NOT NULL,
	damping REAL NOT NULL
);

CREATE TABLE IF NOT EXISTS run_keywords (
	run_id TEXT NOT NULL,
	rank INTEGER NOT NULL,
	phrase TEXT NOT NULL,
	score REAL NOT NULL,
	PRIMARY KEY(run_id, rank),
	FOREIGN KEY(run_id) REFERENCES runs(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at);
CREATE INDEX IF NOT EXISTS idx_run_keywords_phrase ON run_keywords(phrase);
`
	_, err := db.ExecContext(ctx, schema)
	return err
}

// SaveRun inserts or replaces a run and its keywords
func (s *sqliteStore) SaveRun(ctx context.Context, r store.Run) error {
	if r.ID == "" {
		return fmt.Errorf("%w: run without id", internalerr.ErrInvalidInput)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
INSERT INTO runs (id, source, created_at, window_size, num_keywords, num_iterations, damping)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	source=excluded.source,
	created_at=excluded.created_at,
	window_size=excluded.window_size,
	num_keywords=excluded.num_keywords,
	num_iterations=excluded.num_iterations,
	damping=excluded.damping;
`, r.ID, r.Source, r.CreatedAt.UTC().Format(timeLayout),
		r.Params.WindowSize, r.Params.NumKeywords, r.Params.NumIterations, r.Params.Damping)
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM run_keywords WHERE run_id = ?`, r.ID); err != nil {
		return err
	}
	for i, kw := range r.Keywords {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO run_keywords (run_id, rank, phrase, score) VALUES (?, ?, ?, ?)`,
			r.ID, i, kw.Phrase, kw.Score); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// GetRun retrieves a run by ID
func (s *sqliteStore) GetRun(ctx context.Context, id string) (store.Run, bool, error) {
	var r store.Run
	var createdAt string
	err := s.db.QueryRowContext(ctx, `
SELECT id, source, created_at, window_size, num_keywords, num_iterations, damping
FROM runs WHERE id = ?;
`, id).Scan(&r.ID, &r.Source, &createdAt,
		&r.Params.WindowSize, &r.Params.NumKeywords, &r.Params.NumIterations, &r.Params.Damping)
	if err == sql.ErrNoRows {
		return store.Run{}, false, nil
	}
	if err != nil {
		return store.Run{}, false, err
	}
	if r.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
		return store.Run{}, false, fmt.Errorf("run %s: created_at: %w", id, err)
	}

	if r.Keywords, err = s.keywords(ctx, id); err != nil {
		return store.Run{}, false, err
	}
	return r, true, nil
}

// ListRuns returns the most recent runs, newest first
func (s *sqliteStore) ListRuns(ctx context.Context, limit int) ([]store.Run, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx, `
SELECT id, source, created_at, window_size, num_keywords, num_iterations, damping
FROM runs
ORDER BY created_at DESC, id DESC
LIMIT ?;
`, limit)
	if err != nil {
		return nil, err
	}

	var runs []store.Run
	for rows.Next() {
		var r store.Run
		var createdAt string
		if err := rows.Scan(&r.ID, &r.Source, &createdAt,
			&r.Params.WindowSize, &r.Params.NumKeywords, &r.Params.NumIterations, &r.Params.Damping); err != nil {
			rows.Close()
			return nil, err
		}
		if r.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
			rows.Close()
			return nil, fmt.Errorf("run %s: created_at: %w", r.ID, err)
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	for i := range runs {
		if runs[i].Keywords, err = s.keywords(ctx, runs[i].ID); err != nil {
			return nil, err
		}
	}
	return runs, nil
}

// TopPhrases returns the phrases found in the most runs
func (s *sqliteStore) TopPhrases(ctx context.Context, k int) ([]store.PhraseStat, error) {
	if k <= 0 {
		k = 10
	}

	rows, err := s.db.QueryContext(ctx, `
SELECT phrase, COUNT(DISTINCT run_id) AS runs, MAX(score) AS best
FROM run_keywords
GROUP BY phrase
ORDER BY runs DESC, best DESC, phrase ASC
LIMIT ?;
`, k)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stats []store.PhraseStat
	for rows.Next() {
		var st store.PhraseStat
		if err := rows.Scan(&st.Phrase, &st.Runs, &st.MaxScore); err != nil {
			return nil, err
		}
		stats = append(stats, st)
	}
	return stats, rows.Err()
}

func (s *sqliteStore) keywords(ctx context.Context, runID string) ([]store.Keyword, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT phrase, score FROM run_keywords WHERE run_id = ? ORDER BY rank;
`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []store.Keyword
	for rows.Next() {
		var kw store.Keyword
		if err := rows.Scan(&kw.Phrase, &kw.Score); err != nil {
			return nil, err
		}
		out = append(out, kw)
	}
	return out, rows.Err()
}
