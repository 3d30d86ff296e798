// Package history keeps a local record of past triage runs in a small
// SQLite database, so an operator can compare today's findings with last
// week's.
package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id         TEXT PRIMARY KEY,
	tool       TEXT NOT NULL,
	input_path TEXT NOT NULL,
	summary    TEXT NOT NULL,
	severity   TEXT NOT NULL,
	exit_code  INTEGER NOT NULL,
	created_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at);
`

// Run is one recorded invocation of a triage tool.
type Run struct {
	ID        string
	Tool      string // "gc" or "thread"
	InputPath string
	Summary   string
	Severity  string
	ExitCode  int
	CreatedAt time.Time
}

// Store wraps the run-history database.
type Store struct {
	db *sql.DB
}

// Open creates (or opens) the history database at path, creating parent
// directories as needed.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize history schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Record stores one run, assigning it an id and timestamp.
func (s *Store) Record(run Run) (Run, error) {
	run.ID = uuid.NewString()
	run.CreatedAt = time.Now().UTC()

	_, err := s.db.Exec(
		`INSERT INTO runs (id, tool, input_path, summary, severity, exit_code, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Tool, run.InputPath, run.Summary, run.Severity, run.ExitCode, run.CreatedAt,
	)
	if err != nil {
		return Run{}, fmt.Errorf("failed to record run: %w", err)
	}
	return run, nil
}

// Recent returns the most recent runs, newest first.
func (s *Store) Recent(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.Query(
		`SELECT id, tool, input_path, summary, severity, exit_code, created_at
		 FROM runs ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.Tool, &r.InputPath, &r.Summary, &r.Severity, &r.ExitCode, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Clear deletes all recorded runs and returns how many were removed.
func (s *Store) Clear() (int64, error) {
	res, err := s.db.Exec(`DELETE FROM runs`)
	if err != nil {
		return 0, fmt.Errorf("failed to clear runs: %w", err)
	}
	return res.RowsAffected()
}

// ForInput returns past runs for the same input file, newest first, so
// repeated triage of one service's logs can be compared over time.
func (s *Store) ForInput(inputPath string, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.Query(
		`SELECT id, tool, input_path, summary, severity, exit_code, created_at
		 FROM runs WHERE input_path = ? ORDER BY created_at DESC, rowid DESC LIMIT ?`, inputPath, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.Tool, &r.InputPath, &r.Summary, &r.Severity, &r.ExitCode, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
