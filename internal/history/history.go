// Package history records execution results in a local SQLite database.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/MosYCo/test-data-generate/internal/task"
)

// ErrNotFound is returned when no result has the requested ID.
var ErrNotFound = errors.New("execution result not found")

// ExecutionResult describes one run of a task.
type ExecutionResult struct {
	ID            string      `json:"id" yaml:"id"`
	StartTime     time.Time   `json:"start_time" yaml:"start_time"`
	EndTime       time.Time   `json:"end_time" yaml:"end_time"`
	Format        string      `json:"format" yaml:"format"`
	Success       bool        `json:"success" yaml:"success"`
	ErrorMessage  string      `json:"error_message,omitempty" yaml:"error_message,omitempty"`
	Artifacts     []string    `json:"artifacts,omitempty" yaml:"artifacts,omitempty"`
	RowsWritten   int         `json:"rows_written" yaml:"rows_written"`
	RowsLoaded    int64       `json:"rows_loaded,omitempty" yaml:"rows_loaded,omitempty"`
	Configuration task.Config `json:"configuration" yaml:"configuration"`
}

// Status is a short label for the result.
func (r ExecutionResult) Status() string {
	if r.Success {
		return "success"
	}
	return "failed"
}

// Duration is how long the run took.
func (r ExecutionResult) Duration() time.Duration {
	return r.EndTime.Sub(r.StartTime)
}

const schemaSQL = `
CREATE TABLE IF NOT EXISTS executions (
	id            TEXT PRIMARY KEY,
	start_time    INTEGER NOT NULL,
	end_time      INTEGER NOT NULL,
	format        TEXT NOT NULL,
	success       INTEGER NOT NULL,
	error_message TEXT NOT NULL DEFAULT '',
	artifacts     TEXT NOT NULL DEFAULT '[]',
	rows_written  INTEGER NOT NULL DEFAULT 0,
	rows_loaded   INTEGER NOT NULL DEFAULT 0,
	configuration TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_executions_start ON executions (start_time);
`

// Store is a SQLite backed list of execution results.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the history database at path.
func Open(ctx context.Context, path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create history directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize history: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save inserts or replaces a result.
func (s *Store) Save(ctx context.Context, r ExecutionResult) error {
	cfg, err := json.Marshal(r.Configuration)
	if err != nil {
		return fmt.Errorf("failed to encode configuration: %w", err)
	}
	artifacts, err := json.Marshal(r.Artifacts)
	if err != nil {
		return fmt.Errorf("failed to encode artifacts: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO executions
			(id, start_time, end_time, format, success, error_message, artifacts, rows_written, rows_loaded, configuration)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.StartTime.UnixNano(), r.EndTime.UnixNano(), r.Format, r.Success,
		r.ErrorMessage, string(artifacts), r.RowsWritten, r.RowsLoaded, string(cfg))
	if err != nil {
		return fmt.Errorf("failed to save execution %s: %w", r.ID, err)
	}
	return nil
}

const selectColumns = `id, start_time, end_time, format, success, error_message, artifacts, rows_written, rows_loaded, configuration`

// List returns all results, newest first.
func (s *Store) List(ctx context.Context) ([]ExecutionResult, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+selectColumns+` FROM executions ORDER BY start_time DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list executions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []ExecutionResult
	for rows.Next() {
		r, err := scanResult(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

// Get returns the result with the given ID.
func (s *Store) Get(ctx context.Context, id string) (ExecutionResult, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+selectColumns+` FROM executions WHERE id = ?`, id)
	r, err := scanResult(row)
	if errors.Is(err, sql.ErrNoRows) {
		return ExecutionResult{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return r, err
}

// Delete removes the result with the given ID.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM executions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete execution %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanResult(sc scanner) (ExecutionResult, error) {
	var (
		r                 ExecutionResult
		start, end        int64
		artifacts, config string
	)
	if err := sc.Scan(&r.ID, &start, &end, &r.Format, &r.Success, &r.ErrorMessage, &artifacts, &r.RowsWritten, &r.RowsLoaded, &config); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return r, err
		}
		return r, fmt.Errorf("failed to read execution: %w", err)
	}

	r.StartTime = time.Unix(0, start)
	r.EndTime = time.Unix(0, end)
	if err := json.Unmarshal([]byte(artifacts), &r.Artifacts); err != nil {
		return r, fmt.Errorf("execution %s has corrupt artifacts: %w", r.ID, err)
	}
	if err := json.Unmarshal([]byte(config), &r.Configuration); err != nil {
		return r, fmt.Errorf("execution %s has corrupt configuration: %w", r.ID, err)
	}
	return r, nil
}
