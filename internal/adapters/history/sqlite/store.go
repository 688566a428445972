// Package sqlite keeps the run history in a local SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bnema/labrecruits-gym/internal/domain"
	"github.com/bnema/labrecruits-gym/internal/ports"
	"github.com/mitchellh/go-homedir"
	_ "modernc.org/sqlite"
)

const defaultListLimit = 20

type Store struct {
	db *sql.DB
}

var _ ports.RunHistory = (*Store)(nil)

// Open opens (creating if needed) the database at path and applies the schema.
func Open(ctx context.Context, path string) (*Store, error) {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return nil, fmt.Errorf("expand history path: %w", err)
	}
	if expanded != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(expanded), 0o700); err != nil {
			return nil, fmt.Errorf("create history directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", expanded)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.Init(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Init(ctx context.Context) error {
	ddl := []string{
		`PRAGMA journal_mode=WAL;`,
		`PRAGMA busy_timeout=5000;`,
		`CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL UNIQUE,
			level TEXT NOT NULL,
			strategy TEXT NOT NULL,
			outcome TEXT NOT NULL,
			exit_code INTEGER NOT NULL,
			elapsed_ms INTEGER NOT NULL,
			relations INTEGER NOT NULL,
			report_path TEXT,
			error TEXT,
			started_at TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);`,
		`CREATE INDEX IF NOT EXISTS idx_runs_level ON runs(level);`,
	}
	for _, stmt := range ddl {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init history schema: %w", err)
		}
	}
	return nil
}

func (s *Store) Record(ctx context.Context, run domain.RunRecord) error {
	if run.ID == "" {
		return errors.New("run id is required")
	}

	_, err := s.db.ExecContext(ctx, `INSERT INTO runs
		(run_id, level, strategy, outcome, exit_code, elapsed_ms, relations, report_path, error, started_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID,
		run.Level,
		run.Strategy,
		string(run.Outcome),
		run.ExitCode,
		run.Elapsed.Milliseconds(),
		run.Relations,
		nullString(run.ReportPath),
		nullString(run.Error),
		run.StartedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("record run %s: %w", run.ID, err)
	}
	return nil
}

// List returns the most recent runs first. A non-positive limit uses the default.
func (s *Store) List(ctx context.Context, limit int) ([]domain.RunRecord, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}

	rows, err := s.db.QueryContext(ctx, `SELECT
		run_id, level, strategy, outcome, exit_code, elapsed_ms, relations, report_path, error, started_at
		FROM runs ORDER BY started_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []domain.RunRecord
	for rows.Next() {
		var (
			run        domain.RunRecord
			outcome    string
			elapsedMS  int64
			reportPath sql.NullString
			runErr     sql.NullString
			startedAt  string
		)
		if err := rows.Scan(&run.ID, &run.Level, &run.Strategy, &outcome, &run.ExitCode, &elapsedMS,
			&run.Relations, &reportPath, &runErr, &startedAt); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}

		run.Outcome = domain.Outcome(outcome)
		run.Elapsed = time.Duration(elapsedMS) * time.Millisecond
		run.ReportPath = reportPath.String
		run.Error = runErr.String
		if run.StartedAt, err = time.Parse(time.RFC3339Nano, startedAt); err != nil {
			return nil, fmt.Errorf("parse started_at of run %s: %w", run.ID, err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return runs, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func nullString(v string) sql.NullString {
	return sql.NullString{String: v, Valid: v != ""}
}
