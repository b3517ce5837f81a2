// Package history records past check runs in a local SQLite database.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/calder-ops/impactcheck/internal/impact"
)

// Entry is one recorded check run.
type Entry struct {
	ID           int64
	Base         string
	Head         string
	BaseSHA      string
	HeadSHA      string
	ImpactLevel  impact.Level
	FindingCount int
	CreatedAt    time.Time
}

// Store is a sqlite-backed run log. Failures here are never allowed to affect
// a check result; callers log and move on.
type Store struct {
	db *sql.DB
}

// Open opens or creates the history database at dbPath.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
	}
	ctx := context.Background()
	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	if err := migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to run schema migration: %w", err)
	}
	return &Store{db: db}, nil
}

func migrate(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			base TEXT NOT NULL,
			head TEXT NOT NULL,
			base_sha TEXT NOT NULL,
			head_sha TEXT NOT NULL,
			impact_level TEXT NOT NULL,
			finding_count INTEGER NOT NULL,
			created_at INTEGER NOT NULL DEFAULT (unixepoch())
		);
		CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at);
	`)
	return err
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Record inserts one run.
func (s *Store) Record(ctx context.Context, entry Entry) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (base, head, base_sha, head_sha, impact_level, finding_count, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		entry.Base, entry.Head, entry.BaseSHA, entry.HeadSHA,
		entry.ImpactLevel.String(), entry.FindingCount, entry.CreatedAt.Unix())
	if err != nil {
		return fmt.Errorf("failed to record run: %w", err)
	}
	return nil
}

// List returns up to limit entries, most recent first.
func (s *Store) List(ctx context.Context, limit int) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, base, head, base_sha, head_sha, impact_level, finding_count, created_at
		 FROM runs ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var level string
		var createdAt int64
		if err := rows.Scan(&e.ID, &e.Base, &e.Head, &e.BaseSHA, &e.HeadSHA,
			&level, &e.FindingCount, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		parsed, err := impact.ParseLevel(level)
		if err != nil {
			return nil, fmt.Errorf("run %d: %w", e.ID, err)
		}
		e.ImpactLevel = parsed
		e.CreatedAt = time.Unix(createdAt, 0)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate runs: %w", err)
	}
	return entries, nil
}
