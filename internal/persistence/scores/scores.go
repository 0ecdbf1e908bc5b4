// Package scores keeps finished runs in a local SQLite database.
package scores

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

var ErrEmptyPath = errors.New("empty score db path")

type Run struct {
	Level      string
	Score      int
	Duration   time.Duration
	FinishedAt time.Time
}

type Board struct {
	db *sql.DB
}

// Open creates the database at path if needed. ":memory:" opens a
// throwaway board.
func Open(path string) (*Board, error) {
	if path == "" {
		return nil, ErrEmptyPath
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, err
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init score schema: %w", err)
	}
	return &Board{db: db}, nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		"PRAGMA busy_timeout=5000;",
		`CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			level TEXT NOT NULL,
			score INTEGER NOT NULL,
			duration_ms INTEGER NOT NULL,
			finished_at TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_runs_level_score ON runs(level, score DESC, duration_ms ASC);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

func (b *Board) Record(ctx context.Context, r Run) error {
	if r.FinishedAt.IsZero() {
		r.FinishedAt = time.Now()
	}
	_, err := b.db.ExecContext(ctx,
		`INSERT INTO runs(level, score, duration_ms, finished_at) VALUES(?, ?, ?, ?)`,
		r.Level, r.Score, r.Duration.Milliseconds(), r.FinishedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("record run: %w", err)
	}
	return nil
}

// Best returns up to limit runs of level, highest score first. Ties go to
// the faster run, then the earlier one.
func (b *Board) Best(ctx context.Context, level string, limit int) ([]Run, error) {
	if limit <= 0 {
		return nil, nil
	}
	rows, err := b.db.QueryContext(ctx,
		`SELECT level, score, duration_ms, finished_at FROM runs
		WHERE level = ?
		ORDER BY score DESC, duration_ms ASC, id ASC
		LIMIT ?`, level, limit)
	if err != nil {
		return nil, fmt.Errorf("query best runs: %w", err)
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var (
			r        Run
			ms       int64
			finished string
		)
		if err := rows.Scan(&r.Level, &r.Score, &ms, &finished); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		r.Duration = time.Duration(ms) * time.Millisecond
		if r.FinishedAt, err = time.Parse(time.RFC3339Nano, finished); err != nil {
			return nil, fmt.Errorf("parse finished_at %q: %w", finished, err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (b *Board) Close() error {
	if b == nil || b.db == nil {
		return nil
	}
	return b.db.Close()
}
