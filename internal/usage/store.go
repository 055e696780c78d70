// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package usage keeps a ledger of proxied chat completions.
package usage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ManuGH/launchpad/internal/persistence/sqlite"
)

const schemaVersion = 1

const schema = `
CREATE TABLE IF NOT EXISTS chat_usage (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	request_id TEXT NOT NULL,
	model TEXT NOT NULL,
	status INTEGER NOT NULL,
	prompt_tokens INTEGER NOT NULL DEFAULT 0,
	completion_tokens INTEGER NOT NULL DEFAULT 0,
	latency_ms INTEGER NOT NULL,
	cache_hit BOOLEAN NOT NULL DEFAULT 0,
	created_at_ms INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_chat_usage_created ON chat_usage(created_at_ms);
`

// Entry is one proxied chat request.
type Entry struct {
	RequestID        string
	Model            string
	Status           int // HTTP status returned to the client
	PromptTokens     int
	CompletionTokens int
	Latency          time.Duration
	CacheHit         bool
	CreatedAt        time.Time
}

// ModelSummary aggregates entries for one model.
type ModelSummary struct {
	Model            string  `json:"model"`
	Requests         int64   `json:"requests"`
	Errors           int64   `json:"errors"`
	CacheHits        int64   `json:"cache_hits"`
	PromptTokens     int64   `json:"prompt_tokens"`
	CompletionTokens int64   `json:"completion_tokens"`
	AvgLatencyMS     float64 `json:"avg_latency_ms"`
}

// Store records and aggregates usage entries.
type Store interface {
	Record(ctx context.Context, e Entry) error
	Summary(ctx context.Context, since time.Time) ([]ModelSummary, error)
	Ping(ctx context.Context) error
	Close() error
}

// SqliteStore implements Store using SQLite.
type SqliteStore struct {
	DB *sql.DB
}

// NewSqliteStore opens (and migrates) the ledger at dbPath.
func NewSqliteStore(ctx context.Context, dbPath string) (*SqliteStore, error) {
	db, err := sqlite.Open(ctx, dbPath, sqlite.DefaultConfig())
	if err != nil {
		return nil, err
	}
	if err := sqlite.Migrate(ctx, db, schemaVersion, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("usage store: migration failed: %w", err)
	}
	return &SqliteStore{DB: db}, nil
}

func (s *SqliteStore) Record(ctx context.Context, e Entry) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	_, err := s.DB.ExecContext(ctx, `
	INSERT INTO chat_usage (request_id, model, status, prompt_tokens, completion_tokens, latency_ms, cache_hit, created_at_ms)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.RequestID, e.Model, e.Status, e.PromptTokens, e.CompletionTokens,
		e.Latency.Milliseconds(), e.CacheHit, e.CreatedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("usage store: record: %w", err)
	}
	return nil
}

// Summary returns per-model totals for entries created at or after since, ordered by model.
// Any status outside 2xx counts as an error.
func (s *SqliteStore) Summary(ctx context.Context, since time.Time) ([]ModelSummary, error) {
	rows, err := s.DB.QueryContext(ctx, `
	SELECT model,
		COUNT(*),
		SUM(CASE WHEN status < 200 OR status >= 300 THEN 1 ELSE 0 END),
		SUM(CASE WHEN cache_hit THEN 1 ELSE 0 END),
		SUM(prompt_tokens),
		SUM(completion_tokens),
		AVG(latency_ms)
	FROM chat_usage
	WHERE created_at_ms >= ?
	GROUP BY model
	ORDER BY model`, since.UnixMilli())
	if err != nil {
		return nil, fmt.Errorf("usage store: summary: %w", err)
	}
	defer rows.Close()

	out := []ModelSummary{}
	for rows.Next() {
		var m ModelSummary
		if err := rows.Scan(&m.Model, &m.Requests, &m.Errors, &m.CacheHits,
			&m.PromptTokens, &m.CompletionTokens, &m.AvgLatencyMS); err != nil {
			return nil, fmt.Errorf("usage store: scan summary: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// Ping verifies the database is reachable and structurally sound.
func (s *SqliteStore) Ping(ctx context.Context) error {
	issues, err := sqlite.QuickCheck(ctx, s.DB)
	if err != nil {
		return err
	}
	if len(issues) > 0 {
		return fmt.Errorf("usage store: integrity check failed: %s", issues[0])
	}
	return nil
}

func (s *SqliteStore) Close() error {
	return s.DB.Close()
}

// NopStore discards entries. Used when no ledger path is configured.
type NopStore struct{}

func (NopStore) Record(context.Context, Entry) error { return nil }
func (NopStore) Summary(context.Context, time.Time) ([]ModelSummary, error) {
	return []ModelSummary{}, nil
}
func (NopStore) Ping(context.Context) error { return nil }
func (NopStore) Close() error { return nil }
