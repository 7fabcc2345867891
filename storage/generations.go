package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Generation is one journal entry describing how a gateway call ended.
// The journal is write-mostly; it is never consulted to serve a result.
type Generation struct {
	ID         string
	Operation  string
	Mode       string
	Outcome    string
	Provider   string
	RawHash    string
	Error      string
	DurationMs int64
	CreatedAt  time.Time
}

// RecordGeneration appends an entry to the journal. ID and CreatedAt are
// filled in when empty.
func (s *SqliteStorage) RecordGeneration(ctx context.Context, g Generation) error {
	if g.ID == "" {
		g.ID = newID()
	}
	if g.CreatedAt.IsZero() {
		g.CreatedAt = s.now()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO generations (id, operation, mode, outcome, provider, raw_hash, error, duration_ms, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		g.ID, g.Operation, g.Mode, g.Outcome,
		nullable(g.Provider), nullable(g.RawHash), nullable(g.Error),
		g.DurationMs, g.CreatedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("failed to record generation: %w", err)
	}
	return nil
}

// RecentGenerations returns the newest journal entries first.
func (s *SqliteStorage) RecentGenerations(ctx context.Context, limit int) ([]Generation, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, operation, mode, outcome, provider, raw_hash, error, duration_ms, created_at
		 FROM generations
		 ORDER BY created_at DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query generations: %w", err)
	}
	defer rows.Close()

	entries := []Generation{}
	for rows.Next() {
		var (
			g                      Generation
			provider, hash, errMsg sql.NullString
			created                int64
		)
		if err := rows.Scan(&g.ID, &g.Operation, &g.Mode, &g.Outcome, &provider, &hash, &errMsg, &g.DurationMs, &created); err != nil {
			return nil, fmt.Errorf("failed to scan generation: %w", err)
		}
		g.Provider = provider.String
		g.RawHash = hash.String
		g.Error = errMsg.String
		g.CreatedAt = time.Unix(0, created)
		entries = append(entries, g)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating generations: %w", err)
	}

	return entries, nil
}
