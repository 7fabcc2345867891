// Package storage provides SQLite persistence for the credential vault and the
// generation journal.
//
// Information Hiding:
// - SQLite connection management hidden behind SqliteStorage
// - Schema bootstrap encapsulated
// - Thread-safe via sql.DB's built-in connection pooling

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// ErrNoCredential is returned when the vault holds no usable credential.
var ErrNoCredential = errors.New("no usable credential in vault")

// SqliteStorage stores credentials and the generation journal in a SQLite file.
type SqliteStorage struct {
	db  *sql.DB
	now func() time.Time
}

// OpenSqlite opens or creates a SQLite database at the given path.
// Creates parent directories if they don't exist.
func OpenSqlite(path string) (*SqliteStorage, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	return newStorage(db)
}

// NewSqliteInMemory creates an in-memory database (useful for testing).
func NewSqliteInMemory() (*SqliteStorage, error) {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory SQLite: %w", err)
	}
	// Every pooled connection would otherwise see its own empty database.
	db.SetMaxOpenConns(1)

	return newStorage(db)
}

func newStorage(db *sql.DB) (*SqliteStorage, error) {
	s := &SqliteStorage{db: db, now: time.Now}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *SqliteStorage) Close() error {
	return s.db.Close()
}

func (s *SqliteStorage) createSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS credentials (
			id TEXT PRIMARY KEY,
			label TEXT NOT NULL,
			provider TEXT NOT NULL,
			api_key TEXT NOT NULL,
			exhausted_at INTEGER,
			created_at INTEGER NOT NULL,
			UNIQUE(provider, label)
		);

		CREATE INDEX IF NOT EXISTS idx_credentials_provider
		ON credentials(provider, exhausted_at, created_at);

		CREATE TABLE IF NOT EXISTS generations (
			id TEXT PRIMARY KEY,
			operation TEXT NOT NULL,
			mode TEXT NOT NULL,
			outcome TEXT NOT NULL,
			provider TEXT,
			raw_hash TEXT,
			error TEXT,
			duration_ms INTEGER NOT NULL,
			created_at INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_generations_created
		ON generations(created_at DESC);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

func newID() string {
	return uuid.New().String()
}

// nullable converts empty strings to NULL for optional columns.
func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// Ping verifies the database is reachable.
func (s *SqliteStorage) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
