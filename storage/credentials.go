package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Credential is one stored API key for a provider.
type Credential struct {
	ID          string
	Label       string
	Provider    string
	APIKey      string
	ExhaustedAt *time.Time
	CreatedAt   time.Time
}

// Exhausted reports whether the key has been marked as quota-exhausted or rejected.
func (c Credential) Exhausted() bool {
	return c.ExhaustedAt != nil
}

// Masked returns the key with everything but the last four characters hidden.
func (c Credential) Masked() string {
	if len(c.APIKey) <= 4 {
		return strings.Repeat("*", len(c.APIKey))
	}
	return strings.Repeat("*", 8) + c.APIKey[len(c.APIKey)-4:]
}

// AddCredential stores a key under the given label. Re-adding an existing
// label replaces its key and clears the exhausted mark.
func (s *SqliteStorage) AddCredential(ctx context.Context, provider, label, apiKey string) (Credential, error) {
	provider = strings.ToLower(strings.TrimSpace(provider))
	label = strings.TrimSpace(label)
	apiKey = strings.TrimSpace(apiKey)
	if provider == "" || label == "" || apiKey == "" {
		return Credential{}, fmt.Errorf("provider, label and key are required")
	}

	cred := Credential{
		ID:        newID(),
		Label:     label,
		Provider:  provider,
		APIKey:    apiKey,
		CreatedAt: s.now(),
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO credentials (id, label, provider, api_key, exhausted_at, created_at)
		 VALUES (?, ?, ?, ?, NULL, ?)
		 ON CONFLICT(provider, label) DO UPDATE SET api_key = excluded.api_key, exhausted_at = NULL`,
		cred.ID, cred.Label, cred.Provider, cred.APIKey, cred.CreatedAt.UnixNano(),
	)
	if err != nil {
		return Credential{}, fmt.Errorf("failed to store credential: %w", err)
	}

	return s.CredentialByLabel(ctx, provider, label)
}

// ListCredentials returns all stored keys for a provider, oldest first.
// An empty provider lists every key.
func (s *SqliteStorage) ListCredentials(ctx context.Context, provider string) ([]Credential, error) {
	query := `SELECT id, label, provider, api_key, exhausted_at, created_at FROM credentials`
	var args []interface{}
	if provider != "" {
		query += ` WHERE provider = ?`
		args = append(args, strings.ToLower(provider))
	}
	query += ` ORDER BY created_at ASC, label ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query credentials: %w", err)
	}
	defer rows.Close()

	creds := []Credential{}
	for rows.Next() {
		cred, err := scanCredential(rows)
		if err != nil {
			return nil, err
		}
		creds = append(creds, cred)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating credentials: %w", err)
	}

	return creds, nil
}

// CredentialByLabel loads a single key. Returns ErrNoCredential when absent.
func (s *SqliteStorage) CredentialByLabel(ctx context.Context, provider, label string) (Credential, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, label, provider, api_key, exhausted_at, created_at
		 FROM credentials WHERE provider = ? AND label = ?`,
		strings.ToLower(provider), label,
	)
	cred, err := scanCredential(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Credential{}, fmt.Errorf("%s/%s: %w", provider, label, ErrNoCredential)
	}
	return cred, err
}

// NextCredential returns the oldest non-exhausted key for a provider,
// skipping the label given in except. Returns ErrNoCredential when none remain.
func (s *SqliteStorage) NextCredential(ctx context.Context, provider, except string) (Credential, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, label, provider, api_key, exhausted_at, created_at
		 FROM credentials
		 WHERE provider = ? AND exhausted_at IS NULL AND label != ?
		 ORDER BY created_at ASC, label ASC
		 LIMIT 1`,
		strings.ToLower(provider), except,
	)
	cred, err := scanCredential(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Credential{}, ErrNoCredential
	}
	return cred, err
}

// MarkExhausted flags a key so rotation skips it.
func (s *SqliteStorage) MarkExhausted(ctx context.Context, provider, label string) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE credentials SET exhausted_at = ? WHERE provider = ? AND label = ?`,
		s.now().UnixNano(), strings.ToLower(provider), label,
	)
	if err != nil {
		return fmt.Errorf("failed to mark credential exhausted: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("%s/%s: %w", provider, label, ErrNoCredential)
	}
	return nil
}

// ResetCredentials clears every exhausted mark for a provider.
func (s *SqliteStorage) ResetCredentials(ctx context.Context, provider string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE credentials SET exhausted_at = NULL WHERE provider = ?`,
		strings.ToLower(provider),
	)
	if err != nil {
		return fmt.Errorf("failed to reset credentials: %w", err)
	}
	return nil
}

// DeleteCredential removes a stored key.
func (s *SqliteStorage) DeleteCredential(ctx context.Context, provider, label string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM credentials WHERE provider = ? AND label = ?`,
		strings.ToLower(provider), label,
	)
	if err != nil {
		return fmt.Errorf("failed to delete credential: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanCredential(row rowScanner) (Credential, error) {
	var (
		cred      Credential
		exhausted sql.NullInt64
		created   int64
	)
	if err := row.Scan(&cred.ID, &cred.Label, &cred.Provider, &cred.APIKey, &exhausted, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Credential{}, err
		}
		return Credential{}, fmt.Errorf("failed to scan credential: %w", err)
	}
	cred.CreatedAt = time.Unix(0, created)
	if exhausted.Valid {
		t := time.Unix(0, exhausted.Int64)
		cred.ExhaustedAt = &t
	}
	return cred, nil
}
