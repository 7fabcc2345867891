package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func newTestStorage(t *testing.T) *SqliteStorage {
	t.Helper()
	storage, err := NewSqliteInMemory()
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}
	t.Cleanup(func() { storage.Close() })

	// Monotonic clock so created_at ordering is deterministic.
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	tick := 0
	storage.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}
	return storage
}

func TestSqliteStorageAddAndListCredentials(t *testing.T) {
	storage := newTestStorage(t)
	ctx := context.Background()

	if _, err := storage.AddCredential(ctx, "gemini", "primary", "AIza-first"); err != nil {
		t.Fatalf("AddCredential failed: %v", err)
	}
	if _, err := storage.AddCredential(ctx, "Gemini", "backup", "AIza-second"); err != nil {
		t.Fatalf("AddCredential failed: %v", err)
	}
	if _, err := storage.AddCredential(ctx, "openai", "work", "sk-third"); err != nil {
		t.Fatalf("AddCredential failed: %v", err)
	}

	creds, err := storage.ListCredentials(ctx, "gemini")
	if err != nil {
		t.Fatalf("ListCredentials failed: %v", err)
	}
	if len(creds) != 2 {
		t.Fatalf("expected 2 gemini credentials, got %d", len(creds))
	}
	if creds[0].Label != "primary" || creds[1].Label != "backup" {
		t.Errorf("expected oldest first, got %s then %s", creds[0].Label, creds[1].Label)
	}
	if creds[0].ID == "" {
		t.Error("expected generated ID")
	}

	all, err := storage.ListCredentials(ctx, "")
	if err != nil {
		t.Fatalf("ListCredentials failed: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("expected 3 credentials total, got %d", len(all))
	}
}

func TestSqliteStorageAddCredentialRequiresFields(t *testing.T) {
	storage := newTestStorage(t)

	if _, err := storage.AddCredential(context.Background(), "gemini", "", "key"); err == nil {
		t.Error("expected error for empty label")
	}
	if _, err := storage.AddCredential(context.Background(), "gemini", "label", "  "); err == nil {
		t.Error("expected error for empty key")
	}
}

func TestSqliteStorageReAddReplacesKey(t *testing.T) {
	storage := newTestStorage(t)
	ctx := context.Background()

	if _, err := storage.AddCredential(ctx, "gemini", "primary", "old"); err != nil {
		t.Fatalf("AddCredential failed: %v", err)
	}
	if err := storage.MarkExhausted(ctx, "gemini", "primary"); err != nil {
		t.Fatalf("MarkExhausted failed: %v", err)
	}
	cred, err := storage.AddCredential(ctx, "gemini", "primary", "new")
	if err != nil {
		t.Fatalf("AddCredential failed: %v", err)
	}

	if cred.APIKey != "new" {
		t.Errorf("expected replaced key, got %q", cred.APIKey)
	}
	if cred.Exhausted() {
		t.Error("expected exhausted mark to be cleared")
	}
}

func TestSqliteStorageNextCredentialRotation(t *testing.T) {
	storage := newTestStorage(t)
	ctx := context.Background()

	for _, label := range []string{"a", "b", "c"} {
		if _, err := storage.AddCredential(ctx, "gemini", label, "key-"+label); err != nil {
			t.Fatalf("AddCredential failed: %v", err)
		}
	}

	next, err := storage.NextCredential(ctx, "gemini", "a")
	if err != nil {
		t.Fatalf("NextCredential failed: %v", err)
	}
	if next.Label != "b" {
		t.Errorf("expected b, got %s", next.Label)
	}

	if err := storage.MarkExhausted(ctx, "gemini", "b"); err != nil {
		t.Fatalf("MarkExhausted failed: %v", err)
	}
	next, err = storage.NextCredential(ctx, "gemini", "a")
	if err != nil {
		t.Fatalf("NextCredential failed: %v", err)
	}
	if next.Label != "c" {
		t.Errorf("expected c, got %s", next.Label)
	}

	if err := storage.MarkExhausted(ctx, "gemini", "c"); err != nil {
		t.Fatalf("MarkExhausted failed: %v", err)
	}
	if _, err := storage.NextCredential(ctx, "gemini", "a"); !errors.Is(err, ErrNoCredential) {
		t.Errorf("expected ErrNoCredential, got %v", err)
	}

	if err := storage.ResetCredentials(ctx, "gemini"); err != nil {
		t.Fatalf("ResetCredentials failed: %v", err)
	}
	if _, err := storage.NextCredential(ctx, "gemini", "a"); err != nil {
		t.Errorf("expected a key after reset, got %v", err)
	}
}

func TestSqliteStorageMarkExhaustedUnknown(t *testing.T) {
	storage := newTestStorage(t)

	err := storage.MarkExhausted(context.Background(), "gemini", "missing")
	if !errors.Is(err, ErrNoCredential) {
		t.Errorf("expected ErrNoCredential, got %v", err)
	}
}

func TestSqliteStorageDeleteCredential(t *testing.T) {
	storage := newTestStorage(t)
	ctx := context.Background()

	if _, err := storage.AddCredential(ctx, "gemini", "primary", "key"); err != nil {
		t.Fatalf("AddCredential failed: %v", err)
	}
	if err := storage.DeleteCredential(ctx, "gemini", "primary"); err != nil {
		t.Fatalf("DeleteCredential failed: %v", err)
	}
	if _, err := storage.CredentialByLabel(ctx, "gemini", "primary"); !errors.Is(err, ErrNoCredential) {
		t.Errorf("expected ErrNoCredential after delete, got %v", err)
	}
}

func TestCredentialMasked(t *testing.T) {
	cred := Credential{APIKey: "AIzaSyExample1234"}
	if got := cred.Masked(); got != "********1234" {
		t.Errorf("unexpected mask %q", got)
	}
	short := Credential{APIKey: "abc"}
	if got := short.Masked(); got != "***" {
		t.Errorf("unexpected short mask %q", got)
	}
}

func TestSqliteStorageGenerationJournal(t *testing.T) {
	storage := newTestStorage(t)
	ctx := context.Background()

	entries := []Generation{
		{Operation: "quiz", Mode: "live", Outcome: "success", Provider: "gemini", RawHash: "abc", DurationMs: 1200},
		{Operation: "explain", Mode: "offline", Outcome: "success", DurationMs: 0},
		{Operation: "case_study", Mode: "live", Outcome: "transient_failure", Error: "connection reset", DurationMs: 300},
	}
	for _, e := range entries {
		if err := storage.RecordGeneration(ctx, e); err != nil {
			t.Fatalf("RecordGeneration failed: %v", err)
		}
	}

	recent, err := storage.RecentGenerations(ctx, 2)
	if err != nil {
		t.Fatalf("RecentGenerations failed: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(recent))
	}
	if recent[0].Operation != "case_study" {
		t.Errorf("expected newest first, got %s", recent[0].Operation)
	}
	if recent[0].Error != "connection reset" {
		t.Errorf("expected error text, got %q", recent[0].Error)
	}
	if recent[1].Provider != "" || recent[1].RawHash != "" {
		t.Errorf("expected empty optional columns, got %+v", recent[1])
	}
}

func TestOpenSqliteCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "sociomind.db")

	storage, err := OpenSqlite(path)
	if err != nil {
		t.Fatalf("OpenSqlite failed: %v", err)
	}
	defer storage.Close()

	if err := storage.Ping(context.Background()); err != nil {
		t.Errorf("Ping failed: %v", err)
	}
}
