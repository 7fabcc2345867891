// Package credential holds the active backend credential and the selectors
// that replace it after an authentication or quota failure.
//
// Information Hiding:
// - The active key is process-wide shared state guarded by a RWMutex
// - Key rotation policy (vault, interactive prompt) hidden behind Selector
// - Placeholder and demo detection delegated to config
package credential

import (
	"context"
	"sync"

	"github.com/richinex/sociomind/config"
)

// Store answers whether a usable credential is configured.
type Store interface {
	HasCredential() bool
}

// Selector obtains a fresh credential, typically after the current one was
// rejected. Implementations update the shared State before returning.
type Selector interface {
	SelectCredential(ctx context.Context) error
}

// SelectorFunc adapts a function to the Selector interface.
type SelectorFunc func(ctx context.Context) error

// SelectCredential calls f(ctx).
func (f SelectorFunc) SelectCredential(ctx context.Context) error {
	return f(ctx)
}

// Snapshot is a consistent copy of the State at one instant.
type Snapshot struct {
	Key   string
	Label string
	Demo  bool
}

// State is the process-local active credential. Last write wins.
type State struct {
	mu    sync.RWMutex
	key   string
	label string
	demo  bool
}

// NewState creates a State holding key. The label identifies the key in logs
// and in the vault; it may be empty for keys that came from the environment.
func NewState(key, label string) *State {
	return &State{key: key, label: label}
}

// Snapshot returns the current key, label and demo flag together.
func (s *State) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{Key: s.key, Label: s.label, Demo: s.demo}
}

// Key returns the active API key.
func (s *State) Key() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.key
}

// Label returns the vault label of the active key.
func (s *State) Label() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.label
}

// Set replaces the active key.
func (s *State) Set(key, label string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.key = key
	s.label = label
}

// Clear drops the active key, which puts the gateway in offline mode.
func (s *State) Clear() {
	s.Set("", "")
}

// SetDemo forces offline mode regardless of the key.
func (s *State) SetDemo(demo bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.demo = demo
}

// Demo reports whether offline mode is forced.
func (s *State) Demo() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.demo
}

// HasCredential is false when demo mode is forced or the key is empty or a
// placeholder value.
func (s *State) HasCredential() bool {
	snap := s.Snapshot()
	return !snap.Demo && !config.IsPlaceholderKey(snap.Key)
}

var _ Store = (*State)(nil)
