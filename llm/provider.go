// Package llm provides generative backend abstractions.
//
// Provider is the single wire-level boundary of the content gateway.
// Each provider implementation hides:
// - API client initialization and authentication
// - Translation of the request shape (instruction, task, output format, modality)
// - Provider-specific response extraction
//
// Providers never retry and never interpret faults: errors are returned
// wrapped but otherwise untouched so the caller can classify them.

package llm

import (
	"context"
)

// Provider defines the abstract interface for generative backends.
type Provider interface {
	// Name returns the provider name (for logging/debugging).
	Name() string

	// Model returns the default model being used.
	Model() string

	// Generate issues exactly one backend call.
	Generate(ctx context.Context, req Request) (Response, error)
}
