package gateway

import (
	"context"
	"sync"
	"time"

	"github.com/richinex/sociomind/llm"
)

// Tier selects which configured model serves an invocation.
type Tier int

const (
	// TierDefault is the main model for structured and long-form content.
	TierDefault Tier = iota
	// TierFast serves short answers such as definitions.
	TierFast
	// TierSpeech synthesizes audio.
	TierSpeech
)

// Invocation is one backend call. Shape is nil for free text and audio.
type Invocation struct {
	Prompt   Prompt
	Shape    *OutputShape
	Modality llm.Modality
	Voice    string
	Tier     Tier
}

// Invoker issues exactly one backend call per Invoke and returns backend
// faults uninterpreted.
type Invoker interface {
	Invoke(ctx context.Context, inv Invocation) (llm.Response, error)
}

// InvokerFunc adapts a function to the Invoker interface.
type InvokerFunc func(ctx context.Context, inv Invocation) (llm.Response, error)

// Invoke calls f(ctx, inv).
func (f InvokerFunc) Invoke(ctx context.Context, inv Invocation) (llm.Response, error) {
	return f(ctx, inv)
}

// KeySource returns the active API key.
type KeySource interface {
	Key() string
}

// ProviderFactory builds a provider bound to one API key.
type ProviderFactory func(apiKey string) (llm.Provider, error)

// Models names the model used for each tier. Empty entries fall back to the
// provider default.
type Models struct {
	Default string
	Fast    string
	Speech  string
}

func (m Models) forTier(t Tier) string {
	switch t {
	case TierFast:
		if m.Fast != "" {
			return m.Fast
		}
	case TierSpeech:
		return m.Speech
	}
	return m.Default
}

// BackendInvoker calls an llm.Provider built for the currently active key.
// The provider is rebuilt when the key changes, so a credential rotated by
// recovery takes effect on the next request.
type BackendInvoker struct {
	keys    KeySource
	factory ProviderFactory
	models  Models
	timeout time.Duration

	mu       sync.Mutex
	provider llm.Provider
	boundKey string
}

// NewBackendInvoker creates an invoker. A zero timeout leaves deadlines to the caller.
func NewBackendInvoker(keys KeySource, factory ProviderFactory, models Models, timeout time.Duration) *BackendInvoker {
	return &BackendInvoker{
		keys:    keys,
		factory: factory,
		models:  models,
		timeout: timeout,
	}
}

// Invoke sends one request. No retries.
func (b *BackendInvoker) Invoke(ctx context.Context, inv Invocation) (llm.Response, error) {
	provider, err := b.current()
	if err != nil {
		return llm.Response{}, err
	}

	if b.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.timeout)
		defer cancel()
	}

	req := llm.Request{
		Instruction: inv.Prompt.Instruction,
		Task:        inv.Prompt.Task,
		Modality:    inv.Modality,
		Voice:       inv.Voice,
		Model:       b.models.forTier(inv.Tier),
	}
	if inv.Shape != nil {
		req.Format = llm.NewJSONSchemaFormat(inv.Shape.Name, inv.Shape.RawSchema())
		req.Format.JSONSchema.Description = inv.Shape.Description
	} else if inv.Modality != llm.ModalityAudio {
		req.Format = llm.NewTextFormat()
	}

	return provider.Generate(ctx, req)
}

func (b *BackendInvoker) current() (llm.Provider, error) {
	key := b.keys.Key()

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.provider != nil && b.boundKey == key {
		return b.provider, nil
	}
	provider, err := b.factory(key)
	if err != nil {
		return nil, err
	}
	b.provider = provider
	b.boundKey = key
	return provider, nil
}

var _ Invoker = (*BackendInvoker)(nil)
