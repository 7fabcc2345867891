package credential

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/richinex/sociomind/config"
	"github.com/richinex/sociomind/storage"
)

// ErrNoCredential is returned when no selector could supply a usable key.
var ErrNoCredential = storage.ErrNoCredential

// KeyRing is the persistence a Vault rotates through.
type KeyRing interface {
	CredentialByLabel(ctx context.Context, provider, label string) (storage.Credential, error)
	NextCredential(ctx context.Context, provider, except string) (storage.Credential, error)
	MarkExhausted(ctx context.Context, provider, label string) error
}

// Vault selects credentials from a stored key ring. On selection the active
// key is marked exhausted and the oldest remaining key for the provider
// becomes active. When the ring is empty the State is cleared.
type Vault struct {
	ring     KeyRing
	state    *State
	provider string
	logger   *zap.Logger
}

// NewVault creates a Vault for one provider. A nil logger disables logging.
func NewVault(ring KeyRing, state *State, provider string, logger *zap.Logger) *Vault {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Vault{
		ring:     ring,
		state:    state,
		provider: provider,
		logger:   logger.Named("vault"),
	}
}

// Activate makes the stored key with the given label active.
func (v *Vault) Activate(ctx context.Context, label string) error {
	cred, err := v.ring.CredentialByLabel(ctx, v.provider, label)
	if err != nil {
		return err
	}
	v.state.Set(cred.APIKey, cred.Label)
	v.logger.Info("credential activated", zap.String("label", cred.Label), zap.String("provider", v.provider))
	return nil
}

// Bootstrap activates the oldest usable stored key when the State has none.
// It is a no-op when a usable key is already active or the ring is empty.
func (v *Vault) Bootstrap(ctx context.Context) error {
	if !config.IsPlaceholderKey(v.state.Key()) {
		return nil
	}
	cred, err := v.ring.NextCredential(ctx, v.provider, "")
	if errors.Is(err, storage.ErrNoCredential) {
		return nil
	}
	if err != nil {
		return err
	}
	v.state.Set(cred.APIKey, cred.Label)
	v.logger.Info("credential loaded from vault", zap.String("label", cred.Label))
	return nil
}

// SelectCredential rotates to the next stored key.
func (v *Vault) SelectCredential(ctx context.Context) error {
	current := v.state.Label()
	if current != "" {
		if err := v.ring.MarkExhausted(ctx, v.provider, current); err != nil && !errors.Is(err, storage.ErrNoCredential) {
			return fmt.Errorf("vault: %w", err)
		}
		v.logger.Warn("credential marked exhausted", zap.String("label", current))
	}

	next, err := v.ring.NextCredential(ctx, v.provider, current)
	if errors.Is(err, storage.ErrNoCredential) {
		v.state.Clear()
		v.logger.Warn("credential vault empty, switching to offline mode", zap.String("provider", v.provider))
		return fmt.Errorf("vault: %w", ErrNoCredential)
	}
	if err != nil {
		return fmt.Errorf("vault: %w", err)
	}

	v.state.Set(next.APIKey, next.Label)
	v.logger.Info("credential rotated", zap.String("from", current), zap.String("to", next.Label))
	return nil
}

var _ Selector = (*Vault)(nil)
