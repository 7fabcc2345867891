package gateway

import "github.com/richinex/sociomind/credential"

// Mode selects where a request is served from.
type Mode int

const (
	// ModeOffline serves fixtures without touching the network.
	ModeOffline Mode = iota
	// ModeLive calls the generative backend.
	ModeLive
)

func (m Mode) String() string {
	if m == ModeLive {
		return "live"
	}
	return "offline"
}

// ModeResolver decides between live and offline serving from the current
// credential state. It is evaluated on every call and never caches.
type ModeResolver struct {
	store credential.Store
}

// NewModeResolver creates a resolver reading store. A nil store always
// resolves to ModeOffline.
func NewModeResolver(store credential.Store) ModeResolver {
	return ModeResolver{store: store}
}

// Resolve returns ModeLive only when a usable credential is configured.
func (r ModeResolver) Resolve() Mode {
	if r.store == nil || !r.store.HasCredential() {
		return ModeOffline
	}
	return ModeLive
}
