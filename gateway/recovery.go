package gateway

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/richinex/sociomind/credential"
)

// Recovery runs the external credential-selection flow after a credential
// failure. Concurrent callers share one in-flight selection, so the flow is
// never entered twice at once.
type Recovery struct {
	selector credential.Selector
	group    singleflight.Group
	logger   *zap.Logger
}

// NewRecovery wraps selector. A nil logger disables logging.
func NewRecovery(selector credential.Selector, logger *zap.Logger) *Recovery {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Recovery{selector: selector, logger: logger}
}

// Recover awaits credential selection and then returns fault unchanged. It
// never retries the failed request; a new credential only affects later calls.
func (r *Recovery) Recover(ctx context.Context, fault error) error {
	_, err, shared := r.group.Do("select", func() (interface{}, error) {
		return nil, r.selector.SelectCredential(ctx)
	})
	if err != nil {
		r.logger.Warn("credential selection failed", zap.Error(err), zap.Bool("shared", shared))
	} else {
		r.logger.Info("credential selected", zap.Bool("shared", shared))
	}
	return fault
}
