package listing

import (
	"context"
	"time"

	"bucket-diff/core/retry"

	"go.uber.org/zap"
)

// Retrying decorates a Source and retries transport failures with exponential backoff.
type Retrying struct {
	next   Source
	config retry.Config
	logger *zap.Logger
}

// NewRetrying wraps next. Only errors matching ErrTransport are retried.
func NewRetrying(next Source, cfg retry.Config, logger *zap.Logger) *Retrying {
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg.Retryable = IsRetryable
	return &Retrying{next: next, config: cfg, logger: logger}
}

// Name returns the name of the wrapped source.
func (r *Retrying) Name() string { return r.next.Name() }

// List fetches a page, retrying transport errors.
func (r *Retrying) List(ctx context.Context, req Request) (*Page, error) {
	cfg := r.config
	cfg.OnRetry = func(attempt int, wait time.Duration, err error) {
		r.logger.Warn("Listing failed, retrying",
			zap.String("backend", r.next.Name()),
			zap.String("bucket", req.Bucket),
			zap.Int("attempt", attempt),
			zap.Duration("wait", wait),
			zap.Error(err))
	}
	return retry.Do(ctx, cfg, func() (*Page, error) {
		return r.next.List(ctx, req)
	})
}
