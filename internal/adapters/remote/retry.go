package remote

import (
	"context"
	"errors"

	"github.com/cenkalti/backoff/v4"

	"github.com/okian/evalsync/pkg/logger"
	"github.com/okian/evalsync/pkg/metrics"
)

// Retrying retries transient failures of another Store with exponential
// backoff. ErrNotFound is returned at once.
type Retrying struct {
	next       Store
	maxRetries uint64
	newBackOff func() backoff.BackOff
	log        logger.Logger
}

var _ Store = (*Retrying)(nil)

// NewRetrying wraps next.
func NewRetrying(next Store, opts ...RetryOption) *Retrying {
	r := &Retrying{
		next:       next,
		maxRetries: 3,
		newBackOff: func() backoff.BackOff { return backoff.NewExponentialBackOff() },
		log:        logger.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Retrying) Fetch(ctx context.Context, leaderboard, dst string) error {
	err := r.do(ctx, "fetch", leaderboard, func() error {
		return r.next.Fetch(ctx, leaderboard, dst)
	})
	switch {
	case err == nil:
		metrics.RecordRemoteOperation(r.next.Name(), "fetch", metrics.ResultOK)
	case errors.Is(err, ErrNotFound):
		metrics.RecordRemoteOperation(r.next.Name(), "fetch", metrics.ResultNotFound)
	default:
		metrics.RecordRemoteOperation(r.next.Name(), "fetch", metrics.ResultError)
	}
	return err
}

func (r *Retrying) Publish(ctx context.Context, leaderboard, src string) error {
	err := r.do(ctx, "publish", leaderboard, func() error {
		return r.next.Publish(ctx, leaderboard, src)
	})
	if err != nil {
		metrics.RecordRemoteOperation(r.next.Name(), "publish", metrics.ResultError)
	} else {
		metrics.RecordRemoteOperation(r.next.Name(), "publish", metrics.ResultOK)
	}
	return err
}

func (r *Retrying) Name() string { return r.next.Name() }

func (r *Retrying) do(ctx context.Context, op, leaderboard string, fn func() error) error {
	b := backoff.WithContext(backoff.WithMaxRetries(r.newBackOff(), r.maxRetries), ctx)
	attempt := 0
	return backoff.Retry(func() error {
		attempt++
		err := fn()
		if err == nil {
			return nil
		}
		if errors.Is(err, ErrNotFound) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return backoff.Permanent(err)
		}
		r.log.Warn(ctx, "remote operation failed",
			logger.String("backend", r.next.Name()),
			logger.String("op", op),
			logger.String("leaderboard", leaderboard),
			logger.Int("attempt", attempt),
			logger.Error(err))
		return err
	}, b)
}
