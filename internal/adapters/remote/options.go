package remote

import (
	"github.com/cenkalti/backoff/v4"

	"github.com/okian/evalsync/pkg/logger"
)

// RetryOption applies a configuration option to Retrying.
type RetryOption func(*Retrying)

// WithMaxRetries caps retries after the first attempt.
func WithMaxRetries(n int) RetryOption {
	return func(r *Retrying) {
		if n >= 0 {
			r.maxRetries = uint64(n)
		}
	}
}

// WithBackOff sets the backoff policy factory; one policy is created per
// operation.
func WithBackOff(fn func() backoff.BackOff) RetryOption {
	return func(r *Retrying) {
		if fn != nil {
			r.newBackOff = fn
		}
	}
}

// WithLogger sets the logger used for retry warnings.
func WithLogger(l logger.Logger) RetryOption {
	return func(r *Retrying) {
		if l != nil {
			r.log = l
		}
	}
}
