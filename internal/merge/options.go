package merge

import "github.com/okian/evalsync/pkg/logger"

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(l logger.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// WithProgressEvery logs progress after every n candidates. Zero disables it.
func WithProgressEvery(n int) Option {
	return func(e *Engine) {
		if n >= 0 {
			e.progressEvery = n
		}
	}
}
