package history

import (
	"time"

	"github.com/okian/evalsync/pkg/logger"
)

// Option applies a configuration option to Git.
type Option func(*Git)

// WithTimeout bounds each git invocation.
func WithTimeout(d time.Duration) Option {
	return func(g *Git) {
		if d > 0 {
			g.timeout = d
		}
	}
}

// WithPathspec limits the diff to paths below prefix.
func WithPathspec(prefix string) Option {
	return func(g *Git) {
		g.pathspec = prefix
	}
}

// WithBinary overrides the git executable.
func WithBinary(bin string) Option {
	return func(g *Git) {
		if bin != "" {
			g.bin = bin
		}
	}
}

// WithLogger sets the logger for diff diagnostics.
func WithLogger(l logger.Logger) Option {
	return func(g *Git) {
		if l != nil {
			g.log = l
		}
	}
}
