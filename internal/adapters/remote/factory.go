package remote

import (
	"context"
	"fmt"

	"github.com/okian/evalsync/internal/config"
	"github.com/okian/evalsync/pkg/logger"
)

// FromConfig builds the configured backend wrapped with retries.
func FromConfig(ctx context.Context, cfg *config.Config, log logger.Logger) (Store, error) {
	var store Store
	switch cfg.RemoteBackend {
	case config.BackendNone, "":
		return Nop{}, nil
	case config.BackendFS:
		store = NewFS(cfg.RemoteDir, cfg.RemotePrefix)
	case config.BackendGCS:
		s, err := NewGCS(ctx, cfg.RemoteBucket, cfg.RemotePrefix, cfg.RemoteEndpoint)
		if err != nil {
			return nil, err
		}
		store = s
	case config.BackendS3:
		s, err := NewS3(cfg.RemoteEndpoint, cfg.RemoteRegion, cfg.RemoteBucket, cfg.RemotePrefix, cfg.RemoteUseSSL)
		if err != nil {
			return nil, err
		}
		store = s
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupported, cfg.RemoteBackend)
	}
	return NewRetrying(store, WithMaxRetries(cfg.RemoteMaxRetries), WithLogger(log)), nil
}
