package service

import (
	"github.com/okian/evalsync/internal/adapters/remote"
	"github.com/okian/evalsync/internal/adapters/repository"
	"github.com/okian/evalsync/internal/changes"
	"github.com/okian/evalsync/internal/config"
	"github.com/okian/evalsync/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithHistory sets the history used for change detection. prefix is the
// data root relative to the repository root.
func WithHistory(h changes.History, prefix string) Option {
	return func(s *Service) {
		if h != nil {
			s.detector = changes.NewDetector(h, prefix)
		}
	}
}

// WithRemote sets the remote batch store.
func WithRemote(r remote.Store) Option {
	return func(s *Service) {
		if r != nil {
			s.remote = r
		}
	}
}

// WithBatchStore sets the local batch store.
func WithBatchStore(b repository.BatchStore) Option {
	return func(s *Service) {
		if b != nil {
			s.store = b
		}
	}
}

// WithDataDir sets the document tree root.
func WithDataDir(dir string) Option {
	return func(s *Service) {
		if dir != "" {
			s.dataDir = dir
		}
	}
}

// WithOutputDir sets where batches and the manifest are written.
func WithOutputDir(dir string) Option {
	return func(s *Service) {
		if dir != "" {
			s.outputDir = dir
		}
	}
}

// WithManifestName sets the manifest file name inside the output dir.
func WithManifestName(name string) Option {
	return func(s *Service) {
		if name != "" {
			s.manifestName = name
		}
	}
}

// WithMode selects leaderboard or paths conversion.
func WithMode(mode string) Option {
	return func(s *Service) {
		if mode == config.ModeLeaderboard || mode == config.ModePaths {
			s.mode = mode
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}
