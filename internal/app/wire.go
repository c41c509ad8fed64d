package service

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/okian/evalsync/internal/adapters/history"
	"github.com/okian/evalsync/internal/adapters/remote"
	"github.com/okian/evalsync/internal/adapters/repository"
	"github.com/okian/evalsync/internal/config"
	"github.com/okian/evalsync/pkg/logger"
)

// NewFromConfig wires a Service over git history, the configured remote
// backend and local Parquet batches.
func NewFromConfig(ctx context.Context, cfg *config.Config, log logger.Logger) (*Service, error) {
	dataRoot, prefix, err := DataPaths(cfg.RepoDir, cfg.DataDir)
	if err != nil {
		return nil, err
	}
	store, err := remote.FromConfig(ctx, cfg, log.Named("remote"))
	if err != nil {
		return nil, err
	}
	git := history.NewGit(cfg.RepoDir,
		history.WithPathspec(prefix),
		history.WithLogger(log.Named("history")))

	return New(
		WithHistory(git, prefix),
		WithRemote(store),
		WithBatchStore(repository.NewParquetStore()),
		WithDataDir(dataRoot),
		WithOutputDir(cfg.OutputDir),
		WithManifestName(cfg.ManifestName),
		WithMode(cfg.Mode),
		WithLogger(log),
	), nil
}

// DataPaths resolves the document tree root on disk and its path
// relative to the repository root, which is how history reports it.
func DataPaths(repoDir, dataDir string) (root, prefix string, err error) {
	if !filepath.IsAbs(dataDir) {
		return filepath.Join(repoDir, dataDir), filepath.ToSlash(filepath.Clean(dataDir)), nil
	}
	absRepo, err := filepath.Abs(repoDir)
	if err != nil {
		return "", "", fmt.Errorf("resolve repo_dir: %w", err)
	}
	rel, err := filepath.Rel(absRepo, dataDir)
	if err != nil {
		return "", "", fmt.Errorf("data_dir %s is not inside repo_dir %s: %w", dataDir, repoDir, err)
	}
	return dataDir, filepath.ToSlash(rel), nil
}
