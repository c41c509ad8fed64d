// Package remote moves whole batch files between the local output
// directory and a dataset host.
package remote

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
)

// Store fetches and publishes whole leaderboard batches. Both operations
// are all-or-nothing: a failed Fetch leaves dst untouched and a failed
// Publish leaves the remote copy as it was.
type Store interface {
	// Fetch downloads the batch for leaderboard into dst. It returns
	// ErrNotFound when the remote has no batch for it.
	Fetch(ctx context.Context, leaderboard, dst string) error

	// Publish uploads src as the batch for leaderboard.
	Publish(ctx context.Context, leaderboard, src string) error

	// Name identifies the backend in logs and metrics.
	Name() string
}

// ObjectName is the remote location of a leaderboard's batch, mirroring
// the dataset host layout data/<leaderboard>/data-00000-of-00001.parquet.
func ObjectName(prefix, leaderboard string) string {
	return path.Join(prefix, "data", leaderboard, "data-00000-of-00001.parquet")
}

// writeFileAtomic streams r into a temp file next to dst and renames it
// into place.
func writeFileAtomic(dst string, r io.Reader) (err error) {
	dir := filepath.Dir(dst)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(dst)+".*.part")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = io.Copy(tmp, r); err != nil {
		return fmt.Errorf("copy: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	if err = os.Chmod(tmp.Name(), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), dst)
}
