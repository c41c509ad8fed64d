package remote

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// FS keeps batches below a local or mounted directory using the same
// object layout as the cloud backends.
type FS struct {
	dir    string
	prefix string
}

var _ Store = (*FS)(nil)

// NewFS creates a directory-backed store rooted at dir.
func NewFS(dir, prefix string) *FS {
	return &FS{dir: dir, prefix: prefix}
}

func (s *FS) object(leaderboard string) string {
	return filepath.Join(s.dir, filepath.FromSlash(ObjectName(s.prefix, leaderboard)))
}

func (s *FS) Fetch(ctx context.Context, leaderboard, dst string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	src := s.object(leaderboard)
	f, err := os.Open(src)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrNotFound, src)
		}
		return fmt.Errorf("%w: %s: %w", ErrFetch, src, err)
	}
	defer f.Close()

	if err := writeFileAtomic(dst, f); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrFetch, src, err)
	}
	return nil
}

func (s *FS) Publish(ctx context.Context, leaderboard, src string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrPublish, src, err)
	}
	defer f.Close()

	dst := s.object(leaderboard)
	if err := writeFileAtomic(dst, f); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrPublish, dst, err)
	}
	return nil
}

func (s *FS) Name() string { return "fs" }
