// Package history lists files changed between two revisions of the
// document repository.
package history

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"sort"
	"strings"
	"time"

	"github.com/sourcegraph/go-diff/diff"

	"github.com/okian/evalsync/pkg/logger"
)

const (
	devNull        = "/dev/null"
	defaultTimeout = 2 * time.Minute
)

// Git reads changes from a local git checkout by running git diff and
// parsing its unified output.
type Git struct {
	repoDir  string
	pathspec string
	bin      string
	timeout  time.Duration
	log      logger.Logger
}

// NewGit creates a Git history reader for the checkout at repoDir.
func NewGit(repoDir string, opts ...Option) *Git {
	g := &Git{
		repoDir: repoDir,
		bin:     "git",
		timeout: defaultTimeout,
		log:     logger.Nop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// ChangedPaths returns the repository-relative paths added or modified
// between from and to. Deleted files are not reported.
func (g *Git) ChangedPaths(ctx context.Context, from, to string) ([]string, error) {
	args := []string{
		"-c", "core.quotepath=false",
		"diff", "--no-color", "--no-ext-diff", "--no-renames",
		from, to,
	}
	if g.pathspec != "" {
		args = append(args, "--", g.pathspec)
	}

	out, err := g.run(ctx, args...)
	if err != nil {
		return nil, err
	}

	paths, err := ParseChangedPaths(out)
	if err != nil {
		return nil, err
	}
	g.log.Debug(ctx, "git diff parsed",
		logger.String("from", from),
		logger.String("to", to),
		logger.Int("paths", len(paths)))
	return paths, nil
}

func (g *Git) run(ctx context.Context, args ...string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, g.bin, args...)
	cmd.Dir = g.repoDir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: timeout after %v", ErrGit, g.timeout)
		}
		return nil, fmt.Errorf("%w: %w: %s", ErrGit, err, strings.TrimSpace(stderr.String()))
	}
	return stdout.Bytes(), nil
}

// ParseChangedPaths extracts added and modified file paths from a
// multi-file unified diff. Results are sorted and unique.
func ParseChangedPaths(data []byte) ([]string, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}
	files, err := diff.ParseMultiFileDiff(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParseDiff, err)
	}

	seen := make(map[string]struct{}, len(files))
	paths := make([]string, 0, len(files))
	for _, fd := range files {
		name := fd.NewName
		if name == devNull {
			continue
		}
		name = strings.TrimPrefix(name, "b/")
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		paths = append(paths, name)
	}
	sort.Strings(paths)
	return paths, nil
}
