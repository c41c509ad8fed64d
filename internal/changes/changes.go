// Package changes determines which leaderboards have new or modified
// documents between two points of the document history.
package changes

import (
	"context"
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/okian/evalsync/internal/domain/model"
)

// History lists files added or modified between two revisions. Paths are
// slash-separated and relative to the repository root.
type History interface {
	ChangedPaths(ctx context.Context, from, to string) ([]string, error)
}

// ChangeSet is the result of detection. Paths holds, per leaderboard,
// the changed document paths relative to the data root, sorted.
type ChangeSet struct {
	Leaderboards []string
	Paths        map[string][]string
}

// Empty reports whether nothing changed.
func (c ChangeSet) Empty() bool { return len(c.Leaderboards) == 0 }

// Detector filters history output down to documents below a data prefix.
type Detector struct {
	history History
	prefix  string
}

// NewDetector creates a Detector. prefix is the data root relative to
// the repository root, e.g. "data".
func NewDetector(history History, prefix string) *Detector {
	prefix = strings.Trim(path.Clean("/"+strings.ReplaceAll(prefix, `\`, "/")), "/")
	return &Detector{history: history, prefix: prefix}
}

// Detect returns the leaderboards with at least one changed document.
func (d *Detector) Detect(ctx context.Context, from, to string) (ChangeSet, error) {
	paths, err := d.history.ChangedPaths(ctx, from, to)
	if err != nil {
		return ChangeSet{}, fmt.Errorf("%w: %s..%s: %w", ErrHistory, from, to, err)
	}

	set := ChangeSet{Paths: map[string][]string{}}
	for _, p := range paths {
		rel, ok := d.relative(p)
		if !ok || !strings.HasSuffix(rel, model.DocumentExt) {
			continue
		}
		lb, _, ok := strings.Cut(rel, "/")
		if !ok || lb == "" {
			continue
		}
		set.Paths[lb] = append(set.Paths[lb], rel)
	}

	for lb, rels := range set.Paths {
		sort.Strings(rels)
		set.Paths[lb] = dedupSorted(rels)
		set.Leaderboards = append(set.Leaderboards, lb)
	}
	sort.Strings(set.Leaderboards)
	return set, nil
}

func (d *Detector) relative(p string) (string, bool) {
	p = strings.TrimPrefix(path.Clean(p), "./")
	if d.prefix == "" || d.prefix == "." {
		return p, true
	}
	rel, ok := strings.CutPrefix(p, d.prefix+"/")
	return rel, ok
}

func dedupSorted(in []string) []string {
	out := in[:0]
	for i, s := range in {
		if i == 0 || s != in[i-1] {
			out = append(out, s)
		}
	}
	return out
}

// Static is a History with a fixed answer, for dry runs and tests.
type Static struct {
	Paths []string
	Err   error
}

func (s Static) ChangedPaths(_ context.Context, _, _ string) ([]string, error) {
	return s.Paths, s.Err
}
