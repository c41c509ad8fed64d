// Package tree reads and writes the on-disk document tree
// <root>/<leaderboard>/<developer>/<model>/<uuid>.json.
package tree

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/okian/evalsync/internal/domain/model"
)

// Source is a candidate document file. Rel is the slash-separated path
// below the data root and is the only input to the document's key.
type Source struct {
	Path string
	Rel  string
}

// Key derives the identity key from the source's placement.
func (s Source) Key() (model.Key, error) {
	return model.KeyFromPath(s.Rel)
}

// Read returns the raw file contents.
func (s Source) Read() ([]byte, error) {
	return os.ReadFile(s.Path)
}

func (s Source) String() string { return s.Rel }

// FromRel builds a Source for rel below root.
func FromRel(root, rel string) Source {
	rel = filepath.ToSlash(filepath.Clean(filepath.FromSlash(rel)))
	return Source{
		Path: filepath.Join(root, filepath.FromSlash(rel)),
		Rel:  rel,
	}
}

// Discover lists the documents named by target: the file itself, or
// every *.json file below a directory. Results are sorted by Rel.
// A directory without JSON files yields ErrNoDocuments.
func Discover(root, target string) ([]Source, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidTarget, root, err)
	}
	absTarget, err := filepath.Abs(target)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidTarget, target, err)
	}

	info, err := os.Stat(absTarget)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidTarget, target, err)
	}

	var paths []string
	if info.IsDir() {
		err = filepath.WalkDir(absTarget, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && strings.EqualFold(filepath.Ext(p), model.DocumentExt) {
				paths = append(paths, p)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrInvalidTarget, target, err)
		}
		if len(paths) == 0 {
			return nil, fmt.Errorf("%w: %s", ErrNoDocuments, target)
		}
	} else {
		paths = []string{absTarget}
	}

	sources := make([]Source, 0, len(paths))
	for _, p := range paths {
		rel, err := filepath.Rel(absRoot, p)
		if err != nil {
			// Keep the document; its key derivation will reject it.
			rel = p
		}
		sources = append(sources, Source{Path: p, Rel: filepath.ToSlash(rel)})
	}
	Sort(sources)
	return sources, nil
}

// Sort orders sources by Rel, the merge processing order.
func Sort(sources []Source) {
	sort.SliceStable(sources, func(i, j int) bool { return sources[i].Rel < sources[j].Rel })
}

// WriteDocument writes doc to its key's location below root as
// two-space indented JSON and returns the file path.
func WriteDocument(root string, key model.Key, doc model.Document) (string, error) {
	if err := key.Validate(); err != nil {
		return "", err
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrWriteDocument, key, err)
	}

	p := filepath.Join(root, filepath.FromSlash(key.Path()))
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrWriteDocument, p, err)
	}
	if err := os.WriteFile(p, buf.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrWriteDocument, p, err)
	}
	return p, nil
}
