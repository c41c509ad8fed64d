package model

import (
	"fmt"
	"path"
	"strings"
)

// DocumentExt is the file extension of documents in the tree.
const DocumentExt = ".json"

// keySegments is the depth of a document below the data root:
// <leaderboard>/<developer>/<model>/<uuid>.json.
const keySegments = 4

// Key is the identity of a document: where it lives in the tree plus its
// per-document uuid. It is never derived from payload fields, so moving a
// document to another developer or model folder yields a different Key.
type Key struct {
	Leaderboard string
	Developer   string
	Model       string
	UUID        string
}

// KeyFromPath derives a Key from a slash-separated path relative to the
// data root.
func KeyFromPath(rel string) (Key, error) {
	rel = path.Clean(strings.TrimPrefix(rel, "./"))
	if !strings.HasSuffix(rel, DocumentExt) {
		return Key{}, fmt.Errorf("%w: %q: not a %s file", ErrInvalidPath, rel, DocumentExt)
	}
	parts := strings.Split(rel, "/")
	if len(parts) != keySegments {
		return Key{}, fmt.Errorf("%w: %q: want <leaderboard>/<developer>/<model>/<uuid>%s", ErrInvalidPath, rel, DocumentExt)
	}
	k := Key{
		Leaderboard: parts[0],
		Developer:   parts[1],
		Model:       parts[2],
		UUID:        strings.TrimSuffix(parts[3], DocumentExt),
	}
	if err := k.Validate(); err != nil {
		return Key{}, err
	}
	return k, nil
}

// Validate reports whether every component is usable as a path segment.
func (k Key) Validate() error {
	for _, part := range []string{k.Leaderboard, k.Developer, k.Model, k.UUID} {
		if part == "" || part == "." || part == ".." || strings.ContainsAny(part, `/\`) {
			return fmt.Errorf("%w: bad key component %q in %s", ErrInvalidPath, part, k)
		}
	}
	return nil
}

// Path is the slash-separated location of the document below the data root.
func (k Key) Path() string {
	return path.Join(k.Leaderboard, k.Developer, k.Model, k.UUID+DocumentExt)
}

func (k Key) String() string {
	return fmt.Sprintf("(%s, %s, %s, %s)", k.Leaderboard, k.Developer, k.Model, k.UUID)
}
