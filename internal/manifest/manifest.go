// Package manifest records the outcome of one sync run for the publish
// stage.
package manifest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
)

// Manifest lists the leaderboards a run touched.
type Manifest struct {
	Changed    []string `json:"changed"`
	Converted  []string `json:"converted"`
	Downloaded []string `json:"downloaded"`
	Errors     int      `json:"errors"`
}

// Normalize sorts the lists and replaces nil with empty slices so the
// file always carries arrays.
func (m *Manifest) Normalize() {
	for _, list := range []*[]string{&m.Changed, &m.Converted, &m.Downloaded} {
		if *list == nil {
			*list = []string{}
		}
		sort.Strings(*list)
	}
}

// Write stores m as indented JSON at path, replacing any previous file.
func Write(path string, m Manifest) error {
	m.Normalize()
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(m); err != nil {
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrWrite, path, err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrWrite, path, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("%w: %s: %w", ErrWrite, path, err)
	}
	return nil
}

// Read loads the manifest at path. A missing file yields ErrNotFound.
func Read(path string) (Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Manifest{}, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return Manifest{}, fmt.Errorf("%w: %s: %w", ErrRead, path, err)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return Manifest{}, fmt.Errorf("%w: %s: %w", ErrRead, path, err)
	}
	m.Normalize()
	return m, nil
}
