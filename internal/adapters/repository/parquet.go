package repository

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/parquet-go/parquet-go"
	"github.com/parquet-go/parquet-go/compress"

	"github.com/okian/evalsync/internal/domain/model"
)

// ParquetStore is a BatchStore over local Parquet files, one row group
// per file with the model.Row schema.
type ParquetStore struct {
	codec compress.Codec
	mode  os.FileMode
}

// NewParquetStore creates a ParquetStore with the given options.
func NewParquetStore(opts ...Option) *ParquetStore {
	s := &ParquetStore{
		codec: &parquet.Snappy,
		mode:  0o644,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ BatchStore = (*ParquetStore)(nil)

func (s *ParquetStore) Load(ctx context.Context, path string) (model.Batch, error) {
	if err := ctx.Err(); err != nil {
		return model.Batch{}, err
	}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return model.Batch{}, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return model.Batch{}, fmt.Errorf("%w: %s: %w", ErrRead, path, err)
	}

	rows, err := parquet.ReadFile[model.Row](path)
	if err != nil {
		return model.Batch{}, fmt.Errorf("%w: %s: %w", ErrRead, path, err)
	}
	return model.Batch{Rows: rows}, nil
}

func (s *ParquetStore) Save(ctx context.Context, path string, batch model.Batch) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrWrite, path, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrWrite, path, err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if err = parquet.Write(tmp, batch.Rows, parquet.Compression(s.codec)); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrWrite, path, err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrWrite, path, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrWrite, path, err)
	}
	if err = os.Chmod(tmp.Name(), s.mode); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrWrite, path, err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrWrite, path, err)
	}
	return nil
}

func (s *ParquetStore) Exists(_ context.Context, path string) (bool, error) {
	info, err := os.Stat(path)
	switch {
	case err == nil:
		return !info.IsDir(), nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, fmt.Errorf("%w: %s: %w", ErrRead, path, err)
	}
}
