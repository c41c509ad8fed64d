// Package repository persists leaderboard batches as Parquet files.
package repository

import (
	"context"

	"github.com/okian/evalsync/internal/domain/model"
)

// BatchStore reads and writes whole batch files.
type BatchStore interface {
	// Load returns the batch at path, or ErrNotFound if there is none.
	Load(ctx context.Context, path string) (model.Batch, error)

	// Save replaces the batch at path. Readers never observe a partial file.
	Save(ctx context.Context, path string, batch model.Batch) error

	// Exists reports whether a batch file is present at path.
	Exists(ctx context.Context, path string) (bool, error)
}
