// Package export regenerates the document tree from a batch file.
package export

import (
	"context"
	"fmt"

	"github.com/okian/evalsync/internal/adapters/repository"
	"github.com/okian/evalsync/internal/adapters/tree"
	"github.com/okian/evalsync/internal/domain/record"
	"github.com/okian/evalsync/pkg/logger"
)

// Reconstructor writes one document per batch row.
type Reconstructor struct {
	store repository.BatchStore
	log   logger.Logger
}

// NewReconstructor creates a Reconstructor reading through store.
func NewReconstructor(store repository.BatchStore, log logger.Logger) *Reconstructor {
	if log == nil {
		log = logger.Nop()
	}
	return &Reconstructor{store: store, log: log}
}

// Export writes every row of the batch at batchPath below outDir and
// returns the number of documents written. Re-running over an unchanged
// batch rewrites identical files.
func (r *Reconstructor) Export(ctx context.Context, batchPath, outDir string) (int, error) {
	batch, err := r.store.Load(ctx, batchPath)
	if err != nil {
		return 0, err
	}

	for i, row := range batch.Rows {
		if err := ctx.Err(); err != nil {
			return i, err
		}
		key, doc, err := record.Expand(row)
		if err != nil {
			return i, fmt.Errorf("row %d: %w", i, err)
		}
		if _, err := tree.WriteDocument(outDir, key, doc); err != nil {
			return i, err
		}
	}

	r.log.Info(ctx, "reconstructed documents",
		logger.String("batch", batchPath),
		logger.String("out", outDir),
		logger.Int("documents", batch.Len()))
	return batch.Len(), nil
}
