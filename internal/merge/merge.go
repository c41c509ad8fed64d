// Package merge folds candidate documents into a leaderboard batch,
// admitting each identity key at most once.
package merge

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/okian/evalsync/internal/adapters/repository"
	"github.com/okian/evalsync/internal/adapters/tree"
	"github.com/okian/evalsync/internal/domain/dedupe"
	"github.com/okian/evalsync/internal/domain/model"
	"github.com/okian/evalsync/internal/domain/record"
	"github.com/okian/evalsync/internal/domain/schema"
	"github.com/okian/evalsync/pkg/logger"
	"github.com/okian/evalsync/pkg/metrics"
)

const defaultProgressEvery = 100

// Failure is a candidate that could not be admitted.
type Failure struct {
	Path string
	Err  error
}

// Report summarizes one merge.
type Report struct {
	Leaderboard string
	// Existing is the row count of the prior batch, zero if there was none.
	Existing int
	Added    int
	Skipped  int
	Failures []Failure
	// Total is the row count of the batch after the merge.
	Total int
	// Unchanged is set when nothing was added and the prior file was kept.
	Unchanged bool
}

// Engine merges documents into batch files through a BatchStore.
type Engine struct {
	store         repository.BatchStore
	log           logger.Logger
	progressEvery int
}

// NewEngine creates an Engine over store.
func NewEngine(store repository.BatchStore, opts ...Option) *Engine {
	e := &Engine{
		store:         store,
		log:           logger.Nop(),
		progressEvery: defaultProgressEvery,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Merge appends every valid candidate whose key is not yet in the batch
// at target. Existing rows keep their order; new rows follow in path
// order. Invalid candidates are reported in Report.Failures and do not
// stop the merge.
func (e *Engine) Merge(ctx context.Context, target string, candidates []tree.Source) (Report, error) {
	start := time.Now()
	report := Report{Leaderboard: leaderboardOf(target)}
	log := e.log.With(logger.String("leaderboard", report.Leaderboard))

	existing, hadPrior, err := e.load(ctx, target)
	if err != nil {
		return report, err
	}
	report.Existing = existing.Len()

	// A batch holds one leaderboard. A prior batch fixes it; otherwise the
	// first valid candidate in path order does.
	var batchLB string
	keys := dedupe.NewInMemoryKeySet(dedupe.WithCapacity(existing.Len() + len(candidates)))
	for _, k := range existing.Keys() {
		if keys.SeenAndRecord(ctx, k) {
			return report, fmt.Errorf("%w: %s: key %s appears more than once", ErrIntegrity, target, k)
		}
		if batchLB == "" {
			batchLB = k.Leaderboard
		}
		if k.Leaderboard != batchLB {
			return report, fmt.Errorf("%w: %s: rows of leaderboards %s and %s", ErrIntegrity, target, batchLB, k.Leaderboard)
		}
	}
	if hadPrior {
		log.Info(ctx, "loaded existing batch", logger.Int("rows", existing.Len()))
	}

	sorted := append([]tree.Source(nil), candidates...)
	tree.Sort(sorted)

	var added []model.Row
	for i, src := range sorted {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		if e.progressEvery > 0 && (i+1)%e.progressEvery == 0 {
			log.Info(ctx, "merge progress", logger.Int("done", i+1), logger.Int("total", len(sorted)))
		}

		key, row, err := convert(src)
		if err == nil && batchLB != "" && key.Leaderboard != batchLB {
			err = fmt.Errorf("%w: %s belongs to %s, batch holds %s", ErrLeaderboardMismatch, src.Rel, key.Leaderboard, batchLB)
		}
		if err != nil {
			report.Failures = append(report.Failures, Failure{Path: src.Rel, Err: err})
			metrics.RecordDocumentInvalid(report.Leaderboard)
			log.Warn(ctx, "document rejected", logger.String("path", src.Rel), logger.Error(err))
			continue
		}

		if keys.SeenAndRecord(ctx, key) {
			// First seen wins: a document whose key is already in the batch
			// is never rewritten, even if its content differs.
			report.Skipped++
			metrics.RecordDocumentDuplicate(report.Leaderboard)
			log.Debug(ctx, "duplicate key skipped", logger.String("path", src.Rel), logger.String("key", key.String()))
			continue
		}

		batchLB = key.Leaderboard
		added = append(added, row)
		metrics.RecordDocumentAccepted(report.Leaderboard)
	}
	report.Added = len(added)

	if report.Skipped > 0 {
		log.Info(ctx, "skipped duplicate documents", logger.Int("skipped", report.Skipped))
	}

	if len(added) == 0 {
		if !hadPrior {
			return report, fmt.Errorf("%w: %s", ErrEmptyResult, target)
		}
		report.Total = report.Existing
		report.Unchanged = true
		log.Info(ctx, "no new documents, keeping existing batch", logger.Int("rows", report.Total))
		return report, nil
	}

	combined := model.Batch{Rows: make([]model.Row, 0, existing.Len()+len(added))}
	combined.Rows = append(combined.Rows, existing.Rows...)
	combined.Rows = append(combined.Rows, added...)
	if err := e.store.Save(ctx, target, combined); err != nil {
		return report, err
	}
	report.Total = combined.Len()

	metrics.UpdateBatchRows(report.Leaderboard, report.Total)
	metrics.ObserveMergeDuration(report.Leaderboard, time.Since(start).Seconds())
	log.Info(ctx, "batch saved",
		logger.String("path", target),
		logger.Int("existing", report.Existing),
		logger.Int("added", report.Added),
		logger.Int("total", report.Total),
		logger.Int("distinct_keys", int(keys.Size())))
	return report, nil
}

func (e *Engine) load(ctx context.Context, target string) (model.Batch, bool, error) {
	batch, err := e.store.Load(ctx, target)
	switch {
	case err == nil:
		return batch, true, nil
	case errors.Is(err, repository.ErrNotFound):
		return model.Batch{}, false, nil
	default:
		return model.Batch{}, false, err
	}
}

// convert reads, validates and flattens one candidate.
func convert(src tree.Source) (model.Key, model.Row, error) {
	key, err := src.Key()
	if err != nil {
		return model.Key{}, model.Row{}, err
	}
	data, err := src.Read()
	if err != nil {
		return model.Key{}, model.Row{}, fmt.Errorf("read %s: %w", src.Path, err)
	}
	doc, err := schema.Parse(data)
	if err != nil {
		return model.Key{}, model.Row{}, err
	}
	row, err := record.Flatten(key, doc)
	if err != nil {
		return model.Key{}, model.Row{}, err
	}
	return key, row, nil
}

func leaderboardOf(target string) string {
	base := filepath.Base(target)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
