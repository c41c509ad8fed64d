// Package service orchestrates sync, publish, add and export runs over
// the document tree, the local batches and the remote store.
package service

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"

	"github.com/okian/evalsync/internal/adapters/remote"
	"github.com/okian/evalsync/internal/adapters/repository"
	"github.com/okian/evalsync/internal/adapters/tree"
	"github.com/okian/evalsync/internal/changes"
	"github.com/okian/evalsync/internal/config"
	"github.com/okian/evalsync/internal/export"
	"github.com/okian/evalsync/internal/manifest"
	"github.com/okian/evalsync/internal/merge"
	"github.com/okian/evalsync/pkg/logger"
	"github.com/okian/evalsync/pkg/metrics"
)

const batchExt = ".parquet"

// Service runs the pipeline stages.
type Service struct {
	detector *changes.Detector
	remote   remote.Store
	store    repository.BatchStore

	dataDir      string
	outputDir    string
	manifestName string
	mode         string

	logger logger.Logger
}

// New constructs a Service. Without WithHistory, Sync is unavailable.
func New(opts ...Option) *Service {
	defaults := config.New()
	s := &Service{
		remote:       remote.Nop{},
		store:        repository.NewParquetStore(),
		dataDir:      defaults.DataDir,
		outputDir:    defaults.OutputDir,
		manifestName: defaults.ManifestName,
		mode:         defaults.Mode,
		logger:       logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Result describes a finished sync run.
type Result struct {
	RunID    string
	Status   Status
	Manifest manifest.Manifest
	Reports  []merge.Report
}

// BatchPath is the local batch file of a leaderboard.
func (s *Service) BatchPath(leaderboard string) string {
	return filepath.Join(s.outputDir, leaderboard+batchExt)
}

// ManifestPath is the location of the run manifest.
func (s *Service) ManifestPath() string {
	return filepath.Join(s.outputDir, s.manifestName)
}

// Sync converts every leaderboard with documents changed between from
// and to. Leaderboard failures are counted and returned together; a
// history or remote failure aborts the run. The manifest is written in
// every case where change detection succeeded.
func (s *Service) Sync(ctx context.Context, from, to string) (Result, error) {
	if s.detector == nil {
		return Result{Status: StatusFailure}, fmt.Errorf("%w: no history configured", ErrNotConfigured)
	}
	res := Result{RunID: uuid.NewString()}
	log := s.logger.With(logger.String("run_id", res.RunID))
	log.Info(ctx, "sync started", logger.String("from", from), logger.String("to", to), logger.String("mode", s.mode))

	set, err := s.detector.Detect(ctx, from, to)
	if err != nil {
		res.Status = StatusFailure
		metrics.RecordRun(res.Status.String())
		return res, err
	}
	metrics.UpdateLeaderboardsChanged(len(set.Leaderboards))
	res.Manifest.Changed = set.Leaderboards

	if set.Empty() {
		log.Info(ctx, "no leaderboards changed")
		return s.finish(ctx, log, res, nil)
	}
	log.Info(ctx, "changed leaderboards", logger.Strings("leaderboards", set.Leaderboards))

	var failures *multierror.Error
	for _, lb := range set.Leaderboards {
		lbLog := log.With(logger.String("leaderboard", lb))
		target := s.BatchPath(lb)

		downloaded, err := s.fetch(ctx, lbLog, lb, target)
		if err != nil {
			res.Manifest.Errors++
			res.Status = StatusFailure
			lbLog.Error(ctx, "remote fetch failed, aborting run", logger.Error(err))
			return s.finish(ctx, log, res, multierror.Append(failures, err).ErrorOrNil())
		}
		if downloaded {
			res.Manifest.Downloaded = append(res.Manifest.Downloaded, lb)
		}

		report, err := s.convert(ctx, lb, target, set.Paths[lb])
		res.Reports = append(res.Reports, report)
		if err != nil {
			res.Manifest.Errors++
			failures = multierror.Append(failures, fmt.Errorf("%w: %s: %w", ErrLeaderboard, lb, err))
			metrics.RecordLeaderboardFailed()
			lbLog.Error(ctx, "leaderboard failed", logger.Error(err))
			continue
		}
		res.Manifest.Converted = append(res.Manifest.Converted, lb)
		metrics.RecordLeaderboardConverted()
	}

	return s.finish(ctx, log, res, failures.ErrorOrNil())
}

// fetch downloads the prior batch. A missing remote batch is not an
// error; a local file from an earlier run is then used if present.
func (s *Service) fetch(ctx context.Context, log logger.Logger, lb, target string) (bool, error) {
	err := s.remote.Fetch(ctx, lb, target)
	switch {
	case err == nil:
		log.Info(ctx, "downloaded existing batch", logger.String("backend", s.remote.Name()))
		return true, nil
	case errors.Is(err, remote.ErrNotFound):
		log.Info(ctx, "no remote batch, starting from local state", logger.String("backend", s.remote.Name()))
		return false, nil
	default:
		return false, fmt.Errorf("%w: %s: %w", ErrRemote, lb, err)
	}
}

func (s *Service) convert(ctx context.Context, lb, target string, changed []string) (merge.Report, error) {
	var sources []tree.Source
	if s.mode == config.ModePaths {
		sources = make([]tree.Source, 0, len(changed))
		for _, rel := range changed {
			sources = append(sources, tree.FromRel(s.dataDir, rel))
		}
	} else {
		var err error
		sources, err = tree.Discover(s.dataDir, filepath.Join(s.dataDir, lb))
		if err != nil {
			return merge.Report{Leaderboard: lb}, err
		}
	}
	return s.engine().Merge(ctx, target, sources)
}

func (s *Service) finish(ctx context.Context, log logger.Logger, res Result, runErr error) (Result, error) {
	if res.Status != StatusFailure {
		res.Status = StatusOf(res.Manifest)
	}
	res.Manifest.Normalize()

	if err := manifest.Write(s.ManifestPath(), res.Manifest); err != nil {
		res.Status = StatusFailure
		runErr = multierror.Append(runErr, err).ErrorOrNil()
	}
	metrics.RecordRun(res.Status.String())

	for _, r := range res.Reports {
		fields := []logger.Field{
			logger.String("leaderboard", r.Leaderboard),
			logger.Int("accepted", r.Added),
			logger.Int("skipped_duplicates", r.Skipped),
			logger.Int("failed", len(r.Failures)),
			logger.Int("rows", r.Total),
		}
		log.Info(ctx, "leaderboard summary", fields...)
		for _, f := range r.Failures {
			log.Warn(ctx, "document failed",
				logger.String("leaderboard", r.Leaderboard),
				logger.String("path", f.Path),
				logger.Error(f.Err))
		}
	}
	log.Info(ctx, "sync finished",
		logger.String("status", res.Status.String()),
		logger.Int("changed", len(res.Manifest.Changed)),
		logger.Int("converted", len(res.Manifest.Converted)),
		logger.Int("downloaded", len(res.Manifest.Downloaded)),
		logger.Int("errors", res.Manifest.Errors))
	return res, runErr
}

// PublishResult lists the leaderboards uploaded by Publish.
type PublishResult struct {
	Uploaded []string
	Missing  []string
	Errors   int
}

// Publish uploads the batch of every converted leaderboard named in the
// manifest. Leaderboards without a local batch are skipped; upload
// failures are counted and returned together.
func (s *Service) Publish(ctx context.Context) (PublishResult, error) {
	var res PublishResult
	m, err := manifest.Read(s.ManifestPath())
	if err != nil {
		return res, err
	}
	if len(m.Converted) == 0 {
		s.logger.Info(ctx, "nothing to publish")
		return res, nil
	}

	var failures *multierror.Error
	for _, lb := range m.Converted {
		src := s.BatchPath(lb)
		ok, err := s.store.Exists(ctx, src)
		if err != nil {
			res.Errors++
			failures = multierror.Append(failures, fmt.Errorf("%w: %s: %w", ErrPublishFailed, lb, err))
			continue
		}
		if !ok {
			res.Missing = append(res.Missing, lb)
			s.logger.Warn(ctx, "batch file missing, skipping", logger.String("leaderboard", lb), logger.String("path", src))
			continue
		}
		if err := s.remote.Publish(ctx, lb, src); err != nil {
			res.Errors++
			failures = multierror.Append(failures, fmt.Errorf("%w: %s: %w", ErrPublishFailed, lb, err))
			s.logger.Error(ctx, "upload failed", logger.String("leaderboard", lb), logger.Error(err))
			continue
		}
		res.Uploaded = append(res.Uploaded, lb)
		s.logger.Info(ctx, "uploaded batch",
			logger.String("leaderboard", lb),
			logger.String("backend", s.remote.Name()))
	}
	s.logger.Info(ctx, "publish finished",
		logger.Int("uploaded", len(res.Uploaded)),
		logger.Int("missing", len(res.Missing)),
		logger.Int("errors", res.Errors))
	return res, failures.ErrorOrNil()
}

// Add merges a document file, or every document below a directory, into
// the batch at target. Keys derive from paths relative to the data dir.
func (s *Service) Add(ctx context.Context, input, target string) (merge.Report, error) {
	sources, err := tree.Discover(s.dataDir, input)
	if err != nil {
		return merge.Report{}, err
	}
	s.logger.Info(ctx, "processing documents", logger.Int("files", len(sources)), logger.String("target", target))
	report, err := s.engine().Merge(ctx, target, sources)
	for _, f := range report.Failures {
		s.logger.Warn(ctx, "document failed", logger.String("path", f.Path), logger.Error(f.Err))
	}
	return report, err
}

// Export reconstructs the document tree of the batch at batchPath below outDir.
func (s *Service) Export(ctx context.Context, batchPath, outDir string) (int, error) {
	return export.NewReconstructor(s.store, s.logger).Export(ctx, batchPath, outDir)
}

func (s *Service) engine() *merge.Engine {
	return merge.NewEngine(s.store, merge.WithLogger(s.logger.Named("merge")))
}
