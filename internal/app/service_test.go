package service_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/evalsync/internal/adapters/remote"
	service "github.com/okian/evalsync/internal/app"
	"github.com/okian/evalsync/internal/changes"
	"github.com/okian/evalsync/internal/config"
	"github.com/okian/evalsync/internal/manifest"
	"github.com/okian/evalsync/internal/merge"
	"github.com/okian/evalsync/internal/testdocs"
	"github.com/okian/evalsync/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.InitWith(logger.Options{Writer: os.Stderr}); err != nil {
		panic(err)
	}
	_ = logger.SetLevelString("error")
}

type env struct {
	ctx       context.Context
	data      string
	out       string
	remoteDir string
	remote    *remote.FS
}

func newEnv(t *testing.T) *env {
	dir := t.TempDir()
	e := &env{
		ctx:       context.Background(),
		data:      filepath.Join(dir, "data"),
		out:       filepath.Join(dir, "out"),
		remoteDir: filepath.Join(dir, "remote"),
	}
	e.remote = remote.NewFS(e.remoteDir, "")
	return e
}

func (e *env) write(rel string, d testdocs.Doc) {
	_, err := testdocs.Write(e.data, rel, d)
	So(err, ShouldBeNil)
}

func (e *env) service(paths []string, opts ...service.Option) *service.Service {
	base := []service.Option{
		service.WithHistory(changes.Static{Paths: paths}, "data"),
		service.WithRemote(e.remote),
		service.WithDataDir(e.data),
		service.WithOutputDir(e.out),
		service.WithLogger(logger.Get()),
	}
	return service.New(append(base, opts...)...)
}

type failingRemote struct{ remote.Nop }

func (failingRemote) Fetch(context.Context, string, string) error {
	return errors.New("503 service unavailable")
}

func (failingRemote) Name() string { return "failing" }

func TestSync(t *testing.T) {
	Convey("Given a document tree and a remote store", t, func() {
		e := newEnv(t)
		e.write("L1/acme/foo/u1.json", testdocs.Valid("acme/foo"))
		e.write("L1/beta/bar/u2.json", testdocs.Valid("beta/bar"))
		e.write("L2/acme/foo/u3.json", testdocs.Valid("acme/foo").Without("model_info.id"))

		Convey("When nothing changed", func() {
			svc := e.service(nil)
			res, err := svc.Sync(e.ctx, "HEAD~1", "HEAD")

			Convey("Then the run should end with no changes and an empty manifest", func() {
				So(err, ShouldBeNil)
				So(res.Status, ShouldEqual, service.StatusNoChanges)
				So(res.RunID, ShouldNotBeEmpty)

				m, err := manifest.Read(svc.ManifestPath())
				So(err, ShouldBeNil)
				So(m.Changed, ShouldBeEmpty)
				So(m.Converted, ShouldBeEmpty)
				So(m.Errors, ShouldEqual, 0)
			})
		})

		Convey("When one leaderboard converts and another has no valid documents", func() {
			svc := e.service([]string{"data/L1/acme/foo/u1.json", "data/L2/acme/foo/u3.json"})
			res, err := svc.Sync(e.ctx, "HEAD~1", "HEAD")

			Convey("Then the run should be a partial failure", func() {
				So(res.Status, ShouldEqual, service.StatusPartialFailure)
				So(errors.Is(err, service.ErrLeaderboard), ShouldBeTrue)
				So(errors.Is(err, merge.ErrEmptyResult), ShouldBeTrue)
				So(res.Manifest.Changed, ShouldResemble, []string{"L1", "L2"})
				So(res.Manifest.Converted, ShouldResemble, []string{"L1"})
				So(res.Manifest.Downloaded, ShouldBeEmpty)
				So(res.Manifest.Errors, ShouldEqual, 1)
			})

			Convey("Then the leaderboard mode should merge every L1 document", func() {
				So(res.Reports[0].Leaderboard, ShouldEqual, "L1")
				So(res.Reports[0].Added, ShouldEqual, 2)
				So(res.Reports[1].Failures, ShouldHaveLength, 1)
			})
		})

		Convey("When only the failing leaderboard changed", func() {
			svc := e.service([]string{"data/L2/acme/foo/u3.json"})
			res, err := svc.Sync(e.ctx, "HEAD~1", "HEAD")

			Convey("Then the run should be a failure", func() {
				So(err, ShouldNotBeNil)
				So(res.Status, ShouldEqual, service.StatusFailure)
				So(res.Status.OK(), ShouldBeFalse)
			})
		})

		Convey("When running in paths mode", func() {
			svc := e.service([]string{"data/L1/acme/foo/u1.json"}, service.WithMode(config.ModePaths))
			res, err := svc.Sync(e.ctx, "HEAD~1", "HEAD")

			Convey("Then only the changed document should be merged", func() {
				So(err, ShouldBeNil)
				So(res.Status, ShouldEqual, service.StatusSuccess)
				So(res.Reports[0].Added, ShouldEqual, 1)
			})
		})

		Convey("When the remote already holds a batch", func() {
			seed := e.service([]string{"data/L1/acme/foo/u1.json"}, service.WithMode(config.ModePaths))
			_, err := seed.Sync(e.ctx, "a", "b")
			So(err, ShouldBeNil)
			So(e.remote.Publish(e.ctx, "L1", seed.BatchPath("L1")), ShouldBeNil)
			So(os.Remove(seed.BatchPath("L1")), ShouldBeNil)

			svc := e.service([]string{"data/L1/beta/bar/u2.json", "data/L1/acme/foo/u1.json"})
			res, err := svc.Sync(e.ctx, "b", "c")

			Convey("Then it should be downloaded and extended", func() {
				So(err, ShouldBeNil)
				So(res.Manifest.Downloaded, ShouldResemble, []string{"L1"})
				So(res.Reports[0].Existing, ShouldEqual, 1)
				So(res.Reports[0].Added, ShouldEqual, 1)
				So(res.Reports[0].Skipped, ShouldEqual, 1)
				So(res.Reports[0].Total, ShouldEqual, 2)
			})
		})

		Convey("When the remote fails with something other than not found", func() {
			svc := e.service([]string{"data/L1/acme/foo/u1.json"}, service.WithRemote(failingRemote{}))
			res, err := svc.Sync(e.ctx, "a", "b")

			Convey("Then the run should abort", func() {
				So(errors.Is(err, service.ErrRemote), ShouldBeTrue)
				So(res.Status, ShouldEqual, service.StatusFailure)
				So(res.Manifest.Converted, ShouldBeEmpty)

				m, err := manifest.Read(svc.ManifestPath())
				So(err, ShouldBeNil)
				So(m.Errors, ShouldEqual, 1)
			})
		})

		Convey("When the history cannot be read", func() {
			svc := service.New(
				service.WithHistory(changes.Static{Err: errors.New("bad revision")}, "data"),
				service.WithOutputDir(e.out),
			)
			res, err := svc.Sync(e.ctx, "a", "b")

			Convey("Then the run should fail without a manifest", func() {
				So(errors.Is(err, changes.ErrHistory), ShouldBeTrue)
				So(res.Status, ShouldEqual, service.StatusFailure)
				_, statErr := os.Stat(svc.ManifestPath())
				So(os.IsNotExist(statErr), ShouldBeTrue)
			})
		})

		Convey("When no history is configured", func() {
			_, err := service.New().Sync(e.ctx, "a", "b")

			Convey("Then Sync should be refused", func() {
				So(errors.Is(err, service.ErrNotConfigured), ShouldBeTrue)
			})
		})
	})
}

func TestPublish(t *testing.T) {
	Convey("Given a finished sync run", t, func() {
		e := newEnv(t)
		e.write("L1/acme/foo/u1.json", testdocs.Valid("acme/foo"))
		e.write("L2/acme/foo/u2.json", testdocs.Valid("acme/foo"))
		svc := e.service([]string{"data/L1/acme/foo/u1.json", "data/L2/acme/foo/u2.json"})
		_, err := svc.Sync(e.ctx, "a", "b")
		So(err, ShouldBeNil)

		Convey("When publishing", func() {
			res, err := svc.Publish(e.ctx)

			Convey("Then every converted batch should be uploaded", func() {
				So(err, ShouldBeNil)
				So(res.Uploaded, ShouldResemble, []string{"L1", "L2"})
				_, statErr := os.Stat(filepath.Join(e.remoteDir, "data", "L2", "data-00000-of-00001.parquet"))
				So(statErr, ShouldBeNil)
			})
		})

		Convey("When a converted batch is missing locally", func() {
			So(os.Remove(svc.BatchPath("L2")), ShouldBeNil)
			res, err := svc.Publish(e.ctx)

			Convey("Then it should be skipped", func() {
				So(err, ShouldBeNil)
				So(res.Uploaded, ShouldResemble, []string{"L1"})
				So(res.Missing, ShouldResemble, []string{"L2"})
			})
		})

		Convey("When there is no manifest", func() {
			_, err := e.service(nil, service.WithOutputDir(t.TempDir())).Publish(e.ctx)

			Convey("Then publish should fail", func() {
				So(errors.Is(err, manifest.ErrNotFound), ShouldBeTrue)
			})
		})
	})

	Convey("Given a manifest with nothing converted", t, func() {
		e := newEnv(t)
		svc := e.service(nil)
		_, err := svc.Sync(e.ctx, "a", "b")
		So(err, ShouldBeNil)

		Convey("Then publish should be a no-op", func() {
			res, err := svc.Publish(e.ctx)
			So(err, ShouldBeNil)
			So(res.Uploaded, ShouldBeEmpty)
		})
	})
}

func TestAddAndExport(t *testing.T) {
	Convey("Given a leaderboard folder", t, func() {
		e := newEnv(t)
		e.write("L1/acme/foo/u1.json", testdocs.Valid("acme/foo"))
		e.write("L1/acme/foo/u2.json", testdocs.Valid("acme/foo"))
		svc := e.service(nil)
		target := filepath.Join(e.out, "L1.parquet")

		Convey("When adding the folder and exporting the batch", func() {
			report, err := svc.Add(e.ctx, filepath.Join(e.data, "L1"), target)
			So(err, ShouldBeNil)

			restored := filepath.Join(t.TempDir(), "restored")
			n, err := svc.Export(e.ctx, target, restored)

			Convey("Then both documents should round trip", func() {
				So(report.Added, ShouldEqual, 2)
				So(err, ShouldBeNil)
				So(n, ShouldEqual, 2)
				_, statErr := os.Stat(filepath.Join(restored, "L1", "acme", "foo", "u2.json"))
				So(statErr, ShouldBeNil)
			})
		})

		Convey("When adding a single file", func() {
			report, err := svc.Add(e.ctx, filepath.Join(e.data, "L1", "acme", "foo", "u1.json"), target)

			Convey("Then one row should be written", func() {
				So(err, ShouldBeNil)
				So(report.Total, ShouldEqual, 1)
			})
		})
	})
}

func TestStatusOf(t *testing.T) {
	Convey("Given manifests", t, func() {
		So(service.StatusOf(manifest.Manifest{}), ShouldEqual, service.StatusNoChanges)
		So(service.StatusOf(manifest.Manifest{Changed: []string{"L1"}, Converted: []string{"L1"}}), ShouldEqual, service.StatusSuccess)
		So(service.StatusOf(manifest.Manifest{Changed: []string{"L1", "L2"}, Converted: []string{"L1"}, Errors: 1}), ShouldEqual, service.StatusPartialFailure)
		So(service.StatusOf(manifest.Manifest{Changed: []string{"L1"}, Errors: 1}), ShouldEqual, service.StatusFailure)
		So(service.StatusPartialFailure.String(), ShouldEqual, "partial_failure")
		So(service.StatusSuccess.OK(), ShouldBeTrue)
	})
}

func TestDataPaths(t *testing.T) {
	Convey("Given repository and data directories", t, func() {
		Convey("When the data dir is relative", func() {
			root, prefix, err := service.DataPaths("/repo", "data")
			So(err, ShouldBeNil)
			So(root, ShouldEqual, filepath.Join("/repo", "data"))
			So(prefix, ShouldEqual, "data")
		})

		Convey("When the data dir is absolute inside the repo", func() {
			root, prefix, err := service.DataPaths("/repo", "/repo/records/data")
			So(err, ShouldBeNil)
			So(root, ShouldEqual, "/repo/records/data")
			So(prefix, ShouldEqual, "records/data")
		})
	})
}
