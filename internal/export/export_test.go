package export_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/evalsync/internal/adapters/repository"
	"github.com/okian/evalsync/internal/adapters/tree"
	"github.com/okian/evalsync/internal/domain/schema"
	"github.com/okian/evalsync/internal/export"
	"github.com/okian/evalsync/internal/merge"
	"github.com/okian/evalsync/internal/testdocs"
	. "github.com/smartystreets/goconvey/convey"
)

func TestReconstructor(t *testing.T) {
	Convey("Given a batch built from a document tree", t, func() {
		ctx := context.Background()
		dir := t.TempDir()
		root := filepath.Join(dir, "data")
		target := filepath.Join(dir, "L1.parquet")
		store := repository.NewParquetStore()

		docs := map[string]testdocs.Doc{
			"L1/acme/foo/u1.json":  testdocs.Valid("acme/foo"),
			"L1/acme/foo/u2.json":  testdocs.Valid("acme/foo").Without("additional_details"),
			"L1/beta/bar/u3.json":  testdocs.Valid("beta/bar").With("additional_details", map[string]any{}),
			"L1/gamma/baz/u4.json": testdocs.Rich("gamma/baz"),
		}
		var sources []tree.Source
		for rel, d := range docs {
			_, err := testdocs.Write(root, rel, d)
			So(err, ShouldBeNil)
			sources = append(sources, tree.FromRel(root, rel))
		}
		_, err := merge.NewEngine(store).Merge(ctx, target, sources)
		So(err, ShouldBeNil)

		rec := export.NewReconstructor(store, nil)
		out := filepath.Join(dir, "restored")

		Convey("When exporting the batch", func() {
			n, err := rec.Export(ctx, target, out)

			Convey("Then every document should be restored at its key path", func() {
				So(err, ShouldBeNil)
				So(n, ShouldEqual, 4)

				for rel, d := range docs {
					want, err := schema.Parse(d.JSON())
					So(err, ShouldBeNil)

					raw, err := os.ReadFile(filepath.Join(out, filepath.FromSlash(rel)))
					So(err, ShouldBeNil)
					got, err := schema.Parse(raw)
					So(err, ShouldBeNil)
					So(got, ShouldResemble, want)
				}
			})

			Convey("Then every file should match its source JSON structurally", func() {
				for rel, d := range docs {
					raw, err := os.ReadFile(filepath.Join(out, filepath.FromSlash(rel)))
					So(err, ShouldBeNil)
					got, err := testdocs.Canonical(raw)
					So(err, ShouldBeNil)
					want, err := testdocs.Canonical(d.JSON())
					So(err, ShouldBeNil)
					So(got, ShouldResemble, want)
				}
			})

			Convey("Then nested keys the pipeline does not know should survive", func() {
				raw, err := os.ReadFile(filepath.Join(out, "L1", "gamma", "baz", "u4.json"))
				So(err, ShouldBeNil)
				So(string(raw), ShouldContainSubstring, "\"generation_config\"")
				So(string(raw), ShouldContainSubstring, "\"format\": \"json\"")
				So(string(raw), ShouldContainSubstring, "\"additional_details\": null")
			})

			Convey("Then absent and empty additional_details should stay distinct", func() {
				absent, _ := os.ReadFile(filepath.Join(out, "L1", "acme", "foo", "u2.json"))
				empty, _ := os.ReadFile(filepath.Join(out, "L1", "beta", "bar", "u3.json"))
				So(string(absent), ShouldNotContainSubstring, "additional_details")
				So(string(empty), ShouldContainSubstring, "\"additional_details\": {}")
			})

			Convey("And exporting again", func() {
				first, _ := os.ReadFile(filepath.Join(out, "L1", "acme", "foo", "u1.json"))
				n2, err := rec.Export(ctx, target, out)
				second, _ := os.ReadFile(filepath.Join(out, "L1", "acme", "foo", "u1.json"))

				Convey("Then the files should be identical", func() {
					So(err, ShouldBeNil)
					So(n2, ShouldEqual, 4)
					So(string(second), ShouldEqual, string(first))
				})
			})
		})

		Convey("When the batch does not exist", func() {
			_, err := rec.Export(ctx, filepath.Join(dir, "missing.parquet"), out)

			Convey("Then it should report not found", func() {
				So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
			})
		})
	})
}
