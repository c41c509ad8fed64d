package changes_test

import (
	"context"
	"errors"
	"testing"

	"github.com/okian/evalsync/internal/changes"
	. "github.com/smartystreets/goconvey/convey"
)

func TestDetector(t *testing.T) {
	Convey("Given a synthetic history", t, func() {
		ctx := context.Background()

		Convey("When documents changed in several leaderboards", func() {
			h := changes.Static{Paths: []string{
				"data/L2/beta/bar/u7.json",
				"data/L1/acme/foo/u2.json",
				"data/L1/acme/foo/u1.json",
				"data/L1/acme/foo/u1.json",
				"data/L1/README.md",
				"scripts/convert.py",
				"database/L9/x/y/z.json",
				"data/top.json",
			}}
			set, err := changes.NewDetector(h, "data").Detect(ctx, "HEAD~1", "HEAD")

			Convey("Then they should be grouped by leaderboard and sorted", func() {
				So(err, ShouldBeNil)
				So(set.Empty(), ShouldBeFalse)
				So(set.Leaderboards, ShouldResemble, []string{"L1", "L2"})
				So(set.Paths["L1"], ShouldResemble, []string{"L1/acme/foo/u1.json", "L1/acme/foo/u2.json"})
				So(set.Paths["L2"], ShouldResemble, []string{"L2/beta/bar/u7.json"})
			})
		})

		Convey("When the prefix is written with slashes", func() {
			h := changes.Static{Paths: []string{"data/L1/acme/foo/u1.json"}}
			set, err := changes.NewDetector(h, "./data/").Detect(ctx, "a", "b")

			Convey("Then it should be normalized", func() {
				So(err, ShouldBeNil)
				So(set.Leaderboards, ShouldResemble, []string{"L1"})
			})
		})

		Convey("When nothing changed", func() {
			set, err := changes.NewDetector(changes.Static{}, "data").Detect(ctx, "a", "b")

			Convey("Then the empty set should be a valid result", func() {
				So(err, ShouldBeNil)
				So(set.Empty(), ShouldBeTrue)
			})
		})

		Convey("When the history fails", func() {
			h := changes.Static{Err: errors.New("unknown revision HEAD~1")}
			_, err := changes.NewDetector(h, "data").Detect(ctx, "HEAD~1", "HEAD")

			Convey("Then the error should be fatal ErrHistory", func() {
				So(errors.Is(err, changes.ErrHistory), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, "unknown revision")
			})
		})
	})
}
