package where

import (
	"path/filepath"
	"testing"

	"github.com/reel-cli/reel/filesystem"
	"github.com/samber/lo"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	filesystem.SetMemMapFs()
}

func TestPaths(t *testing.T) {
	Convey("Path functions", t, func() {
		Convey("Config()", func() {
			path := Config()
			So(path, ShouldNotBeEmpty)
			So(lo.Must(filesystem.API().IsDir(path)), ShouldBeTrue)
		})

		Convey("Config() honours the override variable", func() {
			t.Setenv(EnvConfigPath, "/tmp/reel-custom")
			So(Config(), ShouldEqual, "/tmp/reel-custom")
			So(lo.Must(filesystem.API().IsDir("/tmp/reel-custom")), ShouldBeTrue)
		})

		Convey("Cache()", func() {
			path := Cache()
			So(path, ShouldNotBeEmpty)
			So(lo.Must(filesystem.API().IsDir(path)), ShouldBeTrue)
		})

		Convey("Logs()", func() {
			path := Logs()
			So(lo.Must(filesystem.API().IsDir(path)), ShouldBeTrue)
		})

		Convey("Files live under their directories", func() {
			So(filepath.Dir(History()), ShouldEqual, Config())
			So(filepath.Dir(SubtitleSearches()), ShouldEqual, Cache())
			So(filepath.Dir(Downloads()), ShouldEqual, Cache())
			So(lo.Must(filesystem.API().IsDir(Downloads())), ShouldBeTrue)
		})
	})
}
