package cmd

import (
	"errors"
	"strings"
	"testing"

	"github.com/reel-cli/reel/catalog"
	"github.com/reel-cli/reel/filesystem"
	"github.com/reel-cli/reel/history"
	"github.com/reel-cli/reel/key"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/cobra"
)

func init() {
	filesystem.SetMemMapFs()
}

func newRequestCmd(args ...string) *cobra.Command {
	cmd := &cobra.Command{Use: "test"}
	addRequestFlags(cmd)
	if err := cmd.ParseFlags(args); err != nil {
		panic(err)
	}
	return cmd
}

func TestRequestFrom(t *testing.T) {
	Convey("Given the request flags", t, func() {
		Convey("A bare ID is a movie", func() {
			req, err := requestFrom(newRequestCmd(), "550")
			So(err, ShouldBeNil)
			So(req, ShouldResemble, catalog.Request{ID: "550", Kind: catalog.Movie})
		})

		Convey("Season and episode are ignored for movies", func() {
			req, err := requestFrom(newRequestCmd("-s", "1", "-e", "2"), "550")
			So(err, ShouldBeNil)
			So(req.Season, ShouldBeEmpty)
		})

		Convey("--tv reads season and episode", func() {
			req, err := requestFrom(newRequestCmd("--tv", "-s", "1", "-e", "2"), "1399")
			So(err, ShouldBeNil)
			So(req, ShouldResemble, catalog.Request{ID: "1399", Kind: catalog.TV, Season: "1", Episode: "2"})
		})

		Convey("--tv without an episode fails validation", func() {
			_, err := requestFrom(newRequestCmd("--tv"), "1399")
			So(errors.Is(err, catalog.ErrValidation), ShouldBeTrue)
		})

		Convey("A blank ID fails validation", func() {
			_, err := requestFrom(newRequestCmd(), " ")
			So(errors.Is(err, catalog.ErrValidation), ShouldBeTrue)
		})
	})
}

func TestCompleteIDs(t *testing.T) {
	Convey("Given a remembered title", t, func() {
		So(history.Save(catalog.Request{ID: "550", Kind: catalog.Movie}, "Fight Club"), ShouldBeNil)

		Convey("The first argument completes to its ID", func() {
			ids, directive := completeIDs(nil, nil, "")
			So(ids, ShouldContain, "550\tFight Club")
			So(directive&cobra.ShellCompDirectiveNoFileComp, ShouldNotEqual, 0)
		})

		Convey("Later arguments complete to nothing", func() {
			ids, _ := completeIDs(nil, []string{"550"}, "")
			So(ids, ShouldBeEmpty)
		})
	})
}

func TestErrUnknownKey(t *testing.T) {
	Convey("Given a misspelled configuration key", t, func() {
		err := errUnknownKey("subtitles.langauge")

		Convey("The error suggests the closest known key", func() {
			So(strings.Contains(err.Error(), key.SubtitlesLanguage), ShouldBeTrue)
		})
	})
}
