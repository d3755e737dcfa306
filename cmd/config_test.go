package cmd

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/cobra"
)

func TestConfigSections(t *testing.T) {
	Convey("Section completion", t, func() {
		names, directive := completionConfigSections(nil, nil, "")

		Convey("Should offer every section with its title", func() {
			So(names, ShouldContain, "player\tPlayback")
			So(names, ShouldContain, "subtitles\tSubtitles")
			So(len(names), ShouldEqual, len(sectionNames()))
		})

		Convey("Should be sorted and never complete files", func() {
			So(sectionNames()[0], ShouldEqual, "catalog")
			So(directive&cobra.ShellCompDirectiveNoFileComp, ShouldNotEqual, 0)
		})
	})
}
