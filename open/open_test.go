package open

import (
	"testing"

	"github.com/reel-cli/reel/constant"
	. "github.com/smartystreets/goconvey/convey"
)

func TestCommand(t *testing.T) {
	const stream = "https://cdn.example/550/master.m3u8?a=1&b=2"

	Convey("Given a stream URL", t, func() {
		Convey("Linux uses xdg-open by default", func() {
			cmd, ok := command(constant.Linux, stream, "")
			So(ok, ShouldBeTrue)
			So(cmd.Args, ShouldResemble, []string{"xdg-open", stream})
		})

		Convey("Linux runs the chosen app directly", func() {
			cmd, ok := command(constant.Linux, stream, "vlc")
			So(ok, ShouldBeTrue)
			So(cmd.Args, ShouldResemble, []string{"vlc", stream})
		})

		Convey("macOS passes the app to open", func() {
			cmd, ok := command(constant.Darwin, stream, "IINA")
			So(ok, ShouldBeTrue)
			So(cmd.Args, ShouldResemble, []string{"open", "-a", "IINA", stream})
		})

		Convey("Windows escapes ampersands for start", func() {
			cmd, ok := command(constant.Windows, stream, "vlc")
			So(ok, ShouldBeTrue)
			So(cmd.Args[len(cmd.Args)-1], ShouldEqual, "https://cdn.example/550/master.m3u8?a=1^&b=2")
		})

		Convey("Unknown systems are rejected", func() {
			_, ok := command("plan9", stream, "")
			So(ok, ShouldBeFalse)
		})
	})
}
