package tui

import (
	"testing"

	"github.com/reel-cli/reel/key"
	"github.com/reel-cli/reel/playback"
	"github.com/samber/lo"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
)

func init() {
	viper.Set(key.IconsVariant, "plain")
}

func TestGeometry(t *testing.T) {
	Convey("Given a player laid out at column 2, row 1 with five surface rows", t, func() {
		g := geometry{left: 2, top: 1, width: 40, surfaceRows: 5}

		Convey("Then the controls sit right below the surface", func() {
			So(g.barRow(), ShouldEqual, 9)
			So(g.transportRow(), ShouldEqual, 10)
		})

		Convey("Then rows map to regions", func() {
			So(g.region(2, 1), ShouldEqual, playback.Outside)
			So(g.region(2, 1+surfaceRow), ShouldEqual, playback.Surface)
			So(g.region(10, 1+8), ShouldEqual, playback.Surface)
			So(g.region(10, 1+9), ShouldEqual, playback.Controls)
			So(g.region(10, 1+10), ShouldEqual, playback.Controls)
			So(g.region(10, 1+11), ShouldEqual, playback.Outside)
		})

		Convey("Then columns outside the content are outside", func() {
			So(g.region(1, 1+surfaceRow), ShouldEqual, playback.Outside)
			So(g.region(42, 1+surfaceRow), ShouldEqual, playback.Outside)
		})

		Convey("Then the track leaves room for the readout", func() {
			So(g.barWidth(), ShouldEqual, 40-readoutWidth)
			So(g.onBar(2, 10), ShouldBeTrue)
			So(g.onBar(2+g.barWidth()-1, 10), ShouldBeTrue)
			So(g.onBar(2+g.barWidth(), 10), ShouldBeFalse)
			So(g.onBar(2, 11), ShouldBeFalse)
		})

		Convey("Then offsets are measured from the left edge of the track", func() {
			So(g.barOffset(12), ShouldEqual, 10)
			So(g.barOffset(0), ShouldEqual, -2)
		})
	})

	Convey("Given a terminal narrower than the readout", t, func() {
		g := geometry{width: 3, surfaceRows: minSurfaceRows}

		Convey("Then the track is still one cell wide", func() {
			So(g.barWidth(), ShouldEqual, 1)
		})
	})
}

func TestTransport(t *testing.T) {
	Convey("Given a playing state at 80% volume", t, func() {
		s := playback.State{Source: "x", Playing: true, Volume: 0.8, CurrentTime: 65, Duration: 3600}
		line, spots := transport(s)

		Convey("Then every button gets a hotspot in order", func() {
			So(lo.Map(spots, func(h hotspot, _ int) control { return h.ctl }), ShouldResemble,
				[]control{ctlRewind, ctlPlayPause, ctlForward, ctlMute, ctlFullscreen})
			for i := 1; i < len(spots); i++ {
				So(spots[i].from, ShouldBeGreaterThanOrEqualTo, spots[i-1].to+len(transportGap))
			}
		})

		Convey("Then the line carries the volume and the clock", func() {
			So(line, ShouldContainSubstring, "80%")
			So(line, ShouldEndWith, "1:05 / 1:00:00")
		})

		Convey("Then clicks resolve to the button under them", func() {
			ctl, ok := hotspotAt(spots, spots[1].from)
			So(ok, ShouldBeTrue)
			So(ctl, ShouldEqual, ctlPlayPause)

			_, ok = hotspotAt(spots, spots[0].to)
			So(ok, ShouldBeFalse)
		})
	})

	Convey("Given a muted state", t, func() {
		line, _ := transport(playback.State{Volume: 0.8, Muted: true})

		Convey("Then the volume reads mute", func() {
			So(line, ShouldContainSubstring, "mute")
		})
	})

	Convey("Given a state at zero volume", t, func() {
		line, _ := transport(playback.State{Volume: 0})

		Convey("Then it is shown as muted too", func() {
			So(line, ShouldContainSubstring, "mute")
		})
	})
}
