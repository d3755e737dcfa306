package tui

import (
	"fmt"
	"strings"

	"github.com/reel-cli/reel/icon"
	"github.com/reel-cli/reel/playback"
	"github.com/charmbracelet/lipgloss"
	"github.com/samber/lo"
)

// Player view rows, relative to the padded content origin.
const (
	surfaceRow     = 4
	minSurfaceRows = 3
	readoutWidth   = len(" 00:00:00")
)

// geometry locates the overlay regions in terminal cells so mouse events
// can be mapped to the surface and the controls.
type geometry struct {
	left, top   int
	width       int
	surfaceRows int
}

func (g geometry) barRow() int       { return surfaceRow + g.surfaceRows }
func (g geometry) transportRow() int { return g.barRow() + 1 }

// barWidth is the width of the seek track. The readout sits to its right.
func (g geometry) barWidth() int {
	return lo.Max([]int{g.width - readoutWidth, 1})
}

// region reports what the pointer at x, y is over.
func (g geometry) region(x, y int) playback.Region {
	row, col := y-g.top, x-g.left
	if col < 0 || col >= g.width {
		return playback.Outside
	}

	switch {
	case row >= surfaceRow && row < g.barRow():
		return playback.Surface
	case row == g.barRow(), row == g.transportRow():
		return playback.Controls
	default:
		return playback.Outside
	}
}

// onBar reports whether x, y hits the seek track.
func (g geometry) onBar(x, y int) bool {
	col := x - g.left
	return y-g.top == g.barRow() && col >= 0 && col < g.barWidth()
}

// barOffset is the pointer offset along the track. It may fall outside
// [0, width) while dragging; the controller clamps it.
func (g geometry) barOffset(x int) float64 {
	return float64(x - g.left)
}

type control int

const (
	ctlRewind control = iota
	ctlPlayPause
	ctlForward
	ctlMute
	ctlFullscreen
)

// hotspot is a clickable span of the transport row, in content columns.
type hotspot struct {
	from, to int
	ctl      control
}

func (h hotspot) contains(col int) bool {
	return col >= h.from && col < h.to
}

const transportGap = "  "

// transport renders the button row and returns where each button landed.
func transport(s playback.State) (string, []hotspot) {
	playIcon := icon.Get(icon.Play)
	if s.Playing {
		playIcon = icon.Get(icon.Pause)
	}

	volume := fmt.Sprintf("%3.0f%%", s.Volume*100)
	if s.DisplayMuted() {
		volume = "mute"
	}

	type segment struct {
		text string
		ctl  *control
	}
	ctl := func(c control) *control { return &c }

	segments := []segment{
		{icon.Get(icon.Rewind), ctl(ctlRewind)},
		{playIcon, ctl(ctlPlayPause)},
		{icon.Get(icon.Forward), ctl(ctlForward)},
		{icon.Volume(s.Volume, s.Muted) + " " + volume, ctl(ctlMute)},
		{icon.Get(icon.Fullscreen), ctl(ctlFullscreen)},
		{s.Clock(), nil},
	}

	var (
		sb    strings.Builder
		spots []hotspot
		col   int
	)

	for i, seg := range segments {
		if i > 0 {
			sb.WriteString(transportGap)
			col += lipgloss.Width(transportGap)
		}

		w := lipgloss.Width(seg.text)
		if seg.ctl != nil {
			spots = append(spots, hotspot{from: col, to: col + w, ctl: *seg.ctl})
		}
		sb.WriteString(seg.text)
		col += w
	}

	return sb.String(), spots
}

// hotspotAt finds the button under content column col.
func hotspotAt(spots []hotspot, col int) (control, bool) {
	spot, ok := lo.Find(spots, func(h hotspot) bool {
		return h.contains(col)
	})
	return spot.ctl, ok
}

// press applies a transport button to the controller.
func press(c *playback.Controller, ctl control) {
	switch ctl {
	case ctlRewind:
		c.Rewind()
	case ctlPlayPause:
		c.TogglePlayPause()
	case ctlForward:
		c.Forward()
	case ctlMute:
		c.ToggleMute()
	case ctlFullscreen:
		c.ToggleFullscreen()
	}
}
