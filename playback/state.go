// Package playback holds the interactive player state machine. A single
// Controller per mounted player reconciles sink events with user gestures
// and owns the streaming session, the controls timer and the subtitle URL.
package playback

import (
	"fmt"
	"math"

	"github.com/samber/mo"
)

// Region is the part of the player the pointer is over.
type Region int

const (
	Outside Region = iota
	Surface
	Controls
)

func (r Region) String() string {
	switch r {
	case Surface:
		return "surface"
	case Controls:
		return "controls"
	default:
		return "outside"
	}
}

// Source is what the host asks the controller to play. Replacing it tears
// down the current session and subtitle before anything new is attached.
type Source struct {
	URL   string
	Title string

	// Subtitle is a WebVTT document published alongside the stream.
	Subtitle mo.Option[string]
}

// State is a snapshot of everything the overlay renders.
type State struct {
	Source string
	Title  string

	Playing     bool
	Ended       bool
	CurrentTime float64
	Duration    float64

	// Progress is the displayed position in [0, 1]. While Seeking it
	// follows the pointer, otherwise the sink.
	Progress float64
	Seeking  bool

	Volume float64
	Muted  bool

	Fullscreen      bool
	ControlsVisible bool
	Pointer         Region

	Subtitle string

	Err error
}

// Idle reports whether no stream is bound.
func (s State) Idle() bool {
	return s.Source == ""
}

// DisplayMuted is true when the speaker should be drawn as silent.
func (s State) DisplayMuted() bool {
	return s.Muted || s.Volume == 0
}

// Clock renders "current / total" for the transport bar.
func (s State) Clock() string {
	return FormatClock(s.CurrentTime) + " / " + FormatClock(s.Duration)
}

// Readout renders the fixed-width position shown next to the progress bar.
func (s State) Readout() string {
	return FormatFixed(s.CurrentTime)
}

func wholeSeconds(secs float64) int {
	if math.IsNaN(secs) || math.IsInf(secs, 0) || secs < 0 {
		return 0
	}
	return int(secs)
}

// FormatClock renders h:mm:ss, or m:ss when the hour is zero.
func FormatClock(secs float64) string {
	t := wholeSeconds(secs)
	h, m, s := t/3600, t/60%60, t%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

// FormatFixed renders zero-padded hh:mm:ss.
func FormatFixed(secs float64) string {
	t := wholeSeconds(secs)
	return fmt.Sprintf("%02d:%02d:%02d", t/3600, t/60%60, t%60)
}
