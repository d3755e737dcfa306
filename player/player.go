// Package player defines the media sink abstraction and its mpv backend.
// The sink decodes and renders the stream; everything it observes is reported
// back as Events on a single ordered channel.
package player

import "errors"

// ErrNotRunning is returned by commands sent to a sink whose process is gone.
var ErrNotRunning = errors.New("player is not running")

// Sink is the presentation surface driven by the playback controller.
// Every mutating method is a fire-and-forget request: the resulting state is
// observed later through Events, never assumed.
type Sink interface {
	// Load replaces the current source with url.
	Load(url string) error

	// Unload stops playback and leaves the sink idle.
	Unload() error

	Play() error
	Pause() error

	// Seek moves to an absolute position in seconds.
	Seek(seconds float64) error

	// SetVolume takes a level in [0, 1].
	SetVolume(level float64) error
	SetMuted(muted bool) error
	SetFullscreen(on bool) error

	// AddSubtitle attaches a single text track.
	AddSubtitle(track Track) error

	// RemoveSubtitles drops every attached text track.
	RemoveSubtitles() error

	// CanPlayType reports whether the sink can natively play the mime type.
	CanPlayType(mime string) bool

	// Events delivers sink notifications in arrival order.
	Events() <-chan Event
}

// Track describes a subtitle text track.
type Track struct {
	Lang    string
	Label   string
	URL     string
	Default bool
}

// EventKind enumerates the sink notifications.
type EventKind int

const (
	Played EventKind = iota + 1
	Paused
	TimeUpdate
	DurationChange
	VolumeChange
	FullscreenChange
	Errored
	Ended
)

func (k EventKind) String() string {
	switch k {
	case Played:
		return "played"
	case Paused:
		return "paused"
	case TimeUpdate:
		return "timeupdate"
	case DurationChange:
		return "durationchange"
	case VolumeChange:
		return "volumechange"
	case FullscreenChange:
		return "fullscreenchange"
	case Errored:
		return "error"
	case Ended:
		return "ended"
	default:
		return "unknown"
	}
}

// Event is a single sink notification. Only the fields relevant to Kind are set.
type Event struct {
	Kind EventKind

	// Seconds carries the position for TimeUpdate and the length for DurationChange.
	Seconds float64

	// Volume and Muted are both set on VolumeChange.
	Volume float64
	Muted  bool

	Fullscreen bool

	Err error
}
