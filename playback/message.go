package playback

import (
	"context"

	"github.com/reel-cli/reel/player"
	"github.com/reel-cli/reel/session"
)

// message is anything handled by the controller loop.
type message interface{}

type (
	togglePlayPause  struct{}
	toggleMute       struct{}
	toggleFullscreen struct{}
	seekEnd          struct{}
	pointerEnter     struct{}
	pointerLeave     struct{}

	seekStart struct{ offset, width float64 }
	seekMove  struct{ offset, width float64 }
	seekClick struct{ offset, width float64 }
	skipBy    struct{ delta float64 }
	setVolume struct{ level float64 }

	pointerMove struct{ region Region }

	sinkEvent   struct{ ev player.Event }
	hideExpired struct{ gen uint64 }

	sessionFailed struct {
		handle session.Handle
		err    error
	}
)

// request is a message whose sender waits for the outcome.
type request struct {
	ctx   context.Context
	do    func(ctx context.Context) error
	reply chan error
}
