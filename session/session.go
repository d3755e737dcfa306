// Package session binds a stream URL to a media sink, either through a
// managed HLS session or by handing the URL to the sink directly.
package session

import (
	"context"
	"errors"

	"github.com/reel-cli/reel/player"
)

var (
	// ErrManifest marks a manifest that could not be loaded or parsed.
	ErrManifest = errors.New("manifest error")

	// ErrUnsupported is returned when neither a managed session nor the sink can play the stream.
	ErrUnsupported = errors.New("stream type not supported")

	// ErrDetached is returned by a second Detach on the same handle.
	ErrDetached = errors.New("session already detached")
)

// Handle is a live binding between a stream and a sink.
type Handle interface {
	// Detach releases everything the handle owns. Only the first call does work.
	Detach() error

	// Failed delivers a failure detected after attach, at most once.
	// It is nil when the handle never reports failures.
	Failed() <-chan error

	// URL is what the sink was told to load.
	URL() string
}

// Attacher creates handles. The Adapter is the production implementation.
type Attacher interface {
	Attach(ctx context.Context, sink player.Sink, url string) (Handle, error)
}

// NativeFallback is returned when the sink plays the manifest by itself.
// No session object exists, so detaching does nothing.
type NativeFallback struct {
	url string
}

func (n NativeFallback) Detach() error        { return nil }
func (n NativeFallback) Failed() <-chan error { return nil }
func (n NativeFallback) URL() string          { return n.url }
