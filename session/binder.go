package session

import (
	"context"
	"fmt"

	"github.com/reel-cli/reel/log"
	"github.com/reel-cli/reel/player"
)

// Binder keeps exactly one live handle per sink. Changing the URL always
// detaches the current handle before the next attach.
type Binder struct {
	attacher Attacher
	sink     player.Sink
	current  Handle
	url      string
}

func NewBinder(attacher Attacher, sink player.Sink) *Binder {
	return &Binder{attacher: attacher, sink: sink}
}

// Set makes url the bound source. An empty url leaves the sink idle.
// Setting the URL that is already attached is a no-op.
func (b *Binder) Set(ctx context.Context, url string) (Handle, error) {
	if url == b.url && b.current != nil {
		return b.current, nil
	}

	if err := b.release(); err != nil {
		log.Component("session").Warnf("detach %s: %v", b.url, err)
	}
	b.url = url

	if url == "" {
		return nil, nil
	}

	h, err := b.attacher.Attach(ctx, b.sink, url)
	if err != nil {
		return nil, fmt.Errorf("attach %s: %w", url, err)
	}
	b.current = h
	return h, nil
}

// Current returns the live handle or nil.
func (b *Binder) Current() Handle {
	return b.current
}

// Close detaches the live handle.
func (b *Binder) Close() error {
	b.url = ""
	return b.release()
}

func (b *Binder) release() error {
	h := b.current
	if h == nil {
		return nil
	}
	b.current = nil

	if _, native := h.(NativeFallback); native {
		return b.sink.Unload()
	}
	return h.Detach()
}
