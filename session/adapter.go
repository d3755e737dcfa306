package session

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/grafov/m3u8"
	"github.com/reel-cli/reel/constant"
	"github.com/reel-cli/reel/key"
	"github.com/reel-cli/reel/log"
	"github.com/reel-cli/reel/network"
	"github.com/reel-cli/reel/player"
	"github.com/spf13/viper"
)

// minReload bounds how often a live playlist is polled.
const minReload = time.Second

// Options tune the Adapter.
type Options struct {
	// Managed enables the managed HLS session. When false the sink is
	// always asked to play the manifest natively.
	Managed bool

	// MaxBandwidth caps the chosen variant in bits per second. Zero is unlimited.
	MaxBandwidth uint32

	Client *http.Client
}

// DefaultOptions reads the session.* configuration.
func DefaultOptions() Options {
	return Options{
		Managed:      viper.GetBool(key.SessionManaged),
		MaxBandwidth: viper.GetUint32(key.SessionMaxBandwidth),
		Client:       network.Client(),
	}
}

// Adapter attaches stream URLs to sinks.
type Adapter struct {
	opts Options
}

var _ Attacher = (*Adapter)(nil)

func NewAdapter(opts Options) *Adapter {
	if opts.Client == nil {
		opts.Client = network.Client()
	}
	return &Adapter{opts: opts}
}

// Attach binds url to sink. With managed sessions enabled the manifest is
// fetched and parsed here, so a broken manifest fails the attach.
func (a *Adapter) Attach(ctx context.Context, sink player.Sink, url string) (Handle, error) {
	if a.opts.Managed {
		return a.attachManaged(ctx, sink, url)
	}

	if !sink.CanPlayType(constant.MimeHLS) {
		return nil, ErrUnsupported
	}
	if err := sink.Load(url); err != nil {
		return nil, err
	}
	log.Component("session").Infof("native playback of %s", url)
	return NativeFallback{url: url}, nil
}

func (a *Adapter) attachManaged(ctx context.Context, sink player.Sink, manifestURL string) (Handle, error) {
	logger := log.Component("session")

	pl, kind, err := fetchPlaylist(ctx, a.opts.Client, manifestURL)
	if err != nil {
		return nil, err
	}

	mediaURL := manifestURL
	var media *m3u8.MediaPlaylist

	switch kind {
	case m3u8.MASTER:
		master := pl.(*m3u8.MasterPlaylist)
		variant, ok := pickVariant(master.Variants, a.opts.MaxBandwidth)
		if !ok {
			return nil, fmt.Errorf("%w: master playlist has no variants", ErrManifest)
		}
		if mediaURL, err = resolveRef(manifestURL, variant.URI); err != nil {
			return nil, fmt.Errorf("%w: variant uri: %v", ErrManifest, err)
		}
		logger.Infof("picked variant %s at %d bps", mediaURL, variant.Bandwidth)

		pl, kind, err = fetchPlaylist(ctx, a.opts.Client, mediaURL)
		if err != nil {
			return nil, err
		}
		if kind != m3u8.MEDIA {
			return nil, fmt.Errorf("%w: variant is not a media playlist", ErrManifest)
		}
		media = pl.(*m3u8.MediaPlaylist)
	case m3u8.MEDIA:
		media = pl.(*m3u8.MediaPlaylist)
	}

	if err := sink.Load(mediaURL); err != nil {
		return nil, err
	}

	watchCtx, cancel := context.WithCancel(context.Background())
	m := &Managed{
		sink:   sink,
		url:    mediaURL,
		cancel: cancel,
		failed: make(chan error, 1),
		client: a.opts.Client,
	}

	if !media.Closed {
		m.wg.Add(1)
		go m.watch(watchCtx, reloadInterval(media))
		logger.Infof("live playlist, reloading every %s", reloadInterval(media))
	}

	return m, nil
}

func reloadInterval(media *m3u8.MediaPlaylist) time.Duration {
	d := time.Duration(media.TargetDuration * float64(time.Second))
	if d < minReload {
		return minReload
	}
	return d
}

// Managed is a session whose media playlist is owned by this process.
// Live playlists are reloaded in the background until Detach.
type Managed struct {
	sink   player.Sink
	url    string
	client *http.Client

	cancel context.CancelFunc
	wg     sync.WaitGroup
	failed chan error

	mu       sync.Mutex
	detached bool
}

func (m *Managed) URL() string          { return m.url }
func (m *Managed) Failed() <-chan error { return m.failed }

// Detach stops the reload watcher, waits for it and unloads the sink.
func (m *Managed) Detach() error {
	m.mu.Lock()
	if m.detached {
		m.mu.Unlock()
		return ErrDetached
	}
	m.detached = true
	m.mu.Unlock()

	m.cancel()
	m.wg.Wait()
	return m.sink.Unload()
}

func (m *Managed) watch(ctx context.Context, interval time.Duration) {
	defer m.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		pl, kind, err := fetchPlaylist(ctx, m.client, m.url)
		if err == nil && kind != m3u8.MEDIA {
			err = fmt.Errorf("%w: live reload returned a master playlist", ErrManifest)
		}
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Component("session").Warnf("live reload of %s failed: %v", m.url, err)
			m.failed <- err
			return
		}

		media := pl.(*m3u8.MediaPlaylist)
		if media.Closed {
			return
		}
		if next := reloadInterval(media); next != interval {
			interval = next
			ticker.Reset(interval)
		}
	}
}
