package tui

import (
	"context"
	"errors"

	"github.com/reel-cli/reel/blob"
	"github.com/reel-cli/reel/key"
	"github.com/reel-cli/reel/player"
	"github.com/reel-cli/reel/playback"
	"github.com/reel-cli/reel/session"
	"github.com/reel-cli/reel/subtitle"
	"github.com/reel-cli/reel/util"
	"github.com/samber/lo"
	"github.com/spf13/viper"
)

// rig is one mounted player: a sink, the controller driving it and the
// resources both depend on. It lives until the user quits or the sink exits.
type rig struct {
	sink       player.Sink
	controller *playback.Controller

	states chan playback.State
	errs   chan error
	exited <-chan struct{}

	cancel   context.CancelFunc
	done     chan error
	closers  util.Stack[func() error]
	isClosed bool
}

// startRig launches mpv, the subtitle object server and a controller.
func startRig(title string) (*rig, error) {
	mpv := player.NewMPV(viper.GetStringSlice(key.PlayerMpvArgs)...)
	if err := mpv.Start(title); err != nil {
		return nil, err
	}

	blobs, err := blob.Start()
	if err != nil {
		return nil, errors.Join(err, mpv.Close())
	}

	r := assembleRig(mpv, session.NewAdapter(session.DefaultOptions()), blobs)
	r.exited = mpv.Wait()

	// popped after the controller has shut down
	r.closers.Push(mpv.Close)
	r.closers.Push(blobs.Close)
	return r, nil
}

// assembleRig wires a controller to sink and starts serving it.
func assembleRig(sink player.Sink, attacher session.Attacher, pub subtitle.Publisher, opts ...playback.Option) *rig {
	lang := viper.GetString(key.SubtitlesLanguage)

	r := &rig{
		sink:   sink,
		states: make(chan playback.State, 1),
		errs:   make(chan error, 1),
		done:   make(chan error, 1),
	}

	opts = append([]playback.Option{
		playback.WithObserver(r.observe),
		playback.WithErrorHandler(r.report),
	}, opts...)

	r.controller = playback.New(sink, attacher, subtitle.NewSlot(pub, lang, subtitle.Label(lang)), opts...)

	ctx, cancel := context.WithCancel(context.Background())
	r.cancel = cancel
	go func() {
		r.done <- r.controller.Run(ctx)
	}()

	return r
}

// observe keeps only the newest state. It never blocks the controller loop.
func (r *rig) observe(s playback.State) {
	select {
	case <-r.states:
	default:
	}
	r.states <- s
}

// report keeps the first unseen error. The overlay shows one at a time.
func (r *rig) report(err error) {
	select {
	case r.errs <- err:
	default:
	}
}

// load replaces the source and names the sink window after it.
func (r *rig) load(ctx context.Context, src playback.Source) error {
	if titled, ok := r.sink.(interface{ SetTitle(string) error }); ok && src.Title != "" {
		_ = titled.SetTitle(src.Title)
	}
	return r.controller.Load(ctx, src)
}

// close shuts the controller down first, then releases what it used.
func (r *rig) close() error {
	if r.isClosed {
		return nil
	}
	r.isClosed = true

	errs := []error{r.controller.Close()}
	r.cancel()
	errs = append(errs, <-r.done)

	for r.closers.Len() > 0 {
		errs = append(errs, r.closers.Pop()())
	}

	close(r.states)
	close(r.errs)

	// ErrClosed only means Run had already stopped
	return errors.Join(lo.Reject(errs, func(err error, _ int) bool {
		return errors.Is(err, playback.ErrClosed)
	})...)
}
