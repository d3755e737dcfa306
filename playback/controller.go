package playback

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/reel-cli/reel/key"
	"github.com/reel-cli/reel/log"
	"github.com/reel-cli/reel/player"
	"github.com/reel-cli/reel/session"
	"github.com/reel-cli/reel/subtitle"
	"github.com/reel-cli/reel/util"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"
)

var (
	// ErrPlayback wraps failures reported by the sink or the streaming session.
	ErrPlayback = errors.New("playback error")

	// ErrNoSource is returned when a subtitle is set before any stream is loaded.
	ErrNoSource = errors.New("no stream loaded")

	// ErrClosed is returned by requests made after Close.
	ErrClosed = errors.New("player closed")
)

// unmuteVolume is restored when unmuting at zero volume.
const unmuteVolume = 0.5

// Config holds the timing and defaults of a Controller.
type Config struct {
	HideDelay     time.Duration
	LeaveDelay    time.Duration
	SkipStep      time.Duration
	DefaultVolume float64
}

// DefaultConfig reads the player.* configuration.
func DefaultConfig() Config {
	return Config{
		HideDelay:     time.Duration(viper.GetInt(key.PlayerControlsHideDelay)) * time.Millisecond,
		LeaveDelay:    time.Duration(viper.GetInt(key.PlayerControlsLeaveDelay)) * time.Millisecond,
		SkipStep:      time.Duration(viper.GetInt(key.PlayerSkipSeconds)) * time.Second,
		DefaultVolume: lo.Clamp(viper.GetFloat64(key.PlayerDefaultVolume)/100, 0, 1),
	}
}

// Option customizes a Controller.
type Option func(*Controller)

// WithClock replaces the wall clock used by the controls countdown.
func WithClock(clock Clock) Option {
	return func(c *Controller) { c.clock = clock }
}

// WithConfig replaces DefaultConfig.
func WithConfig(cfg Config) Option {
	return func(c *Controller) { c.cfg = cfg }
}

// WithObserver registers f to receive a snapshot after every change.
// Observers run on the controller goroutine and must not block.
func WithObserver(f func(State)) Option {
	return func(c *Controller) { c.observers = append(c.observers, f) }
}

// WithErrorHandler registers f to be told about playback failures.
func WithErrorHandler(f func(error)) Option {
	return func(c *Controller) { c.onError = f }
}

// Controller is the state machine of one mounted player. All state is
// owned by the goroutine running Run; every public method posts a message.
type Controller struct {
	sink   player.Sink
	binder *session.Binder
	slot   *subtitle.Slot
	clock  Clock
	cfg    Config
	logger *logrus.Entry

	inbox chan message
	done  chan struct{}
	post  func(message)

	observers []func(State)
	onError   func(error)

	state      State
	wasPlaying bool

	hideGen uint64
	timer   Timer

	failed   <-chan error
	releases util.Stack[func() error]
	closed   bool
}

// New builds a controller for sink. Streams are bound through attacher and
// subtitles are published on slot.
func New(sink player.Sink, attacher session.Attacher, slot *subtitle.Slot, opts ...Option) *Controller {
	c := &Controller{
		sink:   sink,
		binder: session.NewBinder(attacher, sink),
		slot:   slot,
		clock:  realClock{},
		cfg:    DefaultConfig(),
		logger: log.Component("playback"),
		inbox:  make(chan message, 64),
		done:   make(chan struct{}),
	}
	c.post = c.enqueue

	for _, opt := range opts {
		opt(c)
	}

	c.state.Volume = c.cfg.DefaultVolume
	c.state.ControlsVisible = true

	// popped in reverse: timer, subtitle URL, session
	c.releases.Push(c.binder.Close)
	c.releases.Push(c.slot.Release)
	c.releases.Push(func() error { c.cancelHide(); return nil })

	return c
}

func (c *Controller) enqueue(m message) {
	select {
	case c.inbox <- m:
	case <-c.done:
	}
}

// Run serves the controller until ctx is cancelled or Close is called.
// Sink events are pumped into the same queue as user intents, so every
// transition is applied in arrival order on one goroutine.
func (c *Controller) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer close(c.done)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		events := c.sink.Events()
		for {
			select {
			case <-gctx.Done():
				return nil
			case ev, ok := <-events:
				if !ok {
					return nil
				}
				select {
				case c.inbox <- sinkEvent{ev: ev}:
				case <-gctx.Done():
					return nil
				}
			}
		}
	})

	g.Go(func() error {
		defer cancel()
		for {
			select {
			case <-gctx.Done():
				if !c.closed {
					return c.shutdown()
				}
				return nil
			case err := <-c.failed:
				c.handle(sessionFailed{handle: c.binder.Current(), err: err})
			case m := <-c.inbox:
				c.handle(m)
				if c.closed {
					return nil
				}
			}
		}
	})

	return g.Wait()
}

// Intents. All are fire-and-forget.

func (c *Controller) TogglePlayPause()  { c.post(togglePlayPause{}) }
func (c *Controller) ToggleMute()       { c.post(toggleMute{}) }
func (c *Controller) ToggleFullscreen() { c.post(toggleFullscreen{}) }
func (c *Controller) PointerEnter()     { c.post(pointerEnter{}) }
func (c *Controller) PointerLeave()     { c.post(pointerLeave{}) }
func (c *Controller) SeekEnd()          { c.post(seekEnd{}) }

// PointerMove reports pointer motion over region.
func (c *Controller) PointerMove(region Region) { c.post(pointerMove{region: region}) }

// SeekStart begins a drag at offset on a track width cells or pixels wide.
func (c *Controller) SeekStart(offset, width float64) { c.post(seekStart{offset, width}) }
func (c *Controller) SeekMove(offset, width float64)  { c.post(seekMove{offset, width}) }
func (c *Controller) SeekClick(offset, width float64) { c.post(seekClick{offset, width}) }

// SkipBy jumps delta seconds relative to the current position.
func (c *Controller) SkipBy(delta float64) { c.post(skipBy{delta: delta}) }
func (c *Controller) Rewind()              { c.SkipBy(-c.cfg.SkipStep.Seconds()) }
func (c *Controller) Forward()             { c.SkipBy(c.cfg.SkipStep.Seconds()) }

// SetVolume sets the level in [0, 1].
func (c *Controller) SetVolume(level float64) { c.post(setVolume{level: level}) }

// Load replaces the source. The previous session, subtitle and countdown are
// released before the new stream is attached. An empty URL leaves the sink idle.
func (c *Controller) Load(ctx context.Context, src Source) error {
	return c.call(ctx, func(ctx context.Context) error { return c.load(ctx, src) })
}

// SetSubtitle publishes vtt as the single subtitle track of the loaded stream.
func (c *Controller) SetSubtitle(ctx context.Context, vtt, origin string) error {
	return c.call(ctx, func(context.Context) error { return c.applySubtitle(vtt, origin) })
}

// Close releases the countdown, the subtitle URL and the session, in that
// order, and stops Run.
func (c *Controller) Close() error {
	return c.call(context.Background(), func(context.Context) error { return c.shutdown() })
}

func (c *Controller) call(ctx context.Context, do func(context.Context) error) error {
	req := request{ctx: ctx, do: do, reply: make(chan error, 1)}
	c.post(req)

	select {
	case err := <-req.reply:
		return err
	case <-c.done:
		select {
		case err := <-req.reply:
			return err
		default:
			return ErrClosed
		}
	case <-ctx.Done():
		return ctx.Err()
	}
}

// handle applies one message. It is only ever called from the loop
// goroutine, or directly by tests that drive the controller synchronously.
func (c *Controller) handle(m message) {
	if req, ok := m.(request); ok {
		if c.closed {
			req.reply <- ErrClosed
			return
		}
		req.reply <- req.do(req.ctx)
		c.publish()
		return
	}

	if c.closed {
		return
	}

	switch m := m.(type) {
	case togglePlayPause:
		c.activity()
		if c.state.Idle() {
			return
		}
		if c.state.Playing {
			c.command(c.sink.Pause())
		} else {
			c.command(c.sink.Play())
		}

	case seekStart:
		if c.state.Idle() || c.state.Seeking || m.width <= 0 || c.state.Duration <= 0 {
			return
		}
		c.state.Seeking = true
		c.wasPlaying = c.state.Playing
		if c.wasPlaying {
			c.command(c.sink.Pause())
		}
		c.scrub(m.offset, m.width)
		c.activity()

	case seekMove:
		if !c.state.Seeking || m.width <= 0 {
			return
		}
		c.scrub(m.offset, m.width)
		c.activity()

	case seekEnd:
		if !c.state.Seeking {
			return
		}
		c.state.Seeking = false
		if c.wasPlaying {
			c.command(c.sink.Play())
		}
		c.wasPlaying = false
		c.activity()

	case seekClick:
		if c.state.Idle() || c.state.Seeking || m.width <= 0 || c.state.Duration <= 0 {
			return
		}
		c.scrub(m.offset, m.width)
		c.activity()

	case skipBy:
		if c.state.Idle() || c.state.Seeking {
			return
		}
		target := c.state.CurrentTime + m.delta
		if c.state.Duration > 0 {
			target = lo.Clamp(target, 0, c.state.Duration)
		} else {
			target = math.Max(target, 0)
		}
		c.jump(target)
		c.activity()

	case setVolume:
		level := lo.Clamp(m.level, 0, 1)
		c.state.Volume = level
		c.command(c.sink.SetVolume(level))
		if level > 0 && c.state.Muted {
			c.state.Muted = false
			c.command(c.sink.SetMuted(false))
		}
		c.activity()

	case toggleMute:
		if c.state.Muted {
			c.state.Muted = false
			c.command(c.sink.SetMuted(false))
			if c.state.Volume == 0 {
				c.state.Volume = unmuteVolume
				c.command(c.sink.SetVolume(unmuteVolume))
			}
		} else {
			c.state.Muted = true
			c.command(c.sink.SetMuted(true))
		}
		c.activity()

	case toggleFullscreen:
		c.command(c.sink.SetFullscreen(!c.state.Fullscreen))
		c.activity()

	case pointerMove:
		c.state.Pointer = m.region
		c.activity()

	case pointerEnter:
		if c.state.Pointer == Outside {
			c.state.Pointer = Surface
		}
		c.activity()

	case pointerLeave:
		c.state.Pointer = Outside
		if c.state.Playing && !c.state.Idle() {
			c.restartHide(c.cfg.LeaveDelay)
		}

	case hideExpired:
		if m.gen != c.hideGen {
			return
		}
		c.timer = nil
		if c.state.Playing && !c.state.Idle() && c.state.Pointer != Controls {
			c.state.ControlsVisible = false
		}

	case sinkEvent:
		c.apply(m.ev)

	case sessionFailed:
		if m.handle == nil || m.handle != c.binder.Current() {
			return
		}
		c.fail(m.err)
	}

	c.publish()
}

// apply folds a sink event into the state.
func (c *Controller) apply(ev player.Event) {
	switch ev.Kind {
	case player.Played:
		c.state.Playing = true
		c.state.Ended = false
		if !c.state.Idle() && c.state.ControlsVisible && c.timer == nil {
			c.restartHide(c.cfg.HideDelay)
		}
	case player.Paused:
		c.state.Playing = false
		c.state.ControlsVisible = true
	case player.TimeUpdate:
		if c.state.Seeking {
			return
		}
		c.state.CurrentTime = ev.Seconds
		c.state.Progress = c.fraction(ev.Seconds)
	case player.DurationChange:
		c.state.Duration = ev.Seconds
		if !c.state.Seeking {
			c.state.Progress = c.fraction(c.state.CurrentTime)
		}
	case player.VolumeChange:
		c.state.Volume = lo.Clamp(ev.Volume, 0, 1)
		c.state.Muted = ev.Muted
	case player.FullscreenChange:
		c.state.Fullscreen = ev.Fullscreen
	case player.Ended:
		c.state.Playing = false
		c.state.Ended = true
		c.state.ControlsVisible = true
		c.cancelHide()
	case player.Errored:
		c.fail(ev.Err)
	}
}

// scrub maps a pointer offset on the track to a position and seeks there.
func (c *Controller) scrub(offset, width float64) {
	fraction := lo.Clamp(offset, 0, width) / width
	c.state.Progress = fraction
	c.state.CurrentTime = fraction * c.state.Duration
	c.command(c.sink.Seek(c.state.CurrentTime))
}

func (c *Controller) jump(target float64) {
	c.state.CurrentTime = target
	c.state.Progress = c.fraction(target)
	c.command(c.sink.Seek(target))
}

func (c *Controller) fraction(t float64) float64 {
	if c.state.Duration <= 0 {
		return 0
	}
	return lo.Clamp(t/c.state.Duration, 0, 1)
}

// activity reveals the controls and restarts the hide countdown.
func (c *Controller) activity() {
	c.state.ControlsVisible = true
	c.restartHide(c.cfg.HideDelay)
}

// restartHide replaces any pending countdown. Expiries carry a generation so
// a timer that fires after being replaced is ignored.
func (c *Controller) restartHide(d time.Duration) {
	c.cancelHide()
	gen := c.hideGen
	c.timer = c.clock.AfterFunc(d, func() { c.post(hideExpired{gen: gen}) })
}

func (c *Controller) cancelHide() {
	c.hideGen++
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

// command surfaces a failed sink request as a playback error.
func (c *Controller) command(err error) {
	if err != nil {
		c.fail(err)
	}
}

// fail stops everything that animates the stale frame and returns the
// player to idle. Nothing is retried.
func (c *Controller) fail(err error) {
	if !errors.Is(err, ErrPlayback) {
		err = fmt.Errorf("%w: %w", ErrPlayback, err)
	}
	c.logger.Errorf("%v", err)

	c.state.Err = err
	c.state.Source = ""
	c.state.Seeking = false
	c.wasPlaying = false
	c.cancelHide()
	c.state.ControlsVisible = true

	c.failed = nil
	if derr := c.binder.Close(); derr != nil {
		c.logger.Warnf("detach after failure: %v", derr)
	}

	if c.onError != nil {
		c.onError(err)
	}
}

func (c *Controller) load(ctx context.Context, src Source) error {
	c.cancelHide()
	c.failed = nil
	if err := c.binder.Close(); err != nil {
		c.logger.Warnf("detach previous source: %v", err)
	}
	c.clearSubtitle()

	// Playing mirrors the sink's pause flag, which a new source does not
	// reset, so it carries over until the sink reports otherwise.
	c.state = State{
		Playing:         c.state.Playing,
		Volume:          c.state.Volume,
		Muted:           c.state.Muted,
		Fullscreen:      c.state.Fullscreen,
		Pointer:         c.state.Pointer,
		ControlsVisible: true,
		Source:          src.URL,
		Title:           src.Title,
	}

	if src.URL == "" {
		return nil
	}

	h, err := c.binder.Set(ctx, src.URL)
	if err != nil {
		c.fail(err)
		return c.state.Err
	}
	c.failed = h.Failed()
	c.logger.Infof("loaded %q from %s", src.Title, h.URL())

	c.command(c.sink.SetVolume(c.state.Volume))
	c.command(c.sink.SetMuted(c.state.Muted))

	if vtt, ok := src.Subtitle.Get(); ok {
		if err := c.applySubtitle(vtt, "source"); err != nil {
			c.logger.Warnf("subtitle: %v", err)
		}
	}

	if c.state.Err != nil {
		return c.state.Err
	}
	c.activity()
	return nil
}

// applySubtitle swaps the subtitle track. On failure the sink is left without subtitles.
func (c *Controller) applySubtitle(vtt, origin string) error {
	if c.state.Idle() {
		return ErrNoSource
	}

	if err := c.sink.RemoveSubtitles(); err != nil {
		c.logger.Warnf("remove subtitles: %v", err)
	}

	asset, err := c.slot.Replace(vtt, origin)
	if err != nil {
		c.state.Subtitle = ""
		return err
	}

	if err := c.sink.AddSubtitle(asset.Track()); err != nil {
		c.state.Subtitle = ""
		if rerr := c.slot.Release(); rerr != nil {
			c.logger.Warnf("release subtitle: %v", rerr)
		}
		return fmt.Errorf("%w: %w", ErrPlayback, err)
	}

	c.state.Subtitle = fmt.Sprintf("%s (%s)", asset.Label, origin)
	return nil
}

func (c *Controller) clearSubtitle() {
	if c.slot.Current().IsAbsent() {
		return
	}
	if err := c.sink.RemoveSubtitles(); err != nil {
		c.logger.Warnf("remove subtitles: %v", err)
	}
	if err := c.slot.Release(); err != nil {
		c.logger.Warnf("release subtitle: %v", err)
	}
	c.state.Subtitle = ""
}

// shutdown runs the release stack. Every release runs even if an earlier one fails.
func (c *Controller) shutdown() error {
	if c.closed {
		return nil
	}
	c.closed = true
	c.failed = nil

	var errs []error
	for c.releases.Len() > 0 {
		if err := c.releases.Pop()(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Snapshot returns a copy of the current state. Only safe from observers or
// when Run is not running.
func (c *Controller) Snapshot() State {
	return c.state
}

func (c *Controller) publish() {
	for _, f := range c.observers {
		f(c.state)
	}
}
