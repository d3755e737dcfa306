package playback

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/reel-cli/reel/player"
	"github.com/reel-cli/reel/player/playertest"
	"github.com/reel-cli/reel/session"
	"github.com/reel-cli/reel/subtitle"
)

// fakeClock fires timers only when advanced.
type fakeClock struct {
	now    time.Duration
	timers []*fakeTimer
}

type fakeTimer struct {
	at      time.Duration
	f       func()
	stopped bool
	fired   bool
}

func (t *fakeTimer) Stop() bool {
	pending := !t.stopped && !t.fired
	t.stopped = true
	return pending
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Timer {
	t := &fakeTimer{at: c.now + d, f: f}
	c.timers = append(c.timers, t)
	return t
}

// Advance moves time forward, firing due timers in order.
func (c *fakeClock) Advance(d time.Duration) {
	target := c.now + d
	for {
		due := c.due(target)
		if due == nil {
			break
		}
		c.now = due.at
		due.fired = true
		due.f()
	}
	c.now = target
}

func (c *fakeClock) due(target time.Duration) *fakeTimer {
	pending := make([]*fakeTimer, 0, len(c.timers))
	for _, t := range c.timers {
		if !t.stopped && !t.fired && t.at <= target {
			pending = append(pending, t)
		}
	}
	if len(pending) == 0 {
		return nil
	}
	sort.SliceStable(pending, func(i, j int) bool { return pending[i].at < pending[j].at })
	return pending[0]
}

// Pending counts timers that are neither stopped nor fired.
func (c *fakeClock) Pending() int {
	n := 0
	for _, t := range c.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

// memPublisher tracks live object URLs.
type memPublisher struct {
	live map[string]string
	next int
}

func (p *memPublisher) Create(content []byte, _ string) (string, error) {
	p.next++
	url := fmt.Sprintf("http://127.0.0.1/blob/%d", p.next)
	p.live[url] = string(content)
	return url, nil
}

func (p *memPublisher) Revoke(url string) error {
	if _, ok := p.live[url]; !ok {
		return errors.New("unknown object URL")
	}
	delete(p.live, url)
	return nil
}

type harness struct {
	c      *Controller
	sink   *playertest.Sink
	clock  *fakeClock
	pub    *memPublisher
	errors []error
	states []State
}

var testConfig = Config{
	HideDelay:     time.Second,
	LeaveDelay:    50 * time.Millisecond,
	SkipStep:      10 * time.Second,
	DefaultVolume: 0.8,
}

// newHarness builds a controller that handles every message synchronously.
func newHarness() *harness {
	h := &harness{
		sink:  playertest.New(),
		clock: &fakeClock{},
		pub:   &memPublisher{live: make(map[string]string)},
	}
	h.c = New(
		h.sink,
		session.NewAdapter(session.Options{Managed: false}),
		subtitle.NewSlot(h.pub, "en", "English"),
		WithClock(h.clock),
		WithConfig(testConfig),
		WithErrorHandler(func(err error) { h.errors = append(h.errors, err) }),
		WithObserver(func(s State) { h.states = append(h.states, s) }),
	)
	h.c.post = h.c.handle
	return h
}

func (h *harness) load(url string) error {
	return h.c.Load(context.Background(), Source{URL: url, Title: "Fight Club"})
}

func (h *harness) emit(ev player.Event) {
	h.c.handle(sinkEvent{ev: ev})
}

// playing loads a 100 second stream and confirms playback from the sink.
func (h *harness) playing() {
	if err := h.load("https://cdn.example/550.m3u8"); err != nil {
		panic(err)
	}
	h.emit(player.Event{Kind: player.DurationChange, Seconds: 100})
	h.emit(player.Event{Kind: player.Played})
	h.sink.Reset()
}

func (h *harness) state() State {
	return h.c.Snapshot()
}

func (h *harness) count(method string) int {
	n := 0
	for _, m := range h.sink.Methods() {
		if m == method {
			n++
		}
	}
	return n
}
