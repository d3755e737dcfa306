// Package playertest provides an in-memory player.Sink for tests.
package playertest

import (
	"fmt"
	"sync"

	"github.com/reel-cli/reel/player"
)

// Call is one recorded sink request.
type Call struct {
	Method string
	Arg    interface{}
}

func (c Call) String() string {
	if c.Arg == nil {
		return c.Method
	}
	return fmt.Sprintf("%s(%v)", c.Method, c.Arg)
}

// Sink records every request and lets the test inject events.
// It never emits events on its own: play/pause/volume confirmations are
// sent explicitly with Emit, mirroring an asynchronous real sink.
type Sink struct {
	mu     sync.Mutex
	calls  []Call
	events chan player.Event

	// Native reports the answer for CanPlayType.
	Native bool

	// Fail, when set, is returned by the named method.
	Fail map[string]error
}

var _ player.Sink = (*Sink)(nil)

func New() *Sink {
	return &Sink{events: make(chan player.Event, 256), Native: true}
}

// Emit queues an event as if the sink reported it.
func (s *Sink) Emit(ev player.Event) {
	s.events <- ev
}

// Calls returns a copy of the recorded requests.
func (s *Sink) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Call(nil), s.calls...)
}

// Methods returns just the method names of the recorded requests.
func (s *Sink) Methods() []string {
	calls := s.Calls()
	out := make([]string, len(calls))
	for i, c := range calls {
		out[i] = c.Method
	}
	return out
}

// Last returns the most recent call to method and whether one exists.
func (s *Sink) Last(method string) (Call, bool) {
	calls := s.Calls()
	for i := len(calls) - 1; i >= 0; i-- {
		if calls[i].Method == method {
			return calls[i], true
		}
	}
	return Call{}, false
}

// Reset forgets recorded calls.
func (s *Sink) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = nil
}

func (s *Sink) record(method string, arg interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, Call{Method: method, Arg: arg})
	return s.Fail[method]
}

func (s *Sink) Load(url string) error                { return s.record("Load", url) }
func (s *Sink) Unload() error                        { return s.record("Unload", nil) }
func (s *Sink) Play() error                          { return s.record("Play", nil) }
func (s *Sink) Pause() error                         { return s.record("Pause", nil) }
func (s *Sink) Seek(seconds float64) error           { return s.record("Seek", seconds) }
func (s *Sink) SetVolume(level float64) error        { return s.record("SetVolume", level) }
func (s *Sink) SetMuted(muted bool) error            { return s.record("SetMuted", muted) }
func (s *Sink) SetFullscreen(on bool) error          { return s.record("SetFullscreen", on) }
func (s *Sink) AddSubtitle(track player.Track) error { return s.record("AddSubtitle", track) }
func (s *Sink) RemoveSubtitles() error               { return s.record("RemoveSubtitles", nil) }
func (s *Sink) CanPlayType(string) bool              { return s.Native }
func (s *Sink) Events() <-chan player.Event          { return s.events }

