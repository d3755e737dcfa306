package tui

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/reel-cli/reel/catalog"
	"github.com/reel-cli/reel/filesystem"
	"github.com/reel-cli/reel/player/playertest"
	"github.com/reel-cli/reel/playback"
	"github.com/reel-cli/reel/session"
	"github.com/reel-cli/reel/subtitle"
	tea "github.com/charmbracelet/bubbletea"
)

func init() {
	filesystem.SetMemMapFs()
}

type fakeResolver struct {
	mu    sync.Mutex
	calls []catalog.Request
	err   error
}

func (r *fakeResolver) Resolve(_ context.Context, req catalog.Request) (*catalog.Stream, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, req)
	if r.err != nil {
		return nil, r.err
	}
	return &catalog.Stream{URL: "https://cdn.example/" + req.ID + "/master.m3u8", Title: "Fight Club"}, nil
}

type fakeSubtitles struct {
	candidates []subtitle.Candidate
	srt        string
}

func (s *fakeSubtitles) Search(context.Context, subtitle.Query) ([]subtitle.Candidate, error) {
	if len(s.candidates) == 0 {
		return nil, subtitle.ErrNoSubtitles
	}
	return s.candidates, nil
}

func (s *fakeSubtitles) Download(context.Context, string) (string, error) {
	return s.srt, nil
}

type memPublisher struct {
	mu   sync.Mutex
	live map[string][]byte
	next int
}

func (p *memPublisher) Create(content []byte, _ string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.next++
	url := fmt.Sprintf("http://127.0.0.1/blob/%d", p.next)
	p.live[url] = content
	return url, nil
}

func (p *memPublisher) Revoke(url string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.live[url]; !ok {
		return errors.New("unknown")
	}
	delete(p.live, url)
	return nil
}

func (p *memPublisher) Live() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.live)
}

type harness struct {
	bubble    *statefulBubble
	sink      *playertest.Sink
	publisher *memPublisher
	resolver  *fakeResolver
	subtitles *fakeSubtitles
	started   int
}

func newHarness(options *Options) *harness {
	h := &harness{
		sink:      playertest.New(),
		publisher: &memPublisher{live: make(map[string][]byte)},
		resolver:  &fakeResolver{},
		subtitles: &fakeSubtitles{},
	}

	b := newBubble(options)
	b.resolver = h.resolver
	b.subtitles = h.subtitles
	b.startRig = func(string) (*rig, error) {
		h.started++
		return assembleRig(
			h.sink,
			session.NewAdapter(session.Options{Managed: false}),
			h.publisher,
			playback.WithConfig(playback.Config{
				HideDelay:     time.Hour,
				LeaveDelay:    time.Hour,
				SkipStep:      10 * time.Second,
				DefaultVolume: 0.8,
			}),
		), nil
	}
	b.resize(100, 30)
	b.setState(formState)

	h.bubble = b
	return h
}

func (h *harness) send(msg tea.Msg) tea.Cmd {
	_, cmd := h.bubble.Update(msg)
	return cmd
}

func (h *harness) key(k string) tea.Cmd {
	switch k {
	case "enter":
		return h.send(tea.KeyMsg{Type: tea.KeyEnter})
	case "esc":
		return h.send(tea.KeyMsg{Type: tea.KeyEsc})
	case "ctrl+t":
		return h.send(tea.KeyMsg{Type: tea.KeyCtrlT})
	case "space":
		return h.send(tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	default:
		return h.send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)})
	}
}

func (h *harness) typeText(text string) {
	for _, r := range text {
		h.send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

// load drives a request through resolve and mount without a running program.
func (h *harness) load(req catalog.Request) {
	b := h.bubble
	b.fill(req)
	b.submit(req)

	msg := b.resolve(req)()
	h.send(msg)
	if resolved, ok := msg.(streamResolvedMsg); ok {
		h.send(b.mount(resolved.request, resolved.stream)())
	}
}

// latest pulls the newest published state, if any, into the bubble.
func (h *harness) latest() playback.State {
	r := h.bubble.rig
	select {
	case s := <-r.states:
		h.send(playbackStateMsg{rig: r, state: s, ok: true})
	default:
	}
	return h.bubble.playback
}

func (h *harness) close() {
	_ = h.bubble.shutdown()
}

// eventually polls cond until it holds or a second has passed.
func eventually(cond func() bool) bool {
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return cond()
}

const sampleSRT = "1\r\n00:00:01,000 --> 00:00:02,500\r\nHello\r\n\r\n2\r\n00:00:03,000 --> 00:00:04,000\r\nWorld\r\n"
