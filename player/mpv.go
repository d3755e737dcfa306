package player

import (
	"crypto/rand"
	"fmt"
	"net"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/reel-cli/reel/constant"
	"github.com/reel-cli/reel/log"
	"github.com/samber/lo"
)

const (
	socketWaitRetries = 10
	socketWaitDelay   = 300 * time.Millisecond
	quitTimeout       = 3 * time.Second
	eventBuffer       = 64
)

// MPV implements Sink over mpv's JSON-IPC protocol. A single idle mpv
// process is spawned by Start and reused for every Load.
type MPV struct {
	args       []string
	socketPath string
	cmd        *exec.Cmd
	exited     chan struct{}
	events     chan Event
	listener   *listener

	mu        sync.Mutex // serializes IPC round trips
	requestID int64

	closeOnce sync.Once
}

var _ Sink = (*MPV)(nil)

// NewMPV creates an mpv sink. extra is appended to the command line.
func NewMPV(extra ...string) *MPV {
	return &MPV{
		args:   extra,
		exited: make(chan struct{}),
		events: make(chan Event, eventBuffer),
	}
}

// Start spawns mpv in idle mode and begins forwarding its events.
func (m *MPV) Start(title string) error {
	randomBytes := make([]byte, 4)
	if _, err := rand.Read(randomBytes); err != nil {
		return fmt.Errorf("generate socket name: %w", err)
	}
	socketPath := filepath.Join(os.TempDir(), fmt.Sprintf("%s-%x.sock", constant.Reel, randomBytes))

	safeTitle := sanitizeTitle(title)
	args := []string{
		"--no-terminal",
		"--really-quiet",
		"--input-ipc-server=" + socketPath,
		"--force-media-title=" + safeTitle,
		"--title=" + safeTitle,
		"--force-window=yes",
		"--idle=yes",
		"--keep-open=yes",
	}
	args = append(args, m.args...)

	m.cmd = exec.Command("mpv", args...)
	m.cmd.SysProcAttr = sysProcAttr()
	m.cmd.Stdout = nil
	m.cmd.Stderr = nil
	m.cmd.Stdin = nil

	if err := m.cmd.Start(); err != nil {
		return fmt.Errorf("start mpv: %w", err)
	}

	go func() {
		_ = m.cmd.Wait()
		close(m.exited)
	}()

	if err := m.waitForSocket(socketPath); err != nil {
		select {
		case <-m.exited:
		default:
			log.Warnf("killing mpv: socket never became ready")
			_ = killProcess(m.cmd)
		}
		return fmt.Errorf("mpv socket not ready: %w", err)
	}

	return m.attach(socketPath)
}

// attach binds the sink to an already listening IPC socket.
func (m *MPV) attach(socketPath string) error {
	m.mu.Lock()
	m.socketPath = socketPath
	m.mu.Unlock()

	l, err := listen(socketPath, m.events)
	if err != nil {
		return err
	}
	m.listener = l
	return nil
}

// Wait returns a channel that is closed when the mpv process exits.
func (m *MPV) Wait() <-chan struct{} {
	return m.exited
}

// waitForSocket polls until the mpv IPC socket is accepting connections.
func (m *MPV) waitForSocket(socketPath string) error {
	for i := 0; i < socketWaitRetries; i++ {
		time.Sleep(socketWaitDelay)

		select {
		case <-m.exited:
			return fmt.Errorf("mpv exited before socket was ready")
		default:
		}

		conn, err := net.Dial("unix", socketPath)
		if err == nil {
			_ = conn.Close()
			return nil
		}
	}
	return fmt.Errorf("socket %s not ready after %d attempts", socketPath, socketWaitRetries)
}

func (m *MPV) Events() <-chan Event {
	return m.events
}

func (m *MPV) Load(rawURL string) error {
	target, err := sanitizeMediaTarget(rawURL)
	if err != nil {
		return fmt.Errorf("invalid media target: %w", err)
	}
	_, err = m.sendCommand("loadfile", target, "replace")
	return err
}

func (m *MPV) Unload() error {
	_, err := m.sendCommand("stop")
	return err
}

func (m *MPV) Play() error {
	return m.set("pause", false)
}

func (m *MPV) Pause() error {
	return m.set("pause", true)
}

func (m *MPV) Seek(seconds float64) error {
	_, err := m.sendCommand("seek", seconds, "absolute+exact")
	return err
}

func (m *MPV) SetVolume(level float64) error {
	return m.set("volume", lo.Clamp(level, 0, 1)*100)
}

func (m *MPV) SetMuted(muted bool) error {
	return m.set("mute", muted)
}

func (m *MPV) SetFullscreen(on bool) error {
	return m.set("fullscreen", on)
}

// SetTitle updates the window and OSD title.
func (m *MPV) SetTitle(title string) error {
	return m.set("force-media-title", sanitizeTitle(title))
}

func (m *MPV) AddSubtitle(track Track) error {
	target, err := sanitizeMediaTarget(track.URL)
	if err != nil {
		return fmt.Errorf("invalid subtitle target: %w", err)
	}

	flag := "auto"
	if track.Default {
		flag = "select"
	}
	_, err = m.sendCommand("sub-add", target, flag, sanitizeTitle(track.Label), track.Lang)
	return err
}

// RemoveSubtitles drops every external subtitle track listed by mpv.
func (m *MPV) RemoveSubtitles() error {
	data, err := m.sendCommand("get_property", "track-list")
	if err != nil {
		return err
	}

	for _, id := range externalSubtitleIDs(data) {
		if _, err := m.sendCommand("sub-remove", id); err != nil {
			return err
		}
	}
	return nil
}

// playable holds the manifest and container types mpv decodes through ffmpeg.
var playable = []string{
	constant.MimeHLS,
	"audio/mpegurl",
	"video/mp4",
	"video/webm",
	"video/x-matroska",
}

func (m *MPV) CanPlayType(mime string) bool {
	return lo.Contains(playable, strings.ToLower(strings.TrimSpace(mime)))
}

// Close quits mpv, stops the event listener and closes the Events channel.
func (m *MPV) Close() error {
	m.closeOnce.Do(func() {
		if m.socketPath != "" {
			_, _ = m.sendCommand("quit")
		}

		if m.cmd != nil {
			select {
			case <-m.exited:
			case <-time.After(quitTimeout):
				_ = killProcess(m.cmd)
			}
		}

		if m.listener != nil {
			m.listener.stop()
		}
		close(m.events)

		if m.cmd != nil {
			_ = os.Remove(m.socketPath)
		}
	})
	return nil
}

func (m *MPV) set(property string, value interface{}) error {
	_, err := m.sendCommand("set_property", property, value)
	return err
}

// externalSubtitleIDs picks the ids of external subtitle tracks from a track-list reply.
func externalSubtitleIDs(data interface{}) []float64 {
	tracks, _ := data.([]interface{})
	var ids []float64
	for _, raw := range tracks {
		track, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}
		if track["type"] != "sub" || track["external"] != true {
			continue
		}
		if id, ok := track["id"].(float64); ok {
			ids = append(ids, id)
		}
	}
	return ids
}

// sanitizeMediaTarget validates that a URL is safe to pass to mpv.
func sanitizeMediaTarget(link string) (string, error) {
	l := strings.TrimSpace(link)
	if l == "" {
		return "", fmt.Errorf("empty URL")
	}

	if strings.ContainsAny(l, "\x00\n\r") {
		return "", fmt.Errorf("invalid control characters in URL")
	}

	// URLs must not start with - or mpv reads them as flags
	if strings.HasPrefix(l, "-") {
		return "", fmt.Errorf("url must not start with '-' (looks like a flag)")
	}

	if strings.Contains(l, "://") {
		u, err := url.Parse(l)
		if err != nil {
			return "", fmt.Errorf("invalid URL: %w", err)
		}
		switch strings.ToLower(u.Scheme) {
		case "http", "https":
			return l, nil
		default:
			return "", fmt.Errorf("unsupported URL scheme: %s", u.Scheme)
		}
	}

	return filepath.Clean(l), nil
}

// sanitizeTitle flattens whitespace and strips null bytes.
func sanitizeTitle(title string) string {
	t := strings.NewReplacer("\n", " ", "\r", " ", "\t", " ", "\x00", "").Replace(title)
	return strings.TrimSpace(t)
}
