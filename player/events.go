package player

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"sync"

	"github.com/reel-cli/reel/log"
)

// observed lists the mpv properties mirrored into Events. The slice index
// plus one is the observer id.
var observed = []string{
	"pause",
	"time-pos",
	"duration",
	"volume",
	"mute",
	"fullscreen",
	"eof-reached",
}

// listener owns the persistent IPC connection on which mpv pushes
// property changes and lifecycle events.
type listener struct {
	conn   net.Conn
	out    chan<- Event
	stopCh chan struct{}
	done   chan struct{}
	once   sync.Once

	tr translator
}

// listen subscribes to the observed properties on a dedicated connection and
// starts the read loop. mpv scopes observers to the issuing client, so the
// subscription and the reads share one connection.
func listen(socketPath string, out chan<- Event) (*listener, error) {
	conn, err := net.Dial("unix", socketPath)
	if err != nil {
		return nil, fmt.Errorf("event listener connect: %w", err)
	}

	enc := json.NewEncoder(conn)
	for i, name := range observed {
		if err := enc.Encode(ipcCommand{Command: []interface{}{"observe_property", i + 1, name}}); err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("observe %s: %w", name, err)
		}
	}

	l := &listener{
		conn:   conn,
		out:    out,
		stopCh: make(chan struct{}),
		done:   make(chan struct{}),
		tr:     translator{volume: -1},
	}
	go l.readLoop()

	log.Component("player").Debugf("observing %v on %s", observed, socketPath)
	return l, nil
}

// stop closes the connection and waits for the read loop to return.
func (l *listener) stop() {
	l.once.Do(func() {
		close(l.stopCh)
		_ = l.conn.Close()
	})
	<-l.done
}

func (l *listener) readLoop() {
	defer close(l.done)

	scanner := bufio.NewScanner(l.conn)
	for scanner.Scan() {
		var msg ipcMessage
		if err := json.Unmarshal(scanner.Bytes(), &msg); err != nil {
			continue
		}

		ev, ok := l.tr.translate(msg)
		if !ok {
			continue
		}

		select {
		case l.out <- ev:
		case <-l.stopCh:
			return
		}
	}

	select {
	case <-l.stopCh:
	default:
		log.Component("player").Warnf("event listener stopped: %v", scanner.Err())
	}
}

// translator turns raw mpv messages into sink Events. mpv reports volume and
// mute as separate properties, so the last value of each is remembered.
type translator struct {
	volume float64
	muted  bool
}

func (t *translator) translate(msg ipcMessage) (Event, bool) {
	switch msg.Event {
	case "property-change":
		return t.property(msg.Name, msg.Data)
	case "end-file":
		switch msg.Reason {
		case "eof":
			return Event{Kind: Ended}, true
		case "error":
			reason := msg.FileError
			if reason == "" {
				reason = "unknown error"
			}
			return Event{Kind: Errored, Err: errors.New(reason)}, true
		}
	}
	return Event{}, false
}

func (t *translator) property(name string, data interface{}) (Event, bool) {
	switch name {
	case "pause":
		paused, ok := data.(bool)
		if !ok {
			return Event{}, false
		}
		if paused {
			return Event{Kind: Paused}, true
		}
		return Event{Kind: Played}, true
	case "time-pos":
		secs, ok := data.(float64)
		if !ok {
			return Event{}, false
		}
		return Event{Kind: TimeUpdate, Seconds: secs}, true
	case "duration":
		secs, ok := data.(float64)
		if !ok {
			return Event{}, false
		}
		return Event{Kind: DurationChange, Seconds: secs}, true
	case "volume":
		v, ok := data.(float64)
		if !ok {
			return Event{}, false
		}
		t.volume = v / 100
		return Event{Kind: VolumeChange, Volume: t.volume, Muted: t.muted}, true
	case "mute":
		m, ok := data.(bool)
		if !ok {
			return Event{}, false
		}
		t.muted = m
		if t.volume < 0 {
			return Event{}, false
		}
		return Event{Kind: VolumeChange, Volume: t.volume, Muted: t.muted}, true
	case "fullscreen":
		fs, ok := data.(bool)
		if !ok {
			return Event{}, false
		}
		return Event{Kind: FullscreenChange, Fullscreen: fs}, true
	case "eof-reached":
		// with --keep-open mpv pauses on the last frame instead of sending
		// end-file, so this flag is the only end-of-stream signal
		eof, ok := data.(bool)
		if !ok || !eof {
			return Event{}, false
		}
		return Event{Kind: Ended}, true
	}
	return Event{}, false
}
