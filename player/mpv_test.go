package player

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/reel-cli/reel/constant"
	. "github.com/smartystreets/goconvey/convey"
)

// fakeMPV speaks just enough JSON-IPC to drive the sink.
type fakeMPV struct {
	ln       net.Listener
	mu       sync.Mutex
	commands [][]interface{}
	events   []string
	reply    func(cmd []interface{}) interface{}
}

func newFakeMPV(t *testing.T) (*fakeMPV, string) {
	dir, err := os.MkdirTemp("", "mpv")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.RemoveAll(dir) })

	path := filepath.Join(dir, "ipc.sock")
	ln, err := net.Listen("unix", path)
	if err != nil {
		t.Fatal(err)
	}
	f := &fakeMPV{ln: ln}
	go f.serve()
	t.Cleanup(func() { _ = ln.Close() })
	return f, path
}

func (f *fakeMPV) serve() {
	for {
		conn, err := f.ln.Accept()
		if err != nil {
			return
		}
		go f.handle(conn)
	}
}

func (f *fakeMPV) handle(conn net.Conn) {
	defer conn.Close()
	scanner := bufio.NewScanner(conn)
	observers := 0
	for scanner.Scan() {
		var cmd ipcCommand
		if err := json.Unmarshal(scanner.Bytes(), &cmd); err != nil {
			continue
		}

		f.mu.Lock()
		f.commands = append(f.commands, cmd.Command)
		events := f.events
		reply := f.reply
		f.mu.Unlock()

		if cmd.Command[0] == "observe_property" {
			observers++
			if observers == len(observed) {
				for _, e := range events {
					fmt.Fprintln(conn, e)
				}
			}
			continue
		}

		var data interface{}
		if reply != nil {
			data = reply(cmd.Command)
		}
		// broadcast noise ahead of the reply
		fmt.Fprintln(conn, `{"event":"playback-restart"}`)
		out, _ := json.Marshal(map[string]interface{}{"request_id": cmd.RequestID, "error": "success", "data": data})
		fmt.Fprintln(conn, string(out))
	}
}

func (f *fakeMPV) sent() [][]interface{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out [][]interface{}
	for _, c := range f.commands {
		if c[0] != "observe_property" {
			out = append(out, c)
		}
	}
	return out
}

func TestMPVCommands(t *testing.T) {
	Convey("Given an mpv sink attached to a fake IPC server", t, func() {
		fake, path := newFakeMPV(t)
		m := NewMPV()
		So(m.attach(path), ShouldBeNil)
		defer m.Close()

		Convey("Transport requests should map to mpv commands", func() {
			So(m.Load("https://cdn.example/550.m3u8"), ShouldBeNil)
			So(m.Pause(), ShouldBeNil)
			So(m.Seek(42.5), ShouldBeNil)
			So(m.SetVolume(0.25), ShouldBeNil)
			So(m.SetMuted(true), ShouldBeNil)
			So(m.SetFullscreen(true), ShouldBeNil)

			sent := fake.sent()
			So(sent, ShouldHaveLength, 6)
			So(sent[0], ShouldResemble, []interface{}{"loadfile", "https://cdn.example/550.m3u8", "replace"})
			So(sent[1], ShouldResemble, []interface{}{"set_property", "pause", true})
			So(sent[2], ShouldResemble, []interface{}{"seek", 42.5, "absolute+exact"})
			So(sent[3], ShouldResemble, []interface{}{"set_property", "volume", 25.0})
			So(sent[4], ShouldResemble, []interface{}{"set_property", "mute", true})
			So(sent[5], ShouldResemble, []interface{}{"set_property", "fullscreen", true})
		})

		Convey("A default subtitle should be selected on add", func() {
			So(m.AddSubtitle(Track{Lang: "en", Label: "English", URL: "http://127.0.0.1:1/blob/x", Default: true}), ShouldBeNil)
			So(fake.sent()[0], ShouldResemble, []interface{}{"sub-add", "http://127.0.0.1:1/blob/x", "select", "English", "en"})
		})

		Convey("RemoveSubtitles should only drop external text tracks", func() {
			fake.mu.Lock()
			fake.reply = func(cmd []interface{}) interface{} {
				if cmd[0] == "get_property" {
					return []interface{}{
						map[string]interface{}{"id": 1.0, "type": "video"},
						map[string]interface{}{"id": 2.0, "type": "sub", "external": false},
						map[string]interface{}{"id": 3.0, "type": "sub", "external": true},
					}
				}
				return nil
			}
			fake.mu.Unlock()

			So(m.RemoveSubtitles(), ShouldBeNil)
			sent := fake.sent()
			So(sent, ShouldHaveLength, 2)
			So(sent[1], ShouldResemble, []interface{}{"sub-remove", 3.0})
		})

		Convey("Flag-like targets should be rejected before reaching mpv", func() {
			So(m.Load("--script=evil.lua"), ShouldNotBeNil)
			So(m.Load("ftp://example/x"), ShouldNotBeNil)
			So(fake.sent(), ShouldBeEmpty)
		})
	})
}

func TestMPVEvents(t *testing.T) {
	Convey("Given mpv pushes property changes", t, func() {
		fake, path := newFakeMPV(t)
		fake.events = []string{
			`{"event":"property-change","id":1,"name":"pause","data":false}`,
			`{"event":"property-change","id":3,"name":"duration","data":139.0}`,
			`{"event":"property-change","id":2,"name":"time-pos","data":1.5}`,
			`{"event":"property-change","id":4,"name":"volume","data":80.0}`,
			`{"event":"property-change","id":5,"name":"mute","data":true}`,
			`{"event":"property-change","id":6,"name":"fullscreen","data":true}`,
			`{"event":"end-file","reason":"error","file_error":"loading failed"}`,
		}

		m := NewMPV()
		So(m.attach(path), ShouldBeNil)
		defer m.Close()

		var got []Event
		timeout := time.After(2 * time.Second)
		for len(got) < 7 {
			select {
			case ev := <-m.Events():
				got = append(got, ev)
			case <-timeout:
				t.Fatalf("received %d events", len(got))
			}
		}

		So(got[0].Kind, ShouldEqual, Played)
		So(got[1], ShouldResemble, Event{Kind: DurationChange, Seconds: 139})
		So(got[2], ShouldResemble, Event{Kind: TimeUpdate, Seconds: 1.5})
		So(got[3], ShouldResemble, Event{Kind: VolumeChange, Volume: 0.8})
		So(got[4], ShouldResemble, Event{Kind: VolumeChange, Volume: 0.8, Muted: true})
		So(got[5], ShouldResemble, Event{Kind: FullscreenChange, Fullscreen: true})
		So(got[6].Kind, ShouldEqual, Errored)
		So(got[6].Err.Error(), ShouldEqual, "loading failed")
	})
}

func TestTranslator(t *testing.T) {
	Convey("translator", t, func() {
		tr := translator{volume: -1}

		Convey("mute before any volume report should wait for the level", func() {
			_, ok := tr.translate(ipcMessage{Event: "property-change", Name: "mute", Data: true})
			So(ok, ShouldBeFalse)
		})

		Convey("unavailable properties should be ignored", func() {
			_, ok := tr.translate(ipcMessage{Event: "property-change", Name: "time-pos", Data: nil})
			So(ok, ShouldBeFalse)
		})

		Convey("end of file should report Ended", func() {
			ev, ok := tr.translate(ipcMessage{Event: "end-file", Reason: "eof"})
			So(ok, ShouldBeTrue)
			So(ev.Kind, ShouldEqual, Ended)
		})

		Convey("reaching the end of a kept-open file should report Ended", func() {
			ev, ok := tr.translate(ipcMessage{Event: "property-change", Name: "eof-reached", Data: true})
			So(ok, ShouldBeTrue)
			So(ev.Kind, ShouldEqual, Ended)

			Convey("and leaving the end should not", func() {
				_, ok := tr.translate(ipcMessage{Event: "property-change", Name: "eof-reached", Data: false})
				So(ok, ShouldBeFalse)
			})
		})

		Convey("stop and redirect reasons should be ignored", func() {
			_, ok := tr.translate(ipcMessage{Event: "end-file", Reason: "stop"})
			So(ok, ShouldBeFalse)
		})
	})
}

func TestCanPlayType(t *testing.T) {
	Convey("CanPlayType", t, func() {
		m := NewMPV()
		So(m.CanPlayType(constant.MimeHLS), ShouldBeTrue)
		So(m.CanPlayType(" Application/VND.apple.mpegurl "), ShouldBeTrue)
		So(m.CanPlayType("application/dash+xml"), ShouldBeFalse)
	})
}
