package tui

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/reel-cli/reel/catalog"
	"github.com/reel-cli/reel/filesystem"
	"github.com/reel-cli/reel/key"
	"github.com/reel-cli/reel/player"
	"github.com/reel-cli/reel/playback"
	"github.com/reel-cli/reel/subtitle"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/bubbles/list"
	"github.com/samber/lo"
	"github.com/samber/mo"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
)

func init() {
	viper.Set(key.SubtitlesLanguage, "en")
}

var fightClub = catalog.Request{ID: "550", Kind: catalog.Movie}

func TestForm(t *testing.T) {
	Convey("Given the form", t, func() {
		h := newHarness(&Options{})
		b := h.bubble
		Reset(h.close)

		Convey("Then it starts on movies with a single field", func() {
			So(b.kind, ShouldEqual, catalog.Movie)
			So(b.fields(), ShouldHaveLength, 1)
		})

		Convey("When the content type is switched", func() {
			b.fieldsC[fieldID].SetValue("1399")
			b.loaded = mo.Some(fightClub)
			b.subtitlesC.SetItems([]list.Item{&listItem{internal: subtitle.Candidate{Language: "en", Title: "x"}}})
			b.lastError = errors.New("stale")

			b.switchKind()

			Convey("Then series fields appear and everything loaded is dropped", func() {
				So(b.kind, ShouldEqual, catalog.TV)
				So(b.fields(), ShouldHaveLength, 3)
				So(b.loaded.IsAbsent(), ShouldBeTrue)
				So(b.subtitlesC.Items(), ShouldBeEmpty)
				So(b.lastError, ShouldBeNil)
				So(b.fieldsC[fieldID].Value(), ShouldEqual, "1399")
			})

			Convey("And switched back", func() {
				b.fieldsC[fieldSeason].SetValue("1")
				h.key("ctrl+t")

				Convey("Then the season is cleared", func() {
					So(b.kind, ShouldEqual, catalog.Movie)
					So(b.fieldsC[fieldSeason].Value(), ShouldBeEmpty)
				})
			})
		})

		Convey("When a series is submitted without season and episode", func() {
			h.key("ctrl+t")
			h.typeText("1399")
			h.key("enter")

			Convey("Then a validation error fills the message slot and nothing is requested", func() {
				So(errors.Is(b.lastError, catalog.ErrValidation), ShouldBeTrue)
				So(h.resolver.calls, ShouldBeEmpty)
				So(b.state, ShouldEqual, formState)
			})

			Convey("And the error is dismissed", func() {
				h.key("x")
				So(b.lastError, ShouldNotBeNil)
				So(b.fieldsC[fieldID].Value(), ShouldEqual, "1399")

				h.key("enter")
				So(b.lastError, ShouldBeNil)
			})
		})

		Convey("When tab moves through the series fields", func() {
			h.key("ctrl+t")
			h.send(tea.KeyMsg{Type: tea.KeyTab})
			h.typeText("2")
			h.send(tea.KeyMsg{Type: tea.KeyTab})
			h.typeText("5")

			Convey("Then each field receives its own input", func() {
				So(b.request(), ShouldResemble, catalog.Request{Kind: catalog.TV, Season: "2", Episode: "5"})
			})

			Convey("And tab wraps around to the id", func() {
				h.send(tea.KeyMsg{Type: tea.KeyTab})
				So(b.focus, ShouldEqual, fieldID)
			})
		})

		Convey("When the lookup service fails", func() {
			h.resolver.err = fmt.Errorf("%w: status 502", catalog.ErrUpstream)
			h.load(fightClub)

			Convey("Then the form comes back with the error", func() {
				So(errors.Is(b.lastError, catalog.ErrUpstream), ShouldBeTrue)
				So(b.state, ShouldEqual, formState)
				So(b.busy, ShouldBeFalse)
				So(h.started, ShouldEqual, 0)
			})
		})
	})
}

func TestPlayer(t *testing.T) {
	Convey("Given 550 was loaded", t, func() {
		h := newHarness(&Options{})
		b := h.bubble
		Reset(h.close)

		h.load(fightClub)

		Convey("Then the player view shows the stream", func() {
			So(b.state, ShouldEqual, playerState)
			So(b.loaded.MustGet(), ShouldResemble, fightClub)
			So(h.started, ShouldEqual, 1)

			call, ok := h.sink.Last("Load")
			So(ok, ShouldBeTrue)
			So(call.Arg, ShouldEqual, "https://cdn.example/550/master.m3u8")
			So(eventually(func() bool { return h.latest().Title == "Fight Club" }), ShouldBeTrue)
		})

		Convey("When another title is loaded", func() {
			h.sink.Reset()
			h.load(catalog.Request{ID: "680", Kind: catalog.Movie})

			Convey("Then the same player is reused after the old stream is released", func() {
				So(h.started, ShouldEqual, 1)
				methods := h.sink.Methods()
				So(methods, ShouldContain, "Unload")
				So(lo.IndexOf(methods, "Unload"), ShouldBeLessThan, lo.LastIndexOf(methods, "Load"))
			})
		})

		Convey("When transport keys are pressed", func() {
			h.sink.Emit(player.Event{Kind: player.DurationChange, Seconds: 100})
			So(eventually(func() bool { return h.latest().Duration == 100 }), ShouldBeTrue)

			h.key("space")
			h.key("f")
			h.key("5")

			Convey("Then they reach the sink", func() {
				So(eventually(func() bool {
					_, played := h.sink.Last("Play")
					fs, full := h.sink.Last("SetFullscreen")
					seek, sought := h.sink.Last("Seek")
					return played && full && fs.Arg == true && sought && seek.Arg == 50.0
				}), ShouldBeTrue)
			})
		})

		Convey("When the track is dragged with the mouse", func() {
			h.sink.Emit(player.Event{Kind: player.DurationChange, Seconds: 100})
			So(eventually(func() bool { return h.latest().Duration == 100 }), ShouldBeTrue)

			g := b.geometry()
			y := g.top + g.barRow()
			h.send(tea.MouseMsg{X: g.left, Y: y, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
			So(b.dragging, ShouldBeTrue)

			h.send(tea.MouseMsg{X: g.left + g.barWidth(), Y: y, Action: tea.MouseActionMotion, Button: tea.MouseButtonLeft})
			h.send(tea.MouseMsg{X: g.left + g.barWidth(), Y: y, Action: tea.MouseActionRelease})

			Convey("Then the drag seeks along the way and ends", func() {
				So(b.dragging, ShouldBeFalse)
				So(eventually(func() bool {
					seek, ok := h.sink.Last("Seek")
					return ok && seek.Arg == 100.0 && !h.latest().Seeking
				}), ShouldBeTrue)
			})
		})

		Convey("When the fullscreen button is clicked", func() {
			g := b.geometry()
			_, spots := transport(b.playback)
			spot, _ := lo.Find(spots, func(s hotspot) bool { return s.ctl == ctlFullscreen })
			h.send(tea.MouseMsg{X: g.left + spot.from, Y: g.top + g.transportRow(), Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})

			Convey("Then fullscreen is requested", func() {
				So(eventually(func() bool {
					_, ok := h.sink.Last("SetFullscreen")
					return ok
				}), ShouldBeTrue)
			})
		})

		Convey("When subtitles are searched and one is picked", func() {
			h.subtitles.candidates = []subtitle.Candidate{
				{ID: "1", Language: "en", Title: "Fight Club", Release: "BluRay", FileID: "42"},
			}
			h.subtitles.srt = sampleSRT

			h.key("s")
			So(b.state, ShouldEqual, loadingState)
			h.send(b.searchSubtitles(fightClub)())

			So(b.state, ShouldEqual, subtitlesState)
			So(b.subtitlesC.Items(), ShouldHaveLength, 1)
			So(b.subtitlesC.Items()[0].FilterValue(), ShouldEqual, "en - Fight Club (BluRay)")

			h.key("enter")
			h.send(b.downloadSubtitle(h.subtitles.candidates[0])())

			Convey("Then the track is attached and the results are cleared", func() {
				So(b.state, ShouldEqual, playerState)
				So(b.subtitlesC.Items(), ShouldBeEmpty)
				So(h.publisher.Live(), ShouldEqual, 1)

				call, ok := h.sink.Last("AddSubtitle")
				So(ok, ShouldBeTrue)
				track := call.Arg.(player.Track)
				So(track.Lang, ShouldEqual, "en")
				So(track.Label, ShouldEqual, "English")
				So(track.Default, ShouldBeTrue)
			})
		})

		Convey("When a file that is not .srt is uploaded", func() {
			h.key("u")
			So(b.state, ShouldEqual, uploadState)
			h.typeText("notes.txt")
			h.key("enter")

			Convey("Then it is rejected without leaving the upload view", func() {
				So(errors.Is(b.lastError, subtitle.ErrInvalidFile), ShouldBeTrue)
				So(b.state, ShouldEqual, uploadState)
				_, added := h.sink.Last("AddSubtitle")
				So(added, ShouldBeFalse)
			})
		})

		Convey("When a .srt file is uploaded", func() {
			So(filesystem.API().MkdirAll("/subs", 0o755), ShouldBeNil)
			So(filesystem.API().WriteFile("/subs/movie.SRT", []byte(sampleSRT), 0o644), ShouldBeNil)

			h.key("u")
			h.typeText("/subs/movie.SRT")
			h.key("enter")
			So(b.state, ShouldEqual, loadingState)
			h.send(b.uploadSubtitle("/subs/movie.SRT")())

			Convey("Then the converted track is attached", func() {
				So(b.state, ShouldEqual, playerState)
				So(h.publisher.Live(), ShouldEqual, 1)
				So(eventually(func() bool { return strings.Contains(h.latest().Subtitle, "movie.SRT") }), ShouldBeTrue)
			})
		})

		Convey("When the controller reports a playback failure", func() {
			h.send(playbackErrorMsg{rig: b.rig, err: fmt.Errorf("%w: decoder died", playback.ErrPlayback), ok: true})

			Convey("Then the message slot holds it and the form is shown", func() {
				So(errors.Is(b.lastError, playback.ErrPlayback), ShouldBeTrue)
				So(b.loaded.IsAbsent(), ShouldBeTrue)
				So(b.state, ShouldEqual, formState)
			})
		})

		Convey("When a message from another player arrives", func() {
			before := h.latest()
			h.send(playbackStateMsg{rig: &rig{}, state: playback.State{Title: "other"}, ok: true})

			Convey("Then it is ignored", func() {
				So(b.playback.Title, ShouldEqual, before.Title)
			})
		})

		Convey("When the player window closes", func() {
			h.key("u")
			h.typeText("x")
			h.send(playerExitedMsg{rig: b.rig})

			Convey("Then the player is released and the form is shown", func() {
				So(b.rig, ShouldBeNil)
				So(b.loaded.IsAbsent(), ShouldBeTrue)
				So(b.state, ShouldEqual, formState)
				So(b.statesHistory.Len(), ShouldEqual, 0)
				So(h.sink.Methods(), ShouldContain, "Unload")
			})
		})

		Convey("When esc is pressed", func() {
			h.key("esc")

			Convey("Then the form is shown while the stream keeps playing", func() {
				So(b.state, ShouldEqual, formState)
				So(b.loaded.IsPresent(), ShouldBeTrue)

				h.key("esc")
				So(b.state, ShouldEqual, playerState)
			})
		})
	})
}

func TestStartup(t *testing.T) {
	Convey("Given a request and a subtitle file from the command line", t, func() {
		h := newHarness(&Options{Request: mo.Some(fightClub), SubtitleFile: "/subs/cli.srt"})
		b := h.bubble
		Reset(h.close)

		b.Init()

		Convey("Then loading starts right away", func() {
			So(b.state, ShouldEqual, loadingState)
			So(b.fieldsC[fieldID].Value(), ShouldEqual, "550")
		})

		Convey("When the stream is mounted", func() {
			msg := b.resolve(fightClub)()
			h.send(msg)
			resolved := msg.(streamResolvedMsg)
			h.send(b.mount(resolved.request, resolved.stream)())

			Convey("Then the subtitle file is loaded next, once", func() {
				So(b.state, ShouldEqual, loadingState)
				So(b.progressStatus, ShouldContainSubstring, "/subs/cli.srt")
				So(b.options.SubtitleFile, ShouldBeEmpty)
				So(b.statesHistory.Peek(), ShouldEqual, playerState)
			})
		})
	})
}
