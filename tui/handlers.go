package tui

import (
	"context"
	"errors"
	"fmt"

	"github.com/reel-cli/reel/catalog"
	"github.com/reel-cli/reel/history"
	"github.com/reel-cli/reel/key"
	"github.com/reel-cli/reel/log"
	"github.com/reel-cli/reel/playback"
	"github.com/reel-cli/reel/subtitle"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/samber/lo"
	"github.com/spf13/viper"
)

type (
	streamResolvedMsg struct {
		request catalog.Request
		stream  *catalog.Stream
	}

	// streamLoadedMsg reports a finished Load. rig is set even when loading
	// failed, so a freshly started player is never lost.
	streamLoadedMsg struct {
		rig     *rig
		request catalog.Request
		stream  *catalog.Stream
		err     error
	}

	subtitlesFoundMsg struct {
		candidates []subtitle.Candidate
	}

	subtitleLoadedMsg struct {
		origin string
	}

	playbackStateMsg struct {
		rig   *rig
		state playback.State
		ok    bool
	}

	playbackErrorMsg struct {
		rig *rig
		err error
		ok  bool
	}

	playerExitedMsg struct {
		rig *rig
	}
)

// resolve drops the current stream and looks up req.
func (b *statefulBubble) resolve(req catalog.Request) tea.Cmd {
	r := b.rig
	resolver := b.resolver

	return func() tea.Msg {
		ctx := context.Background()

		if r != nil {
			if err := r.load(ctx, playback.Source{}); err != nil {
				log.Warnf("unload: %v", err)
			}
		}

		stream, err := resolver.Resolve(ctx, req)
		if err != nil {
			return err
		}

		return streamResolvedMsg{request: req, stream: stream}
	}
}

// mount hands the stream to the player, starting one first if needed.
func (b *statefulBubble) mount(req catalog.Request, stream *catalog.Stream) tea.Cmd {
	r := b.rig
	start := b.startRig

	return func() tea.Msg {
		if r == nil {
			var err error
			if r, err = start(stream.Title); err != nil {
				return fmt.Errorf("start player: %w", err)
			}
		}

		err := r.load(context.Background(), playback.Source{URL: stream.URL, Title: stream.Title})
		return streamLoadedMsg{rig: r, request: req, stream: stream, err: err}
	}
}

// unload leaves the player idle.
func (b *statefulBubble) unload() tea.Cmd {
	r := b.rig
	if r == nil {
		return nil
	}

	return func() tea.Msg {
		if err := r.load(context.Background(), playback.Source{}); err != nil {
			return err
		}
		return nil
	}
}

// attach wires the mounted rig's channels into the program.
func (b *statefulBubble) attach(r *rig) tea.Cmd {
	b.rig = r
	cmds := []tea.Cmd{b.waitForState(r), b.waitForError(r)}
	if r.exited != nil {
		cmds = append(cmds, b.waitForExit(r))
	}
	return tea.Batch(cmds...)
}

func (b *statefulBubble) waitForState(r *rig) tea.Cmd {
	return func() tea.Msg {
		s, ok := <-r.states
		return playbackStateMsg{rig: r, state: s, ok: ok}
	}
}

func (b *statefulBubble) waitForError(r *rig) tea.Cmd {
	return func() tea.Msg {
		err, ok := <-r.errs
		return playbackErrorMsg{rig: r, err: err, ok: ok}
	}
}

func (b *statefulBubble) waitForExit(r *rig) tea.Cmd {
	return func() tea.Msg {
		<-r.exited
		return playerExitedMsg{rig: r}
	}
}

// searchSubtitles looks up subtitles for the loaded title.
func (b *statefulBubble) searchSubtitles(req catalog.Request) tea.Cmd {
	service := b.subtitles
	lang := viper.GetString(key.SubtitlesLanguage)

	return func() tea.Msg {
		candidates, err := service.Search(context.Background(), subtitle.Query{Title: req, Language: lang})
		if err != nil {
			return err
		}
		return subtitlesFoundMsg{candidates: candidates}
	}
}

// downloadSubtitle fetches, converts and attaches a search result.
func (b *statefulBubble) downloadSubtitle(c subtitle.Candidate) tea.Cmd {
	service := b.subtitles
	r := b.rig

	return func() tea.Msg {
		if r == nil {
			return playback.ErrNoSource
		}

		ctx := context.Background()
		raw, err := service.Download(ctx, c.FileID.String())
		if err != nil {
			return err
		}

		vtt, err := subtitle.ConvertChecked([]byte(raw))
		if err != nil {
			return err
		}

		origin := c.String()
		if err := r.controller.SetSubtitle(ctx, vtt, origin); err != nil {
			return err
		}
		return subtitleLoadedMsg{origin: origin}
	}
}

// uploadSubtitle converts and attaches a local .srt file.
func (b *statefulBubble) uploadSubtitle(path string) tea.Cmd {
	r := b.rig

	return func() tea.Msg {
		if r == nil {
			return playback.ErrNoSource
		}

		vtt, err := subtitle.LoadFile(path)
		if err != nil {
			return err
		}

		if err := r.controller.SetSubtitle(context.Background(), vtt, path); err != nil {
			return err
		}
		return subtitleLoadedMsg{origin: path}
	}
}

// remember records a loaded title when history is enabled.
func remember(req catalog.Request, title string) {
	if !viper.GetBool(key.HistorySave) {
		return
	}
	if err := history.Save(req, title); err != nil {
		log.Warnf("save history: %v", err)
	}
}

func (b *statefulBubble) loadHistory() (tea.Cmd, error) {
	entries, err := history.Recent()
	if err != nil {
		return nil, err
	}

	items := lo.Map(entries, func(e *history.Entry, _ int) list.Item {
		return &listItem{internal: e}
	})
	return b.historyC.SetItems(items), nil
}

func (b *statefulBubble) showCandidates(candidates []subtitle.Candidate) tea.Cmd {
	items := lo.Map(candidates, func(c subtitle.Candidate, _ int) list.Item {
		return &listItem{internal: c}
	})
	b.subtitlesC.ResetSelected()
	return b.subtitlesC.SetItems(items)
}

// isSourceGone reports errors after which the overlay has nothing to control.
func isSourceGone(err error) bool {
	return errors.Is(err, playback.ErrPlayback) || errors.Is(err, playback.ErrNoSource)
}
