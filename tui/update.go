package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/reel-cli/reel/catalog"
	"github.com/reel-cli/reel/history"
	"github.com/reel-cli/reel/internal/ui"
	"github.com/reel-cli/reel/playback"
	"github.com/reel-cli/reel/subtitle"
	bubblesKey "github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/samber/mo"
)

// volumeStep is the change applied by one volume key press or wheel notch.
const volumeStep = 0.05

func (b *statefulBubble) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	if uiCmd := b.notifier.Update(msg); uiCmd != nil {
		cmd = uiCmd
	}

	switch msg := msg.(type) {
	case error:
		b.raiseError(msg)
		return b, cmd
	case tea.WindowSizeMsg:
		b.resize(msg.Width, msg.Height)
	case playbackStateMsg:
		return b, tea.Batch(cmd, b.onPlaybackState(msg))
	case playbackErrorMsg:
		return b, tea.Batch(cmd, b.onPlaybackError(msg))
	case playerExitedMsg:
		return b, tea.Batch(cmd, b.onPlayerExited(msg))
	case tea.KeyMsg:
		if bubblesKey.Matches(msg, b.keymap.forceQuit) {
			return b, tea.Quit
		}

		// The message slot is modal.
		if b.lastError != nil {
			if bubblesKey.Matches(msg, b.keymap.dismiss) {
				b.lastError = nil
			}
			return b, cmd
		}

		// Input Guard: Ignore keys during asynchronous operations.
		if b.busy {
			return b, cmd
		}
	}

	var next tea.Cmd
	switch b.state {
	case formState:
		next = b.updateForm(msg)
	case loadingState:
		next = b.updateLoading(msg)
	case historyState:
		next = b.updateHistory(msg)
	case playerState:
		next = b.updatePlayer(msg)
	case subtitlesState:
		next = b.updateSubtitles(msg)
	case uploadState:
		next = b.updateUpload(msg)
	}

	return b, tea.Batch(cmd, next)
}

// submit validates req and starts loading it.
func (b *statefulBubble) submit(req catalog.Request) tea.Cmd {
	b.clearLoaded()

	if err := req.Validate(); err != nil {
		b.raiseError(err)
		return nil
	}

	b.progressStatus = fmt.Sprintf("Resolving %s", req)
	b.busy = true
	b.newState(loadingState)
	return tea.Batch(b.spinnerC.Tick, b.resolve(req))
}

// startup loads the request handed over on the command line, if any.
func (b *statefulBubble) startup() tea.Cmd {
	req, ok := b.options.Request.Get()
	if !ok {
		return textinput.Blink
	}

	b.fill(req)
	return b.submit(req)
}

func (b *statefulBubble) updateForm(msg tea.Msg) tea.Cmd {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return b.updateFields(msg)
	}

	switch {
	case bubblesKey.Matches(keyMsg, b.keymap.confirm):
		return b.submit(b.request())
	case bubblesKey.Matches(keyMsg, b.keymap.switchKind):
		b.switchKind()
		return b.unload()
	case bubblesKey.Matches(keyMsg, b.keymap.nextField):
		b.focusField(b.focus + 1)
		return nil
	case bubblesKey.Matches(keyMsg, b.keymap.prevField):
		b.focusField(b.focus - 1)
		return nil
	case bubblesKey.Matches(keyMsg, b.keymap.recent):
		cmd, err := b.loadHistory()
		if err != nil {
			b.raiseError(err)
			return nil
		}
		b.newState(historyState)
		return cmd
	case bubblesKey.Matches(keyMsg, b.keymap.resume), bubblesKey.Matches(keyMsg, b.keymap.back):
		if b.loaded.IsPresent() {
			b.newState(playerState)
		}
		return nil
	}

	return b.updateFields(msg)
}

func (b *statefulBubble) updateFields(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	if b.focus < len(b.fieldsC) {
		b.fieldsC[b.focus], cmd = b.fieldsC[b.focus].Update(msg)
	}
	return cmd
}

func (b *statefulBubble) updateLoading(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		var cmd tea.Cmd
		b.spinnerC, cmd = b.spinnerC.Update(msg)
		return cmd
	case streamResolvedMsg:
		b.progressStatus = fmt.Sprintf("Starting %s", msg.stream.Title)
		return b.mount(msg.request, msg.stream)
	case streamLoadedMsg:
		return b.onStreamLoaded(msg)
	case subtitlesFoundMsg:
		b.busy = false
		b.setState(subtitlesState)
		return b.showCandidates(msg.candidates)
	case subtitleLoadedMsg:
		b.busy = false
		b.subtitlesC.SetItems(nil)
		b.returnTo(playerState)
		return ui.Notify(fmt.Sprintf("Subtitles loaded from %s", msg.origin))
	}

	return nil
}

func (b *statefulBubble) onStreamLoaded(msg streamLoadedMsg) tea.Cmd {
	var cmds []tea.Cmd
	if b.rig != msg.rig {
		cmds = append(cmds, b.attach(msg.rig))
	}

	b.busy = false
	if msg.err != nil {
		b.raiseError(msg.err)
		return tea.Batch(cmds...)
	}

	b.loaded = mo.Some(msg.request)
	remember(msg.request, msg.stream.Title)
	b.returnTo(formState)
	b.newState(playerState)

	if path := b.options.SubtitleFile; path != "" {
		b.options.SubtitleFile = ""
		cmds = append(cmds, b.beginLoading("Loading "+path), b.uploadSubtitle(path))
	} else if b.options.SearchSubtitles {
		b.options.SearchSubtitles = false
		cmds = append(cmds, b.beginLoading("Searching subtitles"), b.searchSubtitles(msg.request))
	}

	return tea.Batch(cmds...)
}

// beginLoading shows the spinner with status.
func (b *statefulBubble) beginLoading(status string) tea.Cmd {
	b.progressStatus = status
	b.busy = true
	b.newState(loadingState)
	return b.spinnerC.Tick
}

func (b *statefulBubble) onPlaybackState(msg playbackStateMsg) tea.Cmd {
	if !msg.ok || msg.rig != b.rig {
		return nil
	}

	b.playback = msg.state
	if !b.playback.Seeking {
		b.dragging = false
	}
	return b.waitForState(msg.rig)
}

func (b *statefulBubble) onPlaybackError(msg playbackErrorMsg) tea.Cmd {
	if !msg.ok || msg.rig != b.rig {
		return nil
	}

	b.lastError = msg.err
	if isSourceGone(msg.err) {
		b.loaded = mo.None[catalog.Request]()
		if b.state == playerState {
			b.returnTo(formState)
		}
	}
	return b.waitForError(msg.rig)
}

func (b *statefulBubble) onPlayerExited(msg playerExitedMsg) tea.Cmd {
	if msg.rig != b.rig {
		return nil
	}

	if err := b.shutdown(); err != nil {
		b.lastError = err
	}
	b.clearLoaded()
	b.playback = playback.State{ControlsVisible: true}
	b.busy = false
	b.returnTo(formState)
	return ui.Notify("Player window closed")
}

func (b *statefulBubble) updateHistory(msg tea.Msg) tea.Cmd {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case bubblesKey.Matches(keyMsg, b.keymap.back):
			b.previousState()
			return nil
		case bubblesKey.Matches(keyMsg, b.keymap.remove):
			if item, ok := b.historyC.SelectedItem().(*listItem); ok {
				if err := history.Remove(item.internal.(*history.Entry)); err != nil {
					b.raiseError(err)
					return nil
				}
				b.historyC.RemoveItem(b.historyC.Index())
			}
			return nil
		case bubblesKey.Matches(keyMsg, b.keymap.confirm):
			item, ok := b.historyC.SelectedItem().(*listItem)
			if !ok {
				return nil
			}
			entry := item.internal.(*history.Entry)
			b.previousState()
			b.fill(entry.Request)
			return b.submit(entry.Request)
		}
	}

	var cmd tea.Cmd
	b.historyC, cmd = b.historyC.Update(msg)
	return cmd
}

func (b *statefulBubble) updatePlayer(msg tea.Msg) tea.Cmd {
	if b.rig == nil {
		return nil
	}
	c := b.rig.controller

	switch msg := msg.(type) {
	case tea.MouseMsg:
		b.handleMouse(c, msg)
	case tea.KeyMsg:
		switch {
		case bubblesKey.Matches(msg, b.keymap.back):
			b.previousState()
		case bubblesKey.Matches(msg, b.keymap.quit):
			return tea.Quit
		case bubblesKey.Matches(msg, b.keymap.playPause):
			c.TogglePlayPause()
		case bubblesKey.Matches(msg, b.keymap.rewind):
			c.Rewind()
		case bubblesKey.Matches(msg, b.keymap.forward):
			c.Forward()
		case bubblesKey.Matches(msg, b.keymap.volumeUp):
			c.SetVolume(b.playback.Volume + volumeStep)
		case bubblesKey.Matches(msg, b.keymap.volumeDown):
			c.SetVolume(b.playback.Volume - volumeStep)
		case bubblesKey.Matches(msg, b.keymap.mute):
			c.ToggleMute()
		case bubblesKey.Matches(msg, b.keymap.fullscreen):
			c.ToggleFullscreen()
		case bubblesKey.Matches(msg, b.keymap.jump):
			tenth, _ := strconv.Atoi(msg.String())
			c.SeekClick(float64(tenth), 10)
		case bubblesKey.Matches(msg, b.keymap.searchSubtitles):
			req, ok := b.loaded.Get()
			if !ok {
				return nil
			}
			return tea.Batch(b.beginLoading("Searching subtitles"), b.searchSubtitles(req))
		case bubblesKey.Matches(msg, b.keymap.uploadSubtitles):
			return b.openUpload()
		case bubblesKey.Matches(msg, b.keymap.showHelp):
			b.helpC.ShowAll = !b.helpC.ShowAll
		}
	}

	return nil
}

// handleMouse maps pointer gestures on the overlay to controller intents.
func (b *statefulBubble) handleMouse(c *playback.Controller, msg tea.MouseMsg) {
	g := b.geometry()
	region := g.region(msg.X, msg.Y)

	switch {
	case msg.Action == tea.MouseActionMotion:
		if b.dragging {
			c.SeekMove(g.barOffset(msg.X), float64(g.barWidth()))
		}
		b.pointerAt(c, region)

	case msg.Action == tea.MouseActionRelease:
		if b.dragging {
			b.dragging = false
			c.SeekEnd()
		}

	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
		b.pointerAt(c, region)
		switch {
		case g.onBar(msg.X, msg.Y):
			b.dragging = true
			c.SeekStart(g.barOffset(msg.X), float64(g.barWidth()))
		case msg.Y-g.top == g.transportRow():
			_, spots := transport(b.playback)
			if ctl, ok := hotspotAt(spots, msg.X-g.left); ok {
				press(c, ctl)
			}
		case region == playback.Surface:
			c.TogglePlayPause()
		}

	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonWheelUp:
		c.SetVolume(b.playback.Volume + volumeStep)

	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonWheelDown:
		c.SetVolume(b.playback.Volume - volumeStep)
	}
}

// pointerAt reports region changes. Entering and leaving the player are
// distinct intents from moving within it.
func (b *statefulBubble) pointerAt(c *playback.Controller, region playback.Region) {
	prev := b.playback.Pointer
	switch {
	case region == playback.Outside && prev != playback.Outside:
		c.PointerLeave()
	case region == playback.Outside:
	case prev == playback.Outside:
		c.PointerEnter()
		c.PointerMove(region)
	default:
		c.PointerMove(region)
	}
	b.playback.Pointer = region
}

func (b *statefulBubble) openUpload() tea.Cmd {
	b.uploadC.SetValue("")
	b.uploadC.Focus()
	b.newState(uploadState)
	return textinput.Blink
}

func (b *statefulBubble) updateSubtitles(msg tea.Msg) tea.Cmd {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case bubblesKey.Matches(keyMsg, b.keymap.back):
			b.previousState()
			return nil
		case bubblesKey.Matches(keyMsg, b.keymap.uploadSubtitles):
			return b.openUpload()
		case bubblesKey.Matches(keyMsg, b.keymap.confirm):
			item, ok := b.subtitlesC.SelectedItem().(*listItem)
			if !ok {
				return nil
			}
			candidate := item.internal.(subtitle.Candidate)
			return tea.Batch(b.beginLoading("Loading "+candidate.String()), b.downloadSubtitle(candidate))
		}
	}

	var cmd tea.Cmd
	b.subtitlesC, cmd = b.subtitlesC.Update(msg)
	return cmd
}

func (b *statefulBubble) updateUpload(msg tea.Msg) tea.Cmd {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case bubblesKey.Matches(keyMsg, b.keymap.back):
			b.uploadC.Blur()
			b.previousState()
			return nil
		case bubblesKey.Matches(keyMsg, b.keymap.confirm):
			path := strings.TrimSpace(b.uploadC.Value())
			if err := subtitle.CheckExtension(path); err != nil {
				b.raiseError(err)
				return nil
			}
			b.uploadC.Blur()
			return tea.Batch(b.beginLoading("Loading "+path), b.uploadSubtitle(path))
		}
	}

	var cmd tea.Cmd
	b.uploadC, cmd = b.uploadC.Update(msg)
	return cmd
}

var _ list.Item = (*listItem)(nil)
