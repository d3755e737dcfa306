package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/reel-cli/reel/catalog"
	"github.com/reel-cli/reel/constant"
	"github.com/reel-cli/reel/internal/ui"
	"github.com/reel-cli/reel/key"
	"github.com/reel-cli/reel/playback"
	"github.com/reel-cli/reel/style"
	"github.com/reel-cli/reel/subtitle"
	"github.com/reel-cli/reel/util"
	"github.com/charmbracelet/bubbles/help"
	bubblesKey "github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/spf13/viper"
)

type streamResolver interface {
	Resolve(ctx context.Context, req catalog.Request) (*catalog.Stream, error)
}

type subtitleService interface {
	Search(ctx context.Context, q subtitle.Query) ([]subtitle.Candidate, error)
	Download(ctx context.Context, fileID string) (string, error)
}

// form field indices
const (
	fieldID = iota
	fieldSeason
	fieldEpisode
)

// statefulBubble encapsulates the application state, including component models and workflow tracking.
type statefulBubble struct {
	state         state
	statesHistory util.Stack[state]
	busy          bool // Protects against rapid input during async ops

	keymap *statefulKeymap

	// components
	spinnerC   spinner.Model
	fieldsC    []textinput.Model
	uploadC    textinput.Model
	historyC   list.Model
	subtitlesC list.Model
	progressC  progress.Model
	helpC      help.Model

	kind  catalog.Kind
	focus int

	loaded   mo.Option[catalog.Request]
	playback playback.State
	dragging bool

	// lastError is the single message slot. It stays until dismissed.
	lastError error

	progressStatus string

	rig       *rig
	startRig  func(title string) (*rig, error)
	resolver  streamResolver
	subtitles subtitleService

	width, height int
	notifier      *ui.Model

	options *Options
}

// raiseError fills the message slot, replacing whatever was there.
func (b *statefulBubble) raiseError(err error) {
	b.lastError = err
	b.busy = false
	if b.state == loadingState {
		b.previousState()
	}
}

// setState performs a synchronous transition of both the application workflow and its associated keymap.
func (b *statefulBubble) setState(s state) {
	b.state = s
	b.keymap.setState(s)
}

// newState facilitates an idempotent transition to a target state, recording the previous state in the navigation history when appropriate.
func (b *statefulBubble) newState(s state) {
	if b.state == s {
		return
	}

	// Do not push these states to history
	if !lo.Contains([]state{
		loadingState,
		uploadState,
	}, b.state) {
		b.statesHistory.Push(b.state)
	}

	b.setState(s)
}

// previousState restores the application to its immediate predecessor in the navigation stack.
func (b *statefulBubble) previousState() {
	if b.statesHistory.Len() > 0 {
		s := b.statesHistory.Pop()
		b.setState(s)
	}
}

// returnTo unwinds the navigation stack down to s.
func (b *statefulBubble) returnTo(s state) {
	for b.statesHistory.Len() > 0 {
		if b.statesHistory.Pop() == s {
			break
		}
	}
	b.setState(s)
}

// geometry reflects the player view as currently laid out.
func (b *statefulBubble) geometry() geometry {
	left, top := paddingStyle.GetPaddingLeft(), paddingStyle.GetPaddingTop()
	helpRows := 2
	return geometry{
		left:        left,
		top:         top,
		width:       b.width,
		surfaceRows: lo.Max([]int{b.height - surfaceRow - 2 - helpRows, minSurfaceRows}),
	}
}

// resize propagates terminal dimension changes to all child component models.
func (b *statefulBubble) resize(width, height int) {
	x, y := paddingStyle.GetFrameSize()
	xx, yy := listExtraPaddingStyle.GetFrameSize()

	styledWidth := width - x
	styledHeight := height - y

	listWidth := width - xx
	listHeight := height - yy

	b.historyC.SetSize(listWidth, listHeight)
	b.historyC.Help.Width = listWidth

	b.subtitlesC.SetSize(listWidth, listHeight)
	b.subtitlesC.Help.Width = listWidth

	b.width = styledWidth
	b.height = styledHeight
	b.helpC.Width = styledWidth

	b.progressC.Width = b.geometry().barWidth()
	b.uploadC.Width = styledWidth
}

// newBubble performs a complete initialization of the application's primary UI model.
func newBubble(options *Options) *statefulBubble {
	keymap := newStatefulKeymap()
	bubble := statefulBubble{
		statesHistory: util.Stack[state]{},
		keymap:        keymap,
		kind:          catalog.Movie,
		startRig:      startRig,
		resolver:      catalog.NewResolver(),
		subtitles:     subtitle.NewClient(),
		notifier:      &ui.Model{},
		options:       options,
	}

	makeList := func(title string, titleColor lipgloss.Color) list.Model {
		delegate := list.NewDefaultDelegate()
		delegate.SetSpacing(viper.GetInt(key.TUIItemSpacing))
		delegate.Styles.SelectedTitle = lipgloss.NewStyle().
			Border(lipgloss.ThickBorder(), false, false, false, true).
			BorderForeground(style.AccentColor).
			Foreground(style.AccentColor).
			Padding(0, 0, 0, 1)
		delegate.Styles.NormalTitle = delegate.Styles.NormalTitle.Foreground(lipgloss.Color("7"))
		delegate.Styles.SelectedDesc = delegate.Styles.SelectedTitle

		listC := list.New([]list.Item{}, delegate, 0, 0)
		listC.KeyMap = bubble.keymap.forList()
		listC.AdditionalShortHelpKeys = bubble.keymap.ShortHelp
		listC.AdditionalFullHelpKeys = func() []bubblesKey.Binding {
			return bubble.keymap.FullHelp()[0]
		}
		listC.Title = title
		listC.Styles.NoItems = paddingStyle
		listC.Styles.Title = lipgloss.NewStyle().Foreground(style.Base).Background(titleColor).Padding(0, 1)
		listC.StatusMessageLifetime = time.Hour * 999
		listC.SetShowPagination(false)
		listC.SetShowStatusBar(false)
		listC.SetFilteringEnabled(false)

		return listC
	}

	bubble.helpC = help.New()

	bubble.spinnerC = spinner.New()
	bubble.spinnerC.Spinner = spinner.Dot
	bubble.spinnerC.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	makeField := func(placeholder, prompt string, limit int) textinput.Model {
		input := textinput.New()
		input.Placeholder = placeholder
		input.Prompt = prompt
		input.CharLimit = limit
		return input
	}

	bubble.fieldsC = []textinput.Model{
		makeField(fmt.Sprintf("TMDB ID (%s v%s)", constant.Reel, constant.Version), "ID      › ", 20),
		makeField("1", "Season  › ", 4),
		makeField("1", "Episode › ", 4),
	}
	bubble.fieldsC[fieldID].Focus()

	bubble.uploadC = makeField("/path/to/subtitle"+constant.SubtitleExt, "File › ", 4096)

	bubble.progressC = progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage())

	bubble.historyC = makeList("Recent", style.Yellow)
	bubble.historyC.SetStatusBarItemName("title", "titles")

	bubble.subtitlesC = makeList("Subtitles", style.Peach)
	bubble.subtitlesC.SetStatusBarItemName("subtitle", "subtitles")

	bubble.playback = playback.State{ControlsVisible: true}

	if w, h, err := util.TerminalSize(); err == nil {
		bubble.resize(w, h)
	}

	return &bubble
}

// fields returns the inputs relevant for the current content type.
func (b *statefulBubble) fields() []textinput.Model {
	if b.kind == catalog.TV {
		return b.fieldsC
	}
	return b.fieldsC[:fieldSeason]
}

// focusField moves the cursor to field i, wrapping around.
func (b *statefulBubble) focusField(i int) {
	n := len(b.fields())
	b.focus = (i%n + n) % n
	for j := range b.fieldsC {
		if j == b.focus {
			b.fieldsC[j].Focus()
		} else {
			b.fieldsC[j].Blur()
		}
	}
}

// request builds a request from the form.
func (b *statefulBubble) request() catalog.Request {
	req := catalog.Request{
		ID:   b.fieldsC[fieldID].Value(),
		Kind: b.kind,
	}
	if b.kind == catalog.TV {
		req.Season = b.fieldsC[fieldSeason].Value()
		req.Episode = b.fieldsC[fieldEpisode].Value()
	}
	return req
}

// fill copies req into the form.
func (b *statefulBubble) fill(req catalog.Request) {
	b.kind = req.Kind
	b.fieldsC[fieldID].SetValue(req.ID)
	b.fieldsC[fieldSeason].SetValue(req.Season)
	b.fieldsC[fieldEpisode].SetValue(req.Episode)
	b.focusField(fieldID)
}

// clearLoaded forgets the loaded stream, subtitle results and the message slot.
func (b *statefulBubble) clearLoaded() {
	b.loaded = mo.None[catalog.Request]()
	b.subtitlesC.SetItems(nil)
	b.lastError = nil
	b.dragging = false
}

// switchKind toggles between movie and tv and drops everything loaded so far.
func (b *statefulBubble) switchKind() {
	if b.kind == catalog.Movie {
		b.kind = catalog.TV
	} else {
		b.kind = catalog.Movie
	}

	b.fieldsC[fieldSeason].SetValue("")
	b.fieldsC[fieldEpisode].SetValue("")
	b.focusField(fieldID)
	b.clearLoaded()
}

// shutdown releases the player when the program exits.
func (b *statefulBubble) shutdown() error {
	if b.rig == nil {
		return nil
	}
	err := b.rig.close()
	b.rig = nil
	return err
}
