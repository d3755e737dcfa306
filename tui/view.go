package tui

import (
	"fmt"
	"strings"

	"github.com/reel-cli/reel/catalog"
	"github.com/reel-cli/reel/color"
	"github.com/reel-cli/reel/icon"
	"github.com/reel-cli/reel/style"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wrap"
)

var (
	listExtraPaddingStyle = lipgloss.NewStyle().Padding(1, 2, 1, 0)
	paddingStyle          = lipgloss.NewStyle().Padding(1, 2)
)

func (b *statefulBubble) View() string {
	if b.lastError != nil {
		return b.viewError()
	}

	var output string

	switch b.state {
	case formState:
		output = b.viewForm()
	case loadingState:
		output = b.viewLoading()
	case historyState:
		output = listExtraPaddingStyle.Render(b.historyC.View())
	case playerState:
		output = b.viewPlayer()
	case subtitlesState:
		output = listExtraPaddingStyle.Render(b.subtitlesC.View())
	case uploadState:
		output = b.viewUpload()
	default:
		output = "Unknown state"
	}

	return b.notifier.View(output)
}

func (b *statefulBubble) viewForm() string {
	movie, tv := style.Faint("Movie"), style.Faint("TV")
	active := style.New().Bold(true).Foreground(style.AccentColor).Render
	if b.kind == catalog.TV {
		tv = active(icon.Get(icon.TV) + " TV")
	} else {
		movie = active(icon.Get(icon.Movie) + " Movie")
	}

	lines := []string{
		style.Title("Load a title"),
		"",
		movie + "  " + tv,
		"",
	}

	for _, field := range b.fields() {
		lines = append(lines, field.View())
	}

	if req, ok := b.loaded.Get(); ok {
		lines = append(lines, "", style.Faint(fmt.Sprintf("%s %s is loaded", icon.Get(icon.Play), req)))
	}

	return b.renderLines(true, lines)
}

func (b *statefulBubble) viewLoading() string {
	return b.renderLines(
		true,
		[]string{
			style.Title("Loading"),
			"",
			b.spinnerC.View() + " " + b.progressStatus,
		},
	)
}

func (b *statefulBubble) viewUpload() string {
	return b.renderLines(
		true,
		[]string{
			style.Title("Load subtitles"),
			"",
			style.Faint("Path to a SubRip (.srt) file"),
			"",
			b.uploadC.View(),
		},
	)
}

func (b *statefulBubble) viewPlayer() string {
	s := b.playback
	g := b.geometry()
	truncate := style.Truncate(b.width)

	title := style.Fg(color.Purple)(s.Title)
	if req, ok := b.loaded.Get(); ok && req.Kind == catalog.TV {
		title += " " + style.Tag(color.New("230"), color.Purple)(fmt.Sprintf("S%sE%s", req.Season, req.Episode))
	}

	lines := []string{
		style.Title("Now Playing"),
		"",
		truncate(title),
		"",
	}

	surface := b.surfaceLines()
	for i := 0; i < g.surfaceRows; i++ {
		line := ""
		if i < len(surface) {
			line = truncate(surface[i])
		}
		lines = append(lines, line)
	}

	if s.ControlsVisible {
		bar := b.progressC.ViewAs(s.Progress)
		transportLine, _ := transport(s)
		lines = append(lines, bar+" "+s.Readout(), truncate(transportLine))
	} else {
		lines = append(lines, "", "")
	}

	return b.renderLines(true, lines)
}

// surfaceLines describe what the sink is doing.
func (b *statefulBubble) surfaceLines() []string {
	s := b.playback

	var status string
	switch {
	case s.Idle():
		status = style.Faint("Nothing loaded")
	case s.Ended:
		status = icon.Get(icon.Success) + " Ended"
	case s.Seeking:
		status = icon.Get(icon.Progress) + " Seeking to " + s.Clock()
	case s.Playing:
		status = icon.Get(icon.Play) + " Playing"
	default:
		status = icon.Get(icon.Pause) + " Paused"
	}

	lines := []string{status}
	if s.Subtitle != "" {
		lines = append(lines, style.Faint(icon.Get(icon.Subtitle)+" "+s.Subtitle))
	}
	if s.Fullscreen {
		lines = append(lines, style.Faint(icon.Get(icon.Fullscreen)+" Fullscreen"))
	}
	return lines
}

func (b *statefulBubble) viewError() string {
	errorStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	errorBody := errorStyle.Render(b.lastError.Error())
	errorMsg := wrap.String(errorBody, b.width)
	return b.renderLines(
		false,
		[]string{
			style.ErrorTitle("Error"),
			"",
			icon.Get(icon.Fail) + " Something went wrong:",
			"",
			errorMsg,
			"",
			style.Faint("Press enter to dismiss"),
		},
	)
}

func (b *statefulBubble) renderLines(addHelp bool, lines []string) string {
	h := len(lines)
	l := strings.Join(lines, "\n")
	if addHelp {
		if b.height > h {
			l += strings.Repeat("\n", b.height-h)
		}
		l += b.helpC.View(b.keymap)
	}

	return paddingStyle.Render(l)
}
