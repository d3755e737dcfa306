// Package tui provides the primary terminal user interface implementation.
package tui

import (
	"errors"

	"github.com/reel-cli/reel/catalog"
	"github.com/reel-cli/reel/history"
	"github.com/reel-cli/reel/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/samber/mo"
	"github.com/spf13/viper"
)

// Options encapsulates the runtime configuration for the terminal user interface.
type Options struct {
	// Continue reopens the most recently loaded title.
	Continue bool

	// Request is loaded immediately instead of showing the form.
	Request mo.Option[catalog.Request]

	// SubtitleFile is a local .srt file attached once the stream is loaded.
	SubtitleFile string

	// SearchSubtitles opens the subtitle results once the stream is loaded.
	SearchSubtitles bool
}

// Run initializes and executes the primary Bubble Tea application loop.
func Run(options *Options) error {
	if options.Continue {
		latest, ok := history.Latest().Get()
		if !ok {
			return errors.New("nothing to continue, history is empty")
		}
		options.Request = mo.Some(latest.Request)
	}

	bubble := newBubble(options)

	programOptions := []tea.ProgramOption{tea.WithAltScreen()}
	if viper.GetBool(key.TUIMouse) {
		programOptions = append(programOptions, tea.WithMouseAllMotion())
	}

	_, err := tea.NewProgram(bubble, programOptions...).Run()
	return errors.Join(err, bubble.shutdown())
}
