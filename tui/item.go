package tui

import (
	"fmt"
	"strings"

	"github.com/reel-cli/reel/catalog"
	"github.com/reel-cli/reel/history"
	"github.com/reel-cli/reel/icon"
	"github.com/reel-cli/reel/style"
	"github.com/reel-cli/reel/subtitle"
)

// listItem implements the list.Item interface, wrapping various domain models for terminal display.
type listItem struct {
	internal interface{}
}

func (t *listItem) getMark() string {
	switch e := t.internal.(type) {
	case *history.Entry:
		if e.Request.Kind == catalog.TV {
			return icon.Get(icon.TV)
		}
		return icon.Get(icon.Movie)
	case subtitle.Candidate:
		return icon.Get(icon.Subtitle)
	default:
		return ""
	}
}

// Title retrieves the primary display text for the list item.
func (t *listItem) Title() string {
	title := t.FilterValue()
	if mark := t.getMark(); mark != "" {
		title = mark + " " + title
	}
	return title
}

// Description retrieves the secondary metadata for the list item.
func (t *listItem) Description() (description string) {
	switch e := t.internal.(type) {
	case *history.Entry:
		var parts []string
		parts = append(parts, string(e.Request.Kind), "#"+e.Request.ID)
		if !e.LoadedAt.IsZero() {
			parts = append(parts, e.LoadedAt.Format("2006-01-02 15:04"))
		}
		description = style.Faint(strings.Join(parts, " • "))
	case subtitle.Candidate:
		description = style.Faint(fmt.Sprintf("file %s", e.FileID))
	}

	return
}

// FilterValue returns the string used for list filtering.
func (t *listItem) FilterValue() string {
	switch e := t.internal.(type) {
	case *history.Entry:
		return e.String()
	case subtitle.Candidate:
		return e.String()
	case string:
		return e
	default:
		return ""
	}
}
