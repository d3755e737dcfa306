package tui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// Init either shows the form or starts loading the title handed over by the caller.
func (b *statefulBubble) Init() tea.Cmd {
	b.setState(formState)
	return b.startup()
}
