// Package ui provides ephemeral notifications shown under the active view.
package ui

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Lifetime is how long a notification stays on screen.
const Lifetime = 3 * time.Second

// Notification carries the text of a toast.
type Notification string

// ClearNotificationMsg resets the toast once its lifetime has passed.
type ClearNotificationMsg struct {
	at time.Time
}

// Model holds at most one toast.
type Model struct {
	notification string
	notifiedAt   time.Time
}

// Notify returns a command that shows text.
func Notify(text string) tea.Cmd {
	return func() tea.Msg {
		return Notification(text)
	}
}

func clearAfter(at time.Time) tea.Cmd {
	return tea.Tick(Lifetime, func(time.Time) tea.Msg {
		return ClearNotificationMsg{at: at}
	})
}

// Update handles Notification and ClearNotificationMsg, ignoring everything else.
// A clear scheduled for an older toast leaves a newer one alone.
func (m *Model) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case Notification:
		m.notification = string(msg)
		m.notifiedAt = time.Now()
		return clearAfter(m.notifiedAt)
	case ClearNotificationMsg:
		if msg.at.Equal(m.notifiedAt) {
			m.notification = ""
		}
	}
	return nil
}

// Current returns the visible toast, if any.
func (m *Model) Current() string {
	return m.notification
}

// View appends the toast to the last line of content.
func (m *Model) View(content string) string {
	if m.notification == "" {
		return content
	}

	toast := lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Render(m.notification)
	lines := strings.Split(content, "\n")
	lines[len(lines)-1] += "  " + toast
	return strings.Join(lines, "\n")
}
