package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/pocket/internal/tui/theme"
)

// StatusBar is the bottom line of the dashboard.
type StatusBar struct {
	Hints   string
	Message string
	IsError bool
}

// Render draws the bar at width: hints on the left, the latest message on
// the right.
func (s StatusBar) Render(width int) string {
	t := theme.Active

	hintStyle := lipgloss.NewStyle().Foreground(t.TextMuted)
	msgStyle := lipgloss.NewStyle().Foreground(t.TextMuted)
	if s.IsError {
		msgStyle = msgStyle.Foreground(t.Warning).Bold(true)
	}

	left := hintStyle.Render(" " + s.Hints)
	right := ""
	if s.Message != "" {
		right = msgStyle.Render(s.Message + " ")
	}

	padding := width - lipgloss.Width(left) - lipgloss.Width(right)
	if padding < 1 {
		padding = 1
	}

	return lipgloss.NewStyle().Width(width).MaxWidth(width).
		Render(left + strings.Repeat(" ", padding) + right)
}

// LockBadge renders the edit lock state as a short pill.
func LockBadge(editable bool) string {
	t := theme.Active
	if editable {
		return lipgloss.NewStyle().Foreground(t.Accent).Bold(true).Render("● editable")
	}
	return lipgloss.NewStyle().Foreground(t.Warning).Bold(true).Render("■ locked")
}
