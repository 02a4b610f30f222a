package ui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/visadesk/internal/model"
	"github.com/nhle/visadesk/internal/theme"
)

// Layout manages the terminal layout dimensions.
type Layout struct {
	Width           int
	Height          int
	HeaderHeight    int
	StatusBarHeight int
}

// NewLayout creates a Layout with the given terminal dimensions.
// HeaderHeight and StatusBarHeight default to 1.
func NewLayout(width, height int) Layout {
	return Layout{
		Width:           width,
		Height:          height,
		HeaderHeight:    1,
		StatusBarHeight: 1,
	}
}

// ContentWidth returns the full available width.
func (l Layout) ContentWidth() int {
	return l.Width
}

// ContentHeight returns the height available for the main content area,
// accounting for the header and status bar.
func (l Layout) ContentHeight() int {
	h := l.Height - l.HeaderHeight - l.StatusBarHeight
	if h < 0 {
		return 0
	}
	return h
}

// Badge renders the unread counter. Counts above 99 are shown as "99+";
// zero renders nothing.
func Badge(unread int) string {
	switch {
	case unread <= 0:
		return ""
	case unread > 99:
		return theme.BadgeStyle.Render("🔔 99+")
	default:
		return theme.BadgeStyle.Render(fmt.Sprintf("🔔 %d", unread))
	}
}

// RenderHeader renders the top header bar: the title on the left, the
// signed-in user with their role and the unread badge on the right.
func (l Layout) RenderHeader(title string, user *model.User, unread int) string {
	titleRendered := theme.HeaderStyle.Render(title)

	right := ""
	if user != nil {
		name := user.Name
		if name == "" {
			name = user.Email
		}
		right = lipgloss.JoinHorizontal(lipgloss.Top,
			theme.HeaderStyle.Bold(false).Render(name),
			theme.RoleStyle(user.Role).Render(user.Role.Label()),
			Badge(unread),
		)
	}

	gap := l.Width -
		lipgloss.Width(titleRendered) -
		lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}

	filler := lipgloss.NewStyle().
		Width(gap).
		Background(theme.HeaderStyle.GetBackground()).
		Render("")

	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		titleRendered,
		filler,
		right,
	)
}

// RenderStatusBar renders the bottom status bar with keyboard hints. A
// non-empty alert replaces the hints and is drawn in the alert style.
func (l Layout) RenderStatusBar(hints, alert string) string {
	style := theme.StatusBarStyle
	text := hints
	if alert != "" {
		style = theme.AlertStyle
		text = alert
	}
	rendered := style.Render(text)

	gap := l.Width - lipgloss.Width(rendered)
	if gap < 0 {
		gap = 0
	}

	filler := lipgloss.NewStyle().
		Width(gap).
		Background(style.GetBackground()).
		Render("")

	return lipgloss.JoinHorizontal(lipgloss.Top, rendered, filler)
}

// RenderWithFrame composes a full terminal view by vertically joining
// the header, content area, and status bar.
func (l Layout) RenderWithFrame(
	header string,
	content string,
	statusBar string,
) string {
	return lipgloss.JoinVertical(
		lipgloss.Left,
		header,
		content,
		statusBar,
	)
}
