package notifications

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/nhle/visadesk/internal/model"
	"github.com/nhle/visadesk/internal/theme"
)

// NotificationItem wraps an unread notification for a bubbles/list.
type NotificationItem struct {
	Notification model.Notification
}

// FilterValue returns the string used for fuzzy filtering.
func (i NotificationItem) FilterValue() string { return i.Notification.Title }

// Title returns the notification title.
func (i NotificationItem) Title() string { return i.Notification.Title }

// Description returns the notification body.
func (i NotificationItem) Description() string { return i.Notification.Body }

// HistoryItem wraps a locally recorded toast.
type HistoryItem struct {
	Toast model.ShownToast
}

// FilterValue returns the string used for fuzzy filtering.
func (i HistoryItem) FilterValue() string { return i.Toast.Title }

// Title returns the toast title.
func (i HistoryItem) Title() string { return i.Toast.Title }

// Description returns the toast body.
func (i HistoryItem) Description() string { return i.Toast.Body }

// ItemDelegate renders both item kinds on two lines: icon and title, then
// the body with a relative time.
type ItemDelegate struct {
	now func() time.Time
}

// Height returns the number of lines each item takes.
func (d ItemDelegate) Height() int { return 2 }

// Spacing returns the number of blank lines between items.
func (d ItemDelegate) Spacing() int { return 1 }

// Update handles per-item messages (unused).
func (d ItemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd {
	return nil
}

// Render draws a single list item.
func (d ItemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	var (
		icon     string
		category model.Category
		title    string
		body     string
		at       time.Time
	)

	switch it := item.(type) {
	case NotificationItem:
		icon, category = it.Notification.Kind.Appearance()
		title, body, at = it.Notification.Title, it.Notification.Body, it.Notification.CreatedAt
	case HistoryItem:
		icon, category = it.Toast.Kind.Appearance()
		title, body, at = it.Toast.Title, it.Toast.Body, it.Toast.ShownAt
	default:
		return
	}

	titleLine := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.CategoryColor(category)).
		Render(icon + " " + title)

	width := m.Width() - 4
	if width < 10 {
		width = 10
	}
	body = truncate(strings.ReplaceAll(body, "\n", " "), width-16)

	when := ""
	if !at.IsZero() {
		when = theme.MutedStyle.Render("  " + relativeTime(at, d.now()))
	}

	style := theme.ListItemStyle
	if index == m.Index() {
		style = theme.SelectedItemStyle
	}
	fmt.Fprint(w, style.Render(titleLine+"\n"+body+when))
}

func truncate(s string, n int) string {
	if n <= 1 || lipgloss.Width(s) <= n {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 && lipgloss.Width(string(runes))+1 > n {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "…"
}

// relativeTime returns a human-friendly relative time string.
func relativeTime(t, now time.Time) string {
	if now.Sub(t) < time.Minute && !t.After(now) {
		return "just now"
	}
	return humanize.RelTime(t, now, "ago", "from now")
}
