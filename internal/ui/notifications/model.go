// Package notifications is the notification center: the unread list fed
// by the notification store and the device-local toast history.
package notifications

import (
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/visadesk/internal/keys"
	"github.com/nhle/visadesk/internal/model"
	"github.com/nhle/visadesk/internal/theme"
)

// OpenMsg asks the application to follow a notification's action URL.
type OpenMsg struct {
	Notification model.Notification
}

// MarkReadMsg asks the application to mark one notification read.
type MarkReadMsg struct {
	ID model.ID
}

// MarkAllReadMsg asks the application to mark everything read.
type MarkAllReadMsg struct{}

// HistoryLoadedMsg carries the toast history.
type HistoryLoadedMsg struct {
	Toasts []model.ShownToast
	Err    error
}

// HistoryLoader reads the signed-in user's toast history.
type HistoryLoader func() ([]model.ShownToast, error)

// Model is the notification center view.
type Model struct {
	list        list.Model
	keys        *keys.KeyMap
	loadHistory HistoryLoader
	unread      []model.Notification
	history     []model.ShownToast
	showHistory bool
	width       int
	height      int
}

// New creates a notification center.
func New(k *keys.KeyMap, width, height int) Model {
	return newWithClock(k, width, height, time.Now)
}

func newWithClock(k *keys.KeyMap, width, height int, now func() time.Time) Model {
	l := list.New([]list.Item{}, ItemDelegate{now: now}, width, max(height-2, 0))
	l.Title = "Notifications"
	l.SetShowStatusBar(true)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.Styles.Title = theme.HeaderStyle

	return Model{
		list:   l,
		keys:   k,
		width:  width,
		height: height,
	}
}

// SetHistoryLoader sets where the history toggle reads from. A nil loader
// disables the toggle.
func (m *Model) SetHistoryLoader(fn HistoryLoader) {
	m.loadHistory = fn
	if fn == nil && m.showHistory {
		m.showHistory = false
		m.refreshItems()
	}
}

// SetNotifications replaces the unread list shown when history is off.
func (m *Model) SetNotifications(list []model.Notification) tea.Cmd {
	m.unread = list
	if m.showHistory {
		return nil
	}
	return m.refreshItems()
}

// ShowingHistory reports whether the history is displayed.
func (m Model) ShowingHistory() bool {
	return m.showHistory
}

// Selected returns the highlighted unread notification.
func (m Model) Selected() (model.Notification, bool) {
	it, ok := m.list.SelectedItem().(NotificationItem)
	if !ok {
		return model.Notification{}, false
	}
	return it.Notification, true
}

// Reset clears everything shown, for sign-out.
func (m *Model) Reset() {
	m.unread = nil
	m.history = nil
	m.showHistory = false
	m.loadHistory = nil
	m.list.ResetSelected()
	m.list.SetItems(nil)
}

// Update handles messages for the notification center.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case HistoryLoadedMsg:
		if !m.showHistory {
			return m, nil
		}
		if msg.Err != nil {
			m.history = nil
			return m, m.list.NewStatusMessage("History unavailable")
		}
		m.history = msg.Toasts
		return m, m.refreshItems()

	case tea.KeyMsg:
		return m.handleKeys(msg)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) handleKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.History):
		if m.loadHistory == nil {
			return m, nil
		}
		m.showHistory = !m.showHistory
		m.list.ResetSelected()
		if !m.showHistory {
			return m, m.refreshItems()
		}
		load := m.loadHistory
		return m, tea.Batch(m.refreshItems(), func() tea.Msg {
			toasts, err := load()
			return HistoryLoadedMsg{Toasts: toasts, Err: err}
		})
	}

	if m.showHistory {
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Select):
		if n, ok := m.Selected(); ok {
			return m, func() tea.Msg { return OpenMsg{Notification: n} }
		}
		return m, nil

	case key.Matches(msg, m.keys.MarkRead):
		if n, ok := m.Selected(); ok {
			return m, func() tea.Msg { return MarkReadMsg{ID: n.ID} }
		}
		return m, nil

	case key.Matches(msg, m.keys.MarkAllRead):
		if len(m.unread) == 0 {
			return m, nil
		}
		return m, func() tea.Msg { return MarkAllReadMsg{} }
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m *Model) refreshItems() tea.Cmd {
	var items []list.Item
	if m.showHistory {
		m.list.Title = "Toast history"
		items = make([]list.Item, len(m.history))
		for i, t := range m.history {
			items[i] = HistoryItem{Toast: t}
		}
	} else {
		m.list.Title = "Notifications"
		items = make([]list.Item, len(m.unread))
		for i, n := range m.unread {
			items[i] = NotificationItem{Notification: n}
		}
	}
	return m.list.SetItems(items)
}

// View renders the notification center.
func (m Model) View() string {
	if len(m.list.Items()) == 0 {
		text := "You're all caught up.\nNo unread notifications."
		if m.showHistory {
			text = "No toasts shown on this device yet."
		}
		return lipgloss.NewStyle().
			Width(m.width).
			Height(m.height).
			Align(lipgloss.Center, lipgloss.Center).
			Foreground(theme.ColorGray).
			Render(text)
	}
	return m.list.View()
}

// SetSize updates the list dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.list.SetSize(width, max(height-2, 0))
}
