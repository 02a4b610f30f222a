package app

import (
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/nhle/visadesk/internal/model"
	"github.com/nhle/visadesk/internal/nav"
	appsync "github.com/nhle/visadesk/internal/sync"
	"github.com/nhle/visadesk/internal/ui/command"
)

// markedMsg is the outcome of a mark-read action.
type markedMsg struct {
	generation uint64
	ok         bool
	failure    string
}

func (m *Model) markRead(id model.ID) tea.Cmd {
	s, gen := m.store, m.generation
	if s == nil {
		return nil
	}
	return func() tea.Msg {
		ok := s.MarkRead(context.Background(), id)
		return markedMsg{generation: gen, ok: ok, failure: "Could not mark the notification as read."}
	}
}

func (m *Model) markAllRead() tea.Cmd {
	s, gen := m.store, m.generation
	if s == nil {
		return nil
	}
	return func() tea.Msg {
		ok := s.MarkAllRead(context.Background())
		return markedMsg{generation: gen, ok: ok, failure: "Could not mark notifications as read."}
	}
}

// navigateTo follows an action URL through the route guard.
func (m *Model) navigateTo(actionURL string) tea.Cmd {
	if actionURL == "" {
		return nil
	}
	r, _ := nav.Resolve(actionURL)
	return m.goTo(r)
}

func (m *Model) goTo(r nav.Route) tea.Cmd {
	next := nav.Guard(m.user, r)
	if next == nav.Login {
		return m.showLogin("")
	}
	m.route = next
	m.currentView = ViewMain
	return nil
}

func (m *Model) cycleRoute(step int) tea.Cmd {
	if m.user == nil {
		return nil
	}
	menu := nav.Menu(m.user.Role)
	if len(menu) == 0 {
		return nil
	}
	i := 0
	for j, it := range menu {
		if it.Route == m.route {
			i = j
			break
		}
	}
	i = (i + step + len(menu)) % len(menu)
	return m.goTo(menu[i].Route)
}

func (m *Model) refresh() tea.Cmd {
	m.poller.Refresh()
	if m.route == nav.Dashboard || m.route == nav.Applications {
		return m.appsView.Load(m.generation)
	}
	return nil
}

func (m *Model) newestToast() (model.Toast, bool) {
	if m.store == nil {
		return model.Toast{}, false
	}
	toasts := m.store.Toasts()
	if len(toasts) == 0 {
		return model.Toast{}, false
	}
	return toasts[len(toasts)-1], true
}

// openNewestToast follows the newest toast's action URL and dismisses it.
func (m *Model) openNewestToast() tea.Cmd {
	t, ok := m.newestToast()
	if !ok {
		return nil
	}
	m.store.DismissToast(t.ID)
	return m.navigateTo(t.ActionURL)
}

// executeCommand handles a parsed command palette entry.
func (m *Model) executeCommand(c command.Command) tea.Cmd {
	switch c.Action {
	case command.ActionRefresh:
		return m.refresh()
	case command.ActionReadAll:
		return m.markAllRead()
	case command.ActionLogout:
		return m.logout()
	case command.ActionGo:
		return m.goTo(c.Route)
	case command.ActionSettings:
		m.previousView = m.currentView
		m.currentView = ViewSettings
		return m.settingsView.Start(*m.deps.Config)
	case command.ActionQuit:
		return m.quit()
	}
	return nil
}

// applySettings adopts a saved configuration. Timings take effect from
// the next sign-in; the API address needs a restart.
func (m *Model) applySettings(cfg *model.AppConfig) tea.Cmd {
	restart := cfg.API.BaseURL != m.deps.Config.API.BaseURL

	m.deps.Config = cfg
	m.notifCfg = cfg.Notifications
	m.poller.Configure(appsync.Config{
		PollInterval:  cfg.Notifications.PollInterval(),
		CountInterval: cfg.Notifications.CountInterval(),
	})

	if restart {
		m.setAlert("Settings saved. Restart visadesk to use the new API URL.")
	} else {
		m.setAlert("Settings saved. New timings apply from the next sign-in.")
	}
	return m.clearAlertAfter()
}

// overlayBottomRight draws top over the bottom right corner of base,
// padding base to w×h first.
func overlayBottomRight(base, top string, w, h int) string {
	canvas := strings.Split(lipgloss.Place(w, h, lipgloss.Left, lipgloss.Top, base), "\n")
	lines := strings.Split(top, "\n")

	topWidth := lipgloss.Width(top)
	offset := len(canvas) - len(lines)
	if offset < 0 {
		lines = lines[-offset:]
		offset = 0
	}
	for i, line := range lines {
		row := canvas[offset+i]
		keep := w - topWidth
		if keep < 0 {
			keep = 0
		}
		canvas[offset+i] = ansi.Truncate(row, keep, "") + lipgloss.PlaceHorizontal(topWidth, lipgloss.Right, line)
	}
	return strings.Join(canvas, "\n")
}
