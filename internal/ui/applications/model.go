// Package applications is the applications dashboard: the visa
// applications visible to the signed-in user with their progress.
package applications

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/visadesk/internal/api"
	"github.com/nhle/visadesk/internal/keys"
	"github.com/nhle/visadesk/internal/model"
	"github.com/nhle/visadesk/internal/theme"
)

// Lister loads applications, normally *api.Client.
type Lister interface {
	ListApplications(ctx context.Context, filter api.ApplicationFilter) (*api.ApplicationPage, error)
}

// LoadedMsg carries a page of applications. Generation is the session the
// request was made for.
type LoadedMsg struct {
	Generation uint64
	Page       *api.ApplicationPage
	Err        error
}

// statusFilters is cycled by the status filter key. Empty means all.
var statusFilters = []string{
	"",
	model.ApplicationInReview,
	model.ApplicationPendingDocuments,
	model.ApplicationApproved,
	model.ApplicationRejected,
	model.ApplicationDraft,
}

const pageSize = 50

// Item wraps an application for a bubbles/list.
type Item struct {
	Application model.Application
}

// FilterValue returns the string used for fuzzy filtering.
func (i Item) FilterValue() string { return i.Application.Reference }

// Title returns the application reference.
func (i Item) Title() string { return i.Application.Reference }

// Description returns the visa type and destination.
func (i Item) Description() string {
	return i.Application.VisaType + " · " + i.Application.Country
}

type delegate struct {
	bar *progress.Model
}

func (d delegate) Height() int { return 2 }

func (d delegate) Spacing() int { return 1 }

func (d delegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd {
	return nil
}

func (d delegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(Item)
	if !ok {
		return
	}
	a := it.Application

	status := theme.StatusStyle(a.Status).Render(a.StatusLabel())
	first := fmt.Sprintf("%s %s  %s", lipgloss.NewStyle().Bold(true).Render(a.Reference), status, it.Description())

	who := a.ApplicantName
	if a.AdvisorName != "" {
		who += theme.MutedStyle.Render("  advisor: " + a.AdvisorName)
	}
	second := d.bar.ViewAs(a.ProgressRatio()) + "  " + who

	style := theme.ListItemStyle
	if index == m.Index() {
		style = theme.SelectedItemStyle
	}
	fmt.Fprint(w, style.Render(first+"\n"+second))
}

// Model is the applications dashboard view.
type Model struct {
	list      list.Model
	keys      *keys.KeyMap
	lister    Lister
	bar       *progress.Model
	statusIdx int
	total     int
	loading   bool
	err       string
	width     int
	height    int
}

// New creates an applications dashboard reading from lister.
func New(lister Lister, k *keys.KeyMap, width, height int) Model {
	bar := progress.New(progress.WithDefaultGradient(), progress.WithWidth(24))

	l := list.New([]list.Item{}, delegate{bar: &bar}, width, max(height-2, 0))
	l.Title = "Applications"
	l.SetShowStatusBar(true)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.Styles.Title = theme.HeaderStyle

	return Model{
		list:   l,
		keys:   k,
		lister: lister,
		bar:    &bar,
		width:  width,
		height: height,
	}
}

// Filter returns the filter the next load uses.
func (m Model) Filter() api.ApplicationFilter {
	return api.ApplicationFilter{Status: statusFilters[m.statusIdx], PageSize: pageSize}
}

// Load returns a command that fetches applications for session gen.
func (m *Model) Load(gen uint64) tea.Cmd {
	if m.lister == nil {
		return nil
	}
	m.loading = true
	lister, filter := m.lister, m.Filter()
	return func() tea.Msg {
		page, err := lister.ListApplications(context.Background(), filter)
		return LoadedMsg{Generation: gen, Page: page, Err: err}
	}
}

// Reset clears the dashboard, for sign-out.
func (m *Model) Reset() {
	m.statusIdx = 0
	m.total = 0
	m.err = ""
	m.loading = false
	m.list.ResetSelected()
	m.list.SetItems(nil)
}

// Update handles messages for the dashboard. gen is the current session
// generation; results for other sessions are dropped.
func (m Model) Update(msg tea.Msg, gen uint64) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case LoadedMsg:
		if msg.Generation != gen {
			return m, nil
		}
		m.loading = false
		if msg.Err != nil {
			m.err = api.UserMessage(msg.Err)
			return m, nil
		}
		m.err = ""
		m.total = msg.Page.Count
		items := make([]list.Item, len(msg.Page.Results))
		for i, a := range msg.Page.Results {
			items[i] = Item{Application: a}
		}
		return m, m.list.SetItems(items)

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.CycleStatus) {
			m.statusIdx = (m.statusIdx + 1) % len(statusFilters)
			m.list.ResetSelected()
			m.list.Title = m.title()
			return m, m.Load(gen)
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) title() string {
	if s := statusFilters[m.statusIdx]; s != "" {
		return "Applications · " + model.Application{Status: s}.StatusLabel()
	}
	return "Applications"
}

// View renders the dashboard.
func (m Model) View() string {
	empty := lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		Align(lipgloss.Center, lipgloss.Center).
		Foreground(theme.ColorGray)

	switch {
	case m.err != "":
		return empty.Foreground(theme.ColorRed).Render(m.err)
	case len(m.list.Items()) == 0 && m.loading:
		return empty.Render("Loading applications...")
	case len(m.list.Items()) == 0:
		return empty.Render("No applications to show.")
	}

	out := m.list.View()
	if m.total > len(m.list.Items()) {
		out += "\n" + theme.MutedStyle.Render(fmt.Sprintf("showing %d of %d", len(m.list.Items()), m.total))
	}
	return out
}

// SetSize updates the list dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.list.SetSize(width, max(height-2, 0))
}
