// Package settings is the preferences screen. It edits the configuration
// file the client was started with.
package settings

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/visadesk/internal/model"
	"github.com/nhle/visadesk/internal/theme"
)

// DoneMsg signals the settings view should close without saving.
type DoneMsg struct{}

// SavedMsg carries the configuration after it was written to disk.
type SavedMsg struct {
	Config *model.AppConfig
}

// savedInternalMsg is sent after the configuration file is written.
type savedInternalMsg struct {
	cfg *model.AppConfig
	err error
}

// SaveFunc persists a configuration. model.SaveConfig in production.
type SaveFunc func(path string, cfg *model.AppConfig) error

// formBindings holds form field values on the heap so that huh's Value()
// pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	baseURL       string
	pollInterval  string
	countInterval string
	toastSeconds  string
	historyLimit  string
	logLevel      string
}

// Model is the Bubble Tea model for the settings form.
type Model struct {
	form   *huh.Form
	fb     *formBindings
	base   model.AppConfig
	path   string
	save   SaveFunc
	saving bool
	err    string
	width  int
	height int
}

// New creates a settings view writing to path.
func New(path string, save SaveFunc, width, height int) Model {
	if save == nil {
		save = model.SaveConfig
	}
	return Model{
		fb:     &formBindings{},
		path:   path,
		save:   save,
		width:  width,
		height: height,
	}
}

// Start fills the form from cfg and focuses it.
func (m *Model) Start(cfg model.AppConfig) tea.Cmd {
	m.base = cfg
	m.saving = false
	m.err = ""
	*m.fb = formBindings{
		baseURL:       cfg.API.BaseURL,
		pollInterval:  strconv.Itoa(int(cfg.Notifications.PollInterval().Seconds())),
		countInterval: strconv.Itoa(int(cfg.Notifications.CountInterval().Seconds())),
		toastSeconds:  strconv.Itoa(int(cfg.Notifications.ToastDuration().Seconds())),
		historyLimit:  strconv.Itoa(cfg.Notifications.HistoryLimit),
		logLevel:      cfg.Log.Level,
	}
	m.form = m.buildForm()
	return m.form.Init()
}

// Update handles messages for the settings form.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(savedInternalMsg); ok {
		m.saving = false
		if msg.err != nil {
			m.err = fmt.Sprintf("Error saving settings: %v", msg.err)
			m.form = m.buildForm()
			return m, m.form.Init()
		}
		return m, func() tea.Msg { return SavedMsg{Config: msg.cfg} }
	}

	if m.form == nil || m.saving {
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		m.saving = true
		return m, m.persist(m.config())
	}
	if m.form.State == huh.StateAborted {
		return m, func() tea.Msg { return DoneMsg{} }
	}

	return m, cmd
}

// View renders the settings form.
func (m Model) View() string {
	if m.form == nil {
		return ""
	}

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	parts := []string{titleStyle.Render("Settings")}
	if m.err != "" {
		parts = append(parts, lipgloss.NewStyle().Foreground(theme.ColorRed).Render(m.err))
	}
	if m.saving {
		parts = append(parts, theme.HelpStyle.Render("Saving..."))
	} else {
		parts = append(parts, m.form.View())
	}
	parts = append(parts, theme.HelpStyle.Render(m.path))

	return lipgloss.NewStyle().
		Padding(1, 2).
		Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}

// SetSize updates the form dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m *Model) buildForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("API URL").
				Description("Platform REST API root").
				Placeholder(model.DefaultAPIBaseURL).
				Value(&m.fb.baseURL).
				Validate(validateURL),
			huh.NewInput().
				Title("Notification poll (seconds)").
				Value(&m.fb.pollInterval).
				Validate(validatePositive("Poll interval")),
			huh.NewInput().
				Title("Unread counter poll (seconds)").
				Value(&m.fb.countInterval).
				Validate(validatePositive("Counter interval")),
			huh.NewInput().
				Title("Toast duration (seconds)").
				Value(&m.fb.toastSeconds).
				Validate(validatePositive("Toast duration")),
			huh.NewInput().
				Title("Toast history size").
				Description("Toasts kept per user on this machine").
				Value(&m.fb.historyLimit).
				Validate(validatePositive("History size")),
			huh.NewSelect[string]().
				Title("Log level").
				Options(huh.NewOptions("debug", "info", "warn", "error")...).
				Value(&m.fb.logLevel),
		),
	).WithWidth(m.formWidth()).WithShowHelp(true)
}

// config merges the form values into the configuration being edited.
// Values have passed validation by the time the form completes.
func (m Model) config() *model.AppConfig {
	cfg := m.base
	cfg.API.BaseURL = strings.TrimRight(strings.TrimSpace(m.fb.baseURL), "/")
	cfg.Notifications.PollIntervalSec = atoi(m.fb.pollInterval)
	cfg.Notifications.CountIntervalSec = atoi(m.fb.countInterval)
	cfg.Notifications.ToastDurationMS = atoi(m.fb.toastSeconds) * 1000
	cfg.Notifications.HistoryLimit = atoi(m.fb.historyLimit)
	cfg.Log.Level = m.fb.logLevel
	return &cfg
}

func (m Model) persist(cfg *model.AppConfig) tea.Cmd {
	save, path := m.save, m.path
	return func() tea.Msg {
		return savedInternalMsg{cfg: cfg, err: save(path, cfg)}
	}
}

func (m Model) formWidth() int {
	w := m.width - 4
	if w < 40 {
		w = 40
	}
	if w > 100 {
		w = 100
	}
	return w
}

func atoi(s string) int {
	n, _ := strconv.Atoi(strings.TrimSpace(s))
	return n
}

func validateURL(s string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("URL is required")
	}
	parsed, err := url.Parse(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("URL must include scheme and host (e.g., https://example.com/api)")
	}
	return nil
}

func validatePositive(fieldName string) func(string) error {
	return func(s string) error {
		n, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			return fmt.Errorf("%s must be a number", fieldName)
		}
		if n <= 0 {
			return fmt.Errorf("%s must be greater than zero", fieldName)
		}
		return nil
	}
}
