// Package login is the sign-in screen.
package login

import (
	"errors"
	"net/mail"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/visadesk/internal/theme"
)

// SubmitMsg is dispatched when the form passes validation.
type SubmitMsg struct {
	Email    string
	Password string
}

// formBindings holds form field values on the heap so that huh's Value()
// pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	email    string
	password string
}

// Model is the Bubble Tea model for the sign-in form.
type Model struct {
	form   *huh.Form
	fb     *formBindings
	busy   bool
	err    string
	notice string
	width  int
	height int
}

// New creates a sign-in form model.
func New(width, height int) Model {
	return Model{
		fb:     &formBindings{},
		width:  width,
		height: height,
	}
}

// Start (re)builds the form. The email typed previously is kept, the
// password is always cleared.
func (m *Model) Start() tea.Cmd {
	m.busy = false
	m.fb.password = ""
	m.form = m.buildForm()
	return m.form.Init()
}

// SetNotice shows a message above the form, e.g. after a session expired.
func (m *Model) SetNotice(s string) {
	m.notice = s
}

// Failed reports a rejected sign-in and reopens the form.
func (m *Model) Failed(message string) tea.Cmd {
	m.err = message
	return m.Start()
}

// Busy reports whether a submission is waiting for the server.
func (m Model) Busy() bool {
	return m.busy
}

// Update handles messages for the sign-in form.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil || m.busy {
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		m.busy = true
		m.err = ""
		submit := SubmitMsg{Email: strings.TrimSpace(m.fb.email), Password: m.fb.password}
		return m, func() tea.Msg { return submit }
	}
	if m.form.State == huh.StateAborted {
		return m, tea.Quit
	}

	return m, cmd
}

// View renders the sign-in form.
func (m Model) View() string {
	if m.form == nil {
		return ""
	}

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	parts := []string{titleStyle.Render("Sign in to visadesk")}
	if m.notice != "" {
		parts = append(parts, lipgloss.NewStyle().Foreground(theme.ColorYellow).Render(m.notice))
	}
	if m.err != "" {
		parts = append(parts, lipgloss.NewStyle().Foreground(theme.ColorRed).Render(m.err))
	}
	if m.busy {
		parts = append(parts, theme.HelpStyle.Render("Signing in..."))
	} else {
		parts = append(parts, m.form.View())
	}

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
		huh.NewGroup(Fields(&m.fb.email, &m.fb.password)...),
	).WithWidth(m.formWidth()).WithShowHelp(true)
}

// Fields returns the email and password inputs bound to the given values.
// The CLI prompt reuses them.
func Fields(email, password *string) []huh.Field {
	return []huh.Field{
		huh.NewInput().
			Title("Email").
			Placeholder("you@example.com").
			Value(email).
			Validate(ValidateEmail),
		huh.NewInput().
			Title("Password").
			EchoMode(huh.EchoModePassword).
			Value(password).
			Validate(ValidatePassword),
	}
}

// ValidateEmail requires a single plain address.
func ValidateEmail(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return errors.New("email is required")
	}
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Address != s || !strings.Contains(s[strings.LastIndex(s, "@")+1:], ".") {
		return errors.New("enter a valid email address")
	}
	return nil
}

// ValidatePassword requires a non-blank password.
func ValidatePassword(s string) error {
	if strings.TrimSpace(s) == "" {
		return errors.New("password is required")
	}
	return nil
}

func (m Model) formWidth() int {
	w := m.width - 4
	if w < 40 {
		w = 40
	}
	if w > 70 {
		w = 70
	}
	return w
}
