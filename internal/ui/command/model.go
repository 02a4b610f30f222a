package command

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/visadesk/internal/nav"
	"github.com/nhle/visadesk/internal/theme"
)

// Action is what a palette command asks the application to do.
type Action int

const (
	ActionRefresh Action = iota
	ActionReadAll
	ActionLogout
	ActionGo
	ActionSettings
	ActionQuit
)

// Command is a parsed palette entry.
type Command struct {
	Action Action
	Route  nav.Route
}

// CommandMsg is emitted when the user executes a command.
type CommandMsg Command

// ErrorMsg is emitted when the entered text is not a command.
type ErrorMsg struct {
	Input string
	Err   error
}

// Parse turns palette input into a Command.
func Parse(input string) (Command, error) {
	fields := strings.Fields(strings.ToLower(input))
	if len(fields) == 0 {
		return Command{}, fmt.Errorf("empty command")
	}

	switch fields[0] {
	case "refresh", "r":
		return Command{Action: ActionRefresh}, nil
	case "read":
		if len(fields) == 2 && fields[1] == "all" {
			return Command{Action: ActionReadAll}, nil
		}
	case "logout", "signout":
		return Command{Action: ActionLogout}, nil
	case "settings", "config":
		return Command{Action: ActionSettings}, nil
	case "quit", "q":
		return Command{Action: ActionQuit}, nil
	case "go":
		if len(fields) != 2 {
			return Command{}, fmt.Errorf("usage: go <section>")
		}
		r := nav.Route(fields[1])
		if !nav.Known(r) || r == nav.Login {
			return Command{}, fmt.Errorf("unknown section %q", fields[1])
		}
		return Command{Action: ActionGo, Route: r}, nil
	}
	return Command{}, fmt.Errorf("unknown command %q", input)
}

// Model is the command palette view.
type Model struct {
	input  textinput.Model
	width  int
	height int
}

// New creates a new command palette model.
func New(width, height int) Model {
	ti := textinput.New()
	ti.Placeholder = "refresh, read all, go <section>, settings, logout, quit"
	ti.Prompt = ": "
	ti.Focus()
	ti.Width = width - 6

	return Model{
		input:  ti,
		width:  width,
		height: height,
	}
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages for the command palette.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.String() == "enter" {
		text := strings.TrimSpace(m.input.Value())
		m.input.Reset()
		if text == "" {
			return m, nil
		}
		c, err := Parse(text)
		if err != nil {
			return m, func() tea.Msg { return ErrorMsg{Input: text, Err: err} }
		}
		return m, func() tea.Msg { return CommandMsg(c) }
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the command palette.
func (m Model) View() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	content := lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("Command Palette"),
		m.input.View(),
	)

	return theme.PanelStyle.
		Width(m.width - 4).
		Render(content)
}

// SetSize updates the command palette dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.input.Width = width - 6
}

// Focus gives keyboard focus to the text input.
func (m *Model) Focus() tea.Cmd {
	return m.input.Focus()
}
