package app

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/visadesk/internal/keys"
	"github.com/nhle/visadesk/internal/model"
	"github.com/nhle/visadesk/internal/nav"
	"github.com/nhle/visadesk/internal/notify"
	"github.com/nhle/visadesk/internal/session"
	"github.com/nhle/visadesk/internal/store"
	appsync "github.com/nhle/visadesk/internal/sync"
	"github.com/nhle/visadesk/internal/ui"
	"github.com/nhle/visadesk/internal/ui/applications"
	"github.com/nhle/visadesk/internal/ui/command"
	helpview "github.com/nhle/visadesk/internal/ui/help"
	"github.com/nhle/visadesk/internal/ui/login"
	"github.com/nhle/visadesk/internal/ui/notifications"
	"github.com/nhle/visadesk/internal/ui/settings"
	"github.com/nhle/visadesk/internal/ui/toast"
)

// Session is the authentication context the application drives,
// normally *session.Manager.
type Session interface {
	OnChange(fn func(session.State))
	Bootstrap(ctx context.Context) (bool, error)
	Login(ctx context.Context, email, password string) (*model.User, error)
	Logout() error
	User() *model.User
}

// API is the REST surface the screens read from, normally *api.Client.
type API interface {
	notify.Source
	applications.Lister
}

// Deps are the collaborators of the root model. History may be nil.
type Deps struct {
	Config  *model.AppConfig
	API     API
	Session Session
	History store.Store

	// ConfigPath is where the settings screen writes to. SaveConfig
	// defaults to model.SaveConfig.
	ConfigPath string
	SaveConfig settings.SaveFunc
}

// ViewState represents the current active view in the application.
type ViewState int

const (
	ViewStarting ViewState = iota
	ViewLogin
	ViewMain
	ViewHelp
	ViewCommand
	ViewSettings
)

// alertDuration is how long a status bar alert stays up.
const alertDuration = 5 * time.Second

// Model is the root Bubble Tea model that manages the session lifecycle,
// view routing and the toast overlay.
type Model struct {
	deps     Deps
	notifCfg model.NotificationConfig

	currentView  ViewState
	previousView ViewState
	route        nav.Route
	layout       ui.Layout
	keys         *keys.KeyMap
	ready        bool

	loginView    login.Model
	appsView     applications.Model
	centerView   notifications.Model
	helpView     helpview.Model
	commandView  command.Model
	settingsView settings.Model

	// Per-session state. store is nil while signed out.
	store      *notify.Store
	user       *model.User
	generation uint64

	poller    *appsync.Poller
	listening bool
	sessionCh chan session.State
	changeCh  chan struct{}

	alert   string
	alertID int
}

// New creates the root model and subscribes it to session changes.
func New(deps Deps) *Model {
	if deps.Config == nil {
		deps.Config = &model.AppConfig{}
	}
	cfg := deps.Config
	k := keys.DefaultKeyMap()

	m := &Model{
		deps:         deps,
		notifCfg:     cfg.Notifications,
		currentView:  ViewStarting,
		route:        nav.Login,
		keys:         k,
		loginView:    login.New(80, 24),
		appsView:     applications.New(deps.API, k, 80, 24),
		centerView:   notifications.New(k, 80, 24),
		helpView:     helpview.New(k, 80, 24),
		commandView:  command.New(80, 24),
		settingsView: settings.New(deps.ConfigPath, deps.SaveConfig, 80, 24),
		poller: appsync.New(appsync.Config{
			PollInterval:  cfg.Notifications.PollInterval(),
			CountInterval: cfg.Notifications.CountInterval(),
		}),
		sessionCh: make(chan session.State, 16),
		changeCh:  make(chan struct{}, 1),
	}

	sessionCh := m.sessionCh
	deps.Session.OnChange(func(st session.State) {
		sessionCh <- st
	})
	return m
}

// Init restores a persisted session and starts listening for session and
// store changes.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		m.bootstrap(),
		m.waitForSession(),
		m.waitForStoreChange(),
	)
}

// Update handles messages and dispatches to the active view.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = ui.NewLayout(msg.Width, msg.Height)
		m.ready = true
		w, h := m.layout.ContentWidth(), m.layout.ContentHeight()
		m.loginView.SetSize(w, h)
		m.appsView.SetSize(w, h)
		m.centerView.SetSize(w, h)
		m.helpView.SetSize(w, h)
		m.commandView.SetSize(w, h)
		m.settingsView.SetSize(w, h)
		// Forward to active view so huh forms can calculate their layout.
		return m.updateActiveView(msg)

	case bootstrapMsg:
		if msg.err != nil {
			m.setAlert("Could not restore the previous session.")
		}
		if !msg.restored && m.store == nil {
			return m, m.showLogin("")
		}
		return m, nil

	case sessionChangedMsg:
		var cmd tea.Cmd
		if msg.state.Authenticated {
			cmd = m.startSession(msg.state)
		} else {
			cmd = m.endSession(msg.state)
		}
		return m, tea.Batch(cmd, m.waitForSession())

	case storeChangedMsg:
		// Toast expiry: re-render only.
		return m, m.waitForStoreChange()

	case login.SubmitMsg:
		return m, m.login(msg)

	case loginFailedMsg:
		return m, m.loginView.Failed(msg.message)

	case appsync.RefreshedMsg:
		if msg.Generation == m.generation && m.store != nil {
			cmd := m.centerView.SetNotifications(m.store.Unread())
			return m, tea.Batch(cmd, m.poller.WaitForNextResult())
		}
		return m, m.poller.WaitForNextResult()

	case appsync.CountMsg:
		return m, m.poller.WaitForNextResult()

	case applications.LoadedMsg:
		var cmd tea.Cmd
		m.appsView, cmd = m.appsView.Update(msg, m.generation)
		return m, cmd

	case notifications.OpenMsg:
		return m, tea.Batch(
			m.navigateTo(msg.Notification.ActionURL),
			m.markRead(msg.Notification.ID),
		)

	case notifications.MarkReadMsg:
		return m, m.markRead(msg.ID)

	case notifications.MarkAllReadMsg:
		return m, m.markAllRead()

	case notifications.HistoryLoadedMsg:
		var cmd tea.Cmd
		m.centerView, cmd = m.centerView.Update(msg)
		return m, cmd

	case markedMsg:
		if msg.generation != m.generation || m.store == nil {
			return m, nil
		}
		if !msg.ok {
			m.setAlert(msg.failure)
			return m, m.clearAlertAfter()
		}
		return m, m.centerView.SetNotifications(m.store.Unread())

	case command.CommandMsg:
		m.currentView = m.previousView
		return m, m.executeCommand(command.Command(msg))

	case settings.SavedMsg:
		m.currentView = ViewMain
		return m, m.applySettings(msg.Config)

	case settings.DoneMsg:
		m.currentView = ViewMain
		return m, nil

	case command.ErrorMsg:
		m.currentView = m.previousView
		m.setAlert(msg.Err.Error())
		return m, m.clearAlertAfter()

	case clearAlertMsg:
		if msg.id == m.alertID {
			m.alert = ""
		}
		return m, nil

	case tea.KeyMsg:
		if next, cmd, handled := m.handleGlobalKeys(msg); handled {
			return next, cmd
		}
	}

	return m.updateActiveView(msg)
}

// handleGlobalKeys processes keys that work across views. The login form
// and the command palette own the keyboard while they are open.
func (m *Model) handleGlobalKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd, bool) {
	if msg.String() == "ctrl+c" {
		return m, m.quit(), true
	}

	switch m.currentView {
	case ViewStarting:
		return m, nil, true

	case ViewLogin, ViewSettings:
		return m, nil, false

	case ViewCommand:
		if key.Matches(msg, m.keys.Back) {
			m.currentView = m.previousView
			return m, nil, true
		}
		return m, nil, false

	case ViewHelp:
		if key.Matches(msg, m.keys.Help) || key.Matches(msg, m.keys.Back) {
			m.currentView = m.previousView
		}
		return m, nil, true
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, m.quit(), true

	case key.Matches(msg, m.keys.Help):
		m.previousView = m.currentView
		m.currentView = ViewHelp
		return m, nil, true

	case key.Matches(msg, m.keys.Command):
		m.previousView = m.currentView
		m.currentView = ViewCommand
		return m, m.commandView.Focus(), true

	case key.Matches(msg, m.keys.NextView):
		return m, m.cycleRoute(1), true

	case key.Matches(msg, m.keys.PrevView):
		return m, m.cycleRoute(-1), true

	case key.Matches(msg, m.keys.Refresh):
		return m, m.refresh(), true

	case key.Matches(msg, m.keys.OpenToast):
		return m, m.openNewestToast(), true

	case key.Matches(msg, m.keys.DismissToast):
		if t, ok := m.newestToast(); ok {
			m.store.DismissToast(t.ID)
		}
		return m, nil, true

	case key.Matches(msg, m.keys.Logout):
		return m, m.logout(), true
	}

	return m, nil, false
}

// updateActiveView dispatches the message to the currently active view.
func (m *Model) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.currentView {
	case ViewLogin:
		m.loginView, cmd = m.loginView.Update(msg)
	case ViewHelp:
		m.helpView, cmd = m.helpView.Update(msg)
	case ViewCommand:
		m.commandView, cmd = m.commandView.Update(msg)
	case ViewSettings:
		m.settingsView, cmd = m.settingsView.Update(msg)
	case ViewMain:
		switch m.route {
		case nav.Dashboard, nav.Applications:
			m.appsView, cmd = m.appsView.Update(msg, m.generation)
		case nav.Notifications:
			m.centerView, cmd = m.centerView.Update(msg)
		}
	}

	return m, cmd
}

// View renders the full terminal UI using the layout manager.
func (m *Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	title := "visadesk"
	if m.currentView == ViewMain {
		title += " · " + nav.Title(m.route)
	}

	unread := 0
	if m.store != nil {
		unread = m.store.UnreadCount()
	}

	header := m.layout.RenderHeader(title, m.user, unread)
	content := m.renderContent()
	statusBar := m.layout.RenderStatusBar(m.keyHints(), m.alert)

	return m.layout.RenderWithFrame(header, content, statusBar)
}

// renderContent returns the active view with the toast stack drawn over
// its bottom right corner.
func (m *Model) renderContent() string {
	var content string
	switch m.currentView {
	case ViewStarting:
		content = "Restoring session..."
	case ViewLogin:
		content = m.loginView.View()
	case ViewHelp:
		content = m.helpView.View()
	case ViewCommand:
		content = m.commandView.View()
	case ViewSettings:
		content = m.settingsView.View()
	default:
		content = m.renderRoute()
	}

	w, h := m.layout.ContentWidth(), m.layout.ContentHeight()
	content = lipgloss.NewStyle().MaxWidth(w).MaxHeight(h).Render(content)

	if m.store == nil || m.currentView == ViewLogin {
		return lipgloss.Place(w, h, lipgloss.Left, lipgloss.Top, content)
	}
	stack := toast.Render(m.store.Toasts(), min(48, w))
	if stack == "" {
		return lipgloss.Place(w, h, lipgloss.Left, lipgloss.Top, content)
	}
	return overlayBottomRight(content, stack, w, h)
}

func (m *Model) renderRoute() string {
	switch m.route {
	case nav.Dashboard, nav.Applications:
		return m.appsView.View()
	case nav.Notifications:
		return m.centerView.View()
	default:
		return m.renderPlaceholder()
	}
}

func (m *Model) renderPlaceholder() string {
	return lipgloss.NewStyle().
		Width(m.layout.ContentWidth()).
		Height(m.layout.ContentHeight()).
		Align(lipgloss.Center, lipgloss.Center).
		Render(nav.Title(m.route) + "\n\nThis section is available in the web app.\nNotifications for it still arrive here.")
}

// keyHints returns keyboard shortcut hints for the status bar.
func (m *Model) keyHints() string {
	switch m.currentView {
	case ViewLogin:
		return "enter next | tab switch field | esc quit"
	case ViewHelp:
		return "? close help | esc back"
	case ViewCommand:
		return "enter execute | esc back"
	case ViewSettings:
		return "enter next | shift+tab previous | esc cancel"
	case ViewStarting:
		return ""
	}

	switch m.route {
	case nav.Notifications:
		if m.centerView.ShowingHistory() {
			return "h unread | o open toast | x dismiss | tab next | ? help"
		}
		return "enter open | m read | M read all | h history | tab next | ? help"
	case nav.Dashboard, nav.Applications:
		return "f status | r refresh | o open toast | x dismiss | tab next | ? help"
	default:
		return "o open toast | x dismiss | tab next | : command | ? help | q quit"
	}
}

func (m *Model) setAlert(s string) {
	m.alert = s
	m.alertID++
}

func (m *Model) clearAlertAfter() tea.Cmd {
	id := m.alertID
	return tea.Tick(alertDuration, func(time.Time) tea.Msg { return clearAlertMsg{id: id} })
}

func (m *Model) quit() tea.Cmd {
	m.Close()
	return tea.Quit
}

// Close stops polling and disposes the session store. The program runner
// calls it after the event loop exits; calling it twice is harmless.
func (m *Model) Close() {
	m.poller.Stop()
	if m.store != nil {
		m.store.Dispose()
	}
}
