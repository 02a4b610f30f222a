package app

import (
	"context"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/visadesk/internal/api"
	"github.com/nhle/visadesk/internal/model"
	"github.com/nhle/visadesk/internal/nav"
	"github.com/nhle/visadesk/internal/notify"
	"github.com/nhle/visadesk/internal/session"
	"github.com/nhle/visadesk/internal/store"
	"github.com/nhle/visadesk/internal/ui/login"
)

type bootstrapMsg struct {
	restored bool
	err      error
}

type sessionChangedMsg struct {
	state session.State
}

// storeChangedMsg reports a store change nobody asked for (toast expiry).
type storeChangedMsg struct{}

type loginFailedMsg struct {
	message string
}

type clearAlertMsg struct {
	id int
}

func (m *Model) bootstrap() tea.Cmd {
	s := m.deps.Session
	return func() tea.Msg {
		ok, err := s.Bootstrap(context.Background())
		if err != nil {
			slog.Warn("Session bootstrap failed", slog.String("error", err.Error()))
		}
		return bootstrapMsg{restored: ok, err: err}
	}
}

func (m *Model) waitForSession() tea.Cmd {
	ch := m.sessionCh
	return func() tea.Msg {
		return sessionChangedMsg{state: <-ch}
	}
}

func (m *Model) waitForStoreChange() tea.Cmd {
	ch := m.changeCh
	return func() tea.Msg {
		<-ch
		return storeChangedMsg{}
	}
}

func (m *Model) login(submit login.SubmitMsg) tea.Cmd {
	s := m.deps.Session
	return func() tea.Msg {
		if _, err := s.Login(context.Background(), submit.Email, submit.Password); err != nil {
			slog.Info("Sign-in rejected", slog.String("error", err.Error()))
			return loginFailedMsg{message: api.UserMessage(err)}
		}
		// The session listener delivers the authenticated state.
		return nil
	}
}

func (m *Model) logout() tea.Cmd {
	if err := m.deps.Session.Logout(); err != nil {
		slog.Warn("Sign-out incomplete", slog.String("error", err.Error()))
	}
	return nil
}

// startSession creates the store for a new session and starts polling.
func (m *Model) startSession(st session.State) tea.Cmd {
	m.stopSession()

	m.user = st.User
	m.generation = st.Generation
	m.alert = ""

	opts := notify.Options{
		ToastDuration: m.notifCfg.ToastDuration(),
		OnChange:      m.signalChange,
	}
	if m.deps.History != nil && st.User != nil {
		opts.History = store.UserHistory{
			Store:  m.deps.History,
			UserID: st.User.ID,
			Limit:  m.notifCfg.HistoryLimit,
		}
		history, userID, limit := m.deps.History, st.User.ID, m.notifCfg.HistoryLimit
		m.centerView.SetHistoryLoader(func() ([]model.ShownToast, error) {
			return history.RecentToasts(context.Background(), userID, limit)
		})
	}
	m.store = notify.NewStore(m.deps.API, opts)

	role := model.Role("")
	if st.User != nil {
		role = st.User.Role
	}
	m.helpView.SetRole(role)
	m.route = nav.Guard(st.User, nav.Dashboard)
	m.currentView = ViewMain

	cmds := []tea.Cmd{m.appsView.Load(m.generation)}
	wait := m.poller.Start(m.store, m.generation)
	if !m.listening {
		m.listening = true
		cmds = append(cmds, wait)
	}
	return tea.Batch(cmds...)
}

// endSession tears the session down: polling stops, the store is disposed
// and the login form is shown.
func (m *Model) endSession(st session.State) tea.Cmd {
	m.stopSession()
	m.user = nil
	m.generation = st.Generation
	m.route = nav.Login
	m.helpView.SetRole("")

	notice := ""
	if st.Expired {
		notice = api.UserMessage(api.ErrSessionExpired)
	}
	return m.showLogin(notice)
}

func (m *Model) stopSession() {
	m.poller.Stop()
	if m.store != nil {
		m.store.Dispose()
		m.store = nil
	}
	m.centerView.Reset()
	m.appsView.Reset()
}

func (m *Model) showLogin(notice string) tea.Cmd {
	m.currentView = ViewLogin
	m.route = nav.Login
	m.loginView.SetNotice(notice)
	return m.loginView.Start()
}

// signalChange runs on timer goroutines; it must not block.
func (m *Model) signalChange() {
	select {
	case m.changeCh <- struct{}{}:
	default:
	}
}
