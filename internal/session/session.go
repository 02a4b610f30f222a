// Package session holds the authenticated user and token pair, persists
// them in the keyring and serves as the API client's authenticator.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/sync/singleflight"

	"github.com/nhle/visadesk/internal/model"
)

// ErrNotAuthenticated is returned by operations that need a session.
var ErrNotAuthenticated = errors.New("not authenticated")

// refreshTimeout bounds a shared token refresh.
const refreshTimeout = 30 * time.Second

// Backend is the subset of the API client the session needs.
type Backend interface {
	Login(ctx context.Context, email, password string) (model.Tokens, *model.User, error)
	RefreshAccessToken(ctx context.Context, refresh string) (model.Tokens, error)
}

// Persister stores the session between runs.
type Persister interface {
	Load() (model.Tokens, *model.User, error)
	Save(tokens model.Tokens, user *model.User) error
	SaveAccess(access string) error
	Clear() error
}

// State is delivered to listeners on every authentication change.
type State struct {
	Authenticated bool
	User          *model.User
	Generation    uint64

	// Expired is set when the session ended because a token refresh failed
	// rather than an explicit logout.
	Expired bool
}

// Manager owns the current session.
type Manager struct {
	backend Backend
	store   Persister
	now     func() time.Time

	mu         sync.RWMutex
	tokens     model.Tokens
	user       *model.User
	generation uint64
	listeners  []func(State)

	refreshGroup singleflight.Group
}

// NewManager creates a signed-out manager. Call Bootstrap to restore a
// persisted session.
func NewManager(backend Backend, store Persister) *Manager {
	return &Manager{
		backend: backend,
		store:   store,
		now:     time.Now,
	}
}

// OnChange registers fn to be called after every authenticate/teardown.
// fn runs on the goroutine that caused the change and must not block.
func (m *Manager) OnChange(fn func(State)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners = append(m.listeners, fn)
}

// Bootstrap restores the persisted session. When the stored access token
// has expired it is refreshed first; a failed refresh leaves the manager
// signed out with the stored credentials cleared.
func (m *Manager) Bootstrap(ctx context.Context) (bool, error) {
	tokens, user, err := m.store.Load()
	if err != nil {
		return false, fmt.Errorf("loading stored session: %w", err)
	}
	if tokens.Empty() || user == nil {
		return false, nil
	}

	m.mu.Lock()
	m.tokens = tokens
	m.user = user
	m.mu.Unlock()

	if tokenExpired(tokens.Access, m.now()) {
		if err := m.Refresh(ctx); err != nil {
			slog.Info("Stored session could not be refreshed", slog.String("error", err.Error()))
			m.mu.Lock()
			m.tokens = model.Tokens{}
			m.user = nil
			m.mu.Unlock()
			if clearErr := m.store.Clear(); clearErr != nil {
				slog.Warn("Failed to clear stored session", slog.String("error", clearErr.Error()))
			}
			return false, nil
		}
	}

	m.authenticated()
	return true, nil
}

// Login authenticates against the API and persists the new session.
func (m *Manager) Login(ctx context.Context, email, password string) (*model.User, error) {
	tokens, user, err := m.backend.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}

	if err := m.store.Save(tokens, user); err != nil {
		// The session still works for this run.
		slog.Warn("Failed to persist session", slog.String("error", err.Error()))
	}

	m.mu.Lock()
	m.tokens = tokens
	m.user = user
	m.mu.Unlock()

	m.authenticated()
	return user, nil
}

// Logout forgets the session locally and in the keyring.
func (m *Manager) Logout() error {
	m.teardown(false)
	if err := m.store.Clear(); err != nil {
		return fmt.Errorf("clearing stored session: %w", err)
	}
	return nil
}

// User returns the signed-in user, or nil.
func (m *Manager) User() *model.User {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.user == nil {
		return nil
	}
	u := *m.user
	return &u
}

// Authenticated reports whether a session is active.
func (m *Manager) Authenticated() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return !m.tokens.Empty()
}

// Generation identifies the current session. It changes on every login,
// restore, logout and expiry so stale async results can be discarded.
func (m *Manager) Generation() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.generation
}

// AccessToken implements api.Authenticator.
func (m *Manager) AccessToken() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.tokens.Access
}

// Refresh implements api.Authenticator. Concurrent callers share one
// refresh request.
func (m *Manager) Refresh(ctx context.Context) error {
	m.mu.RLock()
	refresh := m.tokens.Refresh
	gen := m.generation
	m.mu.RUnlock()

	if refresh == "" {
		return ErrNotAuthenticated
	}

	// The shared request outlives any one caller: a caller whose context
	// ends stops waiting, the others still get the outcome.
	ch := m.refreshGroup.DoChan(refresh, func() (any, error) {
		rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), refreshTimeout)
		defer cancel()

		tokens, err := m.backend.RefreshAccessToken(rctx, refresh)
		if err != nil {
			return nil, err
		}

		m.mu.Lock()
		if m.generation != gen || m.tokens.Refresh != refresh {
			// Logged out or replaced meanwhile; the caller's retry picks up
			// whatever token is current.
			m.mu.Unlock()
			return nil, nil
		}
		m.tokens = tokens
		user := m.user
		m.mu.Unlock()

		var saveErr error
		if tokens.Refresh == refresh {
			saveErr = m.store.SaveAccess(tokens.Access)
		} else {
			saveErr = m.store.Save(tokens, user)
		}
		if saveErr != nil {
			slog.Warn("Failed to persist refreshed token", slog.String("error", saveErr.Error()))
		}
		return nil, nil
	})

	select {
	case res := <-ch:
		return res.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Expire implements api.Authenticator: the session is torn down and the
// stored credentials cleared. Listeners see Expired=true.
func (m *Manager) Expire() {
	if !m.Authenticated() {
		return
	}
	m.teardown(true)
	if err := m.store.Clear(); err != nil {
		slog.Warn("Failed to clear expired session", slog.String("error", err.Error()))
	}
}

func (m *Manager) authenticated() {
	m.mu.Lock()
	m.generation++
	st := State{Authenticated: true, User: copyUser(m.user), Generation: m.generation}
	listeners := append([]func(State){}, m.listeners...)
	m.mu.Unlock()

	slog.Info("Session started",
		slog.String("user", string(st.User.ID)), slog.String("role", string(st.User.Role)))
	notify(listeners, st)
}

func (m *Manager) teardown(expired bool) {
	m.mu.Lock()
	wasActive := !m.tokens.Empty()
	m.tokens = model.Tokens{}
	m.user = nil
	m.generation++
	st := State{Generation: m.generation, Expired: expired}
	listeners := append([]func(State){}, m.listeners...)
	m.mu.Unlock()

	if !wasActive {
		return
	}
	slog.Info("Session ended", slog.Bool("expired", expired))
	notify(listeners, st)
}

func notify(listeners []func(State), st State) {
	for _, fn := range listeners {
		fn(st)
	}
}

func copyUser(u *model.User) *model.User {
	if u == nil {
		return &model.User{}
	}
	c := *u
	return &c
}

// tokenExpired reads the exp claim without verifying the signature; the
// server remains the authority, this only avoids a guaranteed 401.
func tokenExpired(access string, now time.Time) bool {
	if access == "" {
		return true
	}
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(access, &claims); err != nil {
		// Opaque tokens: let the server decide.
		return false
	}
	if claims.ExpiresAt == nil {
		return false
	}
	return !now.Before(claims.ExpiresAt.Time)
}
