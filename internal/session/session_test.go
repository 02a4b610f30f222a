package session

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/99designs/keyring"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/visadesk/internal/credential"
	"github.com/nhle/visadesk/internal/model"
)

type fakeBackend struct {
	loginErr   error
	refreshErr error
	refreshed  atomic.Int32
	gate       chan struct{}
	access     string
}

func (f *fakeBackend) Login(_ context.Context, email, password string) (model.Tokens, *model.User, error) {
	if f.loginErr != nil {
		return model.Tokens{}, nil, f.loginErr
	}
	return model.Tokens{Access: "access-1", Refresh: "refresh-1"},
		&model.User{ID: "1", Email: email, Role: model.RoleMigrant}, nil
}

func (f *fakeBackend) RefreshAccessToken(ctx context.Context, refresh string) (model.Tokens, error) {
	if f.gate != nil {
		<-f.gate
	}
	if err := ctx.Err(); err != nil {
		return model.Tokens{}, err
	}
	f.refreshed.Add(1)
	if f.refreshErr != nil {
		return model.Tokens{}, f.refreshErr
	}
	access := f.access
	if access == "" {
		access = "access-refreshed"
	}
	return model.Tokens{Access: access, Refresh: refresh}, nil
}

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(exp),
	}).SignedString([]byte("test-key"))
	require.NoError(t, err)
	return tok
}

func newManager(backend Backend) (*Manager, *credential.Store) {
	store := credential.NewStore(keyring.NewArrayKeyring(nil))
	return NewManager(backend, store), store
}

func TestLoginPersistsAndNotifies(t *testing.T) {
	m, store := newManager(&fakeBackend{})

	var states []State
	m.OnChange(func(s State) { states = append(states, s) })

	user, err := m.Login(context.Background(), "ana@example.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", user.Email)
	assert.True(t, m.Authenticated())
	assert.Equal(t, "access-1", m.AccessToken())

	tokens, stored, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "refresh-1", tokens.Refresh)
	assert.Equal(t, "ana@example.com", stored.Email)

	require.Len(t, states, 1)
	assert.True(t, states[0].Authenticated)
	assert.Equal(t, m.Generation(), states[0].Generation)
}

func TestLoginFailureLeavesSignedOut(t *testing.T) {
	m, _ := newManager(&fakeBackend{loginErr: errors.New("invalid credentials")})

	_, err := m.Login(context.Background(), "a@b.c", "x")
	assert.Error(t, err)
	assert.False(t, m.Authenticated())
	assert.Nil(t, m.User())
}

func TestLogoutClearsEverything(t *testing.T) {
	m, store := newManager(&fakeBackend{})
	_, err := m.Login(context.Background(), "a@b.c", "pw")
	require.NoError(t, err)
	gen := m.Generation()

	var last State
	m.OnChange(func(s State) { last = s })

	require.NoError(t, m.Logout())
	assert.False(t, m.Authenticated())
	assert.Empty(t, m.AccessToken())
	assert.Greater(t, m.Generation(), gen)
	assert.False(t, last.Authenticated)
	assert.False(t, last.Expired)

	tokens, user, err := store.Load()
	require.NoError(t, err)
	assert.True(t, tokens.Empty())
	assert.Nil(t, user)
}

func TestBootstrapRestoresValidSession(t *testing.T) {
	backend := &fakeBackend{}
	m, store := newManager(backend)
	access := signedToken(t, time.Now().Add(time.Hour))
	require.NoError(t, store.Save(model.Tokens{Access: access, Refresh: "r"}, &model.User{ID: "9", Role: model.RoleAdmin}))

	ok, err := m.Bootstrap(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, access, m.AccessToken())
	assert.Equal(t, model.RoleAdmin, m.User().Role)
	assert.Zero(t, backend.refreshed.Load())
}

func TestBootstrapRefreshesExpiredAccessToken(t *testing.T) {
	backend := &fakeBackend{access: "renewed"}
	m, store := newManager(backend)
	access := signedToken(t, time.Now().Add(-time.Minute))
	require.NoError(t, store.Save(model.Tokens{Access: access, Refresh: "r"}, &model.User{ID: "9"}))

	ok, err := m.Bootstrap(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "renewed", m.AccessToken())
	assert.EqualValues(t, 1, backend.refreshed.Load())

	tokens, _, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "renewed", tokens.Access)
}

func TestBootstrapWithDeadRefreshTokenSignsOut(t *testing.T) {
	backend := &fakeBackend{refreshErr: errors.New("token blacklisted")}
	m, store := newManager(backend)
	access := signedToken(t, time.Now().Add(-time.Minute))
	require.NoError(t, store.Save(model.Tokens{Access: access, Refresh: "r"}, &model.User{ID: "9"}))

	notified := false
	m.OnChange(func(State) { notified = true })

	ok, err := m.Bootstrap(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
	assert.False(t, m.Authenticated())
	assert.False(t, notified)

	tokens, _, err := store.Load()
	require.NoError(t, err)
	assert.True(t, tokens.Empty())
}

func TestBootstrapNothingStored(t *testing.T) {
	m, _ := newManager(&fakeBackend{})
	ok, err := m.Bootstrap(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestConcurrentRefreshSharesOneRequest(t *testing.T) {
	backend := &fakeBackend{gate: make(chan struct{})}
	m, _ := newManager(backend)
	_, err := m.Login(context.Background(), "a@b.c", "pw")
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, m.Refresh(context.Background()))
		}()
	}

	// Let every goroutine join the in-flight call before releasing it.
	time.Sleep(50 * time.Millisecond)
	close(backend.gate)
	wg.Wait()

	assert.EqualValues(t, 1, backend.refreshed.Load())
	assert.Equal(t, "access-refreshed", m.AccessToken())
}

func TestRefreshSurvivesFirstCallerDeadline(t *testing.T) {
	backend := &fakeBackend{gate: make(chan struct{})}
	m, store := newManager(backend)
	_, err := m.Login(context.Background(), "a@b.c", "pw")
	require.NoError(t, err)

	var states []State
	var mu sync.Mutex
	m.OnChange(func(s State) {
		mu.Lock()
		defer mu.Unlock()
		states = append(states, s)
	})

	short, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	shortErr := make(chan error, 1)
	go func() { shortErr <- m.Refresh(short) }()
	time.Sleep(10 * time.Millisecond)

	longErr := make(chan error, 1)
	go func() { longErr <- m.Refresh(context.Background()) }()

	// The short caller gives up while the shared request is still pending.
	assert.ErrorIs(t, <-shortErr, context.DeadlineExceeded)
	close(backend.gate)

	require.NoError(t, <-longErr)
	assert.EqualValues(t, 1, backend.refreshed.Load())
	assert.True(t, m.Authenticated())
	assert.Equal(t, "access-refreshed", m.AccessToken())

	tokens, _, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "access-refreshed", tokens.Access)

	mu.Lock()
	defer mu.Unlock()
	assert.Empty(t, states, "no teardown")
}

func TestExpireNotifiesExpired(t *testing.T) {
	m, store := newManager(&fakeBackend{})
	_, err := m.Login(context.Background(), "a@b.c", "pw")
	require.NoError(t, err)

	var states []State
	m.OnChange(func(s State) { states = append(states, s) })

	m.Expire()
	m.Expire()

	require.Len(t, states, 1, "second expiry is a no-op")
	assert.True(t, states[0].Expired)
	assert.False(t, states[0].Authenticated)

	tokens, _, err := store.Load()
	require.NoError(t, err)
	assert.True(t, tokens.Empty())
}

func TestRefreshWithoutSession(t *testing.T) {
	m, _ := newManager(&fakeBackend{})
	assert.ErrorIs(t, m.Refresh(context.Background()), ErrNotAuthenticated)
}

func TestTokenExpired(t *testing.T) {
	now := time.Now()
	assert.True(t, tokenExpired("", now))
	assert.False(t, tokenExpired("opaque-token", now))
	assert.False(t, tokenExpired(signedToken(t, now.Add(time.Minute)), now))
	assert.True(t, tokenExpired(signedToken(t, now.Add(-time.Minute)), now))
}
