package credential

import (
	"testing"

	"github.com/99designs/keyring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/visadesk/internal/model"
)

func TestLoadEmptyKeyring(t *testing.T) {
	s := NewStore(keyring.NewArrayKeyring(nil))

	tokens, user, err := s.Load()
	require.NoError(t, err)
	assert.True(t, tokens.Empty())
	assert.Nil(t, user)
}

func TestSaveLoadClear(t *testing.T) {
	s := NewStore(keyring.NewArrayKeyring(nil))
	user := &model.User{ID: "7", Email: "ana@example.com", Name: "Ana", Role: model.RoleAdvisor}

	require.NoError(t, s.Save(model.Tokens{Access: "a1", Refresh: "r1"}, user))

	tokens, got, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, model.Tokens{Access: "a1", Refresh: "r1"}, tokens)
	require.NotNil(t, got)
	assert.Equal(t, *user, *got)

	require.NoError(t, s.SaveAccess("a2"))
	tokens, _, err = s.Load()
	require.NoError(t, err)
	assert.Equal(t, "a2", tokens.Access)
	assert.Equal(t, "r1", tokens.Refresh)

	require.NoError(t, s.Clear())
	tokens, got, err = s.Load()
	require.NoError(t, err)
	assert.True(t, tokens.Empty())
	assert.Nil(t, got)

	// Clearing twice is fine.
	assert.NoError(t, s.Clear())
}

func TestLoadCorruptUser(t *testing.T) {
	ring := keyring.NewArrayKeyring([]keyring.Item{
		{Key: keyRefreshToken, Data: []byte("r")},
		{Key: keyCurrentUser, Data: []byte("{not json")},
	})

	tokens, user, err := NewStore(ring).Load()
	assert.Error(t, err)
	assert.Equal(t, "r", tokens.Refresh)
	assert.Nil(t, user)
}
