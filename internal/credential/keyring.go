package credential

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/99designs/keyring"

	"github.com/nhle/visadesk/internal/model"
)

const serviceName = "visadesk"

// Keyring item keys.
const (
	keyAccessToken  = "access_token"
	keyRefreshToken = "refresh_token"
	keyCurrentUser  = "current_user"
)

// Open returns the system keyring configured for visadesk.
func Open(configDir string) (keyring.Keyring, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName: serviceName,
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.SecretServiceBackend,
			keyring.WinCredBackend,
			keyring.PassBackend,
			keyring.FileBackend,
		},
		FileDir:                  filepath.Join(configDir, "credentials"),
		FilePasswordFunc:         keyring.FixedStringPrompt("visadesk-file-key"),
		KeychainTrustApplication: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening keyring: %w", err)
	}
	return ring, nil
}

// Store persists the session tokens and the current user record.
type Store struct {
	ring keyring.Keyring
}

// NewStore wraps ring. Tests pass keyring.NewArrayKeyring(nil).
func NewStore(ring keyring.Keyring) *Store {
	return &Store{ring: ring}
}

// Load reads the persisted session. Missing items yield zero values
// rather than an error so a fresh install bootstraps as signed out.
func (s *Store) Load() (model.Tokens, *model.User, error) {
	var tokens model.Tokens

	access, err := s.get(keyAccessToken)
	if err != nil {
		return tokens, nil, err
	}
	refresh, err := s.get(keyRefreshToken)
	if err != nil {
		return tokens, nil, err
	}
	tokens = model.Tokens{Access: access, Refresh: refresh}

	raw, err := s.get(keyCurrentUser)
	if err != nil || raw == "" {
		return tokens, nil, err
	}

	var user model.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		return tokens, nil, fmt.Errorf("decoding stored user: %w", err)
	}
	return tokens, &user, nil
}

// Save writes the token pair and user, replacing whatever was stored.
func (s *Store) Save(tokens model.Tokens, user *model.User) error {
	if err := s.set(keyAccessToken, tokens.Access); err != nil {
		return err
	}
	if err := s.set(keyRefreshToken, tokens.Refresh); err != nil {
		return err
	}
	if user == nil {
		return s.remove(keyCurrentUser)
	}

	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encoding user: %w", err)
	}
	return s.set(keyCurrentUser, string(data))
}

// SaveAccess replaces only the access token, as done after a refresh.
func (s *Store) SaveAccess(access string) error {
	return s.set(keyAccessToken, access)
}

// Clear removes every persisted item.
func (s *Store) Clear() error {
	var errs []error
	for _, key := range []string{keyAccessToken, keyRefreshToken, keyCurrentUser} {
		if err := s.remove(key); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (s *Store) get(key string) (string, error) {
	item, err := s.ring.Get(key)
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("getting credential %q: %w", key, err)
	}
	return string(item.Data), nil
}

func (s *Store) set(key, value string) error {
	err := s.ring.Set(keyring.Item{
		Key:  key,
		Data: []byte(value),
	})
	if err != nil {
		return fmt.Errorf("setting credential %q: %w", key, err)
	}
	return nil
}

func (s *Store) remove(key string) error {
	err := s.ring.Remove(key)
	if err != nil && !errors.Is(err, keyring.ErrKeyNotFound) {
		return fmt.Errorf("deleting credential %q: %w", key, err)
	}
	return nil
}
