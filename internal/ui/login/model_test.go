package login

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateEmail(t *testing.T) {
	valid := []string{"ana@example.com", "  luz.perez@visas.org.mx ", "a+b@c.io"}
	for _, s := range valid {
		assert.NoError(t, ValidateEmail(s), s)
	}

	invalid := []string{"", "   ", "ana", "ana@", "@example.com", "ana@localhost", "Ana <ana@example.com>"}
	for _, s := range invalid {
		assert.Error(t, ValidateEmail(s), s)
	}
}

func TestValidatePassword(t *testing.T) {
	assert.NoError(t, ValidatePassword("secret"))
	assert.EqualError(t, ValidatePassword("  "), "password is required")
}

func TestStartKeepsEmailClearsPassword(t *testing.T) {
	m := New(80, 24)
	m.fb.email = "ana@example.com"
	m.fb.password = "secret"

	m.Failed("Invalid credentials")
	assert.Equal(t, "ana@example.com", m.fb.email)
	assert.Empty(t, m.fb.password)
	assert.False(t, m.Busy())
	assert.Contains(t, m.View(), "Invalid credentials")
}

func TestNoticeIsShown(t *testing.T) {
	m := New(80, 24)
	m.Start()
	m.SetNotice("Your session has expired. Please sign in again.")
	assert.Contains(t, m.View(), "session has expired")
}
