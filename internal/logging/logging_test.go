package logging

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, Debug, ParseLevel("DEBUG"))
	assert.Equal(t, Warn, ParseLevel(" warn "))
	assert.Equal(t, Error, ParseLevel("error"))
	assert.Equal(t, Info, ParseLevel("info"))
	assert.Equal(t, Info, ParseLevel("verbose"))
	assert.Equal(t, Info, ParseLevel(""))
}

func TestToSlogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ToSlogLevel(Debug))
	assert.Equal(t, slog.LevelInfo, ToSlogLevel(Info))
	assert.Equal(t, slog.LevelWarn, ToSlogLevel(Warn))
	assert.Equal(t, slog.LevelError, ToSlogLevel(Error))
}

func TestNewLoggerHonoursLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, Warn)

	logger.Info("hidden message")
	assert.Empty(t, buf.String())

	logger.Warn("visible message", slog.String("id", "42"))
	assert.Contains(t, buf.String(), "visible message")
	assert.Contains(t, buf.String(), "42")
}

func TestSetupWritesToFile(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	path := filepath.Join(t.TempDir(), "logs", "visadesk.log")
	closer, err := Setup(path, Debug)
	require.NoError(t, err)

	slog.Debug("poll started")
	closer()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "poll started")
}

func TestSetupWithoutPathDiscards(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	closer, err := Setup("", Info)
	require.NoError(t, err)
	closer()
	slog.Info("goes nowhere")
}
