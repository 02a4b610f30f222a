package cmd

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/nhle/visadesk/internal/model"
)

func TestPrintNotificationsEmpty(t *testing.T) {
	var buf bytes.Buffer
	printNotifications(&buf, nil, time.Now())
	assert.Equal(t, "No unread notifications\n", buf.String())
}

func TestPrintNotifications(t *testing.T) {
	now := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	list := []model.Notification{
		{
			ID:        "1",
			Kind:      model.KindDocumentApproved,
			Title:     "Passport approved",
			Body:      "Your passport scan was accepted.",
			CreatedAt: now.Add(-2 * time.Hour),
		},
		{
			ID:        "2",
			Kind:      model.Kind("something_new"),
			Title:     "Heads up",
			CreatedAt: now.Add(-3 * time.Minute),
		},
	}

	var buf bytes.Buffer
	printNotifications(&buf, list, now)

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	assert.Len(t, lines, 3)
	assert.Equal(t, "📗 Passport approved  (2 hours ago)", lines[0])
	assert.Equal(t, "   Your passport scan was accepted.", lines[1])
	assert.Equal(t, model.FallbackIcon+" Heads up  (3 minutes ago)", lines[2])
}
