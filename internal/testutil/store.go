// Package testutil holds helpers shared by package tests.
package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/nhle/visadesk/internal/model"
	"github.com/nhle/visadesk/internal/store"
)

// ToastBase is the display time of Toast(0); Toast(n) is n minutes later.
var ToastBase = time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)

// NewTestStore opens an in-memory toast history with the schema applied
// and closes it when the test completes.
func NewTestStore(t *testing.T) *store.SQLiteStore {
	t.Helper()

	s, err := store.NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("opening test history: %v", err)
	}

	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("closing test history: %v", err)
		}
	})

	return s
}

// Toast builds the n-th interview toast: ID "toast-NN", notification n.
func Toast(n int) model.Toast {
	icon, category := model.KindInterviewScheduled.Appearance()
	return model.Toast{
		ID:             fmt.Sprintf("toast-%02d", n),
		NotificationID: model.ID(fmt.Sprint(n)),
		Kind:           model.KindInterviewScheduled,
		Title:          fmt.Sprintf("Interview %d", n),
		Body:           "Tomorrow at 10:00",
		Icon:           icon,
		Category:       category,
		ActionURL:      "/entrevistas",
		CreatedAt:      ToastBase.Add(time.Duration(n) * time.Minute),
	}
}

// SeedToasts records Toast(from) through Toast(to) as shown to userID.
func SeedToasts(t *testing.T, s store.Store, userID model.ID, from, to int) {
	t.Helper()

	for n := from; n <= to; n++ {
		if err := s.RecordToast(context.Background(), userID, Toast(n)); err != nil {
			t.Fatalf("seeding toast %d for %s: %v", n, userID, err)
		}
	}
}
