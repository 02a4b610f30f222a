package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/visadesk/internal/model"
	"github.com/nhle/visadesk/internal/store"
	"github.com/nhle/visadesk/internal/testutil"
)

var toast = testutil.Toast

func TestRecordAndListNewestFirst(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	testutil.SeedToasts(t, s, "u1", 1, 3)
	testutil.SeedToasts(t, s, "u2", 9, 9)

	got, err := s.RecentToasts(ctx, "u1", 0)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "toast-03", got[0].ID)
	assert.Equal(t, "toast-01", got[2].ID)

	first := got[2]
	assert.Equal(t, model.ID("1"), first.NotificationID)
	assert.Equal(t, model.ID("u1"), first.UserID)
	assert.Equal(t, model.KindInterviewScheduled, first.Kind)
	assert.Equal(t, "Interview 1", first.Title)
	assert.Equal(t, "/entrevistas", first.ActionURL)
	assert.True(t, testutil.ToastBase.Add(time.Minute).Equal(first.ShownAt))
	assert.Equal(t, "📅", first.Icon())

	limited, err := s.RecentToasts(ctx, "u1", 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestRecordIsIdempotentPerToast(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.RecordToast(ctx, "u1", toast(1)))
	require.NoError(t, s.RecordToast(ctx, "u1", toast(1)))

	got, err := s.RecentToasts(ctx, "u1", 0)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestRecordRequiresUser(t *testing.T) {
	s := testutil.NewTestStore(t)
	assert.Error(t, s.RecordToast(context.Background(), "", toast(1)))
}

func TestPruneKeepsNewest(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	testutil.SeedToasts(t, s, "u1", 1, 5)
	testutil.SeedToasts(t, s, "u2", 1, 1)

	n, err := s.PruneToasts(ctx, "u1", 2)
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)

	got, err := s.RecentToasts(ctx, "u1", 0)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "toast-05", got[0].ID)
	assert.Equal(t, "toast-04", got[1].ID)

	other, err := s.RecentToasts(ctx, "u2", 0)
	require.NoError(t, err)
	assert.Len(t, other, 1, "other users are untouched")
}

func TestClearToasts(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()
	testutil.SeedToasts(t, s, "u1", 1, 1)

	require.NoError(t, s.ClearToasts(ctx, "u1"))
	got, err := s.RecentToasts(ctx, "u1", 0)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestUserHistoryRecordsAndTrims(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()
	h := store.UserHistory{Store: s, UserID: "u7", Limit: 3}

	for i := 1; i <= 6; i++ {
		require.NoError(t, h.RecordToast(ctx, toast(i)))
	}

	got, err := s.RecentToasts(ctx, "u7", 0)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "toast-06", got[0].ID)
}

func TestMigrationsAreReentrant(t *testing.T) {
	path := t.TempDir() + "/history.db"

	s, err := store.NewSQLiteStore(path)
	require.NoError(t, err)
	require.NoError(t, s.RecordToast(context.Background(), "u1", toast(1)))
	require.NoError(t, s.Close())

	s, err = store.NewSQLiteStore(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	got, err := s.RecentToasts(context.Background(), "u1", 0)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}
