package notify

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/visadesk/internal/model"
)

// fakeSource serves whatever unread list it currently holds.
type fakeSource struct {
	mu        sync.Mutex
	unread    []model.Notification
	count     int
	listErr   error
	markErr   error
	block     chan struct{}
	entered   chan struct{}
	markCalls []model.ID
	allCalls  int
}

func (f *fakeSource) set(ids ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.unread = notifications(ids...)
}

func (f *fakeSource) ListUnreadNotifications(ctx context.Context) ([]model.Notification, error) {
	if f.entered != nil {
		f.entered <- struct{}{}
	}
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]model.Notification(nil), f.unread...), nil
}

func (f *fakeSource) UnreadCount(context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return 0, f.listErr
	}
	return f.count, nil
}

func (f *fakeSource) MarkNotificationRead(_ context.Context, id model.ID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.markCalls = append(f.markCalls, id)
	return f.markErr
}

func (f *fakeSource) MarkAllNotificationsRead(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.allCalls++
	return f.markErr
}

type recordingHistory struct {
	mu     sync.Mutex
	toasts []model.Toast
}

func (h *recordingHistory) RecordToast(_ context.Context, t model.Toast) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.toasts = append(h.toasts, t)
	return nil
}

func notifications(ids ...string) []model.Notification {
	out := make([]model.Notification, 0, len(ids))
	for _, id := range ids {
		out = append(out, model.Notification{
			ID:    model.ID(id),
			Kind:  model.KindDocumentApproved,
			Title: "Document " + id,
			Body:  "body " + id,
		})
	}
	return out
}

func ids(list []model.Notification) []model.ID {
	out := make([]model.ID, 0, len(list))
	for _, n := range list {
		out = append(out, n.ID)
	}
	return out
}

func newTestStore(src Source) *Store {
	return NewStore(src, Options{ToastDuration: time.Hour})
}

func TestColdStartSuppressesToasts(t *testing.T) {
	src := &fakeSource{}
	src.set("1", "2", "3")
	s := newTestStore(src)
	t.Cleanup(s.Dispose)

	got := s.FetchUnread(context.Background(), true)
	assert.Len(t, got, 3)
	assert.Equal(t, []model.ID{"1", "2", "3"}, ids(s.Unread()))
	assert.ElementsMatch(t, []model.ID{"1", "2", "3"}, s.SeenIDs())
	assert.Equal(t, 3, s.UnreadCount())
	assert.Empty(t, s.Toasts())
}

func TestFirstFetchWithEmptySeenSetNeverToasts(t *testing.T) {
	src := &fakeSource{}
	src.set("1", "2")
	s := newTestStore(src)
	t.Cleanup(s.Dispose)

	s.FetchUnread(context.Background(), false)
	assert.Empty(t, s.Toasts())
	assert.ElementsMatch(t, []model.ID{"1", "2"}, s.SeenIDs())
}

func TestNewArrivalEnqueuesOneToast(t *testing.T) {
	src := &fakeSource{}
	src.set("1", "2")
	history := &recordingHistory{}
	s := NewStore(src, Options{ToastDuration: time.Hour, History: history})
	t.Cleanup(s.Dispose)

	s.FetchUnread(context.Background(), true)

	src.set("1", "2", "3")
	s.FetchUnread(context.Background(), false)

	toasts := s.Toasts()
	require.Len(t, toasts, 1)
	assert.Equal(t, model.ID("3"), toasts[0].NotificationID)
	assert.Equal(t, "Document 3", toasts[0].Title)
	assert.Equal(t, "📗", toasts[0].Icon)
	assert.Equal(t, model.CategoryGreen, toasts[0].Category)
	assert.ElementsMatch(t, []model.ID{"1", "2", "3"}, s.SeenIDs())

	require.Len(t, history.toasts, 1)
	assert.Equal(t, toasts[0].ID, history.toasts[0].ID)
}

func TestArrivalsKeepFetchOrder(t *testing.T) {
	src := &fakeSource{}
	src.set("1")
	s := newTestStore(src)
	t.Cleanup(s.Dispose)
	s.FetchUnread(context.Background(), true)

	src.set("9", "1", "4", "7")
	s.FetchUnread(context.Background(), false)

	toasts := s.Toasts()
	require.Len(t, toasts, 3)
	assert.Equal(t, model.ID("9"), toasts[0].NotificationID)
	assert.Equal(t, model.ID("4"), toasts[1].NotificationID)
	assert.Equal(t, model.ID("7"), toasts[2].NotificationID)
}

func TestFullReplaceShrinksWithoutToast(t *testing.T) {
	src := &fakeSource{}
	src.set("1", "2", "3")
	s := newTestStore(src)
	t.Cleanup(s.Dispose)
	s.FetchUnread(context.Background(), true)

	src.set("2", "3")
	s.FetchUnread(context.Background(), false)

	assert.Equal(t, []model.ID{"2", "3"}, ids(s.Unread()))
	assert.ElementsMatch(t, []model.ID{"2", "3"}, s.SeenIDs())
	assert.Equal(t, 2, s.UnreadCount())
	assert.Empty(t, s.Toasts())
}

func TestFetchFailureKeepsState(t *testing.T) {
	src := &fakeSource{}
	src.set("1", "2")
	s := newTestStore(src)
	t.Cleanup(s.Dispose)
	s.FetchUnread(context.Background(), true)

	src.listErr = errors.New("connection refused")
	got := s.FetchUnread(context.Background(), false)

	assert.Empty(t, got)
	assert.Equal(t, []model.ID{"1", "2"}, ids(s.Unread()))
	assert.ElementsMatch(t, []model.ID{"1", "2"}, s.SeenIDs())
	assert.Equal(t, 2, s.UnreadCount())
}

func TestMarkReadUnknownIDIsNoop(t *testing.T) {
	src := &fakeSource{}
	src.set("1", "2")
	s := newTestStore(src)
	t.Cleanup(s.Dispose)
	s.FetchUnread(context.Background(), true)

	assert.False(t, s.MarkRead(context.Background(), "99"))
	assert.Equal(t, 2, s.UnreadCount())
	assert.Len(t, s.Unread(), 2)
	assert.Empty(t, src.markCalls, "API is not called for unknown ids")
}

func TestMarkReadRemovesEverywhere(t *testing.T) {
	src := &fakeSource{}
	src.set("1", "2", "3")
	s := newTestStore(src)
	t.Cleanup(s.Dispose)
	s.FetchUnread(context.Background(), true)

	require.True(t, s.MarkRead(context.Background(), "2"))
	assert.Equal(t, []model.ID{"1", "3"}, ids(s.Unread()))
	assert.Equal(t, 2, s.UnreadCount())
	assert.ElementsMatch(t, []model.ID{"1", "3"}, s.SeenIDs())
	assert.Equal(t, []model.ID{"2"}, src.markCalls)

	// A second attempt for the same id is rejected locally.
	assert.False(t, s.MarkRead(context.Background(), "2"))
	assert.Equal(t, 2, s.UnreadCount())
}

func TestMarkReadReappearingNotificationToastsAgain(t *testing.T) {
	src := &fakeSource{}
	src.set("1", "2")
	s := newTestStore(src)
	t.Cleanup(s.Dispose)
	s.FetchUnread(context.Background(), true)

	require.True(t, s.MarkRead(context.Background(), "2"))

	// The server had not caught up yet: last fetch wins and the item comes
	// back, surfacing as new.
	s.FetchUnread(context.Background(), false)
	assert.Equal(t, []model.ID{"1", "2"}, ids(s.Unread()))
	toasts := s.Toasts()
	require.Len(t, toasts, 1)
	assert.Equal(t, model.ID("2"), toasts[0].NotificationID)
}

func TestMarkReadFailureLeavesState(t *testing.T) {
	src := &fakeSource{markErr: errors.New("500")}
	src.set("1")
	s := newTestStore(src)
	t.Cleanup(s.Dispose)
	s.FetchUnread(context.Background(), true)

	assert.False(t, s.MarkRead(context.Background(), "1"))
	assert.Equal(t, 1, s.UnreadCount())
	assert.Len(t, s.Unread(), 1)
	assert.ElementsMatch(t, []model.ID{"1"}, s.SeenIDs())
}

func TestCounterFloorsAtZero(t *testing.T) {
	src := &fakeSource{}
	src.set("1", "2")
	s := newTestStore(src)
	t.Cleanup(s.Dispose)
	s.FetchUnread(context.Background(), true)

	// The lighter count poll says zero while the list still has items.
	n, ok := s.RefreshCount(context.Background())
	require.True(t, ok)
	assert.Zero(t, n)

	require.True(t, s.MarkRead(context.Background(), "1"))
	assert.Zero(t, s.UnreadCount())
}

func TestRefreshCountFailureKeepsCounter(t *testing.T) {
	src := &fakeSource{count: 4}
	s := newTestStore(src)
	t.Cleanup(s.Dispose)

	n, ok := s.RefreshCount(context.Background())
	require.True(t, ok)
	assert.Equal(t, 4, n)

	src.listErr = errors.New("timeout")
	_, ok = s.RefreshCount(context.Background())
	assert.False(t, ok)
	assert.Equal(t, 4, s.UnreadCount())
}

func TestMarkAllRead(t *testing.T) {
	src := &fakeSource{}
	src.set("1", "2")
	s := newTestStore(src)
	t.Cleanup(s.Dispose)
	s.FetchUnread(context.Background(), true)

	require.True(t, s.MarkAllRead(context.Background()))
	assert.Empty(t, s.Unread())
	assert.Zero(t, s.UnreadCount())
	assert.Empty(t, s.SeenIDs())
	assert.Equal(t, 1, src.allCalls)
}

func TestMarkAllReadFailureLeavesState(t *testing.T) {
	src := &fakeSource{}
	src.set("1", "2")
	s := newTestStore(src)
	t.Cleanup(s.Dispose)
	s.FetchUnread(context.Background(), true)

	src.markErr = errors.New("503")
	assert.False(t, s.MarkAllRead(context.Background()))
	assert.Len(t, s.Unread(), 2)
	assert.Equal(t, 2, s.UnreadCount())
	assert.Len(t, s.SeenIDs(), 2)
}

func TestDismissToastIsIdempotent(t *testing.T) {
	s := newTestStore(&fakeSource{})
	t.Cleanup(s.Dispose)

	first, ok := s.EnqueueToast(notifications("1")[0])
	require.True(t, ok)
	second, ok := s.EnqueueToast(notifications("2")[0])
	require.True(t, ok)
	assert.NotEqual(t, first.ID, second.ID)

	s.DismissToast(first.ID)
	s.DismissToast(first.ID)
	s.DismissToast("does-not-exist")

	toasts := s.Toasts()
	require.Len(t, toasts, 1)
	assert.Equal(t, second.ID, toasts[0].ID)
}

func TestToastIDsAreUnique(t *testing.T) {
	s := newTestStore(&fakeSource{})
	t.Cleanup(s.Dispose)

	seen := make(map[string]bool)
	for i := 0; i < 500; i++ {
		toast, ok := s.EnqueueToast(model.Notification{ID: "same"})
		require.True(t, ok)
		require.False(t, seen[toast.ID], "duplicate toast id %s", toast.ID)
		seen[toast.ID] = true
	}
}

func TestToastAutoExpires(t *testing.T) {
	changed := make(chan struct{}, 1)
	s := NewStore(&fakeSource{}, Options{
		ToastDuration: 40 * time.Millisecond,
		OnChange: func() {
			select {
			case changed <- struct{}{}:
			default:
			}
		},
	})
	t.Cleanup(s.Dispose)

	_, ok := s.EnqueueToast(notifications("1")[0])
	require.True(t, ok)
	assert.Len(t, s.Toasts(), 1)

	assert.Eventually(t, func() bool { return len(s.Toasts()) == 0 },
		time.Second, 10*time.Millisecond)

	select {
	case <-changed:
	case <-time.After(time.Second):
		t.Fatal("expiry did not report a change")
	}
}

func TestToastsHidesExpiredEvenBeforeTimerFires(t *testing.T) {
	now := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	s := NewStore(&fakeSource{}, Options{
		ToastDuration: 6 * time.Second,
		Now:           func() time.Time { return now },
	})
	t.Cleanup(s.Dispose)

	_, ok := s.EnqueueToast(notifications("1")[0])
	require.True(t, ok)

	now = now.Add(5 * time.Second)
	assert.Len(t, s.Toasts(), 1)

	now = now.Add(time.Second + time.Millisecond)
	assert.Empty(t, s.Toasts())
}

func TestDisposeClearsAndBlocksLateFetch(t *testing.T) {
	src := &fakeSource{}
	src.set("1", "2")
	s := newTestStore(src)
	s.FetchUnread(context.Background(), true)
	src.set("1", "2", "3")

	src.block = make(chan struct{})
	src.entered = make(chan struct{}, 1)

	done := make(chan []model.Notification)
	go func() {
		done <- s.FetchUnread(context.Background(), false)
	}()

	<-src.entered
	s.Dispose()
	close(src.block)

	assert.Nil(t, <-done)
	assert.Empty(t, s.Unread())
	assert.Empty(t, s.SeenIDs())
	assert.Empty(t, s.Toasts())
	assert.Zero(t, s.UnreadCount())

	// Everything afterwards is inert.
	_, ok := s.EnqueueToast(notifications("4")[0])
	assert.False(t, ok)
	assert.False(t, s.MarkRead(context.Background(), "1"))
	assert.False(t, s.MarkAllRead(context.Background()))
	assert.Empty(t, s.Toasts())
}

func TestDisposeStopsToastTimers(t *testing.T) {
	var calls int
	var mu sync.Mutex
	s := NewStore(&fakeSource{}, Options{
		ToastDuration: 20 * time.Millisecond,
		OnChange: func() {
			mu.Lock()
			calls++
			mu.Unlock()
		},
	})

	_, ok := s.EnqueueToast(notifications("1")[0])
	require.True(t, ok)
	s.Dispose()

	time.Sleep(60 * time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	assert.Zero(t, calls)
}

func TestUnknownKindToastFallsBack(t *testing.T) {
	src := &fakeSource{}
	src.set("1")
	s := newTestStore(src)
	t.Cleanup(s.Dispose)
	s.FetchUnread(context.Background(), true)

	src.mu.Lock()
	src.unread = append(src.unread, model.Notification{ID: "2", Kind: "pago_recibido", Title: "Payment"})
	src.mu.Unlock()

	s.FetchUnread(context.Background(), false)
	toasts := s.Toasts()
	require.Len(t, toasts, 1)
	assert.Equal(t, model.FallbackIcon, toasts[0].Icon)
	assert.Equal(t, model.CategoryGray, toasts[0].Category)
}

// stalledHistory holds every write until its context ends.
type stalledHistory struct {
	calls chan struct{}
}

func (h *stalledHistory) RecordToast(ctx context.Context, _ model.Toast) error {
	h.calls <- struct{}{}
	<-ctx.Done()
	return ctx.Err()
}

func TestHistoryWriteFollowsFetchContext(t *testing.T) {
	src := &fakeSource{}
	src.set("1")
	history := &stalledHistory{calls: make(chan struct{}, 1)}
	s := NewStore(src, Options{ToastDuration: time.Hour, History: history})
	t.Cleanup(s.Dispose)

	s.FetchUnread(context.Background(), true)
	src.set("1", "2")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan []model.Notification, 1)
	go func() { done <- s.FetchUnread(ctx, false) }()

	<-history.calls
	cancel()

	select {
	case got := <-done:
		assert.Len(t, got, 2)
	case <-time.After(time.Second):
		t.Fatal("fetch kept waiting on the history write")
	}
	assert.Len(t, s.Toasts(), 1, "a failed history write never drops the toast")
}
