// Package notify holds the per-session notification store: the unread
// notifications reported by the API, the set of identifiers already
// surfaced, and the queue of visible toasts.
package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nhle/visadesk/internal/model"
)

// Source is the notifications collaborator, normally *api.Client.
type Source interface {
	ListUnreadNotifications(ctx context.Context) ([]model.Notification, error)
	UnreadCount(ctx context.Context) (int, error)
	MarkNotificationRead(ctx context.Context, id model.ID) error
	MarkAllNotificationsRead(ctx context.Context) error
}

// History receives every toast that is surfaced. Errors are the sink's
// problem; the store never waits on it for correctness.
type History interface {
	RecordToast(ctx context.Context, toast model.Toast) error
}

// Options configures a Store.
type Options struct {
	// ToastDuration is how long a toast stays queued without interaction.
	ToastDuration time.Duration

	// History, when set, is told about every surfaced toast.
	History History

	// Now overrides the clock. Defaults to time.Now.
	Now func() time.Time

	// OnChange, when set, is called after the toast queue or unread list
	// changes outside of a caller's own operation (toast expiry).
	OnChange func()
}

// Store is the single source of truth for unread notifications and
// visible toasts during one authenticated session. Create one per session
// with NewStore and Dispose it when the session ends.
//
// The mutex is never held across a call to the Source, so a slow fetch
// does not block dismissals or renders.
type Store struct {
	src      Source
	history  History
	duration time.Duration
	now      func() time.Time
	onChange func()

	mu       sync.Mutex
	disposed bool
	unread   []model.Notification
	count    int
	seen     map[model.ID]struct{}
	toasts   []model.Toast
	timers   map[string]*time.Timer
}

// NewStore creates an empty store for a new session.
func NewStore(src Source, opts Options) *Store {
	if opts.ToastDuration <= 0 {
		opts.ToastDuration = model.DefaultToastDurationMS * time.Millisecond
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Store{
		src:      src,
		history:  opts.History,
		duration: opts.ToastDuration,
		now:      opts.Now,
		onChange: opts.OnChange,
		seen:     make(map[model.ID]struct{}),
		timers:   make(map[string]*time.Timer),
	}
}

// FetchUnread replaces the unread list with the collaborator's current
// answer. Notifications whose identifiers were not seen before become
// toasts, unless suppressToasts is set or nothing has been seen yet
// (cold start). On failure the previous state is kept and nil returned.
func (s *Store) FetchUnread(ctx context.Context, suppressToasts bool) []model.Notification {
	if s.Disposed() {
		return nil
	}

	fetched, err := s.src.ListUnreadNotifications(ctx)
	if err != nil {
		slog.Warn("Failed to fetch unread notifications", slog.String("error", err.Error()))
		return nil
	}

	s.mu.Lock()
	if s.disposed {
		// The session ended while the request was in flight.
		s.mu.Unlock()
		return nil
	}

	var arrivals []model.Notification
	if !suppressToasts && len(s.seen) > 0 {
		for _, n := range fetched {
			if _, ok := s.seen[n.ID]; !ok {
				arrivals = append(arrivals, n)
			}
		}
	}

	seen := make(map[model.ID]struct{}, len(fetched))
	for _, n := range fetched {
		seen[n.ID] = struct{}{}
	}
	s.seen = seen
	s.unread = append([]model.Notification(nil), fetched...)
	s.count = len(fetched)

	toasts := make([]model.Toast, 0, len(arrivals))
	for _, n := range arrivals {
		toasts = append(toasts, s.enqueueLocked(n))
	}
	s.mu.Unlock()

	s.record(ctx, toasts)

	return append([]model.Notification(nil), fetched...)
}

// RefreshCount updates only the unread counter from the lighter count
// endpoint. Failures are logged and leave the counter as it was.
func (s *Store) RefreshCount(ctx context.Context) (int, bool) {
	if s.Disposed() {
		return 0, false
	}

	n, err := s.src.UnreadCount(ctx)
	if err != nil {
		slog.Warn("Failed to fetch unread count", slog.String("error", err.Error()))
		return 0, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disposed {
		return 0, false
	}
	if n < 0 {
		n = 0
	}
	s.count = n
	return n, true
}

// MarkRead acknowledges one notification. Identifiers not in the unread
// list are rejected without calling the API. On success the notification
// leaves the unread list and the seen set and the counter drops by one.
func (s *Store) MarkRead(ctx context.Context, id model.ID) bool {
	s.mu.Lock()
	if s.disposed || indexOf(s.unread, id) < 0 {
		s.mu.Unlock()
		return false
	}
	s.mu.Unlock()

	if err := s.src.MarkNotificationRead(ctx, id); err != nil {
		slog.Warn("Failed to mark notification read",
			slog.String("id", string(id)), slog.String("error", err.Error()))
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disposed {
		return false
	}
	if i := indexOf(s.unread, id); i >= 0 {
		s.unread = append(s.unread[:i:i], s.unread[i+1:]...)
	}
	if s.count > 0 {
		s.count--
	}
	delete(s.seen, id)
	return true
}

// MarkAllRead acknowledges everything and empties the unread list, the
// counter and the seen set.
func (s *Store) MarkAllRead(ctx context.Context) bool {
	if s.Disposed() {
		return false
	}

	if err := s.src.MarkAllNotificationsRead(ctx); err != nil {
		slog.Warn("Failed to mark all notifications read", slog.String("error", err.Error()))
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disposed {
		return false
	}
	s.unread = nil
	s.count = 0
	s.seen = make(map[model.ID]struct{})
	return true
}

// EnqueueToast builds a toast for n, appends it to the queue and schedules
// its removal after the toast duration.
func (s *Store) EnqueueToast(n model.Notification) (model.Toast, bool) {
	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		return model.Toast{}, false
	}
	t := s.enqueueLocked(n)
	s.mu.Unlock()

	s.record(context.Background(), []model.Toast{t})
	return t, true
}

// DismissToast removes a toast from the queue. Unknown ids are ignored.
func (s *Store) DismissToast(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dismissLocked(id)
}

// Toasts returns the visible toasts, oldest first. Toasts past their
// display duration are never returned even if their timer is late.
func (s *Store) Toasts() []model.Toast {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	out := make([]model.Toast, 0, len(s.toasts))
	for _, t := range s.toasts {
		if !t.ExpiredAt(now, s.duration) {
			out = append(out, t)
		}
	}
	return out
}

// Unread returns a copy of the unread notifications in API order.
func (s *Store) Unread() []model.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Notification(nil), s.unread...)
}

// UnreadCount returns the unread counter shown on the badge.
func (s *Store) UnreadCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.count
}

// SeenIDs returns the identifiers already surfaced this session.
func (s *Store) SeenIDs() []model.ID {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]model.ID, 0, len(s.seen))
	for id := range s.seen {
		ids = append(ids, id)
	}
	return ids
}

// Lookup returns the unread notification with the given id.
func (s *Store) Lookup(id model.ID) (model.Notification, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := indexOf(s.unread, id); i >= 0 {
		return s.unread[i], true
	}
	return model.Notification{}, false
}

// Dispose ends the store's life: all state is cleared, pending toast
// timers stopped, and every later call (including completions of fetches
// already in flight) becomes a no-op.
func (s *Store) Dispose() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.disposed = true
	for id, t := range s.timers {
		t.Stop()
		delete(s.timers, id)
	}
	s.unread = nil
	s.count = 0
	s.seen = make(map[model.ID]struct{})
	s.toasts = nil
}

// Disposed reports whether Dispose has been called.
func (s *Store) Disposed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.disposed
}

func (s *Store) enqueueLocked(n model.Notification) model.Toast {
	icon, category := n.Kind.Appearance()
	t := model.Toast{
		ID:             newToastID(),
		NotificationID: n.ID,
		Kind:           n.Kind,
		Title:          n.Title,
		Body:           n.Body,
		Icon:           icon,
		Category:       category,
		ActionURL:      n.ActionURL,
		CreatedAt:      s.now(),
	}
	s.toasts = append(s.toasts, t)

	id := t.ID
	s.timers[id] = time.AfterFunc(s.duration, func() {
		s.mu.Lock()
		removed := s.dismissLocked(id)
		s.mu.Unlock()
		if removed && s.onChange != nil {
			s.onChange()
		}
	})
	return t
}

func (s *Store) dismissLocked(id string) bool {
	if t, ok := s.timers[id]; ok {
		t.Stop()
		delete(s.timers, id)
	}
	for i, t := range s.toasts {
		if t.ID == id {
			s.toasts = append(s.toasts[:i:i], s.toasts[i+1:]...)
			return true
		}
	}
	return false
}

// record writes toasts to the history under ctx, so a poll cancelled by
// session teardown does not wait on the database.
func (s *Store) record(ctx context.Context, toasts []model.Toast) {
	if s.history == nil {
		return
	}
	for _, t := range toasts {
		if err := s.history.RecordToast(ctx, t); err != nil {
			slog.Warn("Failed to record toast history",
				slog.String("notification", string(t.NotificationID)), slog.String("error", err.Error()))
		}
	}
}

// newToastID returns a UUIDv7: a millisecond clock reading followed by
// random bits, unique within any realistic queue.
func newToastID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

func indexOf(list []model.Notification, id model.ID) int {
	for i, n := range list {
		if n.ID == id {
			return i
		}
	}
	return -1
}
