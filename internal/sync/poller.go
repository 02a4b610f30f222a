// Package sync drives the periodic notification polls of an authenticated
// session and feeds their results to the Bubble Tea runtime.
package sync

import (
	"context"
	"log/slog"
	gosync "sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/visadesk/internal/model"
)

// Target is what the poller refreshes, normally a *notify.Store.
type Target interface {
	FetchUnread(ctx context.Context, suppressToasts bool) []model.Notification
	RefreshCount(ctx context.Context) (int, bool)
}

// RefreshedMsg is sent after every unread notification poll.
type RefreshedMsg struct {
	Generation    uint64
	Notifications []model.Notification
	ColdStart     bool
}

// CountMsg is sent after every unread counter poll.
type CountMsg struct {
	Generation uint64
	Count      int
	OK         bool
}

// fetchTimeout bounds a single poll request.
const fetchTimeout = 30 * time.Second

// Config holds the poll periods. Zero values take the defaults.
type Config struct {
	PollInterval  time.Duration
	CountInterval time.Duration
}

// Poller runs the notification and counter tickers for one session at a
// time. Results carry the session generation they were produced for so the
// receiver can drop anything that belongs to an earlier session.
type Poller struct {
	pollInterval  time.Duration
	countInterval time.Duration

	resultCh chan tea.Msg

	mu      gosync.Mutex
	cancel  context.CancelFunc
	trigger chan struct{}
	wg      gosync.WaitGroup
}

// New creates a stopped poller.
func New(cfg Config) *Poller {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = model.DefaultPollIntervalSec * time.Second
	}
	if cfg.CountInterval <= 0 {
		cfg.CountInterval = model.DefaultCountIntervalSec * time.Second
	}
	return &Poller{
		pollInterval:  cfg.PollInterval,
		countInterval: cfg.CountInterval,
		resultCh:      make(chan tea.Msg, 16),
	}
}

// Configure changes the poll periods. A running session keeps its tickers;
// the new periods apply from the next Start.
func (p *Poller) Configure(cfg Config) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if cfg.PollInterval > 0 {
		p.pollInterval = cfg.PollInterval
	}
	if cfg.CountInterval > 0 {
		p.countInterval = cfg.CountInterval
	}
}

// Start stops any previous run and begins polling target for session gen:
// an immediate cold-start fetch without toasts, then the two tickers. The
// returned command waits for the first result.
func (p *Poller) Start(target Target, gen uint64) tea.Cmd {
	p.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	trigger := make(chan struct{}, 1)

	p.mu.Lock()
	p.cancel = cancel
	p.trigger = trigger
	pollEvery, countEvery := p.pollInterval, p.countInterval
	p.mu.Unlock()

	p.wg.Add(2)
	go func() {
		defer p.wg.Done()
		p.pollNotifications(ctx, target, gen, trigger, pollEvery)
	}()
	go func() {
		defer p.wg.Done()
		p.pollCount(ctx, target, gen, countEvery)
	}()

	slog.Debug("Notification polling started",
		slog.Uint64("generation", gen),
		slog.Duration("poll", pollEvery),
		slog.Duration("count", countEvery))

	return p.WaitForNextResult()
}

// Stop cancels both tickers and any request in flight, then waits for the
// poll goroutines, which return as soon as their context-aware calls do.
// It is safe to call when the poller is not running.
func (p *Poller) Stop() {
	p.mu.Lock()
	cancel := p.cancel
	p.cancel = nil
	p.trigger = nil
	p.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	p.wg.Wait()
	slog.Debug("Notification polling stopped")
}

// Running reports whether a session is being polled.
func (p *Poller) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cancel != nil
}

// Refresh asks for an immediate notification poll. Requests made while one
// is already pending are coalesced.
func (p *Poller) Refresh() {
	p.mu.Lock()
	trigger := p.trigger
	p.mu.Unlock()

	if trigger == nil {
		return
	}
	select {
	case trigger <- struct{}{}:
	default:
	}
}

// WaitForNextResult returns a tea.Cmd that waits for the next poll result.
// Call it again after handling each RefreshedMsg or CountMsg.
func (p *Poller) WaitForNextResult() tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-p.resultCh
		if !ok {
			return nil
		}
		return msg
	}
}

func (p *Poller) pollNotifications(ctx context.Context, target Target, gen uint64, trigger <-chan struct{}, every time.Duration) {
	p.fetch(ctx, target, gen, true)

	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.fetch(ctx, target, gen, false)
		case <-trigger:
			p.fetch(ctx, target, gen, false)
		}
	}
}

func (p *Poller) pollCount(ctx context.Context, target Target, gen uint64, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if ctx.Err() != nil {
				return
			}
			fctx, cancel := context.WithTimeout(ctx, fetchTimeout)
			n, ok := target.RefreshCount(fctx)
			cancel()
			if ctx.Err() != nil {
				return
			}
			p.send(CountMsg{Generation: gen, Count: n, OK: ok})
		}
	}
}

func (p *Poller) fetch(ctx context.Context, target Target, gen uint64, coldStart bool) {
	if ctx.Err() != nil {
		return
	}
	fctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	list := target.FetchUnread(fctx, coldStart)
	if ctx.Err() != nil {
		return
	}
	p.send(RefreshedMsg{Generation: gen, Notifications: list, ColdStart: coldStart})
}

// send never blocks the poll loop; results are dropped when the UI lags.
func (p *Poller) send(msg tea.Msg) {
	select {
	case p.resultCh <- msg:
	default:
		slog.Debug("Dropping poll result, channel full")
	}
}
