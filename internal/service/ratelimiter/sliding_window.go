// Package ratelimiter provides per-client admission control.
package ratelimiter

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Limiter admits or rejects a request keyed by client identity.
type Limiter interface {
	Allow(ctx context.Context, key string) (Decision, error)
}

// Decision is the outcome of a single admission check. Remaining is -1
// when limiting is disabled.
type Decision struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration
}

// Option customizes a SlidingWindow.
type Option func(*SlidingWindow)

// WithClock overrides the time source used by Allow and RunSweeper.
func WithClock(now func() time.Time) Option {
	return func(l *SlidingWindow) {
		if now != nil {
			l.now = now
		}
	}
}

// SlidingWindow admits at most limit requests per key in any trailing window.
// State is process-local; each replica enforces its own quota.
type SlidingWindow struct {
	limit  int
	window time.Duration
	now    func() time.Time

	mu      sync.Mutex
	clients map[string][]time.Time
}

// NewSlidingWindow builds a limiter. A non-positive limit or window disables limiting.
func NewSlidingWindow(limit int, window time.Duration, opts ...Option) *SlidingWindow {
	l := &SlidingWindow{
		limit:   limit,
		window:  window,
		now:     time.Now,
		clients: make(map[string][]time.Time),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Allow checks key against the current clock.
func (l *SlidingWindow) Allow(_ context.Context, key string) (Decision, error) {
	return l.Admit(key, l.now()), nil
}

// Admit purges timestamps at or before now-window, then records now if the
// retained count is below the limit. A rejected request is not recorded.
func (l *SlidingWindow) Admit(key string, now time.Time) Decision {
	if l == nil || l.limit <= 0 || l.window <= 0 {
		return Decision{Allowed: true, Remaining: -1}
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	recent := prune(l.clients[key], now.Add(-l.window))
	if len(recent) >= l.limit {
		l.clients[key] = recent
		retry := recent[0].Add(l.window).Sub(now)
		if retry < 0 {
			retry = 0
		}
		return Decision{Allowed: false, Remaining: 0, RetryAfter: retry}
	}

	recent = append(recent, now)
	l.clients[key] = recent
	return Decision{Allowed: true, Remaining: l.limit - len(recent)}
}

// prune drops the leading timestamps not after cutoff. Timestamps are
// appended in arrival order so the retained tail stays sorted.
func prune(ts []time.Time, cutoff time.Time) []time.Time {
	i := 0
	for i < len(ts) && !ts[i].After(cutoff) {
		i++
	}
	if i == 0 {
		return ts
	}
	// copy so the dropped prefix can be collected
	out := make([]time.Time, len(ts)-i, cap(ts)-i)
	copy(out, ts[i:])
	return out
}

// Sweep evicts clients with no timestamps inside the window ending at now.
// It returns the number of evicted clients.
func (l *SlidingWindow) Sweep(now time.Time) int {
	if l == nil || l.window <= 0 {
		return 0
	}
	cutoff := now.Add(-l.window)

	l.mu.Lock()
	defer l.mu.Unlock()

	evicted := 0
	for key, ts := range l.clients {
		recent := prune(ts, cutoff)
		if len(recent) == 0 {
			delete(l.clients, key)
			evicted++
			continue
		}
		l.clients[key] = recent
	}
	return evicted
}

// RunSweeper calls Sweep every interval until ctx is done.
// A non-positive interval returns immediately.
func (l *SlidingWindow) RunSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := l.Sweep(l.now()); n > 0 {
				slog.Debug("rate limiter sweep", slog.Int("evicted", n), slog.Int("tracked", l.Len()))
			}
		}
	}
}

// Len returns the number of tracked clients.
func (l *SlidingWindow) Len() int {
	if l == nil {
		return 0
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.clients)
}
