package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Decision is the outcome of an admission check.
type Decision struct {
	Allowed    bool
	Remaining  int
	ResetAfter time.Duration
}

// Limiter admits at most maxEvents per user within a sliding window.
type Limiter struct {
	mu        sync.Mutex
	events    map[int64][]time.Time
	maxEvents int
	window    time.Duration
	now       func() time.Time
}

func New(maxEvents int, window time.Duration) *Limiter {
	return &Limiter{
		events:    make(map[int64][]time.Time),
		maxEvents: maxEvents,
		window:    window,
		now:       time.Now,
	}
}

// NewWithClock is used in tests to control time.
func NewWithClock(maxEvents int, window time.Duration, clock func() time.Time) *Limiter {
	l := New(maxEvents, window)
	l.now = clock
	return l
}

// Admit records the event and admits it if the user has capacity left in
// the current window. A denied event is not recorded, so it does not
// extend the penalty.
func (l *Limiter) Admit(userID int64) Decision {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	recent := l.prune(userID, now)

	if len(recent) >= l.maxEvents {
		return Decision{
			Allowed:    false,
			Remaining:  0,
			ResetAfter: recent[0].Add(l.window).Sub(now),
		}
	}

	l.events[userID] = append(recent, now)
	return Decision{
		Allowed:   true,
		Remaining: l.maxEvents - len(recent) - 1,
	}
}

// Remaining reports how many events the user may still send without
// recording anything.
func (l *Limiter) Remaining(userID int64) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	recent := l.prune(userID, l.now())
	if len(recent) >= l.maxEvents {
		return 0
	}
	return l.maxEvents - len(recent)
}

// Reset forgets the user's history.
func (l *Limiter) Reset(userID int64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.events, userID)
}

// StartCleanup sweeps idle users in the background until the context is
// cancelled. Without it, slices from one-off visitors linger until their
// next message.
func (l *Limiter) StartCleanup(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				l.sweep()
			}
		}
	}()
}

func (l *Limiter) sweep() {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	for userID := range l.events {
		l.prune(userID, now)
	}
}

// prune drops events older than the window. Caller must hold the lock.
func (l *Limiter) prune(userID int64, now time.Time) []time.Time {
	cutoff := now.Add(-l.window)
	recent := l.events[userID][:0:0]
	for _, ts := range l.events[userID] {
		if ts.After(cutoff) {
			recent = append(recent, ts)
		}
	}
	if len(recent) == 0 {
		delete(l.events, userID)
	} else {
		l.events[userID] = recent
	}
	return recent
}
