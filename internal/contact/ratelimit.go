package contact

import (
	"context"
	"sync"
	"time"
)

// Decision is the outcome of one admission check.
type Decision struct {
	Limited bool
	// RetryAfter is the value for the Retry-After header when Limited.
	// Always at least one second.
	RetryAfter time.Duration
}

// Ledger records recent submission attempts per client identity and decides
// whether the next one is admitted. Check prunes attempts older than the
// window and, when under the limit, records the current attempt — prune,
// check and append happen as one operation.
type Ledger interface {
	Check(ctx context.Context, identity string) (Decision, error)
}

// retryAfter rounds the wait until the oldest surviving attempt leaves the
// window up to whole seconds, floored at one second.
func retryAfter(oldest time.Time, window time.Duration, now time.Time) time.Duration {
	wait := oldest.Add(window).Sub(now)
	secs := (wait + time.Second - 1) / time.Second
	if secs < 1 {
		secs = 1
	}
	return secs * time.Second
}

// MemoryLedger is a process-local sliding-window ledger. Each instance
// enforces its own independent limit; use RedisLedger when running more than
// one replica.
type MemoryLedger struct {
	mu      sync.Mutex
	entries map[string][]time.Time
	window  time.Duration
	max     int
	now     func() time.Time
}

// MemoryOption configures a MemoryLedger.
type MemoryOption func(*MemoryLedger)

// WithClock overrides the ledger's time source. Tests use this to advance
// the window without sleeping.
func WithClock(now func() time.Time) MemoryOption {
	return func(l *MemoryLedger) { l.now = now }
}

func NewMemoryLedger(window time.Duration, max int, opts ...MemoryOption) *MemoryLedger {
	l := &MemoryLedger{
		entries: make(map[string][]time.Time),
		window:  window,
		max:     max,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *MemoryLedger) Check(_ context.Context, identity string) (Decision, error) {
	now := l.now()
	cutoff := now.Add(-l.window)

	l.mu.Lock()
	defer l.mu.Unlock()

	live := l.entries[identity][:0]
	for _, ts := range l.entries[identity] {
		if ts.After(cutoff) {
			live = append(live, ts)
		}
	}

	if len(live) >= l.max {
		l.entries[identity] = live
		return Decision{Limited: true, RetryAfter: retryAfter(live[0], l.window, now)}, nil
	}

	l.entries[identity] = append(live, now)
	return Decision{}, nil
}
