package strategy

import "time"

// Throttler enforces a minimum spacing between signals per strategy
// key. It shares the decision path's single-caller contract and holds
// no lock of its own.
type Throttler struct {
	defaultInterval time.Duration
	intervals       map[string]time.Duration
	lastSignal      map[string]time.Time
	now             func() time.Time
}

func NewThrottler(defaultInterval time.Duration) *Throttler {
	return &Throttler{
		defaultInterval: defaultInterval,
		intervals:       make(map[string]time.Duration),
		lastSignal:      make(map[string]time.Time),
		now:             time.Now,
	}
}

// SetInterval overrides the minimum interval for one key.
func (t *Throttler) SetInterval(key string, interval time.Duration) {
	t.intervals[key] = interval
}

// Allow reports whether key may signal now. A never-seen key is always
// allowed. The recorded timestamp only advances on an allowed call, so
// back-to-back rejections do not push the window forward.
func (t *Throttler) Allow(key string) bool {
	now := t.now()
	last, seen := t.lastSignal[key]
	if !seen {
		t.lastSignal[key] = now
		return true
	}
	if now.Sub(last) >= t.interval(key) {
		t.lastSignal[key] = now
		return true
	}
	return false
}

// Remaining reports how long key must still wait, without mutating any
// state. Zero means the next Allow would succeed.
func (t *Throttler) Remaining(key string) time.Duration {
	last, seen := t.lastSignal[key]
	if !seen {
		return 0
	}
	remaining := t.interval(key) - t.now().Sub(last)
	if remaining < 0 {
		return 0
	}
	return remaining
}

func (t *Throttler) interval(key string) time.Duration {
	if iv, ok := t.intervals[key]; ok {
		return iv
	}
	return t.defaultInterval
}
