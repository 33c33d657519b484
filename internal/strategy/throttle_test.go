package strategy

import (
	"testing"
	"time"
)

func TestThrottlerSpacesSignals(t *testing.T) {
	now := time.Unix(1000, 0)
	th := NewThrottler(30 * time.Second)
	th.now = func() time.Time { return now }

	if !th.Allow("imbalance") {
		t.Fatal("first signal for a key must be allowed")
	}

	now = now.Add(10 * time.Second)
	if th.Allow("imbalance") {
		t.Fatal("signal inside the interval must be rejected")
	}
	if got := th.Remaining("imbalance"); got != 20*time.Second {
		t.Fatalf("Remaining = %v, expected 20s", got)
	}

	now = now.Add(25 * time.Second)
	if !th.Allow("imbalance") {
		t.Fatal("signal past the interval must be allowed")
	}
	if got := th.Remaining("imbalance"); got != 30*time.Second {
		t.Fatalf("Remaining after an allowed signal = %v, expected 30s", got)
	}
}

// A rejection must not advance the recorded timestamp, otherwise a
// steady stream of attempts could starve a strategy forever.
func TestThrottlerRejectionDoesNotExtendWindow(t *testing.T) {
	now := time.Unix(1000, 0)
	th := NewThrottler(30 * time.Second)
	th.now = func() time.Time { return now }

	th.Allow("wick")

	now = now.Add(29 * time.Second)
	if th.Allow("wick") {
		t.Fatal("signal at 29s must be rejected")
	}

	now = now.Add(2 * time.Second)
	if !th.Allow("wick") {
		t.Fatal("signal at 31s must be allowed; the rejection at 29s must not reset the window")
	}
}

func TestThrottlerPerKeyIntervals(t *testing.T) {
	now := time.Unix(1000, 0)
	th := NewThrottler(30 * time.Second)
	th.now = func() time.Time { return now }
	th.SetInterval("fast", 5*time.Second)

	th.Allow("fast")
	th.Allow("slow")

	now = now.Add(6 * time.Second)
	if !th.Allow("fast") {
		t.Fatal("fast key must use its 5s override")
	}
	if th.Allow("slow") {
		t.Fatal("slow key must still use the 30s default")
	}
}

func TestThrottlerUnseenKey(t *testing.T) {
	th := NewThrottler(30 * time.Second)
	if got := th.Remaining("never"); got != 0 {
		t.Fatalf("Remaining for unseen key = %v, expected 0", got)
	}
}
