package accrual

import (
	"errors"
	"math"
	"testing"
	"time"
)

func TestPending_Scenario(t *testing.T) {
	// 75.5 MH/s for exactly 100s at scale 0.0001, no bonus.
	p := Params{Rate: 75.5, Scale: 0.0001}

	got, err := p.Pending(100*time.Second, 0)
	if err != nil {
		t.Fatalf("Pending() error: %v", err)
	}
	if math.Abs(got-0.755) > 1e-9 {
		t.Errorf("Pending(100s, 0) = %v, want 0.755", got)
	}
}

func TestPending_Bonus(t *testing.T) {
	p := Params{Rate: 75.5, Scale: 0.0001}

	base, _ := p.Pending(100*time.Second, 0)
	boosted, err := p.Pending(100*time.Second, 0.5)
	if err != nil {
		t.Fatalf("Pending() error: %v", err)
	}
	if math.Abs(boosted-base*1.5) > 1e-9 {
		t.Errorf("Pending with 50%% bonus = %v, want %v", boosted, base*1.5)
	}
}

func TestPending_StrictlyIncreasing(t *testing.T) {
	p := Params{Rate: 75.5, Scale: 0.0001}

	prev := -1.0
	for _, d := range []time.Duration{0, time.Millisecond, time.Second, time.Minute, time.Hour, 24 * time.Hour} {
		got, err := p.Pending(d, 0.25)
		if err != nil {
			t.Fatalf("Pending(%v) error: %v", d, err)
		}
		if got < 0 {
			t.Errorf("Pending(%v) = %v, want non-negative", d, got)
		}
		if got <= prev && d > 0 {
			t.Errorf("Pending(%v) = %v, not increasing (prev %v)", d, got, prev)
		}
		prev = got
	}
}

func TestPending_InvalidState(t *testing.T) {
	p := Params{Rate: 75.5, Scale: 0.0001}

	if _, err := p.Pending(-time.Second, 0); !errors.Is(err, ErrInvalidState) {
		t.Errorf("Pending(-1s) error = %v, want ErrInvalidState", err)
	}
	if _, err := p.Pending(time.Second, -0.1); !errors.Is(err, ErrInvalidState) {
		t.Errorf("Pending with negative bonus error = %v, want ErrInvalidState", err)
	}
}

func TestMeter_Elapsed(t *testing.T) {
	now := time.Now()
	start := float64(now.Add(-10*time.Second).UnixNano()) / float64(time.Second)

	m := NewMeter(start, now)
	got := m.Elapsed()
	if got < 10*time.Second || got > 11*time.Second {
		t.Errorf("Elapsed() = %v, want ~10s", got)
	}
}

func TestMeter_FutureStartClamped(t *testing.T) {
	// A wall-clock regression can make the persisted start look like
	// the future. The meter must clamp, not go negative.
	now := time.Now()
	start := float64(now.Add(time.Hour).UnixNano()) / float64(time.Second)

	m := NewMeter(start, now)
	if got := m.Elapsed(); got < 0 {
		t.Errorf("Elapsed() = %v, want non-negative", got)
	}
}

func TestMeter_Monotonic(t *testing.T) {
	now := time.Now()
	start := float64(now.UnixNano()) / float64(time.Second)
	m := NewMeter(start, now)

	a := m.Elapsed()
	time.Sleep(5 * time.Millisecond)
	b := m.Elapsed()
	if b <= a {
		t.Errorf("Elapsed() went from %v to %v, want strictly increasing", a, b)
	}
}
