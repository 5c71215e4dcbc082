// Package accrual computes pending mining production from elapsed time.
//
// Production is a deterministic function of wallet-local elapsed time and
// the referral bonus captured at registration:
//
//	pending = rate * elapsedSeconds * scale * (1 + bonus)
//
// It is not verified work. The only correctness concerns are that the
// value never decreases as time advances and never goes negative.
package accrual

import (
	"errors"
	"time"
)

// ErrInvalidState is returned when the inputs violate the accrual
// contract (negative elapsed time or negative bonus).
var ErrInvalidState = errors.New("accrual: invalid state")

// Params holds the production rate parameters.
type Params struct {
	// Rate is the simulated hashrate in MH/s.
	Rate float64
	// Scale converts hashrate-seconds into currency units.
	Scale float64
}

// Pending returns the production accrued over elapsed with the given
// referral bonus. Strictly increasing in elapsed, never negative.
func (p Params) Pending(elapsed time.Duration, bonus float64) (float64, error) {
	if elapsed < 0 {
		return 0, ErrInvalidState
	}
	if bonus < 0 {
		return 0, ErrInvalidState
	}
	return p.Rate * elapsed.Seconds() * p.Scale * (1 + bonus), nil
}

// Meter measures elapsed accrual time for one session.
//
// The persisted session start is wall-clock epoch seconds, so the span
// that elapsed before this process started can only be computed from
// wall clocks, once at construction, clamped at zero. All growth after
// that uses the monotonic reading carried by the captured time.Time, so
// wall-clock adjustments cannot make elapsed time regress mid-run.
type Meter struct {
	base time.Duration // elapsed before ref, from persisted start
	ref  time.Time     // monotonic reference
}

// NewMeter creates a meter for a session that started at startEpoch
// (wall-clock seconds). now is the current wall-clock time.
func NewMeter(startEpoch float64, now time.Time) *Meter {
	start := time.Unix(0, int64(startEpoch*float64(time.Second)))
	base := now.Sub(start)
	if base < 0 {
		base = 0
	}
	return &Meter{base: base, ref: now}
}

// Elapsed returns the total accrual time: the pre-process span plus
// monotonic time since construction.
func (m *Meter) Elapsed() time.Duration {
	return m.base + time.Since(m.ref)
}

// Uptime returns monotonic time since the meter was constructed.
// Used for display only.
func (m *Meter) Uptime() time.Duration {
	return time.Since(m.ref)
}
