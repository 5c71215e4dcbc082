// Package session persists per-wallet mining accrual state.
//
// Each wallet has exactly one session record, owned exclusively by the
// worker driving that wallet. The record survives restarts; StartTime is
// set once at first registration and never changes afterwards.
package session

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when no session exists for a wallet.
	ErrNotFound = errors.New("session not found")
	// ErrCorrupt is returned when a persisted session cannot be parsed.
	// Distinct from absence: a corrupt session must never be silently
	// replaced with a zeroed one, or history would be lost or repaid.
	ErrCorrupt = errors.New("session corrupt")
)

// State is the durable accrual record for one wallet.
type State struct {
	Wallet        string  `json:"-"`
	StartTime     float64 `json:"start_time"`     // epoch seconds, 0 = unset
	TotalEarned   float64 `json:"total_earned"`   // cumulative confirmed earnings
	PaidOut       float64 `json:"paid_out"`       // cumulative settled earnings
	ReferralBonus float64 `json:"referral_bonus"` // fractional multiplier, >= 0
}

// NewState returns a fresh zeroed session for the wallet.
func NewState(wallet string) *State {
	return &State{Wallet: wallet}
}

// Started reports whether the accrual start has been set.
func (s *State) Started() bool {
	return s.StartTime != 0
}

// Validate checks the record's invariants.
func (s *State) Validate() error {
	if s.Wallet == "" {
		return fmt.Errorf("%w: empty wallet", ErrCorrupt)
	}
	if s.TotalEarned < s.PaidOut {
		return fmt.Errorf("%w: total_earned %f below paid_out %f", ErrCorrupt, s.TotalEarned, s.PaidOut)
	}
	if s.ReferralBonus < 0 {
		return fmt.Errorf("%w: negative referral_bonus %f", ErrCorrupt, s.ReferralBonus)
	}
	if s.StartTime < 0 {
		return fmt.Errorf("%w: negative start_time %f", ErrCorrupt, s.StartTime)
	}
	return nil
}

// Store is the persistence boundary for sessions.
//
// Load distinguishes ErrNotFound (no record) from ErrCorrupt (record
// present but unusable). Save must be atomic: a crash mid-save never
// leaves a partially written record observable.
type Store interface {
	Exists(wallet string) (bool, error)
	Load(wallet string) (*State, error)
	Save(state *State) error
	Close() error
}
