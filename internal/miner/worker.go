// Package miner drives per-wallet accrual and ledger reconciliation.
//
// Each wallet is owned by exactly one Worker. The worker loads or
// creates the wallet's durable session, registers with the ledger
// service, then reconciles accrued production on a fixed tick. Session
// state is touched only after the remote service acknowledges a push,
// so a crash or failed tick never loses or double-counts earnings.
package miner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/anggasec28/kaleido/internal/accrual"
	"github.com/anggasec28/kaleido/internal/apiclient"
	"github.com/anggasec28/kaleido/internal/log"
	"github.com/anggasec28/kaleido/internal/report"
	"github.com/anggasec28/kaleido/internal/session"
)

// ErrUnregistered means the ledger service explicitly reported the
// wallet as not registered. Terminal for that wallet.
var ErrUnregistered = errors.New("wallet not registered")

// Ledger is the remote service boundary the worker depends on.
type Ledger interface {
	CheckRegistration(ctx context.Context, wallet string) (*apiclient.Registration, error)
	PushBalance(ctx context.Context, wallet string, bal apiclient.Balance) error
}

// State is a worker's lifecycle state.
type State int32

const (
	Uninitialized State = iota
	Registering
	Active
	ShuttingDown
	Stopped
	Rejected
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Registering:
		return "registering"
	case Active:
		return "active"
	case ShuttingDown:
		return "shutting-down"
	case Stopped:
		return "stopped"
	case Rejected:
		return "rejected"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// Deps bundles the worker's collaborators.
type Deps struct {
	Ledger Ledger
	Store  session.Store
	Params accrual.Params
	// Interval between reconciliations.
	Interval time.Duration
	// FinalTimeout bounds the shutdown reconciliation.
	FinalTimeout time.Duration
	// StatsOut receives the status table after each successful
	// reconciliation. Nil disables rendering.
	StatsOut io.Writer
	// Now overrides the clock. Nil means time.Now.
	Now func() time.Time
}

// Worker owns one wallet's accrual lifecycle.
type Worker struct {
	wallet string
	id     int
	deps   Deps
	logger zerolog.Logger

	state atomic.Int32

	// Owned exclusively by the worker goroutine after Init.
	sess  *session.State
	meter *accrual.Meter

	// Set during shutdown; read after Run returns.
	unsettled float64
}

// NewWorker creates a worker for the wallet. Call Init before Run.
func NewWorker(wallet string, id int, deps Deps) *Worker {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.FinalTimeout <= 0 {
		deps.FinalTimeout = 90 * time.Second
	}
	return &Worker{
		wallet: wallet,
		id:     id,
		deps:   deps,
		logger: log.Miner.With().Int("miner", id).Str("wallet", report.ShortWallet(wallet)).Logger(),
	}
}

// Wallet returns the wallet address this worker owns.
func (w *Worker) Wallet() string { return w.wallet }

// State returns the worker's current lifecycle state.
func (w *Worker) State() State { return State(w.state.Load()) }

func (w *Worker) setState(s State) { w.state.Store(int32(s)) }

// Unsettled returns the amount left unsettled by a failed final
// reconciliation. Valid after Run returns.
func (w *Worker) Unsettled() float64 { return w.unsettled }

// Init loads or creates the wallet's session and registers with the
// ledger service. On any error the worker is terminal and must not be
// run: a corrupt session is surfaced as-is (never replaced with a fresh
// one), an explicit not-registered answer returns ErrUnregistered, and
// a failed registration check returns the transport error.
func (w *Worker) Init(ctx context.Context) error {
	w.setState(Registering)

	st, err := w.loadOrCreate()
	if err != nil {
		w.setState(Rejected)
		return err
	}

	reg, err := w.deps.Ledger.CheckRegistration(ctx, w.wallet)
	if err != nil {
		w.setState(Rejected)
		return fmt.Errorf("registration check: %w", err)
	}
	if !reg.IsRegistered {
		w.setState(Rejected)
		return fmt.Errorf("%w: %s", ErrUnregistered, report.ShortWallet(w.wallet))
	}

	now := w.deps.Now()
	if !st.Started() {
		// First run: fix the accrual start and fold in the bonus.
		st.StartTime = float64(now.UnixNano()) / float64(time.Second)
		st.ReferralBonus = reg.ReferralBonus
		if err := w.deps.Store.Save(st); err != nil {
			w.setState(Rejected)
			return fmt.Errorf("persist new session: %w", err)
		}
		w.logger.Info().
			Float64("bonus", st.ReferralBonus).
			Msg("Session created")
	} else {
		// Re-run: persisted start and bonus win. A changed bonus on the
		// service side is deliberately not re-applied.
		w.logger.Info().
			Float64("total_earned", st.TotalEarned).
			Float64("paid_out", st.PaidOut).
			Msg("Session resumed")
	}

	w.sess = st
	w.meter = accrual.NewMeter(st.StartTime, now)
	w.setState(Active)
	return nil
}

// loadOrCreate fetches the persisted session or starts a blank one.
func (w *Worker) loadOrCreate() (*session.State, error) {
	exists, err := w.deps.Store.Exists(w.wallet)
	if err != nil {
		return nil, fmt.Errorf("check session: %w", err)
	}
	if !exists {
		return session.NewState(w.wallet), nil
	}

	st, err := w.deps.Store.Load(w.wallet)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return session.NewState(w.wallet), nil
		}
		// ErrCorrupt included: report it, exclude the wallet, and leave
		// the damaged record in place for manual recovery.
		return nil, fmt.Errorf("load session: %w", err)
	}
	return st, nil
}

// Run drives the reconciliation loop until ctx is cancelled, then
// performs exactly one final reconciliation under FinalTimeout.
// The returned error is the final reconciliation's failure, if any;
// the loop's per-tick errors are absorbed and logged.
func (w *Worker) Run(ctx context.Context) error {
	if w.State() != Active {
		return fmt.Errorf("worker for %s not active (%s)", report.ShortWallet(w.wallet), w.State())
	}

	ticker := time.NewTicker(w.deps.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return w.shutdown()
		case <-ticker.C:
			if err := w.reconcile(ctx, false); err != nil {
				// Nothing was committed; next tick recomputes the full
				// pending span from the unchanged start time.
				w.logger.Warn().Err(err).Msg("Reconciliation failed, will retry next tick")
				continue
			}
			w.renderStats()
		}
	}
}

// shutdown performs the final reconciliation and stops the worker.
func (w *Worker) shutdown() error {
	w.setState(ShuttingDown)

	// The run context is already cancelled; the final push gets its own
	// bounded deadline so shutdown cannot hang on a dead service.
	ctx, cancel := context.WithTimeout(context.Background(), w.deps.FinalTimeout)
	defer cancel()

	err := w.reconcile(ctx, true)
	w.setState(Stopped)
	if err != nil {
		w.logger.Error().
			Err(err).
			Float64("unsettled", w.unsettled).
			Msg("Final settlement failed, balance left unsettled")
		return fmt.Errorf("final settlement for %s: %w", report.ShortWallet(w.wallet), err)
	}

	w.logger.Info().
		Float64("total_paid", w.sess.PaidOut).
		Msg("Miner stopped")
	return nil
}

// reconcile computes pending production, pushes it to the ledger, and
// commits on acknowledgment. A final reconciliation moves pending into
// paid; a regular one reports it as pending. The commit happens only
// after a successful push, so failures leave both memory and disk at
// the last durable checkpoint.
func (w *Worker) reconcile(ctx context.Context, final bool) error {
	pending, err := w.deps.Params.Pending(w.meter.Elapsed(), w.sess.ReferralBonus)
	if err != nil {
		return fmt.Errorf("compute production: %w", err)
	}

	bal := apiclient.Balance{
		Total:   w.sess.TotalEarned + pending,
		Pending: pending,
		Paid:    w.sess.PaidOut,
	}
	if final {
		bal.Pending = 0
		bal.Paid = w.sess.PaidOut + pending
	}

	if err := w.deps.Ledger.PushBalance(ctx, w.wallet, bal); err != nil {
		if final {
			w.unsettled = pending
		}
		return err
	}

	w.sess.TotalEarned += pending
	if final {
		w.sess.PaidOut += pending
	}

	if err := w.deps.Store.Save(w.sess); err != nil {
		// The remote acknowledged, so the in-memory commit stands.
		// Persistence catches up on the next successful save; until
		// then a crash would land in the divergence window.
		w.logger.Error().Err(err).Msg("Session persist failed after acknowledged push")
		if final {
			return fmt.Errorf("persist final session: %w", err)
		}
	}
	return nil
}

// renderStats prints the wallet's status table, if rendering is enabled.
func (w *Worker) renderStats() {
	if w.deps.StatsOut == nil {
		return
	}
	pending, err := w.deps.Params.Pending(w.meter.Elapsed(), w.sess.ReferralBonus)
	if err != nil {
		return
	}
	report.Render(w.deps.StatsOut, report.Stats{
		Wallet:        w.wallet,
		Uptime:        w.meter.Uptime(),
		TotalEarned:   w.sess.TotalEarned,
		Pending:       pending,
		ReferralBonus: w.sess.ReferralBonus,
	})
}
