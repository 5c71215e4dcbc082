package miner

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/anggasec28/kaleido/internal/log"
)

// Supervisor fans a set of wallets out to independent workers and
// coordinates their shutdown. Each wallet gets its own goroutine with
// its own tick; a slow push on one wallet never delays another.
type Supervisor struct {
	wallets []string
	deps    Deps
	logger  zerolog.Logger

	workers []*Worker

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu        sync.Mutex
	unsettled map[string]float64
}

// NewSupervisor creates a supervisor for the given wallet list.
func NewSupervisor(wallets []string, deps Deps) *Supervisor {
	ctx, cancel := context.WithCancel(context.Background())
	return &Supervisor{
		wallets:   wallets,
		deps:      deps,
		logger:    log.Supervisor,
		ctx:       ctx,
		cancel:    cancel,
		unsettled: make(map[string]float64),
	}
}

// Start initializes one worker per wallet and launches the active ones.
// Initialization runs concurrently; a wallet whose registration fails
// (or whose session is corrupt) is excluded from the active set without
// aborting the others. Zero wallets is not an error.
func (s *Supervisor) Start() error {
	if len(s.wallets) == 0 {
		s.logger.Warn().Msg("No wallets configured, nothing to mine")
		return nil
	}

	s.logger.Info().Int("wallets", len(s.wallets)).Msg("Initializing mining instances")

	type initResult struct {
		worker *Worker
		err    error
	}
	results := make(chan initResult, len(s.wallets))

	for i, wallet := range s.wallets {
		w := NewWorker(wallet, i+1, s.deps)
		go func() {
			results <- initResult{worker: w, err: w.Init(s.ctx)}
		}()
	}

	for range s.wallets {
		res := <-results
		if res.err != nil {
			s.logger.Error().
				Err(res.err).
				Str("wallet", res.worker.Wallet()).
				Msg("Wallet excluded from mining")
			continue
		}
		s.workers = append(s.workers, res.worker)
	}

	if len(s.workers) == 0 {
		s.logger.Warn().Msg("No wallets passed initialization")
		return nil
	}

	for _, w := range s.workers {
		w := w
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			if err := w.Run(s.ctx); err != nil {
				s.mu.Lock()
				s.unsettled[w.Wallet()] = w.Unsettled()
				s.mu.Unlock()
			}
		}()
	}

	s.logger.Info().
		Int("active", len(s.workers)).
		Int("excluded", len(s.wallets)-len(s.workers)).
		Msg("Mining started")
	return nil
}

// ActiveWorkers returns the workers that passed initialization.
func (s *Supervisor) ActiveWorkers() []*Worker {
	return s.workers
}

// Stop broadcasts shutdown, waits for every worker's final
// reconciliation, and reports any unsettled balances. Safe to call
// when nothing was started.
func (s *Supervisor) Stop() {
	s.cancel()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	// Each worker bounds its own final push; the extra grace covers
	// scheduling, not another retry cycle.
	limit := s.deps.FinalTimeout + 10*time.Second
	if s.deps.FinalTimeout <= 0 {
		limit = 100 * time.Second
	}
	select {
	case <-done:
	case <-time.After(limit):
		s.logger.Error().Msg("Timed out waiting for final settlements")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.unsettled) > 0 {
		for wallet, amount := range s.unsettled {
			s.logger.Warn().
				Str("wallet", wallet).
				Float64("unsettled", amount).
				Msg("Balance NOT settled, will be reconciled on next start")
		}
	}
	s.logger.Info().
		Int("settled", len(s.workers)-len(s.unsettled)).
		Int("unsettled", len(s.unsettled)).
		Msg("Mining stopped")
}

// Unsettled returns wallets whose final settlement failed, with the
// amounts left pending. Valid after Stop returns.
func (s *Supervisor) Unsettled() map[string]float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]float64, len(s.unsettled))
	for k, v := range s.unsettled {
		out[k] = v
	}
	return out
}
