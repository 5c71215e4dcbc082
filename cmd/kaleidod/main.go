// Kaleido mining daemon.
//
// Usage:
//
//	kaleidod [--wallets=wallets.txt --interval=30s]  Run miner
//	kaleidod --help                                  Show help
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/anggasec28/kaleido/config"
	"github.com/anggasec28/kaleido/internal/accrual"
	"github.com/anggasec28/kaleido/internal/apiclient"
	"github.com/anggasec28/kaleido/internal/log"
	"github.com/anggasec28/kaleido/internal/miner"
	"github.com/anggasec28/kaleido/internal/session"
)

func main() {
	cfg, _, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := log.Init(cfg.Log.Level, cfg.Log.JSON, cfg.Log.File); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	store, err := openStore(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	wallets := config.LoadWallets(cfg.Mining.WalletsFile)
	if len(wallets) == 0 {
		log.Config.Warn().
			Str("file", cfg.Mining.WalletsFile).
			Msg("Wallet file missing or empty")
	}

	sup := miner.NewSupervisor(wallets, miner.Deps{
		Ledger:       apiclient.New(cfg.API.Endpoint, cfg.API.Timeout),
		Store:        store,
		Params:       accrual.Params{Rate: config.BaseHashrate, Scale: config.ProductionScale},
		Interval:     cfg.Mining.TickInterval,
		FinalTimeout: cfg.Mining.ShutdownTimeout,
		StatsOut:     os.Stdout,
	})

	if err := sup.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		store.Close()
		os.Exit(1)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Supervisor.Info().Msg("Initiating shutdown sequence")
	sup.Stop()
}

// openStore builds the configured session store.
func openStore(cfg *config.Config) (session.Store, error) {
	switch cfg.Storage.Backend {
	case config.StorageBadger:
		return session.NewBadgerStore(cfg.SessionsDir())
	default:
		return session.NewFileStore(cfg.SessionsDir())
	}
}
