package miner

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/anggasec28/kaleido/internal/apiclient"
	"github.com/anggasec28/kaleido/internal/session"
)

// slowLedger delays pushes for one wallet, passing everything else
// through to the wrapped fake.
type slowLedger struct {
	inner      *fakeLedger
	slowWallet string
	delay      time.Duration
}

func (s *slowLedger) CheckRegistration(ctx context.Context, wallet string) (*apiclient.Registration, error) {
	return s.inner.CheckRegistration(ctx, wallet)
}

func (s *slowLedger) PushBalance(ctx context.Context, wallet string, bal apiclient.Balance) error {
	if wallet == s.slowWallet {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(s.delay):
		}
	}
	return s.inner.PushBalance(ctx, wallet, bal)
}

func TestSupervisor_EmptyWalletList(t *testing.T) {
	sup := NewSupervisor(nil, testDeps(newFakeLedger(), session.NewMemStore()))
	if err := sup.Start(); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	sup.Stop() // Must not hang or panic with nothing running.
}

func TestSupervisor_ExcludesRejectedWallets(t *testing.T) {
	ledger := newFakeLedger()
	ledger.unregistered["0xbad"] = true
	store := session.NewMemStore()

	sup := NewSupervisor([]string{"0xgood", "0xbad"}, testDeps(ledger, store))
	if err := sup.Start(); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	defer sup.Stop()

	active := sup.ActiveWorkers()
	if len(active) != 1 {
		t.Fatalf("ActiveWorkers() = %d, want 1", len(active))
	}
	if active[0].Wallet() != "0xgood" {
		t.Errorf("active wallet = %s, want 0xgood", active[0].Wallet())
	}
}

func TestSupervisor_CorruptSessionExcluded(t *testing.T) {
	ledger := newFakeLedger()
	store := session.NewMemStore()
	if err := store.Save(&session.State{Wallet: "0xb", StartTime: 1}); err != nil {
		t.Fatal(err)
	}
	store.Corrupt("0xb")

	sup := NewSupervisor([]string{"0xa", "0xb"}, testDeps(ledger, store))
	if err := sup.Start(); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	defer sup.Stop()

	active := sup.ActiveWorkers()
	if len(active) != 1 || active[0].Wallet() != "0xa" {
		t.Errorf("active = %v, want only 0xa", len(active))
	}
}

func TestSupervisor_ShutdownSettlesAllWallets(t *testing.T) {
	ledger := newFakeLedger()
	store := session.NewMemStore()
	wallets := []string{"0xaaa", "0xbbb", "0xccc"}

	sup := NewSupervisor(wallets, testDeps(ledger, store))
	if err := sup.Start(); err != nil {
		t.Fatalf("Start() error: %v", err)
	}

	time.Sleep(25 * time.Millisecond) // Let some ticks happen.
	sup.Stop()

	if n := len(sup.Unsettled()); n != 0 {
		t.Errorf("Unsettled() has %d wallets, want 0", n)
	}
	for _, wallet := range wallets {
		st, err := store.Load(wallet)
		if err != nil {
			t.Fatalf("Load(%s) error: %v", wallet, err)
		}
		if st.PaidOut <= 0 {
			t.Errorf("wallet %s PaidOut = %v after shutdown, want > 0", wallet, st.PaidOut)
		}
		if st.TotalEarned < st.PaidOut {
			t.Errorf("wallet %s invariant violated: total %v < paid %v", wallet, st.TotalEarned, st.PaidOut)
		}
		bal, ok := ledger.lastPush(wallet)
		if !ok {
			t.Fatalf("wallet %s never pushed", wallet)
		}
		if bal.Pending != 0 {
			t.Errorf("wallet %s last push Pending = %v, want 0", wallet, bal.Pending)
		}
	}
}

func TestSupervisor_ReportsUnsettledBalances(t *testing.T) {
	ledger := newFakeLedger()
	store := session.NewMemStore()

	// Service accepts registrations but every push, including the final
	// settlement, fails.
	ledger.pushErr = errors.New("service down")

	sup := NewSupervisor([]string{"0xaaa", "0xbbb"}, testDeps(ledger, store))
	if err := sup.Start(); err != nil {
		t.Fatalf("Start() error: %v", err)
	}

	sup.Stop()

	unsettled := sup.Unsettled()
	if len(unsettled) != 2 {
		t.Fatalf("Unsettled() has %d wallets, want 2", len(unsettled))
	}
	for wallet := range unsettled {
		st, err := store.Load(wallet)
		if err != nil {
			t.Fatalf("Load(%s) error: %v", wallet, err)
		}
		// Nothing committed: the amounts are recomputed from the
		// unchanged start time on the next run.
		if st.TotalEarned != 0 || st.PaidOut != 0 {
			t.Errorf("wallet %s totals %v/%v, want 0/0 after failed settlement", wallet, st.TotalEarned, st.PaidOut)
		}
	}
}

func TestSupervisor_IndependentTicks(t *testing.T) {
	// A wallet whose pushes hang must not stop the others from ticking.
	ledger := newFakeLedger()
	store := session.NewMemStore()

	slow := &slowLedger{inner: ledger, slowWallet: "0xslow", delay: 200 * time.Millisecond}
	sup := NewSupervisor([]string{"0xslow", "0xfast"}, testDeps(slow, store))
	if err := sup.Start(); err != nil {
		t.Fatalf("Start() error: %v", err)
	}

	time.Sleep(60 * time.Millisecond)
	fastPushes := ledger.pushCount("0xfast")
	sup.Stop()

	if fastPushes < 2 {
		t.Errorf("fast wallet pushed %d times while slow wallet blocked, want >= 2", fastPushes)
	}
}
