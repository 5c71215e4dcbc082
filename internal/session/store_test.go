package session

import (
	"errors"
	"testing"
)

// testStore runs the shared test suite against a Store implementation.
func testStore(t *testing.T, store Store) {
	t.Helper()

	t.Run("ExistsBeforeSave", func(t *testing.T) {
		ok, err := store.Exists("0xnew")
		if err != nil {
			t.Fatalf("Exists() error: %v", err)
		}
		if ok {
			t.Error("Exists() = true for never-saved wallet")
		}
	})

	t.Run("LoadMissing", func(t *testing.T) {
		_, err := store.Load("0xmissing")
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("Load() error = %v, want ErrNotFound", err)
		}
	})

	t.Run("SaveAndLoad", func(t *testing.T) {
		st := &State{
			Wallet:        "0xabc",
			StartTime:     1700000000.5,
			TotalEarned:   12.25,
			PaidOut:       3.5,
			ReferralBonus: 0.1,
		}
		if err := store.Save(st); err != nil {
			t.Fatalf("Save() error: %v", err)
		}

		ok, err := store.Exists("0xabc")
		if err != nil || !ok {
			t.Fatalf("Exists() = %v, %v after Save", ok, err)
		}

		got, err := store.Load("0xabc")
		if err != nil {
			t.Fatalf("Load() error: %v", err)
		}
		if *got != *st {
			t.Errorf("Load() = %+v, want %+v", got, st)
		}
	})

	t.Run("Overwrite", func(t *testing.T) {
		st := &State{Wallet: "0xow", StartTime: 1, TotalEarned: 1}
		if err := store.Save(st); err != nil {
			t.Fatalf("Save() error: %v", err)
		}
		st.TotalEarned = 2
		if err := store.Save(st); err != nil {
			t.Fatalf("Save() error: %v", err)
		}

		got, err := store.Load("0xow")
		if err != nil {
			t.Fatalf("Load() error: %v", err)
		}
		if got.TotalEarned != 2 {
			t.Errorf("TotalEarned = %v after overwrite, want 2", got.TotalEarned)
		}
	})

	t.Run("RejectsInvariantViolation", func(t *testing.T) {
		st := &State{Wallet: "0xbad", TotalEarned: 1, PaidOut: 2}
		if err := store.Save(st); !errors.Is(err, ErrCorrupt) {
			t.Errorf("Save() with paid_out > total_earned error = %v, want ErrCorrupt", err)
		}
	})
}

func TestFileStore(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore() error: %v", err)
	}
	defer store.Close()
	testStore(t, store)
}

func TestBadgerStore(t *testing.T) {
	store, err := NewBadgerStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewBadgerStore() error: %v", err)
	}
	defer store.Close()
	testStore(t, store)
}

func TestMemStore(t *testing.T) {
	store := NewMemStore()
	defer store.Close()
	testStore(t, store)
}

func TestMemStore_Corrupt(t *testing.T) {
	store := NewMemStore()
	st := &State{Wallet: "0xabc", StartTime: 1}
	if err := store.Save(st); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	store.Corrupt("0xabc")
	if _, err := store.Load("0xabc"); !errors.Is(err, ErrCorrupt) {
		t.Errorf("Load() of corrupted record error = %v, want ErrCorrupt", err)
	}
}

func TestState_Validate(t *testing.T) {
	cases := []struct {
		name    string
		state   State
		wantErr bool
	}{
		{"fresh", State{Wallet: "0xa"}, false},
		{"normal", State{Wallet: "0xa", StartTime: 1, TotalEarned: 5, PaidOut: 2}, false},
		{"equal totals", State{Wallet: "0xa", TotalEarned: 3, PaidOut: 3}, false},
		{"no wallet", State{}, true},
		{"paid exceeds total", State{Wallet: "0xa", TotalEarned: 1, PaidOut: 2}, true},
		{"negative bonus", State{Wallet: "0xa", ReferralBonus: -0.1}, true},
		{"negative start", State{Wallet: "0xa", StartTime: -1}, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.state.Validate()
			if (err != nil) != tc.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}
