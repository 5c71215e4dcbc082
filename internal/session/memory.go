package session

import (
	"encoding/json"
	"fmt"
	"sync"
)

// MemStore keeps sessions in memory. Used by tests; records round-trip
// through JSON so marshalling behavior matches the durable stores.
type MemStore struct {
	mu   sync.Mutex
	data map[string][]byte
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{data: make(map[string][]byte)}
}

// Exists reports whether a session is present for the wallet.
func (ms *MemStore) Exists(wallet string) (bool, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	_, ok := ms.data[wallet]
	return ok, nil
}

// Load returns the wallet's session.
func (ms *MemStore) Load(wallet string) (*State, error) {
	ms.mu.Lock()
	data, ok := ms.data[wallet]
	ms.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, wallet)
	}

	st := NewState(wallet)
	if err := json.Unmarshal(data, st); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorrupt, wallet, err)
	}
	if err := st.Validate(); err != nil {
		return nil, err
	}
	return st, nil
}

// Save stores the wallet's session.
func (ms *MemStore) Save(state *State) error {
	if err := state.Validate(); err != nil {
		return err
	}
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	ms.mu.Lock()
	ms.data[state.Wallet] = data
	ms.mu.Unlock()
	return nil
}

// Corrupt overwrites a wallet's record with unparseable bytes.
// Test helper for exercising ErrCorrupt paths.
func (ms *MemStore) Corrupt(wallet string) {
	ms.mu.Lock()
	ms.data[wallet] = []byte("{not json")
	ms.mu.Unlock()
}

// Close is a no-op.
func (ms *MemStore) Close() error {
	return nil
}
