package session

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dgraph-io/badger/v4"
)

// sessionKeyPrefix namespaces session records in the database.
const sessionKeyPrefix = "session/"

// BadgerStore persists sessions as records in a Badger database,
// one key per wallet. Badger updates are transactional, which gives the
// same all-or-nothing save guarantee as the file store's rename.
type BadgerStore struct {
	db *badger.DB
}

// NewBadgerStore opens (or creates) a Badger database at the given path.
func NewBadgerStore(path string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil // Disable badger's built-in logging.

	db, err := badger.Open(opts)
	if err != nil {
		errMsg := err.Error()
		if strings.Contains(errMsg, "Cannot acquire directory lock") ||
			strings.Contains(errMsg, "resource temporarily unavailable") {
			return nil, fmt.Errorf("session database at %s is locked by another process (is another kaleidod instance running?): %w", path, err)
		}
		return nil, fmt.Errorf("open session database at %s: %w", path, err)
	}
	return &BadgerStore{db: db}, nil
}

func sessionKey(wallet string) []byte {
	return []byte(sessionKeyPrefix + wallet)
}

// Exists reports whether a session record exists for the wallet.
func (bs *BadgerStore) Exists(wallet string) (bool, error) {
	var exists bool
	err := bs.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(sessionKey(wallet))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		exists = true
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("badger has: %w", err)
	}
	return exists, nil
}

// Load reads and validates the wallet's session record.
func (bs *BadgerStore) Load(wallet string) (*State, error) {
	var data []byte
	err := bs.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(sessionKey(wallet))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if err == badger.ErrKeyNotFound {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, wallet)
	}
	if err != nil {
		return nil, fmt.Errorf("badger get: %w", err)
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

// Save writes the session record in a single transaction.
func (bs *BadgerStore) Save(state *State) error {
	if err := state.Validate(); err != nil {
		return err
	}

	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	err = bs.db.Update(func(txn *badger.Txn) error {
		return txn.Set(sessionKey(state.Wallet), data)
	})
	if err != nil {
		return fmt.Errorf("badger put: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (bs *BadgerStore) Close() error {
	return bs.db.Close()
}
