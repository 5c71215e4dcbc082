package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// FileStore persists one JSON file per wallet under a directory.
// File name: <wallet>_mining.dat.
type FileStore struct {
	dir string
}

// NewFileStore creates a file-backed store rooted at dir.
// The directory is created if it doesn't exist.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("create sessions dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// sessionPath returns the file path for a wallet's session.
func (fs *FileStore) sessionPath(wallet string) string {
	return filepath.Join(fs.dir, wallet+"_mining.dat")
}

// Exists reports whether a session file exists for the wallet.
func (fs *FileStore) Exists(wallet string) (bool, error) {
	_, err := os.Stat(fs.sessionPath(wallet))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, fmt.Errorf("stat session: %w", err)
}

// Load reads and validates the wallet's session.
func (fs *FileStore) Load(wallet string) (*State, error) {
	data, err := os.ReadFile(fs.sessionPath(wallet))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, wallet)
		}
		return nil, fmt.Errorf("read session: %w", err)
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

// Save writes the session atomically: marshal to <file>.tmp, then rename
// over the final path. A crash mid-write leaves at worst a stale .tmp,
// never a truncated session file.
func (fs *FileStore) Save(state *State) error {
	if err := state.Validate(); err != nil {
		return err
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	data = append(data, '\n')

	path := fs.sessionPath(state.Wallet)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replace session: %w", err)
	}
	return nil
}

// Close is a no-op for the file store.
func (fs *FileStore) Close() error {
	return nil
}
