// Package config handles daemon configuration.
//
// Configuration is layered: built-in defaults, then the .conf file,
// then KALEIDOD_* environment variables, then command-line flags.
package config

import (
	"os"
	"path/filepath"
	"runtime"
	"time"
)

// NetworkType identifies the target ledger network.
type NetworkType string

const (
	Mainnet NetworkType = "mainnet"
	Testnet NetworkType = "testnet"
)

// Accrual constants. These mirror the ledger service's testnet numbers
// and must match what the service expects in balance pushes.
const (
	// BaseHashrate is the simulated hashrate in MH/s.
	BaseHashrate = 75.5
	// ProductionScale converts hashrate-seconds into KLDO.
	ProductionScale = 0.0001
	// PowerConsumption is reported in the stats table only (watts).
	PowerConsumption = 120
)

// StorageBackend selects where per-wallet sessions are persisted.
type StorageBackend string

const (
	StorageFile   StorageBackend = "file"
	StorageBadger StorageBackend = "badger"
)

// Config holds daemon runtime configuration.
type Config struct {
	// Core
	Network NetworkType `conf:"network"`
	DataDir string      `conf:"datadir"`

	// Ledger service
	API APIConfig

	// Mining loop
	Mining MiningConfig

	// Session storage
	Storage StorageConfig

	// Logging
	Log LogConfig
}

// APIConfig holds remote ledger service settings.
type APIConfig struct {
	Endpoint string        `conf:"api.endpoint"`
	Timeout  time.Duration `conf:"api.timeout"`
}

// MiningConfig holds accrual loop settings.
type MiningConfig struct {
	WalletsFile     string        `conf:"mining.wallets"`
	TickInterval    time.Duration `conf:"mining.interval"`
	ShutdownTimeout time.Duration `conf:"mining.shutdown_timeout"`
}

// StorageConfig holds session persistence settings.
type StorageConfig struct {
	Backend StorageBackend `conf:"storage.backend"`
	Dir     string         `conf:"storage.dir"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `conf:"log.level"`
	File  string `conf:"log.file"`
	JSON  bool   `conf:"log.json"`
}

// DefaultDataDir returns the platform-specific default data directory.
//
//	Linux:   ~/.kaleido
//	macOS:   ~/Library/Application Support/Kaleido
//	Windows: %APPDATA%\Kaleido
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".kaleido"
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "Kaleido")
	case "windows":
		appData := os.Getenv("APPDATA")
		if appData != "" {
			return filepath.Join(appData, "Kaleido")
		}
		return filepath.Join(home, "AppData", "Roaming", "Kaleido")
	default:
		return filepath.Join(home, ".kaleido")
	}
}

// SessionsDir returns the session storage directory, honoring an
// explicit storage.dir override.
func (c *Config) SessionsDir() string {
	if c.Storage.Dir != "" {
		return c.Storage.Dir
	}
	return filepath.Join(c.DataDir, string(c.Network), "sessions")
}

// LogsDir returns the logs directory.
func (c *Config) LogsDir() string {
	return filepath.Join(c.DataDir, "logs")
}

// ConfigFile returns the config file path.
func (c *Config) ConfigFile() string {
	return filepath.Join(c.DataDir, "kaleidod.conf")
}
