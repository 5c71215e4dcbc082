package config

import (
	"fmt"
	"net/url"
	"time"
)

// Validate checks runtime config for obvious operator mistakes.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}
	if cfg.Network != Mainnet && cfg.Network != Testnet {
		return fmt.Errorf("network must be %q or %q", Mainnet, Testnet)
	}

	u, err := url.Parse(cfg.API.Endpoint)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("api.endpoint %q is not a valid URL", cfg.API.Endpoint)
	}
	if cfg.API.Timeout <= 0 {
		return fmt.Errorf("api.timeout must be positive")
	}

	if cfg.Mining.TickInterval < time.Second {
		return fmt.Errorf("mining.interval %s is below the 1s minimum", cfg.Mining.TickInterval)
	}
	if cfg.Mining.ShutdownTimeout <= 0 {
		return fmt.Errorf("mining.shutdown_timeout must be positive")
	}

	switch cfg.Storage.Backend {
	case StorageFile, StorageBadger:
	case "":
		cfg.Storage.Backend = StorageFile
	default:
		return fmt.Errorf("storage.backend must be %q or %q", StorageFile, StorageBadger)
	}

	return nil
}
