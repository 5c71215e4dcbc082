package config

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"
)

// LoadFile loads daemon configuration from a .conf file.
// Format: key = value (one per line, # for comments)
func LoadFile(path string) (map[string]string, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return make(map[string]string), nil
		}
		return nil, err
	}
	defer file.Close()

	values := make(map[string]string)
	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Parse key = value
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("line %d: invalid format (expected key = value)", lineNum)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		// Remove quotes if present
		if len(value) >= 2 {
			if (value[0] == '"' && value[len(value)-1] == '"') ||
				(value[0] == '\'' && value[len(value)-1] == '\'') {
				value = value[1 : len(value)-1]
			}
		}

		values[key] = value
	}

	return values, scanner.Err()
}

// ApplyFileConfig applies file configuration to a Config struct.
func ApplyFileConfig(cfg *Config, values map[string]string) error {
	for key, value := range values {
		if err := setConfigValue(cfg, key, value); err != nil {
			return fmt.Errorf("config key %q: %w", key, err)
		}
	}
	return nil
}

// setConfigValue sets a config value by key.
func setConfigValue(cfg *Config, key, value string) error {
	switch key {
	// Core
	case "network":
		cfg.Network = NetworkType(value)
	case "datadir":
		cfg.DataDir = value

	// API
	case "api.endpoint":
		cfg.API.Endpoint = value
	case "api.timeout":
		d, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		cfg.API.Timeout = d

	// Mining
	case "mining.wallets", "wallets":
		cfg.Mining.WalletsFile = value
	case "mining.interval":
		d, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		cfg.Mining.TickInterval = d
	case "mining.shutdown_timeout":
		d, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		cfg.Mining.ShutdownTimeout = d

	// Storage
	case "storage.backend":
		switch strings.ToLower(value) {
		case "file", "":
			cfg.Storage.Backend = StorageFile
		case "badger":
			cfg.Storage.Backend = StorageBadger
		default:
			return fmt.Errorf("unknown storage backend %q", value)
		}
	case "storage.dir":
		cfg.Storage.Dir = value

	// Logging
	case "log.level":
		cfg.Log.Level = value
	case "log.file":
		cfg.Log.File = value
	case "log.json":
		cfg.Log.JSON = parseBool(value)

	default:
		// Unknown keys are ignored
	}
	return nil
}

// parseBool parses a boolean value.
func parseBool(s string) bool {
	s = strings.ToLower(s)
	return s == "true" || s == "1" || s == "yes" || s == "on"
}

// WriteDefaultConfig writes a default daemon configuration file.
func WriteDefaultConfig(path string, network NetworkType) error {
	def := Default(network)
	content := `# Kaleido Mining Daemon Configuration

# Network: mainnet or testnet
network = ` + string(network) + `

# Data directory (default: ~/.kaleido)
# datadir = ~/.kaleido

# ============================================================================
# Ledger Service
# ============================================================================

api.endpoint = ` + def.API.Endpoint + `
api.timeout = 10s

# ============================================================================
# Mining
# ============================================================================

# Newline-delimited wallet address list (0x-prefixed lines)
mining.wallets = wallets.txt

# Reconciliation interval
mining.interval = 30s

# How long to wait for final settlements on shutdown
mining.shutdown_timeout = 90s

# ============================================================================
# Session Storage
# ============================================================================

# Backend: file (one .dat per wallet) or badger
storage.backend = file
# storage.dir =

# ============================================================================
# Logging
# ============================================================================

log.level = info
# log.file =
log.json = false
`
	return os.WriteFile(path, []byte(content), 0644)
}
