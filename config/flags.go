package config

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Flags holds parsed command-line flags.
type Flags struct {
	// Commands
	Help    bool
	Version bool

	// Core
	Network string
	DataDir string
	Config  string

	// API
	Endpoint   string
	APITimeout time.Duration

	// Mining
	Wallets         string
	Interval        time.Duration
	ShutdownTimeout time.Duration

	// Storage
	StorageBackend string
	StorageDir     string

	// Logging
	LogLevel string
	LogFile  string
	LogJSON  bool

	// Remaining args
	Args []string

	// Explicitly-set bool flags (for true/false overrides).
	SetLogJSON bool
}

// ParseFlags parses command-line flags.
func ParseFlags() *Flags {
	f := &Flags{}
	fs := flag.NewFlagSet("kaleidod", flag.ContinueOnError)

	// Commands
	fs.BoolVar(&f.Help, "help", false, "Show help message")
	fs.BoolVar(&f.Help, "h", false, "Show help message (shorthand)")
	fs.BoolVar(&f.Version, "version", false, "Show version information")
	fs.BoolVar(&f.Version, "v", false, "Show version (shorthand)")

	// Core
	fs.StringVar(&f.Network, "network", "", "Network type (testnet or mainnet)")
	fs.StringVar(&f.DataDir, "datadir", "", "Data directory path")
	fs.StringVar(&f.Config, "config", "", "Config file path")
	fs.StringVar(&f.Config, "c", "", "Config file path (shorthand)")

	// API
	fs.StringVar(&f.Endpoint, "endpoint", "", "Ledger service base URL")
	fs.DurationVar(&f.APITimeout, "api-timeout", 0, "Per-request HTTP timeout")

	// Mining
	fs.StringVar(&f.Wallets, "wallets", "", "Wallet address list file")
	fs.DurationVar(&f.Interval, "interval", 0, "Reconciliation interval")
	fs.DurationVar(&f.ShutdownTimeout, "shutdown-timeout", 0, "Final settlement timeout on shutdown")

	// Storage
	fs.StringVar(&f.StorageBackend, "storage", "", "Session storage backend: file or badger")
	fs.StringVar(&f.StorageDir, "storage-dir", "", "Session storage directory")

	// Logging
	fs.StringVar(&f.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	fs.StringVar(&f.LogFile, "log-file", "", "Log file path")
	fs.BoolVar(&f.LogJSON, "log-json", false, "Output logs as JSON")

	fs.Usage = func() {
		printUsage()
	}

	if err := fs.Parse(os.Args[1:]); err != nil {
		if err == flag.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	f.SetLogJSON = isFlagSet(fs, "log-json")
	f.Args = fs.Args()

	return f
}

// ApplyFlags applies command-line flags to a Config struct.
func ApplyFlags(cfg *Config, f *Flags) {
	// Core
	if f.Network != "" {
		cfg.Network = NetworkType(f.Network)
	}
	if f.DataDir != "" {
		cfg.DataDir = f.DataDir
	}

	// API
	if f.Endpoint != "" {
		cfg.API.Endpoint = f.Endpoint
	}
	if f.APITimeout != 0 {
		cfg.API.Timeout = f.APITimeout
	}

	// Mining
	if f.Wallets != "" {
		cfg.Mining.WalletsFile = f.Wallets
	}
	if f.Interval != 0 {
		cfg.Mining.TickInterval = f.Interval
	}
	if f.ShutdownTimeout != 0 {
		cfg.Mining.ShutdownTimeout = f.ShutdownTimeout
	}

	// Storage
	if f.StorageBackend != "" {
		cfg.Storage.Backend = StorageBackend(strings.ToLower(f.StorageBackend))
	}
	if f.StorageDir != "" {
		cfg.Storage.Dir = f.StorageDir
	}

	// Logging
	if f.LogLevel != "" {
		cfg.Log.Level = f.LogLevel
	}
	if f.LogFile != "" {
		cfg.Log.File = f.LogFile
	}
	if f.SetLogJSON {
		cfg.Log.JSON = f.LogJSON
	}
}

// envOverrides maps KALEIDOD_* environment variables onto config fields.
// Applied between the config file and command-line flags.
type envOverrides struct {
	Endpoint       string        `envconfig:"ENDPOINT"`
	APITimeout     time.Duration `envconfig:"API_TIMEOUT"`
	Wallets        string        `envconfig:"WALLETS"`
	Interval       time.Duration `envconfig:"INTERVAL"`
	StorageBackend string        `envconfig:"STORAGE"`
	LogLevel       string        `envconfig:"LOG_LEVEL"`
}

// ApplyEnv applies KALEIDOD_* environment variable overrides.
func ApplyEnv(cfg *Config) error {
	var env envOverrides
	if err := envconfig.Process("KALEIDOD", &env); err != nil {
		return fmt.Errorf("processing environment: %w", err)
	}
	if env.Endpoint != "" {
		cfg.API.Endpoint = env.Endpoint
	}
	if env.APITimeout != 0 {
		cfg.API.Timeout = env.APITimeout
	}
	if env.Wallets != "" {
		cfg.Mining.WalletsFile = env.Wallets
	}
	if env.Interval != 0 {
		cfg.Mining.TickInterval = env.Interval
	}
	if env.StorageBackend != "" {
		cfg.Storage.Backend = StorageBackend(strings.ToLower(env.StorageBackend))
	}
	if env.LogLevel != "" {
		cfg.Log.Level = env.LogLevel
	}
	return nil
}

// isFlagSet checks if a flag was explicitly set.
func isFlagSet(fs *flag.FlagSet, name string) bool {
	found := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}

func printUsage() {
	usage := `Kaleido Mining Daemon - per-wallet accrual and ledger reconciliation

Usage:
  kaleidod [options]
  kaleidod --help

Commands:
  --help, -h      Show this help message
  --version, -v   Show version information

Core Options:
  --network       Network type: testnet (default) or mainnet
  --datadir       Data directory (default: ~/.kaleido)
  --config, -c    Config file path (default: <datadir>/kaleidod.conf)

API Options:
  --endpoint      Ledger service base URL
  --api-timeout   Per-request HTTP timeout (default: 10s)

Mining Options:
  --wallets            Wallet address list file (default: wallets.txt)
  --interval           Reconciliation interval (default: 30s)
  --shutdown-timeout   Final settlement timeout on shutdown (default: 90s)

Storage Options:
  --storage       Session storage backend: file (default) or badger
  --storage-dir   Session storage directory

Logging Options:
  --log-level     Log level: debug, info, warn, error (default: info)
  --log-file      Log file path (default: stdout)
  --log-json      Output logs as JSON

Environment:
  KALEIDOD_ENDPOINT, KALEIDOD_API_TIMEOUT, KALEIDOD_WALLETS,
  KALEIDOD_INTERVAL, KALEIDOD_STORAGE, KALEIDOD_LOG_LEVEL
  override the config file; flags override everything.

Examples:
  # Start against testnet with the default wallet list
  kaleidod

  # Custom wallet list and faster ticks
  kaleidod --wallets=/etc/kaleido/wallets.txt --interval=10s

  # Badger-backed session storage
  kaleidod --storage=badger
`
	fmt.Print(usage)
}

// Load loads configuration with the following precedence:
// 1. Default values
// 2. Config file
// 3. KALEIDOD_* environment variables
// 4. Command-line flags
func Load() (*Config, *Flags, error) {
	flags := ParseFlags()

	if flags.Help {
		printUsage()
		os.Exit(0)
	}
	if flags.Version {
		fmt.Println("kaleidod version 0.1.0")
		os.Exit(0)
	}

	// Determine network first (needed for defaults).
	network := Testnet
	if strings.ToLower(flags.Network) == string(Mainnet) {
		network = Mainnet
	}

	cfg := Default(network)

	if flags.DataDir != "" {
		cfg.DataDir = flags.DataDir
	}

	if err := EnsureDataDirs(cfg); err != nil {
		return nil, nil, fmt.Errorf("ensuring data dirs: %w", err)
	}

	configPath := flags.Config
	if configPath == "" {
		configPath = cfg.ConfigFile()
	}

	fileValues, err := LoadFile(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("loading config file: %w", err)
	}
	if err := ApplyFileConfig(cfg, fileValues); err != nil {
		return nil, nil, fmt.Errorf("applying config file: %w", err)
	}

	if err := ApplyEnv(cfg); err != nil {
		return nil, nil, err
	}

	ApplyFlags(cfg, flags)

	if err := Validate(cfg); err != nil {
		return nil, nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, flags, nil
}

// EnsureDataDirs creates the data directory structure and a default config
// file if they don't already exist. Idempotent, safe on every startup.
func EnsureDataDirs(cfg *Config) error {
	dirs := []string{
		cfg.DataDir,
		cfg.SessionsDir(),
		cfg.LogsDir(),
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}

	confPath := cfg.ConfigFile()
	if _, err := os.Stat(confPath); os.IsNotExist(err) {
		if err := WriteDefaultConfig(confPath, cfg.Network); err != nil {
			return fmt.Errorf("write default config: %w", err)
		}
	}
	return nil
}
