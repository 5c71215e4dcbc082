package config

import "time"

// DefaultTestnet returns the default daemon configuration for testnet.
func DefaultTestnet() *Config {
	return &Config{
		Network: Testnet,
		DataDir: DefaultDataDir(),
		API: APIConfig{
			Endpoint: "https://kaleidofinance.xyz/api/testnet",
			Timeout:  10 * time.Second,
		},
		Mining: MiningConfig{
			WalletsFile:     "wallets.txt",
			TickInterval:    30 * time.Second,
			ShutdownTimeout: 90 * time.Second,
		},
		Storage: StorageConfig{
			Backend: StorageFile,
		},
		Log: LogConfig{
			Level: "info",
			JSON:  false,
		},
	}
}

// DefaultMainnet returns the default daemon configuration for mainnet.
func DefaultMainnet() *Config {
	cfg := DefaultTestnet()
	cfg.Network = Mainnet
	cfg.API.Endpoint = "https://kaleidofinance.xyz/api/mainnet"
	return cfg
}

// Default returns the default configuration for the given network.
func Default(network NetworkType) *Config {
	switch network {
	case Mainnet:
		return DefaultMainnet()
	default:
		return DefaultTestnet()
	}
}
