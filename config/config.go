package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for a deployment run
type Config struct {
	// Chain connection
	RPC     string
	Network string

	// Deployer account
	PrivateKey string

	// Contract settings
	ArtifactsDir          string
	NetworksFile          string
	Variant               string
	ContractTimeout       time.Duration
	GasLimitBufferPercent int64

	// Source verification
	EtherscanAPIKey string
	EtherscanAPIURL string
	VerifyEnabled   bool

	// Workspace for deployment records and accounts
	Workspace string

	// Logging
	LogLevel   string
	Verbose    bool
	Antithesis bool
}

// Load creates a new config from environment variables
func Load() *Config {
	cfg := &Config{
		RPC:                   getEnv("ETH_RPC_URL", ""),
		Network:               getEnv("NETWORK", "hardhat"),
		PrivateKey:            getEnv("PRIVATE_KEY", ""),
		ArtifactsDir:          getEnv("ARTIFACTS_DIR", "./artifacts"),
		NetworksFile:          getEnv("NETWORKS_FILE", ""),
		Variant:               getEnv("RAFFLE_VARIANT", "vrf"),
		ContractTimeout:       getDuration("CONTRACT_TIMEOUT", 5*time.Minute),
		GasLimitBufferPercent: getInt64("GAS_LIMIT_BUFFER_PERCENT", 20),
		EtherscanAPIKey:       getEnv("ETHERSCAN_API_KEY", ""),
		EtherscanAPIURL:       getEnv("ETHERSCAN_API_URL", "https://api.etherscan.io/v2/api"),
		Workspace:             getEnv("WORKSPACE", "./workspace"),
		LogLevel:              getEnv("LOG_LEVEL", "info"),
		Verbose:               getBool("VERBOSE", false),
		Antithesis:            getBool("ANTITHESIS", false),
	}
	cfg.Finalize()
	return cfg
}

// Finalize derives the settings that depend on other fields. It must be
// called again after flags override any of them.
func (c *Config) Finalize() {
	c.VerifyEnabled = strings.TrimSpace(c.EtherscanAPIKey) != ""
	if c.GasLimitBufferPercent < 0 {
		c.GasLimitBufferPercent = 0
	}
	if c.Verbose {
		c.LogLevel = "debug"
	}
	SetAntithesisMode(c.Antithesis)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getInt64(key string, fallback int64) int64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseInt(value, 10, 64); err == nil {
			return parsed
		}
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return fallback
}
