// Package config loads bbnbind settings from the environment and an optional .env file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store kinds accepted by BBN_CHAIN_STORE and BBN_CONTRACT_STORE.
const (
	StoreMemory = "memory"
	StoreSQL    = "sql"
	StoreRedis  = "redis"
)

// Config holds application configuration.
type Config struct {
	// Application
	AppEnv    string
	LogLevel  string
	LogFormat string
	ChainID   string

	// Persistence
	DatabaseURL   string
	SQLitePath    string
	RedisURL      string
	StateFile     string
	ChainStore    string
	ContractStore string

	// Host
	GRPCAddr     string
	HostAddr     string
	HostPlugin   string
	Capabilities []string

	// Circuit breaker and timeouts for remote hosts
	BreakerMaxFailures int
	BreakerTimeout     time.Duration
	QueryTimeout       time.Duration

	// Tooling
	SchemaDir string

	// MCP
	MCPAddr      string
	MCPAuthToken string
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	// A missing .env is fine.
	_ = godotenv.Load()

	cfg := &Config{
		AppEnv:    getEnv("BBN_ENV", "development"),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),
		ChainID:   getEnv("BBN_CHAIN_ID", "bbn-local"),

		DatabaseURL:   getEnv("DATABASE_URL", ""),
		SQLitePath:    getEnv("SQLITE_PATH", ""),
		RedisURL:      getEnv("REDIS_URL", ""),
		StateFile:     getEnv("BBN_STATE_FILE", ""),
		ChainStore:    strings.ToLower(getEnv("BBN_CHAIN_STORE", StoreMemory)),
		ContractStore: strings.ToLower(getEnv("BBN_CONTRACT_STORE", StoreMemory)),

		GRPCAddr:     getEnv("BBN_GRPC_ADDR", "127.0.0.1:9090"),
		HostAddr:     getEnv("BBN_HOST_ADDR", ""),
		HostPlugin:   getEnv("BBN_HOST_PLUGIN", ""),
		Capabilities: getListEnv("BBN_CAPABILITIES", []string{"iterator", "staking", "babylon"}),

		BreakerMaxFailures: getIntEnv("BBN_BREAKER_MAX_FAILURES", 5),
		BreakerTimeout:     getDurationEnv("BBN_BREAKER_TIMEOUT", 30*time.Second),
		QueryTimeout:       getDurationEnv("BBN_QUERY_TIMEOUT", 10*time.Second),

		SchemaDir: getEnv("BBN_SCHEMA_DIR", "schema"),

		MCPAddr:      getEnv("MCP_ADDR", "127.0.0.1:8082"),
		MCPAuthToken: getEnv("MCP_AUTH_TOKEN", ""),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects store kinds and remote settings that cannot be wired.
func (c *Config) Validate() error {
	for name, kind := range map[string]string{
		"BBN_CHAIN_STORE":    c.ChainStore,
		"BBN_CONTRACT_STORE": c.ContractStore,
	} {
		switch kind {
		case StoreMemory, StoreSQL:
		case StoreRedis:
			if c.RedisURL == "" {
				return fmt.Errorf("%s=redis requires REDIS_URL", name)
			}
		default:
			return fmt.Errorf("%s: unknown store %q", name, kind)
		}
	}
	if c.HostAddr != "" && c.HostPlugin != "" {
		return fmt.Errorf("BBN_HOST_ADDR and BBN_HOST_PLUGIN are mutually exclusive")
	}
	if c.BreakerMaxFailures < 1 {
		return fmt.Errorf("BBN_BREAKER_MAX_FAILURES must be positive, got %d", c.BreakerMaxFailures)
	}
	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// IsRemote reports whether queries go to an out-of-process host.
func (c *Config) IsRemote() bool {
	return c.HostAddr != "" || c.HostPlugin != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

// getListEnv splits a comma separated value, dropping blanks.
func getListEnv(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
