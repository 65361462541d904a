package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envVars = []string{
	"BBN_ENV", "LOG_LEVEL", "LOG_FORMAT", "BBN_CHAIN_ID",
	"DATABASE_URL", "SQLITE_PATH", "REDIS_URL", "BBN_STATE_FILE",
	"BBN_CHAIN_STORE", "BBN_CONTRACT_STORE",
	"BBN_GRPC_ADDR", "BBN_HOST_ADDR", "BBN_HOST_PLUGIN", "BBN_CAPABILITIES",
	"BBN_BREAKER_MAX_FAILURES", "BBN_BREAKER_TIMEOUT", "BBN_QUERY_TIMEOUT",
	"BBN_SCHEMA_DIR", "MCP_ADDR", "MCP_AUTH_TOKEN",
}

// clearEnv blanks every variable Load reads; t.Setenv restores them afterwards.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, v := range envVars {
		t.Setenv(v, "")
	}
}

func TestLoad_DefaultValues(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.AppEnv)
	assert.True(t, cfg.IsDevelopment())
	assert.False(t, cfg.IsProduction())
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, StoreMemory, cfg.ChainStore)
	assert.Equal(t, StoreMemory, cfg.ContractStore)
	assert.Equal(t, []string{"iterator", "staking", "babylon"}, cfg.Capabilities)
	assert.Equal(t, 5, cfg.BreakerMaxFailures)
	assert.Equal(t, 30*time.Second, cfg.BreakerTimeout)
	assert.Equal(t, 10*time.Second, cfg.QueryTimeout)
	assert.Equal(t, "schema", cfg.SchemaDir)
	assert.False(t, cfg.IsRemote())
}

func TestLoad_CustomValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("BBN_ENV", "production")
	t.Setenv("BBN_CHAIN_STORE", "SQL")
	t.Setenv("BBN_CONTRACT_STORE", "redis")
	t.Setenv("REDIS_URL", "redis://localhost:6379/1")
	t.Setenv("BBN_CAPABILITIES", " iterator , babylon,,")
	t.Setenv("BBN_BREAKER_TIMEOUT", "2s")
	t.Setenv("BBN_HOST_ADDR", "10.0.0.1:9090")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, StoreSQL, cfg.ChainStore)
	assert.Equal(t, StoreRedis, cfg.ContractStore)
	assert.Equal(t, []string{"iterator", "babylon"}, cfg.Capabilities)
	assert.Equal(t, 2*time.Second, cfg.BreakerTimeout)
	assert.True(t, cfg.IsRemote())
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	clearEnv(t)
	t.Setenv("BBN_BREAKER_MAX_FAILURES", "many")
	t.Setenv("BBN_QUERY_TIMEOUT", "soon")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.BreakerMaxFailures)
	assert.Equal(t, 10*time.Second, cfg.QueryTimeout)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"unknown store", func(c *Config) { c.ChainStore = "etcd" }, `BBN_CHAIN_STORE: unknown store "etcd"`},
		{"redis without url", func(c *Config) { c.ContractStore = StoreRedis }, "BBN_CONTRACT_STORE=redis requires REDIS_URL"},
		{"two remotes", func(c *Config) { c.HostAddr = "a:1"; c.HostPlugin = "/bin/host" }, "mutually exclusive"},
		{"breaker", func(c *Config) { c.BreakerMaxFailures = 0 }, "must be positive"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{ChainStore: StoreMemory, ContractStore: StoreMemory, BreakerMaxFailures: 1}
			require.NoError(t, cfg.Validate())
			tt.mutate(cfg)
			assert.ErrorContains(t, cfg.Validate(), tt.wantErr)
		})
	}
}
