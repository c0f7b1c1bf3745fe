package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSyncdConfigFromEnv(t *testing.T) {
	t.Setenv("MINT_SYNC_DATABASE_HOST", "db.internal")
	t.Setenv("MINT_SYNC_DATABASE_USER", "sync")
	t.Setenv("MINT_SYNC_DATABASE_PASSWORD", "secret")
	t.Setenv("MINT_SYNC_DATABASE_DBNAME", "mintsync")
	t.Setenv("MINT_SYNC_ETHEREUM_RPC_URL", "wss://eth.example.com")
	t.Setenv("MINT_SYNC_ETHEREUM_CHAIN_ID", "eip155:11155111")
	t.Setenv("MINT_SYNC_ETHEREUM_CONTRACT_ADDRESS", "0x1111111111111111111111111111111111111111")
	t.Setenv("MINT_SYNC_ETHEREUM_START_BLOCK", "4200000")
	t.Setenv("MINT_SYNC_SYNC_POLL_INTERVAL", "2s")

	cfg, err := LoadSyncdConfig("", t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, "wss://eth.example.com", cfg.Ethereum.RPCURL)
	assert.Equal(t, uint64(4200000), cfg.Ethereum.StartBlock)
	assert.Equal(t, 2*time.Second, cfg.Sync.PollInterval)

	// defaults
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "disable", cfg.Database.SSLMode)
	assert.Equal(t, uint64(12), cfg.Ethereum.Confirmations)
	assert.Equal(t, uint64(1000), cfg.Ethereum.MaxBlockRange)
	assert.Equal(t, 60*time.Second, cfg.Sync.MaxBackoff)
	assert.Equal(t, uint64(12), cfg.Sync.FinalityDepth)
}

func TestLoadSyncdConfigRequiresRPCURL(t *testing.T) {
	t.Setenv("MINT_SYNC_ETHEREUM_CONTRACT_ADDRESS", "0x1111111111111111111111111111111111111111")

	_, err := LoadSyncdConfig("", t.TempDir())
	assert.ErrorContains(t, err, "rpc_url")
}

func TestLoadSyncdConfigRejectsUnknownChain(t *testing.T) {
	t.Setenv("MINT_SYNC_ETHEREUM_RPC_URL", "wss://eth.example.com")
	t.Setenv("MINT_SYNC_ETHEREUM_CONTRACT_ADDRESS", "0x1111111111111111111111111111111111111111")
	t.Setenv("MINT_SYNC_ETHEREUM_CHAIN_ID", "eip155:999")

	_, err := LoadSyncdConfig("", t.TempDir())
	assert.ErrorContains(t, err, "chain id")
}

func TestLoadAPIConfigDefaults(t *testing.T) {
	cfg, err := LoadAPIConfig("", t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 10, cfg.Server.ReadTimeout)
	assert.Equal(t, 120, cfg.Server.IdleTimeout)
}

func TestLoadAPIConfigAuthFromEnv(t *testing.T) {
	t.Setenv("MINT_SYNC_AUTH_API_KEYS", "key-one,key-two")
	t.Setenv("MINT_SYNC_SERVER_PORT", "9090")

	cfg, err := LoadAPIConfig("", t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, []string{"key-one", "key-two"}, cfg.Auth.APIKeys)
}

func TestDatabaseDSN(t *testing.T) {
	db := DatabaseConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "sync",
		Password: "secret",
		DBName:   "mintsync",
		SSLMode:  "disable",
	}

	assert.Equal(t,
		"host=localhost port=5432 user=sync password=secret dbname=mintsync sslmode=disable",
		db.DSN())
}
