package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.App.LogLevel)
	assert.Equal(t, "https://api.etherscan.io/api", cfg.Etherscan.MainnetURL)
	assert.Equal(t, "mainnet", cfg.Query.Network)
	assert.False(t, cfg.Query.Trace)
	assert.Equal(t, ".", cfg.Export.OutputDir)
	assert.Equal(t, 1000, cfg.Export.ChunkSize)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("QUERY_ADDRESS", "0xc0ffee0000000000000000000000000000000001")
	t.Setenv("ETHERSCAN_API_KEY", "from-env")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0xc0ffee0000000000000000000000000000000001", cfg.Query.Address)
	assert.Equal(t, "from-env", cfg.Etherscan.APIKey)
}
