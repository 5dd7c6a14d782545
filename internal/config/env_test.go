package config

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 9281, cfg.Server.Port)
	assert.Equal(t, 1, cfg.Compute.K)
	assert.Equal(t, 100, cfg.Compute.MaxK)
	assert.Equal(t, "euclidean", cfg.Compute.Metric)
	assert.Nil(t, cfg.Compute.Seed)
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "7777")
	t.Setenv("IMBALANCE_SEED", "42")
	t.Setenv("IMBALANCE_METRIC", "cosine")
	t.Setenv("CLIENT_TIMEOUT", "5s")

	cfg, err := LoadConfig(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 7777, cfg.Server.Port)
	require.NotNil(t, cfg.Compute.Seed)
	assert.Equal(t, uint64(42), *cfg.Compute.Seed)
	assert.Equal(t, "cosine", cfg.Compute.Metric)
	assert.Equal(t, 5*time.Second, cfg.Client.ClientTimeout)
}

func TestNewLimitsConfig(t *testing.T) {
	assert.Equal(t, TestLimitsConfig, NewLimitsConfig("TEST"))
	assert.Equal(t, ProdLimitsConfig, NewLimitsConfig("prod"))
	assert.Equal(t, DevLimitsConfig, NewLimitsConfig("something-else"))
}
