// Package config defines environment configuration structs and loaders.
package config

import (
	"context"
	"strings"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type AppConfig struct {
	Server  ServerEnvConfig
	Client  ClientEnvConfig
	Compute ComputeEnvConfig

	Environment string `env:"ENVIRONMENT, default=dev"`
}

func LoadConfig(ctx context.Context) (*AppConfig, error) {
	cfg := &AppConfig{}
	if err := envconfig.Process(ctx, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ServerEnvConfig configures the analysis API server.
type ServerEnvConfig struct {
	Host          string `env:"SERVER_HOST, default=0.0.0.0"`
	Port          int    `env:"SERVER_PORT, default=9281"`
	BodySizeLimit int    `env:"SERVER_BODY_LIMIT, default=67108864"`
	APIKey        string `env:"SERVER_API_KEY"`
	CacheSize     int    `env:"NEIGHBOR_CACHE_SIZE, default=128"`
}

// ClientEnvConfig configures the analysis API client.
type ClientEnvConfig struct {
	BaseURL       string        `env:"ANALYSIS_API_URL, default=http://127.0.0.1:9281"`
	ClientTimeout time.Duration `env:"CLIENT_TIMEOUT, default=120s"`
	APIKey        string        `env:"ANALYSIS_API_KEY"`
	Compress      bool          `env:"ANALYSIS_API_COMPRESS, default=false"`
}

// ComputeEnvConfig carries the defaults for rank and imbalance computations.
type ComputeEnvConfig struct {
	K       int     `env:"IMBALANCE_K, default=1"`
	MaxK    int     `env:"IMBALANCE_MAXK, default=100"`
	Metric  string  `env:"IMBALANCE_METRIC, default=euclidean"`
	Workers int     `env:"IMBALANCE_WORKERS, default=0"`
	Seed    *uint64 `env:"IMBALANCE_SEED"`
}

// LimitsConfig bounds the work a single compare request may demand. The
// neighbor search is quadratic in the point count, so the server refuses
// inputs beyond these sizes instead of grinding.
type LimitsConfig struct {
	MaxPoints   int
	MaxFeatures int
	MaxK        int
}

var (
	DevLimitsConfig = &LimitsConfig{
		MaxPoints:   20000,
		MaxFeatures: 512,
		MaxK:        128,
	}
	TestLimitsConfig = &LimitsConfig{
		MaxPoints:   5000,
		MaxFeatures: 128,
		MaxK:        32,
	}

	ProdLimitsConfig = &LimitsConfig{
		MaxPoints:   50000,
		MaxFeatures: 1024,
		MaxK:        256,
	}
)

func NewLimitsConfig(environment string) *LimitsConfig {
	switch strings.ToLower(environment) {
	case "dev":
		return DevLimitsConfig
	case "test":
		return TestLimitsConfig
	case "prod":
		return ProdLimitsConfig
	}

	return DevLimitsConfig
}
