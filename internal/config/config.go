// Package config loads application configuration from environment variables,
// with an optional .env file for local development.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all app configuration.
type Config struct {
	// Server
	HTTPAddr string

	// Chain RPC
	RPCURL        string
	RPCTimeout    time.Duration
	RPCMaxRetries int

	// Price aggregator
	MarketBaseURL string

	// Analysis
	TxWindow int // most-recent signatures fetched per analysis

	// Optional Redis cache for ATH estimates. Empty means in-memory.
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Optional persistence. Empty DSNs disable the corresponding store.
	PostgresDSN   string
	ClickHouseDSN string
}

// Load reads configuration from the environment. A .env file in the working
// directory is merged in when present; real environment variables win.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		HTTPAddr: getEnv("HTTP_ADDR", ":8080"),

		RPCURL:        getEnv("SOLANA_RPC_URL", "https://api.mainnet-beta.solana.com"),
		RPCTimeout:    getEnvAsDuration("SOLANA_RPC_TIMEOUT", 30*time.Second),
		RPCMaxRetries: getEnvAsInt("SOLANA_RPC_MAX_RETRIES", 3),

		MarketBaseURL: getEnv("MARKET_BASE_URL", ""),

		TxWindow: getEnvAsInt("TX_WINDOW", 100),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),

		PostgresDSN:   getEnv("POSTGRES_DSN", ""),
		ClickHouseDSN: getEnv("CLICKHOUSE_DSN", ""),
	}
}

// Helper functions for parsing environment variables
func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value, err := strconv.Atoi(getEnv(key, "")); err == nil {
		return value
	}
	return defaultVal
}

func getEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	if value, err := time.ParseDuration(getEnv(key, "")); err == nil {
		return value
	}
	return defaultVal
}
