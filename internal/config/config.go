// Package config loads runtime configuration from the environment.
// A .env file in the working directory is read first when present;
// real environment variables win over it.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"ratecompare/internal/ratefeed"
)

// Config holds everything the binaries read from the environment.
// Per-run parameters (subject store, sizes, date ranges) stay on flags.
type Config struct {
	PostgresDSN   string
	ClickhouseDSN string

	RateFeedBaseURL     string
	RateFeedUser        string
	RateFeedPassword    string
	RateFeedHourlyLimit int
	RateFeedMaxRetries  int
	DefaultCountry      string

	OutputDir  string
	ServerAddr string
}

// Load reads configuration from the environment, preferring real
// environment variables over the optional .env file.
func Load() Config {
	// Missing .env is fine; system env vars are enough.
	_ = godotenv.Load()

	return Config{
		PostgresDSN:   os.Getenv("POSTGRES_DSN"),
		ClickhouseDSN: os.Getenv("CLICKHOUSE_DSN"),

		RateFeedBaseURL:     os.Getenv("RATEFEED_BASE_URL"),
		RateFeedUser:        os.Getenv("RATEFEED_USER"),
		RateFeedPassword:    os.Getenv("RATEFEED_PASSWORD"),
		RateFeedHourlyLimit: envInt("RATEFEED_HOURLY_LIMIT", ratefeed.DefaultHourlyLimit),
		RateFeedMaxRetries:  envInt("RATEFEED_MAX_RETRIES", 3),
		DefaultCountry:      envStr("RATEFEED_COUNTRY", "United States"),

		OutputDir:  envStr("OUTPUT_DIR", "output"),
		ServerAddr: envStr("SERVER_ADDR", ":8080"),
	}
}

// RequireDatabases returns an error unless both DSNs are set.
func (c Config) RequireDatabases() error {
	if c.PostgresDSN == "" {
		return fmt.Errorf("POSTGRES_DSN is required")
	}
	if c.ClickhouseDSN == "" {
		return fmt.Errorf("CLICKHOUSE_DSN is required")
	}
	return nil
}

// RequireRateFeed returns an error unless the vendor API credentials are set.
func (c Config) RequireRateFeed() error {
	if c.RateFeedBaseURL == "" {
		return fmt.Errorf("RATEFEED_BASE_URL is required")
	}
	if c.RateFeedUser == "" || c.RateFeedPassword == "" {
		return fmt.Errorf("RATEFEED_USER and RATEFEED_PASSWORD are required")
	}
	return nil
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
