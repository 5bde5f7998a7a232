// Package nomics provides a client for the Nomics currency ticker API.
package nomics

import (
	"log/slog"
	"os"
	"strconv"
	"time"
)

const (
	// DefaultBaseURL is the public Nomics API endpoint.
	DefaultBaseURL = "https://api.nomics.com/v1/"
	// DefaultTimeout bounds a single HTTP attempt.
	DefaultTimeout = 10 * time.Second
)

// Config holds configuration for the Nomics API client.
type Config struct {
	APIKey    string        // API key sent as the "key" query parameter
	BaseURL   string        // Base URL for the API (e.g., "https://api.nomics.com/v1/")
	Timeout   time.Duration // HTTP request timeout per attempt
	RateLimit int           // Max outbound requests per minute; 0 disables pacing
	Retry     RetryConfig
}

// RetryConfig controls how HTTP 429 responses are retried.
type RetryConfig struct {
	MaxRetries      uint64        // additional attempts after the first
	InitialInterval time.Duration // wait before the first retry
	Multiplier      float64       // growth factor between waits
}

// DefaultRetryConfig retries 3 times, waiting 1s, 2s, then 4s.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:      3,
		InitialInterval: time.Second,
		Multiplier:      2,
	}
}

// LoadConfig loads Nomics configuration from environment variables.
func LoadConfig() Config {
	cfg := Config{
		APIKey:  os.Getenv("NOMICS_API_KEY"),
		BaseURL: os.Getenv("NOMICS_BASE_URL"),
		Timeout: DefaultTimeout,
		Retry:   DefaultRetryConfig(),
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}

	if v := os.Getenv("NOMICS_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			slog.Warn("ignoring invalid NOMICS_TIMEOUT", "value", v)
		} else {
			cfg.Timeout = d
		}
	}

	if v := os.Getenv("NOMICS_RATE_LIMIT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			slog.Warn("ignoring invalid NOMICS_RATE_LIMIT", "value", v)
		} else {
			cfg.RateLimit = n
		}
	}

	return cfg
}
