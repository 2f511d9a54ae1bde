// Package twelvedata provides a client for the Twelve Data stock market API.
package twelvedata

import (
	"strings"
	"time"

	"stock_watchlist/internal/platform/config"
)

const defaultBaseURL = "https://api.twelvedata.com"

// Config holds configuration for the Twelve Data API client.
type Config struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

// NewConfig converts the application settings, filling defaults for empty fields.
func NewConfig(c config.TwelveData) Config {
	cfg := Config{
		APIKey:  c.APIKey,
		BaseURL: strings.TrimRight(c.BaseURL, "/"),
		Timeout: c.Timeout,
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return cfg
}

// Enabled reports whether an API key is configured. Without one the provider is not wired.
func (c Config) Enabled() bool {
	return c.APIKey != ""
}
