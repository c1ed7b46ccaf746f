// Package config loads the top bar server settings from the environment.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// DefaultPort is the HTTP port when none is configured.
const DefaultPort = 9876

// Config holds the server settings.
type Config struct {
	Port int `env:"TOPBAR_PORT" envDefault:"9876"`

	// LogoutURL is the base URL of the service exposing /api/logout.
	LogoutURL string `env:"TOPBAR_LOGOUT_URL" envDefault:"http://localhost:3000"`

	// WalletRPCURL is the wallet JSON-RPC endpoint. Empty means no wallet
	// provider is installed.
	WalletRPCURL string `env:"TOPBAR_WALLET_RPC_URL"`

	// MaxMounts bounds the number of live mounts kept in memory.
	MaxMounts int `env:"TOPBAR_MAX_MOUNTS" envDefault:"1024"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

// Load parses the configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks the settings for values the server cannot run with.
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	if c.LogoutURL == "" {
		return fmt.Errorf("logout url is required")
	}
	if c.MaxMounts <= 0 {
		return fmt.Errorf("max mounts must be positive: %d", c.MaxMounts)
	}
	return nil
}
