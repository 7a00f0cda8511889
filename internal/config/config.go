// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package config loads the site configuration from LANDING_* environment variables.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// knownWeakSecrets contains example secrets that must never be deployed.
var knownWeakSecrets = []string{
	"change-me-to-32-byte-secret-key!",
	"REPLACE_WITH_YOUR_OWN_SECRET_KEY!",
}

// Config holds the application configuration loaded from environment variables.
type Config struct {
	ServerHost string `env:"LANDING_SERVER_HOST" envDefault:"localhost"`
	ServerPort int    `env:"LANDING_SERVER_PORT" envDefault:"8080"`
	Env        string `env:"LANDING_ENV" envDefault:"development"`
	LogLevel   string `env:"LANDING_LOG_LEVEL" envDefault:"info"`
	LogFormat  string `env:"LANDING_LOG_FORMAT" envDefault:"text"` // text or json

	// CSRFSecret keys the cross-origin protection middleware.
	CSRFSecret string `env:"LANDING_CSRF_SECRET,required"`

	// Contact endpoints are limited per client IP.
	ContactRateLimit float64 `env:"LANDING_CONTACT_RATE_LIMIT" envDefault:"5"`
	ContactRateBurst int     `env:"LANDING_CONTACT_RATE_BURST" envDefault:"20"`

	// Page sessions idle longer than PageSessionTTL are swept on SweepSchedule.
	PageSessionTTL time.Duration `env:"LANDING_PAGE_SESSION_TTL" envDefault:"30m"`
	SweepSchedule  string        `env:"LANDING_SWEEP_SCHEDULE" envDefault:"@every 1m"`
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// MinCSRFSecretLength is the minimum length of LANDING_CSRF_SECRET.
const MinCSRFSecretLength = 32

// ErrInvalidConfig wraps every validation failure returned by Load.
var ErrInvalidConfig = errors.New("invalid configuration")

// Load parses environment variables and returns a Config struct.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	if !hasMinimumEntropy(cfg.CSRFSecret) {
		slog.Warn("LANDING_CSRF_SECRET has low character diversity; " +
			"consider generating a random secret with: openssl rand -base64 32")
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if len(c.CSRFSecret) < MinCSRFSecretLength {
		return fmt.Errorf("%w: LANDING_CSRF_SECRET must be at least %d bytes long, got %d bytes; "+
			"generate a secure secret with: openssl rand -base64 32",
			ErrInvalidConfig, MinCSRFSecretLength, len(c.CSRFSecret))
	}
	for _, weak := range knownWeakSecrets {
		if c.CSRFSecret == weak {
			return fmt.Errorf("%w: LANDING_CSRF_SECRET is a known default value and must not be used",
				ErrInvalidConfig)
		}
	}

	switch c.Env {
	case "development", "production":
	default:
		return fmt.Errorf("%w: LANDING_ENV must be development or production, got %q", ErrInvalidConfig, c.Env)
	}

	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("%w: LANDING_LOG_FORMAT must be text or json, got %q", ErrInvalidConfig, c.LogFormat)
	}

	if c.ServerPort <= 0 || c.ServerPort > 65535 {
		return fmt.Errorf("%w: LANDING_SERVER_PORT out of range: %d", ErrInvalidConfig, c.ServerPort)
	}
	if c.ContactRateLimit <= 0 || c.ContactRateBurst <= 0 {
		return fmt.Errorf("%w: contact rate limit and burst must be positive", ErrInvalidConfig)
	}
	if c.PageSessionTTL <= 0 {
		return fmt.Errorf("%w: LANDING_PAGE_SESSION_TTL must be positive", ErrInvalidConfig)
	}
	return nil
}

// hasMinimumEntropy checks that a secret contains at least 3 character classes
// (lowercase, uppercase, digits, special characters).
func hasMinimumEntropy(s string) bool {
	charTypes := 0
	if strings.ContainsAny(s, "abcdefghijklmnopqrstuvwxyz") {
		charTypes++
	}
	if strings.ContainsAny(s, "ABCDEFGHIJKLMNOPQRSTUVWXYZ") {
		charTypes++
	}
	if strings.ContainsAny(s, "0123456789") {
		charTypes++
	}
	if strings.ContainsAny(s, "!@#$%^&*()-_=+[]{}|;:,.<>?/~`'\"\\") {
		charTypes++
	}
	return charTypes >= 3
}
