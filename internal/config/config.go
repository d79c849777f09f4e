// Package config loads runtime settings for the account authority CLI.
//
// Sources, later ones overriding earlier ones:
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. A .env file in the working directory, if present (loaded into the
//     process environment without overriding variables already set).
//  3. An optional JSON file selected with -c or -config.
//  4. AUTHORITY_* environment variables.
//  5. Command-line flags.
//
// JSON schema (durations accept "72h" or integer nanoseconds):
//
//	{
//	  "session_secret": "change-me",
//	  "session_validity": "30m",
//	  "reset_request_ttl": "72h",
//	  "eviction_interval": "0s",
//	  "log_level": "info",
//	  "log_format": "text"
//	}
package config

import (
	"time"

	"github.com/dmitrijs2005/authority/internal/common"
)

// Config holds runtime settings.
//
// Fields:
//   - SessionSecret: HMAC key for CLI session tokens (HS256). Override in real use.
//   - SessionValidity: lifetime of a CLI session token.
//   - ResetRequestTTL: validity window of password reset requests.
//   - EvictionInterval: period of the expired-request sweep; 0 disables it.
//   - LogLevel / LogFormat: slog level name and "text" or "json".
type Config struct {
	SessionSecret    string        `env:"AUTHORITY_SESSION_SECRET"`
	SessionValidity  time.Duration `env:"AUTHORITY_SESSION_VALIDITY"`
	ResetRequestTTL  time.Duration `env:"AUTHORITY_RESET_TTL"`
	EvictionInterval time.Duration `env:"AUTHORITY_EVICTION_INTERVAL"`
	LogLevel         string        `env:"AUTHORITY_LOG_LEVEL"`
	LogFormat        string        `env:"AUTHORITY_LOG_FORMAT"`
}

// LoadDefaults populates c with development defaults.
func (c *Config) LoadDefaults() {
	c.SessionSecret = "secretKey"
	c.SessionValidity = 30 * time.Minute
	c.ResetRequestTTL = common.DefaultResetRequestTTL
	c.EvictionInterval = 0
	c.LogLevel = "info"
	c.LogFormat = "text"
}

// LoadConfig builds a Config from every source for the given command-line
// arguments (usually os.Args[1:]).
func LoadConfig(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}
	if err := parseJSON(cfg, args); err != nil {
		return nil, err
	}
	if err := parseEnv(cfg); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	return cfg, nil
}
