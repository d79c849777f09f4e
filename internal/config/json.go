package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/authority/internal/flagx"
	"github.com/dmitrijs2005/authority/internal/timex"
)

// jsonConfig is the on-disk shape. Pointer fields distinguish "absent" from
// zero so a partial file only overrides what it names.
type jsonConfig struct {
	SessionSecret    *string         `json:"session_secret"`
	SessionValidity  *timex.Duration `json:"session_validity"`
	ResetRequestTTL  *timex.Duration `json:"reset_request_ttl"`
	EvictionInterval *timex.Duration `json:"eviction_interval"`
	LogLevel         *string         `json:"log_level"`
	LogFormat        *string         `json:"log_format"`
}

// parseJSON overlays values from the file named by -c/-config, if any.
func parseJSON(cfg *Config, args []string) error {
	path := flagx.ConfigPath(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	var c jsonConfig
	if err := json.Unmarshal(data, &c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	if c.SessionSecret != nil {
		cfg.SessionSecret = *c.SessionSecret
	}
	if c.SessionValidity != nil {
		cfg.SessionValidity = c.SessionValidity.Duration
	}
	if c.ResetRequestTTL != nil {
		cfg.ResetRequestTTL = c.ResetRequestTTL.Duration
	}
	if c.EvictionInterval != nil {
		cfg.EvictionInterval = c.EvictionInterval.Duration
	}
	if c.LogLevel != nil {
		cfg.LogLevel = *c.LogLevel
	}
	if c.LogFormat != nil {
		cfg.LogFormat = *c.LogFormat
	}
	return nil
}
