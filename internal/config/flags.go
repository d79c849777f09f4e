package config

import (
	"flag"
	"io"

	"github.com/dmitrijs2005/authority/internal/flagx"
)

// parseFlags overlays command-line flags:
//
//	-s string     session token secret
//	-v duration   session validity (e.g. 30m)
//	-r duration   reset request TTL (e.g. 72h)
//	-e duration   expired-request eviction interval, 0 disables
//	-l string     log level: debug, info, warn, error
//	-f string     log format: text or json
func parseFlags(cfg *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{"-s", "-v", "-r", "-e", "-l", "-f"})

	fs := flag.NewFlagSet("authority", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.SessionSecret, "s", cfg.SessionSecret, "session token secret")
	fs.DurationVar(&cfg.SessionValidity, "v", cfg.SessionValidity, "session validity")
	fs.DurationVar(&cfg.ResetRequestTTL, "r", cfg.ResetRequestTTL, "password reset request TTL")
	fs.DurationVar(&cfg.EvictionInterval, "e", cfg.EvictionInterval, "expired reset request eviction interval (0 disables)")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")
	fs.StringVar(&cfg.LogFormat, "f", cfg.LogFormat, "log format (text|json)")

	return fs.Parse(args)
}
