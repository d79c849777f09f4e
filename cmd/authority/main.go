package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/authority/internal/authority"
	"github.com/dmitrijs2005/authority/internal/buildinfo"
	"github.com/dmitrijs2005/authority/internal/cli"
	"github.com/dmitrijs2005/authority/internal/config"
	"github.com/dmitrijs2005/authority/internal/logging"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	cfg, err := config.LoadConfig(os.Args[1:])
	if err != nil {
		log.Fatalf("%v", err)
	}

	logger := logging.New(cfg.LogFormat, cfg.LogLevel, os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store := authority.New(
		authority.WithLogger(logger),
		authority.WithResetTTL(cfg.ResetRequestTTL),
	)

	if cfg.EvictionInterval > 0 {
		go store.RunEvictor(ctx, cfg.EvictionInterval)
	}

	app := cli.NewApp(store, cfg, logger, os.Stdin, os.Stdout)
	app.Run(ctx)

}
