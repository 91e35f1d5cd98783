package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"streaming-analytics/internal/aggregate"
	"streaming-analytics/internal/config"
	"streaming-analytics/internal/logging"
	"streaming-analytics/internal/pipeline"
	"streaming-analytics/internal/store"
)

func main() {
	var exitCode int
	defer func() {
		os.Exit(exitCode)
	}()

	configPath := flag.String("config", "config.yaml", "path to configuration file")
	timeout := flag.Duration("timeout", 10*time.Minute, "overall pipeline deadline")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		logging.Error().Err(err).Msg("failed to load config")
		exitCode = 1
		return
	}
	logging.Init(logging.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format})
	log := logging.With("etl-runner")

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	ctx, cancelTimeout := context.WithTimeout(ctx, *timeout)
	defer cancelTimeout()

	st, err := store.Connect(ctx, cfg.Store.MongoURL, cfg.Store.Database)
	if err != nil {
		log.Error().Err(err).Msg("failed to connect to store")
		exitCode = 1
		return
	}
	// The connection is released regardless of pipeline outcome.
	defer func() {
		closeCtx, closeCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer closeCancel()
		if err := st.Close(closeCtx); err != nil {
			log.Warn().Err(err).Msg("failed to release store connection")
		}
	}()

	p := pipeline.New(cfg, st, aggregate.New(st))
	if err := p.Run(ctx); err != nil {
		log.Error().Err(err).Stringer("state", p.State()).Msg("pipeline run failed")
		exitCode = 1
		return
	}

	log.Info().Stringer("state", p.State()).Msg("pipeline run succeeded")
}
