package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"astrox/internal/infrastructure/config"
	"astrox/internal/infrastructure/logger"
	"astrox/internal/infrastructure/svc"
)

func main() {
	configPath := flag.String("config", "configs/config.toml", "path to config.toml")
	mode := flag.String("mode", "", "natal | synastry | composite | transit (overrides app.mode)")
	flag.Parse()

	logger.Setup("info")

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Str("config", *configPath).Msg("load config failed")
	}
	logger.Setup(cfg.App.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sc, err := svc.New(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("service context initialization failed")
	}
	defer sc.Close()

	log.Info().
		Str("config", *configPath).
		Int("subjects", len(cfg.Subjects)).
		Str("context", cfg.ChartContext().Key()).
		Msg("astrox started")

	if err := sc.Run(*mode); err != nil {
		log.Error().Err(err).Msg("report failed")
		stop()
		_ = sc.Close()
		os.Exit(1)
	}
}
