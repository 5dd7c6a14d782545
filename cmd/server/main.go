package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/manifold-labs/imbalance/internal/analysisapi"
	"github.com/manifold-labs/imbalance/internal/config"
	"github.com/manifold-labs/imbalance/internal/utils/logger"
)

func main() {
	logger.Init()
	log.Info().Msg("Starting analysis API...")

	cfg, err := config.LoadConfig(context.Background())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load environment configuration")
	}

	s, err := analysisapi.NewServer(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build analysis API")
	}

	// setup signal handling for graceful shutdown before starting the server
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Info().Msg("shutdown signal received, stopping server")
		if err := s.Shutdown(); err != nil {
			log.Error().Err(err).Msg("server shutdown failed")
		}
	}()

	// Listen returns nil once Shutdown drains the connections.
	if err := s.Start(); err != nil {
		log.Fatal().Err(err).Msg("server stopped with error")
	}
	log.Info().Msg("server stopped")
}
