package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"taxdesk/internal/config"
	"taxdesk/internal/generation"
	"taxdesk/internal/logging"
	"taxdesk/internal/mediator"
	"taxdesk/internal/prompt"
	"taxdesk/internal/server"
)

func main() {
	cfg := config.Load()
	logging.Setup(cfg.LogLevel, cfg.LogFormat)
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tmpl, err := prompt.Load(cfg.PromptSpecFile)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load prompt spec")
	}
	gen, err := generation.New(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create generator")
	}
	log.Info().Str("provider", cfg.Provider).Str("model", cfg.Model).Msg("generation backend ready")

	m := mediator.New(tmpl, gen, mediator.SettingsFor(tmpl))
	s := server.NewServer(cfg, m, tmpl.Catalogue())
	if err := s.Run(ctx, ":"+cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
