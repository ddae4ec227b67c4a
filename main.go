package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordmaster/internal/config"
	"github.com/robalobadob/wordmaster/internal/httpserver"
	"github.com/robalobadob/wordmaster/internal/store"
	"github.com/robalobadob/wordmaster/internal/words"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	dict, err := words.Load(cfg.Words())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load word lists")
	}
	a, g := dict.Stats()
	log.Info().Int("answers", a).Int("allowed", g).Msg("word lists loaded")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	mem := store.NewMemoryStore()
	go store.RunJanitor(ctx, mem, cfg.SessionSweepEvery, cfg.SessionIdleTTL)

	srv := httpserver.New(cfg, dict, mem)
	log.Info().Str("port", cfg.Port).Msg("starting wordmaster server")
	if err := srv.Start(ctx, ":"+cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}
