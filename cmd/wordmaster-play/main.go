// Command wordmaster-play plays WordMaster in the terminal.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordmaster/internal/config"
	"github.com/robalobadob/wordmaster/internal/daily"
	"github.com/robalobadob/wordmaster/internal/game"
	"github.com/robalobadob/wordmaster/internal/play"
	"github.com/robalobadob/wordmaster/internal/words"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	wordsFile := flag.String("words", "", "word list file used for answers and guesses (default: built-in list)")
	maxGuesses := flag.Int("max-guesses", cfg.MaxGuesses, "number of guesses per game")
	dailyWord := flag.Bool("daily", false, "play the word of the day")
	flag.Parse()

	wc := cfg.Words()
	if *wordsFile != "" {
		wc = words.Config{AllowedFile: *wordsFile}
	}
	dict, err := words.Load(wc)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load word list")
	}

	opts := []game.Option{game.WithMaxGuesses(*maxGuesses)}
	if *dailyWord {
		key, word := daily.Answer(dict, time.Now(), cfg.DailySalt)
		log.Info().Str("date", key).Msg("playing the daily word")
		opts = append(opts, game.WithAnswer(word))
	}
	g, err := game.New(dict, opts...)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to start game")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := play.Run(ctx, g, os.Stdin, os.Stdout); err != nil && ctx.Err() == nil {
		log.Fatal().Err(err).Msg("terminal session failed")
	}
}
