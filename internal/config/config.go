// Package config loads process configuration from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/robalobadob/wordmaster/internal/words"
)

// Config is everything the server reads from its environment.
type Config struct {
	Port         string `env:"PORT"          envDefault:"5175"`
	LogLevel     string `env:"LOG_LEVEL"     envDefault:"info"`
	LogPretty    bool   `env:"LOG_PRETTY"`
	ClientOrigin string `env:"CLIENT_ORIGIN" envDefault:"http://localhost:5173"`

	AnswersFile string `env:"WORDS_ANSWERS_FILE"`
	AllowedFile string `env:"WORDS_ALLOWED_FILE"`
	MaxGuesses  int    `env:"MAX_GUESSES" envDefault:"6"`

	JWTSecret        string `env:"JWT_SECRET"        envDefault:"dev_secret_change_me"`
	PlayerTokenDays  int    `env:"PLAYER_TOKEN_DAYS" envDefault:"180"`
	ProductionCookie bool   `env:"SECURE_COOKIES"`

	SessionIdleTTL    time.Duration `env:"SESSION_IDLE_TTL"    envDefault:"2h"`
	SessionSweepEvery time.Duration `env:"SESSION_SWEEP_EVERY" envDefault:"5m"`

	DailySalt        string `env:"DAILY_SALT"         envDefault:"local_dev_salt"`
	AllowFixedAnswer bool   `env:"ALLOW_FIXED_ANSWER"`

	GuessRate  float64 `env:"GUESS_RATE"  envDefault:"5"`
	GuessBurst int     `env:"GUESS_BURST" envDefault:"10"`
}

// Words returns the word list selection.
func (c Config) Words() words.Config {
	return words.Config{AnswersFile: c.AnswersFile, AllowedFile: c.AllowedFile}
}

// Load reads an optional .env file and then parses the environment.
func Load(envFiles ...string) (Config, error) {
	_ = godotenv.Load(envFiles...)
	return Parse()
}

// Parse parses the current environment without touching .env files.
func Parse() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.MaxGuesses < 1 {
		return Config{}, fmt.Errorf("MAX_GUESSES must be positive, got %d", cfg.MaxGuesses)
	}
	if cfg.PlayerTokenDays < 1 {
		return Config{}, fmt.Errorf("PLAYER_TOKEN_DAYS must be positive, got %d", cfg.PlayerTokenDays)
	}
	if cfg.GuessBurst < 1 {
		cfg.GuessBurst = 1
	}
	return cfg, nil
}
