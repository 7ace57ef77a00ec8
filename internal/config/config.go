// Package config loads process configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/peterkuimelis/gitcg/internal/game"
)

// Store kinds accepted in GITCG_STORE.
const (
	StoreNone   = "none"
	StoreSQLite = "sqlite"
	StoreRedis  = "redis"
)

type Config struct {
	Environment string     `env:"GITCG_ENV" envDefault:"development"`
	LogLevel    slog.Level `env:"GITCG_LOG_LEVEL" envDefault:"info"`
	ListenAddr  string     `env:"GITCG_LISTEN_ADDR" envDefault:":9000"`
	WebAddr     string     `env:"GITCG_WEB_ADDR" envDefault:":8080"`
	StoreKind   string     `env:"GITCG_STORE" envDefault:"none"`
	SQLitePath  string     `env:"GITCG_SQLITE_PATH" envDefault:"gitcg.db"`
	RedisAddr   string     `env:"GITCG_REDIS_ADDR" envDefault:"localhost:6379"`
	Seed        int64      `env:"GITCG_SEED"`
	MaxRounds   int        `env:"GITCG_MAX_ROUNDS" envDefault:"15"`
	DeckFile    string     `env:"GITCG_DECK_FILE"`
	RulesFile   string     `env:"GITCG_RULES_FILE"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Load reads an optional dotenv file and then the environment. Variables
// already set in the environment win over the file. A missing file is not
// an error.
func Load(dotenv string) (*Config, error) {
	if dotenv != "" {
		if err := godotenv.Load(dotenv); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", dotenv, err)
		}
	}
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the values env parsing cannot.
func (c *Config) Validate() error {
	switch c.StoreKind {
	case StoreNone, StoreSQLite, StoreRedis:
	default:
		return fmt.Errorf("unknown store %q", c.StoreKind)
	}
	if c.MaxRounds < 0 {
		return fmt.Errorf("max rounds must not be negative, got %d", c.MaxRounds)
	}
	return nil
}

// Rules returns the default game rules with the configured seed and round
// limit applied.
func (c *Config) Rules() game.GameConfig {
	rules := game.DefaultGameConfig()
	rules.RandomSeed = c.Seed
	if c.MaxRounds > 0 {
		rules.MaxRounds = c.MaxRounds
	}
	return rules
}
