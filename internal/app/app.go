// Package app assembles what the gitcg binaries share: logger, card data,
// decks, rules, match store and the match runner.
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/peterkuimelis/gitcg/internal/config"
	"github.com/peterkuimelis/gitcg/internal/content"
	"github.com/peterkuimelis/gitcg/internal/game"
	"github.com/peterkuimelis/gitcg/internal/logger"
	"github.com/peterkuimelis/gitcg/internal/match"
	"github.com/peterkuimelis/gitcg/internal/store"
)

// App is a configured process.
type App struct {
	Config   *config.Config
	Logger   *slog.Logger
	Registry *game.Registry
	Decks    content.DeckFile
	Rules    game.GameConfig
	Store    store.MatchStore
	Runner   *match.Runner
}

// New builds an App from cfg, logging to logOut.
func New(ctx context.Context, cfg *config.Config, logOut io.Writer) (*App, error) {
	l := logger.SetupWriter(cfg, logOut)

	decks, err := content.ReadDeckFile(cfg.DeckFile)
	if err != nil {
		return nil, fmt.Errorf("read decks: %w", err)
	}
	if len(decks.Decks) == 0 {
		return nil, fmt.Errorf("deck file %q has no decks", cfg.DeckFile)
	}

	rules, err := Rules(cfg)
	if err != nil {
		return nil, err
	}

	st, err := store.Open(ctx, cfg, l)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.StoreKind, err)
	}

	reg := content.NewRegistry()
	l.Debug("app ready", "store", cfg.StoreKind, "decks", len(decks.Decks), "max_rounds", rules.MaxRounds)
	return &App{
		Config:   cfg,
		Logger:   l,
		Registry: reg,
		Decks:    decks,
		Rules:    rules,
		Store:    st,
		Runner:   &match.Runner{Registry: reg, Rules: rules, Store: st, Logger: l},
	}, nil
}

// Rules resolves the match rules. A rules file replaces the defaults and
// its own round limit; the seed always comes from the environment.
func Rules(cfg *config.Config) (game.GameConfig, error) {
	if cfg.RulesFile == "" {
		return cfg.Rules(), nil
	}
	rules, err := content.LoadRules(cfg.RulesFile)
	if err != nil {
		return game.GameConfig{}, fmt.Errorf("load rules: %w", err)
	}
	rules.RandomSeed = cfg.Seed
	return rules, nil
}

// Close releases the store.
func (a *App) Close() error {
	return a.Store.Close()
}
