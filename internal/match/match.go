// Package match hosts a single game between two seats: it wires the engine
// to the selector, records every I/O point and persists the finished match.
package match

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/peterkuimelis/gitcg/internal/game"
	"github.com/peterkuimelis/gitcg/internal/log"
	"github.com/peterkuimelis/gitcg/internal/logger"
	"github.com/peterkuimelis/gitcg/internal/query"
	"github.com/peterkuimelis/gitcg/internal/random"
	"github.com/peterkuimelis/gitcg/internal/replay"
	"github.com/peterkuimelis/gitcg/internal/store"
)

// Runner holds what every match it starts shares.
type Runner struct {
	Registry *game.Registry
	Rules    game.GameConfig
	// Store receives finished matches. Nil skips persistence.
	Store  store.MatchStore
	Logger *slog.Logger
	// NewEvents builds the event log of each match. Nil uses a MemoryLogger.
	NewEvents func() log.EventLogger
}

// Match is one running game.
type Match struct {
	ID     uuid.UUID
	Seed   int64
	Game   *game.Game
	Events log.EventLogger

	runner   *Runner
	recorder *replay.Recorder
	logger   *slog.Logger
}

// Result summarizes a finished match.
type Result struct {
	ID     uuid.UUID
	Winner int
	Rounds int
	Reason string
}

// Start sets up a match between p0 and p1 without running it.
func (r *Runner) Start(decks [2]game.Deck, p0, p1 game.PlayerIO) (*Match, error) {
	id := uuid.New()
	sl := r.Logger
	if sl == nil {
		sl = slog.Default()
	}
	sl = logger.WithMatch(sl, id.String())

	var events log.EventLogger = log.NewMemoryLogger()
	if r.NewEvents != nil {
		events = r.NewEvents()
	}
	// A zero seed draws a fresh one so unseeded matches differ.
	rules := r.Rules
	seed, err := random.SeedOr(rules.RandomSeed)
	if err != nil {
		return nil, err
	}
	rules.RandomSeed = seed

	rec := &replay.Recorder{}
	g, err := game.NewGame(game.MatchConfig{
		Rules:      rules,
		Registry:   r.Registry,
		Decks:      decks,
		Selector:   query.New(),
		Logger:     events,
		Slog:       sl,
		OnLogEntry: rec.Record,
		OnError: func(err error) {
			logger.WithError(sl, err).Warn("match error")
		},
	}, p0, p1)
	if err != nil {
		return nil, fmt.Errorf("set up match: %w", err)
	}
	return &Match{ID: id, Seed: seed, Game: g, Events: events, runner: r, recorder: rec, logger: sl}, nil
}

// Run plays the match to the end and saves it. A save failure is logged and
// returned only when the game itself succeeded.
func (m *Match) Run(ctx context.Context) (Result, error) {
	m.logger.Info("match started")
	winner, runErr := m.Game.Run(ctx)
	state := m.Game.State()
	res := Result{
		ID:     m.ID,
		Winner: winner,
		Rounds: state.RoundNumber,
		Reason: Outcome(m.Events.Events(), winner),
	}
	if err := m.save(ctx, res); err != nil {
		logger.WithError(m.logger, err).Error("save match failed")
		if runErr == nil {
			runErr = err
		}
	}
	return res, runErr
}

func (m *Match) save(ctx context.Context, res Result) error {
	if m.runner.Store == nil {
		return nil
	}
	data, err := m.recorder.Marshal()
	if err != nil {
		return fmt.Errorf("serialize log: %w", err)
	}
	mutations, err := json.Marshal(replay.Records(m.Game.State().MutationLog))
	if err != nil {
		return fmt.Errorf("encode mutations: %w", err)
	}
	// The game may have ended because ctx was cancelled; the save still goes
	// through.
	saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	err = m.runner.Store.SaveMatch(saveCtx, store.Match{
		ID:        m.ID,
		Seed:      m.Seed,
		Winner:    res.Winner,
		Rounds:    res.Rounds,
		Log:       data,
		Mutations: mutations,
	})
	if err != nil {
		return err
	}
	m.logger.Info("match saved", "bytes", len(data))
	return nil
}

// Recorder exposes the log entries collected so far.
func (m *Match) Recorder() *replay.Recorder {
	return m.recorder
}

// Outcome describes how a match ended, from its final win or tie line.
func Outcome(events []log.GameEvent, winner int) string {
	for i := len(events) - 1; i >= 0; i-- {
		if t := events[i].Type; t == log.EventWin || t == log.EventDraw_Tie {
			return events[i].Details
		}
	}
	if winner == game.NoWinner {
		return "Draw"
	}
	return fmt.Sprintf("P%d wins", winner+1)
}
