package match

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/peterkuimelis/gitcg/internal/game"
	"github.com/peterkuimelis/gitcg/internal/replay"
	"github.com/peterkuimelis/gitcg/internal/store"
)

// ErrDiverged indicates a stored mutation log that does not rebuild the
// stored final state.
var ErrDiverged = errors.New("replay diverged from recorded state")

// Loaded is a stored match brought back to life.
type Loaded struct {
	Match   store.Match
	Entries []game.LogEntry
	Records []replay.Record
}

// Load fetches a match and decodes its log against reg.
func Load(ctx context.Context, st store.MatchStore, reg *game.Registry, id uuid.UUID) (Loaded, error) {
	m, err := st.LoadMatch(ctx, id)
	if err != nil {
		return Loaded{}, err
	}
	entries, err := replay.Deserialize(m.Log, reg)
	if err != nil {
		return Loaded{}, fmt.Errorf("decode log of %s: %w", id, err)
	}
	var records []replay.Record
	if len(m.Mutations) > 0 {
		if err := json.Unmarshal(m.Mutations, &records); err != nil {
			return Loaded{}, fmt.Errorf("decode mutations of %s: %w", id, err)
		}
	}
	return Loaded{Match: m, Entries: entries, Records: records}, nil
}

// Verify re-applies the mutation records on a fresh state built from rules
// (with the stored seed) and checks the result against the last logged
// state.
func (l Loaded) Verify(reg *game.Registry, rules game.GameConfig) (replay.Result, error) {
	rules.RandomSeed = l.Match.Seed
	res, err := replay.Replay(game.NewGameState(reg, rules), l.Records, replay.Options{})
	if err != nil {
		return res, err
	}
	if len(l.Entries) == 0 {
		return res, nil
	}
	want, err := json.Marshal(l.Entries[len(l.Entries)-1].State)
	if err != nil {
		return res, err
	}
	got, err := json.Marshal(res.State)
	if err != nil {
		return res, err
	}
	if string(want) != string(got) {
		return res, fmt.Errorf("%w: match %s after %d mutations", ErrDiverged, l.Match.ID, res.Applied)
	}
	return res, nil
}
