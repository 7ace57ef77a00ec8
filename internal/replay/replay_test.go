package replay

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/peterkuimelis/gitcg/internal/content"
	"github.com/peterkuimelis/gitcg/internal/game"
	"github.com/peterkuimelis/gitcg/internal/query"
)

func testRules() game.GameConfig {
	rules := game.DefaultGameConfig()
	rules.RandomSeed = 1234
	rules.MaxRounds = 2
	return rules
}

// playMatch runs a short match between the first two sample decks.
func playMatch(t *testing.T, reg *game.Registry, rec *Recorder) *game.Game {
	t.Helper()
	df, err := content.ReadDeckFile("")
	require.NoError(t, err)
	_, d0, err := content.DeckByNumber(df, reg, 1)
	require.NoError(t, err)
	_, d1, err := content.DeckByNumber(df, reg, 2)
	require.NoError(t, err)

	attack := game.ScriptedAction{Type: game.ActionUseSkill}
	cfg := game.MatchConfig{
		Rules:    testRules(),
		Registry: reg,
		Decks:    [2]game.Deck{d0, d1},
		Selector: query.New(),
	}
	if rec != nil {
		cfg.OnLogEntry = rec.Record
	}
	g, err := game.NewGame(cfg, game.NewScriptedIO(attack, attack, attack), game.NewScriptedIO(attack, attack))
	require.NoError(t, err)
	_, err = g.Run(context.Background())
	require.NoError(t, err)
	return g
}

func stateJSON(t *testing.T, s *game.GameState) string {
	t.Helper()
	b, err := json.Marshal(s)
	require.NoError(t, err)
	return string(b)
}

func TestSerializeRoundTrip(t *testing.T) {
	reg := content.NewRegistry()
	rec := &Recorder{}
	g := playMatch(t, reg, rec)

	entries := rec.Entries()
	require.NotEmpty(t, entries)
	data, err := Serialize(entries)
	require.NoError(t, err)

	restored, err := Deserialize(data, reg)
	require.NoError(t, err)
	require.Len(t, restored, len(entries))
	for i := range entries {
		assert.Equal(t, stateJSON(t, entries[i].State), stateJSON(t, restored[i].State), "entry %d", i)
		assert.Equal(t, entries[i].CanResume, restored[i].CanResume, "entry %d", i)
		assert.Equal(t, len(entries[i].Events), len(restored[i].Events), "entry %d", i)
	}

	last := restored[len(restored)-1].State
	assert.Same(t, reg, last.Data)
	want := g.State().Players[0].Characters[0].Definition
	assert.Same(t, want, last.Players[0].Characters[0].Definition)
}

func TestSerializeSharesRepeatedValues(t *testing.T) {
	reg := content.NewRegistry()
	rec := &Recorder{}
	playMatch(t, reg, rec)
	entries := rec.Entries()

	one, err := Serialize(entries[:1])
	require.NoError(t, err)
	twice, err := Serialize([]game.LogEntry{entries[0], entries[0]})
	require.NoError(t, err)

	var a, b serializedLog
	require.NoError(t, json.Unmarshal(one, &a))
	require.NoError(t, json.Unmarshal(twice, &b))
	assert.Len(t, b.Store, len(a.Store))
	assert.Equal(t, b.Log[0].S, b.Log[1].S)
}

func TestDeserializeRejectsBadReferences(t *testing.T) {
	reg := content.NewRegistry()
	tests := map[string]string{
		"not an object":   `[1,2]`,
		"out of range":    `{"store":[],"log":[{"s":{"$":3},"e":[],"r":false}]}`,
		"cyclic":          `{"store":[{"a":{"$":0}}],"log":[{"s":{"$":0},"e":[],"r":false}]}`,
		"unknown card":    `{"store":[],"log":[{"s":{"players":[{"hands":[{"id":1,"definition":{"$$":"card","id":1}}]},{}]},"e":[],"r":false}]}`,
		"wrong ref kind":  `{"store":[],"log":[{"s":{"players":[{"hands":[{"id":1,"definition":{"$$":"entity","id":332004}}]},{}]},"e":[],"r":false}]}`,
		"missing players": `{"store":[],"log":[{"s":{},"e":[],"r":false}]}`,
	}
	for name, raw := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Deserialize([]byte(raw), reg)
			assert.Error(t, err)
		})
	}
}

func TestReplayReproducesMatch(t *testing.T) {
	reg := content.NewRegistry()
	g := playMatch(t, reg, nil)
	final := g.State()

	records := Records(final.MutationLog)
	res, err := Replay(game.NewGameState(reg, testRules()), records, Options{})
	require.NoError(t, err)
	assert.Equal(t, len(records), res.Applied)
	assert.Equal(t, len(records), res.LastSeq)
	assert.Equal(t, stateJSON(t, final), stateJSON(t, res.State))
}

func TestReplayStopsAtUntilSeq(t *testing.T) {
	reg := content.NewRegistry()
	g := playMatch(t, reg, nil)
	records := Records(g.State().MutationLog)
	require.Greater(t, len(records), 10)

	res, err := Replay(game.NewGameState(reg, testRules()), records, Options{UntilSeq: 10})
	require.NoError(t, err)
	assert.Equal(t, 10, res.Applied)
	assert.Equal(t, 10, res.LastSeq)
}

func TestReplayDetectsGaps(t *testing.T) {
	reg := content.NewRegistry()
	g := playMatch(t, reg, nil)
	records := Records(g.State().MutationLog)
	require.Greater(t, len(records), 3)

	gapped := append(append([]Record{}, records[:2]...), records[3:]...)
	res, err := Replay(game.NewGameState(reg, testRules()), gapped, Options{})
	require.ErrorIs(t, err, ErrSequenceGap)
	assert.Equal(t, 2, res.LastSeq)

	_, err = Replay(nil, records, Options{})
	assert.ErrorIs(t, err, ErrInitialStateRequired)
}

func TestReplayDetectsRoundMismatch(t *testing.T) {
	reg := content.NewRegistry()
	records := []Record{
		{Seq: 1, Round: 0, Mutation: game.CreateCharacter{Who: 0, DefinitionID: content.KaeyaID}},
		{Seq: 2, Round: 0, Mutation: game.StepRound{}},
	}
	_, err := Replay(game.NewGameState(reg, testRules()), records, Options{})
	assert.ErrorIs(t, err, ErrRoundMismatch)
}

func TestRecordJSON(t *testing.T) {
	in := []Record{
		{Seq: 1, Round: 0, Mutation: game.CreateCharacter{Who: 1, DefinitionID: content.BarbaraID}},
		{Seq: 2, Round: 1, Mutation: game.StepRound{}},
	}
	data, err := json.Marshal(in)
	require.NoError(t, err)
	var out []Record
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, in, out)
}

func TestRecorderLastResumable(t *testing.T) {
	rec := &Recorder{}
	_, ok := rec.LastResumable()
	assert.False(t, ok)

	s := game.NewGameState(content.NewRegistry(), testRules())
	rec.Record(game.LogEntry{State: s, CanResume: true})
	rec.Record(game.LogEntry{State: s})
	got, ok := rec.LastResumable()
	require.True(t, ok)
	assert.True(t, got.CanResume)
	assert.Len(t, rec.Entries(), 2)
}
