package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/peterkuimelis/gitcg/internal/game"
)

const (
	swordID    = 101
	catalystID = 102
	bowID      = 103

	talentID  = 201
	frozenID  = 202
	summonID  = 203
	supportID = 204
	combatID  = 205
)

func testRegistry() *game.Registry {
	r := game.NewRegistry()
	char := func(id int, name string, tags ...string) *game.CharacterDefinition {
		return &game.CharacterDefinition{
			ID:   id,
			Name: name,
			Tags: tags,
			Vars: map[string]game.VarConfig{
				game.VarHealth:    game.Variable(10),
				game.VarMaxHealth: game.Variable(10),
				game.VarAlive:     game.Variable(1),
			},
		}
	}
	r.AddCharacter(char(swordID, "Swordsman", "cryo", "sword"))
	r.AddCharacter(char(catalystID, "Scholar", "hydro", "catalyst"))
	r.AddCharacter(char(bowID, "Archer", "electro", "bow"))
	r.AddEntity(&game.EntityDefinition{ID: talentID, Name: "Talent", Type: game.EntityEquipment, Tags: []string{"talent"}})
	r.AddEntity(&game.EntityDefinition{ID: frozenID, Name: "Frozen", Type: game.EntityStatus})
	r.AddEntity(&game.EntityDefinition{ID: summonID, Name: "Oz", Type: game.EntitySummon})
	r.AddEntity(&game.EntityDefinition{ID: supportID, Name: "Paimon", Type: game.EntitySupport, Tags: []string{"ally"}})
	r.AddEntity(&game.EntityDefinition{ID: combatID, Name: "Field", Type: game.EntityCombatStatus})
	return r
}

// testState lays out player 0 with characters 1 (sword, active), 2
// (catalyst) and 3 (bow); player 1 with 4 (sword), 5 (catalyst, active) and
// 6 (bow, defeated). Entity ids: talent 7 on 2, frozen 8 on 5, summon 9 and
// support 10 for player 0, combat status 11 for player 1.
func testState(t *testing.T) *game.GameState {
	t.Helper()
	s := game.NewGameState(testRegistry(), game.DefaultGameConfig())
	s, err := game.ApplyAll(s,
		game.CreateCharacter{Who: 0, DefinitionID: swordID},
		game.CreateCharacter{Who: 0, DefinitionID: catalystID},
		game.CreateCharacter{Who: 0, DefinitionID: bowID},
		game.CreateCharacter{Who: 1, DefinitionID: swordID},
		game.CreateCharacter{Who: 1, DefinitionID: catalystID},
		game.CreateCharacter{Who: 1, DefinitionID: bowID},
		game.SwitchActive{Who: 0, CharacterID: 1},
		game.SwitchActive{Who: 1, CharacterID: 5},
		game.ModifyEntityVar{EntityID: 6, VarName: game.VarAlive, Value: 0},
		game.CreateEntity{Where: game.EntityArea{Type: game.AreaCharacters, Who: 0, CharacterID: 2}, DefinitionID: talentID},
		game.CreateEntity{Where: game.EntityArea{Type: game.AreaCharacters, Who: 1, CharacterID: 5}, DefinitionID: frozenID},
		game.CreateEntity{Where: game.EntityArea{Type: game.AreaSummons, Who: 0}, DefinitionID: summonID},
		game.CreateEntity{Where: game.EntityArea{Type: game.AreaSupports, Who: 0}, DefinitionID: supportID},
		game.CreateEntity{Where: game.EntityArea{Type: game.AreaCombatStatuses, Who: 1}, DefinitionID: combatID},
	)
	require.NoError(t, err)
	return s
}

func TestSelect(t *testing.T) {
	s := testState(t)
	sel := New()
	me := game.CallerInfo{ID: 1, Who: 0, Area: game.EntityArea{Type: game.AreaCharacters, Who: 0, CharacterID: 1}}

	tests := []struct {
		query string
		want  []int
	}{
		{"my active", []int{1}},
		{"opp active", []int{5}},
		{"my characters", []int{1, 2, 3}},
		{"all my characters", []int{1, 2, 3}},
		{"opp characters", []int{4, 5}},
		{"all opp characters", []int{4, 5, 6}},
		{"all opp standby characters", []int{4, 6}},
		{"all characters with tag (bow)", []int{3, 6}},
		{"opp defeated characters", []int{6}},
		{"my standby characters", []int{2, 3}},
		{"opp standby characters", []int{4}},
		{"my next", []int{2}},
		{"my prev", []int{3}},
		{"opp next", []int{4}},
		{"opp prev", []int{4}},
		{"characters", []int{1, 2, 3, 4, 5}},
		{"active", []int{1, 5}},
		{"my summons", []int{9}},
		{"my supports", []int{10}},
		{"my supports with tag (ally)", []int{10}},
		{"opp combat statuses", []int{11}},
		{"opp statuses", []int{8}},
		{"my equipments", []int{7}},
		{"my characters with tag (sword)", []int{1}},
		{"characters with tag (catalyst)", []int{2, 5}},
		{"my characters with definition id 103", []int{3}},
		{"characters has equipment with definition id 201", []int{2}},
		{"characters has status with definition id 202", []int{5}},
		{"self", []int{1}},
		{"@caller", []int{1}},
		{"@master", []int{1}},
		{"#9", []int{9}},
		{"#99", nil},
		{"my characters and not my active", []int{2, 3}},
		{"my active or opp active", []int{1, 5}},
		{"opp active or my characters limit 2", []int{5, 1}},
		{"(my active or opp active) and characters with tag (sword)", []int{1}},
		{"MY ACTIVE", []int{1}},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			assert.Equal(t, tt.want, sel(s, me, tt.query))
		})
	}
}

func TestSelectFromAttachedEntity(t *testing.T) {
	s := testState(t)
	sel := New()
	talent := game.CallerInfo{ID: 7, Who: 0, Area: game.EntityArea{Type: game.AreaCharacters, Who: 0, CharacterID: 2}}

	assert.Equal(t, []int{2}, sel(s, talent, "@master"))
	assert.Equal(t, []int{7}, sel(s, talent, "self"))
	assert.Equal(t, []int{5}, sel(s, talent, "opp active"))

	summon := game.CallerInfo{ID: 9, Who: 0, Area: game.EntityArea{Type: game.AreaSummons, Who: 0}}
	assert.Empty(t, sel(s, summon, "@master"))
}

func TestNotUsesLiveUniverse(t *testing.T) {
	s := testState(t)
	opp := game.CallerInfo{ID: 5, Who: 1, Area: game.EntityArea{Type: game.AreaCharacters, Who: 1, CharacterID: 5}}
	got := New()(s, opp, "not characters")
	assert.Equal(t, []int{8, 11, 7, 9, 10}, got)
}

func TestUnparseableSelectsNothing(t *testing.T) {
	s := testState(t)
	sel := New()
	me := game.CallerInfo{ID: 1, Who: 0}
	for _, q := range []string{"", "   ", "their active", "my active or their active", "not", "()", "my characters with tag", "#", "my active (", "my active limit"} {
		assert.Empty(t, sel(s, me, q), "query %q", q)
		// The cached failure answers the same.
		assert.Empty(t, sel(s, me, q), "query %q", q)
	}
}

func TestParse(t *testing.T) {
	q, err := Parse("my standby characters with tag (sword) limit 1")
	require.NoError(t, err)
	require.NotNil(t, q.Limit)
	assert.Equal(t, 1, *q.Limit)
	p := q.Expr.Left.Left.Primary.Phrase
	require.NotNil(t, p)
	assert.Equal(t, "my", p.Side)
	assert.Equal(t, "standby", p.Position)
	assert.Equal(t, "characters", p.Kind)
	require.Len(t, p.Filters, 1)
	assert.Equal(t, "sword", *p.Filters[0].Tag)

	_, err = Parse("my characters with")
	assert.Error(t, err)
}

func TestParseRejectsEmptyPhrase(t *testing.T) {
	for _, input := range []string{"", "  ", "their active", "not their", "limit 1"} {
		_, err := Parse(input)
		assert.Error(t, err, "input %q", input)
	}

	q, err := Parse("all opp characters")
	require.NoError(t, err)
	p := q.Expr.Left.Left.Primary.Phrase
	require.NotNil(t, p)
	assert.True(t, p.All)
	assert.Equal(t, "opp", p.Side)
}
