package game

import (
	"context"
	"testing"

	"github.com/peterkuimelis/gitcg/internal/log"
)

// Test content ids.
const (
	cryoTesterID  = 1101
	pyroTesterID  = 1102
	hydroTesterID = 1103
	fragileID     = 1104

	normalAttackID = 11011
	elementalID    = 11012
	burstID        = 11013

	counterStatusID = 2001
	stackStatusID   = 2002
	shieldStatusID  = 2003
	summonAID       = 2010
	summonBID       = 2011

	testEventCardID = 3001
)

// testSelector understands the handful of queries the tests use.
func testSelector(s *GameState, caller CallerInfo, query string) []int {
	side := func(who int) []int {
		var ids []int
		for _, ch := range s.Players[who].Characters {
			if ch.Alive() {
				ids = append(ids, ch.ID)
			}
		}
		return ids
	}
	switch query {
	case "my active":
		return []int{s.Players[caller.Who].ActiveCharacterID}
	case "opp active":
		return []int{s.Players[1-caller.Who].ActiveCharacterID}
	case "my characters":
		return side(caller.Who)
	case "opp characters":
		return side(1 - caller.Who)
	}
	return nil
}

func testCharacter(id int, name, element string) *CharacterDefinition {
	return &CharacterDefinition{
		ID:   id,
		Name: name,
		Tags: []string{element, "sword"},
		Vars: map[string]VarConfig{
			VarHealth:    Variable(10),
			VarMaxHealth: Variable(10),
			VarEnergy:    Variable(0),
			VarMaxEnergy: Variable(2),
			VarAlive:     Variable(1),
			VarAura:      Variable(int(AuraNone)),
		},
		Skills: []*SkillDefinition{
			{
				ID:         normalAttackID,
				Type:       SkillNormal,
				Cost:       DiceRequirement{DiceVoid: 1},
				GainEnergy: true,
				Action: func(c *Context, _ EventArg) error {
					return c.Damage(DamagePhysical, 2, c.Select("opp active")...)
				},
			},
			{
				ID:         elementalID,
				Type:       SkillElemental,
				Cost:       DiceRequirement{DiceVoid: 3},
				GainEnergy: true,
				Action: func(c *Context, _ EventArg) error {
					return c.Damage(elementDamage[element], 1, c.Select("opp active")...)
				},
			},
			{
				ID:   burstID,
				Type: SkillBurst,
				Cost: DiceRequirement{DiceVoid: 3, DiceEnergy: 2},
				Action: func(c *Context, _ EventArg) error {
					return c.Damage(elementDamage[element], 4, c.Select("opp active")...)
				},
			},
		},
	}
}

var elementDamage = map[string]DamageType{
	"cryo":  DamageCryo,
	"hydro": DamageHydro,
	"pyro":  DamagePyro,
}

// newTestRegistry returns a registry with three testers, the reaction
// entities and a few generic statuses. Tests may add more definitions.
func newTestRegistry() *Registry {
	r := NewRegistry()
	r.AddCharacter(testCharacter(cryoTesterID, "Cryo Tester", "cryo"))
	r.AddCharacter(testCharacter(pyroTesterID, "Pyro Tester", "pyro"))
	r.AddCharacter(testCharacter(hydroTesterID, "Hydro Tester", "hydro"))
	fragile := testCharacter(fragileID, "Fragile Tester", "hydro")
	fragile.Vars[VarHealth] = Variable(2)
	fragile.Vars[VarMaxHealth] = Variable(2)
	r.AddCharacter(fragile)

	r.AddEntity(&EntityDefinition{ID: FrozenStatusID, Name: "Frozen", Type: EntityStatus,
		Tags: []string{TagDisableSkill}, Vars: map[string]VarConfig{VarDuration: Variable(1)}})
	r.AddEntity(&EntityDefinition{ID: CrystallizeShieldID, Name: "Crystallize", Type: EntityCombatStatus,
		VisibleVarName: VarShield, Vars: map[string]VarConfig{VarShield: AppendVariable(1, 2)}})
	r.AddEntity(&EntityDefinition{ID: BurningFlameID, Name: "Burning Flame", Type: EntitySummon,
		Vars: map[string]VarConfig{VarUsage: Variable(1)}})
	r.AddEntity(&EntityDefinition{ID: DendroCoreID, Name: "Dendro Core", Type: EntityCombatStatus,
		Vars: map[string]VarConfig{VarUsage: Variable(1)}})
	r.AddEntity(&EntityDefinition{ID: CatalyzingFieldID, Name: "Catalyzing Field", Type: EntityCombatStatus,
		Vars: map[string]VarConfig{VarUsage: Variable(2)}})

	r.AddEntity(&EntityDefinition{ID: counterStatusID, Name: "Counter", Type: EntityCombatStatus,
		VisibleVarName: VarUsage, DisposeWhenUsageIsZero: true,
		Vars: map[string]VarConfig{VarUsage: ForceVariable(2)}})
	r.AddEntity(&EntityDefinition{ID: stackStatusID, Name: "Stack", Type: EntityCombatStatus,
		Vars: map[string]VarConfig{"layers": AppendVariable(1, 3)}})
	r.AddEntity(&EntityDefinition{
		ID: shieldStatusID, Name: "Test Shield", Type: EntityCombatStatus,
		DisposeWhenUsageIsZero: true,
		Vars:                   map[string]VarConfig{VarUsage: Variable(1)},
		Skills: []*SkillDefinition{{
			ID:        20031,
			Type:      SkillTriggered,
			TriggerOn: ModifyDamage1,
			Filter: func(c *Context, arg EventArg) bool {
				mod := arg.(*DamageModifier)
				_, who, ok := c.State().Character(mod.Damage.TargetID)
				return ok && who == c.Who() && mod.Damage.Value > 0
			},
			Action: func(c *Context, arg EventArg) error {
				arg.(*DamageModifier).DecreaseDamage(1)
				return c.ConsumeUsage(1)
			},
		}},
	})
	r.AddEntity(&EntityDefinition{ID: summonAID, Name: "Summon A", Type: EntitySummon,
		Vars: map[string]VarConfig{VarUsage: Variable(2)}})
	r.AddEntity(&EntityDefinition{ID: summonBID, Name: "Summon B", Type: EntitySummon,
		Vars: map[string]VarConfig{VarUsage: Variable(2)}})

	r.AddCard(&CardDefinition{ID: testEventCardID, Name: "Test Event", Type: CardEvent,
		Cost: DiceRequirement{DiceVoid: 1}})
	return r
}

// newTestState builds a started board: P1 has Cryo (id 1, active) and Pyro
// (id 2); P2 has Hydro (id 3, active) and Pyro (id 4).
func newTestState(t *testing.T, r *Registry) *GameState {
	t.Helper()
	cfg := DefaultGameConfig()
	cfg.RandomSeed = 7
	s := NewGameState(r, cfg)
	return mustApply(t, s,
		CreateCharacter{Who: 0, DefinitionID: cryoTesterID},
		CreateCharacter{Who: 0, DefinitionID: pyroTesterID},
		CreateCharacter{Who: 1, DefinitionID: hydroTesterID},
		CreateCharacter{Who: 1, DefinitionID: pyroTesterID},
		SwitchActive{Who: 0, CharacterID: 1},
		SwitchActive{Who: 1, CharacterID: 3},
		StepRound{},
		ChangePhase{NewPhase: PhaseAction},
	)
}

func mustApply(t *testing.T, s *GameState, ms ...Mutation) *GameState {
	t.Helper()
	s, err := ApplyAll(s, ms...)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	return s
}

// callerContext returns a context whose caller is the given character or
// entity.
func callerContext(t *testing.T, s *GameState, callerID int) *Context {
	t.Helper()
	c, err := NewContext(s, testSelector, SkillInfo{CallerID: callerID})
	if err != nil {
		t.Fatalf("new context: %v", err)
	}
	return c
}

func character(t *testing.T, s *GameState, id int) *CharacterState {
	t.Helper()
	ch, _, ok := s.Character(id)
	if !ok {
		t.Fatalf("character %d not found", id)
	}
	return ch
}

func eventNames(events []Event) []EventName {
	names := make([]EventName, 0, len(events))
	for _, e := range events {
		names = append(names, e.Name)
	}
	return names
}

func testDeck(characters ...int) Deck {
	cards := make([]int, 8)
	for i := range cards {
		cards[i] = testEventCardID
	}
	return Deck{Characters: characters, Cards: cards}
}

// runMatch plays a match between two scripted seats and returns the game.
func runMatch(t *testing.T, cfg MatchConfig, p0, p1 PlayerIO) (*Game, int) {
	t.Helper()
	g := newMatch(t, cfg, p0, p1)
	return g, finishMatch(t, g)
}

func newMatch(t *testing.T, cfg MatchConfig, p0, p1 PlayerIO) *Game {
	t.Helper()
	if cfg.Registry == nil {
		cfg.Registry = newTestRegistry()
	}
	if cfg.Selector == nil {
		cfg.Selector = testSelector
	}
	if cfg.Rules == (GameConfig{}) {
		cfg.Rules = DefaultGameConfig()
		cfg.Rules.MaxRounds = 2
		cfg.Rules.RandomSeed = 42
	}
	cfg.NoShuffle = true
	g, err := NewGame(cfg, p0, p1)
	if err != nil {
		t.Fatalf("new game: %v", err)
	}
	return g
}

func finishMatch(t *testing.T, g *Game) int {
	t.Helper()
	winner, err := g.Run(context.Background())
	if err != nil {
		t.Logf("Event log:\n%s", log.FormatAll(g.Logger.Events()))
		t.Fatalf("match error: %v", err)
	}
	t.Logf("Match result: winner=%d", winner)
	t.Logf("Event log:\n%s", log.FormatAll(g.Logger.Events()))
	return winner
}
