package content

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/peterkuimelis/gitcg/internal/game"
	"github.com/peterkuimelis/gitcg/internal/log"
	"github.com/peterkuimelis/gitcg/internal/query"
)

var sel = query.New()

// newBoard seats the given characters. Ids are assigned in order, so the
// first character of p0 is 1 and the first of p1 is len(p0)+1. The first
// character of each side starts active.
func newBoard(t *testing.T, p0, p1 []int) *game.GameState {
	t.Helper()
	s := game.NewGameState(NewRegistry(), game.DefaultGameConfig())
	var ms []game.Mutation
	for _, id := range p0 {
		ms = append(ms, game.CreateCharacter{Who: 0, DefinitionID: id})
	}
	for _, id := range p1 {
		ms = append(ms, game.CreateCharacter{Who: 1, DefinitionID: id})
	}
	ms = append(ms,
		game.SwitchActive{Who: 0, CharacterID: 1},
		game.SwitchActive{Who: 1, CharacterID: len(p0) + 1},
		game.StepRound{},
		game.ChangePhase{NewPhase: game.PhaseAction},
	)
	s, err := game.ApplyAll(s, ms...)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	return s
}

// useSkill runs a character skill and dispatches what it queued.
func useSkill(t *testing.T, s *game.GameState, callerID, skillID int) *game.GameState {
	t.Helper()
	ch := character(t, s, callerID)
	def := ch.Definition.Skill(skillID)
	if def == nil {
		t.Fatalf("character %d has no skill %d", callerID, skillID)
	}
	info := game.SkillInfo{CallerID: callerID, Definition: def}
	s, events, err := game.RunSkill(s, sel, info, nil)
	if err != nil {
		t.Fatalf("skill %d: %v", skillID, err)
	}
	events = append(events, game.Event{Name: game.OnSkill, Arg: info})
	return dispatch(t, s, events...)
}

func dispatch(t *testing.T, s *game.GameState, events ...game.Event) *game.GameState {
	t.Helper()
	d := &game.Dispatcher{Selector: sel}
	s, err := d.Dispatch(s, events)
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	return s
}

// withContext runs fn in a context called by callerID and dispatches its
// events.
func withContext(t *testing.T, s *game.GameState, callerID int, fn func(c *game.Context) error) *game.GameState {
	t.Helper()
	c, err := game.NewContext(s, sel, game.SkillInfo{CallerID: callerID})
	if err != nil {
		t.Fatalf("new context: %v", err)
	}
	if err := fn(c); err != nil {
		t.Fatalf("context: %v", err)
	}
	return dispatch(t, c.State(), c.Events()...)
}

func playCard(t *testing.T, s *game.GameState, who, cardID int, targets ...int) *game.GameState {
	t.Helper()
	def, err := s.Data.Card(cardID)
	if err != nil {
		t.Fatal(err)
	}
	active := s.Players[who].ActiveCharacterID
	info := game.SkillInfo{CallerID: active, Definition: def.Skill}
	arg := game.PlayCardInfo{Who: who, DefinitionID: cardID, Targets: targets}
	s, events, err := game.RunSkill(s, sel, info, arg)
	if err != nil {
		t.Fatalf("play %s: %v", def.Name, err)
	}
	events = append(events, game.Event{Name: game.OnPlayCard, Arg: arg})
	return dispatch(t, s, events...)
}

func character(t *testing.T, s *game.GameState, id int) *game.CharacterState {
	t.Helper()
	ch, _, ok := s.Character(id)
	if !ok {
		t.Fatalf("character %d not found", id)
	}
	return ch
}

func TestRegistryIsComplete(t *testing.T) {
	r := NewRegistry()
	for _, id := range []int{game.FrozenStatusID, game.CrystallizeShieldID, game.BurningFlameID, game.DendroCoreID, game.CatalyzingFieldID} {
		if _, err := r.Entity(id); err != nil {
			t.Errorf("reaction entity %d: %v", id, err)
		}
	}
	for _, ctor := range Cards {
		def := ctor()
		if def.Skill == nil || def.Skill.Action == nil {
			t.Errorf("card %s has no effect", def.Name)
		}
		if def.Type == game.CardEquipment {
			if _, err := r.Entity(def.ID); err != nil {
				t.Errorf("equipment card %s: %v", def.Name, err)
			}
		}
		if def.Type == game.CardSupport {
			if _, err := r.Entity(def.ID); err != nil {
				t.Errorf("support card %s: %v", def.Name, err)
			}
		}
	}
	for _, w := range weapons {
		if _, err := r.Card(w.id); err != nil {
			t.Errorf("weapon %s: %v", w.name, err)
		}
	}
}

func TestElementalSkillAppliesAura(t *testing.T) {
	s := newBoard(t, []int{KaeyaID}, []int{BennettID})
	s = useSkill(t, s, 1, 11032)

	bennett := character(t, s, 2)
	if bennett.Health() != 7 {
		t.Fatalf("health = %d, want 7", bennett.Health())
	}
	if bennett.Aura() != game.AuraCryo {
		t.Fatalf("aura = %v, want Cryo", bennett.Aura())
	}
}

func TestFrozenBreaksOnPhysical(t *testing.T) {
	s := newBoard(t, []int{KaeyaID, BarbaraID}, []int{BennettID})
	s = withContext(t, s, 2, func(c *game.Context) error {
		return c.Apply(game.DamageHydro, 3)
	})
	s = useSkill(t, s, 1, 11032)

	bennett := character(t, s, 3)
	if bennett.Health() != 6 {
		t.Fatalf("health after frozen = %d, want 6", bennett.Health())
	}
	if !bennett.HasEntity(game.FrozenStatusID) {
		t.Fatal("target is not frozen")
	}

	s = useSkill(t, s, 1, 11031)
	bennett = character(t, s, 3)
	if bennett.Health() != 2 {
		t.Fatalf("health after shatter = %d, want 2", bennett.Health())
	}
	if bennett.HasEntity(game.FrozenStatusID) {
		t.Fatal("frozen status survived physical damage")
	}
}

func TestIcicleStrikesOnSwitch(t *testing.T) {
	s := newBoard(t, []int{KaeyaID, BarbaraID}, []int{BennettID})
	s = useSkill(t, s, 1, 11033)
	if got := character(t, s, 3).Health(); got != 9 {
		t.Fatalf("health after burst = %d, want 9", got)
	}

	s = withContext(t, s, 1, func(c *game.Context) error { return c.SwitchActive(2) })
	if got := character(t, s, 3).Health(); got != 7 {
		t.Fatalf("health after switch = %d, want 7", got)
	}
	icicle := s.Players[0].CombatStatuses[0]
	if icicle.Definition.ID != IcicleID || icicle.Variables[game.VarUsage] != 2 {
		t.Fatalf("icicle = %d usage %d, want %d usage 2", icicle.Definition.ID, icicle.Variables[game.VarUsage], IcicleID)
	}
}

func TestSummonDealsEndPhaseDamage(t *testing.T) {
	s := newBoard(t, []int{FischlID}, []int{ColleiID})
	s = useSkill(t, s, 1, 14012)
	if len(s.Players[0].Summons) != 1 {
		t.Fatalf("summons = %d, want 1", len(s.Players[0].Summons))
	}

	s = dispatch(t, s, game.Event{Name: game.OnEndPhase, Arg: game.PlayerArg{Who: 0}})
	if got := character(t, s, 2).Health(); got != 8 {
		t.Fatalf("health = %d, want 8", got)
	}
	if got := s.Players[0].Summons[0].Variables[game.VarUsage]; got != 1 {
		t.Fatalf("oz usage = %d, want 1", got)
	}

	s = dispatch(t, s, game.Event{Name: game.OnEndPhase, Arg: game.PlayerArg{Who: 0}})
	if len(s.Players[0].Summons) != 0 {
		t.Fatal("oz should leave after its last charge")
	}
}

func TestShieldAbsorbsNormalAttack(t *testing.T) {
	s := newBoard(t, []int{KaeyaID}, []int{NoelleID})
	s = useSkill(t, s, 2, 16022)
	if len(s.Players[1].CombatStatuses) != 1 {
		t.Fatal("full plate not created")
	}

	s = useSkill(t, s, 1, 11031)
	if got := character(t, s, 2).Health(); got != 10 {
		t.Fatalf("health = %d, want 10", got)
	}
	if len(s.Players[1].CombatStatuses) != 0 {
		t.Fatal("exhausted shield was not disposed")
	}
}

func TestWeaponAddsDamage(t *testing.T) {
	s := newBoard(t, []int{KaeyaID}, []int{BennettID})
	s = playCard(t, s, 0, TravelersHandySwordID, 1)
	if character(t, s, 1).EquipmentWithTag(game.TagWeapon) == nil {
		t.Fatal("sword not equipped")
	}

	s = useSkill(t, s, 1, 11031)
	if got := character(t, s, 2).Health(); got != 7 {
		t.Fatalf("health = %d, want 7", got)
	}
}

func TestWeaponTargetsMatchingCharacters(t *testing.T) {
	s := newBoard(t, []int{KaeyaID, BarbaraID, NoelleID}, []int{BennettID})
	c, err := game.NewContext(s, sel, game.SkillInfo{CallerID: 1})
	if err != nil {
		t.Fatal(err)
	}
	def, _ := s.Data.Card(MagicGuideID)
	got := c.Select(def.Targets[0])
	if len(got) != 1 || got[0] != 2 {
		t.Fatalf("catalyst targets = %v, want [2]", got)
	}
}

func TestFoodLeavesSatiated(t *testing.T) {
	s := newBoard(t, []int{KaeyaID, BarbaraID}, []int{BennettID})
	s, err := game.Apply(s, game.ModifyEntityVar{EntityID: 1, VarName: game.VarHealth, Value: 5})
	if err != nil {
		t.Fatal(err)
	}
	s = playCard(t, s, 0, HashBrownID, 1)

	kaeya := character(t, s, 1)
	if kaeya.Health() != 7 {
		t.Fatalf("health = %d, want 7", kaeya.Health())
	}
	if !kaeya.HasEntity(SatiatedID) {
		t.Fatal("not satiated")
	}

	def, _ := s.Data.Card(SweetMadameID)
	c, err := game.NewContext(s, sel, game.SkillInfo{CallerID: 1})
	if err != nil {
		t.Fatal(err)
	}
	if def.Filter(c, []int{1}) {
		t.Error("a satiated character can eat again")
	}
	if !def.Filter(c, []int{2}) {
		t.Error("a hungry character cannot eat")
	}
}

func TestFriedEggRevivesOncePerRound(t *testing.T) {
	s := newBoard(t, []int{KaeyaID, BarbaraID}, []int{BennettID})
	s, err := game.ApplyAll(s,
		game.ModifyEntityVar{EntityID: 2, VarName: game.VarHealth, Value: 0},
		game.ModifyEntityVar{EntityID: 2, VarName: game.VarAlive, Value: 0},
	)
	if err != nil {
		t.Fatal(err)
	}
	def, _ := s.Data.Card(FriedEggID)
	c, _ := game.NewContext(s, sel, game.SkillInfo{CallerID: 1})
	if got := c.Select(def.Targets[0]); len(got) != 1 || got[0] != 2 {
		t.Fatalf("egg targets = %v, want [2]", got)
	}

	s = playCard(t, s, 0, FriedEggID, 2)
	barbara := character(t, s, 2)
	if !barbara.Alive() || barbara.Health() != 1 {
		t.Fatalf("barbara alive=%v health=%d, want revived at 1", barbara.Alive(), barbara.Health())
	}

	c, _ = game.NewContext(s, sel, game.SkillInfo{CallerID: 1})
	if def.Filter(c, []int{2}) {
		t.Fatal("second egg allowed in the same round")
	}
}

func TestPaimonGeneratesOmni(t *testing.T) {
	s := newBoard(t, []int{KaeyaID}, []int{BennettID})
	s = playCard(t, s, 0, PaimonID)
	s = dispatch(t, s, game.Event{Name: game.OnActionPhase, Arg: game.PlayerArg{Who: 0}})

	omni := 0
	for _, d := range s.Players[0].Dice {
		if d == game.DiceOmni {
			omni++
		}
	}
	if omni != 2 {
		t.Fatalf("omni dice = %d, want 2", omni)
	}
	if got := s.Players[0].Supports[0].Variables[game.VarUsage]; got != 1 {
		t.Fatalf("paimon usage = %d, want 1", got)
	}
}

func TestDefaultDecksLoad(t *testing.T) {
	r := NewRegistry()
	df, err := ReadDeckFile("")
	if err != nil {
		t.Fatal(err)
	}
	if len(df.Decks) != 3 {
		t.Fatalf("decks = %d, want 3", len(df.Decks))
	}
	for n := 1; n <= len(df.Decks); n++ {
		name, deck, err := DeckByNumber(df, r, n)
		if err != nil {
			t.Fatalf("deck %d: %v", n, err)
		}
		if len(deck.Characters) != 3 || len(deck.Cards) != 30 {
			t.Errorf("%s: %d characters, %d cards; want 3 and 30", name, len(deck.Characters), len(deck.Cards))
		}
	}
	if _, _, err := DeckByNumber(df, r, 4); err == nil {
		t.Fatal("deck 4 should not exist")
	}
}

func TestLoadDeckErrors(t *testing.T) {
	r := NewRegistry()
	tests := []struct {
		name  string
		entry DeckEntry
	}{
		{"unknown character", DeckEntry{Characters: []string{"Nobody"}}},
		{"unknown card", DeckEntry{Characters: []string{"Kaeya"}, Cards: []CardEntry{{Name: "Nothing", Count: 1}}}},
		{"unknown id", DeckEntry{Characters: []string{"Kaeya"}, Cards: []CardEntry{{ID: 999999, Count: 1}}}},
		{"talent without character", DeckEntry{Characters: []string{"Barbara"}, Cards: []CardEntry{{Name: "Cold-Blooded Strike", Count: 1}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadDeck(tt.entry, r)
			if !errors.Is(err, game.ErrData) {
				t.Fatalf("err = %v, want ErrData", err)
			}
		})
	}
}

func TestLoadRules(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	if err := os.WriteFile(path, []byte("max_rounds: 5\nrandom_seed: 9\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadRules(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.MaxRounds != 5 || cfg.RandomSeed != 9 {
		t.Fatalf("rules = %+v", cfg)
	}
	if cfg.MaxHands != game.DefaultMaxHands {
		t.Fatalf("max hands = %d, want default", cfg.MaxHands)
	}
}

func TestSampleMatchRuns(t *testing.T) {
	r := NewRegistry()
	df, err := ReadDeckFile("")
	if err != nil {
		t.Fatal(err)
	}
	_, d0, err := DeckByNumber(df, r, 1)
	if err != nil {
		t.Fatal(err)
	}
	_, d1, err := DeckByNumber(df, r, 2)
	if err != nil {
		t.Fatal(err)
	}
	rules := game.DefaultGameConfig()
	rules.RandomSeed = 42
	rules.MaxRounds = 3

	attack := game.ScriptedAction{Type: game.ActionUseSkill}
	p0 := game.NewScriptedIO(attack, attack, attack, attack, attack, attack)
	p1 := game.NewScriptedIO(attack, attack, attack, attack, attack, attack)
	g, err := game.NewGame(game.MatchConfig{
		Rules:    rules,
		Registry: r,
		Decks:    [2]game.Deck{d0, d1},
		Selector: sel,
	}, p0, p1)
	if err != nil {
		t.Fatal(err)
	}
	winner, err := g.Run(context.Background())
	if err != nil {
		t.Logf("Event log:\n%s", log.FormatAll(g.Logger.Events()))
		t.Fatalf("match error: %v", err)
	}
	if winner < game.NoWinner || winner > 1 {
		t.Fatalf("winner = %d", winner)
	}
	if len(g.State().DamageLog) == 0 {
		t.Fatal("no damage was dealt")
	}
}
