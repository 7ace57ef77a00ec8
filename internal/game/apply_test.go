package game

import (
	"errors"
	"testing"
)

func TestApplyAssignsSequentialIDs(t *testing.T) {
	r := newTestRegistry()
	s := newTestState(t, r)
	if s.NextID != 5 {
		t.Fatalf("NextID = %d, want 5", s.NextID)
	}
	s = mustApply(t, s,
		CreateCard{Who: 0, Target: CardAreaHands, DefinitionID: testEventCardID},
		CreateEntity{Where: EntityArea{Type: AreaCombatStatuses, Who: 1}, DefinitionID: counterStatusID, Variables: Vars{VarUsage: 2}},
	)
	if got := s.Players[0].Hands[0].ID; got != 5 {
		t.Errorf("card id = %d, want 5", got)
	}
	if got := s.Players[1].CombatStatuses[0].ID; got != 6 {
		t.Errorf("entity id = %d, want 6", got)
	}
	if s.NextID != 7 {
		t.Errorf("NextID = %d, want 7", s.NextID)
	}
}

func TestApplyLeavesOldSnapshotUntouched(t *testing.T) {
	r := newTestRegistry()
	before := newTestState(t, r)
	after := mustApply(t, before,
		ModifyEntityVar{EntityID: 1, VarName: VarHealth, Value: 3},
		ResetDice{Who: 0, Dice: []DiceType{DiceOmni, DiceCryo}},
		SwitchActive{Who: 0, CharacterID: 2},
	)

	if got := character(t, before, 1).Health(); got != 10 {
		t.Errorf("old health = %d, want 10", got)
	}
	if len(before.Players[0].Dice) != 0 {
		t.Errorf("old dice = %v, want empty", before.Players[0].Dice)
	}
	if before.Players[0].ActiveCharacterID != 1 {
		t.Errorf("old active = %d, want 1", before.Players[0].ActiveCharacterID)
	}
	if got := character(t, after, 1).Health(); got != 3 {
		t.Errorf("new health = %d, want 3", got)
	}
	if after.Players[1] != before.Players[1] {
		t.Error("untouched player was copied")
	}
}

func TestApplyMalformedMutation(t *testing.T) {
	r := newTestRegistry()
	s := newTestState(t, r)

	tests := []struct {
		name string
		m    Mutation
	}{
		{"dispose missing entity", DisposeEntity{EntityID: 999}},
		{"dispose character", DisposeEntity{EntityID: 1}},
		{"switch to foreign character", SwitchActive{Who: 0, CharacterID: 3}},
		{"transfer missing card", TransferCard{Who: 0, From: CardAreaPiles, To: CardAreaHands, CardID: 42}},
		{"unknown card definition", CreateCard{Who: 0, Target: CardAreaHands, DefinitionID: 9999}},
		{"invalid player", ResetDice{Who: 2}},
		{"modify missing entity", ModifyEntityVar{EntityID: 77, VarName: VarUsage, Value: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Apply(s, tt.m)
			if !errors.Is(err, ErrMalformedMutation) {
				t.Fatalf("err = %v, want ErrMalformedMutation", err)
			}
			if got != s {
				t.Error("failed Apply did not return the input state")
			}
		})
	}
}

func TestMutationLog(t *testing.T) {
	r := newTestRegistry()
	s := NewGameState(r, DefaultGameConfig())
	s = mustApply(t, s, StepRound{}, SwitchTurn{}, StepRandom{Value: 99})
	if len(s.MutationLog) != 3 {
		t.Fatalf("log length = %d, want 3", len(s.MutationLog))
	}
	if s.MutationLog[0].Mutation.Kind() != MutStepRound {
		t.Errorf("first entry = %s", s.MutationLog[0].Mutation.Kind())
	}
	if s.MutationLog[1].RoundNumber != 1 {
		t.Errorf("round of second entry = %d, want 1", s.MutationLog[1].RoundNumber)
	}

	cleared := mustApply(t, s, ClearMutationLog{})
	if len(cleared.MutationLog) != 0 {
		t.Errorf("log after clear = %d entries, want 0", len(cleared.MutationLog))
	}
	if len(s.MutationLog) != 3 {
		t.Error("clear touched the previous snapshot")
	}
}

func TestMutationLogBranchesDoNotShareTail(t *testing.T) {
	r := newTestRegistry()
	base := mustApply(t, NewGameState(r, DefaultGameConfig()), StepRound{})
	a := mustApply(t, base, SwitchTurn{})
	b := mustApply(t, base, StepRandom{Value: 5})
	if a.MutationLog[1].Mutation.Kind() != MutSwitchTurn {
		t.Errorf("branch a tail = %s", a.MutationLog[1].Mutation.Kind())
	}
	if b.MutationLog[1].Mutation.Kind() != MutStepRandom {
		t.Errorf("branch b tail = %s", b.MutationLog[1].Mutation.Kind())
	}
}

func TestCreateCardBeforeFirstRoundFormsDeck(t *testing.T) {
	r := newTestRegistry()
	s := NewGameState(r, DefaultGameConfig())
	s = mustApply(t, s,
		CreateCard{Who: 0, Target: CardAreaPiles, DefinitionID: testEventCardID},
		StepRound{},
		CreateCard{Who: 0, Target: CardAreaPiles, DefinitionID: testEventCardID},
	)
	if got := len(s.Players[0].InitialPiles); got != 1 {
		t.Errorf("initial piles = %d, want 1", got)
	}
	if got := len(s.Players[0].Piles); got != 2 {
		t.Errorf("piles = %d, want 2", got)
	}
}

func TestMutationWireRoundTrip(t *testing.T) {
	for _, m := range []Mutation{
		CreateEntity{Where: EntityArea{Type: AreaCharacters, Who: 1, CharacterID: 3}, DefinitionID: FrozenStatusID, Variables: Vars{VarDuration: 1}},
		SetPlayerFlag{Who: 1, Flag: FlagCanPlunging, Value: true},
		StepRound{},
	} {
		data, err := MarshalMutation(m)
		if err != nil {
			t.Fatalf("marshal %s: %v", m.Kind(), err)
		}
		got, err := UnmarshalMutation(data)
		if err != nil {
			t.Fatalf("unmarshal %s: %v", m.Kind(), err)
		}
		if got.Kind() != m.Kind() {
			t.Errorf("kind = %s, want %s", got.Kind(), m.Kind())
		}
	}

	if _, err := UnmarshalMutation([]byte(`{"type":"teleport"}`)); err == nil {
		t.Error("unknown mutation type decoded without error")
	}
}
