package game

import (
	"errors"
	"slices"
	"testing"
)

// recorder returns an entity definition whose triggered skill appends name
// to out whenever on fires.
func recorder(id int, t EntityType, on EventName, name string, out *[]string, action SkillAction) *EntityDefinition {
	return &EntityDefinition{
		ID:   id,
		Name: name,
		Type: t,
		Skills: []*SkillDefinition{{
			ID:        id * 10,
			Type:      SkillTriggered,
			TriggerOn: on,
			Action: func(c *Context, arg EventArg) error {
				*out = append(*out, name)
				if action != nil {
					return action(c, arg)
				}
				return nil
			},
		}},
	}
}

func TestDispatchScanOrder(t *testing.T) {
	var order []string
	r := newTestRegistry()
	r.AddEntity(recorder(2101, EntityStatus, OnActionPhase, "standby status", &order, nil))
	r.AddEntity(recorder(2102, EntityCombatStatus, OnActionPhase, "p0 combat", &order, nil))
	r.AddEntity(recorder(2103, EntityStatus, OnActionPhase, "p1 active status", &order, nil))
	r.AddEntity(recorder(2104, EntitySummon, OnActionPhase, "p1 summon", &order, nil))

	s := newTestState(t, r)
	s = mustApply(t, s,
		CreateEntity{Where: EntityArea{Type: AreaSummons, Who: 1}, DefinitionID: 2104},
		CreateEntity{Where: EntityArea{Type: AreaCombatStatuses, Who: 0}, DefinitionID: 2102},
		CreateEntity{Where: EntityArea{Type: AreaCharacters, Who: 1, CharacterID: 3}, DefinitionID: 2103},
		CreateEntity{Where: EntityArea{Type: AreaCharacters, Who: 0, CharacterID: 2}, DefinitionID: 2101},
	)

	d := &Dispatcher{Selector: testSelector}
	if _, err := d.Dispatch(s, []Event{{Name: OnActionPhase, Arg: PlayerArg{}}}); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	want := []string{"standby status", "p0 combat", "p1 active status", "p1 summon"}
	if !slices.Equal(order, want) {
		t.Errorf("turn 0 order = %v, want %v", order, want)
	}

	order = nil
	s = mustApply(t, s, SwitchTurn{}, SwitchActive{Who: 0, CharacterID: 2})
	if _, err := d.Dispatch(s, []Event{{Name: OnActionPhase, Arg: PlayerArg{}}}); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	want = []string{"p1 active status", "p1 summon", "standby status", "p0 combat"}
	if !slices.Equal(order, want) {
		t.Errorf("turn 1 order = %v, want %v", order, want)
	}
}

func TestDispatchRevalidatesListeners(t *testing.T) {
	var order []string
	r := newTestRegistry()
	r.AddEntity(recorder(2201, EntityCombatStatus, OnActionPhase, "x", &order, func(c *Context, _ EventArg) error {
		for _, e := range c.Self().CombatStatuses {
			if e.Definition.ID == 2202 {
				return c.Dispose(e.ID)
			}
		}
		return nil
	}))
	r.AddEntity(recorder(2202, EntityCombatStatus, OnActionPhase, "y", &order, nil))

	s := newTestState(t, r)
	s = mustApply(t, s,
		CreateEntity{Where: EntityArea{Type: AreaCombatStatuses, Who: 0}, DefinitionID: 2201},
		CreateEntity{Where: EntityArea{Type: AreaCombatStatuses, Who: 0}, DefinitionID: 2202},
	)

	d := &Dispatcher{Selector: testSelector}
	next, err := d.Dispatch(s, []Event{{Name: OnActionPhase, Arg: PlayerArg{}}})
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if !slices.Equal(order, []string{"x"}) {
		t.Errorf("order = %v, want only x", order)
	}
	if n := len(next.Players[0].CombatStatuses); n != 1 {
		t.Errorf("combat statuses = %d, want 1", n)
	}
}

func TestDispatchIsDepthFirst(t *testing.T) {
	var order []string
	r := newTestRegistry()
	r.AddEntity(recorder(2301, EntityCombatStatus, OnActionPhase, "x", &order, func(c *Context, _ EventArg) error {
		c.Emit(OnDeclareEnd, PlayerArg{Who: c.Who()})
		return nil
	}))
	r.AddEntity(recorder(2302, EntityCombatStatus, OnActionPhase, "y", &order, nil))
	r.AddEntity(recorder(2303, EntitySummon, OnDeclareEnd, "z", &order, nil))

	s := newTestState(t, r)
	s = mustApply(t, s,
		CreateEntity{Where: EntityArea{Type: AreaCombatStatuses, Who: 0}, DefinitionID: 2301},
		CreateEntity{Where: EntityArea{Type: AreaCombatStatuses, Who: 0}, DefinitionID: 2302},
		CreateEntity{Where: EntityArea{Type: AreaSummons, Who: 0}, DefinitionID: 2303},
	)

	var observed []EventName
	d := &Dispatcher{
		Selector: testSelector,
		OnEvent:  func(_ *GameState, ev Event) { observed = append(observed, ev.Name) },
	}
	if _, err := d.Dispatch(s, []Event{{Name: OnActionPhase, Arg: PlayerArg{}}}); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if want := []string{"x", "z", "y"}; !slices.Equal(order, want) {
		t.Errorf("order = %v, want %v", order, want)
	}
	if want := []EventName{OnActionPhase, OnDeclareEnd}; !slices.Equal(observed, want) {
		t.Errorf("observed = %v, want %v", observed, want)
	}
}

func TestDispatchSkipsExhaustedPerRoundListener(t *testing.T) {
	var order []string
	r := newTestRegistry()
	def := recorder(2401, EntityCombatStatus, OnActionPhase, "limited", &order, nil)
	def.Vars = map[string]VarConfig{"perRound": Variable(1)}
	def.Skills[0].UsagePerRoundVarName = "perRound"
	r.AddEntity(def)

	s := newTestState(t, r)
	s = mustApply(t, s,
		CreateEntity{Where: EntityArea{Type: AreaCombatStatuses, Who: 0}, DefinitionID: 2401, Variables: Vars{"perRound": 0}},
	)
	d := &Dispatcher{Selector: testSelector}
	if _, err := d.Dispatch(s, []Event{{Name: OnActionPhase, Arg: PlayerArg{}}}); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if len(order) != 0 {
		t.Errorf("exhausted listener ran: %v", order)
	}

	c := callerContext(t, s, 5)
	if err := c.ResetUsagePerRound(5); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if _, err := d.Dispatch(c.State(), []Event{{Name: OnActionPhase, Arg: PlayerArg{}}}); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if !slices.Equal(order, []string{"limited"}) {
		t.Errorf("order after reset = %v", order)
	}
}

func TestDispatchRoutesRequests(t *testing.T) {
	var order []string
	r := newTestRegistry()
	r.AddEntity(recorder(2501, EntityCombatStatus, OnActionPhase, "asker", &order, func(c *Context, _ EventArg) error {
		c.Reroll(2)
		return nil
	}))
	s := newTestState(t, r)
	s = mustApply(t, s, CreateEntity{Where: EntityArea{Type: AreaCombatStatuses, Who: 1}, DefinitionID: 2501})

	var got []Event
	d := &Dispatcher{
		Selector: testSelector,
		OnRequest: func(s *GameState, ev Event) (*GameState, error) {
			got = append(got, ev)
			return Apply(s, StepRound{})
		},
	}
	next, err := d.Dispatch(s, []Event{{Name: OnActionPhase, Arg: PlayerArg{}}})
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if len(got) != 1 || got[0].Name != RequestReroll {
		t.Fatalf("requests = %v, want one reroll", got)
	}
	if arg := got[0].Arg.(RerollArg); arg.Who != 1 || arg.Times != 2 {
		t.Errorf("reroll arg = %+v", arg)
	}
	if next.RoundNumber != s.RoundNumber+1 {
		t.Error("state returned by the request handler was dropped")
	}
}

func TestDispatchDepthLimit(t *testing.T) {
	var order []string
	r := newTestRegistry()
	r.AddEntity(recorder(2601, EntityCombatStatus, OnDeclareEnd, "loop", &order, func(c *Context, arg EventArg) error {
		c.Emit(OnDeclareEnd, arg)
		return nil
	}))
	s := newTestState(t, r)
	s = mustApply(t, s, CreateEntity{Where: EntityArea{Type: AreaCombatStatuses, Who: 0}, DefinitionID: 2601})

	d := &Dispatcher{Selector: testSelector}
	_, err := d.Dispatch(s, []Event{{Name: OnDeclareEnd, Arg: PlayerArg{}}})
	if !errors.Is(err, ErrData) {
		t.Fatalf("err = %v, want ErrData", err)
	}
	if len(order) != maxDispatchDepth+1 {
		t.Errorf("listener ran %d times, want %d", len(order), maxDispatchDepth+1)
	}
}
