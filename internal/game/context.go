package game

import "fmt"

// CallerInfo tells a Selector who is asking.
type CallerInfo struct {
	ID   int
	Who  int
	Area EntityArea
}

// Selector resolves a query string to an ordered list of live character or
// entity ids. It must be pure and total: a query that does not parse or
// matches nothing yields an empty list.
type Selector func(state *GameState, caller CallerInfo, query string) []int

// Context is the runtime one effect description executes in. Every primitive
// applies its mutations immediately, so later primitives in the same effect
// observe up-to-date state. Events are queued and handed back to the caller.
type Context struct {
	state        *GameState
	skill        SkillInfo
	caller       CallerInfo
	selector     Selector
	events       []Event
	fromReaction Reaction
}

func newContext(s *GameState, sel Selector, info SkillInfo) (*Context, error) {
	loc, ok := s.Locate(info.CallerID)
	if !ok {
		return nil, fmt.Errorf("%w: skill caller %d does not exist", ErrData, info.CallerID)
	}
	return &Context{
		state:    s,
		skill:    info,
		caller:   CallerInfo{ID: info.CallerID, Who: loc.Area.Who, Area: loc.Area},
		selector: sel,
	}, nil
}

// NewContext returns a context for running effects by hand, e.g. in tests or
// tools. The orchestrator creates its own.
func NewContext(s *GameState, sel Selector, info SkillInfo) (*Context, error) {
	return newContext(s, sel, info)
}

// RunSkill executes a skill's action for the given invocation and returns the
// resulting state and the events it queued. On error the state reflects every
// mutation applied before the failure and the events emitted so far are kept.
func RunSkill(s *GameState, sel Selector, info SkillInfo, arg EventArg) (*GameState, []Event, error) {
	c, err := newContext(s, sel, info)
	if err != nil {
		return s, nil, err
	}
	if info.Definition == nil || info.Definition.Action == nil {
		return s, nil, nil
	}
	err = info.Definition.Action(c, arg)
	return c.state, c.events, err
}

// State returns the current state. It changes after every primitive.
func (c *Context) State() *GameState { return c.state }

// Events returns the events queued so far.
func (c *Context) Events() []Event { return c.events }

// Skill returns the invocation this context runs.
func (c *Context) Skill() SkillInfo { return c.skill }

// CallerID returns the id of the entity or character that owns the skill.
func (c *Context) CallerID() int { return c.caller.ID }

// Who returns the player owning the caller.
func (c *Context) Who() int { return c.caller.Who }

// Caller re-resolves the caller in the current state.
func (c *Context) Caller() (Located, bool) {
	return c.state.Locate(c.caller.ID)
}

// Self returns the caller's player.
func (c *Context) Self() *PlayerState { return c.state.Players[c.caller.Who] }

// Opp returns the caller's opponent.
func (c *Context) Opp() *PlayerState { return c.state.Players[1-c.caller.Who] }

// FromReaction is the reaction whose handler is running, if any.
func (c *Context) FromReaction() Reaction { return c.fromReaction }

// Select resolves a query relative to the caller.
func (c *Context) Select(query string) []int {
	if c.selector == nil {
		return nil
	}
	return c.selector(c.state, c.caller, query)
}

// SelectOne resolves a query that must match exactly one target.
func (c *Context) SelectOne(query string) (int, error) {
	ids := c.Select(query)
	if len(ids) != 1 {
		return 0, fmt.Errorf("%w: query %q matched %d targets, want 1", ErrData, query, len(ids))
	}
	return ids[0], nil
}

// Variable reads a variable of the caller.
func (c *Context) Variable(name string) int {
	return c.VariableOf(c.caller.ID, name)
}

// VariableOf reads a variable of any live character or entity.
func (c *Context) VariableOf(id int, name string) int {
	loc, ok := c.state.Locate(id)
	if !ok {
		return 0
	}
	return loc.Variables()[name]
}

// CountOfSkill counts how often caller used skill this round.
func (c *Context) CountOfSkill(callerID, skillID int) int {
	n := 0
	for _, e := range c.state.SkillLog {
		if e.RoundNumber == c.state.RoundNumber && e.CallerID == callerID && e.SkillID == skillID {
			n++
		}
	}
	return n
}

// --- low-level ---

func (c *Context) mutate(m Mutation) error {
	next, err := Apply(c.state, m)
	if err != nil {
		return err
	}
	c.state = next
	return nil
}

func (c *Context) emit(name EventName, arg EventArg) {
	c.events = append(c.events, Event{Name: name, Arg: arg})
}

// Emit queues an event for dispatch after the effect returns.
func (c *Context) Emit(name EventName, arg EventArg) {
	c.emit(name, arg)
}

// SetVariable sets a variable of the caller.
func (c *Context) SetVariable(name string, value int) error {
	return c.SetVariableOf(c.caller.ID, name, value)
}

// SetVariableOf sets a variable of any live character or entity.
func (c *Context) SetVariableOf(id int, name string, value int) error {
	if _, ok := c.state.Locate(id); !ok {
		return fmt.Errorf("%w: set %s on missing entity %d", ErrData, name, id)
	}
	return c.mutate(ModifyEntityVar{EntityID: id, VarName: name, Value: value})
}

// AddVariable adds delta to a variable of the caller.
func (c *Context) AddVariable(name string, delta int) error {
	return c.SetVariable(name, c.Variable(name)+delta)
}

// AddVariableWithMax adds delta to a variable of the caller, capped at limit.
func (c *Context) AddVariableWithMax(name string, delta, limit int) error {
	cur := c.Variable(name)
	return c.SetVariable(name, min(cur+delta, max(limit, cur)))
}

// RandomInt consumes one PRNG step and returns a value in [0, n).
func (c *Context) RandomInt(n int) (int, error) {
	if n <= 0 {
		return 0, fmt.Errorf("%w: random over empty range", ErrData)
	}
	next := nextRandom(c.state.Random)
	if err := c.mutate(StepRandom{Value: next}); err != nil {
		return 0, err
	}
	return int(next % uint64(n)), nil
}

// Pick draws one item through the replayable PRNG.
func Pick[T any](c *Context, items []T) (T, error) {
	var zero T
	i, err := c.RandomInt(len(items))
	if err != nil {
		return zero, err
	}
	return items[i], nil
}
