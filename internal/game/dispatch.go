package game

import "fmt"

// maxDispatchDepth bounds chains of events triggering events.
const maxDispatchDepth = 64

// listener is one triggered skill bound to its owner at collection time.
type listener struct {
	callerID int
	area     EntityArea
	skill    *SkillDefinition
}

// collectListeners returns the skills triggered by name, in scan order.
// Defeated characters do not listen.
func collectListeners(s *GameState, name EventName) []listener {
	var out []listener
	for _, loc := range s.AllEntities() {
		var skills []*SkillDefinition
		if loc.Entity != nil {
			skills = loc.Entity.Definition.Skills
		} else {
			if !loc.Character.Alive() {
				continue
			}
			skills = loc.Character.Definition.Skills
		}
		for _, sk := range skills {
			if sk.Type == SkillTriggered && sk.TriggerOn == name {
				out = append(out, listener{callerID: loc.ID, area: loc.Area, skill: sk})
			}
		}
	}
	return out
}

// prepare re-resolves the listener's owner in s and builds its context. ok is
// false when the owner is gone, defeated, or out of per-round uses.
func (l listener) prepare(s *GameState, sel Selector, fromReaction Reaction) (*Context, bool) {
	loc, ok := s.Locate(l.callerID)
	if !ok {
		return nil, false
	}
	if loc.IsCharacter() && !loc.Character.Alive() {
		return nil, false
	}
	if name := l.skill.UsagePerRoundVarName; name != "" && loc.Variables()[name] <= 0 {
		return nil, false
	}
	return &Context{
		state:        s,
		skill:        SkillInfo{CallerID: l.callerID, Definition: l.skill},
		caller:       CallerInfo{ID: l.callerID, Who: loc.Area.Who, Area: loc.Area},
		selector:     sel,
		fromReaction: fromReaction,
	}, true
}

// run executes the listener if its filter passes.
func (l listener) run(c *Context, arg EventArg) error {
	if l.skill.Filter != nil && !l.skill.Filter(c, arg) {
		return nil
	}
	if l.skill.Action == nil {
		return nil
	}
	return l.skill.Action(c, arg)
}

// handleInline runs every listener of an inline event to completion before
// returning. The payload is shared so each listener sees the previous ones'
// changes. Events queued by the listeners join the caller's queue.
func (c *Context) handleInline(name EventName, arg EventArg) error {
	for _, l := range collectListeners(c.state, name) {
		sub, ok := l.prepare(c.state, c.selector, c.fromReaction)
		if !ok {
			continue
		}
		err := l.run(sub, arg)
		c.state = sub.state
		c.events = append(c.events, sub.events...)
		if err != nil {
			return fmt.Errorf("inline %s of %d: %w", name, l.callerID, err)
		}
	}
	return nil
}

// RequestFunc handles a request event. It returns the state after the
// request has been served.
type RequestFunc func(s *GameState, ev Event) (*GameState, error)

// Dispatcher delivers queued events to triggered skills depth-first: events
// raised by a listener are fully dispatched before the next listener of the
// outer event runs.
type Dispatcher struct {
	Selector  Selector
	OnRequest RequestFunc
	// OnEvent observes every delivered event, before its listeners run.
	OnEvent func(s *GameState, ev Event)
}

// Dispatch delivers events in order and returns the resulting state.
func (d *Dispatcher) Dispatch(s *GameState, events []Event) (*GameState, error) {
	return d.dispatch(s, events, 0)
}

func (d *Dispatcher) dispatch(s *GameState, events []Event, depth int) (*GameState, error) {
	if depth > maxDispatchDepth {
		return s, fmt.Errorf("%w: event chain deeper than %d", ErrData, maxDispatchDepth)
	}
	for _, ev := range events {
		if ev.Name.IsRequest() {
			if d.OnRequest == nil {
				continue
			}
			next, err := d.OnRequest(s, ev)
			if err != nil {
				return s, err
			}
			s = next
			continue
		}
		if d.OnEvent != nil {
			d.OnEvent(s, ev)
		}
		for _, l := range collectListeners(s, ev.Name) {
			c, ok := l.prepare(s, d.Selector, ReactionNone)
			if !ok {
				continue
			}
			err := l.run(c, ev.Arg)
			s = c.state
			if err != nil {
				return s, fmt.Errorf("%s listener %d: %w", ev.Name, l.callerID, err)
			}
			if s, err = d.dispatch(s, c.events, depth+1); err != nil {
				return s, err
			}
		}
	}
	return s, nil
}
