// Package query implements the selector language content uses to name
// characters and entities relative to the effect that asks, e.g.
// "opp active", "my standby characters" or
// "my characters has equipment with definition id 212011".
package query

import (
	"slices"
	"strings"
	"sync"

	"github.com/peterkuimelis/gitcg/internal/game"
)

// New returns a game.Selector backed by the query grammar. Parsed queries
// are cached; unparseable ones select nothing.
func New() game.Selector {
	var cache sync.Map
	return func(s *game.GameState, caller game.CallerInfo, input string) []int {
		if strings.TrimSpace(input) == "" {
			return nil
		}
		var q *Query
		if v, ok := cache.Load(input); ok {
			q = v.(*Query)
		} else {
			parsed, err := Parse(strings.ToLower(input))
			if err != nil {
				cache.Store(input, (*Query)(nil))
				return nil
			}
			cache.Store(input, parsed)
			q = parsed
		}
		if q == nil {
			return nil
		}
		return q.Eval(s, caller)
	}
}

// Eval resolves the query against a state for the given caller.
func (q *Query) Eval(s *game.GameState, caller game.CallerInfo) []int {
	ev := evaluator{s: s, caller: caller}
	out := ev.or(q.Expr)
	if q.Limit != nil && len(out) > *q.Limit {
		out = out[:*q.Limit]
	}
	return out
}

type evaluator struct {
	s      *game.GameState
	caller game.CallerInfo
}

func (e evaluator) or(x *OrExpr) []int {
	out := e.and(x.Left)
	for _, r := range x.Right {
		for _, id := range e.and(r) {
			if !slices.Contains(out, id) {
				out = append(out, id)
			}
		}
	}
	return out
}

func (e evaluator) and(x *AndExpr) []int {
	out := e.unary(x.Left)
	for _, r := range x.Right {
		keep := e.unary(r)
		out = slices.DeleteFunc(out, func(id int) bool { return !slices.Contains(keep, id) })
	}
	return out
}

func (e evaluator) unary(x *Unary) []int {
	if x.Not != nil {
		drop := e.unary(x.Not)
		var out []int
		for _, id := range e.universe() {
			if !slices.Contains(drop, id) {
				out = append(out, id)
			}
		}
		return out
	}
	return e.primary(x.Primary)
}

func (e evaluator) primary(x *Primary) []int {
	switch {
	case x == nil:
		return nil
	case x.Group != nil:
		return e.or(x.Group)
	case x.Self || x.Ref == "caller":
		if _, ok := e.s.Locate(e.caller.ID); ok {
			return []int{e.caller.ID}
		}
		return nil
	case x.Ref == "master":
		loc, ok := e.s.Locate(e.caller.ID)
		if !ok || loc.Character == nil {
			return nil
		}
		return []int{loc.Character.ID}
	case x.ID != nil:
		if _, ok := e.s.Locate(*x.ID); ok {
			return []int{*x.ID}
		}
		return nil
	case x.Phrase != nil:
		return e.phrase(x.Phrase)
	}
	return nil
}

// universe lists every live id from the caller's side first. Defeated
// characters are left out.
func (e evaluator) universe() []int {
	var out []int
	for _, who := range e.sides("") {
		p := e.s.Players[who]
		for _, ch := range p.Characters {
			if ch.Alive() {
				out = append(out, ch.ID)
			}
			for _, ent := range ch.Entities {
				out = append(out, ent.ID)
			}
		}
		for _, list := range [][]*game.EntityState{p.CombatStatuses, p.Summons, p.Supports} {
			for _, ent := range list {
				out = append(out, ent.ID)
			}
		}
	}
	return out
}

func (e evaluator) sides(side string) []int {
	me := e.caller.Who
	switch side {
	case "my":
		return []int{me}
	case "opp":
		return []int{1 - me}
	}
	return []int{me, 1 - me}
}

func (e evaluator) phrase(x *Phrase) []int {
	var out []int
	for _, who := range e.sides(x.Side) {
		p := e.s.Players[who]
		chars := positioned(p, x.Position, x.All)
		switch x.Kind {
		case "", "characters", "character":
			for _, ch := range chars {
				if matchCharacter(ch, x.Filters) {
					out = append(out, ch.ID)
				}
			}
		case "statuses", "equipments":
			want := game.EntityStatus
			if x.Kind == "equipments" {
				want = game.EntityEquipment
			}
			for _, ch := range chars {
				for _, ent := range ch.Entities {
					if ent.Definition.Type == want && matchEntity(ent, x.Filters) {
						out = append(out, ent.ID)
					}
				}
			}
		case "summons", "supports", "combatstatuses":
			if x.Position != "" {
				continue
			}
			list := p.Summons
			switch x.Kind {
			case "supports":
				list = p.Supports
			case "combatstatuses":
				list = p.CombatStatuses
			}
			for _, ent := range list {
				if matchEntity(ent, x.Filters) {
					out = append(out, ent.ID)
				}
			}
		}
	}
	return out
}

// positioned returns the characters of p in board order that hold pos.
// Without a position every alive character qualifies, or every character
// when all is set.
func positioned(p *game.PlayerState, pos string, all bool) []*game.CharacterState {
	switch pos {
	case "active":
		if ch := p.ActiveCharacter(); ch != nil && ch.Alive() {
			return []*game.CharacterState{ch}
		}
		return nil
	case "next", "prev":
		offset := 1
		if pos == "prev" {
			offset = -1
		}
		if ch := p.NextCharacter(offset); ch != nil {
			return []*game.CharacterState{ch}
		}
		return nil
	case "defeated":
		var out []*game.CharacterState
		for _, ch := range p.Characters {
			if !ch.Alive() {
				out = append(out, ch)
			}
		}
		return out
	}
	chars := p.AliveCharacters()
	if all {
		chars = p.Characters
	}
	var out []*game.CharacterState
	for _, ch := range chars {
		if pos == "standby" && ch.ID == p.ActiveCharacterID {
			continue
		}
		out = append(out, ch)
	}
	return out
}

func matchCharacter(ch *game.CharacterState, filters []*Filter) bool {
	for _, f := range filters {
		switch {
		case f.Tag != nil:
			if !ch.Definition.HasTag(*f.Tag) {
				return false
			}
		case f.DefID != nil:
			if ch.Definition.ID != *f.DefID {
				return false
			}
		case f.Has != nil:
			want := game.EntityEquipment
			if f.Has.Kind == "status" {
				want = game.EntityStatus
			}
			if !slices.ContainsFunc(ch.Entities, func(ent *game.EntityState) bool {
				return ent.Definition.Type == want && ent.Definition.ID == f.Has.DefID
			}) {
				return false
			}
		}
	}
	return true
}

func matchEntity(ent *game.EntityState, filters []*Filter) bool {
	for _, f := range filters {
		switch {
		case f.Tag != nil:
			if !ent.Definition.HasTag(*f.Tag) {
				return false
			}
		case f.DefID != nil:
			if ent.Definition.ID != *f.DefID {
				return false
			}
		case f.Has != nil:
			return false
		}
	}
	return true
}
