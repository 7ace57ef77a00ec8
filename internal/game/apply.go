package game

import (
	"errors"
	"fmt"
	"maps"
	"slices"
)

// Apply returns the state that results from applying m to s. s is never
// modified; unchanged parts of the tree are shared with the result. On error
// the returned state is s itself.
func Apply(s *GameState, m Mutation) (*GameState, error) {
	next, err := apply(s, m)
	if err != nil {
		return s, fmt.Errorf("%w: %s: %v", ErrMalformedMutation, m.Kind(), err)
	}
	if _, ok := m.(ClearMutationLog); !ok {
		next.MutationLog = appendClipped(next.MutationLog, MutationLogEntry{
			RoundNumber: next.RoundNumber,
			Mutation:    m,
		})
	}
	return next, nil
}

// ApplyAll applies mutations in order and stops at the first error.
func ApplyAll(s *GameState, ms ...Mutation) (*GameState, error) {
	for _, m := range ms {
		var err error
		if s, err = Apply(s, m); err != nil {
			return s, err
		}
	}
	return s, nil
}

func apply(s *GameState, m Mutation) (*GameState, error) {
	switch m := m.(type) {
	case ChangePhase:
		c := s.clone()
		c.Phase = m.NewPhase
		return c, nil

	case StepRound:
		c := s.clone()
		c.RoundNumber++
		return c, nil

	case SwitchTurn:
		c := s.clone()
		c.CurrentTurn = s.Opponent(s.CurrentTurn)
		return c, nil

	case SetWinner:
		c := s.clone()
		c.Winner = m.Winner
		return c, nil

	case TransferCard:
		return s.withPlayer(m.Who, func(p *PlayerState) error {
			from := p.cards(m.From)
			idx := slices.IndexFunc(from, func(c *CardState) bool { return c.ID == m.CardID })
			if idx < 0 {
				return fmt.Errorf("card %d not in %s", m.CardID, m.From)
			}
			card := from[idx]
			p.setCards(m.From, slices.Delete(slices.Clone(from), idx, idx+1))
			p.setCards(m.To, appendClipped(p.cards(m.To), card))
			return nil
		})

	case SwitchActive:
		return s.withPlayer(m.Who, func(p *PlayerState) error {
			if !slices.ContainsFunc(p.Characters, func(ch *CharacterState) bool { return ch.ID == m.CharacterID }) {
				return fmt.Errorf("character %d does not belong to player %d", m.CharacterID, m.Who)
			}
			p.ActiveCharacterID = m.CharacterID
			return nil
		})

	case DisposeCard:
		return s.withPlayer(m.Who, func(p *PlayerState) error {
			for _, a := range []CardArea{CardAreaHands, CardAreaPiles} {
				list := p.cards(a)
				idx := slices.IndexFunc(list, func(c *CardState) bool { return c.ID == m.CardID })
				if idx >= 0 {
					p.setCards(a, slices.Delete(slices.Clone(list), idx, idx+1))
					return nil
				}
			}
			return fmt.Errorf("card %d not found", m.CardID)
		})

	case CreateCard:
		def, err := s.Data.Card(m.DefinitionID)
		if err != nil {
			return nil, err
		}
		id := s.NextID
		c, err := s.withPlayer(m.Who, func(p *PlayerState) error {
			card := &CardState{ID: id, Definition: def}
			p.setCards(m.Target, appendClipped(p.cards(m.Target), card))
			// Cards put into the pile before the first round form the deck.
			if s.RoundNumber == 0 && m.Target == CardAreaPiles {
				p.InitialPiles = appendClipped(p.InitialPiles, card)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
		c.NextID++
		return c, nil

	case CreateCharacter:
		def, err := s.Data.Character(m.DefinitionID)
		if err != nil {
			return nil, err
		}
		id := s.NextID
		vars := make(Vars, len(def.Vars))
		for name, cfg := range def.Vars {
			vars[name] = cfg.Initial
		}
		if _, ok := vars[VarAlive]; !ok {
			vars[VarAlive] = 1
		}
		if _, ok := vars[VarAura]; !ok {
			vars[VarAura] = int(AuraNone)
		}
		c, err := s.withPlayer(m.Who, func(p *PlayerState) error {
			p.Characters = appendClipped(p.Characters, &CharacterState{ID: id, Definition: def, Variables: vars})
			return nil
		})
		if err != nil {
			return nil, err
		}
		c.NextID++
		return c, nil

	case CreateEntity:
		def, err := s.Data.Entity(m.DefinitionID)
		if err != nil {
			return nil, err
		}
		id := s.NextID
		entity := &EntityState{ID: id, Definition: def, Variables: maps.Clone(m.Variables)}
		if entity.Variables == nil {
			entity.Variables = Vars{}
		}
		c, err := s.withPlayer(m.Where.Who, func(p *PlayerState) error {
			if m.Where.Type == AreaCharacters {
				return updateCharacter(p, m.Where.CharacterID, func(ch *CharacterState) error {
					ch.Entities = appendClipped(ch.Entities, entity)
					return nil
				})
			}
			p.setArea(m.Where.Type, appendClipped(p.area(m.Where.Type), entity))
			return nil
		})
		if err != nil {
			return nil, err
		}
		c.NextID++
		return c, nil

	case DisposeEntity:
		return s.withEntity(m.EntityID, func(*EntityState) (*EntityState, error) {
			return nil, nil
		})

	case ModifyEntityVar:
		loc, ok := s.Locate(m.EntityID)
		if !ok {
			return nil, fmt.Errorf("entity %d not found", m.EntityID)
		}
		if loc.IsCharacter() {
			return s.withPlayer(loc.Area.Who, func(p *PlayerState) error {
				return updateCharacter(p, m.EntityID, func(ch *CharacterState) error {
					ch.Variables = ch.Variables.with(m.VarName, m.Value)
					return nil
				})
			})
		}
		return s.withEntity(m.EntityID, func(e *EntityState) (*EntityState, error) {
			cp := *e
			cp.Variables = e.Variables.with(m.VarName, m.Value)
			return &cp, nil
		})

	case ReplaceCharacterDefinition:
		def, err := s.Data.Character(m.DefinitionID)
		if err != nil {
			return nil, err
		}
		_, who, ok := s.Character(m.CharacterID)
		if !ok {
			return nil, fmt.Errorf("character %d not found", m.CharacterID)
		}
		return s.withPlayer(who, func(p *PlayerState) error {
			return updateCharacter(p, m.CharacterID, func(ch *CharacterState) error {
				ch.Definition = def
				return nil
			})
		})

	case ResetDice:
		return s.withPlayer(m.Who, func(p *PlayerState) error {
			p.Dice = slices.Clone(m.Dice)
			return nil
		})

	case StepRandom:
		c := s.clone()
		c.Random = m.Value
		return c, nil

	case SetPlayerFlag:
		return s.withPlayer(m.Who, func(p *PlayerState) error {
			switch m.Flag {
			case FlagDeclaredEnd:
				p.DeclaredEnd = m.Value
			case FlagHasDefeated:
				p.HasDefeated = m.Value
			case FlagCanPlunging:
				p.CanPlunging = m.Value
			case FlagLegendUsed:
				p.LegendUsed = m.Value
			case FlagSkipNextTurn:
				p.SkipNextTurn = m.Value
			default:
				return fmt.Errorf("unknown flag %d", m.Flag)
			}
			return nil
		})

	case PushDamageLog:
		c := s.clone()
		c.DamageLog = appendClipped(c.DamageLog, m.Damage)
		return c, nil

	case PushSkillLog:
		c := s.clone()
		c.SkillLog = appendClipped(c.SkillLog, m.Skill)
		return c, nil

	case IncreaseDisposedSupportCount:
		return s.withPlayer(m.Who, func(p *PlayerState) error {
			p.DisposedSupportCount++
			return nil
		})

	case ClearMutationLog:
		c := s.clone()
		c.MutationLog = nil
		return c, nil
	}
	return nil, errors.New("unknown mutation variant")
}

// withPlayer copies the state and player who, then lets fn edit the copy.
func (s *GameState) withPlayer(who int, fn func(p *PlayerState) error) (*GameState, error) {
	if who != 0 && who != 1 {
		return nil, fmt.Errorf("invalid player %d", who)
	}
	p := s.Players[who].clone()
	if err := fn(p); err != nil {
		return nil, err
	}
	c := s.clone()
	c.Players[who] = p
	return c, nil
}

// withEntity replaces the entity with the given id by fn's result, or
// removes it when fn returns nil. Characters are rejected.
func (s *GameState) withEntity(id int, fn func(e *EntityState) (*EntityState, error)) (*GameState, error) {
	loc, ok := s.Locate(id)
	if !ok {
		return nil, fmt.Errorf("entity %d not found", id)
	}
	if loc.IsCharacter() {
		return nil, fmt.Errorf("%d is a character", id)
	}
	return s.withPlayer(loc.Area.Who, func(p *PlayerState) error {
		if loc.Area.Type == AreaCharacters {
			return updateCharacter(p, loc.Area.CharacterID, func(ch *CharacterState) error {
				list, err := replaceEntity(ch.Entities, id, fn)
				ch.Entities = list
				return err
			})
		}
		list, err := replaceEntity(p.area(loc.Area.Type), id, fn)
		if err != nil {
			return err
		}
		p.setArea(loc.Area.Type, list)
		return nil
	})
}

func updateCharacter(p *PlayerState, id int, fn func(ch *CharacterState) error) error {
	idx := slices.IndexFunc(p.Characters, func(ch *CharacterState) bool { return ch.ID == id })
	if idx < 0 {
		return fmt.Errorf("character %d not found for player %d", id, p.Who)
	}
	ch := p.Characters[idx].clone()
	if err := fn(ch); err != nil {
		return err
	}
	chars := slices.Clone(p.Characters)
	chars[idx] = ch
	p.Characters = chars
	return nil
}

func replaceEntity(list []*EntityState, id int, fn func(*EntityState) (*EntityState, error)) ([]*EntityState, error) {
	idx := slices.IndexFunc(list, func(e *EntityState) bool { return e.ID == id })
	if idx < 0 {
		return list, fmt.Errorf("entity %d not found", id)
	}
	e, err := fn(list[idx])
	if err != nil {
		return list, err
	}
	out := slices.Clone(list)
	if e == nil {
		return slices.Delete(out, idx, idx+1), nil
	}
	out[idx] = e
	return out, nil
}

func (p *PlayerState) setArea(t AreaType, list []*EntityState) {
	switch t {
	case AreaCombatStatuses:
		p.CombatStatuses = list
	case AreaSummons:
		p.Summons = list
	case AreaSupports:
		p.Supports = list
	}
}

func (p *PlayerState) setCards(a CardArea, list []*CardState) {
	if a == CardAreaHands {
		p.Hands = list
	} else {
		p.Piles = list
	}
}
