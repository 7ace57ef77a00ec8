package game

import (
	"fmt"
	"slices"
)

// ActionType enumerates what a player can do on their turn.
type ActionType int

const (
	ActionUseSkill ActionType = iota
	ActionPlayCard
	ActionSwitchActive
	ActionElementalTuning
	ActionDeclareEnd
)

func (a ActionType) String() string {
	switch a {
	case ActionUseSkill:
		return "Use Skill"
	case ActionPlayCard:
		return "Play Card"
	case ActionSwitchActive:
		return "Switch Active"
	case ActionElementalTuning:
		return "Elemental Tuning"
	case ActionDeclareEnd:
		return "Declare End"
	default:
		return "Unknown"
	}
}

// IsCombat reports whether the action ends the player's turn.
func (a ActionType) IsCombat() bool {
	return a == ActionUseSkill || a == ActionSwitchActive || a == ActionDeclareEnd
}

// Action is one legal move offered to a player.
type Action struct {
	Type   ActionType `json:"type"`
	Player int        `json:"player"`
	// SkillID is the skill used by the active character.
	SkillID int `json:"skillId,omitempty"`
	// CardID is the played card, or the card discarded for tuning.
	CardID           int `json:"cardId,omitempty"`
	CardDefinitionID int `json:"cardDefinitionId,omitempty"`
	// CharacterID is the switch target, or the skill's character.
	CharacterID int   `json:"characterId,omitempty"`
	Targets     []int `json:"targets,omitempty"`
	// Element is the element a tuned die turns into.
	Element DiceType        `json:"element,omitempty"`
	Cost    DiceRequirement `json:"cost"`
	Desc    string          `json:"desc"`
}

func (a Action) String() string {
	if a.Desc != "" {
		return a.Desc
	}
	return a.Type.String()
}

// computeActions lists the legal actions of who in the action phase.
func (g *Game) computeActions(who int) []Action {
	s := g.state
	p := s.Players[who]
	var actions []Action

	active := p.ActiveCharacter()
	if active != nil && active.Alive() && !skillsDisabled(active) {
		for _, sk := range active.Definition.Skills {
			if !sk.Type.IsInitiative() {
				continue
			}
			if active.Variables[VarEnergy] < sk.Cost.Energy() || !CanAfford(sk.Cost, p.Dice) {
				continue
			}
			actions = append(actions, Action{
				Type:        ActionUseSkill,
				Player:      who,
				SkillID:     sk.ID,
				CharacterID: active.ID,
				Cost:        sk.Cost.Clone(),
				Desc:        fmt.Sprintf("%s uses %s skill %d", active.Definition.Name, sk.Type, sk.ID),
			})
		}
	}

	for _, card := range p.Hands {
		actions = append(actions, g.cardActions(who, card)...)
	}

	for _, ch := range p.Characters {
		if ch.ID == p.ActiveCharacterID || !ch.Alive() {
			continue
		}
		cost := DiceRequirement{DiceVoid: 1}
		if !CanAfford(cost, p.Dice) {
			continue
		}
		actions = append(actions, Action{
			Type:        ActionSwitchActive,
			Player:      who,
			CharacterID: ch.ID,
			Cost:        cost,
			Desc:        fmt.Sprintf("Switch to %s", ch.Definition.Name),
		})
	}

	if active != nil && slices.ContainsFunc(p.Dice, func(d DiceType) bool { return tunable(d, active) }) {
		for _, card := range p.Hands {
			if card.Definition.HasTag(TagNoTuning) {
				continue
			}
			actions = append(actions, Action{
				Type:             ActionElementalTuning,
				Player:           who,
				CardID:           card.ID,
				CardDefinitionID: card.Definition.ID,
				Element:          active.Definition.Element(),
				Cost:             DiceRequirement{DiceVoid: 1},
				Desc:             fmt.Sprintf("Tune a die by discarding %s", card.Definition.Name),
			})
		}
	}

	actions = append(actions, Action{Type: ActionDeclareEnd, Player: who, Cost: DiceRequirement{}, Desc: "Declare end"})
	return actions
}

// cardActions returns one action per legal target combination of a hand card.
func (g *Game) cardActions(who int, card *CardState) []Action {
	s := g.state
	p := s.Players[who]
	def := card.Definition
	if def.HasTag(TagLegend) && p.LegendUsed {
		return nil
	}
	if req := def.DeckRequirement.Character; req != 0 {
		if !slices.ContainsFunc(p.Characters, func(ch *CharacterState) bool { return ch.Definition.ID == req }) {
			return nil
		}
	}
	if def.Cost.Energy() > 0 {
		active := p.ActiveCharacter()
		if active == nil || active.Variables[VarEnergy] < def.Cost.Energy() {
			return nil
		}
	}
	if !CanAfford(def.Cost, p.Dice) {
		return nil
	}
	active := p.ActiveCharacter()
	if active == nil {
		return nil
	}
	c := g.cardContext(who, active, card)

	var actions []Action
	for _, targets := range cartesian(c, def.Targets) {
		if def.Filter != nil && !def.Filter(c, targets) {
			continue
		}
		actions = append(actions, Action{
			Type:             ActionPlayCard,
			Player:           who,
			CardID:           card.ID,
			CardDefinitionID: def.ID,
			Targets:          targets,
			Cost:             def.Cost.Clone(),
			Desc:             fmt.Sprintf("Play %s%s", def.Name, targetSuffix(targets)),
		})
	}
	return actions
}

// cardContext is the context a card's filter and effect run in: the caller is
// the player's active character.
func (g *Game) cardContext(who int, active *CharacterState, card *CardState) *Context {
	return &Context{
		state:    g.state,
		skill:    SkillInfo{CallerID: active.ID, Definition: card.Definition.Skill, FromCardID: card.ID},
		caller:   CallerInfo{ID: active.ID, Who: who, Area: EntityArea{Type: AreaCharacters, Who: who, CharacterID: active.ID}},
		selector: g.selector,
	}
}

// cartesian expands one query per target slot into every combination. A card
// without target slots has exactly one, empty combination.
func cartesian(c *Context, queries []string) [][]int {
	combos := [][]int{nil}
	for _, q := range queries {
		ids := c.Select(q)
		var next [][]int
		for _, combo := range combos {
			for _, id := range ids {
				next = append(next, append(slices.Clip(combo), id))
			}
		}
		combos = next
	}
	return combos
}

func targetSuffix(targets []int) string {
	if len(targets) == 0 {
		return ""
	}
	return fmt.Sprintf(" on %v", targets)
}

func skillsDisabled(ch *CharacterState) bool {
	return slices.ContainsFunc(ch.Entities, func(e *EntityState) bool {
		return e.Definition.HasTag(TagDisableSkill)
	})
}

// tunable reports whether a die can be converted to the active element.
func tunable(d DiceType, active *CharacterState) bool {
	return d != DiceOmni && d != active.Definition.Element()
}

// validatePayment checks the dice paid for a chosen action against the
// player's pool.
func validatePayment(p *PlayerState, a Action, paid []DiceType) error {
	if !ContainsDice(p.Dice, paid) {
		return fmt.Errorf("%w: paid dice %v not in pool", ErrIO, paid)
	}
	if a.Type == ActionElementalTuning {
		active := p.ActiveCharacter()
		if len(paid) != 1 || active == nil || !tunable(paid[0], active) {
			return fmt.Errorf("%w: elemental tuning needs one non-Omni die of another element", ErrIO)
		}
		return nil
	}
	if !CheckDice(a.Cost, paid) {
		return fmt.Errorf("%w: paid dice %v do not match cost", ErrIO, paid)
	}
	return nil
}
