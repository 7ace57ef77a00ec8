package game

import (
	"fmt"
	"slices"
)

// Position names a slot relative to a player's active character.
type Position int

const (
	PosActive Position = iota
	PosStandby
	PosNext
	PosPrev
)

// PositionIndex returns the board index of a character, or -1.
func (c *Context) PositionIndex(characterID int) int {
	_, who, ok := c.state.Character(characterID)
	if !ok {
		return -1
	}
	return slices.IndexFunc(c.state.Players[who].Characters, func(ch *CharacterState) bool {
		return ch.ID == characterID
	})
}

// IsActive reports whether the character is its player's active one.
func (c *Context) IsActive(characterID int) bool {
	_, who, ok := c.state.Character(characterID)
	return ok && c.state.Players[who].ActiveCharacterID == characterID
}

// ActiveCharacter returns a player's active character.
func (c *Context) ActiveCharacter(who int) *CharacterState {
	return c.state.Players[who].ActiveCharacter()
}

// NextCharacter walks offset alive characters forward (negative: backward)
// from the active one. It returns nil when no other alive character exists.
func (c *Context) NextCharacter(who, offset int) *CharacterState {
	return c.state.Players[who].NextCharacter(offset)
}

// SatisfyPosition reports whether the character is in the given position.
// Defeated characters are never next or prev.
func (c *Context) SatisfyPosition(characterID int, pos Position) bool {
	ch, who, ok := c.state.Character(characterID)
	if !ok {
		return false
	}
	switch pos {
	case PosActive:
		return c.IsActive(characterID)
	case PosStandby:
		return !c.IsActive(characterID)
	case PosNext:
		next := c.NextCharacter(who, 1)
		return next != nil && next.ID == ch.ID
	case PosPrev:
		prev := c.NextCharacter(who, -1)
		return prev != nil && prev.ID == ch.ID
	}
	return false
}

// SwitchActive makes the character its player's active one.
func (c *Context) SwitchActive(characterID int) error {
	ch, who, ok := c.state.Character(characterID)
	if !ok {
		return fmt.Errorf("%w: switch to missing character %d", ErrData, characterID)
	}
	if !ch.Alive() {
		return fmt.Errorf("%w: switch to defeated character %d", ErrData, characterID)
	}
	from := c.state.Players[who].ActiveCharacterID
	if from == characterID {
		return nil
	}
	if err := c.mutate(SwitchActive{Who: who, CharacterID: characterID}); err != nil {
		return err
	}
	if err := c.mutate(SetPlayerFlag{Who: who, Flag: FlagCanPlunging, Value: true}); err != nil {
		return err
	}
	c.emit(OnSwitchActive, SwitchInfo{Who: who, FromID: from, ToID: characterID})
	return nil
}

// GainEnergy adds energy to each alive target, capped at maxEnergy.
func (c *Context) GainEnergy(value int, targets ...int) error {
	for _, id := range targets {
		ch, _, ok := c.state.Character(id)
		if !ok || !ch.Alive() {
			continue
		}
		cur := ch.Variables[VarEnergy]
		next := min(cur+value, ch.Variables[VarMaxEnergy])
		if next == cur {
			continue
		}
		if err := c.mutate(ModifyEntityVar{EntityID: id, VarName: VarEnergy, Value: next}); err != nil {
			return err
		}
	}
	return nil
}

// LoseEnergy removes energy from each target, flooring at zero.
func (c *Context) LoseEnergy(value int, targets ...int) error {
	for _, id := range targets {
		ch, _, ok := c.state.Character(id)
		if !ok {
			continue
		}
		cur := ch.Variables[VarEnergy]
		next := max(0, cur-value)
		if next == cur {
			continue
		}
		if err := c.mutate(ModifyEntityVar{EntityID: id, VarName: VarEnergy, Value: next}); err != nil {
			return err
		}
	}
	return nil
}

// AbsorbStrategy picks which dice AbsorbDice takes.
type AbsorbStrategy int

const (
	// AbsorbSeq takes the first n dice in pool order.
	AbsorbSeq AbsorbStrategy = iota
	// AbsorbDiff takes up to n dice of distinct types. Omni dice are always
	// taken.
	AbsorbDiff
)

// AbsorbDice removes dice from the caller's pool and returns them.
func (c *Context) AbsorbDice(strategy AbsorbStrategy, count int) ([]DiceType, error) {
	who := c.caller.Who
	dice := c.state.Players[who].Dice
	var taken, rest []DiceType
	switch strategy {
	case AbsorbSeq:
		n := min(count, len(dice))
		taken = slices.Clone(dice[:n])
		rest = slices.Clone(dice[n:])
	case AbsorbDiff:
		for _, d := range dice {
			if len(taken) < count && (d == DiceOmni || !slices.Contains(taken, d)) {
				taken = append(taken, d)
			} else {
				rest = append(rest, d)
			}
		}
	default:
		return nil, fmt.Errorf("%w: unknown absorb strategy %d", ErrData, strategy)
	}
	if err := c.mutate(ResetDice{Who: who, Dice: rest}); err != nil {
		return nil, err
	}
	return taken, nil
}

// GenerateDice adds count dice of type t to the caller's pool.
func (c *Context) GenerateDice(t DiceType, count int) error {
	if t != DiceOmni && !t.IsElement() {
		return fmt.Errorf("%w: cannot generate %s dice", ErrData, t)
	}
	dice := make([]DiceType, count)
	for i := range dice {
		dice[i] = t
	}
	return c.addDice(c.caller.Who, dice)
}

// GenerateRandomElementDice adds count dice of distinct random elements.
func (c *Context) GenerateRandomElementDice(count int) error {
	pool := []DiceType{DiceCryo, DiceHydro, DicePyro, DiceElectro, DiceAnemo, DiceGeo, DiceDendro}
	var dice []DiceType
	for i := 0; i < count && len(pool) > 0; i++ {
		idx, err := c.RandomInt(len(pool))
		if err != nil {
			return err
		}
		dice = append(dice, pool[idx])
		pool = slices.Delete(pool, idx, idx+1)
	}
	return c.addDice(c.caller.Who, dice)
}

func (c *Context) addDice(who int, dice []DiceType) error {
	p := c.state.Players[who]
	all := append(slices.Clone(p.Dice), dice...)
	all = SortDice(p, all)
	if limit := c.state.Config.MaxDice; limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	return c.mutate(ResetDice{Who: who, Dice: all})
}

// DrawCards moves up to count cards from the top of the pile to hand. With a
// non-empty tag only cards carrying it are drawn. Cards over the hand limit
// are discarded unused.
func (c *Context) DrawCards(who, count int, tag string) error {
	for i := 0; i < count; i++ {
		p := c.state.Players[who]
		idx := slices.IndexFunc(p.Piles, func(cs *CardState) bool {
			return tag == "" || cs.Definition.HasTag(tag)
		})
		if idx < 0 {
			return nil
		}
		card := p.Piles[idx]
		if err := c.mutate(TransferCard{Who: who, From: CardAreaPiles, To: CardAreaHands, CardID: card.ID}); err != nil {
			return err
		}
		if err := c.discardOverflow(who, card.ID); err != nil {
			return err
		}
	}
	return nil
}

// CreateHandCard adds a new card to a player's hand.
func (c *Context) CreateHandCard(who, defID int) error {
	if _, err := c.state.Data.Card(defID); err != nil {
		return err
	}
	if err := c.mutate(CreateCard{Who: who, Target: CardAreaHands, DefinitionID: defID}); err != nil {
		return err
	}
	return c.discardOverflow(who, c.state.NextID-1)
}

// CreatePileCard inserts a new card at the end of a player's pile.
func (c *Context) CreatePileCard(who, defID int) error {
	if _, err := c.state.Data.Card(defID); err != nil {
		return err
	}
	return c.mutate(CreateCard{Who: who, Target: CardAreaPiles, DefinitionID: defID})
}

func (c *Context) discardOverflow(who, cardID int) error {
	if len(c.state.Players[who].Hands) <= c.state.Config.MaxHands {
		return nil
	}
	return c.mutate(DisposeCard{Who: who, CardID: cardID, Used: false})
}

// UseSkill requests that the caller's side uses a skill of its active
// character. A zero skillID means the first normal attack.
func (c *Context) UseSkill(skillID int) error {
	who := c.caller.Who
	active := c.state.Players[who].ActiveCharacter()
	if active == nil {
		return fmt.Errorf("%w: player %d has no active character", ErrData, who)
	}
	if skillID == 0 {
		for _, sk := range active.Definition.Skills {
			if sk.Type == SkillNormal {
				skillID = sk.ID
				break
			}
		}
	}
	if active.Definition.Skill(skillID) == nil {
		return fmt.Errorf("%w: character %d has no skill %d", ErrData, active.Definition.ID, skillID)
	}
	c.emit(RequestUseSkill, UseSkillArg{Who: who, CallerID: active.ID, SkillID: skillID})
	return nil
}

// SwitchCards requests that the caller's side may swap hand cards.
func (c *Context) SwitchCards() {
	c.emit(RequestSwitchHands, SwitchHandsArg{Who: c.caller.Who})
}

// Reroll requests extra reroll rounds for the caller's side.
func (c *Context) Reroll(times int) {
	c.emit(RequestReroll, RerollArg{Who: c.caller.Who, Times: times})
}
