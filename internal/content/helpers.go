package content

import "github.com/peterkuimelis/gitcg/internal/game"

// Common character variables. energy is the burst energy requirement.
func characterVars(health, energy int) map[string]game.VarConfig {
	return map[string]game.VarConfig{
		game.VarHealth:    game.Variable(health),
		game.VarMaxHealth: game.Variable(health),
		game.VarEnergy:    game.Variable(0),
		game.VarMaxEnergy: game.Variable(energy),
		game.VarAlive:     game.Variable(1),
		game.VarAura:      game.Variable(int(game.AuraNone)),
	}
}

// attack is an initiative skill that damages the opposing active character
// and then runs extra, if any.
func attack(id int, t game.SkillType, cost game.DiceRequirement, dmg game.DamageType, value int, extra game.SkillAction) *game.SkillDefinition {
	return &game.SkillDefinition{
		ID:         id,
		Type:       t,
		Cost:       cost,
		GainEnergy: t != game.SkillBurst,
		Action: func(c *game.Context, arg game.EventArg) error {
			if value > 0 {
				if err := c.Damage(dmg, value, c.Select("opp active")...); err != nil {
					return err
				}
			}
			if extra != nil {
				return extra(c, arg)
			}
			return nil
		},
	}
}

// normalAttack is the usual 1 element + 2 unaligned physical attack.
func normalAttack(id int, element game.DiceType, dmg game.DamageType, value int) *game.SkillDefinition {
	return attack(id, game.SkillNormal, game.DiceRequirement{element: 1, game.DiceVoid: 2}, dmg, value, nil)
}

// trigger declares a triggered skill.
func trigger(id int, on game.EventName, filter game.SkillFilter, action game.SkillAction) *game.SkillDefinition {
	return &game.SkillDefinition{ID: id, Type: game.SkillTriggered, TriggerOn: on, Filter: filter, Action: action}
}

// endPhaseDamage is the usual summon behaviour: deal damage at the end
// phase and use up one charge.
func endPhaseDamage(id int, dmg game.DamageType, value int, target string) *game.SkillDefinition {
	return trigger(id, game.OnEndPhase, nil, func(c *game.Context, _ game.EventArg) error {
		if err := c.Damage(dmg, value, c.Select(target)...); err != nil {
			return err
		}
		return c.ConsumeUsage(1)
	})
}

// sideOf returns the player owning a character, or -1.
func sideOf(c *game.Context, characterID int) int {
	_, who, ok := c.State().Character(characterID)
	if !ok {
		return -1
	}
	return who
}

// modifier unwraps the payload of a damage modification event.
func modifier(arg game.EventArg) *game.DamageModifier {
	m, _ := arg.(*game.DamageModifier)
	return m
}

// outgoing reports whether a damage instance was dealt by the listener's
// side to the other side.
func outgoing(c *game.Context, d game.DamageInfo) bool {
	src, ok := c.State().Locate(d.SourceID)
	return ok && d.IsDamage && src.Area.Who == c.Who() && sideOf(c, d.TargetID) == 1-c.Who()
}

// incoming reports whether a damage instance lands on the listener's side.
func incoming(c *game.Context, d game.DamageInfo) bool {
	return d.IsDamage && d.Value > 0 && sideOf(c, d.TargetID) == c.Who()
}

// fromSkillOf reports whether the damage comes from an initiative skill of
// the given character.
func fromSkillOf(c *game.Context, d game.DamageInfo, characterID int, types ...game.SkillType) bool {
	if d.SourceID != characterID {
		return false
	}
	ch, _, ok := c.State().Character(characterID)
	if !ok {
		return false
	}
	sk := ch.Definition.Skill(d.SkillID)
	if sk == nil || !sk.Type.IsInitiative() {
		return false
	}
	if len(types) == 0 {
		return true
	}
	for _, t := range types {
		if sk.Type == t {
			return true
		}
	}
	return false
}

// master returns the character an attached entity belongs to.
func master(c *game.Context) int {
	loc, ok := c.Caller()
	if !ok || loc.Character == nil {
		return 0
	}
	return loc.Character.ID
}

// skillInfo unwraps the payload of an onSkill event.
func skillInfo(arg game.EventArg) (game.SkillInfo, bool) {
	info, ok := arg.(game.SkillInfo)
	return info, ok && info.Definition != nil
}

// targetOf returns the single target of a played card.
func targetOf(arg game.EventArg) int {
	info, ok := arg.(game.PlayCardInfo)
	if !ok || len(info.Targets) == 0 {
		return 0
	}
	return info.Targets[0]
}
