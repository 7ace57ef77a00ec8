package content

import "github.com/peterkuimelis/gitcg/internal/game"

// Frozen: the character cannot use skills. Pyro or Physical damage taken
// breaks it for +2. Lasts until the end phase.
func Frozen() *game.EntityDefinition {
	return &game.EntityDefinition{
		ID:             game.FrozenStatusID,
		Name:           "Frozen",
		Type:           game.EntityStatus,
		Tags:           []string{game.TagDisableSkill},
		VisibleVarName: game.VarDuration,
		Vars:           map[string]game.VarConfig{game.VarDuration: game.Variable(1)},
		Skills: []*game.SkillDefinition{
			trigger(1061, game.ModifyDamage0,
				func(c *game.Context, arg game.EventArg) bool {
					d := modifier(arg).Damage
					return d.IsDamage && d.TargetID == master(c) &&
						(d.Type == game.DamagePhysical || d.Type == game.DamagePyro)
				},
				func(c *game.Context, arg game.EventArg) error {
					modifier(arg).IncreaseDamage(2)
					return c.Dispose(c.CallerID())
				}),
		},
	}
}

// Crystallize: a stacking shield protecting the active character.
func Crystallize() *game.EntityDefinition {
	return &game.EntityDefinition{
		ID:             game.CrystallizeShieldID,
		Name:           "Crystallize",
		Type:           game.EntityCombatStatus,
		VisibleVarName: game.VarShield,
		Vars:           map[string]game.VarConfig{game.VarShield: game.AppendVariable(1, 2)},
		Skills:         []*game.SkillDefinition{shield(1111)},
	}
}

// shield absorbs damage dealt to the active character of the owner's side
// and disposes the entity once its shield points are gone.
func shield(id int) *game.SkillDefinition {
	return trigger(id, game.ModifyDamage1,
		func(c *game.Context, arg game.EventArg) bool {
			d := modifier(arg).Damage
			return incoming(c, d) && c.IsActive(d.TargetID) && c.Variable(game.VarShield) > 0
		},
		func(c *game.Context, arg game.EventArg) error {
			left := c.Variable(game.VarShield)
			left -= modifier(arg).DecreaseDamage(left)
			if err := c.SetVariable(game.VarShield, left); err != nil {
				return err
			}
			if left == 0 {
				return c.Dispose(c.CallerID())
			}
			return nil
		})
}

// BurningFlame: deals 1 Pyro at the end phase. Stacks up to 2 charges.
func BurningFlame() *game.EntityDefinition {
	return &game.EntityDefinition{
		ID:                     game.BurningFlameID,
		Name:                   "Burning Flame",
		Type:                   game.EntitySummon,
		VisibleVarName:         game.VarUsage,
		DisposeWhenUsageIsZero: true,
		Vars:                   map[string]game.VarConfig{game.VarUsage: game.AppendVariable(1, 2)},
		Skills:                 []*game.SkillDefinition{endPhaseDamage(1151, game.DamagePyro, 1, "opp active")},
	}
}

// DendroCore: the next Pyro or Electro damage dealt to the opposing active
// character gets +2.
func DendroCore() *game.EntityDefinition {
	return &game.EntityDefinition{
		ID:                     game.DendroCoreID,
		Name:                   "Dendro Core",
		Type:                   game.EntityCombatStatus,
		VisibleVarName:         game.VarUsage,
		DisposeWhenUsageIsZero: true,
		Vars:                   map[string]game.VarConfig{game.VarUsage: game.Variable(1)},
		Skills: []*game.SkillDefinition{
			elementBonus(1161, 2, game.DamagePyro, game.DamageElectro),
		},
	}
}

// CatalyzingField: the next two Electro or Dendro damage instances dealt to
// the opposing active character get +1.
func CatalyzingField() *game.EntityDefinition {
	return &game.EntityDefinition{
		ID:                     game.CatalyzingFieldID,
		Name:                   "Catalyzing Field",
		Type:                   game.EntityCombatStatus,
		VisibleVarName:         game.VarUsage,
		DisposeWhenUsageIsZero: true,
		Vars:                   map[string]game.VarConfig{game.VarUsage: game.Variable(2)},
		Skills: []*game.SkillDefinition{
			elementBonus(1171, 1, game.DamageElectro, game.DamageDendro),
		},
	}
}

// elementBonus adds bonus to the owner's damage of the given types against
// the opposing active character, consuming one usage each time.
func elementBonus(id, bonus int, types ...game.DamageType) *game.SkillDefinition {
	return trigger(id, game.ModifyDamage0,
		func(c *game.Context, arg game.EventArg) bool {
			d := modifier(arg).Damage
			if !outgoing(c, d) || !c.IsActive(d.TargetID) {
				return false
			}
			for _, t := range types {
				if d.Type == t {
					return true
				}
			}
			return false
		},
		func(c *game.Context, arg game.EventArg) error {
			modifier(arg).IncreaseDamage(bonus)
			return c.ConsumeUsage(1)
		})
}
