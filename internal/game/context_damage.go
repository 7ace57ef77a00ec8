package game

// Damage deals one damage instance to each target. Heal damage is treated as
// a heal. Missing or defeated targets are skipped.
func (c *Context) Damage(t DamageType, value int, targets ...int) error {
	if t == DamageHeal {
		return c.Heal(value, targets...)
	}
	for _, id := range targets {
		ch, _, ok := c.state.Character(id)
		if !ok || !ch.Alive() {
			continue
		}
		dmg := DamageInfo{
			Type:         t,
			Value:        value,
			SourceID:     c.caller.ID,
			TargetID:     id,
			SkillID:      c.skillID(),
			RoundNumber:  c.state.RoundNumber,
			IsDamage:     true,
			FromReaction: c.fromReaction,
		}
		if t != DamagePiercing {
			m0 := newDamageModifier(ModifyDamage0, dmg)
			if err := c.handleInline(ModifyDamage0, m0); err != nil {
				return err
			}
			dmg = m0.Damage
			if dmg.Type.IsReactive() {
				var err error
				if dmg, err = c.doApply(id, dmg.Type, &dmg); err != nil {
					return err
				}
			}
			m1 := newDamageModifier(ModifyDamage1, dmg)
			if err := c.handleInline(ModifyDamage1, m1); err != nil {
				return err
			}
			dmg = m1.Damage
		}

		ch, _, ok = c.state.Character(id)
		if !ok {
			continue
		}
		finalHealth := max(0, ch.Health()-dmg.Value)
		if err := c.mutate(ModifyEntityVar{EntityID: id, VarName: VarHealth, Value: finalHealth}); err != nil {
			return err
		}
		if err := c.mutate(PushDamageLog{Damage: dmg}); err != nil {
			return err
		}
		c.emit(OnDamageOrHeal, dmg)
		if finalHealth == 0 && ch.Alive() {
			if err := c.defeat(id); err != nil {
				return err
			}
		}
	}
	return nil
}

// Heal restores health to each target, reviving defeated ones first. Health
// never exceeds maxHealth.
func (c *Context) Heal(value int, targets ...int) error {
	for _, id := range targets {
		ch, who, ok := c.state.Character(id)
		if !ok {
			continue
		}
		revived := false
		if !ch.Alive() {
			if err := c.mutate(ModifyEntityVar{EntityID: id, VarName: VarAlive, Value: 1}); err != nil {
				return err
			}
			revived = true
			c.emit(OnRevive, CharacterArg{CharacterID: id, Who: who})
			ch, _, _ = c.state.Character(id)
		}
		healed := max(0, min(value, ch.Variables[VarMaxHealth]-ch.Health()))
		if err := c.mutate(ModifyEntityVar{EntityID: id, VarName: VarHealth, Value: ch.Health() + healed}); err != nil {
			return err
		}
		info := DamageInfo{
			Type:         DamageHeal,
			Value:        healed,
			SourceID:     c.caller.ID,
			TargetID:     id,
			SkillID:      c.skillID(),
			RoundNumber:  c.state.RoundNumber,
			FromReaction: c.fromReaction,
			Revived:      revived,
		}
		if err := c.mutate(PushDamageLog{Damage: info}); err != nil {
			return err
		}
		c.emit(OnDamageOrHeal, info)
	}
	return nil
}

// Apply attaches an element to each target without dealing damage. A
// reaction may still trigger.
func (c *Context) Apply(element DamageType, targets ...int) error {
	if !element.IsReactive() {
		return nil
	}
	for _, id := range targets {
		ch, _, ok := c.state.Character(id)
		if !ok || !ch.Alive() {
			continue
		}
		if _, err := c.doApply(id, element, nil); err != nil {
			return err
		}
	}
	return nil
}

// doApply performs the aura transition on target and runs the reaction
// handler. dmg is nil for a pure application.
func (c *Context) doApply(target int, element DamageType, dmg *DamageInfo) (DamageInfo, error) {
	var info DamageInfo
	if dmg != nil {
		info = *dmg
		info.IsDamage = true
	} else {
		info = DamageInfo{
			Type:         element,
			SourceID:     c.caller.ID,
			TargetID:     target,
			SkillID:      c.skillID(),
			RoundNumber:  c.state.RoundNumber,
			FromReaction: c.fromReaction,
		}
	}
	ch, _, ok := c.state.Character(target)
	if !ok {
		return info, nil
	}
	newAura, reaction, ok := LookupReaction(ch.Aura(), element)
	if !ok {
		return info, nil
	}
	if err := c.mutate(ModifyEntityVar{EntityID: target, VarName: VarAura, Value: int(newAura)}); err != nil {
		return info, err
	}
	if reaction == ReactionNone {
		return info, nil
	}
	info.Reaction = reaction
	var evDamage *DamageInfo
	if dmg != nil {
		d := info
		evDamage = &d
	}
	c.emit(OnReaction, ReactionInfo{Reaction: reaction, TargetID: target, SkillID: c.skillID(), Damage: evDamage})

	mod := newDamageModifier(ModifyDamage0, info)
	saved := c.fromReaction
	c.fromReaction = reaction
	err := runReaction(c, reaction, target, mod)
	c.fromReaction = saved
	return mod.Damage, err
}

// defeat marks a character at zero health as defeated: it loses its aura,
// energy and attached entities.
func (c *Context) defeat(id int) error {
	ch, who, ok := c.state.Character(id)
	if !ok {
		return nil
	}
	for _, e := range ch.Entities {
		if err := c.mutate(DisposeEntity{EntityID: e.ID}); err != nil {
			return err
		}
		c.emit(OnDispose, DisposeInfo{Entity: e, Area: EntityArea{Type: AreaCharacters, Who: who, CharacterID: id}})
	}
	for _, m := range []Mutation{
		ModifyEntityVar{EntityID: id, VarName: VarAlive, Value: 0},
		ModifyEntityVar{EntityID: id, VarName: VarAura, Value: int(AuraNone)},
		ModifyEntityVar{EntityID: id, VarName: VarEnergy, Value: 0},
		SetPlayerFlag{Who: who, Flag: FlagHasDefeated, Value: true},
	} {
		if err := c.mutate(m); err != nil {
			return err
		}
	}
	c.emit(OnDefeated, CharacterArg{CharacterID: id, Who: who})
	return nil
}

func (c *Context) skillID() int {
	if c.skill.Definition == nil {
		return 0
	}
	return c.skill.Definition.ID
}
