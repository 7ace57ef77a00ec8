package game

import (
	"fmt"
	"maps"
)

// CreateEntity creates an entity of definition defID, or refreshes the one
// already in the area. A nil area defaults to the caller's side for combat
// statuses, summons and supports. It returns the id of the created or
// refreshed entity, or 0 when nothing was created.
func (c *Context) CreateEntity(t EntityType, defID int, area *EntityArea, overrides Vars) (int, error) {
	def, err := c.state.Data.Entity(defID)
	if err != nil {
		return 0, err
	}
	if def.Type != t {
		return 0, fmt.Errorf("%w: entity %d is a %s, not a %s", ErrData, defID, def.Type, t)
	}
	var where EntityArea
	if area != nil {
		where = *area
	} else {
		switch t {
		case EntityCombatStatus:
			where = EntityArea{Type: AreaCombatStatuses, Who: c.caller.Who}
		case EntitySummon:
			where = EntityArea{Type: AreaSummons, Who: c.caller.Who}
		case EntitySupport:
			where = EntityArea{Type: AreaSupports, Who: c.caller.Who}
		default:
			return 0, fmt.Errorf("%w: creating %s %d requires an explicit area", ErrData, t, defID)
		}
	}

	existing := c.state.EntitiesAt(where)
	if def.Type == EntityStatus && def.HasTag(TagDisableSkill) {
		for _, e := range existing {
			if e.Definition.HasTag(TagImmuneControl) {
				return 0, nil
			}
		}
	}

	var old *EntityState
	if def.Type != EntitySupport {
		for _, e := range existing {
			if e.Definition.ID == defID {
				old = e
				break
			}
		}
	}

	if old != nil {
		for _, name := range sortedVarNames(def.Vars) {
			oldValue, has := old.Variables[name]
			if !has {
				continue
			}
			cfg := def.Vars[name]
			initial := cfg.Initial
			if v, ok := overrides[name]; ok {
				initial = v
			}
			if newValue := cfg.Merge(oldValue, initial); newValue != oldValue {
				if err := c.mutate(ModifyEntityVar{EntityID: old.ID, VarName: name, Value: newValue}); err != nil {
					return 0, err
				}
			}
		}
		c.emit(OnEnter, EnterInfo{EntityID: old.ID, DefinitionID: defID, Area: where, Overridden: old})
		return old.ID, nil
	}

	switch where.Type {
	case AreaSummons:
		if len(existing) >= c.state.Config.MaxSummons {
			return 0, nil
		}
	case AreaSupports:
		if len(existing) >= c.state.Config.MaxSupports {
			return 0, nil
		}
	}

	vars := make(Vars, len(def.Vars))
	for name, cfg := range def.Vars {
		vars[name] = cfg.Initial
	}
	maps.Copy(vars, overrides)
	if err := c.mutate(CreateEntity{Where: where, DefinitionID: defID, Variables: vars}); err != nil {
		return 0, err
	}
	id := c.state.NextID - 1
	c.emit(OnEnter, EnterInfo{EntityID: id, DefinitionID: defID, Area: where})
	return id, nil
}

// Summon creates a summon on the caller's side.
func (c *Context) Summon(defID int) (int, error) {
	return c.CreateEntity(EntitySummon, defID, nil, nil)
}

// CombatStatus creates a combat status on the caller's side.
func (c *Context) CombatStatus(defID int) (int, error) {
	return c.CreateEntity(EntityCombatStatus, defID, nil, nil)
}

// CombatStatusFor creates a combat status on the given player's side.
func (c *Context) CombatStatusFor(who, defID int) (int, error) {
	return c.CreateEntity(EntityCombatStatus, defID, &EntityArea{Type: AreaCombatStatuses, Who: who}, nil)
}

// CharacterStatus attaches a status to a character.
func (c *Context) CharacterStatus(defID, characterID int) (int, error) {
	_, who, ok := c.state.Character(characterID)
	if !ok {
		return 0, fmt.Errorf("%w: character %d does not exist", ErrData, characterID)
	}
	return c.CreateEntity(EntityStatus, defID, &EntityArea{Type: AreaCharacters, Who: who, CharacterID: characterID}, nil)
}

// TransferEntity moves an entity to another area, keeping its variables but
// giving it a fresh id.
func (c *Context) TransferEntity(id int, area EntityArea) (int, error) {
	loc, ok := c.state.Locate(id)
	if !ok {
		return 0, nil
	}
	if loc.IsCharacter() {
		return 0, fmt.Errorf("%w: cannot transfer character %d", ErrData, id)
	}
	if err := c.mutate(DisposeEntity{EntityID: id}); err != nil {
		return 0, err
	}
	if err := c.mutate(CreateEntity{Where: area, DefinitionID: loc.Entity.Definition.ID, Variables: loc.Entity.Variables}); err != nil {
		return 0, err
	}
	return c.state.NextID - 1, nil
}

// Dispose removes an entity. Disposing a character is a data error; an id
// that no longer exists is ignored.
func (c *Context) Dispose(id int) error {
	loc, ok := c.state.Locate(id)
	if !ok {
		return nil
	}
	if loc.IsCharacter() {
		return fmt.Errorf("%w: cannot dispose character %d", ErrData, id)
	}
	info := DisposeInfo{Entity: loc.Entity, Area: loc.Area}
	if err := c.handleInline(OnBeforeDispose, info); err != nil {
		return err
	}
	c.emit(OnDispose, info)
	if _, ok := c.state.Locate(id); !ok {
		return nil
	}
	if err := c.mutate(DisposeEntity{EntityID: id}); err != nil {
		return err
	}
	if loc.Area.Type == AreaSupports {
		return c.mutate(IncreaseDisposedSupportCount{Who: loc.Area.Who})
	}
	return nil
}

// ConsumeUsage consumes usage of the caller.
func (c *Context) ConsumeUsage(count int) error {
	return c.ConsumeUsageOf(c.caller.ID, count)
}

// ConsumeUsageOf decrements the "usage" variable of id by up to count and
// disposes the entity when it reaches zero, if its definition asks for it.
func (c *Context) ConsumeUsageOf(id, count int) error {
	loc, ok := c.state.Locate(id)
	if !ok {
		return nil
	}
	cur, has := loc.Variables()[VarUsage]
	if !has {
		return nil
	}
	next := cur
	if cur > 0 {
		next = cur - min(count, cur)
		if err := c.mutate(ModifyEntityVar{EntityID: id, VarName: VarUsage, Value: next}); err != nil {
			return err
		}
	}
	if loc.Entity != nil && loc.Entity.Definition.DisposeWhenUsageIsZero && next <= 0 {
		return c.Dispose(id)
	}
	return nil
}

// ConsumeUsagePerRound decrements the per-round counter declared by the
// running skill.
func (c *Context) ConsumeUsagePerRound(count int) error {
	name := ""
	if c.skill.Definition != nil {
		name = c.skill.Definition.UsagePerRoundVarName
	}
	if name == "" {
		return fmt.Errorf("%w: skill %d declares no usage-per-round variable", ErrData, c.skillID())
	}
	cur := c.Variable(name)
	if cur <= 0 {
		return nil
	}
	return c.SetVariable(name, cur-min(count, cur))
}

// UsagePerRound returns the remaining per-round uses of the running skill.
func (c *Context) UsagePerRound() int {
	if c.skill.Definition == nil || c.skill.Definition.UsagePerRoundVarName == "" {
		return 0
	}
	return c.Variable(c.skill.Definition.UsagePerRoundVarName)
}

// ResetUsagePerRound restores every per-round counter of id to its declared
// initial value.
func (c *Context) ResetUsagePerRound(id int) error {
	loc, ok := c.state.Locate(id)
	if !ok {
		return nil
	}
	var skills []*SkillDefinition
	var vars map[string]VarConfig
	if loc.Entity != nil {
		skills, vars = loc.Entity.Definition.Skills, loc.Entity.Definition.Vars
	} else {
		skills, vars = loc.Character.Definition.Skills, loc.Character.Definition.Vars
	}
	for _, sk := range skills {
		name := sk.UsagePerRoundVarName
		if name == "" {
			continue
		}
		cfg, ok := vars[name]
		if !ok || loc.Variables()[name] == cfg.Initial {
			continue
		}
		if err := c.mutate(ModifyEntityVar{EntityID: id, VarName: name, Value: cfg.Initial}); err != nil {
			return err
		}
	}
	return nil
}

// ReplaceDefinition swaps the definition of a character, keeping its
// variables and attached entities.
func (c *Context) ReplaceDefinition(characterID, defID int) error {
	ch, _, ok := c.state.Character(characterID)
	if !ok {
		return fmt.Errorf("%w: replace definition of missing character %d", ErrData, characterID)
	}
	if _, err := c.state.Data.Character(defID); err != nil {
		return err
	}
	old := ch.Definition.ID
	if err := c.mutate(ReplaceCharacterDefinition{CharacterID: characterID, DefinitionID: defID}); err != nil {
		return err
	}
	c.emit(OnReplaceCharacterDefinition, ReplaceDefinitionInfo{CharacterID: characterID, OldID: old, NewID: defID})
	return nil
}

// Equip attaches equipment to a character. A weapon or artifact replaces the
// one already equipped.
func (c *Context) Equip(characterID, defID int) (int, error) {
	def, err := c.state.Data.Entity(defID)
	if err != nil {
		return 0, err
	}
	ch, who, ok := c.state.Character(characterID)
	if !ok {
		return 0, fmt.Errorf("%w: equip on missing character %d", ErrData, characterID)
	}
	for _, tag := range []string{TagWeapon, TagArtifact} {
		if !def.HasTag(tag) {
			continue
		}
		if old := ch.EquipmentWithTag(tag); old != nil && old.Definition.ID != defID {
			if err := c.Dispose(old.ID); err != nil {
				return 0, err
			}
		}
	}
	return c.CreateEntity(EntityEquipment, defID, &EntityArea{Type: AreaCharacters, Who: who, CharacterID: characterID}, nil)
}

// RemoveArtifact disposes the artifact of a character, if any.
func (c *Context) RemoveArtifact(characterID int) error {
	return c.removeEquipment(characterID, TagArtifact)
}

// RemoveWeapon disposes the weapon of a character, if any.
func (c *Context) RemoveWeapon(characterID int) error {
	return c.removeEquipment(characterID, TagWeapon)
}

func (c *Context) removeEquipment(characterID int, tag string) error {
	ch, _, ok := c.state.Character(characterID)
	if !ok {
		return nil
	}
	if e := ch.EquipmentWithTag(tag); e != nil {
		return c.Dispose(e.ID)
	}
	return nil
}
