package game

// Definition ids of the entities reactions create. Content must register
// them.
const (
	FrozenStatusID      = 106
	CrystallizeShieldID = 111
	BurningFlameID      = 115
	DendroCoreID        = 116
	CatalyzingFieldID   = 117
)

type reactionHandler func(c *Context, target int, mod *DamageModifier) error

// runReaction applies the side effects of r. Handlers re-enter runReaction
// through Damage, so a package-level handler map would be an init cycle.
func runReaction(c *Context, r Reaction, target int, mod *DamageModifier) error {
	switch r {
	case ReactionMelt, ReactionVaporize:
		return bonusOnly(2)(c, target, mod)
	case ReactionOverloaded:
		return overloaded(c, target, mod)
	case ReactionSuperconduct, ReactionElectroCharged:
		return piercingSpread(c, target, mod)
	case ReactionFrozen:
		return frozen(c, target, mod)
	case ReactionSwirlCryo:
		return swirl(DamageCryo)(c, target, mod)
	case ReactionSwirlHydro:
		return swirl(DamageHydro)(c, target, mod)
	case ReactionSwirlPyro:
		return swirl(DamagePyro)(c, target, mod)
	case ReactionSwirlElectro:
		return swirl(DamageElectro)(c, target, mod)
	case ReactionCrystallizeCryo, ReactionCrystallizeHydro, ReactionCrystallizePyro, ReactionCrystallizeElectro:
		return crystallize(c, target, mod)
	case ReactionBurning:
		return withAttackerEntity(EntitySummon, BurningFlameID)(c, target, mod)
	case ReactionBloom:
		return withAttackerEntity(EntityCombatStatus, DendroCoreID)(c, target, mod)
	case ReactionQuicken:
		return withAttackerEntity(EntityCombatStatus, CatalyzingFieldID)(c, target, mod)
	default:
		return nil
	}
}

func bonusOnly(n int) reactionHandler {
	return func(_ *Context, _ int, mod *DamageModifier) error {
		mod.IncreaseDamage(n)
		return nil
	}
}

func overloaded(c *Context, target int, mod *DamageModifier) error {
	mod.IncreaseDamage(2)
	_, who, ok := c.state.Character(target)
	if !ok || c.state.Players[who].ActiveCharacterID != target {
		return nil
	}
	next := c.NextCharacter(who, 1)
	if next == nil || next.ID == target {
		return nil
	}
	return c.SwitchActive(next.ID)
}

// piercingSpread deals 1 piercing damage to the target's teammates.
func piercingSpread(c *Context, target int, mod *DamageModifier) error {
	if !mod.Damage.IsDamage {
		return nil
	}
	mod.IncreaseDamage(1)
	return c.Damage(DamagePiercing, 1, c.otherCharacters(target)...)
}

func frozen(c *Context, target int, mod *DamageModifier) error {
	mod.IncreaseDamage(1)
	_, err := c.CharacterStatus(FrozenStatusID, target)
	return err
}

func swirl(element DamageType) reactionHandler {
	return func(c *Context, target int, mod *DamageModifier) error {
		if !mod.Damage.IsDamage {
			return nil
		}
		return c.Damage(element, 1, c.otherCharacters(target)...)
	}
}

func crystallize(c *Context, _ int, mod *DamageModifier) error {
	mod.IncreaseDamage(1)
	_, err := c.CombatStatus(CrystallizeShieldID)
	return err
}

// withAttackerEntity adds 1 damage and creates an entity on the attacker's
// side.
func withAttackerEntity(t EntityType, defID int) reactionHandler {
	return func(c *Context, _ int, mod *DamageModifier) error {
		mod.IncreaseDamage(1)
		_, err := c.CreateEntity(t, defID, nil, nil)
		return err
	}
}

// otherCharacters returns the alive teammates of target, in board order.
func (c *Context) otherCharacters(target int) []int {
	_, who, ok := c.state.Character(target)
	if !ok {
		return nil
	}
	var out []int
	for _, ch := range c.state.Players[who].Characters {
		if ch.ID != target && ch.Alive() {
			out = append(out, ch.ID)
		}
	}
	return out
}
