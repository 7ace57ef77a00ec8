package content

import "github.com/peterkuimelis/gitcg/internal/game"

// Character definition ids.
const (
	KaeyaID   = 1103
	BarbaraID = 1201
	BennettID = 1303
	FischlID  = 1401
	SucroseID = 1501
	NoelleID  = 1602
	ColleiID  = 1701
)

// Entity ids of character summons, statuses and talents.
const (
	IcicleID             = 111031
	MelodyLoopID         = 112011
	InspirationFieldID   = 113031
	InspirationFieldExID = 113032
	OzID                 = 114011
	LargeWindSpiritID    = 115011
	FullPlateID          = 116021
	SweepingTimeID       = 116022
	CuileinAnbarID       = 117011

	ColdBloodedStrikeID = 211031
	GloriousSeasonID    = 212011
	GrandExpectationID  = 213031
)

// --- Kaeya ---

// Kaeya: Cryo sword user. His burst leaves Icicles that strike whenever his
// side switches characters.
func Kaeya() *game.CharacterDefinition {
	return &game.CharacterDefinition{
		ID:   KaeyaID,
		Name: "Kaeya",
		Tags: []string{"cryo", "sword", "mondstadt"},
		Vars: characterVars(10, 2),
		Skills: []*game.SkillDefinition{
			normalAttack(11031, game.DiceCryo, game.DamagePhysical, 2),
			attack(11032, game.SkillElemental, game.DiceRequirement{game.DiceCryo: 3}, game.DamageCryo, 3, nil),
			attack(11033, game.SkillBurst, game.DiceRequirement{game.DiceCryo: 4, game.DiceEnergy: 2}, game.DamageCryo, 1,
				func(c *game.Context, _ game.EventArg) error {
					_, err := c.CombatStatus(IcicleID)
					return err
				}),
		},
	}
}

// Icicle: after your side switches characters, deal 2 Cryo damage.
func Icicle() *game.EntityDefinition {
	return &game.EntityDefinition{
		ID:                     IcicleID,
		Name:                   "Icicle",
		Type:                   game.EntityCombatStatus,
		VisibleVarName:         game.VarUsage,
		DisposeWhenUsageIsZero: true,
		Vars:                   map[string]game.VarConfig{game.VarUsage: game.Variable(3)},
		Skills: []*game.SkillDefinition{
			trigger(1110311, game.OnSwitchActive,
				func(c *game.Context, arg game.EventArg) bool {
					info, ok := arg.(game.SwitchInfo)
					return ok && info.Who == c.Who()
				},
				func(c *game.Context, _ game.EventArg) error {
					if err := c.Damage(game.DamageCryo, 2, c.Select("opp active")...); err != nil {
						return err
					}
					return c.ConsumeUsage(1)
				}),
		},
	}
}

// ColdBloodedStrike is Kaeya's talent: after Frostgnaw, heal him for 2.
// Once per round.
func ColdBloodedStrike() *game.EntityDefinition {
	return &game.EntityDefinition{
		ID:   ColdBloodedStrikeID,
		Name: "Cold-Blooded Strike",
		Type: game.EntityEquipment,
		Tags: []string{game.TagTalent},
		Vars: map[string]game.VarConfig{game.VarUsagePerRound: game.Variable(1)},
		Skills: []*game.SkillDefinition{{
			ID:                   2110311,
			Type:                 game.SkillTriggered,
			TriggerOn:            game.OnSkill,
			UsagePerRoundVarName: game.VarUsagePerRound,
			Filter: func(c *game.Context, arg game.EventArg) bool {
				info, ok := skillInfo(arg)
				return ok && info.CallerID == master(c) && info.Definition.ID == 11032
			},
			Action: func(c *game.Context, _ game.EventArg) error {
				if err := c.Heal(2, master(c)); err != nil {
					return err
				}
				return c.ConsumeUsagePerRound(1)
			},
		}},
	}
}

// --- Barbara ---

func Barbara() *game.CharacterDefinition {
	return &game.CharacterDefinition{
		ID:   BarbaraID,
		Name: "Barbara",
		Tags: []string{"hydro", "catalyst", "mondstadt"},
		Vars: characterVars(10, 3),
		Skills: []*game.SkillDefinition{
			normalAttack(12011, game.DiceHydro, game.DamageHydro, 1),
			attack(12012, game.SkillElemental, game.DiceRequirement{game.DiceHydro: 3}, game.DamageHydro, 1,
				func(c *game.Context, _ game.EventArg) error {
					_, err := c.Summon(MelodyLoopID)
					return err
				}),
			attack(12013, game.SkillBurst, game.DiceRequirement{game.DiceHydro: 3, game.DiceEnergy: 3}, game.DamageHydro, 0,
				func(c *game.Context, _ game.EventArg) error {
					return c.Heal(4, c.Select("my characters")...)
				}),
		},
	}
}

// MelodyLoop: at the end phase, heal every character of your side for 1 and
// apply Hydro to your active character.
func MelodyLoop() *game.EntityDefinition {
	return &game.EntityDefinition{
		ID:                     MelodyLoopID,
		Name:                   "Melody Loop",
		Type:                   game.EntitySummon,
		VisibleVarName:         game.VarUsage,
		DisposeWhenUsageIsZero: true,
		Vars:                   map[string]game.VarConfig{game.VarUsage: game.Variable(2)},
		Skills: []*game.SkillDefinition{
			trigger(1120111, game.OnEndPhase, nil, func(c *game.Context, _ game.EventArg) error {
				if err := c.Heal(1, c.Select("my characters")...); err != nil {
					return err
				}
				if err := c.Apply(game.DamageHydro, c.Select("my active")...); err != nil {
					return err
				}
				return c.ConsumeUsage(1)
			}),
		},
	}
}

// GloriousSeason is Barbara's talent equipment.
func GloriousSeason() *game.EntityDefinition {
	return &game.EntityDefinition{
		ID:   GloriousSeasonID,
		Name: "Glorious Season",
		Type: game.EntityEquipment,
		Tags: []string{game.TagTalent},
	}
}

// --- Bennett ---

func Bennett() *game.CharacterDefinition {
	return &game.CharacterDefinition{
		ID:   BennettID,
		Name: "Bennett",
		Tags: []string{"pyro", "sword", "mondstadt"},
		Vars: characterVars(10, 2),
		Skills: []*game.SkillDefinition{
			normalAttack(13031, game.DicePyro, game.DamagePhysical, 2),
			attack(13032, game.SkillElemental, game.DiceRequirement{game.DicePyro: 3}, game.DamagePyro, 3, nil),
			attack(13033, game.SkillBurst, game.DiceRequirement{game.DicePyro: 4, game.DiceEnergy: 2}, game.DamagePyro, 2, fantasticVoyage),
		},
	}
}

// fantasticVoyage creates Inspiration Field; the talent variant replaces
// the plain one and the other way round.
func fantasticVoyage(c *game.Context, _ game.EventArg) error {
	field, other := InspirationFieldID, InspirationFieldExID
	if ch, _, ok := c.State().Character(c.CallerID()); ok && ch.HasEntity(GrandExpectationID) {
		field, other = other, field
	}
	for _, e := range c.Self().CombatStatuses {
		if e.Definition.ID == other {
			if err := c.Dispose(e.ID); err != nil {
				return err
			}
		}
	}
	_, err := c.CombatStatus(field)
	return err
}

// InspirationField: skills of your side deal +2 while the user has at least
// 7 HP; afterwards a user at 6 HP or less is healed for 2. The talent
// version drops the health requirement on the bonus.
func InspirationField(talent bool) *game.EntityDefinition {
	id := InspirationFieldID
	if talent {
		id = InspirationFieldExID
	}
	return &game.EntityDefinition{
		ID:             id,
		Name:           "Inspiration Field",
		Type:           game.EntityCombatStatus,
		VisibleVarName: game.VarDuration,
		Vars:           map[string]game.VarConfig{game.VarDuration: game.Variable(2)},
		Skills: []*game.SkillDefinition{
			trigger(id*10+1, game.ModifyDamage0,
				func(c *game.Context, arg game.EventArg) bool {
					d := modifier(arg).Damage
					if !outgoing(c, d) || !fromSkillOf(c, d, d.SourceID) {
						return false
					}
					return talent || c.VariableOf(d.SourceID, game.VarHealth) >= 7
				},
				func(_ *game.Context, arg game.EventArg) error {
					modifier(arg).IncreaseDamage(2)
					return nil
				}),
			trigger(id*10+2, game.OnSkill,
				func(c *game.Context, arg game.EventArg) bool {
					info, ok := skillInfo(arg)
					if !ok || !info.Definition.Type.IsInitiative() || sideOf(c, info.CallerID) != c.Who() {
						return false
					}
					return c.VariableOf(info.CallerID, game.VarHealth) <= 6
				},
				func(c *game.Context, arg game.EventArg) error {
					info, _ := skillInfo(arg)
					return c.Heal(2, info.CallerID)
				}),
		},
	}
}

// GrandExpectation is Bennett's talent equipment.
func GrandExpectation() *game.EntityDefinition {
	return &game.EntityDefinition{
		ID:   GrandExpectationID,
		Name: "Grand Expectation",
		Type: game.EntityEquipment,
		Tags: []string{game.TagTalent},
	}
}

// --- Fischl ---

func Fischl() *game.CharacterDefinition {
	return &game.CharacterDefinition{
		ID:   FischlID,
		Name: "Fischl",
		Tags: []string{"electro", "bow", "mondstadt"},
		Vars: characterVars(10, 3),
		Skills: []*game.SkillDefinition{
			normalAttack(14011, game.DiceElectro, game.DamagePhysical, 2),
			attack(14012, game.SkillElemental, game.DiceRequirement{game.DiceElectro: 3}, game.DamageElectro, 1,
				func(c *game.Context, _ game.EventArg) error {
					_, err := c.Summon(OzID)
					return err
				}),
			{
				ID:   14013,
				Type: game.SkillBurst,
				Cost: game.DiceRequirement{game.DiceElectro: 3, game.DiceEnergy: 3},
				Action: func(c *game.Context, _ game.EventArg) error {
					if err := c.Damage(game.DamagePiercing, 2, c.Select("opp standby characters")...); err != nil {
						return err
					}
					return c.Damage(game.DamageElectro, 4, c.Select("opp active")...)
				},
			},
		},
	}
}

// Oz: 1 Electro damage at the end phase.
func Oz() *game.EntityDefinition {
	return &game.EntityDefinition{
		ID:                     OzID,
		Name:                   "Oz",
		Type:                   game.EntitySummon,
		VisibleVarName:         game.VarUsage,
		DisposeWhenUsageIsZero: true,
		Vars:                   map[string]game.VarConfig{game.VarUsage: game.Variable(2)},
		Skills:                 []*game.SkillDefinition{endPhaseDamage(1140111, game.DamageElectro, 1, "opp active")},
	}
}

// --- Sucrose ---

func Sucrose() *game.CharacterDefinition {
	return &game.CharacterDefinition{
		ID:   SucroseID,
		Name: "Sucrose",
		Tags: []string{"anemo", "catalyst", "mondstadt"},
		Vars: characterVars(10, 2),
		Skills: []*game.SkillDefinition{
			normalAttack(15011, game.DiceAnemo, game.DamageAnemo, 1),
			attack(15012, game.SkillElemental, game.DiceRequirement{game.DiceAnemo: 3}, game.DamageAnemo, 3,
				func(c *game.Context, _ game.EventArg) error {
					opp := 1 - c.Who()
					if prev := c.NextCharacter(opp, -1); prev != nil {
						return c.SwitchActive(prev.ID)
					}
					return nil
				}),
			attack(15013, game.SkillBurst, game.DiceRequirement{game.DiceAnemo: 3, game.DiceEnergy: 2}, game.DamageAnemo, 1,
				func(c *game.Context, _ game.EventArg) error {
					_, err := c.Summon(LargeWindSpiritID)
					return err
				}),
		},
	}
}

const varElement = "element"

var swirled = map[game.Reaction]game.DamageType{
	game.ReactionSwirlCryo:    game.DamageCryo,
	game.ReactionSwirlHydro:   game.DamageHydro,
	game.ReactionSwirlPyro:    game.DamagePyro,
	game.ReactionSwirlElectro: game.DamageElectro,
}

// LargeWindSpirit: 2 Anemo damage at the end phase. The first Swirl your
// side triggers turns it into the swirled element.
func LargeWindSpirit() *game.EntityDefinition {
	return &game.EntityDefinition{
		ID:                     LargeWindSpiritID,
		Name:                   "Large Wind Spirit",
		Type:                   game.EntitySummon,
		VisibleVarName:         game.VarUsage,
		DisposeWhenUsageIsZero: true,
		Vars: map[string]game.VarConfig{
			game.VarUsage: game.Variable(3),
			varElement:    game.Variable(int(game.DamageAnemo)),
		},
		Skills: []*game.SkillDefinition{
			trigger(1150111, game.OnEndPhase, nil, func(c *game.Context, _ game.EventArg) error {
				dmg := game.DamageType(c.Variable(varElement))
				if err := c.Damage(dmg, 2, c.Select("opp active")...); err != nil {
					return err
				}
				return c.ConsumeUsage(1)
			}),
			trigger(1150112, game.OnReaction,
				func(c *game.Context, arg game.EventArg) bool {
					info, ok := arg.(game.ReactionInfo)
					if !ok || info.Damage == nil || game.DamageType(c.Variable(varElement)) != game.DamageAnemo {
						return false
					}
					_, isSwirl := swirled[info.Reaction]
					src, found := c.State().Locate(info.Damage.SourceID)
					return isSwirl && found && src.Area.Who == c.Who()
				},
				func(c *game.Context, arg game.EventArg) error {
					info := arg.(game.ReactionInfo)
					return c.SetVariable(varElement, int(swirled[info.Reaction]))
				}),
		},
	}
}

// --- Noelle ---

func Noelle() *game.CharacterDefinition {
	return &game.CharacterDefinition{
		ID:   NoelleID,
		Name: "Noelle",
		Tags: []string{"geo", "claymore", "mondstadt"},
		Vars: characterVars(10, 2),
		Skills: []*game.SkillDefinition{
			normalAttack(16021, game.DiceGeo, game.DamagePhysical, 2),
			attack(16022, game.SkillElemental, game.DiceRequirement{game.DiceGeo: 3}, game.DamageGeo, 1,
				func(c *game.Context, _ game.EventArg) error {
					_, err := c.CombatStatus(FullPlateID)
					return err
				}),
			attack(16023, game.SkillBurst, game.DiceRequirement{game.DiceGeo: 4, game.DiceEnergy: 2}, game.DamageGeo, 4,
				func(c *game.Context, _ game.EventArg) error {
					_, err := c.CharacterStatus(SweepingTimeID, c.CallerID())
					return err
				}),
		},
	}
}

// FullPlate: a 2 point shield. After a normal attack of your side, heal all
// your characters for 1, once per round.
func FullPlate() *game.EntityDefinition {
	return &game.EntityDefinition{
		ID:             FullPlateID,
		Name:           "Full Plate",
		Type:           game.EntityCombatStatus,
		VisibleVarName: game.VarShield,
		Vars: map[string]game.VarConfig{
			game.VarShield:        game.Variable(2),
			game.VarUsagePerRound: game.Variable(1),
		},
		Skills: []*game.SkillDefinition{
			shield(1160211),
			{
				ID:                   1160212,
				Type:                 game.SkillTriggered,
				TriggerOn:            game.OnSkill,
				UsagePerRoundVarName: game.VarUsagePerRound,
				Filter: func(c *game.Context, arg game.EventArg) bool {
					info, ok := skillInfo(arg)
					return ok && info.Definition.Type == game.SkillNormal && sideOf(c, info.CallerID) == c.Who()
				},
				Action: func(c *game.Context, _ game.EventArg) error {
					if err := c.Heal(1, c.Select("my characters")...); err != nil {
						return err
					}
					return c.ConsumeUsagePerRound(1)
				},
			},
		},
	}
}

// SweepingTime: Noelle's normal attacks become Geo and deal +2.
func SweepingTime() *game.EntityDefinition {
	return &game.EntityDefinition{
		ID:             SweepingTimeID,
		Name:           "Sweeping Time",
		Type:           game.EntityStatus,
		VisibleVarName: game.VarDuration,
		Vars:           map[string]game.VarConfig{game.VarDuration: game.Variable(2)},
		Skills: []*game.SkillDefinition{
			trigger(1160221, game.ModifyDamage0,
				func(c *game.Context, arg game.EventArg) bool {
					d := modifier(arg).Damage
					return fromSkillOf(c, d, master(c), game.SkillNormal) && d.FromReaction == game.ReactionNone
				},
				func(_ *game.Context, arg game.EventArg) error {
					m := modifier(arg)
					m.ChangeDamageType(game.DamageGeo)
					m.IncreaseDamage(2)
					return nil
				}),
		},
	}
}

// --- Collei ---

func Collei() *game.CharacterDefinition {
	return &game.CharacterDefinition{
		ID:   ColleiID,
		Name: "Collei",
		Tags: []string{"dendro", "bow", "sumeru"},
		Vars: characterVars(10, 2),
		Skills: []*game.SkillDefinition{
			normalAttack(17011, game.DiceDendro, game.DamagePhysical, 2),
			attack(17012, game.SkillElemental, game.DiceRequirement{game.DiceDendro: 3}, game.DamageDendro, 3, nil),
			attack(17013, game.SkillBurst, game.DiceRequirement{game.DiceDendro: 3, game.DiceEnergy: 2}, game.DamageDendro, 2,
				func(c *game.Context, _ game.EventArg) error {
					_, err := c.Summon(CuileinAnbarID)
					return err
				}),
		},
	}
}

// CuileinAnbar: 2 Dendro damage at the end phase.
func CuileinAnbar() *game.EntityDefinition {
	return &game.EntityDefinition{
		ID:                     CuileinAnbarID,
		Name:                   "Cuilein-Anbar",
		Type:                   game.EntitySummon,
		VisibleVarName:         game.VarUsage,
		DisposeWhenUsageIsZero: true,
		Vars:                   map[string]game.VarConfig{game.VarUsage: game.Variable(2)},
		Skills:                 []*game.SkillDefinition{endPhaseDamage(1170111, game.DamageDendro, 2, "opp active")},
	}
}
