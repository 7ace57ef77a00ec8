package content

import (
	"slices"

	"github.com/peterkuimelis/gitcg/internal/game"
)

// Card definition ids. Equipment cards share their id with the entity they
// attach.
const (
	ColdBloodedStrikeCardID = ColdBloodedStrikeID
	GloriousSeasonCardID    = GloriousSeasonID
	GrandExpectationCardID  = GrandExpectationID

	MagicGuideID          = 311101
	RavenBowID            = 311301
	WhiteIronGreatswordID = 311401
	TravelersHandySwordID = 311501
	GamblersEarringsID    = 312011
	LuckyDogsCircletID    = 312021

	PaimonID = 322001
	TimmieID = 322007
	NREID    = 323004

	CovenantOfRockID   = 330004
	BestestCompanionID = 332001
	TossUpID           = 332003
	StrategizeID       = 332004
	StarsignsID        = 332005
	QuickKnitID        = 332010
	NotLostYetID       = 332016

	JueyunGuobaID      = 333001
	LotusFlowerCrispID = 333003
	SweetMadameID      = 333005
	HashBrownID        = 333006
	MushroomPizzaID    = 333007
	FriedEggID         = 333009
)

// Status ids created by cards.
const (
	SatiatedID          = 303300
	JueyunGuobaStatusID = 303301
	LotusStatusID       = 303303
	PizzaStatusID       = 303307
	ReviveCooldownID    = 303309
)

// cardSkill wraps a card effect.
func cardSkill(id int, action game.SkillAction) *game.SkillDefinition {
	return &game.SkillDefinition{ID: id, Type: game.SkillCard, Action: action}
}

// activeIs is the filter of talent cards: the owner's active character must
// be the talent's character.
func activeIs(characterID int) func(c *game.Context, _ []int) bool {
	return func(c *game.Context, _ []int) bool {
		active := c.ActiveCharacter(c.Who())
		return active != nil && active.Definition.ID == characterID
	}
}

// talent is an equipment card that equips the active character and makes
// it use skillID right away.
func talent(id int, name string, characterID, skillID int, cost game.DiceRequirement) *game.CardDefinition {
	return &game.CardDefinition{
		ID:              id,
		Name:            name,
		Type:            game.CardEquipment,
		Tags:            []string{game.TagTalent},
		Cost:            cost,
		DeckRequirement: game.DeckRequirement{Character: characterID},
		Filter:          activeIs(characterID),
		Skill: cardSkill(id, func(c *game.Context, _ game.EventArg) error {
			active := c.ActiveCharacter(c.Who())
			if _, err := c.Equip(active.ID, id); err != nil {
				return err
			}
			return c.UseSkill(skillID)
		}),
	}
}

// ColdBloodedStrikeCard: Kaeya's talent, uses Frostgnaw.
func ColdBloodedStrikeCard() *game.CardDefinition {
	return talent(ColdBloodedStrikeCardID, "Cold-Blooded Strike", KaeyaID, 11032, game.DiceRequirement{game.DiceCryo: 4})
}

// GloriousSeasonCard: Barbara's talent, uses Let the Show Begin.
func GloriousSeasonCard() *game.CardDefinition {
	return talent(GloriousSeasonCardID, "Glorious Season", BarbaraID, 12012, game.DiceRequirement{game.DiceHydro: 3})
}

// GrandExpectationCard: Bennett's talent, uses Fantastic Voyage.
func GrandExpectationCard() *game.CardDefinition {
	return talent(GrandExpectationCardID, "Grand Expectation", BennettID, 13033,
		game.DiceRequirement{game.DicePyro: 4, game.DiceEnergy: 2})
}

// --- Weapons ---

// weapon is a +1 damage weapon for characters carrying weaponTag.
type weapon struct {
	id   int
	name string
	tag  string
}

var weapons = []weapon{
	{MagicGuideID, "Magic Guide", "catalyst"},
	{RavenBowID, "Raven Bow", "bow"},
	{WhiteIronGreatswordID, "White Iron Greatsword", "claymore"},
	{TravelersHandySwordID, "Traveler's Handy Sword", "sword"},
}

func (w weapon) card() *game.CardDefinition {
	return &game.CardDefinition{
		ID:      w.id,
		Name:    w.name,
		Type:    game.CardEquipment,
		Tags:    []string{game.TagWeapon, w.tag},
		Cost:    game.DiceRequirement{game.DiceAligned: 2},
		Targets: []string{"my characters with tag (" + w.tag + ")"},
		Skill: cardSkill(w.id, func(c *game.Context, arg game.EventArg) error {
			_, err := c.Equip(targetOf(arg), w.id)
			return err
		}),
	}
}

func (w weapon) entity() *game.EntityDefinition {
	return &game.EntityDefinition{
		ID:   w.id,
		Name: w.name,
		Type: game.EntityEquipment,
		Tags: []string{game.TagWeapon, w.tag},
		Skills: []*game.SkillDefinition{
			trigger(w.id*10+1, game.ModifyDamage0,
				func(c *game.Context, arg game.EventArg) bool {
					return fromSkillOf(c, modifier(arg).Damage, master(c))
				},
				func(_ *game.Context, arg game.EventArg) error {
					modifier(arg).IncreaseDamage(1)
					return nil
				}),
		},
	}
}

// --- Artifacts ---

// artifactCard equips the targeted character of your side.
func artifactCard(id int, name string, cost game.DiceRequirement) *game.CardDefinition {
	return &game.CardDefinition{
		ID:      id,
		Name:    name,
		Type:    game.CardEquipment,
		Tags:    []string{game.TagArtifact},
		Cost:    cost,
		Targets: []string{"my characters"},
		Skill: cardSkill(id, func(c *game.Context, arg game.EventArg) error {
			_, err := c.Equip(targetOf(arg), id)
			return err
		}),
	}
}

func GamblersEarringsCard() *game.CardDefinition {
	return artifactCard(GamblersEarringsID, "Gambler's Earrings", game.DiceRequirement{game.DiceVoid: 1})
}

// GamblersEarrings: when an opposing character is defeated while the wearer
// is active, create 2 Omni dice. Three times per match.
func GamblersEarrings() *game.EntityDefinition {
	return &game.EntityDefinition{
		ID:             GamblersEarringsID,
		Name:           "Gambler's Earrings",
		Type:           game.EntityEquipment,
		Tags:           []string{game.TagArtifact},
		VisibleVarName: game.VarUsage,
		Vars:           map[string]game.VarConfig{game.VarUsage: game.Variable(3)},
		Skills: []*game.SkillDefinition{
			trigger(GamblersEarringsID*10+1, game.OnDefeated,
				func(c *game.Context, arg game.EventArg) bool {
					info, ok := arg.(game.CharacterArg)
					return ok && info.Who != c.Who() && c.IsActive(master(c)) && c.Variable(game.VarUsage) > 0
				},
				func(c *game.Context, _ game.EventArg) error {
					if err := c.GenerateDice(game.DiceOmni, 2); err != nil {
						return err
					}
					return c.ConsumeUsage(1)
				}),
		},
	}
}

func LuckyDogsCircletCard() *game.CardDefinition {
	return artifactCard(LuckyDogsCircletID, "Lucky Dog's Silver Circlet", game.DiceRequirement{game.DiceVoid: 2})
}

// LuckyDogsCirclet: after the wearer uses an elemental skill, heal it for 2.
// Once per round.
func LuckyDogsCirclet() *game.EntityDefinition {
	return &game.EntityDefinition{
		ID:   LuckyDogsCircletID,
		Name: "Lucky Dog's Silver Circlet",
		Type: game.EntityEquipment,
		Tags: []string{game.TagArtifact},
		Vars: map[string]game.VarConfig{game.VarUsagePerRound: game.Variable(1)},
		Skills: []*game.SkillDefinition{{
			ID:                   LuckyDogsCircletID*10 + 1,
			Type:                 game.SkillTriggered,
			TriggerOn:            game.OnSkill,
			UsagePerRoundVarName: game.VarUsagePerRound,
			Filter: func(c *game.Context, arg game.EventArg) bool {
				info, ok := skillInfo(arg)
				return ok && info.CallerID == master(c) && info.Definition.Type == game.SkillElemental
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

// --- Food ---

// Satiated: the character has eaten this round.
func Satiated() *game.EntityDefinition {
	return &game.EntityDefinition{
		ID:   SatiatedID,
		Name: "Satiated",
		Type: game.EntityStatus,
		Vars: map[string]game.VarConfig{game.VarDuration: game.Variable(1)},
	}
}

// food targets a character of your side that has not eaten this round and
// leaves it Satiated after eat runs.
func food(id int, name string, cost game.DiceRequirement, target string, eat func(c *game.Context, target int) error) *game.CardDefinition {
	return &game.CardDefinition{
		ID:      id,
		Name:    name,
		Type:    game.CardEvent,
		Tags:    []string{game.TagFood},
		Cost:    cost,
		Targets: []string{target},
		Filter: func(c *game.Context, targets []int) bool {
			ch, _, ok := c.State().Character(targets[0])
			return ok && !ch.HasEntity(SatiatedID)
		},
		Skill: cardSkill(id, func(c *game.Context, arg game.EventArg) error {
			target := targetOf(arg)
			if err := eat(c, target); err != nil {
				return err
			}
			_, err := c.CharacterStatus(SatiatedID, target)
			return err
		}),
	}
}

func healFood(id int, name string, cost game.DiceRequirement, value int) *game.CardDefinition {
	return food(id, name, cost, "my characters", func(c *game.Context, target int) error {
		return c.Heal(value, target)
	})
}

// statusFood attaches a status to the fed character.
func statusFood(id int, name string, cost game.DiceRequirement, statusID int) *game.CardDefinition {
	return food(id, name, cost, "my characters", func(c *game.Context, target int) error {
		_, err := c.CharacterStatus(statusID, target)
		return err
	})
}

func SweetMadame() *game.CardDefinition {
	return healFood(SweetMadameID, "Sweet Madame", nil, 1)
}

func MondstadtHashBrown() *game.CardDefinition {
	return healFood(HashBrownID, "Mondstadt Hash Brown", game.DiceRequirement{game.DiceAligned: 1}, 2)
}

func JueyunGuoba() *game.CardDefinition {
	return statusFood(JueyunGuobaID, "Jueyun Guoba", nil, JueyunGuobaStatusID)
}

// JueyunGuobaStatus: the next normal attack this round deals +1.
func JueyunGuobaStatus() *game.EntityDefinition {
	return &game.EntityDefinition{
		ID:                     JueyunGuobaStatusID,
		Name:                   "Jueyun Guoba",
		Type:                   game.EntityStatus,
		DisposeWhenUsageIsZero: true,
		Vars: map[string]game.VarConfig{
			game.VarUsage:    game.Variable(1),
			game.VarDuration: game.Variable(1),
		},
		Skills: []*game.SkillDefinition{
			trigger(JueyunGuobaStatusID*10+1, game.ModifyDamage0,
				func(c *game.Context, arg game.EventArg) bool {
					return fromSkillOf(c, modifier(arg).Damage, master(c), game.SkillNormal)
				},
				func(c *game.Context, arg game.EventArg) error {
					modifier(arg).IncreaseDamage(1)
					return c.ConsumeUsage(1)
				}),
		},
	}
}

func LotusFlowerCrisp() *game.CardDefinition {
	return statusFood(LotusFlowerCrispID, "Lotus Flower Crisp", game.DiceRequirement{game.DiceAligned: 1}, LotusStatusID)
}

// LotusStatus: the next damage taken this round is reduced by 3.
func LotusStatus() *game.EntityDefinition {
	return &game.EntityDefinition{
		ID:                     LotusStatusID,
		Name:                   "Lotus Flower Crisp",
		Type:                   game.EntityStatus,
		DisposeWhenUsageIsZero: true,
		Vars: map[string]game.VarConfig{
			game.VarUsage:    game.Variable(1),
			game.VarDuration: game.Variable(1),
		},
		Skills: []*game.SkillDefinition{
			trigger(LotusStatusID*10+1, game.ModifyDamage1,
				func(c *game.Context, arg game.EventArg) bool {
					d := modifier(arg).Damage
					return incoming(c, d) && d.TargetID == master(c)
				},
				func(c *game.Context, arg game.EventArg) error {
					modifier(arg).DecreaseDamage(3)
					return c.ConsumeUsage(1)
				}),
		},
	}
}

func MushroomPizza() *game.CardDefinition {
	return food(MushroomPizzaID, "Mushroom Pizza", game.DiceRequirement{game.DiceAligned: 1}, "my characters",
		func(c *game.Context, target int) error {
			if err := c.Heal(1, target); err != nil {
				return err
			}
			_, err := c.CharacterStatus(PizzaStatusID, target)
			return err
		})
}

// PizzaStatus: heal 1 at each of the next two end phases.
func PizzaStatus() *game.EntityDefinition {
	return &game.EntityDefinition{
		ID:                     PizzaStatusID,
		Name:                   "Mushroom Pizza",
		Type:                   game.EntityStatus,
		VisibleVarName:         game.VarUsage,
		DisposeWhenUsageIsZero: true,
		Vars:                   map[string]game.VarConfig{game.VarUsage: game.Variable(2)},
		Skills: []*game.SkillDefinition{
			trigger(PizzaStatusID*10+1, game.OnEndPhase, nil, func(c *game.Context, _ game.EventArg) error {
				if err := c.Heal(1, master(c)); err != nil {
					return err
				}
				return c.ConsumeUsage(1)
			}),
		},
	}
}

// TeyvatFriedEgg revives a defeated character of your side at 1 HP. Only
// one revive through food per round.
func TeyvatFriedEgg() *game.CardDefinition {
	def := food(FriedEggID, "Teyvat Fried Egg", game.DiceRequirement{game.DiceAligned: 2}, "my defeated characters",
		func(c *game.Context, target int) error {
			if err := c.Heal(1, target); err != nil {
				return err
			}
			_, err := c.CombatStatus(ReviveCooldownID)
			return err
		})
	satiated := def.Filter
	def.Filter = func(c *game.Context, targets []int) bool {
		cooling := slices.ContainsFunc(c.Self().CombatStatuses, func(e *game.EntityState) bool {
			return e.Definition.ID == ReviveCooldownID
		})
		return !cooling && satiated(c, targets)
	}
	return def
}

func ReviveCooldown() *game.EntityDefinition {
	return &game.EntityDefinition{
		ID:   ReviveCooldownID,
		Name: "Revive on cooldown",
		Type: game.EntityCombatStatus,
		Vars: map[string]game.VarConfig{game.VarDuration: game.Variable(1)},
	}
}

// --- Supports ---

// supportCard places a support of the same id on your side.
func supportCard(id int, name string, tag string, cost game.DiceRequirement, onPlay game.SkillAction) *game.CardDefinition {
	return &game.CardDefinition{
		ID:   id,
		Name: name,
		Type: game.CardSupport,
		Tags: []string{tag},
		Cost: cost,
		Skill: cardSkill(id, func(c *game.Context, arg game.EventArg) error {
			if _, err := c.CreateEntity(game.EntitySupport, id, nil, nil); err != nil {
				return err
			}
			if onPlay != nil {
				return onPlay(c, arg)
			}
			return nil
		}),
	}
}

func PaimonCard() *game.CardDefinition {
	return supportCard(PaimonID, "Paimon", "ally", game.DiceRequirement{game.DiceAligned: 3}, nil)
}

// Paimon: create 2 Omni dice at the start of each action phase. Two uses.
func Paimon() *game.EntityDefinition {
	return &game.EntityDefinition{
		ID:                     PaimonID,
		Name:                   "Paimon",
		Type:                   game.EntitySupport,
		Tags:                   []string{"ally"},
		VisibleVarName:         game.VarUsage,
		DisposeWhenUsageIsZero: true,
		Vars:                   map[string]game.VarConfig{game.VarUsage: game.Variable(2)},
		Skills: []*game.SkillDefinition{
			trigger(PaimonID*10+1, game.OnActionPhase, nil, func(c *game.Context, _ game.EventArg) error {
				if err := c.GenerateDice(game.DiceOmni, 2); err != nil {
					return err
				}
				return c.ConsumeUsage(1)
			}),
		},
	}
}

func TimmieCard() *game.CardDefinition {
	return supportCard(TimmieID, "Timmie", "ally", nil, nil)
}

const varPigeon = "pigeon"

// Timmie gains a pigeon each action phase. On the third he leaves, drawing a
// card and creating an Omni die.
func Timmie() *game.EntityDefinition {
	return &game.EntityDefinition{
		ID:             TimmieID,
		Name:           "Timmie",
		Type:           game.EntitySupport,
		Tags:           []string{"ally"},
		VisibleVarName: varPigeon,
		Vars:           map[string]game.VarConfig{varPigeon: game.Variable(1)},
		Skills: []*game.SkillDefinition{
			trigger(TimmieID*10+1, game.OnActionPhase, nil, func(c *game.Context, _ game.EventArg) error {
				if err := c.AddVariable(varPigeon, 1); err != nil {
					return err
				}
				if c.Variable(varPigeon) < 3 {
					return nil
				}
				if err := c.DrawCards(c.Who(), 1, ""); err != nil {
					return err
				}
				if err := c.GenerateDice(game.DiceOmni, 1); err != nil {
					return err
				}
				return c.Dispose(c.CallerID())
			}),
		},
	}
}

func NRECard() *game.CardDefinition {
	return supportCard(NREID, "NRE", "item", game.DiceRequirement{game.DiceVoid: 1},
		func(c *game.Context, _ game.EventArg) error {
			return c.DrawCards(c.Who(), 1, game.TagFood)
		})
}

// NRE: after you play a food card, draw a food card. Once per round.
func NRE() *game.EntityDefinition {
	return &game.EntityDefinition{
		ID:   NREID,
		Name: "NRE",
		Type: game.EntitySupport,
		Tags: []string{"item"},
		Vars: map[string]game.VarConfig{game.VarUsagePerRound: game.Variable(1)},
		Skills: []*game.SkillDefinition{{
			ID:                   NREID*10 + 1,
			Type:                 game.SkillTriggered,
			TriggerOn:            game.OnPlayCard,
			UsagePerRoundVarName: game.VarUsagePerRound,
			Filter: func(c *game.Context, arg game.EventArg) bool {
				info, ok := arg.(game.PlayCardInfo)
				if !ok || info.Who != c.Who() {
					return false
				}
				def, err := c.State().Data.Card(info.DefinitionID)
				return err == nil && def.HasTag(game.TagFood)
			},
			Action: func(c *game.Context, _ game.EventArg) error {
				if err := c.DrawCards(c.Who(), 1, game.TagFood); err != nil {
					return err
				}
				return c.ConsumeUsagePerRound(1)
			},
		}},
	}
}

// --- Events ---

func Strategize() *game.CardDefinition {
	return &game.CardDefinition{
		ID:   StrategizeID,
		Name: "Strategize",
		Type: game.CardEvent,
		Cost: game.DiceRequirement{game.DiceVoid: 1},
		Skill: cardSkill(StrategizeID, func(c *game.Context, _ game.EventArg) error {
			return c.DrawCards(c.Who(), 2, "")
		}),
	}
}

func TossUp() *game.CardDefinition {
	return &game.CardDefinition{
		ID:   TossUpID,
		Name: "Toss-Up",
		Type: game.CardEvent,
		Skill: cardSkill(TossUpID, func(c *game.Context, _ game.EventArg) error {
			c.Reroll(2)
			return nil
		}),
	}
}

// Starsigns gives the active character one energy.
func Starsigns() *game.CardDefinition {
	return &game.CardDefinition{
		ID:   StarsignsID,
		Name: "Starsigns",
		Type: game.CardEvent,
		Cost: game.DiceRequirement{game.DiceVoid: 2},
		Filter: func(c *game.Context, _ []int) bool {
			active := c.ActiveCharacter(c.Who())
			return active != nil && active.Variables[game.VarEnergy] < active.Variables[game.VarMaxEnergy]
		},
		Skill: cardSkill(StarsignsID, func(c *game.Context, _ game.EventArg) error {
			return c.GainEnergy(1, c.Select("my active")...)
		}),
	}
}

// BestestTravelCompanion turns every remaining die into Omni.
func BestestTravelCompanion() *game.CardDefinition {
	return &game.CardDefinition{
		ID:   BestestCompanionID,
		Name: "The Bestest Travel Companion!",
		Type: game.CardEvent,
		Cost: game.DiceRequirement{game.DiceVoid: 2},
		Skill: cardSkill(BestestCompanionID, func(c *game.Context, _ game.EventArg) error {
			taken, err := c.AbsorbDice(game.AbsorbSeq, len(c.Self().Dice))
			if err != nil {
				return err
			}
			return c.GenerateDice(game.DiceOmni, len(taken))
		}),
	}
}

// QuickKnit adds one usage to a summon of yours.
func QuickKnit() *game.CardDefinition {
	return &game.CardDefinition{
		ID:      QuickKnitID,
		Name:    "Quick Knit",
		Type:    game.CardEvent,
		Cost:    game.DiceRequirement{game.DiceVoid: 1},
		Targets: []string{"my summons"},
		Skill: cardSkill(QuickKnitID, func(c *game.Context, arg game.EventArg) error {
			target := targetOf(arg)
			return c.SetVariableOf(target, game.VarUsage, c.VariableOf(target, game.VarUsage)+1)
		}),
	}
}

// CovenantOfRock: legend. With no dice left, create two dice of different
// random elements.
func CovenantOfRock() *game.CardDefinition {
	return &game.CardDefinition{
		ID:   CovenantOfRockID,
		Name: "Covenant of Rock",
		Type: game.CardEvent,
		Tags: []string{game.TagLegend},
		Filter: func(c *game.Context, _ []int) bool {
			return len(c.Self().Dice) == 0
		},
		Skill: cardSkill(CovenantOfRockID, func(c *game.Context, _ game.EventArg) error {
			return c.GenerateRandomElementDice(2)
		}),
	}
}

// IHaventLostYet: only after one of your characters fell this round. Create
// an Omni die and give the active character one energy.
func IHaventLostYet() *game.CardDefinition {
	return &game.CardDefinition{
		ID:   NotLostYetID,
		Name: "I Haven't Lost Yet!",
		Type: game.CardEvent,
		Filter: func(c *game.Context, _ []int) bool {
			return c.Self().HasDefeated
		},
		Skill: cardSkill(NotLostYetID, func(c *game.Context, _ game.EventArg) error {
			if err := c.GenerateDice(game.DiceOmni, 1); err != nil {
				return err
			}
			return c.GainEnergy(1, c.Select("my active")...)
		}),
	}
}
