package game

import "fmt"

// --- Enums ---

type Phase int

const (
	PhaseInitHands Phase = iota
	PhaseInitActives
	PhaseRoll
	PhaseAction
	PhaseEnd
	PhaseGameEnd
)

func (p Phase) String() string {
	switch p {
	case PhaseInitHands:
		return "Init Hands"
	case PhaseInitActives:
		return "Init Actives"
	case PhaseRoll:
		return "Roll Phase"
	case PhaseAction:
		return "Action Phase"
	case PhaseEnd:
		return "End Phase"
	case PhaseGameEnd:
		return "Game End"
	default:
		return "None"
	}
}

// DiceType covers both rolled dice and cost requirements. Void, Aligned and
// Energy only appear in requirements.
type DiceType int

const (
	DiceVoid DiceType = iota
	DiceCryo
	DiceHydro
	DicePyro
	DiceElectro
	DiceAnemo
	DiceGeo
	DiceDendro
	DiceOmni
	DiceAligned
	DiceEnergy
)

func (d DiceType) String() string {
	switch d {
	case DiceVoid:
		return "Void"
	case DiceCryo:
		return "Cryo"
	case DiceHydro:
		return "Hydro"
	case DicePyro:
		return "Pyro"
	case DiceElectro:
		return "Electro"
	case DiceAnemo:
		return "Anemo"
	case DiceGeo:
		return "Geo"
	case DiceDendro:
		return "Dendro"
	case DiceOmni:
		return "Omni"
	case DiceAligned:
		return "Aligned"
	case DiceEnergy:
		return "Energy"
	default:
		return fmt.Sprintf("Dice(%d)", int(d))
	}
}

// IsElement reports whether d is one of the seven elemental dice.
func (d DiceType) IsElement() bool {
	return d >= DiceCryo && d <= DiceDendro
}

type DamageType int

const (
	DamagePhysical DamageType = iota
	DamageCryo
	DamageHydro
	DamagePyro
	DamageElectro
	DamageAnemo
	DamageGeo
	DamageDendro
	DamagePiercing
	DamageHeal
)

func (d DamageType) String() string {
	switch d {
	case DamagePhysical:
		return "Physical"
	case DamageCryo:
		return "Cryo"
	case DamageHydro:
		return "Hydro"
	case DamagePyro:
		return "Pyro"
	case DamageElectro:
		return "Electro"
	case DamageAnemo:
		return "Anemo"
	case DamageGeo:
		return "Geo"
	case DamageDendro:
		return "Dendro"
	case DamagePiercing:
		return "Piercing"
	case DamageHeal:
		return "Heal"
	default:
		return fmt.Sprintf("Damage(%d)", int(d))
	}
}

// IsReactive reports whether the damage type consults the reaction table.
func (d DamageType) IsReactive() bool {
	return d >= DamageCryo && d <= DamageDendro
}

type Aura int

const (
	AuraNone Aura = iota
	AuraCryo
	AuraHydro
	AuraPyro
	AuraElectro
	AuraDendro
	AuraCryoDendro
)

func (a Aura) String() string {
	switch a {
	case AuraNone:
		return "None"
	case AuraCryo:
		return "Cryo"
	case AuraHydro:
		return "Hydro"
	case AuraPyro:
		return "Pyro"
	case AuraElectro:
		return "Electro"
	case AuraDendro:
		return "Dendro"
	case AuraCryoDendro:
		return "Cryo+Dendro"
	default:
		return fmt.Sprintf("Aura(%d)", int(a))
	}
}

type Reaction int

const (
	ReactionNone Reaction = iota
	ReactionMelt
	ReactionVaporize
	ReactionOverloaded
	ReactionSuperconduct
	ReactionElectroCharged
	ReactionFrozen
	ReactionSwirlCryo
	ReactionSwirlHydro
	ReactionSwirlPyro
	ReactionSwirlElectro
	ReactionCrystallizeCryo
	ReactionCrystallizeHydro
	ReactionCrystallizePyro
	ReactionCrystallizeElectro
	ReactionBurning
	ReactionBloom
	ReactionQuicken
)

func (r Reaction) String() string {
	switch r {
	case ReactionNone:
		return "None"
	case ReactionMelt:
		return "Melt"
	case ReactionVaporize:
		return "Vaporize"
	case ReactionOverloaded:
		return "Overloaded"
	case ReactionSuperconduct:
		return "Superconduct"
	case ReactionElectroCharged:
		return "ElectroCharged"
	case ReactionFrozen:
		return "Frozen"
	case ReactionSwirlCryo:
		return "SwirlCryo"
	case ReactionSwirlHydro:
		return "SwirlHydro"
	case ReactionSwirlPyro:
		return "SwirlPyro"
	case ReactionSwirlElectro:
		return "SwirlElectro"
	case ReactionCrystallizeCryo:
		return "CrystallizeCryo"
	case ReactionCrystallizeHydro:
		return "CrystallizeHydro"
	case ReactionCrystallizePyro:
		return "CrystallizePyro"
	case ReactionCrystallizeElectro:
		return "CrystallizeElectro"
	case ReactionBurning:
		return "Burning"
	case ReactionBloom:
		return "Bloom"
	case ReactionQuicken:
		return "Quicken"
	default:
		return fmt.Sprintf("Reaction(%d)", int(r))
	}
}

type EntityType int

const (
	EntityCharacter EntityType = iota
	EntityStatus
	EntityCombatStatus
	EntityEquipment
	EntitySummon
	EntitySupport
)

func (t EntityType) String() string {
	switch t {
	case EntityCharacter:
		return "character"
	case EntityStatus:
		return "status"
	case EntityCombatStatus:
		return "combatStatus"
	case EntityEquipment:
		return "equipment"
	case EntitySummon:
		return "summon"
	case EntitySupport:
		return "support"
	default:
		return "unknown"
	}
}

type CardType int

const (
	CardEvent CardType = iota
	CardSupport
	CardEquipment
)

func (t CardType) String() string {
	switch t {
	case CardEvent:
		return "event"
	case CardSupport:
		return "support"
	case CardEquipment:
		return "equipment"
	default:
		return "unknown"
	}
}

type SkillType int

const (
	SkillNormal SkillType = iota
	SkillElemental
	SkillBurst
	SkillTriggered
	SkillCard
)

func (t SkillType) String() string {
	switch t {
	case SkillNormal:
		return "normal"
	case SkillElemental:
		return "elemental"
	case SkillBurst:
		return "burst"
	case SkillTriggered:
		return "triggered"
	case SkillCard:
		return "card"
	default:
		return "unknown"
	}
}

// IsInitiative reports whether the skill is one a player can use as an action.
func (t SkillType) IsInitiative() bool {
	return t == SkillNormal || t == SkillElemental || t == SkillBurst
}

// AreaType names the collections an entity can live in.
type AreaType int

const (
	AreaCharacters AreaType = iota
	AreaCombatStatuses
	AreaSummons
	AreaSupports
)

func (a AreaType) String() string {
	switch a {
	case AreaCharacters:
		return "characters"
	case AreaCombatStatuses:
		return "combatStatuses"
	case AreaSummons:
		return "summons"
	case AreaSupports:
		return "supports"
	default:
		return "unknown"
	}
}

// EntityArea locates an entity. CharacterID is set only for AreaCharacters.
type EntityArea struct {
	Type        AreaType `json:"type"`
	Who         int      `json:"who"`
	CharacterID int      `json:"characterId,omitempty"`
}

// CardArea is either the hand or the draw pile.
type CardArea int

const (
	CardAreaHands CardArea = iota
	CardAreaPiles
)

func (a CardArea) String() string {
	if a == CardAreaHands {
		return "hands"
	}
	return "piles"
}

// PlayerFlag names the boolean flags stored on PlayerState.
type PlayerFlag int

const (
	FlagDeclaredEnd PlayerFlag = iota
	FlagHasDefeated
	FlagCanPlunging
	FlagLegendUsed
	FlagSkipNextTurn
)

func (f PlayerFlag) String() string {
	switch f {
	case FlagDeclaredEnd:
		return "declaredEnd"
	case FlagHasDefeated:
		return "hasDefeated"
	case FlagCanPlunging:
		return "canPlunging"
	case FlagLegendUsed:
		return "legendUsed"
	case FlagSkipNextTurn:
		return "skipNextTurn"
	default:
		return "unknown"
	}
}

// --- Rule defaults ---

const (
	DefaultInitialHands = 5
	DefaultMaxHands     = 10
	DefaultMaxRounds    = 15
	DefaultMaxSupports  = 4
	DefaultMaxSummons   = 4
	DefaultInitialDice  = 8
	DefaultMaxDice      = 16
	DrawPerRound        = 2
)

// Well-known variable names.
const (
	VarHealth        = "health"
	VarMaxHealth     = "maxHealth"
	VarEnergy        = "energy"
	VarMaxEnergy     = "maxEnergy"
	VarAlive         = "alive"
	VarAura          = "aura"
	VarUsage         = "usage"
	VarDuration      = "duration"
	VarShield        = "shield"
	VarUsagePerRound = "usagePerRound"
)

// Well-known tags.
const (
	TagDisableSkill  = "disableSkill"
	TagImmuneControl = "immuneControl"
	TagWeapon        = "weapon"
	TagArtifact      = "artifact"
	TagTalent        = "talent"
	TagLegend        = "legend"
	TagFood          = "food"
	TagNoTuning      = "noTuning"
)
