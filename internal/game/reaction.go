package game

type reactionEntry struct {
	aura     Aura
	reaction Reaction
}

// reactionTable is indexed by [aura][element-1] for the seven reactive
// damage types Cryo..Dendro.
var reactionTable = [7][7]reactionEntry{
	AuraNone: {
		{AuraCryo, ReactionNone},
		{AuraHydro, ReactionNone},
		{AuraPyro, ReactionNone},
		{AuraElectro, ReactionNone},
		{AuraNone, ReactionNone},
		{AuraNone, ReactionNone},
		{AuraDendro, ReactionNone},
	},
	AuraCryo: {
		{AuraCryo, ReactionNone},
		{AuraNone, ReactionFrozen},
		{AuraNone, ReactionMelt},
		{AuraNone, ReactionSuperconduct},
		{AuraNone, ReactionSwirlCryo},
		{AuraNone, ReactionCrystallizeCryo},
		{AuraCryoDendro, ReactionNone},
	},
	AuraHydro: {
		{AuraNone, ReactionFrozen},
		{AuraHydro, ReactionNone},
		{AuraNone, ReactionVaporize},
		{AuraNone, ReactionElectroCharged},
		{AuraNone, ReactionSwirlHydro},
		{AuraNone, ReactionCrystallizeHydro},
		{AuraNone, ReactionBloom},
	},
	AuraPyro: {
		{AuraNone, ReactionMelt},
		{AuraNone, ReactionVaporize},
		{AuraPyro, ReactionNone},
		{AuraNone, ReactionOverloaded},
		{AuraNone, ReactionSwirlPyro},
		{AuraNone, ReactionCrystallizePyro},
		{AuraNone, ReactionBurning},
	},
	AuraElectro: {
		{AuraNone, ReactionSuperconduct},
		{AuraNone, ReactionElectroCharged},
		{AuraNone, ReactionOverloaded},
		{AuraElectro, ReactionNone},
		{AuraNone, ReactionSwirlElectro},
		{AuraNone, ReactionCrystallizeElectro},
		{AuraNone, ReactionQuicken},
	},
	AuraDendro: {
		{AuraCryoDendro, ReactionNone},
		{AuraNone, ReactionBloom},
		{AuraNone, ReactionBurning},
		{AuraNone, ReactionQuicken},
		{AuraDendro, ReactionNone},
		{AuraDendro, ReactionNone},
		{AuraDendro, ReactionNone},
	},
	// Cryo reacts first; Dendro stays behind.
	AuraCryoDendro: {
		{AuraCryoDendro, ReactionNone},
		{AuraDendro, ReactionFrozen},
		{AuraDendro, ReactionMelt},
		{AuraDendro, ReactionSuperconduct},
		{AuraDendro, ReactionSwirlCryo},
		{AuraDendro, ReactionCrystallizeCryo},
		{AuraCryoDendro, ReactionNone},
	},
}

// LookupReaction returns the aura left behind and the reaction triggered when
// element hits a character carrying aura. ok is false for a non-reactive
// damage type or an unknown aura.
func LookupReaction(aura Aura, element DamageType) (newAura Aura, reaction Reaction, ok bool) {
	if !element.IsReactive() || aura < AuraNone || aura > AuraCryoDendro {
		return aura, ReactionNone, false
	}
	e := reactionTable[aura][element-DamageCryo]
	return e.aura, e.reaction, true
}

// ReactiveElements lists the damage types that consult the reaction table.
func ReactiveElements() []DamageType {
	return []DamageType{DamageCryo, DamageHydro, DamagePyro, DamageElectro, DamageAnemo, DamageGeo, DamageDendro}
}

// AllAuras lists every aura state.
func AllAuras() []Aura {
	return []Aura{AuraNone, AuraCryo, AuraHydro, AuraPyro, AuraElectro, AuraDendro, AuraCryoDendro}
}
