// Package content holds the sample character, entity and card set the
// engine ships with, plus YAML deck files built from it.
package content

import "github.com/peterkuimelis/gitcg/internal/game"

// Characters lists the constructors of every character definition.
var Characters = []func() *game.CharacterDefinition{
	Kaeya,
	Barbara,
	Bennett,
	Fischl,
	Sucrose,
	Noelle,
	Collei,
}

// Entities lists the constructors of every entity definition, including the
// ones the reaction engine creates.
var Entities = []func() *game.EntityDefinition{
	Frozen,
	Crystallize,
	BurningFlame,
	DendroCore,
	CatalyzingField,

	Icicle,
	ColdBloodedStrike,
	MelodyLoop,
	GloriousSeason,
	func() *game.EntityDefinition { return InspirationField(false) },
	func() *game.EntityDefinition { return InspirationField(true) },
	GrandExpectation,
	Oz,
	LargeWindSpirit,
	FullPlate,
	SweepingTime,
	CuileinAnbar,

	GamblersEarrings,
	LuckyDogsCirclet,
	Satiated,
	JueyunGuobaStatus,
	LotusStatus,
	PizzaStatus,
	ReviveCooldown,
	Paimon,
	Timmie,
	NRE,
}

// Cards lists the constructors of every card definition.
var Cards = []func() *game.CardDefinition{
	ColdBloodedStrikeCard,
	GloriousSeasonCard,
	GrandExpectationCard,

	GamblersEarringsCard,
	LuckyDogsCircletCard,

	SweetMadame,
	MondstadtHashBrown,
	JueyunGuoba,
	LotusFlowerCrisp,
	MushroomPizza,
	TeyvatFriedEgg,

	PaimonCard,
	TimmieCard,
	NRECard,

	Strategize,
	TossUp,
	Starsigns,
	BestestTravelCompanion,
	QuickKnit,
	CovenantOfRock,
	IHaventLostYet,
}

// Register adds the whole content set to r.
func Register(r *game.Registry) {
	for _, ctor := range Characters {
		r.AddCharacter(ctor())
	}
	for _, ctor := range Entities {
		r.AddEntity(ctor())
	}
	for _, w := range weapons {
		r.AddEntity(w.entity())
		r.AddCard(w.card())
	}
	for _, ctor := range Cards {
		r.AddCard(ctor())
	}
}

// NewRegistry returns a registry holding the whole content set.
func NewRegistry() *game.Registry {
	r := game.NewRegistry()
	Register(r)
	return r
}
