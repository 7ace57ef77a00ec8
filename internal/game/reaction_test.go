package game

import "testing"

func TestReactionTableIsTotal(t *testing.T) {
	for _, aura := range AllAuras() {
		for _, el := range ReactiveElements() {
			newAura, _, ok := LookupReaction(aura, el)
			if !ok {
				t.Errorf("LookupReaction(%s, %s) not defined", aura, el)
			}
			if newAura < AuraNone || newAura > AuraCryoDendro {
				t.Errorf("LookupReaction(%s, %s) left invalid aura %d", aura, el, newAura)
			}
		}
	}
}

func TestLookupReaction(t *testing.T) {
	tests := []struct {
		aura     Aura
		element  DamageType
		wantAura Aura
		want     Reaction
	}{
		{AuraNone, DamageCryo, AuraCryo, ReactionNone},
		{AuraNone, DamageAnemo, AuraNone, ReactionNone},
		{AuraCryo, DamagePyro, AuraNone, ReactionMelt},
		{AuraPyro, DamageCryo, AuraNone, ReactionMelt},
		{AuraHydro, DamageCryo, AuraNone, ReactionFrozen},
		{AuraHydro, DamagePyro, AuraNone, ReactionVaporize},
		{AuraElectro, DamagePyro, AuraNone, ReactionOverloaded},
		{AuraCryo, DamageDendro, AuraCryoDendro, ReactionNone},
		{AuraCryoDendro, DamagePyro, AuraDendro, ReactionMelt},
		{AuraDendro, DamageGeo, AuraDendro, ReactionNone},
		{AuraHydro, DamageAnemo, AuraNone, ReactionSwirlHydro},
		{AuraElectro, DamageGeo, AuraNone, ReactionCrystallizeElectro},
		{AuraPyro, DamageDendro, AuraNone, ReactionBurning},
		{AuraElectro, DamageDendro, AuraNone, ReactionQuicken},
	}
	for _, tt := range tests {
		gotAura, got, ok := LookupReaction(tt.aura, tt.element)
		if !ok || gotAura != tt.wantAura || got != tt.want {
			t.Errorf("LookupReaction(%s, %s) = (%s, %s, %v), want (%s, %s)",
				tt.aura, tt.element, gotAura, got, ok, tt.wantAura, tt.want)
		}
	}
}

func TestLookupReactionNonReactive(t *testing.T) {
	for _, d := range []DamageType{DamagePhysical, DamagePiercing, DamageHeal} {
		if _, _, ok := LookupReaction(AuraCryo, d); ok {
			t.Errorf("LookupReaction(Cryo, %s) reported ok", d)
		}
	}
}
