package game

import (
	"slices"
	"sort"
)

// SortDice orders a dice pool: Omni first, then the active character's
// element, then the other elements of the player's alive characters, then the
// rest. Ties keep type order.
func SortDice(p *PlayerState, dice []DiceType) []DiceType {
	activeElem := DiceVoid
	if active := p.ActiveCharacter(); active != nil {
		activeElem = active.Definition.Element()
	}
	team := map[DiceType]bool{}
	for _, ch := range p.AliveCharacters() {
		team[ch.Definition.Element()] = true
	}
	rank := func(d DiceType) int {
		switch {
		case d == DiceOmni:
			return 0
		case d == activeElem:
			return 1
		case team[d]:
			return 2
		default:
			return 3
		}
	}
	out := slices.Clone(dice)
	sort.SliceStable(out, func(i, j int) bool {
		ri, rj := rank(out[i]), rank(out[j])
		if ri != rj {
			return ri < rj
		}
		return out[i] < out[j]
	})
	return out
}

func tally(dice []DiceType) map[DiceType]int {
	counts := make(map[DiceType]int, len(dice))
	for _, d := range dice {
		counts[d]++
	}
	return counts
}

func elementOrder() []DiceType {
	return []DiceType{DiceCryo, DiceHydro, DicePyro, DiceElectro, DiceAnemo, DiceGeo, DiceDendro}
}

// CheckDice reports whether paid exactly satisfies the dice part of req.
// Omni dice substitute for any element.
func CheckDice(req DiceRequirement, paid []DiceType) bool {
	if len(paid) != req.DiceCount() {
		return false
	}
	counts := tally(paid)
	for _, e := range elementOrder() {
		need := req[e]
		own := min(need, counts[e])
		counts[e] -= own
		need -= own
		if need > counts[DiceOmni] {
			return false
		}
		counts[DiceOmni] -= need
	}
	aligned := req[DiceAligned]
	if aligned == 0 || counts[DiceOmni] >= aligned {
		return true
	}
	for _, e := range elementOrder() {
		if counts[e]+counts[DiceOmni] >= aligned {
			return true
		}
	}
	return false
}

// AutoPay picks dice from pool to pay req, preferring matching element dice
// over Omni. ok is false when the pool cannot pay.
func AutoPay(req DiceRequirement, pool []DiceType) (paid []DiceType, ok bool) {
	counts := tally(pool)
	take := func(d DiceType, n int) {
		for i := 0; i < n; i++ {
			paid = append(paid, d)
		}
		counts[d] -= n
	}
	for _, e := range elementOrder() {
		need := req[e]
		own := min(need, counts[e])
		take(e, own)
		need -= own
		if need > counts[DiceOmni] {
			return nil, false
		}
		take(DiceOmni, need)
	}
	if aligned := req[DiceAligned]; aligned > 0 {
		best, bestCount := DiceOmni, 0
		for _, e := range elementOrder() {
			if counts[e] > bestCount {
				best, bestCount = e, counts[e]
			}
		}
		if bestCount+counts[DiceOmni] < aligned {
			return nil, false
		}
		own := min(aligned, bestCount)
		if best != DiceOmni {
			take(best, own)
		} else {
			own = 0
		}
		take(DiceOmni, aligned-own)
	}
	if void := req[DiceVoid]; void > 0 {
		// Omni dice go last.
		left := void
		for _, e := range elementOrder() {
			n := min(left, counts[e])
			take(e, n)
			left -= n
		}
		if left > counts[DiceOmni] {
			return nil, false
		}
		take(DiceOmni, left)
	}
	return paid, true
}

// CanAfford reports whether the pool can pay the dice part of req.
func CanAfford(req DiceRequirement, pool []DiceType) bool {
	_, ok := AutoPay(req, pool)
	return ok
}

// ContainsDice reports whether paid is a sub-multiset of pool.
func ContainsDice(pool, paid []DiceType) bool {
	counts := tally(pool)
	for _, d := range paid {
		if counts[d] == 0 {
			return false
		}
		counts[d]--
	}
	return true
}

// RemoveDice returns pool without the dice in paid.
func RemoveDice(pool, paid []DiceType) []DiceType {
	counts := tally(paid)
	var out []DiceType
	for _, d := range pool {
		if counts[d] > 0 {
			counts[d]--
			continue
		}
		out = append(out, d)
	}
	return out
}
