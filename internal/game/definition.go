package game

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
)

// RecreateKind selects how a variable merges when an existing entity is
// created again in the same area.
type RecreateKind int

const (
	RecreateTakeMax RecreateKind = iota
	RecreateOverwrite
	RecreateAppend
)

func (k RecreateKind) String() string {
	switch k {
	case RecreateTakeMax:
		return "takeMax"
	case RecreateOverwrite:
		return "overwrite"
	case RecreateAppend:
		return "append"
	default:
		return "unknown"
	}
}

// VarConfig declares one named variable of a definition.
type VarConfig struct {
	Initial     int
	Recreate    RecreateKind
	AppendValue int
	AppendLimit int
}

// Variable declares a variable that keeps the larger of old and new on refresh.
func Variable(initial int) VarConfig {
	return VarConfig{Initial: initial, Recreate: RecreateTakeMax}
}

// ForceVariable declares a variable that resets to its initial value on refresh.
func ForceVariable(initial int) VarConfig {
	return VarConfig{Initial: initial, Recreate: RecreateOverwrite}
}

// AppendVariable declares a variable that stacks on refresh, up to limit.
func AppendVariable(initial, limit int) VarConfig {
	return VarConfig{Initial: initial, Recreate: RecreateAppend, AppendValue: initial, AppendLimit: limit}
}

// Merge computes the refreshed value of a variable. initial is the declared
// initial value after any creation override has been applied.
func (v VarConfig) Merge(old, initial int) int {
	switch v.Recreate {
	case RecreateOverwrite:
		return initial
	case RecreateAppend:
		appendValue := v.AppendValue
		if appendValue == 0 {
			appendValue = initial
		}
		return min(old+appendValue, v.AppendLimit)
	default:
		return max(initial, old)
	}
}

func sortedVarNames(vars map[string]VarConfig) []string {
	return slices.Sorted(maps.Keys(vars))
}

// DiceRequirement maps a requirement type to a count.
type DiceRequirement map[DiceType]int

// DiceCount is the number of dice (energy excluded) the requirement asks for.
func (r DiceRequirement) DiceCount() int {
	n := 0
	for t, c := range r {
		if t != DiceEnergy {
			n += c
		}
	}
	return n
}

// Energy returns the energy part of the requirement.
func (r DiceRequirement) Energy() int {
	return r[DiceEnergy]
}

// Clone returns a copy that can be modified freely.
func (r DiceRequirement) Clone() DiceRequirement {
	out := make(DiceRequirement, len(r))
	for t, c := range r {
		out[t] = c
	}
	return out
}

// SkillAction is the effect description run inside a Context.
type SkillAction func(c *Context, arg EventArg) error

// SkillFilter decides whether a triggered skill fires for this event.
type SkillFilter func(c *Context, arg EventArg) bool

// SkillDefinition is either an initiative skill of a character, a triggered
// skill of an entity, or the effect of a card.
type SkillDefinition struct {
	ID                   int
	Type                 SkillType
	TriggerOn            EventName
	Cost                 DiceRequirement
	UsagePerRoundVarName string
	GainEnergy           bool
	Filter               SkillFilter
	Action               SkillAction
}

type CharacterDefinition struct {
	ID     int
	Name   string
	Tags   []string
	Vars   map[string]VarConfig
	Skills []*SkillDefinition
}

// Element returns the dice type matching the character's element tag.
func (d *CharacterDefinition) Element() DiceType {
	for _, tag := range d.Tags {
		if t, ok := elementTags[tag]; ok {
			return t
		}
	}
	return DiceVoid
}

func (d *CharacterDefinition) HasTag(tag string) bool {
	return slices.Contains(d.Tags, tag)
}

// Skill returns the initiative or triggered skill with the given id.
func (d *CharacterDefinition) Skill(id int) *SkillDefinition {
	for _, s := range d.Skills {
		if s.ID == id {
			return s
		}
	}
	return nil
}

var elementTags = map[string]DiceType{
	"cryo":    DiceCryo,
	"hydro":   DiceHydro,
	"pyro":    DicePyro,
	"electro": DiceElectro,
	"anemo":   DiceAnemo,
	"geo":     DiceGeo,
	"dendro":  DiceDendro,
}

type EntityDefinition struct {
	ID                     int
	Name                   string
	Type                   EntityType
	Tags                   []string
	VisibleVarName         string
	Vars                   map[string]VarConfig
	Skills                 []*SkillDefinition
	DisposeWhenUsageIsZero bool
}

func (d *EntityDefinition) HasTag(tag string) bool {
	return slices.Contains(d.Tags, tag)
}

// DeckRequirement restricts which decks may hold a card.
type DeckRequirement struct {
	Character int `yaml:"character,omitempty"`
}

type CardDefinition struct {
	ID              int
	Name            string
	Type            CardType
	Tags            []string
	Cost            DiceRequirement
	DeckRequirement DeckRequirement
	// Targets holds one selector query per target slot. The legal target
	// combinations are the cartesian product of the query results.
	Targets []string
	Filter  func(c *Context, targets []int) bool
	Skill   *SkillDefinition
}

func (d *CardDefinition) HasTag(tag string) bool {
	return slices.Contains(d.Tags, tag)
}

// --- Reference encoding ---
//
// Definitions are never serialized by value. They are written as a typed
// reference and restored by re-attaching the registry.

type defRef struct {
	Kind string `json:"$$"`
	ID   int    `json:"id"`
}

func marshalRef(kind string, id int) ([]byte, error) {
	return json.Marshal(defRef{Kind: kind, ID: id})
}

func unmarshalRef(data []byte, kind string) (int, error) {
	var ref defRef
	if err := json.Unmarshal(data, &ref); err != nil {
		return 0, err
	}
	if ref.Kind != kind {
		return 0, fmt.Errorf("definition reference kind %q, want %q", ref.Kind, kind)
	}
	return ref.ID, nil
}

func (d *CharacterDefinition) MarshalJSON() ([]byte, error) { return marshalRef("character", d.ID) }
func (d *EntityDefinition) MarshalJSON() ([]byte, error)    { return marshalRef("entity", d.ID) }
func (d *CardDefinition) MarshalJSON() ([]byte, error)      { return marshalRef("card", d.ID) }

func (d *CharacterDefinition) UnmarshalJSON(data []byte) error {
	id, err := unmarshalRef(data, "character")
	d.ID = id
	return err
}

func (d *EntityDefinition) UnmarshalJSON(data []byte) error {
	id, err := unmarshalRef(data, "entity")
	d.ID = id
	return err
}

func (d *CardDefinition) UnmarshalJSON(data []byte) error {
	id, err := unmarshalRef(data, "card")
	d.ID = id
	return err
}
