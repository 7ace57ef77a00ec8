package game

import (
	"maps"
	"slices"
)

// NoWinner is the Winner value of a match that is undecided or drawn.
const NoWinner = -1

// GameConfig holds the rule limits of a match.
type GameConfig struct {
	RandomSeed   int64 `json:"randomSeed" yaml:"random_seed"`
	InitialHands int   `json:"initialHands" yaml:"initial_hands"`
	MaxHands     int   `json:"maxHands" yaml:"max_hands"`
	MaxRounds    int   `json:"maxRounds" yaml:"max_rounds"`
	MaxSupports  int   `json:"maxSupports" yaml:"max_supports"`
	MaxSummons   int   `json:"maxSummons" yaml:"max_summons"`
	InitialDice  int   `json:"initialDice" yaml:"initial_dice"`
	MaxDice      int   `json:"maxDice" yaml:"max_dice"`
}

// DefaultGameConfig returns the standard rule limits.
func DefaultGameConfig() GameConfig {
	return GameConfig{
		InitialHands: DefaultInitialHands,
		MaxHands:     DefaultMaxHands,
		MaxRounds:    DefaultMaxRounds,
		MaxSupports:  DefaultMaxSupports,
		MaxSummons:   DefaultMaxSummons,
		InitialDice:  DefaultInitialDice,
		MaxDice:      DefaultMaxDice,
	}
}

// Vars is a set of named integer variables. Treat it as read-only; use with
// to derive a modified copy.
type Vars map[string]int

func (v Vars) with(name string, value int) Vars {
	out := make(Vars, len(v)+1)
	maps.Copy(out, v)
	out[name] = value
	return out
}

type CardState struct {
	ID         int             `json:"id"`
	Definition *CardDefinition `json:"definition"`
}

type EntityState struct {
	ID         int               `json:"id"`
	Definition *EntityDefinition `json:"definition"`
	Variables  Vars              `json:"variables"`
}

type CharacterState struct {
	ID         int                  `json:"id"`
	Definition *CharacterDefinition `json:"definition"`
	Variables  Vars                 `json:"variables"`
	Entities   []*EntityState       `json:"entities"`
}

func (c *CharacterState) Alive() bool {
	return c.Variables[VarAlive] != 0
}

func (c *CharacterState) Health() int {
	return c.Variables[VarHealth]
}

func (c *CharacterState) Aura() Aura {
	return Aura(c.Variables[VarAura])
}

// HasEntity reports whether an attached entity has the given definition id.
func (c *CharacterState) HasEntity(defID int) bool {
	return slices.ContainsFunc(c.Entities, func(e *EntityState) bool {
		return e.Definition.ID == defID
	})
}

// EquipmentWithTag returns the attached equipment carrying tag, if any.
func (c *CharacterState) EquipmentWithTag(tag string) *EntityState {
	for _, e := range c.Entities {
		if e.Definition.Type == EntityEquipment && e.Definition.HasTag(tag) {
			return e
		}
	}
	return nil
}

type PlayerState struct {
	Who                  int              `json:"who"`
	InitialPiles         []*CardState     `json:"initialPiles"`
	Piles                []*CardState     `json:"piles"`
	ActiveCharacterID    int              `json:"activeCharacterId"`
	Hands                []*CardState     `json:"hands"`
	Characters           []*CharacterState `json:"characters"`
	CombatStatuses       []*EntityState   `json:"combatStatuses"`
	Supports             []*EntityState   `json:"supports"`
	Summons              []*EntityState   `json:"summons"`
	Dice                 []DiceType       `json:"dice"`
	DeclaredEnd          bool             `json:"declaredEnd"`
	HasDefeated          bool             `json:"hasDefeated"`
	CanPlunging          bool             `json:"canPlunging"`
	LegendUsed           bool             `json:"legendUsed"`
	SkipNextTurn         bool             `json:"skipNextTurn"`
	DisposedSupportCount int              `json:"disposedSupportCount"`
}

func (p *PlayerState) flag(f PlayerFlag) bool {
	switch f {
	case FlagDeclaredEnd:
		return p.DeclaredEnd
	case FlagHasDefeated:
		return p.HasDefeated
	case FlagCanPlunging:
		return p.CanPlunging
	case FlagLegendUsed:
		return p.LegendUsed
	case FlagSkipNextTurn:
		return p.SkipNextTurn
	}
	return false
}

// ActiveCharacter returns the active character, or nil before one is chosen.
func (p *PlayerState) ActiveCharacter() *CharacterState {
	for _, ch := range p.Characters {
		if ch.ID == p.ActiveCharacterID {
			return ch
		}
	}
	return nil
}

// NextCharacter walks offset alive characters forward (negative: backward)
// from the active one, wrapping around. It returns nil when no other alive
// character exists.
func (p *PlayerState) NextCharacter(offset int) *CharacterState {
	n := len(p.Characters)
	start := slices.IndexFunc(p.Characters, func(ch *CharacterState) bool { return ch.ID == p.ActiveCharacterID })
	if n == 0 || start < 0 || offset == 0 {
		return nil
	}
	step := 1
	if offset < 0 {
		step, offset = -1, -offset
	}
	idx := start
	for i := 0; i < n-1 && offset > 0; i++ {
		idx = ((idx+step)%n + n) % n
		if p.Characters[idx].Alive() {
			offset--
		}
	}
	if offset > 0 || idx == start {
		return nil
	}
	return p.Characters[idx]
}

// AliveCharacters returns the characters that are not defeated.
func (p *PlayerState) AliveCharacters() []*CharacterState {
	var out []*CharacterState
	for _, ch := range p.Characters {
		if ch.Alive() {
			out = append(out, ch)
		}
	}
	return out
}

// AllDefeated reports whether every character of the player is defeated.
func (p *PlayerState) AllDefeated() bool {
	return len(p.Characters) > 0 && len(p.AliveCharacters()) == 0
}

func (p *PlayerState) area(t AreaType) []*EntityState {
	switch t {
	case AreaCombatStatuses:
		return p.CombatStatuses
	case AreaSummons:
		return p.Summons
	case AreaSupports:
		return p.Supports
	}
	return nil
}

func (p *PlayerState) cards(a CardArea) []*CardState {
	if a == CardAreaHands {
		return p.Hands
	}
	return p.Piles
}

// DamageInfo describes one resolved damage or heal instance.
type DamageInfo struct {
	Type         DamageType `json:"type"`
	Value        int        `json:"value"`
	SourceID     int        `json:"sourceId"`
	TargetID     int        `json:"targetId"`
	SkillID      int        `json:"skillId"`
	RoundNumber  int        `json:"roundNumber"`
	IsDamage     bool       `json:"isDamage"`
	FromReaction Reaction   `json:"fromReaction"`
	Reaction     Reaction   `json:"reaction"`
	Revived      bool       `json:"revived,omitempty"`
}

// SkillLogEntry records one skill invocation.
type SkillLogEntry struct {
	RoundNumber int  `json:"roundNumber"`
	Who         int  `json:"who"`
	CallerID    int  `json:"callerId"`
	SkillID     int  `json:"skillId"`
	Charged     bool `json:"charged,omitempty"`
	Plunging    bool `json:"plunging,omitempty"`
}

// MutationLogEntry is one applied mutation together with the round it was
// applied in.
type MutationLogEntry struct {
	RoundNumber int
	Mutation    Mutation
}

// GameState is an immutable snapshot of a match. Every change goes through
// Apply, which returns a new snapshot sharing the unchanged parts.
type GameState struct {
	Data        *Registry          `json:"-"`
	Config      GameConfig         `json:"config"`
	Random      uint64             `json:"random"`
	NextID      int                `json:"nextId"`
	Phase       Phase              `json:"phase"`
	RoundNumber int                `json:"roundNumber"`
	CurrentTurn int                `json:"currentTurn"`
	Winner      int                `json:"winner"`
	Players     [2]*PlayerState    `json:"players"`
	SkillLog    []SkillLogEntry    `json:"skillLog"`
	DamageLog   []DamageInfo       `json:"damageLog"`
	MutationLog []MutationLogEntry `json:"-"`
}

// NewGameState returns the initial state of a match: no characters, no
// cards, phase InitHands, round 0.
func NewGameState(data *Registry, cfg GameConfig) *GameState {
	seed := uint64(cfg.RandomSeed)
	if seed == 0 {
		seed = 1
	}
	return &GameState{
		Data:    data,
		Config:  cfg,
		Random:  seed,
		NextID:  1,
		Phase:   PhaseInitHands,
		Winner:  NoWinner,
		Players: [2]*PlayerState{{Who: 0}, {Who: 1}},
	}
}

func (s *GameState) Opponent(who int) int {
	return 1 - who
}

// Located describes where an id currently lives.
type Located struct {
	ID        int
	Area      EntityArea
	Character *CharacterState
	Entity    *EntityState
}

// IsCharacter reports whether the located state is a character.
func (l Located) IsCharacter() bool {
	return l.Character != nil && l.Entity == nil
}

// Variables returns the variables of whichever state is located.
func (l Located) Variables() Vars {
	if l.Entity != nil {
		return l.Entity.Variables
	}
	if l.Character != nil {
		return l.Character.Variables
	}
	return nil
}

// Locate finds a live character or entity by id. For an attached entity,
// Character is the owning character.
func (s *GameState) Locate(id int) (Located, bool) {
	for who, p := range s.Players {
		for _, ch := range p.Characters {
			area := EntityArea{Type: AreaCharacters, Who: who, CharacterID: ch.ID}
			if ch.ID == id {
				return Located{ID: id, Area: area, Character: ch}, true
			}
			for _, e := range ch.Entities {
				if e.ID == id {
					return Located{ID: id, Area: area, Character: ch, Entity: e}, true
				}
			}
		}
		for _, t := range []AreaType{AreaCombatStatuses, AreaSummons, AreaSupports} {
			for _, e := range p.area(t) {
				if e.ID == id {
					return Located{ID: id, Area: EntityArea{Type: t, Who: who}, Entity: e}, true
				}
			}
		}
	}
	return Located{}, false
}

// Character returns the live character with the given id.
func (s *GameState) Character(id int) (*CharacterState, int, bool) {
	for who, p := range s.Players {
		for _, ch := range p.Characters {
			if ch.ID == id {
				return ch, who, true
			}
		}
	}
	return nil, 0, false
}

// FindCard returns a card in hands or piles.
func (s *GameState) FindCard(id int) (*CardState, int, CardArea, bool) {
	for who, p := range s.Players {
		for _, a := range []CardArea{CardAreaHands, CardAreaPiles} {
			for _, c := range p.cards(a) {
				if c.ID == id {
					return c, who, a, true
				}
			}
		}
	}
	return nil, 0, 0, false
}

// EntitiesAt returns the entities in an area. For a character area the
// character itself is not included.
func (s *GameState) EntitiesAt(area EntityArea) []*EntityState {
	p := s.Players[area.Who]
	if area.Type == AreaCharacters {
		for _, ch := range p.Characters {
			if ch.ID == area.CharacterID {
				return ch.Entities
			}
		}
		return nil
	}
	return p.area(area.Type)
}

// AllEntities returns every live character and entity in scan order:
// players starting from the current turn; for each player the characters
// starting from the active one, each followed by its attached entities; then
// combat statuses, summons and supports.
func (s *GameState) AllEntities() []Located {
	var out []Located
	for i := 0; i < 2; i++ {
		who := (s.CurrentTurn + i) % 2
		p := s.Players[who]
		for _, ch := range rotateFromActive(p) {
			area := EntityArea{Type: AreaCharacters, Who: who, CharacterID: ch.ID}
			out = append(out, Located{ID: ch.ID, Area: area, Character: ch})
			for _, e := range ch.Entities {
				out = append(out, Located{ID: e.ID, Area: area, Character: ch, Entity: e})
			}
		}
		for _, t := range []AreaType{AreaCombatStatuses, AreaSummons, AreaSupports} {
			for _, e := range p.area(t) {
				out = append(out, Located{ID: e.ID, Area: EntityArea{Type: t, Who: who}, Entity: e})
			}
		}
	}
	return out
}

// rotateFromActive returns the characters starting from the active one.
func rotateFromActive(p *PlayerState) []*CharacterState {
	idx := slices.IndexFunc(p.Characters, func(ch *CharacterState) bool {
		return ch.ID == p.ActiveCharacterID
	})
	if idx <= 0 {
		return p.Characters
	}
	out := make([]*CharacterState, 0, len(p.Characters))
	out = append(out, p.Characters[idx:]...)
	return append(out, p.Characters[:idx]...)
}

// --- copy-on-write helpers ---

func (s *GameState) clone() *GameState {
	c := *s
	return &c
}

func (p *PlayerState) clone() *PlayerState {
	c := *p
	return &c
}

func (c *CharacterState) clone() *CharacterState {
	cp := *c
	return &cp
}

// appendClipped appends without writing into a backing array that an older
// snapshot may share.
func appendClipped[T any](s []T, v ...T) []T {
	return append(slices.Clip(s), v...)
}
