package game

import (
	"fmt"
	"maps"
	"slices"
)

// Registry holds the content definitions a match is played with. It is
// populated once before the match starts and read-only afterwards.
type Registry struct {
	characters map[int]*CharacterDefinition
	entities   map[int]*EntityDefinition
	cards      map[int]*CardDefinition
	names      map[string]int
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		characters: make(map[int]*CharacterDefinition),
		entities:   make(map[int]*EntityDefinition),
		cards:      make(map[int]*CardDefinition),
		names:      make(map[string]int),
	}
}

func (r *Registry) AddCharacter(def *CharacterDefinition) {
	r.characters[def.ID] = def
	if def.Name != "" {
		r.names[def.Name] = def.ID
	}
}

func (r *Registry) AddEntity(def *EntityDefinition) {
	r.entities[def.ID] = def
}

func (r *Registry) AddCard(def *CardDefinition) {
	r.cards[def.ID] = def
	if def.Name != "" {
		r.names[def.Name] = def.ID
	}
}

// Character looks up a character definition by id.
func (r *Registry) Character(id int) (*CharacterDefinition, error) {
	def, ok := r.characters[id]
	if !ok {
		return nil, fmt.Errorf("%w: unknown character definition %d", ErrData, id)
	}
	return def, nil
}

// Entity looks up an entity definition by id.
func (r *Registry) Entity(id int) (*EntityDefinition, error) {
	def, ok := r.entities[id]
	if !ok {
		return nil, fmt.Errorf("%w: unknown entity definition %d", ErrData, id)
	}
	return def, nil
}

// Card looks up a card definition by id.
func (r *Registry) Card(id int) (*CardDefinition, error) {
	def, ok := r.cards[id]
	if !ok {
		return nil, fmt.Errorf("%w: unknown card definition %d", ErrData, id)
	}
	return def, nil
}

// IDByName resolves a character or card name to its definition id.
func (r *Registry) IDByName(name string) (int, bool) {
	id, ok := r.names[name]
	return id, ok
}

// NumCards returns the number of registered card definitions.
func (r *Registry) NumCards() int {
	return len(r.cards)
}

// Cards returns every card definition ordered by id.
func (r *Registry) Cards() []*CardDefinition {
	out := make([]*CardDefinition, 0, len(r.cards))
	for _, id := range slices.Sorted(maps.Keys(r.cards)) {
		out = append(out, r.cards[id])
	}
	return out
}

// Characters returns every character definition ordered by id.
func (r *Registry) Characters() []*CharacterDefinition {
	out := make([]*CharacterDefinition, 0, len(r.characters))
	for _, id := range slices.Sorted(maps.Keys(r.characters)) {
		out = append(out, r.characters[id])
	}
	return out
}

// AttachRegistry re-links the definition references of a decoded state to
// r's definitions. The state must not be shared yet.
func (s *GameState) AttachRegistry(r *Registry) error {
	s.Data = r
	attachEntities := func(list []*EntityState) error {
		for _, e := range list {
			if e.Definition == nil {
				return fmt.Errorf("%w: entity %d has no definition", ErrData, e.ID)
			}
			def, err := r.Entity(e.Definition.ID)
			if err != nil {
				return err
			}
			e.Definition = def
		}
		return nil
	}
	for _, p := range s.Players {
		if p == nil {
			return fmt.Errorf("%w: missing player", ErrData)
		}
		for _, list := range [][]*CardState{p.InitialPiles, p.Piles, p.Hands} {
			for _, c := range list {
				if c.Definition == nil {
					return fmt.Errorf("%w: card %d has no definition", ErrData, c.ID)
				}
				def, err := r.Card(c.Definition.ID)
				if err != nil {
					return err
				}
				c.Definition = def
			}
		}
		for _, ch := range p.Characters {
			if ch.Definition == nil {
				return fmt.Errorf("%w: character %d has no definition", ErrData, ch.ID)
			}
			def, err := r.Character(ch.Definition.ID)
			if err != nil {
				return err
			}
			ch.Definition = def
			if err := attachEntities(ch.Entities); err != nil {
				return err
			}
		}
		for _, list := range [][]*EntityState{p.CombatStatuses, p.Summons, p.Supports} {
			if err := attachEntities(list); err != nil {
				return err
			}
		}
	}
	return nil
}
