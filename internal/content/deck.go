package content

import (
	_ "embed"
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/peterkuimelis/gitcg/internal/game"
)

// DefaultDecks is the deck file used when no path is configured.
//
//go:embed decks.yaml
var DefaultDecks []byte

// DeckFile represents the top-level YAML structure.
type DeckFile struct {
	Decks []DeckEntry `yaml:"decks"`
}

// DeckEntry is one named deck: three characters by name and the action
// cards with their counts.
type DeckEntry struct {
	Name       string      `yaml:"name"`
	Characters []string    `yaml:"characters"`
	Cards      []CardEntry `yaml:"cards"`
}

// CardEntry names a card either by definition id or by name.
type CardEntry struct {
	ID    int    `yaml:"id,omitempty"`
	Name  string `yaml:"name,omitempty"`
	Count int    `yaml:"count"`
}

// ParseDeckFile decodes a deck file.
func ParseDeckFile(data []byte) (DeckFile, error) {
	var df DeckFile
	if err := yaml.Unmarshal(data, &df); err != nil {
		return DeckFile{}, fmt.Errorf("parse deck YAML: %w", err)
	}
	return df, nil
}

// ReadDeckFile reads and decodes a deck file. An empty path yields the
// embedded default decks.
func ReadDeckFile(path string) (DeckFile, error) {
	if path == "" {
		return ParseDeckFile(DefaultDecks)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return DeckFile{}, err
	}
	return ParseDeckFile(data)
}

// DeckByNumber returns the Nth deck (1-indexed) of the file resolved against
// r.
func DeckByNumber(df DeckFile, r *game.Registry, n int) (string, game.Deck, error) {
	if n < 1 || n > len(df.Decks) {
		return "", game.Deck{}, fmt.Errorf("deck %d not found (have %d decks)", n, len(df.Decks))
	}
	entry := df.Decks[n-1]
	deck, err := LoadDeck(entry, r)
	if err != nil {
		return "", game.Deck{}, err
	}
	return entry.Name, deck, nil
}

// LoadDeck resolves names to definition ids. Talent cards are rejected when
// the deck lacks their character.
func LoadDeck(entry DeckEntry, r *game.Registry) (game.Deck, error) {
	var deck game.Deck
	for _, name := range entry.Characters {
		id, ok := r.IDByName(name)
		if !ok {
			return game.Deck{}, fmt.Errorf("%w: deck %q: unknown character %q", game.ErrData, entry.Name, name)
		}
		if _, err := r.Character(id); err != nil {
			return game.Deck{}, fmt.Errorf("deck %q: %w", entry.Name, err)
		}
		deck.Characters = append(deck.Characters, id)
	}
	for _, c := range entry.Cards {
		id := c.ID
		if id == 0 {
			var ok bool
			if id, ok = r.IDByName(c.Name); !ok {
				return game.Deck{}, fmt.Errorf("%w: deck %q: unknown card %q", game.ErrData, entry.Name, c.Name)
			}
		}
		def, err := r.Card(id)
		if err != nil {
			return game.Deck{}, fmt.Errorf("deck %q: %w", entry.Name, err)
		}
		if req := def.DeckRequirement.Character; req != 0 && !slices.Contains(deck.Characters, req) {
			return game.Deck{}, fmt.Errorf("%w: deck %q: %s needs character %d", game.ErrData, entry.Name, def.Name, req)
		}
		for range c.Count {
			deck.Cards = append(deck.Cards, id)
		}
	}
	return deck, nil
}

// LoadRules reads a YAML rules file over the default limits. Keys left out
// keep their default.
func LoadRules(path string) (game.GameConfig, error) {
	cfg := game.DefaultGameConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse rules YAML: %w", err)
	}
	return cfg, nil
}
