package web

import (
	"github.com/peterkuimelis/gitcg/internal/content"
)

// DeckInfo is the JSON representation of a deck for the /api/decks endpoint.
type DeckInfo struct {
	Number     int      `json:"number"`
	Name       string   `json:"name"`
	Characters []string `json:"characters"`
	Cards      []string `json:"cards"`
	CardCount  int      `json:"cardCount"`
}

func deckInfos(df content.DeckFile) []DeckInfo {
	decks := make([]DeckInfo, 0, len(df.Decks))
	for i, d := range df.Decks {
		di := DeckInfo{
			Number:     i + 1,
			Name:       d.Name,
			Characters: d.Characters,
		}
		// Unique card names for display
		seen := make(map[string]bool)
		for _, c := range d.Cards {
			count := max(c.Count, 1)
			di.CardCount += count
			if !seen[c.Name] {
				di.Cards = append(di.Cards, c.Name)
				seen[c.Name] = true
			}
		}
		decks = append(decks, di)
	}
	return decks
}
