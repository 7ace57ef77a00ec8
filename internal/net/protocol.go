package net

import (
	"encoding/json"

	"github.com/peterkuimelis/gitcg/internal/game"
	"github.com/peterkuimelis/gitcg/internal/log"
)

// Messages are JSON objects, one per line.

// Server → client message types.
const (
	MsgNotify       = "notify"
	MsgChooseActive = "choose_active"
	MsgRerollDice   = "reroll_dice"
	MsgSwitchHands  = "switch_hands"
	MsgAction       = "action"
	MsgGameOver     = "game_over"
)

// Client → server message types.
const (
	MsgJoin   = "join"
	MsgActive = "active"
	MsgReroll = "reroll"
	MsgHands  = "hands"
	MsgChoose = "choose"
	MsgGiveUp = "give_up"
)

// ServerMessage is the envelope for all server-to-client messages.
type ServerMessage struct {
	Type    string `json:"type"`
	Who     int    `json:"who"`
	MatchID string `json:"matchId,omitempty"`

	// For "notify"
	State     *game.ExposedState `json:"state,omitempty"`
	Mutations []MutationView     `json:"mutations,omitempty"`
	Events    []log.GameEvent    `json:"events,omitempty"`

	// For "choose_active"
	Candidates []int `json:"candidates,omitempty"`

	// For "reroll_dice" and "action"
	Dice []game.DiceType `json:"dice,omitempty"`

	// For "switch_hands"
	Hands []int `json:"hands,omitempty"`

	// For "action"
	Actions []game.Action `json:"actions,omitempty"`

	// For "game_over"
	Winner int    `json:"winner"`
	Result string `json:"result,omitempty"`
}

// MutationView is an exposed mutation with its payload left encoded, so
// clients can decode only the kinds they care about.
type MutationView struct {
	Type    game.MutationKind `json:"type"`
	Payload json.RawMessage   `json:"payload"`
}

// ClientMessage is the envelope for all client-to-server messages.
type ClientMessage struct {
	Type string `json:"type"`

	// For "join" (initial handshake)
	DeckNumber int `json:"deckNumber,omitempty"`

	// For "active"
	CharacterID int `json:"characterId,omitempty"`

	// For "reroll"
	Indexes []int `json:"indexes,omitempty"`

	// For "hands"
	RemovedHands []int `json:"removedHands,omitempty"`

	// For "choose"
	ChosenIndex int             `json:"chosenIndex,omitempty"`
	Cost        []game.DiceType `json:"cost,omitempty"`
}

// notifyMessage turns a notification into its wire form.
func notifyMessage(n game.Notification) (ServerMessage, error) {
	msg := ServerMessage{Type: MsgNotify, Who: n.Who, State: &n.State, Events: n.Events}
	for _, m := range n.Mutations {
		payload, err := json.Marshal(m.Payload)
		if err != nil {
			return ServerMessage{}, err
		}
		msg.Mutations = append(msg.Mutations, MutationView{Type: m.Type, Payload: payload})
	}
	return msg, nil
}
