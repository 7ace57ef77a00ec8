package game

import (
	"context"

	"github.com/peterkuimelis/gitcg/internal/log"
)

// PlayerIO is the boundary between the engine and one seat. Network, MCP and
// scripted players all implement it. Every call may block until the player
// answers or ctx is done.
type PlayerIO interface {
	// Notify delivers the viewer's projection of the state, the mutations
	// applied since the previous notification, and the log lines produced
	// meanwhile. No answer is expected.
	Notify(ctx context.Context, n Notification) error

	// ChooseActive asks for one of req.Candidates to become active.
	ChooseActive(ctx context.Context, req ChooseActiveRequest) (int, error)

	// RerollDice asks which dice (by index into req.Dice) to reroll.
	RerollDice(ctx context.Context, req RerollRequest) (RerollResponse, error)

	// SwitchHands asks which hand cards to put back into the pile.
	SwitchHands(ctx context.Context, req SwitchHandsRequest) (SwitchHandsResponse, error)

	// Action asks for one of req.Candidates and the dice paid for it.
	Action(ctx context.Context, req ActionRequest) (ActionResponse, error)
}

// Notification is pushed to a player at every I/O point.
type Notification struct {
	Who       int               `json:"who"`
	State     ExposedState      `json:"state"`
	Mutations []ExposedMutation `json:"mutations"`
	Events    []log.GameEvent   `json:"events,omitempty"`
}

type ChooseActiveRequest struct {
	Who        int   `json:"who"`
	Candidates []int `json:"candidates"`
}

type RerollRequest struct {
	Who  int        `json:"who"`
	Dice []DiceType `json:"dice"`
}

type RerollResponse struct {
	Indexes []int `json:"indexes"`
}

type SwitchHandsRequest struct {
	Who   int   `json:"who"`
	Hands []int `json:"hands"`
}

// SwitchHandsResponse lists card ids to return to the pile.
type SwitchHandsResponse struct {
	RemovedHands []int `json:"removedHands"`
}

type ActionRequest struct {
	Who        int        `json:"who"`
	Candidates []Action   `json:"candidates"`
	Dice       []DiceType `json:"dice"`
}

// ActionResponse picks a candidate by index. Cost lists the dice paid; it
// must satisfy the candidate's requirement exactly and be taken from the
// player's pool.
type ActionResponse struct {
	ChosenIndex int        `json:"chosenIndex"`
	Cost        []DiceType `json:"cost"`
}
