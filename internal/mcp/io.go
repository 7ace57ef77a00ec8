package mcp

import (
	"context"
	"slices"
	"sync"

	"github.com/peterkuimelis/gitcg/internal/game"
	"github.com/peterkuimelis/gitcg/internal/log"
)

// DecisionType identifies what kind of decision the engine is waiting for.
type DecisionType string

const (
	DecisionChooseActive DecisionType = "choose_active"
	DecisionReroll       DecisionType = "reroll"
	DecisionSwitchHands  DecisionType = "switch_hands"
	DecisionChooseAction DecisionType = "choose_action"
	DecisionGameOver     DecisionType = "game_over"
)

// PendingDecision is a decision the engine is blocked on.
type PendingDecision struct {
	Type       DecisionType    `json:"type"`
	Who        int             `json:"who"`
	Candidates []int           `json:"candidates,omitempty"`
	Dice       []game.DiceType `json:"dice,omitempty"`
	Hands      []int           `json:"hands,omitempty"`
	Actions    []game.Action   `json:"actions,omitempty"`
}

// MCPIO implements game.PlayerIO by publishing each decision on the session
// and blocking until a tool call answers it.
type MCPIO struct {
	who        int
	pendingCh  chan *PendingDecision
	responseCh chan any

	mu     sync.Mutex
	events []log.GameEvent
	state  *game.ExposedState
}

// NewMCPIO creates the seat who.
func NewMCPIO(who int) *MCPIO {
	return &MCPIO{
		who:        who,
		pendingCh:  make(chan *PendingDecision, 1),
		responseCh: make(chan any),
	}
}

func (c *MCPIO) Notify(_ context.Context, n game.Notification) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, n.Events...)
	st := n.State
	c.state = &st
	return nil
}

// decide publishes p and waits for its answer.
func (c *MCPIO) decide(ctx context.Context, p *PendingDecision) (any, error) {
	p.Who = c.who
	select {
	case c.pendingCh <- p:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	select {
	case resp := <-c.responseCh:
		return resp, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (c *MCPIO) ChooseActive(ctx context.Context, req game.ChooseActiveRequest) (int, error) {
	resp, err := c.decide(ctx, &PendingDecision{Type: DecisionChooseActive, Candidates: slices.Clone(req.Candidates)})
	if err != nil {
		return 0, err
	}
	return resp.(int), nil
}

func (c *MCPIO) RerollDice(ctx context.Context, req game.RerollRequest) (game.RerollResponse, error) {
	resp, err := c.decide(ctx, &PendingDecision{Type: DecisionReroll, Dice: slices.Clone(req.Dice)})
	if err != nil {
		return game.RerollResponse{}, err
	}
	return resp.(game.RerollResponse), nil
}

func (c *MCPIO) SwitchHands(ctx context.Context, req game.SwitchHandsRequest) (game.SwitchHandsResponse, error) {
	resp, err := c.decide(ctx, &PendingDecision{Type: DecisionSwitchHands, Hands: slices.Clone(req.Hands)})
	if err != nil {
		return game.SwitchHandsResponse{}, err
	}
	return resp.(game.SwitchHandsResponse), nil
}

func (c *MCPIO) Action(ctx context.Context, req game.ActionRequest) (game.ActionResponse, error) {
	resp, err := c.decide(ctx, &PendingDecision{
		Type:    DecisionChooseAction,
		Actions: slices.Clone(req.Candidates),
		Dice:    slices.Clone(req.Dice),
	})
	if err != nil {
		return game.ActionResponse{}, err
	}
	return resp.(game.ActionResponse), nil
}

// drainEvents returns the events gathered since the last call.
func (c *MCPIO) drainEvents() []log.GameEvent {
	c.mu.Lock()
	defer c.mu.Unlock()
	events := c.events
	c.events = nil
	return events
}

// lastState returns the latest projection this seat was shown.
func (c *MCPIO) lastState() *game.ExposedState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}
