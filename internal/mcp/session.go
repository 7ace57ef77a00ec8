package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"sync"

	"github.com/peterkuimelis/gitcg/internal/game"
	"github.com/peterkuimelis/gitcg/internal/log"
	"github.com/peterkuimelis/gitcg/internal/match"
	gitcgnet "github.com/peterkuimelis/gitcg/internal/net"
)

// ToolResponse is the JSON envelope returned by all MCP tools.
type ToolResponse struct {
	Events   []log.GameEvent    `json:"events"`
	State    *game.ExposedState `json:"state,omitempty"`
	Pending  *PendingDecision   `json:"pending,omitempty"`
	GameOver bool               `json:"game_over"`
	Winner   int                `json:"winner"`
	Result   string             `json:"result,omitempty"`
	MatchID  string             `json:"match_id,omitempty"`
	Port     string             `json:"port,omitempty"`
}

// GameSession holds the state of a single match driven over MCP.
type GameSession struct {
	match  *match.Match
	ai     *MCPIO
	aiSeat int
	human  *gitcgnet.NetworkIO
	logger *slog.Logger

	cancel  context.CancelFunc
	closers []io.Closer
	done    chan struct{}

	mu      sync.Mutex
	current *PendingDecision
	over    bool
	result  match.Result
}

// startSession runs m in the background with the AI on aiSeat.
func startSession(m *match.Match, ai *MCPIO, aiSeat int, human *gitcgnet.NetworkIO, logger *slog.Logger, closers ...io.Closer) *GameSession {
	ctx, cancel := context.WithCancel(context.Background())
	s := &GameSession{
		match:   m,
		ai:      ai,
		aiSeat:  aiSeat,
		human:   human,
		logger:  logger,
		cancel:  cancel,
		closers: closers,
		done:    make(chan struct{}),
	}
	go s.run(ctx)
	return s
}

func (s *GameSession) run(ctx context.Context) {
	res, err := s.match.Run(ctx)
	if err != nil {
		s.logger.Warn("mcp match ended with error", "match_id", s.match.ID, "error", err)
	}
	if s.human != nil {
		if err := s.human.SendGameOver(ctx, res.ID.String(), res.Winner, res.Reason); err != nil {
			s.logger.Warn("human missed game over", "error", err)
		}
	}
	for _, c := range s.closers {
		_ = c.Close()
	}
	s.mu.Lock()
	s.over = true
	s.result = res
	s.current = nil
	s.mu.Unlock()
	close(s.done)
}

// Close stops the match if it is still running.
func (s *GameSession) Close() {
	s.cancel()
	<-s.done
}

// Over reports whether the match has ended.
func (s *GameSession) Over() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.over
}

// Pending returns the decision the AI owes, if any.
func (s *GameSession) Pending() *PendingDecision {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// waitForPending blocks until the AI has a decision to make or the match
// ends, then reports everything that happened meanwhile.
func (s *GameSession) waitForPending(ctx context.Context) (*ToolResponse, error) {
	select {
	case p := <-s.ai.pendingCh:
		s.mu.Lock()
		s.current = p
		s.mu.Unlock()
	case <-s.done:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return s.snapshot(), nil
}

// answer hands resp to the engine and waits for the next decision.
func (s *GameSession) answer(ctx context.Context, resp any) (*ToolResponse, error) {
	s.mu.Lock()
	s.current = nil
	s.mu.Unlock()
	select {
	case s.ai.responseCh <- resp:
	case <-s.done:
		return s.snapshot(), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return s.waitForPending(ctx)
}

// giveUp concedes the match and waits for it to end. Decisions asked
// before the engine notices are answered with defaults.
func (s *GameSession) giveUp(ctx context.Context) (*ToolResponse, error) {
	s.match.Game.GiveUp(s.aiSeat)
	p := s.Pending()
	for {
		var (
			resp *ToolResponse
			err  error
		)
		if p == nil {
			resp, err = s.waitForPending(ctx)
		} else {
			resp, err = s.answer(ctx, defaultAnswer(p))
		}
		if err != nil {
			return nil, err
		}
		if resp.GameOver {
			return resp, nil
		}
		p = resp.Pending
	}
}

// snapshot builds a ToolResponse from the current session state. Events are
// drained.
func (s *GameSession) snapshot() *ToolResponse {
	resp := &ToolResponse{
		Events:  s.ai.drainEvents(),
		State:   s.ai.lastState(),
		MatchID: s.match.ID.String(),
		Winner:  game.NoWinner,
	}
	if resp.Events == nil {
		resp.Events = []log.GameEvent{}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.over {
		resp.GameOver = true
		resp.Winner = s.result.Winner
		resp.Result = s.result.Reason
		return resp
	}
	resp.Pending = s.current
	return resp
}

// defaultAnswer is the response that changes nothing: keep dice and hand,
// take the first candidate, or declare end.
func defaultAnswer(p *PendingDecision) any {
	switch p.Type {
	case DecisionChooseActive:
		return p.Candidates[0]
	case DecisionReroll:
		return game.RerollResponse{}
	case DecisionSwitchHands:
		return game.SwitchHandsResponse{}
	default:
		idx := slices.IndexFunc(p.Actions, func(a game.Action) bool { return a.Type == game.ActionDeclareEnd })
		return game.ActionResponse{ChosenIndex: max(idx, 0)}
	}
}

// respondJSON marshals a ToolResponse to a JSON string.
func respondJSON(resp *ToolResponse) string {
	data, err := json.Marshal(resp)
	if err != nil {
		return fmt.Sprintf(`{"error": "marshal error: %v"}`, err)
	}
	return string(data)
}
