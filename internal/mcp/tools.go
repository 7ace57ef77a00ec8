// Package mcp lets an AI agent play a match through MCP tool calls, against
// the built-in bot or a human connected over TCP.
package mcp

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	stdnet "net"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/peterkuimelis/gitcg/internal/content"
	"github.com/peterkuimelis/gitcg/internal/game"
	"github.com/peterkuimelis/gitcg/internal/log"
	"github.com/peterkuimelis/gitcg/internal/match"
	gitcgnet "github.com/peterkuimelis/gitcg/internal/net"
)

// Opponent kinds accepted by new_game.
const (
	OpponentBot   = "bot"
	OpponentHuman = "human"
)

// Tools serves the game tools. One match runs at a time.
type Tools struct {
	Runner *match.Runner
	Decks  content.DeckFile
	// Port is where a human opponent connects with `gitcg-cli join`.
	Port   string
	Logger *slog.Logger

	mu      sync.Mutex
	session *GameSession
}

// Register adds all game tools to s.
func (t *Tools) Register(s *server.MCPServer) {
	s.AddTool(newGameTool(), t.handleNewGame)
	s.AddTool(getStateTool(), t.handleGetState)
	s.AddTool(getActionsTool(), t.handleGetActions)
	s.AddTool(chooseActionTool(), t.handleChooseAction)
	s.AddTool(chooseActiveTool(), t.handleChooseActive)
	s.AddTool(rerollTool(), t.handleReroll)
	s.AddTool(switchHandsTool(), t.handleSwitchHands)
	s.AddTool(giveUpTool(), t.handleGiveUp)
}

// --- Tool definitions ---

func newGameTool() mcp.Tool {
	return mcp.NewTool("new_game",
		mcp.WithDescription("Start a new match. Returns the initial state and the first pending decision. "+
			"With opponent 'human' the call blocks until a player runs `gitcg-cli join --addr localhost:<port>`."),
		mcp.WithNumber("deck", mcp.Required(), mcp.Description("Your deck number (1-indexed from the deck file)")),
		mcp.WithNumber("seat", mcp.Description("0 = acts first in round 1, 1 = second. Default 0")),
		mcp.WithString("opponent", mcp.Description("'bot' (default) or 'human'")),
		mcp.WithNumber("opponent_deck", mcp.Description("Deck number for the bot. Default 2")),
	)
}

func getStateTool() mcp.Tool {
	return mcp.NewTool("get_state",
		mcp.WithDescription("Get the current state as you see it, the events since the last call and the pending decision. Read-only."),
	)
}

func getActionsTool() mcp.Tool {
	return mcp.NewTool("get_actions",
		mcp.WithDescription("List the pending decision's options: action candidates with their dice costs, character candidates, dice or hand cards."),
	)
}

func chooseActionTool() mcp.Tool {
	return mcp.NewTool("choose_action",
		mcp.WithDescription("Take an action from the pending action list. Dice are paid automatically. Use when the pending type is 'choose_action'."),
		mcp.WithNumber("index", mcp.Required(), mcp.Description("0-based index into the actions list")),
	)
}

func chooseActiveTool() mcp.Tool {
	return mcp.NewTool("choose_active",
		mcp.WithDescription("Pick your active character. Use when the pending type is 'choose_active'."),
		mcp.WithNumber("character_id", mcp.Required(), mcp.Description("One of the candidate character ids")),
	)
}

func rerollTool() mcp.Tool {
	return mcp.NewTool("reroll",
		mcp.WithDescription("Reroll dice. Use when the pending type is 'reroll'."),
		mcp.WithString("indexes", mcp.Required(), mcp.Description("Space-separated 0-based dice indexes to reroll (e.g. '0 3'), or empty to keep all")),
	)
}

func switchHandsTool() mcp.Tool {
	return mcp.NewTool("switch_hands",
		mcp.WithDescription("Put starting hand cards back and draw replacements. Use when the pending type is 'switch_hands'."),
		mcp.WithString("card_ids", mcp.Required(), mcp.Description("Space-separated card ids from the hand, or empty to keep all")),
	)
}

func giveUpTool() mcp.Tool {
	return mcp.NewTool("give_up",
		mcp.WithDescription("Concede the current match. Your opponent wins."),
	)
}

// --- Tool handlers ---

func (t *Tools) logger() *slog.Logger {
	if t.Logger != nil {
		return t.Logger
	}
	return slog.Default()
}

// active returns the running session, or a tool error result.
func (t *Tools) active() (*GameSession, *mcp.CallToolResult) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.session == nil {
		return nil, mcp.NewToolResultError("No game is running. Use new_game first.")
	}
	return t.session, nil
}

// pending returns the session and its pending decision of type want.
func (t *Tools) pending(want DecisionType) (*GameSession, *PendingDecision, *mcp.CallToolResult) {
	sess, errResult := t.active()
	if errResult != nil {
		return nil, nil, errResult
	}
	p := sess.Pending()
	if p == nil {
		if sess.Over() {
			return nil, nil, mcp.NewToolResultError("The game is over. Use new_game to play again.")
		}
		return nil, nil, mcp.NewToolResultError("No pending decision. Waiting for the opponent.")
	}
	if p.Type != want {
		return nil, nil, mcp.NewToolResultErrorf("Wrong tool: pending decision is '%s', not '%s'.", p.Type, want)
	}
	return sess, p, nil
}

func (t *Tools) handleNewGame(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	t.mu.Lock()
	if t.session != nil && !t.session.Over() {
		t.mu.Unlock()
		return mcp.NewToolResultError("A game is already running. Use give_up to end it first."), nil
	}
	t.session = nil
	t.mu.Unlock()

	deck := request.GetInt("deck", 0)
	seat := request.GetInt("seat", 0)
	opponent := request.GetString("opponent", OpponentBot)
	opponentDeck := request.GetInt("opponent_deck", 2)
	if seat != 0 && seat != 1 {
		return mcp.NewToolResultError("seat must be 0 or 1"), nil
	}

	reg := t.Runner.Registry
	_, aiDeck, err := content.DeckByNumber(t.Decks, reg, deck)
	if err != nil {
		return mcp.NewToolResultErrorf("Bad deck: %v", err), nil
	}

	ai := NewMCPIO(seat)
	var (
		other   game.PlayerIO
		human   *gitcgnet.NetworkIO
		closers []io.Closer
	)
	switch opponent {
	case OpponentBot:
		other = botIO()
	case OpponentHuman:
		ln, err := stdnet.Listen("tcp", ":"+t.Port)
		if err != nil {
			return mcp.NewToolResultErrorf("Failed to listen on port %s: %v", t.Port, err), nil
		}
		conn, err := ln.Accept()
		if err != nil {
			ln.Close()
			return mcp.NewToolResultErrorf("Failed to accept: %v", err), nil
		}
		closers = append(closers, conn, ln)
		human = gitcgnet.NewNetworkIO(conn, 1-seat)
		join, err := human.Join(ctx)
		if err != nil {
			conn.Close()
			ln.Close()
			return mcp.NewToolResultErrorf("Failed to read join message: %v", err), nil
		}
		if join.DeckNumber != 0 {
			opponentDeck = join.DeckNumber
		}
		other = human
	default:
		return mcp.NewToolResultErrorf("Unknown opponent %q: use 'bot' or 'human'.", opponent), nil
	}
	closeAll := func() {
		for _, c := range closers {
			_ = c.Close()
		}
	}

	_, otherDeck, err := content.DeckByNumber(t.Decks, reg, opponentDeck)
	if err != nil {
		closeAll()
		return mcp.NewToolResultErrorf("Bad opponent deck: %v", err), nil
	}

	decks := [2]game.Deck{aiDeck, otherDeck}
	ios := [2]game.PlayerIO{ai, other}
	if seat == 1 {
		decks[0], decks[1] = decks[1], decks[0]
		ios[0], ios[1] = ios[1], ios[0]
	}
	m, err := t.Runner.Start(decks, ios[0], ios[1])
	if err != nil {
		closeAll()
		return mcp.NewToolResultErrorf("Failed to start game: %v", err), nil
	}
	if human != nil {
		human.OnGiveUp = m.Game.GiveUp
	}

	sess := startSession(m, ai, seat, human, t.logger(), closers...)
	t.mu.Lock()
	t.session = sess
	t.mu.Unlock()

	resp, err := sess.waitForPending(ctx)
	if err != nil {
		return mcp.NewToolResultErrorf("Error waiting for first decision: %v", err), nil
	}
	if opponent == OpponentHuman {
		resp.Port = t.Port
	}
	return mcp.NewToolResultText(respondJSON(resp)), nil
}

func (t *Tools) handleGetState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sess, errResult := t.active()
	if errResult != nil {
		return errResult, nil
	}
	return mcp.NewToolResultText(respondJSON(sess.snapshot())), nil
}

func (t *Tools) handleGetActions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sess, errResult := t.active()
	if errResult != nil {
		return errResult, nil
	}
	p := sess.Pending()
	if p == nil {
		return mcp.NewToolResultError("No pending decision."), nil
	}
	return mcp.NewToolResultText(respondJSON(&ToolResponse{
		Events:  []log.GameEvent{},
		Pending: p,
		Winner:  game.NoWinner,
	})), nil
}

func (t *Tools) handleChooseAction(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sess, p, errResult := t.pending(DecisionChooseAction)
	if errResult != nil {
		return errResult, nil
	}
	index := request.GetInt("index", -1)
	if index < 0 || index >= len(p.Actions) {
		return mcp.NewToolResultErrorf("Invalid index %d. Must be 0-%d.", index, len(p.Actions)-1), nil
	}
	cost, ok := gitcgnet.PayFor(p.Actions[index], p.Dice)
	if !ok {
		return mcp.NewToolResultErrorf("Not enough dice for %q.", p.Actions[index].Desc), nil
	}
	return t.reply(ctx, sess, game.ActionResponse{ChosenIndex: index, Cost: cost})
}

func (t *Tools) handleChooseActive(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sess, p, errResult := t.pending(DecisionChooseActive)
	if errResult != nil {
		return errResult, nil
	}
	id := request.GetInt("character_id", 0)
	if !slices.Contains(p.Candidates, id) {
		return mcp.NewToolResultErrorf("Character %d is not a candidate %v.", id, p.Candidates), nil
	}
	return t.reply(ctx, sess, id)
}

func (t *Tools) handleReroll(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sess, p, errResult := t.pending(DecisionReroll)
	if errResult != nil {
		return errResult, nil
	}
	indexes, err := parseInts(request.GetString("indexes", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	for _, idx := range indexes {
		if idx < 0 || idx >= len(p.Dice) {
			return mcp.NewToolResultErrorf("Index %d out of range. Must be 0-%d.", idx, len(p.Dice)-1), nil
		}
	}
	return t.reply(ctx, sess, game.RerollResponse{Indexes: indexes})
}

func (t *Tools) handleSwitchHands(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sess, p, errResult := t.pending(DecisionSwitchHands)
	if errResult != nil {
		return errResult, nil
	}
	ids, err := parseInts(request.GetString("card_ids", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	for _, id := range ids {
		if !slices.Contains(p.Hands, id) {
			return mcp.NewToolResultErrorf("Card %d is not in your hand %v.", id, p.Hands), nil
		}
	}
	return t.reply(ctx, sess, game.SwitchHandsResponse{RemovedHands: ids})
}

func (t *Tools) handleGiveUp(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sess, errResult := t.active()
	if errResult != nil {
		return errResult, nil
	}
	if sess.Over() {
		return mcp.NewToolResultError("The game is already over."), nil
	}
	resp, err := sess.giveUp(ctx)
	if err != nil {
		return mcp.NewToolResultErrorf("Error giving up: %v", err), nil
	}
	return mcp.NewToolResultText(respondJSON(resp)), nil
}

func (t *Tools) reply(ctx context.Context, sess *GameSession, answer any) (*mcp.CallToolResult, error) {
	resp, err := sess.answer(ctx, answer)
	if err != nil {
		return mcp.NewToolResultErrorf("Error waiting for next decision: %v", err), nil
	}
	return mcp.NewToolResultText(respondJSON(resp)), nil
}

// parseInts reads space- or comma-separated integers without duplicates.
func parseInts(s string) ([]int, error) {
	var out []int
	for _, p := range strings.FieldsFunc(s, func(r rune) bool { return r == ' ' || r == ',' }) {
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q", p)
		}
		if !slices.Contains(out, n) {
			out = append(out, n)
		}
	}
	return out, nil
}

// botIO is the built-in opponent: it uses its first affordable skill every
// turn and otherwise declares end.
func botIO() game.PlayerIO {
	queue := make([]game.ScriptedAction, 256)
	for i := range queue {
		queue[i] = game.ScriptedAction{Type: game.ActionUseSkill}
	}
	return game.NewScriptedIO(queue...)
}
