package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/peterkuimelis/gitcg/internal/content"
	"github.com/peterkuimelis/gitcg/internal/game"
	"github.com/peterkuimelis/gitcg/internal/match"
)

func newTools(t *testing.T) *Tools {
	t.Helper()
	df, err := content.ReadDeckFile("")
	require.NoError(t, err)
	rules := game.DefaultGameConfig()
	rules.RandomSeed = 11
	rules.MaxRounds = 2
	tools := &Tools{Runner: &match.Runner{Registry: content.NewRegistry(), Rules: rules}, Decks: df}
	t.Cleanup(func() {
		tools.mu.Lock()
		sess := tools.session
		tools.mu.Unlock()
		if sess != nil {
			sess.Close()
		}
	})
	return tools
}

func call(args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

type handler func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error)

// invoke runs h, checks the result is not an error and parses its JSON
// payload.
func invoke(t *testing.T, h handler, args map[string]any) *ToolResponse {
	t.Helper()
	res, err := h(context.Background(), call(args))
	require.NoError(t, err)
	require.NotNil(t, res)
	require.NotEmpty(t, res.Content)
	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok)
	require.False(t, res.IsError, text.Text)
	var resp ToolResponse
	require.NoError(t, json.Unmarshal([]byte(text.Text), &resp))
	return &resp
}

func TestPlayFullMatchAgainstBot(t *testing.T) {
	tools := newTools(t)

	resp := invoke(t, tools.handleNewGame, map[string]any{"deck": float64(1)})
	require.NotEmpty(t, resp.MatchID)

	for i := 0; !resp.GameOver; i++ {
		require.Less(t, i, 500, "match did not end")
		require.NotNil(t, resp.Pending)
		p := resp.Pending
		assert.Equal(t, 0, p.Who)
		switch p.Type {
		case DecisionSwitchHands:
			resp = invoke(t, tools.handleSwitchHands, map[string]any{"card_ids": ""})
		case DecisionChooseActive:
			resp = invoke(t, tools.handleChooseActive, map[string]any{"character_id": float64(p.Candidates[0])})
		case DecisionReroll:
			resp = invoke(t, tools.handleReroll, map[string]any{"indexes": ""})
		case DecisionChooseAction:
			idx := len(p.Actions) - 1
			for j, a := range p.Actions {
				if a.Type == game.ActionDeclareEnd {
					idx = j
				}
			}
			resp = invoke(t, tools.handleChooseAction, map[string]any{"index": float64(idx)})
		default:
			t.Fatalf("unexpected pending %q", p.Type)
		}
	}
	assert.NotEmpty(t, resp.Result)
	require.NotNil(t, resp.State)
	assert.Equal(t, 0, resp.State.Viewer)
}

func TestGiveUpHandsWinToOpponent(t *testing.T) {
	ctx := context.Background()
	tools := newTools(t)

	invoke(t, tools.handleNewGame, map[string]any{"deck": float64(2), "seat": float64(1)})
	resp := invoke(t, tools.handleGiveUp, nil)
	assert.True(t, resp.GameOver)
	assert.Equal(t, 0, resp.Winner)
	assert.Contains(t, resp.Result, "gave up")

	res, err := tools.handleGiveUp(ctx, call(nil))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestToolErrors(t *testing.T) {
	ctx := context.Background()
	tools := newTools(t)

	res, err := tools.handleGetState(ctx, call(nil))
	require.NoError(t, err)
	assert.True(t, res.IsError, "no game yet")

	res, err = tools.handleNewGame(ctx, call(map[string]any{"deck": float64(9)}))
	require.NoError(t, err)
	assert.True(t, res.IsError, "bad deck")

	res, err = tools.handleNewGame(ctx, call(map[string]any{"deck": float64(1), "opponent": "robot"}))
	require.NoError(t, err)
	assert.True(t, res.IsError, "bad opponent")

	resp := invoke(t, tools.handleNewGame, map[string]any{"deck": float64(1)})
	require.NotNil(t, resp.Pending)
	require.NotEqual(t, DecisionChooseAction, resp.Pending.Type)

	res, err = tools.handleChooseAction(ctx, call(map[string]any{"index": float64(0)}))
	require.NoError(t, err)
	assert.True(t, res.IsError, "wrong tool")

	res, err = tools.handleNewGame(ctx, call(map[string]any{"deck": float64(1)}))
	require.NoError(t, err)
	assert.True(t, res.IsError, "game already running")

	actions := invoke(t, tools.handleGetActions, nil)
	assert.Equal(t, resp.Pending.Type, actions.Pending.Type)
}

func TestParseInts(t *testing.T) {
	got, err := parseInts("3, 1 3")
	require.NoError(t, err)
	assert.Equal(t, []int{3, 1}, got)

	got, err = parseInts("  ")
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = parseInts("x")
	assert.Error(t, err)
}
