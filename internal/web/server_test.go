package web

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/peterkuimelis/gitcg/internal/content"
	"github.com/peterkuimelis/gitcg/internal/game"
	"github.com/peterkuimelis/gitcg/internal/match"
	gitcgnet "github.com/peterkuimelis/gitcg/internal/net"
	"github.com/peterkuimelis/gitcg/internal/store"
)

func newTestServer(t *testing.T, st store.MatchStore) (*httptest.Server, *game.Registry) {
	t.Helper()
	df, err := content.ReadDeckFile("")
	require.NoError(t, err)
	reg := content.NewRegistry()
	ts := httptest.NewServer(NewServer(reg, df, st, nil).Handler())
	t.Cleanup(ts.Close)
	return ts, reg
}

func getJSON(t *testing.T, url string, v any) int {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusOK && v != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
	}
	return resp.StatusCode
}

func TestIndexIsServed(t *testing.T) {
	ts, _ := newTestServer(t, nil)

	resp, err := http.Get(ts.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")

	assert.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/static/app.js", nil))
	assert.Equal(t, http.StatusNotFound, getJSON(t, ts.URL+"/nope", nil))
}

func TestCatalogue(t *testing.T) {
	ts, reg := newTestServer(t, nil)

	var decks []DeckInfo
	require.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/api/decks", &decks))
	require.Len(t, decks, 3)
	assert.Equal(t, 1, decks[0].Number)
	assert.Len(t, decks[0].Characters, 3)
	assert.Equal(t, 30, decks[0].CardCount)

	var cards []CardInfo
	require.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/api/cards", &cards))
	assert.Len(t, cards, len(reg.Cards()))
	for i := 1; i < len(cards); i++ {
		assert.Less(t, cards[i-1].ID, cards[i].ID)
	}

	var chars []CharacterInfo
	require.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/api/characters", &chars))
	require.Len(t, chars, len(reg.Characters()))
	for _, c := range chars {
		assert.NotEmpty(t, c.Name)
		assert.NotEmpty(t, c.Skills, c.Name)
	}
}

func TestMatchHistory(t *testing.T) {
	st, err := store.OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	ts, reg := newTestServer(t, st)

	var empty []store.Match
	require.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/api/matches", &empty))
	assert.Empty(t, empty)

	df, err := content.ReadDeckFile("")
	require.NoError(t, err)
	_, d0, err := content.DeckByNumber(df, reg, 1)
	require.NoError(t, err)
	_, d1, err := content.DeckByNumber(df, reg, 2)
	require.NoError(t, err)
	rules := game.DefaultGameConfig()
	rules.RandomSeed = 3
	rules.MaxRounds = 2
	runner := &match.Runner{Registry: reg, Rules: rules, Store: st}
	skill := game.ScriptedAction{Type: game.ActionUseSkill}
	m, err := runner.Start([2]game.Deck{d0, d1}, game.NewScriptedIO(skill, skill), game.NewScriptedIO(skill, skill))
	require.NoError(t, err)
	res, err := m.Run(context.Background())
	require.NoError(t, err)

	var list []store.Match
	require.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/api/matches?limit=5", &list))
	require.Len(t, list, 1)
	assert.Equal(t, m.ID, list[0].ID)
	assert.Empty(t, list[0].Log)

	var detail MatchDetail
	require.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/api/matches/"+m.ID.String(), &detail))
	assert.Equal(t, res.Winner, detail.Winner)
	assert.Equal(t, int64(3), detail.Seed)
	assert.NotEmpty(t, detail.Events)
	assert.Empty(t, detail.Log)

	assert.Equal(t, http.StatusNotFound, getJSON(t, ts.URL+"/api/matches/"+uuid.NewString(), nil))
	assert.Equal(t, http.StatusBadRequest, getJSON(t, ts.URL+"/api/matches/not-a-uuid", nil))
	assert.Equal(t, http.StatusBadRequest, getJSON(t, ts.URL+"/api/matches?limit=0", nil))
}

func TestWebSocketProxy(t *testing.T) {
	ts, _ := newTestServer(t, nil)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = ln.Close() })

	gameErr := make(chan error, 1)
	got := make(chan gitcgnet.ClientMessage, 2)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			gameErr <- err
			return
		}
		defer conn.Close()
		dec := json.NewDecoder(conn)
		enc := json.NewEncoder(conn)
		var join gitcgnet.ClientMessage
		if err := dec.Decode(&join); err != nil {
			gameErr <- err
			return
		}
		got <- join
		if err := enc.Encode(gitcgnet.ServerMessage{Type: gitcgnet.MsgChooseActive, Candidates: []int{4, 5}}); err != nil {
			gameErr <- err
			return
		}
		var active gitcgnet.ClientMessage
		if err := dec.Decode(&active); err != nil {
			gameErr <- err
			return
		}
		got <- active
		gameErr <- enc.Encode(gitcgnet.ServerMessage{Type: gitcgnet.MsgGameOver, Winner: 1, Result: "P1 wins!"})
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	ws, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(ts.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	defer ws.CloseNow()

	connect, _ := json.Marshal(map[string]any{"type": "connect", "addr": ln.Addr().String(), "deckNumber": 2})
	require.NoError(t, ws.Write(ctx, websocket.MessageText, connect))

	join := <-got
	assert.Equal(t, gitcgnet.MsgJoin, join.Type)
	assert.Equal(t, 2, join.DeckNumber)

	var msg gitcgnet.ServerMessage
	_, data, err := ws.Read(ctx)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &msg))
	assert.Equal(t, gitcgnet.MsgChooseActive, msg.Type)
	assert.Equal(t, []int{4, 5}, msg.Candidates)

	reply, _ := json.Marshal(gitcgnet.ClientMessage{Type: gitcgnet.MsgActive, CharacterID: 5})
	require.NoError(t, ws.Write(ctx, websocket.MessageText, reply))
	active := <-got
	assert.Equal(t, 5, active.CharacterID)

	_, data, err = ws.Read(ctx)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &msg))
	assert.Equal(t, gitcgnet.MsgGameOver, msg.Type)
	assert.Equal(t, 1, msg.Winner)
	require.NoError(t, <-gameErr)

	_, _, err = ws.Read(ctx)
	assert.Equal(t, websocket.StatusNormalClosure, websocket.CloseStatus(err))
}

func TestWebSocketProxyReportsDialFailure(t *testing.T) {
	ts, _ := newTestServer(t, nil)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	ws, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(ts.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	defer ws.CloseNow()

	connect, _ := json.Marshal(map[string]any{"type": "connect", "addr": addr, "deckNumber": 1})
	require.NoError(t, ws.Write(ctx, websocket.MessageText, connect))

	_, data, err := ws.Read(ctx)
	require.NoError(t, err)
	var msg map[string]string
	require.NoError(t, json.Unmarshal(data, &msg))
	assert.Equal(t, "error", msg["type"])
	assert.Contains(t, msg["result"], addr)
}
