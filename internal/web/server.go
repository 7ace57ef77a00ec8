// Package web serves the browser UI: card and deck catalogues, saved match
// history, and a WebSocket proxy that lets a browser join a TCP match.
package web

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"

	"github.com/peterkuimelis/gitcg/internal/content"
	"github.com/peterkuimelis/gitcg/internal/game"
	"github.com/peterkuimelis/gitcg/internal/log"
	"github.com/peterkuimelis/gitcg/internal/match"
	gitcgnet "github.com/peterkuimelis/gitcg/internal/net"
	"github.com/peterkuimelis/gitcg/internal/store"
)

//go:embed static
var staticFiles embed.FS

const defaultMatchLimit = 20

// CardInfo is the JSON representation of a card for the /api/cards endpoint.
type CardInfo struct {
	ID   int            `json:"id"`
	Name string         `json:"name"`
	Type string         `json:"type"`
	Cost map[string]int `json:"cost,omitempty"`
	Tags []string       `json:"tags,omitempty"`
}

// SkillInfo describes one character skill.
type SkillInfo struct {
	ID   int            `json:"id"`
	Type string         `json:"type"`
	Cost map[string]int `json:"cost,omitempty"`
}

// CharacterInfo is the JSON representation of a character for /api/characters.
type CharacterInfo struct {
	ID     int         `json:"id"`
	Name   string      `json:"name"`
	Tags   []string    `json:"tags,omitempty"`
	Skills []SkillInfo `json:"skills"`
}

// MatchDetail is a saved match with its flattened event log.
type MatchDetail struct {
	store.Match
	Events []log.GameEvent `json:"events"`
}

// Server is the gitcg web UI server.
type Server struct {
	registry *game.Registry
	decks    content.DeckFile
	store    store.MatchStore
	logger   *slog.Logger
	mux      *http.ServeMux
}

// NewServer creates a new web server. A nil store serves an empty history.
func NewServer(reg *game.Registry, decks content.DeckFile, st store.MatchStore, logger *slog.Logger) *Server {
	if st == nil {
		st = store.Nop{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		registry: reg,
		decks:    decks,
		store:    st,
		logger:   logger,
		mux:      http.NewServeMux(),
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	staticFS, _ := fs.Sub(staticFiles, "static")

	s.mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		f, err := staticFS.Open("index.html")
		if err != nil {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		defer f.Close()
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = io.Copy(w, f)
	})
	s.mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))

	s.mux.HandleFunc("GET /api/cards", s.handleCards)
	s.mux.HandleFunc("GET /api/characters", s.handleCharacters)
	s.mux.HandleFunc("GET /api/decks", s.handleDecks)
	s.mux.HandleFunc("GET /api/matches", s.handleMatches)
	s.mux.HandleFunc("GET /api/matches/{id}", s.handleMatch)

	s.mux.HandleFunc("GET /ws", s.handleWebSocket)
}

// Handler exposes the routes, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func costView(req game.DiceRequirement) map[string]int {
	if len(req) == 0 {
		return nil
	}
	out := make(map[string]int, len(req))
	for t, n := range req {
		out[t.String()] = n
	}
	return out
}

func (s *Server) handleCards(w http.ResponseWriter, r *http.Request) {
	defs := s.registry.Cards()
	cards := make([]CardInfo, 0, len(defs))
	for _, d := range defs {
		cards = append(cards, CardInfo{
			ID:   d.ID,
			Name: d.Name,
			Type: d.Type.String(),
			Cost: costView(d.Cost),
			Tags: d.Tags,
		})
	}
	writeJSON(w, http.StatusOK, cards)
}

func (s *Server) handleCharacters(w http.ResponseWriter, r *http.Request) {
	defs := s.registry.Characters()
	chars := make([]CharacterInfo, 0, len(defs))
	for _, d := range defs {
		ci := CharacterInfo{ID: d.ID, Name: d.Name, Tags: d.Tags, Skills: []SkillInfo{}}
		for _, sk := range d.Skills {
			ci.Skills = append(ci.Skills, SkillInfo{ID: sk.ID, Type: sk.Type.String(), Cost: costView(sk.Cost)})
		}
		chars = append(chars, ci)
	}
	writeJSON(w, http.StatusOK, chars)
}

func (s *Server) handleDecks(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, deckInfos(s.decks))
}

func (s *Server) handleMatches(w http.ResponseWriter, r *http.Request) {
	limit := defaultMatchLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = n
	}
	matches, err := s.store.ListMatches(r.Context(), limit)
	if err != nil {
		s.logger.Error("list matches", "error", err)
		http.Error(w, "could not list matches", http.StatusInternalServerError)
		return
	}
	if matches == nil {
		matches = []store.Match{}
	}
	writeJSON(w, http.StatusOK, matches)
}

func (s *Server) handleMatch(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		http.Error(w, "invalid match id", http.StatusBadRequest)
		return
	}
	loaded, err := match.Load(r.Context(), s.store, s.registry, id)
	if errors.Is(err, store.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		s.logger.Error("load match", "match_id", id, "error", err)
		http.Error(w, "could not load match", http.StatusInternalServerError)
		return
	}
	detail := MatchDetail{Match: loaded.Match, Events: []log.GameEvent{}}
	detail.Log, detail.Mutations = nil, nil
	for _, e := range loaded.Entries {
		detail.Events = append(detail.Events, e.Events...)
	}
	writeJSON(w, http.StatusOK, detail)
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	wsConn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		s.logger.Warn("websocket accept", "error", err)
		return
	}
	defer wsConn.CloseNow()

	ctx := r.Context()

	_, connectData, err := wsConn.Read(ctx)
	if err != nil {
		s.logger.Warn("websocket read connect", "error", err)
		return
	}
	var connectMsg struct {
		Type       string `json:"type"`
		Addr       string `json:"addr"`
		DeckNumber int    `json:"deckNumber"`
	}
	if err := json.Unmarshal(connectData, &connectMsg); err != nil || connectMsg.Type != "connect" {
		wsConn.Close(websocket.StatusPolicyViolation, "expected connect message")
		return
	}

	var d net.Dialer
	dialCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	tcpConn, err := d.DialContext(dialCtx, "tcp", connectMsg.Addr)
	cancel()
	if err != nil {
		errMsg, _ := json.Marshal(map[string]string{
			"type":   "error",
			"result": fmt.Sprintf("Could not connect to game server at %s: %v", connectMsg.Addr, err),
		})
		_ = wsConn.Write(ctx, websocket.MessageText, errMsg)
		wsConn.Close(websocket.StatusNormalClosure, "connection failed")
		return
	}
	defer tcpConn.Close()
	logger := s.logger.With("addr", connectMsg.Addr)

	joinMsg, _ := json.Marshal(gitcgnet.ClientMessage{Type: gitcgnet.MsgJoin, DeckNumber: connectMsg.DeckNumber})
	if _, err := tcpConn.Write(append(joinMsg, '\n')); err != nil {
		logger.Warn("tcp write join", "error", err)
		return
	}

	done := make(chan struct{})

	// TCP → WebSocket
	go func() {
		defer close(done)
		dec := json.NewDecoder(tcpConn)
		for {
			var msg json.RawMessage
			if err := dec.Decode(&msg); err != nil {
				if !errors.Is(err, io.EOF) && !errors.Is(err, net.ErrClosed) {
					logger.Warn("tcp read", "error", err)
				}
				return
			}
			if err := wsConn.Write(ctx, websocket.MessageText, msg); err != nil {
				logger.Warn("websocket write", "error", err)
				return
			}
		}
	}()

	// WebSocket → TCP
	go func() {
		for {
			_, data, err := wsConn.Read(ctx)
			if err != nil {
				_ = tcpConn.Close()
				return
			}
			if _, err := tcpConn.Write(append(data, '\n')); err != nil {
				logger.Warn("tcp write", "error", err)
				return
			}
		}
	}()

	<-done
	wsConn.Close(websocket.StatusNormalClosure, "game ended")
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("web server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
