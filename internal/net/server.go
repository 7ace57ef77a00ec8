// Package net plays matches over TCP. Both seats speak JSON lines; the host
// plays through an in-process pipe.
package net

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"time"

	"github.com/peterkuimelis/gitcg/internal/content"
	"github.com/peterkuimelis/gitcg/internal/game"
	"github.com/peterkuimelis/gitcg/internal/match"
)

const gameOverTimeout = 5 * time.Second

// Server hosts a match between a local player and one TCP client.
type Server struct {
	Addr     string
	HostDeck int // host's deck number (1-indexed)
	HostAuto bool
	Decks    content.DeckFile
	Runner   *match.Runner
	Logger   *slog.Logger
	// Listener overrides Addr when set.
	Listener net.Listener
	// Host terminal.
	In  io.Reader
	Out io.Writer
}

// Run waits for a client to join, then plays the match. It returns the
// match result once both seats have been told the outcome.
func (s *Server) Run(ctx context.Context) (match.Result, error) {
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}
	ln := s.Listener
	if ln == nil {
		var lc net.ListenConfig
		var err error
		if ln, err = lc.Listen(ctx, "tcp", s.Addr); err != nil {
			return match.Result{}, fmt.Errorf("listen: %w", err)
		}
	}
	defer ln.Close()

	logger.Info("waiting for opponent", "addr", ln.Addr().String())
	stop := context.AfterFunc(ctx, func() { _ = ln.Close() })
	conn, err := ln.Accept()
	stop()
	if err != nil {
		if ctx.Err() != nil {
			return match.Result{}, ctx.Err()
		}
		return match.Result{}, fmt.Errorf("accept: %w", err)
	}
	defer conn.Close()
	logger.Info("opponent connected", "remote", conn.RemoteAddr().String())

	joinerIO := NewNetworkIO(conn, 1)
	join, err := joinerIO.Join(ctx)
	if err != nil {
		return match.Result{}, err
	}
	joinerDeck := join.DeckNumber
	if joinerDeck == 0 {
		joinerDeck = 2
	}

	reg := s.Runner.Registry
	hostName, hostDeck, err := content.DeckByNumber(s.Decks, reg, s.HostDeck)
	if err != nil {
		return match.Result{}, fmt.Errorf("load host deck: %w", err)
	}
	joinerName, joinerDeckCards, err := content.DeckByNumber(s.Decks, reg, joinerDeck)
	if err != nil {
		return match.Result{}, fmt.Errorf("load joiner deck: %w", err)
	}
	logger.Info("decks chosen", "host", hostName, "joiner", joinerName)

	hostConn, hostServerConn := net.Pipe()
	defer hostConn.Close()
	defer hostServerConn.Close()
	hostIO := NewNetworkIO(hostServerConn, 0)

	m, err := s.Runner.Start([2]game.Deck{hostDeck, joinerDeckCards}, hostIO, joinerIO)
	if err != nil {
		return match.Result{}, err
	}
	hostIO.OnGiveUp = m.Game.GiveUp
	joinerIO.OnGiveUp = m.Game.GiveUp

	matchCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	in, out := s.In, s.Out
	if in == nil {
		in = eofReader{}
	}
	if out == nil {
		out = io.Discard
	}
	hostDone := make(chan error, 1)
	go func() {
		c := NewClient(hostConn, "P1", in, out)
		c.Auto = s.HostAuto
		err := c.Run(matchCtx)
		// A host that stops reading would stall the pipe.
		cancel()
		hostDone <- err
	}()

	res, runErr := m.Run(matchCtx)
	if runErr != nil {
		logger.Error("match failed", "match_id", m.ID, "error", runErr)
	}
	id := m.ID.String()
	sendCtx, sendCancel := context.WithTimeout(ctx, gameOverTimeout)
	defer sendCancel()
	if err := joinerIO.SendGameOver(sendCtx, id, res.Winner, res.Reason); err != nil {
		logger.Warn("joiner missed game over", "error", err)
	}
	if err := hostIO.SendGameOver(matchCtx, id, res.Winner, res.Reason); err != nil {
		logger.Warn("host missed game over", "error", err)
	}
	hostErr := <-hostDone
	if runErr != nil {
		return res, runErr
	}
	if hostErr != nil && !errors.Is(hostErr, context.Canceled) {
		return res, fmt.Errorf("host client: %w", hostErr)
	}
	return res, nil
}

// eofReader makes a host without a terminal give up at its first prompt.
type eofReader struct{}

func (eofReader) Read([]byte) (int, error) { return 0, io.EOF }
