package net

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"slices"
	"sync"
	"time"

	"github.com/peterkuimelis/gitcg/internal/game"
)

// NetworkIO implements game.PlayerIO over a connection carrying JSON lines.
type NetworkIO struct {
	conn net.Conn
	enc  *json.Encoder
	dec  *json.Decoder
	who  int
	mu   sync.Mutex

	// OnGiveUp runs when the client sends "give_up" while a decision is
	// pending. The pending decision is then answered with a harmless default.
	OnGiveUp func(who int)
}

// NewNetworkIO creates the seat who on conn.
func NewNetworkIO(conn net.Conn, who int) *NetworkIO {
	return &NetworkIO{
		conn: conn,
		enc:  json.NewEncoder(conn),
		dec:  json.NewDecoder(conn),
		who:  who,
	}
}

// watch interrupts pending reads and writes once ctx is done.
func (n *NetworkIO) watch(ctx context.Context) func() bool {
	return context.AfterFunc(ctx, func() {
		_ = n.conn.SetDeadline(time.Now())
	})
}

// send sends a server message to the client. Must be called with mu held.
func (n *NetworkIO) send(msg ServerMessage) error {
	msg.Who = n.who
	return n.enc.Encode(msg)
}

// ask sends msg and waits for a reply of type want. A give_up reply returns
// ok=false.
func (n *NetworkIO) ask(ctx context.Context, msg ServerMessage, want string) (resp ClientMessage, ok bool, err error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	defer n.watch(ctx)()

	if err := n.send(msg); err != nil {
		return ClientMessage{}, false, fmt.Errorf("send %s: %w", msg.Type, err)
	}
	for {
		if err := n.dec.Decode(&resp); err != nil {
			if ctx.Err() != nil {
				return ClientMessage{}, false, ctx.Err()
			}
			return ClientMessage{}, false, fmt.Errorf("recv %s: %w", want, err)
		}
		switch resp.Type {
		case want:
			return resp, true, nil
		case MsgGiveUp:
			if n.OnGiveUp != nil {
				n.OnGiveUp(n.who)
			}
			return resp, false, nil
		default:
			// Stray messages are ignored; the client re-reads the prompt.
			resp = ClientMessage{}
		}
	}
}

// Join reads the client's opening handshake.
func (n *NetworkIO) Join(ctx context.Context) (ClientMessage, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	defer n.watch(ctx)()
	var msg ClientMessage
	if err := n.dec.Decode(&msg); err != nil {
		return msg, fmt.Errorf("read join message: %w", err)
	}
	if msg.Type != MsgJoin {
		return msg, fmt.Errorf("expected %q message, got %q", MsgJoin, msg.Type)
	}
	return msg, nil
}

func (n *NetworkIO) Notify(ctx context.Context, note game.Notification) error {
	msg, err := notifyMessage(note)
	if err != nil {
		return fmt.Errorf("encode notify: %w", err)
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	defer n.watch(ctx)()
	return n.send(msg)
}

func (n *NetworkIO) ChooseActive(ctx context.Context, req game.ChooseActiveRequest) (int, error) {
	resp, ok, err := n.ask(ctx, ServerMessage{Type: MsgChooseActive, Candidates: req.Candidates}, MsgActive)
	if err != nil {
		return 0, err
	}
	if !ok {
		return req.Candidates[0], nil
	}
	return resp.CharacterID, nil
}

func (n *NetworkIO) RerollDice(ctx context.Context, req game.RerollRequest) (game.RerollResponse, error) {
	resp, ok, err := n.ask(ctx, ServerMessage{Type: MsgRerollDice, Dice: req.Dice}, MsgReroll)
	if err != nil || !ok {
		return game.RerollResponse{}, err
	}
	return game.RerollResponse{Indexes: resp.Indexes}, nil
}

func (n *NetworkIO) SwitchHands(ctx context.Context, req game.SwitchHandsRequest) (game.SwitchHandsResponse, error) {
	resp, ok, err := n.ask(ctx, ServerMessage{Type: MsgSwitchHands, Hands: req.Hands}, MsgHands)
	if err != nil || !ok {
		return game.SwitchHandsResponse{}, err
	}
	return game.SwitchHandsResponse{RemovedHands: resp.RemovedHands}, nil
}

func (n *NetworkIO) Action(ctx context.Context, req game.ActionRequest) (game.ActionResponse, error) {
	msg := ServerMessage{Type: MsgAction, Actions: req.Candidates, Dice: req.Dice}
	resp, ok, err := n.ask(ctx, msg, MsgChoose)
	if err != nil {
		return game.ActionResponse{}, err
	}
	if !ok {
		return declareEnd(req.Candidates), nil
	}
	return game.ActionResponse{ChosenIndex: resp.ChosenIndex, Cost: resp.Cost}, nil
}

// declareEnd picks the declare-end candidate, which is always offered and
// costs nothing.
func declareEnd(candidates []game.Action) game.ActionResponse {
	idx := slices.IndexFunc(candidates, func(a game.Action) bool { return a.Type == game.ActionDeclareEnd })
	return game.ActionResponse{ChosenIndex: max(idx, 0)}
}

// SendGameOver sends a game_over message to the client.
func (n *NetworkIO) SendGameOver(ctx context.Context, matchID string, winner int, result string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	defer n.watch(ctx)()
	return n.send(ServerMessage{Type: MsgGameOver, MatchID: matchID, Winner: winner, Result: result})
}
