package net

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/peterkuimelis/gitcg/internal/game"
	"github.com/peterkuimelis/gitcg/internal/log"
)

// Client answers server prompts from a terminal, or by itself when Auto is
// set.
type Client struct {
	conn   net.Conn
	in     *bufio.Reader
	out    io.Writer
	name   string
	Auto   bool
	state  *game.ExposedState
	Result *ServerMessage
}

// NewClient wraps conn. Prompts are read from in and everything is printed
// to out.
func NewClient(conn net.Conn, name string, in io.Reader, out io.Writer) *Client {
	return &Client{conn: conn, in: bufio.NewReader(in), out: out, name: name}
}

// Connect connects to a server, sends the deck choice, and runs the client
// until the match ends.
func Connect(ctx context.Context, addr string, deckNumber int, auto bool, in io.Reader, out io.Writer) (*ServerMessage, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	defer conn.Close()

	if err := json.NewEncoder(conn).Encode(ClientMessage{Type: MsgJoin, DeckNumber: deckNumber}); err != nil {
		return nil, fmt.Errorf("send join: %w", err)
	}
	fmt.Fprintln(out, "Connected! Waiting for game to start...")

	c := NewClient(conn, "P2", in, out)
	c.Auto = auto
	if err := c.Run(ctx); err != nil {
		return nil, err
	}
	return c.Result, nil
}

// Run reads server messages and answers them until game_over.
func (c *Client) Run(ctx context.Context) error {
	stop := context.AfterFunc(ctx, func() { _ = c.conn.SetDeadline(time.Now()) })
	defer stop()

	dec := json.NewDecoder(c.conn)
	enc := json.NewEncoder(c.conn)
	for {
		var msg ServerMessage
		if err := dec.Decode(&msg); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("read message: %w", err)
		}

		var reply *ClientMessage
		switch msg.Type {
		case MsgNotify:
			c.state = msg.State
			for _, ev := range msg.Events {
				fmt.Fprintln(c.out, log.FormatEvent(ev))
			}
		case MsgChooseActive:
			reply = c.chooseActive(msg)
		case MsgRerollDice:
			reply = c.reroll(msg)
		case MsgSwitchHands:
			reply = c.switchHands(msg)
		case MsgAction:
			reply = c.action(msg)
		case MsgGameOver:
			c.Result = &msg
			fmt.Fprintln(c.out)
			fmt.Fprintln(c.out, "═══════════════════════════════════")
			fmt.Fprintln(c.out, "          GAME OVER")
			fmt.Fprintln(c.out, "═══════════════════════════════════")
			fmt.Fprintln(c.out, msg.Result)
			if msg.MatchID != "" {
				fmt.Fprintf(c.out, "Match %s\n", msg.MatchID)
			}
			return nil
		}
		if reply == nil {
			continue
		}
		if err := enc.Encode(reply); err != nil {
			return fmt.Errorf("send %s: %w", reply.Type, err)
		}
	}
}

func (c *Client) chooseActive(msg ServerMessage) *ClientMessage {
	if c.Auto || len(msg.Candidates) == 1 {
		return &ClientMessage{Type: MsgActive, CharacterID: msg.Candidates[0]}
	}
	c.renderState()
	fmt.Fprintln(c.out, "\nChoose your active character:")
	for i, id := range msg.Candidates {
		fmt.Fprintf(c.out, "  %d) %s\n", i+1, c.characterName(id))
	}
	idx, ok := c.readChoice(len(msg.Candidates))
	if !ok {
		return &ClientMessage{Type: MsgGiveUp}
	}
	return &ClientMessage{Type: MsgActive, CharacterID: msg.Candidates[idx]}
}

func (c *Client) reroll(msg ServerMessage) *ClientMessage {
	if c.Auto {
		return &ClientMessage{Type: MsgReroll}
	}
	fmt.Fprintln(c.out, "\nDice:")
	for i, d := range msg.Dice {
		fmt.Fprintf(c.out, "  %d) %s\n", i+1, d)
	}
	fmt.Fprintln(c.out, "Numbers of dice to reroll (empty keeps all):")
	idx, ok := c.readIndices(len(msg.Dice))
	if !ok {
		return &ClientMessage{Type: MsgGiveUp}
	}
	return &ClientMessage{Type: MsgReroll, Indexes: idx}
}

func (c *Client) switchHands(msg ServerMessage) *ClientMessage {
	if c.Auto {
		return &ClientMessage{Type: MsgHands}
	}
	fmt.Fprintln(c.out, "\nStarting hand:")
	for i, id := range msg.Hands {
		fmt.Fprintf(c.out, "  %d) %s\n", i+1, c.cardName(id))
	}
	fmt.Fprintln(c.out, "Numbers of cards to put back (empty keeps all):")
	idx, ok := c.readIndices(len(msg.Hands))
	if !ok {
		return &ClientMessage{Type: MsgGiveUp}
	}
	removed := make([]int, 0, len(idx))
	for _, i := range idx {
		removed = append(removed, msg.Hands[i])
	}
	return &ClientMessage{Type: MsgHands, RemovedHands: removed}
}

func (c *Client) action(msg ServerMessage) *ClientMessage {
	if c.Auto {
		return autoAction(msg.Actions, msg.Dice)
	}
	c.renderState()
	fmt.Fprintln(c.out, "\nActions:")
	for i, a := range msg.Actions {
		fmt.Fprintf(c.out, "  %d) %s\n", i+1, a.Desc)
	}
	for {
		idx, ok := c.readChoice(len(msg.Actions))
		if !ok {
			return &ClientMessage{Type: MsgGiveUp}
		}
		cost, paid := PayFor(msg.Actions[idx], msg.Dice)
		if !paid {
			fmt.Fprintln(c.out, "Not enough dice for that action")
			continue
		}
		return &ClientMessage{Type: MsgChoose, ChosenIndex: idx, Cost: cost}
	}
}

// autoAction uses the first affordable skill and otherwise declares end.
func autoAction(actions []game.Action, dice []game.DiceType) *ClientMessage {
	end := 0
	for i, a := range actions {
		switch a.Type {
		case game.ActionUseSkill:
			if cost, ok := PayFor(a, dice); ok {
				return &ClientMessage{Type: MsgChoose, ChosenIndex: i, Cost: cost}
			}
		case game.ActionDeclareEnd:
			end = i
		}
	}
	return &ClientMessage{Type: MsgChoose, ChosenIndex: end}
}

// PayFor picks dice from pool for a. Tuning spends one non-Omni die.
func PayFor(a game.Action, dice []game.DiceType) ([]game.DiceType, bool) {
	if a.Type == game.ActionElementalTuning {
		return game.PayWithOmni(a, dice)
	}
	return game.AutoPay(a.Cost, dice)
}

func (c *Client) renderState() {
	sv := c.state
	if sv == nil {
		return
	}
	me, opp := sv.Players[sv.Viewer], sv.Players[1-sv.Viewer]

	fmt.Fprintln(c.out)
	fmt.Fprintln(c.out, "╔══════════════════════════════════════════════════════╗")
	fmt.Fprintf(c.out, "║  OPPONENT  Hand: %d  Pile: %d  Dice: %d%s\n",
		len(opp.Hands), opp.PileCount, opp.DiceCount, endMark(opp.DeclaredEnd))
	c.renderSide(opp)
	fmt.Fprintln(c.out, "║──────────────────────────────────────────────────────")
	c.renderSide(me)
	fmt.Fprintf(c.out, "║  YOU (%s)  Hand: %d  Pile: %d%s\n",
		c.name, len(me.Hands), me.PileCount, endMark(me.DeclaredEnd))
	fmt.Fprintln(c.out, "╚══════════════════════════════════════════════════════╝")

	turn := "Opponent's turn"
	if sv.CurrentTurn == sv.Viewer {
		turn = "Your turn"
	}
	fmt.Fprintf(c.out, "Round %d | %s | %s\n", sv.RoundNumber, sv.Phase, turn)

	if len(me.Dice) > 0 {
		fmt.Fprint(c.out, "Dice: ")
		for _, d := range me.Dice {
			fmt.Fprintf(c.out, "[%s] ", d)
		}
		fmt.Fprintln(c.out)
	}
	if len(me.Hands) > 0 {
		fmt.Fprint(c.out, "Hand: ")
		for i, card := range me.Hands {
			fmt.Fprintf(c.out, "[%d] %s  ", i+1, card.Name)
		}
		fmt.Fprintln(c.out)
	}
}

func (c *Client) renderSide(p game.ExposedPlayer) {
	for _, ch := range p.Characters {
		mark := " "
		if ch.ID == p.ActiveCharacterID {
			mark = "*"
		}
		status := fmt.Sprintf("%d/%d HP  %d/%d energy", ch.Health, ch.MaxHealth, ch.Energy, ch.MaxEnergy)
		if !ch.Alive {
			status = "defeated"
		}
		fmt.Fprintf(c.out, "║ %s %-12s %s  %s%s\n", mark, ch.Name, status, ch.Aura, formatEntities(ch.Entities))
	}
	if s := formatEntities(p.CombatStatuses); s != "" {
		fmt.Fprintf(c.out, "║  Status:%s\n", s)
	}
	if s := formatEntities(p.Summons); s != "" {
		fmt.Fprintf(c.out, "║  Summons:%s\n", s)
	}
	if s := formatEntities(p.Supports); s != "" {
		fmt.Fprintf(c.out, "║  Supports:%s\n", s)
	}
}

func formatEntities(list []game.ExposedEntity) string {
	var sb strings.Builder
	for _, e := range list {
		if e.VariableName != "" {
			fmt.Fprintf(&sb, " [%s %d]", e.Name, e.Variable)
		} else {
			fmt.Fprintf(&sb, " [%s]", e.Name)
		}
	}
	return sb.String()
}

func endMark(declared bool) string {
	if declared {
		return "  (ended)"
	}
	return ""
}

func (c *Client) characterName(id int) string {
	if c.state != nil {
		for _, p := range c.state.Players {
			for _, ch := range p.Characters {
				if ch.ID == id {
					return ch.Name
				}
			}
		}
	}
	return fmt.Sprintf("#%d", id)
}

func (c *Client) cardName(id int) string {
	if c.state != nil {
		for _, card := range c.state.Players[c.state.Viewer].Hands {
			if card.ID == id {
				return card.Name
			}
		}
	}
	return fmt.Sprintf("#%d", id)
}

// readLine returns false at end of input or on "quit".
func (c *Client) readLine() (string, bool) {
	fmt.Fprint(c.out, "> ")
	line, err := c.in.ReadString('\n')
	line = strings.TrimSpace(line)
	if errors.Is(err, io.EOF) && line == "" {
		return "", false
	}
	if line == "quit" || line == "give up" {
		return "", false
	}
	return line, true
}

func (c *Client) readChoice(count int) (int, bool) {
	for {
		line, ok := c.readLine()
		if !ok {
			return 0, false
		}
		n, err := strconv.Atoi(line)
		if err != nil || n < 1 || n > count {
			fmt.Fprintf(c.out, "Enter a number between 1 and %d\n", count)
			continue
		}
		return n - 1, true
	}
}

func (c *Client) readIndices(count int) ([]int, bool) {
	for {
		line, ok := c.readLine()
		if !ok {
			return nil, false
		}
		var indices []int
		valid := true
		for _, p := range strings.Fields(line) {
			n, err := strconv.Atoi(p)
			if err != nil || n < 1 || n > count {
				fmt.Fprintf(c.out, "Each number must be between 1 and %d\n", count)
				valid = false
				break
			}
			if !slices.Contains(indices, n-1) {
				indices = append(indices, n-1)
			}
		}
		if valid {
			return indices, true
		}
	}
}
