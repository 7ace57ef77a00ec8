package game

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync/atomic"

	"github.com/peterkuimelis/gitcg/internal/log"
)

// Deck lists the definition ids a player brings to a match.
type Deck struct {
	Characters []int `json:"characters" yaml:"characters"`
	Cards      []int `json:"cards" yaml:"cards"`
}

// MatchConfig holds configuration for creating a new match.
type MatchConfig struct {
	Rules    GameConfig
	Registry *Registry
	Decks    [2]Deck
	Selector Selector
	Logger   log.EventLogger
	Slog     *slog.Logger
	// NoShuffle keeps piles in deck order (for deterministic tests).
	NoShuffle bool
	// OnError observes every error that aborts the match.
	OnError func(error)
	// OnLogEntry receives a snapshot at every I/O point.
	OnLogEntry func(LogEntry)
}

// errGameOver unwinds the phase loop once a winner is set.
var errGameOver = errors.New("game over")

// Game orchestrates a match between two seats.
type Game struct {
	state      *GameState
	io         [2]PlayerIO
	selector   Selector
	dispatcher *Dispatcher
	Logger     log.EventLogger
	slog       *slog.Logger
	onError    func(error)
	onLogEntry func(LogEntry)
	ctx        context.Context

	giveUp      [2]atomic.Bool
	notifiedMut [2]int
	notifiedLog [2]int
	loggedSeen  int
	firstEnd    int
}

// NewGame builds the initial state from the decks. Piles are shuffled with
// the match PRNG unless cfg.NoShuffle is set.
func NewGame(cfg MatchConfig, p0, p1 PlayerIO) (*Game, error) {
	if cfg.Registry == nil {
		return nil, fmt.Errorf("%w: match has no registry", ErrData)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.NewMemoryLogger()
	}
	sl := cfg.Slog
	if sl == nil {
		sl = slog.Default()
	}
	g := &Game{
		state:      NewGameState(cfg.Registry, cfg.Rules),
		io:         [2]PlayerIO{p0, p1},
		selector:   cfg.Selector,
		Logger:     logger,
		slog:       sl,
		onError:    cfg.OnError,
		onLogEntry: cfg.OnLogEntry,
		ctx:        context.Background(),
		firstEnd:   -1,
	}
	g.dispatcher = &Dispatcher{
		Selector:  cfg.Selector,
		OnRequest: g.handleRequest,
		OnEvent:   g.observe,
	}
	for who, deck := range cfg.Decks {
		if err := g.setupDeck(who, deck, !cfg.NoShuffle); err != nil {
			return nil, err
		}
	}
	return g, nil
}

func (g *Game) setupDeck(who int, deck Deck, shuffle bool) error {
	for _, id := range deck.Characters {
		if err := g.mutate(CreateCharacter{Who: who, DefinitionID: id}); err != nil {
			return err
		}
	}
	cards := slices.Clone(deck.Cards)
	if shuffle {
		c := systemContext(g.state, g.selector, who)
		// Fisher-Yates through the replayable PRNG.
		for i := len(cards) - 1; i > 0; i-- {
			j, err := c.RandomInt(i + 1)
			if err != nil {
				return err
			}
			cards[i], cards[j] = cards[j], cards[i]
		}
		g.state = c.state
	}
	for _, id := range cards {
		if err := g.mutate(CreateCard{Who: who, Target: CardAreaPiles, DefinitionID: id}); err != nil {
			return err
		}
	}
	return nil
}

// State returns the current snapshot.
func (g *Game) State() *GameState { return g.state }

// GiveUp makes who lose at the next I/O point. Safe to call from any
// goroutine.
func (g *Game) GiveUp(who int) {
	g.giveUp[who].Store(true)
}

// Run plays the match to the end. It returns the winner, or NoWinner for a
// draw.
func (g *Game) Run(ctx context.Context) (int, error) {
	g.ctx = ctx
	err := g.run()
	if errors.Is(err, errGameOver) {
		err = nil
	}
	if err != nil {
		g.slog.Error("match aborted", "round", g.state.RoundNumber, "error", err)
		if g.onError != nil {
			g.onError(err)
		}
		return g.state.Winner, err
	}
	if err := g.notifyAll(false); err != nil && g.onError != nil {
		g.onError(err)
	}
	return g.state.Winner, nil
}

func (g *Game) run() error {
	if err := g.initHands(); err != nil {
		return err
	}
	if err := g.initActives(); err != nil {
		return err
	}
	for {
		if err := g.rollPhase(); err != nil {
			return err
		}
		if err := g.actionPhase(); err != nil {
			return err
		}
		if err := g.endPhase(); err != nil {
			return err
		}
		if err := g.ctx.Err(); err != nil {
			return fmt.Errorf("%w: %v", ErrIO, err)
		}
	}
}

func (g *Game) changePhase(p Phase) error {
	if err := g.mutate(ChangePhase{NewPhase: p}); err != nil {
		return err
	}
	g.log(log.NewPhaseChangeEvent(g.state.RoundNumber, p.String()))
	return nil
}

func (g *Game) initHands() error {
	for who := range 2 {
		if err := g.draw(who, g.state.Config.InitialHands); err != nil {
			return err
		}
	}
	for who := range 2 {
		if err := g.switchHands(who); err != nil {
			return err
		}
	}
	return nil
}

func (g *Game) initActives() error {
	if err := g.changePhase(PhaseInitActives); err != nil {
		return err
	}
	for who := range 2 {
		p := g.state.Players[who]
		candidates := make([]int, 0, len(p.Characters))
		for _, ch := range p.Characters {
			candidates = append(candidates, ch.ID)
		}
		id, err := g.chooseActive(who, candidates)
		if err != nil {
			return err
		}
		if err := g.mutate(SwitchActive{Who: who, CharacterID: id}); err != nil {
			return err
		}
	}
	return g.withSystem(g.state.CurrentTurn, func(c *Context) error {
		c.emit(OnBattleBegin, PlayerArg{Who: g.state.CurrentTurn})
		return nil
	})
}

func (g *Game) rollPhase() error {
	if err := g.mutate(StepRound{}); err != nil {
		return err
	}
	g.log(log.NewRoundEvent(g.state.RoundNumber))
	if err := g.changePhase(PhaseRoll); err != nil {
		return err
	}
	for who := range 2 {
		if err := g.withSystem(who, func(c *Context) error {
			dice, err := rollDice(c, g.state.Config.InitialDice)
			if err != nil {
				return err
			}
			return c.mutate(ResetDice{Who: who, Dice: SortDice(c.state.Players[who], dice)})
		}); err != nil {
			return err
		}
	}
	for who := range 2 {
		if err := g.reroll(who, 1); err != nil {
			return err
		}
	}
	return nil
}

// rollDice draws n dice uniformly over the seven elements and Omni.
func rollDice(c *Context, n int) ([]DiceType, error) {
	faces := append(elementOrder(), DiceOmni)
	dice := make([]DiceType, 0, n)
	for range n {
		d, err := Pick(c, faces)
		if err != nil {
			return nil, err
		}
		dice = append(dice, d)
	}
	return dice, nil
}

func (g *Game) actionPhase() error {
	if err := g.changePhase(PhaseAction); err != nil {
		return err
	}
	if err := g.withSystem(g.state.CurrentTurn, func(c *Context) error {
		c.emit(OnActionPhase, PlayerArg{Who: g.state.CurrentTurn})
		return nil
	}); err != nil {
		return err
	}
	if err := g.afterResolution(); err != nil {
		return err
	}
	g.firstEnd = -1
	for {
		p0, p1 := g.state.Players[0], g.state.Players[1]
		if p0.DeclaredEnd && p1.DeclaredEnd {
			return nil
		}
		who := g.state.CurrentTurn
		p := g.state.Players[who]
		if p.DeclaredEnd {
			if err := g.mutate(SwitchTurn{}); err != nil {
				return err
			}
			continue
		}
		if p.SkipNextTurn {
			if err := g.mutate(SetPlayerFlag{Who: who, Flag: FlagSkipNextTurn, Value: false}); err != nil {
				return err
			}
			if err := g.passTurn(who); err != nil {
				return err
			}
			continue
		}
		if err := g.takeAction(who); err != nil {
			return err
		}
	}
}

// passTurn hands the turn to the opponent unless the opponent has declared
// end.
func (g *Game) passTurn(who int) error {
	if g.state.Players[1-who].DeclaredEnd || g.state.CurrentTurn != who {
		return nil
	}
	return g.mutate(SwitchTurn{})
}

func (g *Game) takeAction(who int) error {
	actions := g.computeActions(who)
	chosen, paid, err := g.askAction(who, actions)
	if err != nil {
		return err
	}
	g.slog.Debug("action", "round", g.state.RoundNumber, "player", who, "action", chosen.String())

	if chosen.Type != ActionDeclareEnd {
		p := g.state.Players[who]
		if err := g.mutate(ResetDice{Who: who, Dice: RemoveDice(p.Dice, paid)}); err != nil {
			return err
		}
	}

	switch chosen.Type {
	case ActionUseSkill:
		if err := g.playSkill(who, chosen); err != nil {
			return err
		}
	case ActionPlayCard:
		if err := g.playCard(who, chosen); err != nil {
			return err
		}
	case ActionSwitchActive:
		from := g.state.Players[who].ActiveCharacterID
		if err := g.withSystem(who, func(c *Context) error {
			return c.SwitchActive(chosen.CharacterID)
		}); err != nil {
			return err
		}
		g.log(log.NewSwitchActiveEvent(g.state.RoundNumber, g.phaseName(), who, g.characterName(from), g.characterName(chosen.CharacterID)))
	case ActionElementalTuning:
		if err := g.tune(who, chosen, paid[0]); err != nil {
			return err
		}
	case ActionDeclareEnd:
		if err := g.declareEnd(who); err != nil {
			return err
		}
	}
	if err := g.afterResolution(); err != nil {
		return err
	}
	if chosen.Type.IsCombat() {
		return g.passTurn(who)
	}
	return nil
}

func (g *Game) playSkill(who int, a Action) error {
	p := g.state.Players[who]
	active := p.ActiveCharacter()
	if active == nil {
		return fmt.Errorf("%w: player %d has no active character", ErrData, who)
	}
	def := active.Definition.Skill(a.SkillID)
	if def == nil {
		return fmt.Errorf("%w: character %d has no skill %d", ErrData, active.Definition.ID, a.SkillID)
	}
	info := SkillInfo{CallerID: active.ID, Definition: def}
	if def.Type == SkillNormal {
		// Dice are counted before payment; the pool was already charged.
		info.Charged = (len(p.Dice)+a.Cost.DiceCount())%2 == 0
		info.Plunging = p.CanPlunging
	}
	if energy := def.Cost.Energy(); energy > 0 {
		if err := g.withSystem(who, func(c *Context) error {
			return c.LoseEnergy(energy, active.ID)
		}); err != nil {
			return err
		}
	}
	if err := g.useSkill(who, info); err != nil {
		return err
	}
	return g.mutate(SetPlayerFlag{Who: who, Flag: FlagCanPlunging, Value: false})
}

// useSkill runs an initiative skill, logs it, and dispatches what it raised.
func (g *Game) useSkill(who int, info SkillInfo) error {
	c, err := newContext(g.state, g.selector, info)
	if err != nil {
		return err
	}
	def := info.Definition
	if def.Action != nil {
		err = def.Action(c, info)
	}
	if err == nil && def.GainEnergy {
		err = c.GainEnergy(1, info.CallerID)
	}
	if err == nil {
		err = c.mutate(PushSkillLog{Skill: SkillLogEntry{
			RoundNumber: c.state.RoundNumber,
			Who:         who,
			CallerID:    info.CallerID,
			SkillID:     def.ID,
			Charged:     info.Charged,
			Plunging:    info.Plunging,
		}})
	}
	g.state = c.state
	if err != nil {
		return err
	}
	g.log(log.NewSkillEvent(g.state.RoundNumber, g.phaseName(), who, g.characterName(info.CallerID), def.ID, info.Charged, info.Plunging))
	c.emit(OnSkill, info)
	return g.dispatch(c.events)
}

func (g *Game) playCard(who int, a Action) error {
	card, _, _, ok := g.state.FindCard(a.CardID)
	if !ok {
		return fmt.Errorf("%w: card %d is not in hand", ErrData, a.CardID)
	}
	def := card.Definition
	if err := g.mutate(DisposeCard{Who: who, CardID: card.ID, Used: true}); err != nil {
		return err
	}
	if def.HasTag(TagLegend) {
		if err := g.mutate(SetPlayerFlag{Who: who, Flag: FlagLegendUsed, Value: true}); err != nil {
			return err
		}
	}
	g.log(log.NewPlayCardEvent(g.state.RoundNumber, g.phaseName(), who, def.Name))
	active := g.state.Players[who].ActiveCharacter()
	if active == nil {
		return fmt.Errorf("%w: player %d has no active character", ErrData, who)
	}
	if energy := def.Cost.Energy(); energy > 0 {
		if err := g.withSystem(who, func(c *Context) error {
			return c.LoseEnergy(energy, active.ID)
		}); err != nil {
			return err
		}
	}
	c := g.cardContext(who, active, card)
	arg := PlayCardInfo{Who: who, CardID: card.ID, DefinitionID: def.ID, Targets: a.Targets}
	var err error
	if def.Skill != nil && def.Skill.Action != nil {
		err = def.Skill.Action(c, arg)
	}
	g.state = c.state
	if err != nil {
		return err
	}
	c.emit(OnPlayCard, arg)
	return g.dispatch(c.events)
}

func (g *Game) tune(who int, a Action, paid DiceType) error {
	p := g.state.Players[who]
	active := p.ActiveCharacter()
	if err := g.mutate(DisposeCard{Who: who, CardID: a.CardID, Used: false}); err != nil {
		return err
	}
	dice := append(slices.Clone(g.state.Players[who].Dice), active.Definition.Element())
	if err := g.mutate(ResetDice{Who: who, Dice: SortDice(g.state.Players[who], dice)}); err != nil {
		return err
	}
	g.log(log.NewTuningEvent(g.state.RoundNumber, g.phaseName(), who, paid.String(), active.Definition.Element().String()))
	return nil
}

func (g *Game) declareEnd(who int) error {
	if err := g.mutate(SetPlayerFlag{Who: who, Flag: FlagDeclaredEnd, Value: true}); err != nil {
		return err
	}
	if err := g.mutate(SetPlayerFlag{Who: who, Flag: FlagCanPlunging, Value: false}); err != nil {
		return err
	}
	if g.firstEnd < 0 {
		g.firstEnd = who
	}
	g.log(log.NewDeclareEndEvent(g.state.RoundNumber, g.phaseName(), who))
	return g.withSystem(who, func(c *Context) error {
		c.emit(OnDeclareEnd, PlayerArg{Who: who})
		return nil
	})
}

func (g *Game) endPhase() error {
	if err := g.changePhase(PhaseEnd); err != nil {
		return err
	}
	if g.firstEnd >= 0 && g.state.CurrentTurn != g.firstEnd {
		if err := g.mutate(SwitchTurn{}); err != nil {
			return err
		}
	}
	if err := g.withSystem(g.state.CurrentTurn, func(c *Context) error {
		c.emit(OnEndPhase, PlayerArg{Who: g.state.CurrentTurn})
		return nil
	}); err != nil {
		return err
	}
	if err := g.afterResolution(); err != nil {
		return err
	}
	if err := g.tickDurations(); err != nil {
		return err
	}
	for i := range 2 {
		who := (g.state.CurrentTurn + i) % 2
		if err := g.draw(who, DrawPerRound); err != nil {
			return err
		}
		for _, f := range []PlayerFlag{FlagDeclaredEnd, FlagHasDefeated, FlagCanPlunging} {
			if err := g.mutate(SetPlayerFlag{Who: who, Flag: f, Value: false}); err != nil {
				return err
			}
		}
	}
	if err := g.withSystem(g.state.CurrentTurn, func(c *Context) error {
		for _, loc := range c.state.AllEntities() {
			if err := c.ResetUsagePerRound(loc.ID); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		return err
	}
	if limit := g.state.Config.MaxRounds; limit > 0 && g.state.RoundNumber >= limit {
		return g.finish(NoWinner, fmt.Sprintf("round limit %d reached", limit))
	}
	return nil
}

// tickDurations counts down every entity carrying a duration and disposes
// the ones that run out.
func (g *Game) tickDurations() error {
	return g.withSystem(g.state.CurrentTurn, func(c *Context) error {
		for _, start := range c.state.AllEntities() {
			if start.Entity == nil {
				continue
			}
			// An earlier disposal may have removed or changed this entity.
			loc, found := c.state.Locate(start.ID)
			if !found || loc.Entity == nil {
				continue
			}
			d, ok := loc.Entity.Variables[VarDuration]
			if !ok {
				continue
			}
			if d <= 1 {
				if err := c.Dispose(loc.ID); err != nil {
					return err
				}
				continue
			}
			if err := c.SetVariableOf(loc.ID, VarDuration, d-1); err != nil {
				return err
			}
		}
		return nil
	})
}

func (g *Game) draw(who, count int) error {
	before := len(g.state.Players[who].Piles)
	if err := g.withSystem(who, func(c *Context) error {
		return c.DrawCards(who, count, "")
	}); err != nil {
		return err
	}
	if n := before - len(g.state.Players[who].Piles); n > 0 {
		g.log(log.NewDrawEvent(g.state.RoundNumber, g.phaseName(), who, n))
	}
	return nil
}

// afterResolution settles defeats: a side with nothing alive loses, and a
// side whose active character fell picks a new one.
func (g *Game) afterResolution() error {
	dead0 := g.state.Players[0].AllDefeated()
	dead1 := g.state.Players[1].AllDefeated()
	switch {
	case dead0 && dead1:
		return g.finish(NoWinner, "both sides defeated")
	case dead0:
		return g.finish(1, "all characters defeated")
	case dead1:
		return g.finish(0, "all characters defeated")
	}
	for i := range 2 {
		who := (g.state.CurrentTurn + i) % 2
		p := g.state.Players[who]
		active := p.ActiveCharacter()
		if active == nil || active.Alive() {
			continue
		}
		var candidates []int
		for _, ch := range p.AliveCharacters() {
			candidates = append(candidates, ch.ID)
		}
		id, err := g.chooseActive(who, candidates)
		if err != nil {
			return err
		}
		if err := g.withSystem(who, func(c *Context) error {
			return c.SwitchActive(id)
		}); err != nil {
			return err
		}
	}
	return nil
}

// finish ends the match with winner (NoWinner for a draw).
func (g *Game) finish(winner int, reason string) error {
	if err := g.mutate(SetWinner{Winner: winner}); err != nil {
		return err
	}
	if err := g.mutate(ChangePhase{NewPhase: PhaseGameEnd}); err != nil {
		return err
	}
	if winner == NoWinner {
		g.log(log.NewTieEvent(g.state.RoundNumber, g.phaseName(), reason))
	} else {
		g.log(log.NewWinEvent(g.state.RoundNumber, g.phaseName(), winner, reason))
	}
	g.slog.Info("match finished", "winner", winner, "round", g.state.RoundNumber, "reason", reason)
	return errGameOver
}

// --- requests ---

func (g *Game) handleRequest(s *GameState, ev Event) (*GameState, error) {
	g.state = s
	var err error
	switch arg := ev.Arg.(type) {
	case SwitchHandsArg:
		err = g.switchHands(arg.Who)
	case RerollArg:
		err = g.reroll(arg.Who, arg.Times)
	case UseSkillArg:
		ch, _, ok := g.state.Character(arg.CallerID)
		if !ok || !ch.Alive() {
			break
		}
		def := ch.Definition.Skill(arg.SkillID)
		if def == nil {
			err = fmt.Errorf("%w: character %d has no skill %d", ErrData, ch.Definition.ID, arg.SkillID)
			break
		}
		err = g.useSkill(arg.Who, SkillInfo{CallerID: arg.CallerID, Definition: def, RequestBy: arg.CallerID})
	default:
		err = fmt.Errorf("%w: unexpected request payload %T", ErrData, ev.Arg)
	}
	return g.state, err
}

func (g *Game) switchHands(who int) error {
	p := g.state.Players[who]
	hands := make([]int, 0, len(p.Hands))
	for _, c := range p.Hands {
		hands = append(hands, c.ID)
	}
	if err := g.beforeIO(who); err != nil {
		return err
	}
	resp, err := g.io[who].SwitchHands(g.ctx, SwitchHandsRequest{Who: who, Hands: hands})
	if err != nil {
		return fmt.Errorf("%w: switch hands: %v", ErrIO, err)
	}
	removed := 0
	for _, id := range resp.RemovedHands {
		if !slices.Contains(hands, id) {
			return fmt.Errorf("%w: card %d is not in hand", ErrIO, id)
		}
		if err := g.mutate(TransferCard{Who: who, From: CardAreaHands, To: CardAreaPiles, CardID: id}); err != nil {
			return err
		}
		removed++
	}
	if removed == 0 {
		return nil
	}
	g.log(log.NewSwitchHandsEvent(g.state.RoundNumber, g.phaseName(), who, removed))
	// Returned cards go to the bottom, so the draw takes fresh ones first.
	return g.withSystem(who, func(c *Context) error {
		return c.DrawCards(who, removed, "")
	})
}

func (g *Game) reroll(who, times int) error {
	for range times {
		dice := g.state.Players[who].Dice
		if err := g.beforeIO(who); err != nil {
			return err
		}
		resp, err := g.io[who].RerollDice(g.ctx, RerollRequest{Who: who, Dice: slices.Clone(dice)})
		if err != nil {
			return fmt.Errorf("%w: reroll: %v", ErrIO, err)
		}
		if len(resp.Indexes) == 0 {
			return nil
		}
		seen := map[int]bool{}
		for _, idx := range resp.Indexes {
			if idx < 0 || idx >= len(dice) || seen[idx] {
				return fmt.Errorf("%w: bad reroll index %d", ErrIO, idx)
			}
			seen[idx] = true
		}
		var kept []DiceType
		for i, d := range dice {
			if !seen[i] {
				kept = append(kept, d)
			}
		}
		if err := g.withSystem(who, func(c *Context) error {
			fresh, err := rollDice(c, len(seen))
			if err != nil {
				return err
			}
			all := append(kept, fresh...)
			return c.mutate(ResetDice{Who: who, Dice: SortDice(c.state.Players[who], all)})
		}); err != nil {
			return err
		}
		g.log(log.NewRerollEvent(g.state.RoundNumber, g.phaseName(), who, len(seen)))
	}
	return nil
}

func (g *Game) chooseActive(who int, candidates []int) (int, error) {
	if err := g.beforeIO(who); err != nil {
		return 0, err
	}
	id, err := g.io[who].ChooseActive(g.ctx, ChooseActiveRequest{Who: who, Candidates: candidates})
	if err != nil {
		return 0, fmt.Errorf("%w: choose active: %v", ErrIO, err)
	}
	if !slices.Contains(candidates, id) {
		return 0, fmt.Errorf("%w: character %d is not a candidate", ErrIO, id)
	}
	g.log(log.NewChooseActiveEvent(g.state.RoundNumber, g.phaseName(), who, g.characterName(id)))
	return id, nil
}

func (g *Game) askAction(who int, actions []Action) (Action, []DiceType, error) {
	if err := g.beforeIO(who); err != nil {
		return Action{}, nil, err
	}
	p := g.state.Players[who]
	resp, err := g.io[who].Action(g.ctx, ActionRequest{Who: who, Candidates: actions, Dice: slices.Clone(p.Dice)})
	if err != nil {
		return Action{}, nil, fmt.Errorf("%w: action: %v", ErrIO, err)
	}
	if resp.ChosenIndex < 0 || resp.ChosenIndex >= len(actions) {
		return Action{}, nil, fmt.Errorf("%w: action index %d out of range", ErrIO, resp.ChosenIndex)
	}
	chosen := actions[resp.ChosenIndex]
	if err := validatePayment(p, chosen, resp.Cost); err != nil {
		return Action{}, nil, err
	}
	return chosen, resp.Cost, nil
}

// beforeIO settles give-ups and brings every seat up to date.
func (g *Game) beforeIO(who int) error {
	for i := range 2 {
		if g.giveUp[i].Load() {
			g.log(log.NewGiveUpEvent(g.state.RoundNumber, g.phaseName(), i))
			return g.finish(1-i, "opponent gave up")
		}
	}
	if err := g.ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrIO, err)
	}
	return g.notifyAll(g.state.Phase == PhaseAction && g.state.CurrentTurn == who)
}

func (g *Game) notifyAll(canResume bool) error {
	events := g.Logger.Events()
	for who := range 2 {
		n := Notification{
			Who:       who,
			State:     ExposeState(g.state, who),
			Mutations: ExposeMutations(g.state.MutationLog[g.notifiedMut[who]:], who),
			Events:    slices.Clone(events[g.notifiedLog[who]:]),
		}
		if err := g.io[who].Notify(g.ctx, n); err != nil {
			return fmt.Errorf("%w: notify: %v", ErrIO, err)
		}
		g.notifiedMut[who] = len(g.state.MutationLog)
		g.notifiedLog[who] = len(events)
	}
	if g.onLogEntry != nil {
		g.onLogEntry(LogEntry{State: g.state, Events: slices.Clone(events[g.loggedSeen:]), CanResume: canResume})
	}
	g.loggedSeen = len(events)
	return nil
}

// --- plumbing ---

func (g *Game) mutate(m Mutation) error {
	next, err := Apply(g.state, m)
	if err != nil {
		return err
	}
	g.state = next
	return nil
}

// withSystem runs fn in a context owned by the engine on behalf of who and
// dispatches whatever it raised.
func (g *Game) withSystem(who int, fn func(c *Context) error) error {
	c := systemContext(g.state, g.selector, who)
	err := fn(c)
	g.state = c.state
	if err != nil {
		return err
	}
	return g.dispatch(c.events)
}

func (g *Game) dispatch(events []Event) error {
	s, err := g.dispatcher.Dispatch(g.state, events)
	g.state = s
	return err
}

func systemContext(s *GameState, sel Selector, who int) *Context {
	return &Context{
		state:    s,
		caller:   CallerInfo{Who: who, Area: EntityArea{Type: AreaCharacters, Who: who}},
		selector: sel,
	}
}

// observe turns dispatched engine events into log lines.
func (g *Game) observe(s *GameState, ev Event) {
	round, phase := s.RoundNumber, s.Phase.String()
	switch arg := ev.Arg.(type) {
	case DamageInfo:
		_, who, _ := s.Character(arg.TargetID)
		if arg.Type == DamageHeal {
			g.log(log.NewHealEvent(round, phase, who, g.characterName(arg.TargetID), arg.Value))
		} else {
			g.log(log.NewDamageEvent(round, phase, who, g.characterName(arg.TargetID), arg.Type.String(), arg.Value))
		}
	case ReactionInfo:
		_, who, _ := s.Character(arg.TargetID)
		g.log(log.NewReactionEvent(round, phase, who, g.characterName(arg.TargetID), arg.Reaction.String()))
	case EnterInfo:
		if arg.Overridden != nil {
			return
		}
		if def, err := s.Data.Entity(arg.DefinitionID); err == nil {
			g.log(log.NewEnterEvent(round, phase, arg.Area.Who, def.Name))
		}
	case DisposeInfo:
		g.log(log.NewDisposeEvent(round, phase, arg.Area.Who, arg.Entity.Definition.Name))
	case CharacterArg:
		switch ev.Name {
		case OnDefeated:
			g.log(log.NewDefeatedEvent(round, phase, arg.Who, g.characterName(arg.CharacterID)))
		case OnRevive:
			g.log(log.NewReviveEvent(round, phase, arg.Who, g.characterName(arg.CharacterID)))
		}
	}
}

func (g *Game) log(event log.GameEvent) {
	g.Logger.Log(event)
}

func (g *Game) phaseName() string {
	return g.state.Phase.String()
}

func (g *Game) characterName(id int) string {
	if ch, _, ok := g.state.Character(id); ok {
		return ch.Definition.Name
	}
	return fmt.Sprintf("#%d", id)
}
