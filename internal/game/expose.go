package game

// ExposedState is what one viewer may see of a match.
type ExposedState struct {
	Viewer      int              `json:"viewer"`
	Phase       string           `json:"phase"`
	RoundNumber int              `json:"roundNumber"`
	CurrentTurn int              `json:"currentTurn"`
	Winner      int              `json:"winner"`
	Players     [2]ExposedPlayer `json:"players"`
}

type ExposedPlayer struct {
	Who               int                `json:"who"`
	ActiveCharacterID int                `json:"activeCharacterId"`
	Characters        []ExposedCharacter `json:"characters"`
	CombatStatuses    []ExposedEntity    `json:"combatStatuses"`
	Summons           []ExposedEntity    `json:"summons"`
	Supports          []ExposedEntity    `json:"supports"`
	// Hands hides definitions of the opponent's cards (DefinitionID 0).
	Hands     []ExposedCard `json:"hands"`
	PileCount int           `json:"pileCount"`
	// Dice is nil for the opponent; only the count is shown.
	Dice        []DiceType `json:"dice,omitempty"`
	DiceCount   int        `json:"diceCount"`
	DeclaredEnd bool       `json:"declaredEnd"`
	LegendUsed  bool       `json:"legendUsed"`
}

type ExposedCharacter struct {
	ID           int             `json:"id"`
	DefinitionID int             `json:"definitionId"`
	Name         string          `json:"name"`
	Health       int             `json:"health"`
	MaxHealth    int             `json:"maxHealth"`
	Energy       int             `json:"energy"`
	MaxEnergy    int             `json:"maxEnergy"`
	Alive        bool            `json:"alive"`
	Aura         string          `json:"aura"`
	Entities     []ExposedEntity `json:"entities"`
}

// ExposedEntity shows only the variable the definition marks visible.
type ExposedEntity struct {
	ID           int    `json:"id"`
	DefinitionID int    `json:"definitionId"`
	Name         string `json:"name"`
	VariableName string `json:"variableName,omitempty"`
	Variable     int    `json:"variable,omitempty"`
}

type ExposedCard struct {
	ID           int    `json:"id"`
	DefinitionID int    `json:"definitionId,omitempty"`
	Name         string `json:"name,omitempty"`
}

// ExposeState projects s for viewer.
func ExposeState(s *GameState, viewer int) ExposedState {
	out := ExposedState{
		Viewer:      viewer,
		Phase:       s.Phase.String(),
		RoundNumber: s.RoundNumber,
		CurrentTurn: s.CurrentTurn,
		Winner:      s.Winner,
	}
	for who, p := range s.Players {
		out.Players[who] = exposePlayer(p, who == viewer)
	}
	return out
}

func exposePlayer(p *PlayerState, own bool) ExposedPlayer {
	ep := ExposedPlayer{
		Who:               p.Who,
		ActiveCharacterID: p.ActiveCharacterID,
		PileCount:         len(p.Piles),
		DiceCount:         len(p.Dice),
		DeclaredEnd:       p.DeclaredEnd,
		LegendUsed:        p.LegendUsed,
		CombatStatuses:    exposeEntities(p.CombatStatuses),
		Summons:           exposeEntities(p.Summons),
		Supports:          exposeEntities(p.Supports),
	}
	for _, ch := range p.Characters {
		ep.Characters = append(ep.Characters, ExposedCharacter{
			ID:           ch.ID,
			DefinitionID: ch.Definition.ID,
			Name:         ch.Definition.Name,
			Health:       ch.Health(),
			MaxHealth:    ch.Variables[VarMaxHealth],
			Energy:       ch.Variables[VarEnergy],
			MaxEnergy:    ch.Variables[VarMaxEnergy],
			Alive:        ch.Alive(),
			Aura:         ch.Aura().String(),
			Entities:     exposeEntities(ch.Entities),
		})
	}
	for _, c := range p.Hands {
		card := ExposedCard{ID: c.ID}
		if own {
			card.DefinitionID = c.Definition.ID
			card.Name = c.Definition.Name
		}
		ep.Hands = append(ep.Hands, card)
	}
	if own {
		ep.Dice = append([]DiceType(nil), p.Dice...)
	}
	return ep
}

func exposeEntities(list []*EntityState) []ExposedEntity {
	out := make([]ExposedEntity, 0, len(list))
	for _, e := range list {
		ee := ExposedEntity{ID: e.ID, DefinitionID: e.Definition.ID, Name: e.Definition.Name}
		if name := e.Definition.VisibleVarName; name != "" {
			ee.VariableName = name
			ee.Variable = e.Variables[name]
		}
		out = append(out, ee)
	}
	return out
}

// ExposedMutation is a mutation as one viewer may see it.
type ExposedMutation struct {
	Type    MutationKind `json:"type"`
	Payload Mutation     `json:"payload"`
}

// ExposeMutations redacts a slice of the mutation log for viewer. Randomness
// and log bookkeeping are dropped; card definitions the viewer may not know
// are zeroed.
func ExposeMutations(entries []MutationLogEntry, viewer int) []ExposedMutation {
	var out []ExposedMutation
	for _, e := range entries {
		if m, ok := ExposeMutation(e.Mutation, viewer); ok {
			out = append(out, ExposedMutation{Type: m.Kind(), Payload: m})
		}
	}
	return out
}

// ExposeMutation returns the redacted form of m, or false when the viewer
// sees nothing of it.
func ExposeMutation(m Mutation, viewer int) (Mutation, bool) {
	switch m := m.(type) {
	case StepRandom, ClearMutationLog, PushDamageLog, PushSkillLog:
		return nil, false
	case CreateCard:
		if m.Target == CardAreaPiles || m.Who != viewer {
			m.DefinitionID = 0
		}
		return m, true
	case ResetDice:
		if m.Who != viewer {
			m.Dice = nil
		}
		return m, true
	case SetPlayerFlag:
		if m.Flag != FlagDeclaredEnd && m.Flag != FlagLegendUsed {
			return nil, false
		}
		return m, true
	default:
		return m, true
	}
}
