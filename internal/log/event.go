package log

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// EventType enumerates all observable match events.
type EventType int

const (
	EventPhaseChange EventType = iota
	EventNewRound
	EventDraw
	EventSwitchHands
	EventReroll
	EventChooseActive
	EventUseSkill
	EventPlayCard
	EventSwitchActive
	EventElementalTuning
	EventDeclareEnd
	EventDamage
	EventHeal
	EventReaction
	EventEnter
	EventDispose
	EventDefeated
	EventRevive
	EventGiveUp
	EventWin
	EventDraw_Tie
)

var eventNames = map[EventType]string{
	EventPhaseChange:     "PhaseChange",
	EventNewRound:        "NewRound",
	EventDraw:            "Draw",
	EventSwitchHands:     "SwitchHands",
	EventReroll:          "Reroll",
	EventChooseActive:    "ChooseActive",
	EventUseSkill:        "UseSkill",
	EventPlayCard:        "PlayCard",
	EventSwitchActive:    "SwitchActive",
	EventElementalTuning: "ElementalTuning",
	EventDeclareEnd:      "DeclareEnd",
	EventDamage:          "Damage",
	EventHeal:            "Heal",
	EventReaction:        "Reaction",
	EventEnter:           "Enter",
	EventDispose:         "Dispose",
	EventDefeated:        "Defeated",
	EventRevive:          "Revive",
	EventGiveUp:          "GiveUp",
	EventWin:             "Win",
	EventDraw_Tie:        "Draw(tie)",
}

func (e EventType) String() string {
	if name, ok := eventNames[e]; ok {
		return name
	}
	return "Unknown"
}

var titler = cases.Title(language.English)

// Label returns a display form of the type, e.g. "Elemental Tuning".
func (e EventType) Label() string {
	name := e.String()
	var sb strings.Builder
	for i, r := range name {
		if i > 0 && r >= 'A' && r <= 'Z' {
			sb.WriteByte(' ')
		}
		sb.WriteRune(r)
	}
	return titler.String(strings.ToLower(sb.String()))
}

// GameEvent represents a single observable event in a match.
type GameEvent struct {
	Seq     int       `json:"seq"`     // monotonic sequence number
	Round   int       `json:"round"`   // round number, 0 before the first roll
	Phase   string    `json:"phase"`   // current phase name
	Player  int       `json:"player"`  // acting player (0 or 1)
	Type    EventType `json:"type"`    // event type
	Card    string    `json:"card"`    // card, character or entity name (if applicable)
	Details string    `json:"details"` // human-readable detail string
}
