package log

import (
	"fmt"
	"io"
	"strings"
	"sync"
)

// EventLogger is the interface for logging match events.
type EventLogger interface {
	Log(event GameEvent)
	Events() []GameEvent
}

// --- MemoryLogger: stores events in memory for test assertions ---

type MemoryLogger struct {
	mu     sync.Mutex
	events []GameEvent
	seq    int
}

func NewMemoryLogger() *MemoryLogger {
	return &MemoryLogger{}
}

func (l *MemoryLogger) Log(event GameEvent) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.seq++
	event.Seq = l.seq
	l.events = append(l.events, event)
}

// Events returns a snapshot of the logged events.
func (l *MemoryLogger) Events() []GameEvent {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.events[:len(l.events):len(l.events)]
}

// EventsOfType returns all events matching the given type.
func (l *MemoryLogger) EventsOfType(t EventType) []GameEvent {
	var result []GameEvent
	for _, e := range l.Events() {
		if e.Type == t {
			result = append(result, e)
		}
	}
	return result
}

// LastEvent returns the most recent event, or a zero event if none.
func (l *MemoryLogger) LastEvent() GameEvent {
	events := l.Events()
	if len(events) == 0 {
		return GameEvent{}
	}
	return events[len(events)-1]
}

// --- TextLogger: writes human-readable lines to an io.Writer ---

type TextLogger struct {
	MemoryLogger
	w io.Writer
}

func NewTextLogger(w io.Writer) *TextLogger {
	return &TextLogger{w: w}
}

func (l *TextLogger) Log(event GameEvent) {
	l.MemoryLogger.Log(event)
	fmt.Fprintln(l.w, FormatEvent(event))
}

// --- Formatting ---

// playerName returns "P1" or "P2" for display.
func playerName(p int) string {
	return fmt.Sprintf("P%d", p+1)
}

// FormatEvent formats a single event as a human-readable line.
func FormatEvent(e GameEvent) string {
	return fmt.Sprintf("R%-2d %-12s| %s", e.Round, e.Phase, e.Details)
}

// FormatAll formats all events as a multi-line string.
func FormatAll(events []GameEvent) string {
	var sb strings.Builder
	for _, e := range events {
		sb.WriteString(FormatEvent(e))
		sb.WriteByte('\n')
	}
	return sb.String()
}

// --- Helper constructors for common events ---

func NewPhaseChangeEvent(round int, phase string) GameEvent {
	return GameEvent{
		Round:   round,
		Phase:   phase,
		Type:    EventPhaseChange,
		Details: fmt.Sprintf("Phase → %s", phase),
	}
}

func NewRoundEvent(round int) GameEvent {
	return GameEvent{
		Round:   round,
		Type:    EventNewRound,
		Details: fmt.Sprintf("=== Round %d ===", round),
	}
}

func NewDrawEvent(round int, phase string, player int, count int) GameEvent {
	return GameEvent{
		Round:   round,
		Phase:   phase,
		Player:  player,
		Type:    EventDraw,
		Details: fmt.Sprintf("%s draws %d card(s)", playerName(player), count),
	}
}

func NewSwitchHandsEvent(round int, phase string, player int, count int) GameEvent {
	return GameEvent{
		Round:   round,
		Phase:   phase,
		Player:  player,
		Type:    EventSwitchHands,
		Details: fmt.Sprintf("%s switches %d card(s)", playerName(player), count),
	}
}

func NewRerollEvent(round int, phase string, player int, count int) GameEvent {
	return GameEvent{
		Round:   round,
		Phase:   phase,
		Player:  player,
		Type:    EventReroll,
		Details: fmt.Sprintf("%s rerolls %d dice", playerName(player), count),
	}
}

func NewChooseActiveEvent(round int, phase string, player int, name string) GameEvent {
	return GameEvent{
		Round:   round,
		Phase:   phase,
		Player:  player,
		Type:    EventChooseActive,
		Card:    name,
		Details: fmt.Sprintf("%s chooses %s as active character", playerName(player), name),
	}
}

func NewSkillEvent(round int, phase string, player int, name string, skillID int, charged, plunging bool) GameEvent {
	var mods []string
	if charged {
		mods = append(mods, "charged")
	}
	if plunging {
		mods = append(mods, "plunging")
	}
	details := fmt.Sprintf("%s's %s uses skill %d", playerName(player), name, skillID)
	if len(mods) > 0 {
		details += " (" + strings.Join(mods, ", ") + ")"
	}
	return GameEvent{
		Round:   round,
		Phase:   phase,
		Player:  player,
		Type:    EventUseSkill,
		Card:    name,
		Details: details,
	}
}

func NewPlayCardEvent(round int, phase string, player int, cardName string) GameEvent {
	return GameEvent{
		Round:   round,
		Phase:   phase,
		Player:  player,
		Type:    EventPlayCard,
		Card:    cardName,
		Details: fmt.Sprintf("%s plays %s", playerName(player), cardName),
	}
}

func NewSwitchActiveEvent(round int, phase string, player int, from, to string) GameEvent {
	return GameEvent{
		Round:   round,
		Phase:   phase,
		Player:  player,
		Type:    EventSwitchActive,
		Card:    to,
		Details: fmt.Sprintf("%s switches %s → %s", playerName(player), from, to),
	}
}

func NewTuningEvent(round int, phase string, player int, from, to string) GameEvent {
	return GameEvent{
		Round:   round,
		Phase:   phase,
		Player:  player,
		Type:    EventElementalTuning,
		Details: fmt.Sprintf("%s tunes a %s die into %s", playerName(player), from, to),
	}
}

func NewDeclareEndEvent(round int, phase string, player int) GameEvent {
	return GameEvent{
		Round:   round,
		Phase:   phase,
		Player:  player,
		Type:    EventDeclareEnd,
		Details: fmt.Sprintf("%s declares end", playerName(player)),
	}
}

func NewDamageEvent(round int, phase string, player int, target, damageType string, value int) GameEvent {
	return GameEvent{
		Round:   round,
		Phase:   phase,
		Player:  player,
		Type:    EventDamage,
		Card:    target,
		Details: fmt.Sprintf("%s's %s takes %d %s damage", playerName(player), target, value, damageType),
	}
}

func NewHealEvent(round int, phase string, player int, target string, value int) GameEvent {
	return GameEvent{
		Round:   round,
		Phase:   phase,
		Player:  player,
		Type:    EventHeal,
		Card:    target,
		Details: fmt.Sprintf("%s's %s heals %d", playerName(player), target, value),
	}
}

func NewReactionEvent(round int, phase string, player int, target, reaction string) GameEvent {
	return GameEvent{
		Round:   round,
		Phase:   phase,
		Player:  player,
		Type:    EventReaction,
		Card:    target,
		Details: fmt.Sprintf("%s triggers on %s's %s", reaction, playerName(player), target),
	}
}

func NewEnterEvent(round int, phase string, player int, name string) GameEvent {
	return GameEvent{
		Round:   round,
		Phase:   phase,
		Player:  player,
		Type:    EventEnter,
		Card:    name,
		Details: fmt.Sprintf("%s enters for %s", name, playerName(player)),
	}
}

func NewDisposeEvent(round int, phase string, player int, name string) GameEvent {
	return GameEvent{
		Round:   round,
		Phase:   phase,
		Player:  player,
		Type:    EventDispose,
		Card:    name,
		Details: fmt.Sprintf("%s's %s is disposed", playerName(player), name),
	}
}

func NewDefeatedEvent(round int, phase string, player int, name string) GameEvent {
	return GameEvent{
		Round:   round,
		Phase:   phase,
		Player:  player,
		Type:    EventDefeated,
		Card:    name,
		Details: fmt.Sprintf("%s's %s is defeated", playerName(player), name),
	}
}

func NewReviveEvent(round int, phase string, player int, name string) GameEvent {
	return GameEvent{
		Round:   round,
		Phase:   phase,
		Player:  player,
		Type:    EventRevive,
		Card:    name,
		Details: fmt.Sprintf("%s's %s is revived", playerName(player), name),
	}
}

func NewGiveUpEvent(round int, phase string, player int) GameEvent {
	return GameEvent{
		Round:   round,
		Phase:   phase,
		Player:  player,
		Type:    EventGiveUp,
		Details: fmt.Sprintf("%s gives up", playerName(player)),
	}
}

func NewWinEvent(round int, phase string, winner int, reason string) GameEvent {
	return GameEvent{
		Round:   round,
		Phase:   phase,
		Player:  winner,
		Type:    EventWin,
		Details: fmt.Sprintf("%s wins! (%s)", playerName(winner), reason),
	}
}

func NewTieEvent(round int, phase string, reason string) GameEvent {
	return GameEvent{
		Round:   round,
		Phase:   phase,
		Player:  -1,
		Type:    EventDraw_Tie,
		Details: fmt.Sprintf("Draw (%s)", reason),
	}
}
