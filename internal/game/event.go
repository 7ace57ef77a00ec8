package game

import "fmt"

// EventName identifies what a triggered skill listens for.
type EventName int

const (
	EventNone EventName = iota
	OnBattleBegin
	OnActionPhase
	OnEndPhase
	OnSkill
	OnSwitchActive
	OnPlayCard
	OnDeclareEnd
	OnDamageOrHeal
	OnReaction
	OnEnter
	OnDispose
	OnRevive
	OnDefeated
	OnReplaceCharacterDefinition

	// Inline events run to completion inside the primitive that raised them.
	ModifyDamage0
	ModifyDamage1
	OnBeforeDispose

	// Request events are routed to the orchestrator instead of listeners.
	RequestSwitchHands
	RequestReroll
	RequestUseSkill
)

func (e EventName) String() string {
	switch e {
	case OnBattleBegin:
		return "onBattleBegin"
	case OnActionPhase:
		return "onActionPhase"
	case OnEndPhase:
		return "onEndPhase"
	case OnSkill:
		return "onSkill"
	case OnSwitchActive:
		return "onSwitchActive"
	case OnPlayCard:
		return "onPlayCard"
	case OnDeclareEnd:
		return "onDeclareEnd"
	case OnDamageOrHeal:
		return "onDamageOrHeal"
	case OnReaction:
		return "onReaction"
	case OnEnter:
		return "onEnter"
	case OnDispose:
		return "onDispose"
	case OnRevive:
		return "onRevive"
	case OnDefeated:
		return "onDefeated"
	case OnReplaceCharacterDefinition:
		return "onReplaceCharacterDefinition"
	case ModifyDamage0:
		return "modifyDamage0"
	case ModifyDamage1:
		return "modifyDamage1"
	case OnBeforeDispose:
		return "onBeforeDispose"
	case RequestSwitchHands:
		return "requestSwitchHands"
	case RequestReroll:
		return "requestReroll"
	case RequestUseSkill:
		return "requestUseSkill"
	default:
		return fmt.Sprintf("event(%d)", int(e))
	}
}

func (e EventName) IsInline() bool {
	return e == ModifyDamage0 || e == ModifyDamage1 || e == OnBeforeDispose
}

func (e EventName) IsRequest() bool {
	return e == RequestSwitchHands || e == RequestReroll || e == RequestUseSkill
}

// EventArg is the payload of an event. Listeners type-assert it to the
// concrete payload of the event they listen for.
type EventArg any

// Event is a queued (name, payload) pair.
type Event struct {
	Name EventName
	Arg  EventArg
}

// SkillInfo describes one skill invocation.
type SkillInfo struct {
	CallerID   int
	Definition *SkillDefinition
	FromCardID int
	RequestBy  int
	Charged    bool
	Plunging   bool
}

// PlayerArg is the payload of phase and declare-end events.
type PlayerArg struct {
	Who int
}

type SwitchInfo struct {
	Who    int
	FromID int
	ToID   int
}

type PlayCardInfo struct {
	Who          int
	CardID       int
	DefinitionID int
	Targets      []int
}

type ReactionInfo struct {
	Reaction Reaction
	TargetID int
	SkillID  int
	Damage   *DamageInfo
}

type EnterInfo struct {
	EntityID     int
	DefinitionID int
	Area         EntityArea
	Overridden   *EntityState
}

type DisposeInfo struct {
	Entity *EntityState
	Area   EntityArea
}

type CharacterArg struct {
	CharacterID int
	Who         int
}

type ReplaceDefinitionInfo struct {
	CharacterID int
	OldID       int
	NewID       int
}

type SwitchHandsArg struct {
	Who int
}

type RerollArg struct {
	Who   int
	Times int
}

type UseSkillArg struct {
	Who      int
	CallerID int
	SkillID  int
}

// DamageModifier is the mutable payload of the two damage modification
// stages. Changes made by one listener are seen by the next.
type DamageModifier struct {
	Damage DamageInfo
	stage  EventName
}

func newDamageModifier(stage EventName, d DamageInfo) *DamageModifier {
	return &DamageModifier{Damage: d, stage: stage}
}

// Stage is ModifyDamage0 or ModifyDamage1.
func (m *DamageModifier) Stage() EventName {
	return m.stage
}

// IncreaseDamage adds to a damage instance. Heals and pure applications are
// left alone.
func (m *DamageModifier) IncreaseDamage(n int) {
	if !m.Damage.IsDamage || m.Damage.Type == DamageHeal {
		return
	}
	m.Damage.Value += n
}

// ChangeDamageType converts the damage element before it is applied. Only
// effective in the first stage, and never on piercing damage.
func (m *DamageModifier) ChangeDamageType(t DamageType) {
	if m.stage != ModifyDamage0 || m.Damage.Type == DamagePiercing || m.Damage.Type == DamageHeal {
		return
	}
	m.Damage.Type = t
}

// MultiplyDamage scales the damage. Only effective in the second stage.
func (m *DamageModifier) MultiplyDamage(k int) {
	if m.stage != ModifyDamage1 || !m.Damage.IsDamage {
		return
	}
	m.Damage.Value *= k
}

// DecreaseDamage lowers the damage, flooring at zero, and returns how much
// was actually absorbed. Only effective in the second stage.
func (m *DamageModifier) DecreaseDamage(n int) int {
	if m.stage != ModifyDamage1 || !m.Damage.IsDamage {
		return 0
	}
	absorbed := min(n, m.Damage.Value)
	m.Damage.Value -= absorbed
	return absorbed
}
