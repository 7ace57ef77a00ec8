package game

import (
	"encoding/json"
	"fmt"
)

// MutationKind tags a Mutation variant.
type MutationKind string

const (
	MutChangePhase                  MutationKind = "changePhase"
	MutStepRound                    MutationKind = "stepRound"
	MutSwitchTurn                   MutationKind = "switchTurn"
	MutSetWinner                    MutationKind = "setWinner"
	MutTransferCard                 MutationKind = "transferCard"
	MutSwitchActive                 MutationKind = "switchActive"
	MutDisposeCard                  MutationKind = "disposeCard"
	MutCreateCard                   MutationKind = "createCard"
	MutCreateCharacter              MutationKind = "createCharacter"
	MutCreateEntity                 MutationKind = "createEntity"
	MutDisposeEntity                MutationKind = "disposeEntity"
	MutModifyEntityVar              MutationKind = "modifyEntityVar"
	MutReplaceCharacterDefinition   MutationKind = "replaceCharacterDefinition"
	MutResetDice                    MutationKind = "resetDice"
	MutStepRandom                   MutationKind = "stepRandom"
	MutSetPlayerFlag                MutationKind = "setPlayerFlag"
	MutPushDamageLog                MutationKind = "pushDamageLog"
	MutPushSkillLog                 MutationKind = "pushSkillLog"
	MutIncreaseDisposedSupportCount MutationKind = "increaseDisposedSupportCount"
	MutClearMutationLog             MutationKind = "clearMutationLog"
)

// Mutation is one atomic edit of a GameState. The set of variants is closed:
// only the types in this file implement it.
type Mutation interface {
	Kind() MutationKind
	isMutation()
}

type ChangePhase struct {
	NewPhase Phase `json:"newPhase"`
}

type StepRound struct{}

type SwitchTurn struct{}

type SetWinner struct {
	Winner int `json:"winner"`
}

// TransferCard moves a card between a player's hands and piles.
type TransferCard struct {
	Who    int      `json:"who"`
	From   CardArea `json:"from"`
	To     CardArea `json:"to"`
	CardID int      `json:"cardId"`
}

type SwitchActive struct {
	Who         int `json:"who"`
	CharacterID int `json:"characterId"`
}

// DisposeCard removes a card from hands. Used is false when the card is
// discarded without being played.
type DisposeCard struct {
	Who    int  `json:"who"`
	CardID int  `json:"cardId"`
	Used   bool `json:"used"`
}

// CreateCard adds a card. ID is a placeholder; Apply assigns the real one.
type CreateCard struct {
	Who          int      `json:"who"`
	Target       CardArea `json:"target"`
	ID           int      `json:"id"`
	DefinitionID int      `json:"definitionId"`
}

// CreateCharacter adds a character. ID is a placeholder.
type CreateCharacter struct {
	Who          int `json:"who"`
	ID           int `json:"id"`
	DefinitionID int `json:"definitionId"`
}

// CreateEntity adds an entity with fully computed variables. ID is a
// placeholder.
type CreateEntity struct {
	Where        EntityArea `json:"where"`
	ID           int        `json:"id"`
	DefinitionID int        `json:"definitionId"`
	Variables    Vars       `json:"variables"`
}

type DisposeEntity struct {
	EntityID int `json:"entityId"`
}

// ModifyEntityVar sets a variable of a character or an entity.
type ModifyEntityVar struct {
	EntityID int    `json:"entityId"`
	VarName  string `json:"varName"`
	Value    int    `json:"value"`
}

type ReplaceCharacterDefinition struct {
	CharacterID  int `json:"characterId"`
	DefinitionID int `json:"definitionId"`
}

type ResetDice struct {
	Who  int        `json:"who"`
	Dice []DiceType `json:"dice"`
}

// StepRandom carries the next PRNG value, already drawn.
type StepRandom struct {
	Value uint64 `json:"value"`
}

type SetPlayerFlag struct {
	Who   int        `json:"who"`
	Flag  PlayerFlag `json:"flag"`
	Value bool       `json:"value"`
}

type PushDamageLog struct {
	Damage DamageInfo `json:"damage"`
}

type PushSkillLog struct {
	Skill SkillLogEntry `json:"skill"`
}

type IncreaseDisposedSupportCount struct {
	Who int `json:"who"`
}

type ClearMutationLog struct{}

func (ChangePhase) Kind() MutationKind                  { return MutChangePhase }
func (StepRound) Kind() MutationKind                    { return MutStepRound }
func (SwitchTurn) Kind() MutationKind                   { return MutSwitchTurn }
func (SetWinner) Kind() MutationKind                    { return MutSetWinner }
func (TransferCard) Kind() MutationKind                 { return MutTransferCard }
func (SwitchActive) Kind() MutationKind                 { return MutSwitchActive }
func (DisposeCard) Kind() MutationKind                  { return MutDisposeCard }
func (CreateCard) Kind() MutationKind                   { return MutCreateCard }
func (CreateCharacter) Kind() MutationKind              { return MutCreateCharacter }
func (CreateEntity) Kind() MutationKind                 { return MutCreateEntity }
func (DisposeEntity) Kind() MutationKind                { return MutDisposeEntity }
func (ModifyEntityVar) Kind() MutationKind              { return MutModifyEntityVar }
func (ReplaceCharacterDefinition) Kind() MutationKind   { return MutReplaceCharacterDefinition }
func (ResetDice) Kind() MutationKind                    { return MutResetDice }
func (StepRandom) Kind() MutationKind                   { return MutStepRandom }
func (SetPlayerFlag) Kind() MutationKind                { return MutSetPlayerFlag }
func (PushDamageLog) Kind() MutationKind                { return MutPushDamageLog }
func (PushSkillLog) Kind() MutationKind                 { return MutPushSkillLog }
func (IncreaseDisposedSupportCount) Kind() MutationKind { return MutIncreaseDisposedSupportCount }
func (ClearMutationLog) Kind() MutationKind             { return MutClearMutationLog }

func (ChangePhase) isMutation()                  {}
func (StepRound) isMutation()                    {}
func (SwitchTurn) isMutation()                   {}
func (SetWinner) isMutation()                    {}
func (TransferCard) isMutation()                 {}
func (SwitchActive) isMutation()                 {}
func (DisposeCard) isMutation()                  {}
func (CreateCard) isMutation()                   {}
func (CreateCharacter) isMutation()              {}
func (CreateEntity) isMutation()                 {}
func (DisposeEntity) isMutation()                {}
func (ModifyEntityVar) isMutation()              {}
func (ReplaceCharacterDefinition) isMutation()   {}
func (ResetDice) isMutation()                    {}
func (StepRandom) isMutation()                   {}
func (SetPlayerFlag) isMutation()                {}
func (PushDamageLog) isMutation()                {}
func (PushSkillLog) isMutation()                 {}
func (IncreaseDisposedSupportCount) isMutation() {}
func (ClearMutationLog) isMutation()             {}

// --- Wire encoding ---

type mutationEnvelope struct {
	Type    MutationKind    `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// MarshalMutation encodes a mutation as {"type": kind, "payload": {...}}.
func MarshalMutation(m Mutation) ([]byte, error) {
	payload, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return json.Marshal(mutationEnvelope{Type: m.Kind(), Payload: payload})
}

// UnmarshalMutation decodes the output of MarshalMutation.
func UnmarshalMutation(data []byte) (Mutation, error) {
	var env mutationEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode mutation envelope: %w", err)
	}
	var (
		m   Mutation
		err error
	)
	switch env.Type {
	case MutChangePhase:
		m = decodeAs[ChangePhase](env.Payload, &err)
	case MutStepRound:
		m = StepRound{}
	case MutSwitchTurn:
		m = SwitchTurn{}
	case MutSetWinner:
		m = decodeAs[SetWinner](env.Payload, &err)
	case MutTransferCard:
		m = decodeAs[TransferCard](env.Payload, &err)
	case MutSwitchActive:
		m = decodeAs[SwitchActive](env.Payload, &err)
	case MutDisposeCard:
		m = decodeAs[DisposeCard](env.Payload, &err)
	case MutCreateCard:
		m = decodeAs[CreateCard](env.Payload, &err)
	case MutCreateCharacter:
		m = decodeAs[CreateCharacter](env.Payload, &err)
	case MutCreateEntity:
		m = decodeAs[CreateEntity](env.Payload, &err)
	case MutDisposeEntity:
		m = decodeAs[DisposeEntity](env.Payload, &err)
	case MutModifyEntityVar:
		m = decodeAs[ModifyEntityVar](env.Payload, &err)
	case MutReplaceCharacterDefinition:
		m = decodeAs[ReplaceCharacterDefinition](env.Payload, &err)
	case MutResetDice:
		m = decodeAs[ResetDice](env.Payload, &err)
	case MutStepRandom:
		m = decodeAs[StepRandom](env.Payload, &err)
	case MutSetPlayerFlag:
		m = decodeAs[SetPlayerFlag](env.Payload, &err)
	case MutPushDamageLog:
		m = decodeAs[PushDamageLog](env.Payload, &err)
	case MutPushSkillLog:
		m = decodeAs[PushSkillLog](env.Payload, &err)
	case MutIncreaseDisposedSupportCount:
		m = decodeAs[IncreaseDisposedSupportCount](env.Payload, &err)
	case MutClearMutationLog:
		m = ClearMutationLog{}
	default:
		return nil, fmt.Errorf("unknown mutation type %q", env.Type)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", env.Type, err)
	}
	return m, nil
}

func decodeAs[T Mutation](payload json.RawMessage, errp *error) Mutation {
	var v T
	*errp = json.Unmarshal(payload, &v)
	return v
}
