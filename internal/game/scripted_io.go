package game

import (
	"context"
	"sync"
)

// ScriptedAction matches the first candidate of the given type whose
// non-zero fields agree.
type ScriptedAction struct {
	Type             ActionType
	SkillID          int
	CardDefinitionID int
	CharacterID      int
}

func (s ScriptedAction) matches(a Action) bool {
	return a.Type == s.Type &&
		(s.SkillID == 0 || s.SkillID == a.SkillID) &&
		(s.CardDefinitionID == 0 || s.CardDefinitionID == a.CardDefinitionID) &&
		(s.CharacterID == 0 || s.CharacterID == a.CharacterID)
}

// ScriptedIO is a PlayerIO driven by a queue of actions. It picks the first
// character as active, never rerolls or switches hands, and declares end
// once its queue is empty or the next entry has no legal match.
type ScriptedIO struct {
	mu            sync.Mutex
	Queue         []ScriptedAction
	Notifications []Notification
}

// NewScriptedIO returns a scripted player with the given action queue.
func NewScriptedIO(queue ...ScriptedAction) *ScriptedIO {
	return &ScriptedIO{Queue: queue}
}

func (s *ScriptedIO) Notify(_ context.Context, n Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Notifications = append(s.Notifications, n)
	return nil
}

func (s *ScriptedIO) ChooseActive(_ context.Context, req ChooseActiveRequest) (int, error) {
	return req.Candidates[0], nil
}

func (s *ScriptedIO) RerollDice(context.Context, RerollRequest) (RerollResponse, error) {
	return RerollResponse{}, nil
}

func (s *ScriptedIO) SwitchHands(context.Context, SwitchHandsRequest) (SwitchHandsResponse, error) {
	return SwitchHandsResponse{}, nil
}

func (s *ScriptedIO) Action(_ context.Context, req ActionRequest) (ActionResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.Queue) > 0 {
		next := s.Queue[0]
		for i, a := range req.Candidates {
			if !next.matches(a) {
				continue
			}
			cost, ok := PayWithOmni(a, req.Dice)
			if !ok {
				continue
			}
			s.Queue = s.Queue[1:]
			return ActionResponse{ChosenIndex: i, Cost: cost}, nil
		}
	}
	for i, a := range req.Candidates {
		if a.Type == ActionDeclareEnd {
			return ActionResponse{ChosenIndex: i}, nil
		}
	}
	return ActionResponse{}, nil
}

// PayWithOmni prefers paying a cost in Omni dice and falls back to AutoPay.
// Elemental tuning pays the first tunable die instead.
func PayWithOmni(a Action, pool []DiceType) ([]DiceType, bool) {
	if a.Type == ActionElementalTuning {
		for _, d := range pool {
			if d != DiceOmni && d != a.Element {
				return []DiceType{d}, true
			}
		}
		return nil, false
	}
	n := a.Cost.DiceCount()
	omni := 0
	for _, d := range pool {
		if d == DiceOmni {
			omni++
		}
	}
	if omni >= n {
		cost := make([]DiceType, n)
		for i := range cost {
			cost[i] = DiceOmni
		}
		return cost, true
	}
	return AutoPay(a.Cost, pool)
}

// Remaining reports how many scripted actions are still queued.
func (s *ScriptedIO) Remaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Queue)
}
