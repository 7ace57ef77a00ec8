package game

import "github.com/peterkuimelis/gitcg/internal/log"

// LogEntry is one point of a match history: the full state at an I/O point
// and the log lines produced since the previous entry. CanResume marks
// entries taken right before an action choice, where a match could be picked
// up again.
type LogEntry struct {
	State     *GameState      `json:"state"`
	Events    []log.GameEvent `json:"events"`
	CanResume bool            `json:"canResume"`
}
