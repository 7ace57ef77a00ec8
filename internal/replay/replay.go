package replay

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/peterkuimelis/gitcg/internal/game"
)

var (
	// ErrInitialStateRequired indicates a missing starting state.
	ErrInitialStateRequired = errors.New("initial state is required")
	// ErrSequenceGap indicates a record out of order or missing.
	ErrSequenceGap = errors.New("mutation sequence gap")
	// ErrRoundMismatch indicates a record applied in a different round than
	// it was recorded in.
	ErrRoundMismatch = errors.New("mutation round mismatch")
)

// Record is one applied mutation with its 1-based position in the match.
type Record struct {
	Seq      int
	Round    int
	Mutation game.Mutation
}

type wireRecord struct {
	Seq      int             `json:"seq"`
	Round    int             `json:"round"`
	Mutation json.RawMessage `json:"mutation"`
}

func (r Record) MarshalJSON() ([]byte, error) {
	m, err := game.MarshalMutation(r.Mutation)
	if err != nil {
		return nil, err
	}
	return json.Marshal(wireRecord{Seq: r.Seq, Round: r.Round, Mutation: m})
}

func (r *Record) UnmarshalJSON(data []byte) error {
	var w wireRecord
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	m, err := game.UnmarshalMutation(w.Mutation)
	if err != nil {
		return err
	}
	*r = Record{Seq: w.Seq, Round: w.Round, Mutation: m}
	return nil
}

// Records numbers a state's mutation log.
func Records(entries []game.MutationLogEntry) []Record {
	out := make([]Record, len(entries))
	for i, e := range entries {
		out[i] = Record{Seq: i + 1, Round: e.RoundNumber, Mutation: e.Mutation}
	}
	return out
}

// Options bounds a replay. Zero values replay everything.
type Options struct {
	AfterSeq int
	UntilSeq int
}

// Result captures replay outcomes.
type Result struct {
	State   *game.GameState
	LastSeq int
	Applied int
}

// Replay applies records in order on top of initial. initial must be the
// state right after record AfterSeq, normally a fresh game.NewGameState with
// the match's rules. Records at or before AfterSeq are skipped.
func Replay(initial *game.GameState, records []Record, opts Options) (Result, error) {
	if initial == nil {
		return Result{}, ErrInitialStateRequired
	}
	result := Result{State: initial, LastSeq: opts.AfterSeq}
	for _, rec := range records {
		if rec.Seq <= opts.AfterSeq {
			continue
		}
		if opts.UntilSeq > 0 && rec.Seq > opts.UntilSeq {
			break
		}
		if expected := result.LastSeq + 1; rec.Seq != expected {
			return result, fmt.Errorf("%w: expected %d got %d", ErrSequenceGap, expected, rec.Seq)
		}
		next, err := game.Apply(result.State, rec.Mutation)
		if err != nil {
			return result, fmt.Errorf("apply seq %d: %w", rec.Seq, err)
		}
		if next.RoundNumber != rec.Round {
			return result, fmt.Errorf("%w: seq %d recorded in round %d, replayed in %d",
				ErrRoundMismatch, rec.Seq, rec.Round, next.RoundNumber)
		}
		result.State = next
		result.LastSeq = rec.Seq
		result.Applied++
	}
	return result, nil
}

// Recorder collects the log entries of a running match. Its Record method
// fits game.MatchConfig.OnLogEntry.
type Recorder struct {
	mu      sync.Mutex
	entries []game.LogEntry
}

func (r *Recorder) Record(e game.LogEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, e)
}

// Entries returns a copy of the collected entries.
func (r *Recorder) Entries() []game.LogEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]game.LogEntry, len(r.entries))
	copy(out, r.entries)
	return out
}

// LastResumable returns the latest entry a match could resume from.
func (r *Recorder) LastResumable() (game.LogEntry, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.entries) - 1; i >= 0; i-- {
		if r.entries[i].CanResume {
			return r.entries[i], true
		}
	}
	return game.LogEntry{}, false
}

// Marshal serializes the collected entries.
func (r *Recorder) Marshal() ([]byte, error) {
	return Serialize(r.Entries())
}
