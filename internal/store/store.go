// Package store persists finished matches: their serialized log and the
// mutation records needed to replay them.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNotFound indicates no match has the requested id.
	ErrNotFound = errors.New("match not found")
	// ErrAlreadyExists indicates a match id is already stored.
	ErrAlreadyExists = errors.New("match already exists")
)

// Match is one stored match. Log holds replay.Serialize output and
// Mutations the JSON encoded replay records.
type Match struct {
	ID        uuid.UUID `json:"id"`
	Seed      int64     `json:"seed"`
	Winner    int       `json:"winner"`
	Rounds    int       `json:"rounds"`
	Log       []byte    `json:"log"`
	Mutations []byte    `json:"mutations,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// MatchStore saves and loads matches.
type MatchStore interface {
	SaveMatch(ctx context.Context, m Match) error
	LoadMatch(ctx context.Context, id uuid.UUID) (Match, error)
	// ListMatches returns up to limit matches, newest first, without their
	// logs.
	ListMatches(ctx context.Context, limit int) ([]Match, error)
	Close() error
}

// Nop discards everything. It backs the "none" store kind.
type Nop struct{}

func (Nop) SaveMatch(context.Context, Match) error { return nil }

func (Nop) LoadMatch(context.Context, uuid.UUID) (Match, error) { return Match{}, ErrNotFound }

func (Nop) ListMatches(context.Context, int) ([]Match, error) { return nil, nil }

func (Nop) Close() error { return nil }

// prepare fills in a missing id and creation time.
func prepare(m Match) Match {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}
	m.CreatedAt = m.CreatedAt.UTC()
	return m
}
