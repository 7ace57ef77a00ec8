package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/peterkuimelis/gitcg/internal/store/migrations"
)

// SQLiteStore keeps matches in a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens the database at path and applies the embedded
// migrations. ":memory:" gives a private in-memory database.
func OpenSQLite(path string) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := path
	if path != ":memory:" {
		dsn = path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite store: %w", err)
	}
	// Each connection to ":memory:" is its own database.
	db.SetMaxOpenConns(1)

	ctx := context.Background()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite store: %w", err)
	}
	if err := ApplyMigrations(ctx, db, migrations.FS, "."); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate sqlite store: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *SQLiteStore) SaveMatch(ctx context.Context, m Match) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m = prepare(m)
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO matches (id, seed, winner, rounds, log, mutations, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?)`,
		m.ID.String(), m.Seed, m.Winner, m.Rounds, m.Log, m.Mutations, toMillis(m.CreatedAt),
	)
	if err != nil {
		if isConstraintError(err) {
			return fmt.Errorf("%w: %s", ErrAlreadyExists, m.ID)
		}
		return fmt.Errorf("save match %s: %w", m.ID, err)
	}
	return nil
}

func (s *SQLiteStore) LoadMatch(ctx context.Context, id uuid.UUID) (Match, error) {
	if err := ctx.Err(); err != nil {
		return Match{}, err
	}
	row := s.db.QueryRowContext(ctx,
		`SELECT id, seed, winner, rounds, log, mutations, created_at FROM matches WHERE id = ?`,
		id.String(),
	)
	m, err := scanMatch(row.Scan, true)
	if errors.Is(err, sql.ErrNoRows) {
		return Match{}, ErrNotFound
	}
	if err != nil {
		return Match{}, fmt.Errorf("load match %s: %w", id, err)
	}
	return m, nil
}

func (s *SQLiteStore) ListMatches(ctx context.Context, limit int) ([]Match, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		return nil, nil
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, seed, winner, rounds, created_at FROM matches
ORDER BY created_at DESC, id ASC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}
	defer rows.Close()

	var out []Match
	for rows.Next() {
		m, err := scanMatch(rows.Scan, false)
		if err != nil {
			return nil, fmt.Errorf("scan match: %w", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}
	return out, nil
}

func scanMatch(scan func(dest ...any) error, withLog bool) (Match, error) {
	var (
		m       Match
		id      string
		created int64
	)
	var err error
	if withLog {
		err = scan(&id, &m.Seed, &m.Winner, &m.Rounds, &m.Log, &m.Mutations, &created)
	} else {
		err = scan(&id, &m.Seed, &m.Winner, &m.Rounds, &created)
	}
	if err != nil {
		return Match{}, err
	}
	if m.ID, err = uuid.Parse(id); err != nil {
		return Match{}, fmt.Errorf("parse match id %q: %w", id, err)
	}
	m.CreatedAt = fromMillis(created)
	return m, nil
}

func toMillis(t time.Time) int64 {
	return t.UTC().UnixMilli()
}

func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

func isConstraintError(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "constraint failed")
}
