package store

import (
	"context"
	"testing"
	"testing/fstest"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/peterkuimelis/gitcg/internal/config"
)

func openSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func openRedis(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	s := NewRedisStore(mr.Addr(), nil)
	t.Cleanup(func() { _ = s.Close() })
	return s, mr
}

func sampleMatch(created time.Time) Match {
	return Match{
		ID:        uuid.New(),
		Seed:      42,
		Winner:    1,
		Rounds:    5,
		Log:       []byte(`{"store":[],"log":[]}`),
		Mutations: []byte(`[]`),
		CreatedAt: created,
	}
}

// exerciseStore runs the behavior every MatchStore shares.
func exerciseStore(t *testing.T, s MatchStore) {
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	first := sampleMatch(base)
	second := sampleMatch(base.Add(time.Minute))
	require.NoError(t, s.SaveMatch(ctx, first))
	require.NoError(t, s.SaveMatch(ctx, second))

	got, err := s.LoadMatch(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, got.ID)
	assert.Equal(t, first.Seed, got.Seed)
	assert.Equal(t, first.Winner, got.Winner)
	assert.Equal(t, first.Rounds, got.Rounds)
	assert.Equal(t, first.Log, got.Log)
	assert.Equal(t, first.Mutations, got.Mutations)
	assert.True(t, first.CreatedAt.Equal(got.CreatedAt))

	err = s.SaveMatch(ctx, first)
	assert.ErrorIs(t, err, ErrAlreadyExists)

	_, err = s.LoadMatch(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)

	list, err := s.ListMatches(ctx, 10)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)
	assert.Equal(t, first.ID, list[1].ID)
	assert.Nil(t, list[0].Log)

	list, err = s.ListMatches(ctx, 1)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, second.ID, list[0].ID)

	list, err = s.ListMatches(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestSQLiteStore(t *testing.T) {
	exerciseStore(t, openSQLite(t))
}

func TestRedisStore(t *testing.T) {
	s, _ := openRedis(t)
	exerciseStore(t, s)
}

func TestSaveAssignsIDAndTime(t *testing.T) {
	s, mr := openRedis(t)
	ctx := context.Background()
	require.NoError(t, s.SaveMatch(ctx, Match{Log: []byte(`{}`)}))

	list, err := s.ListMatches(ctx, 5)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.NotEqual(t, uuid.Nil, list[0].ID)
	assert.False(t, list[0].CreatedAt.IsZero())
	assert.True(t, mr.Exists(matchKey(list[0].ID)))
}

func TestRedisListSkipsMissing(t *testing.T) {
	s, mr := openRedis(t)
	ctx := context.Background()
	m := sampleMatch(time.Now())
	require.NoError(t, s.SaveMatch(ctx, m))
	mr.Del(matchKey(m.ID))
	_, err := mr.Lpush(matchIndexKey, "not-a-uuid")
	require.NoError(t, err)

	list, err := s.ListMatches(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestRedisWaitForConnection(t *testing.T) {
	s, mr := openRedis(t)
	ctx := context.Background()
	require.NoError(t, s.WaitForConnection(ctx, 1, time.Millisecond))

	mr.Close()
	err := s.WaitForConnection(ctx, 2, time.Millisecond)
	assert.Error(t, err)
}

func TestApplyMigrationsIsIdempotent(t *testing.T) {
	s := openSQLite(t)
	ctx := context.Background()
	fsys := fstest.MapFS{
		"0002_extra.sql": {Data: []byte("-- +migrate Up\nCREATE TABLE extra (id INTEGER);\n-- +migrate Down\nDROP TABLE extra;\n")},
	}
	require.NoError(t, ApplyMigrations(ctx, s.db, fsys, "."))
	require.NoError(t, ApplyMigrations(ctx, s.db, fsys, "."))

	var n int
	require.NoError(t, s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM schema_migrations`).Scan(&n))
	assert.Equal(t, 2, n)
}

func TestUpSection(t *testing.T) {
	assert.Equal(t, "\nA;\n", upSection("-- +migrate Up\nA;\n-- +migrate Down\nB;"))
	assert.Equal(t, "A;", upSection("A;"))
}

func TestOpenSelectsStore(t *testing.T) {
	ctx := context.Background()

	s, err := Open(ctx, &config.Config{StoreKind: config.StoreNone}, nil)
	require.NoError(t, err)
	assert.IsType(t, Nop{}, s)

	s, err = Open(ctx, &config.Config{StoreKind: config.StoreSQLite, SQLitePath: ":memory:"}, nil)
	require.NoError(t, err)
	assert.IsType(t, &SQLiteStore{}, s)
	require.NoError(t, s.Close())

	mr := miniredis.RunT(t)
	s, err = Open(ctx, &config.Config{StoreKind: config.StoreRedis, RedisAddr: mr.Addr()}, nil)
	require.NoError(t, err)
	assert.IsType(t, &RedisStore{}, s)
	require.NoError(t, s.Close())

	_, err = Open(ctx, &config.Config{StoreKind: "postgres"}, nil)
	assert.Error(t, err)
}
