package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	matchKeyPrefix = "match:"
	matchIndexKey  = "matches"
)

// RedisStore keeps matches as JSON values in Redis. The "matches" list
// holds ids, newest first.
type RedisStore struct {
	client *redis.Client
	logger *slog.Logger
}

// NewRedisStore connects to addr. It does not wait for the server; see
// WaitForConnection.
func NewRedisStore(addr string, logger *slog.Logger) *RedisStore {
	if logger == nil {
		logger = slog.Default()
	}
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
	})
	return &RedisStore{client: client, logger: logger}
}

func (r *RedisStore) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisStore) Close() error {
	return r.client.Close()
}

// WaitForConnection pings until the server answers, retrying every interval
// up to attempts times.
func (r *RedisStore) WaitForConnection(ctx context.Context, attempts int, interval time.Duration) error {
	var err error
	for i := 0; i < attempts; i++ {
		if err = r.Ping(ctx); err == nil {
			r.logger.Info("connected to redis")
			return nil
		}
		r.logger.Warn("waiting for redis", "attempt", i+1, "max_retries", attempts, "error", err)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(interval):
		}
	}
	return fmt.Errorf("failed to connect to redis after %d attempts: %w", attempts, err)
}

func matchKey(id uuid.UUID) string {
	return matchKeyPrefix + id.String()
}

func (r *RedisStore) SaveMatch(ctx context.Context, m Match) error {
	m = prepare(m)
	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("encode match %s: %w", m.ID, err)
	}
	ok, err := r.client.SetNX(ctx, matchKey(m.ID), data, 0).Result()
	if err != nil {
		return fmt.Errorf("save match %s: %w", m.ID, err)
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrAlreadyExists, m.ID)
	}
	if err := r.client.LPush(ctx, matchIndexKey, m.ID.String()).Err(); err != nil {
		return fmt.Errorf("index match %s: %w", m.ID, err)
	}
	r.logger.Debug("saved match", "match_id", m.ID, "bytes", len(data))
	return nil
}

func (r *RedisStore) LoadMatch(ctx context.Context, id uuid.UUID) (Match, error) {
	data, err := r.client.Get(ctx, matchKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Match{}, ErrNotFound
	}
	if err != nil {
		return Match{}, fmt.Errorf("load match %s: %w", id, err)
	}
	var m Match
	if err := json.Unmarshal(data, &m); err != nil {
		return Match{}, fmt.Errorf("decode match %s: %w", id, err)
	}
	return m, nil
}

func (r *RedisStore) ListMatches(ctx context.Context, limit int) ([]Match, error) {
	if limit <= 0 {
		return nil, nil
	}
	ids, err := r.client.LRange(ctx, matchIndexKey, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}
	out := make([]Match, 0, len(ids))
	for _, raw := range ids {
		id, err := uuid.Parse(raw)
		if err != nil {
			r.logger.Warn("skipping bad match id", "id", raw)
			continue
		}
		m, err := r.LoadMatch(ctx, id)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		m.Log, m.Mutations = nil, nil
		out = append(out, m)
	}
	return out, nil
}
