package store

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/peterkuimelis/gitcg/internal/config"
)

// Open builds the store selected by cfg.StoreKind.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (MatchStore, error) {
	switch cfg.StoreKind {
	case config.StoreNone, "":
		return Nop{}, nil
	case config.StoreSQLite:
		return OpenSQLite(cfg.SQLitePath)
	case config.StoreRedis:
		rs := NewRedisStore(cfg.RedisAddr, logger)
		if err := rs.WaitForConnection(ctx, 30, 2*time.Second); err != nil {
			_ = rs.Close()
			return nil, err
		}
		return rs, nil
	default:
		return nil, fmt.Errorf("unknown store %q", cfg.StoreKind)
	}
}
