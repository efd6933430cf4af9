package kvstore

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/noah-isme/turmas-api/internal/config"
	"github.com/noah-isme/turmas-api/internal/database"
)

// Open builds the configured backend and wraps it with instrumentation.
func Open(ctx context.Context, cfg config.Config, logger zerolog.Logger) (Store, error) {
	var (
		backend Store
		err     error
	)

	switch cfg.StoreDriver {
	case config.StoreDriverRedis:
		client, connErr := database.ConnectRedis(ctx, cfg.RedisURL)
		if connErr != nil {
			return nil, connErr
		}
		backend = NewRedisStore(client, cfg.StorePrefix)
	case config.StoreDriverSQL:
		db, openErr := database.OpenSQL(cfg.StoreDSN)
		if openErr != nil {
			return nil, openErr
		}
		backend, err = NewSQLStore(db)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}

	logger.Info().Str("driver", cfg.StoreDriver).Msg("key-value store ready")

	return Instrument(backend, logger), nil
}
