package kvstore

import (
	"context"
	"fmt"
	"time"

	"github.com/bizconsole/backend/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Deps are the shared connections a backend may need
type Deps struct {
	DB     *gorm.DB
	Redis  redis.UniversalClient
	Logger *zap.Logger
}

// New builds the store selected by cfg.Backend
func New(cfg config.KVConfig, deps Deps) (Store, error) {
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}

	switch cfg.Backend {
	case "", "memory":
		log.Info("kv store: memory")
		return NewMemoryStore(), nil
	case "redis":
		if deps.Redis == nil {
			return nil, fmt.Errorf("kv backend redis requires a redis client")
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := deps.Redis.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}
		log.Info("kv store: redis", zap.String("prefix", cfg.Prefix))
		return NewRedisStore(deps.Redis, cfg.Prefix), nil
	case "sql":
		if deps.DB == nil {
			return nil, fmt.Errorf("kv backend sql requires a database")
		}
		log.Info("kv store: sql")
		return NewSQLStore(deps.DB), nil
	default:
		return nil, fmt.Errorf("unknown kv backend %q", cfg.Backend)
	}
}
