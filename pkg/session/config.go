package session

import (
	"context"
	"fmt"

	"github.com/dmitrymomot/authcore/pkg/redis"
)

// Store backends accepted by Config.Store.
const (
	StoreMemory = "memory"
	StoreFile   = "file"
	StoreRedis  = "redis"
)

// Config selects the session store backend.
type Config struct {
	Store       string `env:"SESSION_STORE" envDefault:"memory"`
	FilePath    string `env:"SESSION_FILE_PATH" envDefault:"data/sessions.json"`
	RedisPrefix string `env:"SESSION_REDIS_PREFIX" envDefault:"authcore:session:"`

	Redis redis.Config
}

// OpenStore builds the configured store. The returned close function
// releases the Redis connection when there is one.
func OpenStore(ctx context.Context, cfg Config, opts ...StoreOption) (Store, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Store {
	case StoreMemory, "":
		return NewMemoryStore(), noop, nil
	case StoreFile:
		s, err := OpenFileStore(ctx, cfg.FilePath, opts...)
		if err != nil {
			return nil, nil, err
		}
		return s, noop, nil
	case StoreRedis:
		client, err := redis.Connect(ctx, cfg.Redis)
		if err != nil {
			return nil, nil, err
		}
		opts = append([]StoreOption{WithKeyPrefix(cfg.RedisPrefix)}, opts...)
		return NewRedisStore(client, opts...), client.Close, nil
	default:
		return nil, nil, fmt.Errorf("%w: %q", ErrUnknownStore, cfg.Store)
	}
}
