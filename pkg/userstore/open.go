package userstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrymomot/authcore/pkg/pg"
)

// Driver names accepted by Config.Driver.
const (
	DriverCSV      = "csv"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Config selects and configures the user store backend.
type Config struct {
	Driver     string        `env:"USERSTORE_DRIVER" envDefault:"csv"`
	CSVPath    string        `env:"USERSTORE_CSV_PATH" envDefault:"data/users.csv"`
	SQLitePath string        `env:"USERSTORE_SQLITE_PATH" envDefault:"data/users.db"`
	CacheSize  int           `env:"USERSTORE_CACHE_SIZE" envDefault:"1024"`
	CacheTTL   time.Duration `env:"USERSTORE_CACHE_TTL" envDefault:"5m"`

	Postgres pg.Config
}

// Open builds the configured backend wrapped in the LRU cache. The returned
// close function releases whatever the backend holds open.
func Open(ctx context.Context, cfg Config, opts ...Option) (Store, func() error, error) {
	noop := func() error { return nil }

	var (
		store   Store
		closeFn = noop
	)
	switch cfg.Driver {
	case DriverCSV, "":
		s, err := OpenFile(ctx, cfg.CSVPath, opts...)
		if err != nil {
			return nil, nil, err
		}
		store = s
	case DriverMemory:
		store = NewMemoryStore(opts...)
	case DriverSQLite:
		s, err := OpenSQLite(ctx, cfg.SQLitePath, opts...)
		if err != nil {
			return nil, nil, err
		}
		store, closeFn = s, s.Close
	case DriverPostgres:
		pool, err := pg.Connect(ctx, cfg.Postgres)
		if err != nil {
			return nil, nil, errors.Join(ErrStorageFailure, err)
		}
		s, err := OpenPostgres(ctx, pool, cfg.Postgres, opts...)
		if err != nil {
			pool.Close()
			return nil, nil, err
		}
		store = s
		closeFn = func() error {
			err := s.Close()
			pool.Close()
			return err
		}
	default:
		return nil, nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.Driver)
	}

	return NewCached(store, cfg.CacheSize, cfg.CacheTTL), closeFn, nil
}
