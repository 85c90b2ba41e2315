package session

import (
	"log/slog"
	"time"

	"github.com/dmitrymomot/authcore/pkg/logger"
)

type storeOptions struct {
	now    func() time.Time
	logger *slog.Logger
	prefix string
}

// StoreOption configures the file and Redis stores.
type StoreOption func(*storeOptions)

// WithStoreClock overrides the clock used to prune expired sessions on load.
func WithStoreClock(now func() time.Time) StoreOption {
	return func(o *storeOptions) {
		if now != nil {
			o.now = now
		}
	}
}

// WithStoreLogger sets the logger for corruption and write-failure reports.
func WithStoreLogger(l *slog.Logger) StoreOption {
	return func(o *storeOptions) {
		if l != nil {
			o.logger = l.With(logger.Component("session"))
		}
	}
}

// WithKeyPrefix sets the Redis key prefix.
func WithKeyPrefix(prefix string) StoreOption {
	return func(o *storeOptions) { o.prefix = prefix }
}

func buildStoreOptions(opts []StoreOption) storeOptions {
	o := storeOptions{
		now:    time.Now,
		logger: logger.Discard(),
		prefix: "authcore:session:",
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
