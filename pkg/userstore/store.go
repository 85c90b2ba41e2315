package userstore

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/authcore/pkg/logger"
)

// Store is the durable user registry.
//
// Create enforces case-insensitive username uniqueness atomically: of two
// concurrent calls for the same name exactly one succeeds.
type Store interface {
	Create(ctx context.Context, username, email, passwordHash string) (Record, error)
	FindByUsername(ctx context.Context, username string) (Record, error)
	FindByID(ctx context.Context, id string) (Record, error)
	All(ctx context.Context) ([]Record, error)
}

// Pinger is implemented by backends that depend on an external service.
// Readiness probes use it.
type Pinger interface {
	Ping(ctx context.Context) error
}

type options struct {
	now    func() time.Time
	newID  func() string
	logger *slog.Logger
}

// Option configures a store backend.
type Option func(*options)

// WithClock overrides the clock used for CreatedAt.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// WithIDGenerator overrides the user id generator (UUID v4 by default).
func WithIDGenerator(fn func() string) Option {
	return func(o *options) {
		if fn != nil {
			o.newID = fn
		}
	}
}

// WithLogger sets the logger used for corruption warnings.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l.With(logger.Component("userstore"))
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{
		now:    time.Now,
		newID:  uuid.NewString,
		logger: logger.Discard(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// newRecord builds the record Create will persist.
func (o options) newRecord(username, email, passwordHash string) (Record, error) {
	rec := Record{
		ID:           o.newID(),
		Username:     strings.TrimSpace(username),
		PasswordHash: passwordHash,
		Email:        strings.TrimSpace(email),
		CreatedAt:    o.now().UTC(),
	}
	return rec, rec.validate()
}

var (
	_ Store = (*MemoryStore)(nil)
	_ Store = (*FileStore)(nil)
)
