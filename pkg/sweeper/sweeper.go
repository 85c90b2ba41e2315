// Package sweeper periodically removes expired sessions and forgets revoked
// references whose credentials have expired.
package sweeper

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/authcore/pkg/logger"
	"github.com/dmitrymomot/authcore/pkg/metrics"
	"github.com/dmitrymomot/authcore/pkg/revocation"
)

// DefaultSchedule runs a sweep every five minutes.
const DefaultSchedule = "@every 5m"

// Config holds the cron schedule, in robfig/cron syntax.
type Config struct {
	Schedule string `env:"AUTH_PRUNE_SCHEDULE" envDefault:"@every 5m"`
}

// ErrInvalidSchedule is returned by New for a schedule cron cannot parse.
var ErrInvalidSchedule = errors.New("sweeper: invalid schedule")

// SessionPruner deletes expired sessions and reports how many it removed.
type SessionPruner interface {
	Prune(ctx context.Context) (int, error)
}

// Sweeper runs RunOnce on a cron schedule.
type Sweeper struct {
	cron     *cron.Cron
	registry *revocation.Registry
	sessions SessionPruner
	now      func() time.Time
	logger   *slog.Logger
	metrics  *metrics.Metrics

	mu      sync.Mutex
	running bool
}

// Option configures a Sweeper.
type Option func(*Sweeper)

func WithClock(now func() time.Time) Option {
	return func(s *Sweeper) {
		if now != nil {
			s.now = now
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Sweeper) {
		if l != nil {
			s.logger = l.With(logger.Component("sweeper"))
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Sweeper) { s.metrics = m }
}

// New schedules a sweep. Either registry or sessions may be nil.
func New(schedule string, registry *revocation.Registry, sessions SessionPruner, opts ...Option) (*Sweeper, error) {
	if schedule == "" {
		schedule = DefaultSchedule
	}
	s := &Sweeper{
		cron:     cron.New(),
		registry: registry,
		sessions: sessions,
		now:      time.Now,
		logger:   logger.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}

	if _, err := s.cron.AddFunc(schedule, func() {
		if err := s.RunOnce(context.Background()); err != nil {
			s.logger.Error("sweep failed", logger.Error(err))
		}
	}); err != nil {
		return nil, errors.Join(ErrInvalidSchedule, err)
	}
	return s, nil
}

// Start begins the schedule in the background.
func (s *Sweeper) Start() {
	s.cron.Start()
}

// Stop halts the schedule and waits for a running sweep or ctx, whichever
// finishes first.
func (s *Sweeper) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RunOnce prunes the registry and the session store concurrently. Overlapping
// calls are skipped rather than queued.
func (s *Sweeper) RunOnce(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	start := s.now()
	var revoked, sessions int

	g, gctx := errgroup.WithContext(ctx)
	if s.registry != nil {
		g.Go(func() error {
			revoked = s.registry.Prune(start)
			s.metrics.Pruned("revocations", revoked)
			s.metrics.SetRevocationsTracked(s.registry.Len())
			return nil
		})
	}
	if s.sessions != nil {
		g.Go(func() error {
			n, err := s.sessions.Prune(gctx)
			if err != nil {
				return err
			}
			sessions = n
			s.metrics.Pruned("sessions", n)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if revoked > 0 || sessions > 0 {
		s.logger.InfoContext(ctx, "sweep finished",
			slog.Int("revocations", revoked),
			slog.Int("sessions", sessions),
			logger.Duration(time.Since(start)),
		)
	}
	return nil
}
