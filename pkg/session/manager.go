package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"log/slog"
	"time"

	"github.com/dmitrymomot/authcore/pkg/logger"
)

// DefaultTTL is the sliding window used when neither the session nor the
// Manager specifies one.
const DefaultTTL = 24 * time.Hour

// Manager owns the session lifecycle on top of a Store: issuing ids, sliding
// expiry on every resolve and deleting on revoke.
type Manager struct {
	store      Store
	now        func() time.Time
	defaultTTL time.Duration
	logger     *slog.Logger
}

// Option configures a Manager.
type Option func(*Manager)

// WithClock overrides the clock used for expiry decisions.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

// WithDefaultTTL sets the window for sessions stored without one.
func WithDefaultTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		if ttl > 0 {
			m.defaultTTL = ttl
		}
	}
}

// WithLogger sets the manager logger.
func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.logger = l.With(logger.Component("session"))
		}
	}
}

// New creates a Manager. A nil store means a fresh MemoryStore.
func New(store Store, opts ...Option) *Manager {
	m := &Manager{
		store:      store,
		now:        time.Now,
		defaultTTL: DefaultTTL,
		logger:     logger.Discard(),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.store == nil {
		m.store = NewMemoryStore()
	}
	return m
}

// Store returns the underlying store.
func (m *Manager) Store() Store { return m.store }

// Issue creates and persists a session for subject. A ttl of zero or less
// yields a session that is already expired.
func (m *Manager) Issue(ctx context.Context, subject string, ttl time.Duration) (*Session, error) {
	if subject == "" {
		return nil, ErrInvalidSession
	}
	id, err := generateToken()
	if err != nil {
		return nil, err
	}

	now := m.now()
	sess := &Session{
		ID:        id,
		Subject:   subject,
		CreatedAt: now.UTC(),
		ExpiresAt: now.Add(max(ttl, 0)).UTC(),
		TTL:       max(ttl, 0),
	}
	if err := m.store.Create(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// Resolve returns the live session for id and slides its expiry to now plus
// its TTL. The new expiry is persisted before Resolve returns. An expired
// session is deleted and reported as ErrSessionExpired.
func (m *Manager) Resolve(ctx context.Context, id string) (*Session, error) {
	if id == "" {
		return nil, ErrSessionNotFound
	}
	sess, err := m.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	now := m.now()
	if sess.IsExpired(now) {
		if err := m.store.Delete(ctx, id); err != nil {
			m.logger.WarnContext(ctx, "failed to delete expired session",
				logger.SessionID(id),
				logger.Error(err),
			)
		}
		return nil, ErrSessionExpired
	}

	ttl := sess.TTL
	if ttl <= 0 {
		ttl = m.defaultTTL
	}
	sess.ExpiresAt = now.Add(ttl).UTC()
	if err := m.store.Update(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// Peek returns the stored session without sliding it. Expired sessions are
// returned as they are.
func (m *Manager) Peek(ctx context.Context, id string) (*Session, error) {
	if id == "" {
		return nil, ErrSessionNotFound
	}
	return m.store.Get(ctx, id)
}

// Revoke deletes the session. Unknown ids are not an error.
func (m *Manager) Revoke(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	return m.store.Delete(ctx, id)
}

// Prune removes sessions that have expired by now.
func (m *Manager) Prune(ctx context.Context) (int, error) {
	return m.store.DeleteExpired(ctx, m.now())
}

// WellFormed reports whether id has the shape of an id generated by Issue.
func WellFormed(id string) bool {
	if len(id) != tokenLength {
		return false
	}
	_, err := base64.RawURLEncoding.DecodeString(id)
	return err == nil
}

const tokenLength = 43

// generateToken creates a cryptographically secure session id
func generateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", errors.Join(ErrTokenGeneration, err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
