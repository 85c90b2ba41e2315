package session

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/authcore/pkg/logger"
	authredis "github.com/dmitrymomot/authcore/pkg/redis"
)

// RedisStore keeps each session under prefix+id with a Redis TTL matching its
// expiry, so Redis evicts expired sessions on its own.
type RedisStore struct {
	client redis.UniversalClient
	opts   storeOptions
}

// NewRedisStore creates a store on an already connected client.
func NewRedisStore(client redis.UniversalClient, opts ...StoreOption) *RedisStore {
	return &RedisStore{client: client, opts: buildStoreOptions(opts)}
}

// Ping reports whether Redis answers.
func (s *RedisStore) Ping(ctx context.Context) error {
	return authredis.Healthcheck(s.client)(ctx)
}

func (s *RedisStore) key(id string) string { return s.opts.prefix + id }

func (s *RedisStore) Create(ctx context.Context, session *Session) error {
	return s.write(ctx, session, "")
}

func (s *RedisStore) Update(ctx context.Context, session *Session) error {
	return s.write(ctx, session, "XX")
}

func (s *RedisStore) write(ctx context.Context, session *Session, mode string) error {
	if session == nil || session.ID == "" {
		return ErrInvalidSession
	}

	ttl := session.ExpiresAt.Sub(s.opts.now())
	if ttl < time.Millisecond {
		// Already expired: nothing worth keeping.
		return s.Delete(ctx, session.ID)
	}

	data, err := json.Marshal(encodeRecord(session))
	if err != nil {
		return errors.Join(ErrStorageFailure, err)
	}

	err = s.client.SetArgs(ctx, s.key(session.ID), data, redis.SetArgs{Mode: mode, TTL: ttl}).Err()
	switch {
	case errors.Is(err, redis.Nil):
		return ErrSessionNotFound
	case err != nil:
		s.opts.logger.ErrorContext(ctx, "failed to write session",
			logger.SessionID(session.ID),
			logger.Error(err),
		)
		return errors.Join(ErrStorageFailure, err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, id string) (*Session, error) {
	data, err := s.client.Get(ctx, s.key(id)).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		return nil, ErrSessionNotFound
	case err != nil:
		return nil, errors.Join(ErrStorageFailure, err)
	}

	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		s.opts.logger.WarnContext(ctx, "dropping corrupt session record",
			logger.SessionID(id),
			logger.Error(err),
		)
		_ = s.client.Del(ctx, s.key(id)).Err()
		return nil, ErrSessionNotFound
	}
	session, err := decodeRecord(id, rec)
	if err != nil {
		_ = s.client.Del(ctx, s.key(id)).Err()
		return nil, ErrSessionNotFound
	}
	return session, nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, s.key(id)).Err(); err != nil {
		return errors.Join(ErrStorageFailure, err)
	}
	return nil
}

// DeleteExpired is a no-op: Redis expires keys itself.
func (s *RedisStore) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	return 0, nil
}

var (
	_ Store = (*MemoryStore)(nil)
	_ Store = (*FileStore)(nil)
	_ Store = (*RedisStore)(nil)
)
