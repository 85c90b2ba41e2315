package session_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authredis "github.com/dmitrymomot/authcore/pkg/redis"
	"github.com/dmitrymomot/authcore/pkg/session"
)

type storeFactory struct {
	name string
	open func(t *testing.T, now func() time.Time) session.Store
}

func storeFactories() []storeFactory {
	return []storeFactory{
		{"memory", func(t *testing.T, _ func() time.Time) session.Store {
			return session.NewMemoryStore()
		}},
		{"file", func(t *testing.T, now func() time.Time) session.Store {
			s, err := session.OpenFileStore(context.Background(), filepath.Join(t.TempDir(), "sessions.json"), session.WithStoreClock(now))
			require.NoError(t, err)
			return s
		}},
		{"redis", func(t *testing.T, now func() time.Time) session.Store {
			mr := miniredis.RunT(t)
			client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
			t.Cleanup(func() { _ = client.Close() })
			return session.NewRedisStore(client, session.WithStoreClock(now))
		}},
	}
}

func TestStoreContract(t *testing.T) {
	t.Parallel()

	for _, f := range storeFactories() {
		t.Run(f.name, func(t *testing.T) {
			t.Parallel()
			ctx := context.Background()
			now := time.Now().UTC().Truncate(time.Second)
			clock := func() time.Time { return now }

			newSession := func(id string, ttl time.Duration) *session.Session {
				return &session.Session{ID: id, Subject: "user-1", CreatedAt: now, ExpiresAt: now.Add(ttl), TTL: ttl}
			}

			t.Run("create and get", func(t *testing.T) {
				s := f.open(t, clock)
				require.NoError(t, s.Create(ctx, newSession("sid-1", time.Hour)))

				got, err := s.Get(ctx, "sid-1")
				require.NoError(t, err)
				assert.Equal(t, "user-1", got.Subject)
				assert.True(t, now.Add(time.Hour).Equal(got.ExpiresAt))
				assert.Equal(t, time.Hour, got.TTL)
			})

			t.Run("returned sessions are copies", func(t *testing.T) {
				s := f.open(t, clock)
				sess := newSession("sid-1", time.Hour)
				require.NoError(t, s.Create(ctx, sess))
				sess.Subject = "mutated"

				got, err := s.Get(ctx, "sid-1")
				require.NoError(t, err)
				got.Subject = "mutated-again"

				again, err := s.Get(ctx, "sid-1")
				require.NoError(t, err)
				assert.Equal(t, "user-1", again.Subject)
			})

			t.Run("invalid session", func(t *testing.T) {
				s := f.open(t, clock)
				assert.ErrorIs(t, s.Create(ctx, nil), session.ErrInvalidSession)
				assert.ErrorIs(t, s.Create(ctx, &session.Session{}), session.ErrInvalidSession)
			})

			t.Run("update requires existing session", func(t *testing.T) {
				s := f.open(t, clock)
				assert.ErrorIs(t, s.Update(ctx, newSession("ghost", time.Hour)), session.ErrSessionNotFound)

				require.NoError(t, s.Create(ctx, newSession("sid-1", time.Hour)))
				updated := newSession("sid-1", 2*time.Hour)
				require.NoError(t, s.Update(ctx, updated))

				got, err := s.Get(ctx, "sid-1")
				require.NoError(t, err)
				assert.True(t, now.Add(2*time.Hour).Equal(got.ExpiresAt))
			})

			t.Run("delete is idempotent", func(t *testing.T) {
				s := f.open(t, clock)
				require.NoError(t, s.Create(ctx, newSession("sid-1", time.Hour)))
				require.NoError(t, s.Delete(ctx, "sid-1"))
				require.NoError(t, s.Delete(ctx, "sid-1"))

				_, err := s.Get(ctx, "sid-1")
				assert.ErrorIs(t, err, session.ErrSessionNotFound)
			})
		})
	}
}

func TestDeleteExpired(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	now := time.Now().UTC()

	for _, f := range storeFactories()[:2] {
		t.Run(f.name, func(t *testing.T) {
			t.Parallel()
			s := f.open(t, func() time.Time { return now })
			require.NoError(t, s.Create(ctx, &session.Session{ID: "live", Subject: "u", ExpiresAt: now.Add(time.Hour)}))
			require.NoError(t, s.Create(ctx, &session.Session{ID: "dead", Subject: "u", ExpiresAt: now.Add(time.Minute)}))

			n, err := s.DeleteExpired(ctx, now.Add(time.Minute))
			require.NoError(t, err)
			assert.Equal(t, 1, n)

			_, err = s.Get(ctx, "dead")
			assert.ErrorIs(t, err, session.ErrSessionNotFound)
			_, err = s.Get(ctx, "live")
			assert.NoError(t, err)
		})
	}
}

func TestRedisStore(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("keys expire with the session", func(t *testing.T) {
		t.Parallel()
		mr := miniredis.RunT(t)
		client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
		t.Cleanup(func() { _ = client.Close() })

		s := session.NewRedisStore(client, session.WithKeyPrefix("test:"))
		require.NoError(t, s.Create(ctx, &session.Session{ID: "sid", Subject: "u", ExpiresAt: time.Now().Add(time.Minute), TTL: time.Minute}))
		assert.True(t, mr.Exists("test:sid"))

		mr.FastForward(2 * time.Minute)
		_, err := s.Get(ctx, "sid")
		assert.ErrorIs(t, err, session.ErrSessionNotFound)
	})

	t.Run("already expired session is not written", func(t *testing.T) {
		t.Parallel()
		mr := miniredis.RunT(t)
		client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
		t.Cleanup(func() { _ = client.Close() })

		s := session.NewRedisStore(client)
		require.NoError(t, s.Create(ctx, &session.Session{ID: "sid", Subject: "u", ExpiresAt: time.Now().Add(-time.Second)}))
		assert.Empty(t, mr.Keys())
	})

	t.Run("corrupt value is dropped", func(t *testing.T) {
		t.Parallel()
		mr := miniredis.RunT(t)
		client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
		t.Cleanup(func() { _ = client.Close() })

		require.NoError(t, mr.Set("authcore:session:sid", "{not json"))
		s := session.NewRedisStore(client)
		_, err := s.Get(ctx, "sid")
		assert.ErrorIs(t, err, session.ErrSessionNotFound)
		assert.False(t, mr.Exists("authcore:session:sid"))
	})

	t.Run("sub-second ttl slides by itself", func(t *testing.T) {
		t.Parallel()
		mr := miniredis.RunT(t)
		client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
		t.Cleanup(func() { _ = client.Close() })

		now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
		clock := func() time.Time { return now }
		m := session.New(session.NewRedisStore(client, session.WithStoreClock(clock)), session.WithClock(clock))

		for _, ttl := range []time.Duration{800 * time.Millisecond, 1500 * time.Millisecond} {
			sess, err := m.Issue(ctx, "u1", ttl)
			require.NoError(t, err)

			now = now.Add(ttl / 2)
			got, err := m.Resolve(ctx, sess.ID)
			require.NoError(t, err)
			assert.Equal(t, ttl, got.TTL)
			assert.True(t, now.Add(ttl).Equal(got.ExpiresAt), "expires_at %s", got.ExpiresAt)
		}
	})

	t.Run("reads ttl_seconds records", func(t *testing.T) {
		t.Parallel()
		mr := miniredis.RunT(t)
		client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
		t.Cleanup(func() { _ = client.Close() })

		expires := time.Now().Add(time.Hour).UTC().Format(time.RFC3339Nano)
		require.NoError(t, mr.Set("authcore:session:sid", `{"subject":"u","expires_at":"`+expires+`","ttl_seconds":60}`))
		got, err := session.NewRedisStore(client).Get(ctx, "sid")
		require.NoError(t, err)
		assert.Equal(t, time.Minute, got.TTL)
	})

	t.Run("ping", func(t *testing.T) {
		t.Parallel()
		mr := miniredis.RunT(t)
		client := goredis.NewClient(&goredis.Options{Addr: mr.Addr(), MaxRetries: -1})
		t.Cleanup(func() { _ = client.Close() })

		var s session.Store = session.NewRedisStore(client)
		pinger, ok := s.(session.Pinger)
		require.True(t, ok)
		require.NoError(t, pinger.Ping(ctx))

		mr.Close()
		assert.ErrorIs(t, pinger.Ping(ctx), authredis.ErrHealthcheckFailed)
	})

	t.Run("server failure is a storage failure", func(t *testing.T) {
		t.Parallel()
		mr := miniredis.RunT(t)
		client := goredis.NewClient(&goredis.Options{Addr: mr.Addr(), MaxRetries: -1})
		t.Cleanup(func() { _ = client.Close() })

		s := session.NewRedisStore(client)
		mr.SetError("LOADING")
		_, err := s.Get(ctx, "sid")
		assert.ErrorIs(t, err, session.ErrStorageFailure)
	})
}
