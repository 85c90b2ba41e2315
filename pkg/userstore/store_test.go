package userstore_test

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/authcore/pkg/userstore"
)

var fixedNow = time.Date(2026, 3, 14, 15, 9, 26, 535000000, time.UTC)

func clock() time.Time { return fixedNow }

type backend struct {
	name string
	open func(t *testing.T) userstore.Store
}

func backends() []backend {
	return []backend{
		{"memory", func(t *testing.T) userstore.Store {
			return userstore.NewMemoryStore(userstore.WithClock(clock))
		}},
		{"csv", func(t *testing.T) userstore.Store {
			s, err := userstore.OpenFile(context.Background(), filepath.Join(t.TempDir(), "users.csv"), userstore.WithClock(clock))
			require.NoError(t, err)
			return s
		}},
		{"sqlite", func(t *testing.T) userstore.Store {
			s, err := userstore.OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "users.db"), userstore.WithClock(clock))
			require.NoError(t, err)
			t.Cleanup(func() { _ = s.Close() })
			return s
		}},
		{"cached", func(t *testing.T) userstore.Store {
			return userstore.NewCached(userstore.NewMemoryStore(userstore.WithClock(clock)), 16, time.Minute)
		}},
	}
}

func TestStoreContract(t *testing.T) {
	t.Parallel()

	for _, b := range backends() {
		t.Run(b.name, func(t *testing.T) {
			t.Parallel()
			ctx := context.Background()

			t.Run("create and find", func(t *testing.T) {
				s := b.open(t)
				rec, err := s.Create(ctx, "  Alice ", "alice@example.com", "$2a$10$hash")
				require.NoError(t, err)
				assert.NotEmpty(t, rec.ID)
				assert.Equal(t, "Alice", rec.Username)
				assert.Equal(t, "alice@example.com", rec.Email)
				assert.True(t, fixedNow.Equal(rec.CreatedAt))

				byName, err := s.FindByUsername(ctx, "ALICE")
				require.NoError(t, err)
				assert.Equal(t, rec.ID, byName.ID)
				assert.Equal(t, "Alice", byName.Username)
				assert.True(t, fixedNow.Equal(byName.CreatedAt))

				byID, err := s.FindByID(ctx, rec.ID)
				require.NoError(t, err)
				assert.Equal(t, "$2a$10$hash", byID.PasswordHash)
			})

			t.Run("case-insensitive conflict", func(t *testing.T) {
				s := b.open(t)
				_, err := s.Create(ctx, "bob", "", "h1")
				require.NoError(t, err)

				_, err = s.Create(ctx, "BOB", "", "h2")
				assert.ErrorIs(t, err, userstore.ErrConflict)

				rec, err := s.FindByUsername(ctx, "bob")
				require.NoError(t, err)
				assert.Equal(t, "h1", rec.PasswordHash)
			})

			t.Run("not found", func(t *testing.T) {
				s := b.open(t)
				_, err := s.FindByUsername(ctx, "ghost")
				assert.ErrorIs(t, err, userstore.ErrNotFound)
				_, err = s.FindByID(ctx, "missing")
				assert.ErrorIs(t, err, userstore.ErrNotFound)
			})

			t.Run("rejects empty fields", func(t *testing.T) {
				s := b.open(t)
				_, err := s.Create(ctx, "   ", "", "hash")
				assert.ErrorIs(t, err, userstore.ErrInvalidRecord)
				_, err = s.Create(ctx, "carol", "", "")
				assert.ErrorIs(t, err, userstore.ErrInvalidRecord)
			})

			t.Run("all", func(t *testing.T) {
				s := b.open(t)
				for i := range 3 {
					_, err := s.Create(ctx, fmt.Sprintf("user%d", i), "", "hash")
					require.NoError(t, err)
				}
				all, err := s.All(ctx)
				require.NoError(t, err)
				assert.Len(t, all, 3)
			})

			t.Run("concurrent create of one name has one winner", func(t *testing.T) {
				s := b.open(t)
				const n = 16

				var (
					wg        sync.WaitGroup
					mu        sync.Mutex
					successes int
					conflicts int
				)
				for i := range n {
					wg.Add(1)
					go func(i int) {
						defer wg.Done()
						name := "dave"
						if i%2 == 1 {
							name = "DAVE"
						}
						_, err := s.Create(ctx, name, "", fmt.Sprintf("hash-%d", i))
						mu.Lock()
						defer mu.Unlock()
						switch {
						case err == nil:
							successes++
						case assert.ErrorIs(t, err, userstore.ErrConflict):
							conflicts++
						}
					}(i)
				}
				wg.Wait()

				assert.Equal(t, 1, successes)
				assert.Equal(t, n-1, conflicts)

				all, err := s.All(ctx)
				require.NoError(t, err)
				assert.Len(t, all, 1)
			})
		})
	}
}
