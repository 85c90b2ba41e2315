package revocation_test

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/authcore/pkg/revocation"
)

func TestRegistry(t *testing.T) {
	t.Parallel()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	t.Run("revoke is visible immediately", func(t *testing.T) {
		t.Parallel()
		r := revocation.New()
		assert.False(t, r.IsRevoked("jti-1"))
		r.Revoke("jti-1", now.Add(time.Hour))
		assert.True(t, r.IsRevoked("jti-1"))
		assert.False(t, r.IsRevoked("jti-2"))
	})

	t.Run("empty ref is ignored", func(t *testing.T) {
		t.Parallel()
		r := revocation.New()
		r.Revoke("", now.Add(time.Hour))
		assert.Zero(t, r.Len())
	})

	t.Run("prune forgets expired entries only", func(t *testing.T) {
		t.Parallel()
		r := revocation.New()
		r.Revoke("short", now.Add(time.Minute))
		r.Revoke("long", now.Add(time.Hour))

		assert.Zero(t, r.Prune(now))
		assert.Equal(t, 1, r.Prune(now.Add(time.Minute)))
		assert.False(t, r.IsRevoked("short"))
		assert.True(t, r.IsRevoked("long"))
	})

	t.Run("second revoke keeps later expiry", func(t *testing.T) {
		t.Parallel()
		r := revocation.New()
		r.Revoke("ref", now.Add(time.Hour))
		r.Revoke("ref", now.Add(time.Minute))
		assert.Zero(t, r.Prune(now.Add(30*time.Minute)))
		assert.True(t, r.IsRevoked("ref"))
	})

	t.Run("concurrent use", func(t *testing.T) {
		t.Parallel()
		r := revocation.New()
		var wg sync.WaitGroup
		for i := range 50 {
			wg.Add(2)
			go func() {
				defer wg.Done()
				r.Revoke(fmt.Sprintf("ref-%d", i), now.Add(time.Hour))
			}()
			go func() {
				defer wg.Done()
				_ = r.IsRevoked(fmt.Sprintf("ref-%d", i))
				_ = r.Prune(now)
			}()
		}
		wg.Wait()
		assert.Equal(t, 50, r.Len())
	})
}
