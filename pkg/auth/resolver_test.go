package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/authcore/pkg/metrics"
	"github.com/dmitrymomot/authcore/pkg/session"
	"github.com/dmitrymomot/authcore/pkg/userstore"
)

func TestResolver_ResolveRequest(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	for _, strategy := range strategies {
		t.Run(string(strategy), func(t *testing.T) {
			t.Parallel()
			f := newFixture(t, strategy)
			alice, err := f.svc.CreateUser(ctx, "alice", "", "pw")
			require.NoError(t, err)
			bob, err := f.svc.CreateUser(ctx, "bob", "", "pw")
			require.NoError(t, err)

			aliceCred, err := f.svc.IssueCredential(ctx, alice, WithTTL(time.Hour))
			require.NoError(t, err)
			bobCred, err := f.svc.IssueCredential(ctx, bob, WithTTL(time.Hour))
			require.NoError(t, err)

			r := f.svc.Resolver()

			t.Run("bearer header", func(t *testing.T) {
				req := httptest.NewRequest(http.MethodGet, "/", nil)
				req.Header.Set("Authorization", "Bearer "+aliceCred.Artifact)
				assert.Equal(t, alice, r.ResolveRequest(req))
			})

			t.Run("cookie", func(t *testing.T) {
				req := httptest.NewRequest(http.MethodGet, "/", nil)
				req.AddCookie(&http.Cookie{Name: session.DefaultCookieName, Value: bobCred.Artifact})
				assert.Equal(t, bob, r.ResolveRequest(req))
			})

			t.Run("header takes precedence", func(t *testing.T) {
				req := httptest.NewRequest(http.MethodGet, "/", nil)
				req.Header.Set("Authorization", "Bearer "+aliceCred.Artifact)
				req.AddCookie(&http.Cookie{Name: session.DefaultCookieName, Value: bobCred.Artifact})
				assert.Equal(t, alice, r.ResolveRequest(req))
			})

			t.Run("bad header does not fall back to cookie", func(t *testing.T) {
				req := httptest.NewRequest(http.MethodGet, "/", nil)
				req.Header.Set("Authorization", "Bearer nonsense")
				req.AddCookie(&http.Cookie{Name: session.DefaultCookieName, Value: bobCred.Artifact})
				assert.True(t, r.ResolveRequest(req).IsAnonymous())
			})

			t.Run("nothing presented", func(t *testing.T) {
				req := httptest.NewRequest(http.MethodGet, "/", nil)
				assert.Equal(t, Anonymous, r.ResolveRequest(req))
			})
		})
	}
}

func TestResolver_Failures(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("store failure is anonymous", func(t *testing.T) {
		t.Parallel()
		store := &MockStore{}
		store.On("FindByID", mock.Anything, "user-1").Return(userstore.Record{}, userstore.ErrStorageFailure)

		issuer := NewSessionIssuer(session.New(nil), nil)
		cred, err := issuer.Issue(ctx, "user-1", time.Hour)
		require.NoError(t, err)

		m := metrics.New(nil)
		r := NewResolver(issuer, store, WithMetrics(m))
		assert.True(t, r.Resolve(ctx, cred.Artifact).IsAnonymous())
		assert.Equal(t, 1.0, testutil.ToFloat64(m.IdentityResolutionsTotal.WithLabelValues(metrics.ResultError)))
		store.AssertExpectations(t)
	})

	t.Run("rejected artifact never reaches the store", func(t *testing.T) {
		t.Parallel()
		store := &MockStore{}
		m := metrics.New(nil)
		r := NewResolver(NewSessionIssuer(session.New(nil), nil), store, WithMetrics(m))

		assert.True(t, r.Resolve(ctx, "garbage").IsAnonymous())
		assert.True(t, r.Resolve(ctx, "").IsAnonymous())
		store.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
		assert.Equal(t, 1.0, testutil.ToFloat64(m.IdentityResolutionsTotal.WithLabelValues(metrics.ResultFailure)))
		assert.Equal(t, 1.0, testutil.ToFloat64(m.IdentityResolutionsTotal.WithLabelValues(metrics.ResultAnon)))
	})
}

func TestMiddleware(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t, StrategySession)
	alice, err := f.svc.CreateUser(ctx, "alice", "", "pw")
	require.NoError(t, err)
	cred, err := f.svc.IssueCredential(ctx, alice)
	require.NoError(t, err)

	var seen Identity
	handler := f.svc.Resolver().Middleware(RequireUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = IdentityFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})))

	t.Run("anonymous gets 401", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.JSONEq(t, `{"error":{"code":"unauthorized","message":"Unauthorized"}}`, w.Body.String())
		assert.Equal(t, "application/json; charset=utf-8", w.Header().Get("Content-Type"))
	})

	t.Run("user passes through", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: session.DefaultCookieName, Value: cred.Artifact})
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, alice, seen)
	})

	t.Run("context without identity", func(t *testing.T) {
		assert.Equal(t, Anonymous, IdentityFromContext(context.Background()))
	})
}
