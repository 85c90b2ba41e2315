package auth

import (
	"context"
	"net/http"

	"github.com/dmitrymomot/authcore/handler"
)

type identityCtxKey struct{}

// WithIdentity stores id in ctx.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityCtxKey{}, id)
}

// IdentityFromContext returns the identity stored by Middleware, or
// Anonymous when there is none.
func IdentityFromContext(ctx context.Context) Identity {
	if id, ok := ctx.Value(identityCtxKey{}).(Identity); ok {
		return id
	}
	return Anonymous
}

// Middleware resolves the request identity and stores it in the context.
func (r *Resolver) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		id := r.ResolveRequest(req)
		next.ServeHTTP(w, req.WithContext(WithIdentity(req.Context(), id)))
	})
}

// RequireUser responds 401 unless Middleware resolved a user. The body has the
// same shape as every other handler error.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if IdentityFromContext(req.Context()).IsAnonymous() {
			_ = handler.JSONError(handler.ErrUnauthorized).Render(w, req)
			return
		}
		next.ServeHTTP(w, req)
	})
}
