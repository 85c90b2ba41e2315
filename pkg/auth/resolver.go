package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/authcore/pkg/logger"
	"github.com/dmitrymomot/authcore/pkg/metrics"
	"github.com/dmitrymomot/authcore/pkg/session"
	"github.com/dmitrymomot/authcore/pkg/userstore"
)

// Resolver turns a presented artifact into an Identity. It never fails:
// anything that does not resolve to a stored user is Anonymous.
type Resolver struct {
	issuer    Issuer
	store     userstore.Store
	extractor session.Extractor
	logger    *slog.Logger
	metrics   *metrics.Metrics
}

// NewResolver returns a Resolver that validates artifacts with issuer and
// maps their subject back to a record in store.
func NewResolver(issuer Issuer, store userstore.Store, opts ...Option) *Resolver {
	o := buildOptions(opts)
	return &Resolver{
		issuer:    issuer,
		store:     store,
		extractor: o.extractor,
		logger:    o.logger.With(logger.Component("resolver")),
		metrics:   o.metrics,
	}
}

// Artifact returns the first artifact presented by req, header before cookie.
func (r *Resolver) Artifact(req *http.Request) (string, bool) {
	token, err := r.extractor.Extract(req)
	if err != nil || token == "" {
		return "", false
	}
	return token, true
}

// ResolveRequest resolves the first artifact presented by req. Later
// sources are not consulted when the first one carries a bad artifact.
func (r *Resolver) ResolveRequest(req *http.Request) Identity {
	token, ok := r.Artifact(req)
	if !ok {
		r.metrics.IdentityResolved(metrics.ResultAnon)
		return Anonymous
	}
	return r.Resolve(req.Context(), token)
}

// Resolve resolves a raw artifact.
func (r *Resolver) Resolve(ctx context.Context, artifact string) Identity {
	if artifact == "" {
		r.metrics.IdentityResolved(metrics.ResultAnon)
		return Anonymous
	}

	cred, err := r.issuer.Validate(ctx, artifact)
	if err != nil {
		if errors.Is(err, ErrStorageFailure) {
			r.logger.ErrorContext(ctx, "credential validation failed", logger.Error(err))
			r.metrics.IdentityResolved(metrics.ResultError)
		} else {
			r.logger.DebugContext(ctx, "credential rejected", logger.Error(err))
			r.metrics.IdentityResolved(metrics.ResultFailure)
		}
		return Anonymous
	}

	rec, err := r.store.FindByID(ctx, cred.Subject)
	if err != nil {
		if errors.Is(err, userstore.ErrNotFound) {
			r.logger.WarnContext(ctx, "credential subject has no user", logger.UserID(cred.Subject))
			r.metrics.IdentityResolved(metrics.ResultFailure)
		} else {
			r.logger.ErrorContext(ctx, "user lookup failed", logger.UserID(cred.Subject), logger.Error(err))
			r.metrics.IdentityResolved(metrics.ResultError)
		}
		return Anonymous
	}

	r.metrics.IdentityResolved(metrics.ResultSuccess)
	return identityFromRecord(rec)
}
