package auth

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/dmitrymomot/authcore/pkg/logger"
	"github.com/dmitrymomot/authcore/pkg/metrics"
	"github.com/dmitrymomot/authcore/pkg/password"
	"github.com/dmitrymomot/authcore/pkg/userstore"
)

// Authenticator checks a username and password against the credential store.
// It only reads.
type Authenticator struct {
	store      userstore.Store
	verifier   *password.Verifier
	logger     *slog.Logger
	metrics    *metrics.Metrics
	afterLogin func(Identity)

	// decoy is verified against when the user does not exist, so both
	// failure paths pay for one hash comparison.
	decoy func() (string, error)
}

// NewAuthenticator returns an Authenticator over store. A nil verifier means
// password.New().
func NewAuthenticator(store userstore.Store, verifier *password.Verifier, opts ...Option) *Authenticator {
	if verifier == nil {
		verifier = password.New()
	}
	o := buildOptions(opts)
	return &Authenticator{
		store:      store,
		verifier:   verifier,
		logger:     o.logger.With(logger.Component("authenticator")),
		metrics:    o.metrics,
		afterLogin: o.afterLogin,
		decoy: sync.OnceValues(func() (string, error) {
			return verifier.Hash("authcore-decoy-password")
		}),
	}
}

// Authenticate returns the identity for username when password matches.
// An unknown user, a wrong password and a failed lookup all yield
// ErrUnauthorized.
func (a *Authenticator) Authenticate(ctx context.Context, username, password string) (Identity, error) {
	rec, err := a.store.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, userstore.ErrNotFound) {
			a.burnDecoy(ctx, password)
			a.metrics.AuthAttempt(metrics.ResultFailure)
		} else {
			a.logger.ErrorContext(ctx, "user lookup failed",
				logger.Username(username),
				logger.Error(err),
			)
			a.metrics.AuthAttempt(metrics.ResultError)
		}
		return Anonymous, ErrUnauthorized
	}

	ok, err := a.verifier.VerifyContext(ctx, password, rec.PasswordHash)
	if err != nil {
		a.logger.WarnContext(ctx, "password verification aborted",
			logger.UserID(rec.ID),
			logger.Error(err),
		)
		a.metrics.AuthAttempt(metrics.ResultError)
		return Anonymous, ErrUnauthorized
	}
	if !ok {
		a.logger.DebugContext(ctx, "password mismatch", logger.UserID(rec.ID))
		a.metrics.AuthAttempt(metrics.ResultFailure)
		return Anonymous, ErrUnauthorized
	}

	id := identityFromRecord(rec)
	a.metrics.AuthAttempt(metrics.ResultSuccess)
	if a.afterLogin != nil {
		a.afterLogin(id)
	}
	return id, nil
}

func (a *Authenticator) burnDecoy(ctx context.Context, password string) {
	hash, err := a.decoy()
	if err != nil {
		return
	}
	_, _ = a.verifier.VerifyContext(ctx, password, hash)
}
