package auth

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrymomot/authcore/pkg/jwt"
	"github.com/dmitrymomot/authcore/pkg/revocation"
	"github.com/dmitrymomot/authcore/pkg/session"
)

// Issuer creates, checks and revokes credentials of one strategy.
//
// Validate returns an error joined with ErrInvalid for any artifact that is
// malformed, expired, revoked or unknown. Revoke returns ErrInvalid for a
// malformed artifact and nil for one that is already expired or unknown.
type Issuer interface {
	Strategy() Strategy
	Issue(ctx context.Context, subject string, ttl time.Duration) (Credential, error)
	Validate(ctx context.Context, artifact string) (Credential, error)
	Revoke(ctx context.Context, artifact string) error
}

// TokenIssuer issues signed tokens. Revocation is tracked by token id in the
// registry until the token would have expired anyway.
type TokenIssuer struct {
	tokens   *jwt.Service
	registry *revocation.Registry
}

// NewTokenIssuer returns a stateless issuer. A nil registry means a fresh one.
func NewTokenIssuer(tokens *jwt.Service, registry *revocation.Registry) *TokenIssuer {
	if registry == nil {
		registry = revocation.New()
	}
	return &TokenIssuer{tokens: tokens, registry: registry}
}

func (i *TokenIssuer) Strategy() Strategy { return StrategyToken }

func (i *TokenIssuer) Issue(_ context.Context, subject string, ttl time.Duration) (Credential, error) {
	token, claims, err := i.tokens.Issue(subject, ttl)
	if err != nil {
		if errors.Is(err, jwt.ErrMissingSubject) {
			return Credential{}, errors.Join(ErrInvalidInput, err)
		}
		return Credential{}, errors.Join(ErrStorageFailure, err)
	}
	return Credential{
		Strategy:  StrategyToken,
		Artifact:  token,
		Subject:   claims.Subject,
		ExpiresAt: claims.ExpiresAt,
	}, nil
}

func (i *TokenIssuer) Validate(_ context.Context, artifact string) (Credential, error) {
	claims, err := i.tokens.Parse(artifact)
	if err != nil {
		return Credential{}, errors.Join(ErrInvalid, err)
	}
	if i.registry.IsRevoked(claims.ID) {
		return Credential{}, errors.Join(ErrInvalid, ErrRevoked)
	}
	return Credential{
		Strategy:  StrategyToken,
		Artifact:  artifact,
		Subject:   claims.Subject,
		ExpiresAt: claims.ExpiresAt,
	}, nil
}

func (i *TokenIssuer) Revoke(_ context.Context, artifact string) error {
	claims, err := i.tokens.Parse(artifact)
	switch {
	case errors.Is(err, jwt.ErrExpiredToken):
		return nil
	case err != nil:
		return errors.Join(ErrInvalid, ErrMalformed, err)
	}
	i.registry.Revoke(claims.ID, claims.ExpiresAt)
	return nil
}

// SessionIssuer issues opaque session ids with a sliding expiry.
type SessionIssuer struct {
	sessions *session.Manager
	registry *revocation.Registry
}

// NewSessionIssuer returns a stateful issuer. A nil registry means a fresh one.
func NewSessionIssuer(sessions *session.Manager, registry *revocation.Registry) *SessionIssuer {
	if registry == nil {
		registry = revocation.New()
	}
	return &SessionIssuer{sessions: sessions, registry: registry}
}

func (i *SessionIssuer) Strategy() Strategy { return StrategySession }

func (i *SessionIssuer) Issue(ctx context.Context, subject string, ttl time.Duration) (Credential, error) {
	sess, err := i.sessions.Issue(ctx, subject, ttl)
	if err != nil {
		if errors.Is(err, session.ErrInvalidSession) {
			return Credential{}, errors.Join(ErrInvalidInput, err)
		}
		return Credential{}, errors.Join(ErrStorageFailure, err)
	}
	return sessionCredential(sess), nil
}

// Validate resolves the session, which slides its expiry. Revoked ids are
// rejected without touching the store.
func (i *SessionIssuer) Validate(ctx context.Context, artifact string) (Credential, error) {
	if !session.WellFormed(artifact) {
		return Credential{}, errors.Join(ErrInvalid, ErrMalformed)
	}
	if i.registry.IsRevoked(artifact) {
		return Credential{}, errors.Join(ErrInvalid, ErrRevoked)
	}
	sess, err := i.sessions.Resolve(ctx, artifact)
	if err != nil {
		if errors.Is(err, session.ErrStorageFailure) {
			return Credential{}, errors.Join(ErrStorageFailure, err)
		}
		return Credential{}, errors.Join(ErrInvalid, err)
	}
	return sessionCredential(sess), nil
}

func (i *SessionIssuer) Revoke(ctx context.Context, artifact string) error {
	if !session.WellFormed(artifact) {
		return errors.Join(ErrInvalid, ErrMalformed)
	}
	sess, err := i.sessions.Peek(ctx, artifact)
	switch {
	case errors.Is(err, session.ErrSessionNotFound):
		return nil
	case err != nil:
		return errors.Join(ErrStorageFailure, err)
	}
	i.registry.Revoke(sess.ID, sess.ExpiresAt)
	if err := i.sessions.Revoke(ctx, sess.ID); err != nil {
		return errors.Join(ErrStorageFailure, err)
	}
	return nil
}

func sessionCredential(sess *session.Session) Credential {
	return Credential{
		Strategy:  StrategySession,
		Artifact:  sess.ID,
		Subject:   sess.Subject,
		ExpiresAt: sess.ExpiresAt,
	}
}
