package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/dmitrymomot/authcore/pkg/logger"
	"github.com/dmitrymomot/authcore/pkg/metrics"
	"github.com/dmitrymomot/authcore/pkg/password"
	"github.com/dmitrymomot/authcore/pkg/userstore"
)

// Service is the entry point for registration, login, credential issuance,
// identity resolution and revocation.
type Service struct {
	store         userstore.Store
	verifier      *password.Verifier
	issuer        Issuer
	authenticator *Authenticator
	resolver      *Resolver
	defaultTTL    time.Duration
	logger        *slog.Logger
	metrics       *metrics.Metrics
	afterRegister func(Identity)
}

// NewService wires the components together. A nil verifier means
// password.New(). Without WithDefaultTTL the lifetime follows the issuer's
// strategy: DefaultSessionTTL or DefaultTokenTTL.
func NewService(store userstore.Store, verifier *password.Verifier, issuer Issuer, opts ...Option) *Service {
	if verifier == nil {
		verifier = password.New()
	}
	o := buildOptions(opts)
	ttl := o.defaultTTL
	if ttl == 0 {
		ttl = DefaultSessionTTL
		if issuer.Strategy() == StrategyToken {
			ttl = DefaultTokenTTL
		}
	}
	return &Service{
		store:         store,
		verifier:      verifier,
		issuer:        issuer,
		authenticator: NewAuthenticator(store, verifier, opts...),
		resolver:      NewResolver(issuer, store, opts...),
		defaultTTL:    ttl,
		logger:        o.logger.With(logger.Component("auth")),
		metrics:       o.metrics,
		afterRegister: o.afterRegister,
	}
}

// Resolver returns the resolver used by ResolveIdentity and the middleware.
func (s *Service) Resolver() *Resolver { return s.resolver }

// Strategy returns the strategy credentials are issued with.
func (s *Service) Strategy() Strategy { return s.issuer.Strategy() }

// DefaultTTL returns the lifetime of credentials issued without WithTTL.
func (s *Service) DefaultTTL() time.Duration { return s.defaultTTL }

// Authenticate checks username and password. Every failure is ErrUnauthorized.
func (s *Service) Authenticate(ctx context.Context, username, password string) (Identity, error) {
	return s.authenticator.Authenticate(ctx, username, password)
}

// CreateUser hashes password with the primary scheme and stores a new user.
func (s *Service) CreateUser(ctx context.Context, username, email, pw string) (Identity, error) {
	if strings.TrimSpace(username) == "" {
		s.metrics.UserCreated(metrics.ResultFailure)
		return Anonymous, errors.Join(ErrInvalidInput, userstore.ErrInvalidRecord)
	}

	hash, err := s.verifier.HashContext(ctx, pw)
	if err != nil {
		s.metrics.UserCreated(metrics.ResultFailure)
		if errors.Is(err, password.ErrPasswordTooLong) {
			return Anonymous, errors.Join(ErrInvalidInput, err)
		}
		return Anonymous, err
	}

	rec, err := s.store.Create(ctx, username, email, hash)
	if err != nil {
		err = storeError(err)
		if errors.Is(err, ErrStorageFailure) {
			s.logger.ErrorContext(ctx, "user creation failed", logger.Username(username), logger.Error(err))
			s.metrics.UserCreated(metrics.ResultError)
		} else {
			s.metrics.UserCreated(metrics.ResultFailure)
		}
		return Anonymous, err
	}

	id := identityFromRecord(rec)
	s.logger.InfoContext(ctx, "user created", logger.UserID(id.UserID), logger.Username(id.Username))
	s.metrics.UserCreated(metrics.ResultSuccess)
	if s.afterRegister != nil {
		s.afterRegister(id)
	}
	return id, nil
}

type issueOptions struct {
	ttl time.Duration
}

// IssueOption configures one IssueCredential call.
type IssueOption func(*issueOptions)

// WithTTL overrides the credential lifetime. A ttl of zero or less yields a
// credential that is already invalid.
func WithTTL(ttl time.Duration) IssueOption {
	return func(o *issueOptions) {
		o.ttl = ttl
	}
}

// IssueCredential issues a credential for id with the configured strategy.
func (s *Service) IssueCredential(ctx context.Context, id Identity, opts ...IssueOption) (Credential, error) {
	if id.IsAnonymous() {
		return Credential{}, errors.Join(ErrInvalidInput, ErrAnonymous)
	}
	o := issueOptions{ttl: s.defaultTTL}
	for _, opt := range opts {
		opt(&o)
	}

	cred, err := s.issuer.Issue(ctx, id.UserID, o.ttl)
	if err != nil {
		s.logger.ErrorContext(ctx, "credential issuance failed",
			logger.UserID(id.UserID),
			logger.Strategy(string(s.issuer.Strategy())),
			logger.Error(err),
		)
		return Credential{}, err
	}
	s.metrics.CredentialIssued(string(cred.Strategy))
	return cred, nil
}

// ResolveIdentity maps artifact to the identity it was issued for. Any
// failure yields Anonymous.
func (s *Service) ResolveIdentity(ctx context.Context, artifact string) Identity {
	return s.resolver.Resolve(ctx, artifact)
}

// Revoke invalidates artifact. A malformed artifact is ErrInvalid; an
// expired or unknown one is not an error.
func (s *Service) Revoke(ctx context.Context, artifact string) error {
	if err := s.issuer.Revoke(ctx, artifact); err != nil {
		return err
	}
	s.metrics.CredentialRevoked(string(s.issuer.Strategy()))
	return nil
}
