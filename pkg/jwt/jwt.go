package jwt

import (
	"errors"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims is the decoded payload of an access token.
type Claims struct {
	ID        string
	Subject   string
	Issuer    string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Service signs and verifies HS256 access tokens.
// Every token carries sub, exp, iat and a unique jti.
type Service struct {
	signingKey []byte
	issuer     string
	now        func() time.Time
	newID      func() string
}

// Option configures a Service.
type Option func(*Service)

// WithIssuer sets the iss claim and requires it on parse.
func WithIssuer(issuer string) Option {
	return func(s *Service) { s.issuer = issuer }
}

// WithClock overrides the clock used for iat, exp and validation.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDGenerator overrides the jti generator (UUID v4 by default).
func WithIDGenerator(fn func() string) Option {
	return func(s *Service) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// New creates a Service. The key should be at least 32 random bytes.
func New(signingKey []byte, opts ...Option) (*Service, error) {
	if len(signingKey) == 0 {
		return nil, ErrMissingSigningKey
	}
	s := &Service{
		signingKey: signingKey,
		now:        time.Now,
		newID:      uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// NewFromString is New for string keys loaded from configuration.
func NewFromString(signingKey string, opts ...Option) (*Service, error) {
	return New([]byte(signingKey), opts...)
}

// Issue signs a token for subject that expires ttl from now. A ttl of zero or
// less yields a token that is already expired.
func (s *Service) Issue(subject string, ttl time.Duration) (string, Claims, error) {
	if subject == "" {
		return "", Claims{}, ErrMissingSubject
	}

	now := s.now()
	registered := gojwt.RegisteredClaims{
		ID:        s.newID(),
		Subject:   subject,
		Issuer:    s.issuer,
		IssuedAt:  gojwt.NewNumericDate(now),
		ExpiresAt: gojwt.NewNumericDate(now.Add(ttl)),
	}

	token, err := gojwt.NewWithClaims(gojwt.SigningMethodHS256, registered).SignedString(s.signingKey)
	if err != nil {
		return "", Claims{}, errors.Join(ErrSigningFailed, err)
	}
	return token, fromRegistered(registered), nil
}

// Parse verifies the signature and expiry of token.
//
// An expired but otherwise valid token returns its claims together with
// ErrExpiredToken, so callers can still learn which jti it carried.
func (s *Service) Parse(token string) (Claims, error) {
	var registered gojwt.RegisteredClaims

	opts := []gojwt.ParserOption{
		gojwt.WithValidMethods([]string{gojwt.SigningMethodHS256.Alg()}),
		gojwt.WithTimeFunc(s.now),
		gojwt.WithExpirationRequired(),
	}
	if s.issuer != "" {
		opts = append(opts, gojwt.WithIssuer(s.issuer))
	}

	_, err := gojwt.ParseWithClaims(token, &registered, func(*gojwt.Token) (any, error) {
		return s.signingKey, nil
	}, opts...)

	switch {
	case err == nil:
	case errors.Is(err, gojwt.ErrTokenExpired):
		return fromRegistered(registered), errors.Join(ErrExpiredToken, err)
	case errors.Is(err, gojwt.ErrTokenSignatureInvalid):
		return Claims{}, errors.Join(ErrInvalidSignature, err)
	default:
		return Claims{}, errors.Join(ErrInvalidToken, err)
	}

	if registered.Subject == "" || registered.ID == "" {
		return Claims{}, ErrInvalidToken
	}
	return fromRegistered(registered), nil
}

func fromRegistered(c gojwt.RegisteredClaims) Claims {
	out := Claims{ID: c.ID, Subject: c.Subject, Issuer: c.Issuer}
	if c.IssuedAt != nil {
		out.IssuedAt = c.IssuedAt.UTC()
	}
	if c.ExpiresAt != nil {
		out.ExpiresAt = c.ExpiresAt.UTC()
	}
	return out
}
