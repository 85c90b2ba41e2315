package auth

import (
	"errors"
	"time"

	"github.com/dmitrymomot/authcore/pkg/async"
	"github.com/dmitrymomot/authcore/pkg/jwt"
	"github.com/dmitrymomot/authcore/pkg/password"
	"github.com/dmitrymomot/authcore/pkg/revocation"
	"github.com/dmitrymomot/authcore/pkg/session"
)

// Config holds the auth settings read from the environment.
type Config struct {
	Strategy      Strategy      `env:"AUTH_STRATEGY" envDefault:"session"`
	Secret        string        `env:"AUTH_SECRET"`
	SessionTTL    time.Duration `env:"AUTH_SESSION_TTL" envDefault:"24h"`
	TokenTTL      time.Duration `env:"AUTH_TOKEN_TTL" envDefault:"168h"`
	TTLSeconds    int           `env:"AUTH_TTL_SECONDS"`
	Issuer        string        `env:"AUTH_ISSUER" envDefault:"authcore"`
	CookieName    string        `env:"AUTH_COOKIE_NAME" envDefault:"session_id"`
	SecureCookies bool          `env:"AUTH_SECURE_COOKIES" envDefault:"false"`
	HashWorkers   int           `env:"AUTH_HASH_WORKERS"`
	BcryptCost    int           `env:"AUTH_BCRYPT_COST" envDefault:"10"`
}

// DefaultTTL returns the credential lifetime for the configured strategy.
// TTLSeconds, when positive, overrides both per-strategy defaults.
func (c Config) DefaultTTL() time.Duration {
	if c.TTLSeconds > 0 {
		return time.Duration(c.TTLSeconds) * time.Second
	}
	if c.Strategy == StrategyToken {
		return c.TokenTTL
	}
	return c.SessionTTL
}

// NewVerifier returns a Verifier hashing with bcrypt at BcryptCost and
// running on a pool of HashWorkers slots.
func (c Config) NewVerifier(opts ...password.Option) *password.Verifier {
	base := []password.Option{
		password.WithBcryptCost(c.BcryptCost),
		password.WithPool(async.NewPool(c.HashWorkers)),
	}
	return password.New(append(base, opts...)...)
}

// NewIssuer builds the issuer for the configured strategy. sessions is only
// used by the session strategy.
func (c Config) NewIssuer(sessions *session.Manager, registry *revocation.Registry) (Issuer, error) {
	switch c.Strategy {
	case StrategySession, "":
		if sessions == nil {
			sessions = session.New(nil)
		}
		return NewSessionIssuer(sessions, registry), nil
	case StrategyToken:
		if c.Secret == "" {
			return nil, ErrMissingSecret
		}
		tokens, err := jwt.NewFromString(c.Secret, jwt.WithIssuer(c.Issuer))
		if err != nil {
			return nil, errors.Join(ErrMissingSecret, err)
		}
		return NewTokenIssuer(tokens, registry), nil
	default:
		return nil, ErrUnknownStrategy
	}
}

// Extractor returns the header-then-cookie extractor for CookieName.
func (c Config) Extractor() session.Extractor {
	return DefaultExtractor(c.CookieName)
}
