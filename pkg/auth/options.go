package auth

import (
	"log/slog"
	"time"

	"github.com/dmitrymomot/authcore/pkg/logger"
	"github.com/dmitrymomot/authcore/pkg/metrics"
	"github.com/dmitrymomot/authcore/pkg/session"
)

type options struct {
	logger     *slog.Logger
	metrics    *metrics.Metrics
	extractor  session.Extractor
	defaultTTL time.Duration

	afterRegister func(Identity)
	afterLogin    func(Identity)
}

// Option configures the Service, Authenticator and Resolver.
type Option func(*options)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithMetrics records attempts, issuance and resolution on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

// WithExtractor replaces the precedence list used to find the artifact in a
// request. The default is the bearer header, then the session cookie.
func WithExtractor(e session.Extractor) Option {
	return func(o *options) {
		if e != nil {
			o.extractor = e
		}
	}
}

// WithDefaultTTL sets the lifetime used when IssueCredential gets no WithTTL.
func WithDefaultTTL(ttl time.Duration) Option {
	return func(o *options) {
		if ttl > 0 {
			o.defaultTTL = ttl
		}
	}
}

// WithAfterRegister sets a hook that runs after a user is created.
func WithAfterRegister(fn func(Identity)) Option {
	return func(o *options) {
		o.afterRegister = fn
	}
}

// WithAfterLogin sets a hook that runs after a successful authentication.
func WithAfterLogin(fn func(Identity)) Option {
	return func(o *options) {
		o.afterLogin = fn
	}
}

func buildOptions(opts []Option) options {
	o := options{
		logger: logger.Discard(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.extractor == nil {
		o.extractor = DefaultExtractor(session.DefaultCookieName)
	}
	return o
}

// DefaultExtractor reads the bearer header first and the named cookie second.
func DefaultExtractor(cookieName string) session.Extractor {
	return session.FirstOf(session.Bearer(), session.NewCookie(cookieName, false))
}
