package account

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/authcore/handler"
	"github.com/dmitrymomot/authcore/pkg/auth"
	"github.com/dmitrymomot/authcore/pkg/binder"
	"github.com/dmitrymomot/authcore/pkg/logger"
	"github.com/dmitrymomot/authcore/pkg/session"
)

// Module serves the account JSON API on top of an auth.Service.
type Module struct {
	auth         *auth.Service
	cookie       *session.Cookie
	errorHandler handler.ErrorHandler
	logger       *slog.Logger
	now          func() time.Time
}

// Option configures a Module.
type Option func(*Module)

// WithCookie sets the cookie the artifact is written to on login and
// cleared from on logout.
func WithCookie(name string, secure bool) Option {
	return func(m *Module) {
		m.cookie = session.NewCookie(name, secure)
	}
}

// WithLogger sets the module logger.
func WithLogger(l *slog.Logger) Option {
	return func(m *Module) {
		if l != nil {
			m.logger = l.With(logger.Component("account"))
		}
	}
}

// WithClock overrides the clock used to compute cookie lifetimes.
func WithClock(now func() time.Time) Option {
	return func(m *Module) {
		if now != nil {
			m.now = now
		}
	}
}

// New creates the account module.
func New(svc *auth.Service, opts ...Option) *Module {
	m := &Module{
		auth:   svc,
		cookie: session.NewCookie(session.DefaultCookieName, false),
		logger: logger.Discard(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.errorHandler = handler.NewErrorHandler(m.logger)
	return m
}

// Handle returns the router to mount under /auth.
//
//	r.Mount("/auth", account.New(svc).Handle())
func (m *Module) Handle() http.Handler {
	r := chi.NewRouter()

	r.Post("/register", handler.Wrap(m.register,
		handler.WithBinders[RegisterRequest](binder.JSON()),
		handler.WithErrorHandler[RegisterRequest](m.errorHandler),
	))
	r.Post("/login", handler.Wrap(m.login,
		handler.WithBinders[LoginRequest](binder.JSON()),
		handler.WithErrorHandler[LoginRequest](m.errorHandler),
	))
	r.Post("/logout", handler.Wrap(m.logout,
		handler.WithErrorHandler[struct{}](m.errorHandler),
	))

	r.Group(func(r chi.Router) {
		r.Use(m.auth.Resolver().Middleware)
		r.Get("/me", handler.Wrap(m.me, handler.WithErrorHandler[struct{}](m.errorHandler)))
		r.Get("/check", handler.Wrap(m.check, handler.WithErrorHandler[struct{}](m.errorHandler)))
		r.With(auth.RequireUser).Get("/users", handler.Wrap(m.users,
			handler.WithErrorHandler[struct{}](m.errorHandler),
		))
	})

	return r
}

// httpError attaches the status for err. The auth error stays in the chain
// for logging; the client only sees the generic status text.
func httpError(err error) error {
	switch {
	case errors.Is(err, auth.ErrConflict):
		return errors.Join(handler.ErrConflict, err)
	case errors.Is(err, auth.ErrUnauthorized), errors.Is(err, auth.ErrInvalid):
		return errors.Join(handler.ErrUnauthorized, err)
	case errors.Is(err, auth.ErrInvalidInput):
		return errors.Join(handler.ErrBadRequest, err)
	default:
		return err
	}
}
