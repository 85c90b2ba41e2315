package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dmitrymomot/authcore/modules/account"
	"github.com/dmitrymomot/authcore/pkg/auth"
	"github.com/dmitrymomot/authcore/pkg/environment"
	"github.com/dmitrymomot/authcore/pkg/httpserver"
	"github.com/dmitrymomot/authcore/pkg/logger"
	"github.com/dmitrymomot/authcore/pkg/metrics"
	"github.com/dmitrymomot/authcore/pkg/revocation"
	"github.com/dmitrymomot/authcore/pkg/session"
	"github.com/dmitrymomot/authcore/pkg/sweeper"
	"github.com/dmitrymomot/authcore/pkg/userstore"
)

// Config is everything authd reads from the environment.
type Config struct {
	Log      logger.Config
	HTTP     httpserver.Config
	Auth     auth.Config
	Users    userstore.Config
	Sessions session.Config
	Sweeper  sweeper.Config
}

func newLogger(cfg logger.Config) *slog.Logger {
	opts := logger.FromConfig(cfg)
	opts = append(opts, logger.WithContextExtractors(requestIDExtractor))
	return logger.New(opts...)
}

func requestIDExtractor(ctx context.Context) (slog.Attr, bool) {
	if id := middleware.GetReqID(ctx); id != "" {
		return logger.RequestID(id), true
	}
	return slog.Attr{}, false
}

// app holds the wired components so tests can drive the router without a
// listener.
type app struct {
	router  http.Handler
	sweeper *sweeper.Sweeper
	closers []func() error
}

func (a *app) close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	return errors.Join(errs...)
}

func build(ctx context.Context, cfg Config, log *slog.Logger) (*app, error) {
	a := &app{}
	m := metrics.New(nil)
	env := environment.Parse(cfg.Log.Environment)
	var checks []httpserver.Check

	users, closeUsers, err := userstore.Open(ctx, cfg.Users, userstore.WithLogger(log))
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, closeUsers)
	if p, ok := users.(userstore.Pinger); ok {
		checks = append(checks, httpserver.Check{Name: "users", Fn: p.Ping})
	}

	registry := revocation.New()
	log.WarnContext(ctx, "revocations are kept in process memory; they are lost on restart and not shared between instances")

	var (
		sessions *session.Manager
		pruner   sweeper.SessionPruner
	)
	if cfg.Auth.Strategy == auth.StrategySession || cfg.Auth.Strategy == "" {
		store, closeSessions, err := session.OpenStore(ctx, cfg.Sessions, session.WithStoreLogger(log))
		if err != nil {
			return nil, errors.Join(err, a.close())
		}
		a.closers = append(a.closers, closeSessions)
		if p, ok := store.(session.Pinger); ok {
			checks = append(checks, httpserver.Check{Name: "sessions", Fn: p.Ping})
		}
		sessions = session.New(store,
			session.WithDefaultTTL(cfg.Auth.DefaultTTL()),
			session.WithLogger(log),
		)
		pruner = sessions
	}

	issuer, err := cfg.Auth.NewIssuer(sessions, registry)
	if err != nil {
		return nil, errors.Join(err, a.close())
	}

	secure := cfg.Auth.SecureCookies || env.IsProduction()
	svc := auth.NewService(users, cfg.Auth.NewVerifier(), issuer,
		auth.WithLogger(log),
		auth.WithMetrics(m),
		auth.WithExtractor(cfg.Auth.Extractor()),
		auth.WithDefaultTTL(cfg.Auth.DefaultTTL()),
	)

	a.sweeper, err = sweeper.New(cfg.Sweeper.Schedule, registry, pruner,
		sweeper.WithLogger(log),
		sweeper.WithMetrics(m),
	)
	if err != nil {
		return nil, errors.Join(err, a.close())
	}

	r := chi.NewRouter()
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		m.Middleware,
	)
	r.Mount("/auth", account.New(svc,
		account.WithCookie(cfg.Auth.CookieName, secure),
		account.WithLogger(log),
	).Handle())
	r.Get("/health/live", httpserver.LivenessHandler())
	r.Get("/health/ready", httpserver.ReadinessHandler(log, checks...))
	r.Handle("/metrics", m.Handler())
	a.router = r

	log.InfoContext(ctx, "authd configured",
		logger.Strategy(string(svc.Strategy())),
		slog.String("user_store", cfg.Users.Driver),
		slog.String("session_store", cfg.Sessions.Store),
		logger.Duration(svc.DefaultTTL()),
	)
	return a, nil
}

func run(ctx context.Context, cfg Config, log *slog.Logger) error {
	a, err := build(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.close(); err != nil {
			log.Error("closing stores", logger.Error(err))
		}
	}()

	srv := httpserver.NewFromConfig(cfg.HTTP,
		httpserver.WithLogger(log),
		httpserver.WithStartHook(func(context.Context) error {
			a.sweeper.Start()
			return nil
		}),
		httpserver.WithStopHook(a.sweeper.Stop),
	)
	return srv.Run(ctx, a.router)
}
