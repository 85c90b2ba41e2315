// Package httpserver runs the authentication HTTP API with graceful shutdown
// and serves the liveness and readiness probes.
//
// Run blocks until its context is cancelled or SIGINT/SIGTERM arrives, then
// drains in-flight requests within the shutdown timeout and runs the stop
// hooks. Listen failures are joined with ErrStart, drain failures with
// ErrShutdown.
//
// ReadinessHandler takes named checks, usually the Ping methods of the user
// and session stores, and reports each one:
//
//	r.Get("/health/live", httpserver.LivenessHandler())
//	r.Get("/health/ready", httpserver.ReadinessHandler(log,
//		httpserver.Check{Name: "users", Fn: users.Ping},
//	))
//
//	srv := httpserver.NewFromConfig(cfg.HTTP, httpserver.WithLogger(log))
//	if err := srv.Run(ctx, r); err != nil {
//		log.Error("server stopped", logger.Error(err))
//	}
package httpserver
