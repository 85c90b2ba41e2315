// Command authd serves the account API under /auth together with health
// probes and Prometheus metrics.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrymomot/authcore/pkg/config"
	"github.com/dmitrymomot/authcore/pkg/logger"
)

func main() {
	var cfg Config
	config.MustLoad(&cfg)

	log := newLogger(cfg.Log)
	logger.SetAsDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("authd stopped", logger.Error(err))
		os.Exit(1)
	}
}
