package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"TradeScope/internal/usecase"
	"TradeScope/pkg/cache"
	"TradeScope/pkg/config"
	xhttp "TradeScope/pkg/http"
	applogger "TradeScope/pkg/logger"
)

// App encapsulates the application lifecycle: the HTTP server, the
// optional scheduled evaluator, and infrastructure teardown.
type App struct {
	cfg        *config.Config
	log        *applogger.Logger
	handler    xhttp.Handler
	evaluator  *usecase.Evaluator
	cache      cache.Service
	httpServer *xhttp.Server
}

// New creates the application. The evaluator may be nil when the
// scheduled sweep is disabled.
func New(cfg *config.Config, log *applogger.Logger, handler xhttp.Handler,
	evaluator *usecase.Evaluator, c cache.Service) *App {
	return &App{
		cfg:       cfg,
		log:       log,
		handler:   handler,
		evaluator: evaluator,
		cache:     c,
	}
}

// Run starts the HTTP server and the evaluator, then blocks until an
// interrupt or termination signal arrives.
func (a *App) Run() error {
	a.httpServer = xhttp.NewServer(a.handler, a.log,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
		xhttp.WithMetricsPath(a.cfg.Metrics.Path),
	)

	if err := a.httpServer.Start(); err != nil {
		a.log.Error("http server start error", applogger.Error(err))
		return err
	}

	if a.evaluator != nil {
		if err := a.evaluator.Start(); err != nil {
			a.log.Error("evaluator start error", applogger.Error(err))
			return err
		}
		a.log.Info("evaluator scheduled",
			applogger.String("schedule", a.cfg.Evaluator.Schedule),
			applogger.Strings("watchlist", a.cfg.Evaluator.Watchlist),
		)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.log.Info("shutdown signal received")
	return a.shutdown()
}

// shutdown stops the evaluator first so no sweep is mid-flight while
// the fetch layer is being torn down.
func (a *App) shutdown() error {
	if a.evaluator != nil {
		a.evaluator.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := a.httpServer.Stop(ctx); err != nil {
		a.log.Error("http shutdown error", applogger.Error(err))
		return err
	}

	if err := a.cache.Close(); err != nil {
		a.log.Warn("cache close error", applogger.Error(err))
	}

	a.log.Info("shutdown complete")
	return nil
}
