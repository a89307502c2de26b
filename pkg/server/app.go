package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"VolEdge/pkg/config"
	xhttp "VolEdge/pkg/http"
	applogger "VolEdge/pkg/logger"
)

// Sweeper drops idle per-client state, e.g. rate limiter buckets.
type Sweeper interface {
	Sweep() int
}

// App encapsulates the entire application lifecycle.
type App struct {
	cfg        *config.Config
	httpServer *xhttp.Server
	sweeper    Sweeper
	log        *applogger.Logger
	sweepEvery time.Duration
}

// New creates a new App instance with all dependencies.
func New(cfg *config.Config, srv *xhttp.Server, sweeper Sweeper, l *applogger.Logger) *App {
	if l == nil {
		l = applogger.Nop()
	}
	return &App{
		cfg:        cfg,
		httpServer: srv,
		sweeper:    sweeper,
		log:        l.With("component", "app"),
		sweepEvery: time.Minute,
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return a.RunContext(ctx)
}

// RunContext starts the HTTP server and blocks until ctx is done, then shuts down.
func (a *App) RunContext(ctx context.Context) error {
	if err := a.httpServer.Start(); err != nil {
		a.log.Error("http server start error", applogger.Error(err))
		return err
	}
	a.log.Info("voledge started",
		applogger.String("vrp_profile", a.cfg.Engine.VRP.Profile),
		applogger.String("history_source", a.cfg.History.Source),
		applogger.Bool("redis", a.cfg.Cache.Redis.Enabled),
		applogger.Int("port", a.cfg.Server.Port),
	)

	if a.sweeper != nil {
		go a.sweep(ctx)
	}

	<-ctx.Done()
	a.log.Info("shutdown signal received")
	return a.shutdown()
}

func (a *App) sweep(ctx context.Context) {
	t := time.NewTicker(a.sweepEvery)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := a.sweeper.Sweep(); n > 0 {
				a.log.Debug("rate limiter swept", applogger.Int("clients", n))
			}
		}
	}
}

// shutdown gracefully stops the HTTP server. Infrastructure clients are closed by the DI cleanup.
func (a *App) shutdown() error {
	if err := a.httpServer.Stop(context.Background()); err != nil {
		a.log.Error("http shutdown error", applogger.Error(err))
		return err
	}
	a.log.Info("shutdown complete")
	return nil
}
