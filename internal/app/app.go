package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/hamed0406/servicepoller/internal/config"
	"github.com/hamed0406/servicepoller/internal/httpapi"
	"github.com/hamed0406/servicepoller/internal/probe"
	"github.com/hamed0406/servicepoller/internal/repo"
	"github.com/hamed0406/servicepoller/internal/repo/memory"
	pg "github.com/hamed0406/servicepoller/internal/repo/postgres"
	rds "github.com/hamed0406/servicepoller/internal/repo/redis"
	"github.com/hamed0406/servicepoller/internal/scheduler"
	"github.com/hamed0406/servicepoller/internal/seed"
)

type App struct {
	cfg    *config.Config
	log    *zap.Logger
	store  repo.ServiceStore
	poller *scheduler.Poller
	server *http.Server
}

// New opens the configured store, applies the seed file and builds the
// poller and HTTP server. Nothing runs until Run.
func New(ctx context.Context, cfg *config.Config, log *zap.Logger) (*App, error) {
	store, err := openStore(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	if cfg.SeedFile != "" {
		f, err := seed.Load(cfg.SeedFile)
		if err != nil {
			return nil, multierr.Append(err, closeStore(store))
		}
		// invalid entries are reported but do not block startup
		if _, err := seed.Apply(ctx, store, log, f, time.Now); err != nil {
			log.Warn("seed_entries_rejected", zap.Errors("errors", multierr.Errors(err)))
		}
	}

	poller := scheduler.NewPoller(
		log,
		store,
		probe.NewHTTPChecker(cfg.ProbeTimeout()),
		cfg.PollInterval(),
		cfg.ProbeTimeout(),
		cfg.MaxConcurrentChecks,
	)

	api := httpapi.NewServer(log, store, cfg.WriteRPM, cfg.WriteBurst)
	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.Router(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	return &App{cfg: cfg, log: log, store: store, poller: poller, server: server}, nil
}

func openStore(ctx context.Context, cfg *config.Config, log *zap.Logger) (repo.ServiceStore, error) {
	switch cfg.Store() {
	case config.StorePostgres:
		s, err := pg.New(ctx, cfg.DatabaseURL, log)
		if err != nil {
			return nil, fmt.Errorf("postgres: %w", err)
		}
		return s, nil
	case config.StoreRedis:
		s, err := rds.New(ctx, rds.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		}, log)
		if err != nil {
			return nil, fmt.Errorf("redis: %w", err)
		}
		return s, nil
	default:
		log.Info("memory_store_selected")
		return memory.New(), nil
	}
}

func closeStore(s repo.ServiceStore) error {
	if c, ok := s.(repo.Closer); ok {
		return c.Close()
	}
	return nil
}

// Run listens on the configured address until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", a.cfg.Addr)
	if err != nil {
		return multierr.Append(fmt.Errorf("listen %s: %w", a.cfg.Addr, err), closeStore(a.store))
	}
	return a.Serve(ctx, ln)
}

// Serve runs the poller and the HTTP server on ln. On cancel it stops
// accepting requests, lets the in-flight poll cycle finish and closes the
// store.
func (a *App) Serve(ctx context.Context, ln net.Listener) error {
	a.log.Info("api_listen",
		zap.String("addr", ln.Addr().String()),
		zap.String("store", a.cfg.Store()),
	)

	pollCtx, stopPolling := context.WithCancel(ctx)
	defer stopPolling()
	pollerDone := make(chan struct{})
	go func() {
		defer close(pollerDone)
		a.poller.Run(pollCtx)
	}()

	errCh := make(chan error, 1)
	go func() {
		if err := a.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
		a.log.Info("shutdown_started")
	case runErr = <-errCh:
		a.log.Error("http_server_failed", zap.Error(runErr))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout())
	defer cancel()
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		runErr = multierr.Append(runErr, fmt.Errorf("http shutdown: %w", err))
	}

	stopPolling()
	<-pollerDone

	if err := closeStore(a.store); err != nil {
		runErr = multierr.Append(runErr, fmt.Errorf("close store: %w", err))
	}

	if runErr == nil {
		a.log.Info("shutdown_complete")
	}
	return runErr
}
