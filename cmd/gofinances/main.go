package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"gofinances/internal/backend"
	"gofinances/internal/cache"
	"gofinances/internal/cli"
	"gofinances/internal/config"
	"gofinances/internal/core"
	apphttp "gofinances/internal/http"
	applog "gofinances/internal/log"
	"gofinances/internal/services"
	"gofinances/internal/session"
	"gofinances/internal/transactions"
)

const shutdownTimeout = 30 * time.Second

func main() {
	cfg, logger := cli.LoadConfig((*config.Config).Validate)
	logger.Info("Starting gofinances", "port", cfg.Port, "storage", cfg.StorageBackend, "events", cfg.EventsBackend)

	if err := run(cfg, logger); err != nil {
		logger.Error("Server stopped with error", applog.FieldError, err.Error())
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}

func run(cfg *config.Config, logger *applog.Logger) error {
	ctx, cancel := cli.SignalContext(logger)
	defer cancel()

	factory := backend.NewFactory(cfg, logger)
	store, err := factory.Store(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	publisher := factory.Publisher()
	defer publisher.Close()

	listCache := cache.NewLRUCache[[]core.Transaction](cfg.CacheSize, cfg.CacheTTL)
	cacheManager := cache.NewManager(logger)
	cacheManager.Register(listCache)
	cacheManager.StartCleanup(time.Minute)
	defer cacheManager.Stop()

	finance := services.NewFinanceService(
		transactions.NewRepository(store, logger),
		core.DefaultCategories,
		listCache,
		publisher,
		logger,
	)
	srv := apphttp.NewServer(apphttp.Options{
		Addr:           ":" + cfg.Port,
		RequestTimeout: cfg.RequestTimeout,
		Ready:          backend.ReadyCheck(store),
	}, finance, session.NewManager(store), logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("HTTP server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer shutdownCancel()
		logger.Info("Shutting down HTTP server", applog.FieldOperation, applog.OpShutdown)
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
