package main

import (
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"gofinances/internal/backend"
	"gofinances/internal/cache"
	"gofinances/internal/cli"
	"gofinances/internal/config"
	"gofinances/internal/export/sheets"
	applog "gofinances/internal/log"
	"gofinances/internal/worker"
)

func main() {
	cfg, logger := cli.LoadConfig((*config.Config).ValidateWorker)
	logger = logger.WithComponent(applog.ComponentWorker)
	logger.Info("Starting gofinances-worker", "events", cfg.EventsBackend, "sheet", cfg.GoogleSheetName)

	if err := run(cfg, logger); err != nil {
		logger.Error("Worker stopped with error", applog.FieldError, err.Error())
		os.Exit(1)
	}
	logger.Info("Worker stopped gracefully")
}

func run(cfg *config.Config, logger *applog.Logger) error {
	ctx, cancel := cli.SignalContext(logger)
	defer cancel()

	exporter, err := sheets.New(ctx, cfg.GoogleSpreadsheetID, cfg.GoogleSheetName, logger)
	if err != nil {
		return err
	}

	consumer, err := backend.NewFactory(cfg, logger).Consumer()
	if err != nil {
		return err
	}
	defer consumer.Close()

	w := worker.NewExportWorker(consumer, exporter, logger)

	cacheManager := cache.NewManager(logger)
	cacheManager.Register(w.Seen())
	cacheManager.StartCleanup(time.Hour)
	defer cacheManager.Stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return w.Run(gctx)
	})
	return g.Wait()
}
