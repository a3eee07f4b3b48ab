package worker

import (
	"context"
	"fmt"
	"time"

	"gofinances/internal/cache"
	"gofinances/internal/core"
	"gofinances/internal/events"
	applog "gofinances/internal/log"
)

const (
	seenCapacity = 10000
	seenTTL      = 24 * time.Hour
)

// Exporter writes one transaction to an external destination.
type Exporter interface {
	Export(ctx context.Context, tx core.Transaction) (ref string, err error)
}

// ExportWorker forwards TransactionRecorded events to an Exporter.
// Events whose ID was already exported in this process are skipped.
type ExportWorker struct {
	consumer events.Consumer
	exporter Exporter
	seen     *cache.LRUCache[struct{}]
	logger   *applog.Logger
}

func NewExportWorker(consumer events.Consumer, exporter Exporter, logger *applog.Logger) *ExportWorker {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	return &ExportWorker{
		consumer: consumer,
		exporter: exporter,
		seen:     cache.NewLRUCache[struct{}](seenCapacity, seenTTL),
		logger:   logger.WithComponent(applog.ComponentWorker),
	}
}

// Seen exposes the dedupe cache so callers can register it for cleanup.
func (w *ExportWorker) Seen() cache.Cleaner {
	return w.seen
}

// Run consumes events until ctx is cancelled.
func (w *ExportWorker) Run(ctx context.Context) error {
	w.logger.InfoContext(ctx, "Export worker started")
	err := w.consumer.Consume(ctx, w.Handle)
	if ctx.Err() != nil {
		w.logger.InfoContext(ctx, "Export worker stopped")
		return nil
	}
	return err
}

// Handle exports a single event. Invalid events are logged and dropped
// so they are not redelivered forever.
func (w *ExportWorker) Handle(ctx context.Context, e events.TransactionRecorded) error {
	if _, dup := w.seen.Get(e.ID); dup {
		w.logger.DebugContext(ctx, "Skipping already exported transaction", applog.FieldTransactionID, e.ID)
		return nil
	}

	tx, err := e.Transaction()
	if err != nil {
		w.logger.WarnContext(ctx, "Dropping invalid transaction event",
			applog.FieldTransactionID, e.ID,
			applog.FieldUserID, e.UserID,
			applog.FieldError, err.Error())
		return nil
	}

	start := time.Now()
	ref, err := w.exporter.Export(ctx, tx)
	if err != nil {
		return fmt.Errorf("export transaction %s: %w", e.ID, err)
	}
	w.seen.Set(e.ID, struct{}{})

	w.logger.InfoContext(ctx, "Transaction exported",
		applog.FieldTransactionID, e.ID,
		applog.FieldUserID, e.UserID,
		applog.FieldOperation, applog.OpExport,
		"ref", ref,
		applog.FieldDuration, time.Since(start).Milliseconds())
	return nil
}
