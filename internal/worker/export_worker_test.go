package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"gofinances/internal/core"
	"gofinances/internal/events"
	applog "gofinances/internal/log"
)

type fakeExporter struct {
	exported []string
	err      error
}

func (f *fakeExporter) Export(_ context.Context, tx core.Transaction) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.exported = append(f.exported, tx.ID)
	return "Transactions!A1:E1", nil
}

// sliceConsumer delivers its events in order and then waits for cancellation.
type sliceConsumer struct {
	events []events.TransactionRecorded
	errs   []error
}

func (c *sliceConsumer) Consume(ctx context.Context, h events.Handler) error {
	for _, e := range c.events {
		c.errs = append(c.errs, h(ctx, e))
	}
	<-ctx.Done()
	return ctx.Err()
}

func (c *sliceConsumer) Close() error { return nil }

func event(id string) events.TransactionRecorded {
	return events.TransactionRecorded{
		UserID:      "user-1",
		ID:          id,
		Name:        "Mercado",
		AmountCents: 1000,
		Type:        "expense",
		Category:    "food",
		Date:        time.Date(2021, 5, 2, 0, 0, 0, 0, time.UTC),
	}
}

func TestExportWorkerSkipsDuplicates(t *testing.T) {
	exp := &fakeExporter{}
	consumer := &sliceConsumer{events: []events.TransactionRecorded{event("a"), event("b"), event("a")}}
	w := NewExportWorker(consumer, exp, applog.Discard())

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if err := w.Run(ctx); err != nil {
		t.Fatalf("run should stop cleanly on cancellation, got %v", err)
	}

	if len(exp.exported) != 2 || exp.exported[0] != "a" || exp.exported[1] != "b" {
		t.Fatalf("unexpected exports %v", exp.exported)
	}
}

func TestExportWorkerDropsInvalidEvents(t *testing.T) {
	exp := &fakeExporter{}
	w := NewExportWorker(&sliceConsumer{}, exp, applog.Discard())

	bad := event("x")
	bad.AmountCents = 0
	if err := w.Handle(context.Background(), bad); err != nil {
		t.Fatalf("invalid events should be dropped, got %v", err)
	}
	if len(exp.exported) != 0 {
		t.Fatalf("nothing should be exported, got %v", exp.exported)
	}
}

func TestExportWorkerRetriesAfterFailure(t *testing.T) {
	boom := errors.New("sheets unavailable")
	exp := &fakeExporter{err: boom}
	w := NewExportWorker(&sliceConsumer{}, exp, applog.Discard())

	if err := w.Handle(context.Background(), event("a")); !errors.Is(err, boom) {
		t.Fatalf("expected export error, got %v", err)
	}

	// A failed export must not be remembered as done.
	exp.err = nil
	if err := w.Handle(context.Background(), event("a")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(exp.exported) != 1 {
		t.Fatalf("expected retry to export, got %v", exp.exported)
	}
}
