package sheets

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gofinances/internal/core"
	applog "gofinances/internal/log"
)

type fakeAppender struct {
	rng  string
	rows [][]any
	err  error
}

func (f *fakeAppender) AppendRow(_ context.Context, _ string, rng string, row []any) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.rng = rng
	f.rows = append(f.rows, row)
	return "Transactions!A2:E2", nil
}

func sample() core.Transaction {
	return core.Transaction{
		ID:       "tx-1",
		Name:     "Mercado",
		Amount:   core.Money{Cents: 123450},
		Date:     core.NewDate(2021, 5, 2),
		Type:     core.Expense,
		Category: "food",
	}
}

func TestRow(t *testing.T) {
	got := Row(sample())
	want := []any{"2021-05-02", "Mercado", "expense", "food", "1234.50"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("column %d: expected %v, got %v", i, want[i], got[i])
		}
	}
}

func TestExport(t *testing.T) {
	api := &fakeAppender{}
	e := newExporter(api, "sheet-id", "Transactions", applog.Discard())

	ref, err := e.Export(context.Background(), sample())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ref != "Transactions!A2:E2" || api.rng != "Transactions!A:E" || len(api.rows) != 1 {
		t.Fatalf("unexpected append: ref=%q rng=%q rows=%v", ref, api.rng, api.rows)
	}
}

func TestExportRejectsInvalidTransaction(t *testing.T) {
	api := &fakeAppender{}
	e := newExporter(api, "sheet-id", "Transactions", applog.Discard())
	tx := sample()
	tx.Amount = core.Money{}
	if _, err := e.Export(context.Background(), tx); !errors.Is(err, core.ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
	if len(api.rows) != 0 {
		t.Fatal("invalid transaction must not be appended")
	}
}

func TestExportWrapsAPIError(t *testing.T) {
	boom := errors.New("quota exceeded")
	e := newExporter(&fakeAppender{err: boom}, "sheet-id", "Transactions", applog.Discard())
	if _, err := e.Export(context.Background(), sample()); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped api error, got %v", err)
	}
}

func TestLoadCredentials(t *testing.T) {
	t.Setenv("GOOGLE_SERVICE_ACCOUNT_JSON", "")
	t.Setenv("GOOGLE_SERVICE_ACCOUNT_FILE", "")
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "")
	if _, err := loadCredentials(); err == nil || !strings.Contains(err.Error(), "missing service account") {
		t.Fatalf("expected missing credentials error, got %v", err)
	}

	path := filepath.Join(t.TempDir(), "sa.json")
	if err := os.WriteFile(path, []byte(`{"type":"service_account"}`), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", path)
	data, err := loadCredentials()
	if err != nil || !strings.Contains(string(data), "service_account") {
		t.Fatalf("unexpected credentials %q: %v", data, err)
	}

	t.Setenv("GOOGLE_SERVICE_ACCOUNT_JSON", `{"inline":true}`)
	data, err = loadCredentials()
	if err != nil || string(data) != `{"inline":true}` {
		t.Fatalf("inline json should take precedence, got %q: %v", data, err)
	}
}
