package events

import (
	"context"
	"errors"
	"testing"

	"gofinances/internal/core"
)

func TestTransactionRecordedRoundTrip(t *testing.T) {
	tx := core.Transaction{
		ID:       "8d0c7a7e-1d7a-4a55-9b0b-6d1f6c1f9a10",
		Name:     "Mercado",
		Amount:   core.Money{Cents: 12350},
		Date:     core.NewDate(2021, 5, 2),
		Type:     core.Expense,
		Category: "food",
	}
	body, err := NewTransactionRecorded("user-1", tx).Marshal()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	e, err := Unmarshal(body)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if e.UserID != "user-1" || e.RecordedAt.IsZero() {
		t.Fatalf("unexpected event: %+v", e)
	}

	got, err := e.Transaction()
	if err != nil {
		t.Fatalf("transaction: %v", err)
	}
	if got.ID != tx.ID || got.Amount != tx.Amount || got.Type != tx.Type || !got.Date.Equal(tx.Date.Time) {
		t.Fatalf("expected %+v, got %+v", tx, got)
	}
}

func TestUnmarshalRejectsBadMessages(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", `{`},
		{"missing id", `{"name":"x","amount_cents":1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Unmarshal([]byte(tt.body)); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestTransactionRejectsInvalidType(t *testing.T) {
	e := TransactionRecorded{ID: "x", Name: "n", AmountCents: 1, Type: "transfer", Category: "food"}
	if _, err := e.Transaction(); !errors.Is(err, core.ErrInvalidType) {
		t.Fatalf("expected ErrInvalidType, got %v", err)
	}
}

func TestNoop(t *testing.T) {
	var p Publisher = Noop{}
	if err := p.PublishTransactionRecorded(context.Background(), TransactionRecorded{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := p.Close(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
