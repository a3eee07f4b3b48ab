// Package events carries notifications about recorded transactions to
// out-of-process consumers such as the spreadsheet export worker.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gofinances/internal/core"
)

// TransactionRecorded is published after a transaction is persisted.
// It carries the full record so consumers never read user storage.
type TransactionRecorded struct {
	UserID      string    `json:"user_id"`
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	AmountCents int64     `json:"amount_cents"`
	Type        string    `json:"type"`
	Category    string    `json:"category"`
	Date        time.Time `json:"date"`
	RecordedAt  time.Time `json:"recorded_at"`
}

// NewTransactionRecorded builds the event for tx owned by userID.
func NewTransactionRecorded(userID string, tx core.Transaction) TransactionRecorded {
	return TransactionRecorded{
		UserID:      userID,
		ID:          tx.ID,
		Name:        tx.Name,
		AmountCents: tx.Amount.Cents,
		Type:        string(tx.Type),
		Category:    tx.Category,
		Date:        tx.Date.Time,
		RecordedAt:  time.Now().UTC(),
	}
}

// Transaction converts the event back into a domain transaction.
func (e TransactionRecorded) Transaction() (core.Transaction, error) {
	typ, err := core.ParseTransactionType(e.Type)
	if err != nil {
		return core.Transaction{}, err
	}
	tx := core.Transaction{
		ID:       e.ID,
		Name:     e.Name,
		Amount:   core.Money{Cents: e.AmountCents},
		Date:     core.Date{Time: e.Date},
		Type:     typ,
		Category: e.Category,
	}
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}
	return tx, nil
}

func (e TransactionRecorded) Marshal() ([]byte, error) {
	return json.Marshal(e)
}

// Unmarshal decodes a TransactionRecorded and rejects messages without an ID.
func Unmarshal(data []byte) (TransactionRecorded, error) {
	var e TransactionRecorded
	if err := json.Unmarshal(data, &e); err != nil {
		return TransactionRecorded{}, fmt.Errorf("decode event: %w", err)
	}
	if e.ID == "" {
		return TransactionRecorded{}, fmt.Errorf("decode event: missing transaction id")
	}
	return e, nil
}

// Publisher sends TransactionRecorded events to a broker.
type Publisher interface {
	PublishTransactionRecorded(ctx context.Context, e TransactionRecorded) error
	Close() error
}

// Handler processes one consumed event. Returning an error asks the
// consumer to redeliver the message.
type Handler func(ctx context.Context, e TransactionRecorded) error

// Consumer delivers events to a Handler until ctx is cancelled.
type Consumer interface {
	Consume(ctx context.Context, h Handler) error
	Close() error
}

// Noop discards every event. It is used when no broker is configured.
type Noop struct{}

func (Noop) PublishTransactionRecorded(context.Context, TransactionRecorded) error { return nil }

func (Noop) Close() error { return nil }
