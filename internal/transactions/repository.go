package transactions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"gofinances/internal/core"
	applog "gofinances/internal/log"
	"gofinances/internal/storage"
)

// Repository reads and writes a user's transaction list through a storage.Store.
type Repository struct {
	store  storage.Store
	logger *applog.Logger
}

func NewRepository(store storage.Store, logger *applog.Logger) *Repository {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	return &Repository{store: store, logger: logger.WithComponent(applog.ComponentTransactions)}
}

// List returns every decodable transaction of userID in stored order.
// A missing key yields an empty list. Malformed records are skipped and logged.
func (r *Repository) List(ctx context.Context, userID string) ([]core.Transaction, error) {
	key := storage.TransactionsKey(userID)
	data, err := r.store.Get(ctx, key)
	if errors.Is(err, storage.ErrNotFound) {
		return []core.Transaction{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load transactions: %w", err)
	}
	if len(data) == 0 || string(data) == "null" {
		return []core.Transaction{}, nil
	}

	txs, bad, err := decodeList(data)
	if err != nil {
		return nil, err
	}
	for _, b := range bad {
		r.logger.WarnContext(ctx, "Skipping malformed transaction record",
			applog.FieldUserID, userID,
			applog.FieldStorageKey, key,
			"index", b.Index,
			applog.FieldTransactionID, b.ID,
			applog.FieldOperation, applog.OpDecode,
			applog.FieldError, b.Err.Error())
	}
	return txs, nil
}

// Add validates tx and appends it to the stored list. Records already in
// storage are written back untouched, including ones List would skip.
func (r *Repository) Add(ctx context.Context, userID string, tx core.Transaction) error {
	if err := tx.Validate(); err != nil {
		return err
	}

	key := storage.TransactionsKey(userID)
	var raw []json.RawMessage
	if _, err := storage.GetJSON(ctx, r.store, key, &raw); err != nil {
		return fmt.Errorf("load transactions: %w", err)
	}

	item, err := json.Marshal(toRecord(tx))
	if err != nil {
		return fmt.Errorf("encode transaction: %w", err)
	}
	raw = append(raw, item)

	if err := storage.SetJSON(ctx, r.store, key, raw); err != nil {
		return fmt.Errorf("save transactions: %w", err)
	}
	return nil
}

// Clear removes every transaction of userID.
func (r *Repository) Clear(ctx context.Context, userID string) error {
	if err := r.store.Remove(ctx, storage.TransactionsKey(userID)); err != nil {
		return fmt.Errorf("clear transactions: %w", err)
	}
	return nil
}
