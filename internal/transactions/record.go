package transactions

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"gofinances/internal/core"
)

// record is the persisted shape of a transaction. It mirrors what the
// mobile client writes: amount as a string or number, type as
// "positive"/"negative", date as a serialized timestamp.
type record struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Amount   json.RawMessage `json:"amount"`
	Type     string          `json:"type"`
	Category string          `json:"category"`
	Date     string          `json:"date"`
}

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func toRecord(tx core.Transaction) record {
	amount, _ := json.Marshal(tx.Amount.String())
	return record{
		ID:       tx.ID,
		Name:     tx.Name,
		Amount:   amount,
		Type:     tx.Type.Wire(),
		Category: tx.Category,
		Date:     tx.Date.UTC().Format(time.RFC3339Nano),
	}
}

func (r record) toTransaction() (core.Transaction, error) {
	cents, err := parseAmount(r.Amount)
	if err != nil {
		return core.Transaction{}, err
	}
	typ, err := core.ParseTransactionType(r.Type)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("type %q: %w", r.Type, err)
	}
	date, err := parseDate(r.Date)
	if err != nil {
		return core.Transaction{}, err
	}
	return core.Transaction{
		ID:       r.ID,
		Name:     r.Name,
		Amount:   core.Money{Cents: cents},
		Date:     date,
		Type:     typ,
		Category: r.Category,
	}, nil
}

func parseAmount(raw json.RawMessage) (int64, error) {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" {
		return 0, fmt.Errorf("amount missing: %w", core.ErrInvalidAmount)
	}
	if strings.HasPrefix(s, `"`) {
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, fmt.Errorf("amount %s: %w", raw, core.ErrInvalidAmount)
		}
	}
	cents, err := core.ParseDecimalToCents(s)
	if err != nil {
		return 0, fmt.Errorf("amount %s: %w", raw, err)
	}
	return cents, nil
}

func parseDate(s string) (core.Date, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return core.Date{Time: t}, nil
		}
	}
	return core.Date{}, fmt.Errorf("date %q: %w", s, core.ErrInvalidDate)
}

// decodeList decodes a stored list. Records that cannot be decoded are
// returned as skipped entries together with the reason.
func decodeList(data []byte) ([]core.Transaction, []skipped, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, nil, fmt.Errorf("stored transactions are not a JSON array: %w", err)
	}

	txs := make([]core.Transaction, 0, len(raw))
	var bad []skipped
	for i, item := range raw {
		var r record
		if err := json.Unmarshal(item, &r); err != nil {
			bad = append(bad, skipped{Index: i, Err: err})
			continue
		}
		tx, err := r.toTransaction()
		if err != nil {
			bad = append(bad, skipped{Index: i, ID: r.ID, Err: err})
			continue
		}
		txs = append(txs, tx)
	}
	return txs, bad, nil
}

type skipped struct {
	Index int
	ID    string
	Err   error
}
