package core

import (
	"errors"
	"testing"
	"time"
)

func TestDateValidate(t *testing.T) {
	cases := []struct {
		d  Date
		ok bool
	}{
		{NewDate(2025, 1, 1), true},
		{NewDate(2025, 12, 31), true},
		{Date{Time: time.Time{}}, false}, // zero time
	}
	for i, tc := range cases {
		err := tc.d.Validate()
		if tc.ok && err != nil {
			t.Fatalf("case %d expected ok, got %v", i, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestDateInMonth(t *testing.T) {
	d := NewDate(2021, 5, 31)
	if !d.InMonth(2021, 5) {
		t.Fatalf("expected %v in 2021-05", d)
	}
	if d.InMonth(2021, 6) || d.InMonth(2020, 5) {
		t.Fatalf("expected %v outside other months", d)
	}
}

func TestMoneyValidate(t *testing.T) {
	if err := (Money{Cents: 1}).Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := (Money{Cents: 0}).Validate(); err == nil {
		t.Fatalf("expected error for zero")
	}
}

func TestParseTransactionType(t *testing.T) {
	cases := []struct {
		in   string
		want TransactionType
		ok   bool
	}{
		{"positive", Income, true},
		{"negative", Expense, true},
		{"income", Income, true},
		{" Expense ", Expense, true},
		{"up", Income, true},
		{"sideways", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, err := ParseTransactionType(tc.in)
		if tc.ok && (err != nil || got != tc.want) {
			t.Fatalf("%q expected %q, got %q (err=%v)", tc.in, tc.want, got, err)
		}
		if !tc.ok && !errors.Is(err, ErrInvalidType) {
			t.Fatalf("%q expected ErrInvalidType, got %v", tc.in, err)
		}
	}
	if Income.Wire() != "positive" || Expense.Wire() != "negative" {
		t.Fatalf("unexpected wire values %q %q", Income.Wire(), Expense.Wire())
	}
}

func TestTransactionValidate(t *testing.T) {
	good := Transaction{
		ID:       "1",
		Name:     "Lunch",
		Amount:   Money{Cents: 100},
		Date:     NewDate(2025, 1, 1),
		Type:     Expense,
		Category: "food",
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []struct {
		mutate func(*Transaction)
		want   error
	}{
		{func(tx *Transaction) { tx.Date = Date{} }, ErrInvalidDate},
		{func(tx *Transaction) { tx.Name = "  " }, ErrEmptyName},
		{func(tx *Transaction) { tx.Amount = Money{} }, ErrInvalidAmount},
		{func(tx *Transaction) { tx.Type = "other" }, ErrInvalidType},
		{func(tx *Transaction) { tx.Category = "" }, ErrEmptyCategory},
	}
	for i, b := range bads {
		tx := good
		b.mutate(&tx)
		if err := tx.Validate(); !errors.Is(err, b.want) {
			t.Fatalf("case %d expected %v, got %v", i, b.want, err)
		}
	}
}

func TestCategoryTableLookup(t *testing.T) {
	c, ok := DefaultCategories.Lookup("food")
	if !ok || c.Name != "Alimentação" {
		t.Fatalf("unexpected lookup result: %+v ok=%v", c, ok)
	}
	if DefaultCategories.Has("rent") {
		t.Fatalf("rent should not be a default category")
	}
}
