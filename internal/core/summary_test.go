package core

import (
	"testing"

	"github.com/shopspring/decimal"
)

func tx(id string, cents int64, typ TransactionType, category string, d Date) Transaction {
	return Transaction{ID: id, Name: id, Amount: Money{Cents: cents}, Date: d, Type: typ, Category: category}
}

func TestAggregateEmpty(t *testing.T) {
	res := Aggregate(nil, DefaultCategories, AllTime())
	if res.IncomeTotal.Cents != 0 || res.ExpenseTotal.Cents != 0 || res.NetTotal.Cents != 0 {
		t.Fatalf("expected zero totals, got %+v", res)
	}
	if len(res.PerCategory) != 0 {
		t.Fatalf("expected no categories, got %v", res.PerCategory)
	}
	if res.LastIncomeDate != nil || res.LastExpenseDate != nil {
		t.Fatalf("expected no last dates, got %v %v", res.LastIncomeDate, res.LastExpenseDate)
	}
	if res.HasTransactions() {
		t.Fatalf("empty input should report no transactions")
	}
}

func TestAggregateExample(t *testing.T) {
	txs := []Transaction{
		tx("a", 10000, Income, "salary", NewDate(2021, 5, 1)),
		tx("b", 4000, Expense, "food", NewDate(2021, 5, 2)),
		tx("c", 1000, Expense, "food", NewDate(2021, 5, 3)),
	}
	res := AggregateMonth(txs, DefaultCategories, 2021, 5)

	if res.IncomeTotal.Cents != 10000 || res.ExpenseTotal.Cents != 5000 || res.NetTotal.Cents != 5000 {
		t.Fatalf("unexpected totals: %+v", res)
	}
	if len(res.PerCategory) != 1 {
		t.Fatalf("expected one category, got %v", res.PerCategory)
	}
	food := res.PerCategory[0]
	if food.Category.Key != "food" || food.Sum.Cents != 5000 || !food.Percent.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("unexpected food total: %+v", food)
	}
	if res.LastIncomeDate == nil || !res.LastIncomeDate.Equal(NewDate(2021, 5, 1).Time) {
		t.Fatalf("unexpected last income date: %v", res.LastIncomeDate)
	}
	if res.LastExpenseDate == nil || !res.LastExpenseDate.Equal(NewDate(2021, 5, 3).Time) {
		t.Fatalf("unexpected last expense date: %v", res.LastExpenseDate)
	}
}

func TestAggregatePercentsAndTableOrder(t *testing.T) {
	d := NewDate(2021, 5, 10)
	txs := []Transaction{
		tx("a", 7000, Expense, "leisure", d),
		tx("b", 3000, Expense, "purchases", d),
	}
	res := Aggregate(txs, DefaultCategories, AllTime())
	if len(res.PerCategory) != 2 {
		t.Fatalf("expected two categories, got %v", res.PerCategory)
	}
	// purchases precedes leisure in the table regardless of magnitude
	if res.PerCategory[0].Category.Key != "purchases" || res.PerCategory[1].Category.Key != "leisure" {
		t.Fatalf("unexpected order: %v", res.PerCategory)
	}
	if !res.PerCategory[0].Percent.Equal(decimal.NewFromInt(30)) || !res.PerCategory[1].Percent.Equal(decimal.NewFromInt(70)) {
		t.Fatalf("unexpected percents: %v %v", res.PerCategory[0].Percent, res.PerCategory[1].Percent)
	}
	sum := res.PerCategory[0].Percent.Add(res.PerCategory[1].Percent)
	if !sum.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("percents should sum to 100, got %v", sum)
	}
}

func TestAggregateMonthFilter(t *testing.T) {
	txs := []Transaction{
		tx("in-may", 10000, Income, "salary", NewDate(2021, 5, 5)),
		tx("in-april", 99900, Income, "salary", NewDate(2021, 4, 30)),
		tx("may-next-year", 5000, Expense, "food", NewDate(2022, 5, 20)),
		tx("exp-may", 2500, Expense, "car", NewDate(2021, 5, 6)),
	}
	res := AggregateMonth(txs, DefaultCategories, 2021, 5)
	if res.IncomeTotal.Cents != 10000 || res.ExpenseTotal.Cents != 2500 {
		t.Fatalf("out-of-month transactions leaked into totals: %+v", res)
	}
	if !res.LastIncomeDate.Equal(NewDate(2021, 5, 5).Time) || !res.LastExpenseDate.Equal(NewDate(2021, 5, 6).Time) {
		t.Fatalf("out-of-month transactions leaked into last dates: %v %v", res.LastIncomeDate, res.LastExpenseDate)
	}
	if len(res.PerCategory) != 1 || res.PerCategory[0].Category.Key != "car" {
		t.Fatalf("unexpected categories: %v", res.PerCategory)
	}
}

func TestAggregateSingleType(t *testing.T) {
	txs := []Transaction{
		tx("a", 1500, Income, "salary", NewDate(2021, 1, 1)),
		tx("b", 2500, Income, "salary", NewDate(2021, 1, 2)),
	}
	res := Aggregate(txs, DefaultCategories, AllTime())
	if res.ExpenseTotal.Cents != 0 || res.LastExpenseDate != nil || len(res.PerCategory) != 0 {
		t.Fatalf("expected no expense data, got %+v", res)
	}
	if res.NetTotal.Cents != 4000 {
		t.Fatalf("expected net 4000, got %d", res.NetTotal.Cents)
	}
}

func TestAggregateUnknownCategory(t *testing.T) {
	d := NewDate(2021, 3, 3)
	txs := []Transaction{
		tx("a", 2000, Expense, "food", d),
		tx("b", 2000, Expense, "rent", d),
	}
	res := Aggregate(txs, DefaultCategories, AllTime())
	if res.ExpenseTotal.Cents != 4000 {
		t.Fatalf("unknown categories still count towards the total, got %d", res.ExpenseTotal.Cents)
	}
	if len(res.PerCategory) != 1 || !res.PerCategory[0].Percent.Equal(decimal.NewFromInt(50)) {
		t.Fatalf("unexpected categories: %v", res.PerCategory)
	}
}

func TestAggregateProperties(t *testing.T) {
	d := NewDate(2024, 2, 1)
	sets := [][]Transaction{
		nil,
		{tx("a", 1, Expense, "food", d)},
		{tx("a", 333, Expense, "food", d), tx("b", 333, Expense, "car", d), tx("c", 334, Expense, "studies", d)},
		{tx("a", 12345, Income, "salary", d), tx("b", 999, Expense, "purchases", d), tx("c", 1, Expense, "purchases", d)},
	}
	for i, txs := range sets {
		res := Aggregate(txs, DefaultCategories, AllTime())
		if res.IncomeTotal.Cents-res.ExpenseTotal.Cents != res.NetTotal.Cents {
			t.Fatalf("set %d: income - expense != net", i)
		}
		var sum int64
		for _, c := range res.PerCategory {
			sum += c.Sum.Cents
		}
		if sum != res.ExpenseTotal.Cents {
			t.Fatalf("set %d: category sums %d != expense total %d", i, sum, res.ExpenseTotal.Cents)
		}
	}
}

func TestAggregateDoesNotMutateInput(t *testing.T) {
	txs := []Transaction{
		tx("b", 200, Expense, "food", NewDate(2021, 5, 3)),
		tx("a", 100, Expense, "food", NewDate(2021, 5, 1)),
	}
	_ = Aggregate(txs, DefaultCategories, AllTime())
	if txs[0].ID != "b" || txs[1].ID != "a" {
		t.Fatalf("input was reordered: %v", txs)
	}
}
