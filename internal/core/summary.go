package core

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// Window selects the transactions taken into account by Aggregate.
// The zero value covers all time.
type Window struct {
	Year  int
	Month int // 1-12; 0 means no filter
}

// AllTime returns a window that keeps every transaction.
func AllTime() Window {
	return Window{}
}

// MonthWindow returns a window restricted to one calendar month.
func MonthWindow(year, month int) Window {
	return Window{Year: year, Month: month}
}

// IsMonth reports whether the window filters by calendar month.
func (w Window) IsMonth() bool {
	return w.Month != 0
}

// Contains reports whether d falls inside the window.
func (w Window) Contains(d Date) bool {
	if !w.IsMonth() {
		return true
	}
	return d.InMonth(w.Year, w.Month)
}

// CategoryTotal is the expense sum of one category and its share of all expenses.
type CategoryTotal struct {
	Category Category
	Sum      Money
	Percent  decimal.Decimal // 0-100, two decimal places
}

// AggregateResult is derived on every call and never persisted.
type AggregateResult struct {
	Window          Window
	IncomeTotal     Money
	ExpenseTotal    Money
	NetTotal        Money
	LastIncomeDate  *Date // nil when there is no income in the window
	LastExpenseDate *Date // nil when there is no expense in the window
	PerCategory     []CategoryTotal
}

// HasTransactions reports whether any transaction fell inside the window.
func (r AggregateResult) HasTransactions() bool {
	return r.LastIncomeDate != nil || r.LastExpenseDate != nil
}

// Aggregate computes totals, last dates and the per-category expense
// breakdown of txs restricted to window.
//
// PerCategory follows table order and omits categories without expenses.
// When the expense total is not positive no per-category record is emitted.
// Expenses whose category is not in table count towards ExpenseTotal only.
func Aggregate(txs []Transaction, table CategoryTable, window Window) AggregateResult {
	res := AggregateResult{Window: window}

	var expenses []Transaction
	for _, tx := range txs {
		if !window.Contains(tx.Date) {
			continue
		}
		switch tx.Type {
		case Income:
			res.IncomeTotal = res.IncomeTotal.Add(tx.Amount)
			res.LastIncomeDate = latest(res.LastIncomeDate, tx.Date)
		case Expense:
			res.ExpenseTotal = res.ExpenseTotal.Add(tx.Amount)
			res.LastExpenseDate = latest(res.LastExpenseDate, tx.Date)
			expenses = append(expenses, tx)
		}
	}
	res.NetTotal = res.IncomeTotal.Sub(res.ExpenseTotal)

	if !res.ExpenseTotal.IsPositive() {
		return res
	}

	total := decimal.NewFromInt(res.ExpenseTotal.Cents)
	for _, cat := range table {
		var sum Money
		for _, e := range expenses {
			if e.Category == cat.Key {
				sum = sum.Add(e.Amount)
			}
		}
		if !sum.IsPositive() {
			continue
		}
		res.PerCategory = append(res.PerCategory, CategoryTotal{
			Category: cat,
			Sum:      sum,
			Percent:  decimal.NewFromInt(sum.Cents).Mul(hundred).DivRound(total, 2),
		})
	}

	return res
}

// AggregateMonth is Aggregate over a single calendar month.
func AggregateMonth(txs []Transaction, table CategoryTable, year, month int) AggregateResult {
	return Aggregate(txs, table, MonthWindow(year, month))
}

func latest(cur *Date, d Date) *Date {
	if cur == nil || d.After(cur.Time) {
		return &d
	}
	return cur
}
