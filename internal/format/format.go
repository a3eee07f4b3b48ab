// Package format renders aggregates and transactions as the pt-BR strings
// shown on the dashboard and resume screens.
package format

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"gofinances/internal/core"
)

// NoTransactions is shown in place of a last-transaction date when there is none.
const NoTransactions = "Não há transações"

var monthNames = [...]string{
	"janeiro", "fevereiro", "março", "abril", "maio", "junho",
	"julho", "agosto", "setembro", "outubro", "novembro", "dezembro",
}

// BRL formats an amount as Brazilian reais, e.g. "R$ 1.234,56".
func BRL(m core.Money) string {
	cents := m.Cents
	neg := cents < 0
	if neg {
		cents = -cents
	}
	s := "R$ " + groupThousands(cents/100) + "," + fmt.Sprintf("%02d", cents%100)
	if neg {
		return "-" + s
	}
	return s
}

func groupThousands(n int64) string {
	digits := strconv.FormatInt(n, 10)
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

// ShortDate formats a date as dd/mm/yy.
func ShortDate(d core.Date) string {
	return d.Format("02/01/06")
}

// MonthName returns the lowercase pt-BR name of month (1-12).
func MonthName(month int) string {
	if month < 1 || month > 12 {
		return ""
	}
	return monthNames[month-1]
}

// DayMonth formats a date as "2 de maio".
func DayMonth(d core.Date) string {
	return fmt.Sprintf("%d de %s", d.Day(), MonthName(d.Month()))
}

// MonthTitle formats the resume header, e.g. "maio, 2021".
func MonthTitle(year, month int) string {
	return fmt.Sprintf("%s, %d", MonthName(month), year)
}

// Percent rounds p to a whole number, e.g. "33%".
func Percent(p decimal.Decimal) string {
	return p.Round(0).String() + "%"
}

// LastIncomeLabel is the caption of the income highlight card.
func LastIncomeLabel(d *core.Date) string {
	if d == nil {
		return NoTransactions
	}
	return "Última entrada dia " + DayMonth(*d)
}

// LastExpenseLabel is the caption of the expense highlight card.
func LastExpenseLabel(d *core.Date) string {
	if d == nil {
		return NoTransactions
	}
	return "Última saída dia " + DayMonth(*d)
}

// IntervalLabel is the caption of the total card: from the first of the
// month up to the last expense.
func IntervalLabel(lastExpense *core.Date) string {
	if lastExpense == nil {
		return NoTransactions
	}
	return "01 a " + DayMonth(*lastExpense)
}
