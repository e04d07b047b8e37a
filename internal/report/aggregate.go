// Package report derives the read-only views shown to the user from a
// filtered set of transactions. Every function here is pure.
package report

import (
	"fmt"

	"github.com/shopspring/decimal"

	"finanze/internal/core"
)

const (
	// RecentLimit is how many transactions the recent list shows.
	RecentLimit = 10
	// SeriesDays is the length of the daily series window.
	SeriesDays = 30
	// AverageDays is the fixed denominator of AverageDailyExpense, whatever the period.
	AverageDays = 30

	// NoCategory is shown when there are no expenses to rank.
	NoCategory = "Nessuna"
	// NoTransactions is the stats line for an empty set.
	NoTransactions = "Nessuna transazione"
)

// Summary holds the totals of a set of transactions. Balance may be negative.
type Summary struct {
	Income   core.Money `json:"income"`
	Expenses core.Money `json:"expenses"`
	Balance  core.Money `json:"balance"`
}

func Summarize(txns []core.Transaction) Summary {
	var s Summary
	for _, tx := range txns {
		switch tx.Kind {
		case core.Income:
			s.Income.Cents += tx.Amount.Cents
		case core.Expense:
			s.Expenses.Cents += tx.Amount.Cents
		}
	}
	s.Balance.Cents = s.Income.Cents - s.Expenses.Cents
	return s
}

// Recent returns the last n transactions by ledger position, most recent first.
// Position, not date, decides: a backdated entry added last comes first.
func Recent(txns []core.Transaction, n int) []core.Transaction {
	if n <= 0 {
		return []core.Transaction{}
	}
	start := len(txns) - n
	if start < 0 {
		start = 0
	}
	out := make([]core.Transaction, 0, len(txns)-start)
	for i := len(txns) - 1; i >= start; i-- {
		out = append(out, txns[i])
	}
	return out
}

// Breakdown sums expenses per category, ordered by first appearance.
func Breakdown(txns []core.Transaction) []core.CategoryAmount {
	index := make(map[string]int)
	var out []core.CategoryAmount
	for _, tx := range txns {
		if tx.Kind != core.Expense {
			continue
		}
		i, ok := index[tx.Category]
		if !ok {
			i = len(out)
			index[tx.Category] = i
			out = append(out, core.CategoryAmount{Name: tx.Category})
		}
		out[i].Amount.Cents += tx.Amount.Cents
	}
	return out
}

// TopCategory returns the expense category with the largest total.
// On a tie the category that appeared first wins. It returns false when
// there are no expenses.
func TopCategory(txns []core.Transaction) (string, bool) {
	var (
		best  core.CategoryAmount
		found bool
	)
	for _, c := range Breakdown(txns) {
		if !found || c.Amount.Cents > best.Amount.Cents {
			best, found = c, true
		}
	}
	return best.Name, found
}

// AverageDailyExpense divides the expense total by AverageDays, rounding half up to the cent.
func AverageDailyExpense(txns []core.Transaction) core.Money {
	total := Summarize(txns).Expenses
	avg := total.Decimal().Div(decimal.NewFromInt(AverageDays))
	return core.MoneyFromDecimal(avg)
}

// Stats renders the one-line description of a set.
func Stats(txns []core.Transaction) string {
	if len(txns) == 0 {
		return NoTransactions
	}
	top, ok := TopCategory(txns)
	if !ok {
		top = NoCategory
	}
	return fmt.Sprintf("%d transazioni • Spesa media: %s/giorno • Top categoria: %s",
		len(txns), core.FormatEuros(AverageDailyExpense(txns)), top)
}

// ComparisonLabels name the two bars of a Comparison.
var ComparisonLabels = [2]string{"Guadagni", "Spese"}

// Comparison is the income/expenses pair.
type Comparison [2]core.Money

func Compare(s Summary) Comparison {
	return Comparison{s.Income, s.Expenses}
}
