package report

import (
	"time"

	"finanze/internal/core"
)

// Series is a per-day income and expense total over consecutive dates.
type Series struct {
	Dates    []core.Date  `json:"dates"`
	Labels   []string     `json:"labels"`
	Income   []core.Money `json:"income"`
	Expenses []core.Money `json:"expenses"`
}

// DailySeries returns exactly days consecutive dates ending today, where today
// is the calendar date of now. Transactions outside the window are ignored.
func DailySeries(txns []core.Transaction, days int, now time.Time) Series {
	if days < 0 {
		days = 0
	}
	s := Series{
		Dates:    make([]core.Date, days),
		Labels:   make([]string, days),
		Income:   make([]core.Money, days),
		Expenses: make([]core.Money, days),
	}
	if days == 0 {
		return s
	}

	first := core.DateOf(now).AddDays(1 - days)
	index := make(map[string]int, days)
	for i := 0; i < days; i++ {
		d := first.AddDays(i)
		s.Dates[i] = d
		s.Labels[i] = ShortDate(d)
		index[d.String()] = i
	}

	for _, tx := range txns {
		i, ok := index[tx.Date.String()]
		if !ok {
			continue
		}
		switch tx.Kind {
		case core.Income:
			s.Income[i].Cents += tx.Amount.Cents
		case core.Expense:
			s.Expenses[i].Cents += tx.Amount.Cents
		}
	}
	return s
}
