package report

import (
	"time"

	"github.com/shopspring/decimal"

	"finanze/internal/core"
	"finanze/internal/period"
)

// Item is a transaction prepared for display.
type Item struct {
	ID          int64      `json:"id"`
	Kind        core.Kind  `json:"kind"`
	KindLabel   string     `json:"kindLabel"`
	KindIcon    string     `json:"kindIcon"`
	Category    string     `json:"category,omitempty"`
	Icon        string     `json:"icon,omitempty"`
	Date        core.Date  `json:"date"`
	DateLabel   string     `json:"dateLabel"`
	Amount      core.Money `json:"amount"`
	AmountLabel string     `json:"amountLabel"`
}

// Slice is one category of the expense breakdown.
type Slice struct {
	Category string     `json:"category"`
	Icon     string     `json:"icon"`
	Amount   core.Money `json:"amount"`
	// Percent of total expenses, one decimal place.
	Percent float64 `json:"percent"`
}

// Views is everything the presentation layer needs for one render.
type Views struct {
	Period      period.Period `json:"period"`
	PeriodLabel string        `json:"periodLabel"`
	Count       int           `json:"count"`
	Summary     Summary       `json:"summary"`
	Recent      []Item        `json:"recent"`
	Stats       string        `json:"stats"`
	Breakdown   []Slice       `json:"breakdown"`
	Comparison  Comparison    `json:"comparison"`
	Series      Series        `json:"series"`
}

// Build filters the ledger for p and computes every view from the result.
func Build(ledger []core.Transaction, p period.Period, now time.Time) Views {
	txns := period.Filter(ledger, p, now)
	summary := Summarize(txns)

	recent := Recent(txns, RecentLimit)
	items := make([]Item, 0, len(recent))
	for _, tx := range recent {
		items = append(items, NewItem(tx))
	}

	return Views{
		Period:      p,
		PeriodLabel: p.Label(),
		Count:       len(txns),
		Summary:     summary,
		Recent:      items,
		Stats:       Stats(txns),
		Breakdown:   breakdownSlices(Breakdown(txns), summary.Expenses),
		Comparison:  Compare(summary),
		Series:      DailySeries(txns, SeriesDays, now),
	}
}

func NewItem(tx core.Transaction) Item {
	item := Item{
		ID:          tx.ID,
		Kind:        tx.Kind,
		KindLabel:   tx.Kind.Label(),
		KindIcon:    KindIcon(tx.Kind),
		Category:    tx.Category,
		Date:        tx.Date,
		DateLabel:   LongDate(tx.Date),
		Amount:      tx.Amount,
		AmountLabel: SignedAmount(tx),
	}
	if tx.Category != "" {
		item.Icon = Icon(tx.Category)
	}
	return item
}

func breakdownSlices(breakdown []core.CategoryAmount, total core.Money) []Slice {
	out := make([]Slice, 0, len(breakdown))
	hundred := decimal.NewFromInt(100)
	for _, c := range breakdown {
		s := Slice{Category: c.Name, Icon: Icon(c.Name), Amount: c.Amount}
		if total.Cents > 0 {
			pct := c.Amount.Decimal().Mul(hundred).Div(total.Decimal()).Round(1)
			s.Percent = pct.InexactFloat64()
		}
		out = append(out, s)
	}
	return out
}
