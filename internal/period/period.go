// Package period selects the slice of the ledger every derived view is built from.
package period

import (
	"errors"
	"strings"
	"time"

	"finanze/internal/core"
)

// Period is the active time window. The zero value is All.
type Period string

const (
	All        Period = "all"
	ThisWeek   Period = "week"
	ThisMonth  Period = "month"
	Last30Days Period = "30days"
)

// WeekStart is the first day of a week for ThisWeek.
const WeekStart = time.Sunday

var ErrUnknownPeriod = errors.New("unknown period")

// Periods lists every period in display order.
func Periods() []Period {
	return []Period{All, ThisWeek, ThisMonth, Last30Days}
}

func Parse(s string) (Period, error) {
	switch p := Period(strings.ToLower(strings.TrimSpace(s))); p {
	case "", All:
		return All, nil
	case ThisWeek, ThisMonth, Last30Days:
		return p, nil
	default:
		return "", ErrUnknownPeriod
	}
}

func (p Period) String() string {
	if p == "" {
		return string(All)
	}
	return string(p)
}

// Label returns the Italian button label.
func (p Period) Label() string {
	switch p {
	case ThisWeek:
		return "Questa settimana"
	case ThisMonth:
		return "Questo mese"
	case Last30Days:
		return "Ultimi 30 giorni"
	default:
		return "Tutto"
	}
}

// Start returns the first date included by p relative to now, or false for All.
// Today is the calendar date of now in now's own location.
func (p Period) Start(now time.Time) (core.Date, bool) {
	today := core.DateOf(now)
	switch p {
	case ThisWeek:
		offset := (int(today.Weekday()) - int(WeekStart) + 7) % 7
		return today.AddDays(-offset), true
	case ThisMonth:
		return today.AddDays(1 - today.Day()), true
	case Last30Days:
		return today.AddDays(-30), true
	default:
		return core.Date{}, false
	}
}

// Filter returns the transactions on or after p's start date, in ledger order.
// There is no upper bound, so future-dated entries are kept. The input is never modified.
func Filter(txns []core.Transaction, p Period, now time.Time) []core.Transaction {
	start, bounded := p.Start(now)
	out := make([]core.Transaction, 0, len(txns))
	for _, tx := range txns {
		if bounded && tx.Date.Before(start.Time) {
			continue
		}
		out = append(out, tx)
	}
	return out
}
