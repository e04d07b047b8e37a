package report

import (
	"fmt"

	"finanze/internal/core"
)

// DefaultIcon is used for categories without their own icon.
const DefaultIcon = "📋"

var categoryIcons = map[string]string{
	"Casa":         "🏠",
	"Trasporti":    "🚗",
	"Cibo":         "🍽️",
	"Divertimento": "🎉",
	"Salute":       "🏥",
	"Shopping":     "🛍️",
	"Altro":        "📋",
}

// Categories are the expense categories offered in forms, in display order.
var Categories = []string{"Casa", "Trasporti", "Cibo", "Divertimento", "Salute", "Shopping", "Altro"}

func Icon(category string) string {
	if icon, ok := categoryIcons[category]; ok {
		return icon
	}
	return DefaultIcon
}

// KindIcon is the trend arrow shown next to a transaction.
func KindIcon(k core.Kind) string {
	if k == core.Income {
		return "📈"
	}
	return "📉"
}

var (
	monthsLong  = [12]string{"gennaio", "febbraio", "marzo", "aprile", "maggio", "giugno", "luglio", "agosto", "settembre", "ottobre", "novembre", "dicembre"}
	monthsShort = [12]string{"gen", "feb", "mar", "apr", "mag", "giu", "lug", "ago", "set", "ott", "nov", "dic"}
)

// LongDate formats a date as "10 gennaio 2024".
func LongDate(d core.Date) string {
	if d.IsZero() {
		return ""
	}
	return fmt.Sprintf("%d %s %d", d.Day(), monthsLong[d.Month()-1], d.Year())
}

// ShortDate formats a date as "10 gen".
func ShortDate(d core.Date) string {
	if d.IsZero() {
		return ""
	}
	return fmt.Sprintf("%d %s", d.Day(), monthsShort[d.Month()-1])
}

// SignedAmount renders the amount with + for income and - for expenses.
func SignedAmount(tx core.Transaction) string {
	sign := "-"
	if tx.Kind == core.Income {
		sign = "+"
	}
	return sign + core.FormatEuros(tx.Amount)
}
