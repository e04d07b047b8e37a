package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"finanze/internal/amqp"
	"finanze/internal/core"
	"finanze/internal/report"
)

var (
	incomeColor  = lipgloss.Color("#4ECDC4")
	expenseColor = lipgloss.Color("#FF6B6B")
	warnColor    = lipgloss.Color("#FFE66D")
	subtleColor  = lipgloss.Color("#666666")
)

// barWidth is the width of a full breakdown bar, in cells.
const barWidth = 20

// Renderer formats views for a terminal. Colors are dropped automatically
// when the output is not a TTY.
type Renderer struct {
	title   lipgloss.Style
	subtle  lipgloss.Style
	income  lipgloss.Style
	expense lipgloss.Style
	warning lipgloss.Style
	bold    lipgloss.Style
	box     lipgloss.Style
}

func NewRenderer(w io.Writer) *Renderer {
	r := lipgloss.NewRenderer(w)
	return &Renderer{
		title:   r.NewStyle().Bold(true).Foreground(expenseColor).MarginBottom(1),
		subtle:  r.NewStyle().Foreground(subtleColor),
		income:  r.NewStyle().Foreground(incomeColor),
		expense: r.NewStyle().Foreground(expenseColor),
		warning: r.NewStyle().Foreground(warnColor),
		bold:    r.NewStyle().Bold(true),
		box: r.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(subtleColor).
			Padding(0, 1),
	}
}

// Summary renders the summary cards, the stats line and the category breakdown.
func (r *Renderer) Summary(v report.Views) string {
	cards := lipgloss.JoinHorizontal(lipgloss.Top,
		r.box.Render("Entrate\n"+r.income.Render(core.FormatEuros(v.Summary.Income))),
		r.box.Render("Uscite\n"+r.expense.Render(core.FormatEuros(v.Summary.Expenses))),
		r.box.Render("Saldo\n"+r.balance(v.Summary.Balance)),
	)

	var b strings.Builder
	b.WriteString(r.title.Render("💰 " + v.PeriodLabel))
	b.WriteString("\n")
	b.WriteString(cards)
	b.WriteString("\n")
	b.WriteString(r.subtle.Render(v.Stats))
	b.WriteString("\n")

	if v.Count > 0 {
		b.WriteString("\n")
		b.WriteString(r.comparison(v.Comparison))
	}

	if len(v.Breakdown) > 0 {
		b.WriteString("\n")
		b.WriteString(r.bold.Render("Spese per categoria"))
		b.WriteString("\n")
		for _, s := range v.Breakdown {
			filled := int(s.Percent / 100 * barWidth)
			bar := r.expense.Render(strings.Repeat("█", filled)) + r.subtle.Render(strings.Repeat("░", barWidth-filled))
			fmt.Fprintf(&b, "%s %-14s %s %12s %5.1f%%\n", s.Icon, s.Category, bar, core.FormatEuros(s.Amount), s.Percent)
		}
	}
	return b.String()
}

// comparison draws income and expenses as two bars scaled to the larger one.
func (r *Renderer) comparison(c report.Comparison) string {
	top := max(c[0].Cents, c[1].Cents)
	styles := [2]lipgloss.Style{r.income, r.expense}
	var b strings.Builder
	for i, m := range c {
		filled := 0
		if top > 0 {
			filled = int(m.Cents * barWidth / top)
		}
		bar := styles[i].Render(strings.Repeat("█", filled)) + r.subtle.Render(strings.Repeat("░", barWidth-filled))
		fmt.Fprintf(&b, "%-10s %s %12s\n", report.ComparisonLabels[i], bar, core.FormatEuros(m))
	}
	return b.String()
}

func (r *Renderer) balance(m core.Money) string {
	if m.Cents < 0 {
		return r.expense.Render(core.FormatEuros(m))
	}
	return r.income.Render(core.FormatEuros(m))
}

// Transactions renders one line per item.
func (r *Renderer) Transactions(items []report.Item) string {
	if len(items) == 0 {
		return r.subtle.Render(report.NoTransactions) + "\n"
	}
	var b strings.Builder
	for _, it := range items {
		label := it.KindLabel
		if it.Category != "" {
			label = it.Icon + " " + it.Category
		}
		amount := r.income.Render(it.AmountLabel)
		if it.Kind == core.Expense {
			amount = r.expense.Render(it.AmountLabel)
		}
		fmt.Fprintf(&b, "%s %s  %-20s %-18s %s\n",
			r.subtle.Render(fmt.Sprintf("#%-4d", it.ID)), it.KindIcon, it.DateLabel, label, amount)
	}
	return b.String()
}

// Event renders one ledger event as a single line.
func (r *Renderer) Event(e *amqp.LedgerEvent) string {
	amount := core.FormatEuros(core.Money{Cents: e.AmountCents})
	category := e.Category
	if category == "" {
		category = "-"
	}
	line := fmt.Sprintf("%s %-20s #%d %s %s %s %s",
		e.Timestamp.Format("15:04:05"), e.Type, e.TransactionID, e.Kind, e.Date, category, amount)
	if e.Type == amqp.TransactionDeleted {
		return r.warning.Render(line)
	}
	return line
}

// Success and Warning style one-line status messages.
func (r *Renderer) Success(msg string) string { return r.income.Render("✓ " + msg) }

func (r *Renderer) Warning(msg string) string { return r.warning.Render("! " + msg) }
