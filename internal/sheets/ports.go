// Package sheets writes exported transactions to a spreadsheet.
package sheets

import (
	"context"

	"finanze/internal/core"
	"finanze/internal/export"
)

// TransactionWriter replaces the content of a sheet with the given transactions.
// Clear leaves only the header row.
type TransactionWriter interface {
	WriteTransactions(ctx context.Context, txns []core.Transaction) (ref string, err error)
	Clear(ctx context.Context) (ref string, err error)
}

// HeaderValues is the cell matrix of a sheet with no transactions.
func HeaderValues() [][]any {
	header := make([]any, len(export.Header))
	for i, h := range export.Header {
		header[i] = h
	}
	return [][]any{header}
}

// Values returns the cell matrix for txns: the export header, then one row per
// transaction with the amount as a number so the sheet can sum it.
func Values(txns []core.Transaction) ([][]any, error) {
	if len(txns) == 0 {
		return nil, export.ErrEmptyExportSet
	}
	values := make([][]any, 0, len(txns)+1)
	values = append(values, HeaderValues()...)
	for _, tx := range txns {
		values = append(values, []any{
			tx.Date.String(),
			tx.Kind.Label(),
			tx.Category,
			tx.Amount.Euros(),
		})
	}
	return values, nil
}
