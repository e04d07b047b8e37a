package sheets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finanze/internal/core"
	"finanze/internal/export"
)

func TestValues(t *testing.T) {
	_, err := Values(nil)
	require.ErrorIs(t, err, export.ErrEmptyExportSet)

	values, err := Values([]core.Transaction{
		{ID: 1, Kind: core.Expense, Category: "Cibo", Date: core.NewDate(2024, 1, 10), Amount: core.Money{Cents: 2050}},
		{ID: 2, Kind: core.Income, Date: core.NewDate(2024, 1, 11), Amount: core.Money{Cents: 100000}},
	})
	require.NoError(t, err)
	assert.Equal(t, [][]any{
		{"Data", "Tipo", "Categoria", "Importo"},
		{"2024-01-10", "spesa", "Cibo", 20.5},
		{"2024-01-11", "guadagno", "", 1000.0},
	}, values)
}
