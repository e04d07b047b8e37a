package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finanze/internal/core"
)

func sampleLedger() []core.Transaction {
	created := time.Date(2024, 1, 10, 8, 0, 0, 123000000, time.UTC)
	return []core.Transaction{
		{ID: 1, Kind: core.Income, Date: core.NewDate(2024, 1, 1), Amount: core.Money{Cents: 100000}, CreatedAt: created},
		{ID: 2, Kind: core.Expense, Category: "Cibo", Date: core.NewDate(2024, 1, 10), Amount: core.Money{Cents: 2050}, CreatedAt: created},
		{ID: 7, Kind: core.Expense, Category: `Casa "al mare"`, Date: core.NewDate(2024, 2, 29), Amount: core.Money{Cents: 1}, CreatedAt: created},
	}
}

func TestEncodeDecode_RoundTrip(t *testing.T) {
	for _, txns := range [][]core.Transaction{nil, {}, sampleLedger()} {
		data, err := Encode(txns)
		require.NoError(t, err)

		decoded, err := Decode(data)
		require.NoError(t, err)
		assert.Empty(t, decoded.Skipped)
		if len(txns) == 0 {
			assert.Empty(t, decoded.Transactions)
			continue
		}
		assert.Equal(t, txns, decoded.Transactions)
	}
}

func TestEncode_Shape(t *testing.T) {
	data, err := Encode(sampleLedger()[:2])
	require.NoError(t, err)

	assert.JSONEq(t, `[
		{"id":1,"kind":"income","date":"2024-01-01","amount":1000,"createdAt":"2024-01-10T08:00:00.123Z"},
		{"id":2,"kind":"expense","category":"Cibo","date":"2024-01-10","amount":20.5,"createdAt":"2024-01-10T08:00:00.123Z"}
	]`, string(data))
}

func TestDecode_LegacyRecords(t *testing.T) {
	data := `[
		{"id":1,"tipo":"guadagno","categoria":null,"data":"2024-01-01","importo":1000,"timestamp":"2024-01-01T10:00:00.000Z"},
		{"id":2,"tipo":"spesa","categoria":"Cibo","data":"2024-01-10","importo":20.5,"timestamp":"2024-01-10T10:00:00.000Z"}
	]`

	decoded, err := Decode([]byte(data))
	require.NoError(t, err)
	assert.Empty(t, decoded.Skipped)
	require.Len(t, decoded.Transactions, 2)

	assert.Equal(t, core.Income, decoded.Transactions[0].Kind)
	assert.Empty(t, decoded.Transactions[0].Category)
	assert.Equal(t, int64(100000), decoded.Transactions[0].Amount.Cents)

	second := decoded.Transactions[1]
	assert.Equal(t, core.Expense, second.Kind)
	assert.Equal(t, "Cibo", second.Category)
	assert.Equal(t, int64(2050), second.Amount.Cents)
	assert.Equal(t, time.Date(2024, 1, 10, 10, 0, 0, 0, time.UTC), second.CreatedAt)
}

func TestDecode_MalformedDocument(t *testing.T) {
	for _, in := range []string{"{", `{"id":1}`, "null x"} {
		_, err := Decode([]byte(in))
		assert.Error(t, err, in)
	}
}

func TestDecode_ReportsSkipped(t *testing.T) {
	data := `[{"id":0,"kind":"income","date":"2024-01-01","amount":1},
	          {"id":1,"kind":"wat","date":"2024-01-01","amount":1},
	          {"id":2,"kind":"income","date":"2024-01-01"},
	          {"id":3,"kind":"income","date":"2024-01-01","amount":"x"}]`

	decoded, err := Decode([]byte(data))
	require.NoError(t, err)
	assert.Empty(t, decoded.Transactions)
	assert.Len(t, decoded.Skipped, 4)
}
