package period

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finanze/internal/core"
)

func tx(id int64, date core.Date) core.Transaction {
	return core.Transaction{ID: id, Kind: core.Income, Date: date, Amount: core.Money{Cents: 100}}
}

func ids(txns []core.Transaction) []int64 {
	out := make([]int64, 0, len(txns))
	for _, t := range txns {
		out = append(out, t.ID)
	}
	return out
}

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want Period
		err  bool
	}{
		{"all", All, false},
		{"", All, false},
		{"week", ThisWeek, false},
		{"MONTH", ThisMonth, false},
		{" 30days ", Last30Days, false},
		{"year", "", true},
	}
	for _, tt := range tests {
		got, err := Parse(tt.in)
		if tt.err {
			assert.ErrorIs(t, err, ErrUnknownPeriod, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestStart(t *testing.T) {
	// Saturday
	now := time.Date(2024, 1, 20, 15, 4, 5, 0, time.UTC)

	_, bounded := All.Start(now)
	assert.False(t, bounded)

	start, _ := ThisWeek.Start(now)
	assert.Equal(t, core.NewDate(2024, 1, 14), start)

	start, _ = ThisMonth.Start(now)
	assert.Equal(t, core.NewDate(2024, 1, 1), start)

	start, _ = Last30Days.Start(now)
	assert.Equal(t, core.NewDate(2023, 12, 21), start)
}

func TestStart_WeekOnSunday(t *testing.T) {
	sunday := time.Date(2024, 1, 14, 0, 0, 1, 0, time.UTC)
	start, _ := ThisWeek.Start(sunday)
	assert.Equal(t, core.NewDate(2024, 1, 14), start)
}

func TestStart_UsesLocalCalendarDate(t *testing.T) {
	rome := time.FixedZone("CET", 3600)
	// 00:30 on Feb 1st in Rome is still Jan 31st in UTC.
	now := time.Date(2024, 2, 1, 0, 30, 0, 0, rome)

	start, _ := ThisMonth.Start(now)
	assert.Equal(t, core.NewDate(2024, 2, 1), start)
}

func TestFilter(t *testing.T) {
	now := time.Date(2024, 1, 20, 12, 0, 0, 0, time.UTC)
	txns := []core.Transaction{
		tx(1, core.NewDate(2023, 12, 20)),
		tx(2, core.NewDate(2023, 12, 21)),
		tx(3, core.NewDate(2024, 1, 1)),
		tx(4, core.NewDate(2024, 1, 13)),
		tx(5, core.NewDate(2024, 1, 14)),
		tx(6, core.NewDate(2024, 2, 5)),
	}

	tests := []struct {
		period Period
		want   []int64
	}{
		{All, []int64{1, 2, 3, 4, 5, 6}},
		{ThisWeek, []int64{5, 6}},
		{ThisMonth, []int64{3, 4, 5, 6}},
		{Last30Days, []int64{2, 3, 4, 5, 6}},
	}
	for _, tt := range tests {
		t.Run(tt.period.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, ids(Filter(txns, tt.period, now)))
		})
	}
}

func TestFilter_DoesNotMutateInput(t *testing.T) {
	now := time.Date(2024, 1, 20, 12, 0, 0, 0, time.UTC)
	txns := []core.Transaction{tx(1, core.NewDate(2023, 1, 1)), tx(2, core.NewDate(2024, 1, 19))}

	out := Filter(txns, All, now)
	out[0].ID = 99
	assert.Equal(t, int64(1), txns[0].ID)

	_ = Filter(txns, ThisMonth, now)
	assert.Equal(t, []int64{1, 2}, ids(txns))
}

func TestFilter_ThisMonthScenario(t *testing.T) {
	now := time.Date(2024, 1, 20, 0, 0, 0, 0, time.UTC)
	txns := []core.Transaction{tx(1, core.NewDate(2024, 1, 1)), tx(2, core.NewDate(2024, 1, 15))}

	assert.Len(t, Filter(txns, ThisMonth, now), 2)
}

func TestLabel(t *testing.T) {
	assert.Equal(t, "Tutto", All.Label())
	assert.Equal(t, "Ultimi 30 giorni", Last30Days.Label())
	assert.Len(t, Periods(), 4)
}
