package pipeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func monthlyRows(t *testing.T, loadsPerMonth map[time.Time]int) []PeriodAggregate {
	t.Helper()
	var loads []NormalizedLoad
	for month, n := range loadsPerMonth {
		for i := 0; i < n; i++ {
			loads = append(loads, testLoad("Acme", month.AddDate(0, 0, i%27), 100, true))
		}
	}
	return AggregateByPeriod(loads, testMaster("Acme"), MonthKey)
}

func TestProjectRunRateCurrentMonth(t *testing.T) {
	now := time.Date(2025, 8, 10, 15, 0, 0, 0, time.UTC) // day 10 of a 31-day month
	rows := monthlyRows(t, map[time.Time]int{date(2025, 8, 1): 20})

	projected := ProjectRunRate(rows, now)
	require.Len(t, projected, 1)

	row := projected[0]
	assert.True(t, row.IsCurrentMonth)
	// 20 / 10 * 31 = 62 loads, 2000 / 10 * 31 = 6200 revenue.
	assert.Equal(t, 62, row.RunRateLoads)
	assert.Equal(t, 6200.0, row.RunRateRevenue)
}

func TestProjectRunRatePastMonthPassesThrough(t *testing.T) {
	now := time.Date(2025, 8, 10, 0, 0, 0, 0, time.UTC)
	rows := monthlyRows(t, map[time.Time]int{date(2025, 7, 1): 15})

	projected := ProjectRunRate(rows, now)
	require.Len(t, projected, 1)

	row := projected[0]
	assert.False(t, row.IsCurrentMonth)
	assert.Equal(t, row.Loads, row.RunRateLoads)
	assert.Equal(t, row.Revenue, row.RunRateRevenue)
}

func TestProjectRunRateMonotonic(t *testing.T) {
	// Projection never shrinks actuals while the month is incomplete.
	for day := 1; day <= 30; day++ {
		now := time.Date(2025, 8, day, 12, 0, 0, 0, time.UTC)
		rows := ProjectRunRate(monthlyRows(t, map[time.Time]int{date(2025, 8, 1): 7}), now)
		require.Len(t, rows, 1)
		assert.GreaterOrEqual(t, rows[0].RunRateLoads, rows[0].Loads, "day %d", day)
		assert.GreaterOrEqual(t, rows[0].RunRateRevenue, rows[0].Revenue, "day %d", day)
	}
}

func TestProjectRunRateFebruary(t *testing.T) {
	now := time.Date(2024, 2, 14, 0, 0, 0, 0, time.UTC) // leap year, 29 days
	rows := monthlyRows(t, map[time.Time]int{date(2024, 2, 1): 14})

	projected := ProjectRunRate(rows, now)
	require.Len(t, projected, 1)
	assert.Equal(t, 29, projected[0].RunRateLoads)
}

func TestProjectRunRateDeterministic(t *testing.T) {
	now := time.Date(2025, 8, 10, 0, 0, 0, 0, time.UTC)
	rows := monthlyRows(t, map[time.Time]int{date(2025, 8, 1): 20})
	a := ProjectRunRate(rows, now)
	b := ProjectRunRate(rows, now)
	assert.Equal(t, a, b)
}

func TestProjectRunRateEmpty(t *testing.T) {
	assert.Empty(t, ProjectRunRate(nil, time.Now()))
}
