package pipeline

import (
	"math"
	"time"
)

// ProjectRunRate adds run-rate projections to a monthly aggregate
// table. Rows for the month containing now are projected to month-end
// from the daily rate so far; all other rows pass through with run-rate
// equal to actuals.
//
// now is an explicit input so projections are deterministic under test.
// The input slice is not mutated.
func ProjectRunRate(rows []PeriodAggregate, now time.Time) []PeriodAggregate {
	if len(rows) == 0 {
		return rows
	}

	currentMonth := MonthStartOf(now)
	daysElapsed := now.Day()
	daysInMonth := currentMonth.AddDate(0, 1, 0).Sub(currentMonth).Hours() / 24

	out := make([]PeriodAggregate, len(rows))
	copy(out, rows)
	for i := range out {
		row := &out[i]
		row.IsCurrentMonth = row.Period.Equal(currentMonth)
		if row.IsCurrentMonth && daysElapsed > 0 {
			row.RunRateLoads = int(float64(row.Loads) / float64(daysElapsed) * daysInMonth)
			row.RunRateRevenue = math.Round(row.Revenue / float64(daysElapsed) * daysInMonth)
		} else {
			row.RunRateLoads = row.Loads
			row.RunRateRevenue = row.Revenue
		}
	}
	return out
}
