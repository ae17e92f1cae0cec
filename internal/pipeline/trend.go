package pipeline

import (
	"fmt"
	"math"
	"sort"
)

// AnnotateTrends fills the derived trend columns on a period aggregate
// table: previous-period loads, period-over-period change, trailing
// 4-period average, volume trend and service risk.
//
// Derivations read only the base columns, so re-annotating an already
// annotated table produces identical output. The input slice is not
// mutated.
func AnnotateTrends(rows []PeriodAggregate) []PeriodAggregate {
	out := make([]PeriodAggregate, len(rows))
	copy(out, rows)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CustomerName != out[j].CustomerName {
			return out[i].CustomerName < out[j].CustomerName
		}
		return out[i].Period.Before(out[j].Period)
	})

	for start := 0; start < len(out); {
		end := start
		for end < len(out) && out[end].CustomerName == out[start].CustomerName {
			end++
		}
		annotateSeries(out[start:end])
		start = end
	}
	return out
}

// annotateSeries derives trend columns for one customer's series,
// ordered by period ascending.
func annotateSeries(series []PeriodAggregate) {
	for i := range series {
		row := &series[i]

		row.HasPrev = i > 0
		row.PrevLoads = 0
		if row.HasPrev {
			row.PrevLoads = series[i-1].Loads
		}

		row.ChangePct = NoRatio()
		if row.HasPrev && row.PrevLoads > 0 {
			pct := float64(row.Loads-row.PrevLoads) / float64(row.PrevLoads) * 100
			row.ChangePct = SomeRatio(round1(pct))
		}
		switch {
		case !row.HasPrev:
			row.ChangeLabel = ChangeLabelNew
		case row.ChangePct.Valid:
			row.ChangeLabel = fmt.Sprintf("%+.1f", row.ChangePct.Value)
		default:
			row.ChangeLabel = "0"
		}

		// Mean of up to 4 preceding periods, current excluded.
		row.Trailing4Avg = NoRatio()
		if i > 0 {
			lo := i - 4
			if lo < 0 {
				lo = 0
			}
			sum := 0
			for _, prev := range series[lo:i] {
				sum += prev.Loads
			}
			row.Trailing4Avg = SomeRatio(float64(sum) / float64(i-lo))
		}

		row.VolumeTrend = classifyVolumeTrend(row.Loads, row.Trailing4Avg)
		row.ServiceRisk = classifyServiceRisk(row.OTD)
	}
}

func classifyVolumeTrend(loads int, trailing Ratio) string {
	switch {
	case trailing.Valid && trailing.Value > 0 && float64(loads) > trailing.Value*1.10:
		return TrendUp
	case trailing.Valid && trailing.Value > 0 && float64(loads) < trailing.Value*0.90:
		return TrendDown
	case loads == 0 && (!trailing.Valid || trailing.Value == 0):
		return TrendNA
	default:
		return TrendStable
	}
}

func classifyServiceRisk(otd Ratio) string {
	switch {
	case otd.Valid && otd.Value < 0.90:
		return ServiceAtRisk
	case !otd.Valid:
		return ServiceNA
	default:
		return ServiceOK
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
