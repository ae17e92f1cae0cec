package pipeline

import (
	"math"
	"sort"
	"strings"
	"time"
)

// Risk rule thresholds.
const (
	highRevenueSharePct  = 5.0
	poorServiceOTD       = 0.90
	decliningChangePct   = -20.0
	sharpDropChangePct   = -30.0
	belowTrailingFactor  = 0.70
	staleTrailingWeeks   = 12
	riskFlagSeparator    = " | "
)

// ComputeRiskFlags evaluates the fixed risk rule set over the selected
// week of an annotated weekly table. Rules are independent; a customer
// can trigger several, and only customers with at least one flag are
// emitted.
//
// "Previously active" looks at up to 12 entries strictly before the
// selected week in the sorted distinct-week list. The window is
// positional, not calendar-based: if weeks are missing from the data it
// spans fewer or more distant calendar weeks. That matches the
// reporting logic this replaces.
func ComputeRiskFlags(weekly []PeriodAggregate, selectedWeek time.Time) []RiskFlag {
	if len(weekly) == 0 {
		return nil
	}

	var current []PeriodAggregate
	weekSet := make(map[time.Time]bool)
	for _, row := range weekly {
		weekSet[row.Period] = true
		if row.Period.Equal(selectedWeek) {
			current = append(current, row)
		}
	}
	if len(current) == 0 {
		return nil
	}

	totalRevenue := 0.0
	for _, row := range current {
		totalRevenue += row.Revenue
	}

	allWeeks := make([]time.Time, 0, len(weekSet))
	for w := range weekSet {
		allWeeks = append(allWeeks, w)
	}
	sort.Slice(allWeeks, func(i, j int) bool { return allWeeks[i].Before(allWeeks[j]) })

	weekIdx := -1
	for i, w := range allWeeks {
		if w.Equal(selectedWeek) {
			weekIdx = i
			break
		}
	}
	trailingWeeks := make(map[time.Time]bool)
	if weekIdx > 0 {
		lo := weekIdx - staleTrailingWeeks
		if lo < 0 {
			lo = 0
		}
		for _, w := range allWeeks[lo:weekIdx] {
			trailingWeeks[w] = true
		}
	}

	trailingLoads := make(map[string]int)
	for _, row := range weekly {
		if trailingWeeks[row.Period] {
			trailingLoads[row.CustomerName] += row.Loads
		}
	}

	var flags []RiskFlag
	for _, row := range current {
		revenueShare := 0.0
		if totalRevenue > 0 {
			revenueShare = row.Revenue / totalRevenue * 100
		}

		var triggered []string
		if row.Loads == 0 && trailingLoads[row.CustomerName] > 0 {
			triggered = append(triggered, FlagStaleAccount)
		}
		if revenueShare >= highRevenueSharePct && row.OTD.Valid && row.OTD.Value < poorServiceOTD {
			triggered = append(triggered, FlagPoorService)
		}
		if revenueShare >= highRevenueSharePct && row.ChangePct.Valid && row.ChangePct.Value < decliningChangePct {
			triggered = append(triggered, FlagDecliningVolume)
		}
		if row.ChangePct.Valid && row.ChangePct.Value < sharpDropChangePct {
			triggered = append(triggered, FlagSharpDrop)
		}
		if row.Trailing4Avg.Valid && row.Trailing4Avg.Value > 0 &&
			float64(row.Loads) < row.Trailing4Avg.Value*belowTrailingFactor {
			triggered = append(triggered, FlagBelowTrailing)
		}
		if len(triggered) == 0 {
			continue
		}

		flag := RiskFlag{
			CustomerName:  row.CustomerName,
			WeeklyRevenue: row.Revenue,
			WeeklyLoads:   row.Loads,
			Flags:         triggered,
			Label:         strings.Join(triggered, riskFlagSeparator),
		}
		if row.ChangePct.Valid {
			flag.WoWChangePct = row.ChangePct.Value
		}
		if row.OTD.Valid {
			pct := math.Round(row.OTD.Value*1000) / 10
			flag.OTDPct = &pct
		}
		flags = append(flags, flag)
	}
	return flags
}
