package pipeline

import (
	"sort"
	"time"
)

// WeekKPIFor computes the fleet-wide KPI card values for one week from
// the normalized load set.
func WeekKPIFor(loads []NormalizedLoad, selectedWeek time.Time) WeekKPI {
	kpi := WeekKPI{WeekStart: selectedWeek}
	otpSum, otdSum := 0.0, 0.0
	for _, l := range loads {
		if !l.WeekStart.Equal(selectedWeek) {
			continue
		}
		kpi.TotalLoads++
		kpi.TotalRevenue += l.Revenue
		if l.OnTimePickup {
			otpSum++
		}
		if l.OnTimeDelivery {
			otdSum++
		}
	}
	if kpi.TotalLoads > 0 {
		n := float64(kpi.TotalLoads)
		kpi.AvgRevenue = kpi.TotalRevenue / n
		kpi.OTPPct = roundPct(otpSum / n)
		kpi.OTDPct = roundPct(otdSum / n)
	}
	return kpi
}

// AvailableWeeks returns the distinct week starts present in the weekly
// table, newest first.
func AvailableWeeks(weekly []PeriodAggregate) []time.Time {
	seen := make(map[time.Time]bool)
	var weeks []time.Time
	for _, row := range weekly {
		if !seen[row.Period] {
			seen[row.Period] = true
			weeks = append(weeks, row.Period)
		}
	}
	sort.Slice(weeks, func(i, j int) bool { return weeks[i].After(weeks[j]) })
	return weeks
}

// BuildTrendSeries assembles the last-N-weeks trend view: per-customer
// volume and revenue points (zero rows omitted) plus the fleet OTP/OTD
// series.
func BuildTrendSeries(weekly []PeriodAggregate, loads []NormalizedLoad, lastN int) TrendSeries {
	weeks := AvailableWeeks(weekly)
	// AvailableWeeks is newest-first; the series reads oldest-first.
	sort.Slice(weeks, func(i, j int) bool { return weeks[i].Before(weeks[j]) })
	if lastN > 0 && len(weeks) > lastN {
		weeks = weeks[len(weeks)-lastN:]
	}
	inWindow := make(map[time.Time]bool, len(weeks))
	for _, w := range weeks {
		inWindow[w] = true
	}

	series := TrendSeries{Weeks: weeks}
	for _, row := range weekly {
		if !inWindow[row.Period] {
			continue
		}
		if row.Loads > 0 {
			series.Volume = append(series.Volume, TrendPoint{
				WeekStart:    row.Period,
				CustomerName: row.CustomerName,
				Loads:        row.Loads,
			})
		}
		if row.Revenue > 0 {
			series.Revenue = append(series.Revenue, TrendPoint{
				WeekStart:    row.Period,
				CustomerName: row.CustomerName,
				Revenue:      row.Revenue,
			})
		}
	}

	for _, w := range weeks {
		loadCount, otpSum, otdSum := 0, 0.0, 0.0
		for _, l := range loads {
			if !l.WeekStart.Equal(w) {
				continue
			}
			loadCount++
			if l.OnTimePickup {
				otpSum++
			}
			if l.OnTimeDelivery {
				otdSum++
			}
		}
		if loadCount == 0 {
			continue
		}
		n := float64(loadCount)
		series.Service = append(series.Service, ServicePoint{
			WeekStart: w,
			OTPPct:    roundPct(otpSum / n),
			OTDPct:    roundPct(otdSum / n),
		})
	}
	return series
}
