package pipeline

import (
	"sort"
	"time"
)

// PeriodKey selects which period column a load aggregates under.
type PeriodKey func(NormalizedLoad) time.Time

// WeekKey groups loads by the Monday of their completion week.
func WeekKey(l NormalizedLoad) time.Time { return l.WeekStart }

// MonthKey groups loads by the first day of their completion month.
func MonthKey(l NormalizedLoad) time.Time { return l.MonthStart }

type periodStats struct {
	loads                int
	revenue              float64
	otpSum               float64
	otdSum               float64
	uncontrollableEvents int
}

// AggregateByPeriod builds the always-visible customer x period table.
//
// The skeleton is the cross product of every distinct period present in
// the load set and every customer in the master list. Per-cell load
// statistics are left-joined onto that skeleton, so a customer with
// zero activity in a period still gets a row with zero counts and "no
// data" on-time rates. A zero rate would read as 0% on-time; no
// shipments must stay distinguishable from bad service.
//
// Output is sorted by (customer name, period) ascending, which is the
// order the trend engine expects.
func AggregateByPeriod(loads []NormalizedLoad, master []CustomerRecord, key PeriodKey) []PeriodAggregate {
	if len(loads) == 0 || len(master) == 0 {
		return nil
	}

	periodSet := make(map[time.Time]bool)
	stats := make(map[string]map[time.Time]*periodStats)
	for _, l := range loads {
		p := key(l)
		periodSet[p] = true
		byPeriod := stats[l.CustomerName]
		if byPeriod == nil {
			byPeriod = make(map[time.Time]*periodStats)
			stats[l.CustomerName] = byPeriod
		}
		s := byPeriod[p]
		if s == nil {
			s = &periodStats{}
			byPeriod[p] = s
		}
		s.loads++
		s.revenue += l.Revenue
		if l.OnTimePickup {
			s.otpSum++
		}
		if l.OnTimeDelivery {
			s.otdSum++
		}
		if l.Exception == ExceptionUncontrollable {
			s.uncontrollableEvents++
		}
	}

	periods := make([]time.Time, 0, len(periodSet))
	for p := range periodSet {
		periods = append(periods, p)
	}
	sort.Slice(periods, func(i, j int) bool { return periods[i].Before(periods[j]) })

	sortedMaster := make([]CustomerRecord, len(master))
	copy(sortedMaster, master)
	sort.Slice(sortedMaster, func(i, j int) bool { return sortedMaster[i].Name < sortedMaster[j].Name })

	out := make([]PeriodAggregate, 0, len(periods)*len(sortedMaster))
	for _, cust := range sortedMaster {
		for _, p := range periods {
			row := PeriodAggregate{
				CustomerName: cust.Name,
				CustomerID:   cust.ID,
				CustomerTier: cust.Tier,
				Period:       p,
			}
			if s := stats[cust.Name][p]; s != nil {
				row.Loads = s.loads
				row.Revenue = s.revenue
				row.AvgRevenue = s.revenue / float64(s.loads)
				row.OTP = SomeRatio(s.otpSum / float64(s.loads))
				row.OTD = SomeRatio(s.otdSum / float64(s.loads))
				row.UncontrollableEvents = s.uncontrollableEvents
			}
			out = append(out, row)
		}
	}
	return out
}
