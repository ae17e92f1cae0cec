package pipeline

import (
	"math"
	"sort"
	"time"
)

type laneStats struct {
	volume  int
	revenue float64
	otdSum  float64
}

func (s *laneStats) add(l NormalizedLoad) {
	s.volume++
	s.revenue += l.Revenue
	if l.OnTimeDelivery {
		s.otdSum++
	}
}

func (s *laneStats) otd() Ratio {
	return SomeRatio(s.otdSum / float64(s.volume))
}

// AggregateLanes groups delivered loads by customer x lane x week. No
// master-list join here: a lane only exists in the output if something
// moved on it.
func AggregateLanes(loads []NormalizedLoad) []LaneAggregate {
	type key struct {
		customer string
		lane     string
		week     time.Time
	}
	stats := make(map[key]*laneStats)
	for _, l := range loads {
		k := key{customer: l.CustomerName, lane: l.Lane, week: l.WeekStart}
		s := stats[k]
		if s == nil {
			s = &laneStats{}
			stats[k] = s
		}
		s.add(l)
	}

	out := make([]LaneAggregate, 0, len(stats))
	for k, s := range stats {
		otd := s.otd()
		out = append(out, LaneAggregate{
			CustomerName: k.customer,
			Lane:         k.lane,
			WeekStart:    k.week,
			Volume:       s.volume,
			Revenue:      s.revenue,
			OTD:          otd,
			OTDPct:       roundPct(otd.Value),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if !a.WeekStart.Equal(b.WeekStart) {
			return a.WeekStart.Before(b.WeekStart)
		}
		if a.CustomerName != b.CustomerName {
			return a.CustomerName < b.CustomerName
		}
		if a.Volume != b.Volume {
			return a.Volume > b.Volume
		}
		return a.Lane < b.Lane
	})
	return out
}

// LaneRiskAttribution re-aggregates one week's loads by customer x lane
// to show which lanes drive a flagged customer's numbers. Sorted by
// revenue descending within each customer.
func LaneRiskAttribution(loads []NormalizedLoad, selectedWeek time.Time) []LaneAggregate {
	var week []NormalizedLoad
	for _, l := range loads {
		if l.WeekStart.Equal(selectedWeek) {
			week = append(week, l)
		}
	}
	if len(week) == 0 {
		return nil
	}

	rows := AggregateLanes(week)
	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.CustomerName != b.CustomerName {
			return a.CustomerName < b.CustomerName
		}
		if a.Revenue != b.Revenue {
			return a.Revenue > b.Revenue
		}
		return a.Lane < b.Lane
	})
	return rows
}

// CargoOwnerBreakdown aggregates one week's loads by customer x cargo
// owner. Direct and unattributed loads are excluded: the breakdown
// exists to explain broker volume, and "Direct" would dominate it with
// noise.
func CargoOwnerBreakdown(loads []NormalizedLoad, selectedWeek time.Time) []CargoOwnerAggregate {
	type key struct {
		customer string
		owner    string
	}
	stats := make(map[key]*laneStats)
	for _, l := range loads {
		if !l.WeekStart.Equal(selectedWeek) {
			continue
		}
		owner := l.CargoOwner
		if owner == "" || owner == DirectOwner || owner == unknownOwner {
			continue
		}
		k := key{customer: l.CustomerName, owner: owner}
		s := stats[k]
		if s == nil {
			s = &laneStats{}
			stats[k] = s
		}
		s.add(l)
	}
	if len(stats) == 0 {
		return nil
	}

	out := make([]CargoOwnerAggregate, 0, len(stats))
	for k, s := range stats {
		out = append(out, CargoOwnerAggregate{
			CustomerName: k.customer,
			CargoOwner:   k.owner,
			Volume:       s.volume,
			Revenue:      s.revenue,
			OTDPct:       roundPct(s.otd().Value),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.CustomerName != b.CustomerName {
			return a.CustomerName < b.CustomerName
		}
		if a.Volume != b.Volume {
			return a.Volume > b.Volume
		}
		return a.CargoOwner < b.CargoOwner
	})
	return out
}

// roundPct converts a 0..1 rate to a percentage rounded to 1 decimal.
func roundPct(rate float64) float64 {
	return math.Round(rate*1000) / 10
}
