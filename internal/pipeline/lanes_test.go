package pipeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func laneLoad(customer, lane string, week time.Time, revenue float64, onTime bool) NormalizedLoad {
	l := testLoad(customer, week, revenue, onTime)
	l.Lane = lane
	return l
}

func TestAggregateLanes(t *testing.T) {
	w1 := date(2025, 8, 4)
	w2 := date(2025, 8, 11)
	lbPhx := "Long Beach, CA → Phoenix, AZ"
	lbChino := "Long Beach, CA → Chino, CA"

	loads := []NormalizedLoad{
		laneLoad("Acme", lbPhx, w1, 900, true),
		laneLoad("Acme", lbPhx, w1, 950, false),
		laneLoad("Acme", lbChino, w1, 400, true),
		laneLoad("Acme", lbPhx, w2, 900, true),
	}

	rows := AggregateLanes(loads)
	require.Len(t, rows, 3)

	// Week 1 first, higher volume first within customer.
	assert.Equal(t, lbPhx, rows[0].Lane)
	assert.Equal(t, 2, rows[0].Volume)
	assert.Equal(t, 1850.0, rows[0].Revenue)
	assert.Equal(t, 50.0, rows[0].OTDPct)

	assert.Equal(t, lbChino, rows[1].Lane)
	assert.Equal(t, w2, rows[2].WeekStart)
}

func TestAggregateLanesEmpty(t *testing.T) {
	assert.Empty(t, AggregateLanes(nil))
}

func TestLaneRiskAttribution(t *testing.T) {
	week := date(2025, 8, 4)
	otherWeek := date(2025, 8, 11)
	loads := []NormalizedLoad{
		laneLoad("Acme", "A → B", week, 500, true),
		laneLoad("Acme", "A → C", week, 2000, false),
		laneLoad("Borealis", "A → B", week, 300, true),
		laneLoad("Acme", "A → B", otherWeek, 9999, true),
	}

	rows := LaneRiskAttribution(loads, week)
	require.Len(t, rows, 3)

	// Revenue descending within customer; other weeks excluded.
	assert.Equal(t, "Acme", rows[0].CustomerName)
	assert.Equal(t, "A → C", rows[0].Lane)
	assert.Equal(t, "A → B", rows[1].Lane)
	assert.Equal(t, 500.0, rows[1].Revenue)
	assert.Equal(t, "Borealis", rows[2].CustomerName)
}

func TestLaneRiskAttributionNoData(t *testing.T) {
	loads := []NormalizedLoad{laneLoad("Acme", "A → B", date(2025, 8, 4), 1, true)}
	assert.Nil(t, LaneRiskAttribution(loads, date(2025, 8, 11)))
}

func TestCargoOwnerBreakdown(t *testing.T) {
	week := date(2025, 8, 4)
	mk := func(owner string, revenue float64) NormalizedLoad {
		l := testLoad("Acme", week, revenue, true)
		l.CargoOwner = owner
		return l
	}

	loads := []NormalizedLoad{
		mk("Acme Retail", 500),
		mk("Acme Retail", 600),
		mk("Western Mills", 300),
		mk(DirectOwner, 1000),
		mk("Unknown BCO", 1000),
		mk("", 1000),
	}

	rows := CargoOwnerBreakdown(loads, week)
	require.Len(t, rows, 2)
	assert.Equal(t, "Acme Retail", rows[0].CargoOwner)
	assert.Equal(t, 2, rows[0].Volume)
	assert.Equal(t, 1100.0, rows[0].Revenue)
	assert.Equal(t, "Western Mills", rows[1].CargoOwner)
}

func TestWeekKPIFor(t *testing.T) {
	week := date(2025, 8, 4)
	loads := []NormalizedLoad{
		testLoad("Acme", week, 1000, true),
		testLoad("Acme", week, 500, false),
		testLoad("Borealis", week, 300, true),
		testLoad("Acme", date(2025, 8, 11), 9999, true),
	}

	kpi := WeekKPIFor(loads, week)
	assert.Equal(t, 3, kpi.TotalLoads)
	assert.Equal(t, 1800.0, kpi.TotalRevenue)
	assert.Equal(t, 600.0, kpi.AvgRevenue)
	assert.Equal(t, 100.0, kpi.OTPPct)
	assert.InDelta(t, 66.7, kpi.OTDPct, 0.01)
}

func TestWeekKPIForEmptyWeek(t *testing.T) {
	kpi := WeekKPIFor(nil, date(2025, 8, 4))
	assert.Equal(t, 0, kpi.TotalLoads)
	assert.Equal(t, 0.0, kpi.AvgRevenue)
}

func TestAvailableWeeks(t *testing.T) {
	w1, w2 := date(2025, 8, 4), date(2025, 8, 11)
	weekly := []PeriodAggregate{
		{CustomerName: "Acme", Period: w1},
		{CustomerName: "Acme", Period: w2},
		{CustomerName: "Borealis", Period: w1},
	}
	weeks := AvailableWeeks(weekly)
	require.Len(t, weeks, 2)
	assert.Equal(t, w2, weeks[0]) // newest first
	assert.Equal(t, w1, weeks[1])
}

func TestBuildTrendSeries(t *testing.T) {
	start := date(2025, 1, 6)
	var loads []NormalizedLoad
	for i := 0; i < 14; i++ {
		loads = append(loads, testLoad("Acme", start.AddDate(0, 0, 7*i), 100, true))
	}
	weekly := AnnotateTrends(AggregateByPeriod(loads, testMaster("Acme", "Quiet"), WeekKey))

	series := BuildTrendSeries(weekly, loads, 12)
	require.Len(t, series.Weeks, 12)
	assert.Equal(t, start.AddDate(0, 0, 7*2), series.Weeks[0])
	assert.Equal(t, start.AddDate(0, 0, 7*13), series.Weeks[11])

	// Zero rows (Quiet) are omitted from volume/revenue points.
	assert.Len(t, series.Volume, 12)
	assert.Len(t, series.Revenue, 12)
	assert.Len(t, series.Service, 12)
	for _, p := range series.Volume {
		assert.Equal(t, "Acme", p.CustomerName)
	}
}
