package pipeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"freightpulse/internal/tms"
)

func TestNormalizeDropsUndeliveredLoads(t *testing.T) {
	raw := []tms.Load{
		{ReferenceNumber: "L1", LoadCompletedAt: "2025-08-12T14:05:00Z"},
		{ReferenceNumber: "L2"}, // in flight, no completion timestamp
		{ReferenceNumber: "L3", LoadCompletedAt: "not-a-date"},
		{ReferenceNumber: "L4", LoadCompletedDate: "2025-08-13T09:00:00Z"},
	}

	loads := NewNormalizer().Normalize(raw)
	require.Len(t, loads, 2)
	assert.Equal(t, "L1", loads[0].LoadID)
	assert.Equal(t, "L4", loads[1].LoadID)
}

func TestNormalizeDates(t *testing.T) {
	raw := []tms.Load{{ReferenceNumber: "L1", LoadCompletedAt: "2025-08-13T09:30:00Z"}} // a Wednesday

	loads := NewNormalizer().Normalize(raw)
	require.Len(t, loads, 1)

	l := loads[0]
	assert.Equal(t, time.Date(2025, 8, 13, 0, 0, 0, 0, time.UTC), l.CompletedDate)
	assert.Equal(t, time.Date(2025, 8, 11, 0, 0, 0, 0, time.UTC), l.WeekStart)
	assert.Equal(t, time.Monday, l.WeekStart.Weekday())
	assert.False(t, l.WeekStart.After(l.CompletedDate))
	assert.Equal(t, time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC), l.MonthStart)
}

func TestWeekStartOf(t *testing.T) {
	tests := []struct {
		name string
		date time.Time
		want time.Time
	}{
		{"monday maps to itself", date(2025, 8, 11), date(2025, 8, 11)},
		{"sunday maps back six days", date(2025, 8, 17), date(2025, 8, 11)},
		{"saturday", date(2025, 8, 16), date(2025, 8, 11)},
		{"across month boundary", date(2025, 8, 2), date(2025, 7, 28)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := WeekStartOf(tt.date)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, time.Monday, got.Weekday())
		})
	}
}

func TestNormalizeRevenueIsFlatTotal(t *testing.T) {
	// totalAmount is the all-in rate; itemized pricing lines are present
	// on the payload but must not be summed.
	raw := []tms.Load{{
		ReferenceNumber: "L1",
		LoadCompletedAt: "2025-08-12T00:00:00Z",
		TotalAmount:     850,
		Pricing: []tms.ChargeLine{
			{ChargeCode: "BASE", FinalAmount: 700},
			{ChargeCode: "FSC", FinalAmount: 120},
			{ChargeCode: "CHASSIS", FinalAmount: 45},
		},
	}}

	loads := NewNormalizer().Normalize(raw)
	require.Len(t, loads, 1)
	assert.Equal(t, 850.0, loads[0].Revenue)
}

func TestDeriveCargoOwner(t *testing.T) {
	tests := []struct {
		name string
		load tms.Load
		want string
	}{
		{
			name: "import attributes to consignee",
			load: tms.Load{TypeOfLoad: "IMPORT", ConsigneeName: "Acme Retail", ShipperName: "TTI"},
			want: "Acme Retail",
		},
		{
			name: "marker reference attributes to consignee",
			load: tms.Load{ReferenceNumber: "NVY_M1001", ConsigneeName: "Acme Retail"},
			want: "Acme Retail",
		},
		{
			name: "road attributes to shipper",
			load: tms.Load{TypeOfLoad: "ROAD", ShipperName: "Western Mills"},
			want: "Western Mills",
		},
		{
			name: "road marker reference",
			load: tms.Load{ReferenceNumber: "NVY_R2002", ShipperName: "Western Mills"},
			want: "Western Mills",
		},
		{
			name: "import with blank consignee",
			load: tms.Load{TypeOfLoad: "IMPORT"},
			want: "Unknown BCO",
		},
		{
			name: "everything else is direct",
			load: tms.Load{TypeOfLoad: "EXPORT", ReferenceNumber: "NVY_E3003"},
			want: DirectOwner,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DeriveCargoOwner(tt.load))
		})
	}
}

func TestClassifyException(t *testing.T) {
	assert.Equal(t, ExceptionUncontrollable, ClassifyException(tms.Load{TerminalHold: true}))
	assert.Equal(t, ExceptionUncontrollable, ClassifyException(tms.Load{Custom: "hold"}))
	assert.Equal(t, ExceptionUncontrollable, ClassifyException(tms.Load{Custom: "HOLD"}))
	assert.Equal(t, "", ClassifyException(tms.Load{Custom: "EXAM"}))
	assert.Equal(t, "", ClassifyException(tms.Load{}))
}

func TestNormalizeDefaultsOnTimeFlags(t *testing.T) {
	raw := []tms.Load{{ReferenceNumber: "L1", LoadCompletedAt: "2025-08-12T00:00:00Z"}}

	loads := NewNormalizer().Normalize(raw)
	require.Len(t, loads, 1)
	assert.True(t, loads[0].OnTimePickup)
	assert.True(t, loads[0].OnTimeDelivery)

	// A stop-aware strategy can override the default.
	strict := NewNormalizerWithTimeliness(func(tms.Load) (bool, bool) { return false, false })
	loads = strict.Normalize(raw)
	require.Len(t, loads, 1)
	assert.False(t, loads[0].OnTimeDelivery)
}

func TestBuildCustomerMaster(t *testing.T) {
	master := BuildCustomerMaster([]tms.Customer{
		{ID: "c1", CompanyName: "Acme Logistics"},
		{ID: "c2"},
	})
	require.Len(t, master, 2)
	assert.Equal(t, "Acme Logistics", master[0].Name)
	assert.Equal(t, 2, master[0].Tier)
	assert.True(t, master[0].IsBroker)
	assert.Equal(t, "Unknown", master[1].Name)
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
