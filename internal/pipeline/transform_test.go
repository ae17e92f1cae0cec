package pipeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"freightpulse/internal/tms"
)

func TestTransformEmptyInput(t *testing.T) {
	// Zero input records: every derived table is empty, no stage errors.
	tables := Transform(nil, nil, time.Now())
	assert.Empty(t, tables.Loads)
	assert.Empty(t, tables.Weekly)
	assert.Empty(t, tables.Monthly)
	assert.Empty(t, tables.Lanes)
	assert.Empty(t, tables.Customers)

	assert.Nil(t, ComputeRiskFlags(tables.Weekly, date(2025, 8, 4)))
	assert.Nil(t, LaneRiskAttribution(tables.Loads, date(2025, 8, 4)))
	assert.Nil(t, CargoOwnerBreakdown(tables.Loads, date(2025, 8, 4)))
}

func TestTransformEndToEnd(t *testing.T) {
	now := time.Date(2025, 8, 20, 10, 0, 0, 0, time.UTC)
	rawLoads := []tms.Load{
		{
			ReferenceNumber:  "NVY_M1001",
			CallerName:       "Acme Logistics",
			Caller:           &tms.Party{ID: "c1"},
			TypeOfLoad:       "IMPORT",
			ShipperName:      "TTI",
			ConsigneeName:    "DC - Chino",
			ConsigneeAddress: "100 Warehouse Way, Chino, CA 91710",
			TotalAmount:      850,
			TotalMiles:       35,
			LoadCompletedAt:  "2025-08-12T14:00:00Z",
		},
		{
			ReferenceNumber: "NVY_M1002",
			CallerName:      "Acme Logistics",
			Caller:          &tms.Party{ID: "c1"},
			TypeOfLoad:      "IMPORT",
			ShipperName:     "TTI",
			ConsigneeName:   "DC - Chino",
			TotalAmount:     900,
			TerminalHold:    true,
			LoadCompletedAt: "2025-08-05T09:00:00Z",
		},
		{
			ReferenceNumber: "NVY_E2001",
			CallerName:      "Acme Logistics",
			// no completion timestamp: still in flight
		},
	}
	rawCustomers := []tms.Customer{
		{ID: "c1", CompanyName: "Acme Logistics"},
		{ID: "c2", CompanyName: "Borealis Trading"},
	}

	tables := Transform(rawLoads, rawCustomers, now)

	require.Len(t, tables.Loads, 2)
	assert.Equal(t, "Long Beach", tables.Loads[0].PickupCity) // TTI terminal map
	assert.Equal(t, "Chino", tables.Loads[0].DeliveryCity)
	assert.Equal(t, "DC - Chino", tables.Loads[0].CargoOwner)

	// 2 customers x 2 distinct weeks, always-visible.
	require.Len(t, tables.Weekly, 4)
	// 2 customers x 1 distinct month.
	require.Len(t, tables.Monthly, 2)

	var acmeMonth PeriodAggregate
	for _, row := range tables.Monthly {
		if row.CustomerName == "Acme Logistics" {
			acmeMonth = row
		}
	}
	assert.Equal(t, 2, acmeMonth.Loads)
	assert.Equal(t, 1, acmeMonth.UncontrollableEvents)
	assert.True(t, acmeMonth.IsCurrentMonth)
	// 2 loads over 20 elapsed days projected across 31.
	assert.Equal(t, 3, acmeMonth.RunRateLoads)

	require.NotEmpty(t, tables.Lanes)
	assert.Equal(t, "Acme Logistics", tables.Lanes[0].CustomerName)
}

func TestTransformDeterministic(t *testing.T) {
	now := time.Date(2025, 8, 20, 0, 0, 0, 0, time.UTC)
	raw := []tms.Load{{
		ReferenceNumber: "L1",
		CallerName:      "Acme",
		TotalAmount:     100,
		LoadCompletedAt: "2025-08-12T00:00:00Z",
	}}
	customers := []tms.Customer{{ID: "c1", CompanyName: "Acme"}}

	a := Transform(raw, customers, now)
	b := Transform(raw, customers, now)
	assert.Equal(t, a, b)
}
