package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseCityState(t *testing.T) {
	tests := []struct {
		name     string
		address  string
		wantCity string
		wantState string
	}{
		{
			name:      "full street address",
			address:   "1521 Pier C St, Long Beach, CA 90813, USA",
			wantCity:  "Long Beach",
			wantState: "CA",
		},
		{
			name:      "zip+4",
			address:   "4000 Industrial Ave, Phoenix, AZ 85009-1234",
			wantCity:  "Phoenix",
			wantState: "AZ",
		},
		{
			name:      "upper-cased city is title-cased",
			address:   "700 TERMINAL WAY, SAN PEDRO, CA 90731",
			wantCity:  "San Pedro",
			wantState: "CA",
		},
		{
			name:      "state code without zip does not match",
			address:   "Somewhere, CA",
			wantCity:  "Unknown",
			wantState: UnknownState,
		},
		{
			name:      "two-letter word that is not a state",
			address:   "Dock 5, XX 90210",
			wantCity:  "Unknown",
			wantState: UnknownState,
		},
		{
			name:      "state token first has no preceding city token",
			address:   "CA 90802, Long Beach",
			wantCity:  "Unknown",
			wantState: UnknownState,
		},
		{
			name:      "empty address",
			address:   "",
			wantCity:  "Unknown",
			wantState: UnknownState,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			city, state := ParseCityState(tt.address)
			assert.Equal(t, tt.wantCity, city)
			assert.Equal(t, tt.wantState, state)
		})
	}
}

func TestResolvePickup(t *testing.T) {
	t.Run("address wins over terminal map", func(t *testing.T) {
		city, state := ResolvePickup("100 Main St, Fontana, CA 92335", "TTI")
		assert.Equal(t, "Fontana", city)
		assert.Equal(t, "CA", state)
	})

	t.Run("terminal map fallback", func(t *testing.T) {
		city, state := ResolvePickup("", "trapac wilmington")
		assert.Equal(t, "Wilmington", city)
		assert.Equal(t, "CA", state)
	})

	t.Run("separator convention fallback", func(t *testing.T) {
		city, state := ResolvePickup("", "ACME YARD - ONTARIO")
		assert.Equal(t, "Ontario", city)
		assert.Equal(t, DefaultState, state)
	})

	t.Run("nothing resolves", func(t *testing.T) {
		city, state := ResolvePickup("", "SOME SHIPPER")
		assert.Equal(t, "Unknown", city)
		assert.Equal(t, DefaultState, state)
	})
}

func TestResolveDelivery(t *testing.T) {
	t.Run("no terminal map on delivery side", func(t *testing.T) {
		city, state := ResolveDelivery("", "TTI")
		assert.Equal(t, "Unknown", city)
		assert.Equal(t, UnknownState, state)
	})

	t.Run("separator convention", func(t *testing.T) {
		city, state := ResolveDelivery("", "Distribution - Chino")
		assert.Equal(t, "Chino", city)
		assert.Equal(t, DefaultState, state)
	})
}

func TestLaneString(t *testing.T) {
	lane := LaneString("Long Beach", "CA", "Phoenix", "AZ")
	assert.Equal(t, "Long Beach, CA → Phoenix, AZ", lane)
}
