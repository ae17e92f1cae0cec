package pipeline

import (
	_ "embed"
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/yaml.v2"
)

// UnknownState is the sentinel state when nothing resolves.
const UnknownState = "??"

// DefaultState is assumed for facility-name fallbacks, since the fleet
// operates out of Southern California.
const DefaultState = "CA"

//go:embed terminal_map.yaml
var terminalMapYAML []byte

type terminalEntry struct {
	City  string `yaml:"city"`
	State string `yaml:"state"`
}

var terminalCityMap = mustLoadTerminalMap()

func mustLoadTerminalMap() map[string]terminalEntry {
	m := make(map[string]terminalEntry)
	if err := yaml.Unmarshal(terminalMapYAML, &m); err != nil {
		panic(fmt.Sprintf("pipeline: invalid embedded terminal map: %v", err))
	}
	return m
}

// stateZipPattern matches an address token like "CA 90802" or
// "CA 90802-1234".
var stateZipPattern = regexp.MustCompile(`^([A-Z]{2})\s+\d{5}`)

var usStates = map[string]bool{
	"AL": true, "AK": true, "AZ": true, "AR": true, "CA": true,
	"CO": true, "CT": true, "DE": true, "FL": true, "GA": true,
	"HI": true, "ID": true, "IL": true, "IN": true, "IA": true,
	"KS": true, "KY": true, "LA": true, "ME": true, "MD": true,
	"MA": true, "MI": true, "MN": true, "MS": true, "MO": true,
	"MT": true, "NE": true, "NV": true, "NH": true, "NJ": true,
	"NM": true, "NY": true, "NC": true, "ND": true, "OH": true,
	"OK": true, "OR": true, "PA": true, "RI": true, "SC": true,
	"SD": true, "TN": true, "TX": true, "UT": true, "VT": true,
	"VA": true, "WA": true, "WV": true, "WI": true, "WY": true,
}

// ParseCityState extracts a (city, state) pair from a free-text
// address. It scans comma-separated tokens for a two-letter state code
// followed by a 5-digit ZIP; the preceding token is the city. Returns
// ("Unknown", "??") when no token matches. Never fails, only degrades.
func ParseCityState(address string) (city, state string) {
	if strings.TrimSpace(address) == "" {
		return "Unknown", UnknownState
	}
	parts := strings.Split(address, ",")
	for i, part := range parts {
		part = strings.TrimSpace(part)
		m := stateZipPattern.FindStringSubmatch(part)
		if m != nil && usStates[m[1]] && i > 0 {
			return titleCase(strings.TrimSpace(parts[i-1])), m[1]
		}
	}
	return "Unknown", UnknownState
}

// ResolvePickup resolves the pickup (city, state) for a load. Address
// parsing wins; otherwise the shipper name is checked against the port
// terminal map, then against the "YARD - City" naming convention.
func ResolvePickup(shipperAddress, shipperName string) (city, state string) {
	city, state = ParseCityState(shipperAddress)
	if city != "Unknown" {
		return city, state
	}
	name := strings.ToUpper(strings.TrimSpace(shipperName))
	if entry, ok := terminalCityMap[name]; ok {
		return entry.City, entry.State
	}
	if _, after, found := strings.Cut(name, " - "); found {
		return titleCase(strings.TrimSpace(after)), DefaultState
	}
	return "Unknown", DefaultState
}

// ResolveDelivery resolves the delivery (city, state) for a load.
// Consignees are warehouses rather than terminals, so there is no
// terminal-map fallback on this side.
func ResolveDelivery(consigneeAddress, consigneeName string) (city, state string) {
	city, state = ParseCityState(consigneeAddress)
	if city != "Unknown" {
		return city, state
	}
	name := strings.ToUpper(strings.TrimSpace(consigneeName))
	if _, after, found := strings.Cut(name, " - "); found {
		return titleCase(strings.TrimSpace(after)), DefaultState
	}
	return "Unknown", UnknownState
}

// LaneString builds the canonical lane key, e.g.
// "Long Beach, CA → Phoenix, AZ".
func LaneString(pickupCity, pickupState, deliveryCity, deliveryState string) string {
	return fmt.Sprintf("%s, %s → %s, %s", pickupCity, pickupState, deliveryCity, deliveryState)
}

// titleCase upper-cases the first letter of each space-separated word
// and lower-cases the rest, matching how city names are normalized.
func titleCase(s string) string {
	words := strings.Fields(strings.ToLower(s))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
