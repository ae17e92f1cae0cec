package pipeline

import (
	"strings"
	"time"

	"freightpulse/internal/tms"
)

// ExceptionUncontrollable is the label for delays outside the fleet's
// control (terminal holds, customs holds).
const ExceptionUncontrollable = "Uncontrollable Event"

// DirectOwner is the cargo-owner attribution for loads billed straight
// to the moving party rather than through a broker.
const DirectOwner = "Direct"

const unknownOwner = "Unknown BCO"

// StopTimeliness reports whether a load picked up and delivered on
// time. The TMS load object does not carry stop-level appointment
// detail, so DefaultStopTimeliness treats every load as on time; a
// stop-aware strategy can replace it once that data is available.
type StopTimeliness func(load tms.Load) (onTimePickup, onTimeDelivery bool)

// DefaultStopTimeliness counts every delivered load as on time for both
// stops. Known approximation carried over from the reporting source:
// all delays are counted as total OTD, not split by controllability.
func DefaultStopTimeliness(tms.Load) (bool, bool) {
	return true, true
}

// Normalizer flattens raw TMS loads into NormalizedLoad rows.
type Normalizer struct {
	timeliness StopTimeliness
}

// NewNormalizer returns a Normalizer with the default timeliness
// strategy.
func NewNormalizer() *Normalizer {
	return &Normalizer{timeliness: DefaultStopTimeliness}
}

// NewNormalizerWithTimeliness returns a Normalizer with a custom
// timeliness strategy.
func NewNormalizerWithTimeliness(fn StopTimeliness) *Normalizer {
	if fn == nil {
		fn = DefaultStopTimeliness
	}
	return &Normalizer{timeliness: fn}
}

// Normalize converts raw loads into one NormalizedLoad per delivered
// load. Loads without a completion timestamp, or with one that does not
// parse, are dropped rather than reported: downstream aggregates stay
// complete and in-flight loads never leak into delivered metrics.
//
// Revenue is the flat totalAmount (the all-in rate), deliberately not
// the sum of itemized pricing charge lines.
func (n *Normalizer) Normalize(raw []tms.Load) []NormalizedLoad {
	out := make([]NormalizedLoad, 0, len(raw))
	for _, load := range raw {
		completedAt := load.CompletedAt()
		if completedAt == "" {
			continue // not delivered yet
		}
		completed, ok := parseCompletionDate(completedAt)
		if !ok {
			continue
		}

		pickupCity, pickupState := ResolvePickup(load.ShipperAddress, load.ShipperName)
		deliveryCity, deliveryState := ResolveDelivery(load.ConsigneeAddress, load.ConsigneeName)

		customerID := ""
		if load.Caller != nil {
			customerID = load.Caller.ID
		}
		customerName := load.CallerName
		if customerName == "" {
			customerName = "Unknown"
		}

		otp, otd := n.timeliness(load)

		out = append(out, NormalizedLoad{
			LoadID:         load.ReferenceNumber,
			CustomerName:   customerName,
			CustomerID:     customerID,
			ShipperName:    load.ShipperName,
			ConsigneeName:  load.ConsigneeName,
			PickupCity:     pickupCity,
			PickupState:    pickupState,
			DeliveryCity:   deliveryCity,
			DeliveryState:  deliveryState,
			Lane:           LaneString(pickupCity, pickupState, deliveryCity, deliveryState),
			CargoOwner:     DeriveCargoOwner(load),
			Revenue:        load.TotalAmount,
			TotalWeight:    load.TotalWeight,
			DistanceMiles:  load.TotalMiles,
			Status:         load.Status,
			LoadType:       load.TypeOfLoad,
			CompletedDate:  completed,
			WeekStart:      WeekStartOf(completed),
			MonthStart:     MonthStartOf(completed),
			ContainerNo:    load.ContainerNo,
			Exception:      ClassifyException(load),
			OnTimePickup:   otp,
			OnTimeDelivery: otd,
		})
	}
	return out
}

// DeriveCargoOwner attributes a load to its beneficial cargo owner.
// Imports (or "_M" marked references) belong to the consignee, road
// moves (or "_R" marked references) to the shipper; anything else is a
// direct customer.
func DeriveCargoOwner(load tms.Load) string {
	ref := load.ReferenceNumber
	switch {
	case strings.EqualFold(load.TypeOfLoad, "IMPORT") || strings.Contains(ref, "_M"):
		if load.ConsigneeName != "" {
			return load.ConsigneeName
		}
		return unknownOwner
	case strings.EqualFold(load.TypeOfLoad, "ROAD") || strings.Contains(ref, "_R"):
		if load.ShipperName != "" {
			return load.ShipperName
		}
		return unknownOwner
	}
	return DirectOwner
}

// ClassifyException labels loads held at the terminal or flagged HOLD
// in the custom status field as uncontrollable events.
func ClassifyException(load tms.Load) string {
	if load.TerminalHold || strings.EqualFold(strings.TrimSpace(load.Custom), "HOLD") {
		return ExceptionUncontrollable
	}
	return ""
}

// parseCompletionDate takes the date part of an ISO timestamp and
// parses it to a UTC midnight time.
func parseCompletionDate(ts string) (time.Time, bool) {
	if len(ts) < 10 {
		return time.Time{}, false
	}
	t, err := time.Parse("2006-01-02", ts[:10])
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// WeekStartOf returns the Monday of the week containing d.
func WeekStartOf(d time.Time) time.Time {
	offset := (int(d.Weekday()) + 6) % 7
	d = d.AddDate(0, 0, -offset)
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
}

// MonthStartOf returns the first day of the month containing d.
func MonthStartOf(d time.Time) time.Time {
	return time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// BuildCustomerMaster converts the raw TMS customer list into master
// records. Every entry is an always-visible candidate; the pipeline
// never mutates this list.
func BuildCustomerMaster(raw []tms.Customer) []CustomerRecord {
	out := make([]CustomerRecord, 0, len(raw))
	for _, c := range raw {
		name := c.CompanyName
		if name == "" {
			name = "Unknown"
		}
		out = append(out, CustomerRecord{
			ID:       c.ID,
			Name:     name,
			Tier:     2,
			IsBroker: true,
		})
	}
	return out
}
