package pipeline

import (
	"time"
)

// Ratio is a mean rate over a set of loads. Valid is false when there
// were no loads to average over, which is distinct from a true 0% rate.
type Ratio struct {
	Value float64 `json:"value"`
	Valid bool    `json:"valid"`
}

// SomeRatio returns a valid Ratio with the given value.
func SomeRatio(v float64) Ratio {
	return Ratio{Value: v, Valid: true}
}

// NoRatio returns the "no data" sentinel.
func NoRatio() Ratio {
	return Ratio{}
}

// NormalizedLoad is one delivered load, flattened from the raw TMS
// payload. Loads without a completion timestamp never become a
// NormalizedLoad.
type NormalizedLoad struct {
	LoadID        string    `json:"load_id"`
	CustomerName  string    `json:"customer_name"`
	CustomerID    string    `json:"customer_id"`
	ShipperName   string    `json:"shipper_name"`
	ConsigneeName string    `json:"consignee_name"`
	PickupCity    string    `json:"pickup_city"`
	PickupState   string    `json:"pickup_state"`
	DeliveryCity  string    `json:"delivery_city"`
	DeliveryState string    `json:"delivery_state"`
	Lane          string    `json:"lane"`
	CargoOwner    string    `json:"cargo_owner"`
	Revenue       float64   `json:"revenue"`
	TotalWeight   float64   `json:"total_weight"`
	DistanceMiles float64   `json:"distance_miles"`
	Status        string    `json:"status"`
	LoadType      string    `json:"load_type"`
	CompletedDate time.Time `json:"completed_date"`
	WeekStart     time.Time `json:"week_start"`
	MonthStart    time.Time `json:"month_start"`
	ContainerNo   string    `json:"container_no"`
	Exception     string    `json:"exception_label"`
	OnTimePickup  bool      `json:"on_time_pickup"`
	OnTimeDelivery bool     `json:"on_time_delivery"`
}

// CustomerRecord is one entry in the customer master list. The master
// list drives the always-visible join: every customer in it gets a row
// per period even with zero activity.
type CustomerRecord struct {
	ID       string `json:"id"`
	Name     string `json:"name" validate:"required"`
	Tier     int    `json:"tier"`
	IsBroker bool   `json:"is_broker"`
}

// PeriodAggregate is one customer x period row (weekly or monthly),
// including the derived trend columns and, for monthly tables, the
// run-rate projection.
type PeriodAggregate struct {
	CustomerName string    `json:"customer_name"`
	CustomerID   string    `json:"customer_id"`
	CustomerTier int       `json:"customer_tier"`
	Period       time.Time `json:"period"`

	Loads                int     `json:"loads"`
	Revenue              float64 `json:"revenue"`
	AvgRevenue           float64 `json:"avg_revenue"`
	OTP                  Ratio   `json:"otp"`
	OTD                  Ratio   `json:"otd"`
	UncontrollableEvents int     `json:"uncontrollable_events"`

	// Derived by the trend engine.
	PrevLoads    int    `json:"prev_loads"`
	HasPrev      bool   `json:"has_prev"`
	ChangePct    Ratio  `json:"change_pct"`
	ChangeLabel  string `json:"change_label"`
	Trailing4Avg Ratio  `json:"trailing_4_avg"`
	VolumeTrend  string `json:"volume_trend"`
	ServiceRisk  string `json:"service_risk"`

	// Monthly tables only.
	IsCurrentMonth bool    `json:"is_current_month,omitempty"`
	RunRateLoads   int     `json:"run_rate_loads,omitempty"`
	RunRateRevenue float64 `json:"run_rate_revenue,omitempty"`
}

// Volume trend and service risk categories.
const (
	TrendUp     = "UP"
	TrendDown   = "DOWN"
	TrendStable = "STABLE"
	TrendNA     = "N/A"

	ServiceAtRisk = "AT RISK"
	ServiceOK     = "OK"
	ServiceNA     = "N/A"

	ChangeLabelNew = "NEW"
)

// LaneAggregate is a customer x lane x week row. Lanes are derived
// purely from delivered loads, so a lane with no volume is simply
// absent (no master-list join at lane level).
type LaneAggregate struct {
	CustomerName string    `json:"customer_name"`
	Lane         string    `json:"lane"`
	WeekStart    time.Time `json:"week_start"`
	Volume       int       `json:"volume"`
	Revenue      float64   `json:"revenue"`
	OTD          Ratio     `json:"otd"`
	OTDPct       float64   `json:"otd_pct"`
}

// CargoOwnerAggregate is a customer x BCO row for a single week.
type CargoOwnerAggregate struct {
	CustomerName string  `json:"customer_name"`
	CargoOwner   string  `json:"cargo_owner"`
	Volume       int     `json:"volume"`
	Revenue      float64 `json:"revenue"`
	OTDPct       float64 `json:"otd_pct"`
}

// Risk flag names, in the fixed evaluation order.
const (
	FlagStaleAccount    = "STALE ACCOUNT (0 LOADS)"
	FlagPoorService     = "HIGH REVENUE + POOR SERVICE"
	FlagDecliningVolume = "HIGH REVENUE + DECLINING VOLUME"
	FlagSharpDrop       = "SHARP WOW DROP"
	FlagBelowTrailing   = "BELOW TRAILING AVERAGE"
)

// RiskFlag is one flagged customer for a selected week, with the
// metrics snapshot that triggered the rules.
type RiskFlag struct {
	CustomerName  string   `json:"customer_name"`
	WeeklyRevenue float64  `json:"weekly_revenue"`
	WeeklyLoads   int      `json:"weekly_loads"`
	WoWChangePct  float64  `json:"wow_change_pct"`
	OTDPct        *float64 `json:"on_time_delivery_pct"`
	Flags         []string `json:"flags"`
	Label         string   `json:"risk_flag"`
}

// WeekKPI is the fleet-wide KPI card set for one week.
type WeekKPI struct {
	WeekStart    time.Time `json:"week_start"`
	TotalLoads   int       `json:"total_loads"`
	TotalRevenue float64   `json:"total_revenue"`
	AvgRevenue   float64   `json:"avg_revenue"`
	OTPPct       float64   `json:"otp_pct"`
	OTDPct       float64   `json:"otd_pct"`
}

// TrendPoint is one week of a per-customer trend series.
type TrendPoint struct {
	WeekStart    time.Time `json:"week_start"`
	CustomerName string    `json:"customer_name"`
	Loads        int       `json:"loads"`
	Revenue      float64   `json:"revenue"`
}

// ServicePoint is one week of the fleet OTP/OTD series.
type ServicePoint struct {
	WeekStart time.Time `json:"week_start"`
	OTPPct    float64   `json:"otp_pct"`
	OTDPct    float64   `json:"otd_pct"`
}

// TrendSeries is the last-N-weeks view behind the trends tab.
type TrendSeries struct {
	Weeks   []time.Time    `json:"weeks"`
	Volume  []TrendPoint   `json:"volume"`
	Revenue []TrendPoint   `json:"revenue"`
	Service []ServicePoint `json:"service"`
}

// Tables is the full output of one pipeline run: the five tables the
// dashboard consumes.
type Tables struct {
	Loads     []NormalizedLoad  `json:"loads"`
	Weekly    []PeriodAggregate `json:"weekly"`
	Monthly   []PeriodAggregate `json:"monthly"`
	Lanes     []LaneAggregate   `json:"lanes"`
	Customers []CustomerRecord  `json:"customers"`
}
