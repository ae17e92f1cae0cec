package pipeline

import (
	"time"

	"freightpulse/internal/tms"
)

// Transform runs the full pipeline over a raw TMS snapshot and returns
// every dashboard table. It is a pure function of its inputs; now feeds
// only the monthly run-rate projection.
//
// Zero input records produce empty tables, never an error.
func Transform(rawLoads []tms.Load, rawCustomers []tms.Customer, now time.Time) Tables {
	return TransformWith(NewNormalizer(), rawLoads, rawCustomers, now)
}

// TransformWith runs the pipeline with a caller-supplied normalizer,
// letting tests and future integrations swap the stop-timeliness
// strategy.
func TransformWith(n *Normalizer, rawLoads []tms.Load, rawCustomers []tms.Customer, now time.Time) Tables {
	loads := n.Normalize(rawLoads)
	master := BuildCustomerMaster(rawCustomers)

	weekly := AnnotateTrends(AggregateByPeriod(loads, master, WeekKey))
	monthly := ProjectRunRate(AnnotateTrends(AggregateByPeriod(loads, master, MonthKey)), now)

	return Tables{
		Loads:     loads,
		Weekly:    weekly,
		Monthly:   monthly,
		Lanes:     AggregateLanes(loads),
		Customers: master,
	}
}
