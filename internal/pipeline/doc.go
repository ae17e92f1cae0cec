// Package pipeline transforms raw TMS load snapshots into the tables
// behind the performance dashboard: normalized delivered loads, weekly
// and monthly customer aggregates with trend annotations and run-rate
// projections, lane aggregates, and the derived risk views.
//
// Every run recomputes from the full snapshot. There is no incremental
// state: given the same inputs (and the same reference time for the
// run-rate projection) the output is identical.
package pipeline
