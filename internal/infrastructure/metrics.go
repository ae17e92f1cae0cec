package infrastructure

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Pipeline and transport metrics, registered on the default registry
// and served by the metrics handler.
var (
	SnapshotRefreshTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "freightpulse",
		Name:      "snapshot_refresh_total",
		Help:      "Snapshot refresh attempts by outcome.",
	}, []string{"status"})

	SnapshotRefreshDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "freightpulse",
		Name:      "snapshot_refresh_duration_seconds",
		Help:      "End-to-end duration of a fetch-and-transform run.",
		Buckets:   prometheus.DefBuckets,
	})

	LoadsProcessed = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "freightpulse",
		Name:      "loads_processed",
		Help:      "Delivered loads in the current snapshot.",
	})

	FlaggedCustomers = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "freightpulse",
		Name:      "flagged_customers",
		Help:      "Customers flagged by the risk engine for the most recent week queried.",
	})

	TMSRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "freightpulse",
		Name:      "tms_requests_total",
		Help:      "TMS API requests by endpoint and status code.",
	}, []string{"endpoint", "code"})
)
