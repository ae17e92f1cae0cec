package services

import (
	"context"
	"log/slog"
	"runtime"
	"time"
)

// HealthService reports process liveness and snapshot readiness.
type HealthService struct {
	version   string
	startTime time.Time
	dashboard *DashboardService
	logger    *slog.Logger
}

// HealthStatus is the health endpoint response body.
type HealthStatus struct {
	Status    string         `json:"status"`
	Timestamp time.Time      `json:"timestamp"`
	Version   string         `json:"version"`
	Runtime   map[string]any `json:"runtime,omitempty"`
	Snapshot  *SnapshotInfo  `json:"snapshot,omitempty"`
}

// SnapshotInfo summarizes the current snapshot for health reporting.
type SnapshotInfo struct {
	RunID     string    `json:"run_id"`
	FetchedAt time.Time `json:"fetched_at"`
	LoadCount int       `json:"load_count"`
	AgeStr    string    `json:"age"`
}

// NewHealthService creates a health service.
func NewHealthService(version string, dashboard *DashboardService, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthService{
		version:   version,
		startTime: time.Now(),
		dashboard: dashboard,
		logger:    logger,
	}
}

// Check reports overall health. The process is "degraded" until the
// first snapshot refresh succeeds; it is never "unhealthy" because the
// API can still serve the connection-test and refresh endpoints.
func (h *HealthService) Check(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Version:   h.version,
		Runtime: map[string]any{
			"go_version":     runtime.Version(),
			"goroutines":     runtime.NumGoroutine(),
			"uptime_seconds": time.Since(h.startTime).Seconds(),
		},
	}

	snap := h.dashboard.Current()
	if snap == nil {
		status.Status = "degraded"
		return status
	}
	status.Snapshot = &SnapshotInfo{
		RunID:     snap.RunID,
		FetchedAt: snap.FetchedAt,
		LoadCount: snap.LoadCount,
		AgeStr:    time.Since(snap.FetchedAt).Round(time.Second).String(),
	}
	return status
}
