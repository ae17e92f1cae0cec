package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"freightpulse/internal/infrastructure"
	"freightpulse/internal/pipeline"
	"freightpulse/internal/tms"
)

// LoadSource supplies the raw snapshot inputs. The TMS client satisfies
// this; tests substitute a fake.
type LoadSource interface {
	GetAllLoads(ctx context.Context) ([]tms.Load, error)
	GetCustomers(ctx context.Context) ([]tms.Customer, error)
	TestConnection(ctx context.Context) tms.ConnectionStatus
}

// Snapshot is one immutable pipeline run result. Queries against a
// snapshot never mutate it; a refresh swaps in a whole new value.
type Snapshot struct {
	RunID     string          `json:"run_id"`
	FetchedAt time.Time       `json:"fetched_at"`
	LoadCount int             `json:"load_count"`
	Tables    pipeline.Tables `json:"-"`
}

// DashboardService owns the current snapshot and answers dashboard
// queries from it.
type DashboardService struct {
	source LoadSource
	logger *slog.Logger
	now    func() time.Time

	mu       sync.RWMutex
	snapshot *Snapshot
}

// NewDashboardService creates a dashboard service backed by the given
// load source.
func NewDashboardService(source LoadSource, logger *slog.Logger) *DashboardService {
	if logger == nil {
		logger = slog.Default()
	}
	return &DashboardService{
		source: source,
		logger: logger,
		now:    time.Now,
	}
}

// WithNow overrides the clock used for run-rate projection. Tests only.
func (s *DashboardService) WithNow(now func() time.Time) *DashboardService {
	s.now = now
	return s
}

// Refresh fetches a full snapshot from the source and recomputes every
// derived table. Loads and customers are fetched concurrently; the
// pipeline itself is a pure function of the fetched data.
func (s *DashboardService) Refresh(ctx context.Context) (*Snapshot, error) {
	ctx, span := infrastructure.Tracer().Start(ctx, "dashboard.refresh")
	defer span.End()

	runID := uuid.New().String()
	start := time.Now()
	s.logger.InfoContext(ctx, "snapshot refresh started",
		slog.String("run_id", runID))

	var (
		loads     []tms.Load
		customers []tms.Customer
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		fetchCtx, fetchSpan := infrastructure.Tracer().Start(gctx, "tms.fetch_loads")
		defer fetchSpan.End()
		var err error
		loads, err = s.source.GetAllLoads(fetchCtx)
		if err != nil {
			return fmt.Errorf("fetch loads: %w", err)
		}
		fetchSpan.SetAttributes(attribute.Int("loads.count", len(loads)))
		return nil
	})
	g.Go(func() error {
		fetchCtx, fetchSpan := infrastructure.Tracer().Start(gctx, "tms.fetch_customers")
		defer fetchSpan.End()
		var err error
		customers, err = s.source.GetCustomers(fetchCtx)
		if err != nil {
			return fmt.Errorf("fetch customers: %w", err)
		}
		fetchSpan.SetAttributes(attribute.Int("customers.count", len(customers)))
		return nil
	})
	if err := g.Wait(); err != nil {
		infrastructure.SnapshotRefreshTotal.WithLabelValues("error").Inc()
		s.logger.ErrorContext(ctx, "snapshot refresh failed",
			slog.String("run_id", runID),
			slog.String("error", err.Error()))
		return nil, err
	}

	_, transformSpan := infrastructure.Tracer().Start(ctx, "pipeline.transform",
		trace.WithAttributes(attribute.Int("loads.raw", len(loads))))
	tables := pipeline.Transform(loads, customers, s.now())
	transformSpan.End()

	snapshot := &Snapshot{
		RunID:     runID,
		FetchedAt: time.Now().UTC(),
		LoadCount: len(tables.Loads),
		Tables:    tables,
	}

	s.mu.Lock()
	s.snapshot = snapshot
	s.mu.Unlock()

	duration := time.Since(start)
	infrastructure.SnapshotRefreshTotal.WithLabelValues("success").Inc()
	infrastructure.SnapshotRefreshDuration.Observe(duration.Seconds())
	infrastructure.LoadsProcessed.Set(float64(len(tables.Loads)))

	s.logger.InfoContext(ctx, "snapshot refresh completed",
		slog.String("run_id", runID),
		slog.Int("loads", len(tables.Loads)),
		slog.Int("customers", len(tables.Customers)),
		slog.Duration("duration", duration))
	return snapshot, nil
}

// Current returns the latest snapshot, or nil if no refresh has
// succeeded yet.
func (s *DashboardService) Current() *Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot
}

// ErrNoSnapshot is returned by query methods before the first refresh.
var ErrNoSnapshot = fmt.Errorf("no snapshot loaded yet")

func (s *DashboardService) tables() (pipeline.Tables, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.snapshot == nil {
		return pipeline.Tables{}, ErrNoSnapshot
	}
	return s.snapshot.Tables, nil
}

// AvailableWeeks returns the distinct week starts, newest first.
func (s *DashboardService) AvailableWeeks(ctx context.Context) ([]time.Time, error) {
	t, err := s.tables()
	if err != nil {
		return nil, err
	}
	return pipeline.AvailableWeeks(t.Weekly), nil
}

// RiskFlags evaluates the risk rules for the given week.
func (s *DashboardService) RiskFlags(ctx context.Context, week time.Time) ([]pipeline.RiskFlag, error) {
	t, err := s.tables()
	if err != nil {
		return nil, err
	}
	flags := pipeline.ComputeRiskFlags(t.Weekly, week)
	infrastructure.FlaggedCustomers.Set(float64(len(flags)))
	return flags, nil
}

// LaneRisk attributes a week's revenue to lanes per customer.
func (s *DashboardService) LaneRisk(ctx context.Context, week time.Time) ([]pipeline.LaneAggregate, error) {
	t, err := s.tables()
	if err != nil {
		return nil, err
	}
	return pipeline.LaneRiskAttribution(t.Loads, week), nil
}

// WeekKPI summarizes headline numbers for the given week.
func (s *DashboardService) WeekKPI(ctx context.Context, week time.Time) (pipeline.WeekKPI, error) {
	t, err := s.tables()
	if err != nil {
		return pipeline.WeekKPI{}, err
	}
	return pipeline.WeekKPIFor(t.Loads, week), nil
}

// Trends returns the trailing trend series across the last n weeks.
func (s *DashboardService) Trends(ctx context.Context, lastN int) (pipeline.TrendSeries, error) {
	t, err := s.tables()
	if err != nil {
		return pipeline.TrendSeries{}, err
	}
	return pipeline.BuildTrendSeries(t.Weekly, t.Loads, lastN), nil
}

// CargoOwners breaks down a week's load volume by beneficial cargo owner.
func (s *DashboardService) CargoOwners(ctx context.Context, week time.Time) ([]pipeline.CargoOwnerAggregate, error) {
	t, err := s.tables()
	if err != nil {
		return nil, err
	}
	return pipeline.CargoOwnerBreakdown(t.Loads, week), nil
}

// WeeklyAggregates returns the full weekly customer × week table.
func (s *DashboardService) WeeklyAggregates(ctx context.Context) ([]pipeline.PeriodAggregate, error) {
	t, err := s.tables()
	if err != nil {
		return nil, err
	}
	return t.Weekly, nil
}

// MonthlyAggregates returns the monthly table with run-rate projections.
func (s *DashboardService) MonthlyAggregates(ctx context.Context) ([]pipeline.PeriodAggregate, error) {
	t, err := s.tables()
	if err != nil {
		return nil, err
	}
	return t.Monthly, nil
}

// TestConnection probes the upstream TMS.
func (s *DashboardService) TestConnection(ctx context.Context) tms.ConnectionStatus {
	return s.source.TestConnection(ctx)
}
