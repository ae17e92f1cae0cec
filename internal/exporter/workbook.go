package exporter

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/xuri/excelize/v2"

	"freightpulse/internal/pipeline"
	"freightpulse/internal/services"
)

// ReportWriter renders the weekly operations report as an xlsx workbook
// with one sheet per table.
type ReportWriter struct {
	reportsDir string
	logger     *slog.Logger
}

// NewReportWriter creates a report writer rooted at reportsDir.
func NewReportWriter(reportsDir string, logger *slog.Logger) *ReportWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReportWriter{reportsDir: reportsDir, logger: logger}
}

const (
	sheetPerformance = "Customer Performance"
	sheetRiskFlags   = "Risk Flags"
	sheetLanes       = "Lane Attribution"
)

// ExportWeeklyReport writes the report for the given week from the
// snapshot's tables and returns the file path.
func (w *ReportWriter) ExportWeeklyReport(snapshot *services.Snapshot, week time.Time) (string, error) {
	if snapshot == nil {
		return "", fmt.Errorf("export weekly report: nil snapshot")
	}
	if err := os.MkdirAll(w.reportsDir, 0755); err != nil {
		return "", fmt.Errorf("create reports directory: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := w.writePerformanceSheet(f, snapshot, week); err != nil {
		return "", err
	}
	if err := w.writeRiskSheet(f, snapshot, week); err != nil {
		return "", err
	}
	if err := w.writeLaneSheet(f, snapshot, week); err != nil {
		return "", err
	}

	// The default sheet was renamed to the performance sheet; make it
	// the active one.
	idx, err := f.GetSheetIndex(sheetPerformance)
	if err != nil {
		return "", fmt.Errorf("get sheet index: %w", err)
	}
	f.SetActiveSheet(idx)

	path := filepath.Join(w.reportsDir, fmt.Sprintf("weekly_report_%s.xlsx", week.Format("2006-01-02")))
	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("save workbook: %w", err)
	}

	w.logger.Info("weekly report exported",
		slog.String("path", path),
		slog.String("week", week.Format("2006-01-02")))
	return path, nil
}

func (w *ReportWriter) writePerformanceSheet(f *excelize.File, snapshot *services.Snapshot, week time.Time) error {
	if err := f.SetSheetName("Sheet1", sheetPerformance); err != nil {
		return fmt.Errorf("rename performance sheet: %w", err)
	}

	headers := []interface{}{
		"Customer", "Loads", "Revenue", "Avg Revenue", "OTD %",
		"WoW Change", "Volume Trend", "Service Risk",
	}
	if err := f.SetSheetRow(sheetPerformance, "A1", &headers); err != nil {
		return fmt.Errorf("write performance headers: %w", err)
	}

	rowIdx := 2
	for _, row := range snapshot.Tables.Weekly {
		if !row.Period.Equal(week) {
			continue
		}
		cells := []interface{}{
			row.CustomerName,
			row.Loads,
			row.Revenue,
			row.AvgRevenue,
			ratioCell(row.OTD),
			row.ChangeLabel,
			row.VolumeTrend,
			row.ServiceRisk,
		}
		if err := f.SetSheetRow(sheetPerformance, fmt.Sprintf("A%d", rowIdx), &cells); err != nil {
			return fmt.Errorf("write performance row %d: %w", rowIdx, err)
		}
		rowIdx++
	}
	return nil
}

func (w *ReportWriter) writeRiskSheet(f *excelize.File, snapshot *services.Snapshot, week time.Time) error {
	if _, err := f.NewSheet(sheetRiskFlags); err != nil {
		return fmt.Errorf("create risk sheet: %w", err)
	}

	headers := []interface{}{
		"Customer", "Weekly Revenue", "Weekly Loads", "WoW Change %", "OTD %", "Flags",
	}
	if err := f.SetSheetRow(sheetRiskFlags, "A1", &headers); err != nil {
		return fmt.Errorf("write risk headers: %w", err)
	}

	flags := pipeline.ComputeRiskFlags(snapshot.Tables.Weekly, week)
	for i, flag := range flags {
		otd := interface{}(nil)
		if flag.OTDPct != nil {
			otd = *flag.OTDPct
		}
		cells := []interface{}{
			flag.CustomerName,
			flag.WeeklyRevenue,
			flag.WeeklyLoads,
			flag.WoWChangePct,
			otd,
			flag.Label,
		}
		if err := f.SetSheetRow(sheetRiskFlags, fmt.Sprintf("A%d", i+2), &cells); err != nil {
			return fmt.Errorf("write risk row %d: %w", i+2, err)
		}
	}
	return nil
}

func (w *ReportWriter) writeLaneSheet(f *excelize.File, snapshot *services.Snapshot, week time.Time) error {
	if _, err := f.NewSheet(sheetLanes); err != nil {
		return fmt.Errorf("create lane sheet: %w", err)
	}

	headers := []interface{}{"Customer", "Lane", "Volume", "Revenue", "OTD %"}
	if err := f.SetSheetRow(sheetLanes, "A1", &headers); err != nil {
		return fmt.Errorf("write lane headers: %w", err)
	}

	lanes := pipeline.LaneRiskAttribution(snapshot.Tables.Loads, week)
	for i, lane := range lanes {
		cells := []interface{}{
			lane.CustomerName,
			lane.Lane,
			lane.Volume,
			lane.Revenue,
			lane.OTDPct,
		}
		if err := f.SetSheetRow(sheetLanes, fmt.Sprintf("A%d", i+2), &cells); err != nil {
			return fmt.Errorf("write lane row %d: %w", i+2, err)
		}
	}
	return nil
}

func ratioCell(r pipeline.Ratio) interface{} {
	if !r.Valid {
		return nil
	}
	return r.Value
}
