package exporter

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"freightpulse/internal/pipeline"
)

// CSVWriter exports derived tables as CSV files under the reports
// directory.
type CSVWriter struct {
	reportsDir string
}

// NewCSVWriter creates a CSV writer rooted at reportsDir.
func NewCSVWriter(reportsDir string) *CSVWriter {
	return &CSVWriter{reportsDir: reportsDir}
}

// WriteCSV writes headers and records to the named file, prefixed with
// a UTF-8 BOM so Excel opens it correctly.
func (w *CSVWriter) WriteCSV(filename string, headers []string, records [][]string) (string, error) {
	fullPath := filepath.Join(w.reportsDir, filename)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return "", fmt.Errorf("create reports directory: %w", err)
	}

	file, err := os.Create(fullPath)
	if err != nil {
		return "", fmt.Errorf("create csv file: %w", err)
	}
	defer file.Close()

	if _, err := file.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
		return "", fmt.Errorf("write BOM: %w", err)
	}

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write(headers); err != nil {
		return "", fmt.Errorf("write headers: %w", err)
	}
	for i, record := range records {
		if err := writer.Write(record); err != nil {
			return "", fmt.Errorf("write record %d: %w", i, err)
		}
	}
	if err := writer.Error(); err != nil {
		return "", err
	}
	return fullPath, nil
}

// ExportWeeklyCSV writes the weekly customer aggregate table.
func (w *CSVWriter) ExportWeeklyCSV(filename string, weekly []pipeline.PeriodAggregate) (string, error) {
	headers := []string{
		"week_start", "customer", "loads", "revenue", "avg_revenue",
		"otd_rate", "change_label", "volume_trend", "service_risk",
	}
	records := make([][]string, 0, len(weekly))
	for _, row := range weekly {
		records = append(records, []string{
			row.Period.Format("2006-01-02"),
			row.CustomerName,
			strconv.Itoa(row.Loads),
			formatMoney(row.Revenue),
			formatMoney(row.AvgRevenue),
			formatRatio(row.OTD),
			row.ChangeLabel,
			row.VolumeTrend,
			row.ServiceRisk,
		})
	}
	return w.WriteCSV(filename, headers, records)
}

func formatMoney(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func formatRatio(r pipeline.Ratio) string {
	if !r.Valid {
		return ""
	}
	return strconv.FormatFloat(r.Value, 'f', 3, 64)
}
