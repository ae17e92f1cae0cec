package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"freightpulse/internal/config"
	"freightpulse/internal/exporter"
	"freightpulse/internal/infrastructure"
	"freightpulse/internal/services"
	"freightpulse/internal/tms"
)

// loadreport pulls a full snapshot from the TMS and writes the weekly
// xlsx report plus a CSV extract, without starting the dashboard server.
func main() {
	configFile := flag.String("config", "", "path to YAML config file (optional, env vars win)")
	outputDir := flag.String("out", "", "output directory for reports (defaults to configured reports dir)")
	weekFlag := flag.String("week", "", "week start date YYYY-MM-DD (defaults to latest week)")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := infrastructure.InitLogger(cfg.Logging)
	slog.SetDefault(logger)

	creds, err := config.LoadCredentials(cfg.TMS.CredentialsFile)
	if err != nil {
		logger.Error("failed to load credentials", "error", err)
		os.Exit(1)
	}
	if !creds.IsConfigured() {
		logger.Error("no TMS access token configured",
			"credentials_file", cfg.TMS.CredentialsFile,
			"env_var", config.EnvAccessToken)
		os.Exit(1)
	}

	client := tms.NewClient(cfg.TMS, creds, logger,
		tms.WithPersist(func(c config.Credentials) {
			config.SaveCredentials(cfg.TMS.CredentialsFile, c, logger)
		}))

	if *outputDir == "" {
		*outputDir = cfg.Export.ReportsDir
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Minute)
	defer cancel()

	dashboard := services.NewDashboardService(client, logger)
	snapshot, err := dashboard.Refresh(ctx)
	if err != nil {
		logger.Error("snapshot refresh failed", "error", err)
		os.Exit(1)
	}
	if snapshot.LoadCount == 0 {
		logger.Error("no delivered loads in snapshot, nothing to report")
		os.Exit(1)
	}

	var week time.Time
	if *weekFlag != "" {
		week, err = time.Parse("2006-01-02", *weekFlag)
		if err != nil {
			logger.Error("invalid week flag", "week", *weekFlag, "error", err)
			os.Exit(1)
		}
	} else {
		weeks, err := dashboard.AvailableWeeks(ctx)
		if err != nil || len(weeks) == 0 {
			logger.Error("no weeks available in snapshot")
			os.Exit(1)
		}
		week = weeks[0]
	}

	writer := exporter.NewReportWriter(*outputDir, logger)
	path, err := writer.ExportWeeklyReport(snapshot, week)
	if err != nil {
		logger.Error("report export failed", "error", err)
		os.Exit(1)
	}

	csvWriter := exporter.NewCSVWriter(*outputDir)
	csvPath, err := csvWriter.ExportWeeklyCSV("weekly_aggregates.csv", snapshot.Tables.Weekly)
	if err != nil {
		logger.Error("csv export failed", "error", err)
		os.Exit(1)
	}

	logger.Info("reports written",
		"xlsx", path,
		"csv", csvPath,
		"week", week.Format("2006-01-02"),
		"loads", snapshot.LoadCount)
}
