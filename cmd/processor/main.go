// Command processor runs one full analysis pass over the five source tables:
// load, normalize, join, enrich, score, then write the report files.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"freightcli/internal/analytics"
	"freightcli/internal/config"
	"freightcli/internal/exporter"
	"freightcli/internal/infrastructure"
	"freightcli/internal/loader"
	"freightcli/internal/pipeline"
	"freightcli/internal/services"
)

func main() {
	dataDir := flag.String("data", "", "directory holding the five source tables (defaults to config data dir)")
	outDir := flag.String("out", "", "output directory for report files (defaults to config reports dir)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Warn("Failed to initialize logger, using default", "error", err)
		logger = slog.Default()
	}

	if *dataDir == "" {
		*dataDir = cfg.Data.Dir
	}
	if *outDir == "" {
		*outDir = cfg.Data.ReportsDir
	}

	logger.Info("Starting freight analytics processing",
		slog.String("data_dir", *dataDir),
		slog.String("reports_dir", *outDir))

	ctx := context.Background()

	ld := loader.New(*dataDir, logger)
	builder := pipeline.NewBuilder(cfg.Heuristics, logger)
	engine := analytics.NewEngine(ld, builder, cfg.Heuristics, logger)
	svc := services.NewAnalyticsService(engine, exporter.NewReportExporter(*outDir), logger)

	if err := svc.Reload(ctx); err != nil {
		logger.Error("Processing failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	snap, err := engine.Snapshot()
	if err != nil {
		logger.Error("No snapshot after reload", slog.String("error", err.Error()))
		os.Exit(1)
	}
	fmt.Printf("Built unified dataset: %d orders, %d cost categories\n",
		len(snap.Orders), len(snap.CostCategories))

	scores, err := engine.CarrierScores()
	if err != nil {
		logger.Error("Scoring failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	for _, s := range scores {
		fmt.Printf("  %-20s value score %6.2f (%d orders)\n",
			s.Carrier, s.CarrierValueScore, s.TotalOrders)
	}

	if err := svc.ExportReports(ctx); err != nil {
		logger.Error("Report export failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("Processing complete",
		slog.Int("orders", len(snap.Orders)),
		slog.Int("carriers", len(scores)))
	fmt.Println("All reports written")
}
