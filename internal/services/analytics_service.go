package services

import (
	"context"
	"log/slog"
	"time"

	"freightcli/internal/analytics"
	"freightcli/internal/exporter"
	"freightcli/internal/observability"
	"freightcli/internal/pipeline"
	"freightcli/internal/scoring"
)

// Sustainability scenarios accepted over the API.
var validScenarios = map[string]bool{
	analytics.ScenarioCurrent:   true,
	analytics.ScenarioOptimized: true,
}

// AnalyticsService exposes every aggregation, scoring and export operation
// to the transport layer.
type AnalyticsService struct {
	engine   *analytics.Engine
	exporter *exporter.ReportExporter
	logger   *slog.Logger
}

// NewAnalyticsService creates a service over the given engine and exporter.
func NewAnalyticsService(engine *analytics.Engine, exp *exporter.ReportExporter, logger *slog.Logger) *AnalyticsService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AnalyticsService{
		engine:   engine,
		exporter: exp,
		logger:   logger.With(slog.String("service", "analytics")),
	}
}

// Reload rebuilds the unified dataset from the source tables.
func (s *AnalyticsService) Reload(ctx context.Context) error {
	start := time.Now()
	if err := s.engine.Reload(ctx); err != nil {
		observability.ReloadsTotal.WithLabelValues("failed").Inc()
		s.logger.ErrorContext(ctx, "dataset reload failed", slog.String("error", err.Error()))
		return err
	}
	observability.ReloadsTotal.WithLabelValues("success").Inc()
	observability.ReloadDuration.Observe(time.Since(start).Seconds())
	if snap, err := s.engine.Snapshot(); err == nil {
		observability.SnapshotOrders.Set(float64(len(snap.Orders)))
	}
	s.logger.InfoContext(ctx, "dataset reloaded",
		slog.Duration("duration", time.Since(start)))
	return nil
}

// Loaded reports whether a dataset is available to query.
func (s *AnalyticsService) Loaded() bool {
	return s.engine.Loaded()
}

// KeyMetrics returns the headline delivered-order summary.
func (s *AnalyticsService) KeyMetrics(ctx context.Context) (*analytics.KeyMetrics, error) {
	return s.engine.KeyMetrics()
}

// CostByCategory returns per-category totals over every cost record.
func (s *AnalyticsService) CostByCategory(ctx context.Context) ([]analytics.CategoryCost, error) {
	return s.engine.CostByCategory()
}

// RevenueCostTrend returns monthly delivered revenue and cost.
func (s *AnalyticsService) RevenueCostTrend(ctx context.Context) ([]analytics.MonthlyTrend, error) {
	return s.engine.RevenueCostTrend()
}

// CarrierPerformance returns per-carrier delivered-order aggregates.
func (s *AnalyticsService) CarrierPerformance(ctx context.Context) ([]analytics.CarrierPerformance, error) {
	return s.engine.CarrierPerformance()
}

// Orders returns the orders matching the filter.
func (s *AnalyticsService) Orders(ctx context.Context, f analytics.Filter) ([]pipeline.Order, error) {
	return s.engine.Filtered(f)
}

// CostLeakage decomposes avoidable cost for the filtered order set.
func (s *AnalyticsService) CostLeakage(ctx context.Context, f analytics.Filter) (*analytics.LeakageSummary, error) {
	return s.engine.CostLeakage(f)
}

// RouteCostAnalysis aggregates filtered delivered orders per route.
func (s *AnalyticsService) RouteCostAnalysis(ctx context.Context, f analytics.Filter) ([]analytics.RouteCost, error) {
	return s.engine.RouteCostAnalysis(f)
}

// CostWaterfall returns per-category mean cost steps plus the total.
func (s *AnalyticsService) CostWaterfall(ctx context.Context, f analytics.Filter) ([]analytics.WaterfallStep, error) {
	return s.engine.CostWaterfall(f)
}

// CostSpeedAnalysis returns the cost-vs-speed scatter points.
func (s *AnalyticsService) CostSpeedAnalysis(ctx context.Context, f analytics.Filter) ([]analytics.CostSpeedPoint, error) {
	return s.engine.CostSpeedAnalysis(f)
}

// SustainabilityMetrics summarizes delivered emissions for a scenario.
func (s *AnalyticsService) SustainabilityMetrics(ctx context.Context, scenario string) (*analytics.SustainabilityMetrics, error) {
	if scenario == "" {
		scenario = analytics.ScenarioCurrent
	}
	if !validScenarios[scenario] {
		return nil, ErrInvalidScenario
	}
	return s.engine.SustainabilityMetrics(scenario)
}

// GreenLogisticsBenefit returns the EV adoption benefit model.
func (s *AnalyticsService) GreenLogisticsBenefit(ctx context.Context) (*analytics.GreenBenefit, error) {
	return s.engine.GreenLogisticsBenefit()
}

// CarrierScores returns the weighted carrier scorecard, best first.
func (s *AnalyticsService) CarrierScores(ctx context.Context) ([]scoring.CarrierScore, error) {
	return s.engine.CarrierScores()
}

// Recommendations returns the carrier-shift recommendations.
func (s *AnalyticsService) Recommendations(ctx context.Context) ([]scoring.Recommendation, error) {
	return s.engine.Recommendations()
}

// UniqueWarehouses lists distinct origin warehouses for filter pickers.
func (s *AnalyticsService) UniqueWarehouses(ctx context.Context) ([]string, error) {
	return s.engine.UniqueWarehouses()
}

// UniqueCarriers lists distinct carriers for filter pickers.
func (s *AnalyticsService) UniqueCarriers(ctx context.Context) ([]string, error) {
	return s.engine.UniqueCarriers()
}

// ExportReports writes the full report set: the unified dataset and carrier
// scorecard as CSV, recommendations and key metrics as JSON.
func (s *AnalyticsService) ExportReports(ctx context.Context) (err error) {
	defer func() {
		status := "success"
		if err != nil {
			status = "failed"
		}
		observability.ExportsTotal.WithLabelValues(status).Inc()
	}()

	snap, err := s.engine.Snapshot()
	if err != nil {
		return err
	}
	scores, err := s.engine.CarrierScores()
	if err != nil {
		return err
	}
	recs, err := s.engine.Recommendations()
	if err != nil {
		return err
	}
	metrics, err := s.engine.KeyMetrics()
	if err != nil {
		return err
	}

	if err := s.exporter.ExportUnifiedDataset(snap, "unified_dataset.csv"); err != nil {
		return err
	}
	if err := s.exporter.ExportScorecard(scores, "carrier_scorecard.csv"); err != nil {
		return err
	}
	if err := s.exporter.ExportRecommendations(recs, "recommendations.json"); err != nil {
		return err
	}
	if err := s.exporter.ExportKeyMetrics(metrics, "key_metrics.json"); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "reports exported",
		slog.Int("orders", len(snap.Orders)),
		slog.Int("carriers", len(scores)))
	return nil
}
