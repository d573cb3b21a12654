package http

import (
	"context"

	"freightcli/internal/analytics"
	"freightcli/internal/pipeline"
	"freightcli/internal/scoring"
)

// AnalyticsServiceInterface defines the service contract the analytics
// handler depends on. Kept as an interface so handler tests can substitute
// a mock.
type AnalyticsServiceInterface interface {
	Reload(ctx context.Context) error
	Loaded() bool

	KeyMetrics(ctx context.Context) (*analytics.KeyMetrics, error)
	CostByCategory(ctx context.Context) ([]analytics.CategoryCost, error)
	RevenueCostTrend(ctx context.Context) ([]analytics.MonthlyTrend, error)
	CarrierPerformance(ctx context.Context) ([]analytics.CarrierPerformance, error)

	Orders(ctx context.Context, f analytics.Filter) ([]pipeline.Order, error)
	CostLeakage(ctx context.Context, f analytics.Filter) (*analytics.LeakageSummary, error)
	RouteCostAnalysis(ctx context.Context, f analytics.Filter) ([]analytics.RouteCost, error)
	CostWaterfall(ctx context.Context, f analytics.Filter) ([]analytics.WaterfallStep, error)
	CostSpeedAnalysis(ctx context.Context, f analytics.Filter) ([]analytics.CostSpeedPoint, error)

	SustainabilityMetrics(ctx context.Context, scenario string) (*analytics.SustainabilityMetrics, error)
	GreenLogisticsBenefit(ctx context.Context) (*analytics.GreenBenefit, error)

	CarrierScores(ctx context.Context) ([]scoring.CarrierScore, error)
	Recommendations(ctx context.Context) ([]scoring.Recommendation, error)

	UniqueWarehouses(ctx context.Context) ([]string, error)
	UniqueCarriers(ctx context.Context) ([]string, error)

	ExportReports(ctx context.Context) error
}
