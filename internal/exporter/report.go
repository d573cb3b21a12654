package exporter

import (
	"fmt"

	"freightcli/internal/analytics"
	"freightcli/internal/pipeline"
	"freightcli/internal/scoring"
)

// ReportExporter generates the analysis report files.
type ReportExporter struct {
	csvWriter *CSVWriter
}

// NewReportExporter creates an exporter rooted at reportsDir.
func NewReportExporter(reportsDir string) *ReportExporter {
	return &ReportExporter{
		csvWriter: NewCSVWriter(reportsDir),
	}
}

// ExportUnifiedDataset writes one row per order with every derived metric.
// Per-category amounts get one column each, in the cost table's category
// order.
func (r *ReportExporter) ExportUnifiedDataset(snap *pipeline.Snapshot, filePath string) error {
	headers := []string{
		"order_id", "order_date", "month", "carrier", "priority",
		"origin_warehouse", "destination_city", "status",
		"revenue", "total_cost", "profit", "profit_margin",
		"distance_km", "cost_per_km", "co2_emissions",
		"promised_delivery_days", "actual_delivery_days", "delay_days",
		"delay_cost", "damage_cost", "cost_of_inefficiency",
		"on_time_percentage", "rating",
	}
	headers = append(headers, snap.CostCategories...)

	records := make([][]string, 0, len(snap.Orders))
	for i := range snap.Orders {
		records = append(records, r.orderToCSVRow(&snap.Orders[i], snap.CostCategories))
	}

	if err := r.csvWriter.WriteSimpleCSV(filePath, headers, records); err != nil {
		return fmt.Errorf("failed to write unified dataset: %w", err)
	}
	return nil
}

func (r *ReportExporter) orderToCSVRow(o *pipeline.Order, categories []string) []string {
	date := ""
	if o.HasOrderDate {
		date = o.OrderDate.Format("2006-01-02")
	}
	row := []string{
		o.OrderID, date, o.Month, o.Carrier, o.Priority,
		o.OriginWarehouse, o.DestinationCity, o.Status,
		formatFloat(o.Revenue), formatFloat(o.TotalCost),
		formatFloat(o.Profit), formatFloat(o.ProfitMargin),
		formatFloat(o.DistanceKM), formatFloat(o.CostPerKM),
		formatFloat(o.CO2Emissions),
		formatFloat(o.PromisedDays), formatFloat(o.ActualDays),
		formatFloat(o.DelayDays),
		formatFloat(o.DelayCost), formatFloat(o.DamageCost),
		formatFloat(o.CostOfInefficiency),
		formatFloat(o.OnTimePercentage), formatFloat(o.Rating),
	}
	for _, cat := range categories {
		row = append(row, formatFloat(o.CostBreakdown[cat]))
	}
	return row
}

// ExportScorecard writes the carrier scorecard, best carrier first.
func (r *ReportExporter) ExportScorecard(scores []scoring.CarrierScore, filePath string) error {
	headers := []string{
		"carrier", "avg_cost", "on_time_percentage", "avg_rating",
		"co2_per_order", "total_orders",
		"cost_score", "delivery_score", "satisfaction_score",
		"sustainability_score", "carrier_value_score",
	}

	records := make([][]string, 0, len(scores))
	for _, s := range scores {
		records = append(records, []string{
			s.Carrier,
			formatFloat(s.AvgCost),
			formatFloat(s.OnTimePercentage),
			formatFloat(s.AvgRating),
			formatFloat(s.CO2PerOrder),
			formatInt(s.TotalOrders),
			formatFloat(s.CostScore),
			formatFloat(s.DeliveryScore),
			formatFloat(s.SatisfactionScore),
			formatFloat(s.SustainabilityScore),
			formatFloat(s.CarrierValueScore),
		})
	}

	if err := r.csvWriter.WriteSimpleCSV(filePath, headers, records); err != nil {
		return fmt.Errorf("failed to write scorecard: %w", err)
	}
	return nil
}

// ExportRecommendations writes the shift recommendations as JSON.
func (r *ReportExporter) ExportRecommendations(recs []scoring.Recommendation, filePath string) error {
	if err := r.csvWriter.WriteJSON(filePath, recs); err != nil {
		return fmt.Errorf("failed to write recommendations: %w", err)
	}
	return nil
}

// ExportKeyMetrics writes the headline summary as JSON.
func (r *ReportExporter) ExportKeyMetrics(m *analytics.KeyMetrics, filePath string) error {
	if err := r.csvWriter.WriteJSON(filePath, m); err != nil {
		return fmt.Errorf("failed to write key metrics: %w", err)
	}
	return nil
}
