package pipeline

import (
	"context"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"freightcli/internal/config"
	"freightcli/internal/dataset"
	"freightcli/internal/errors"
	"freightcli/internal/loader"
)

// Ordered fallback chains for logical fields whose source column varies by
// file. Chains are evaluated top-down; a more specific source is never
// reconstructed from a less specific one.
var (
	revenueChain      = []string{"order_value_inr", "order_value"}
	distanceChain     = []string{"distance_km", "distance"}
	deliveryCostChain = []string{"delivery_cost_inr", "delivery_cost"}
	ratingChain       = []string{"customer_rating", "rating"}
)

// renameRule maps a joined-table column to its canonical app-facing name.
type renameRule struct {
	from, to string
}

// Collision renames for columns the joined tables share with orders. First
// applicable rename wins; a joined column that collides without a rename is
// skipped rather than silently overwriting the orders copy.
var joinRenames = []renameRule{
	{from: "origin", to: "origin_warehouse"},
	{from: "destination", to: "destination_city"},
}

// Date layouts accepted for order_date, most common first.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"01/02/2006",
	"2006/01/02",
}

// Builder turns one set of loaded tables into a Snapshot.
type Builder struct {
	heur   config.HeuristicsConfig
	logger *slog.Logger
}

// NewBuilder creates a builder with the given heuristic constants.
func NewBuilder(heur config.HeuristicsConfig, logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{
		heur:   heur,
		logger: logger.With(slog.String("component", "pipeline")),
	}
}

// Build left-joins delivery, route and cost rows onto each order and
// computes every derived metric. Orders with no matching joined rows are
// retained with their numeric gaps resolved to 0. The orders, delivery,
// routes and costs tables must each carry order_id; the vehicle table has no
// order linkage and only contributes the fleet CO2 factor.
func (b *Builder) Build(ctx context.Context, tables *loader.Tables) (*Snapshot, error) {
	keyed := []struct {
		name  string
		table *dataset.Table
	}{
		{loader.SourceOrders, tables.Orders},
		{loader.SourceDelivery, tables.Delivery},
		{loader.SourceRoutes, tables.Routes},
		{loader.SourceCosts, tables.Costs},
	}
	for _, k := range keyed {
		if !k.table.HasColumn("order_id") {
			return nil, errors.NewSchemaError(k.name, "order_id")
		}
	}

	categories := costCategories(tables.Costs)
	co2Factor := b.fleetCO2Factor(tables.Vehicles)

	deliveryByID := indexByOrder(tables.Delivery)
	routeByID := indexByOrder(tables.Routes)
	costByID := indexByOrder(tables.Costs)

	hasDeliveryStatus := tables.Delivery.HasColumn("delivery_status")

	orders := make([]Order, 0, len(tables.Orders.Rows))
	for _, orderRow := range tables.Orders.Rows {
		id := orderRow.String("order_id")
		if id == "" {
			b.logger.Debug("skipping orders row without order_id")
			continue
		}

		costRow, hasCostRow := costByID[id]
		merged := mergeRows(orderRow, routeByID[id], deliveryByID[id], costRow)

		order := b.buildOrder(id, merged, categories, costRow, hasCostRow, hasDeliveryStatus, co2Factor)
		orders = append(orders, order)
	}

	snap := &Snapshot{
		ID:             uuid.New(),
		GeneratedAt:    time.Now(),
		Orders:         orders,
		CostCategories: categories,
		CategoryTotals: categoryTotals(tables.Costs, categories),
		CO2Factor:      co2Factor,
		VehicleCount:   len(tables.Vehicles.Rows),
		HasActualDays:  tables.Delivery.HasColumn("actual_delivery_days"),
	}

	b.logger.InfoContext(ctx, "unified dataset built",
		slog.String("snapshot_id", snap.ID.String()),
		slog.Int("order_count", len(orders)),
		slog.Int("cost_categories", len(categories)),
		slog.Float64("co2_factor", co2Factor))

	return snap, nil
}

// buildOrder computes the full derived-metric set for one order. Value-level
// gaps resolve locally to 0 and never abort the build.
func (b *Builder) buildOrder(id string, merged dataset.Row, categories []string,
	costRow dataset.Row, hasCostRow, hasDeliveryStatus bool, co2Factor float64) Order {

	o := Order{
		OrderID:         id,
		Carrier:         merged.String("carrier"),
		Priority:        merged.String("priority"),
		OriginWarehouse: merged.String("origin_warehouse"),
		DestinationCity: merged.String("destination_city"),
		DeliveryStatus:  merged.String("delivery_status"),
		QualityIssue:    merged.String("quality_issue"),
		CO2PerKM:        co2Factor,
	}

	if ts, ok := parseDate(merged.String("order_date")); ok {
		o.OrderDate = ts
		o.HasOrderDate = true
		o.Month = ts.Format("2006-01")
	}

	if hasDeliveryStatus {
		if o.DeliveryStatus != "" {
			o.Status = StatusDelivered
		} else {
			o.Status = StatusPending
		}
	} else {
		o.Status = StatusDelivered
	}

	revenue, hasRevenue := merged.FirstFloat(revenueChain...)
	distance, hasDistance := merged.FirstFloat(distanceChain...)
	deliveryCost, hasDeliveryCost := merged.FirstFloat(deliveryCostChain...)

	o.Revenue = revenue
	o.DistanceKM = distance
	o.DeliveryCost = deliveryCost

	// total_cost fallback chain: category sum, then the single
	// delivery-cost column, then 0.
	o.CostBreakdown = make(map[string]float64, len(categories))
	switch {
	case hasCostRow:
		var total float64
		for _, cat := range categories {
			if v, ok := costRow.Float(cat); ok {
				o.CostBreakdown[cat] = v
				total += v
			} else {
				o.CostBreakdown[cat] = 0
			}
		}
		o.TotalCost = total
	case hasDeliveryCost:
		o.TotalCost = deliveryCost
	default:
		o.TotalCost = 0
	}

	o.CO2Emissions = distance * co2Factor

	if hasRevenue {
		o.Profit = revenue - o.TotalCost
		if revenue != 0 {
			o.ProfitMargin = o.Profit / revenue * 100
		}
	}

	if hasDistance && distance != 0 {
		o.CostPerKM = o.TotalCost / distance
	}

	promised, hasPromised := merged.Float("promised_delivery_days")
	actual, hasActual := merged.Float("actual_delivery_days")
	o.PromisedDays = promised
	o.ActualDays = actual

	if hasPromised && hasActual {
		o.DelayDays = math.Max(0, actual-promised)
		if actual > 0 {
			o.OnTimePercentage = math.Min(100, promised/actual*100)
		} else {
			o.OnTimePercentage = 100
		}
	} else {
		o.OnTimePercentage = 100
	}

	if hasDeliveryCost {
		o.DelayCost = o.DelayDays * (b.heur.DelayCostRate*deliveryCost + b.heur.DelayStorageFee)
	} else {
		o.DelayCost = o.DelayDays * b.heur.DelayFallbackPerDay
	}

	if o.QualityIssue != "" && o.QualityIssue != "Perfect" {
		o.DamageCost = b.heur.DamageRevenueFraction * revenue
	}

	o.CostOfInefficiency = o.DelayCost + o.DamageCost

	if v, ok := merged.FirstFloat(ratingChain...); ok {
		o.Rating = v
	}
	if v, ok := merged.Float("traffic_delay_minutes"); ok {
		o.TrafficDelayMinutes = v
	}

	if v, ok := merged.FirstFloat("fuel_cost", "fuel_consumption_l"); ok {
		o.FuelCost = v
	}
	if v, ok := merged.Float("vehicle_maintenance"); ok {
		o.MaintenanceCost = v
	}

	return o
}

// mergeRows assembles the joined view of one order. The orders row claims
// its columns first; joined rows contribute theirs after the collision
// renames, and a joined column whose (possibly renamed) name is already
// claimed is skipped.
func mergeRows(orderRow dataset.Row, joined ...dataset.Row) dataset.Row {
	merged := make(dataset.Row, len(orderRow))
	for k, v := range orderRow {
		merged[k] = v
	}

	for _, row := range joined {
		if row == nil {
			continue
		}
		for k, v := range row {
			name := k
			for _, rule := range joinRenames {
				if rule.from == k {
					name = rule.to
					break
				}
			}
			if _, claimed := merged[name]; claimed {
				continue
			}
			merged[name] = v
		}
	}
	return merged
}

// indexByOrder indexes a table's rows by order_id; the first row per id wins.
func indexByOrder(t *dataset.Table) map[string]dataset.Row {
	index := make(map[string]dataset.Row, len(t.Rows))
	for _, row := range t.Rows {
		id := row.String("order_id")
		if id == "" {
			continue
		}
		if _, exists := index[id]; !exists {
			index[id] = row
		}
	}
	return index
}

// costCategories returns the cost table's category columns in file order.
func costCategories(costs *dataset.Table) []string {
	categories := make([]string, 0, len(costs.Columns))
	for _, col := range costs.Columns {
		if col == "order_id" || col == "total_cost" {
			continue
		}
		categories = append(categories, col)
	}
	return categories
}

// categoryTotals sums each category across every cost record.
func categoryTotals(costs *dataset.Table, categories []string) map[string]float64 {
	totals := make(map[string]float64, len(categories))
	for _, cat := range categories {
		totals[cat] = 0
	}
	for _, row := range costs.Rows {
		for _, cat := range categories {
			if v, ok := row.Float(cat); ok {
				totals[cat] += v
			}
		}
	}
	return totals
}

// fleetCO2Factor averages per-vehicle CO2-per-km across the whole fleet.
// One uniform factor applies to every order regardless of which vehicle
// carried it; a per-order vehicle join would change all downstream CO2 and
// financial figures and is deliberately not done here.
func (b *Builder) fleetCO2Factor(vehicles *dataset.Table) float64 {
	if mean, ok := columnMean(vehicles, "co2_emissions_kg_per_km"); ok {
		return mean
	}

	// No canonical column: average every co2-related column's mean.
	var sum float64
	var count int
	for _, col := range vehicles.Columns {
		if !strings.Contains(col, "co2") {
			continue
		}
		if mean, ok := columnMean(vehicles, col); ok {
			sum += mean
			count++
		}
	}
	if count > 0 {
		return sum / float64(count)
	}

	b.logger.Warn("vehicle fleet has no usable co2 data, using default factor",
		slog.Float64("default", b.heur.DefaultCO2PerKM))
	return b.heur.DefaultCO2PerKM
}

// columnMean averages the parseable values of one column.
func columnMean(t *dataset.Table, col string) (float64, bool) {
	if !t.HasColumn(col) {
		return 0, false
	}
	var sum float64
	var count int
	for _, row := range t.Rows {
		if v, ok := row.Float(col); ok {
			sum += v
			count++
		}
	}
	if count == 0 {
		return 0, false
	}
	return sum / float64(count), true
}

// parseDate tries the accepted order_date layouts; unparseable dates are
// treated as missing, never as errors.
func parseDate(raw string) (time.Time, bool) {
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}
