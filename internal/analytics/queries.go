package analytics

import (
	"math"
	"sort"

	"freightcli/internal/pipeline"
)

// Waterfall measure kinds, matching the chart contract.
const (
	MeasureRelative = "relative"
	MeasureTotal    = "total"
)

// Sustainability scenarios.
const (
	ScenarioCurrent   = "current"
	ScenarioOptimized = "optimized"
)

// KeyMetrics is the headline summary of the delivered order set. The change
// fields need a prior reporting period to compare against and stay 0 until
// period-over-period history is ingested.
type KeyMetrics struct {
	TotalRevenue     float64 `json:"total_revenue"`
	RevenueGrowth    float64 `json:"revenue_growth"`
	CostLeakage      float64 `json:"cost_leakage"`
	LeakageReduction float64 `json:"leakage_reduction"`
	ProfitMargin     float64 `json:"profit_margin"`
	MarginChange     float64 `json:"margin_change"`
	CO2PerOrder      float64 `json:"co2_per_order"`
	CO2Reduction     float64 `json:"co2_reduction"`
}

// CategoryCost is one cost category's total across every cost record.
type CategoryCost struct {
	Category string  `json:"cost_category"`
	Amount   float64 `json:"cost_amount"`
}

// MonthlyTrend is one calendar month's delivered revenue and cost.
type MonthlyTrend struct {
	Month   string  `json:"month"`
	Revenue float64 `json:"revenue"`
	Cost    float64 `json:"cost"`
}

// CarrierPerformance is one carrier's delivered-order aggregates.
type CarrierPerformance struct {
	Carrier          string  `json:"carrier"`
	AvgCost          float64 `json:"avg_cost"`
	OnTimePercentage float64 `json:"on_time_percentage"`
	TotalOrders      int     `json:"total_orders"`
	AvgRating        float64 `json:"avg_rating"`
}

// LeakageSummary decomposes avoidable cost for a filtered order set.
type LeakageSummary struct {
	DelayCosts         float64 `json:"delay_costs"`
	DamageCosts        float64 `json:"damage_costs"`
	CarrierOvercharges float64 `json:"carrier_overcharges"`
}

// RouteCost aggregates delivered orders sharing an origin/destination pair.
type RouteCost struct {
	OriginWarehouse string  `json:"origin_warehouse"`
	DestinationCity string  `json:"destination_city"`
	AvgCostPerKM    float64 `json:"avg_cost_per_km"`
	AvgTotalCost    float64 `json:"avg_total_cost"`
	OrderCount      int     `json:"order_count"`
}

// WaterfallStep is one bar of the cost waterfall: the per-order mean of a
// category, or the closing total.
type WaterfallStep struct {
	Category string  `json:"category"`
	Amount   float64 `json:"amount"`
	Measure  string  `json:"measure"`
}

// CostSpeedPoint is one delivered order in the cost-vs-speed scatter.
type CostSpeedPoint struct {
	OrderID        string  `json:"order_id"`
	DeliveryHours  float64 `json:"delivery_hours"`
	TotalCost      float64 `json:"total_cost"`
	DeliveryStatus string  `json:"delivery_status"`
	Rating         float64 `json:"rating"`
	Carrier        string  `json:"carrier"`
}

// SustainabilityMetrics summarizes delivered-order emissions under a
// scenario.
type SustainabilityMetrics struct {
	TotalCO2     float64 `json:"total_co2"`
	CO2PerOrder  float64 `json:"co2_per_order"`
	ReductionPct float64 `json:"reduction_pct"`
}

// GreenBenefit models partial electric-vehicle adoption across the fleet.
type GreenBenefit struct {
	CostSavings   float64 `json:"cost_savings"`
	CO2Reduction  float64 `json:"co2_reduction"`
	ReductionPct  float64 `json:"reduction_pct"`
	ROI           float64 `json:"roi"`
	PaybackMonths int     `json:"payback_months"`
}

// KeyMetrics computes the headline summary over delivered orders.
func (e *Engine) KeyMetrics() (*KeyMetrics, error) {
	snap, _, err := e.current()
	if err != nil {
		return nil, err
	}

	var revenue, cost, leakage, co2 float64
	var delivered int
	for _, o := range snap.Orders {
		if !o.Delivered() {
			continue
		}
		revenue += o.Revenue
		cost += o.TotalCost
		leakage += o.CostOfInefficiency
		co2 += o.CO2Emissions
		delivered++
	}

	m := &KeyMetrics{
		TotalRevenue: revenue,
		CostLeakage:  leakage,
	}
	if revenue != 0 {
		m.ProfitMargin = (revenue - cost) / revenue * 100
	}
	if delivered > 0 {
		m.CO2PerOrder = co2 / float64(delivered)
	}
	return m, nil
}

// CostByCategory totals each category over every cost record, matched to an
// order or not, in the cost table's column order.
func (e *Engine) CostByCategory() ([]CategoryCost, error) {
	snap, cache, err := e.current()
	if err != nil {
		return nil, err
	}

	cache.mu.Lock()
	defer cache.mu.Unlock()
	if cache.categories == nil {
		out := make([]CategoryCost, 0, len(snap.CostCategories))
		for _, cat := range snap.CostCategories {
			out = append(out, CategoryCost{Category: cat, Amount: snap.CategoryTotals[cat]})
		}
		cache.categories = out
	}
	return cache.categories, nil
}

// RevenueCostTrend sums delivered revenue and cost per calendar month,
// chronologically. Orders without a parseable date carry no month and are
// excluded.
func (e *Engine) RevenueCostTrend() ([]MonthlyTrend, error) {
	snap, cache, err := e.current()
	if err != nil {
		return nil, err
	}

	cache.mu.Lock()
	defer cache.mu.Unlock()
	if cache.trend != nil {
		return cache.trend, nil
	}

	byMonth := make(map[string]*MonthlyTrend)
	for _, o := range snap.Orders {
		if !o.Delivered() || o.Month == "" {
			continue
		}
		t, ok := byMonth[o.Month]
		if !ok {
			t = &MonthlyTrend{Month: o.Month}
			byMonth[o.Month] = t
		}
		t.Revenue += o.Revenue
		t.Cost += o.TotalCost
	}

	out := make([]MonthlyTrend, 0, len(byMonth))
	for _, t := range byMonth {
		out = append(out, *t)
	}
	// Month keys are zero-padded year-month, so lexical order is
	// chronological.
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	cache.trend = out
	return out, nil
}

// CarrierPerformance aggregates delivered orders per carrier, sorted by
// carrier name.
func (e *Engine) CarrierPerformance() ([]CarrierPerformance, error) {
	snap, cache, err := e.current()
	if err != nil {
		return nil, err
	}

	cache.mu.Lock()
	defer cache.mu.Unlock()
	if cache.carrierPerf != nil {
		return cache.carrierPerf, nil
	}

	type agg struct {
		cost, onTime, rating float64
		count                int
	}
	byCarrier := make(map[string]*agg)
	for _, o := range snap.Orders {
		if !o.Delivered() {
			continue
		}
		a, ok := byCarrier[o.Carrier]
		if !ok {
			a = &agg{}
			byCarrier[o.Carrier] = a
		}
		a.cost += o.TotalCost
		a.onTime += o.OnTimePercentage
		a.rating += o.Rating
		a.count++
	}

	out := make([]CarrierPerformance, 0, len(byCarrier))
	for carrier, a := range byCarrier {
		n := float64(a.count)
		out = append(out, CarrierPerformance{
			Carrier:          carrier,
			AvgCost:          a.cost / n,
			OnTimePercentage: a.onTime / n,
			TotalOrders:      a.count,
			AvgRating:        a.rating / n,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Carrier < out[j].Carrier })
	cache.carrierPerf = out
	return out, nil
}

// Filtered returns the orders matching the filter, every status included.
func (e *Engine) Filtered(f Filter) ([]pipeline.Order, error) {
	snap, _, err := e.current()
	if err != nil {
		return nil, err
	}
	return f.Apply(snap.Orders), nil
}

// CostLeakage decomposes avoidable cost for the filtered order set. The
// overcharge baseline is the cheapest per-carrier mean cost-per-km within
// the same filtered set, so the figure is always relative to the slice being
// inspected; each order's overcharge is clamped at zero so cheap carriers
// cannot offset expensive ones.
func (e *Engine) CostLeakage(f Filter) (*LeakageSummary, error) {
	orders, err := e.Filtered(f)
	if err != nil {
		return nil, err
	}

	s := &LeakageSummary{}
	type agg struct {
		sum   float64
		count int
	}
	byCarrier := make(map[string]*agg)
	for _, o := range orders {
		s.DelayCosts += o.DelayCost
		s.DamageCosts += o.DamageCost
		a, ok := byCarrier[o.Carrier]
		if !ok {
			a = &agg{}
			byCarrier[o.Carrier] = a
		}
		a.sum += o.CostPerKM
		a.count++
	}
	if len(byCarrier) == 0 {
		return s, nil
	}

	minCost := math.Inf(1)
	for _, a := range byCarrier {
		if mean := a.sum / float64(a.count); mean < minCost {
			minCost = mean
		}
	}
	for _, o := range orders {
		s.CarrierOvercharges += math.Max(0, o.CostPerKM-minCost) * o.DistanceKM
	}
	return s, nil
}

// RouteCostAnalysis aggregates the filtered delivered orders per
// origin/destination pair, sorted by origin then destination.
func (e *Engine) RouteCostAnalysis(f Filter) ([]RouteCost, error) {
	orders, err := e.Filtered(f)
	if err != nil {
		return nil, err
	}

	type key struct{ origin, dest string }
	type agg struct {
		costPerKM, totalCost float64
		count                int
	}
	byRoute := make(map[key]*agg)
	for _, o := range orders {
		if !o.Delivered() {
			continue
		}
		k := key{o.OriginWarehouse, o.DestinationCity}
		a, ok := byRoute[k]
		if !ok {
			a = &agg{}
			byRoute[k] = a
		}
		a.costPerKM += o.CostPerKM
		a.totalCost += o.TotalCost
		a.count++
	}

	out := make([]RouteCost, 0, len(byRoute))
	for k, a := range byRoute {
		n := float64(a.count)
		out = append(out, RouteCost{
			OriginWarehouse: k.origin,
			DestinationCity: k.dest,
			AvgCostPerKM:    a.costPerKM / n,
			AvgTotalCost:    a.totalCost / n,
			OrderCount:      a.count,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].OriginWarehouse != out[j].OriginWarehouse {
			return out[i].OriginWarehouse < out[j].OriginWarehouse
		}
		return out[i].DestinationCity < out[j].DestinationCity
	})
	return out, nil
}

// CostWaterfall averages each cost category over the filtered delivered
// orders, in category order, and closes with a total step.
func (e *Engine) CostWaterfall(f Filter) ([]WaterfallStep, error) {
	snap, _, err := e.current()
	if err != nil {
		return nil, err
	}
	orders := f.Apply(snap.Orders)

	var delivered int
	sums := make(map[string]float64, len(snap.CostCategories))
	for _, o := range orders {
		if !o.Delivered() {
			continue
		}
		delivered++
		for _, cat := range snap.CostCategories {
			sums[cat] += o.CostBreakdown[cat]
		}
	}

	out := make([]WaterfallStep, 0, len(snap.CostCategories)+1)
	var total float64
	for _, cat := range snap.CostCategories {
		var mean float64
		if delivered > 0 {
			mean = sums[cat] / float64(delivered)
		}
		total += mean
		out = append(out, WaterfallStep{Category: cat, Amount: mean, Measure: MeasureRelative})
	}
	out = append(out, WaterfallStep{Category: "Total", Amount: total, Measure: MeasureTotal})
	return out, nil
}

// CostSpeedAnalysis returns one point per filtered delivered order. Delivery
// hours come from the actual delivery duration when the delivery table
// carried one, otherwise from the traffic delay.
func (e *Engine) CostSpeedAnalysis(f Filter) ([]CostSpeedPoint, error) {
	snap, _, err := e.current()
	if err != nil {
		return nil, err
	}
	orders := f.Apply(snap.Orders)

	out := make([]CostSpeedPoint, 0, len(orders))
	for _, o := range orders {
		if !o.Delivered() {
			continue
		}
		hours := o.TrafficDelayMinutes / 60
		if snap.HasActualDays {
			hours = o.ActualDays * 24
		}
		out = append(out, CostSpeedPoint{
			OrderID:        o.OrderID,
			DeliveryHours:  hours,
			TotalCost:      o.TotalCost,
			DeliveryStatus: o.DeliveryStatus,
			Rating:         o.Rating,
			Carrier:        o.Carrier,
		})
	}
	return out, nil
}

// SustainabilityMetrics summarizes delivered emissions. The optimized
// scenario applies the configured route-optimization reduction; any other
// scenario reports current figures.
func (e *Engine) SustainabilityMetrics(scenario string) (*SustainabilityMetrics, error) {
	snap, _, err := e.current()
	if err != nil {
		return nil, err
	}

	var total float64
	var delivered int
	for _, o := range snap.Orders {
		if !o.Delivered() {
			continue
		}
		total += o.CO2Emissions
		delivered++
	}

	m := &SustainabilityMetrics{TotalCO2: total}
	if delivered > 0 {
		m.CO2PerOrder = total / float64(delivered)
	}
	if scenario == ScenarioOptimized {
		m.ReductionPct = e.heur.OptimizedCO2ReductionPct
		factor := 1 - m.ReductionPct/100
		m.TotalCO2 *= factor
		m.CO2PerOrder *= factor
	}
	return m, nil
}

// GreenLogisticsBenefit models converting part of the fleet to electric
// vehicles: fuel and maintenance savings against the up-front investment,
// plus the emission cut.
func (e *Engine) GreenLogisticsBenefit() (*GreenBenefit, error) {
	snap, _, err := e.current()
	if err != nil {
		return nil, err
	}

	var fuelCost, maintenance, co2 float64
	for _, o := range snap.Orders {
		if !o.Delivered() {
			continue
		}
		fuelCost += o.FuelCost
		maintenance += o.MaintenanceCost
		co2 += o.CO2Emissions
	}

	adoption := e.heur.EVAdoptionRate
	fuelSavings := fuelCost * adoption * e.heur.EVFuelSavingRate
	maintenanceSavings := maintenance * adoption * e.heur.EVMaintenanceSaveRate
	totalSavings := fuelSavings + maintenanceSavings
	co2Reduction := co2 * adoption * e.heur.EVCO2ReductionRate

	fleet := snap.VehicleCount
	if fleet < 1 {
		fleet = 1
	}
	investment := e.heur.EVUnitInvestment * adoption * float64(fleet)

	b := &GreenBenefit{
		CostSavings:  totalSavings,
		CO2Reduction: co2Reduction,
	}
	if co2 > 0 {
		b.ReductionPct = co2Reduction / co2 * 100
	}
	if investment > 0 {
		b.ROI = totalSavings / investment * 100
	}
	if totalSavings > 0 {
		b.PaybackMonths = int(investment / (totalSavings / 12))
	}
	return b, nil
}

// UniqueWarehouses lists the distinct origin warehouses in first-seen order.
func (e *Engine) UniqueWarehouses() ([]string, error) {
	snap, _, err := e.current()
	if err != nil {
		return nil, err
	}
	return uniqueValues(snap.Orders, func(o *pipeline.Order) string { return o.OriginWarehouse }), nil
}

// UniqueCarriers lists the distinct carriers in first-seen order.
func (e *Engine) UniqueCarriers() ([]string, error) {
	snap, _, err := e.current()
	if err != nil {
		return nil, err
	}
	return uniqueValues(snap.Orders, func(o *pipeline.Order) string { return o.Carrier }), nil
}

func uniqueValues(orders []pipeline.Order, field func(*pipeline.Order) string) []string {
	seen := make(map[string]struct{})
	out := []string{}
	for i := range orders {
		v := field(&orders[i])
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
