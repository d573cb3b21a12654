package analytics

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"freightcli/internal/config"
	"freightcli/internal/errors"
	"freightcli/internal/pipeline"
)

func testHeuristics() config.HeuristicsConfig {
	return config.HeuristicsConfig{
		DelayCostRate:            0.05,
		DelayStorageFee:          50,
		DelayFallbackPerDay:      100,
		DamageRevenueFraction:    0.15,
		DefaultCO2PerKM:          0.45,
		OptimizedCO2ReductionPct: 20,
		EVAdoptionRate:           0.3,
		EVFuelSavingRate:         0.6,
		EVMaintenanceSaveRate:    0.4,
		EVCO2ReductionRate:       0.85,
		EVUnitInvestment:         50000,
	}
}

func newTestEngine(snap *pipeline.Snapshot) *Engine {
	e := NewEngine(nil, nil, testHeuristics(), nil)
	if snap != nil {
		if snap.ID == uuid.Nil {
			snap.ID = uuid.New()
		}
		e.install(snap)
	}
	return e
}

func TestQueriesBeforeFirstLoad(t *testing.T) {
	e := newTestEngine(nil)
	assert.False(t, e.Loaded())

	_, err := e.KeyMetrics()
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrTypeNotFound))

	_, err = e.CarrierScores()
	assert.Error(t, err)
	_, err = e.Filtered(Filter{})
	assert.Error(t, err)
}

func TestKeyMetrics(t *testing.T) {
	e := newTestEngine(&pipeline.Snapshot{Orders: []pipeline.Order{
		{Status: pipeline.StatusDelivered, Revenue: 200, TotalCost: 150, CostOfInefficiency: 30, CO2Emissions: 10},
		{Status: pipeline.StatusDelivered, Revenue: 100, TotalCost: 50, CO2Emissions: 30},
		{Status: pipeline.StatusPending, Revenue: 999, TotalCost: 999},
	}})

	m, err := e.KeyMetrics()
	require.NoError(t, err)

	assert.Equal(t, 300.0, m.TotalRevenue)
	assert.Equal(t, 30.0, m.CostLeakage)
	assert.InDelta(t, 100.0/300.0*100, m.ProfitMargin, 1e-9)
	assert.InDelta(t, 20.0, m.CO2PerOrder, 1e-9)
	// Change figures need a prior period and stay zero.
	assert.Equal(t, 0.0, m.RevenueGrowth)
	assert.Equal(t, 0.0, m.MarginChange)
}

func TestKeyMetricsZeroRevenue(t *testing.T) {
	e := newTestEngine(&pipeline.Snapshot{Orders: []pipeline.Order{
		{Status: pipeline.StatusDelivered, Revenue: 0, TotalCost: 50},
	}})

	m, err := e.KeyMetrics()
	require.NoError(t, err)
	assert.Equal(t, 0.0, m.ProfitMargin)
}

func TestCostByCategoryPreservesColumnOrder(t *testing.T) {
	e := newTestEngine(&pipeline.Snapshot{
		CostCategories: []string{"fuel", "labor", "toll"},
		CategoryTotals: map[string]float64{"fuel": 120, "labor": 80, "toll": 15},
	})

	out, err := e.CostByCategory()
	require.NoError(t, err)
	require.Len(t, out, 3)
	assert.Equal(t, CategoryCost{Category: "fuel", Amount: 120}, out[0])
	assert.Equal(t, CategoryCost{Category: "labor", Amount: 80}, out[1])
	assert.Equal(t, CategoryCost{Category: "toll", Amount: 15}, out[2])
}

func TestRevenueCostTrend(t *testing.T) {
	e := newTestEngine(&pipeline.Snapshot{Orders: []pipeline.Order{
		{Status: pipeline.StatusDelivered, Month: "2024-03", Revenue: 100, TotalCost: 60},
		{Status: pipeline.StatusDelivered, Month: "2024-01", Revenue: 50, TotalCost: 20},
		{Status: pipeline.StatusDelivered, Month: "2024-03", Revenue: 25, TotalCost: 10},
		{Status: pipeline.StatusDelivered, Month: "", Revenue: 999},
		{Status: pipeline.StatusPending, Month: "2024-01", Revenue: 999},
	}})

	trend, err := e.RevenueCostTrend()
	require.NoError(t, err)
	require.Len(t, trend, 2)

	assert.Equal(t, MonthlyTrend{Month: "2024-01", Revenue: 50, Cost: 20}, trend[0])
	assert.Equal(t, MonthlyTrend{Month: "2024-03", Revenue: 125, Cost: 70}, trend[1])
}

func TestCarrierPerformanceSortedByName(t *testing.T) {
	e := newTestEngine(&pipeline.Snapshot{Orders: []pipeline.Order{
		{Status: pipeline.StatusDelivered, Carrier: "Zephyr", TotalCost: 100, OnTimePercentage: 80, Rating: 4},
		{Status: pipeline.StatusDelivered, Carrier: "Acme", TotalCost: 200, OnTimePercentage: 90, Rating: 3},
		{Status: pipeline.StatusDelivered, Carrier: "Acme", TotalCost: 100, OnTimePercentage: 70, Rating: 5},
	}})

	out, err := e.CarrierPerformance()
	require.NoError(t, err)
	require.Len(t, out, 2)

	assert.Equal(t, "Acme", out[0].Carrier)
	assert.Equal(t, 2, out[0].TotalOrders)
	assert.InDelta(t, 150.0, out[0].AvgCost, 1e-9)
	assert.InDelta(t, 80.0, out[0].OnTimePercentage, 1e-9)
	assert.InDelta(t, 4.0, out[0].AvgRating, 1e-9)
	assert.Equal(t, "Zephyr", out[1].Carrier)
}

func TestCostLeakage(t *testing.T) {
	e := newTestEngine(&pipeline.Snapshot{Orders: []pipeline.Order{
		{Status: pipeline.StatusDelivered, Carrier: "Pricey", CostPerKM: 10, DistanceKM: 10, DelayCost: 110, DamageCost: 30},
		{Status: pipeline.StatusDelivered, Carrier: "Budget", CostPerKM: 5, DistanceKM: 10},
	}})

	s, err := e.CostLeakage(Filter{})
	require.NoError(t, err)

	assert.Equal(t, 110.0, s.DelayCosts)
	assert.Equal(t, 30.0, s.DamageCosts)
	// Baseline is Budget's mean 5/km; Pricey overpays (10-5)*10.
	assert.InDelta(t, 50.0, s.CarrierOvercharges, 1e-9)
}

func TestCostLeakagePerOrderClamp(t *testing.T) {
	// The cheap order sits below the baseline; its negative delta must not
	// offset the expensive one.
	e := newTestEngine(&pipeline.Snapshot{Orders: []pipeline.Order{
		{Status: pipeline.StatusDelivered, Carrier: "Mixed", CostPerKM: 12, DistanceKM: 10},
		{Status: pipeline.StatusDelivered, Carrier: "Mixed", CostPerKM: 4, DistanceKM: 10},
		{Status: pipeline.StatusDelivered, Carrier: "Budget", CostPerKM: 6, DistanceKM: 10},
	}})

	s, err := e.CostLeakage(Filter{})
	require.NoError(t, err)
	// Baseline 6 (Budget); only the 12/km order exceeds it: (12-6)*10.
	assert.InDelta(t, 60.0, s.CarrierOvercharges, 1e-9)
}

func TestCostLeakageEmptyFilterResult(t *testing.T) {
	e := newTestEngine(&pipeline.Snapshot{Orders: []pipeline.Order{
		{Status: pipeline.StatusDelivered, Carrier: "A", OriginWarehouse: "WH-North", CostPerKM: 10, DistanceKM: 5},
	}})

	s, err := e.CostLeakage(Filter{Regions: []string{"WH-Nowhere"}})
	require.NoError(t, err)
	assert.Equal(t, &LeakageSummary{}, s)
}

func TestRouteCostAnalysis(t *testing.T) {
	e := newTestEngine(&pipeline.Snapshot{Orders: []pipeline.Order{
		{Status: pipeline.StatusDelivered, OriginWarehouse: "WH-B", DestinationCity: "Pune", CostPerKM: 4, TotalCost: 400},
		{Status: pipeline.StatusDelivered, OriginWarehouse: "WH-A", DestinationCity: "Mumbai", CostPerKM: 2, TotalCost: 100},
		{Status: pipeline.StatusDelivered, OriginWarehouse: "WH-A", DestinationCity: "Mumbai", CostPerKM: 4, TotalCost: 300},
		{Status: pipeline.StatusPending, OriginWarehouse: "WH-A", DestinationCity: "Mumbai", TotalCost: 999},
	}})

	out, err := e.RouteCostAnalysis(Filter{})
	require.NoError(t, err)
	require.Len(t, out, 2)

	assert.Equal(t, "WH-A", out[0].OriginWarehouse)
	assert.Equal(t, "Mumbai", out[0].DestinationCity)
	assert.Equal(t, 2, out[0].OrderCount)
	assert.InDelta(t, 3.0, out[0].AvgCostPerKM, 1e-9)
	assert.InDelta(t, 200.0, out[0].AvgTotalCost, 1e-9)
	assert.Equal(t, "WH-B", out[1].OriginWarehouse)
}

func TestCostWaterfall(t *testing.T) {
	e := newTestEngine(&pipeline.Snapshot{
		CostCategories: []string{"fuel", "labor"},
		Orders: []pipeline.Order{
			{Status: pipeline.StatusDelivered, CostBreakdown: map[string]float64{"fuel": 30, "labor": 20}},
			{Status: pipeline.StatusDelivered, CostBreakdown: map[string]float64{"fuel": 10, "labor": 40}},
			{Status: pipeline.StatusPending, CostBreakdown: map[string]float64{"fuel": 999}},
		},
	})

	steps, err := e.CostWaterfall(Filter{})
	require.NoError(t, err)
	require.Len(t, steps, 3)

	assert.Equal(t, WaterfallStep{Category: "fuel", Amount: 20, Measure: MeasureRelative}, steps[0])
	assert.Equal(t, WaterfallStep{Category: "labor", Amount: 30, Measure: MeasureRelative}, steps[1])

	closing := steps[len(steps)-1]
	assert.Equal(t, "Total", closing.Category)
	assert.Equal(t, MeasureTotal, closing.Measure)
	assert.InDelta(t, steps[0].Amount+steps[1].Amount, closing.Amount, 1e-9)
}

func TestCostSpeedAnalysis(t *testing.T) {
	orders := []pipeline.Order{
		{OrderID: "ORD1", Status: pipeline.StatusDelivered, ActualDays: 2, TrafficDelayMinutes: 90, TotalCost: 100, Carrier: "A", Rating: 4},
		{OrderID: "ORD2", Status: pipeline.StatusPending, ActualDays: 5},
	}

	t.Run("actual delivery days available", func(t *testing.T) {
		e := newTestEngine(&pipeline.Snapshot{Orders: orders, HasActualDays: true})
		out, err := e.CostSpeedAnalysis(Filter{})
		require.NoError(t, err)
		require.Len(t, out, 1)
		assert.Equal(t, "ORD1", out[0].OrderID)
		assert.InDelta(t, 48.0, out[0].DeliveryHours, 1e-9)
	})

	t.Run("traffic delay fallback", func(t *testing.T) {
		e := newTestEngine(&pipeline.Snapshot{Orders: orders, HasActualDays: false})
		out, err := e.CostSpeedAnalysis(Filter{})
		require.NoError(t, err)
		require.Len(t, out, 1)
		assert.InDelta(t, 1.5, out[0].DeliveryHours, 1e-9)
	})
}

func TestSustainabilityMetrics(t *testing.T) {
	e := newTestEngine(&pipeline.Snapshot{Orders: []pipeline.Order{
		{Status: pipeline.StatusDelivered, CO2Emissions: 10},
		{Status: pipeline.StatusDelivered, CO2Emissions: 30},
		{Status: pipeline.StatusPending, CO2Emissions: 999},
	}})

	current, err := e.SustainabilityMetrics(ScenarioCurrent)
	require.NoError(t, err)
	assert.InDelta(t, 40.0, current.TotalCO2, 1e-9)
	assert.InDelta(t, 20.0, current.CO2PerOrder, 1e-9)
	assert.Equal(t, 0.0, current.ReductionPct)

	optimized, err := e.SustainabilityMetrics(ScenarioOptimized)
	require.NoError(t, err)
	assert.InDelta(t, 32.0, optimized.TotalCO2, 1e-9)
	assert.InDelta(t, 16.0, optimized.CO2PerOrder, 1e-9)
	assert.Equal(t, 20.0, optimized.ReductionPct)
}

func TestGreenLogisticsBenefit(t *testing.T) {
	e := newTestEngine(&pipeline.Snapshot{
		VehicleCount: 2,
		Orders: []pipeline.Order{
			{Status: pipeline.StatusDelivered, FuelCost: 60, MaintenanceCost: 30, CO2Emissions: 25},
			{Status: pipeline.StatusDelivered, FuelCost: 40, MaintenanceCost: 20, CO2Emissions: 15},
			{Status: pipeline.StatusPending, FuelCost: 999},
		},
	})

	b, err := e.GreenLogisticsBenefit()
	require.NoError(t, err)

	// fuel 100*0.3*0.6 + maintenance 50*0.3*0.4
	assert.InDelta(t, 24.0, b.CostSavings, 1e-9)
	// co2 40*0.3*0.85
	assert.InDelta(t, 10.2, b.CO2Reduction, 1e-9)
	assert.InDelta(t, 25.5, b.ReductionPct, 1e-9)
	// investment 50000*0.3*2 vehicles
	assert.InDelta(t, 24.0/30000.0*100, b.ROI, 1e-9)
	assert.Equal(t, 15000, b.PaybackMonths)
}

func TestGreenLogisticsBenefitNoSavings(t *testing.T) {
	e := newTestEngine(&pipeline.Snapshot{Orders: []pipeline.Order{
		{Status: pipeline.StatusDelivered},
	}})

	b, err := e.GreenLogisticsBenefit()
	require.NoError(t, err)
	assert.Equal(t, 0.0, b.CostSavings)
	assert.Equal(t, 0.0, b.ROI)
	assert.Equal(t, 0, b.PaybackMonths)
}

func TestUniqueValuesFirstSeenOrder(t *testing.T) {
	e := newTestEngine(&pipeline.Snapshot{Orders: []pipeline.Order{
		{OriginWarehouse: "WH-South", Carrier: "Zephyr"},
		{OriginWarehouse: "WH-North", Carrier: "Acme"},
		{OriginWarehouse: "WH-South", Carrier: ""},
		{OriginWarehouse: "", Carrier: "Zephyr"},
	}})

	warehouses, err := e.UniqueWarehouses()
	require.NoError(t, err)
	assert.Equal(t, []string{"WH-South", "WH-North"}, warehouses)

	carriers, err := e.UniqueCarriers()
	require.NoError(t, err)
	assert.Equal(t, []string{"Zephyr", "Acme"}, carriers)
}

func TestCarrierScoresCachedPerSnapshot(t *testing.T) {
	e := newTestEngine(&pipeline.Snapshot{Orders: []pipeline.Order{
		{Status: pipeline.StatusDelivered, Carrier: "Solo", TotalCost: 100, OnTimePercentage: 90, Rating: 4},
	}})

	first, err := e.CarrierScores()
	require.NoError(t, err)
	second, err := e.CarrierScores()
	require.NoError(t, err)
	require.Len(t, first, 1)
	// Memoized per snapshot: both calls return the same backing slice.
	assert.Equal(t, &first[0], &second[0])

	e.install(&pipeline.Snapshot{ID: uuid.New(), Orders: []pipeline.Order{
		{Status: pipeline.StatusDelivered, Carrier: "Replacement", TotalCost: 50, OnTimePercentage: 80, Rating: 3},
	}})

	after, err := e.CarrierScores()
	require.NoError(t, err)
	require.Len(t, after, 1)
	assert.Equal(t, "Replacement", after[0].Carrier)
}

func TestAggregationsCachedPerSnapshot(t *testing.T) {
	e := newTestEngine(&pipeline.Snapshot{Orders: []pipeline.Order{
		{Status: pipeline.StatusDelivered, Carrier: "Acme", Month: "2024-01", Revenue: 100, TotalCost: 60},
	}})

	first, err := e.RevenueCostTrend()
	require.NoError(t, err)
	second, err := e.RevenueCostTrend()
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.Equal(t, &first[0], &second[0])

	e.install(&pipeline.Snapshot{ID: uuid.New(), Orders: []pipeline.Order{
		{Status: pipeline.StatusDelivered, Carrier: "Acme", Month: "2024-02", Revenue: 50, TotalCost: 20},
	}})

	after, err := e.RevenueCostTrend()
	require.NoError(t, err)
	require.Len(t, after, 1)
	assert.Equal(t, "2024-02", after[0].Month)

	perf, err := e.CarrierPerformance()
	require.NoError(t, err)
	require.Len(t, perf, 1)
	assert.InDelta(t, 20.0, perf[0].AvgCost, 1e-9)
}

func TestEngineRecommendations(t *testing.T) {
	e := newTestEngine(&pipeline.Snapshot{Orders: []pipeline.Order{
		{Status: pipeline.StatusDelivered, Carrier: "Best", TotalCost: 100, OnTimePercentage: 100, Rating: 5},
		{Status: pipeline.StatusDelivered, Carrier: "Worst", TotalCost: 400, OnTimePercentage: 40, Rating: 1},
	}})

	recs, err := e.Recommendations()
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Contains(t, recs[0].Title, "Worst")
	assert.InDelta(t, 300.0, recs[0].Savings, 1e-9)
}
