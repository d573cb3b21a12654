package scoring

import (
	"sort"

	"freightcli/internal/pipeline"
)

// MaxRating is the rating ceiling used to normalize satisfaction scores.
const MaxRating = 5.0

// CarrierScore holds one carrier's aggregates, its four normalized [0,100]
// sub-scores, and the weighted carrier value score.
type CarrierScore struct {
	Carrier string `json:"carrier"`

	AvgCost          float64 `json:"avg_cost"`
	OnTimePercentage float64 `json:"on_time_percentage"`
	AvgRating        float64 `json:"avg_rating"`
	CO2PerOrder      float64 `json:"co2_per_order"`
	TotalOrders      int     `json:"total_orders"`

	CostScore           float64 `json:"cost_score"`
	DeliveryScore       float64 `json:"delivery_score"`
	SatisfactionScore   float64 `json:"satisfaction_score"`
	SustainabilityScore float64 `json:"sustainability_score"`

	CarrierValueScore float64 `json:"carrier_value_score"`
}

// Calculate aggregates delivered orders by carrier and scores each one.
//
// Sub-score normalization:
//   - cost: (1 - avg_cost/max_avg_cost) * 100, cheaper carriers score
//     higher; 0 for every carrier when no carrier has a positive average.
//   - delivery: the on-time percentage directly.
//   - satisfaction: avg_rating / 5 * 100.
//   - sustainability: (1 - avg_co2/max_avg_co2) * 100, lower emitters score
//     higher; 0 for every carrier when no carrier has positive emissions.
//
// The result is sorted by value score descending. The sort is stable, so
// tied carriers keep their aggregation order (first appearance among
// delivered orders).
func Calculate(orders []pipeline.Order, weights Weights) []CarrierScore {
	type agg struct {
		cost, onTime, rating, co2 float64
		count                     int
	}

	byCarrier := make(map[string]*agg)
	var carrierOrder []string

	for _, o := range orders {
		if !o.Delivered() {
			continue
		}
		a, ok := byCarrier[o.Carrier]
		if !ok {
			a = &agg{}
			byCarrier[o.Carrier] = a
			carrierOrder = append(carrierOrder, o.Carrier)
		}
		a.cost += o.TotalCost
		a.onTime += o.OnTimePercentage
		a.rating += o.Rating
		a.co2 += o.CO2Emissions
		a.count++
	}

	scores := make([]CarrierScore, 0, len(carrierOrder))
	for _, carrier := range carrierOrder {
		a := byCarrier[carrier]
		n := float64(a.count)
		scores = append(scores, CarrierScore{
			Carrier:          carrier,
			AvgCost:          a.cost / n,
			OnTimePercentage: a.onTime / n,
			AvgRating:        a.rating / n,
			CO2PerOrder:      a.co2 / n,
			TotalOrders:      a.count,
		})
	}

	// Normalization baselines ignore zero averages so an all-zero metric
	// yields zero sub-scores instead of a division blow-up.
	var maxCost, maxCO2 float64
	for _, s := range scores {
		if s.AvgCost > maxCost {
			maxCost = s.AvgCost
		}
		if s.CO2PerOrder > maxCO2 {
			maxCO2 = s.CO2PerOrder
		}
	}

	for i := range scores {
		s := &scores[i]
		if maxCost > 0 {
			s.CostScore = (1 - s.AvgCost/maxCost) * 100
		}
		s.DeliveryScore = s.OnTimePercentage
		s.SatisfactionScore = s.AvgRating / MaxRating * 100
		if maxCO2 > 0 {
			s.SustainabilityScore = (1 - s.CO2PerOrder/maxCO2) * 100
		}

		s.CarrierValueScore = weights.Cost*s.CostScore +
			weights.Delivery*s.DeliveryScore +
			weights.Satisfaction*s.SatisfactionScore +
			weights.Sustainability*s.SustainabilityScore
	}

	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].CarrierValueScore > scores[j].CarrierValueScore
	})

	return scores
}
