package scoring

import (
	"fmt"
	"math"

	"freightcli/internal/pipeline"
)

// Fixed qualitative fields of the shift recommendation. The heuristic is a
// single best-pair shift, not a multi-carrier reallocation optimizer, so the
// risk and timeline are design constants.
const (
	recommendationRisk     = "Low"
	recommendationTimeline = "6 months"
	pilotVolumePercent     = 15
)

// Recommendation is one actionable carrier-shift suggestion.
type Recommendation struct {
	Title          string  `json:"title"`
	Action         string  `json:"action"`
	Impact         string  `json:"impact"`
	Implementation string  `json:"implementation"`
	Savings        float64 `json:"savings"`
	Risk           string  `json:"risk"`
	Timeline       string  `json:"timeline"`
}

// Recommendations derives the carrier-shift heuristic from an already
// computed scorecard: move the worst-scoring carrier's delivered volume to
// the best-scoring one. With fewer than two carriers there is nothing to
// shift and the result is empty. The savings estimate is the worst carrier's
// current delivered cost minus its order count at the best carrier's mean
// cost, clamped to zero when the shift would not actually save money.
func Recommendations(scores []CarrierScore, orders []pipeline.Order) []Recommendation {
	if len(scores) < 2 {
		return []Recommendation{}
	}

	best := scores[0]
	worst := scores[len(scores)-1]

	var currentCost float64
	var worstOrders int
	for _, o := range orders {
		if !o.Delivered() || o.Carrier != worst.Carrier {
			continue
		}
		currentCost += o.TotalCost
		worstOrders++
	}

	potentialCost := float64(worstOrders) * best.AvgCost
	savings := math.Max(0, currentCost-potentialCost)

	return []Recommendation{
		{
			Title:          fmt.Sprintf("Shift orders from %s to %s", worst.Carrier, best.Carrier),
			Action:         fmt.Sprintf("Pilot %d%% of %s volume to %s", pilotVolumePercent, worst.Carrier, best.Carrier),
			Impact:         fmt.Sprintf("Estimated annual saving %.0f", savings),
			Implementation: "Pilot then scale",
			Savings:        savings,
			Risk:           recommendationRisk,
			Timeline:       recommendationTimeline,
		},
	}
}
