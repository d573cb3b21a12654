// Package scoring ranks carriers by a weighted composite value score and
// derives a single best-pair shift recommendation from it.
package scoring

// Weights contains the component weights of the carrier value score:
// cost (40%), on-time delivery (30%), satisfaction (20%), sustainability (10%).
type Weights struct {
	Cost           float64 `json:"cost"`
	Delivery       float64 `json:"delivery"`
	Satisfaction   float64 `json:"satisfaction"`
	Sustainability float64 `json:"sustainability"`
}

// DefaultWeights returns the fixed design weights. They are not configurable
// per call; tuning them is a design change, not a query parameter.
func DefaultWeights() Weights {
	return Weights{
		Cost:           0.40,
		Delivery:       0.30,
		Satisfaction:   0.20,
		Sustainability: 0.10,
	}
}

// IsValid checks if weights are valid (sum to 1)
func (w Weights) IsValid() bool {
	sum := w.Cost + w.Delivery + w.Satisfaction + w.Sustainability
	return w.Cost >= 0 && w.Delivery >= 0 && w.Satisfaction >= 0 && w.Sustainability >= 0 &&
		sum > 0.99 && sum < 1.01 // Allow small floating point errors
}

// Normalize ensures weights sum to 1
func (w *Weights) Normalize() {
	sum := w.Cost + w.Delivery + w.Satisfaction + w.Sustainability
	if sum > 0 {
		w.Cost /= sum
		w.Delivery /= sum
		w.Satisfaction /= sum
		w.Sustainability /= sum
	}
}
