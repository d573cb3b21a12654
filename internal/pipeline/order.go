// Package pipeline is the join & enrichment engine: it consumes the five
// normalized source tables and produces one unified, immutable record per
// order with every derived financial and environmental metric resolved.
package pipeline

import (
	"time"

	"github.com/google/uuid"
)

// Order status values derived from the delivery-status column.
const (
	StatusDelivered = "Delivered"
	StatusPending   = "Pending"
)

// Order is the unified per-order record every query reads from. All numeric
// fields resolve missing values to 0 before a snapshot is published, so
// aggregations never drop rows; a cost_per_km of 0 therefore means "zero or
// unknown distance", never infinity.
type Order struct {
	OrderID string `json:"order_id"`

	OrderDate    time.Time `json:"order_date"`
	HasOrderDate bool      `json:"-"`
	Month        string    `json:"month"` // calendar month key, "2006-01"

	Carrier          string `json:"carrier"`
	Priority         string `json:"priority"`
	OriginWarehouse  string `json:"origin_warehouse"`
	DestinationCity  string `json:"destination_city"`
	Status           string `json:"status"` // Delivered or Pending
	DeliveryStatus   string `json:"delivery_status"`
	QualityIssue     string `json:"quality_issue"`

	Revenue      float64 `json:"revenue"`
	TotalCost    float64 `json:"total_cost"`
	DeliveryCost float64 `json:"delivery_cost"`

	DistanceKM   float64 `json:"distance_km"`
	CO2PerKM     float64 `json:"co2_per_km"`
	CO2Emissions float64 `json:"co2_emissions"`

	Profit       float64 `json:"profit"`
	ProfitMargin float64 `json:"profit_margin"`
	CostPerKM    float64 `json:"cost_per_km"`

	PromisedDays        float64 `json:"promised_delivery_days"`
	ActualDays          float64 `json:"actual_delivery_days"`
	DelayDays           float64 `json:"delay_days"`
	DelayCost           float64 `json:"delay_cost"`
	DamageCost          float64 `json:"damage_cost"`
	CostOfInefficiency  float64 `json:"cost_of_inefficiency"`
	OnTimePercentage    float64 `json:"on_time_percentage"`
	Rating              float64 `json:"rating"`
	TrafficDelayMinutes float64 `json:"traffic_delay_minutes"`

	// Inputs to the green-logistics benefit model.
	FuelCost        float64 `json:"fuel_cost"`
	MaintenanceCost float64 `json:"maintenance_cost"`

	// Per-category cost amounts for this order, keyed by normalized
	// category column name. Missing amounts are 0.
	CostBreakdown map[string]float64 `json:"cost_breakdown"`
}

// Delivered reports whether the order completed delivery.
func (o *Order) Delivered() bool {
	return o.Status == StatusDelivered
}

// Snapshot is one fully built unified dataset. It is immutable once
// published: a reload builds a complete replacement and swaps it in, so
// readers observe either the old or the new snapshot, never a partial one.
type Snapshot struct {
	ID          uuid.UUID
	GeneratedAt time.Time

	Orders []Order

	// CostCategories preserves the cost table's category column order.
	CostCategories []string
	// CategoryTotals sums each category over every cost record, matched to
	// an order or not.
	CategoryTotals map[string]float64

	// CO2Factor is the fleet-average kg/km applied uniformly to all orders.
	CO2Factor    float64
	VehicleCount int

	// HasActualDays records whether the delivery table carried actual
	// delivery durations; the cost-vs-speed view falls back to traffic
	// delay when it did not.
	HasActualDays bool
}

// DeliveredOrders returns the delivered subset in dataset order.
func (s *Snapshot) DeliveredOrders() []Order {
	out := make([]Order, 0, len(s.Orders))
	for _, o := range s.Orders {
		if o.Delivered() {
			out = append(out, o)
		}
	}
	return out
}
