package analytics

import "freightcli/internal/pipeline"

// Filter narrows queries to a subset of orders. Each non-empty list keeps
// orders whose field matches any listed value; multiple lists combine with
// AND. An empty filter keeps everything.
type Filter struct {
	Regions    []string `json:"regions"`
	Priorities []string `json:"priorities"`
	Carriers   []string `json:"carriers"`
}

// IsZero reports whether the filter restricts nothing.
func (f Filter) IsZero() bool {
	return len(f.Regions) == 0 && len(f.Priorities) == 0 && len(f.Carriers) == 0
}

// Apply returns the matching orders in dataset order. Regions match the
// origin warehouse. A value matching no order yields an empty slice, which
// downstream aggregations treat as a valid empty result.
func (f Filter) Apply(orders []pipeline.Order) []pipeline.Order {
	if f.IsZero() {
		return orders
	}

	out := make([]pipeline.Order, 0, len(orders))
	for _, o := range orders {
		if !matches(f.Regions, o.OriginWarehouse) {
			continue
		}
		if !matches(f.Priorities, o.Priority) {
			continue
		}
		if !matches(f.Carriers, o.Carrier) {
			continue
		}
		out = append(out, o)
	}
	return out
}

// matches reports whether value is allowed by the list; an empty list allows
// every value.
func matches(allowed []string, value string) bool {
	if len(allowed) == 0 {
		return true
	}
	for _, a := range allowed {
		if a == value {
			return true
		}
	}
	return false
}
