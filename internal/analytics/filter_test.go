package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"freightcli/internal/pipeline"
)

func filterOrders() []pipeline.Order {
	return []pipeline.Order{
		{OrderID: "ORD1", OriginWarehouse: "WH-North", Priority: "High", Carrier: "FastShip"},
		{OrderID: "ORD2", OriginWarehouse: "WH-South", Priority: "Low", Carrier: "FastShip"},
		{OrderID: "ORD3", OriginWarehouse: "WH-North", Priority: "Low", Carrier: "SlowBoat"},
	}
}

func TestFilterIsZero(t *testing.T) {
	assert.True(t, Filter{}.IsZero())
	assert.False(t, Filter{Regions: []string{"WH-North"}}.IsZero())
	assert.False(t, Filter{Carriers: []string{"FastShip"}}.IsZero())
}

func TestFilterApply(t *testing.T) {
	orders := filterOrders()

	tests := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{
			name:   "empty filter keeps everything",
			filter: Filter{},
			want:   []string{"ORD1", "ORD2", "ORD3"},
		},
		{
			name:   "region matches origin warehouse",
			filter: Filter{Regions: []string{"WH-North"}},
			want:   []string{"ORD1", "ORD3"},
		},
		{
			name:   "multiple values in one list",
			filter: Filter{Regions: []string{"WH-North", "WH-South"}},
			want:   []string{"ORD1", "ORD2", "ORD3"},
		},
		{
			name:   "lists combine with AND",
			filter: Filter{Regions: []string{"WH-North"}, Carriers: []string{"FastShip"}},
			want:   []string{"ORD1"},
		},
		{
			name:   "priority filter",
			filter: Filter{Priorities: []string{"Low"}},
			want:   []string{"ORD2", "ORD3"},
		},
		{
			name:   "unknown value yields empty result",
			filter: Filter{Regions: []string{"WH-Nowhere"}},
			want:   []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.filter.Apply(orders)
			require.Len(t, got, len(tt.want))
			ids := make([]string, 0, len(got))
			for _, o := range got {
				ids = append(ids, o.OrderID)
			}
			assert.Equal(t, tt.want, append([]string{}, ids...))
		})
	}
}

func TestFilterApplyPreservesOrder(t *testing.T) {
	orders := filterOrders()
	got := Filter{Carriers: []string{"SlowBoat", "FastShip"}}.Apply(orders)
	require.Len(t, got, 3)
	assert.Equal(t, "ORD1", got[0].OrderID)
	assert.Equal(t, "ORD3", got[2].OrderID)
}
