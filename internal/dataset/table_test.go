package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "lowercase with underscores",
			input:    "Order ID",
			expected: "order_id",
		},
		{
			name:     "surrounding whitespace",
			input:    "  Delivery Cost (INR)  ",
			expected: "delivery_cost_(inr)",
		},
		{
			name:     "utf8 bom prefix",
			input:    "\ufeffOrder ID",
			expected: "order_id",
		},
		{
			name:     "zero width space prefix",
			input:    "\u200BCarrier",
			expected: "carrier",
		},
		{
			name:     "multiple internal spaces",
			input:    "Promised  Delivery Days",
			expected: "promised__delivery_days",
		},
		{
			name:     "already normalized",
			input:    "total_cost",
			expected: "total_cost",
		},
		{
			name:     "empty",
			input:    "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeName(tt.input))
		})
	}
}

func TestNormalizeNameIdempotent(t *testing.T) {
	inputs := []string{
		"Order ID",
		"\ufeffDelivery Status",
		"  Total Cost  ",
		"co2_emissions_kg_per_km",
		"Origin Warehouse",
	}
	for _, input := range inputs {
		once := NormalizeName(input)
		assert.Equal(t, once, NormalizeName(once), "normalize must be idempotent for %q", input)
	}
}

func TestTableNormalize(t *testing.T) {
	table := &Table{
		Name:    "orders",
		Columns: []string{"\ufeffOrder ID", "Carrier Name", "order_value"},
		Rows: []Row{
			{"\ufeffOrder ID": "ORD1", "Carrier Name": "FastShip", "order_value": "100"},
		},
	}

	table.Normalize()

	assert.Equal(t, []string{"order_id", "carrier_name", "order_value"}, table.Columns)
	require.Len(t, table.Rows, 1)
	assert.Equal(t, "ORD1", table.Rows[0].String("order_id"))
	assert.Equal(t, "FastShip", table.Rows[0].String("carrier_name"))
	assert.True(t, table.HasColumn("order_id"))
	assert.False(t, table.HasColumn("Order ID"))
}

func TestRowFloat(t *testing.T) {
	row := Row{
		"plain":    "42.5",
		"commas":   "1,234.56",
		"integer":  "7",
		"negative": "-3.25",
		"text":     "n/a",
		"empty":    "",
	}

	tests := []struct {
		name     string
		col      string
		expected float64
		ok       bool
	}{
		{"plain float", "plain", 42.5, true},
		{"thousands separators", "commas", 1234.56, true},
		{"integer", "integer", 7, true},
		{"negative", "negative", -3.25, true},
		{"unparseable text", "text", 0, false},
		{"empty value", "empty", 0, false},
		{"missing column", "absent", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, ok := row.Float(tt.col)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, v)
		})
	}
}

func TestRowFirstFloat(t *testing.T) {
	row := Row{
		"order_value_inr": "250",
		"order_value":     "999",
		"distance":        "12.5",
	}

	v, ok := row.FirstFloat("order_value_inr", "order_value")
	require.True(t, ok)
	assert.Equal(t, 250.0, v, "more specific source wins")

	v, ok = row.FirstFloat("distance_km", "distance")
	require.True(t, ok)
	assert.Equal(t, 12.5, v, "falls through to the next source")

	_, ok = row.FirstFloat("missing_a", "missing_b")
	assert.False(t, ok)
}

func TestRowFirstString(t *testing.T) {
	row := Row{"customer_rating": "", "rating": "4.2"}

	assert.Equal(t, "4.2", row.FirstString("customer_rating", "rating"))
	assert.Equal(t, "", row.FirstString("absent"))
}
