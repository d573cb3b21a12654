package loader

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"freightcli/internal/errors"
)

func writeSource(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name+".csv"), []byte(content), 0o644))
}

func writeAllSources(t *testing.T, dir string) {
	t.Helper()
	writeSource(t, dir, SourceOrders, "Order ID,Carrier,Order Value INR\nORD1,FastShip,250\nORD2,SlowBoat,100\n")
	writeSource(t, dir, SourceDelivery, "Order ID,Delivery Status\nORD1,On Time\n")
	writeSource(t, dir, SourceRoutes, "Order ID,Distance KM\nORD1,120\n")
	writeSource(t, dir, SourceVehicles, "Vehicle ID,CO2 Emissions KG Per KM\nV1,0.45\n")
	writeSource(t, dir, SourceCosts, "Order ID,Fuel,Labor\nORD1,30,20\n")
}

func TestLoadAll(t *testing.T) {
	dir := t.TempDir()
	writeAllSources(t, dir)

	tables, err := New(dir, nil).LoadAll(context.Background())
	require.NoError(t, err)

	require.Len(t, tables.Orders.Rows, 2)
	assert.Equal(t, []string{"order_id", "carrier", "order_value_inr"}, tables.Orders.Columns)
	assert.Equal(t, "ORD1", tables.Orders.Rows[0].String("order_id"))

	v, ok := tables.Orders.Rows[0].Float("order_value_inr")
	require.True(t, ok)
	assert.Equal(t, 250.0, v)

	assert.Len(t, tables.Delivery.Rows, 1)
	assert.Len(t, tables.Routes.Rows, 1)
	assert.Len(t, tables.Vehicles.Rows, 1)
	assert.Len(t, tables.Costs.Rows, 1)
}

func TestLoadAllMissingSource(t *testing.T) {
	dir := t.TempDir()
	writeAllSources(t, dir)
	require.NoError(t, os.Remove(filepath.Join(dir, SourceVehicles+".csv")))

	_, err := New(dir, nil).LoadAll(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrTypeMissingSource))
	assert.Contains(t, err.Error(), SourceVehicles)
}

func TestLoadAllEmptyDirectory(t *testing.T) {
	_, err := New(t.TempDir(), nil).LoadAll(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrTypeMissingSource))
}

func TestReadCSVStripsBOM(t *testing.T) {
	dir := t.TempDir()
	writeAllSources(t, dir)
	writeSource(t, dir, SourceOrders, "\xEF\xBB\xBFOrder ID,Carrier\nORD1,FastShip\n")

	tables, err := New(dir, nil).LoadAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"order_id", "carrier"}, tables.Orders.Columns)
	assert.Equal(t, "ORD1", tables.Orders.Rows[0].String("order_id"))
}

func TestReadCSVSkipsEmptyLinesAndTrims(t *testing.T) {
	dir := t.TempDir()
	writeAllSources(t, dir)
	writeSource(t, dir, SourceOrders, "Order ID,Carrier\n ORD1 , FastShip \n,\nORD2,SlowBoat\n")

	tables, err := New(dir, nil).LoadAll(context.Background())
	require.NoError(t, err)
	require.Len(t, tables.Orders.Rows, 2)
	assert.Equal(t, "ORD1", tables.Orders.Rows[0].String("order_id"))
	assert.Equal(t, "FastShip", tables.Orders.Rows[0].String("carrier"))
}

func TestReadCSVRaggedRows(t *testing.T) {
	dir := t.TempDir()
	writeAllSources(t, dir)
	// Second row is short one field; the missing cell reads as empty.
	writeSource(t, dir, SourceOrders, "Order ID,Carrier,Order Value INR\nORD1,FastShip\n")

	tables, err := New(dir, nil).LoadAll(context.Background())
	require.NoError(t, err)
	require.Len(t, tables.Orders.Rows, 1)
	assert.Equal(t, "", tables.Orders.Rows[0].String("order_value_inr"))

	_, ok := tables.Orders.Rows[0].Float("order_value_inr")
	assert.False(t, ok)
}

func TestLoadSourceHeaderOnly(t *testing.T) {
	dir := t.TempDir()
	writeAllSources(t, dir)
	writeSource(t, dir, SourceCosts, "Order ID,Fuel\n")

	tables, err := New(dir, nil).LoadAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, tables.Costs.Rows)
	assert.True(t, tables.Costs.HasColumn("fuel"))
}
