// Package loader reads the five required source tables into normalized
// in-memory tables. A load is all-or-nothing: if any required table is
// absent or unreadable the whole load fails naming the missing source, and
// the caller decides recovery. There are no retries.
package loader

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"freightcli/internal/dataset"
	"freightcli/internal/errors"
)

// Logical source names. Each maps to <name>.csv (or <name>.xlsx) in the
// configured data directory.
const (
	SourceOrders   = "orders"
	SourceDelivery = "delivery_performance"
	SourceRoutes   = "routes_distance"
	SourceVehicles = "vehicle_fleet"
	SourceCosts    = "cost_breakdown"
)

// RequiredSources lists every table a load must produce, in a fixed order.
var RequiredSources = []string{
	SourceOrders,
	SourceDelivery,
	SourceRoutes,
	SourceVehicles,
	SourceCosts,
}

// Tables holds one successful load: all five sources, columns already
// normalized. Partial loads are never returned.
type Tables struct {
	Orders   *dataset.Table
	Delivery *dataset.Table
	Routes   *dataset.Table
	Vehicles *dataset.Table
	Costs    *dataset.Table
}

// Loader reads source tables from a directory.
type Loader struct {
	dir    string
	logger *slog.Logger
}

// New creates a loader rooted at the given data directory.
func New(dir string, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		dir:    dir,
		logger: logger.With(slog.String("component", "loader")),
	}
}

// LoadAll reads all five required tables. The sources are independent, so
// they load concurrently; the first failure cancels the rest and fails the
// whole load with a MissingSourceData error naming the source.
func (l *Loader) LoadAll(ctx context.Context) (*Tables, error) {
	l.logger.InfoContext(ctx, "loading source tables",
		slog.String("dir", l.dir),
		slog.Int("source_count", len(RequiredSources)))

	loaded := make([]*dataset.Table, len(RequiredSources))
	g, ctx := errgroup.WithContext(ctx)

	for i, name := range RequiredSources {
		i, name := i, name
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			table, err := l.loadSource(ctx, name)
			if err != nil {
				return err
			}
			loaded[i] = table
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	tables := &Tables{
		Orders:   loaded[0],
		Delivery: loaded[1],
		Routes:   loaded[2],
		Vehicles: loaded[3],
		Costs:    loaded[4],
	}

	l.logger.InfoContext(ctx, "source tables loaded",
		slog.Int("orders", len(tables.Orders.Rows)),
		slog.Int("delivery", len(tables.Delivery.Rows)),
		slog.Int("routes", len(tables.Routes.Rows)),
		slog.Int("vehicles", len(tables.Vehicles.Rows)),
		slog.Int("costs", len(tables.Costs.Rows)))

	return tables, nil
}

// loadSource resolves a logical source name to a file and parses it. CSV is
// preferred; an .xlsx workbook with the same stem is accepted as a fallback.
func (l *Loader) loadSource(ctx context.Context, name string) (*dataset.Table, error) {
	csvPath := filepath.Join(l.dir, name+".csv")
	if _, err := os.Stat(csvPath); err == nil {
		table, err := l.readCSV(name, csvPath)
		if err != nil {
			return nil, errors.NewMissingSourceError(name, err)
		}
		return table, nil
	}

	xlsxPath := filepath.Join(l.dir, name+".xlsx")
	if _, err := os.Stat(xlsxPath); err == nil {
		table, err := l.readXLSX(name, xlsxPath)
		if err != nil {
			return nil, errors.NewMissingSourceError(name, err)
		}
		return table, nil
	}

	return nil, errors.NewMissingSourceError(name,
		fmt.Errorf("neither %s nor %s exists", csvPath, xlsxPath))
}

// readCSV parses a CSV file into a normalized table. A UTF-8 BOM before the
// header is tolerated, matching what spreadsheet exports produce.
func (l *Loader) readCSV(name, path string) (*dataset.Table, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	if len(content) >= 3 && content[0] == 0xEF && content[1] == 0xBB && content[2] == 0xBF {
		content = content[3:]
	}

	reader := csv.NewReader(strings.NewReader(string(content)))
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("file has no header row")
	}

	table := tableFromRecords(name, records)
	l.logger.Debug("parsed CSV source",
		slog.String("source", name),
		slog.String("path", path),
		slog.Int("rows", len(table.Rows)))
	return table, nil
}

// tableFromRecords builds a Table from raw records (header first) and
// normalizes column names.
func tableFromRecords(name string, records [][]string) *dataset.Table {
	header := records[0]
	columns := make([]string, len(header))
	copy(columns, header)

	rows := make([]dataset.Row, 0, len(records)-1)
	for _, record := range records[1:] {
		// Skip entirely empty lines
		empty := true
		for _, cell := range record {
			if strings.TrimSpace(cell) != "" {
				empty = false
				break
			}
		}
		if empty {
			continue
		}

		row := make(dataset.Row, len(columns))
		for i, col := range columns {
			if i < len(record) {
				row[col] = strings.TrimSpace(record[i])
			}
		}
		rows = append(rows, row)
	}

	table := &dataset.Table{Name: name, Columns: columns, Rows: rows}
	table.Normalize()
	return table
}
