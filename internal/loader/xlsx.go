package loader

import (
	"fmt"
	"log/slog"

	"github.com/xuri/excelize/v2"

	"freightcli/internal/dataset"
)

// readXLSX parses the first sheet of an Excel workbook into a normalized
// table. The header is the first row; trailing blank rows are dropped by
// the shared record conversion.
func (l *Loader) readXLSX(name, path string) (*dataset.Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %q has no header row", sheets[0])
	}

	table := tableFromRecords(name, rows)
	l.logger.Debug("parsed XLSX source",
		slog.String("source", name),
		slog.String("sheet", sheets[0]),
		slog.Int("rows", len(table.Rows)))
	return table, nil
}
