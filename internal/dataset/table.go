package dataset

import (
	"strconv"
	"strings"
)

// Row is a single record keyed by normalized column name. A column that is
// absent from the map or holds an empty string counts as missing.
type Row map[string]string

// Table is an ordered sequence of rows sharing a flexible schema. Columns
// preserves the source file's column order; Rows preserves row order.
type Table struct {
	Name    string
	Columns []string
	Rows    []Row
}

// NormalizeName converts an arbitrary source column name to the canonical
// lowercase, underscore-delimited form used throughout the pipeline. It also
// strips the UTF-8 BOM and zero-width characters that Excel-exported headers
// tend to carry. Normalizing twice yields the same result as normalizing once.
func NormalizeName(name string) string {
	s := strings.TrimSpace(name)
	s = strings.TrimPrefix(s, "\ufeff")
	s = strings.TrimLeft(s, "\u200B\u200C\u200D\u2060\uFEFF")
	s = strings.TrimSpace(s)
	s = strings.ToLower(s)
	return strings.ReplaceAll(s, " ", "_")
}

// Normalize rewrites every column name via NormalizeName, updating row keys
// to match. Row and column order are untouched.
func (t *Table) Normalize() {
	renames := make(map[string]string, len(t.Columns))
	for i, col := range t.Columns {
		norm := NormalizeName(col)
		renames[col] = norm
		t.Columns[i] = norm
	}
	for i, row := range t.Rows {
		next := make(Row, len(row))
		for k, v := range row {
			if norm, ok := renames[k]; ok {
				next[norm] = v
			} else {
				next[NormalizeName(k)] = v
			}
		}
		t.Rows[i] = next
	}
}

// HasColumn reports whether the table schema contains the given column.
func (t *Table) HasColumn(name string) bool {
	for _, col := range t.Columns {
		if col == name {
			return true
		}
	}
	return false
}

// String returns the trimmed value of a column, or "" when missing.
func (r Row) String(col string) string {
	return strings.TrimSpace(r[col])
}

// Has reports whether the row carries a non-empty value for the column.
func (r Row) Has(col string) bool {
	return r.String(col) != ""
}

// Float parses the column as a number, tolerating thousands separators.
// Values that fail numeric parsing become missing (ok=false), never an error.
func (r Row) Float(col string) (float64, bool) {
	raw := strings.ReplaceAll(r.String(col), ",", "")
	if raw == "" {
		return 0, false
	}
	val, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return val, true
}

// FirstFloat evaluates an ordered fallback chain of columns and returns the
// first one that parses as a number.
func (r Row) FirstFloat(cols ...string) (float64, bool) {
	for _, col := range cols {
		if v, ok := r.Float(col); ok {
			return v, true
		}
	}
	return 0, false
}

// FirstString returns the first non-empty value among the given columns.
func (r Row) FirstString(cols ...string) string {
	for _, col := range cols {
		if v := r.String(col); v != "" {
			return v
		}
	}
	return ""
}
