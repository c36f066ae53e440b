// Package timeseries converts raw EasyData payloads into date-sorted
// observation tables.
package timeseries

import "time"

// Row is one observation: a date and one value per table column
type Row struct {
	Date   time.Time
	Values []float64
}

// Table is a date-indexed set of observations. Rows are chronological,
// dates are unique, and each row's Values line up with Columns.
type Table struct {
	Columns []string
	Rows    []Row
}

// Len returns the number of observations
func (t *Table) Len() int {
	return len(t.Rows)
}

// Dates returns the observation dates in row order
func (t *Table) Dates() []time.Time {
	dates := make([]time.Time, len(t.Rows))
	for i, row := range t.Rows {
		dates[i] = row.Date
	}
	return dates
}

// Column returns the values of the named column in row order, and whether
// the column exists
func (t *Table) Column(name string) ([]float64, bool) {
	idx := -1
	for i, col := range t.Columns {
		if col == name {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, false
	}

	values := make([]float64, len(t.Rows))
	for i, row := range t.Rows {
		values[i] = row.Values[idx]
	}
	return values, true
}
