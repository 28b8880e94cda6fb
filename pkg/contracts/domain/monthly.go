package domain

import (
	"time"
)

// Monthly column names shared by the aggregation core, the exporters
// and the HTTP API.
const (
	ColumnHospitalizationsTotal = "hospitalizations_total"
	ColumnHospitalizationsJP    = "hospitalizations_jp"

	// AirColumnPrefix namespaces pollutant means in the joined table.
	AirColumnPrefix = "air_"
)

// MonthEnd returns the last calendar day of t's month, normalized to
// midnight UTC. It is the bucket label used throughout the pipeline.
func MonthEnd(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, time.UTC)
}

// MonthlyTable is the final joined per-month summary: one row per
// calendar month (month-end labels, ascending), fully zero-filled.
type MonthlyTable struct {
	Months  []time.Time `json:"months"`
	Columns []string    `json:"columns"`
	Values  [][]float64 `json:"values"`
}

// Len returns the number of month rows.
func (t *MonthlyTable) Len() int { return len(t.Months) }

// MonthIndex returns the row position of the given month-end label,
// or -1.
func (t *MonthlyTable) MonthIndex(month time.Time) int {
	for i, m := range t.Months {
		if m.Equal(month) {
			return i
		}
	}
	return -1
}

// ColumnIndex returns the position of the named column, or -1.
func (t *MonthlyTable) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// At returns the cell for a month-end label and column name. The second
// return is false when either axis is absent.
func (t *MonthlyTable) At(month time.Time, column string) (float64, bool) {
	ri := t.MonthIndex(month)
	ci := t.ColumnIndex(column)
	if ri < 0 || ci < 0 {
		return 0, false
	}
	return t.Values[ri][ci], true
}
