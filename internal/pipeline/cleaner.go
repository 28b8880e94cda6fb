package pipeline

import (
	"context"
	"log/slog"
	"time"

	"airhealth/pkg/contracts/domain"
)

// Designated date columns of the three record sets.
const (
	AirDateColumn             = "timestamp"
	HospitalizationDateColumn = "admission_date"
)

// dateLayouts are the accepted textual date formats, tried in order.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

// Cleaner normalizes one tabular record set at a time: date parsing,
// numeric mean imputation and removal of rows with missing text
// values. It is a pure transform with no side effects.
type Cleaner struct {
	logger *slog.Logger
}

// NewCleaner creates a new cleaner.
func NewCleaner(logger *slog.Logger) *Cleaner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cleaner{logger: logger}
}

// Clean returns a copy of frame in which the designated date column
// holds only timestamps, every numeric column has its missing values
// replaced by the column mean computed over the pre-imputation data,
// and rows missing a value in any remaining column are removed.
//
// Failure modes, all fatal for the whole call:
//   - *MissingColumnError when dateColumn is absent from the schema;
//   - *ParseError when a date value is missing or unparseable;
//   - *EmptyColumnError when a column has rows but no values at all.
func (c *Cleaner) Clean(ctx context.Context, frame *domain.Frame, dateColumn string) (*domain.Frame, error) {
	dateIdx := frame.ColumnIndex(dateColumn)
	if dateIdx < 0 {
		return nil, &MissingColumnError{Column: dateColumn}
	}

	c.logger.DebugContext(ctx, "cleaning record set",
		slog.String("date_column", dateColumn),
		slog.Int("rows", frame.Len()),
		slog.Int("columns", len(frame.Columns)))

	out := frame.Clone()

	// Date normalization runs first and is strictly fatal; imputation
	// never sees a frame with bad dates.
	for i, row := range out.Rows {
		parsed, err := parseDate(row[dateIdx], i, dateColumn)
		if err != nil {
			return nil, err
		}
		row[dateIdx] = domain.Timestamp(parsed)
	}

	// Column classification and means come from the pre-imputation
	// data so successive columns cannot influence each other.
	var textCols []int
	for j := range frame.Columns {
		if j == dateIdx {
			continue
		}
		switch {
		case frame.AllMissing(j):
			return nil, &EmptyColumnError{Column: frame.Columns[j]}
		case frame.IsNumericColumn(j):
			mean := columnMean(frame, j)
			for _, row := range out.Rows {
				if row[j].IsMissing() {
					row[j] = domain.Number(mean)
				}
			}
		default:
			if frame.Len() > 0 {
				textCols = append(textCols, j)
			}
		}
	}

	// Row-wise removal: a row missing values in several text columns
	// is still removed once.
	if len(textCols) > 0 {
		kept := out.Rows[:0]
		for _, row := range out.Rows {
			complete := true
			for _, j := range textCols {
				if row[j].IsMissing() {
					complete = false
					break
				}
			}
			if complete {
				kept = append(kept, row)
			}
		}
		out.Rows = kept
	}

	c.logger.DebugContext(ctx, "record set cleaned",
		slog.Int("rows_in", frame.Len()),
		slog.Int("rows_out", out.Len()))

	return out, nil
}

// parseDate converts a date cell to a timestamp. Missing values are a
// parse failure, not something to impute.
func parseDate(v domain.Value, row int, column string) (time.Time, error) {
	switch v.Kind {
	case domain.KindTime:
		return v.Time, nil
	case domain.KindText:
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, v.Text); err == nil {
				return t, nil
			}
		}
		return time.Time{}, &ParseError{Column: column, Row: row, Value: v.Text}
	case domain.KindMissing:
		return time.Time{}, &ParseError{Column: column, Row: row}
	default:
		return time.Time{}, &ParseError{Column: column, Row: row, Value: v.String()}
	}
}

// columnMean computes the arithmetic mean over the non-missing values
// of column j. Callers guarantee at least one value exists.
func columnMean(frame *domain.Frame, j int) float64 {
	var sum float64
	var n int
	for _, row := range frame.Rows {
		if row[j].Kind == domain.KindNumber {
			sum += row[j].Num
			n++
		}
	}
	return sum / float64(n)
}
