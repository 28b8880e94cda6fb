package domain

import (
	"fmt"
	"time"
)

// ValueKind identifies the type of a single cell in a Frame.
type ValueKind int

const (
	KindMissing ValueKind = iota
	KindNumber
	KindText
	KindTime
)

// String returns a human-readable name for the kind.
func (k ValueKind) String() string {
	switch k {
	case KindMissing:
		return "missing"
	case KindNumber:
		return "number"
	case KindText:
		return "text"
	case KindTime:
		return "time"
	default:
		return fmt.Sprintf("ValueKind(%d)", int(k))
	}
}

// Value is a single cell of a tabular record set. Exactly one of the
// payload fields is meaningful, selected by Kind.
type Value struct {
	Kind ValueKind
	Num  float64
	Text string
	Time time.Time
}

// Missing returns the missing-value sentinel.
func Missing() Value { return Value{Kind: KindMissing} }

// Number wraps a float64 as a Value.
func Number(n float64) Value { return Value{Kind: KindNumber, Num: n} }

// Text wraps a string as a Value.
func Text(s string) Value { return Value{Kind: KindText, Text: s} }

// Timestamp wraps a time.Time as a Value.
func Timestamp(t time.Time) Value { return Value{Kind: KindTime, Time: t} }

// IsMissing reports whether the cell holds no value.
func (v Value) IsMissing() bool { return v.Kind == KindMissing }

// String renders the value for CSV output and error messages.
func (v Value) String() string {
	switch v.Kind {
	case KindNumber:
		return fmt.Sprintf("%g", v.Num)
	case KindText:
		return v.Text
	case KindTime:
		return v.Time.Format("2006-01-02")
	default:
		return ""
	}
}

// Row is one record of a Frame, aligned positionally to Frame.Columns.
type Row []Value

// Frame is an ordered tabular record set with a fixed column schema.
// It is the wire-neutral form every raw source is decoded into and the
// only shape the cleaning and aggregation core operates on.
type Frame struct {
	Columns []string
	Rows    []Row
}

// NewFrame creates an empty frame with the given column schema.
func NewFrame(columns ...string) *Frame {
	return &Frame{Columns: append([]string(nil), columns...)}
}

// ColumnIndex returns the position of the named column, or -1.
func (f *Frame) ColumnIndex(name string) int {
	for i, c := range f.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Append adds a row. The row must match the column count.
func (f *Frame) Append(row Row) error {
	if len(row) != len(f.Columns) {
		return fmt.Errorf("row has %d values, frame has %d columns", len(row), len(f.Columns))
	}
	f.Rows = append(f.Rows, row)
	return nil
}

// Len returns the number of rows.
func (f *Frame) Len() int { return len(f.Rows) }

// IsNumericColumn reports whether every non-missing value in column i
// is a number. Columns with no non-missing values report false; callers
// that need to distinguish "empty" from "non-numeric" use
// HasNonMissing.
func (f *Frame) IsNumericColumn(i int) bool {
	seen := false
	for _, row := range f.Rows {
		switch row[i].Kind {
		case KindMissing:
			continue
		case KindNumber:
			seen = true
		default:
			return false
		}
	}
	return seen
}

// HasNonMissing reports whether column i holds at least one value.
func (f *Frame) HasNonMissing(i int) bool {
	for _, row := range f.Rows {
		if !row[i].IsMissing() {
			return true
		}
	}
	return false
}

// AllMissing reports whether column i has rows but no values at all.
func (f *Frame) AllMissing(i int) bool {
	return len(f.Rows) > 0 && !f.HasNonMissing(i)
}

// Clone returns a deep copy of the frame. The cleaning core never
// mutates its input; it clones first.
func (f *Frame) Clone() *Frame {
	out := &Frame{
		Columns: append([]string(nil), f.Columns...),
		Rows:    make([]Row, len(f.Rows)),
	}
	for i, row := range f.Rows {
		out.Rows[i] = append(Row(nil), row...)
	}
	return out
}
