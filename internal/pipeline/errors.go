package pipeline

import (
	"fmt"
)

// ParseError reports an unparseable or missing value in the designated
// date column. It aborts the whole Clean call; there is no
// partial-success mode.
type ParseError struct {
	Column string
	Row    int
	Value  string
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("row %d: missing value in date column %q", e.Row, e.Column)
	}
	return fmt.Sprintf("row %d: cannot parse %q as a date in column %q", e.Row, e.Value, e.Column)
}

// MissingColumnError reports that the requested date column is absent
// from the input schema. Raised before any row processing.
type MissingColumnError struct {
	Column string
}

// Error implements the error interface.
func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("date column %q not present in record set", e.Column)
}

// EmptyColumnError reports a column with rows but no values at all:
// its mean is undefined, so imputation cannot proceed.
type EmptyColumnError struct {
	Column string
}

// Error implements the error interface.
func (e *EmptyColumnError) Error() string {
	return fmt.Sprintf("column %q has no values to compute a mean from", e.Column)
}
