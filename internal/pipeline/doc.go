// Package pipeline implements the cleaning and monthly-aggregation
// core of the air-quality / hospital-admissions pipeline.
//
// # Architecture
//
// Two components operate on domain.Frame record sets:
//
// 1. Cleaner: date normalization, numeric mean imputation and removal
// of rows with missing text values, one record set at a time
// 2. Aggregator: monthly resampling of three cleaned record sets and
// an outer join into one zero-filled wide table
//
// # Data Flow
//
//	Raw Frame → Cleaner → Cleaned Frame (×3) → Aggregator → MonthlyTable
//
// # Error Handling
//
// Failures are typed and fatal for the call that raised them:
//
//   - *MissingColumnError: requested date column absent from the schema
//   - *ParseError: missing or unparseable date value, with row and value
//   - *EmptyColumnError: a column with rows but no values, so no mean
//
// The two designed fallbacks — mean-fill for missing numeric cells and
// zero-fill for join gaps — are policy, not error recovery. Nothing in
// this package retries, defaults, or silently drops bad dates.
//
// Both components are pure transforms: single-pass, synchronous, no
// shared state between invocations.
package pipeline
