package pipeline

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"airhealth/pkg/contracts/domain"
)

// Aggregator resamples three cleaned record sets to monthly
// granularity and joins them into one wide table.
type Aggregator struct {
	logger *slog.Logger
}

// NewAggregator creates a new aggregator.
func NewAggregator(logger *slog.Logger) *Aggregator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Aggregator{logger: logger}
}

// AggregateMonthly buckets the air-quality readings and the two
// hospitalization sets by calendar month (month-end labels), computes
// per-month means of every numeric air column and per-month admission
// counts, and outer-joins the three series on the union of months.
// Cells absent from a given source are zero-filled. All three inputs
// empty yields an empty table, not an error.
func (a *Aggregator) AggregateMonthly(ctx context.Context, air, allHosp, filteredHosp *domain.Frame) (*domain.MonthlyTable, error) {
	airCols, airMeans, err := a.resampleAirQuality(air)
	if err != nil {
		return nil, err
	}
	totalCounts, err := countByMonth(allHosp)
	if err != nil {
		return nil, err
	}
	filteredCounts, err := countByMonth(filteredHosp)
	if err != nil {
		return nil, err
	}

	months := monthUnion(airMeans, totalCounts, filteredCounts)

	columns := make([]string, 0, len(airCols)+2)
	for _, c := range airCols {
		columns = append(columns, domain.AirColumnPrefix+c)
	}
	columns = append(columns, domain.ColumnHospitalizationsTotal, domain.ColumnHospitalizationsJP)

	table := &domain.MonthlyTable{
		Months:  months,
		Columns: columns,
		Values:  make([][]float64, len(months)),
	}
	for i, month := range months {
		row := make([]float64, len(columns))
		for j, c := range airCols {
			if m, ok := airMeans[month]; ok {
				row[j] = m.mean(c)
			}
		}
		row[len(airCols)] = totalCounts[month]
		row[len(airCols)+1] = filteredCounts[month]
		table.Values[i] = row
	}

	a.logger.InfoContext(ctx, "monthly aggregation complete",
		slog.Int("months", len(months)),
		slog.Int("columns", len(columns)))

	return table, nil
}

// runningMean accumulates a per-column sum and count within one month
// bucket.
type runningMean struct {
	sum   map[string]float64
	count map[string]int
}

func newRunningMean() *runningMean {
	return &runningMean{sum: make(map[string]float64), count: make(map[string]int)}
}

func (m *runningMean) add(column string, v float64) {
	m.sum[column] += v
	m.count[column]++
}

func (m *runningMean) mean(column string) float64 {
	n := m.count[column]
	if n == 0 {
		return 0
	}
	return m.sum[column] / float64(n)
}

// resampleAirQuality groups air rows by month and accumulates the mean
// of every numeric column. Column order follows the input schema.
func (a *Aggregator) resampleAirQuality(air *domain.Frame) ([]string, map[time.Time]*runningMean, error) {
	means := make(map[time.Time]*runningMean)
	if air.Len() == 0 {
		return nil, means, nil
	}

	dateIdx := air.ColumnIndex(AirDateColumn)
	if dateIdx < 0 {
		return nil, nil, &MissingColumnError{Column: AirDateColumn}
	}

	var numericCols []string
	var numericIdx []int
	for j, name := range air.Columns {
		if j == dateIdx {
			continue
		}
		if air.IsNumericColumn(j) {
			numericCols = append(numericCols, name)
			numericIdx = append(numericIdx, j)
		}
	}

	for i, row := range air.Rows {
		month, err := monthOf(row[dateIdx], i, AirDateColumn)
		if err != nil {
			return nil, nil, err
		}
		bucket, ok := means[month]
		if !ok {
			bucket = newRunningMean()
			means[month] = bucket
		}
		for k, j := range numericIdx {
			bucket.add(numericCols[k], row[j].Num)
		}
	}
	return numericCols, means, nil
}

// countByMonth groups a hospitalization set by admission month and
// counts rows.
func countByMonth(frame *domain.Frame) (map[time.Time]float64, error) {
	counts := make(map[time.Time]float64)
	if frame.Len() == 0 {
		return counts, nil
	}

	dateIdx := frame.ColumnIndex(HospitalizationDateColumn)
	if dateIdx < 0 {
		return nil, &MissingColumnError{Column: HospitalizationDateColumn}
	}

	for i, row := range frame.Rows {
		month, err := monthOf(row[dateIdx], i, HospitalizationDateColumn)
		if err != nil {
			return nil, err
		}
		counts[month]++
	}
	return counts, nil
}

// monthOf maps a cleaned date cell to its month-end bucket label.
func monthOf(v domain.Value, row int, column string) (time.Time, error) {
	if v.Kind != domain.KindTime {
		return time.Time{}, &ParseError{Column: column, Row: row, Value: v.String()}
	}
	return domain.MonthEnd(v.Time), nil
}

// monthUnion collects the ascending union of month labels across the
// three resampled series.
func monthUnion(airMeans map[time.Time]*runningMean, totals, filtered map[time.Time]float64) []time.Time {
	set := make(map[time.Time]struct{})
	for m := range airMeans {
		set[m] = struct{}{}
	}
	for m := range totals {
		set[m] = struct{}{}
	}
	for m := range filtered {
		set[m] = struct{}{}
	}

	months := make([]time.Time, 0, len(set))
	for m := range set {
		months = append(months, m)
	}
	sort.Slice(months, func(i, j int) bool { return months[i].Before(months[j]) })
	return months
}
