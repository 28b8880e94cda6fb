package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMonthEnd(t *testing.T) {
	tests := []struct {
		name string
		in   time.Time
		want time.Time
	}{
		{
			name: "mid month",
			in:   time.Date(2024, 1, 5, 10, 30, 0, 0, time.UTC),
			want: time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "leap february",
			in:   time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
			want: time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "non-leap february",
			in:   time.Date(2023, 2, 28, 0, 0, 0, 0, time.UTC),
			want: time.Date(2023, 2, 28, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "december rolls within year",
			in:   time.Date(2024, 12, 15, 0, 0, 0, 0, time.UTC),
			want: time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, MonthEnd(tt.in).Equal(tt.want))
		})
	}
}

func TestFrame_ColumnHelpers(t *testing.T) {
	f := NewFrame("timestamp", "pm25", "site")
	require.NoError(t, f.Append(Row{Text("2024-01-01"), Number(10), Text("centro")}))
	require.NoError(t, f.Append(Row{Text("2024-01-02"), Missing(), Missing()}))

	assert.Equal(t, 1, f.ColumnIndex("pm25"))
	assert.Equal(t, -1, f.ColumnIndex("absent"))

	assert.True(t, f.IsNumericColumn(1))
	assert.False(t, f.IsNumericColumn(2), "text column is not numeric")
	assert.True(t, f.HasNonMissing(2))
	assert.False(t, f.AllMissing(2))

	err := f.Append(Row{Text("x")})
	assert.Error(t, err, "short row must be rejected")
}

func TestFrame_AllMissing(t *testing.T) {
	f := NewFrame("a")
	assert.False(t, f.AllMissing(0), "no rows means nothing is missing")

	require.NoError(t, f.Append(Row{Missing()}))
	assert.True(t, f.AllMissing(0))
	assert.False(t, f.IsNumericColumn(0))
}

func TestFrame_CloneIsDeep(t *testing.T) {
	f := NewFrame("a")
	require.NoError(t, f.Append(Row{Number(1)}))

	c := f.Clone()
	c.Rows[0][0] = Number(2)

	assert.Equal(t, 1.0, f.Rows[0][0].Num)
}

func TestMonthlyTable_At(t *testing.T) {
	jan := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)
	table := &MonthlyTable{
		Months:  []time.Time{jan},
		Columns: []string{ColumnHospitalizationsTotal},
		Values:  [][]float64{{3}},
	}

	got, ok := table.At(jan, ColumnHospitalizationsTotal)
	require.True(t, ok)
	assert.Equal(t, 3.0, got)

	_, ok = table.At(jan, "absent")
	assert.False(t, ok)
	_, ok = table.At(jan.AddDate(0, 1, 0), ColumnHospitalizationsTotal)
	assert.False(t, ok)
}

func TestValue_String(t *testing.T) {
	assert.Equal(t, "", Missing().String())
	assert.Equal(t, "1.5", Number(1.5).String())
	assert.Equal(t, "abc", Text("abc").String())
	assert.Equal(t, "2024-01-31",
		Timestamp(time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)).String())
}
