package exporter

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"airhealth/pkg/contracts/domain"
)

func sampleTable() *domain.MonthlyTable {
	return &domain.MonthlyTable{
		Months: []time.Time{
			time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
			time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC),
		},
		Columns: []string{"air_pm25", domain.ColumnHospitalizationsTotal, domain.ColumnHospitalizationsJP},
		Values: [][]float64{
			{20, 2, 1},
			{0, 5, 0},
		},
	}
}

func TestCSVWriter_WriteMonthly(t *testing.T) {
	w := NewCSVWriter(slog.Default())
	path := filepath.Join(t.TempDir(), "processed", "merged_monthly.csv")

	require.NoError(t, w.WriteMonthly(path, sampleTable(), WriteOptions{}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	want := "month,air_pm25,hospitalizations_total,hospitalizations_jp\n" +
		"2024-01-31,20,2,1\n" +
		"2024-02-29,0,5,0\n"
	assert.Equal(t, want, string(data))
}

func TestCSVWriter_WriteMonthly_BOM(t *testing.T) {
	w := NewCSVWriter(slog.Default())
	path := filepath.Join(t.TempDir(), "merged_monthly.csv")

	require.NoError(t, w.WriteMonthly(path, sampleTable(), WriteOptions{BOMPrefix: true}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.True(t, len(data) > 3)
	assert.Equal(t, []byte{0xEF, 0xBB, 0xBF}, data[:3])
}

func TestCSVWriter_WriteMonthly_EmptyTable(t *testing.T) {
	w := NewCSVWriter(slog.Default())
	path := filepath.Join(t.TempDir(), "merged_monthly.csv")

	empty := &domain.MonthlyTable{
		Columns: []string{domain.ColumnHospitalizationsTotal, domain.ColumnHospitalizationsJP},
	}
	require.NoError(t, w.WriteMonthly(path, empty, WriteOptions{}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "month,hospitalizations_total,hospitalizations_jp\n", string(data))
}

func TestExcelWriter_WriteMonthly(t *testing.T) {
	w := NewExcelWriter(slog.Default())
	path := filepath.Join(t.TempDir(), "merged_monthly.xlsx")

	require.NoError(t, w.WriteMonthly(path, sampleTable()))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}
