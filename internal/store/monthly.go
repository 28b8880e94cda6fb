package store

import (
	"encoding/csv"
	"os"
	"strconv"
	"strings"
	"time"

	apperrors "airhealth/internal/errors"
	"airhealth/pkg/contracts/domain"
)

// MergedMonthlyFile is the processed output the analysts consume.
const MergedMonthlyFile = "merged_monthly.csv"

const monthKeyLayout = "2006-01-02"

// MonthlyPath returns the processed merged monthly CSV location.
func (s *Store) MonthlyPath() string {
	return s.paths.ProcessedPath(MergedMonthlyFile)
}

// LoadMonthly reads a previously exported monthly table back from CSV.
// The HTTP API serves tables through this.
func (s *Store) LoadMonthly(path string) (*domain.MonthlyTable, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.NewNotFoundError("monthly table").WithContext("path", path)
		}
		return nil, apperrors.NewStorageError("failed to open monthly table", err).
			WithContext("path", path)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, apperrors.NewParsingError("failed to read monthly table CSV", err).
			WithContext("path", path)
	}
	if len(records) == 0 {
		return nil, apperrors.NewParsingError("monthly table CSV has no header", nil).
			WithContext("path", path)
	}

	header := records[0]
	if len(header) > 0 {
		// Exported files carry a UTF-8 BOM for Excel.
		header[0] = strings.TrimPrefix(header[0], "\uFEFF")
	}
	if len(header) < 1 || header[0] != "month" {
		return nil, apperrors.NewParsingError("monthly table CSV missing month column", nil).
			WithContext("path", path)
	}

	table := &domain.MonthlyTable{
		Columns: append([]string(nil), header[1:]...),
	}
	for _, record := range records[1:] {
		month, err := time.Parse(monthKeyLayout, record[0])
		if err != nil {
			return nil, apperrors.NewParsingError("invalid month key in monthly table", err).
				WithContext("value", record[0])
		}
		row := make([]float64, len(record)-1)
		for i, field := range record[1:] {
			n, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, apperrors.NewParsingError("invalid cell in monthly table", err).
					WithContext("value", field)
			}
			row[i] = n
		}
		table.Months = append(table.Months, month)
		table.Values = append(table.Values, row)
	}
	return table, nil
}
