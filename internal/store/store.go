package store

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"airhealth/internal/config"
	apperrors "airhealth/internal/errors"
	"airhealth/pkg/contracts/domain"
)

// Raw file naming, one trio per period.
const (
	airQualityFilePattern       = "air_quality_%s.csv"
	hospitalizationsFilePattern = "hospitalizations_%s.csv"
	hospitalizationsJPPattern   = "hospitalizations_jp_%s.csv"
)

// Store persists raw record sets and the processed monthly table as
// flat CSV files under the configured data directories.
type Store struct {
	paths  *config.PathsConfig
	logger *slog.Logger
}

// NewStore creates a new store over the configured paths.
func NewStore(paths *config.PathsConfig, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{paths: paths, logger: logger}
}

// AirQualityPath returns the raw air-quality CSV location for a period
// in YYYY-MM form.
func (s *Store) AirQualityPath(period string) string {
	return s.paths.RawPath(fmt.Sprintf(airQualityFilePattern, period))
}

// HospitalizationsPath returns the raw all-cause admissions CSV
// location for a period.
func (s *Store) HospitalizationsPath(period string) string {
	return s.paths.RawPath(fmt.Sprintf(hospitalizationsFilePattern, period))
}

// HospitalizationsJPPath returns the raw filtered-subset admissions
// CSV location for a period.
func (s *Store) HospitalizationsJPPath(period string) string {
	return s.paths.RawPath(fmt.Sprintf(hospitalizationsJPPattern, period))
}

// SaveFrame writes a record set as CSV. Missing cells become empty
// fields.
func (s *Store) SaveFrame(path string, frame *domain.Frame) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return apperrors.NewStorageError("failed to create directory for record set", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return apperrors.NewStorageError("failed to create record set file", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write(frame.Columns); err != nil {
		return apperrors.NewStorageError("failed to write CSV header row", err)
	}
	for _, row := range frame.Rows {
		record := make([]string, len(row))
		for i, v := range row {
			record[i] = v.String()
		}
		if err := writer.Write(record); err != nil {
			return apperrors.NewStorageError("failed to write CSV data row", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return apperrors.NewStorageError("failed to flush record set file", err)
	}

	s.logger.Info("record set saved",
		slog.String("path", path),
		slog.Int("rows", frame.Len()))
	return nil
}

// LoadFrame reads a record set from CSV with type inference: empty
// fields are missing, numeric fields become numbers, everything else
// stays text. Dates stay text until the cleaner parses them.
func (s *Store) LoadFrame(path string) (*domain.Frame, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, apperrors.NewStorageError("failed to open record set file", err).
			WithContext("path", path)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, apperrors.NewParsingError("failed to read record set CSV", err).
			WithContext("path", path)
	}
	if len(records) == 0 {
		return domain.NewFrame(), nil
	}

	frame := domain.NewFrame(records[0]...)
	for _, record := range records[1:] {
		row := make(domain.Row, len(record))
		for i, field := range record {
			row[i] = inferValue(field)
		}
		if err := frame.Append(row); err != nil {
			return nil, apperrors.NewParsingError("malformed record set CSV", err).
				WithContext("path", path)
		}
	}

	s.logger.Debug("record set loaded",
		slog.String("path", path),
		slog.Int("rows", frame.Len()))
	return frame, nil
}

// inferValue coerces a CSV field into the narrowest Value kind.
func inferValue(field string) domain.Value {
	if field == "" {
		return domain.Missing()
	}
	if n, err := strconv.ParseFloat(field, 64); err == nil {
		return domain.Number(n)
	}
	return domain.Text(field)
}
