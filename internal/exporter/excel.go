package exporter

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"airhealth/pkg/contracts/domain"
)

const monthlySheet = "Monthly"

// ExcelWriter exports monthly tables as .xlsx workbooks for analyst
// hand-off.
type ExcelWriter struct {
	logger *slog.Logger
}

// NewExcelWriter creates a new Excel writer instance.
func NewExcelWriter(logger *slog.Logger) *ExcelWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExcelWriter{logger: logger}
}

// WriteMonthly writes the merged monthly table to an xlsx workbook
// with one sheet, month keys in the first column.
func (w *ExcelWriter) WriteMonthly(path string, table *domain.MonthlyTable) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(monthlySheet)
	if err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	if err := setCell(f, 1, 1, "month"); err != nil {
		return err
	}
	for j, col := range table.Columns {
		if err := setCell(f, 1, j+2, col); err != nil {
			return err
		}
	}

	for i, month := range table.Months {
		if err := setCell(f, i+2, 1, month.Format(monthKeyLayout)); err != nil {
			return err
		}
		for j, v := range table.Values[i] {
			if err := setCell(f, i+2, j+2, v); err != nil {
				return err
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}

	w.logger.Info("monthly workbook written",
		slog.String("path", path),
		slog.Int("months", table.Len()))
	return nil
}

func setCell(f *excelize.File, row, col int, value interface{}) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return fmt.Errorf("failed to compute cell name: %w", err)
	}
	if err := f.SetCellValue(monthlySheet, cell, value); err != nil {
		return fmt.Errorf("failed to set cell %s: %w", cell, err)
	}
	return nil
}
