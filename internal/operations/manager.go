package operations

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"sync"

	"airhealth/internal/config"
	apperrors "airhealth/internal/errors"
	"airhealth/internal/exporter"
	"airhealth/internal/pipeline"
	"airhealth/internal/store"
	"airhealth/pkg/contracts/domain"
)

// periodPattern is the YYYY-MM form every entry point requires. The
// period is always explicit; nothing in the pipeline consults the
// clock.
var periodPattern = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)

// Source supplies the three raw record sets for a period. The fetch
// client implements it; tests substitute their own.
type Source interface {
	AirQuality(ctx context.Context, period string) (*domain.Frame, error)
	Hospitalizations(ctx context.Context, period string) (*domain.Frame, error)
	HospitalizationsFiltered(ctx context.Context, period string) (*domain.Frame, error)
}

// Manager orchestrates one period's pipeline: fetch → store raw →
// clean ×3 → aggregate → export. Runs are serialized; each run
// operates on its own freshly-loaded record sets.
type Manager struct {
	source     Source
	store      *store.Store
	cleaner    *pipeline.Cleaner
	aggregator *pipeline.Aggregator
	csv        *exporter.CSVWriter
	excel      *exporter.ExcelWriter
	paths      *config.PathsConfig
	logger     *slog.Logger

	runMu sync.Mutex
}

// NewManager wires the pipeline components together.
func NewManager(source Source, st *store.Store, paths *config.PathsConfig, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		source:     source,
		store:      st,
		cleaner:    pipeline.NewCleaner(logger),
		aggregator: pipeline.NewAggregator(logger),
		csv:        exporter.NewCSVWriter(logger),
		excel:      exporter.NewExcelWriter(logger),
		paths:      paths,
		logger:     logger,
	}
}

// ValidatePeriod checks the YYYY-MM period format.
func ValidatePeriod(period string) error {
	if !periodPattern.MatchString(period) {
		return apperrors.NewValidationError(
			fmt.Sprintf("invalid period %q, want YYYY-MM", period))
	}
	return nil
}

// Run executes the full pipeline for one period and returns the merged
// monthly table.
func (m *Manager) Run(ctx context.Context, period string) (*domain.MonthlyTable, error) {
	if err := ValidatePeriod(period); err != nil {
		return nil, err
	}

	m.runMu.Lock()
	defer m.runMu.Unlock()

	m.logger.InfoContext(ctx, "pipeline run starting", slog.String("period", period))

	if err := m.fetch(ctx, period); err != nil {
		return nil, err
	}
	return m.process(ctx, period)
}

// Fetch retrieves the three raw record sets for a period and persists
// them under the raw data dir without processing them.
func (m *Manager) Fetch(ctx context.Context, period string) error {
	if err := ValidatePeriod(period); err != nil {
		return err
	}
	m.runMu.Lock()
	defer m.runMu.Unlock()
	return m.fetch(ctx, period)
}

// Process cleans and aggregates previously fetched raw record sets for
// a period and exports the merged monthly table.
func (m *Manager) Process(ctx context.Context, period string) (*domain.MonthlyTable, error) {
	if err := ValidatePeriod(period); err != nil {
		return nil, err
	}
	m.runMu.Lock()
	defer m.runMu.Unlock()
	return m.process(ctx, period)
}

func (m *Manager) fetch(ctx context.Context, period string) error {
	return m.runStep(ctx, NewStepState("fetch", "Fetch raw record sets"), func() error {
		air, err := m.source.AirQuality(ctx, period)
		if err != nil {
			return fmt.Errorf("fetch air quality: %w", err)
		}
		allHosp, err := m.source.Hospitalizations(ctx, period)
		if err != nil {
			return fmt.Errorf("fetch hospitalizations: %w", err)
		}
		filtered, err := m.source.HospitalizationsFiltered(ctx, period)
		if err != nil {
			return fmt.Errorf("fetch filtered hospitalizations: %w", err)
		}

		if err := m.store.SaveFrame(m.store.AirQualityPath(period), air); err != nil {
			return err
		}
		if err := m.store.SaveFrame(m.store.HospitalizationsPath(period), allHosp); err != nil {
			return err
		}
		return m.store.SaveFrame(m.store.HospitalizationsJPPath(period), filtered)
	})
}

func (m *Manager) process(ctx context.Context, period string) (*domain.MonthlyTable, error) {
	var air, allHosp, filtered *domain.Frame
	err := m.runStep(ctx, NewStepState("clean", "Clean record sets"), func() error {
		rawAir, err := m.store.LoadFrame(m.store.AirQualityPath(period))
		if err != nil {
			return err
		}
		rawAll, err := m.store.LoadFrame(m.store.HospitalizationsPath(period))
		if err != nil {
			return err
		}
		rawFiltered, err := m.store.LoadFrame(m.store.HospitalizationsJPPath(period))
		if err != nil {
			return err
		}

		if air, err = m.cleaner.Clean(ctx, rawAir, pipeline.AirDateColumn); err != nil {
			return fmt.Errorf("clean air quality: %w", err)
		}
		if allHosp, err = m.cleaner.Clean(ctx, rawAll, pipeline.HospitalizationDateColumn); err != nil {
			return fmt.Errorf("clean hospitalizations: %w", err)
		}
		if filtered, err = m.cleaner.Clean(ctx, rawFiltered, pipeline.HospitalizationDateColumn); err != nil {
			return fmt.Errorf("clean filtered hospitalizations: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	var table *domain.MonthlyTable
	err = m.runStep(ctx, NewStepState("aggregate", "Aggregate monthly"), func() error {
		var err error
		table, err = m.aggregator.AggregateMonthly(ctx, air, allHosp, filtered)
		return err
	})
	if err != nil {
		return nil, err
	}

	err = m.runStep(ctx, NewStepState("export", "Export merged table"), func() error {
		if err := m.csv.WriteMonthly(m.store.MonthlyPath(), table, exporter.WriteOptions{BOMPrefix: true}); err != nil {
			return err
		}
		return m.excel.WriteMonthly(m.paths.ProcessedPath("merged_monthly.xlsx"), table)
	})
	if err != nil {
		return nil, err
	}

	return table, nil
}

// runStep executes fn with step state tracking and timing.
func (m *Manager) runStep(ctx context.Context, state *StepState, fn func() error) error {
	state.Start()
	m.logger.InfoContext(ctx, "step started",
		slog.String("step", state.ID))

	if err := fn(); err != nil {
		state.Fail(err)
		m.logger.ErrorContext(ctx, "step failed",
			slog.String("step", state.ID),
			slog.Duration("duration", state.Duration()),
			slog.String("error", err.Error()))
		return err
	}

	state.Complete()
	m.logger.InfoContext(ctx, "step completed",
		slog.String("step", state.ID),
		slog.Duration("duration", state.Duration()))
	return nil
}
