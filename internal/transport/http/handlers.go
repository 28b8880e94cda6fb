package http

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	apierrors "airhealth/internal/errors"
	"airhealth/internal/middleware"
	"airhealth/internal/operations"
	"airhealth/internal/store"
)

// Handler serves the merged monthly table and triggers pipeline runs.
type Handler struct {
	manager  *operations.Manager
	store    *store.Store
	logger   *slog.Logger
	validate *validator.Validate
}

// NewHandler creates the API handler.
func NewHandler(manager *operations.Manager, st *store.Store, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		manager:  manager,
		store:    st,
		logger:   logger.With(slog.String("component", "api_handler")),
		validate: validator.New(),
	}
}

// HealthCheck handles GET /api/health.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// GetMonthly handles GET /api/monthly: the latest merged monthly table.
func (h *Handler) GetMonthly(w http.ResponseWriter, r *http.Request) {
	table, err := h.store.LoadMonthly(h.store.MonthlyPath())
	if err != nil {
		var appErr *apierrors.AppError
		if errors.As(err, &appErr) && appErr.Type == apierrors.ErrTypeNotFound {
			render.Render(w, r, apierrors.NewErrorResponse(apierrors.NotFoundError("monthly table")))
			return
		}
		h.logger.ErrorContext(r.Context(), "failed to load monthly table",
			slog.String("error", err.Error()))
		render.Render(w, r, apierrors.NewErrorResponse(apierrors.ErrInternalServer))
		return
	}
	render.JSON(w, r, table)
}

// RunRequest is the POST /api/operations/run body.
type RunRequest struct {
	Month string `json:"month" validate:"required,len=7"`
}

// Bind implements render.Binder.
func (req *RunRequest) Bind(r *http.Request) error {
	return nil
}

// RunPipeline handles POST /api/operations/run: executes the whole
// fetch → clean → aggregate → export pipeline for the requested month.
func (h *Handler) RunPipeline(w http.ResponseWriter, r *http.Request) {
	req := &RunRequest{}
	if err := render.Bind(r, req); err != nil {
		render.Render(w, r, apierrors.NewErrorResponse(apierrors.ErrInvalidRequest))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		render.Render(w, r, apierrors.NewErrorResponse(apierrors.ErrValidation("month", "month is required in YYYY-MM form")))
		return
	}
	if err := operations.ValidatePeriod(req.Month); err != nil {
		render.Render(w, r, apierrors.NewErrorResponse(apierrors.ErrValidation("month", err.Error())))
		return
	}

	table, err := h.manager.Run(r.Context(), req.Month)
	if err != nil {
		middleware.PipelineRuns.WithLabelValues("failure").Inc()
		h.logger.ErrorContext(r.Context(), "pipeline run failed",
			slog.String("period", req.Month),
			slog.String("error", err.Error()))
		render.Render(w, r, apierrors.NewErrorResponse(apierrors.RunFailedError(err)))
		return
	}
	middleware.PipelineRuns.WithLabelValues("success").Inc()

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, map[string]interface{}{
		"success": true,
		"period":  req.Month,
		"months":  table.Len(),
		"columns": table.Columns,
	})
}
