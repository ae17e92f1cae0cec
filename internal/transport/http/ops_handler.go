package http

import (
	"log/slog"
	"net/http"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "freightpulse/internal/errors"
	"freightpulse/internal/services"
)

// ReportExporter writes an xlsx weekly report and returns its path.
type ReportExporter interface {
	ExportWeeklyReport(snapshot *services.Snapshot, week time.Time) (string, error)
}

// OpsHandler serves the operational endpoints: snapshot refresh,
// upstream connectivity test, and report export.
type OpsHandler struct {
	service      *services.DashboardService
	exporter     ReportExporter
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewOpsHandler creates an ops handler.
func NewOpsHandler(service *services.DashboardService, exporter ReportExporter, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *OpsHandler {
	return &OpsHandler{
		service:      service,
		exporter:     exporter,
		logger:       logger.With(slog.String("component", "ops_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the ops routes.
func (h *OpsHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Post("/refresh", h.Refresh)
	r.Get("/connection", h.TestConnection)
	r.Post("/export", h.ExportReport)

	return r
}

// Refresh handles POST /api/ops/refresh by pulling a full snapshot from
// the TMS and recomputing every derived table.
func (h *OpsHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.service.Refresh(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.NewWithDetails(
			http.StatusBadGateway,
			"REFRESH_FAILED",
			"TMS snapshot refresh failed",
			err.Error(),
		))
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data": map[string]interface{}{
			"run_id":     snapshot.RunID,
			"fetched_at": snapshot.FetchedAt,
			"load_count": snapshot.LoadCount,
		},
	})
}

// TestConnection handles GET /api/ops/connection.
func (h *OpsHandler) TestConnection(w http.ResponseWriter, r *http.Request) {
	status := h.service.TestConnection(r.Context())
	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   status,
	})
}

// ExportReport handles POST /api/ops/export?week=YYYY-MM-DD, writing the
// weekly xlsx report to the configured reports directory.
func (h *OpsHandler) ExportReport(w http.ResponseWriter, r *http.Request) {
	snapshot := h.service.Current()
	if snapshot == nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrSnapshotMissing)
		return
	}

	var week time.Time
	if raw := r.URL.Query().Get("week"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			h.errorHandler.HandleError(w, r, apierrors.ErrValidation("week", "must be a date in YYYY-MM-DD form"))
			return
		}
		week = parsed
	} else {
		weeks, err := h.service.AvailableWeeks(r.Context())
		if err != nil || len(weeks) == 0 {
			h.errorHandler.HandleError(w, r, apierrors.NotFoundError("week"))
			return
		}
		week = weeks[0]
	}

	path, err := h.exporter.ExportWeeklyReport(snapshot, week)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "report export failed",
			slog.String("error", err.Error()),
			slog.String("week", week.Format("2006-01-02")),
		)
		h.errorHandler.HandleError(w, r, apierrors.NewWithDetails(
			http.StatusInternalServerError,
			"EXPORT_FAILED",
			"Weekly report export failed",
			err.Error(),
		))
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data": map[string]interface{}{
			"path": path,
			"file": filepath.Base(path),
			"week": week.Format("2006-01-02"),
		},
	})
}
