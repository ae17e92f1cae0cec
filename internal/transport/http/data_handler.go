package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "freightpulse/internal/errors"
	"freightpulse/internal/infrastructure"
	"freightpulse/internal/services"
)

// DataHandler serves the dashboard query endpoints.
type DataHandler struct {
	service      *services.DashboardService
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewDataHandler creates a data handler.
func NewDataHandler(service *services.DashboardService, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *DataHandler {
	return &DataHandler{
		service:      service,
		logger:       logger.With(slog.String("component", "data_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the data routes.
func (h *DataHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/weeks", h.GetWeeks)
	r.Get("/weekly", h.GetWeekly)
	r.Get("/monthly", h.GetMonthly)
	r.Get("/kpi", h.GetWeekKPI)
	r.Get("/trends", h.GetTrends)
	r.Get("/lane-risk", h.GetLaneRisk)
	r.Get("/cargo-owners", h.GetCargoOwners)
	r.Get("/risk-flags", h.GetRiskFlags)

	return r
}

// weekParam resolves the "week" query parameter, defaulting to the most
// recent week in the snapshot when absent.
func (h *DataHandler) weekParam(r *http.Request) (time.Time, error) {
	raw := r.URL.Query().Get("week")
	if raw != "" {
		week, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return time.Time{}, apierrors.ErrValidation("week", "must be a date in YYYY-MM-DD form")
		}
		return week, nil
	}

	weeks, err := h.service.AvailableWeeks(r.Context())
	if err != nil {
		return time.Time{}, err
	}
	if len(weeks) == 0 {
		return time.Time{}, apierrors.NotFoundError("week")
	}
	return weeks[0], nil
}

func (h *DataHandler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, services.ErrNoSnapshot) {
		h.errorHandler.HandleError(w, r, apierrors.ErrSnapshotMissing)
		return
	}
	h.errorHandler.HandleError(w, r, err)
}

// GetWeeks handles GET /api/data/weeks.
func (h *DataHandler) GetWeeks(w http.ResponseWriter, r *http.Request) {
	weeks, err := h.service.AvailableWeeks(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	formatted := make([]string, len(weeks))
	for i, wk := range weeks {
		formatted[i] = wk.Format("2006-01-02")
	}
	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   formatted,
		"count":  len(formatted),
	})
}

// GetWeekly handles GET /api/data/weekly.
func (h *DataHandler) GetWeekly(w http.ResponseWriter, r *http.Request) {
	rows, err := h.service.WeeklyAggregates(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   rows,
		"count":  len(rows),
	})
}

// GetMonthly handles GET /api/data/monthly.
func (h *DataHandler) GetMonthly(w http.ResponseWriter, r *http.Request) {
	rows, err := h.service.MonthlyAggregates(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   rows,
		"count":  len(rows),
	})
}

// GetWeekKPI handles GET /api/data/kpi?week=YYYY-MM-DD.
func (h *DataHandler) GetWeekKPI(w http.ResponseWriter, r *http.Request) {
	week, err := h.weekParam(r)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	kpi, err := h.service.WeekKPI(r.Context(), week)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   kpi,
	})
}

// GetTrends handles GET /api/data/trends?last=N.
func (h *DataHandler) GetTrends(w http.ResponseWriter, r *http.Request) {
	lastN := 12
	if raw := r.URL.Query().Get("last"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			h.errorHandler.HandleError(w, r, apierrors.ErrValidation("last", "must be a positive integer"))
			return
		}
		lastN = n
	}

	series, err := h.service.Trends(r.Context(), lastN)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   series,
	})
}

// GetLaneRisk handles GET /api/data/lane-risk?week=YYYY-MM-DD.
func (h *DataHandler) GetLaneRisk(w http.ResponseWriter, r *http.Request) {
	week, err := h.weekParam(r)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	lanes, err := h.service.LaneRisk(r.Context(), week)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   lanes,
		"count":  len(lanes),
		"week":   week.Format("2006-01-02"),
	})
}

// GetCargoOwners handles GET /api/data/cargo-owners?week=YYYY-MM-DD.
func (h *DataHandler) GetCargoOwners(w http.ResponseWriter, r *http.Request) {
	week, err := h.weekParam(r)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	owners, err := h.service.CargoOwners(r.Context(), week)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   owners,
		"count":  len(owners),
		"week":   week.Format("2006-01-02"),
	})
}

// GetRiskFlags handles GET /api/data/risk-flags?week=YYYY-MM-DD.
func (h *DataHandler) GetRiskFlags(w http.ResponseWriter, r *http.Request) {
	reqID := infrastructure.GetTraceID(r.Context())

	week, err := h.weekParam(r)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	flags, err := h.service.RiskFlags(r.Context(), week)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to compute risk flags",
			slog.String("error", err.Error()),
			slog.String("request_id", reqID),
		)
		h.handleServiceError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "risk flags computed",
		slog.String("request_id", reqID),
		slog.String("week", week.Format("2006-01-02")),
		slog.Int("flagged", len(flags)),
	)
	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   flags,
		"count":  len(flags),
		"week":   week.Format("2006-01-02"),
	})
}
