package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"mayadmin/internal/core"
	"mayadmin/internal/istime"
	"mayadmin/internal/stats"
)

// StatsService provides the dashboard aggregates.
type StatsService interface {
	Summary(ctx context.Context) (stats.Summary, error)
	Daily(ctx context.Context, days int) (stats.DailyReport, error)
}

// DeviceStatsRepo is the subset of the device repository used by the
// per-metric stat endpoints.
type DeviceStatsRepo interface {
	Count(ctx context.Context) (int, error)
	CountCreatedSince(ctx context.Context, ts int64) (int, error)
	CountPremium(ctx context.Context) (int, error)
}

// DeviceStatsResponse is the body of GET /v1/stats/devices.
type DeviceStatsResponse struct {
	Total int `json:"total"`
	Today int `json:"today"`
}

// PremiumStatsResponse is the body of GET /v1/stats/premium.
type PremiumStatsResponse struct {
	Total int `json:"total"`
}

// StatsHandler serves the dashboard statistics endpoints.
type StatsHandler struct {
	stats   StatsService
	devices DeviceStatsRepo
	logger  *slog.Logger
	nowFn   func() time.Time
}

// NewStatsHandler creates a StatsHandler.
func NewStatsHandler(statsSvc StatsService, devices DeviceStatsRepo, logger *slog.Logger) *StatsHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &StatsHandler{
		stats:   statsSvc,
		devices: devices,
		logger:  logger,
		nowFn:   time.Now,
	}
}

// RegisterRoutes mounts the stats endpoints.
func (h *StatsHandler) RegisterRoutes(r chi.Router) {
	r.Route("/stats", func(r chi.Router) {
		r.Get("/", h.Summary)
		r.Get("/devices", h.Devices)
		r.Get("/premium", h.Premium)
		r.Get("/daily", h.Daily)
	})
}

// Summary handles GET /v1/stats.
func (h *StatsHandler) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.stats.Summary(r.Context())
	if err != nil {
		core.Error(w, r, err)
		return
	}
	core.JSON(w, r, http.StatusOK, summary)
}

// Devices handles GET /v1/stats/devices.
func (h *StatsHandler) Devices(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	total, err := h.devices.Count(ctx)
	if err != nil {
		core.Error(w, r, err)
		return
	}
	today, err := h.devices.CountCreatedSince(ctx, istime.StartOfDay(h.nowFn(), 0))
	if err != nil {
		core.Error(w, r, err)
		return
	}

	core.JSON(w, r, http.StatusOK, DeviceStatsResponse{Total: total, Today: today})
}

// Premium handles GET /v1/stats/premium.
func (h *StatsHandler) Premium(w http.ResponseWriter, r *http.Request) {
	total, err := h.devices.CountPremium(r.Context())
	if err != nil {
		core.Error(w, r, err)
		return
	}
	core.JSON(w, r, http.StatusOK, PremiumStatsResponse{Total: total})
}

// Daily handles GET /v1/stats/daily?days=N.
func (h *StatsHandler) Daily(w http.ResponseWriter, r *http.Request) {
	days, err := parseDays(r)
	if err != nil {
		core.Error(w, r, err)
		return
	}

	report, err := h.stats.Daily(r.Context(), days)
	if err != nil {
		core.Error(w, r, err)
		return
	}
	core.JSON(w, r, http.StatusOK, report)
}
