package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"mayadmin/internal/core"
	"mayadmin/internal/types"
)

// DeviceRepo defines the data access contract for device operations used by
// the device handler.
type DeviceRepo interface {
	List(ctx context.Context, params types.ListParams) (types.Page[types.Device], error)
	Promote(ctx context.Context, deviceID string) error
}

// AliasRepo lists the human-readable device name mappings.
type AliasRepo interface {
	List(ctx context.Context) ([]types.DeviceAlias, error)
}

// PromoteRequest is the request body for POST /v1/devices/promote.
type PromoteRequest struct {
	DeviceID string `json:"device_id" validate:"required"`
}

// PromoteResponse confirms a successful promotion.
type PromoteResponse struct {
	Success  bool   `json:"success"`
	DeviceID string `json:"device_id"`
}

// DeviceMapResponse is the body of GET /v1/device-map.
type DeviceMapResponse struct {
	Data  []types.DeviceAlias `json:"data"`
	Count int                 `json:"count"`
}

// DeviceHandler serves the device list, the device-name map, and the promote
// mutation.
type DeviceHandler struct {
	repo      DeviceRepo
	aliases   AliasRepo
	validator *core.Validator
	logger    *slog.Logger
}

// NewDeviceHandler creates a DeviceHandler.
func NewDeviceHandler(repo DeviceRepo, aliases AliasRepo, v *core.Validator, logger *slog.Logger) *DeviceHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &DeviceHandler{
		repo:      repo,
		aliases:   aliases,
		validator: v,
		logger:    logger,
	}
}

// RegisterRoutes mounts the device endpoints.
func (h *DeviceHandler) RegisterRoutes(r chi.Router) {
	r.Route("/devices", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/promote", h.Promote)
	})
	r.Get("/device-map", h.DeviceMap)
}

// List handles GET /v1/devices.
func (h *DeviceHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := h.repo.List(r.Context(), parseListParams(r))
	if err != nil {
		core.Error(w, r, err)
		return
	}
	core.JSON(w, r, http.StatusOK, page)
}

// Promote handles POST /v1/devices/promote. The device moves to the premium
// tier; the transition is one-way.
func (h *DeviceHandler) Promote(w http.ResponseWriter, r *http.Request) {
	var req PromoteRequest
	if err := core.DecodeJSON(w, r, &req); err != nil {
		core.Error(w, r, err)
		return
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		core.Error(w, r, err)
		return
	}

	if err := h.repo.Promote(r.Context(), req.DeviceID); err != nil {
		core.Error(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "device promoted to premium", "device_id", req.DeviceID)
	core.JSON(w, r, http.StatusOK, PromoteResponse{Success: true, DeviceID: req.DeviceID})
}

// DeviceMap handles GET /v1/device-map.
func (h *DeviceHandler) DeviceMap(w http.ResponseWriter, r *http.Request) {
	aliases, err := h.aliases.List(r.Context())
	if err != nil {
		core.Error(w, r, err)
		return
	}
	core.JSON(w, r, http.StatusOK, DeviceMapResponse{Data: aliases, Count: len(aliases)})
}
