package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"mayadmin/internal/core"
	"mayadmin/internal/types"
)

// SupportRepo defines the data access contract for the support request list.
type SupportRepo interface {
	List(ctx context.Context, params types.ListParams) (types.Page[types.SupportRequest], error)
}

// SupportHandler serves the support request list.
type SupportHandler struct {
	repo   SupportRepo
	logger *slog.Logger
}

// NewSupportHandler creates a SupportHandler.
func NewSupportHandler(repo SupportRepo, logger *slog.Logger) *SupportHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &SupportHandler{repo: repo, logger: logger}
}

// RegisterRoutes mounts the support request endpoints.
func (h *SupportHandler) RegisterRoutes(r chi.Router) {
	r.Get("/support-requests", h.List)
}

// List handles GET /v1/support-requests.
func (h *SupportHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := h.repo.List(r.Context(), parseListParams(r))
	if err != nil {
		core.Error(w, r, err)
		return
	}
	core.JSON(w, r, http.StatusOK, page)
}
