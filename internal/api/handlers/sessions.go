package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"mayadmin/internal/core"
	"mayadmin/internal/types"
)

// SessionRepo defines the data access contract for the session list view.
type SessionRepo interface {
	List(ctx context.Context, params types.ListParams) (types.Page[types.Session], error)
}

// SessionHandler serves the session list.
type SessionHandler struct {
	repo   SessionRepo
	logger *slog.Logger
}

// NewSessionHandler creates a SessionHandler.
func NewSessionHandler(repo SessionRepo, logger *slog.Logger) *SessionHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionHandler{repo: repo, logger: logger}
}

// RegisterRoutes mounts the session endpoints.
func (h *SessionHandler) RegisterRoutes(r chi.Router) {
	r.Get("/sessions", h.List)
}

// List handles GET /v1/sessions.
func (h *SessionHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := h.repo.List(r.Context(), parseListParams(r))
	if err != nil {
		core.Error(w, r, err)
		return
	}
	core.JSON(w, r, http.StatusOK, page)
}
