package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"mayadmin/internal/core"
	"mayadmin/internal/payments"
	"mayadmin/internal/types"
)

// PaymentService defines the payment operations used by the payment handler.
type PaymentService interface {
	ListPaginated(ctx context.Context, params types.ListParams) (types.Page[types.Payment], error)
	Stats(ctx context.Context, dateRange types.DateRange) (payments.Stats, error)
	PaidFreeUsers(ctx context.Context, forceRefresh bool) ([]payments.PaidFreePayment, error)
	SubscriptionsByDevice(ctx context.Context, forceRefresh bool) (map[string]types.DeviceSubscription, error)
	ClearCache()
}

// PaidFreeResponse is the body of GET /v1/payments/paid-free.
type PaidFreeResponse struct {
	Data  []payments.PaidFreePayment `json:"data"`
	Count int                        `json:"count"`
}

// SubscriptionsResponse is the body of GET /v1/subscriptions.
type SubscriptionsResponse struct {
	Data  map[string]types.DeviceSubscription `json:"data"`
	Count int                                 `json:"count"`
}

// PaymentHandler serves the payment views backed by the provider cache.
type PaymentHandler struct {
	svc    PaymentService
	logger *slog.Logger
}

// NewPaymentHandler creates a PaymentHandler.
func NewPaymentHandler(svc PaymentService, logger *slog.Logger) *PaymentHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &PaymentHandler{svc: svc, logger: logger}
}

// RegisterRoutes mounts the payment and subscription endpoints.
func (h *PaymentHandler) RegisterRoutes(r chi.Router) {
	r.Route("/payments", func(r chi.Router) {
		r.Get("/", h.List)
		r.Get("/stats", h.Stats)
		r.Get("/paid-free", h.PaidFree)
		r.Post("/cache/clear", h.ClearCache)
	})
	r.Get("/subscriptions", h.Subscriptions)
}

// List handles GET /v1/payments.
func (h *PaymentHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := h.svc.ListPaginated(r.Context(), parseListParams(r))
	if err != nil {
		core.Error(w, r, err)
		return
	}
	core.JSON(w, r, http.StatusOK, page)
}

// Stats handles GET /v1/payments/stats?date_range=.
func (h *PaymentHandler) Stats(w http.ResponseWriter, r *http.Request) {
	dateRange := types.ParseDateRange(r.URL.Query().Get("date_range"))

	stats, err := h.svc.Stats(r.Context(), dateRange)
	if err != nil {
		core.Error(w, r, err)
		return
	}
	core.JSON(w, r, http.StatusOK, stats)
}

// PaidFree handles GET /v1/payments/paid-free?refresh=true.
func (h *PaymentHandler) PaidFree(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.PaidFreeUsers(r.Context(), parseRefresh(r))
	if err != nil {
		core.Error(w, r, err)
		return
	}
	core.JSON(w, r, http.StatusOK, PaidFreeResponse{Data: result, Count: len(result)})
}

// ClearCache handles POST /v1/payments/cache/clear.
func (h *PaymentHandler) ClearCache(w http.ResponseWriter, r *http.Request) {
	h.svc.ClearCache()
	h.logger.InfoContext(r.Context(), "payment caches cleared")
	w.WriteHeader(http.StatusNoContent)
}

// Subscriptions handles GET /v1/subscriptions?refresh=true.
func (h *PaymentHandler) Subscriptions(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.SubscriptionsByDevice(r.Context(), parseRefresh(r))
	if err != nil {
		core.Error(w, r, err)
		return
	}
	core.JSON(w, r, http.StatusOK, SubscriptionsResponse{Data: result, Count: len(result)})
}
