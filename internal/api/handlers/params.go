// Package handlers contains the HTTP handler implementations for the Maya
// admin dashboard API: dashboard statistics, entity list views, the payment
// views, and the single mutation (promoting a device to premium).
package handlers

import (
	"net/http"
	"strconv"

	"mayadmin/internal/types"
)

// Day-window bounds for the daily stats endpoints.
const (
	defaultDays = 14
	maxDays     = 90
)

// parseListParams reads the shared list query parameters. Malformed or
// out-of-range numeric values silently fall back to defaults, matching the
// forgiving behavior of the list filters themselves.
func parseListParams(r *http.Request) types.ListParams {
	q := r.URL.Query()

	page, _ := strconv.Atoi(q.Get("page"))
	pageSize, _ := strconv.Atoi(q.Get("page_size"))

	return types.ListParams{
		Page:      page,
		PageSize:  pageSize,
		Sort:      q.Get("sort"),
		Order:     types.ParseSortOrder(q.Get("order")),
		Search:    q.Get("search"),
		DateRange: types.ParseDateRange(q.Get("date_range")),
		Status:    q.Get("status"),
	}.Normalize()
}

// parseDays reads the days query parameter for daily series. A missing value
// defaults to 14; a non-numeric value is a validation error; numeric values
// are clamped to [1, 90].
func parseDays(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("days")
	if raw == "" {
		return defaultDays, nil
	}

	days, err := strconv.Atoi(raw)
	if err != nil {
		return 0, types.NewAppError(
			types.ErrCodeValidationInvalidParam,
			"days must be a number",
			err,
		)
	}
	if days < 1 {
		days = 1
	}
	if days > maxDays {
		days = maxDays
	}
	return days, nil
}

// parseRefresh reads the refresh query parameter used by the cache-bypassing
// endpoints.
func parseRefresh(r *http.Request) bool {
	return r.URL.Query().Get("refresh") == "true"
}
