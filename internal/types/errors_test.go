package types

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorCode_HTTPStatus(t *testing.T) {
	tests := []struct {
		code ErrorCode
		want int
	}{
		{ErrCodeValidationInvalidJSON, http.StatusBadRequest},
		{ErrCodeValidationMissingField, http.StatusBadRequest},
		{ErrCodeValidationInvalidParam, http.StatusBadRequest},
		{ErrCodeNotFoundDevice, http.StatusNotFound},
		{ErrCodeRateLimit, http.StatusTooManyRequests},
		{ErrCodeInternalDB, http.StatusInternalServerError},
		{ErrCodeInternalUnexpected, http.StatusInternalServerError},
		// Upstream fetch failures surface as generic 500s, not 502s.
		{ErrCodeUpstreamPayments, http.StatusInternalServerError},
		{ErrorCode("something_unknown"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.code.HTTPStatus())
		})
	}
}

func TestAppError_ErrorAndUnwrap(t *testing.T) {
	inner := errors.New("connection refused")
	err := NewAppError(ErrCodeInternalDB, "failed to count devices", inner)

	assert.Equal(t, "internal_database_error: failed to count devices", err.Error())
	assert.True(t, errors.Is(err, inner))

	var appErr *AppError
	wrapped := fmt.Errorf("handler: %w", err)
	assert.True(t, errors.As(wrapped, &appErr))
	assert.Equal(t, ErrCodeInternalDB, appErr.Code)
}

func TestNewAppErrorWithDetails(t *testing.T) {
	err := NewAppErrorWithDetails(ErrCodeValidationMissingField, "device_id is required", nil,
		map[string]any{"field": "device_id"})

	assert.Equal(t, "device_id", err.Details["field"])
	assert.Equal(t, http.StatusBadRequest, err.HTTPStatus())
}
