package external

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"mayadmin/internal/types"
)

// razorpayAPIBase is the default Razorpay REST API base URL.
const razorpayAPIBase = "https://api.razorpay.com"

// RazorpayClientConfig holds the configuration for creating a RazorpayHTTPClient.
type RazorpayClientConfig struct {
	KeyID     string
	KeySecret string
	BaseURL   string // defaults to razorpayAPIBase when empty
	Logger    *slog.Logger
}

// listEnvelope is the collection wrapper Razorpay returns from list endpoints.
type listEnvelope[T any] struct {
	Entity string `json:"entity"`
	Count  int    `json:"count"`
	Items  []T    `json:"items"`
}

// razorpayErrorBody is the error envelope Razorpay returns on failures.
type razorpayErrorBody struct {
	Error struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"error"`
}

// RazorpayHTTPClient talks to the Razorpay REST API through BaseClient using
// HTTP basic auth with the API key pair. It exposes only the read endpoints
// the dashboard needs; it never creates or mutates provider objects.
type RazorpayHTTPClient struct {
	base      *BaseClient
	keyID     string
	keySecret string
	baseURL   string
	logger    *slog.Logger
}

// NewRazorpayClient creates a new RazorpayHTTPClient. The httpClient timeout
// should be set appropriately for the Razorpay API (e.g., 30 seconds).
func NewRazorpayClient(httpClient *http.Client, cfg RazorpayClientConfig) *RazorpayHTTPClient {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = razorpayAPIBase
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &RazorpayHTTPClient{
		base:      NewBaseClient(httpClient, "MayAdmin/1.0"),
		keyID:     cfg.KeyID,
		keySecret: cfg.KeySecret,
		baseURL:   strings.TrimSuffix(baseURL, "/"),
		logger:    logger,
	}
}

// NewRazorpayClientWithBase creates a RazorpayHTTPClient with a pre-configured
// BaseClient. This is useful for testing.
func NewRazorpayClientWithBase(base *BaseClient, cfg RazorpayClientConfig) *RazorpayHTTPClient {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = razorpayAPIBase
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &RazorpayHTTPClient{
		base:      base,
		keyID:     cfg.KeyID,
		keySecret: cfg.KeySecret,
		baseURL:   strings.TrimSuffix(baseURL, "/"),
		logger:    logger,
	}
}

// ListPayments fetches one batch of payments, newest first. count and skip
// drive the provider-side pagination window; a non-nil from restricts results
// to payments created at or after that Unix timestamp.
func (c *RazorpayHTTPClient) ListPayments(ctx context.Context, count, skip int, from *int64) ([]types.Payment, error) {
	query := url.Values{}
	query.Set("count", strconv.Itoa(count))
	query.Set("skip", strconv.Itoa(skip))
	if from != nil {
		query.Set("from", strconv.FormatInt(*from, 10))
	}

	items, err := listRazorpay[types.Payment](ctx, c, "/v1/payments", query, "ListPayments")
	if err != nil {
		return nil, err
	}

	c.logger.DebugContext(ctx, "fetched payments batch",
		"count", count,
		"skip", skip,
		"returned", len(items),
	)
	return items, nil
}

// ListSubscriptions fetches one batch of subscription objects, newest first.
func (c *RazorpayHTTPClient) ListSubscriptions(ctx context.Context, count, skip int) ([]types.Subscription, error) {
	query := url.Values{}
	query.Set("count", strconv.Itoa(count))
	query.Set("skip", strconv.Itoa(skip))

	items, err := listRazorpay[types.Subscription](ctx, c, "/v1/subscriptions", query, "ListSubscriptions")
	if err != nil {
		return nil, err
	}

	c.logger.DebugContext(ctx, "fetched subscriptions batch",
		"count", count,
		"skip", skip,
		"returned", len(items),
	)
	return items, nil
}

// listRazorpay performs an authenticated GET against a Razorpay list endpoint
// and decodes the collection envelope.
func listRazorpay[T any](ctx context.Context, c *RazorpayHTTPClient, path string, query url.Values, operation string) ([]T, error) {
	endpoint := c.baseURL + path + "?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, types.NewAppError(
			types.ErrCodeInternalUnexpected,
			fmt.Sprintf("failed to create Razorpay %s request", operation),
			err,
		)
	}
	req.SetBasicAuth(c.keyID, c.keySecret)

	resp, err := c.base.Do(req)
	if err != nil {
		return nil, wrapRazorpayError(operation, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, c.handleErrorResponse(resp, operation)
	}

	var envelope listEnvelope[T]
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, types.NewAppError(
			types.ErrCodeUpstreamPayments,
			fmt.Sprintf("failed to decode Razorpay %s response", operation),
			err,
		)
	}
	return envelope.Items, nil
}

// handleErrorResponse reads and logs the error body from a non-2xx response,
// then returns an upstream AppError. Provider failures of any status surface
// to API consumers as internal errors; the dashboard holds no provider
// contract with its own callers.
func (c *RazorpayHTTPClient) handleErrorResponse(resp *http.Response, operation string) *types.AppError {
	bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	description := ""
	var errBody razorpayErrorBody
	if json.Unmarshal(bodyBytes, &errBody) == nil {
		description = errBody.Error.Description
	}

	c.logger.Error("Razorpay API error",
		"operation", operation,
		"status_code", resp.StatusCode,
		"description", description,
	)

	return types.NewAppError(
		types.ErrCodeUpstreamPayments,
		fmt.Sprintf("Razorpay %s returned %d", operation, resp.StatusCode),
		fmt.Errorf("razorpay %s: status %d: %s", operation, resp.StatusCode, string(bodyBytes)),
	)
}

// wrapRazorpayError converts errors from BaseClient.Do into payment-provider
// upstream errors, preserving the underlying cause.
func wrapRazorpayError(operation string, err error) error {
	var appErr *types.AppError
	if errors.As(err, &appErr) {
		return types.NewAppError(
			types.ErrCodeUpstreamPayments,
			fmt.Sprintf("Razorpay %s: %s", operation, appErr.Message),
			appErr.Err,
		)
	}
	return types.NewAppError(
		types.ErrCodeUpstreamPayments,
		fmt.Sprintf("Razorpay %s failed", operation),
		err,
	)
}
