// Package external provides the anti-corruption layer between domain logic
// and the third-party payment provider API. All outbound HTTP calls are routed
// through the BaseClient, which enforces consistent trace propagation and
// error mapping. Calls are single-attempt: the dashboard favors fast, honest
// failures over retry loops, and the caller-side cache absorbs transient
// provider hiccups.
package external

import (
	"net/http"

	"mayadmin/internal/types"
)

// BaseClient wraps an *http.Client to enforce consistent behavior on all
// outbound HTTP calls. Provider clients embed BaseClient to inherit it.
type BaseClient struct {
	client    *http.Client
	userAgent string
}

// NewBaseClient creates a BaseClient with the given http client and
// user agent string.
func NewBaseClient(httpClient *http.Client, userAgent string) *BaseClient {
	return &BaseClient{
		client:    httpClient,
		userAgent: userAgent,
	}
}

// Do executes the HTTP request with:
//  1. Trace ID injection (X-Request-Id from context)
//  2. User-Agent header injection
//  3. Transport error mapping to types.AppError
//
// The request is attempted exactly once. Responses are returned as-is for any
// status code; the caller interprets non-2xx statuses and is responsible for
// closing the response body.
func (c *BaseClient) Do(req *http.Request) (*http.Response, error) {
	if traceID := types.GetRequestID(req.Context()); traceID != "" {
		req.Header.Set("X-Request-Id", traceID)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, types.NewAppError(
			types.ErrCodeInternalUnexpected,
			"upstream request failed",
			err,
		)
	}
	return resp, nil
}
