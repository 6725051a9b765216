package external

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mayadmin/internal/types"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *RazorpayHTTPClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewRazorpayClient(&http.Client{Timeout: 5 * time.Second}, RazorpayClientConfig{
		KeyID:     "rzp_test_key",
		KeySecret: "secret",
		BaseURL:   server.URL,
	})
}

func TestListPayments_RequestShape(t *testing.T) {
	var gotPath, gotQuery string
	var gotUser, gotPass string
	var gotAuthOK bool

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		gotUser, gotPass, gotAuthOK = r.BasicAuth()
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"entity":"collection","count":1,"items":[
			{"id":"pay_1","amount":19900,"status":"captured","captured":true,
			 "contact":"+919999999999","created_at":1756400000,
			 "notes":{"device_id":"dev-1"}}
		]}`))
	})

	from := int64(1756300000)
	payments, err := client.ListPayments(context.Background(), 100, 200, &from)
	require.NoError(t, err)

	assert.Equal(t, "/v1/payments", gotPath)
	assert.Equal(t, "count=100&from=1756300000&skip=200", gotQuery)
	require.True(t, gotAuthOK)
	assert.Equal(t, "rzp_test_key", gotUser)
	assert.Equal(t, "secret", gotPass)

	require.Len(t, payments, 1)
	assert.Equal(t, "pay_1", payments[0].ID)
	assert.Equal(t, int64(19900), payments[0].Amount)
	assert.Equal(t, types.PaymentCaptured, payments[0].Status)
	assert.Equal(t, "dev-1", payments[0].Notes.DeviceID)
}

func TestListPayments_NoFromOmitsParameter(t *testing.T) {
	var gotQuery string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Write([]byte(`{"entity":"collection","count":0,"items":[]}`))
	})

	payments, err := client.ListPayments(context.Background(), 100, 0, nil)
	require.NoError(t, err)
	assert.Empty(t, payments)
	assert.Equal(t, "count=100&skip=0", gotQuery)
}

func TestListPayments_UpstreamErrorMapsTo500(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"code":"BAD_REQUEST_ERROR","description":"Authentication failed"}}`))
	})

	_, err := client.ListPayments(context.Background(), 100, 0, nil)
	var appErr *types.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, types.ErrCodeUpstreamPayments, appErr.Code)
	assert.Equal(t, http.StatusInternalServerError, appErr.HTTPStatus())
}

func TestListPayments_TransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // force a connection failure

	client := NewRazorpayClient(&http.Client{Timeout: time.Second}, RazorpayClientConfig{
		KeyID:     "rzp_test_key",
		KeySecret: "secret",
		BaseURL:   server.URL,
	})

	_, err := client.ListPayments(context.Background(), 100, 0, nil)
	var appErr *types.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, types.ErrCodeUpstreamPayments, appErr.Code)
}

func TestListPayments_MalformedBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"entity":"collection","count":`))
	})

	_, err := client.ListPayments(context.Background(), 100, 0, nil)
	var appErr *types.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, types.ErrCodeUpstreamPayments, appErr.Code)
}

func TestListSubscriptions(t *testing.T) {
	var gotPath, gotQuery string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		w.Write([]byte(`{"entity":"collection","count":2,"items":[
			{"id":"sub_2","status":"active","created_at":1756400000,"notes":{"device_id":"dev-1"}},
			{"id":"sub_1","status":"cancelled","created_at":1756300000,"notes":{"device_id":"dev-1"}}
		]}`))
	})

	subs, err := client.ListSubscriptions(context.Background(), 100, 100)
	require.NoError(t, err)

	assert.Equal(t, "/v1/subscriptions", gotPath)
	assert.Equal(t, "count=100&skip=100", gotQuery)
	require.Len(t, subs, 2)
	assert.Equal(t, types.SubscriptionActive, subs[0].Status)
	assert.Equal(t, "dev-1", subs[0].Notes.DeviceID)
}

func TestBaseClient_InjectsHeaders(t *testing.T) {
	var gotUA, gotTrace string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotTrace = r.Header.Get("X-Request-Id")
	}))
	defer server.Close()

	base := NewBaseClient(server.Client(), "MayAdmin/1.0")
	ctx := types.WithRequestID(context.Background(), "req-abc")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, server.URL, nil)
	require.NoError(t, err)

	resp, err := base.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, "MayAdmin/1.0", gotUA)
	assert.Equal(t, "req-abc", gotTrace)
}
