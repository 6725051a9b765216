package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mayadmin/internal/types"
)

type mockSessionRepo struct {
	listFn func(ctx context.Context, params types.ListParams) (types.Page[types.Session], error)
}

func (m *mockSessionRepo) List(ctx context.Context, params types.ListParams) (types.Page[types.Session], error) {
	return m.listFn(ctx, params)
}

func TestSessionList(t *testing.T) {
	var gotParams types.ListParams
	repo := &mockSessionRepo{
		listFn: func(ctx context.Context, params types.ListParams) (types.Page[types.Session], error) {
			gotParams = params
			return types.NewPage([]types.Session{{ID: 1, SessionID: "sess-1"}}, 1, params.Page, params.PageSize), nil
		},
	}

	h := NewSessionHandler(repo, testLogger())
	router := chi.NewRouter()
	h.RegisterRoutes(router)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/sessions?status=failed&sort=total_generations", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "failed", gotParams.Status)
	assert.Equal(t, "total_generations", gotParams.Sort)

	var page types.Page[types.Session]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	require.Len(t, page.Data, 1)
	assert.Equal(t, "sess-1", page.Data[0].SessionID)
}

func TestSessionList_DBErrorIs500(t *testing.T) {
	repo := &mockSessionRepo{
		listFn: func(ctx context.Context, params types.ListParams) (types.Page[types.Session], error) {
			return types.Page[types.Session]{}, types.NewAppError(types.ErrCodeInternalDB, "db down", nil)
		},
	}

	h := NewSessionHandler(repo, testLogger())
	router := chi.NewRouter()
	h.RegisterRoutes(router)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/sessions", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
