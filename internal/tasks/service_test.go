package tasks

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atelierppf/fieldsync/internal/backend"
	"github.com/atelierppf/fieldsync/internal/gateway"
)

func newTestService(handler http.Handler) (*Service, *httptest.Server) {
	srv := httptest.NewServer(handler)
	client := backend.NewClient(srv.URL, "test-token")
	inv := gateway.NewInvoker(gateway.NewCache(time.Minute), nil)
	return NewService(client, inv, nil), srv
}

func TestQueryParamsOmitEmptyFilters(t *testing.T) {
	q := Query{
		Status:   "all",
		Priority: "",
		Search:   "   ",
		SortBy:   "created_at",
		SortDesc: true,
	}

	params := q.params(2, 25)

	// Empty and "all" filters never reach the backend.
	_, hasStatus := params["status"]
	_, hasPriority := params["priority"]
	_, hasSearch := params["search"]
	assert.False(t, hasStatus)
	assert.False(t, hasPriority)
	assert.False(t, hasSearch)

	assert.Equal(t, "created_at", params.Get("sort_by"))
	assert.Equal(t, "desc", params.Get("sort_order"))
	assert.Equal(t, "2", params.Get("page"))
	assert.Equal(t, "25", params.Get("limit"))
}

func TestQueryParamsDefaults(t *testing.T) {
	params := Query{Status: "scheduled", Search: "porsche"}.params(1, 20)

	assert.Equal(t, "scheduled", params.Get("status"))
	assert.Equal(t, "porsche", params.Get("search"))
	assert.Equal(t, "updated_at", params.Get("sort_by"))
	assert.Equal(t, "asc", params.Get("sort_order"))
}

func TestListNormalizesAndResolvesPagination(t *testing.T) {
	var gotQuery url.Values
	svc, srv := newTestService(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			gotQuery = r.URL.Query()
			json.NewEncoder(w).Encode(map[string]interface{}{
				"data": []map[string]interface{}{
					{
						"id":     "t-1",
						"title":  "Pose capot",
						"status": "en_cours",
						"client": map[string]string{"name": "Jean"},
					},
				},
				"pagination": map[string]interface{}{
					"page":        1,
					"total":       41,
					"totalPages":  3,
					"total_pages": 99,
					"limit":       20,
				},
			})
		}))
	defer srv.Close()

	page, err := svc.List(context.Background(), Query{Status: "all"}, 1, 20)
	require.NoError(t, err)

	_, hasStatus := gotQuery["status"]
	assert.False(t, hasStatus, `an "all" status must be omitted from the request`)

	require.Len(t, page.Tasks, 1)
	assert.Equal(t, "in_progress", page.Tasks[0].Status)
	assert.Equal(t, "Jean", page.Tasks[0].Customer.Name)

	// The camelCase alias wins when both pagination variants are present.
	assert.Equal(t, 3, page.Pagination.TotalPages)
	assert.Equal(t, 20, page.Pagination.Limit)
}

func TestListCachesByQuery(t *testing.T) {
	var hits int32
	svc, srv := newTestService(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&hits, 1)
			json.NewEncoder(w).Encode(backend.TaskListResponse{})
		}))
	defer srv.Close()

	ctx := context.Background()
	_, err := svc.List(ctx, Query{Status: "scheduled"}, 1, 20)
	require.NoError(t, err)
	_, err = svc.List(ctx, Query{Status: "scheduled"}, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))

	// A different filter set is a different cache entry.
	_, err = svc.List(ctx, Query{Status: "completed"}, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&hits))
}

func TestGetValidatesID(t *testing.T) {
	svc, srv := newTestService(http.NotFoundHandler())
	defer srv.Close()

	_, err := svc.Get(context.Background(), "  ")
	require.Error(t, err)
	assert.True(t, backend.IsValidation(err))
}

func TestUpdateInvalidatesCachedReads(t *testing.T) {
	var taskHits int32
	title := "Avant"
	svc, srv := newTestService(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodPatch {
				title = "Après"
			} else {
				atomic.AddInt32(&taskHits, 1)
			}
			json.NewEncoder(w).Encode(map[string]string{
				"id": "t-1", "title": title, "status": "scheduled",
			})
		}))
	defer srv.Close()

	ctx := context.Background()

	got, err := svc.Get(ctx, "t-1")
	require.NoError(t, err)
	assert.Equal(t, "Avant", got.Title)

	// Cached: no extra request.
	_, err = svc.Get(ctx, "t-1")
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&taskHits))

	updated, err := svc.Update(ctx, "t-1", map[string]interface{}{
		"title": "Après",
	})
	require.NoError(t, err)
	assert.Equal(t, "Après", updated.Title)

	// The invalidation is visible synchronously: this re-fetch hits the
	// backend and sees the new title.
	got, err = svc.Get(ctx, "t-1")
	require.NoError(t, err)
	assert.Equal(t, "Après", got.Title)
	assert.Equal(t, int32(2), atomic.LoadInt32(&taskHits))
}

func TestUpdateValidatesFields(t *testing.T) {
	svc, srv := newTestService(http.NotFoundHandler())
	defer srv.Close()

	_, err := svc.Update(context.Background(), "t-1", nil)
	require.Error(t, err)
	assert.True(t, backend.IsValidation(err))
}

func TestCreateValidatesTitle(t *testing.T) {
	svc, srv := newTestService(http.NotFoundHandler())
	defer srv.Close()

	_, err := svc.Create(context.Background(), nil)
	require.Error(t, err)
	assert.True(t, backend.IsValidation(err))
}

func TestValidateConnection(t *testing.T) {
	svc, srv := newTestService(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/v1/profile", r.URL.Path)
			json.NewEncoder(w).Encode(backend.Profile{
				DisplayName: "Atelier Nord",
			})
		}))
	defer srv.Close()

	name, err := svc.ValidateConnection(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Atelier Nord", name)
}
