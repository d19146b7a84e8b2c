package history

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atelierppf/fieldsync/internal/backend"
	"github.com/atelierppf/fieldsync/internal/gateway"
	"github.com/atelierppf/fieldsync/internal/model"
	"github.com/atelierppf/fieldsync/internal/tasks"
)

func newTestService(handler http.Handler) (*Service, *httptest.Server) {
	srv := httptest.NewServer(handler)
	client := backend.NewClient(srv.URL, "test-token")
	inv := gateway.NewInvoker(gateway.NewCache(time.Minute), nil)
	fetcher := tasks.NewService(client, inv, nil)
	return NewService(client, inv, fetcher, nil), srv
}

func auditHandler(body string) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/audit/events", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(body))
	})
	return mux
}

func TestGetTaskHistoryValidatesID(t *testing.T) {
	svc, srv := newTestService(http.NotFoundHandler())
	defer srv.Close()

	_, err := svc.GetTaskHistory(context.Background(), "", Filter{})
	require.Error(t, err)
	assert.True(t, backend.IsValidation(err))
}

func TestGetTaskHistoryMapsBothAliasGenerations(t *testing.T) {
	svc, srv := newTestService(auditHandler(`[
		{"id":"e1","event_type":"status_changed","user_id":"u1",
		 "timestamp":"2026-03-10T10:00:00Z","resource_id":"t-1",
		 "details":{"from":"scheduled","to":"in_progress"}},
		{"id":"e2","action":"updated","actor_id":"u2",
		 "created_at":"2026-03-12T10:00:00Z","task_id":"t-1",
		 "metadata":{"field":"notes"}},
		{"id":"e3","action":"updated","actor_id":"u3",
		 "created_at":"2026-03-11T10:00:00Z","task_id":"t-other"}
	]`))
	defer srv.Close()

	entries, err := svc.GetTaskHistory(context.Background(), "t-1", Filter{})
	require.NoError(t, err)
	require.Len(t, entries, 2, "events for other tasks are excluded")

	// Newest first.
	assert.Equal(t, "e2", entries[0].ID)
	assert.Equal(t, "e1", entries[1].ID)

	// Legacy aliases resolve onto the canonical fields.
	assert.Equal(t, "updated", entries[0].Action)
	assert.Equal(t, "u2", entries[0].UserID)
	assert.Equal(t, map[string]interface{}{"field": "notes"}, entries[0].Details)

	assert.Equal(t, "status_changed", entries[1].Action)
	assert.Equal(t, "u1", entries[1].UserID)

	for _, e := range entries {
		assert.Equal(t, "t-1", e.TaskID)
		assert.False(t, e.Synthetic)
	}
}

func TestGetTaskHistoryFilters(t *testing.T) {
	body := `[
		{"id":"e1","action":"created","actor_id":"u1",
		 "created_at":"2026-03-01T10:00:00Z","task_id":"t-1"},
		{"id":"e2","action":"updated","actor_id":"u1",
		 "created_at":"2026-03-05T10:00:00Z","task_id":"t-1"},
		{"id":"e3","action":"updated","actor_id":"u1",
		 "created_at":"2026-03-20T10:00:00Z","task_id":"t-1"}
	]`

	t.Run("by action", func(t *testing.T) {
		svc, srv := newTestService(auditHandler(body))
		defer srv.Close()

		entries, err := svc.GetTaskHistory(
			context.Background(), "t-1", Filter{Action: "updated"})
		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, "e3", entries[0].ID)
		assert.Equal(t, "e2", entries[1].ID)
	})

	t.Run("by date range", func(t *testing.T) {
		svc, srv := newTestService(auditHandler(body))
		defer srv.Close()

		entries, err := svc.GetTaskHistory(context.Background(), "t-1", Filter{
			From: time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
			To:   time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		})
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "e2", entries[0].ID)
	})
}

func TestGetTaskHistorySynthesizesCreatedEntry(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/audit/events", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"events":[]}`))
	})
	mux.HandleFunc("/api/v1/tasks/t-1", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{
			"id": "t-1", "title": "Pose capot", "status": "scheduled",
			"technician_id": "tech-1",
			"created_at":    "2026-02-01T08:00:00Z",
		})
	})

	svc, srv := newTestService(mux)
	defer srv.Close()

	entries, err := svc.GetTaskHistory(context.Background(), "t-1", Filter{})
	require.NoError(t, err)

	// Any task that exists yields at least one entry.
	require.Len(t, entries, 1)
	e := entries[0]
	assert.True(t, e.Synthetic)
	assert.Equal(t, model.ActionCreated, e.Action)
	assert.Equal(t, "t-1", e.TaskID)
	assert.Equal(t, "tech-1", e.UserID)
	assert.NotEmpty(t, e.ID)
	assert.Equal(t, 2026, e.Timestamp.Year())
	assert.Equal(t, "Pose capot", e.Details["title"])
}

func TestGetTaskHistoryCachesPerFilter(t *testing.T) {
	hits := 0
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/audit/events", func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Write([]byte(`[{"id":"e1","action":"updated","actor_id":"u1",
			"created_at":"2026-03-05T10:00:00Z","task_id":"t-1"}]`))
	})

	svc, srv := newTestService(mux)
	defer srv.Close()

	ctx := context.Background()
	_, err := svc.GetTaskHistory(ctx, "t-1", Filter{})
	require.NoError(t, err)
	_, err = svc.GetTaskHistory(ctx, "t-1", Filter{})
	require.NoError(t, err)
	assert.Equal(t, 1, hits)

	// A different filter is a different cached read.
	_, err = svc.GetTaskHistory(ctx, "t-1", Filter{Action: "updated"})
	require.NoError(t, err)
	assert.Equal(t, 2, hits)
}
