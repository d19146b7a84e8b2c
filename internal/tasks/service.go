// Package tasks is the task read/write surface of the sync façade. It
// translates filter state into backend queries, normalizes what comes
// back, and routes every call through the request executor so reads are
// coalesced and mutations invalidate related reads.
package tasks

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/atelierppf/fieldsync/internal/backend"
	"github.com/atelierppf/fieldsync/internal/gateway"
	"github.com/atelierppf/fieldsync/internal/model"
	"github.com/atelierppf/fieldsync/internal/normalize"
)

// Query holds the filter criteria for a task list fetch. Empty fields are
// omitted from the outgoing request entirely; an empty search or an "all"
// status never reaches the backend as an empty filter.
type Query struct {
	Status       string
	Priority     string
	Search       string
	TechnicianID string
	FromDate     string
	ToDate       string
	SortBy       string
	SortDesc     bool
}

// params builds the outgoing query parameters, transmitting only defined,
// non-empty fields.
func (q Query) params(page, limit int) url.Values {
	v := url.Values{}

	setIfPresent := func(key, value string) {
		value = strings.TrimSpace(value)
		if value == "" || value == "all" {
			return
		}
		v.Set(key, value)
	}

	setIfPresent("status", q.Status)
	setIfPresent("priority", q.Priority)
	setIfPresent("search", q.Search)
	setIfPresent("technician_id", q.TechnicianID)
	setIfPresent("from_date", q.FromDate)
	setIfPresent("to_date", q.ToDate)

	sortBy := q.SortBy
	if sortBy == "" {
		sortBy = "updated_at"
	}
	v.Set("sort_by", sortBy)
	if q.SortDesc {
		v.Set("sort_order", "desc")
	} else {
		v.Set("sort_order", "asc")
	}

	v.Set("page", strconv.Itoa(page))
	v.Set("limit", strconv.Itoa(limit))

	return v
}

// Page is one resolved page of tasks.
type Page struct {
	Tasks      []model.Task
	Pagination model.Pagination
}

// Service exposes the task operations of the backend. One Service is
// constructed per application scope and passed to consumers explicitly.
type Service struct {
	client *backend.Client
	inv    *gateway.Invoker
	log    *logrus.Logger
}

// NewService creates a task service. A nil logger falls back to the
// logrus standard logger.
func NewService(
	client *backend.Client,
	inv *gateway.Invoker,
	log *logrus.Logger,
) *Service {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Service{client: client, inv: inv, log: log}
}

// List fetches one page of tasks matching q. Records that fail
// normalization are dropped rather than failing the page.
func (s *Service) List(
	ctx context.Context,
	q Query,
	page int,
	limit int,
) (*Page, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}

	params := q.params(page, limit)
	key := "tasks:list:" + params.Encode()

	v, err := s.inv.Query(ctx, key, func(ctx context.Context) (interface{}, error) {
		var resp backend.TaskListResponse
		err := s.client.Get(ctx, "/api/v1/tasks?"+params.Encode(), &resp)
		if err != nil {
			return nil, fmt.Errorf("fetching tasks: %w", err)
		}

		result := &Page{
			Pagination: normalize.ResolvePagination(resp.Pagination),
		}
		result.Tasks = make([]model.Task, 0, len(resp.Data))
		for i := range resp.Data {
			if t := normalize.Task(&resp.Data[i]); t != nil {
				result.Tasks = append(result.Tasks, *t)
			}
		}
		return result, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Page), nil
}

// Get fetches a single task by ID.
func (s *Service) Get(ctx context.Context, id string) (*model.Task, error) {
	if strings.TrimSpace(id) == "" {
		return nil, &backend.ValidationError{
			Field:   "id",
			Message: "task id must not be empty",
		}
	}

	v, err := s.inv.Query(ctx, "task:"+id, func(ctx context.Context) (interface{}, error) {
		var rec backend.TaskRecord
		if err := s.client.Get(ctx, "/api/v1/tasks/"+id, &rec); err != nil {
			return nil, fmt.Errorf("fetching task %s: %w", id, err)
		}

		t := normalize.Task(&rec)
		if t == nil {
			return nil, fmt.Errorf("task %s: malformed payload", id)
		}
		return t, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*model.Task), nil
}

// Create registers a new task in the backend and returns the normalized
// result. List caches are invalidated before Create returns.
func (s *Service) Create(
	ctx context.Context,
	t *model.Task,
) (*model.Task, error) {
	if t == nil || strings.TrimSpace(t.Title) == "" {
		return nil, &backend.ValidationError{
			Field:   "title",
			Message: "task title must not be empty",
		}
	}

	v, err := s.inv.Mutate(ctx, func(ctx context.Context) (interface{}, error) {
		var rec backend.TaskRecord
		err := s.client.Post(ctx, "/api/v1/tasks", normalize.Record(t), &rec)
		if err != nil {
			return nil, fmt.Errorf("creating task: %w", err)
		}

		created := normalize.Task(&rec)
		if created == nil {
			return nil, fmt.Errorf("creating task: malformed response")
		}
		return created, nil
	}, "tasks:list:")
	if err != nil {
		return nil, err
	}
	return v.(*model.Task), nil
}

// Update applies a partial update to a task. Updates are idempotent on the
// backend: re-sending the same field set leaves the task unchanged. All
// cached reads for the task and for task lists are invalidated before
// Update returns.
func (s *Service) Update(
	ctx context.Context,
	id string,
	fields map[string]interface{},
) (*model.Task, error) {
	if strings.TrimSpace(id) == "" {
		return nil, &backend.ValidationError{
			Field:   "id",
			Message: "task id must not be empty",
		}
	}
	if len(fields) == 0 {
		return nil, &backend.ValidationError{
			Field:   "fields",
			Message: "update must change at least one field",
		}
	}

	v, err := s.inv.Mutate(ctx, func(ctx context.Context) (interface{}, error) {
		var rec backend.TaskRecord
		err := s.client.Patch(ctx, "/api/v1/tasks/"+id, fields, &rec)
		if err != nil {
			return nil, fmt.Errorf("updating task %s: %w", id, err)
		}

		updated := normalize.Task(&rec)
		if updated == nil {
			return nil, fmt.Errorf("updating task %s: malformed response", id)
		}
		return updated, nil
	}, "task:"+id, "tasks:list:")
	if err != nil {
		return nil, err
	}
	return v.(*model.Task), nil
}

// Delete removes a task (a logical delete on the backend). All cached
// reads for the task and for task lists are invalidated before Delete
// returns.
func (s *Service) Delete(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return &backend.ValidationError{
			Field:   "id",
			Message: "task id must not be empty",
		}
	}

	_, err := s.inv.Mutate(ctx, func(ctx context.Context) (interface{}, error) {
		if err := s.client.Delete(ctx, "/api/v1/tasks/"+id, nil); err != nil {
			return nil, fmt.Errorf("deleting task %s: %w", id, err)
		}
		return nil, nil
	}, "task:"+id, "tasks:list:")
	return err
}

// ValidateConnection verifies credentials by fetching the authenticated
// profile. Returns the user's display name on success.
func (s *Service) ValidateConnection(ctx context.Context) (string, error) {
	var profile backend.Profile
	if err := s.client.Get(ctx, "/api/v1/profile", &profile); err != nil {
		return "", fmt.Errorf("validating connection: %w", err)
	}
	return profile.DisplayName, nil
}
