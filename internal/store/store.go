package store

import (
	"context"

	"github.com/atelierppf/fieldsync/internal/model"
)

// TaskFilter controls filtering, sorting, and pagination for local task
// queries. Nil pointers mean the filter is not applied.
type TaskFilter struct {
	Status       *string
	Priority     *string
	TechnicianID *string
	Query        *string // matches title, customer name, and plate
	SortBy       string  // "title", "status", "priority", "scheduled_date", "created_at", "updated_at"
	SortDesc     bool
	Limit        int
	Offset       int
}

// Store defines the local persistence interface for the offline task cache
// and poll notifications.
type Store interface {
	UpsertTasks(ctx context.Context, tasks []model.Task) error
	GetTasks(ctx context.Context, opts TaskFilter) ([]model.Task, error)
	GetTaskByID(ctx context.Context, id string) (*model.Task, error)

	CreateNotification(ctx context.Context, n model.Notification) error
	GetUnreadNotifications(ctx context.Context) ([]model.Notification, error)
	MarkNotificationRead(ctx context.Context, id string) error

	Close() error
}
