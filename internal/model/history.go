package model

import "time"

// History action constants for common audit events.
const (
	ActionCreated       = "created"
	ActionUpdated       = "updated"
	ActionStatusChanged = "status_changed"
	ActionDeleted       = "deleted"
)

// HistoryEntry is one display-ready change record for a task, reconstructed
// from the backend's audit event stream. When a task has no audit events at
// all, exactly one synthetic "created" entry is derived from the task's own
// creation metadata.
type HistoryEntry struct {
	// ID is the unique identifier for this entry.
	ID string `json:"id"`

	// TaskID links the entry to the task it describes.
	TaskID string `json:"task_id"`

	// Action is the canonical event type (see Action* constants).
	Action string `json:"action"`

	// UserID identifies the acting user, if known.
	UserID string `json:"user_id"`

	// Timestamp is when the event occurred.
	Timestamp time.Time `json:"timestamp"`

	// Details holds optional structured context for the event.
	Details map[string]interface{} `json:"details,omitempty"`

	// Synthetic marks entries reconstructed from task metadata rather
	// than from an actual audit event.
	Synthetic bool `json:"synthetic,omitempty"`
}
