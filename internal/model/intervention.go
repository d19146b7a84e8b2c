package model

import "time"

// Intervention statuses as reported by the backend.
const (
	InterventionActive    = "active"
	InterventionPaused    = "paused"
	InterventionCompleted = "completed"
)

// Intervention is one execution of a task's installation procedure. A task
// has at most one active intervention at a time; most tasks have none.
type Intervention struct {
	// ID is the backend identifier for this intervention.
	ID string `json:"id"`

	// TaskID links the intervention to its task.
	TaskID string `json:"task_id"`

	// Status is the intervention lifecycle status.
	Status string `json:"status"`

	// TechnicianID identifies the installer running the procedure.
	TechnicianID string `json:"technician_id"`

	// StartedAt is when the intervention began.
	StartedAt time.Time `json:"started_at"`
}

// WorkflowProgress summarizes how far an intervention has advanced.
//
// Invariants: CurrentStep <= TotalSteps, TotalSteps >= 1, and
// CompletionPercentage is 100 exactly when Status is "completed".
type WorkflowProgress struct {
	CurrentStep          int    `json:"current_step"`
	TotalSteps           int    `json:"total_steps"`
	CompletionPercentage int    `json:"completion_percentage"`
	Status               string `json:"status"`
}

// TaskWorkflowState pairs a task with its active intervention (if any) and
// the derived progress summary.
type TaskWorkflowState struct {
	// Task is the synced task.
	Task *Task `json:"task"`

	// Intervention is the active workflow execution, nil when none exists.
	Intervention *Intervention `json:"intervention,omitempty"`

	// Progress is derived from the intervention's step records; nil when
	// there is no active intervention.
	Progress *WorkflowProgress `json:"progress,omitempty"`

	// IsSynced reports whether the sync completed without error. A task
	// with no active intervention is still synced.
	IsSynced bool `json:"is_synced"`

	// SyncedAt is when the sync finished.
	SyncedAt time.Time `json:"synced_at"`

	// Err holds the failure for this task during a batch sync. It is nil
	// whenever IsSynced is true.
	Err error `json:"-"`
}
