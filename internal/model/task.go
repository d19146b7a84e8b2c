package model

import "time"

// Normalized task status constants. Every legacy backend value is mapped
// onto one of these during normalization.
const (
	StatusQuote      = "quote"
	StatusScheduled  = "scheduled"
	StatusInProgress = "in_progress"
	StatusPaused     = "paused"
	StatusCompleted  = "completed"
	StatusCancelled  = "cancelled"
	StatusInvalid    = "invalid"
)

// Normalized priority constants.
const (
	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"
)

// Customer holds the canonical customer contact fields for a task.
// Legacy payloads carry these either flat (customer_name, customer_email)
// or under a nested client object; both resolve here.
type Customer struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

// Vehicle holds the canonical vehicle attributes for a task.
type Vehicle struct {
	Plate string `json:"plate"`
	Make  string `json:"make"`
	Model string `json:"model"`
	Year  int    `json:"year"`
	VIN   string `json:"vin"`
}

// Schedule holds the canonical scheduling fields for a task. Date is the
// appointment day, Start/End are wall-clock times ("09:30"), and
// DurationMin is the planned installation duration in minutes.
type Schedule struct {
	Date        time.Time `json:"date"`
	Start       string    `json:"start"`
	End         string    `json:"end"`
	DurationMin int       `json:"duration_min"`
}

// Task is the canonical, fully normalized representation of a field-service
// job. It is a read-only projection of whatever shape the backend returned;
// the backend remains the source of truth and no derived state is written
// back.
type Task struct {
	// ID is the backend identifier for this task.
	ID string `json:"id"`

	// Title is the human-readable summary of the job.
	Title string `json:"title"`

	// Status is the normalized lifecycle status (use Status* constants).
	Status string `json:"status"`

	// Priority is the normalized priority level (use Priority* constants).
	Priority string `json:"priority"`

	// Customer is the resolved customer contact information.
	Customer Customer `json:"customer"`

	// Vehicle is the resolved vehicle description.
	Vehicle Vehicle `json:"vehicle"`

	// PPFZones lists the canonical identifiers of the film zones selected
	// for this job.
	PPFZones []string `json:"ppf_zones"`

	// Schedule is the resolved appointment information.
	Schedule Schedule `json:"schedule"`

	// TechnicianID identifies the assigned installer, if any.
	TechnicianID string `json:"technician_id"`

	// Notes is the free-text job notes.
	Notes string `json:"notes"`

	// Tags is the task's tag set.
	Tags []string `json:"tags,omitempty"`

	// CreatedAt is when the task was created in the backend.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt is when the task was last modified in the backend.
	UpdatedAt time.Time `json:"updated_at"`

	// FetchedAt is when this task was last retrieved from the backend.
	FetchedAt time.Time `json:"fetched_at"`

	// RawData holds the original JSON payload the backend returned.
	RawData string `json:"raw_data"`
}

// Pagination is the canonical pagination block resolved from a task list
// response. Whatever alias pair the backend used (totalPages/total_pages,
// pageSize/limit), callers only ever see these fields.
type Pagination struct {
	Page       int `json:"page"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
	Limit      int `json:"limit"`
}
