package backend

import (
	"encoding/json"
	"fmt"
)

// TaskRecord is the raw task payload as the backend returns it. The schema
// evolved over several backend versions, so the same concept can arrive
// under different field names (flat customer_* fields vs a nested client
// object, date_rdv/heure_rdv vs scheduled_date/start_time, zones in legacy
// non-array encodings). Normalization resolves every alias exactly once;
// nothing outside internal/normalize should read these fields directly.
type TaskRecord struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Status   string `json:"status"`
	Priority string `json:"priority"`

	// Flat customer fields (current schema).
	CustomerName    string `json:"customer_name"`
	CustomerEmail   string `json:"customer_email"`
	CustomerPhone   string `json:"customer_phone"`
	CustomerAddress string `json:"customer_address"`

	// Nested client object (legacy schema).
	Client *ClientRecord `json:"client,omitempty"`

	VehiclePlate string `json:"vehicle_plate"`
	VehicleMake  string `json:"vehicle_make"`
	VehicleModel string `json:"vehicle_model"`
	VehicleYear  int    `json:"vehicle_year"`
	VIN          string `json:"vin"`

	// PPFZones is left raw because legacy rows encode the selection as a
	// JSON array, a JSON-encoded string of an array, or a comma-joined
	// string.
	PPFZones json.RawMessage `json:"ppf_zones,omitempty"`

	ScheduledDate string `json:"scheduled_date"`
	StartTime     string `json:"start_time"`
	EndTime       string `json:"end_time"`

	// Duplicate legacy scheduling fields.
	DateRDV  string `json:"date_rdv"`
	HeureRDV string `json:"heure_rdv"`

	// Duration is the planned installation time in minutes.
	Duration int `json:"duration"`

	TechnicianID string   `json:"technician_id"`
	Notes        string   `json:"notes"`
	Tags         []string `json:"tags"`

	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// ClientRecord is the legacy nested customer object.
type ClientRecord struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

// PaginationRecord is the raw pagination block. Pointer fields distinguish
// an absent alias from a zero value so precedence can be resolved.
type PaginationRecord struct {
	Page  int `json:"page"`
	Total int `json:"total"`

	TotalPages      *int `json:"totalPages,omitempty"`
	TotalPagesSnake *int `json:"total_pages,omitempty"`

	Limit    *int `json:"limit,omitempty"`
	PageSize *int `json:"pageSize,omitempty"`
}

// TaskListResponse is the raw task list payload.
type TaskListResponse struct {
	Data       []TaskRecord     `json:"data"`
	Pagination PaginationRecord `json:"pagination"`
}

// AuditEvent is one raw entry from the audit/security event stream. Older
// backend versions used action/actor_id/created_at/task_id/metadata where
// newer ones use event_type/user_id/timestamp/resource_id/details.
type AuditEvent struct {
	ID string `json:"id"`

	EventType string `json:"event_type"`
	Action    string `json:"action"`

	UserID  string `json:"user_id"`
	ActorID string `json:"actor_id"`

	Timestamp string `json:"timestamp"`
	CreatedAt string `json:"created_at"`

	ResourceID string `json:"resource_id"`
	TaskID     string `json:"task_id"`

	Details  map[string]interface{} `json:"details"`
	Metadata map[string]interface{} `json:"metadata"`
}

// AuditEventList tolerates the two envelope shapes the audit endpoint has
// shipped with: a bare JSON array, or an object tagging the array under
// "events" (or "data" on some deployments).
type AuditEventList struct {
	Events []AuditEvent
}

// UnmarshalJSON decodes either envelope shape into Events.
func (l *AuditEventList) UnmarshalJSON(data []byte) error {
	var bare []AuditEvent
	if err := json.Unmarshal(data, &bare); err == nil {
		l.Events = bare
		return nil
	}

	var tagged struct {
		Events []AuditEvent `json:"events"`
		Data   []AuditEvent `json:"data"`
	}
	if err := json.Unmarshal(data, &tagged); err != nil {
		return fmt.Errorf("decoding audit event list: %w", err)
	}

	if tagged.Events != nil {
		l.Events = tagged.Events
	} else {
		l.Events = tagged.Data
	}
	return nil
}

// InterventionRecord is the raw active-intervention payload for a task.
type InterventionRecord struct {
	ID           string `json:"id"`
	TaskID       string `json:"task_id"`
	Status       string `json:"status"`
	TechnicianID string `json:"technician_id"`
	StartedAt    string `json:"started_at"`
}

// StepRecord is one workflow step inside a step-progress response.
type StepRecord struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Completed bool   `json:"completed"`
}

// StepProgressResponse is the raw step-progress payload for an
// intervention.
type StepProgressResponse struct {
	Steps              []StepRecord `json:"steps"`
	ProgressPercentage float64      `json:"progress_percentage"`
}

// Profile is the authenticated user's profile, used for connection
// validation.
type Profile struct {
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
}

// ErrorResponse is the backend's structured error body.
type ErrorResponse struct {
	Error   string   `json:"error"`
	Message string   `json:"message"`
	Details []string `json:"details"`
}
