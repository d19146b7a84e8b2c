package normalize

import (
	"strings"
	"time"

	"github.com/atelierppf/fieldsync/internal/backend"
	"github.com/atelierppf/fieldsync/internal/model"
)

// Each concept with historical field aliases gets exactly one resolver
// here, applied once at the normalization boundary. Downstream code only
// ever sees the canonical field; alias checks must never be re-implemented
// at call sites.

// resolveCustomer merges the flat customer_* fields (current schema) with
// the nested client object (legacy schema). The flat field wins when both
// carry a value; the nested object fills gaps per field.
func resolveCustomer(rec *backend.TaskRecord) model.Customer {
	c := model.Customer{
		Name:    rec.CustomerName,
		Email:   rec.CustomerEmail,
		Phone:   rec.CustomerPhone,
		Address: rec.CustomerAddress,
	}

	if rec.Client != nil {
		if c.Name == "" {
			c.Name = rec.Client.Name
		}
		if c.Email == "" {
			c.Email = rec.Client.Email
		}
		if c.Phone == "" {
			c.Phone = rec.Client.Phone
		}
		if c.Address == "" {
			c.Address = rec.Client.Address
		}
	}

	return c
}

// resolveSchedule merges the current scheduling fields with the duplicate
// legacy date_rdv/heure_rdv pair. The current field wins when both are set.
func resolveSchedule(rec *backend.TaskRecord) model.Schedule {
	date := rec.ScheduledDate
	if date == "" {
		date = rec.DateRDV
	}

	start := rec.StartTime
	if start == "" {
		start = rec.HeureRDV
	}

	return model.Schedule{
		Date:        ParseTime(date),
		Start:       start,
		End:         rec.EndTime,
		DurationMin: rec.Duration,
	}
}

// ResolvePagination resolves the pagination alias pairs to the canonical
// shape. The camelCase variant (totalPages) takes precedence over
// total_pages when both are present; for the page size, the canonical
// limit field wins over pageSize.
func ResolvePagination(p backend.PaginationRecord) model.Pagination {
	out := model.Pagination{
		Page:  p.Page,
		Total: p.Total,
	}

	switch {
	case p.TotalPages != nil:
		out.TotalPages = *p.TotalPages
	case p.TotalPagesSnake != nil:
		out.TotalPages = *p.TotalPagesSnake
	}

	switch {
	case p.Limit != nil:
		out.Limit = *p.Limit
	case p.PageSize != nil:
		out.Limit = *p.PageSize
	}

	if out.Page < 1 {
		out.Page = 1
	}
	if out.TotalPages < 1 && out.Limit > 0 {
		out.TotalPages = (out.Total + out.Limit - 1) / out.Limit
	}
	if out.TotalPages < 1 {
		out.TotalPages = 1
	}

	return out
}

// EventAction resolves the event-type alias pair of an audit event.
func EventAction(ev backend.AuditEvent) string {
	if ev.EventType != "" {
		return ev.EventType
	}
	return ev.Action
}

// EventUserID resolves the acting-user alias pair of an audit event.
func EventUserID(ev backend.AuditEvent) string {
	if ev.UserID != "" {
		return ev.UserID
	}
	return ev.ActorID
}

// EventTimestamp resolves the timestamp alias pair of an audit event.
func EventTimestamp(ev backend.AuditEvent) time.Time {
	if ev.Timestamp != "" {
		return ParseTime(ev.Timestamp)
	}
	return ParseTime(ev.CreatedAt)
}

// EventTaskID resolves the task-reference alias pair of an audit event.
func EventTaskID(ev backend.AuditEvent) string {
	if ev.ResourceID != "" {
		return ev.ResourceID
	}
	return ev.TaskID
}

// EventDetails resolves the structured-details alias pair of an audit
// event.
func EventDetails(ev backend.AuditEvent) map[string]interface{} {
	if ev.Details != nil {
		return ev.Details
	}
	return ev.Metadata
}

// timeLayouts are the timestamp formats observed across backend versions,
// tried in order.
var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"02/01/2006",
}

// ParseTime parses a backend timestamp string, tolerating every layout a
// past backend version has emitted. Returns the zero time when nothing
// matches.
func ParseTime(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}

	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}

	return time.Time{}
}
