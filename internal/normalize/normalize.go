// Package normalize converts heterogeneous backend task payloads into the
// one canonical shape the rest of the application consumes. Normalization
// is a pure function of its input: the same record always yields the same
// task, and normalizing already-canonical data is a no-op.
package normalize

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/atelierppf/fieldsync/internal/backend"
	"github.com/atelierppf/fieldsync/internal/model"
)

var log = logrus.StandardLogger()

// SetLogger replaces the logger used for normalization diagnostics.
func SetLogger(l *logrus.Logger) {
	if l != nil {
		log = l
	}
}

// Task converts a raw backend task record into the canonical model. A nil
// record yields nil. Normalization never panics outward: an internal
// failure is recovered, logged, and surfaced as nil so hooks built on top
// always receive a defined-or-nil value.
func Task(rec *backend.TaskRecord) (task *model.Task) {
	if rec == nil {
		return nil
	}

	defer func() {
		if r := recover(); r != nil {
			log.WithFields(logrus.Fields{
				"task_id": rec.ID,
				"panic":   r,
			}).Warn("task normalization failed; dropping record")
			task = nil
		}
	}()

	rawData, _ := json.Marshal(rec)

	return &model.Task{
		ID:           rec.ID,
		Title:        strings.TrimSpace(rec.Title),
		Status:       Status(rec.Status),
		Priority:     Priority(rec.Priority),
		Customer:     resolveCustomer(rec),
		Vehicle: model.Vehicle{
			Plate: strings.ToUpper(strings.TrimSpace(rec.VehiclePlate)),
			Make:  strings.TrimSpace(rec.VehicleMake),
			Model: strings.TrimSpace(rec.VehicleModel),
			Year:  rec.VehicleYear,
			VIN:   strings.ToUpper(strings.TrimSpace(rec.VIN)),
		},
		PPFZones:     decodeZones(rec.PPFZones),
		Schedule:     resolveSchedule(rec),
		TechnicianID: rec.TechnicianID,
		Notes:        rec.Notes,
		Tags:         rec.Tags,
		CreatedAt:    ParseTime(rec.CreatedAt),
		UpdatedAt:    ParseTime(rec.UpdatedAt),
		FetchedAt:    time.Now(),
		RawData:      string(rawData),
	}
}

// Record projects a canonical task back into the current wire schema.
// Only current-schema fields are emitted; re-normalizing the result yields
// the same task (modulo FetchedAt/RawData).
func Record(t *model.Task) *backend.TaskRecord {
	if t == nil {
		return nil
	}

	var zones json.RawMessage
	if len(t.PPFZones) > 0 {
		zones, _ = json.Marshal(t.PPFZones)
	}

	var scheduledDate string
	if !t.Schedule.Date.IsZero() {
		scheduledDate = t.Schedule.Date.Format(time.RFC3339)
	}
	var createdAt, updatedAt string
	if !t.CreatedAt.IsZero() {
		createdAt = t.CreatedAt.Format(time.RFC3339)
	}
	if !t.UpdatedAt.IsZero() {
		updatedAt = t.UpdatedAt.Format(time.RFC3339)
	}

	return &backend.TaskRecord{
		ID:              t.ID,
		Title:           t.Title,
		Status:          t.Status,
		Priority:        t.Priority,
		CustomerName:    t.Customer.Name,
		CustomerEmail:   t.Customer.Email,
		CustomerPhone:   t.Customer.Phone,
		CustomerAddress: t.Customer.Address,
		VehiclePlate:    t.Vehicle.Plate,
		VehicleMake:     t.Vehicle.Make,
		VehicleModel:    t.Vehicle.Model,
		VehicleYear:     t.Vehicle.Year,
		VIN:             t.Vehicle.VIN,
		PPFZones:        zones,
		ScheduledDate:   scheduledDate,
		StartTime:       t.Schedule.Start,
		EndTime:         t.Schedule.End,
		Duration:        t.Schedule.DurationMin,
		TechnicianID:    t.TechnicianID,
		Notes:           t.Notes,
		Tags:            t.Tags,
		CreatedAt:       createdAt,
		UpdatedAt:       updatedAt,
	}
}

// Status maps a backend status value to a normalized status constant.
// Canonical values map to themselves; anything unrecognized becomes
// StatusInvalid.
func Status(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case model.StatusQuote, "devis":
		return model.StatusQuote
	case model.StatusScheduled, "planifie", "planifié", "rdv":
		return model.StatusScheduled
	case model.StatusInProgress, "in-progress", "en_cours", "en cours":
		return model.StatusInProgress
	case model.StatusPaused, "pause", "en_pause":
		return model.StatusPaused
	case model.StatusCompleted, "done", "termine", "terminé":
		return model.StatusCompleted
	case model.StatusCancelled, "canceled", "annule", "annulé":
		return model.StatusCancelled
	default:
		return model.StatusInvalid
	}
}

// Priority maps a backend priority value to a normalized priority level.
// Unknown values default to medium.
func Priority(p string) string {
	switch strings.ToLower(strings.TrimSpace(p)) {
	case model.PriorityHigh, "haute", "urgent", "1":
		return model.PriorityHigh
	case model.PriorityLow, "basse", "3":
		return model.PriorityLow
	default:
		return model.PriorityMedium
	}
}
