package normalize

import (
	"fmt"
	"strings"

	"github.com/atelierppf/fieldsync/internal/model"
)

// MissingCustomerName is the placeholder rendered when a task carries no
// customer name under any alias.
const MissingCustomerName = "Client sans nom"

// CustomerDisplayName returns the customer name for display, substituting
// the fixed placeholder when no name survived normalization.
func CustomerDisplayName(t *model.Task) string {
	if t == nil || strings.TrimSpace(t.Customer.Name) == "" {
		return MissingCustomerName
	}
	return t.Customer.Name
}

// VehicleLabel renders the vehicle as a single display string. Missing
// fields are omitted rather than rendered as placeholders.
func VehicleLabel(t *model.Task) string {
	if t == nil {
		return ""
	}

	var parts []string
	if t.Vehicle.Make != "" {
		parts = append(parts, t.Vehicle.Make)
	}
	if t.Vehicle.Model != "" {
		parts = append(parts, t.Vehicle.Model)
	}
	if t.Vehicle.Year > 0 {
		parts = append(parts, fmt.Sprintf("(%d)", t.Vehicle.Year))
	}

	label := strings.Join(parts, " ")
	if t.Vehicle.Plate != "" {
		if label == "" {
			return t.Vehicle.Plate
		}
		label += " " + t.Vehicle.Plate
	}
	return label
}

// ZoneLabels returns the display names of a task's selected PPF zones, in
// selection order.
func ZoneLabels(t *model.Task) []string {
	if t == nil || len(t.PPFZones) == 0 {
		return nil
	}

	labels := make([]string, 0, len(t.PPFZones))
	for _, id := range t.PPFZones {
		labels = append(labels, ZoneName(id))
	}
	return labels
}

// FormatDuration renders a duration in minutes as "{H}h {M}min" when at
// least one full hour is present, else "{M}min".
func FormatDuration(minutes int) string {
	if minutes < 0 {
		minutes = 0
	}
	hours := minutes / 60
	remainder := minutes % 60
	if hours > 0 {
		return fmt.Sprintf("%dh %dmin", hours, remainder)
	}
	return fmt.Sprintf("%dmin", remainder)
}

// FormatScheduleDate renders the appointment day in day/month/year order,
// or an empty string when the task has no date.
func FormatScheduleDate(s model.Schedule) string {
	if s.Date.IsZero() {
		return ""
	}
	return s.Date.Format("02/01/2006")
}

// FormatScheduleRange renders the appointment time window. A lone start
// time renders by itself; a missing start renders nothing.
func FormatScheduleRange(s model.Schedule) string {
	if s.Start == "" {
		return ""
	}
	if s.End == "" {
		return s.Start
	}
	return s.Start + " - " + s.End
}
