package normalize

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atelierppf/fieldsync/internal/backend"
	"github.com/atelierppf/fieldsync/internal/model"
)

func TestStatusMapping(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"quote", model.StatusQuote},
		{"devis", model.StatusQuote},
		{"scheduled", model.StatusScheduled},
		{"planifié", model.StatusScheduled},
		{"rdv", model.StatusScheduled},
		{"in_progress", model.StatusInProgress},
		{"in-progress", model.StatusInProgress},
		{"en cours", model.StatusInProgress},
		{"EN_COURS", model.StatusInProgress},
		{"paused", model.StatusPaused},
		{"en_pause", model.StatusPaused},
		{"completed", model.StatusCompleted},
		{"terminé", model.StatusCompleted},
		{"done", model.StatusCompleted},
		{"cancelled", model.StatusCancelled},
		{"annulé", model.StatusCancelled},
		{"  scheduled  ", model.StatusScheduled},
		{"", model.StatusInvalid},
		{"garbage", model.StatusInvalid},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Status(tt.in), "Status(%q)", tt.in)
	}
}

func TestPriorityMapping(t *testing.T) {
	assert.Equal(t, model.PriorityHigh, Priority("high"))
	assert.Equal(t, model.PriorityHigh, Priority("urgent"))
	assert.Equal(t, model.PriorityHigh, Priority("haute"))
	assert.Equal(t, model.PriorityLow, Priority("basse"))
	assert.Equal(t, model.PriorityLow, Priority("3"))

	// Unknown and empty values fall back to medium.
	assert.Equal(t, model.PriorityMedium, Priority(""))
	assert.Equal(t, model.PriorityMedium, Priority("whatever"))
}

func TestTaskNilRecord(t *testing.T) {
	assert.Nil(t, Task(nil))
	assert.Nil(t, Record(nil))
}

func TestTaskNormalizesLegacyRecord(t *testing.T) {
	rec := &backend.TaskRecord{
		ID:       "t-42",
		Title:    "  Pose PPF intégrale  ",
		Status:   "en_cours",
		Priority: "haute",
		Client: &backend.ClientRecord{
			Name:  "Jean Dupont",
			Email: "jean@example.com",
		},
		VehiclePlate: "ab-123-cd",
		VehicleMake:  "Porsche",
		VehicleModel: "911",
		VehicleYear:  2023,
		PPFZones:     json.RawMessage(`"capot,pare_choc_avant"`),
		DateRDV:      "2026-03-15",
		HeureRDV:     "09:30",
		Duration:     240,
		TechnicianID: "tech-1",
		CreatedAt:    "2026-03-01T10:00:00Z",
		UpdatedAt:    "2026-03-10 08:15:00",
	}

	task := Task(rec)
	require.NotNil(t, task)

	assert.Equal(t, "t-42", task.ID)
	assert.Equal(t, "Pose PPF intégrale", task.Title)
	assert.Equal(t, model.StatusInProgress, task.Status)
	assert.Equal(t, model.PriorityHigh, task.Priority)
	assert.Equal(t, "Jean Dupont", task.Customer.Name)
	assert.Equal(t, "AB-123-CD", task.Vehicle.Plate)
	assert.Equal(t, []string{"hood", "bumper_front"}, task.PPFZones)
	assert.Equal(t, "09:30", task.Schedule.Start)
	assert.Equal(t, 240, task.Schedule.DurationMin)
	assert.Equal(t, 15, task.Schedule.Date.Day())
	assert.False(t, task.CreatedAt.IsZero())
	assert.False(t, task.UpdatedAt.IsZero())
	assert.False(t, task.FetchedAt.IsZero())
	assert.NotEmpty(t, task.RawData)
}

func TestTaskIdempotent(t *testing.T) {
	rec := &backend.TaskRecord{
		ID:            "t-7",
		Title:         "Avant complet Tesla",
		Status:        "planifié",
		Priority:      "urgent",
		CustomerName:  "Marie Curie",
		CustomerEmail: "marie@example.com",
		VehiclePlate:  "ef-456-gh",
		VehicleMake:   "Tesla",
		VehicleModel:  "Model 3",
		PPFZones:      json.RawMessage(`["front_pack","Mirrors","mirrors"]`),
		ScheduledDate: "2026-04-01T00:00:00Z",
		StartTime:     "14:00",
		EndTime:       "18:00",
		Duration:      240,
		TechnicianID:  "tech-2",
		Tags:          []string{"vip"},
		CreatedAt:     "2026-03-20T09:00:00Z",
		UpdatedAt:     "2026-03-21T09:00:00Z",
	}

	first := Task(rec)
	require.NotNil(t, first)

	// Projecting the canonical task back into the current wire schema and
	// normalizing again must reproduce the same task.
	second := Task(Record(first))
	require.NotNil(t, second)

	second.FetchedAt = first.FetchedAt
	second.RawData = first.RawData
	assert.Equal(t, first, second)
}

func TestTaskRecoversFromMalformedTimestamps(t *testing.T) {
	// A record with every timestamp unparseable still normalizes; bad
	// timestamps degrade to the zero time instead of failing the record.
	rec := &backend.TaskRecord{
		ID:        "t-9",
		Title:     "Capot seul",
		Status:    "quote",
		CreatedAt: "not-a-date",
		UpdatedAt: "also-bad",
	}

	task := Task(rec)
	require.NotNil(t, task)
	assert.True(t, task.CreatedAt.IsZero())
	assert.True(t, task.UpdatedAt.IsZero())
}

func TestResolveCustomerFlatWinsOverNested(t *testing.T) {
	rec := &backend.TaskRecord{
		ID:           "t-1",
		CustomerName: "Flat Name",
		Client: &backend.ClientRecord{
			Name:  "Nested Name",
			Phone: "+33 6 00 00 00 00",
		},
	}

	task := Task(rec)
	require.NotNil(t, task)

	// The flat field wins; the nested object fills the gaps.
	assert.Equal(t, "Flat Name", task.Customer.Name)
	assert.Equal(t, "+33 6 00 00 00 00", task.Customer.Phone)
}

func TestResolveScheduleCurrentFieldWins(t *testing.T) {
	rec := &backend.TaskRecord{
		ID:            "t-2",
		ScheduledDate: "2026-05-01",
		DateRDV:       "2026-06-01",
		StartTime:     "10:00",
		HeureRDV:      "11:00",
	}

	task := Task(rec)
	require.NotNil(t, task)
	assert.Equal(t, time.May, task.Schedule.Date.Month())
	assert.Equal(t, "10:00", task.Schedule.Start)
}

func TestResolvePagination(t *testing.T) {
	intPtr := func(n int) *int { return &n }

	t.Run("camelCase totalPages wins over total_pages", func(t *testing.T) {
		p := ResolvePagination(backend.PaginationRecord{
			Page:            2,
			Total:           95,
			TotalPages:      intPtr(5),
			TotalPagesSnake: intPtr(99),
			Limit:           intPtr(20),
		})
		assert.Equal(t, 5, p.TotalPages)
		assert.Equal(t, 20, p.Limit)
	})

	t.Run("snake_case used when camelCase absent", func(t *testing.T) {
		p := ResolvePagination(backend.PaginationRecord{
			Page:            1,
			Total:           40,
			TotalPagesSnake: intPtr(4),
			PageSize:        intPtr(10),
		})
		assert.Equal(t, 4, p.TotalPages)
		assert.Equal(t, 10, p.Limit)
	})

	t.Run("limit wins over pageSize", func(t *testing.T) {
		p := ResolvePagination(backend.PaginationRecord{
			Page:     1,
			Limit:    intPtr(25),
			PageSize: intPtr(50),
		})
		assert.Equal(t, 25, p.Limit)
	})

	t.Run("total pages computed when absent", func(t *testing.T) {
		p := ResolvePagination(backend.PaginationRecord{
			Page:  1,
			Total: 45,
			Limit: intPtr(20),
		})
		assert.Equal(t, 3, p.TotalPages)
	})

	t.Run("defaults never drop below one", func(t *testing.T) {
		p := ResolvePagination(backend.PaginationRecord{})
		assert.Equal(t, 1, p.Page)
		assert.Equal(t, 1, p.TotalPages)
	})
}

func TestParseTime(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"2026-03-15T09:30:00Z", "2026-03-15"},
		{"2026-03-15T09:30:00", "2026-03-15"},
		{"2026-03-15 09:30:00", "2026-03-15"},
		{"2026-03-15", "2026-03-15"},
		{"15/03/2026", "2026-03-15"},
	}
	for _, tt := range tests {
		got := ParseTime(tt.in)
		require.False(t, got.IsZero(), "ParseTime(%q)", tt.in)
		assert.Equal(t, tt.want, got.Format("2006-01-02"), "ParseTime(%q)", tt.in)
	}

	assert.True(t, ParseTime("").IsZero())
	assert.True(t, ParseTime("   ").IsZero())
	assert.True(t, ParseTime("not a date").IsZero())
}
