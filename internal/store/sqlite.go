package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/atelierppf/fieldsync/internal/model"
)

// SQLiteStore implements the Store interface using a local SQLite database.
// It is the offline cache: fetched tasks are upserted here so lists stay
// readable without a network round trip.
type SQLiteStore struct {
	db *sqlx.DB
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath,
// enables WAL mode, and runs any pending schema migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.runMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// runMigrations checks the current schema version and applies any
// outstanding migrations in order.
func (s *SQLiteStore) runMigrations() error {
	currentVersion := 0

	// Check if schema_version table exists.
	var tableCount int
	err := s.db.Get(
		&tableCount,
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	)
	if err != nil {
		return fmt.Errorf("checking schema_version table: %w", err)
	}

	if tableCount > 0 {
		err = s.db.Get(&currentVersion, "SELECT COALESCE(MAX(version), 0) FROM schema_version")
		if err != nil {
			return fmt.Errorf("reading schema version: %w", err)
		}
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}
		if _, err := s.db.Exec(m.sql); err != nil {
			return fmt.Errorf("applying migration v%d: %w", m.version, err)
		}
	}

	return nil
}

// UpsertTasks inserts or replaces a batch of tasks. Re-upserting the same
// task ID replaces the row, so a poll cycle is idempotent.
func (s *SQLiteStore) UpsertTasks(ctx context.Context, tasks []model.Task) error {
	if len(tasks) == 0 {
		return nil
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	const query = `
		INSERT OR REPLACE INTO tasks (
			id, title, status, priority,
			customer_name, customer_email, customer_phone, customer_address,
			vehicle_plate, vehicle_make, vehicle_model, vehicle_year, vin,
			ppf_zones, scheduled_date, start_time, end_time, duration_min,
			technician_id, notes, tags,
			created_at, updated_at, fetched_at, raw_data
		) VALUES (
			?, ?, ?, ?,
			?, ?, ?, ?,
			?, ?, ?, ?, ?,
			?, ?, ?, ?, ?,
			?, ?, ?,
			?, ?, ?, ?
		)`

	stmt, err := tx.PreparexContext(ctx, query)
	if err != nil {
		return fmt.Errorf("preparing upsert statement: %w", err)
	}
	defer stmt.Close()

	for _, t := range tasks {
		zones, err := json.Marshal(t.PPFZones)
		if err != nil {
			return fmt.Errorf("marshaling ppf_zones for task %s: %w", t.ID, err)
		}
		tags, err := json.Marshal(t.Tags)
		if err != nil {
			return fmt.Errorf("marshaling tags for task %s: %w", t.ID, err)
		}

		var scheduledDate interface{}
		if !t.Schedule.Date.IsZero() {
			scheduledDate = t.Schedule.Date.UTC()
		}

		_, err = stmt.ExecContext(ctx,
			t.ID, t.Title, t.Status, t.Priority,
			t.Customer.Name, t.Customer.Email, t.Customer.Phone, t.Customer.Address,
			t.Vehicle.Plate, t.Vehicle.Make, t.Vehicle.Model, t.Vehicle.Year, t.Vehicle.VIN,
			string(zones), scheduledDate, t.Schedule.Start, t.Schedule.End, t.Schedule.DurationMin,
			t.TechnicianID, t.Notes, string(tags),
			t.CreatedAt.UTC(), t.UpdatedAt.UTC(), t.FetchedAt.UTC(), t.RawData,
		)
		if err != nil {
			return fmt.Errorf("upserting task %s: %w", t.ID, err)
		}
	}

	return tx.Commit()
}

// GetTasks retrieves cached tasks matching the provided filter options.
func (s *SQLiteStore) GetTasks(
	ctx context.Context,
	opts TaskFilter,
) ([]model.Task, error) {
	var conditions []string
	var args []interface{}

	if opts.Status != nil {
		conditions = append(conditions, "status = ?")
		args = append(args, *opts.Status)
	}
	if opts.Priority != nil {
		conditions = append(conditions, "priority = ?")
		args = append(args, *opts.Priority)
	}
	if opts.TechnicianID != nil {
		conditions = append(conditions, "technician_id = ?")
		args = append(args, *opts.TechnicianID)
	}
	if opts.Query != nil && *opts.Query != "" {
		conditions = append(conditions,
			"(title LIKE ? OR customer_name LIKE ? OR vehicle_plate LIKE ?)")
		q := "%" + *opts.Query + "%"
		args = append(args, q, q, q)
	}

	query := "SELECT * FROM tasks"
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	// Determine sort column.
	sortBy := "updated_at"
	if opts.SortBy != "" {
		allowedSorts := map[string]bool{
			"title":          true,
			"status":         true,
			"priority":       true,
			"scheduled_date": true,
			"created_at":     true,
			"updated_at":     true,
		}
		if allowedSorts[opts.SortBy] {
			sortBy = opts.SortBy
		}
	}

	direction := "ASC"
	if opts.SortDesc {
		direction = "DESC"
	}
	query += fmt.Sprintf(" ORDER BY %s %s", sortBy, direction)

	if opts.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", opts.Limit)
	}
	if opts.Offset > 0 {
		query += fmt.Sprintf(" OFFSET %d", opts.Offset)
	}

	rows, err := s.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying tasks: %w", err)
	}
	defer rows.Close()

	var tasks []model.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}

	return tasks, rows.Err()
}

// GetTaskByID retrieves a single cached task by its ID. Returns nil when
// the task is not cached locally.
func (s *SQLiteStore) GetTaskByID(
	ctx context.Context,
	id string,
) (*model.Task, error) {
	rows, err := s.db.QueryxContext(ctx, "SELECT * FROM tasks WHERE id = ?", id)
	if err != nil {
		return nil, fmt.Errorf("getting task %s: %w", id, err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("getting task %s: %w", id, err)
		}
		return nil, nil
	}

	task, err := scanTask(rows)
	if err != nil {
		return nil, fmt.Errorf("getting task %s: %w", id, err)
	}

	return &task, nil
}

// CreateNotification inserts a new notification record.
func (s *SQLiteStore) CreateNotification(
	ctx context.Context,
	n model.Notification,
) error {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO notifications (id, task_id, message, read, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		n.ID, n.TaskID, n.Message,
		boolToInt(n.Read), n.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("creating notification: %w", err)
	}

	return nil
}

// GetUnreadNotifications retrieves all notifications that have not been read,
// ordered by creation time descending.
func (s *SQLiteStore) GetUnreadNotifications(
	ctx context.Context,
) ([]model.Notification, error) {
	rows, err := s.db.QueryxContext(ctx,
		"SELECT * FROM notifications WHERE read = 0 ORDER BY created_at DESC",
	)
	if err != nil {
		return nil, fmt.Errorf("querying unread notifications: %w", err)
	}
	defer rows.Close()

	var notifications []model.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		notifications = append(notifications, n)
	}

	return notifications, rows.Err()
}

// MarkNotificationRead marks a single notification as read.
func (s *SQLiteStore) MarkNotificationRead(
	ctx context.Context,
	id string,
) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE notifications SET read = 1 WHERE id = ?", id,
	)
	if err != nil {
		return fmt.Errorf("marking notification %s as read: %w", id, err)
	}
	return nil
}

// scanTask scans a task row from a sqlx.Rows result set.
func scanTask(rows *sqlx.Rows) (model.Task, error) {
	var (
		task          model.Task
		zones         string
		tags          string
		scheduledDate sql.NullTime
		createdAt     time.Time
		updatedAt     time.Time
		fetchedAt     time.Time
	)

	err := rows.Scan(
		&task.ID, &task.Title, &task.Status, &task.Priority,
		&task.Customer.Name, &task.Customer.Email,
		&task.Customer.Phone, &task.Customer.Address,
		&task.Vehicle.Plate, &task.Vehicle.Make, &task.Vehicle.Model,
		&task.Vehicle.Year, &task.Vehicle.VIN,
		&zones, &scheduledDate, &task.Schedule.Start, &task.Schedule.End,
		&task.Schedule.DurationMin,
		&task.TechnicianID, &task.Notes, &tags,
		&createdAt, &updatedAt, &fetchedAt, &task.RawData,
	)
	if err != nil {
		return model.Task{}, fmt.Errorf("scanning task row: %w", err)
	}

	if scheduledDate.Valid {
		task.Schedule.Date = scheduledDate.Time
	}
	task.CreatedAt = createdAt
	task.UpdatedAt = updatedAt
	task.FetchedAt = fetchedAt

	if zones != "" {
		if err := json.Unmarshal([]byte(zones), &task.PPFZones); err != nil {
			return model.Task{}, fmt.Errorf("unmarshaling ppf_zones: %w", err)
		}
	}
	if tags != "" {
		if err := json.Unmarshal([]byte(tags), &task.Tags); err != nil {
			return model.Task{}, fmt.Errorf("unmarshaling tags: %w", err)
		}
	}

	return task, nil
}

// scanNotification scans a notification row from a sqlx.Rows result set.
func scanNotification(rows *sqlx.Rows) (model.Notification, error) {
	var (
		n         model.Notification
		readInt   int
		createdAt time.Time
	)

	err := rows.Scan(
		&n.ID, &n.TaskID, &n.Message, &readInt, &createdAt,
	)
	if err != nil {
		return model.Notification{}, fmt.Errorf("scanning notification row: %w", err)
	}

	n.Read = readInt != 0
	n.CreatedAt = createdAt

	return n, nil
}

// boolToInt converts a boolean to 0 or 1 for SQLite storage.
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
