package store

// migration holds a single schema migration with its target version and SQL.
type migration struct {
	version int
	sql     string
}

// migrations is the ordered list of schema migrations.
// Each migration's version must be sequential starting from 1.
var migrations = []migration{
	{
		version: 1,
		sql: `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS tasks (
	id               TEXT PRIMARY KEY,
	title            TEXT NOT NULL,
	status           TEXT NOT NULL DEFAULT 'quote',
	priority         TEXT NOT NULL DEFAULT 'medium',
	customer_name    TEXT NOT NULL DEFAULT '',
	customer_email   TEXT NOT NULL DEFAULT '',
	customer_phone   TEXT NOT NULL DEFAULT '',
	customer_address TEXT NOT NULL DEFAULT '',
	vehicle_plate    TEXT NOT NULL DEFAULT '',
	vehicle_make     TEXT NOT NULL DEFAULT '',
	vehicle_model    TEXT NOT NULL DEFAULT '',
	vehicle_year     INTEGER NOT NULL DEFAULT 0,
	vin              TEXT NOT NULL DEFAULT '',
	ppf_zones        TEXT NOT NULL DEFAULT '[]',
	scheduled_date   DATETIME,
	start_time       TEXT NOT NULL DEFAULT '',
	end_time         TEXT NOT NULL DEFAULT '',
	duration_min     INTEGER NOT NULL DEFAULT 0,
	technician_id    TEXT NOT NULL DEFAULT '',
	notes            TEXT NOT NULL DEFAULT '',
	tags             TEXT NOT NULL DEFAULT '[]',
	created_at       DATETIME NOT NULL,
	updated_at       DATETIME NOT NULL,
	fetched_at       DATETIME NOT NULL,
	raw_data         TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS notifications (
	id          TEXT PRIMARY KEY,
	task_id     TEXT NOT NULL,
	message     TEXT NOT NULL,
	read        INTEGER NOT NULL DEFAULT 0,
	created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_tasks_status ON tasks(status);
CREATE INDEX IF NOT EXISTS idx_tasks_priority ON tasks(priority);
CREATE INDEX IF NOT EXISTS idx_tasks_technician ON tasks(technician_id);
CREATE INDEX IF NOT EXISTS idx_tasks_updated_at ON tasks(updated_at);
CREATE INDEX IF NOT EXISTS idx_notifications_read ON notifications(read);
CREATE INDEX IF NOT EXISTS idx_notifications_created ON notifications(created_at);

INSERT INTO schema_version (version) VALUES (1);
`,
	},
	{
		version: 2,
		sql: `
CREATE INDEX IF NOT EXISTS idx_tasks_scheduled_date ON tasks(scheduled_date);

CREATE INDEX IF NOT EXISTS idx_notifications_task_id
	ON notifications(task_id);

INSERT INTO schema_version (version) VALUES (2);
`,
	},
}
