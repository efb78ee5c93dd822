package store

import (
	"context"
	"database/sql"
)

// Migrate applies the schema. Everything is idempotent so both binaries
// can run it at startup.
func Migrate(ctx context.Context, db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS students (
		roll_number      TEXT PRIMARY KEY,
		name             TEXT NOT NULL,
		department       TEXT NOT NULL,
		year             INT  NOT NULL,
		section          TEXT NOT NULL,
		email            TEXT NOT NULL DEFAULT '',
		phone            TEXT NOT NULL DEFAULT '',
		verified         BOOLEAN NOT NULL DEFAULT FALSE,
		block_permanent  BOOLEAN NOT NULL DEFAULT FALSE,
		block_expires_at TIMESTAMPTZ,
		blocked_by       TEXT NOT NULL DEFAULT '',
		created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS staff (
		staff_id      TEXT PRIMARY KEY,
		name          TEXT NOT NULL,
		designation   TEXT NOT NULL,
		department    TEXT NOT NULL DEFAULT '',
		year          INT  NOT NULL DEFAULT 0,
		section       TEXT NOT NULL DEFAULT '',
		is_blocked    BOOLEAN NOT NULL DEFAULT FALSE,
		present_today BOOLEAN,
		password_hash TEXT NOT NULL DEFAULT '',
		created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS face_links (
		persistent_id INT PRIMARY KEY,
		roll_number   TEXT NOT NULL REFERENCES students(roll_number)
	);

	CREATE TABLE IF NOT EXISTS attendance_records (
		id            TEXT PRIMARY KEY,
		persistent_id INT  NOT NULL,
		occurred_at   TIMESTAMPTZ NOT NULL,
		emotion       TEXT NOT NULL DEFAULT '',
		subject       TEXT NOT NULL DEFAULT '',
		status        TEXT NOT NULL,
		source        TEXT NOT NULL,
		marked_by     TEXT NOT NULL DEFAULT '',
		created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
	CREATE INDEX IF NOT EXISTS idx_attendance_pid  ON attendance_records(persistent_id);
	CREATE INDEX IF NOT EXISTS idx_attendance_time ON attendance_records(occurred_at);

	CREATE TABLE IF NOT EXISTS timetable_entries (
		id                  TEXT PRIMARY KEY,
		day_of_week         INT  NOT NULL,
		start_time          TEXT NOT NULL,
		subject             TEXT NOT NULL,
		teacher_id          TEXT NOT NULL,
		department          TEXT NOT NULL,
		year                INT  NOT NULL,
		section             TEXT NOT NULL,
		teacher_absent      BOOLEAN NOT NULL DEFAULT FALSE,
		cancelled           BOOLEAN NOT NULL DEFAULT FALSE,
		cancellation_reason TEXT NOT NULL DEFAULT '',
		rescheduled_from    TEXT NOT NULL DEFAULT '',
		created_at          TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
	CREATE INDEX IF NOT EXISTS idx_timetable_slot ON timetable_entries(day_of_week, start_time);

	CREATE TABLE IF NOT EXISTS leave_requests (
		id             TEXT PRIMARY KEY,
		requester_id   TEXT NOT NULL,
		requester_role TEXT NOT NULL,
		from_date      TIMESTAMPTZ NOT NULL,
		to_date        TIMESTAMPTZ NOT NULL,
		reason         TEXT NOT NULL DEFAULT '',
		status         TEXT NOT NULL,
		reviewed_by    TEXT NOT NULL DEFAULT '',
		reviewed_at    TIMESTAMPTZ,
		created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
	`
	_, err := db.ExecContext(ctx, schema)
	return err
}
