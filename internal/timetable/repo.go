package timetable

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
)

// Repository persists timetable entries in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// List returns all entries, cancelled ones included, ordered for
// weekly-grid display.
func (r *Repository) List(ctx context.Context) ([]Entry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, day_of_week, start_time, subject, teacher_id, department, year, section,
		       teacher_absent, cancelled, cancellation_reason, rescheduled_from, created_at
		FROM timetable_entries
		ORDER BY day_of_week, start_time, department, year, section
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Get returns one entry by id, or nil when absent.
func (r *Repository) Get(ctx context.Context, id string) (*Entry, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, day_of_week, start_time, subject, teacher_id, department, year, section,
		       teacher_absent, cancelled, cancellation_reason, rescheduled_from, created_at
		FROM timetable_entries WHERE id = $1
	`, id)
	e, err := scanEntry(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &e, nil
}

// Insert writes a new entry. Conflict validation happens in memory
// before this is called; the store does not re-check.
func (r *Repository) Insert(ctx context.Context, e Entry) (Entry, error) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO timetable_entries
			(id, day_of_week, start_time, subject, teacher_id, department, year, section,
			 teacher_absent, cancelled, cancellation_reason, rescheduled_from)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
		RETURNING created_at
	`, e.ID, e.DayOfWeek, e.StartTime, e.Subject, e.TeacherID, e.Department, e.Year, e.Section,
		e.TeacherAbsent, e.Cancelled, e.CancellationReason, e.RescheduledFrom)
	if err := row.Scan(&e.CreatedAt); err != nil {
		return Entry{}, err
	}
	return e, nil
}

// Update rewrites an existing entry in place.
func (r *Repository) Update(ctx context.Context, e Entry) error {
	if e.ID == "" {
		return errors.New("entry id required")
	}
	_, err := r.db.ExecContext(ctx, `
		UPDATE timetable_entries
		SET day_of_week = $2, start_time = $3, subject = $4, teacher_id = $5,
		    department = $6, year = $7, section = $8, teacher_absent = $9,
		    cancelled = $10, cancellation_reason = $11, rescheduled_from = $12
		WHERE id = $1
	`, e.ID, e.DayOfWeek, e.StartTime, e.Subject, e.TeacherID, e.Department, e.Year, e.Section,
		e.TeacherAbsent, e.Cancelled, e.CancellationReason, e.RescheduledFrom)
	return err
}

// Cancel marks an entry cancelled with a reason, freeing its slot for
// conflict purposes.
func (r *Repository) Cancel(ctx context.Context, id, reason string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE timetable_entries SET cancelled = TRUE, cancellation_reason = $2 WHERE id = $1
	`, id, reason)
	return err
}

// Delete removes an entry.
func (r *Repository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM timetable_entries WHERE id = $1`, id)
	return err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (Entry, error) {
	var e Entry
	err := row.Scan(&e.ID, &e.DayOfWeek, &e.StartTime, &e.Subject, &e.TeacherID,
		&e.Department, &e.Year, &e.Section, &e.TeacherAbsent, &e.Cancelled,
		&e.CancellationReason, &e.RescheduledFrom, &e.CreatedAt)
	return e, err
}
