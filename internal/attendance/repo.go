package attendance

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Repository persists attendance records in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Insert writes a new record. Records are never updated afterwards.
func (r *Repository) Insert(ctx context.Context, rec Record) (Record, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now().UTC()
	}
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO attendance_records (id, persistent_id, occurred_at, emotion, subject, status, source, marked_by)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		RETURNING created_at
	`, rec.ID, rec.PersistentID, rec.Timestamp, rec.Emotion, rec.Subject, rec.Status, rec.Source, rec.MarkedBy)
	if err := row.Scan(&rec.CreatedAt); err != nil {
		return Record{}, err
	}
	return rec, nil
}

// RecentDetection returns the newest pipeline record for a persistent id
// within the window, or nil. Used to deduplicate rapid re-detections of
// the same person.
func (r *Repository) RecentDetection(ctx context.Context, persistentID int, window time.Duration) (*Record, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, persistent_id, occurred_at, emotion, subject, status, source, marked_by, created_at
		FROM attendance_records
		WHERE persistent_id = $1 AND source = $2 AND occurred_at >= NOW() - ($3 * interval '1 second')
		ORDER BY occurred_at DESC
		LIMIT 1
	`, persistentID, SourceAI, window.Seconds())
	rec, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &rec, nil
}

// DaySnapshot returns all records whose occurred_at falls on the given
// calendar day. The resolver works on this snapshot in memory.
func (r *Repository) DaySnapshot(ctx context.Context, day time.Time) ([]Record, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	end := start.Add(24 * time.Hour)
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, persistent_id, occurred_at, emotion, subject, status, source, marked_by, created_at
		FROM attendance_records
		WHERE occurred_at >= $1 AND occurred_at < $2
		ORDER BY occurred_at
	`, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// ListByPersistentID returns records for one person, newest first.
func (r *Repository) ListByPersistentID(ctx context.Context, persistentID, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, persistent_id, occurred_at, emotion, subject, status, source, marked_by, created_at
		FROM attendance_records
		WHERE persistent_id = $1
		ORDER BY occurred_at DESC
		LIMIT $2
	`, persistentID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (Record, error) {
	var rec Record
	err := row.Scan(&rec.ID, &rec.PersistentID, &rec.Timestamp, &rec.Emotion,
		&rec.Subject, &rec.Status, &rec.Source, &rec.MarkedBy, &rec.CreatedAt)
	return rec, err
}
