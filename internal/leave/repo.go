package leave

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"campusattend/internal/auth"
)

// Repository persists leave requests in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Insert writes a new request.
func (r *Repository) Insert(ctx context.Context, req Request) (Request, error) {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO leave_requests (id, requester_id, requester_role, from_date, to_date, reason, status)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING created_at
	`, req.ID, req.RequesterID, req.RequesterRole, req.From, req.To, req.Reason, req.Status)
	if err := row.Scan(&req.CreatedAt); err != nil {
		return Request{}, err
	}
	return req, nil
}

// Get returns a request by id, or nil when absent.
func (r *Repository) Get(ctx context.Context, id string) (*Request, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, requester_id, requester_role, from_date, to_date, reason, status,
		       reviewed_by, reviewed_at, created_at
		FROM leave_requests WHERE id = $1
	`, id)
	req, err := scanRequest(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &req, nil
}

// List returns requests, optionally filtered by requester, newest first.
func (r *Repository) List(ctx context.Context, requesterID string, limit int) ([]Request, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
		SELECT id, requester_id, requester_role, from_date, to_date, reason, status,
		       reviewed_by, reviewed_at, created_at
		FROM leave_requests`
	args := []any{}
	if requesterID != "" {
		query += ` WHERE requester_id = $1`
		args = append(args, requesterID)
	}
	query += ` ORDER BY created_at DESC LIMIT $` + itoa(len(args)+1)
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var requests []Request
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, req)
	}
	return requests, rows.Err()
}

// SaveTransition persists the outcome of a state transition.
func (r *Repository) SaveTransition(ctx context.Context, req Request) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE leave_requests
		SET status = $2, reviewed_by = $3, reviewed_at = $4
		WHERE id = $1
	`, req.ID, req.Status, req.ReviewedBy, req.ReviewedAt)
	return err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRequest(row scanner) (Request, error) {
	var req Request
	var role string
	err := row.Scan(&req.ID, &req.RequesterID, &role, &req.From, &req.To, &req.Reason,
		&req.Status, &req.ReviewedBy, &req.ReviewedAt, &req.CreatedAt)
	req.RequesterRole = auth.Role(role)
	return req, err
}

func itoa(i int) string { return fmt.Sprintf("%d", i) }
