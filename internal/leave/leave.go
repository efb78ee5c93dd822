// Package leave implements the staff leave-request workflow: a request
// starts pending and transitions exactly once to approved, rejected or
// cancelled.
package leave

import (
	"errors"
	"fmt"
	"time"

	"campusattend/internal/auth"
)

// ErrForbidden rejects a transition the actor is not allowed to make.
// Authority is checked before any state change.
var ErrForbidden = errors.New("forbidden")

// Status is the lifecycle state of a request.
type Status string

const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
	StatusCancelled Status = "cancelled"
)

// Request is a leave request. Reviewer fields are set on the approve or
// reject transition and stay empty otherwise.
type Request struct {
	ID            string     `json:"id"`
	RequesterID   string     `json:"requester_id"`
	RequesterRole auth.Role  `json:"requester_role"`
	From          time.Time  `json:"from"`
	To            time.Time  `json:"to"`
	Reason        string     `json:"reason"`
	Status        Status     `json:"status"`
	ReviewedBy    string     `json:"reviewed_by,omitempty"`
	ReviewedAt    *time.Time `json:"reviewed_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

// New builds a pending request after range validation.
func New(requesterID string, requesterRole auth.Role, from, to time.Time, reason string) (Request, error) {
	if requesterID == "" {
		return Request{}, errors.New("requester id required")
	}
	if !requesterRole.Valid() {
		return Request{}, fmt.Errorf("unknown designation %q", requesterRole)
	}
	if to.Before(from) {
		return Request{}, errors.New("leave end date before start date")
	}
	return Request{
		RequesterID:   requesterID,
		RequesterRole: requesterRole,
		From:          from,
		To:            to,
		Reason:        reason,
		Status:        StatusPending,
	}, nil
}

// Approve moves a pending request to approved. The reviewer must
// outrank the requester and can never be the requester.
func (r *Request) Approve(reviewerID string, reviewerRole auth.Role, now time.Time) error {
	return r.review(StatusApproved, reviewerID, reviewerRole, now)
}

// Reject moves a pending request to rejected under the same authority
// rules as Approve.
func (r *Request) Reject(reviewerID string, reviewerRole auth.Role, now time.Time) error {
	return r.review(StatusRejected, reviewerID, reviewerRole, now)
}

// Cancel lets the requester withdraw a still-pending request.
func (r *Request) Cancel(actorID string) error {
	if actorID != r.RequesterID {
		return fmt.Errorf("%w: only the requester may cancel", ErrForbidden)
	}
	if r.Status != StatusPending {
		return fmt.Errorf("%w: request is already %s", ErrForbidden, r.Status)
	}
	r.Status = StatusCancelled
	return nil
}

func (r *Request) review(to Status, reviewerID string, reviewerRole auth.Role, now time.Time) error {
	if reviewerID == r.RequesterID {
		return fmt.Errorf("%w: cannot review your own request", ErrForbidden)
	}
	if !reviewerRole.Outranks(r.RequesterRole) {
		return fmt.Errorf("%w: %s cannot review a request from %s", ErrForbidden, reviewerRole, r.RequesterRole)
	}
	if r.Status != StatusPending {
		return fmt.Errorf("%w: request is already %s", ErrForbidden, r.Status)
	}
	r.Status = to
	r.ReviewedBy = reviewerID
	t := now
	r.ReviewedAt = &t
	return nil
}
