package leave

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campusattend/internal/auth"
)

func pending(t *testing.T) Request {
	t.Helper()
	req, err := New("T100", auth.RoleTeacher, day(1), day(3), "family function")
	require.NoError(t, err)
	return req
}

func day(n int) time.Time {
	return time.Date(2026, 3, n, 0, 0, 0, 0, time.UTC)
}

func TestNewRejectsInvertedRange(t *testing.T) {
	_, err := New("T100", auth.RoleTeacher, day(3), day(1), "oops")
	assert.Error(t, err)
}

func TestApproveByHigherRank(t *testing.T) {
	req := pending(t)
	now := time.Now().UTC()

	err := req.Approve("H1", auth.RoleHOD, now)
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, req.Status)
	assert.Equal(t, "H1", req.ReviewedBy)
	require.NotNil(t, req.ReviewedAt)
	assert.Equal(t, now, *req.ReviewedAt)
}

func TestRejectByHigherRank(t *testing.T) {
	req := pending(t)
	require.NoError(t, req.Reject("P1", auth.RolePrincipal, time.Now()))
	assert.Equal(t, StatusRejected, req.Status)
}

func TestReviewRequiresStrictlyHigherRank(t *testing.T) {
	req := pending(t)
	err := req.Approve("T200", auth.RoleTeacher, time.Now())
	assert.ErrorIs(t, err, ErrForbidden)
	assert.Equal(t, StatusPending, req.Status, "state untouched after a forbidden transition")
}

func TestSelfReviewForbidden(t *testing.T) {
	req, err := New("H1", auth.RoleHOD, day(1), day(2), "conference")
	require.NoError(t, err)

	// even a principal-ranked requester cannot review their own request
	err = req.Approve("H1", auth.RolePrincipal, time.Now())
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestReviewTerminalStateForbidden(t *testing.T) {
	req := pending(t)
	require.NoError(t, req.Approve("H1", auth.RoleHOD, time.Now()))

	err := req.Reject("P1", auth.RolePrincipal, time.Now())
	assert.ErrorIs(t, err, ErrForbidden)
	assert.Equal(t, StatusApproved, req.Status)
}

func TestCancelOnlyByRequesterWhilePending(t *testing.T) {
	req := pending(t)

	err := req.Cancel("H1")
	assert.ErrorIs(t, err, ErrForbidden)

	require.NoError(t, req.Cancel("T100"))
	assert.Equal(t, StatusCancelled, req.Status)

	err = req.Cancel("T100")
	assert.ErrorIs(t, err, ErrForbidden, "cancel is terminal too")
}
