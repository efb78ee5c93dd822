package roster

import (
	"fmt"
	"time"

	"campusattend/internal/auth"
)

// Student is an enrolled student row.
type Student struct {
	RollNumber     string     `json:"roll_number"`
	Name           string     `json:"name"`
	Department     string     `json:"department"`
	Year           int        `json:"year"`
	Section        string     `json:"section"`
	Email          string     `json:"email,omitempty"`
	Phone          string     `json:"phone,omitempty"`
	Verified       bool       `json:"verified"`
	BlockPermanent bool       `json:"block_permanent"`
	BlockExpiresAt *time.Time `json:"block_expires_at,omitempty"`
	BlockedBy      string     `json:"blocked_by,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

// BlockedAt reports whether the student is blocked as of now.
// Expiry is lazy: a past expiry timestamp means unblocked without any
// background job clearing the field.
func (s Student) BlockedAt(now time.Time) bool {
	if s.BlockPermanent {
		return true
	}
	return s.BlockExpiresAt != nil && s.BlockExpiresAt.After(now)
}

// Staff is a staff-directory row. Year and Section only carry meaning
// for the incharge designation.
type Staff struct {
	StaffID      string    `json:"staff_id"`
	Name         string    `json:"name"`
	Designation  auth.Role `json:"designation"`
	Department   string    `json:"department"`
	Year         int       `json:"year,omitempty"`
	Section      string    `json:"section,omitempty"`
	IsBlocked    bool      `json:"is_blocked"`
	PresentToday *bool     `json:"present_today,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// Present reports today's presence; an unset flag counts as present.
func (s Staff) Present() bool {
	return s.PresentToday == nil || *s.PresentToday
}

// FaceLinks maps the face pipeline's persistent id to a roll number.
// The persistent id is an opaque handle assigned by the detection
// pipeline; it is reconciled with enrollment identity here, never
// collapsed into the roll number itself.
type FaceLinks map[int]string

// Roll returns the roll number linked to a persistent id.
func (fl FaceLinks) Roll(persistentID int) (string, bool) {
	roll, ok := fl[persistentID]
	return roll, ok
}

// PersistentID returns the persistent id linked to a roll number.
func (fl FaceLinks) PersistentID(roll string) (int, bool) {
	for pid, r := range fl {
		if r == roll {
			return pid, true
		}
	}
	return 0, false
}

// FormatRemaining renders the time left on a block as HH:MM:SS for
// countdown display. Callers poll it on a ticker; nothing pushes an
// expiry event.
func FormatRemaining(permanent bool, expiresAt *time.Time, now time.Time) string {
	if permanent {
		return "Permanent"
	}
	if expiresAt == nil {
		return "Expired"
	}
	remaining := expiresAt.Sub(now)
	if remaining <= 0 {
		return "Expired"
	}
	total := int(remaining / time.Second)
	return fmt.Sprintf("%02d:%02d:%02d", total/3600, (total%3600)/60, total%60)
}
