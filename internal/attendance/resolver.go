package attendance

import (
	"time"

	"campusattend/internal/roster"
)

// DayStatus is the derived whole-day standing of a student.
type DayStatus string

const (
	DayBlocked  DayStatus = "blocked"
	DayUnlinked DayStatus = "unlinked"
	DayPresent  DayStatus = "present"
	DayAbsent   DayStatus = "absent"
)

// SessionStatus is the derived standing for one class session.
type SessionStatus string

const (
	SessionPresent SessionStatus = "present"
	SessionAbsent  SessionStatus = "absent"
	// SessionPending means the student has no face link yet, so the
	// session cannot be resolved either way.
	SessionPending SessionStatus = "pending"
)

// StatusResult is the resolver output for one student.
type StatusResult struct {
	Status  DayStatus  `json:"status"`
	LastLog *time.Time `json:"last_log,omitempty"`
}

// ResolveStudentStatus derives a student's standing from a records
// snapshot. Block state wins over everything, then the face-link check,
// then a same-calendar-day scan of the student's records. The result is
// wall-clock dependent through both the block expiry and the meaning of
// "today", so callers re-evaluate every tick rather than caching.
func ResolveStudentStatus(st roster.Student, links roster.FaceLinks, records []Record, now time.Time) StatusResult {
	if st.BlockedAt(now) {
		return StatusResult{Status: DayBlocked}
	}
	pid, ok := links.PersistentID(st.RollNumber)
	if !ok {
		return StatusResult{Status: DayUnlinked}
	}

	var last *time.Time
	for i := range records {
		rec := &records[i]
		if rec.PersistentID != pid || !sameDay(rec.Timestamp, now) {
			continue
		}
		if last == nil || rec.Timestamp.After(*last) {
			t := rec.Timestamp
			last = &t
		}
	}
	if last == nil {
		return StatusResult{Status: DayAbsent}
	}
	return StatusResult{Status: DayPresent, LastLog: last}
}

// ResolveSessionAttendance derives one subject session's outcome.
// Manual records always win over the pipeline: the latest manual row's
// status is taken when any exists, which makes corrections idempotent
// (resubmitting replaces the effective verdict without touching
// history). Otherwise any pipeline record counts as present regardless
// of its stored status, since the pipeline only emits presence events.
func ResolveSessionAttendance(st roster.Student, subject string, sessionDate time.Time, records []Record, links roster.FaceLinks) SessionStatus {
	pid, ok := links.PersistentID(st.RollNumber)
	if !ok {
		return SessionPending
	}

	var latestManual *Record
	sawAI := false
	for i := range records {
		rec := &records[i]
		if rec.PersistentID != pid || rec.Subject != subject || !sameDay(rec.Timestamp, sessionDate) {
			continue
		}
		switch rec.Source {
		case SourceManual:
			if latestManual == nil || rec.Timestamp.After(latestManual.Timestamp) {
				latestManual = rec
			}
		case SourceAI:
			sawAI = true
		}
	}

	switch {
	case latestManual != nil:
		if latestManual.Status == StatusAbsent {
			return SessionAbsent
		}
		return SessionPresent
	case sawAI:
		return SessionPresent
	default:
		return SessionAbsent
	}
}

// sameDay compares calendar dates in the reference time's location.
func sameDay(t, ref time.Time) bool {
	t = t.In(ref.Location())
	return t.Year() == ref.Year() && t.YearDay() == ref.YearDay()
}
