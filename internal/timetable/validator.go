package timetable

import "fmt"

// ConflictError rejects an entry that would double-book a class slot or
// a teacher. Conflicting carries the existing entry so callers can show
// what the candidate collided with.
type ConflictError struct {
	Reason      string
	Conflicting Entry
}

func (e *ConflictError) Error() string { return e.Reason }

// Validate checks a candidate against existing entries. The class-slot
// check runs before the teacher check so that when both apply only the
// class conflict is surfaced. Cancelled entries and the entry being
// edited (matched by id) never conflict.
func Validate(candidate Entry, existing []Entry) error {
	for i := range existing {
		other := &existing[i]
		if other.Cancelled || (candidate.ID != "" && other.ID == candidate.ID) {
			continue
		}
		if other.classKey() == candidate.classKey() {
			return &ConflictError{
				Reason: fmt.Sprintf("class slot already occupied by %s for %s on day %d at %s",
					other.Subject, other.Group(), other.DayOfWeek, other.StartTime),
				Conflicting: *other,
			}
		}
	}
	for i := range existing {
		other := &existing[i]
		if other.Cancelled || (candidate.ID != "" && other.ID == candidate.ID) {
			continue
		}
		if other.teacherKey() == candidate.teacherKey() {
			return &ConflictError{
				Reason: fmt.Sprintf("teacher %s already scheduled for %s (%s) on day %d at %s",
					other.TeacherID, other.Subject, other.Group(), other.DayOfWeek, other.StartTime),
				Conflicting: *other,
			}
		}
	}
	return nil
}

// RowIssue reports a rejected batch row. Row is the 1-based position in
// the input, matching how CSV imports number lines.
type RowIssue struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

// ValidateBatch partitions candidate rows into accepted and rejected,
// validating each against the pre-existing entries plus every
// previously accepted row so duplicates inside one batch are caught.
// All rows are evaluated; the first error never aborts the batch.
func ValidateBatch(rows []Entry, existing []Entry) (valid []Entry, invalid []RowIssue) {
	accumulator := make([]Entry, len(existing), len(existing)+len(rows))
	copy(accumulator, existing)

	for i, row := range rows {
		if err := row.Check(); err != nil {
			invalid = append(invalid, RowIssue{Row: i + 1, Reason: err.Error()})
			continue
		}
		if err := Validate(row, accumulator); err != nil {
			invalid = append(invalid, RowIssue{Row: i + 1, Reason: err.Error()})
			continue
		}
		accumulator = append(accumulator, row)
		valid = append(valid, row)
	}
	return valid, invalid
}
