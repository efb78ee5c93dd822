package timetable

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Entry is a weekly-recurring class slot. Slots are fixed to one hour;
// the end time is always derived from the start, never stored.
type Entry struct {
	ID                 string    `json:"id"`
	DayOfWeek          int       `json:"day_of_week"` // 1 = Monday .. 7 = Sunday
	StartTime          string    `json:"start_time"`  // "HH:00"
	Subject            string    `json:"subject"`
	TeacherID          string    `json:"teacher_id"`
	Department         string    `json:"department"`
	Year               int       `json:"year"`
	Section            string    `json:"section"`
	TeacherAbsent      bool      `json:"teacher_absent,omitempty"`
	Cancelled          bool      `json:"cancelled,omitempty"`
	CancellationReason string    `json:"cancellation_reason,omitempty"`
	RescheduledFrom    string    `json:"rescheduled_from,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
}

// EndTime derives the slot end as start hour plus one, zero-padded.
func (e Entry) EndTime() string {
	hour, err := startHour(e.StartTime)
	if err != nil {
		return ""
	}
	return fmt.Sprintf("%02d:00", hour+1)
}

// Group renders the class identity for messages, e.g. "CSE-3-A".
func (e Entry) Group() string {
	return fmt.Sprintf("%s-%d-%s", e.Department, e.Year, e.Section)
}

// Check validates field-level constraints before any conflict checking.
func (e Entry) Check() error {
	if e.DayOfWeek < 1 || e.DayOfWeek > 7 {
		return fmt.Errorf("dayOfWeek must be between 1 and 7, got %d", e.DayOfWeek)
	}
	if _, err := startHour(e.StartTime); err != nil {
		return err
	}
	if e.Subject == "" || e.TeacherID == "" {
		return fmt.Errorf("subject and teacherId are required")
	}
	if e.Department == "" || e.Section == "" {
		return fmt.Errorf("department and section are required")
	}
	if e.Year < 1 || e.Year > 4 {
		return fmt.Errorf("year must be between 1 and 4, got %d", e.Year)
	}
	return nil
}

func (e Entry) classKey() string {
	return fmt.Sprintf("%d|%s|%s|%d|%s", e.DayOfWeek, e.StartTime, e.Department, e.Year, e.Section)
}

func (e Entry) teacherKey() string {
	return fmt.Sprintf("%d|%s|%s", e.DayOfWeek, e.StartTime, e.TeacherID)
}

func startHour(start string) (int, error) {
	parts := strings.SplitN(start, ":", 2)
	if len(parts) != 2 || parts[1] != "00" {
		return 0, fmt.Errorf("startTime must be on the hour as HH:00, got %q", start)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, fmt.Errorf("startTime must be on the hour as HH:00, got %q", start)
	}
	return hour, nil
}
