package attendance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"campusattend/internal/roster"
)

var marksWritten = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "campus_attendance_marks_total",
	Help: "Attendance records written, by source.",
}, []string{"source"})

// ErrUnlinked is returned when an operation needs a face link that does
// not exist yet.
var ErrUnlinked = errors.New("student has no face link")

// FaceLinkSource provides the persistent-id mapping snapshot.
type FaceLinkSource interface {
	FaceLinks(ctx context.Context) (roster.FaceLinks, error)
}

// Service coordinates attendance capture and manual overrides.
type Service struct {
	repo        *Repository
	links       FaceLinkSource
	dedupWindow time.Duration
}

// NewService creates a service backed by a repository.
func NewService(repo *Repository, links FaceLinkSource, dedupWindow time.Duration) *Service {
	if dedupWindow <= 0 {
		dedupWindow = 5 * time.Minute
	}
	return &Service{repo: repo, links: links, dedupWindow: dedupWindow}
}

// RecordDetection stores a pipeline presence event, deduplicating
// repeated detections of the same person inside the window. Unlinked
// persistent ids are stored too; the resolver reports them as unlinked
// until an admin binds the face.
func (s *Service) RecordDetection(ctx context.Context, persistentID int, at time.Time, subject, emotion string) (Record, error) {
	if persistentID <= 0 {
		return Record{}, errors.New("persistent id required")
	}
	if recent, err := s.repo.RecentDetection(ctx, persistentID, s.dedupWindow); err != nil {
		return Record{}, err
	} else if recent != nil {
		return *recent, nil
	}

	if at.IsZero() {
		at = time.Now().UTC()
	}
	rec, err := s.repo.Insert(ctx, Record{
		PersistentID: persistentID,
		Timestamp:    at,
		Emotion:      emotion,
		Subject:      subject,
		Status:       StatusPresent,
		Source:       SourceAI,
	})
	if err == nil {
		marksWritten.WithLabelValues(string(SourceAI)).Inc()
	}
	return rec, err
}

// MarkManual stores a teacher override for a subject session. The
// override becomes the effective verdict because manual records take
// precedence over pipeline records at resolution time.
func (s *Service) MarkManual(ctx context.Context, roll, subject string, status Status, markedBy string, at time.Time) (Record, error) {
	if roll == "" || subject == "" {
		return Record{}, errors.New("roll number and subject required")
	}
	if status != StatusPresent && status != StatusAbsent {
		return Record{}, fmt.Errorf("invalid status %q", status)
	}
	links, err := s.links.FaceLinks(ctx)
	if err != nil {
		return Record{}, err
	}
	pid, ok := links.PersistentID(roll)
	if !ok {
		return Record{}, ErrUnlinked
	}

	if at.IsZero() {
		at = time.Now().UTC()
	}
	rec, err := s.repo.Insert(ctx, Record{
		PersistentID: pid,
		Timestamp:    at,
		Subject:      subject,
		Status:       status,
		Source:       SourceManual,
		MarkedBy:     markedBy,
	})
	if err == nil {
		marksWritten.WithLabelValues(string(SourceManual)).Inc()
	}
	return rec, err
}

// History returns a person's raw records, newest first.
func (s *Service) History(ctx context.Context, persistentID, limit int) ([]Record, error) {
	if persistentID <= 0 {
		return nil, errors.New("persistent id required")
	}
	return s.repo.ListByPersistentID(ctx, persistentID, limit)
}

// HistoryByRoll resolves a roll number through the face-link table and
// returns that student's records. Unlinked students have no history.
func (s *Service) HistoryByRoll(ctx context.Context, roll string, limit int) ([]Record, error) {
	links, err := s.links.FaceLinks(ctx)
	if err != nil {
		return nil, err
	}
	pid, ok := links.PersistentID(roll)
	if !ok {
		return nil, ErrUnlinked
	}
	return s.repo.ListByPersistentID(ctx, pid, limit)
}

// StudentStatus resolves a student's standing for today from fresh
// snapshots.
func (s *Service) StudentStatus(ctx context.Context, st roster.Student, now time.Time) (StatusResult, error) {
	links, err := s.links.FaceLinks(ctx)
	if err != nil {
		return StatusResult{}, err
	}
	records, err := s.repo.DaySnapshot(ctx, now)
	if err != nil {
		return StatusResult{}, err
	}
	return ResolveStudentStatus(st, links, records, now), nil
}

// SessionStatus resolves one subject session for a student.
func (s *Service) SessionStatus(ctx context.Context, st roster.Student, subject string, sessionDate time.Time) (SessionStatus, error) {
	links, err := s.links.FaceLinks(ctx)
	if err != nil {
		return "", err
	}
	records, err := s.repo.DaySnapshot(ctx, sessionDate)
	if err != nil {
		return "", err
	}
	return ResolveSessionAttendance(st, subject, sessionDate, records, links), nil
}
