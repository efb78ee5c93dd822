package attendance

import "time"

// Source tags how a record was created.
type Source string

const (
	// SourceAI marks records written by the face-detection pipeline.
	// The pipeline only ever emits presence events; it never writes an
	// absent row.
	SourceAI Source = "ai"
	// SourceManual marks teacher overrides.
	SourceManual Source = "manual"
)

// Status is the recorded attendance outcome.
type Status string

const (
	StatusPresent Status = "present"
	StatusAbsent  Status = "absent"
)

// DetectionEvent is the queue payload for a face-pipeline capture, in
// transit between the capture endpoint and the worker.
type DetectionEvent struct {
	PersistentID int    `json:"persistent_id"`
	Timestamp    string `json:"timestamp,omitempty"`
	Subject      string `json:"subject,omitempty"`
	ImageURL     string `json:"image_url,omitempty"`
}

// Record is a single presence event. Records are append-only:
// corrections are new manual rows, never updates in place.
type Record struct {
	ID           string    `json:"id"`
	PersistentID int       `json:"persistent_id"`
	Timestamp    time.Time `json:"timestamp"`
	Emotion      string    `json:"emotion,omitempty"`
	Subject      string    `json:"subject,omitempty"`
	Status       Status    `json:"status"`
	Source       Source    `json:"source"`
	MarkedBy     string    `json:"marked_by,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}
