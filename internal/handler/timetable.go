package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"campusattend/internal/timetable"
)

// ListTimetable returns the full weekly grid.
func (h *Handler) ListTimetable(c *gin.Context) {
	entries, err := h.tt.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if entries == nil {
		entries = []timetable.Entry{}
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries})
}

type entryRequest struct {
	DayOfWeek  int    `json:"day_of_week" binding:"required"`
	StartTime  string `json:"start_time" binding:"required"`
	Subject    string `json:"subject" binding:"required"`
	TeacherID  string `json:"teacher_id" binding:"required"`
	Department string `json:"department" binding:"required"`
	Year       int    `json:"year" binding:"required"`
	Section    string `json:"section" binding:"required"`
}

func (r entryRequest) entry(id string) timetable.Entry {
	return timetable.Entry{
		ID:         id,
		DayOfWeek:  r.DayOfWeek,
		StartTime:  r.StartTime,
		Subject:    r.Subject,
		TeacherID:  r.TeacherID,
		Department: r.Department,
		Year:       r.Year,
		Section:    r.Section,
	}
}

// CreateEntry validates a new slot against the current grid and inserts
// it. Class conflicts are reported before teacher conflicts.
func (h *Handler) CreateEntry(c *gin.Context) {
	var req entryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	candidate := req.entry("")
	if err := candidate.Check(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	existing, err := h.tt.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if verr := timetable.Validate(candidate, existing); verr != nil {
		var conflict *timetable.ConflictError
		if errors.As(verr, &conflict) {
			c.JSON(http.StatusConflict, gin.H{"error": conflict.Reason, "conflicting": conflict.Conflicting})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Error()})
		return
	}

	saved, err := h.tt.Insert(c.Request.Context(), candidate)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"entry": saved, "end_time": saved.EndTime()})
}

// UpdateEntry re-validates an edited slot, excluding itself from the
// conflict scan.
func (h *Handler) UpdateEntry(c *gin.Context) {
	id := c.Param("id")
	current, err := h.tt.Get(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if current == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "entry not found"})
		return
	}

	var req entryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	candidate := req.entry(id)
	if err := candidate.Check(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	existing, err := h.tt.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if verr := timetable.Validate(candidate, existing); verr != nil {
		c.JSON(http.StatusConflict, gin.H{"error": verr.Error()})
		return
	}

	if err := h.tt.Update(c.Request.Context(), candidate); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"entry": candidate, "end_time": candidate.EndTime()})
}

type cancelRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// CancelEntry marks a slot cancelled, freeing it for rescheduling.
func (h *Handler) CancelEntry(c *gin.Context) {
	var req cancelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.tt.Cancel(c.Request.Context(), c.Param("id"), req.Reason); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"cancelled": true})
}

// DeleteEntry removes a slot outright.
func (h *Handler) DeleteEntry(c *gin.Context) {
	if err := h.tt.Delete(c.Request.Context(), c.Param("id")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// BulkTimetable imports a CSV of slots. Rows are validated against the
// stored grid plus earlier rows from the same file, and every row is
// reported either as imported or as an error with its line number.
func (h *Handler) BulkTimetable(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "csv body required"})
		return
	}

	existing, err := h.tt.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	valid, invalid, err := timetable.ImportCSV(string(body), existing)
	if err != nil {
		bulkImportRows.WithLabelValues("timetable", "file_error").Inc()
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var saved []timetable.Entry
	for _, entry := range valid {
		inserted, err := h.tt.Insert(c.Request.Context(), entry)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		saved = append(saved, inserted)
	}
	bulkImportRows.WithLabelValues("timetable", "accepted").Add(float64(len(saved)))
	bulkImportRows.WithLabelValues("timetable", "rejected").Add(float64(len(invalid)))

	c.JSON(http.StatusOK, gin.H{"imported": saved, "errors": invalid})
}
