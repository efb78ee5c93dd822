package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"campusattend/internal/attendance"
	"campusattend/internal/auth"
	"campusattend/internal/queue"
)

type detectionRequest struct {
	PersistentID int    `json:"persistent_id" binding:"required"`
	Timestamp    string `json:"timestamp"`
	Subject      string `json:"subject"`
	ImageURL     string `json:"image_url"`
}

// Detection accepts a capture event from the face pipeline and hands it
// to the worker via the queue. The record is written asynchronously;
// the response only acknowledges receipt.
func (h *Handler) Detection(c *gin.Context) {
	var req detectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	body, _ := json.Marshal(attendance.DetectionEvent(req))
	if err := h.q.Publish(c.Request.Context(), queue.Message{Type: "detection", Body: body}); err != nil {
		log.Printf("queue publish failed: %v", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "capture queue unavailable"})
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"queued": true, "persistent_id": req.PersistentID})
}

type manualRequest struct {
	RollNumber string `json:"roll_number" binding:"required"`
	Subject    string `json:"subject" binding:"required"`
	Status     string `json:"status" binding:"required,oneof=present absent"`
	Timestamp  string `json:"timestamp"`
}

// MarkManual records a teacher override. The latest manual record wins
// at resolution time, so resubmitting corrects an earlier mark without
// deleting history.
func (h *Handler) MarkManual(c *gin.Context) {
	var req manualRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	claims := auth.FromContext(c)

	rec, err := h.att.MarkManual(c.Request.Context(), req.RollNumber, req.Subject,
		attendance.Status(req.Status), claims.StaffID, nowOr(req.Timestamp))
	if err != nil {
		if errors.Is(err, attendance.ErrUnlinked) {
			c.JSON(http.StatusConflict, gin.H{"error": "student has no face link yet"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, rec)
}

// History lists a person's raw attendance records, newest first, by
// persistent id or by roll number.
func (h *Handler) History(c *gin.Context) {
	pidStr := c.Query("persistent_id")
	roll := c.Query("roll_number")
	if pidStr == "" && roll == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "persistent_id or roll_number is required"})
		return
	}
	limit, _ := strconv.Atoi(c.Query("limit"))

	var (
		records []attendance.Record
		err     error
	)
	if pidStr != "" {
		pid, perr := strconv.Atoi(pidStr)
		if perr != nil || pid <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "persistent_id must be a positive integer"})
			return
		}
		records, err = h.att.History(c.Request.Context(), pid, limit)
	} else {
		records, err = h.att.HistoryByRoll(c.Request.Context(), roll, limit)
	}
	if err != nil {
		if errors.Is(err, attendance.ErrUnlinked) {
			c.JSON(http.StatusConflict, gin.H{"error": "student has no face link yet"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if records == nil {
		records = []attendance.Record{}
	}
	c.JSON(http.StatusOK, gin.H{"records": records})
}

// SessionStatus resolves one subject session for a student on a date.
func (h *Handler) SessionStatus(c *gin.Context) {
	roll := c.Query("roll_number")
	subject := c.Query("subject")
	if roll == "" || subject == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "roll_number and subject are required"})
		return
	}

	student, err := h.roster.GetStudent(c.Request.Context(), roll)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if student == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "student not found"})
		return
	}

	status, err := h.att.SessionStatus(c.Request.Context(), *student, subject, nowOr(c.Query("date")))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"roll_number": roll, "subject": subject, "status": status})
}
