package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"campusattend/internal/auth"
	"campusattend/internal/roster"
)

// ListStudents returns the directory.
func (h *Handler) ListStudents(c *gin.Context) {
	students, err := h.roster.ListStudents(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if students == nil {
		students = []roster.Student{}
	}
	c.JSON(http.StatusOK, gin.H{"students": students})
}

// GetStudent returns one student.
func (h *Handler) GetStudent(c *gin.Context) {
	student, err := h.roster.GetStudent(c.Request.Context(), c.Param("roll"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if student == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "student not found"})
		return
	}
	c.JSON(http.StatusOK, student)
}

type createStudentRequest struct {
	RollNumber string `json:"roll_number" binding:"required"`
	Name       string `json:"name" binding:"required"`
	Department string `json:"department" binding:"required"`
	Year       int    `json:"year" binding:"required,min=1,max=4"`
	Section    string `json:"section" binding:"required"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
}

// CreateStudent registers a single student.
func (h *Handler) CreateStudent(c *gin.Context) {
	var req createStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	st := roster.Student{
		RollNumber: req.RollNumber,
		Name:       req.Name,
		Department: req.Department,
		Year:       req.Year,
		Section:    req.Section,
		Email:      req.Email,
		Phone:      req.Phone,
	}
	if err := h.roster.UpsertStudent(c.Request.Context(), st); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, st)
}

// BulkStudents imports a CSV body of students. Every row is evaluated;
// the response reports accepted and rejected rows side by side.
func (h *Handler) BulkStudents(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "csv body required"})
		return
	}

	result, err := roster.ParseBulkStudents(string(body))
	if err != nil {
		bulkImportRows.WithLabelValues("students", "file_error").Inc()
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var saved []roster.Student
	for _, row := range result.Valid {
		if err := h.roster.UpsertStudent(c.Request.Context(), row.Value); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		saved = append(saved, row.Value)
	}
	bulkImportRows.WithLabelValues("students", "accepted").Add(float64(len(saved)))
	bulkImportRows.WithLabelValues("students", "rejected").Add(float64(len(result.Invalid)))

	c.JSON(http.StatusOK, gin.H{"imported": saved, "errors": result.Invalid})
}

type blockRequest struct {
	Permanent bool   `json:"permanent"`
	Hours     int    `json:"hours"`
	Reason    string `json:"reason"`
}

// BlockStudent blocks a student permanently or for a number of hours.
// Requires HOD rank or above; an incharge cannot block.
func (h *Handler) BlockStudent(c *gin.Context) {
	claims := auth.FromContext(c)
	if !claims.Role.AtLeast(auth.RoleHOD) {
		c.JSON(http.StatusForbidden, gin.H{"error": "insufficient role to block students"})
		return
	}

	var req blockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	var expiresAt *time.Time
	if !req.Permanent {
		if req.Hours <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "hours must be positive for a temporary block"})
			return
		}
		t := time.Now().UTC().Add(time.Duration(req.Hours) * time.Hour)
		expiresAt = &t
	}

	if err := h.roster.BlockStudent(c.Request.Context(), c.Param("roll"), req.Permanent, expiresAt, claims.StaffID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"blocked": true, "permanent": req.Permanent, "expires_at": expiresAt})
}

// UnblockStudent clears a block.
func (h *Handler) UnblockStudent(c *gin.Context) {
	claims := auth.FromContext(c)
	if !claims.Role.AtLeast(auth.RoleHOD) {
		c.JSON(http.StatusForbidden, gin.H{"error": "insufficient role to unblock students"})
		return
	}
	if err := h.roster.UnblockStudent(c.Request.Context(), c.Param("roll")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"blocked": false})
}

type linkFaceRequest struct {
	PersistentID int    `json:"persistent_id" binding:"required"`
	RollNumber   string `json:"roll_number" binding:"required"`
}

// LinkFace binds a face-pipeline persistent id to an enrolled student.
func (h *Handler) LinkFace(c *gin.Context) {
	var req linkFaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	student, err := h.roster.GetStudent(c.Request.Context(), req.RollNumber)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if student == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "student not found"})
		return
	}
	if err := h.roster.LinkFace(c.Request.Context(), req.PersistentID, req.RollNumber); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"persistent_id": req.PersistentID, "roll_number": req.RollNumber})
}

// StudentStatus resolves today's standing for a student, including the
// block countdown when blocked. Clients poll this; the derivation is
// recomputed from a fresh snapshot every call.
func (h *Handler) StudentStatus(c *gin.Context) {
	student, err := h.roster.GetStudent(c.Request.Context(), c.Param("roll"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if student == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "student not found"})
		return
	}

	now := time.Now()
	result, err := h.att.StudentStatus(c.Request.Context(), *student, now)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	resp := gin.H{"roll_number": student.RollNumber, "status": result.Status}
	if result.LastLog != nil {
		resp["last_log"] = result.LastLog
	}
	if student.BlockPermanent || student.BlockExpiresAt != nil {
		resp["block_remaining"] = roster.FormatRemaining(student.BlockPermanent, student.BlockExpiresAt, now)
	}
	c.JSON(http.StatusOK, resp)
}
