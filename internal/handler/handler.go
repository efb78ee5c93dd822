// Package handler wires the HTTP surface to the domain services.
package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/crypto/bcrypt"

	"campusattend/internal/aiclient"
	"campusattend/internal/attendance"
	"campusattend/internal/auth"
	"campusattend/internal/config"
	"campusattend/internal/leave"
	"campusattend/internal/queue"
	"campusattend/internal/roster"
	"campusattend/internal/timetable"
)

var bulkImportRows = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "campus_bulk_import_rows_total",
	Help: "Bulk CSV import rows, by import type and outcome.",
}, []string{"kind", "outcome"})

// Handler carries the dependencies for all routes.
type Handler struct {
	cfg    config.App
	roster *roster.Repository
	att    *attendance.Service
	tt     *timetable.Repository
	leaves *leave.Repository
	ai     *aiclient.Client
	q      queue.Queue
}

// New builds a handler.
func New(cfg config.App, rosterRepo *roster.Repository, att *attendance.Service,
	tt *timetable.Repository, leaves *leave.Repository, ai *aiclient.Client, q queue.Queue) *Handler {
	return &Handler{cfg: cfg, roster: rosterRepo, att: att, tt: tt, leaves: leaves, ai: ai, q: q}
}

// Register mounts all routes. Authenticated routes live under /v1
// behind the staff JWT middleware; write-heavy admin routes add a role
// gate on top.
func (h *Handler) Register(r *gin.Engine) {
	r.POST("/v1/auth/login", h.Login)

	v1 := r.Group("/v1", auth.StaffAuth(h.cfg.JWTSigningKey, h.cfg.JWTIssuer))

	v1.GET("/students", h.ListStudents)
	v1.GET("/students/:roll", h.GetStudent)
	v1.GET("/students/:roll/status", h.StudentStatus)

	admin := v1.Group("", auth.RequireRole(auth.RoleIncharge))
	admin.POST("/students", h.CreateStudent)
	admin.POST("/students/bulk", h.BulkStudents)
	admin.POST("/students/:roll/block", h.BlockStudent)
	admin.POST("/students/:roll/unblock", h.UnblockStudent)
	admin.POST("/facelinks", h.LinkFace)

	v1.GET("/staff", h.ListStaff)
	v1.POST("/staff", h.CreateStaff)
	v1.POST("/staff/:id/presence", h.SetStaffPresence)

	v1.POST("/attendance/detections", h.Detection)
	v1.POST("/attendance/manual", h.MarkManual)
	v1.GET("/attendance/session", h.SessionStatus)
	v1.GET("/attendance/history", h.History)

	v1.GET("/timetable", h.ListTimetable)
	admin.POST("/timetable", h.CreateEntry)
	admin.PUT("/timetable/:id", h.UpdateEntry)
	admin.POST("/timetable/:id/cancel", h.CancelEntry)
	admin.DELETE("/timetable/:id", h.DeleteEntry)
	admin.POST("/timetable/bulk", h.BulkTimetable)

	v1.GET("/leaves", h.ListLeaves)
	v1.POST("/leaves", h.CreateLeave)
	v1.POST("/leaves/:id/approve", h.ApproveLeave)
	v1.POST("/leaves/:id/reject", h.RejectLeave)
	v1.POST("/leaves/:id/cancel", h.CancelLeave)

	v1.POST("/ai/chat", h.AIChat)
	v1.POST("/ai/anomalies", h.AIAnomalies)
	v1.POST("/ai/substitute", h.AISubstitute)
}

type loginRequest struct {
	StaffID  string `json:"staff_id" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login authenticates a staff member and issues a token pair.
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	staff, err := h.roster.GetStaff(c.Request.Context(), req.StaffID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	hash, err := h.roster.StaffCredentials(c.Request.Context(), req.StaffID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if staff == nil || hash == "" || bcrypt.CompareHashAndPassword([]byte(hash), []byte(req.Password)) != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}
	if staff.IsBlocked {
		c.JSON(http.StatusForbidden, gin.H{"error": "account blocked"})
		return
	}

	tokens, err := auth.Issue(staff.StaffID, staff.Designation, h.cfg.JWTIssuer, h.cfg.JWTSigningKey, h.cfg.AccessTTL, h.cfg.RefreshTTL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token issue failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"access_token":  tokens.AccessToken,
		"refresh_token": tokens.RefreshToken,
		"expires_at":    tokens.AccessExp.Unix(),
		"designation":   staff.Designation,
	})
}

// nowOr parses an RFC3339 timestamp or falls back to now.
func nowOr(value string) time.Time {
	if value == "" {
		return time.Now().UTC()
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Now().UTC()
	}
	return t
}
