package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"campusattend/internal/auth"
	"campusattend/internal/roster"
)

// ListStaff returns the staff directory.
func (h *Handler) ListStaff(c *gin.Context) {
	staff, err := h.roster.ListStaff(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if staff == nil {
		staff = []roster.Staff{}
	}
	c.JSON(http.StatusOK, gin.H{"staff": staff})
}

type createStaffRequest struct {
	StaffID     string `json:"staff_id" binding:"required"`
	Name        string `json:"name" binding:"required"`
	Designation string `json:"designation" binding:"required"`
	Department  string `json:"department"`
	Year        int    `json:"year"`
	Section     string `json:"section"`
	Password    string `json:"password" binding:"required,min=8"`
}

// CreateStaff provisions a staff account with login credentials. Only
// the principal can create accounts; the first principal itself comes
// from the bootstrap seed at startup.
func (h *Handler) CreateStaff(c *gin.Context) {
	claims := auth.FromContext(c)
	if !claims.Role.AtLeast(auth.RolePrincipal) {
		c.JSON(http.StatusForbidden, gin.H{"error": "only the principal can provision staff"})
		return
	}

	var req createStaffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	role := auth.Role(req.Designation)
	if !role.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown designation"})
		return
	}
	hash, err := roster.HashPassword(req.Password)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	staff := roster.Staff{
		StaffID:     req.StaffID,
		Name:        req.Name,
		Designation: role,
		Department:  req.Department,
		Year:        req.Year,
		Section:     req.Section,
	}
	if err := h.roster.CreateStaff(c.Request.Context(), staff, hash); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, staff)
}

type presenceRequest struct {
	Present *bool `json:"present" binding:"required"`
}

// SetStaffPresence records whether a staff member is in today. The
// substitute suggestion reads this flag. Staff set their own; incharge
// rank and above can set anyone's.
func (h *Handler) SetStaffPresence(c *gin.Context) {
	id := c.Param("id")
	claims := auth.FromContext(c)
	if claims.StaffID != id && !claims.Role.AtLeast(auth.RoleIncharge) {
		c.JSON(http.StatusForbidden, gin.H{"error": "cannot set another staff member's presence"})
		return
	}

	var req presenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	staff, err := h.roster.GetStaff(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if staff == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "staff member not found"})
		return
	}

	if err := h.roster.SetStaffPresence(c.Request.Context(), id, *req.Present); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"staff_id": id, "present": *req.Present})
}
