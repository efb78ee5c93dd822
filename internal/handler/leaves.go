package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"campusattend/internal/auth"
	"campusattend/internal/leave"
)

type createLeaveRequest struct {
	From   string `json:"from" binding:"required"`
	To     string `json:"to" binding:"required"`
	Reason string `json:"reason" binding:"required"`
}

// CreateLeave files a pending request for the calling staff member.
func (h *Handler) CreateLeave(c *gin.Context) {
	var req createLeaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	from, err := time.Parse("2006-01-02", req.From)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "from must be YYYY-MM-DD"})
		return
	}
	to, err := time.Parse("2006-01-02", req.To)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "to must be YYYY-MM-DD"})
		return
	}

	claims := auth.FromContext(c)
	request, err := leave.New(claims.StaffID, claims.Role, from, to, req.Reason)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	saved, err := h.leaves.Insert(c.Request.Context(), request)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, saved)
}

// ListLeaves returns requests; non-reviewers only see their own.
func (h *Handler) ListLeaves(c *gin.Context) {
	claims := auth.FromContext(c)
	requester := claims.StaffID
	if claims.Role.AtLeast(auth.RoleIncharge) {
		requester = c.Query("requester_id")
	}
	requests, err := h.leaves.List(c.Request.Context(), requester, 100)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if requests == nil {
		requests = []leave.Request{}
	}
	c.JSON(http.StatusOK, gin.H{"leaves": requests})
}

// ApproveLeave transitions a pending request to approved.
func (h *Handler) ApproveLeave(c *gin.Context) {
	h.reviewLeave(c, func(req *leave.Request, claims auth.Claims) error {
		return req.Approve(claims.StaffID, claims.Role, time.Now().UTC())
	})
}

// RejectLeave transitions a pending request to rejected.
func (h *Handler) RejectLeave(c *gin.Context) {
	h.reviewLeave(c, func(req *leave.Request, claims auth.Claims) error {
		return req.Reject(claims.StaffID, claims.Role, time.Now().UTC())
	})
}

// CancelLeave lets the requester withdraw a pending request.
func (h *Handler) CancelLeave(c *gin.Context) {
	h.reviewLeave(c, func(req *leave.Request, claims auth.Claims) error {
		return req.Cancel(claims.StaffID)
	})
}

func (h *Handler) reviewLeave(c *gin.Context, transition func(*leave.Request, auth.Claims) error) {
	request, err := h.leaves.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if request == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "leave request not found"})
		return
	}

	if err := transition(request, auth.FromContext(c)); err != nil {
		if errors.Is(err, leave.ErrForbidden) {
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.leaves.SaveTransition(c.Request.Context(), *request); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, request)
}
