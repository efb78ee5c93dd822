package handler

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"campusattend/internal/aiclient"
)

// aiFailure maps AI client errors to a generic, retryable message. The
// UI offers a try-again affordance; no automatic retry happens here.
func aiFailure(c *gin.Context, err error) {
	log.Printf("ai request failed: %v", err)
	if errors.Is(err, aiclient.ErrBadResponse) {
		c.JSON(http.StatusBadGateway, gin.H{"error": "assistant unavailable, please try again"})
		return
	}
	c.JSON(http.StatusBadGateway, gin.H{"error": "assistant request failed, please try again"})
}

type chatRequest struct {
	Prompt  string `json:"prompt" binding:"required"`
	Context string `json:"context"`
}

// AIChat forwards a chat prompt to the AI service.
func (h *Handler) AIChat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	reply, err := h.ai.Chat(c.Request.Context(), req.Prompt, req.Context)
	if err != nil {
		aiFailure(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reply": reply.Text})
}

// AIAnomalies builds a same-day attendance summary and asks the AI
// service to flag unusual patterns. The summary is plain text; the
// shaping is the only local work.
func (h *Handler) AIAnomalies(c *gin.Context) {
	now := time.Now()
	students, err := h.roster.ListStudents(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	var lines []string
	for _, st := range students {
		result, err := h.att.StudentStatus(c.Request.Context(), st, now)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		lines = append(lines, fmt.Sprintf("%s (%s-%d-%s): %s", st.RollNumber, st.Department, st.Year, st.Section, result.Status))
	}
	if len(lines) == 0 {
		c.JSON(http.StatusOK, gin.H{"report": gin.H{"anomalies": []any{}, "summary": "no students enrolled"}})
		return
	}

	report, err := h.ai.AnalyzeAnomalies(c.Request.Context(), strings.Join(lines, "\n"))
	if err != nil {
		aiFailure(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"report": report})
}

type substituteRequest struct {
	Subject    string `json:"subject" binding:"required"`
	Department string `json:"department" binding:"required"`
	DayOfWeek  int    `json:"day_of_week" binding:"required"`
	StartTime  string `json:"start_time" binding:"required"`
}

// AISubstitute asks the AI service to pick a substitute teacher from
// staff who are present today and not already scheduled in the slot.
func (h *Handler) AISubstitute(c *gin.Context) {
	var req substituteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	staff, err := h.roster.ListStaff(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	entries, err := h.tt.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	busy := make(map[string]bool)
	for _, e := range entries {
		if !e.Cancelled && e.DayOfWeek == req.DayOfWeek && e.StartTime == req.StartTime {
			busy[e.TeacherID] = true
		}
	}
	var available []string
	for _, s := range staff {
		if s.Present() && !s.IsBlocked && !busy[s.StaffID] {
			available = append(available, s.StaffID)
		}
	}

	suggestion, err := h.ai.SuggestSubstitute(c.Request.Context(), aiclient.SubstituteRequest{
		Subject:    req.Subject,
		Department: req.Department,
		DayOfWeek:  req.DayOfWeek,
		StartTime:  req.StartTime,
		Available:  available,
	})
	if err != nil {
		aiFailure(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"suggestion": suggestion, "available": available})
}
