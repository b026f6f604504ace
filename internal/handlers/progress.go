package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"dietplanner/internal/session"
)

type progressRequest struct {
	Weight       float64            `json:"weight"`
	Notes        string             `json:"notes"`
	Measurements map[string]float64 `json:"measurements"`
}

// GetProgress returns one page of the history, newest first.
func GetProgress(sessions *session.Registry, timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer handlePanic(c, "PROGRESS")

		s, ok := userSession(c, sessions, "PROGRESS")
		if !ok {
			return
		}

		page, limit, err := parsePaginationParams(c.Query("page"), c.Query("limit"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid pagination params"})
			return
		}

		ctx, cancel := requestContext(c, timeout)
		defer cancel()

		history, err := s.Progress.LoadProgressEntries(ctx)
		if err != nil {
			respondAppError(c, "PROGRESS", err)
			return
		}

		total := len(history.Entries)
		start, end := pageBounds(total, page, limit)
		c.JSON(http.StatusOK, gin.H{
			"entries":         history.Entries[start:end],
			"referenceWeight": history.ReferenceWeight,
			"page":            page,
			"limit":           limit,
			"total":           total,
		})
	}
}

// CreateProgress replaces the draft with the body and saves it.
func CreateProgress(sessions *session.Registry, timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer handlePanic(c, "PROGRESS")

		s, ok := userSession(c, sessions, "PROGRESS")
		if !ok {
			return
		}

		var req progressRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		s.Progress.ResetDraft()
		s.Progress.UpdateWeight(req.Weight)
		s.Progress.UpdateNotes(req.Notes)
		for name, value := range req.Measurements {
			s.Progress.UpdateMeasurement(name, value)
		}

		ctx, cancel := requestContext(c, timeout)
		defer cancel()

		entry, err := s.Progress.SaveProgressEntry(ctx)
		if err != nil {
			respondAppError(c, "PROGRESS", err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"entry": entry, "referenceWeight": s.Progress.Snapshot().Data.ReferenceWeight})
	}
}

func DeleteProgress(sessions *session.Registry, timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer handlePanic(c, "PROGRESS")

		s, ok := userSession(c, sessions, "PROGRESS")
		if !ok {
			return
		}

		ctx, cancel := requestContext(c, timeout)
		defer cancel()

		if err := s.Progress.DeleteProgressEntry(ctx, c.Param("id")); err != nil {
			respondAppError(c, "PROGRESS", err)
			return
		}
		c.JSON(http.StatusOK, s.Progress.Snapshot())
	}
}
