package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"dietplanner/internal/apperr"
	"dietplanner/internal/auth"
	"dietplanner/internal/session"
	"dietplanner/internal/store"
)

func handlePanic(c *gin.Context, route string) {
	if r := recover(); r != nil {
		log.Printf("[%s] panic recovered: %v", route, r)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

func ensureStoreConnection(ctx context.Context, st store.Store) error {
	checkCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	return st.Ping(checkCtx)
}

func respondWithError(c *gin.Context, status int, route string, message string) {
	log.Printf("[%s] returning error %d: %s", route, status, message)
	c.AbortWithStatusJSON(status, gin.H{"error": message})
}

// respondAppError maps an error from a manager to its HTTP status.
func respondAppError(c *gin.Context, route string, err error) {
	status := http.StatusBadGateway
	switch apperr.KindOf(err) {
	case apperr.Unauthenticated:
		status = http.StatusUnauthorized
	case apperr.ValidationFailed:
		status = http.StatusBadRequest
	case apperr.NotFound:
		status = http.StatusNotFound
	case apperr.Conflict:
		status = http.StatusConflict
	}

	message := err.Error()
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		message = appErr.Message
	}
	respondWithError(c, status, route, message)
}

func respondValidationError(c *gin.Context, err error) {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "validation failed",
			"details": apperr.FromValidator(err).(*apperr.Error).Message,
		})
		return
	}

	c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body", "details": err.Error()})
}

// userSession returns the session of the user UserAuth put on the request.
func userSession(c *gin.Context, sessions *session.Registry, route string) (*session.Session, bool) {
	userID, ok := auth.UserIDFromContext(c.Request.Context())
	if !ok {
		log.Printf("[%s] [ERROR] userId missing in context", route)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return nil, false
	}
	return sessions.For(userID), true
}

func requestContext(c *gin.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), timeout)
}
