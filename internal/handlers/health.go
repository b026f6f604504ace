package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"dietplanner/internal/store"
)

func Health(st store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := ensureStoreConnection(c.Request.Context(), st); err != nil {
			respondWithError(c, http.StatusServiceUnavailable, "HEALTH", "store unavailable")
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
