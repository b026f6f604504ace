package middleware

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"dietplanner/internal/auth"
)

// UserAuth validates user JWT tokens and puts the user on the request
// context.
func UserAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := auth.ParseBearer(c.GetHeader("Authorization"), secret)
		if err != nil {
			log.Println("[AUTH] [ERROR] token validation failed:", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		c.Set("userId", claims.UserID)
		c.Request = c.Request.WithContext(auth.WithUser(c.Request.Context(), claims.UserID, claims.Email))
		c.Next()
	}
}
