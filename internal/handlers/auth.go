package handlers

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"dietplanner/internal/auth"
)

type RegisterRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func Register(accounts *auth.Accounts, jwtSecret string, accessTTL, timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer handlePanic(c, "AUTH")

		var req RegisterRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		ctx, cancel := requestContext(c, timeout)
		defer cancel()

		account, err := accounts.Register(ctx, req.Email, req.Password)
		if err != nil {
			respondAppError(c, "AUTH", err)
			return
		}

		accessToken, err := auth.IssueToken(account.UserID, account.Email, jwtSecret, accessTTL)
		if err != nil {
			log.Println("[AUTH] [ERROR] register token generation failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "token generation failed"})
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"accessToken": accessToken,
			"expiresIn":   int64(accessTTL.Seconds()),
			"user": gin.H{
				"id":    account.UserID,
				"email": account.Email,
			},
		})
	}
}

func Login(accounts *auth.Accounts, jwtSecret string, accessTTL, timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer handlePanic(c, "AUTH")

		var req LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
			return
		}

		ctx, cancel := requestContext(c, timeout)
		defer cancel()

		account, err := accounts.Login(ctx, req.Email, req.Password)
		if err != nil {
			respondAppError(c, "AUTH", err)
			return
		}

		accessToken, err := auth.IssueToken(account.UserID, account.Email, jwtSecret, accessTTL)
		if err != nil {
			log.Println("[AUTH] [ERROR] login token generation failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "token generation failed"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"accessToken": accessToken,
			"expiresIn":   int64(accessTTL.Seconds()),
			"user": gin.H{
				"id":    account.UserID,
				"email": account.Email,
			},
		})
	}
}
