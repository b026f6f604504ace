package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"dietplanner/internal/session"
)

type checkedRequest struct {
	Checked *bool `json:"checked" binding:"required"`
}

func GetShoppingList(sessions *session.Registry, timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer handlePanic(c, "SHOPPING")

		s, ok := userSession(c, sessions, "SHOPPING")
		if !ok {
			return
		}

		ctx, cancel := requestContext(c, timeout)
		defer cancel()

		if _, err := s.Shopping.LoadShoppingList(ctx); err != nil {
			respondAppError(c, "SHOPPING", err)
			return
		}
		c.JSON(http.StatusOK, s.Shopping.Snapshot())
	}
}

func GenerateShoppingList(sessions *session.Registry, timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer handlePanic(c, "SHOPPING")

		s, ok := userSession(c, sessions, "SHOPPING")
		if !ok {
			return
		}

		ctx, cancel := requestContext(c, timeout)
		defer cancel()

		if _, err := s.Shopping.Generate(ctx); err != nil {
			respondAppError(c, "SHOPPING", err)
			return
		}
		c.JSON(http.StatusCreated, s.Shopping.Snapshot())
	}
}

func SetShoppingItemChecked(sessions *session.Registry, timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer handlePanic(c, "SHOPPING")

		s, ok := userSession(c, sessions, "SHOPPING")
		if !ok {
			return
		}

		var req checkedRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		ctx, cancel := requestContext(c, timeout)
		defer cancel()

		if err := s.Shopping.SetChecked(ctx, c.Param("id"), *req.Checked); err != nil {
			respondAppError(c, "SHOPPING", err)
			return
		}
		c.JSON(http.StatusOK, s.Shopping.Snapshot())
	}
}

func RemoveShoppingItem(sessions *session.Registry, timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer handlePanic(c, "SHOPPING")

		s, ok := userSession(c, sessions, "SHOPPING")
		if !ok {
			return
		}

		ctx, cancel := requestContext(c, timeout)
		defer cancel()

		if err := s.Shopping.RemoveItem(ctx, c.Param("id")); err != nil {
			respondAppError(c, "SHOPPING", err)
			return
		}
		c.JSON(http.StatusOK, s.Shopping.Snapshot())
	}
}

func ClearCheckedShoppingItems(sessions *session.Registry, timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer handlePanic(c, "SHOPPING")

		s, ok := userSession(c, sessions, "SHOPPING")
		if !ok {
			return
		}

		ctx, cancel := requestContext(c, timeout)
		defer cancel()

		removed, err := s.Shopping.ClearChecked(ctx)
		if err != nil {
			respondAppError(c, "SHOPPING", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"removed": removed, "state": s.Shopping.Snapshot()})
	}
}
