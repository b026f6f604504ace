package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"dietplanner/internal/session"
)

type scheduledMealRequest struct {
	MealID    string `json:"mealId" binding:"required"`
	MealName  string `json:"mealName"`
	TimeOfDay string `json:"timeOfDay"`
	Servings  int    `json:"servings" binding:"required,gte=1"`
}

func GetSchedule(sessions *session.Registry, timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer handlePanic(c, "SCHEDULE")

		s, ok := userSession(c, sessions, "SCHEDULE")
		if !ok {
			return
		}

		ctx, cancel := requestContext(c, timeout)
		defer cancel()

		if _, err := s.Schedule.LoadWeeklySchedule(ctx); err != nil {
			respondAppError(c, "SCHEDULE", err)
			return
		}
		c.JSON(http.StatusOK, s.Schedule.Snapshot())
	}
}

func GetAvailableMeals(sessions *session.Registry, timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer handlePanic(c, "SCHEDULE")

		s, ok := userSession(c, sessions, "SCHEDULE")
		if !ok {
			return
		}

		ctx, cancel := requestContext(c, timeout)
		defer cancel()

		if _, err := s.Schedule.LoadAvailableMeals(ctx); err != nil {
			respondAppError(c, "SCHEDULE", err)
			return
		}
		c.JSON(http.StatusOK, s.Schedule.AvailableMeals())
	}
}

func AddScheduledMeal(sessions *session.Registry, timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer handlePanic(c, "SCHEDULE")

		s, ok := userSession(c, sessions, "SCHEDULE")
		if !ok {
			return
		}

		var req scheduledMealRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		ctx, cancel := requestContext(c, timeout)
		defer cancel()

		if _, err := s.Schedule.AddScheduledMeal(ctx, c.Param("day"), req.MealID, req.MealName, req.TimeOfDay, req.Servings); err != nil {
			respondAppError(c, "SCHEDULE", err)
			return
		}
		c.JSON(http.StatusCreated, s.Schedule.Snapshot())
	}
}

func RemoveScheduledMeal(sessions *session.Registry, timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer handlePanic(c, "SCHEDULE")

		s, ok := userSession(c, sessions, "SCHEDULE")
		if !ok {
			return
		}

		ctx, cancel := requestContext(c, timeout)
		defer cancel()

		if _, err := s.Schedule.RemoveScheduledMeal(ctx, c.Param("day"), c.Param("id")); err != nil {
			respondAppError(c, "SCHEDULE", err)
			return
		}
		c.JSON(http.StatusOK, s.Schedule.Snapshot())
	}
}
