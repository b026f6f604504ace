package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"dietplanner/internal/models"
	"dietplanner/internal/profile"
	"dietplanner/internal/session"
)

type profileRequest struct {
	Name        string  `json:"name" binding:"required"`
	Email       string  `json:"email"`
	Weight      float64 `json:"weight"`
	Height      float64 `json:"height"`
	Age         int     `json:"age"`
	Gender      string  `json:"gender"`
	FitnessGoal string  `json:"fitnessGoal"`
}

func GetProfileStatus(sessions *session.Registry, timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer handlePanic(c, "PROFILE")

		s, ok := userSession(c, sessions, "PROFILE")
		if !ok {
			return
		}

		ctx, cancel := requestContext(c, timeout)
		defer cancel()

		if _, err := s.Profile.CheckUserProfile(ctx); err != nil {
			respondAppError(c, "PROFILE", err)
			return
		}
		c.JSON(http.StatusOK, s.Profile.Snapshot())
	}
}

func GetProfile(sessions *session.Registry, timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer handlePanic(c, "PROFILE")

		s, ok := userSession(c, sessions, "PROFILE")
		if !ok {
			return
		}

		ctx, cancel := requestContext(c, timeout)
		defer cancel()

		view, err := s.Profile.CheckUserProfile(ctx)
		if err != nil {
			respondAppError(c, "PROFILE", err)
			return
		}
		if view.Profile == nil {
			respondWithError(c, http.StatusNotFound, "PROFILE", "profile not found")
			return
		}
		c.JSON(http.StatusOK, gin.H{"profile": view.Profile})
	}
}

func CreateProfile(sessions *session.Registry, timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer handlePanic(c, "PROFILE")

		s, ok := userSession(c, sessions, "PROFILE")
		if !ok {
			return
		}

		var req profileRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		ctx, cancel := requestContext(c, timeout)
		defer cancel()

		saved, err := s.Profile.SaveUserProfile(ctx, profile.Input{
			Name:        req.Name,
			Email:       req.Email,
			Weight:      req.Weight,
			Height:      req.Height,
			Age:         req.Age,
			Gender:      req.Gender,
			FitnessGoal: req.FitnessGoal,
		})
		if err != nil {
			respondAppError(c, "PROFILE", err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"profile": saved})
	}
}

func UpdateProfile(sessions *session.Registry, timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer handlePanic(c, "PROFILE")

		s, ok := userSession(c, sessions, "PROFILE")
		if !ok {
			return
		}

		var req models.UserProfile
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		ctx, cancel := requestContext(c, timeout)
		defer cancel()

		saved, err := s.Profile.UpdateUserProfile(ctx, req)
		if err != nil {
			respondAppError(c, "PROFILE", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"profile": saved})
	}
}
