package handlers

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"dietplanner/internal/models"
	"dietplanner/internal/session"
)

type ingredientRequest struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Quantity string `json:"quantity"`
	Unit     string `json:"unit"`
}

type mealRequest struct {
	ID          string              `json:"id"`
	Name        string              `json:"name" binding:"required"`
	Calories    int                 `json:"calories"`
	Carbs       int                 `json:"carbs"`
	Ingredients []ingredientRequest `json:"ingredients"`
}

type draftRequest struct {
	MealID   string  `json:"mealId"`
	Name     *string `json:"name"`
	Calories *int    `json:"calories"`
	Carbs    *int    `json:"carbs"`
}

func toIngredients(reqs []ingredientRequest) []models.Ingredient {
	ingredients := make([]models.Ingredient, 0, len(reqs))
	for _, r := range reqs {
		ingredients = append(ingredients, models.Ingredient{ID: r.ID, Name: r.Name, Quantity: r.Quantity, Unit: r.Unit})
	}
	return ingredients
}

func GetMeals(sessions *session.Registry, timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer handlePanic(c, "MEALS")

		s, ok := userSession(c, sessions, "MEALS")
		if !ok {
			return
		}

		ctx, cancel := requestContext(c, timeout)
		defer cancel()

		if _, err := s.Catalog.LoadMeals(ctx); err != nil {
			respondAppError(c, "MEALS", err)
			return
		}
		c.JSON(http.StatusOK, s.Catalog.Snapshot())
	}
}

func SaveMeal(sessions *session.Registry, timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer handlePanic(c, "MEALS")

		s, ok := userSession(c, sessions, "MEALS")
		if !ok {
			return
		}

		var req mealRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		ctx, cancel := requestContext(c, timeout)
		defer cancel()

		meal := models.Meal{ID: req.ID, Name: req.Name, Calories: req.Calories, Carbs: req.Carbs}
		saved, err := s.Catalog.SaveMeal(ctx, meal, toIngredients(req.Ingredients))
		if err != nil {
			respondAppError(c, "MEALS", err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"meal": saved})
	}
}

func DeleteMeal(sessions *session.Registry, timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer handlePanic(c, "MEALS")

		s, ok := userSession(c, sessions, "MEALS")
		if !ok {
			return
		}

		ctx, cancel := requestContext(c, timeout)
		defer cancel()

		if _, err := s.Catalog.DeleteMeal(ctx, c.Param("id")); err != nil {
			respondAppError(c, "MEALS", err)
			return
		}
		c.JSON(http.StatusOK, s.Catalog.Snapshot())
	}
}

func GetMealDraft(sessions *session.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, ok := userSession(c, sessions, "MEALS")
		if !ok {
			return
		}
		c.JSON(http.StatusOK, s.Editor.Snapshot())
	}
}

// UpdateMealDraft sets the draft fields present in the body. A body with
// an id loads that meal from the catalog into the draft first.
func UpdateMealDraft(sessions *session.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer handlePanic(c, "MEALS")

		s, ok := userSession(c, sessions, "MEALS")
		if !ok {
			return
		}

		var req draftRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		if req.MealID != "" {
			meal, found := findMeal(s.Catalog.Snapshot().Data, req.MealID)
			if !found {
				respondWithError(c, http.StatusNotFound, "MEALS", "meal not found")
				return
			}
			s.Editor.Edit(meal)
		}
		if req.Name != nil {
			s.Editor.SetName(*req.Name)
		}
		if req.Calories != nil {
			s.Editor.SetCalories(*req.Calories)
		}
		if req.Carbs != nil {
			s.Editor.SetCarbs(*req.Carbs)
		}
		c.JSON(http.StatusOK, s.Editor.Snapshot())
	}
}

func ClearMealDraft(sessions *session.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, ok := userSession(c, sessions, "MEALS")
		if !ok {
			return
		}
		s.Editor.Clear()
		c.JSON(http.StatusOK, s.Editor.Snapshot())
	}
}

func SaveMealDraft(sessions *session.Registry, timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer handlePanic(c, "MEALS")

		s, ok := userSession(c, sessions, "MEALS")
		if !ok {
			return
		}

		ctx, cancel := requestContext(c, timeout)
		defer cancel()

		saved, err := s.Editor.Save(ctx)
		if err != nil {
			respondAppError(c, "MEALS", err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"meal": saved})
	}
}

func AddDraftIngredient(sessions *session.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer handlePanic(c, "MEALS")

		s, ok := userSession(c, sessions, "MEALS")
		if !ok {
			return
		}

		var req ingredientRequest
		// An empty body adds a blank ingredient.
		if c.Request.Body != nil {
			if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
				respondValidationError(c, err)
				return
			}
		}

		ingredient := s.Editor.AddIngredient()
		if req.Name != "" || req.Quantity != "" || req.Unit != "" {
			ingredient.Name, ingredient.Quantity, ingredient.Unit = req.Name, req.Quantity, req.Unit
			s.Editor.UpdateIngredient(ingredient)
		}
		c.JSON(http.StatusCreated, gin.H{"ingredient": ingredient, "draft": s.Editor.Draft()})
	}
}

func UpdateDraftIngredient(sessions *session.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer handlePanic(c, "MEALS")

		s, ok := userSession(c, sessions, "MEALS")
		if !ok {
			return
		}

		var req ingredientRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		updated := models.Ingredient{ID: c.Param("id"), Name: req.Name, Quantity: req.Quantity, Unit: req.Unit}
		if !s.Editor.UpdateIngredient(updated) {
			respondWithError(c, http.StatusNotFound, "MEALS", "ingredient not found")
			return
		}
		c.JSON(http.StatusOK, s.Editor.Snapshot())
	}
}

func RemoveDraftIngredient(sessions *session.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, ok := userSession(c, sessions, "MEALS")
		if !ok {
			return
		}

		if !s.Editor.RemoveIngredient(c.Param("id")) {
			respondWithError(c, http.StatusNotFound, "MEALS", "ingredient not found")
			return
		}
		c.JSON(http.StatusOK, s.Editor.Snapshot())
	}
}

func findMeal(meals []models.Meal, id string) (models.Meal, bool) {
	for _, meal := range meals {
		if meal.ID == id {
			return meal, true
		}
	}
	return models.Meal{}, false
}
