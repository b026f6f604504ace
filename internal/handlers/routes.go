package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"dietplanner/internal/auth"
	"dietplanner/internal/middleware"
	"dietplanner/internal/session"
	"dietplanner/internal/store"
)

type RouteConfig struct {
	Store          store.Store
	Accounts       *auth.Accounts
	Sessions       *session.Registry
	JWTSecret      string
	AccessTokenTTL time.Duration
	RequestTimeout time.Duration
}

func SetupRoutes(r *gin.Engine, cfg RouteConfig) {
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	sessions := cfg.Sessions

	r.GET("/healthz", Health(cfg.Store))
	r.POST("/auth/register", Register(cfg.Accounts, cfg.JWTSecret, cfg.AccessTokenTTL, timeout))
	r.POST("/auth/login", Login(cfg.Accounts, cfg.JWTSecret, cfg.AccessTokenTTL, timeout))

	api := r.Group("/")
	api.Use(middleware.UserAuth(cfg.JWTSecret))
	{
		api.GET("/profile/status", GetProfileStatus(sessions, timeout))
		api.GET("/profile", GetProfile(sessions, timeout))
		api.POST("/profile", CreateProfile(sessions, timeout))
		api.PUT("/profile", UpdateProfile(sessions, timeout))

		api.GET("/meals", GetMeals(sessions, timeout))
		api.POST("/meals", SaveMeal(sessions, timeout))
		api.DELETE("/meals/:id", DeleteMeal(sessions, timeout))

		api.GET("/meals/draft", GetMealDraft(sessions))
		api.PUT("/meals/draft", UpdateMealDraft(sessions))
		api.DELETE("/meals/draft", ClearMealDraft(sessions))
		api.POST("/meals/draft/save", SaveMealDraft(sessions, timeout))
		api.POST("/meals/draft/ingredients", AddDraftIngredient(sessions))
		api.PUT("/meals/draft/ingredients/:id", UpdateDraftIngredient(sessions))
		api.DELETE("/meals/draft/ingredients/:id", RemoveDraftIngredient(sessions))

		api.GET("/schedule", GetSchedule(sessions, timeout))
		api.GET("/schedule/available-meals", GetAvailableMeals(sessions, timeout))
		api.POST("/schedule/:day/meals", AddScheduledMeal(sessions, timeout))
		api.DELETE("/schedule/:day/meals/:id", RemoveScheduledMeal(sessions, timeout))

		api.GET("/shopping-list", GetShoppingList(sessions, timeout))
		api.POST("/shopping-list/generate", GenerateShoppingList(sessions, timeout))
		api.DELETE("/shopping-list/checked", ClearCheckedShoppingItems(sessions, timeout))
		api.PATCH("/shopping-list/:id", SetShoppingItemChecked(sessions, timeout))
		api.DELETE("/shopping-list/:id", RemoveShoppingItem(sessions, timeout))

		api.GET("/progress", GetProgress(sessions, timeout))
		api.POST("/progress", CreateProgress(sessions, timeout))
		api.DELETE("/progress/:id", DeleteProgress(sessions, timeout))
	}
}
