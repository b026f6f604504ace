// Package schedule keeps the seven day plans of a user and the meals
// scheduled on each day.
package schedule

import (
	"context"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"dietplanner/internal/apperr"
	"dietplanner/internal/auth"
	"dietplanner/internal/catalog"
	"dietplanner/internal/models"
	"dietplanner/internal/store"
	"dietplanner/internal/viewstate"
)

type Manager struct {
	store     store.Store
	auth      auth.Provider
	now       func() time.Time
	limit     int
	week      *viewstate.State[[]models.MealPlan]
	available *viewstate.State[[]models.Meal]
}

type Option func(*Manager)

func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

// WithFanOutLimit caps concurrent scheduled-meal fetches; n <= 0 means no
// cap.
func WithFanOutLimit(n int) Option {
	return func(m *Manager) {
		m.limit = n
	}
}

func New(st store.Store, p auth.Provider, opts ...Option) *Manager {
	m := &Manager{
		store:     st,
		auth:      p,
		now:       time.Now,
		week:      viewstate.New([]models.MealPlan{}),
		available: viewstate.New([]models.Meal{}),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Manager) Snapshot() viewstate.Snapshot[[]models.MealPlan] {
	return m.week.Snapshot()
}

func (m *Manager) AvailableMeals() viewstate.Snapshot[[]models.Meal] {
	return m.available.Snapshot()
}

// LoadWeeklySchedule returns the seven plans Monday to Sunday with their
// scheduled meals. Days without a plan document are created first.
func (m *Manager) LoadWeeklySchedule(ctx context.Context) ([]models.MealPlan, error) {
	token := m.week.Begin()

	userID, err := auth.Require(ctx, m.auth)
	if err != nil {
		m.week.Fail(token, err)
		return nil, err
	}

	plans, err := m.loadPlans(ctx, userID)
	if err != nil {
		m.week.Fail(token, err)
		return nil, err
	}

	plans, err = m.provisionMissing(ctx, userID, plans)
	if err != nil {
		m.week.Fail(token, err)
		return nil, err
	}

	m.attachScheduledMeals(ctx, userID, plans)
	models.SortPlans(plans)

	if !m.week.Publish(token, plans) {
		log.Println("[SCHEDULE] [INFO] discarding stale schedule load")
	}
	return plans, nil
}

func (m *Manager) loadPlans(ctx context.Context, userID string) ([]models.MealPlan, error) {
	docs, err := m.store.Query(ctx, store.MealPlans(userID), store.Query{})
	if err != nil {
		log.Println("[SCHEDULE] [ERROR] load plans failed:", err)
		return nil, apperr.Remote("error loading meal plans", err)
	}

	plans := make([]models.MealPlan, 0, len(docs))
	for _, doc := range docs {
		var plan models.MealPlan
		if err := doc.Decode(&plan); err != nil {
			log.Println("[SCHEDULE] [ERROR] skipping undecodable plan:", doc.Path, err)
			continue
		}
		plan.ID = doc.ID
		plans = append(plans, plan)
	}
	return plans, nil
}

// provisionMissing creates, in one batch, a plan for every day that has
// none. Plan ids are derived from the day so reruns are harmless.
func (m *Manager) provisionMissing(ctx context.Context, userID string, plans []models.MealPlan) ([]models.MealPlan, error) {
	present := make(map[int]bool, len(plans))
	for _, plan := range plans {
		if i := models.DayIndex(plan.DayOfWeek); i >= 0 {
			present[i] = true
		}
	}

	batch := m.store.Batch()
	created := make([]models.MealPlan, 0, len(models.DaysOfWeek))
	for i, day := range models.DaysOfWeek {
		if present[i] {
			continue
		}
		plan := models.MealPlan{
			ID:        models.PlanID(day),
			UserID:    userID,
			DayOfWeek: day,
			Meals:     []models.ScheduledMeal{},
		}
		batch.Set(store.MealPlan(userID, plan.ID), plan)
		created = append(created, plan)
	}
	if batch.Len() == 0 {
		return plans, nil
	}

	if err := batch.Commit(ctx); err != nil {
		log.Println("[SCHEDULE] [ERROR] create weekly plans failed:", err)
		return nil, apperr.Remote("error creating weekly plans", err)
	}
	log.Printf("[SCHEDULE] [INFO] created %d plans for user %s", len(created), userID)
	return append(plans, created...), nil
}

func (m *Manager) attachScheduledMeals(ctx context.Context, userID string, plans []models.MealPlan) {
	g, gctx := errgroup.WithContext(ctx)
	if m.limit > 0 {
		g.SetLimit(m.limit)
	}
	for i := range plans {
		i := i
		if plans[i].Meals == nil {
			plans[i].Meals = []models.ScheduledMeal{}
		}
		g.Go(func() error {
			meals, err := LoadScheduledMeals(gctx, m.store, userID, plans[i].ID)
			if err != nil {
				log.Println("[SCHEDULE] [ERROR] load scheduled meals failed:", plans[i].ID, err)
				return nil
			}
			plans[i].Meals = meals
			return nil
		})
	}
	_ = g.Wait()
}

// LoadAvailableMeals lists the catalog's meals, without ingredients, for
// picking a meal to schedule.
func (m *Manager) LoadAvailableMeals(ctx context.Context) ([]models.Meal, error) {
	token := m.available.Begin()

	userID, err := auth.Require(ctx, m.auth)
	if err != nil {
		m.available.Fail(token, err)
		return nil, err
	}

	docs, err := m.store.Query(ctx, store.Meals(userID), store.Query{})
	if err != nil {
		log.Println("[SCHEDULE] [ERROR] load available meals failed:", err)
		err = apperr.Remote("error loading meals", err)
		m.available.Fail(token, err)
		return nil, err
	}

	meals := make([]models.Meal, 0, len(docs))
	for _, doc := range docs {
		meal, err := catalog.DecodeMeal(doc)
		if err != nil {
			continue
		}
		meal.Ingredients = []models.Ingredient{}
		meals = append(meals, meal)
	}
	catalog.SortMeals(meals)

	m.available.Publish(token, meals)
	return meals, nil
}

// AddScheduledMeal places a meal on day and reloads the week. The plan is
// looked up in the loaded week only.
func (m *Manager) AddScheduledMeal(ctx context.Context, day, mealID, mealName, timeOfDay string, servings int) ([]models.MealPlan, error) {
	m.week.Start()
	if err := m.addScheduledMeal(ctx, day, mealID, mealName, timeOfDay, servings); err != nil {
		m.week.Finish(err)
		return nil, err
	}
	return m.LoadWeeklySchedule(ctx)
}

func (m *Manager) addScheduledMeal(ctx context.Context, day, mealID, mealName, timeOfDay string, servings int) error {
	userID, err := auth.Require(ctx, m.auth)
	if err != nil {
		return err
	}
	if !store.ValidID(mealID) {
		return apperr.Validation("mealId is required and must not contain '/'")
	}
	if servings < 1 {
		return apperr.Validation("servings must be at least 1")
	}

	plan, ok := m.findPlan(day)
	if !ok {
		return apperr.NotFoundf("plan not found")
	}

	scheduled := models.ScheduledMeal{
		ID:        uuid.NewString(),
		MealID:    mealID,
		MealName:  mealName,
		Servings:  servings,
		TimeOfDay: timeOfDay,
		AddedAt:   m.now().UTC(),
	}
	if err := m.store.Set(ctx, store.ScheduledMeal(userID, plan.ID, scheduled.ID), scheduled); err != nil {
		log.Println("[SCHEDULE] [ERROR] add scheduled meal failed:", err)
		return apperr.Remote("error adding meal to plan", err)
	}

	log.Printf("[SCHEDULE] [INFO] scheduled meal %s on %s", mealID, plan.DayOfWeek)
	return nil
}

// RemoveScheduledMeal deletes one scheduled meal from day and reloads the
// week.
func (m *Manager) RemoveScheduledMeal(ctx context.Context, day, scheduledMealID string) ([]models.MealPlan, error) {
	m.week.Start()
	if err := m.removeScheduledMeal(ctx, day, scheduledMealID); err != nil {
		m.week.Finish(err)
		return nil, err
	}
	return m.LoadWeeklySchedule(ctx)
}

func (m *Manager) removeScheduledMeal(ctx context.Context, day, scheduledMealID string) error {
	userID, err := auth.Require(ctx, m.auth)
	if err != nil {
		return err
	}
	if !store.ValidID(scheduledMealID) {
		return apperr.Validation("invalid scheduled meal id")
	}

	plan, ok := m.findPlan(day)
	if !ok {
		return apperr.NotFoundf("plan not found")
	}

	if err := m.store.Delete(ctx, store.ScheduledMeal(userID, plan.ID, scheduledMealID)); err != nil {
		log.Println("[SCHEDULE] [ERROR] remove scheduled meal failed:", err)
		return apperr.Remote("error removing meal from plan", err)
	}
	return nil
}

func (m *Manager) findPlan(day string) (models.MealPlan, bool) {
	for _, plan := range m.week.Data() {
		if strings.EqualFold(strings.TrimSpace(plan.DayOfWeek), strings.TrimSpace(day)) {
			return plan, true
		}
	}
	return models.MealPlan{}, false
}

// LoadScheduledMeals returns a plan's meals in the order they were added.
func LoadScheduledMeals(ctx context.Context, st store.Store, userID, planID string) ([]models.ScheduledMeal, error) {
	docs, err := st.Query(ctx, store.ScheduledMeals(userID, planID), store.Query{OrderBy: "addedAt", Direction: store.Ascending})
	if err != nil {
		return nil, err
	}

	meals := make([]models.ScheduledMeal, 0, len(docs))
	for _, doc := range docs {
		var meal models.ScheduledMeal
		if err := doc.Decode(&meal); err != nil {
			log.Println("[SCHEDULE] [ERROR] skipping undecodable scheduled meal:", doc.Path, err)
			continue
		}
		meal.ID = doc.ID
		meals = append(meals, meal)
	}
	sort.SliceStable(meals, func(i, j int) bool {
		return meals[i].AddedAt.Before(meals[j].AddedAt)
	})
	return meals, nil
}
