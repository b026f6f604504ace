package schedule

import (
	"context"
	"testing"
	"time"

	"dietplanner/internal/apperr"
	"dietplanner/internal/auth"
	"dietplanner/internal/models"
	"dietplanner/internal/store"
	"dietplanner/internal/store/memstore"
)

func steppingClock() func() time.Time {
	now := time.Date(2024, 3, 4, 8, 0, 0, 0, time.UTC)
	return func() time.Time {
		now = now.Add(time.Minute)
		return now
	}
}

func newTestManager() (*Manager, *memstore.Store) {
	st := memstore.New()
	return New(st, auth.Static("u1"), WithClock(steppingClock()), WithFanOutLimit(3)), st
}

func TestFreshUserGetsSevenEmptyPlans(t *testing.T) {
	m, st := newTestManager()
	ctx := context.Background()

	plans, err := m.LoadWeeklySchedule(ctx)
	if err != nil {
		t.Fatalf("LoadWeeklySchedule returned error: %v", err)
	}
	if len(plans) != 7 {
		t.Fatalf("expected 7 plans, got %d", len(plans))
	}
	for i, plan := range plans {
		if plan.DayOfWeek != models.DaysOfWeek[i] || len(plan.Meals) != 0 || plan.UserID != "u1" {
			t.Fatalf("unexpected plan %d: %+v", i, plan)
		}
	}

	if _, err := m.LoadWeeklySchedule(ctx); err != nil {
		t.Fatalf("second LoadWeeklySchedule returned error: %v", err)
	}
	docs, _ := st.Query(ctx, store.MealPlans("u1"), store.Query{})
	if len(docs) != 7 {
		t.Fatalf("expected provisioning to be idempotent, got %d plans", len(docs))
	}
}

func TestExistingPlansAreSortedAndCompleted(t *testing.T) {
	m, st := newTestManager()
	ctx := context.Background()

	for _, day := range []string{"Sunday", "Wednesday", "Monday"} {
		plan := models.MealPlan{UserID: "u1", DayOfWeek: day}
		if err := st.Set(ctx, store.MealPlan("u1", "legacy-"+models.PlanID(day)), plan); err != nil {
			t.Fatalf("seeding plan failed: %v", err)
		}
	}

	plans, err := m.LoadWeeklySchedule(ctx)
	if err != nil {
		t.Fatalf("LoadWeeklySchedule returned error: %v", err)
	}
	if len(plans) != 7 {
		t.Fatalf("expected missing days to be created, got %d plans", len(plans))
	}
	for i, plan := range plans {
		if plan.DayOfWeek != models.DaysOfWeek[i] {
			t.Fatalf("position %d: expected %s, got %s", i, models.DaysOfWeek[i], plan.DayOfWeek)
		}
	}
	if plans[0].ID != "legacy-monday" {
		t.Fatalf("expected existing Monday plan to be kept, got %s", plans[0].ID)
	}
}

func TestAddAndRemoveScheduledMeal(t *testing.T) {
	m, _ := newTestManager()
	ctx := context.Background()
	if _, err := m.LoadWeeklySchedule(ctx); err != nil {
		t.Fatalf("LoadWeeklySchedule returned error: %v", err)
	}

	if _, err := m.AddScheduledMeal(ctx, "Tuesday", "m1", "Oatmeal", "Breakfast", 2); err != nil {
		t.Fatalf("AddScheduledMeal returned error: %v", err)
	}
	plans, err := m.AddScheduledMeal(ctx, "tuesday", "m2", "Salad", "Lunch", 1)
	if err != nil {
		t.Fatalf("AddScheduledMeal returned error: %v", err)
	}

	tuesday := plans[1]
	if len(tuesday.Meals) != 2 {
		t.Fatalf("expected 2 meals on Tuesday, got %d", len(tuesday.Meals))
	}
	if tuesday.Meals[0].MealName != "Oatmeal" || tuesday.Meals[1].MealName != "Salad" {
		t.Fatalf("expected meals in the order added, got %+v", tuesday.Meals)
	}
	if tuesday.Meals[0].Servings != 2 || tuesday.Meals[0].TimeOfDay != "Breakfast" {
		t.Fatalf("unexpected scheduled meal: %+v", tuesday.Meals[0])
	}

	plans, err = m.RemoveScheduledMeal(ctx, "Tuesday", tuesday.Meals[0].ID)
	if err != nil {
		t.Fatalf("RemoveScheduledMeal returned error: %v", err)
	}
	if len(plans[1].Meals) != 1 || plans[1].Meals[0].MealID != "m2" {
		t.Fatalf("unexpected Tuesday after removal: %+v", plans[1].Meals)
	}
}

func TestAddScheduledMealNeedsLoadedPlan(t *testing.T) {
	m, st := newTestManager()
	ctx := context.Background()

	_, err := m.AddScheduledMeal(ctx, "Monday", "m1", "Oatmeal", "Breakfast", 1)
	if !apperr.Is(err, apperr.NotFound) {
		t.Fatalf("expected plan not found, got %v", err)
	}
	if st.Len() != 0 {
		t.Fatalf("expected nothing written, got %d documents", st.Len())
	}
	if snap := m.Snapshot(); snap.Error != "plan not found" || snap.Loading {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
}

func TestAddScheduledMealValidation(t *testing.T) {
	m, _ := newTestManager()
	ctx := context.Background()
	_, _ = m.LoadWeeklySchedule(ctx)

	if _, err := m.AddScheduledMeal(ctx, "Monday", "m1", "Oatmeal", "", 0); !apperr.Is(err, apperr.ValidationFailed) {
		t.Fatalf("expected validation error for servings, got %v", err)
	}
	if _, err := m.AddScheduledMeal(ctx, "Monday", "", "Oatmeal", "", 1); !apperr.Is(err, apperr.ValidationFailed) {
		t.Fatalf("expected validation error for meal id, got %v", err)
	}
}

func TestLoadAvailableMeals(t *testing.T) {
	m, st := newTestManager()
	ctx := context.Background()
	_ = st.Set(ctx, store.Meal("u1", "b"), models.Meal{Name: "Burrito"})
	_ = st.Set(ctx, store.Meal("u1", "a"), models.Meal{Name: "Apple"})
	_ = st.Set(ctx, store.Ingredient("u1", "a", "i"), models.Ingredient{Name: "Apple"})

	meals, err := m.LoadAvailableMeals(ctx)
	if err != nil {
		t.Fatalf("LoadAvailableMeals returned error: %v", err)
	}
	if len(meals) != 2 || meals[0].ID != "a" || meals[1].ID != "b" {
		t.Fatalf("unexpected meals: %+v", meals)
	}
	if len(meals[0].Ingredients) != 0 {
		t.Fatal("expected available meals without ingredients")
	}
}

func TestSignedOutSchedule(t *testing.T) {
	m := New(memstore.New(), auth.Static(""))
	if _, err := m.LoadWeeklySchedule(context.Background()); !apperr.Is(err, apperr.Unauthenticated) {
		t.Fatalf("expected unauthenticated error, got %v", err)
	}
}
