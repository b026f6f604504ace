package catalog

import (
	"context"
	"errors"
	"strings"
	"testing"

	"dietplanner/internal/apperr"
	"dietplanner/internal/auth"
	"dietplanner/internal/models"
	"dietplanner/internal/store"
	"dietplanner/internal/store/memstore"
)

func newTestCatalog() (*Catalog, *memstore.Store) {
	st := memstore.New()
	return New(st, auth.Static("u1"), WithFanOutLimit(2)), st
}

func TestSaveThenLoadKeepsIngredients(t *testing.T) {
	c, _ := newTestCatalog()
	ctx := context.Background()

	saved, err := c.SaveMeal(ctx, models.Meal{Name: "Oatmeal", Calories: 300, Carbs: 50}, []models.Ingredient{
		{Name: "Oats", Quantity: "100", Unit: "g"},
		{Name: "Milk", Quantity: "200", Unit: "ml"},
		{Name: "Honey", Quantity: "1", Unit: "tbsp"},
	})
	if err != nil {
		t.Fatalf("SaveMeal returned error: %v", err)
	}
	if saved.ID == "" {
		t.Fatal("expected generated meal id")
	}

	meals, err := c.LoadMeals(ctx)
	if err != nil {
		t.Fatalf("LoadMeals returned error: %v", err)
	}
	if len(meals) != 1 || meals[0].ID != saved.ID {
		t.Fatalf("unexpected meals: %+v", meals)
	}

	got := meals[0].Ingredients
	want := []string{"Oats", "Milk", "Honey"}
	if len(got) != len(want) {
		t.Fatalf("expected %d ingredients, got %d", len(want), len(got))
	}
	for i, name := range want {
		if got[i].Name != name || got[i].ID == "" {
			t.Fatalf("ingredient %d: expected %s with id, got %+v", i, name, got[i])
		}
	}
	if got[0].Quantity != "100" || got[0].Unit != "g" {
		t.Fatalf("unexpected first ingredient: %+v", got[0])
	}
}

func TestSaveReplacesIngredients(t *testing.T) {
	c, st := newTestCatalog()
	ctx := context.Background()

	saved, _ := c.SaveMeal(ctx, models.Meal{Name: "Salad"}, []models.Ingredient{
		{Name: "Lettuce", Quantity: "1", Unit: "head"},
		{Name: "Tomato", Quantity: "2", Unit: ""},
	})

	kept := saved.Ingredients[1]
	kept.Quantity = "3"
	if _, err := c.SaveMeal(ctx, saved, []models.Ingredient{kept}); err != nil {
		t.Fatalf("second SaveMeal returned error: %v", err)
	}

	docs, _ := st.Query(ctx, store.Ingredients("u1", saved.ID), store.Query{})
	if len(docs) != 1 || docs[0].ID != kept.ID {
		t.Fatalf("expected only the kept ingredient, got %d docs", len(docs))
	}

	meals, _ := c.LoadMeals(ctx)
	if len(meals) != 1 || meals[0].Ingredients[0].Quantity != "3" {
		t.Fatalf("unexpected meals after replace: %+v", meals)
	}
}

func TestDeleteMealRemovesIngredients(t *testing.T) {
	c, st := newTestCatalog()
	ctx := context.Background()

	saved, _ := c.SaveMeal(ctx, models.Meal{Name: "Soup"}, []models.Ingredient{{Name: "Carrot", Quantity: "2"}})
	other, _ := c.SaveMeal(ctx, models.Meal{Name: "Toast"}, nil)

	meals, err := c.DeleteMeal(ctx, saved.ID)
	if err != nil {
		t.Fatalf("DeleteMeal returned error: %v", err)
	}
	if len(meals) != 1 || meals[0].ID != other.ID {
		t.Fatalf("expected only the other meal to remain, got %+v", meals)
	}

	docs, _ := st.Query(ctx, store.Ingredients("u1", saved.ID), store.Query{})
	if len(docs) != 0 {
		t.Fatalf("expected ingredients to be deleted, got %d", len(docs))
	}
}

func TestLoadMealsSortedByName(t *testing.T) {
	c, _ := newTestCatalog()
	ctx := context.Background()
	for _, name := range []string{"pasta", "Apple pie", "curry"} {
		if _, err := c.SaveMeal(ctx, models.Meal{Name: name}, nil); err != nil {
			t.Fatalf("SaveMeal returned error: %v", err)
		}
	}

	meals, _ := c.LoadMeals(ctx)
	if meals[0].Name != "Apple pie" || meals[1].Name != "curry" || meals[2].Name != "pasta" {
		t.Fatalf("unexpected order: %s %s %s", meals[0].Name, meals[1].Name, meals[2].Name)
	}
}

func TestLoadMealsKeepsMealWhenIngredientsFail(t *testing.T) {
	c, st := newTestCatalog()
	ctx := context.Background()

	broken, _ := c.SaveMeal(ctx, models.Meal{Name: "Broken"}, []models.Ingredient{{Name: "Flour"}})
	_, _ = c.SaveMeal(ctx, models.Meal{Name: "Fine"}, []models.Ingredient{{Name: "Rice"}})

	st.InjectFault(func(op, path string) error {
		if op == "query" && path == store.Ingredients("u1", broken.ID) {
			return errors.New("unavailable")
		}
		return nil
	})

	meals, err := c.LoadMeals(ctx)
	if err != nil {
		t.Fatalf("LoadMeals returned error: %v", err)
	}
	if len(meals) != 2 {
		t.Fatalf("expected both meals, got %d", len(meals))
	}
	if meals[0].Name != "Broken" || len(meals[0].Ingredients) != 0 {
		t.Fatalf("expected broken meal with no ingredients, got %+v", meals[0])
	}
	if len(meals[1].Ingredients) != 1 {
		t.Fatalf("expected fine meal to keep its ingredient, got %+v", meals[1])
	}

	snap := c.Snapshot()
	if !strings.Contains(snap.Error, "1 of 2") || len(snap.Data) != 2 || snap.Loading {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
}

func TestLoadMealsFailurePublishesError(t *testing.T) {
	c, st := newTestCatalog()
	st.InjectFault(func(op, path string) error {
		if op == "query" {
			return errors.New("unavailable")
		}
		return nil
	})

	_, err := c.LoadMeals(context.Background())
	if !apperr.Is(err, apperr.RemoteOperationFailed) {
		t.Fatalf("expected remote failure, got %v", err)
	}
	if snap := c.Snapshot(); snap.Error == "" || snap.Loading {
		t.Fatalf("expected error published and loading cleared, got %+v", snap)
	}
}

func TestSaveMealValidation(t *testing.T) {
	c, st := newTestCatalog()

	_, err := c.SaveMeal(context.Background(), models.Meal{Name: "  ", Calories: 10}, nil)
	if !apperr.Is(err, apperr.ValidationFailed) {
		t.Fatalf("expected validation error, got %v", err)
	}
	_, err = c.SaveMeal(context.Background(), models.Meal{Name: "Negative", Carbs: -1}, nil)
	if !apperr.Is(err, apperr.ValidationFailed) {
		t.Fatalf("expected validation error for carbs, got %v", err)
	}
	if st.Len() != 0 {
		t.Fatalf("expected nothing written, got %d documents", st.Len())
	}
}

func TestSaveMealRejectsNestedIDs(t *testing.T) {
	c, st := newTestCatalog()
	ctx := context.Background()

	if _, err := c.SaveMeal(ctx, models.Meal{ID: "m1", Name: "Oatmeal"}, []models.Ingredient{{Name: "Oats", Quantity: "100", Unit: "g"}}); err != nil {
		t.Fatalf("SaveMeal returned error: %v", err)
	}
	before := st.Len()

	_, err := c.SaveMeal(ctx, models.Meal{ID: "m1/ingredients/evil", Name: "Injected"}, nil)
	if !apperr.Is(err, apperr.ValidationFailed) {
		t.Fatalf("expected validation error for meal id, got %v", err)
	}
	_, err = c.SaveMeal(ctx, models.Meal{ID: "m2", Name: "Toast"}, []models.Ingredient{{ID: "x/y", Name: "Bread"}})
	if !apperr.Is(err, apperr.ValidationFailed) {
		t.Fatalf("expected validation error for ingredient id, got %v", err)
	}
	if _, err := c.DeleteMeal(ctx, "m1/ingredients/i1"); !apperr.Is(err, apperr.ValidationFailed) {
		t.Fatalf("expected validation error on delete, got %v", err)
	}
	if st.Len() != before {
		t.Fatalf("expected no writes, store went from %d to %d documents", before, st.Len())
	}

	meals, err := c.LoadMeals(ctx)
	if err != nil {
		t.Fatalf("LoadMeals returned error: %v", err)
	}
	if len(meals) != 1 || len(meals[0].Ingredients) != 1 || meals[0].Ingredients[0].Name != "Oats" {
		t.Fatalf("unexpected meals after rejected saves: %+v", meals)
	}
}

func TestSignedOut(t *testing.T) {
	c := New(memstore.New(), auth.Static(""))
	if _, err := c.LoadMeals(context.Background()); !apperr.Is(err, apperr.Unauthenticated) {
		t.Fatalf("expected unauthenticated error, got %v", err)
	}
	if _, err := c.SaveMeal(context.Background(), models.Meal{Name: "x"}, nil); !apperr.Is(err, apperr.Unauthenticated) {
		t.Fatalf("expected unauthenticated error, got %v", err)
	}
}
