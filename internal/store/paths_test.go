package store

import "testing"

func TestSplitDocument(t *testing.T) {
	collection, id, err := SplitDocument(Ingredient("u1", "m1", "i1"))
	if err != nil {
		t.Fatalf("SplitDocument returned error: %v", err)
	}
	if collection != "users/u1/meals/m1/ingredients" || id != "i1" {
		t.Fatalf("unexpected split: %q %q", collection, id)
	}
}

func TestSplitDocumentRejectsCollectionPaths(t *testing.T) {
	for _, path := range []string{"", "users", Meals("u1"), "users//meals/m1"} {
		if _, _, err := SplitDocument(path); err == nil {
			t.Fatalf("expected error for %q", path)
		}
	}
}

func TestValidateCollection(t *testing.T) {
	if err := ValidateCollection(ScheduledMeals("u1", "monday")); err != nil {
		t.Fatalf("expected valid collection, got %v", err)
	}
	if err := ValidateCollection(UserDoc("u1")); err == nil {
		t.Fatal("expected document path to be rejected as collection")
	}
}

func TestPathScheme(t *testing.T) {
	cases := map[string]string{
		UserDoc("u1"):                      "users/u1",
		Meal("u1", "m1"):                   "users/u1/meals/m1",
		MealPlan("u1", "monday"):           "users/u1/mealPlans/monday",
		ScheduledMeal("u1", "monday", "s"): "users/u1/mealPlans/monday/scheduledMeals/s",
		ShoppingItem("u1", "x"):            "users/u1/shoppingList/x",
		ProgressEntry("u1", "p"):           "users/u1/progress/p",
		Account("k"):                       "accounts/k",
	}
	for got, want := range cases {
		if got != want {
			t.Fatalf("expected %q, got %q", want, got)
		}
	}
}

func TestValidID(t *testing.T) {
	for _, id := range []string{"m1", "Monday", "a-b_c"} {
		if !ValidID(id) {
			t.Fatalf("expected %q to be valid", id)
		}
	}
	for _, id := range []string{"", "  ", "m1/ingredients/evil", "/"} {
		if ValidID(id) {
			t.Fatalf("expected %q to be rejected", id)
		}
	}
}
