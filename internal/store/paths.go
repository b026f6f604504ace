package store

import (
	"fmt"
	"strings"
)

const (
	usersCollection          = "users"
	mealsCollection          = "meals"
	ingredientsCollection    = "ingredients"
	mealPlansCollection      = "mealPlans"
	scheduledMealsCollection = "scheduledMeals"
	shoppingListCollection   = "shoppingList"
	progressCollection       = "progress"
	accountsCollection       = "accounts"
)

// Join builds a slash separated path. Segments must be non-empty and must
// not contain a slash themselves.
func Join(segments ...string) string {
	return strings.Join(segments, "/")
}

// ValidID reports whether id can be used as a single path segment.
func ValidID(id string) bool {
	return strings.TrimSpace(id) != "" && !strings.Contains(id, "/")
}

// Split validates a path and returns its segments.
func Split(path string) ([]string, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("empty path")
	}
	segments := strings.Split(path, "/")
	for _, s := range segments {
		if strings.TrimSpace(s) == "" {
			return nil, fmt.Errorf("invalid path %q: empty segment", path)
		}
	}
	return segments, nil
}

// SplitDocument returns the parent collection and id of a document path.
func SplitDocument(path string) (collection, id string, err error) {
	segments, err := Split(path)
	if err != nil {
		return "", "", err
	}
	if len(segments)%2 != 0 {
		return "", "", fmt.Errorf("invalid document path %q", path)
	}
	return Join(segments[:len(segments)-1]...), segments[len(segments)-1], nil
}

// ValidateCollection checks that path addresses a collection.
func ValidateCollection(path string) error {
	segments, err := Split(path)
	if err != nil {
		return err
	}
	if len(segments)%2 != 1 {
		return fmt.Errorf("invalid collection path %q", path)
	}
	return nil
}

func UserDoc(userID string) string {
	return Join(usersCollection, userID)
}

func Meals(userID string) string {
	return Join(usersCollection, userID, mealsCollection)
}

func Meal(userID, mealID string) string {
	return Join(Meals(userID), mealID)
}

func Ingredients(userID, mealID string) string {
	return Join(Meal(userID, mealID), ingredientsCollection)
}

func Ingredient(userID, mealID, ingredientID string) string {
	return Join(Ingredients(userID, mealID), ingredientID)
}

func MealPlans(userID string) string {
	return Join(usersCollection, userID, mealPlansCollection)
}

func MealPlan(userID, planID string) string {
	return Join(MealPlans(userID), planID)
}

func ScheduledMeals(userID, planID string) string {
	return Join(MealPlan(userID, planID), scheduledMealsCollection)
}

func ScheduledMeal(userID, planID, scheduledMealID string) string {
	return Join(ScheduledMeals(userID, planID), scheduledMealID)
}

func ShoppingList(userID string) string {
	return Join(usersCollection, userID, shoppingListCollection)
}

func ShoppingItem(userID, itemID string) string {
	return Join(ShoppingList(userID), itemID)
}

func ProgressEntries(userID string) string {
	return Join(usersCollection, userID, progressCollection)
}

func ProgressEntry(userID, entryID string) string {
	return Join(ProgressEntries(userID), entryID)
}

func Accounts() string {
	return accountsCollection
}

func Account(key string) string {
	return Join(accountsCollection, key)
}
