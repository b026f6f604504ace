package shopping

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"dietplanner/internal/models"
)

// Contribution is one scheduled meal together with the ingredients of the
// meal it refers to.
type Contribution struct {
	Day         string
	Meal        models.ScheduledMeal
	Ingredients []models.Ingredient
}

// ParseQuantity reads an ingredient quantity. Text that is not a finite
// number counts as 1.
func ParseQuantity(quantity string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(quantity), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 1.0
	}
	return v
}

// MergeKey identifies the shopping list item an ingredient is added to.
func MergeKey(name, unit string) string {
	return strings.ToLower(strings.TrimSpace(name)) + "_" + strings.ToLower(strings.TrimSpace(unit))
}

// Aggregate merges the ingredients of every contribution by name and unit,
// scaling each quantity by the scheduled servings. Ingredients with a
// blank name are skipped. newID supplies ids for the created items.
func Aggregate(contributions []Contribution, newID func() string) []models.ShoppingListItem {
	byKey := make(map[string]*models.ShoppingListItem)
	order := make([]string, 0)

	for _, c := range contributions {
		ref := models.MealReference{
			MealID:    c.Meal.MealID,
			MealName:  c.Meal.MealName,
			DayOfWeek: c.Day,
			Servings:  c.Meal.Servings,
		}
		for _, ingredient := range c.Ingredients {
			name := strings.TrimSpace(ingredient.Name)
			if name == "" {
				continue
			}
			quantity := ParseQuantity(ingredient.Quantity) * float64(c.Meal.Servings)
			key := MergeKey(name, ingredient.Unit)

			if item, ok := byKey[key]; ok {
				item.Quantity += quantity
				item.MealReferences = append(item.MealReferences, ref)
				continue
			}
			byKey[key] = &models.ShoppingListItem{
				ID:             newID(),
				IngredientName: name,
				Quantity:       quantity,
				Unit:           strings.TrimSpace(ingredient.Unit),
				MealReferences: []models.MealReference{ref},
			}
			order = append(order, key)
		}
	}

	items := make([]models.ShoppingListItem, 0, len(order))
	for _, key := range order {
		items = append(items, *byKey[key])
	}
	SortItems(items)
	return items
}

// SortItems orders items by case-insensitive name, then unit.
func SortItems(items []models.ShoppingListItem) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := strings.ToLower(items[i].IngredientName), strings.ToLower(items[j].IngredientName)
		if a != b {
			return a < b
		}
		return strings.ToLower(items[i].Unit) < strings.ToLower(items[j].Unit)
	})
}
