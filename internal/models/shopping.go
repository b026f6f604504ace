package models

type ShoppingListItem struct {
	ID             string          `bson:"-" json:"id"`
	IngredientName string          `bson:"ingredientName" json:"ingredientName"`
	Quantity       float64         `bson:"quantity" json:"quantity"`
	Unit           string          `bson:"unit" json:"unit"`
	Checked        bool            `bson:"checked" json:"checked"`
	MealReferences []MealReference `bson:"mealReferences" json:"mealReferences"`
}

// MealReference records which scheduled meal contributed to a shopping
// list item.
type MealReference struct {
	MealID    string `bson:"mealId" json:"mealId"`
	MealName  string `bson:"mealName" json:"mealName"`
	DayOfWeek string `bson:"dayOfWeek" json:"dayOfWeek"`
	Servings  int    `bson:"servings" json:"servings"`
}
