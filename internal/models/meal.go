package models

// Meal is a user-defined dish. Ingredients live in the meal's own
// sub-collection and are attached after loading.
type Meal struct {
	ID          string       `bson:"-" json:"id"`
	Name        string       `bson:"name" json:"name" validate:"required"`
	Calories    int          `bson:"calories" json:"calories" validate:"gte=0"`
	Carbs       int          `bson:"carbs" json:"carbs" validate:"gte=0"`
	Ingredients []Ingredient `bson:"-" json:"ingredients"`
}

// Ingredient belongs to exactly one meal. Quantity is free text and is
// usually a number.
type Ingredient struct {
	ID       string `bson:"-" json:"id"`
	Name     string `bson:"name" json:"name"`
	Quantity string `bson:"quantity" json:"quantity"`
	Unit     string `bson:"unit" json:"unit"`
	Position int    `bson:"position" json:"-"`
}
