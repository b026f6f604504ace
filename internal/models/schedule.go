package models

import "time"

// MealPlan holds the scheduled meals of one day of the week.
type MealPlan struct {
	ID        string          `bson:"-" json:"id"`
	UserID    string          `bson:"userId" json:"userId"`
	DayOfWeek string          `bson:"dayOfWeek" json:"dayOfWeek"`
	Meals     []ScheduledMeal `bson:"-" json:"meals"`
}

// ScheduledMeal is a meal placed on a day with a serving count.
// MealName is a copy taken when the meal was scheduled.
type ScheduledMeal struct {
	ID        string    `bson:"-" json:"id"`
	MealID    string    `bson:"mealId" json:"mealId"`
	MealName  string    `bson:"mealName" json:"mealName"`
	Servings  int       `bson:"servings" json:"servings"`
	TimeOfDay string    `bson:"timeOfDay" json:"timeOfDay"`
	AddedAt   time.Time `bson:"addedAt" json:"addedAt"`
}
