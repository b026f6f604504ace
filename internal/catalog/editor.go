package catalog

import (
	"context"

	"github.com/google/uuid"

	"dietplanner/internal/models"
	"dietplanner/internal/viewstate"
)

// Draft is a meal being edited before it is saved.
type Draft struct {
	Meal        models.Meal         `json:"meal"`
	Ingredients []models.Ingredient `json:"ingredients"`
}

// Editor holds the in-progress meal of the meal planner form.
type Editor struct {
	catalog *Catalog
	state   *viewstate.State[Draft]
}

func NewEditor(c *Catalog) *Editor {
	return &Editor{catalog: c, state: viewstate.New(emptyDraft())}
}

func emptyDraft() Draft {
	return Draft{Ingredients: []models.Ingredient{}}
}

func (e *Editor) Snapshot() viewstate.Snapshot[Draft] {
	return e.state.Snapshot()
}

func (e *Editor) Draft() Draft {
	return e.state.Data()
}

func (e *Editor) SetName(name string) {
	e.state.Mutate(func(d Draft) Draft {
		d.Meal.Name = name
		return d
	})
}

func (e *Editor) SetCalories(calories int) {
	e.state.Mutate(func(d Draft) Draft {
		d.Meal.Calories = calories
		return d
	})
}

func (e *Editor) SetCarbs(carbs int) {
	e.state.Mutate(func(d Draft) Draft {
		d.Meal.Carbs = carbs
		return d
	})
}

// AddIngredient appends a blank ingredient with a fresh id.
func (e *Editor) AddIngredient() models.Ingredient {
	ingredient := models.Ingredient{ID: uuid.NewString()}
	e.state.Mutate(func(d Draft) Draft {
		ingredients := make([]models.Ingredient, 0, len(d.Ingredients)+1)
		ingredients = append(ingredients, d.Ingredients...)
		d.Ingredients = append(ingredients, ingredient)
		return d
	})
	return ingredient
}

// UpdateIngredient replaces the ingredient with the same id. It reports
// false when the draft has no such ingredient.
func (e *Editor) UpdateIngredient(updated models.Ingredient) bool {
	found := false
	e.state.Mutate(func(d Draft) Draft {
		ingredients := make([]models.Ingredient, len(d.Ingredients))
		for i, ingredient := range d.Ingredients {
			if ingredient.ID == updated.ID {
				ingredient = updated
				found = true
			}
			ingredients[i] = ingredient
		}
		d.Ingredients = ingredients
		return d
	})
	return found
}

func (e *Editor) RemoveIngredient(id string) bool {
	found := false
	e.state.Mutate(func(d Draft) Draft {
		ingredients := make([]models.Ingredient, 0, len(d.Ingredients))
		for _, ingredient := range d.Ingredients {
			if ingredient.ID == id {
				found = true
				continue
			}
			ingredients = append(ingredients, ingredient)
		}
		d.Ingredients = ingredients
		return d
	})
	return found
}

// Edit loads an existing meal into the draft; saving keeps its id.
func (e *Editor) Edit(meal models.Meal) {
	ingredients := append([]models.Ingredient{}, meal.Ingredients...)
	meal.Ingredients = nil
	e.state.Reset(Draft{Meal: meal, Ingredients: ingredients})
}

func (e *Editor) Clear() {
	e.state.Reset(emptyDraft())
}

// Save persists the draft through the catalog and starts a new draft on
// success.
func (e *Editor) Save(ctx context.Context) (models.Meal, error) {
	draft := e.state.Data()
	e.state.Start()

	saved, err := e.catalog.SaveMeal(ctx, draft.Meal, draft.Ingredients)
	if err != nil {
		e.state.Finish(err)
		return models.Meal{}, err
	}

	e.state.Reset(emptyDraft())
	return saved, nil
}
