// Package catalog manages a user's meal definitions and their ingredient
// sub-collections.
package catalog

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"sync/atomic"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"dietplanner/internal/apperr"
	"dietplanner/internal/auth"
	"dietplanner/internal/models"
	"dietplanner/internal/store"
	"dietplanner/internal/viewstate"
)

type Catalog struct {
	store store.Store
	auth  auth.Provider
	limit int
	state *viewstate.State[[]models.Meal]
}

type Option func(*Catalog)

// WithFanOutLimit caps concurrent ingredient fetches; n <= 0 means no cap.
func WithFanOutLimit(n int) Option {
	return func(c *Catalog) {
		c.limit = n
	}
}

func New(st store.Store, p auth.Provider, opts ...Option) *Catalog {
	c := &Catalog{
		store: st,
		auth:  p,
		state: viewstate.New([]models.Meal{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Catalog) Snapshot() viewstate.Snapshot[[]models.Meal] {
	return c.state.Snapshot()
}

// LoadMeals fetches every meal with its ingredients. A meal whose
// ingredients cannot be fetched is kept with an empty list and counted in
// the published warning. The result is sorted by name.
func (c *Catalog) LoadMeals(ctx context.Context) ([]models.Meal, error) {
	token := c.state.Begin()

	userID, err := auth.Require(ctx, c.auth)
	if err != nil {
		c.state.Fail(token, err)
		return nil, err
	}

	docs, err := c.store.Query(ctx, store.Meals(userID), store.Query{})
	if err != nil {
		log.Println("[MEALS] [ERROR] load meals failed:", err)
		err = apperr.Remote("error loading meals", err)
		c.state.Fail(token, err)
		return nil, err
	}

	meals := make([]models.Meal, 0, len(docs))
	for _, doc := range docs {
		meal, err := DecodeMeal(doc)
		if err != nil {
			log.Println("[MEALS] [ERROR] skipping undecodable meal:", doc.Path, err)
			continue
		}
		meals = append(meals, meal)
	}

	failed := c.attachIngredients(ctx, userID, meals)
	SortMeals(meals)

	warning := ""
	if failed > 0 {
		warning = fmt.Sprintf("could not load ingredients for %d of %d meals", failed, len(meals))
	}
	if !c.state.PublishWithWarning(token, meals, warning) {
		log.Println("[MEALS] [INFO] discarding stale meal load")
	}
	return meals, nil
}

func (c *Catalog) attachIngredients(ctx context.Context, userID string, meals []models.Meal) int {
	var failed atomic.Int32

	g, gctx := errgroup.WithContext(ctx)
	if c.limit > 0 {
		g.SetLimit(c.limit)
	}
	for i := range meals {
		i := i
		g.Go(func() error {
			ingredients, err := LoadIngredients(gctx, c.store, userID, meals[i].ID)
			if err != nil {
				log.Println("[MEALS] [ERROR] load ingredients failed:", meals[i].ID, err)
				failed.Add(1)
				meals[i].Ingredients = []models.Ingredient{}
				return nil
			}
			meals[i].Ingredients = ingredients
			return nil
		})
	}
	_ = g.Wait()

	return int(failed.Load())
}

// SaveMeal writes the meal and replaces its ingredient sub-collection in a
// single batch. New meals and ingredients get generated ids.
func (c *Catalog) SaveMeal(ctx context.Context, meal models.Meal, ingredients []models.Ingredient) (models.Meal, error) {
	c.state.Start()
	saved, err := c.saveMeal(ctx, meal, ingredients)
	c.state.Finish(err)
	return saved, err
}

func (c *Catalog) saveMeal(ctx context.Context, meal models.Meal, ingredients []models.Ingredient) (models.Meal, error) {
	userID, err := auth.Require(ctx, c.auth)
	if err != nil {
		return models.Meal{}, err
	}

	meal.Name = strings.TrimSpace(meal.Name)
	if err := apperr.ValidateStruct(meal); err != nil {
		return models.Meal{}, err
	}
	if meal.ID == "" {
		meal.ID = uuid.NewString()
	} else if !store.ValidID(meal.ID) {
		return models.Meal{}, apperr.Validation("invalid meal id")
	}

	prepared := make([]models.Ingredient, 0, len(ingredients))
	keep := make(map[string]struct{}, len(ingredients))
	for i, ingredient := range ingredients {
		if strings.TrimSpace(ingredient.ID) == "" {
			ingredient.ID = uuid.NewString()
		} else if !store.ValidID(ingredient.ID) {
			return models.Meal{}, apperr.Validation("invalid ingredient id")
		}
		ingredient.Position = i
		keep[ingredient.ID] = struct{}{}
		prepared = append(prepared, ingredient)
	}

	existing, err := c.store.Query(ctx, store.Ingredients(userID, meal.ID), store.Query{})
	if err != nil {
		log.Println("[MEALS] [ERROR] list existing ingredients failed:", err)
		return models.Meal{}, apperr.Remote("error updating ingredients", err)
	}

	batch := c.store.Batch()
	batch.Set(store.Meal(userID, meal.ID), meal)
	for _, doc := range existing {
		if _, ok := keep[doc.ID]; !ok {
			batch.Delete(doc.Path)
		}
	}
	for _, ingredient := range prepared {
		batch.Set(store.Ingredient(userID, meal.ID, ingredient.ID), ingredient)
	}
	if err := batch.Commit(ctx); err != nil {
		log.Println("[MEALS] [ERROR] save meal failed:", err)
		return models.Meal{}, apperr.Remote("error saving meal", err)
	}

	meal.Ingredients = prepared
	c.state.Mutate(func(meals []models.Meal) []models.Meal {
		updated := make([]models.Meal, 0, len(meals)+1)
		for _, m := range meals {
			if m.ID != meal.ID {
				updated = append(updated, m)
			}
		}
		updated = append(updated, meal)
		SortMeals(updated)
		return updated
	})

	log.Println("[MEALS] [INFO] meal saved:", meal.ID)
	return meal, nil
}

// DeleteMeal removes the meal and its ingredients in one batch, then
// reloads the catalog.
func (c *Catalog) DeleteMeal(ctx context.Context, mealID string) ([]models.Meal, error) {
	c.state.Start()
	if err := c.deleteMeal(ctx, mealID); err != nil {
		c.state.Finish(err)
		return nil, err
	}
	return c.LoadMeals(ctx)
}

func (c *Catalog) deleteMeal(ctx context.Context, mealID string) error {
	userID, err := auth.Require(ctx, c.auth)
	if err != nil {
		return err
	}
	if !store.ValidID(mealID) {
		return apperr.Validation("invalid meal id")
	}

	existing, err := c.store.Query(ctx, store.Ingredients(userID, mealID), store.Query{})
	if err != nil {
		log.Println("[MEALS] [ERROR] list ingredients for delete failed:", err)
		return apperr.Remote("error deleting ingredients", err)
	}

	batch := c.store.Batch()
	for _, doc := range existing {
		batch.Delete(doc.Path)
	}
	batch.Delete(store.Meal(userID, mealID))
	if err := batch.Commit(ctx); err != nil {
		log.Println("[MEALS] [ERROR] delete meal failed:", err)
		return apperr.Remote("error deleting meal", err)
	}

	log.Println("[MEALS] [INFO] meal deleted:", mealID)
	return nil
}

// LoadIngredients returns a meal's ingredients in their saved order.
func LoadIngredients(ctx context.Context, st store.Store, userID, mealID string) ([]models.Ingredient, error) {
	docs, err := st.Query(ctx, store.Ingredients(userID, mealID), store.Query{OrderBy: "position", Direction: store.Ascending})
	if err != nil {
		return nil, err
	}

	ingredients := make([]models.Ingredient, 0, len(docs))
	for _, doc := range docs {
		var ingredient models.Ingredient
		if err := doc.Decode(&ingredient); err != nil {
			log.Println("[MEALS] [ERROR] skipping undecodable ingredient:", doc.Path, err)
			continue
		}
		ingredient.ID = doc.ID
		ingredients = append(ingredients, ingredient)
	}
	return ingredients, nil
}

func DecodeMeal(doc store.Document) (models.Meal, error) {
	var meal models.Meal
	if err := doc.Decode(&meal); err != nil {
		return models.Meal{}, err
	}
	meal.ID = doc.ID
	return meal, nil
}

// SortMeals orders meals by case-insensitive name, then id.
func SortMeals(meals []models.Meal) {
	sort.SliceStable(meals, func(i, j int) bool {
		a, b := strings.ToLower(meals[i].Name), strings.ToLower(meals[j].Name)
		if a != b {
			return a < b
		}
		return meals[i].ID < meals[j].ID
	})
}
