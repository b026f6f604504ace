// Package shopping builds the weekly shopping list from the scheduled
// meals and keeps its checked state.
package shopping

import (
	"context"
	"errors"
	"log"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"dietplanner/internal/apperr"
	"dietplanner/internal/auth"
	"dietplanner/internal/catalog"
	"dietplanner/internal/models"
	"dietplanner/internal/schedule"
	"dietplanner/internal/store"
	"dietplanner/internal/viewstate"
)

type Aggregator struct {
	store store.Store
	auth  auth.Provider
	limit int
	state *viewstate.State[[]models.ShoppingListItem]
}

type Option func(*Aggregator)

// WithFanOutLimit caps concurrent fetches in each stage; n <= 0 means no
// cap.
func WithFanOutLimit(n int) Option {
	return func(a *Aggregator) {
		a.limit = n
	}
}

func New(st store.Store, p auth.Provider, opts ...Option) *Aggregator {
	a := &Aggregator{
		store: st,
		auth:  p,
		state: viewstate.New([]models.ShoppingListItem{}),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *Aggregator) Snapshot() viewstate.Snapshot[[]models.ShoppingListItem] {
	return a.state.Snapshot()
}

// Generate rebuilds the shopping list from the whole week and replaces the
// stored list with it. Fetches that fail are left out of the result.
func (a *Aggregator) Generate(ctx context.Context) ([]models.ShoppingListItem, error) {
	token := a.state.Begin()

	items, err := a.generate(ctx)
	if err != nil {
		a.state.Fail(token, err)
		return nil, err
	}

	if !a.state.Publish(token, items) {
		log.Println("[SHOPPING] [INFO] discarding stale shopping list")
	}
	return items, nil
}

type plannedMeal struct {
	day         string
	meal        models.ScheduledMeal
	ingredients []models.Ingredient
	ok          bool
}

func (a *Aggregator) generate(ctx context.Context) ([]models.ShoppingListItem, error) {
	userID, err := auth.Require(ctx, a.auth)
	if err != nil {
		return nil, err
	}

	docs, err := a.store.Query(ctx, store.MealPlans(userID), store.Query{})
	if err != nil {
		log.Println("[SHOPPING] [ERROR] load plans failed:", err)
		return nil, apperr.Remote("error loading meal plans", err)
	}
	if len(docs) == 0 {
		return nil, apperr.NotFoundf("no meals planned")
	}

	plans := make([]models.MealPlan, 0, len(docs))
	for _, doc := range docs {
		var plan models.MealPlan
		if err := doc.Decode(&plan); err != nil {
			log.Println("[SHOPPING] [ERROR] skipping undecodable plan:", doc.Path, err)
			continue
		}
		plan.ID = doc.ID
		plans = append(plans, plan)
	}
	models.SortPlans(plans)

	// Stage one: every plan's scheduled meals.
	g, gctx := errgroup.WithContext(ctx)
	if a.limit > 0 {
		g.SetLimit(a.limit)
	}
	for i := range plans {
		i := i
		g.Go(func() error {
			meals, err := schedule.LoadScheduledMeals(gctx, a.store, userID, plans[i].ID)
			if err != nil {
				log.Println("[SHOPPING] [ERROR] load scheduled meals failed:", plans[i].ID, err)
				return nil
			}
			plans[i].Meals = meals
			return nil
		})
	}
	_ = g.Wait()

	// Stage two: the leaf set is fixed before any ingredient fetch starts.
	leaves := make([]plannedMeal, 0)
	for _, plan := range plans {
		for _, meal := range plan.Meals {
			leaves = append(leaves, plannedMeal{day: plan.DayOfWeek, meal: meal})
		}
	}

	g, gctx = errgroup.WithContext(ctx)
	if a.limit > 0 {
		g.SetLimit(a.limit)
	}
	for i := range leaves {
		i := i
		g.Go(func() error {
			ingredients, err := catalog.LoadIngredients(gctx, a.store, userID, leaves[i].meal.MealID)
			if err != nil {
				log.Println("[SHOPPING] [ERROR] load ingredients failed:", leaves[i].meal.MealID, err)
				return nil
			}
			leaves[i].ingredients = ingredients
			leaves[i].ok = true
			return nil
		})
	}
	_ = g.Wait()

	contributions := make([]Contribution, 0, len(leaves))
	for _, leaf := range leaves {
		if !leaf.ok {
			continue
		}
		contributions = append(contributions, Contribution{Day: leaf.day, Meal: leaf.meal, Ingredients: leaf.ingredients})
	}
	items := Aggregate(contributions, uuid.NewString)

	if err := a.replace(ctx, userID, items); err != nil {
		return nil, err
	}

	log.Printf("[SHOPPING] [INFO] generated %d items from %d scheduled meals", len(items), len(leaves))
	return items, nil
}

// replace deletes the stored list and writes items in the same batch.
func (a *Aggregator) replace(ctx context.Context, userID string, items []models.ShoppingListItem) error {
	existing, err := a.store.Query(ctx, store.ShoppingList(userID), store.Query{})
	if err != nil {
		log.Println("[SHOPPING] [ERROR] list existing items failed:", err)
		return apperr.Remote("error saving shopping list", err)
	}

	batch := a.store.Batch()
	for _, doc := range existing {
		batch.Delete(doc.Path)
	}
	for _, item := range items {
		batch.Set(store.ShoppingItem(userID, item.ID), item)
	}
	if err := batch.Commit(ctx); err != nil {
		log.Println("[SHOPPING] [ERROR] save shopping list failed:", err)
		return apperr.Remote("error saving shopping list", err)
	}
	return nil
}

func (a *Aggregator) LoadShoppingList(ctx context.Context) ([]models.ShoppingListItem, error) {
	token := a.state.Begin()

	userID, err := auth.Require(ctx, a.auth)
	if err != nil {
		a.state.Fail(token, err)
		return nil, err
	}

	items, err := a.loadItems(ctx, userID)
	if err != nil {
		log.Println("[SHOPPING] [ERROR] load shopping list failed:", err)
		err = apperr.Remote("error loading shopping list", err)
		a.state.Fail(token, err)
		return nil, err
	}

	a.state.Publish(token, items)
	return items, nil
}

func (a *Aggregator) loadItems(ctx context.Context, userID string) ([]models.ShoppingListItem, error) {
	docs, err := a.store.Query(ctx, store.ShoppingList(userID), store.Query{})
	if err != nil {
		return nil, err
	}

	items := make([]models.ShoppingListItem, 0, len(docs))
	for _, doc := range docs {
		var item models.ShoppingListItem
		if err := doc.Decode(&item); err != nil {
			log.Println("[SHOPPING] [ERROR] skipping undecodable item:", doc.Path, err)
			continue
		}
		item.ID = doc.ID
		if item.MealReferences == nil {
			item.MealReferences = []models.MealReference{}
		}
		items = append(items, item)
	}
	SortItems(items)
	return items, nil
}

// SetChecked marks one item as bought or not.
func (a *Aggregator) SetChecked(ctx context.Context, itemID string, checked bool) error {
	a.state.Start()
	err := a.setChecked(ctx, itemID, checked)
	a.state.Finish(err)
	return err
}

func (a *Aggregator) setChecked(ctx context.Context, itemID string, checked bool) error {
	userID, err := auth.Require(ctx, a.auth)
	if err != nil {
		return err
	}
	if !store.ValidID(itemID) {
		return apperr.Validation("invalid item id")
	}

	err = a.store.Update(ctx, store.ShoppingItem(userID, itemID), map[string]interface{}{"checked": checked})
	if errors.Is(err, store.ErrNotFound) {
		return apperr.NotFoundf("shopping list item not found")
	}
	if err != nil {
		log.Println("[SHOPPING] [ERROR] update item failed:", err)
		return apperr.Remote("error updating item", err)
	}

	a.state.Mutate(func(items []models.ShoppingListItem) []models.ShoppingListItem {
		updated := make([]models.ShoppingListItem, len(items))
		copy(updated, items)
		for i := range updated {
			if updated[i].ID == itemID {
				updated[i].Checked = checked
			}
		}
		return updated
	})
	return nil
}

func (a *Aggregator) RemoveItem(ctx context.Context, itemID string) error {
	a.state.Start()
	err := a.removeItem(ctx, itemID)
	a.state.Finish(err)
	return err
}

func (a *Aggregator) removeItem(ctx context.Context, itemID string) error {
	userID, err := auth.Require(ctx, a.auth)
	if err != nil {
		return err
	}
	if !store.ValidID(itemID) {
		return apperr.Validation("invalid item id")
	}

	if err := a.store.Delete(ctx, store.ShoppingItem(userID, itemID)); err != nil {
		log.Println("[SHOPPING] [ERROR] remove item failed:", err)
		return apperr.Remote("error removing item", err)
	}

	a.state.Mutate(func(items []models.ShoppingListItem) []models.ShoppingListItem {
		return without(items, func(item models.ShoppingListItem) bool { return item.ID == itemID })
	})
	return nil
}

// ClearChecked deletes every checked item in one batch and returns how
// many were removed.
func (a *Aggregator) ClearChecked(ctx context.Context) (int, error) {
	a.state.Start()
	n, err := a.clearChecked(ctx)
	a.state.Finish(err)
	return n, err
}

func (a *Aggregator) clearChecked(ctx context.Context) (int, error) {
	userID, err := auth.Require(ctx, a.auth)
	if err != nil {
		return 0, err
	}

	items, err := a.loadItems(ctx, userID)
	if err != nil {
		log.Println("[SHOPPING] [ERROR] load items for clear failed:", err)
		return 0, apperr.Remote("error clearing checked items", err)
	}

	batch := a.store.Batch()
	for _, item := range items {
		if item.Checked {
			batch.Delete(store.ShoppingItem(userID, item.ID))
		}
	}
	if err := batch.Commit(ctx); err != nil {
		log.Println("[SHOPPING] [ERROR] clear checked items failed:", err)
		return 0, apperr.Remote("error clearing checked items", err)
	}

	remaining := without(items, func(item models.ShoppingListItem) bool { return item.Checked })
	a.state.Reset(remaining)
	return batch.Len(), nil
}

func without(items []models.ShoppingListItem, drop func(models.ShoppingListItem) bool) []models.ShoppingListItem {
	kept := make([]models.ShoppingListItem, 0, len(items))
	for _, item := range items {
		if !drop(item) {
			kept = append(kept, item)
		}
	}
	return kept
}
