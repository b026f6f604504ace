// Package progress records weight and body measurement entries and the
// reference weight progress is measured against.
package progress

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"dietplanner/internal/apperr"
	"dietplanner/internal/auth"
	"dietplanner/internal/models"
	"dietplanner/internal/store"
	"dietplanner/internal/viewstate"
)

// History is the loaded entry list, newest first.
type History struct {
	Entries         []models.UserProgress `json:"entries"`
	ReferenceWeight float64               `json:"referenceWeight"`
}

// WeightHook is told about the weight now stored on the profile. reference
// is set when the cached reference weight was written in the same change.
type WeightHook func(weight float64, reference *float64)

type Tracker struct {
	store    store.Store
	auth     auth.Provider
	now      func() time.Time
	onWeight WeightHook
	state    *viewstate.State[History]
	draft    *viewstate.State[models.UserProgress]
}

type Option func(*Tracker)

func WithClock(now func() time.Time) Option {
	return func(t *Tracker) {
		t.now = now
	}
}

func OnWeightChanged(hook WeightHook) Option {
	return func(t *Tracker) {
		t.onWeight = hook
	}
}

func New(st store.Store, p auth.Provider, opts ...Option) *Tracker {
	t := &Tracker{
		store: st,
		auth:  p,
		now:   time.Now,
		state: viewstate.New(History{Entries: []models.UserProgress{}}),
		draft: viewstate.New(emptyDraft()),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func emptyDraft() models.UserProgress {
	return models.UserProgress{Measurements: map[string]float64{}}
}

func (t *Tracker) Snapshot() viewstate.Snapshot[History] {
	return t.state.Snapshot()
}

func (t *Tracker) Draft() models.UserProgress {
	return t.draft.Data()
}

// ResetDraft discards every pending draft value.
func (t *Tracker) ResetDraft() {
	t.draft.Reset(emptyDraft())
}

func (t *Tracker) UpdateWeight(weight float64) {
	t.draft.Mutate(func(d models.UserProgress) models.UserProgress {
		d.Weight = weight
		return d
	})
}

// UpdateMeasurement sets one named body measurement on the draft.
func (t *Tracker) UpdateMeasurement(name string, value float64) {
	t.draft.Mutate(func(d models.UserProgress) models.UserProgress {
		measurements := make(map[string]float64, len(d.Measurements)+1)
		for k, v := range d.Measurements {
			measurements[k] = v
		}
		measurements[name] = value
		d.Measurements = measurements
		return d
	})
}

func (t *Tracker) UpdateNotes(notes string) {
	t.draft.Mutate(func(d models.UserProgress) models.UserProgress {
		d.Notes = notes
		return d
	})
}

// LoadProgressEntries loads the history newest first and resolves the
// reference weight: the cached one, else the oldest entry (cached back on
// the profile), else the profile weight, else 0.
func (t *Tracker) LoadProgressEntries(ctx context.Context) (History, error) {
	token := t.state.Begin()

	history, err := t.load(ctx)
	if err != nil {
		t.state.Fail(token, err)
		return History{}, err
	}

	if !t.state.Publish(token, history) {
		log.Println("[PROGRESS] [INFO] discarding stale progress load")
	}
	return history, nil
}

func (t *Tracker) load(ctx context.Context) (History, error) {
	userID, err := auth.Require(ctx, t.auth)
	if err != nil {
		return History{}, err
	}

	profile, hasProfile, err := t.loadProfile(ctx, userID)
	if err != nil {
		return History{}, err
	}

	entries, err := t.loadEntries(ctx, userID)
	if err != nil {
		log.Println("[PROGRESS] [ERROR] load entries failed:", err)
		return History{}, apperr.Remote("error loading progress", err)
	}

	history := History{Entries: entries}
	switch {
	case hasProfile && profile.InitialReferenceWeight != nil:
		history.ReferenceWeight = *profile.InitialReferenceWeight
	case len(entries) > 0:
		history.ReferenceWeight = entries[len(entries)-1].Weight
		if hasProfile {
			err := t.store.Update(ctx, store.UserDoc(userID), map[string]interface{}{"initialReferenceWeight": history.ReferenceWeight})
			if err != nil {
				log.Println("[PROGRESS] [ERROR] caching reference weight failed:", err)
			}
		}
	case hasProfile:
		history.ReferenceWeight = profile.Weight
	}
	return history, nil
}

func (t *Tracker) loadProfile(ctx context.Context, userID string) (models.UserProfile, bool, error) {
	doc, err := t.store.Get(ctx, store.UserDoc(userID))
	if errors.Is(err, store.ErrNotFound) {
		return models.UserProfile{}, false, nil
	}
	if err != nil {
		log.Println("[PROGRESS] [ERROR] load profile failed:", err)
		return models.UserProfile{}, false, apperr.Remote("error loading profile", err)
	}
	var profile models.UserProfile
	if err := doc.Decode(&profile); err != nil {
		return models.UserProfile{}, false, apperr.Remote("error reading profile", err)
	}
	profile.ID = doc.ID
	return profile, true, nil
}

func (t *Tracker) loadEntries(ctx context.Context, userID string) ([]models.UserProgress, error) {
	docs, err := t.store.Query(ctx, store.ProgressEntries(userID), store.Query{OrderBy: "date", Direction: store.Descending})
	if err != nil {
		return nil, err
	}

	entries := make([]models.UserProgress, 0, len(docs))
	for _, doc := range docs {
		var entry models.UserProgress
		if err := doc.Decode(&entry); err != nil {
			log.Println("[PROGRESS] [ERROR] skipping undecodable entry:", doc.Path, err)
			continue
		}
		entry.ID = doc.ID
		if entry.Measurements == nil {
			entry.Measurements = map[string]float64{}
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// SaveProgressEntry stores the draft as a new entry dated now and copies
// its weight onto the profile in the same transaction. The first entry a
// user ever records also becomes the cached reference weight.
func (t *Tracker) SaveProgressEntry(ctx context.Context) (models.UserProgress, error) {
	draft := t.draft.Data()
	if !(draft.Weight > 0) {
		err := apperr.Validation("weight must be greater than 0")
		t.state.SetError(err)
		return models.UserProgress{}, err
	}

	t.state.Start()
	entry, reference, err := t.save(ctx, draft)
	t.state.Finish(err)
	if err != nil {
		return models.UserProgress{}, err
	}

	t.state.Mutate(func(h History) History {
		entries := make([]models.UserProgress, 0, len(h.Entries)+1)
		entries = append(entries, entry)
		h.Entries = append(entries, h.Entries...)
		if reference != nil {
			h.ReferenceWeight = *reference
		}
		return h
	})
	t.draft.Reset(emptyDraft())

	if t.onWeight != nil {
		t.onWeight(entry.Weight, reference)
	}
	log.Println("[PROGRESS] [INFO] entry saved:", entry.ID)
	return entry, nil
}

func (t *Tracker) save(ctx context.Context, draft models.UserProgress) (models.UserProgress, *float64, error) {
	userID, err := auth.Require(ctx, t.auth)
	if err != nil {
		return models.UserProgress{}, nil, err
	}

	existing, err := t.store.Query(ctx, store.ProgressEntries(userID), store.Query{})
	if err != nil {
		log.Println("[PROGRESS] [ERROR] count entries failed:", err)
		return models.UserProgress{}, nil, apperr.Remote("error saving progress", err)
	}

	entry := draft
	entry.ID = t.store.NewID()
	entry.UserID = userID
	entry.Date = t.now().UTC()
	entry.Notes = strings.TrimSpace(entry.Notes)
	if entry.Measurements == nil {
		entry.Measurements = map[string]float64{}
	}

	var reference *float64
	err = t.store.RunTransaction(ctx, func(tx store.Tx) error {
		reference = nil
		doc, err := tx.Get(store.UserDoc(userID))
		switch {
		case errors.Is(err, store.ErrNotFound):
			if len(existing) == 0 {
				w := entry.Weight
				reference = &w
			}
		case err != nil:
			return err
		default:
			var profile models.UserProfile
			if err := doc.Decode(&profile); err != nil {
				return err
			}
			fields := map[string]interface{}{"weight": entry.Weight}
			if profile.InitialReferenceWeight == nil && len(existing) == 0 {
				w := entry.Weight
				reference = &w
				fields["initialReferenceWeight"] = w
			}
			if err := tx.Update(store.UserDoc(userID), fields); err != nil {
				return err
			}
		}
		return tx.Set(store.ProgressEntry(userID, entry.ID), entry)
	})
	if err != nil {
		log.Println("[PROGRESS] [ERROR] save entry failed:", err)
		return models.UserProgress{}, nil, apperr.Remote("error saving progress", err)
	}
	return entry, reference, nil
}

// DeleteProgressEntry removes one entry and sets the profile weight to the
// latest remaining entry. The reference weight is left alone.
func (t *Tracker) DeleteProgressEntry(ctx context.Context, entryID string) error {
	t.state.Start()
	latest, err := t.delete(ctx, entryID)
	t.state.Finish(err)
	if err != nil {
		return err
	}

	t.state.Mutate(func(h History) History {
		entries := make([]models.UserProgress, 0, len(h.Entries))
		for _, entry := range h.Entries {
			if entry.ID != entryID {
				entries = append(entries, entry)
			}
		}
		h.Entries = entries
		return h
	})

	if latest != nil && t.onWeight != nil {
		t.onWeight(latest.Weight, nil)
	}
	log.Println("[PROGRESS] [INFO] entry deleted:", entryID)
	return nil
}

func (t *Tracker) delete(ctx context.Context, entryID string) (*models.UserProgress, error) {
	userID, err := auth.Require(ctx, t.auth)
	if err != nil {
		return nil, err
	}
	if !store.ValidID(entryID) {
		return nil, apperr.Validation("invalid entry id")
	}

	entries, err := t.loadEntries(ctx, userID)
	if err != nil {
		log.Println("[PROGRESS] [ERROR] load entries for delete failed:", err)
		return nil, apperr.Remote("error deleting progress", err)
	}

	var latest *models.UserProgress
	found := false
	for i := range entries {
		if entries[i].ID == entryID {
			found = true
			continue
		}
		if latest == nil {
			latest = &entries[i]
		}
	}
	if !found {
		return nil, apperr.NotFoundf("progress entry not found")
	}

	err = t.store.RunTransaction(ctx, func(tx store.Tx) error {
		if err := tx.Delete(store.ProgressEntry(userID, entryID)); err != nil {
			return err
		}
		if latest == nil {
			return nil
		}
		_, err := tx.Get(store.UserDoc(userID))
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		return tx.Update(store.UserDoc(userID), map[string]interface{}{"weight": latest.Weight})
	})
	if err != nil {
		log.Println("[PROGRESS] [ERROR] delete entry failed:", err)
		return nil, apperr.Remote("error deleting progress", err)
	}
	return latest, nil
}
