// Package profile manages the single profile document of a user.
package profile

import (
	"context"
	"errors"
	"log"
	"strings"

	"dietplanner/internal/apperr"
	"dietplanner/internal/auth"
	"dietplanner/internal/models"
	"dietplanner/internal/store"
	"dietplanner/internal/viewstate"
)

// Status tells a client whether to show profile creation or go home.
type Status int

const (
	StatusInitial Status = iota
	StatusExists
	StatusMissing
	StatusSaved
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusExists:
		return "exists"
	case StatusMissing:
		return "missing"
	case StatusSaved:
		return "saved"
	case StatusError:
		return "error"
	}
	return "initial"
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

type View struct {
	Status  Status              `json:"status"`
	Profile *models.UserProfile `json:"profile,omitempty"`
}

// Input is what a user fills in when creating a profile. A blank Email
// falls back to the signed-in account's email.
type Input struct {
	Name        string
	Email       string
	Weight      float64
	Height      float64
	Age         int
	Gender      string
	FitnessGoal string
}

type Manager struct {
	store store.Store
	auth  auth.Provider
	state *viewstate.State[View]
}

func New(st store.Store, p auth.Provider) *Manager {
	return &Manager{
		store: st,
		auth:  p,
		state: viewstate.New(View{Status: StatusInitial}),
	}
}

func (m *Manager) Snapshot() viewstate.Snapshot[View] {
	return m.state.Snapshot()
}

// Profile returns the last loaded or saved profile.
func (m *Manager) Profile() (models.UserProfile, bool) {
	view := m.state.Data()
	if view.Profile == nil {
		return models.UserProfile{}, false
	}
	return *view.Profile, true
}

// CheckUserProfile reports whether the signed-in user has a profile.
func (m *Manager) CheckUserProfile(ctx context.Context) (View, error) {
	token := m.state.Begin()

	view, err := m.check(ctx)
	if err != nil {
		m.state.Mutate(func(v View) View {
			v.Status = StatusError
			return v
		})
		m.state.Fail(token, err)
		return View{Status: StatusError}, err
	}

	m.state.Publish(token, view)
	return view, nil
}

func (m *Manager) check(ctx context.Context) (View, error) {
	userID, err := auth.Require(ctx, m.auth)
	if err != nil {
		return View{}, err
	}

	doc, err := m.store.Get(ctx, store.UserDoc(userID))
	if errors.Is(err, store.ErrNotFound) {
		return View{Status: StatusMissing}, nil
	}
	if err != nil {
		log.Println("[PROFILE] [ERROR] check profile failed:", err)
		return View{}, apperr.Remote("error checking profile", err)
	}

	var profile models.UserProfile
	if err := doc.Decode(&profile); err != nil {
		return View{}, apperr.Remote("error reading profile", err)
	}
	profile.ID = userID
	return View{Status: StatusExists, Profile: &profile}, nil
}

// SaveUserProfile creates or overwrites the profile from in.
func (m *Manager) SaveUserProfile(ctx context.Context, in Input) (models.UserProfile, error) {
	email := strings.TrimSpace(in.Email)
	if email == "" {
		email = auth.EmailFromContext(ctx)
	}
	return m.write(ctx, models.UserProfile{
		Name:        strings.TrimSpace(in.Name),
		Email:       email,
		Weight:      in.Weight,
		Height:      in.Height,
		Age:         in.Age,
		Gender:      strings.TrimSpace(in.Gender),
		FitnessGoal: strings.TrimSpace(in.FitnessGoal),
	})
}

// UpdateUserProfile writes profile wholesale. A cached reference weight
// already stored is kept when profile does not carry one.
func (m *Manager) UpdateUserProfile(ctx context.Context, profile models.UserProfile) (models.UserProfile, error) {
	profile.Name = strings.TrimSpace(profile.Name)
	profile.Email = strings.TrimSpace(profile.Email)
	return m.write(ctx, profile)
}

func (m *Manager) write(ctx context.Context, profile models.UserProfile) (models.UserProfile, error) {
	m.state.Start()
	saved, err := m.persist(ctx, profile)
	if err != nil {
		m.state.Mutate(func(v View) View {
			v.Status = StatusError
			return v
		})
		m.state.Finish(err)
		return models.UserProfile{}, err
	}

	m.state.Reset(View{Status: StatusSaved, Profile: &saved})
	log.Println("[PROFILE] [INFO] profile saved:", saved.ID)
	return saved, nil
}

func (m *Manager) persist(ctx context.Context, profile models.UserProfile) (models.UserProfile, error) {
	userID, err := auth.Require(ctx, m.auth)
	if err != nil {
		return models.UserProfile{}, err
	}
	if err := apperr.ValidateStruct(profile); err != nil {
		return models.UserProfile{}, err
	}
	profile.ID = userID

	// The function may run more than once; each attempt starts from the input.
	var saved models.UserProfile
	err = m.store.RunTransaction(ctx, func(tx store.Tx) error {
		next := profile
		if next.InitialReferenceWeight == nil {
			doc, err := tx.Get(store.UserDoc(userID))
			switch {
			case errors.Is(err, store.ErrNotFound):
			case err != nil:
				return err
			default:
				var stored models.UserProfile
				if err := doc.Decode(&stored); err != nil {
					return err
				}
				next.InitialReferenceWeight = stored.InitialReferenceWeight
			}
		}
		if err := tx.Set(store.UserDoc(userID), next); err != nil {
			return err
		}
		saved = next
		return nil
	})
	if err != nil {
		log.Println("[PROFILE] [ERROR] save profile failed:", err)
		return models.UserProfile{}, apperr.Remote("error saving profile", err)
	}
	return saved, nil
}

// ApplyWeight mirrors a weight change made elsewhere into the loaded
// profile.
func (m *Manager) ApplyWeight(weight float64, reference *float64) {
	m.state.Mutate(func(v View) View {
		if v.Profile == nil {
			return v
		}
		updated := *v.Profile
		updated.Weight = weight
		if reference != nil {
			r := *reference
			updated.InitialReferenceWeight = &r
		}
		v.Profile = &updated
		return v
	})
}
