// Package session keeps one set of managers per signed-in user so their
// observable state survives between requests.
package session

import (
	"sync"

	"dietplanner/internal/auth"
	"dietplanner/internal/catalog"
	"dietplanner/internal/profile"
	"dietplanner/internal/progress"
	"dietplanner/internal/schedule"
	"dietplanner/internal/shopping"
	"dietplanner/internal/store"
)

type Session struct {
	UserID   string
	Profile  *profile.Manager
	Catalog  *catalog.Catalog
	Editor   *catalog.Editor
	Schedule *schedule.Manager
	Shopping *shopping.Aggregator
	Progress *progress.Tracker
}

type Options struct {
	// FanOutLimit caps concurrent store reads per load; 0 means no cap.
	FanOutLimit int
}

type Registry struct {
	store store.Store
	opts  Options

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewRegistry(st store.Store, opts Options) *Registry {
	return &Registry{
		store:    st,
		opts:     opts,
		sessions: make(map[string]*Session),
	}
}

// For returns the session of userID, creating it on first use. Managers
// still read the user from the request context on every call.
func (r *Registry) For(userID string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.sessions[userID]; ok {
		return s
	}
	s := r.newSession(userID)
	r.sessions[userID] = s
	return s
}

// Drop forgets the session of userID.
func (r *Registry) Drop(userID string) {
	r.mu.Lock()
	delete(r.sessions, userID)
	r.mu.Unlock()
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

func (r *Registry) newSession(userID string) *Session {
	provider := auth.ContextProvider{}

	profiles := profile.New(r.store, provider)
	meals := catalog.New(r.store, provider, catalog.WithFanOutLimit(r.opts.FanOutLimit))

	return &Session{
		UserID:   userID,
		Profile:  profiles,
		Catalog:  meals,
		Editor:   catalog.NewEditor(meals),
		Schedule: schedule.New(r.store, provider, schedule.WithFanOutLimit(r.opts.FanOutLimit)),
		Shopping: shopping.New(r.store, provider, shopping.WithFanOutLimit(r.opts.FanOutLimit)),
		Progress: progress.New(r.store, provider, progress.OnWeightChanged(profiles.ApplyWeight)),
	}
}
