package progress

import (
	"context"
	"math"
	"testing"
	"time"

	"dietplanner/internal/apperr"
	"dietplanner/internal/auth"
	"dietplanner/internal/models"
	"dietplanner/internal/store"
	"dietplanner/internal/store/memstore"
)

func steppingClock() func() time.Time {
	now := time.Date(2024, 1, 1, 7, 0, 0, 0, time.UTC)
	return func() time.Time {
		now = now.Add(24 * time.Hour)
		return now
	}
}

func seedProfile(t *testing.T, st store.Store, weight float64, reference *float64) {
	t.Helper()
	profile := models.UserProfile{Name: "Ana", Email: "ana@example.com", Weight: weight, InitialReferenceWeight: reference}
	if err := st.Set(context.Background(), store.UserDoc("u1"), profile); err != nil {
		t.Fatalf("seeding profile failed: %v", err)
	}
}

func storedProfile(t *testing.T, st store.Store) models.UserProfile {
	t.Helper()
	doc, err := st.Get(context.Background(), store.UserDoc("u1"))
	if err != nil {
		t.Fatalf("reading profile failed: %v", err)
	}
	var profile models.UserProfile
	if err := doc.Decode(&profile); err != nil {
		t.Fatalf("decoding profile failed: %v", err)
	}
	return profile
}

func save(t *testing.T, tr *Tracker, weight float64) models.UserProgress {
	t.Helper()
	tr.UpdateWeight(weight)
	entry, err := tr.SaveProgressEntry(context.Background())
	if err != nil {
		t.Fatalf("SaveProgressEntry returned error: %v", err)
	}
	return entry
}

func TestSaveRejectsNonPositiveWeight(t *testing.T) {
	st := memstore.New()
	tr := New(st, auth.Static("u1"))

	for _, weight := range []float64{0, -3, math.NaN()} {
		tr.UpdateWeight(weight)
		if _, err := tr.SaveProgressEntry(context.Background()); !apperr.Is(err, apperr.ValidationFailed) {
			t.Fatalf("expected validation error for %v, got %v", weight, err)
		}
	}
	if st.Len() != 0 {
		t.Fatalf("expected nothing written, got %d documents", st.Len())
	}
	if snap := tr.Snapshot(); snap.Error == "" {
		t.Fatal("expected validation message to be published")
	}
}

func TestResetDraftClearsPendingValues(t *testing.T) {
	tr := New(memstore.New(), auth.Static("u1"))
	tr.UpdateWeight(70)
	tr.UpdateNotes("note")
	tr.UpdateMeasurement("waist", 999)

	tr.ResetDraft()
	if d := tr.Draft(); d.Weight != 0 || d.Notes != "" || len(d.Measurements) != 0 {
		t.Fatalf("expected empty draft, got %+v", d)
	}
}

func TestFirstEntryBecomesReference(t *testing.T) {
	st := memstore.New()
	seedProfile(t, st, 82, nil)

	var hooked []float64
	tr := New(st, auth.Static("u1"), WithClock(steppingClock()), OnWeightChanged(func(weight float64, reference *float64) {
		hooked = append(hooked, weight)
	}))

	first := save(t, tr, 80)
	profile := storedProfile(t, st)
	if profile.InitialReferenceWeight == nil || *profile.InitialReferenceWeight != 80 || profile.Weight != 80 {
		t.Fatalf("unexpected profile after first entry: %+v", profile)
	}

	tr.UpdateNotes("after holidays")
	tr.UpdateMeasurement("waist", 90)
	second := save(t, tr, 78.5)
	profile = storedProfile(t, st)
	if *profile.InitialReferenceWeight != 80 || profile.Weight != 78.5 {
		t.Fatalf("expected reference to stay 80 and weight 78.5, got %+v", profile)
	}
	if second.Notes != "after holidays" || second.Measurements["waist"] != 90 {
		t.Fatalf("unexpected second entry: %+v", second)
	}

	snap := tr.Snapshot()
	if len(snap.Data.Entries) != 2 || snap.Data.Entries[0].ID != second.ID || snap.Data.Entries[1].ID != first.ID {
		t.Fatalf("expected newest first in memory, got %+v", snap.Data.Entries)
	}
	if snap.Data.ReferenceWeight != 80 {
		t.Fatalf("expected reference 80, got %v", snap.Data.ReferenceWeight)
	}
	if len(hooked) != 2 || hooked[1] != 78.5 {
		t.Fatalf("unexpected hook calls: %v", hooked)
	}
	if d := tr.Draft(); d.Weight != 0 || d.Notes != "" || len(d.Measurements) != 0 {
		t.Fatalf("expected draft reset, got %+v", d)
	}
}

func TestLoadOrdersNewestFirst(t *testing.T) {
	st := memstore.New()
	tr := New(st, auth.Static("u1"), WithClock(steppingClock()))
	for _, w := range []float64{90, 89, 88} {
		save(t, tr, w)
	}

	history, err := New(st, auth.Static("u1")).LoadProgressEntries(context.Background())
	if err != nil {
		t.Fatalf("LoadProgressEntries returned error: %v", err)
	}
	if len(history.Entries) != 3 || history.Entries[0].Weight != 88 || history.Entries[2].Weight != 90 {
		t.Fatalf("unexpected order: %+v", history.Entries)
	}
	if history.ReferenceWeight != 90 {
		t.Fatalf("expected oldest weight as reference, got %v", history.ReferenceWeight)
	}
}

func TestLoadReferenceFallbacks(t *testing.T) {
	ctx := context.Background()

	st := memstore.New()
	history, err := New(st, auth.Static("u1")).LoadProgressEntries(ctx)
	if err != nil || history.ReferenceWeight != 0 || len(history.Entries) != 0 {
		t.Fatalf("expected empty history with reference 0, got %+v %v", history, err)
	}

	seedProfile(t, st, 75, nil)
	history, _ = New(st, auth.Static("u1")).LoadProgressEntries(ctx)
	if history.ReferenceWeight != 75 {
		t.Fatalf("expected profile weight as reference, got %v", history.ReferenceWeight)
	}

	_ = st.Set(ctx, store.ProgressEntry("u1", "old"), models.UserProgress{UserID: "u1", Weight: 77, Date: time.Date(2023, 5, 1, 0, 0, 0, 0, time.UTC)})
	_ = st.Set(ctx, store.ProgressEntry("u1", "new"), models.UserProgress{UserID: "u1", Weight: 74, Date: time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)})
	history, _ = New(st, auth.Static("u1")).LoadProgressEntries(ctx)
	if history.ReferenceWeight != 77 {
		t.Fatalf("expected oldest entry as reference, got %v", history.ReferenceWeight)
	}
	if ref := storedProfile(t, st).InitialReferenceWeight; ref == nil || *ref != 77 {
		t.Fatalf("expected reference cached on profile, got %v", ref)
	}

	cached := 70.0
	seedProfile(t, st, 75, &cached)
	history, _ = New(st, auth.Static("u1")).LoadProgressEntries(ctx)
	if history.ReferenceWeight != 70 {
		t.Fatalf("expected cached reference, got %v", history.ReferenceWeight)
	}
}

func TestDeleteUpdatesProfileWeightOnly(t *testing.T) {
	st := memstore.New()
	seedProfile(t, st, 90, nil)
	tr := New(st, auth.Static("u1"), WithClock(steppingClock()))

	save(t, tr, 90)
	save(t, tr, 88)
	latest := save(t, tr, 86)

	if err := tr.DeleteProgressEntry(context.Background(), latest.ID); err != nil {
		t.Fatalf("DeleteProgressEntry returned error: %v", err)
	}

	profile := storedProfile(t, st)
	if profile.Weight != 88 || *profile.InitialReferenceWeight != 90 {
		t.Fatalf("unexpected profile after delete: %+v", profile)
	}
	snap := tr.Snapshot()
	if len(snap.Data.Entries) != 2 || snap.Data.Entries[0].Weight != 88 || snap.Data.ReferenceWeight != 90 {
		t.Fatalf("unexpected state after delete: %+v", snap.Data)
	}

	if err := tr.DeleteProgressEntry(context.Background(), "missing"); !apperr.Is(err, apperr.NotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestSignedOutProgress(t *testing.T) {
	tr := New(memstore.New(), auth.Static(""))
	if _, err := tr.LoadProgressEntries(context.Background()); !apperr.Is(err, apperr.Unauthenticated) {
		t.Fatalf("expected unauthenticated error, got %v", err)
	}
	tr.UpdateWeight(70)
	if _, err := tr.SaveProgressEntry(context.Background()); !apperr.Is(err, apperr.Unauthenticated) {
		t.Fatalf("expected unauthenticated error, got %v", err)
	}
}
