package memstore

import (
	"context"
	"errors"
	"testing"

	"dietplanner/internal/store"
)

type item struct {
	Name     string `bson:"name"`
	Position int    `bson:"position"`
}

func TestSetGetRoundTrip(t *testing.T) {
	s := New()
	ctx := context.Background()

	if err := s.Set(ctx, "things/a", item{Name: "apple", Position: 2}); err != nil {
		t.Fatalf("Set returned error: %v", err)
	}

	doc, err := s.Get(ctx, "things/a")
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	var got item
	if err := doc.Decode(&got); err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}
	if doc.ID != "a" || got.Name != "apple" || got.Position != 2 {
		t.Fatalf("unexpected document: %+v %+v", doc, got)
	}
}

func TestGetAndUpdateMissing(t *testing.T) {
	s := New()
	ctx := context.Background()

	if _, err := s.Get(ctx, "things/missing"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := s.Update(ctx, "things/missing", map[string]interface{}{"name": "x"}); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateMergesFields(t *testing.T) {
	s := New()
	ctx := context.Background()
	_ = s.Set(ctx, "things/a", item{Name: "apple", Position: 1})

	if err := s.Update(ctx, "things/a", map[string]interface{}{"position": 5}); err != nil {
		t.Fatalf("Update returned error: %v", err)
	}

	doc, _ := s.Get(ctx, "things/a")
	var got item
	_ = doc.Decode(&got)
	if got.Name != "apple" || got.Position != 5 {
		t.Fatalf("unexpected document after update: %+v", got)
	}
}

func TestQueryScopesToCollectionAndOrders(t *testing.T) {
	s := New()
	ctx := context.Background()
	_ = s.Set(ctx, "things/a", item{Name: "a", Position: 3})
	_ = s.Set(ctx, "things/b", item{Name: "b", Position: 1})
	_ = s.Set(ctx, "things/c", item{Name: "c", Position: 2})
	_ = s.Set(ctx, "things/a/parts/p", item{Name: "nested", Position: 0})

	docs, err := s.Query(ctx, "things", store.Query{OrderBy: "position", Direction: store.Ascending})
	if err != nil {
		t.Fatalf("Query returned error: %v", err)
	}
	if len(docs) != 3 {
		t.Fatalf("expected 3 documents, got %d", len(docs))
	}
	if docs[0].ID != "b" || docs[1].ID != "c" || docs[2].ID != "a" {
		t.Fatalf("unexpected ascending order: %s %s %s", docs[0].ID, docs[1].ID, docs[2].ID)
	}

	docs, _ = s.Query(ctx, "things", store.Query{OrderBy: "position", Direction: store.Descending})
	if docs[0].ID != "a" || docs[2].ID != "b" {
		t.Fatalf("unexpected descending order: %s %s %s", docs[0].ID, docs[1].ID, docs[2].ID)
	}
}

func TestBatchIsAllOrNothing(t *testing.T) {
	s := New()
	ctx := context.Background()
	_ = s.Set(ctx, "things/keep", item{Name: "keep"})

	b := s.Batch()
	b.Set("things/new", item{Name: "new"})
	b.Delete("things/keep")
	b.Update("things/missing", map[string]interface{}{"name": "x"})

	if err := b.Commit(ctx); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound from commit, got %v", err)
	}
	if _, err := s.Get(ctx, "things/new"); !errors.Is(err, store.ErrNotFound) {
		t.Fatal("expected staged set to be discarded")
	}
	if _, err := s.Get(ctx, "things/keep"); err != nil {
		t.Fatalf("expected staged delete to be discarded, got %v", err)
	}
}

func TestBatchAppliesInOrder(t *testing.T) {
	s := New()
	ctx := context.Background()
	_ = s.Set(ctx, "things/a", item{Name: "old"})

	b := s.Batch()
	b.Delete("things/a")
	b.Set("things/a", item{Name: "new"})
	if err := b.Commit(ctx); err != nil {
		t.Fatalf("Commit returned error: %v", err)
	}

	doc, err := s.Get(ctx, "things/a")
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	var got item
	_ = doc.Decode(&got)
	if got.Name != "new" {
		t.Fatalf("expected later set to win, got %q", got.Name)
	}
}

func TestTransactionRollsBackOnError(t *testing.T) {
	s := New()
	ctx := context.Background()
	boom := errors.New("boom")

	err := s.RunTransaction(ctx, func(tx store.Tx) error {
		if err := tx.Set("things/a", item{Name: "a"}); err != nil {
			return err
		}
		if _, err := tx.Get("things/a"); err != nil {
			t.Fatalf("expected write to be visible inside transaction, got %v", err)
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if s.Len() != 0 {
		t.Fatalf("expected no documents after rollback, got %d", s.Len())
	}
}

func TestInjectFault(t *testing.T) {
	s := New()
	ctx := context.Background()
	boom := errors.New("unavailable")
	s.InjectFault(func(op, path string) error {
		if op == "query" && path == "things" {
			return boom
		}
		return nil
	})

	if _, err := s.Query(ctx, "things", store.Query{}); !errors.Is(err, boom) {
		t.Fatalf("expected injected error, got %v", err)
	}
	if err := s.Set(ctx, "things/a", item{}); err != nil {
		t.Fatalf("expected other operations to succeed, got %v", err)
	}

	s.InjectFault(nil)
	if _, err := s.Query(ctx, "things", store.Query{}); err != nil {
		t.Fatalf("expected fault to be removed, got %v", err)
	}
}
