package shelves

import (
	"context"
	"testing"

	"github.com/booklovin/backend/internal/app/domain/shelf"
	"github.com/booklovin/backend/internal/app/storage"
	"github.com/booklovin/backend/internal/app/storage/memory"
)

func TestUpsertNormalizesKey(t *testing.T) {
	svc := New(memory.New(), nil)
	ctx := context.Background()

	first, err := svc.Upsert(ctx, shelf.Item{AuthorID: "me", BookKey: "works/OL123W", Title: "Dune"})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if first.BookKey != "/works/OL123W" {
		t.Fatalf("key not normalized: %q", first.BookKey)
	}

	// The slashed and unslashed spellings address the same item.
	second, err := svc.Upsert(ctx, shelf.Item{AuthorID: "me", BookKey: "/works/OL123W", Status: shelf.StatusReading})
	if err != nil {
		t.Fatalf("upsert again: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("normalization split the item: %s vs %s", second.ID, first.ID)
	}

	items, _ := svc.List(ctx, "me")
	if len(items) != 1 {
		t.Fatalf("expected one item, got %d", len(items))
	}
}

func TestProgressBounds(t *testing.T) {
	svc := New(memory.New(), nil)
	ctx := context.Background()

	if _, err := svc.Upsert(ctx, shelf.Item{AuthorID: "me", BookKey: "/works/OL1W"}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if _, err := svc.SetProgress(ctx, "me", "/works/OL1W", 101); storage.CodeOf(err) != storage.CodeInvalidParameter {
		t.Fatalf("expected invalid-parameter for 101%%, got %v", err)
	}
	if _, err := svc.SetProgress(ctx, "me", "/works/OL1W", -1); storage.CodeOf(err) != storage.CodeInvalidParameter {
		t.Fatalf("expected invalid-parameter for -1%%, got %v", err)
	}
	it, err := svc.SetProgress(ctx, "me", "/works/OL1W", 100)
	if err != nil {
		t.Fatalf("set progress: %v", err)
	}
	if it.ProgressPercent != 100 {
		t.Fatalf("progress = %d", it.ProgressPercent)
	}
}

func TestReorder(t *testing.T) {
	svc := New(memory.New(), nil)
	ctx := context.Background()

	for i, key := range []string{"/works/OL1W", "/works/OL2W", "/works/OL3W"} {
		if _, err := svc.Upsert(ctx, shelf.Item{AuthorID: "me", BookKey: key, Title: key, SortOrder: i}); err != nil {
			t.Fatalf("upsert: %v", err)
		}
	}

	items, err := svc.Reorder(ctx, "me", []string{"works/OL3W", "/works/OL1W", "/works/OL2W"})
	if err != nil {
		t.Fatalf("reorder: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("expected full shelf back, got %d items", len(items))
	}
	if items[0].BookKey != "/works/OL3W" || items[1].BookKey != "/works/OL1W" {
		t.Fatalf("order not applied: %q, %q", items[0].BookKey, items[1].BookKey)
	}

	// Unknown keys are skipped; known ones still move.
	items, err = svc.Reorder(ctx, "me", []string{"/works/OL2W", "/works/missing", "/works/OL3W"})
	if err != nil {
		t.Fatalf("partial reorder: %v", err)
	}
	if items[0].BookKey != "/works/OL2W" {
		t.Fatalf("partial reorder lost the matched key: %q", items[0].BookKey)
	}

	// Nothing matching at all means there is no such shelf.
	if _, err := svc.Reorder(ctx, "nobody", []string{"/works/OL1W"}); !storage.IsNotFound(err) {
		t.Fatalf("expected not-found for foreign shelf, got %v", err)
	}
}

func TestGroupedByStatus(t *testing.T) {
	svc := New(memory.New(), nil)
	ctx := context.Background()

	seed := []shelf.Item{
		{AuthorID: "me", BookKey: "/works/OL1W", Status: shelf.StatusRead},
		{AuthorID: "me", BookKey: "/works/OL2W", Status: shelf.StatusReading},
		{AuthorID: "me", BookKey: "/works/OL3W"},
	}
	for _, it := range seed {
		if _, err := svc.Upsert(ctx, it); err != nil {
			t.Fatalf("upsert: %v", err)
		}
	}

	grouped, err := svc.GroupedByStatus(ctx, "me")
	if err != nil {
		t.Fatalf("grouped: %v", err)
	}
	if len(grouped[shelf.StatusRead]) != 1 || len(grouped[shelf.StatusReading]) != 1 {
		t.Fatalf("unexpected grouping: %+v", grouped)
	}
	if len(grouped[shelf.StatusWantToRead]) != 1 {
		t.Fatalf("missing default-status lane: %+v", grouped)
	}
}
