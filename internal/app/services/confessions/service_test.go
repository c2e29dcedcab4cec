package confessions

import (
	"context"
	"strings"
	"testing"

	"github.com/booklovin/backend/internal/app/domain/confession"
	"github.com/booklovin/backend/internal/app/storage"
	"github.com/booklovin/backend/internal/app/storage/memory"
)

func TestCreateStripsAuthor(t *testing.T) {
	store := memory.New()
	svc := New(store, nil)
	ctx := context.Background()

	created, err := svc.Create(ctx, "me", confession.Confession{
		Content: "I judge books by their covers",
		Tags:    []string{"habits"},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.AuthorID != "" {
		t.Fatalf("service leaked the author: %q", created.AuthorID)
	}

	// Storage still knows who wrote it.
	stored, err := store.GetConfession(ctx, created.ID)
	if err != nil {
		t.Fatalf("get stored: %v", err)
	}
	if stored.AuthorID != "me" {
		t.Fatalf("stored author = %q, want %q", stored.AuthorID, "me")
	}
}

func TestListAndGetAreAnonymous(t *testing.T) {
	svc := New(memory.New(), nil)
	ctx := context.Background()

	first, err := svc.Create(ctx, "me", confession.Confession{Content: "one"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Create(ctx, "someone-else", confession.Confession{Content: "two"}); err != nil {
		t.Fatalf("create: %v", err)
	}

	all, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("wall size = %d, want 2", len(all))
	}
	for _, c := range all {
		if c.AuthorID != "" {
			t.Fatalf("listing leaked an author: %q", c.AuthorID)
		}
	}

	got, err := svc.Get(ctx, first.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.AuthorID != "" {
		t.Fatalf("get leaked the author: %q", got.AuthorID)
	}

	if _, err := svc.Get(ctx, "missing"); !storage.IsNotFound(err) {
		t.Fatalf("expected not-found, got %v", err)
	}
}

func TestCreateValidation(t *testing.T) {
	svc := New(memory.New(), nil)
	ctx := context.Background()

	if _, err := svc.Create(ctx, "", confession.Confession{Content: "x"}); storage.CodeOf(err) != storage.CodeInvalidParameter {
		t.Fatalf("expected invalid-parameter for missing author, got %v", err)
	}
	if _, err := svc.Create(ctx, "me", confession.Confession{Content: "  "}); storage.CodeOf(err) != storage.CodeInvalidParameter {
		t.Fatalf("expected invalid-parameter for blank content, got %v", err)
	}
	tags := strings.Split(strings.Repeat("t,", MaxTags+1), ",")
	if _, err := svc.Create(ctx, "me", confession.Confession{Content: "x", Tags: tags}); storage.CodeOf(err) != storage.CodeInvalidParameter {
		t.Fatalf("expected invalid-parameter for too many tags, got %v", err)
	}
}
