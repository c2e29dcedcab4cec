package letters

import (
	"context"
	"testing"
	"time"

	"github.com/booklovin/backend/internal/app/domain/letter"
	"github.com/booklovin/backend/internal/app/storage"
	"github.com/booklovin/backend/internal/app/storage/memory"
)

func TestCreateComputesWordCount(t *testing.T) {
	svc := New(memory.New(), nil)
	ctx := context.Background()

	l, err := svc.Create(ctx, letter.Letter{
		AuthorID:   "me",
		Content:    "dear future me, keep reading",
		TargetDate: time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC),
		WordCount:  9000, // client-supplied value is ignored
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if l.WordCount != 5 {
		t.Fatalf("word count = %d, want 5", l.WordCount)
	}
	if l.Status != letter.StatusScheduled {
		t.Fatalf("status = %q", l.Status)
	}
}

func TestCreateValidation(t *testing.T) {
	svc := New(memory.New(), nil)
	ctx := context.Background()
	target := time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)

	cases := []letter.Letter{
		{Content: "x", TargetDate: target},                                   // no author
		{AuthorID: "me", Content: "  ", TargetDate: target},                  // blank content
		{AuthorID: "me", Content: "x"},                                       // no target date
		{AuthorID: "me", Content: "x", TargetDate: target, Type: "sideways"}, // bad type
	}
	for i, l := range cases {
		if _, err := svc.Create(ctx, l); storage.CodeOf(err) != storage.CodeInvalidParameter {
			t.Fatalf("case %d: expected invalid-parameter, got %v", i, err)
		}
	}
}

func TestOpenSetsTimestamp(t *testing.T) {
	svc := New(memory.New(), nil)
	ctx := context.Background()

	opened := time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return opened }

	l, err := svc.Create(ctx, letter.Letter{
		AuthorID: "me", Content: "hello", TargetDate: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := svc.Open(ctx, l.ID, "me")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if got.Status != letter.StatusOpened || got.OpenedAt == nil || !got.OpenedAt.Equal(opened) {
		t.Fatalf("unexpected opened letter: %+v", got)
	}

	if _, err := svc.Open(ctx, l.ID, "stranger"); !storage.IsNotFound(err) {
		t.Fatalf("expected not-found for stranger, got %v", err)
	}
}

func TestSweeperCountsDue(t *testing.T) {
	store := memory.New()
	svc := New(store, nil)
	ctx := context.Background()

	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	if _, err := svc.Create(ctx, letter.Letter{
		AuthorID: "me", Content: "due", TargetDate: now.AddDate(0, 0, -1),
	}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Create(ctx, letter.Letter{
		AuthorID: "me", Content: "not yet", TargetDate: now.AddDate(0, 0, 30),
	}); err != nil {
		t.Fatalf("create: %v", err)
	}

	n, err := svc.CountDue(ctx)
	if err != nil {
		t.Fatalf("count due: %v", err)
	}
	if n != 1 {
		t.Fatalf("due = %d, want 1", n)
	}

	sweeper := NewSweeper(svc, "", nil)
	if sweeper.Name() != "letters-sweeper" {
		t.Fatalf("unexpected name %q", sweeper.Name())
	}
	// One manual sweep; the schedule itself is cron's business.
	sweeper.sweep(ctx)
}
