package app

import (
	"context"
	"testing"
	"time"

	"github.com/booklovin/backend/internal/app/domain/journal"
	"github.com/booklovin/backend/internal/app/domain/post"
	"github.com/booklovin/backend/internal/app/domain/user"
)

func TestApplicationLifecycle(t *testing.T) {
	application, err := New(Stores{}, Options{}, nil)
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := application.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer func() {
		if err := application.Stop(ctx); err != nil {
			t.Fatalf("stop: %v", err)
		}
	}()

	// The nil-store default shares one memory store, so services see each
	// other's writes.
	u, err := application.Users.Register(ctx, user.User{Email: "ana@example.com", Name: "Ana"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	p, err := application.Posts.Create(ctx, post.Post{AuthorID: u.ID, Content: "hello"})
	if err != nil {
		t.Fatalf("create post: %v", err)
	}
	if err := application.Posts.Like(ctx, p.ID, u.ID); err != nil {
		t.Fatalf("like: %v", err)
	}

	if _, err := application.Journal.Create(ctx, journal.Entry{AuthorID: u.ID, Content: "first"}); err != nil {
		t.Fatalf("journal create: %v", err)
	}
	refreshed, err := application.Users.Get(ctx, u.ID)
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if refreshed.CurrentStreak != 1 {
		t.Fatalf("journal write did not reach the shared user store: streak = %d", refreshed.CurrentStreak)
	}
}
