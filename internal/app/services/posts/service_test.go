package posts

import (
	"context"
	"testing"
	"time"

	"github.com/booklovin/backend/internal/app/domain/post"
	"github.com/booklovin/backend/internal/app/storage"
	"github.com/booklovin/backend/internal/app/storage/memory"
)

func TestListWindowGuard(t *testing.T) {
	svc := New(memory.New(), nil)
	ctx := context.Background()

	if _, err := svc.List(ctx, 10, 5); storage.CodeOf(err) != storage.CodeInvalidParameter {
		t.Fatalf("expected invalid-parameter for inverted range, got %v", err)
	}
	if _, err := svc.List(ctx, -1, 5); storage.CodeOf(err) != storage.CodeInvalidParameter {
		t.Fatalf("expected invalid-parameter for negative start, got %v", err)
	}
	if _, err := svc.List(ctx, 0, MaxListWindow+1); storage.CodeOf(err) != storage.CodeInvalidParameter {
		t.Fatalf("expected invalid-parameter for oversized window, got %v", err)
	}
	if _, err := svc.List(ctx, 0, MaxListWindow); err != nil {
		t.Fatalf("full-width window must be allowed: %v", err)
	}
}

func TestAuthorOnlyEditAndDelete(t *testing.T) {
	svc := New(memory.New(), nil)
	ctx := context.Background()

	p, err := svc.Create(ctx, post.Post{AuthorID: "author", Content: "hello"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	title := "edited"
	if _, err := svc.Update(ctx, p.ID, "stranger", storage.PostPatch{Title: &title}); storage.CodeOf(err) != storage.CodePermissionDenied {
		t.Fatalf("expected permission-denied for stranger edit, got %v", err)
	}
	if _, err := svc.Update(ctx, p.ID, "author", storage.PostPatch{Title: &title}); err != nil {
		t.Fatalf("author edit: %v", err)
	}

	if err := svc.Delete(ctx, p.ID, "stranger"); storage.CodeOf(err) != storage.CodePermissionDenied {
		t.Fatalf("expected permission-denied for stranger delete, got %v", err)
	}
	if err := svc.Delete(ctx, p.ID, "author"); err != nil {
		t.Fatalf("author delete: %v", err)
	}
}

func TestLikeRequiresExistingPost(t *testing.T) {
	svc := New(memory.New(), nil)
	ctx := context.Background()

	if err := svc.Like(ctx, "ghost", "fan"); !storage.IsNotFound(err) {
		t.Fatalf("expected not-found liking a missing post, got %v", err)
	}

	p, _ := svc.Create(ctx, post.Post{AuthorID: "author", Content: "hello"})
	for i := 0; i < 3; i++ {
		if err := svc.Like(ctx, p.ID, "fan"); err != nil {
			t.Fatalf("like: %v", err)
		}
	}
	n, err := svc.LikeCount(ctx, p.ID)
	if err != nil {
		t.Fatalf("like count: %v", err)
	}
	if n != 1 {
		t.Fatalf("repeated likes inflated the count: %d", n)
	}
}

func TestPopularSkipsDeletedPosts(t *testing.T) {
	store := memory.New()
	svc := New(store, nil)
	ctx := context.Background()

	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	keep, _ := svc.Create(ctx, post.Post{AuthorID: "a", Content: "keep"})
	drop, _ := svc.Create(ctx, post.Post{AuthorID: "a", Content: "drop"})

	if err := svc.Like(ctx, keep.ID, "u1"); err != nil {
		t.Fatalf("like: %v", err)
	}
	if err := svc.Like(ctx, drop.ID, "u1"); err != nil {
		t.Fatalf("like: %v", err)
	}
	if err := svc.Like(ctx, drop.ID, "u2"); err != nil {
		t.Fatalf("like: %v", err)
	}

	// The most-liked post disappears; the ranking must not surface a ghost.
	if err := store.DeletePost(ctx, drop.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	popular, err := svc.Popular(ctx, 7, 10)
	if err != nil {
		t.Fatalf("popular: %v", err)
	}
	if len(popular) != 1 || popular[0].ID != keep.ID {
		t.Fatalf("popular = %+v, want only the surviving post", popular)
	}
	if popular[0].Likes != 1 {
		t.Fatalf("like count = %d, want 1", popular[0].Likes)
	}
}

func TestCommentModeration(t *testing.T) {
	svc := New(memory.New(), nil)
	ctx := context.Background()

	p, _ := svc.Create(ctx, post.Post{AuthorID: "author", Content: "hello"})
	c, err := svc.Comment(ctx, p.ID, "reader", "nice one")
	if err != nil {
		t.Fatalf("comment: %v", err)
	}

	// Even the comment's own author cannot delete it; moderation belongs to
	// the post author.
	if err := svc.DeleteComment(ctx, p.ID, c.ID, "reader"); storage.CodeOf(err) != storage.CodePermissionDenied {
		t.Fatalf("expected permission-denied, got %v", err)
	}
	if err := svc.DeleteComment(ctx, p.ID, c.ID, "author"); err != nil {
		t.Fatalf("post author delete: %v", err)
	}

	comments, err := svc.Comments(ctx, p.ID)
	if err != nil {
		t.Fatalf("comments: %v", err)
	}
	if len(comments) != 0 {
		t.Fatalf("comment survived deletion: %+v", comments)
	}
}

func TestRecentUsesFixedLimit(t *testing.T) {
	svc := New(memory.New(), nil)
	ctx := context.Background()

	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < RecentPostsLimit+5; i++ {
		if _, err := svc.Create(ctx, post.Post{
			AuthorID:  "author",
			Content:   "post",
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	recent, err := svc.Recent(ctx, "author")
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(recent) != RecentPostsLimit {
		t.Fatalf("recent returned %d posts, want %d", len(recent), RecentPostsLimit)
	}
}
