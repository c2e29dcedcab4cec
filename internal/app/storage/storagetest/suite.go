// Package storagetest runs one behavioural suite against every storage
// adapter. Backends are interchangeable only if they agree on error codes,
// ordering and sparse-update semantics, so the suite asserts those, not
// engine details. Times are constructed at second precision because some
// engines round-trip timestamps at millisecond resolution.
package storagetest

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/booklovin/backend/internal/app/domain/confession"
	"github.com/booklovin/backend/internal/app/domain/journal"
	"github.com/booklovin/backend/internal/app/domain/letter"
	"github.com/booklovin/backend/internal/app/domain/post"
	"github.com/booklovin/backend/internal/app/domain/shelf"
	"github.com/booklovin/backend/internal/app/domain/user"
	"github.com/booklovin/backend/internal/app/storage"
)

// Factory builds a fresh, empty store for one subtest.
type Factory func(t *testing.T) storage.Store

// Run exercises the full storage contract against the given backend.
func Run(t *testing.T, factory Factory) {
	t.Run("UserUniqueEmail", func(t *testing.T) { testUserUniqueEmail(t, factory(t)) })
	t.Run("UserStreakSparseUpdate", func(t *testing.T) { testUserStreakSparseUpdate(t, factory(t)) })
	t.Run("PostWindowOrdering", func(t *testing.T) { testPostWindowOrdering(t, factory(t)) })
	t.Run("PostSparsePatch", func(t *testing.T) { testPostSparsePatch(t, factory(t)) })
	t.Run("PostDeleteCascade", func(t *testing.T) { testPostDeleteCascade(t, factory(t)) })
	t.Run("CommentLifecycle", func(t *testing.T) { testCommentLifecycle(t, factory(t)) })
	t.Run("LikeIdempotency", func(t *testing.T) { testLikeIdempotency(t, factory(t)) })
	t.Run("LikeConcurrentDedup", func(t *testing.T) { testLikeConcurrentDedup(t, factory(t)) })
	t.Run("TopLikedWindow", func(t *testing.T) { testTopLikedWindow(t, factory(t)) })
	t.Run("JournalOwnership", func(t *testing.T) { testJournalOwnership(t, factory(t)) })
	t.Run("JournalFilters", func(t *testing.T) { testJournalFilters(t, factory(t)) })
	t.Run("ShelfUpsertIdentity", func(t *testing.T) { testShelfUpsertIdentity(t, factory(t)) })
	t.Run("ShelfSortOrder", func(t *testing.T) { testShelfSortOrder(t, factory(t)) })
	t.Run("ConfessionLifecycle", func(t *testing.T) { testConfessionLifecycle(t, factory(t)) })
	t.Run("LetterLifecycle", func(t *testing.T) { testLetterLifecycle(t, factory(t)) })
}

func testUserUniqueEmail(t *testing.T, s storage.Store) {
	ctx := context.Background()

	created, err := s.CreateUser(ctx, user.User{Email: "ana@example.com", Name: "Ana", Active: true})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	require.False(t, created.CreatedAt.IsZero())

	_, err = s.CreateUser(ctx, user.User{Email: "ana@example.com", Name: "Impostor"})
	require.True(t, storage.IsAlreadyExists(err), "duplicate email must fail with already-exists, got %v", err)
	require.Equal(t, storage.CodeAlreadyExists, storage.CodeOf(err))

	byEmail, err := s.GetUserByEmail(ctx, "ana@example.com")
	require.NoError(t, err)
	require.Equal(t, "Ana", byEmail.Name)

	_, err = s.GetUser(ctx, "no-such-user")
	require.True(t, storage.IsNotFound(err))
	_, err = s.GetUserByEmail(ctx, "nobody@example.com")
	require.True(t, storage.IsNotFound(err))
}

func testUserStreakSparseUpdate(t *testing.T, s storage.Store) {
	ctx := context.Background()

	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	u, err := s.CreateUser(ctx, user.User{
		Email: "bo@example.com", CurrentStreak: 3, LongestStreak: 9, StreakStart: &start,
	})
	require.NoError(t, err)

	cur := 4
	require.NoError(t, s.UpdateUserStreak(ctx, u.ID, storage.StreakUpdate{CurrentStreak: &cur}))

	got, err := s.GetUser(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, 4, got.CurrentStreak)
	require.Equal(t, 9, got.LongestStreak, "untouched field must survive a sparse update")
	require.NotNil(t, got.StreakStart)
	require.True(t, got.StreakStart.Equal(start))

	require.NoError(t, s.UpdateUserStreak(ctx, u.ID, storage.StreakUpdate{ClearStreakStart: true}))
	got, err = s.GetUser(ctx, u.ID)
	require.NoError(t, err)
	require.Nil(t, got.StreakStart)
	require.Equal(t, 4, got.CurrentStreak)

	err = s.UpdateUserStreak(ctx, "no-such-user", storage.StreakUpdate{CurrentStreak: &cur})
	require.True(t, storage.IsNotFound(err))
}

func testPostWindowOrdering(t *testing.T, s storage.Store) {
	ctx := context.Background()

	base := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	titles := []string{"a", "b", "c", "d", "e"}
	for i, title := range titles {
		_, err := s.CreatePost(ctx, post.Post{
			AuthorID:  "author",
			Title:     title,
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		})
		require.NoError(t, err)
	}

	page, err := s.ListPosts(ctx, 0, 3)
	require.NoError(t, err)
	require.Len(t, page, 3)
	require.Equal(t, "e", page[0].Title)
	require.Equal(t, "d", page[1].Title)
	require.Equal(t, "c", page[2].Title)

	tail, err := s.ListPosts(ctx, 4, 40)
	require.NoError(t, err)
	require.Len(t, tail, 1)
	require.Equal(t, "a", tail[0].Title)

	empty, err := s.ListPosts(ctx, 50, 60)
	require.NoError(t, err)
	require.Empty(t, empty)

	inverted, err := s.ListPosts(ctx, 3, 2)
	require.NoError(t, err, "an inverted window is empty, never an error")
	require.Empty(t, inverted)

	recent, err := s.RecentPosts(ctx, "author", 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	require.Equal(t, "e", recent[0].Title)
	require.Equal(t, "d", recent[1].Title)
}

func testPostSparsePatch(t *testing.T, s storage.Store) {
	ctx := context.Background()

	created, err := s.CreatePost(ctx, post.Post{
		AuthorID: "author",
		Title:    "before",
		Content:  "body",
		Links:    []post.Link{{Label: "shop", URL: "https://example.com"}},
		ImageURL: "https://example.com/cover.png",
	})
	require.NoError(t, err)

	title := "after"
	got, err := s.UpdatePost(ctx, created.ID, storage.PostPatch{Title: &title})
	require.NoError(t, err)
	require.Equal(t, "after", got.Title)
	require.Equal(t, "body", got.Content)
	require.Len(t, got.Links, 1)
	require.Equal(t, "https://example.com/cover.png", got.ImageURL)

	_, err = s.UpdatePost(ctx, "no-such-post", storage.PostPatch{Title: &title})
	require.True(t, storage.IsNotFound(err))
}

func testPostDeleteCascade(t *testing.T, s storage.Store) {
	ctx := context.Background()

	p, err := s.CreatePost(ctx, post.Post{AuthorID: "author", Title: "t"})
	require.NoError(t, err)
	_, err = s.AddComment(ctx, post.Comment{PostID: p.ID, AuthorID: "reader", Content: "hi"})
	require.NoError(t, err)
	require.NoError(t, s.AddLike(ctx, p.ID, "reader", time.Date(2026, 5, 2, 0, 0, 0, 0, time.UTC)))

	require.NoError(t, s.DeletePost(ctx, p.ID))
	require.True(t, storage.IsNotFound(s.DeletePost(ctx, p.ID)))

	n, err := s.LikeCount(ctx, p.ID)
	require.NoError(t, err)
	require.Zero(t, n)
	comments, err := s.ListComments(ctx, p.ID)
	require.NoError(t, err)
	require.Empty(t, comments)
}

func testCommentLifecycle(t *testing.T, s storage.Store) {
	ctx := context.Background()

	p, err := s.CreatePost(ctx, post.Post{AuthorID: "author"})
	require.NoError(t, err)

	base := time.Date(2026, 5, 3, 9, 0, 0, 0, time.UTC)
	first, err := s.AddComment(ctx, post.Comment{PostID: p.ID, AuthorID: "u1", Content: "first", CreatedAt: base})
	require.NoError(t, err)
	second, err := s.AddComment(ctx, post.Comment{PostID: p.ID, AuthorID: "u2", Content: "second", CreatedAt: base.Add(time.Minute)})
	require.NoError(t, err)

	list, err := s.ListComments(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, first.ID, list[0].ID, "comments are listed oldest first")
	require.Equal(t, second.ID, list[1].ID)

	require.NoError(t, s.DeleteComment(ctx, p.ID, first.ID))
	require.True(t, storage.IsNotFound(s.DeleteComment(ctx, p.ID, first.ID)))

	list, err = s.ListComments(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
}

func testLikeIdempotency(t *testing.T, s storage.Store) {
	ctx := context.Background()

	p, err := s.CreatePost(ctx, post.Post{AuthorID: "author"})
	require.NoError(t, err)

	at := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		require.NoError(t, s.AddLike(ctx, p.ID, "fan", at.Add(time.Duration(i)*time.Minute)))
	}
	require.NoError(t, s.AddLike(ctx, p.ID, "other-fan", at))

	n, err := s.LikeCount(ctx, p.ID)
	require.NoError(t, err)
	require.Equal(t, 2, n)

	got, err := s.GetPost(ctx, p.ID)
	require.NoError(t, err)
	require.Equal(t, 2, got.Likes, "read must derive the like count from the like set")
}

func testLikeConcurrentDedup(t *testing.T, s storage.Store) {
	ctx := context.Background()

	p, err := s.CreatePost(ctx, post.Post{AuthorID: "author"})
	require.NoError(t, err)

	at := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)
	errs := make([]error, 8)
	var wg sync.WaitGroup
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = s.AddLike(ctx, p.ID, "fan", at)
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err, "racing likes from one user all succeed")
	}
	n, err := s.LikeCount(ctx, p.ID)
	require.NoError(t, err)
	require.Equal(t, 1, n)
}

func testTopLikedWindow(t *testing.T, s storage.Store) {
	ctx := context.Background()

	a, err := s.CreatePost(ctx, post.Post{ID: "post-a", AuthorID: "x"})
	require.NoError(t, err)
	b, err := s.CreatePost(ctx, post.Post{ID: "post-b", AuthorID: "x"})
	require.NoError(t, err)
	c, err := s.CreatePost(ctx, post.Post{ID: "post-c", AuthorID: "x"})
	require.NoError(t, err)

	now := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	old := now.Add(-48 * time.Hour)

	require.NoError(t, s.AddLike(ctx, a.ID, "u1", now))
	require.NoError(t, s.AddLike(ctx, a.ID, "u2", now))
	require.NoError(t, s.AddLike(ctx, b.ID, "u1", now))
	require.NoError(t, s.AddLike(ctx, b.ID, "u2", old))
	require.NoError(t, s.AddLike(ctx, c.ID, "u1", old))

	top, err := s.TopLiked(ctx, now.Add(-time.Hour), 10)
	require.NoError(t, err)
	require.Len(t, top, 2, "stale likes fall outside the window")
	require.Equal(t, storage.LikeTally{PostID: "post-a", Count: 2}, top[0])
	require.Equal(t, storage.LikeTally{PostID: "post-b", Count: 1}, top[1])

	top, err = s.TopLiked(ctx, now.Add(-time.Hour), 1)
	require.NoError(t, err)
	require.Len(t, top, 1)
	require.Equal(t, "post-a", top[0].PostID)
}

func testJournalOwnership(t *testing.T, s storage.Store) {
	ctx := context.Background()

	mine, err := s.CreateEntry(ctx, journal.Entry{AuthorID: "me", Title: "Mine", Mood: journal.MoodHealing})
	require.NoError(t, err)
	require.NotEmpty(t, mine.ID)

	_, err = s.UpdateEntry(ctx, mine.ID, "someone-else", storage.EntryPatch{})
	require.True(t, storage.IsNotFound(err), "cross-author update must look like a missing entry")
	require.True(t, storage.IsNotFound(s.DeleteEntry(ctx, mine.ID, "someone-else")))

	fav := true
	patched, err := s.UpdateEntry(ctx, mine.ID, "me", storage.EntryPatch{Favorite: &fav})
	require.NoError(t, err)
	require.True(t, patched.Favorite)
	require.Equal(t, "Mine", patched.Title, "untouched field must survive a sparse update")

	require.NoError(t, s.DeleteEntry(ctx, mine.ID, "me"))
	_, err = s.GetEntry(ctx, mine.ID)
	require.True(t, storage.IsNotFound(err))
}

func testJournalFilters(t *testing.T, s storage.Store) {
	ctx := context.Background()

	rainy, err := s.CreateEntry(ctx, journal.Entry{
		AuthorID: "me", Title: "Rainy Tuesday", Content: "tea and a long walk",
		Mood: journal.MoodHealing, Tags: []string{"walks"},
	})
	require.NoError(t, err)
	_, err = s.CreateEntry(ctx, journal.Entry{AuthorID: "me", Title: "Other", Mood: journal.MoodEmpowered, Favorite: true})
	require.NoError(t, err)
	_, err = s.CreateEntry(ctx, journal.Entry{AuthorID: "someone-else", Title: "Rainy Tuesday"})
	require.NoError(t, err)

	all, err := s.QueryEntries(ctx, "me", storage.EntryFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2, "queries never cross author boundaries")

	mood := journal.MoodHealing
	byMood, err := s.QueryEntries(ctx, "me", storage.EntryFilter{Mood: &mood})
	require.NoError(t, err)
	require.Len(t, byMood, 1)
	require.Equal(t, rainy.ID, byMood[0].ID)

	bySearch, err := s.QueryEntries(ctx, "me", storage.EntryFilter{Search: "rainy"})
	require.NoError(t, err)
	require.Len(t, bySearch, 1)
	require.Equal(t, rainy.ID, bySearch[0].ID)

	fav := true
	byFav, err := s.QueryEntries(ctx, "me", storage.EntryFilter{Favorite: &fav})
	require.NoError(t, err)
	require.Len(t, byFav, 1)
	require.Equal(t, "Other", byFav[0].Title)
}

func testShelfUpsertIdentity(t *testing.T, s storage.Store) {
	ctx := context.Background()

	first, err := s.UpsertItem(ctx, shelf.Item{
		AuthorID: "me", BookKey: "/works/OL123W", Title: "Dune", Status: shelf.StatusWantToRead,
	})
	require.NoError(t, err)
	require.NotEmpty(t, first.ID)

	second, err := s.UpsertItem(ctx, shelf.Item{
		AuthorID: "me", BookKey: "/works/OL123W", Title: "Dune",
		Status: shelf.StatusReading, ProgressPercent: 40,
	})
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID, "upsert must not mint a new identity")
	require.Equal(t, shelf.StatusReading, second.Status)
	require.Equal(t, 40, second.ProgressPercent)

	items, err := s.ListShelf(ctx, "me")
	require.NoError(t, err)
	require.Len(t, items, 1)

	it, err := s.SetProgress(ctx, "me", "/works/OL123W", 75)
	require.NoError(t, err)
	require.Equal(t, 75, it.ProgressPercent)
	require.Equal(t, shelf.StatusReading, it.Status, "setter must not clobber other fields")

	it, err = s.SetFavorite(ctx, "me", "/works/OL123W", true)
	require.NoError(t, err)
	require.True(t, it.Favorite)
	require.Equal(t, 75, it.ProgressPercent)

	_, err = s.SetProgress(ctx, "me", "/works/missing", 10)
	require.True(t, storage.IsNotFound(err))

	require.NoError(t, s.RemoveItem(ctx, "me", "/works/OL123W"))
	require.True(t, storage.IsNotFound(s.RemoveItem(ctx, "me", "/works/OL123W")))
}

func testShelfSortOrder(t *testing.T, s storage.Store) {
	ctx := context.Background()

	_, err := s.UpsertItem(ctx, shelf.Item{AuthorID: "me", BookKey: "/works/OL1W", Title: "first", SortOrder: 0})
	require.NoError(t, err)
	_, err = s.UpsertItem(ctx, shelf.Item{AuthorID: "me", BookKey: "/works/OL2W", Title: "second", SortOrder: 1})
	require.NoError(t, err)

	matched, err := s.SetSortOrder(ctx, "me", "/works/OL2W", -1)
	require.NoError(t, err)
	require.True(t, matched)

	matched, err = s.SetSortOrder(ctx, "me", "/works/missing", 5)
	require.NoError(t, err, "a missing item is reported, not an error")
	require.False(t, matched)

	items, err := s.ListShelf(ctx, "me")
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.Equal(t, "second", items[0].Title, "shelf listing follows sort order ascending")
	require.Equal(t, "first", items[1].Title)
}

func testConfessionLifecycle(t *testing.T, s storage.Store) {
	ctx := context.Background()

	base := time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC)
	first, err := s.CreateConfession(ctx, confession.Confession{
		AuthorID: "me", Content: "I skim the last page first", Tags: []string{"habits"}, CreatedAt: base,
	})
	require.NoError(t, err)
	require.NotEmpty(t, first.ID)

	second, err := s.CreateConfession(ctx, confession.Confession{
		AuthorID: "someone-else", Content: "I never finish series", CreatedAt: base.Add(time.Minute),
	})
	require.NoError(t, err)

	all, err := s.ListConfessions(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2, "the confession wall is global, not author-scoped")
	require.Equal(t, second.ID, all[0].ID, "confessions are listed most recent first")
	require.Equal(t, first.ID, all[1].ID)

	got, err := s.GetConfession(ctx, first.ID)
	require.NoError(t, err)
	require.Equal(t, "me", got.AuthorID, "storage keeps the author; anonymity is the service's job")
	require.Equal(t, []string{"habits"}, got.Tags)

	_, err = s.GetConfession(ctx, "no-such-confession")
	require.True(t, storage.IsNotFound(err))
}

func testLetterLifecycle(t *testing.T, s storage.Store) {
	ctx := context.Background()

	target := time.Date(2026, 12, 24, 0, 0, 0, 0, time.UTC)
	l, err := s.CreateLetter(ctx, letter.Letter{
		AuthorID: "me", Content: "dear future me", TargetDate: target, WordCount: 3,
	})
	require.NoError(t, err)
	require.Equal(t, letter.StatusScheduled, l.Status)
	require.Equal(t, letter.TypeFuture, l.Type)

	later, err := s.CreateLetter(ctx, letter.Letter{
		AuthorID: "me", Content: "next year", TargetDate: target.AddDate(1, 0, 0),
	})
	require.NoError(t, err)

	list, err := s.ListLetters(ctx, "me")
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, later.ID, list[0].ID, "letters are listed by target date descending")

	n, err := s.CountDue(ctx, target.Add(time.Hour))
	require.NoError(t, err)
	require.Equal(t, 1, n)
	n, err = s.CountDue(ctx, target.Add(-time.Hour))
	require.NoError(t, err)
	require.Zero(t, n)

	openedAt := target.Add(2 * time.Hour)
	opened, err := s.MarkOpened(ctx, l.ID, "me", openedAt)
	require.NoError(t, err)
	require.Equal(t, letter.StatusOpened, opened.Status)
	require.NotNil(t, opened.OpenedAt)
	require.True(t, opened.OpenedAt.Equal(openedAt))

	n, err = s.CountDue(ctx, target.AddDate(2, 0, 0))
	require.NoError(t, err)
	require.Equal(t, 1, n, "opened letters stop counting as due")

	_, err = s.MarkOpened(ctx, l.ID, "someone-else", openedAt)
	require.True(t, storage.IsNotFound(err))
	require.True(t, storage.IsNotFound(s.DeleteLetter(ctx, l.ID, "someone-else")))
	require.NoError(t, s.DeleteLetter(ctx, l.ID, "me"))
}
