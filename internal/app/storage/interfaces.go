// Package storage defines the persistence contract shared by every backend
// adapter. Three implementations exist — memory (ephemeral, snapshot-backed),
// mongodb (document store) and redisdb (key-value store) — and all of them
// must expose identical observable behaviour: the same error codes, the same
// most-recent-first default ordering, and the same sparse-update semantics
// where only explicitly supplied fields are touched.
package storage

import (
	"context"
	"time"

	"github.com/booklovin/backend/internal/app/domain/confession"
	"github.com/booklovin/backend/internal/app/domain/journal"
	"github.com/booklovin/backend/internal/app/domain/letter"
	"github.com/booklovin/backend/internal/app/domain/post"
	"github.com/booklovin/backend/internal/app/domain/shelf"
	"github.com/booklovin/backend/internal/app/domain/user"
)

// StreakUpdate is a sparse update of the streak fields on a user record.
// Nil pointers leave the corresponding field untouched; ClearStreakStart
// explicitly nulls the streak anchor (a broken, backdated streak).
type StreakUpdate struct {
	CurrentStreak    *int
	LongestStreak    *int
	StreakStart      *time.Time
	ClearStreakStart bool
	LastJournalDate  *time.Time
}

// PostPatch is a sparse update of a post's mutable fields.
type PostPatch struct {
	Title    *string
	Content  *string
	Links    *[]post.Link
	ImageURL *string
}

// EntryPatch is a sparse update of a journal entry's mutable fields.
type EntryPatch struct {
	Title       *string
	Content     *string
	Mood        *journal.Mood
	Tags        *[]string
	Favorite    *bool
	WritingTime *int
}

// EntryFilter narrows a journal query. Zero values mean "no constraint";
// Search matches words in title, content or tags.
type EntryFilter struct {
	Mood     *journal.Mood
	Search   string
	Favorite *bool
}

// LikeTally pairs a post with its like count inside some window.
type LikeTally struct {
	PostID string
	Count  int
}

// UserStore persists account records.
type UserStore interface {
	// CreateUser fails with CodeAlreadyExists when the email is taken.
	CreateUser(ctx context.Context, u user.User) (user.User, error)
	GetUser(ctx context.Context, id string) (user.User, error)
	GetUserByEmail(ctx context.Context, email string) (user.User, error)
	// UpdateUserStreak applies a sparse streak update to the user record.
	UpdateUserStreak(ctx context.Context, id string, upd StreakUpdate) error
}

// PostStore persists feed posts. Reads recompute the derived like count from
// the like set; the Post record itself never holds an authoritative counter.
type PostStore interface {
	CreatePost(ctx context.Context, p post.Post) (post.Post, error)
	GetPost(ctx context.Context, id string) (post.Post, error)
	// ListPosts returns the [start, end) window of all posts ordered most
	// recent first.
	ListPosts(ctx context.Context, start, end int) ([]post.Post, error)
	UpdatePost(ctx context.Context, id string, patch PostPatch) (post.Post, error)
	DeletePost(ctx context.Context, id string) error
	// RecentPosts returns the author's newest posts, most recent first.
	RecentPosts(ctx context.Context, authorID string, limit int) ([]post.Post, error)
}

// CommentStore persists post comments. The post foreign key is validated by
// the posts service, not by storage.
type CommentStore interface {
	AddComment(ctx context.Context, c post.Comment) (post.Comment, error)
	// ListComments returns a post's comments oldest first.
	ListComments(ctx context.Context, postID string) ([]post.Comment, error)
	DeleteComment(ctx context.Context, postID, commentID string) error
}

// LikeStore maintains the deduplicated like set. AddLike must be idempotent
// under races: adapters rely on a uniqueness constraint or a set-add
// primitive, never on a read-then-write path.
type LikeStore interface {
	AddLike(ctx context.Context, postID, userID string, at time.Time) error
	LikeCount(ctx context.Context, postID string) (int, error)
	// TopLiked ranks posts by likes recorded at or after since, highest
	// count first, ties broken by post ID.
	TopLiked(ctx context.Context, since time.Time, limit int) ([]LikeTally, error)
}

// JournalStore persists journal entries. Author-scoped operations take the
// author ID so ownership is enforced by the query itself.
type JournalStore interface {
	CreateEntry(ctx context.Context, e journal.Entry) (journal.Entry, error)
	GetEntry(ctx context.Context, id string) (journal.Entry, error)
	UpdateEntry(ctx context.Context, id, authorID string, patch EntryPatch) (journal.Entry, error)
	DeleteEntry(ctx context.Context, id, authorID string) error
	QueryEntries(ctx context.Context, authorID string, f EntryFilter) ([]journal.Entry, error)
}

// ShelfStore persists shelf items, unique per (author, book key). Items are
// upserted rather than strictly created.
type ShelfStore interface {
	UpsertItem(ctx context.Context, it shelf.Item) (shelf.Item, error)
	// ListShelf returns the author's shelf ordered by sort order ascending,
	// then creation time descending.
	ListShelf(ctx context.Context, authorID string) ([]shelf.Item, error)
	RemoveItem(ctx context.Context, authorID, bookKey string) error
	SetProgress(ctx context.Context, authorID, bookKey string, percent int) (shelf.Item, error)
	SetFavorite(ctx context.Context, authorID, bookKey string, favorite bool) (shelf.Item, error)
	// SetSortOrder writes a single item's sort order, reporting whether the
	// item matched. Reorder batches are built from independent calls and are
	// not atomic.
	SetSortOrder(ctx context.Context, authorID, bookKey string, order int) (bool, error)
}

// ConfessionStore persists the shared confession wall. Listings are global,
// not author-scoped.
type ConfessionStore interface {
	CreateConfession(ctx context.Context, c confession.Confession) (confession.Confession, error)
	// ListConfessions returns every confession, most recent first.
	ListConfessions(ctx context.Context) ([]confession.Confession, error)
	GetConfession(ctx context.Context, id string) (confession.Confession, error)
}

// LetterStore persists scheduled letters.
type LetterStore interface {
	CreateLetter(ctx context.Context, l letter.Letter) (letter.Letter, error)
	// ListLetters returns the author's letters ordered by target date
	// descending.
	ListLetters(ctx context.Context, authorID string) ([]letter.Letter, error)
	MarkOpened(ctx context.Context, id, authorID string, at time.Time) (letter.Letter, error)
	DeleteLetter(ctx context.Context, id, authorID string) error
	// CountDue counts scheduled letters whose target date is at or before
	// the given instant.
	CountDue(ctx context.Context, before time.Time) (int, error)
}

// Store is the full capability set a backend adapter provides.
type Store interface {
	UserStore
	PostStore
	CommentStore
	LikeStore
	JournalStore
	ShelfStore
	ConfessionStore
	LetterStore
}
