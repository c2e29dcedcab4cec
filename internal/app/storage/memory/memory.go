// Package memory is the ephemeral storage adapter: a single in-process store
// guarded by a read-write mutex, optionally persisted to a JSON snapshot file
// for restart durability. The snapshot is rewritten in full on every mutating
// call, fire-and-forget (no fsync), and must not be treated as durable.
//
// Query filtering is a linear scan with early-exit predicates. Upserts are
// read-then-write under the store mutex; unlike the document-store adapter
// there is no engine-level atomic conditional-update primitive here.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/booklovin/backend/internal/app/domain/confession"
	"github.com/booklovin/backend/internal/app/domain/journal"
	"github.com/booklovin/backend/internal/app/domain/letter"
	"github.com/booklovin/backend/internal/app/domain/post"
	"github.com/booklovin/backend/internal/app/domain/shelf"
	"github.com/booklovin/backend/internal/app/domain/user"
	"github.com/booklovin/backend/internal/app/storage"
	"github.com/booklovin/backend/pkg/logger"
)

// Store is the in-memory implementation of the storage interfaces. It is safe
// for concurrent use and doubles as the test double for the other adapters.
type Store struct {
	mu   sync.RWMutex
	path string
	log  *logger.Logger

	users       map[string]user.User
	emailIndex  map[string]string // email -> user id
	posts       map[string]post.Post
	comments    map[string][]post.Comment
	likes       map[string]map[string]time.Time // post id -> user id -> liked at
	journals    map[string]journal.Entry
	shelves     map[string]shelf.Item // composite (author, book key)
	confessions map[string]confession.Confession
	letters     map[string]letter.Letter
}

var _ storage.Store = (*Store)(nil)

// New creates an empty store with no snapshot file.
func New() *Store {
	return &Store{
		users:       make(map[string]user.User),
		emailIndex:  make(map[string]string),
		posts:       make(map[string]post.Post),
		comments:    make(map[string][]post.Comment),
		likes:       make(map[string]map[string]time.Time),
		journals:    make(map[string]journal.Entry),
		shelves:     make(map[string]shelf.Item),
		confessions: make(map[string]confession.Confession),
		letters:     make(map[string]letter.Letter),
	}
}

// NewWithSnapshot creates a store that loads its state from path (when the
// file exists) and rewrites it after every mutation.
func NewWithSnapshot(path string, log *logger.Logger) (*Store, error) {
	if log == nil {
		log = logger.NewDefault("memory")
	}
	s := New()
	s.path = path
	s.log = log
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func shelfKey(authorID, bookKey string) string {
	return authorID + "\x00" + bookKey
}

func nowUTC() time.Time { return time.Now().UTC() }

// UserStore implementation ----------------------------------------------------

func (s *Store) CreateUser(_ context.Context, u user.User) (user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.emailIndex[u.Email]; taken {
		return user.User{}, storage.AlreadyExists("A user with this email already exists.")
	}
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = nowUTC()
	}

	s.users[u.ID] = u
	s.emailIndex[u.Email] = u.ID
	s.saveLocked()
	return cloneUser(u), nil
}

func (s *Store) GetUser(_ context.Context, id string) (user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return user.User{}, storage.NotFound("user " + id)
	}
	return cloneUser(u), nil
}

func (s *Store) GetUserByEmail(_ context.Context, email string) (user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.emailIndex[email]
	if !ok {
		return user.User{}, storage.NotFound("user " + email)
	}
	return cloneUser(s.users[id]), nil
}

func (s *Store) UpdateUserStreak(_ context.Context, id string, upd storage.StreakUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return storage.NotFound("user " + id)
	}

	if upd.CurrentStreak != nil {
		u.CurrentStreak = *upd.CurrentStreak
	}
	if upd.LongestStreak != nil {
		u.LongestStreak = *upd.LongestStreak
	}
	if upd.ClearStreakStart {
		u.StreakStart = nil
	} else if upd.StreakStart != nil {
		t := *upd.StreakStart
		u.StreakStart = &t
	}
	if upd.LastJournalDate != nil {
		t := *upd.LastJournalDate
		u.LastJournalDate = &t
	}

	s.users[id] = u
	s.saveLocked()
	return nil
}

// PostStore implementation ----------------------------------------------------

func (s *Store) CreatePost(_ context.Context, p post.Post) (post.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.ID == "" {
		p.ID = uuid.NewString()
	} else if _, exists := s.posts[p.ID]; exists {
		return post.Post{}, storage.AlreadyExists("post " + p.ID)
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = nowUTC()
	}
	p.Likes = 0

	s.posts[p.ID] = p
	s.saveLocked()
	return clonePost(p), nil
}

func (s *Store) GetPost(_ context.Context, id string) (post.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.posts[id]
	if !ok {
		return post.Post{}, storage.NotFound("post " + id)
	}
	out := clonePost(p)
	out.Likes = len(s.likes[id])
	return out, nil
}

func (s *Store) ListPosts(_ context.Context, start, end int) ([]post.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := s.sortedPostsLocked()
	if start < 0 {
		start = 0
	}
	if start >= len(all) {
		return []post.Post{}, nil
	}
	if end > len(all) {
		end = len(all)
	}
	if end < start {
		end = start
	}
	return all[start:end], nil
}

func (s *Store) UpdatePost(_ context.Context, id string, patch storage.PostPatch) (post.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.posts[id]
	if !ok {
		return post.Post{}, storage.NotFound("post " + id)
	}

	if patch.Title != nil {
		p.Title = *patch.Title
	}
	if patch.Content != nil {
		p.Content = *patch.Content
	}
	if patch.Links != nil {
		p.Links = append([]post.Link(nil), (*patch.Links)...)
	}
	if patch.ImageURL != nil {
		p.ImageURL = *patch.ImageURL
	}

	s.posts[id] = p
	s.saveLocked()
	out := clonePost(p)
	out.Likes = len(s.likes[id])
	return out, nil
}

func (s *Store) DeletePost(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.posts[id]; !ok {
		return storage.NotFound("post " + id)
	}
	delete(s.posts, id)
	delete(s.likes, id)
	delete(s.comments, id)
	s.saveLocked()
	return nil
}

func (s *Store) RecentPosts(_ context.Context, authorID string, limit int) ([]post.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]post.Post, 0, limit)
	for _, p := range s.sortedPostsLocked() {
		if p.AuthorID != authorID {
			continue
		}
		result = append(result, p)
		if len(result) == limit {
			break
		}
	}
	return result, nil
}

// sortedPostsLocked returns clones of all posts, most recent first, with the
// derived like count filled in.
func (s *Store) sortedPostsLocked() []post.Post {
	all := make([]post.Post, 0, len(s.posts))
	for _, p := range s.posts {
		c := clonePost(p)
		c.Likes = len(s.likes[p.ID])
		all = append(all, c)
	}
	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return all[i].ID > all[j].ID
	})
	return all
}

// CommentStore implementation -------------------------------------------------

func (s *Store) AddComment(_ context.Context, c post.Comment) (post.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = nowUTC()
	}
	s.comments[c.PostID] = append(s.comments[c.PostID], c)
	s.saveLocked()
	return c, nil
}

func (s *Store) ListComments(_ context.Context, postID string) ([]post.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := append([]post.Comment(nil), s.comments[postID]...)
	sort.Slice(list, func(i, j int) bool {
		if !list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].CreatedAt.Before(list[j].CreatedAt)
		}
		return list[i].ID < list[j].ID
	})
	return list, nil
}

func (s *Store) DeleteComment(_ context.Context, postID, commentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.comments[postID]
	for i, c := range list {
		if c.ID == commentID {
			s.comments[postID] = append(list[:i:i], list[i+1:]...)
			s.saveLocked()
			return nil
		}
	}
	return storage.NotFound("comment " + commentID)
}

// LikeStore implementation ----------------------------------------------------

func (s *Store) AddLike(_ context.Context, postID, userID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	set := s.likes[postID]
	if set == nil {
		set = make(map[string]time.Time)
		s.likes[postID] = set
	}
	if _, seen := set[userID]; seen {
		return nil
	}
	set[userID] = at.UTC()
	s.saveLocked()
	return nil
}

func (s *Store) LikeCount(_ context.Context, postID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.likes[postID]), nil
}

func (s *Store) TopLiked(_ context.Context, since time.Time, limit int) ([]storage.LikeTally, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tallies := make([]storage.LikeTally, 0, len(s.likes))
	for postID, set := range s.likes {
		n := 0
		for _, at := range set {
			if !at.Before(since) {
				n++
			}
		}
		if n > 0 {
			tallies = append(tallies, storage.LikeTally{PostID: postID, Count: n})
		}
	}
	sort.Slice(tallies, func(i, j int) bool {
		if tallies[i].Count != tallies[j].Count {
			return tallies[i].Count > tallies[j].Count
		}
		return tallies[i].PostID < tallies[j].PostID
	})
	if limit > 0 && len(tallies) > limit {
		tallies = tallies[:limit]
	}
	return tallies, nil
}

// JournalStore implementation -------------------------------------------------

func (s *Store) CreateEntry(_ context.Context, e journal.Entry) (journal.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = nowUTC()
	}
	if e.UpdatedAt.IsZero() {
		e.UpdatedAt = e.CreatedAt
	}

	s.journals[e.ID] = e
	s.saveLocked()
	return cloneEntry(e), nil
}

func (s *Store) GetEntry(_ context.Context, id string) (journal.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.journals[id]
	if !ok {
		return journal.Entry{}, storage.NotFound("journal entry " + id)
	}
	return cloneEntry(e), nil
}

func (s *Store) UpdateEntry(_ context.Context, id, authorID string, patch storage.EntryPatch) (journal.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.journals[id]
	if !ok || e.AuthorID != authorID {
		return journal.Entry{}, storage.NotFound("journal entry " + id)
	}

	if patch.Title != nil {
		e.Title = *patch.Title
	}
	if patch.Content != nil {
		e.Content = *patch.Content
	}
	if patch.Mood != nil {
		e.Mood = *patch.Mood
	}
	if patch.Tags != nil {
		e.Tags = append([]string(nil), (*patch.Tags)...)
	}
	if patch.Favorite != nil {
		e.Favorite = *patch.Favorite
	}
	if patch.WritingTime != nil {
		e.WritingTime = *patch.WritingTime
	}
	e.UpdatedAt = nowUTC()

	s.journals[id] = e
	s.saveLocked()
	return cloneEntry(e), nil
}

func (s *Store) DeleteEntry(_ context.Context, id, authorID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.journals[id]
	if !ok || e.AuthorID != authorID {
		return storage.NotFound("journal entry " + id)
	}
	delete(s.journals, id)
	s.saveLocked()
	return nil
}

func (s *Store) QueryEntries(_ context.Context, authorID string, f storage.EntryFilter) ([]journal.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []journal.Entry
	for _, e := range s.journals {
		if e.AuthorID != authorID {
			continue
		}
		if f.Mood != nil && e.Mood != *f.Mood {
			continue
		}
		if f.Favorite != nil && e.Favorite != *f.Favorite {
			continue
		}
		if f.Search != "" && !entryMatches(e, f.Search) {
			continue
		}
		result = append(result, cloneEntry(e))
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].ID > result[j].ID
	})
	if result == nil {
		result = []journal.Entry{}
	}
	return result, nil
}

func entryMatches(e journal.Entry, search string) bool {
	needle := strings.ToLower(search)
	if strings.Contains(strings.ToLower(e.Title), needle) {
		return true
	}
	if strings.Contains(strings.ToLower(e.Content), needle) {
		return true
	}
	for _, tag := range e.Tags {
		if strings.Contains(strings.ToLower(tag), needle) {
			return true
		}
	}
	return false
}

// ShelfStore implementation ---------------------------------------------------

func (s *Store) UpsertItem(_ context.Context, it shelf.Item) (shelf.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := shelfKey(it.AuthorID, it.BookKey)
	if existing, ok := s.shelves[key]; ok {
		it.ID = existing.ID
		it.CreatedAt = existing.CreatedAt
	} else {
		if it.ID == "" {
			it.ID = uuid.NewString()
		}
		if it.CreatedAt.IsZero() {
			it.CreatedAt = nowUTC()
		}
	}

	s.shelves[key] = it
	s.saveLocked()
	return cloneItem(it), nil
}

func (s *Store) ListShelf(_ context.Context, authorID string) ([]shelf.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listShelfLocked(authorID), nil
}

func (s *Store) listShelfLocked(authorID string) []shelf.Item {
	result := []shelf.Item{}
	for _, it := range s.shelves {
		if it.AuthorID == authorID {
			result = append(result, cloneItem(it))
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].SortOrder != result[j].SortOrder {
			return result[i].SortOrder < result[j].SortOrder
		}
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].BookKey < result[j].BookKey
	})
	return result
}

func (s *Store) RemoveItem(_ context.Context, authorID, bookKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := shelfKey(authorID, bookKey)
	if _, ok := s.shelves[key]; !ok {
		return storage.NotFound("shelf item " + bookKey)
	}
	delete(s.shelves, key)
	s.saveLocked()
	return nil
}

func (s *Store) SetProgress(_ context.Context, authorID, bookKey string, percent int) (shelf.Item, error) {
	return s.mutateItem(authorID, bookKey, func(it *shelf.Item) {
		it.ProgressPercent = percent
	})
}

func (s *Store) SetFavorite(_ context.Context, authorID, bookKey string, favorite bool) (shelf.Item, error) {
	return s.mutateItem(authorID, bookKey, func(it *shelf.Item) {
		it.Favorite = favorite
	})
}

func (s *Store) SetSortOrder(_ context.Context, authorID, bookKey string, order int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := shelfKey(authorID, bookKey)
	it, ok := s.shelves[key]
	if !ok {
		return false, nil
	}
	it.SortOrder = order
	s.shelves[key] = it
	s.saveLocked()
	return true, nil
}

func (s *Store) mutateItem(authorID, bookKey string, fn func(*shelf.Item)) (shelf.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := shelfKey(authorID, bookKey)
	it, ok := s.shelves[key]
	if !ok {
		return shelf.Item{}, storage.NotFound("shelf item " + bookKey)
	}
	fn(&it)
	s.shelves[key] = it
	s.saveLocked()
	return cloneItem(it), nil
}

// ConfessionStore implementation ----------------------------------------------

func (s *Store) CreateConfession(_ context.Context, c confession.Confession) (confession.Confession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = nowUTC()
	}

	s.confessions[c.ID] = c
	s.saveLocked()
	return cloneConfession(c), nil
}

func (s *Store) ListConfessions(_ context.Context) ([]confession.Confession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]confession.Confession, 0, len(s.confessions))
	for _, c := range s.confessions {
		result = append(result, cloneConfession(c))
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].ID > result[j].ID
	})
	return result, nil
}

func (s *Store) GetConfession(_ context.Context, id string) (confession.Confession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.confessions[id]
	if !ok {
		return confession.Confession{}, storage.NotFound("confession " + id)
	}
	return cloneConfession(c), nil
}

// LetterStore implementation --------------------------------------------------

func (s *Store) CreateLetter(_ context.Context, l letter.Letter) (letter.Letter, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	if l.CreatedAt.IsZero() {
		l.CreatedAt = nowUTC()
	}
	if l.Status == "" {
		l.Status = letter.StatusScheduled
	}
	if l.Type == "" {
		l.Type = letter.TypeFuture
	}

	s.letters[l.ID] = l
	s.saveLocked()
	return cloneLetter(l), nil
}

func (s *Store) ListLetters(_ context.Context, authorID string) ([]letter.Letter, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := []letter.Letter{}
	for _, l := range s.letters {
		if l.AuthorID == authorID {
			result = append(result, cloneLetter(l))
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].TargetDate.Equal(result[j].TargetDate) {
			return result[i].TargetDate.After(result[j].TargetDate)
		}
		return result[i].ID > result[j].ID
	})
	return result, nil
}

func (s *Store) MarkOpened(_ context.Context, id, authorID string, at time.Time) (letter.Letter, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.letters[id]
	if !ok || l.AuthorID != authorID {
		return letter.Letter{}, storage.NotFound("letter " + id)
	}
	opened := at.UTC()
	l.Status = letter.StatusOpened
	l.OpenedAt = &opened

	s.letters[id] = l
	s.saveLocked()
	return cloneLetter(l), nil
}

func (s *Store) DeleteLetter(_ context.Context, id, authorID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.letters[id]
	if !ok || l.AuthorID != authorID {
		return storage.NotFound("letter " + id)
	}
	delete(s.letters, id)
	s.saveLocked()
	return nil
}

func (s *Store) CountDue(_ context.Context, before time.Time) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, l := range s.letters {
		if l.Status == letter.StatusScheduled && !l.TargetDate.After(before) {
			n++
		}
	}
	return n, nil
}

// Clone helpers ---------------------------------------------------------------

func cloneUser(u user.User) user.User {
	if u.StreakStart != nil {
		t := *u.StreakStart
		u.StreakStart = &t
	}
	if u.LastJournalDate != nil {
		t := *u.LastJournalDate
		u.LastJournalDate = &t
	}
	return u
}

func clonePost(p post.Post) post.Post {
	p.Links = append([]post.Link(nil), p.Links...)
	if p.LastLikeAt != nil {
		t := *p.LastLikeAt
		p.LastLikeAt = &t
	}
	return p
}

func cloneEntry(e journal.Entry) journal.Entry {
	e.Tags = append([]string(nil), e.Tags...)
	return e
}

func cloneItem(it shelf.Item) shelf.Item {
	if it.CoverID != nil {
		v := *it.CoverID
		it.CoverID = &v
	}
	it.AuthorNames = append([]string(nil), it.AuthorNames...)
	return it
}

func cloneConfession(c confession.Confession) confession.Confession {
	c.Tags = append([]string(nil), c.Tags...)
	return c
}

func cloneLetter(l letter.Letter) letter.Letter {
	if l.OpenedAt != nil {
		t := *l.OpenedAt
		l.OpenedAt = &t
	}
	return l
}
