// Package redisdb is the key-value storage adapter. Entities live as JSON
// blobs; secondary access paths use sorted sets and hashes instead of
// engine-side queries. Global listings (feed window, popularity ranking,
// due-letter counting) walk the keyspace with SCAN and filter client-side,
// which is acceptable at this deployment's data volumes but does not scale
// the way the document-store adapter does.
package redisdb

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/booklovin/backend/internal/app/domain/confession"
	"github.com/booklovin/backend/internal/app/domain/journal"
	"github.com/booklovin/backend/internal/app/domain/letter"
	"github.com/booklovin/backend/internal/app/domain/post"
	"github.com/booklovin/backend/internal/app/domain/shelf"
	"github.com/booklovin/backend/internal/app/domain/user"
	"github.com/booklovin/backend/internal/app/storage"
	"github.com/booklovin/backend/pkg/logger"
)

const scanBatch = 256

// Store implements the storage interfaces on a Redis connection.
type Store struct {
	rdb redis.UniversalClient
	log *logger.Logger
}

var _ storage.Store = (*Store)(nil)

// New wraps an established Redis client. The caller owns the connection
// lifecycle; Close it when the application shuts down.
func New(rdb redis.UniversalClient, log *logger.Logger) *Store {
	if log == nil {
		log = logger.NewDefault("redisdb")
	}
	return &Store{rdb: rdb, log: log}
}

func (s *Store) getJSON(ctx context.Context, key string, dest any) error {
	raw, err := s.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return storage.NotFound(key)
	}
	if err != nil {
		return storage.Fatal(err)
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return storage.Fatal(err)
	}
	return nil
}

func (s *Store) setJSON(ctx context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return storage.Fatal(err)
	}
	if err := s.rdb.Set(ctx, key, raw, 0).Err(); err != nil {
		return storage.Fatal(err)
	}
	return nil
}

// scanKeys walks the keyspace for a pattern. Linear in the number of keys of
// that type.
func (s *Store) scanKeys(ctx context.Context, pattern string) ([]string, error) {
	var keys []string
	var cursor uint64
	for {
		batch, next, err := s.rdb.Scan(ctx, cursor, pattern, scanBatch).Result()
		if err != nil {
			return nil, storage.Fatal(err)
		}
		keys = append(keys, batch...)
		cursor = next
		if cursor == 0 {
			return keys, nil
		}
	}
}

// UserStore implementation ----------------------------------------------------

func (s *Store) CreateUser(ctx context.Context, u user.User) (user.User, error) {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}

	// SETNX on the email index is the uniqueness gate; the user blob is only
	// written after the claim succeeds.
	claimed, err := s.rdb.SetNX(ctx, emailKey(u.Email), u.ID, 0).Result()
	if err != nil {
		return user.User{}, storage.Fatal(err)
	}
	if !claimed {
		return user.User{}, storage.AlreadyExists("A user with this email already exists.")
	}
	if err := s.setJSON(ctx, userKey(u.ID), u); err != nil {
		return user.User{}, err
	}
	return u, nil
}

func (s *Store) GetUser(ctx context.Context, id string) (user.User, error) {
	var u user.User
	if err := s.getJSON(ctx, userKey(id), &u); err != nil {
		return user.User{}, err
	}
	return u, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (user.User, error) {
	id, err := s.rdb.Get(ctx, emailKey(email)).Result()
	if errors.Is(err, redis.Nil) {
		return user.User{}, storage.NotFound("user " + email)
	}
	if err != nil {
		return user.User{}, storage.Fatal(err)
	}
	return s.GetUser(ctx, id)
}

func (s *Store) UpdateUserStreak(ctx context.Context, id string, upd storage.StreakUpdate) error {
	u, err := s.GetUser(ctx, id)
	if err != nil {
		return err
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

	// Read-then-write on the whole blob. Streak writes for one user are
	// serialized by the journal service, so lost updates are not a concern
	// here the way they would be for likes.
	return s.setJSON(ctx, userKey(id), u)
}

// PostStore implementation ----------------------------------------------------

func (s *Store) CreatePost(ctx context.Context, p post.Post) (post.Post, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	} else {
		exists, err := s.rdb.Exists(ctx, postKey(p.ID)).Result()
		if err != nil {
			return post.Post{}, storage.Fatal(err)
		}
		if exists > 0 {
			return post.Post{}, storage.AlreadyExists("post " + p.ID)
		}
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	p.Likes = 0

	if err := s.setJSON(ctx, postKey(p.ID), p); err != nil {
		return post.Post{}, err
	}
	return p, nil
}

func (s *Store) GetPost(ctx context.Context, id string) (post.Post, error) {
	var p post.Post
	if err := s.getJSON(ctx, postKey(id), &p); err != nil {
		return post.Post{}, err
	}
	n, err := s.rdb.ZCard(ctx, likesKey(id)).Result()
	if err != nil {
		return post.Post{}, storage.Fatal(err)
	}
	p.Likes = int(n)
	return p, nil
}

func (s *Store) ListPosts(ctx context.Context, start, end int) ([]post.Post, error) {
	all, err := s.allPosts(ctx)
	if err != nil {
		return nil, err
	}
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

func (s *Store) UpdatePost(ctx context.Context, id string, patch storage.PostPatch) (post.Post, error) {
	p, err := s.GetPost(ctx, id)
	if err != nil {
		return post.Post{}, err
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

	if err := s.setJSON(ctx, postKey(id), p); err != nil {
		return post.Post{}, err
	}
	return p, nil
}

func (s *Store) DeletePost(ctx context.Context, id string) error {
	deleted, err := s.rdb.Del(ctx, postKey(id)).Result()
	if err != nil {
		return storage.Fatal(err)
	}
	if deleted == 0 {
		return storage.NotFound("post " + id)
	}
	if err := s.rdb.Del(ctx, likesKey(id), commentsKey(id)).Err(); err != nil {
		return storage.Fatal(err)
	}
	return nil
}

func (s *Store) RecentPosts(ctx context.Context, authorID string, limit int) ([]post.Post, error) {
	all, err := s.allPosts(ctx)
	if err != nil {
		return nil, err
	}
	result := make([]post.Post, 0, limit)
	for _, p := range all {
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

func (s *Store) allPosts(ctx context.Context) ([]post.Post, error) {
	keys, err := s.scanKeys(ctx, "post:*")
	if err != nil {
		return nil, err
	}

	all := make([]post.Post, 0, len(keys))
	for _, key := range keys {
		var p post.Post
		if err := s.getJSON(ctx, key, &p); err != nil {
			if storage.IsNotFound(err) {
				continue // deleted between scan and read
			}
			return nil, err
		}
		n, err := s.rdb.ZCard(ctx, likesKey(p.ID)).Result()
		if err != nil {
			return nil, storage.Fatal(err)
		}
		p.Likes = int(n)
		all = append(all, p)
	}
	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return all[i].ID > all[j].ID
	})
	return all, nil
}

// CommentStore implementation -------------------------------------------------

func (s *Store) AddComment(ctx context.Context, c post.Comment) (post.Comment, error) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}

	raw, err := json.Marshal(c)
	if err != nil {
		return post.Comment{}, storage.Fatal(err)
	}
	if err := s.rdb.HSet(ctx, commentsKey(c.PostID), c.ID, raw).Err(); err != nil {
		return post.Comment{}, storage.Fatal(err)
	}
	return c, nil
}

func (s *Store) ListComments(ctx context.Context, postID string) ([]post.Comment, error) {
	fields, err := s.rdb.HGetAll(ctx, commentsKey(postID)).Result()
	if err != nil {
		return nil, storage.Fatal(err)
	}

	list := make([]post.Comment, 0, len(fields))
	for _, raw := range fields {
		var c post.Comment
		if err := json.Unmarshal([]byte(raw), &c); err != nil {
			return nil, storage.Fatal(err)
		}
		list = append(list, c)
	}
	sort.Slice(list, func(i, j int) bool {
		if !list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].CreatedAt.Before(list[j].CreatedAt)
		}
		return list[i].ID < list[j].ID
	})
	return list, nil
}

func (s *Store) DeleteComment(ctx context.Context, postID, commentID string) error {
	removed, err := s.rdb.HDel(ctx, commentsKey(postID), commentID).Result()
	if err != nil {
		return storage.Fatal(err)
	}
	if removed == 0 {
		return storage.NotFound("comment " + commentID)
	}
	return nil
}

// LikeStore implementation ----------------------------------------------------

func (s *Store) AddLike(ctx context.Context, postID, userID string, at time.Time) error {
	// ZADD NX is the dedup primitive: a repeated like neither errors nor
	// refreshes the original timestamp.
	member := redis.Z{Score: float64(at.UTC().UnixMilli()), Member: userID}
	if err := s.rdb.ZAddNX(ctx, likesKey(postID), member).Err(); err != nil {
		return storage.Fatal(err)
	}
	return nil
}

func (s *Store) LikeCount(ctx context.Context, postID string) (int, error) {
	n, err := s.rdb.ZCard(ctx, likesKey(postID)).Result()
	if err != nil {
		return 0, storage.Fatal(err)
	}
	return int(n), nil
}

func (s *Store) TopLiked(ctx context.Context, since time.Time, limit int) ([]storage.LikeTally, error) {
	keys, err := s.scanKeys(ctx, "likes:*")
	if err != nil {
		return nil, err
	}

	min := strconv.FormatInt(since.UTC().UnixMilli(), 10)
	tallies := make([]storage.LikeTally, 0, len(keys))
	for _, key := range keys {
		n, err := s.rdb.ZCount(ctx, key, min, "+inf").Result()
		if err != nil {
			return nil, storage.Fatal(err)
		}
		if n == 0 {
			continue
		}
		tallies = append(tallies, storage.LikeTally{
			PostID: strings.TrimPrefix(key, "likes:"),
			Count:  int(n),
		})
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

func (s *Store) CreateEntry(ctx context.Context, e journal.Entry) (journal.Entry, error) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	if e.UpdatedAt.IsZero() {
		e.UpdatedAt = e.CreatedAt
	}
	if err := s.setJSON(ctx, journalKey(e.ID), e); err != nil {
		return journal.Entry{}, err
	}
	return e, nil
}

func (s *Store) GetEntry(ctx context.Context, id string) (journal.Entry, error) {
	var e journal.Entry
	if err := s.getJSON(ctx, journalKey(id), &e); err != nil {
		return journal.Entry{}, err
	}
	return e, nil
}

func (s *Store) UpdateEntry(ctx context.Context, id, authorID string, patch storage.EntryPatch) (journal.Entry, error) {
	e, err := s.GetEntry(ctx, id)
	if err != nil {
		return journal.Entry{}, err
	}
	if e.AuthorID != authorID {
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
	e.UpdatedAt = time.Now().UTC()

	if err := s.setJSON(ctx, journalKey(id), e); err != nil {
		return journal.Entry{}, err
	}
	return e, nil
}

func (s *Store) DeleteEntry(ctx context.Context, id, authorID string) error {
	e, err := s.GetEntry(ctx, id)
	if err != nil {
		return err
	}
	if e.AuthorID != authorID {
		return storage.NotFound("journal entry " + id)
	}
	if err := s.rdb.Del(ctx, journalKey(id)).Err(); err != nil {
		return storage.Fatal(err)
	}
	return nil
}

func (s *Store) QueryEntries(ctx context.Context, authorID string, f storage.EntryFilter) ([]journal.Entry, error) {
	keys, err := s.scanKeys(ctx, "journal:*")
	if err != nil {
		return nil, err
	}

	result := []journal.Entry{}
	for _, key := range keys {
		var e journal.Entry
		if err := s.getJSON(ctx, key, &e); err != nil {
			if storage.IsNotFound(err) {
				continue
			}
			return nil, err
		}
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
		result = append(result, e)
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].ID > result[j].ID
	})
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

func (s *Store) UpsertItem(ctx context.Context, it shelf.Item) (shelf.Item, error) {
	existing, err := s.getItem(ctx, it.AuthorID, it.BookKey)
	switch {
	case err == nil:
		it.ID = existing.ID
		it.CreatedAt = existing.CreatedAt
	case storage.IsNotFound(err):
		if it.ID == "" {
			it.ID = uuid.NewString()
		}
		if it.CreatedAt.IsZero() {
			it.CreatedAt = time.Now().UTC()
		}
	default:
		return shelf.Item{}, err
	}

	if err := s.putItem(ctx, it); err != nil {
		return shelf.Item{}, err
	}
	return it, nil
}

func (s *Store) ListShelf(ctx context.Context, authorID string) ([]shelf.Item, error) {
	fields, err := s.rdb.HGetAll(ctx, shelfKey(authorID)).Result()
	if err != nil {
		return nil, storage.Fatal(err)
	}

	result := make([]shelf.Item, 0, len(fields))
	for _, raw := range fields {
		var it shelf.Item
		if err := json.Unmarshal([]byte(raw), &it); err != nil {
			return nil, storage.Fatal(err)
		}
		result = append(result, it)
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
	return result, nil
}

func (s *Store) RemoveItem(ctx context.Context, authorID, bookKey string) error {
	removed, err := s.rdb.HDel(ctx, shelfKey(authorID), bookKey).Result()
	if err != nil {
		return storage.Fatal(err)
	}
	if removed == 0 {
		return storage.NotFound("shelf item " + bookKey)
	}
	return nil
}

func (s *Store) SetProgress(ctx context.Context, authorID, bookKey string, percent int) (shelf.Item, error) {
	return s.mutateItem(ctx, authorID, bookKey, func(it *shelf.Item) {
		it.ProgressPercent = percent
	})
}

func (s *Store) SetFavorite(ctx context.Context, authorID, bookKey string, favorite bool) (shelf.Item, error) {
	return s.mutateItem(ctx, authorID, bookKey, func(it *shelf.Item) {
		it.Favorite = favorite
	})
}

func (s *Store) SetSortOrder(ctx context.Context, authorID, bookKey string, order int) (bool, error) {
	it, err := s.getItem(ctx, authorID, bookKey)
	if storage.IsNotFound(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	it.SortOrder = order
	if err := s.putItem(ctx, it); err != nil {
		return false, err
	}
	return true, nil
}

// mutateItem is read-then-write on the item blob. Concurrent writers to the
// same shelf field can lose an update; the shelf endpoints are per-user so
// this stays a theoretical race.
func (s *Store) mutateItem(ctx context.Context, authorID, bookKey string, fn func(*shelf.Item)) (shelf.Item, error) {
	it, err := s.getItem(ctx, authorID, bookKey)
	if err != nil {
		return shelf.Item{}, err
	}
	fn(&it)
	if err := s.putItem(ctx, it); err != nil {
		return shelf.Item{}, err
	}
	return it, nil
}

func (s *Store) getItem(ctx context.Context, authorID, bookKey string) (shelf.Item, error) {
	raw, err := s.rdb.HGet(ctx, shelfKey(authorID), bookKey).Result()
	if errors.Is(err, redis.Nil) {
		return shelf.Item{}, storage.NotFound("shelf item " + bookKey)
	}
	if err != nil {
		return shelf.Item{}, storage.Fatal(err)
	}
	var it shelf.Item
	if err := json.Unmarshal([]byte(raw), &it); err != nil {
		return shelf.Item{}, storage.Fatal(err)
	}
	return it, nil
}

func (s *Store) putItem(ctx context.Context, it shelf.Item) error {
	raw, err := json.Marshal(it)
	if err != nil {
		return storage.Fatal(err)
	}
	if err := s.rdb.HSet(ctx, shelfKey(it.AuthorID), it.BookKey, raw).Err(); err != nil {
		return storage.Fatal(err)
	}
	return nil
}

// ConfessionStore implementation ----------------------------------------------

func (s *Store) CreateConfession(ctx context.Context, c confession.Confession) (confession.Confession, error) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	if err := s.setJSON(ctx, confessionKey(c.ID), c); err != nil {
		return confession.Confession{}, err
	}
	return c, nil
}

func (s *Store) ListConfessions(ctx context.Context) ([]confession.Confession, error) {
	keys, err := s.scanKeys(ctx, "confession:*")
	if err != nil {
		return nil, err
	}

	result := make([]confession.Confession, 0, len(keys))
	for _, key := range keys {
		var c confession.Confession
		if err := s.getJSON(ctx, key, &c); err != nil {
			if storage.IsNotFound(err) {
				continue
			}
			return nil, err
		}
		result = append(result, c)
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].ID > result[j].ID
	})
	return result, nil
}

func (s *Store) GetConfession(ctx context.Context, id string) (confession.Confession, error) {
	var c confession.Confession
	if err := s.getJSON(ctx, confessionKey(id), &c); err != nil {
		if storage.IsNotFound(err) {
			return confession.Confession{}, storage.NotFound("confession " + id)
		}
		return confession.Confession{}, err
	}
	return c, nil
}

// LetterStore implementation --------------------------------------------------

func (s *Store) CreateLetter(ctx context.Context, l letter.Letter) (letter.Letter, error) {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	if l.CreatedAt.IsZero() {
		l.CreatedAt = time.Now().UTC()
	}
	if l.Status == "" {
		l.Status = letter.StatusScheduled
	}
	if l.Type == "" {
		l.Type = letter.TypeFuture
	}
	if err := s.setJSON(ctx, letterKey(l.ID), l); err != nil {
		return letter.Letter{}, err
	}
	return l, nil
}

func (s *Store) ListLetters(ctx context.Context, authorID string) ([]letter.Letter, error) {
	keys, err := s.scanKeys(ctx, "letter:*")
	if err != nil {
		return nil, err
	}

	result := []letter.Letter{}
	for _, key := range keys {
		var l letter.Letter
		if err := s.getJSON(ctx, key, &l); err != nil {
			if storage.IsNotFound(err) {
				continue
			}
			return nil, err
		}
		if l.AuthorID == authorID {
			result = append(result, l)
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

func (s *Store) MarkOpened(ctx context.Context, id, authorID string, at time.Time) (letter.Letter, error) {
	var l letter.Letter
	if err := s.getJSON(ctx, letterKey(id), &l); err != nil {
		return letter.Letter{}, err
	}
	if l.AuthorID != authorID {
		return letter.Letter{}, storage.NotFound("letter " + id)
	}

	opened := at.UTC()
	l.Status = letter.StatusOpened
	l.OpenedAt = &opened
	if err := s.setJSON(ctx, letterKey(id), l); err != nil {
		return letter.Letter{}, err
	}
	return l, nil
}

func (s *Store) DeleteLetter(ctx context.Context, id, authorID string) error {
	var l letter.Letter
	if err := s.getJSON(ctx, letterKey(id), &l); err != nil {
		return err
	}
	if l.AuthorID != authorID {
		return storage.NotFound("letter " + id)
	}
	if err := s.rdb.Del(ctx, letterKey(id)).Err(); err != nil {
		return storage.Fatal(err)
	}
	return nil
}

func (s *Store) CountDue(ctx context.Context, before time.Time) (int, error) {
	keys, err := s.scanKeys(ctx, "letter:*")
	if err != nil {
		return 0, err
	}

	n := 0
	for _, key := range keys {
		var l letter.Letter
		if err := s.getJSON(ctx, key, &l); err != nil {
			if storage.IsNotFound(err) {
				continue
			}
			return 0, err
		}
		if l.Status == letter.StatusScheduled && !l.TargetDate.After(before) {
			n++
		}
	}
	return n, nil
}
