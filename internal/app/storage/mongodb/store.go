// Package mongodb is the document-store adapter. It leans on engine
// primitives for the contract's hard parts: unique indexes back duplicate
// detection, FindOneAndUpdate gives atomic conditional updates for shelf
// items, and an aggregation pipeline computes the popularity ranking
// server-side.
package mongodb

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/booklovin/backend/internal/app/domain/confession"
	"github.com/booklovin/backend/internal/app/domain/journal"
	"github.com/booklovin/backend/internal/app/domain/letter"
	"github.com/booklovin/backend/internal/app/domain/post"
	"github.com/booklovin/backend/internal/app/domain/shelf"
	"github.com/booklovin/backend/internal/app/domain/user"
	"github.com/booklovin/backend/internal/app/storage"
	"github.com/booklovin/backend/pkg/logger"
)

const (
	colUsers       = "users"
	colPosts       = "posts"
	colComments    = "comments"
	colLikes       = "likes"
	colJournals    = "journals"
	colShelves     = "shelves"
	colConfessions = "confessions"
	colLetters     = "letters"
)

// Store implements the storage interfaces on a MongoDB database.
type Store struct {
	db  *mongo.Database
	log *logger.Logger
}

var _ storage.Store = (*Store)(nil)

// New wraps a connected database handle. The caller owns the client
// lifecycle and should run EnsureIndexes before serving traffic.
func New(db *mongo.Database, log *logger.Logger) *Store {
	if log == nil {
		log = logger.NewDefault("mongodb")
	}
	return &Store{db: db, log: log}
}

// UserStore implementation ----------------------------------------------------

func (s *Store) CreateUser(ctx context.Context, u user.User) (user.User, error) {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.Collection(colUsers).InsertOne(ctx, u)
	if mongo.IsDuplicateKeyError(err) {
		return user.User{}, storage.AlreadyExists("A user with this email already exists.")
	}
	if err != nil {
		return user.User{}, storage.Fatal(err)
	}
	return u, nil
}

func (s *Store) GetUser(ctx context.Context, id string) (user.User, error) {
	var u user.User
	err := s.db.Collection(colUsers).FindOne(ctx, bson.M{"uid": id}).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return user.User{}, storage.NotFound("user " + id)
	}
	if err != nil {
		return user.User{}, storage.Fatal(err)
	}
	return u, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (user.User, error) {
	var u user.User
	err := s.db.Collection(colUsers).FindOne(ctx, bson.M{"email": email}).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return user.User{}, storage.NotFound("user " + email)
	}
	if err != nil {
		return user.User{}, storage.Fatal(err)
	}
	return u, nil
}

func (s *Store) UpdateUserStreak(ctx context.Context, id string, upd storage.StreakUpdate) error {
	set := bson.M{}
	unset := bson.M{}
	if upd.CurrentStreak != nil {
		set["currentStreak"] = *upd.CurrentStreak
	}
	if upd.LongestStreak != nil {
		set["longestStreak"] = *upd.LongestStreak
	}
	if upd.ClearStreakStart {
		unset["currentStreakStart"] = ""
	} else if upd.StreakStart != nil {
		set["currentStreakStart"] = upd.StreakStart.UTC()
	}
	if upd.LastJournalDate != nil {
		set["lastJournalDate"] = upd.LastJournalDate.UTC()
	}

	update := bson.M{}
	if len(set) > 0 {
		update["$set"] = set
	}
	if len(unset) > 0 {
		update["$unset"] = unset
	}
	if len(update) == 0 {
		// Empty sparse update still has to validate existence.
		_, err := s.GetUser(ctx, id)
		return err
	}

	res, err := s.db.Collection(colUsers).UpdateOne(ctx, bson.M{"uid": id}, update)
	if err != nil {
		return storage.Fatal(err)
	}
	if res.MatchedCount == 0 {
		return storage.NotFound("user " + id)
	}
	return nil
}

// PostStore implementation ----------------------------------------------------

func (s *Store) CreatePost(ctx context.Context, p post.Post) (post.Post, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	p.Likes = 0

	_, err := s.db.Collection(colPosts).InsertOne(ctx, p)
	if mongo.IsDuplicateKeyError(err) {
		return post.Post{}, storage.AlreadyExists("post " + p.ID)
	}
	if err != nil {
		return post.Post{}, storage.Fatal(err)
	}
	return p, nil
}

func (s *Store) GetPost(ctx context.Context, id string) (post.Post, error) {
	var p post.Post
	err := s.db.Collection(colPosts).FindOne(ctx, bson.M{"uid": id}).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return post.Post{}, storage.NotFound("post " + id)
	}
	if err != nil {
		return post.Post{}, storage.Fatal(err)
	}
	if err := s.attachLikeCount(ctx, &p); err != nil {
		return post.Post{}, err
	}
	return p, nil
}

func (s *Store) ListPosts(ctx context.Context, start, end int) ([]post.Post, error) {
	if start < 0 {
		start = 0
	}
	if end <= start {
		return []post.Post{}, nil
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "creationTime", Value: -1}, {Key: "uid", Value: -1}}).
		SetSkip(int64(start)).
		SetLimit(int64(end - start))
	return s.findPosts(ctx, bson.M{}, opts)
}

func (s *Store) UpdatePost(ctx context.Context, id string, patch storage.PostPatch) (post.Post, error) {
	set := bson.M{}
	if patch.Title != nil {
		set["title"] = *patch.Title
	}
	if patch.Content != nil {
		set["content"] = *patch.Content
	}
	if patch.Links != nil {
		set["links"] = *patch.Links
	}
	if patch.ImageURL != nil {
		set["imageUrl"] = *patch.ImageURL
	}
	if len(set) == 0 {
		return s.GetPost(ctx, id)
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var p post.Post
	err := s.db.Collection(colPosts).
		FindOneAndUpdate(ctx, bson.M{"uid": id}, bson.M{"$set": set}, opts).
		Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return post.Post{}, storage.NotFound("post " + id)
	}
	if err != nil {
		return post.Post{}, storage.Fatal(err)
	}
	if err := s.attachLikeCount(ctx, &p); err != nil {
		return post.Post{}, err
	}
	return p, nil
}

func (s *Store) DeletePost(ctx context.Context, id string) error {
	res, err := s.db.Collection(colPosts).DeleteOne(ctx, bson.M{"uid": id})
	if err != nil {
		return storage.Fatal(err)
	}
	if res.DeletedCount == 0 {
		return storage.NotFound("post " + id)
	}
	if _, err := s.db.Collection(colLikes).DeleteMany(ctx, bson.M{"postId": id}); err != nil {
		return storage.Fatal(err)
	}
	if _, err := s.db.Collection(colComments).DeleteMany(ctx, bson.M{"postId": id}); err != nil {
		return storage.Fatal(err)
	}
	return nil
}

func (s *Store) RecentPosts(ctx context.Context, authorID string, limit int) ([]post.Post, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "creationTime", Value: -1}, {Key: "uid", Value: -1}}).
		SetLimit(int64(limit))
	return s.findPosts(ctx, bson.M{"authorId": authorID}, opts)
}

func (s *Store) findPosts(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]post.Post, error) {
	cur, err := s.db.Collection(colPosts).Find(ctx, filter, opts)
	if err != nil {
		return nil, storage.Fatal(err)
	}
	var posts []post.Post
	if err := cur.All(ctx, &posts); err != nil {
		return nil, storage.Fatal(err)
	}
	for i := range posts {
		if err := s.attachLikeCount(ctx, &posts[i]); err != nil {
			return nil, err
		}
	}
	if posts == nil {
		posts = []post.Post{}
	}
	return posts, nil
}

func (s *Store) attachLikeCount(ctx context.Context, p *post.Post) error {
	n, err := s.db.Collection(colLikes).CountDocuments(ctx, bson.M{"postId": p.ID})
	if err != nil {
		return storage.Fatal(err)
	}
	p.Likes = int(n)
	return nil
}

// CommentStore implementation -------------------------------------------------

func (s *Store) AddComment(ctx context.Context, c post.Comment) (post.Comment, error) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	if _, err := s.db.Collection(colComments).InsertOne(ctx, c); err != nil {
		return post.Comment{}, storage.Fatal(err)
	}
	return c, nil
}

func (s *Store) ListComments(ctx context.Context, postID string) ([]post.Comment, error) {
	opts := options.Find().SetSort(bson.D{{Key: "creationTime", Value: 1}, {Key: "uid", Value: 1}})
	cur, err := s.db.Collection(colComments).Find(ctx, bson.M{"postId": postID}, opts)
	if err != nil {
		return nil, storage.Fatal(err)
	}
	var list []post.Comment
	if err := cur.All(ctx, &list); err != nil {
		return nil, storage.Fatal(err)
	}
	if list == nil {
		list = []post.Comment{}
	}
	return list, nil
}

func (s *Store) DeleteComment(ctx context.Context, postID, commentID string) error {
	res, err := s.db.Collection(colComments).DeleteOne(ctx, bson.M{"postId": postID, "uid": commentID})
	if err != nil {
		return storage.Fatal(err)
	}
	if res.DeletedCount == 0 {
		return storage.NotFound("comment " + commentID)
	}
	return nil
}

// LikeStore implementation ----------------------------------------------------

func (s *Store) AddLike(ctx context.Context, postID, userID string, at time.Time) error {
	like := post.Like{PostID: postID, UserID: userID, CreatedAt: at.UTC()}
	_, err := s.db.Collection(colLikes).InsertOne(ctx, like)
	if mongo.IsDuplicateKeyError(err) {
		return nil // repeat like, keep the original timestamp
	}
	if err != nil {
		return storage.Fatal(err)
	}
	return nil
}

func (s *Store) LikeCount(ctx context.Context, postID string) (int, error) {
	n, err := s.db.Collection(colLikes).CountDocuments(ctx, bson.M{"postId": postID})
	if err != nil {
		return 0, storage.Fatal(err)
	}
	return int(n), nil
}

func (s *Store) TopLiked(ctx context.Context, since time.Time, limit int) ([]storage.LikeTally, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"createdAt": bson.M{"$gte": since.UTC()}}}},
		{{Key: "$group", Value: bson.M{"_id": "$postId", "count": bson.M{"$sum": 1}}}},
		{{Key: "$sort", Value: bson.D{{Key: "count", Value: -1}, {Key: "_id", Value: 1}}}},
	}
	if limit > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$limit", Value: limit}})
	}

	cur, err := s.db.Collection(colLikes).Aggregate(ctx, pipeline)
	if err != nil {
		return nil, storage.Fatal(err)
	}
	var rows []struct {
		PostID string `bson:"_id"`
		Count  int    `bson:"count"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, storage.Fatal(err)
	}

	tallies := make([]storage.LikeTally, 0, len(rows))
	for _, r := range rows {
		tallies = append(tallies, storage.LikeTally{PostID: r.PostID, Count: r.Count})
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
	if _, err := s.db.Collection(colJournals).InsertOne(ctx, e); err != nil {
		return journal.Entry{}, storage.Fatal(err)
	}
	return e, nil
}

func (s *Store) GetEntry(ctx context.Context, id string) (journal.Entry, error) {
	var e journal.Entry
	err := s.db.Collection(colJournals).FindOne(ctx, bson.M{"uid": id}).Decode(&e)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return journal.Entry{}, storage.NotFound("journal entry " + id)
	}
	if err != nil {
		return journal.Entry{}, storage.Fatal(err)
	}
	return e, nil
}

func (s *Store) UpdateEntry(ctx context.Context, id, authorID string, patch storage.EntryPatch) (journal.Entry, error) {
	set := bson.M{"updatedAt": time.Now().UTC()}
	if patch.Title != nil {
		set["title"] = *patch.Title
	}
	if patch.Content != nil {
		set["content"] = *patch.Content
	}
	if patch.Mood != nil {
		set["mood"] = *patch.Mood
	}
	if patch.Tags != nil {
		set["tags"] = *patch.Tags
	}
	if patch.Favorite != nil {
		set["favorite"] = *patch.Favorite
	}
	if patch.WritingTime != nil {
		set["writingTime"] = *patch.WritingTime
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var e journal.Entry
	err := s.db.Collection(colJournals).
		FindOneAndUpdate(ctx, bson.M{"uid": id, "authorId": authorID}, bson.M{"$set": set}, opts).
		Decode(&e)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return journal.Entry{}, storage.NotFound("journal entry " + id)
	}
	if err != nil {
		return journal.Entry{}, storage.Fatal(err)
	}
	return e, nil
}

func (s *Store) DeleteEntry(ctx context.Context, id, authorID string) error {
	res, err := s.db.Collection(colJournals).DeleteOne(ctx, bson.M{"uid": id, "authorId": authorID})
	if err != nil {
		return storage.Fatal(err)
	}
	if res.DeletedCount == 0 {
		return storage.NotFound("journal entry " + id)
	}
	return nil
}

func (s *Store) QueryEntries(ctx context.Context, authorID string, f storage.EntryFilter) ([]journal.Entry, error) {
	filter := bson.M{"authorId": authorID}
	if f.Mood != nil {
		filter["mood"] = *f.Mood
	}
	if f.Favorite != nil {
		filter["favorite"] = *f.Favorite
	}
	if f.Search != "" {
		filter["$text"] = bson.M{"$search": f.Search}
	}

	opts := options.Find().SetSort(bson.D{{Key: "creationTime", Value: -1}, {Key: "uid", Value: -1}})
	cur, err := s.db.Collection(colJournals).Find(ctx, filter, opts)
	if err != nil {
		return nil, storage.Fatal(err)
	}
	var entries []journal.Entry
	if err := cur.All(ctx, &entries); err != nil {
		return nil, storage.Fatal(err)
	}
	if entries == nil {
		entries = []journal.Entry{}
	}
	return entries, nil
}

// ShelfStore implementation ---------------------------------------------------

func (s *Store) UpsertItem(ctx context.Context, it shelf.Item) (shelf.Item, error) {
	if it.ID == "" {
		it.ID = uuid.NewString()
	}
	if it.CreatedAt.IsZero() {
		it.CreatedAt = time.Now().UTC()
	}

	filter := bson.M{"authorId": it.AuthorID, "ol_key": it.BookKey}
	update := bson.M{
		"$set": bson.M{
			"title":            it.Title,
			"status":           it.Status,
			"cover_id":         it.CoverID,
			"author_names":     it.AuthorNames,
			"page_count":       it.PageCount,
			"progress_percent": it.ProgressPercent,
			"is_favorite":      it.Favorite,
			"sort_order":       it.SortOrder,
		},
		// Identity fields are written once; re-shelving a book keeps them.
		"$setOnInsert": bson.M{
			"uid":          it.ID,
			"authorId":     it.AuthorID,
			"ol_key":       it.BookKey,
			"creationTime": it.CreatedAt,
		},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var out shelf.Item
	if err := s.db.Collection(colShelves).FindOneAndUpdate(ctx, filter, update, opts).Decode(&out); err != nil {
		return shelf.Item{}, storage.Fatal(err)
	}
	return out, nil
}

func (s *Store) ListShelf(ctx context.Context, authorID string) ([]shelf.Item, error) {
	opts := options.Find().SetSort(bson.D{
		{Key: "sort_order", Value: 1},
		{Key: "creationTime", Value: -1},
		{Key: "ol_key", Value: 1},
	})
	cur, err := s.db.Collection(colShelves).Find(ctx, bson.M{"authorId": authorID}, opts)
	if err != nil {
		return nil, storage.Fatal(err)
	}
	var items []shelf.Item
	if err := cur.All(ctx, &items); err != nil {
		return nil, storage.Fatal(err)
	}
	if items == nil {
		items = []shelf.Item{}
	}
	return items, nil
}

func (s *Store) RemoveItem(ctx context.Context, authorID, bookKey string) error {
	res, err := s.db.Collection(colShelves).DeleteOne(ctx, bson.M{"authorId": authorID, "ol_key": bookKey})
	if err != nil {
		return storage.Fatal(err)
	}
	if res.DeletedCount == 0 {
		return storage.NotFound("shelf item " + bookKey)
	}
	return nil
}

func (s *Store) SetProgress(ctx context.Context, authorID, bookKey string, percent int) (shelf.Item, error) {
	return s.setItemField(ctx, authorID, bookKey, bson.M{"progress_percent": percent})
}

func (s *Store) SetFavorite(ctx context.Context, authorID, bookKey string, favorite bool) (shelf.Item, error) {
	return s.setItemField(ctx, authorID, bookKey, bson.M{"is_favorite": favorite})
}

func (s *Store) SetSortOrder(ctx context.Context, authorID, bookKey string, order int) (bool, error) {
	res, err := s.db.Collection(colShelves).UpdateOne(ctx,
		bson.M{"authorId": authorID, "ol_key": bookKey},
		bson.M{"$set": bson.M{"sort_order": order}})
	if err != nil {
		return false, storage.Fatal(err)
	}
	return res.MatchedCount > 0, nil
}

func (s *Store) setItemField(ctx context.Context, authorID, bookKey string, set bson.M) (shelf.Item, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var it shelf.Item
	err := s.db.Collection(colShelves).
		FindOneAndUpdate(ctx, bson.M{"authorId": authorID, "ol_key": bookKey}, bson.M{"$set": set}, opts).
		Decode(&it)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return shelf.Item{}, storage.NotFound("shelf item " + bookKey)
	}
	if err != nil {
		return shelf.Item{}, storage.Fatal(err)
	}
	return it, nil
}

// ConfessionStore implementation ----------------------------------------------

func (s *Store) CreateConfession(ctx context.Context, c confession.Confession) (confession.Confession, error) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	if _, err := s.db.Collection(colConfessions).InsertOne(ctx, c); err != nil {
		return confession.Confession{}, storage.Fatal(err)
	}
	return c, nil
}

func (s *Store) ListConfessions(ctx context.Context) ([]confession.Confession, error) {
	opts := options.Find().SetSort(bson.D{{Key: "creationTime", Value: -1}, {Key: "uid", Value: -1}})
	cur, err := s.db.Collection(colConfessions).Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, storage.Fatal(err)
	}
	var confessions []confession.Confession
	if err := cur.All(ctx, &confessions); err != nil {
		return nil, storage.Fatal(err)
	}
	if confessions == nil {
		confessions = []confession.Confession{}
	}
	return confessions, nil
}

func (s *Store) GetConfession(ctx context.Context, id string) (confession.Confession, error) {
	var c confession.Confession
	err := s.db.Collection(colConfessions).FindOne(ctx, bson.M{"uid": id}).Decode(&c)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return confession.Confession{}, storage.NotFound("confession " + id)
	}
	if err != nil {
		return confession.Confession{}, storage.Fatal(err)
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
	if _, err := s.db.Collection(colLetters).InsertOne(ctx, l); err != nil {
		return letter.Letter{}, storage.Fatal(err)
	}
	return l, nil
}

func (s *Store) ListLetters(ctx context.Context, authorID string) ([]letter.Letter, error) {
	opts := options.Find().SetSort(bson.D{{Key: "target_date", Value: -1}, {Key: "uid", Value: -1}})
	cur, err := s.db.Collection(colLetters).Find(ctx, bson.M{"authorId": authorID}, opts)
	if err != nil {
		return nil, storage.Fatal(err)
	}
	var letters []letter.Letter
	if err := cur.All(ctx, &letters); err != nil {
		return nil, storage.Fatal(err)
	}
	if letters == nil {
		letters = []letter.Letter{}
	}
	return letters, nil
}

func (s *Store) MarkOpened(ctx context.Context, id, authorID string, at time.Time) (letter.Letter, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var l letter.Letter
	err := s.db.Collection(colLetters).
		FindOneAndUpdate(ctx, bson.M{"uid": id, "authorId": authorID},
			bson.M{"$set": bson.M{"status": letter.StatusOpened, "opened_at": at.UTC()}}, opts).
		Decode(&l)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return letter.Letter{}, storage.NotFound("letter " + id)
	}
	if err != nil {
		return letter.Letter{}, storage.Fatal(err)
	}
	return l, nil
}

func (s *Store) DeleteLetter(ctx context.Context, id, authorID string) error {
	res, err := s.db.Collection(colLetters).DeleteOne(ctx, bson.M{"uid": id, "authorId": authorID})
	if err != nil {
		return storage.Fatal(err)
	}
	if res.DeletedCount == 0 {
		return storage.NotFound("letter " + id)
	}
	return nil
}

func (s *Store) CountDue(ctx context.Context, before time.Time) (int, error) {
	n, err := s.db.Collection(colLetters).CountDocuments(ctx, bson.M{
		"status":      letter.StatusScheduled,
		"target_date": bson.M{"$lte": before.UTC()},
	})
	if err != nil {
		return 0, storage.Fatal(err)
	}
	return int(n), nil
}
