// Package posts owns the public feed: post CRUD, comments, likes and the
// popularity ranking. Like counts are always derived from the like set, never
// stored as counters, so a failed or repeated like can never skew them.
package posts

import (
	"context"
	"strings"
	"time"

	"github.com/booklovin/backend/internal/app/domain/post"
	"github.com/booklovin/backend/internal/app/metrics"
	"github.com/booklovin/backend/internal/app/storage"
	"github.com/booklovin/backend/pkg/logger"
)

const (
	// MaxListWindow caps a single feed page. Wider requests are treated as
	// abusive and rejected outright.
	MaxListWindow = 40

	// RecentPostsLimit is the fixed size of a profile's recent-posts strip.
	RecentPostsLimit = 10
)

// Store is the slice of storage the posts service needs.
type Store interface {
	storage.PostStore
	storage.CommentStore
	storage.LikeStore
}

// Service provides feed operations.
type Service struct {
	store Store
	log   *logger.Logger
	now   func() time.Time
}

// New constructs a posts service.
func New(store Store, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("posts")
	}
	return &Service{store: store, log: log, now: func() time.Time { return time.Now().UTC() }}
}

// Create publishes a new post.
func (s *Service) Create(ctx context.Context, p post.Post) (post.Post, error) {
	if p.AuthorID == "" {
		return post.Post{}, storage.InvalidParameter("authorId")
	}
	if strings.TrimSpace(p.Content) == "" {
		return post.Post{}, storage.InvalidParameter("content")
	}
	created, err := s.store.CreatePost(ctx, p)
	if err != nil {
		return post.Post{}, err
	}
	metrics.RecordPostPublished()
	s.log.WithField("post", created.ID).Info("post published")
	return created, nil
}

// Get returns a single post with its derived like count.
func (s *Service) Get(ctx context.Context, id string) (post.Post, error) {
	if id == "" {
		return post.Post{}, storage.InvalidParameter("id")
	}
	return s.store.GetPost(ctx, id)
}

// List returns the [start, end) feed window, most recent first. Windows wider
// than MaxListWindow are rejected.
func (s *Service) List(ctx context.Context, start, end int) ([]post.Post, error) {
	if start < 0 || end < start {
		return nil, storage.InvalidParameter("range")
	}
	if end-start > MaxListWindow {
		return nil, storage.InvalidParameter("abusive usage")
	}
	return s.store.ListPosts(ctx, start, end)
}

// Update edits a post. Only the author may edit.
func (s *Service) Update(ctx context.Context, id, actorID string, patch storage.PostPatch) (post.Post, error) {
	p, err := s.store.GetPost(ctx, id)
	if err != nil {
		return post.Post{}, err
	}
	if p.AuthorID != actorID {
		return post.Post{}, storage.PermissionDenied("post " + id)
	}
	return s.store.UpdatePost(ctx, id, patch)
}

// Delete removes a post with its comments and likes. Only the author may
// delete.
func (s *Service) Delete(ctx context.Context, id, actorID string) error {
	p, err := s.store.GetPost(ctx, id)
	if err != nil {
		return err
	}
	if p.AuthorID != actorID {
		return storage.PermissionDenied("post " + id)
	}
	return s.store.DeletePost(ctx, id)
}

// Recent returns the author's latest posts for their profile strip.
func (s *Service) Recent(ctx context.Context, authorID string) ([]post.Post, error) {
	if authorID == "" {
		return nil, storage.InvalidParameter("authorId")
	}
	return s.store.RecentPosts(ctx, authorID, RecentPostsLimit)
}

// Like records that a user liked a post. Repeats are silent no-ops; liking a
// missing post reports not-found.
func (s *Service) Like(ctx context.Context, postID, userID string) error {
	if userID == "" {
		return storage.InvalidParameter("userId")
	}
	if _, err := s.store.GetPost(ctx, postID); err != nil {
		return err
	}
	if err := s.store.AddLike(ctx, postID, userID, s.now()); err != nil {
		return err
	}
	metrics.RecordLike()
	return nil
}

// LikeCount returns the number of distinct users who liked the post.
func (s *Service) LikeCount(ctx context.Context, postID string) (int, error) {
	return s.store.LikeCount(ctx, postID)
}

// Popular ranks posts by likes received in the trailing window. Posts deleted
// since their likes were recorded are dropped from the result.
func (s *Service) Popular(ctx context.Context, windowDays, limit int) ([]post.Post, error) {
	if windowDays <= 0 || limit <= 0 {
		return nil, storage.InvalidParameter("window")
	}
	since := s.now().AddDate(0, 0, -windowDays)
	tallies, err := s.store.TopLiked(ctx, since, limit)
	if err != nil {
		return nil, err
	}

	result := make([]post.Post, 0, len(tallies))
	for _, tally := range tallies {
		p, err := s.store.GetPost(ctx, tally.PostID)
		if storage.IsNotFound(err) {
			continue
		}
		if err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	return result, nil
}

// Comment attaches a comment to a post.
func (s *Service) Comment(ctx context.Context, postID, authorID, content string) (post.Comment, error) {
	if strings.TrimSpace(content) == "" {
		return post.Comment{}, storage.InvalidParameter("content")
	}
	if authorID == "" {
		return post.Comment{}, storage.InvalidParameter("authorId")
	}
	if _, err := s.store.GetPost(ctx, postID); err != nil {
		return post.Comment{}, err
	}
	return s.store.AddComment(ctx, post.Comment{PostID: postID, AuthorID: authorID, Content: content})
}

// Comments lists a post's comments oldest first.
func (s *Service) Comments(ctx context.Context, postID string) ([]post.Comment, error) {
	if _, err := s.store.GetPost(ctx, postID); err != nil {
		return nil, err
	}
	return s.store.ListComments(ctx, postID)
}

// DeleteComment removes a comment. Moderation rights belong to the post's
// author; everyone else is denied.
func (s *Service) DeleteComment(ctx context.Context, postID, commentID, actorID string) error {
	p, err := s.store.GetPost(ctx, postID)
	if err != nil {
		return err
	}
	if p.AuthorID != actorID {
		return storage.PermissionDenied("comment " + commentID)
	}
	return s.store.DeleteComment(ctx, postID, commentID)
}
