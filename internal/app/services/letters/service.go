// Package letters manages time-capsule letters: messages a user writes now
// and opens on (or after) a chosen target date. A background sweeper keeps an
// operational gauge of letters that have come due.
package letters

import (
	"context"
	"strings"
	"time"

	"github.com/booklovin/backend/internal/app/domain/letter"
	"github.com/booklovin/backend/internal/app/storage"
	"github.com/booklovin/backend/pkg/logger"
)

// Service provides letter operations.
type Service struct {
	store storage.LetterStore
	log   *logger.Logger
	now   func() time.Time
}

// New constructs a letters service.
func New(store storage.LetterStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("letters")
	}
	return &Service{store: store, log: log, now: func() time.Time { return time.Now().UTC() }}
}

// Create schedules a new letter. The word count is computed here so clients
// cannot fabricate it.
func (s *Service) Create(ctx context.Context, l letter.Letter) (letter.Letter, error) {
	if l.AuthorID == "" {
		return letter.Letter{}, storage.InvalidParameter("authorId")
	}
	if strings.TrimSpace(l.Content) == "" {
		return letter.Letter{}, storage.InvalidParameter("content")
	}
	if l.TargetDate.IsZero() {
		return letter.Letter{}, storage.InvalidParameter("target_date")
	}
	if l.Type != "" && l.Type != letter.TypeFuture && l.Type != letter.TypePast {
		return letter.Letter{}, storage.InvalidParameter("type")
	}
	l.WordCount = len(strings.Fields(l.Content))
	l.Status = letter.StatusScheduled
	l.OpenedAt = nil

	return s.store.CreateLetter(ctx, l)
}

// List returns the author's letters, latest target date first.
func (s *Service) List(ctx context.Context, authorID string) ([]letter.Letter, error) {
	if authorID == "" {
		return nil, storage.InvalidParameter("authorId")
	}
	return s.store.ListLetters(ctx, authorID)
}

// Open marks a letter opened at the current time. Opening is idempotent at
// the storage level; re-opening simply refreshes the opened timestamp.
func (s *Service) Open(ctx context.Context, id, authorID string) (letter.Letter, error) {
	return s.store.MarkOpened(ctx, id, authorID, s.now())
}

// Delete removes a letter.
func (s *Service) Delete(ctx context.Context, id, authorID string) error {
	return s.store.DeleteLetter(ctx, id, authorID)
}

// CountDue counts scheduled letters whose target date has passed.
func (s *Service) CountDue(ctx context.Context) (int, error) {
	return s.store.CountDue(ctx, s.now())
}
