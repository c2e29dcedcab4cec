// Package journal owns private journal entries and the writing-streak engine.
// Every entry create or update feeds the author's streak state; streak
// arithmetic is a pure function over midnight-normalized UTC days.
package journal

import (
	"context"
	"strings"
	"time"

	"github.com/booklovin/backend/internal/app/domain/journal"
	"github.com/booklovin/backend/internal/app/metrics"
	"github.com/booklovin/backend/internal/app/storage"
	"github.com/booklovin/backend/pkg/logger"
)

// Store is the slice of storage the journal service needs.
type Store interface {
	storage.JournalStore
	storage.UserStore
}

// Service provides journal entry operations.
type Service struct {
	store Store
	log   *logger.Logger
	now   func() time.Time
}

// New constructs a journal service.
func New(store Store, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("journal")
	}
	return &Service{store: store, log: log, now: func() time.Time { return time.Now().UTC() }}
}

// Create writes a new entry and advances the author's streak. A streak write
// that fails does not roll the entry back; the entry is the source of truth
// and the streak is derived bookkeeping.
func (s *Service) Create(ctx context.Context, e journal.Entry) (journal.Entry, error) {
	if e.AuthorID == "" {
		return journal.Entry{}, storage.InvalidParameter("authorId")
	}
	if strings.TrimSpace(e.Content) == "" {
		return journal.Entry{}, storage.InvalidParameter("content")
	}

	created, err := s.store.CreateEntry(ctx, e)
	if err != nil {
		return journal.Entry{}, err
	}
	metrics.RecordJournalEntry()

	if err := s.advanceStreak(ctx, created.AuthorID, created.CreatedAt); err != nil {
		s.log.WithError(err).WithField("user", created.AuthorID).Warn("streak update failed")
	}
	return created, nil
}

// Get returns an entry, visible to its author only.
func (s *Service) Get(ctx context.Context, id, authorID string) (journal.Entry, error) {
	e, err := s.store.GetEntry(ctx, id)
	if err != nil {
		return journal.Entry{}, err
	}
	if e.AuthorID != authorID {
		return journal.Entry{}, storage.NotFound("journal entry " + id)
	}
	return e, nil
}

// Update patches an entry's mutable fields. The streak engine re-runs on the
// entry's creation date, so a streak write that failed at create time is
// repaired on the next edit.
func (s *Service) Update(ctx context.Context, id, authorID string, patch storage.EntryPatch) (journal.Entry, error) {
	updated, err := s.store.UpdateEntry(ctx, id, authorID, patch)
	if err != nil {
		return journal.Entry{}, err
	}
	if err := s.advanceStreak(ctx, updated.AuthorID, updated.CreatedAt); err != nil {
		s.log.WithError(err).WithField("user", updated.AuthorID).Warn("streak update failed")
	}
	return updated, nil
}

// Delete removes an entry. The streak is deliberately left alone; deleting an
// entry does not rewrite streak history.
func (s *Service) Delete(ctx context.Context, id, authorID string) error {
	return s.store.DeleteEntry(ctx, id, authorID)
}

// Query lists the author's entries, newest first, optionally narrowed by
// mood, favorite flag or text search.
func (s *Service) Query(ctx context.Context, authorID string, f storage.EntryFilter) ([]journal.Entry, error) {
	if authorID == "" {
		return nil, storage.InvalidParameter("authorId")
	}
	return s.store.QueryEntries(ctx, authorID, f)
}

func (s *Service) advanceStreak(ctx context.Context, authorID string, entryDate time.Time) error {
	u, err := s.store.GetUser(ctx, authorID)
	if err != nil {
		return err
	}
	upd, changed := updateStreak(entryDate, u, s.now())
	metrics.RecordStreakTransition(streakOutcome(upd, changed))
	if !changed {
		return nil
	}
	return s.store.UpdateUserStreak(ctx, authorID, upd)
}
