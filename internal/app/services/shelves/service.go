// Package shelves manages per-user book shelves keyed by external catalog
// keys. Shelving the same book twice updates the existing item instead of
// duplicating it, and manual ordering is persisted per item.
package shelves

import (
	"context"
	"strings"

	"github.com/booklovin/backend/internal/app/domain/shelf"
	"github.com/booklovin/backend/internal/app/storage"
	"github.com/booklovin/backend/pkg/logger"
)

// Service provides shelf operations.
type Service struct {
	store storage.ShelfStore
	log   *logger.Logger
}

// New constructs a shelves service.
func New(store storage.ShelfStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("shelves")
	}
	return &Service{store: store, log: log}
}

// normalizeKey gives catalog keys their canonical leading slash, so
// "works/OL123W" and "/works/OL123W" address the same item.
func normalizeKey(key string) string {
	key = strings.TrimSpace(key)
	if key == "" {
		return ""
	}
	if !strings.HasPrefix(key, "/") {
		key = "/" + key
	}
	return key
}

// Upsert shelves a book, updating the existing item when the author already
// shelved it.
func (s *Service) Upsert(ctx context.Context, it shelf.Item) (shelf.Item, error) {
	if it.AuthorID == "" {
		return shelf.Item{}, storage.InvalidParameter("authorId")
	}
	it.BookKey = normalizeKey(it.BookKey)
	if it.BookKey == "" {
		return shelf.Item{}, storage.InvalidParameter("ol_key")
	}
	if it.Status == "" {
		it.Status = shelf.StatusWantToRead
	}
	if it.ProgressPercent < 0 || it.ProgressPercent > 100 {
		return shelf.Item{}, storage.InvalidParameter("progress_percent")
	}
	return s.store.UpsertItem(ctx, it)
}

// List returns the author's shelf in display order.
func (s *Service) List(ctx context.Context, authorID string) ([]shelf.Item, error) {
	if authorID == "" {
		return nil, storage.InvalidParameter("authorId")
	}
	return s.store.ListShelf(ctx, authorID)
}

// GroupedByStatus returns the shelf split into its reading-pipeline lanes,
// each lane keeping the display order.
func (s *Service) GroupedByStatus(ctx context.Context, authorID string) (map[shelf.Status][]shelf.Item, error) {
	items, err := s.List(ctx, authorID)
	if err != nil {
		return nil, err
	}
	grouped := map[shelf.Status][]shelf.Item{
		shelf.StatusWantToRead: {},
		shelf.StatusReading:    {},
		shelf.StatusRead:       {},
	}
	for _, it := range items {
		grouped[it.Status] = append(grouped[it.Status], it)
	}
	return grouped, nil
}

// Remove takes a book off the shelf.
func (s *Service) Remove(ctx context.Context, authorID, bookKey string) error {
	return s.store.RemoveItem(ctx, authorID, normalizeKey(bookKey))
}

// SetProgress records reading progress as a 0-100 percentage.
func (s *Service) SetProgress(ctx context.Context, authorID, bookKey string, percent int) (shelf.Item, error) {
	if percent < 0 || percent > 100 {
		return shelf.Item{}, storage.InvalidParameter("progress_percent")
	}
	return s.store.SetProgress(ctx, authorID, normalizeKey(bookKey), percent)
}

// SetFavorite toggles the favorite flag on a shelved book.
func (s *Service) SetFavorite(ctx context.Context, authorID, bookKey string, favorite bool) (shelf.Item, error) {
	return s.store.SetFavorite(ctx, authorID, normalizeKey(bookKey), favorite)
}

// Reorder rewrites the shelf's display order from the given key sequence.
// Each key's position becomes its sort order. Keys that do not match a
// shelved book are skipped; if nothing matched at all the shelf is reported
// missing. The writes are independent, so a crash mid-way can leave a
// partially applied order; the next reorder repairs it.
func (s *Service) Reorder(ctx context.Context, authorID string, orderedKeys []string) ([]shelf.Item, error) {
	if authorID == "" {
		return nil, storage.InvalidParameter("authorId")
	}
	if len(orderedKeys) == 0 {
		return nil, storage.InvalidParameter("order")
	}

	matched := 0
	for i, key := range orderedKeys {
		ok, err := s.store.SetSortOrder(ctx, authorID, normalizeKey(key), i)
		if err != nil {
			return nil, err
		}
		if ok {
			matched++
		}
	}
	if matched == 0 {
		return nil, storage.NotFound("shelf for " + authorID)
	}
	if matched < len(orderedKeys) {
		s.log.WithField("author", authorID).
			Warnf("reorder matched %d of %d keys", matched, len(orderedKeys))
	}
	return s.store.ListShelf(ctx, authorID)
}
