// Package confessions manages the shared confession wall: short anonymous
// posts visible to everyone. The author is stored for accountability but
// stripped from everything the service hands back, so anonymity cannot depend
// on the transport layer remembering to do it.
package confessions

import (
	"context"
	"strings"

	"github.com/booklovin/backend/internal/app/domain/confession"
	"github.com/booklovin/backend/internal/app/storage"
	"github.com/booklovin/backend/pkg/logger"
)

// MaxTags caps the tag list on a confession.
const MaxTags = 10

// Service provides confession operations.
type Service struct {
	store storage.ConfessionStore
	log   *logger.Logger
}

// New constructs a confessions service.
func New(store storage.ConfessionStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("confessions")
	}
	return &Service{store: store, log: log}
}

// Create posts a confession on behalf of authorID.
func (s *Service) Create(ctx context.Context, authorID string, c confession.Confession) (confession.Confession, error) {
	if authorID == "" {
		return confession.Confession{}, storage.InvalidParameter("authorId")
	}
	if strings.TrimSpace(c.Content) == "" {
		return confession.Confession{}, storage.InvalidParameter("content")
	}
	if len(c.Tags) > MaxTags {
		return confession.Confession{}, storage.InvalidParameter("tags")
	}
	c.AuthorID = authorID

	created, err := s.store.CreateConfession(ctx, c)
	if err != nil {
		return confession.Confession{}, err
	}
	return anonymize(created), nil
}

// List returns every confession, most recent first, with authors stripped.
func (s *Service) List(ctx context.Context) ([]confession.Confession, error) {
	all, err := s.store.ListConfessions(ctx)
	if err != nil {
		return nil, err
	}
	for i := range all {
		all[i] = anonymize(all[i])
	}
	return all, nil
}

// Get returns one confession with the author stripped.
func (s *Service) Get(ctx context.Context, id string) (confession.Confession, error) {
	c, err := s.store.GetConfession(ctx, id)
	if err != nil {
		return confession.Confession{}, err
	}
	return anonymize(c), nil
}

func anonymize(c confession.Confession) confession.Confession {
	c.AuthorID = ""
	return c
}
