package memory

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/booklovin/backend/internal/app/domain/confession"
	"github.com/booklovin/backend/internal/app/domain/journal"
	"github.com/booklovin/backend/internal/app/domain/letter"
	"github.com/booklovin/backend/internal/app/domain/post"
	"github.com/booklovin/backend/internal/app/domain/shelf"
	"github.com/booklovin/backend/internal/app/domain/user"
)

// snapshot is the on-disk form of the whole store: one JSON document with a
// map per collection, keyed by record ID. Secondary indexes (email, shelf
// composite key) are rebuilt on load rather than persisted.
type snapshot struct {
	Users       map[string]user.User             `json:"users"`
	Posts       map[string]post.Post             `json:"posts"`
	Comments    map[string][]post.Comment        `json:"comments"`
	Likes       map[string]map[string]time.Time  `json:"likes"`
	Journals    map[string]journal.Entry         `json:"journals"`
	Shelves     map[string]shelf.Item            `json:"shelves"`
	Confessions map[string]confession.Confession `json:"confessions"`
	Letters     map[string]letter.Letter         `json:"letters"`
}

// load replaces the store contents with the snapshot file, if one exists.
func (s *Store) load() error {
	if s.path == "" {
		return nil
	}

	raw, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read snapshot %s: %w", s.path, err)
	}

	var snap snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return fmt.Errorf("decode snapshot %s: %w", s.path, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for id, u := range snap.Users {
		s.users[id] = u
		s.emailIndex[u.Email] = id
	}
	for id, p := range snap.Posts {
		s.posts[id] = p
	}
	for postID, list := range snap.Comments {
		s.comments[postID] = list
	}
	for postID, set := range snap.Likes {
		s.likes[postID] = set
	}
	for id, e := range snap.Journals {
		s.journals[id] = e
	}
	for _, it := range snap.Shelves {
		s.shelves[shelfKey(it.AuthorID, it.BookKey)] = it
	}
	for id, c := range snap.Confessions {
		s.confessions[id] = c
	}
	for id, l := range snap.Letters {
		s.letters[id] = l
	}

	if s.log != nil {
		s.log.WithField("path", s.path).Infof("loaded snapshot: %d users, %d posts, %d journals",
			len(s.users), len(s.posts), len(s.journals))
	}
	return nil
}

// saveLocked rewrites the snapshot file after a mutation. It is fire and
// forget: a failed write is logged and the in-memory state stays
// authoritative. Callers must hold the write lock.
func (s *Store) saveLocked() {
	if s.path == "" {
		return
	}

	shelves := make(map[string]shelf.Item, len(s.shelves))
	for _, it := range s.shelves {
		shelves[it.ID] = it
	}
	snap := snapshot{
		Users:       s.users,
		Posts:       s.posts,
		Comments:    s.comments,
		Likes:       s.likes,
		Journals:    s.journals,
		Shelves:     shelves,
		Confessions: s.confessions,
		Letters:     s.letters,
	}

	raw, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		if s.log != nil {
			s.log.WithError(err).Warn("snapshot encode failed")
		}
		return
	}
	if err := os.WriteFile(s.path, raw, 0o644); err != nil {
		if s.log != nil {
			s.log.WithError(err).Warn("snapshot write failed")
		}
	}
}
