package app

import (
	"context"
	"fmt"

	confessionssvc "github.com/booklovin/backend/internal/app/services/confessions"
	journalsvc "github.com/booklovin/backend/internal/app/services/journal"
	letterssvc "github.com/booklovin/backend/internal/app/services/letters"
	postssvc "github.com/booklovin/backend/internal/app/services/posts"
	shelvessvc "github.com/booklovin/backend/internal/app/services/shelves"
	userssvc "github.com/booklovin/backend/internal/app/services/users"
	"github.com/booklovin/backend/internal/app/storage"
	"github.com/booklovin/backend/internal/app/storage/memory"
	"github.com/booklovin/backend/internal/app/system"
	"github.com/booklovin/backend/pkg/logger"
)

// Stores encapsulates persistence dependencies. Nil stores default to a
// shared in-memory implementation, which keeps tests and local runs free of
// external engines.
type Stores struct {
	Users       storage.UserStore
	Posts       storage.PostStore
	Comments    storage.CommentStore
	Likes       storage.LikeStore
	Journal     storage.JournalStore
	Shelves     storage.ShelfStore
	Confessions storage.ConfessionStore
	Letters     storage.LetterStore
}

// FromStore spreads one full storage adapter across every slot.
func FromStore(s storage.Store) Stores {
	return Stores{
		Users:       s,
		Posts:       s,
		Comments:    s,
		Likes:       s,
		Journal:     s,
		Shelves:     s,
		Confessions: s,
		Letters:     s,
	}
}

// Options tunes application construction.
type Options struct {
	// LettersSweepSchedule overrides the due-letter sweep cron expression.
	LettersSweepSchedule string
}

// Application ties the domain services together and manages their lifecycle.
type Application struct {
	manager *system.Manager
	log     *logger.Logger

	Users       *userssvc.Service
	Posts       *postssvc.Service
	Journal     *journalsvc.Service
	Shelves     *shelvessvc.Service
	Confessions *confessionssvc.Service
	Letters     *letterssvc.Service
}

// New builds a fully initialised application with the provided stores.
func New(stores Stores, opts Options, log *logger.Logger) (*Application, error) {
	if log == nil {
		log = logger.NewDefault("app")
	}

	mem := memory.New()
	if stores.Users == nil {
		stores.Users = mem
	}
	if stores.Posts == nil {
		stores.Posts = mem
	}
	if stores.Comments == nil {
		stores.Comments = mem
	}
	if stores.Likes == nil {
		stores.Likes = mem
	}
	if stores.Journal == nil {
		stores.Journal = mem
	}
	if stores.Shelves == nil {
		stores.Shelves = mem
	}
	if stores.Confessions == nil {
		stores.Confessions = mem
	}
	if stores.Letters == nil {
		stores.Letters = mem
	}

	manager := system.NewManager()

	usersService := userssvc.New(stores.Users, log)
	postsService := postssvc.New(struct {
		storage.PostStore
		storage.CommentStore
		storage.LikeStore
	}{stores.Posts, stores.Comments, stores.Likes}, log)
	journalService := journalsvc.New(struct {
		storage.JournalStore
		storage.UserStore
	}{stores.Journal, stores.Users}, log)
	shelvesService := shelvessvc.New(stores.Shelves, log)
	confessionsService := confessionssvc.New(stores.Confessions, log)
	lettersService := letterssvc.New(stores.Letters, log)

	// Request-scoped modules hold a lifecycle slot so startup logs name them.
	for _, name := range []string{"users", "posts", "journal", "shelves", "confessions"} {
		if err := manager.Register(system.NoopService{ServiceName: name}); err != nil {
			return nil, fmt.Errorf("register %s service: %w", name, err)
		}
	}

	sweeper := letterssvc.NewSweeper(lettersService, opts.LettersSweepSchedule, log)
	if err := manager.Register(sweeper); err != nil {
		return nil, fmt.Errorf("register %s: %w", sweeper.Name(), err)
	}

	return &Application{
		manager:     manager,
		log:         log,
		Users:       usersService,
		Posts:       postsService,
		Journal:     journalService,
		Shelves:     shelvesService,
		Confessions: confessionsService,
		Letters:     lettersService,
	}, nil
}

// Attach registers an additional lifecycle-managed service. Call before Start.
func (a *Application) Attach(service system.Service) error {
	return a.manager.Register(service)
}

// Start begins all registered services.
func (a *Application) Start(ctx context.Context) error {
	return a.manager.Start(ctx)
}

// Stop stops all services.
func (a *Application) Stop(ctx context.Context) error {
	return a.manager.Stop(ctx)
}
