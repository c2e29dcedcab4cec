// Package users manages account records. Credential hashing and session
// handling live in the API layer above; this service owns validation and the
// storage round-trip only.
package users

import (
	"context"
	"strings"

	"github.com/booklovin/backend/internal/app/domain/user"
	"github.com/booklovin/backend/internal/app/storage"
	"github.com/booklovin/backend/pkg/logger"
)

// Service provides account registration and lookup.
type Service struct {
	store storage.UserStore
	log   *logger.Logger
}

// New constructs a users service.
func New(store storage.UserStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("users")
	}
	return &Service{store: store, log: log}
}

// Register creates a new account. The email is the unique handle; a taken
// email surfaces as an already-exists failure from storage.
func (s *Service) Register(ctx context.Context, u user.User) (user.User, error) {
	u.Email = strings.TrimSpace(strings.ToLower(u.Email))
	u.Name = strings.TrimSpace(u.Name)
	if u.Email == "" || !strings.Contains(u.Email, "@") {
		return user.User{}, storage.InvalidParameter("email")
	}
	if u.Name == "" {
		return user.User{}, storage.InvalidParameter("name")
	}
	if u.Role == 0 {
		u.Role = user.RoleStandard
	}
	u.Active = true

	created, err := s.store.CreateUser(ctx, u)
	if err != nil {
		return user.User{}, err
	}
	s.log.WithField("user", created.ID).Info("account registered")
	return created, nil
}

// Get returns the account with the given ID.
func (s *Service) Get(ctx context.Context, id string) (user.User, error) {
	if id == "" {
		return user.User{}, storage.InvalidParameter("id")
	}
	return s.store.GetUser(ctx, id)
}

// GetByEmail returns the account registered under the email.
func (s *Service) GetByEmail(ctx context.Context, email string) (user.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" {
		return user.User{}, storage.InvalidParameter("email")
	}
	return s.store.GetUserByEmail(ctx, email)
}
