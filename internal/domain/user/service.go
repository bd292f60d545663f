package user

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/minsukang/accounts/internal/domain/shared"
	"github.com/minsukang/accounts/internal/events"
	"github.com/minsukang/accounts/internal/repository"
	"github.com/minsukang/accounts/pkg/logger"
)

// Repo is the repository surface the service consumes. Satisfied by
// repository.Repository[User, *User].
type Repo interface {
	Create(ctx context.Context, doc *User) (*User, error)
	FindOne(ctx context.Context, filter repository.Filter) (*User, error)
	Find(ctx context.Context, filter repository.Filter) ([]*User, error)
	FindOneAndUpdate(ctx context.Context, filter repository.Filter, update repository.Update) (*User, error)
	FindOneAndDelete(ctx context.Context, filter repository.Filter) (*User, error)
}

// Service provides user account operations on top of the repository
type Service struct {
	repo   Repo
	events events.Publisher
	logger *logger.Logger
}

// NewService creates a new user service. Collaborators are passed
// explicitly; there is no ambient registry.
func NewService(repo Repo, publisher events.Publisher, log *logger.Logger) *Service {
	if log == nil {
		log = logger.GetGlobalLogger()
	}
	return &Service{
		repo:   repo,
		events: publisher,
		logger: log.WithComponent("user-service"),
	}
}

// UpdateParams holds the fields an update may change. Nil fields are
// left untouched.
type UpdateParams struct {
	Email    *string
	Password *string
}

// Register creates a new user account with a hashed password
func (s *Service) Register(ctx context.Context, email string, plainPassword string) (*User, error) {
	u, err := NewUser(email, plainPassword)
	if err != nil {
		return nil, err
	}

	created, err := s.repo.Create(ctx, u)
	if err != nil {
		return nil, err
	}

	s.publish(events.UserCreated, created)
	return created, nil
}

// Get retrieves a user by its hex identifier
func (s *Service) Get(ctx context.Context, id string) (*User, error) {
	oid, err := repository.ParseID(id)
	if err != nil {
		return nil, err
	}
	return s.repo.FindOne(ctx, repository.Filter{"_id": oid})
}

// GetByEmail retrieves a user by email
func (s *Service) GetByEmail(ctx context.Context, email string) (*User, error) {
	normalized, err := NormalizeEmail(email)
	if err != nil {
		return nil, err
	}
	return s.repo.FindOne(ctx, repository.Filter{"email": normalized})
}

// List returns all users. An empty result is not an error.
func (s *Service) List(ctx context.Context) ([]*User, error) {
	return s.repo.Find(ctx, repository.Filter{})
}

// Update applies a partial update to a user and returns the post-update
// state. Password changes are re-hashed before they reach the store.
func (s *Service) Update(ctx context.Context, id string, params UpdateParams) (*User, error) {
	oid, err := repository.ParseID(id)
	if err != nil {
		return nil, err
	}

	update := repository.Update{"updated_at": time.Now().UTC()}

	if params.Email != nil {
		normalized, err := NormalizeEmail(*params.Email)
		if err != nil {
			return nil, err
		}
		update["email"] = normalized
	}

	if params.Password != nil {
		hash, err := HashPassword(*params.Password)
		if err != nil {
			return nil, err
		}
		update["password_hash"] = hash
	}

	updated, err := s.repo.FindOneAndUpdate(ctx, repository.Filter{"_id": oid}, update)
	if err != nil {
		return nil, err
	}

	s.publish(events.UserUpdated, updated)
	return updated, nil
}

// Delete removes a user and returns its pre-deletion state
func (s *Service) Delete(ctx context.Context, id string) (*User, error) {
	oid, err := repository.ParseID(id)
	if err != nil {
		return nil, err
	}

	deleted, err := s.repo.FindOneAndDelete(ctx, repository.Filter{"_id": oid})
	if err != nil {
		return nil, err
	}

	s.publish(events.UserDeleted, deleted)
	return deleted, nil
}

// VerifyCredentials checks a presented password against the stored
// hash. An unknown email and a wrong password both surface as
// InvalidCredentials so callers cannot probe for accounts.
func (s *Service) VerifyCredentials(ctx context.Context, email string, plainPassword string) (*User, error) {
	u, err := s.GetByEmail(ctx, email)
	if err != nil {
		if shared.HasCode(err, shared.ErrCodeNotFound) || shared.HasCode(err, shared.ErrCodeInvalidInput) {
			return nil, shared.ErrInvalidCredentials()
		}
		return nil, err
	}

	if !u.Authenticate(plainPassword) {
		return nil, shared.ErrInvalidCredentials()
	}

	return u, nil
}

func (s *Service) publish(name string, u *User) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishUserEvent(name, u.ID.Hex(), u.Email); err != nil {
		s.logger.Warn("Failed to publish lifecycle event",
			zap.String("event", name),
			zap.String("user_id", u.ID.Hex()),
			zap.Error(err),
		)
	}
}
