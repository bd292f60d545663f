package graphql

import (
	"context"
	"net/http"
	"time"

	"github.com/graph-gophers/graphql-go"
	"go.uber.org/zap"

	"github.com/minsukang/accounts/internal/api/middleware"
	"github.com/minsukang/accounts/internal/auth"
	"github.com/minsukang/accounts/internal/domain/shared"
	"github.com/minsukang/accounts/internal/domain/user"
	"github.com/minsukang/accounts/pkg/logger"
)

// Resolver resolves GraphQL queries and mutations
type Resolver struct {
	logger   *logger.Logger
	users    *user.Service
	sessions *auth.SessionManager
}

// NewResolver creates a new resolver with explicit collaborators
func NewResolver(log *logger.Logger, users *user.Service, sessions *auth.SessionManager) *Resolver {
	return &Resolver{
		logger:   log.WithComponent("graphql"),
		users:    users,
		sessions: sessions,
	}
}

// CreateUserInput mirrors the CreateUserInput schema type
type CreateUserInput struct {
	Email    string
	Password string
}

// UpdateUserInput mirrors the UpdateUserInput schema type
type UpdateUserInput struct {
	Email    *string
	Password *string
}

// LoginInput mirrors the LoginInput schema type
type LoginInput struct {
	Email    string
	Password string
}

// User resolves Query.user
func (r *Resolver) User(ctx context.Context, args struct{ ID graphql.ID }) (*UserResolver, error) {
	u, err := r.users.Get(ctx, string(args.ID))
	if err != nil {
		return nil, resolverError(err)
	}
	return &UserResolver{u: u}, nil
}

// Users resolves Query.users
func (r *Resolver) Users(ctx context.Context) ([]*UserResolver, error) {
	users, err := r.users.List(ctx)
	if err != nil {
		return nil, resolverError(err)
	}

	resolvers := make([]*UserResolver, 0, len(users))
	for _, u := range users {
		resolvers = append(resolvers, &UserResolver{u: u})
	}
	return resolvers, nil
}

// Me resolves Query.me from the verified session
func (r *Resolver) Me(ctx context.Context) (*UserResolver, error) {
	claims, ok := middleware.SessionFromContext(ctx)
	if !ok {
		return nil, resolverError(shared.ErrUnauthenticated())
	}

	u, err := r.users.Get(ctx, claims.UserID)
	if err != nil {
		return nil, resolverError(err)
	}
	return &UserResolver{u: u}, nil
}

// CreateUser resolves Mutation.createUser
func (r *Resolver) CreateUser(ctx context.Context, args struct{ Input CreateUserInput }) (*UserResolver, error) {
	u, err := r.users.Register(ctx, args.Input.Email, args.Input.Password)
	if err != nil {
		return nil, resolverError(err)
	}

	r.logger.Info("User created", zap.String("user_id", u.ID.Hex()))
	return &UserResolver{u: u}, nil
}

// UpdateUser resolves Mutation.updateUser
func (r *Resolver) UpdateUser(ctx context.Context, args struct {
	ID    graphql.ID
	Input UpdateUserInput
}) (*UserResolver, error) {
	u, err := r.users.Update(ctx, string(args.ID), user.UpdateParams{
		Email:    args.Input.Email,
		Password: args.Input.Password,
	})
	if err != nil {
		return nil, resolverError(err)
	}
	return &UserResolver{u: u}, nil
}

// DeleteUser resolves Mutation.deleteUser, returning the removed user
func (r *Resolver) DeleteUser(ctx context.Context, args struct{ ID graphql.ID }) (*UserResolver, error) {
	u, err := r.users.Delete(ctx, string(args.ID))
	if err != nil {
		return nil, resolverError(err)
	}
	return &UserResolver{u: u}, nil
}

// Login resolves Mutation.login: credential verification first, then
// session issuance, then the cookie on the transport.
func (r *Resolver) Login(ctx context.Context, args struct{ Input LoginInput }) (*UserResolver, error) {
	u, err := r.users.VerifyCredentials(ctx, args.Input.Email, args.Input.Password)
	if err != nil {
		return nil, resolverError(err)
	}

	_, cookie, err := r.sessions.Login(u)
	if err != nil {
		return nil, resolverError(err)
	}

	if err := r.setCookie(ctx, cookie); err != nil {
		return nil, resolverError(err)
	}

	r.logger.Info("User logged in", zap.String("user_id", u.ID.Hex()))
	return &UserResolver{u: u}, nil
}

// Logout resolves Mutation.logout. Overwrites the session cookie with
// an already-expired value; the issued token stays valid until its
// natural expiry.
func (r *Resolver) Logout(ctx context.Context) (bool, error) {
	if err := r.setCookie(ctx, r.sessions.Logout()); err != nil {
		return false, resolverError(err)
	}
	return true, nil
}

func (r *Resolver) setCookie(ctx context.Context, cookie *http.Cookie) error {
	w, ok := middleware.WriterFromContext(ctx)
	if !ok {
		return shared.ErrInvalidInput("session cookies require an HTTP transport")
	}
	http.SetCookie(w, cookie)
	return nil
}

// UserResolver projects the exposed field set of a stored user. This
// is the API-facing allow-list: anything not resolved here, the
// password hash included, never leaves the server.
type UserResolver struct {
	u *user.User
}

func (r *UserResolver) ID() graphql.ID {
	return graphql.ID(r.u.ID.Hex())
}

func (r *UserResolver) Email() string {
	return r.u.Email
}

func (r *UserResolver) CreatedAt() string {
	return r.u.CreatedAt.UTC().Format(time.RFC3339)
}

func (r *UserResolver) UpdatedAt() string {
	return r.u.UpdatedAt.UTC().Format(time.RFC3339)
}
